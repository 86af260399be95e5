package api

// Типы сообщений репликации журнала
const (
	ReplicationHave    = "have"    // объявление известных голов фидов
	ReplicationEntries = "entries" // пакет записей, которых нет у собеседника
)

// LogEntry представляет одну подписанную запись журнала для репликации
type LogEntry struct {
	Writer    string `json:"writer"`    // hex публичного ключа писателя
	Kind      string `json:"kind"`      // op | addWriter
	Value     []byte `json:"value"`     // полезная нагрузка (base64 в JSON)
	Signature []byte `json:"signature"` // ed25519 подпись
	Seq       uint64 `json:"seq"`       // номер в фиде писателя, с 1
	Clock     int64  `json:"clock"`     // Lamport clock писателя
}

// ReplicationMessage is exchanged on a log's replication channel.
type ReplicationMessage struct {
	Heads   map[string]uint64 `json:"heads,omitempty"`   // writer -> длина фида (для have)
	Type    string            `json:"type"`              // have | entries
	Entries []LogEntry        `json:"entries,omitempty"` // для entries
	More    bool              `json:"more,omitempty"`    // у отправителя есть еще записи; получатель отвечает новым have
}
