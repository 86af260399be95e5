package api

// Ключи верхнего уровня сообщений сопряжения устройств
const (
	RequestWritableKey = "org.mneme.user.remoteOwner.requestPrivateStoreWritable"
	LoginPingKey       = "org.mneme.user.remoteOwner.login"
)

// RequestWritable представляет запрос нового устройства на права записи
type RequestWritable struct {
	PrivateWriterKey       string `json:"privateStoreLocalPublicKey"` // ключ записи устройства в private store
	PublicWriterKey        string `json:"publicStoreLocalPublicKey"`  // ключ записи устройства в public store
	ClaimedPrimaryStoreKey string `json:"privateStorePublicKey"`      // ключ private store, полученный вне сети
	RequestID              string `json:"requestId,omitempty"`        // UUID попытки
	Proof                  string `json:"proof,omitempty"`            // EdDSA JWT, подписанный PrivateWriterKey
}

// RequestWritableMessage is the tagged envelope of RequestWritable.
type RequestWritableMessage struct {
	Request *RequestWritable `json:"org.mneme.user.remoteOwner.requestPrivateStoreWritable"`
}

// LoginPing сообщает новому устройству, под каким пользователем войти
type LoginPing struct {
	UserKey string `json:"userKey"` // ключ пользователя в представлении ("users!<hash>")
}

// LoginPingMessage is the tagged envelope of LoginPing.
type LoginPingMessage struct {
	Login *LoginPing `json:"org.mneme.user.remoteOwner.login"`
}

// Hello is the first message on a swarm connection.
type Hello struct {
	PeerKey string   `json:"peerKey"` // hex ed25519 ключ узла
	Topics  []string `json:"topics"`  // hex discovery keys, к которым присоединен узел
}
