package models

import (
	"fmt"

	"github.com/saimonmoore/experiment-autobee/internal/crypto"
	"github.com/saimonmoore/experiment-autobee/internal/validation"
)

// RecordsKeyPrefix префикс ключей записей в материализованном представлении
const RecordsKeyPrefix = "records!"

// RecordProperties is the persisted, replicated shape of a record.
type RecordProperties struct {
	Hash string `json:"hash"` // sha256(url)
	URL  string `json:"url"`  // url закладки
}

// Record представляет сохраненную ссылку. Неизменяема после создания:
// первая запись с данным url выигрывает.
type Record struct {
	URL string
}

// NewRecord создает запись для url
func NewRecord(url string) *Record {
	return &Record{URL: url}
}

// RecordFromProperties восстанавливает запись из представления
func RecordFromProperties(p RecordProperties) *Record {
	return NewRecord(p.URL)
}

// Hash returns the record's identity hash.
func (r *Record) Hash() string {
	return crypto.Hash(r.URL)
}

// Key returns the record's key in the materialized view.
func (r *Record) Key() string {
	return RecordsKeyPrefix + r.Hash()
}

// ToProperties returns the replicated representation of the record.
func (r *Record) ToProperties() RecordProperties {
	return RecordProperties{
		Hash: r.Hash(),
		URL:  r.URL,
	}
}

// Validate checks the user-supplied fields.
func (r *Record) Validate() error {
	if err := validation.ValidateURL(r.URL); err != nil {
		return fmt.Errorf("invalid record: %w", err)
	}

	return nil
}
