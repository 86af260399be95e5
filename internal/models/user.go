package models

import (
	"fmt"

	"github.com/saimonmoore/experiment-autobee/internal/crdt"
	"github.com/saimonmoore/experiment-autobee/internal/crypto"
	"github.com/saimonmoore/experiment-autobee/internal/validation"
)

// UsersKeyPrefix префикс ключей пользователей в материализованном представлении
const UsersKeyPrefix = "users!"

// UserProperties is the persisted, replicated shape of a user.
type UserProperties struct {
	Hash     string `json:"hash"`     // sha256(email)
	Email    string `json:"email"`    // email, из которого выводится ключ
	Username string `json:"username"` // отображаемое имя
}

// User представляет владельца хранилищ (одного человека).
// writers - бизнес-уровневый список устройств, которым разрешено действовать
// от имени пользователя. Он независим от списка писателей журнала.
type User struct {
	Email    string
	Username string
	writers  *crdt.GSet
}

// NewUser создает пользователя с пустым набором писателей
func NewUser(email, username string) *User {
	return &User{
		Email:    email,
		Username: username,
		writers:  crdt.NewGSet(),
	}
}

// UserFromProperties восстанавливает пользователя из записи представления
func UserFromProperties(p UserProperties) *User {
	return NewUser(p.Email, p.Username)
}

// Hash returns the user's identity hash.
func (u *User) Hash() string {
	return crypto.Hash(u.Email)
}

// Key returns the user's key in the materialized view.
func (u *User) Key() string {
	return UsersKeyPrefix + u.Hash()
}

// ToProperties returns the replicated representation of the user.
func (u *User) ToProperties() UserProperties {
	return UserProperties{
		Hash:     u.Hash(),
		Email:    u.Email,
		Username: u.Username,
	}
}

// AddWriters merges writer keys into the user's writer set (union only).
// Returns the number of keys that were not present before.
func (u *User) AddWriters(keys ...string) int {
	if u.writers == nil {
		u.writers = crdt.NewGSet()
	}

	return u.writers.Add(keys...)
}

// Writers returns the writer keys in a deterministic order.
func (u *User) Writers() []string {
	if u.writers == nil {
		return []string{}
	}

	return u.writers.Values()
}

// HasWriter reports whether key is an authorized device of the user.
func (u *User) HasWriter(key string) bool {
	return u.writers != nil && u.writers.Contains(key)
}

// Validate checks the user-supplied fields.
func (u *User) Validate() error {
	if err := validation.ValidateEmail(u.Email); err != nil {
		return fmt.Errorf("invalid email: %w", err)
	}
	if err := validation.ValidateUsername(u.Username); err != nil {
		return fmt.Errorf("invalid username: %w", err)
	}

	return nil
}
