package models

import (
	"encoding/json"
	"fmt"
)

// OperationType тип операции, добавляемой в журнал
type OperationType string

// Типы операций доменного уровня
const (
	OperationCreateUser   OperationType = "createUser"
	OperationUpdateUser   OperationType = "updateUser"
	OperationCreateRecord OperationType = "createRecord"
)

// Operation представляет операцию в журнале хранилища.
// Сериализуется в JSON и реплицируется между устройствами;
// индексаторы превращают операции в записи материализованного представления.
type Operation struct {
	Type    OperationType     `json:"type"`              // Type тип операции
	User    *UserProperties   `json:"user,omitempty"`    // User пользователь (createUser/updateUser)
	Writers []string          `json:"writers,omitempty"` // Writers ключи устройств пользователя
	Record  *RecordProperties `json:"record,omitempty"`  // Record запись (createRecord)
}

// NewCreateUserOperation builds a createUser operation seeded with writers.
func NewCreateUserOperation(u *User, writers []string) *Operation {
	props := u.ToProperties()

	return &Operation{
		Type:    OperationCreateUser,
		User:    &props,
		Writers: writers,
	}
}

// NewUpdateUserOperation builds an updateUser operation carrying the user's writer set.
func NewUpdateUserOperation(u *User) *Operation {
	props := u.ToProperties()

	return &Operation{
		Type:    OperationUpdateUser,
		User:    &props,
		Writers: u.Writers(),
	}
}

// NewCreateRecordOperation builds a createRecord operation.
func NewCreateRecordOperation(r *Record) *Operation {
	props := r.ToProperties()

	return &Operation{
		Type:   OperationCreateRecord,
		Record: &props,
	}
}

// Encode сериализует операцию для записи в журнал
func (o *Operation) Encode() ([]byte, error) {
	data, err := json.Marshal(o)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal operation: %w", err)
	}

	return data, nil
}

// DecodeOperation разбирает операцию из значения записи журнала
func DecodeOperation(data []byte) (*Operation, error) {
	var op Operation
	if err := json.Unmarshal(data, &op); err != nil {
		return nil, fmt.Errorf("failed to unmarshal operation: %w", err)
	}

	if op.Type == "" {
		return nil, fmt.Errorf("operation type is missing")
	}

	return &op, nil
}

// UserEntry is the materialized view value stored under User.Key().
type UserEntry struct {
	User    UserProperties `json:"user"`
	Writers []string       `json:"writers"`
}

// RecordEntry is the materialized view value stored under Record.Key().
type RecordEntry struct {
	Record RecordProperties `json:"record"`
}
