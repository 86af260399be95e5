package pairing

import "errors"

var (
	// ErrMalformedMessage сообщение сопряжения не удалось разобрать
	ErrMalformedMessage = errors.New("malformed pairing message")

	// ErrIdentityMismatch заявленный ключ хранилища не совпадает с нашим.
	// Never sent to the peer.
	ErrIdentityMismatch = errors.New("claimed store key does not match")

	// ErrInvalidProof подпись запроса не прошла проверку
	ErrInvalidProof = errors.New("invalid pairing proof")

	// ErrNotStarted менеджер еще не запущен
	ErrNotStarted = errors.New("pairing manager not started")

	errUserNotReplicated = errors.New("user not replicated yet")
)
