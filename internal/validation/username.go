package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// UsernamePattern определяет допустимый формат username
// Латинские буквы, цифры, точка, дефис и нижнее подчеркивание, длина 1-32 символа
var UsernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.\-]{1,32}$`)

// EmailPattern is a deliberately loose shape check: local@domain with no spaces.
var EmailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+$`)

const (
	// MaxUsernameLen максимальная длина username
	MaxUsernameLen = 32
	// MaxEmailLen максимальная длина email
	MaxEmailLen = 254
)

// ValidateUsername проверяет, что username соответствует требованиям
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("username cannot be empty")
	}

	if len(username) > MaxUsernameLen {
		return fmt.Errorf("username must not exceed %d characters", MaxUsernameLen)
	}

	if !UsernamePattern.MatchString(username) {
		return fmt.Errorf("username can only contain letters, numbers, dots, dashes and underscores")
	}

	return nil
}

// ValidateEmail проверяет email, из которого выводится ключ пользователя
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}

	if len(email) > MaxEmailLen {
		return fmt.Errorf("email must not exceed %d characters", MaxEmailLen)
	}

	if !EmailPattern.MatchString(email) {
		return fmt.Errorf("email %q is not valid", email)
	}

	return nil
}

// ValidateURL проверяет url записи: нужна схема и хост
func ValidateURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("url cannot be empty")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("url %q is not valid: %w", raw, err)
	}

	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("url %q must have a scheme and a host", raw)
	}

	return nil
}
