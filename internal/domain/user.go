// Package domain contains entity without logic, just meta-data
package domain

import "errors"

const MaxUserIDLen = 36

var (
	ErrUserIDEmpty   = errors.New("user id empty")
	ErrUserIDTooLong = errors.New("user id too long")
)

// UserID is the opaque identity assigned by the external auth system.
// The core never looks inside it.
type UserID string

// ParseUserID validates a raw identity from a handshake or payload.
func ParseUserID(raw string) (UserID, error) {
	if len(raw) == 0 {
		return "", ErrUserIDEmpty
	}
	if len(raw) > MaxUserIDLen {
		return "", ErrUserIDTooLong
	}
	return UserID(raw), nil
}
