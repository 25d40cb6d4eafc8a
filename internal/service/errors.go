package service

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrNoPermission    = errors.New("no permission")
	// ErrReplyDepth is surfaced with its own message so clients can tell a
	// depth violation apart from a generic validation failure.
	ErrReplyDepth = errors.New("replies can only be added to top-level comments")
)

// ValidationError blocks a mutation before any repository call is made.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func validationf(format string, args ...any) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a client-input error.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
