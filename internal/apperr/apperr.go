// Package apperr classifies operation failures into the two kinds the
// backend distinguishes: bad input and denied access.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind int

const (
	// KindInvalidInput marks a malformed or nonexistent target or
	// argument. The caller's request is wrong.
	KindInvalidInput Kind = iota + 1
	// KindAccessDenied marks a valid target the caller lacks
	// permission for.
	KindAccessDenied
)

// Error carries a failure kind and a human-readable message.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

// Inputf builds an InvalidInput error.
func Inputf(format string, args ...any) error {
	return &Error{Kind: KindInvalidInput, Msg: fmt.Sprintf(format, args...)}
}

// Accessf builds an AccessDenied error.
func Accessf(format string, args ...any) error {
	return &Error{Kind: KindAccessDenied, Msg: fmt.Sprintf(format, args...)}
}

// IsInput reports whether err is an InvalidInput failure.
func IsInput(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindInvalidInput
}

// IsAccess reports whether err is an AccessDenied failure.
func IsAccess(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindAccessDenied
}
