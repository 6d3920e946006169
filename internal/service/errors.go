package service

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a business failure.  The HTTP layer maps kinds
// to status codes; the message is meant for the caller.
type ErrorKind string

const (
	KindNotFound              ErrorKind = "NOT_FOUND"
	KindInvalidRequest        ErrorKind = "INVALID_REQUEST"
	KindInvalidRoute          ErrorKind = "INVALID_ROUTE"
	KindInvalidSchedule       ErrorKind = "INVALID_SCHEDULE"
	KindInsufficientInventory ErrorKind = "INSUFFICIENT_INVENTORY"
	KindAlreadyCanceled       ErrorKind = "ALREADY_CANCELED"
	KindImmutable             ErrorKind = "IMMUTABLE"
	KindInvalidState          ErrorKind = "INVALID_STATE"
	KindAlreadyPaid           ErrorKind = "ALREADY_PAID"
	KindConflict              ErrorKind = "CONFLICT"
)

// Error is a business failure with a kind and a human message.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string { return e.Message }

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound)
// holds for every not-found failure regardless of its message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is checks.
var (
	ErrNotFound              = &Error{Kind: KindNotFound, Message: "not found"}
	ErrInvalidRequest        = &Error{Kind: KindInvalidRequest, Message: "invalid request"}
	ErrInvalidRoute          = &Error{Kind: KindInvalidRoute, Message: "invalid route"}
	ErrInvalidSchedule       = &Error{Kind: KindInvalidSchedule, Message: "invalid schedule"}
	ErrInsufficientInventory = &Error{Kind: KindInsufficientInventory, Message: "insufficient inventory"}
	ErrAlreadyCanceled       = &Error{Kind: KindAlreadyCanceled, Message: "already canceled"}
	ErrImmutable             = &Error{Kind: KindImmutable, Message: "immutable"}
	ErrInvalidState          = &Error{Kind: KindInvalidState, Message: "invalid state"}
	ErrAlreadyPaid           = &Error{Kind: KindAlreadyPaid, Message: "already paid"}
	ErrConflict              = &Error{Kind: KindConflict, Message: "conflict"}
)

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func notFound(format string, args ...any) error {
	return newError(KindNotFound, format, args...)
}

func invalidRequest(format string, args ...any) error {
	return newError(KindInvalidRequest, format, args...)
}
