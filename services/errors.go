package services

import (
	"errors"
	"fmt"

	"quizzesapi/store"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// Error is a domain failure. Its message is safe to show to clients; Kind is
// ErrNotFound or ErrConflict.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func notFound(format string, args ...interface{}) error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

func conflict(format string, args ...interface{}) error {
	return &Error{Kind: ErrConflict, Message: fmt.Sprintf(format, args...)}
}

// mapStoreError turns store sentinels into domain failures carrying the given
// messages. Domain failures and unknown errors pass through unchanged.
func mapStoreError(err error, missing, duplicate string) error {
	if errors.Is(err, store.ErrDuplicate) {
		return conflict("%s", duplicate)
	}
	return mapNotFound(err, missing)
}

// mapNotFound is mapStoreError for paths that never write a unique key.
func mapNotFound(err error, missing string) error {
	var domain *Error
	switch {
	case errors.As(err, &domain):
		return err
	case errors.Is(err, store.ErrNotFound):
		return notFound("%s", missing)
	default:
		return err
	}
}
