package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the application. Every error returned by a service
// wraps exactly one of these kinds.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("unauthorized access")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("resource already exists")
	ErrInternal     = errors.New("internal server error")
	ErrInvalidInput = errors.New("invalid input")
)

// Error pairs an error kind with a message that is safe to show to callers.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Kind }

// Errorf builds an *Error of the given kind.
func Errorf(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// ChatExistsError reports that a private chat for the pair already exists.
type ChatExistsError struct {
	ChatID int64
}

func (e *ChatExistsError) Error() string {
	return "private chat with this user already exists"
}

func (e *ChatExistsError) Is(target error) bool { return target == ErrConflict }

// KindOf returns the sentinel kind of err, or ErrInternal when err carries none.
func KindOf(err error) error {
	for _, kind := range []error{ErrInvalidInput, ErrUnauthorized, ErrForbidden, ErrNotFound, ErrConflict} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return ErrInternal
}
