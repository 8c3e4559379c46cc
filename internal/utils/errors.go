package utils

import (
	"errors"
	"fmt"
)

// Kind classifies failures surfaced to the portal user.
type Kind int

const (
	KindUnknown Kind = iota
	KindServiceUnavailable
	KindNotRegistered
	KindInvalidPassword
	KindTransport
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindServiceUnavailable:
		return "service_unavailable"
	case KindNotRegistered:
		return "not_registered"
	case KindInvalidPassword:
		return "invalid_password"
	case KindTransport:
		return "transport_error"
	case KindValidation:
		return "validation_error"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is checks against an *Error of the same kind.
var (
	ErrServiceUnavailable = &Error{Kind: KindServiceUnavailable}
	ErrNotRegistered      = &Error{Kind: KindNotRegistered}
	ErrInvalidPassword    = &Error{Kind: KindInvalidPassword}
	ErrTransport          = &Error{Kind: KindTransport}
	ErrValidation         = &Error{Kind: KindValidation}
)

// Error carries a kind and the message shown to the user.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.String()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// New returns an error of the given kind.
func New(kind Kind, message string) error {
	return &Error{Kind: kind, Message: message}
}

// Wrap returns an error of the given kind that keeps cause in the chain.
func Wrap(kind Kind, message string, cause error) error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// Validationf formats a validation error.
func Validationf(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
