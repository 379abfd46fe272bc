// Package apperror defines the error kinds returned by the domain services.
// Services return these values unwrapped; only the HTTP layer translates a
// Kind into a status code.
package apperror

import (
	"errors"
	"fmt"
)

// Kind enumerates the failure classes a caller can react to.
type Kind uint8

const (
	KindInternal Kind = iota
	KindEmailDuplication
	KindUserNotFound
	KindAccessDenied
	KindLoginFailWithNotFoundEmail
	KindEncoderFail
	KindInvalidToken
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindEmailDuplication:
		return "email_duplication"
	case KindUserNotFound:
		return "user_not_found"
	case KindAccessDenied:
		return "access_denied"
	case KindLoginFailWithNotFoundEmail:
		return "login_fail_with_not_found_email"
	case KindEncoderFail:
		return "encoder_fail"
	case KindInvalidToken:
		return "invalid_token"
	case KindValidation:
		return "validation"
	default:
		return "internal"
	}
}

// Error is a domain error carrying its Kind. Two errors match under
// errors.Is when their kinds are equal, so callers can compare against the
// sentinels below regardless of the message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.String()
	}
	return e.Message
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrEmailDuplication           = &Error{Kind: KindEmailDuplication, Message: "email already exists"}
	ErrUserNotFound               = &Error{Kind: KindUserNotFound, Message: "user not found"}
	ErrAccessDenied               = &Error{Kind: KindAccessDenied, Message: "access denied"}
	ErrLoginFailWithNotFoundEmail = &Error{Kind: KindLoginFailWithNotFoundEmail, Message: "login failed: email not found"}
	ErrEncoderFail                = &Error{Kind: KindEncoderFail, Message: "login failed: password mismatch"}
	ErrInvalidToken               = &Error{Kind: KindInvalidToken, Message: "invalid token"}
)

// New builds an Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf reports the Kind of err, or KindInternal when err is not a domain
// error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
