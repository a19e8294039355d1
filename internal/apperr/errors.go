package apperr

import (
	"errors"
	"fmt"
)

// Error kinds. Handlers translate these to HTTP statuses; everything below
// the handler layer only ever reports a kind, never a status code.
var (
	// ErrInvalidShape marks a payload with extraneous or wrongly-typed
	// fields. It never reveals whether the targeted resource exists.
	ErrInvalidShape = errors.New("invalid request body")

	// ErrDomainValidation marks a well-formed payload whose values break a
	// business rule (length, range, enum, date format).
	ErrDomainValidation = errors.New("invalid data")

	ErrUnauthenticated = errors.New("unauthorized")
	ErrForbidden       = errors.New("access forbidden")

	// ErrNotFound covers both an absent resource and a syntactically
	// invalid identifier; callers cannot tell the two apart.
	ErrNotFound = errors.New("not found")

	ErrConflict = errors.New("conflict")

	// Upload-specific sub-kinds of ErrDomainValidation.
	ErrTooManyFiles  = fmt.Errorf("too many files: %w", ErrDomainValidation)
	ErrInvalidUpload = fmt.Errorf("invalid upload: %w", ErrDomainValidation)

	// ErrStorage marks an underlying I/O failure. Fatal, never retried.
	ErrStorage = errors.New("storage failure")
)

// Error couples a kind with a human-readable detail. errors.Is matches on
// the kind, so sub-kinds keep working through the wrap.
type Error struct {
	Kind   error
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Detail
}

func (e *Error) Unwrap() error { return e.Kind }

func New(kind error, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

func Newf(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause to a kind, keeping the cause text as the detail.
func Wrap(kind error, cause error) *Error {
	return &Error{Kind: kind, Detail: cause.Error()}
}

// Detail returns the human-readable detail of err, if it carries one.
func Detail(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Detail
	}
	return ""
}
