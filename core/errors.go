package core

import "github.com/pkg/errors"

// ErrorKind classifies an AppError so that transports can map it to a
// protocol-specific failure (HTTP status, exit code) without string matching.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindNotFound
	KindForbidden
	KindConflict
	KindBadRequest
	KindTransient
)

// AppError is a failure with a stable machine-checkable reason and a
// human-readable message. Err (optional) carries the underlying cause;
// it is logged but never exposed to non-admin callers.
type AppError struct {
	Kind    ErrorKind
	Reason  string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Reason
}

func (e *AppError) Unwrap() error { return e.Err }

func NewNotFoundError(reason, msg string) error {
	return &AppError{Kind: KindNotFound, Reason: reason, Message: msg}
}

func NewForbiddenError(reason, msg string) error {
	return &AppError{Kind: KindForbidden, Reason: reason, Message: msg}
}

func NewConflictError(reason, msg string) error {
	return &AppError{Kind: KindConflict, Reason: reason, Message: msg}
}

func NewBadRequestError(reason, msg string) error {
	return &AppError{Kind: KindBadRequest, Reason: reason, Message: msg}
}

func NewTransientError(reason, msg string, err error) error {
	return &AppError{Kind: KindTransient, Reason: reason, Message: msg, Err: err}
}

func NewInternalError(reason string, err error) error {
	return &AppError{Kind: KindInternal, Reason: reason, Message: "internal server error", Err: err}
}

// AppErrorOf unwraps err down to an *AppError if there is one.
func AppErrorOf(err error) (*AppError, bool) {
	appErr, ok := errors.Cause(err).(*AppError)
	return appErr, ok
}

// IsErrorKind reports whether err is an AppError of the given kind.
func IsErrorKind(err error, kind ErrorKind) bool {
	if appErr, ok := AppErrorOf(err); ok {
		return appErr.Kind == kind
	}
	return false
}

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
