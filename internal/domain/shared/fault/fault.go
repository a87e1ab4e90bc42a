package fault

import (
	"errors"
	"fmt"
)

// Kind buckets an error into the stable HTTP-facing taxonomy.
type Kind string

const (
	KindValidation Kind = "validation"
	KindForbidden  Kind = "forbidden"
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	KindStore      Kind = "store"
)

// Fault is an error with a kind and a stable machine-readable code. Domain
// packages declare sentinels with the constructors below; errors.Is matches
// sentinels by identity as usual.
type Fault struct {
	Kind    Kind
	Code    string
	Message string
	cause   error
}

func (f *Fault) Error() string {
	if f.cause != nil {
		return f.Message + ": " + f.cause.Error()
	}
	return f.Message
}

func (f *Fault) Unwrap() error { return f.cause }

func New(kind Kind, code, message string) *Fault {
	return &Fault{Kind: kind, Code: code, Message: message}
}

func Validation(code, message string) *Fault { return New(KindValidation, code, message) }
func Forbidden(code, message string) *Fault  { return New(KindForbidden, code, message) }
func NotFound(code, message string) *Fault   { return New(KindNotFound, code, message) }
func Conflict(code, message string) *Fault   { return New(KindConflict, code, message) }

func Validationf(code, format string, args ...any) *Fault {
	return Validation(code, fmt.Sprintf(format, args...))
}

// Store wraps an infrastructure failure. The cause is kept for logs and never
// shown to callers.
func Store(code string, cause error) *Fault {
	return &Fault{Kind: KindStore, Code: code, Message: "storage failure", cause: cause}
}

// KindOf classifies any error; non-faults count as store failures.
func KindOf(err error) Kind {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind
	}
	return KindStore
}

// CodeOf extracts the stable code, falling back to "internal".
func CodeOf(err error) string {
	var f *Fault
	if errors.As(err, &f) {
		return f.Code
	}
	return "internal"
}

// MessageOf returns the caller-safe message for the error.
func MessageOf(err error) string {
	var f *Fault
	if errors.As(err, &f) {
		return f.Message
	}
	return "internal error"
}
