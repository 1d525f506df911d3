package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies failures surfaced by the stores and services
type Kind string

const (
	KindNotFound   Kind = "not_found"
	KindStorage    Kind = "storage"
	KindFormat     Kind = "format"
	KindFetch      Kind = "fetch"
	KindValidation Kind = "validation"
	KindForbidden  Kind = "forbidden"
)

// Sentinels for errors.Is checks
var (
	ErrNotFound   = &Error{Kind: KindNotFound}
	ErrStorage    = &Error{Kind: KindStorage}
	ErrFormat     = &Error{Kind: KindFormat}
	ErrFetch      = &Error{Kind: KindFetch}
	ErrValidation = &Error{Kind: KindValidation}
	ErrForbidden  = &Error{Kind: KindForbidden}
)

// Error is a typed failure carrying the operation that produced it
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	} else if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	if e.Op == "" {
		return fmt.Sprintf("%s: %s", e.Kind, msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so the package sentinels work with errors.Is
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func newf(kind Kind, op string, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...), Err: err}
}

// NotFound reports an operation targeting a missing record
func NotFound(op string, format string, args ...interface{}) error {
	return newf(KindNotFound, op, nil, format, args...)
}

// Storage wraps an underlying blob or key-value I/O failure
func Storage(op string, err error) error {
	return &Error{Kind: KindStorage, Op: op, Err: err}
}

// Format reports unparseable import content
func Format(op string, err error, format string, args ...interface{}) error {
	return newf(KindFormat, op, err, format, args...)
}

// Fetch reports an unavailable or empty remote air-quality response
func Fetch(op string, err error, format string, args ...interface{}) error {
	return newf(KindFetch, op, err, format, args...)
}

// Validation reports missing or invalid caller input
func Validation(op string, format string, args ...interface{}) error {
	return newf(KindValidation, op, nil, format, args...)
}

// Forbidden reports a caller acting on a record it does not own
func Forbidden(op string, format string, args ...interface{}) error {
	return newf(KindForbidden, op, nil, format, args...)
}

// KindOf returns the kind of the first *Error in the chain, or "" if none
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// HTTPStatus maps an error to the status code the API answers with
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation, KindFormat:
		return http.StatusBadRequest
	case KindForbidden:
		return http.StatusForbidden
	case KindFetch:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
