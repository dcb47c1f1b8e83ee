package service

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnexpected Kind = iota
	KindRequestTimeout
	KindFetchFailed
	KindHTTPError
	KindInvalidSelector
)

func (k Kind) String() string {
	switch k {
	case KindRequestTimeout:
		return "request_timeout"
	case KindFetchFailed:
		return "fetch_failed"
	case KindHTTPError:
		return "http_error"
	case KindInvalidSelector:
		return "invalid_selector"
	default:
		return "unexpected"
	}
}

// Error is the classified failure of an extraction. Detail is the
// human-readable message shown to callers.
type Error struct {
	Kind   Kind
	Status int    // upstream status, HTTP errors only
	Field  string // selector field, invalid selectors only
	Detail string
	Err    error
}

func (e *Error) Error() string {
	return e.Detail
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf classifies err; anything that is not an *Error is unexpected.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

func timeoutError(err error) *Error {
	return &Error{
		Kind:   KindRequestTimeout,
		Detail: "Request timed out while fetching webpage",
		Err:    err,
	}
}

func fetchFailedError(err error) *Error {
	return &Error{
		Kind:   KindFetchFailed,
		Detail: err.Error(),
		Err:    err,
	}
}

func httpError(status int) *Error {
	return &Error{
		Kind:   KindHTTPError,
		Status: status,
		Detail: fmt.Sprintf("HTTP %d: Failed to fetch webpage", status),
	}
}

func invalidSelectorError(field string, err error) *Error {
	return &Error{
		Kind:   KindInvalidSelector,
		Field:  field,
		Detail: fmt.Sprintf("Invalid selector for field %q: %v", field, err),
		Err:    err,
	}
}

func unexpectedError(err error) *Error {
	return &Error{
		Kind:   KindUnexpected,
		Detail: err.Error(),
		Err:    err,
	}
}
