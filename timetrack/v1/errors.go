package v1

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	// KindRequest is a non-2xx response other than 401, or success=false.
	KindRequest ErrorKind = iota + 1
	// KindUnauthorized is a 401; the session has already been torn down.
	KindUnauthorized
	// KindTransport covers network and I/O failures.
	KindTransport
	// KindDecode is a payload that does not match the expected shape.
	KindDecode
)

func (k ErrorKind) String() string {
	switch k {
	case KindRequest:
		return "request"
	case KindUnauthorized:
		return "unauthorized"
	case KindTransport:
		return "transport"
	case KindDecode:
		return "decode"
	}
	return "unknown"
}

const DefaultMessage = "Something went wrong"

var ErrUnauthorized = errors.New("unauthorized")

// Error is the single error shape handed to view code.
type Error struct {
	Kind       ErrorKind
	Method     string
	Path       string
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s %s failed with status code %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s %s %s error: %v", e.Method, e.Path, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %s %s error: %s", e.Method, e.Path, e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return target == ErrUnauthorized && e.Kind == KindUnauthorized
}

// Message returns the human readable text for err, or fallback when err
// carries none.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if fallback != "" {
		return fallback
	}
	return DefaultMessage
}

func IsKind(err error, kind ErrorKind) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}
