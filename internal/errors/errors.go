package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Name is the kind name every structured error reports, so presentation layers can
// tell an error value apart from an ordinary result.
const Name = "StudioError"

// FallbackMessage is used when a failure carries no usable message.
const FallbackMessage = "Unknown error"

// Code identifies a structured error type used across the application.
type Code string

const (
	// Generic codes
	CodeUnknown Code = "unknown"

	// Update check errors
	CodeUpdateData      Code = "update_data"
	CodeUpdateTransport Code = "update_transport"
	CodeUpdatePanic     Code = "update_panic"

	CodeConfigurationError Code = "configuration_error"
)

// Error represents a structured error with a machine-readable code plus message.
// Details holds the messages of sub-errors when the failure is an aggregate.
type Error struct {
	Code    Code
	Message string
	Details []string
	Err     error
}

// Error implements the error interface.
func (e Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Code)
}

// Unwrap returns the wrapped error.
func (e Error) Unwrap() error {
	return e.Err
}

// Name returns the fixed kind name shared by all structured errors.
func (e Error) Name() string {
	return Name
}

// New wraps an error with a code/message.
func New(code Code, msg string, err error) Error {
	return Error{Code: code, Message: msg, Details: []string{}, Err: err}
}

// CodeOf walks the error chain and returns the first structured code found.
func CodeOf(err error) Code {
	var structured Error
	if errors.As(err, &structured) {
		return structured.Code
	}
	return CodeUnknown
}

// IsCode reports whether the error (or its unwrap chain) matches the provided code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// Normalize converts an arbitrary failure value (an error, a recovered panic value,
// a string) into an Error. The original message is kept whenever one is available.
func Normalize(v any) Error {
	return NormalizeWithCode(v, CodeUnknown)
}

// NormalizeWithCode is Normalize with the code to use when v is not already a
// structured error.
func NormalizeWithCode(v any, code Code) Error {
	switch val := v.(type) {
	case nil:
		return New(code, FallbackMessage, nil)
	case Error:
		if val.Details == nil {
			val.Details = []string{}
		}
		return val
	case *Error:
		if val == nil {
			return New(code, FallbackMessage, nil)
		}
		return NormalizeWithCode(*val, code)
	case error:
		var structured Error
		if errors.As(val, &structured) {
			// Keep the outer context but report the structured code.
			structured.Message = messageOf(val)
			structured.Err = val
			return NormalizeWithCode(structured, code)
		}
		out := New(code, messageOf(val), val)
		if joined, ok := val.(interface{ Unwrap() []error }); ok {
			for _, sub := range joined.Unwrap() {
				if sub == nil {
					continue
				}
				out.Details = append(out.Details, messageOf(sub))
			}
		}
		return out
	case string:
		msg := strings.TrimSpace(val)
		if msg == "" {
			msg = FallbackMessage
		}
		return New(code, msg, nil)
	case fmt.Stringer:
		return NormalizeWithCode(val.String(), code)
	default:
		return New(code, FallbackMessage, nil)
	}
}

func messageOf(err error) string {
	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		return FallbackMessage
	}
	return msg
}
