package pdef

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrorCode represents a machine-readable protocol error category.
type ErrorCode string

const (
	// Routing errors raised while parsing a request.
	CodeWrongMethodArgs  ErrorCode = "wrong_method_args"
	CodeMethodNotFound   ErrorCode = "method_not_found"
	CodeMethodNotAllowed ErrorCode = "method_not_allowed"

	// Protocol errors raised by the transport or framework glue.
	CodeClientError        ErrorCode = "client_error"
	CodeServiceUnavailable ErrorCode = "service_unavailable"
	CodeServerError        ErrorCode = "server_error"
)

// fallbackMessage is the body of unclassified server errors.
const fallbackMessage = "Internal server error"

// Error is a protocol error. Its message is user-facing and is written as
// the response body.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewError creates a new protocol error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Errorf creates a new protocol error with a formatted message.
func Errorf(code ErrorCode, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// WrongMethodArgs returns a CodeWrongMethodArgs error.
func WrongMethodArgs(format string, args ...any) *Error {
	return Errorf(CodeWrongMethodArgs, format, args...)
}

// MethodNotFound returns a CodeMethodNotFound error.
func MethodNotFound(format string, args ...any) *Error {
	return Errorf(CodeMethodNotFound, format, args...)
}

// MethodNotAllowed returns a CodeMethodNotAllowed error.
func MethodNotAllowed(format string, args ...any) *Error {
	return Errorf(CodeMethodNotAllowed, format, args...)
}

// ErrorTransformer maps an execution error to a protocol error.
// If it returns nil, DefaultErrorTransformer is applied.
type ErrorTransformer func(error) *Error

// DefaultErrorTransformer maps standard Go errors to protocol errors.
// Unclassified errors become a server error with a fixed message so that
// internal details never reach the client.
func DefaultErrorTransformer(err error) *Error {
	if err == nil {
		return nil
	}

	var protoErr *Error
	if errors.As(err, &protoErr) {
		return protoErr
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return NewError(CodeServiceUnavailable, "Service unavailable")
	}

	if errors.Is(err, context.Canceled) {
		return NewError(CodeClientError, "Request canceled")
	}

	var valErrs validator.ValidationErrors
	if errors.As(err, &valErrs) {
		messages := make([]string, 0, len(valErrs))
		for _, ve := range valErrs {
			messages = append(messages, ve.Namespace()+": "+formatValidationError(ve))
		}
		return NewError(CodeWrongMethodArgs, strings.Join(messages, "; "))
	}

	return NewError(CodeServerError, fallbackMessage)
}

// HTTPStatus maps an ErrorCode to an HTTP status code.
func (c ErrorCode) HTTPStatus() int {
	switch c {
	case CodeWrongMethodArgs, CodeClientError:
		return http.StatusBadRequest
	case CodeMethodNotFound:
		return http.StatusNotFound
	case CodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case CodeServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// CodeFromHTTPStatus recovers an ErrorCode from a non-OK status. Both
// argument and generic client errors use 400, which maps to CodeClientError.
func CodeFromHTTPStatus(status int) ErrorCode {
	switch {
	case status == http.StatusNotFound:
		return CodeMethodNotFound
	case status == http.StatusMethodNotAllowed:
		return CodeMethodNotAllowed
	case status == http.StatusServiceUnavailable:
		return CodeServiceUnavailable
	case status >= 400 && status < 500:
		return CodeClientError
	default:
		return CodeServerError
	}
}

// formatValidationError converts a validator.FieldError to a human-readable message.
func formatValidationError(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required":
		return "required"
	case "min":
		return fmt.Sprintf("must be at least %s", ve.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", ve.Param())
	case "len":
		return fmt.Sprintf("must have length %s", ve.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", ve.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", ve.Param())
	case "lt":
		return fmt.Sprintf("must be less than %s", ve.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", ve.Param())
	case "email":
		return "must be a valid email address"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", ve.Param())
	default:
		if ve.Param() != "" {
			return fmt.Sprintf("failed %s=%s validation", ve.Tag(), ve.Param())
		}
		return fmt.Sprintf("failed %s validation", ve.Tag())
	}
}
