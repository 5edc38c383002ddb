package errors

import (
	"errors"
	"fmt"
	"net/http"

	"gorm.io/gorm"
)

// Kind classifies an application error.
type Kind int

const (
	// KindInternal is any failure the caller cannot act on.
	KindInternal Kind = iota
	// KindValidation is returned when input data breaks a business rule.
	KindValidation
	// KindNotFound is returned when a requested record does not exist.
	KindNotFound
	// KindUnauthorized is returned when credentials or tokens are rejected.
	KindUnauthorized
	// KindConflict is returned when a write collides with an existing record.
	KindConflict
	// KindTooManyRequests is returned when a caller is being throttled.
	KindTooManyRequests
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindConflict:
		return "conflict"
	case KindTooManyRequests:
		return "too_many_requests"
	default:
		return "internal"
	}
}

// Error is the single error type raised by services and gateways.
type Error struct {
	Kind    Kind
	Message string
	Errors  []string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation creates a validation error carrying field errors.
func Validation(message string, fieldErrors ...string) *Error {
	return &Error{Kind: KindValidation, Message: message, Errors: fieldErrors}
}

// NotFound creates a not found error.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Unauthorized creates an unauthorized error.
func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// Conflict creates a conflict error.
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// TooManyRequests creates a throttling error.
func TooManyRequests(message string) *Error {
	return &Error{Kind: KindTooManyRequests, Message: message}
}

// KindOf reports the kind of err, KindInternal when err is not an *Error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Status  string   `json:"status"`
	Code    int      `json:"code"`
	Message string   `json:"message"`
	Errors  []string `json:"errors"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Errors     []string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message string, fieldErrors ...string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Errors:     fieldErrors,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
// Errors is always an array, empty when there are no field errors.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	fieldErrors := e.Errors
	if fieldErrors == nil {
		fieldErrors = []string{}
	}
	return ErrorResponse{
		Status:  "error",
		Code:    e.StatusCode,
		Message: e.Message,
		Errors:  fieldErrors,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	var appErr *Error
	if errors.As(err, &appErr) {
		switch appErr.Kind {
		case KindValidation:
			return NewHTTPError(http.StatusBadRequest, appErr.Message, appErr.Errors...)
		case KindNotFound:
			return NewHTTPError(http.StatusNotFound, appErr.Message)
		case KindUnauthorized:
			return NewHTTPError(http.StatusUnauthorized, appErr.Message)
		case KindConflict:
			return NewHTTPError(http.StatusConflict, appErr.Message)
		case KindTooManyRequests:
			return NewHTTPError(http.StatusTooManyRequests, appErr.Message)
		case KindInternal:
		}
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return NewHTTPError(http.StatusConflict, "A record with this data already exists")
	}

	return NewHTTPError(http.StatusInternalServerError, "Internal server error")
}
