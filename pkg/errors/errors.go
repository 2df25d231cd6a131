package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeDomain     ErrorType = "domain"
	ErrorTypeConfig     ErrorType = "configuration"
	ErrorTypeInternal   ErrorType = "internal"
)

// Error codes for the computation library
const (
	CodeEmptyData               = "EMPTY_DATA"
	CodeLengthMismatch          = "LENGTH_MISMATCH"
	CodeInvalidParameter        = "INVALID_PARAMETER"
	CodeUnsupportedDistribution = "UNSUPPORTED_DISTRIBUTION"
	CodeInvalidRequest          = "INVALID_REQUEST"
	CodeNonFiniteResult         = "NON_FINITE_RESULT"
	CodeInvalidConfiguration    = "INVALID_CONFIGURATION"
	CodeInternalError           = "INTERNAL_ERROR"
)

// Sentinel errors. Any AppError with the same type and code matches them under errors.Is.
var (
	ErrEmptyData               = NewAppError(ErrorTypeValidation, CodeEmptyData, "sample is empty")
	ErrLengthMismatch          = NewAppError(ErrorTypeValidation, CodeLengthMismatch, "paired samples differ in length")
	ErrInvalidParameter        = NewAppError(ErrorTypeValidation, CodeInvalidParameter, "parameter out of domain")
	ErrUnsupportedDistribution = NewAppError(ErrorTypeDomain, CodeUnsupportedDistribution, "unsupported distribution")
)

// AppError represents an application-specific error with additional context
type AppError struct {
	Type       ErrorType              `json:"type"`
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	Context    map[string]interface{} `json:"context,omitempty"`
	HTTPStatus int                    `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s - %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, code, message string) *AppError {
	return &AppError{
		Type:       errType,
		Code:       code,
		Message:    message,
		HTTPStatus: getDefaultHTTPStatus(errType),
	}
}

// WrapError wraps an existing error with application context
func WrapError(err error, errType ErrorType, code, message string) *AppError {
	return &AppError{
		Type:       errType,
		Code:       code,
		Message:    message,
		Cause:      err,
		HTTPStatus: getDefaultHTTPStatus(errType),
	}
}

// NewEmptyDataError reports a statistic requested over a zero-length sample.
func NewEmptyDataError(operation string) *AppError {
	return NewAppError(ErrorTypeValidation, CodeEmptyData, "sample is empty").
		WithDetails(operation+" requires at least one observation").
		WithContext("operation", operation)
}

// NewLengthMismatchError reports paired samples of unequal length.
func NewLengthMismatchError(n1, n2 int) *AppError {
	return NewAppError(ErrorTypeValidation, CodeLengthMismatch, "paired samples differ in length").
		WithDetails(fmt.Sprintf("got %d and %d observations", n1, n2)).
		WithContext("length_1", n1).
		WithContext("length_2", n2)
}

// NewInvalidParameterError reports an out-of-domain input.
func NewInvalidParameterError(name string, value interface{}, reason string) *AppError {
	return NewAppError(ErrorTypeValidation, CodeInvalidParameter, "parameter out of domain").
		WithDetails(fmt.Sprintf("%s=%v: %s", name, value, reason)).
		WithContext("parameter", name).
		WithContext("value", value)
}

// NewUnsupportedDistributionError reports a family the operation cannot handle.
func NewUnsupportedDistributionError(family, operation string) *AppError {
	return NewAppError(ErrorTypeDomain, CodeUnsupportedDistribution, "unsupported distribution").
		WithDetails(fmt.Sprintf("%s does not support %q", operation, family)).
		WithContext("distribution", family).
		WithContext("operation", operation)
}

// NewConfigError creates a configuration error
func NewConfigError(message string) *AppError {
	return NewAppError(ErrorTypeConfig, CodeInvalidConfiguration, message)
}

// NewInternalError creates an internal error
func NewInternalError(message string) *AppError {
	return NewAppError(ErrorTypeInternal, CodeInternalError, message)
}

// GetCode returns the error code if err wraps an AppError, otherwise CodeInternalError
func GetCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternalError
}

// AsAppError extracts the AppError from err, wrapping unknown errors as internal.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return WrapError(err, ErrorTypeInternal, CodeInternalError, err.Error())
}

// getDefaultHTTPStatus returns the default HTTP status for an error type
func getDefaultHTTPStatus(errType ErrorType) int {
	switch errType {
	case ErrorTypeValidation, ErrorTypeDomain:
		return 400
	case ErrorTypeConfig:
		return 503
	default:
		return 500
	}
}

// ErrorResponse represents an error response for APIs
type ErrorResponse struct {
	Error     *AppError `json:"error"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp string    `json:"timestamp"`
	Path      string    `json:"path,omitempty"`
}
