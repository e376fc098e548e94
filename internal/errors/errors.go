package errors

import (
	"errors"
	"fmt"
)

// ErrCode represents an error code
type ErrCode string

const (
	ErrCodePermissionDenied ErrCode = "PERMISSION_DENIED"
	ErrCodeNotFound         ErrCode = "NOT_FOUND"
	ErrCodeRateLimited      ErrCode = "RATE_LIMITED"
	ErrCodeTransient        ErrCode = "TRANSIENT_FAILURE"
	ErrCodePoolExhausted    ErrCode = "POOL_EXHAUSTED"
	ErrCodeConfiguration    ErrCode = "CONFIGURATION_ERROR"
	ErrCodeInternal         ErrCode = "INTERNAL_ERROR"
)

// AppError represents an application error
type AppError struct {
	Code    ErrCode
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewPermissionDeniedError creates a new permission denied error
func NewPermissionDeniedError(message string, err error) *AppError {
	return &AppError{
		Code:    ErrCodePermissionDenied,
		Message: message,
		Err:     err,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// NewRateLimitedError creates a new rate limited error
func NewRateLimitedError(message string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeRateLimited,
		Message: message,
		Err:     err,
	}
}

// NewTransientError creates a new transient failure error
func NewTransientError(message string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeTransient,
		Message: message,
		Err:     err,
	}
}

// NewPoolExhaustedError creates a new pool exhausted error
func NewPoolExhaustedError(message string) *AppError {
	return &AppError{
		Code:    ErrCodePoolExhausted,
		Message: message,
	}
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(field, message string) *AppError {
	return &AppError{
		Code:    ErrCodeConfiguration,
		Message: fmt.Sprintf("%s: %s", field, message),
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
		Err:     err,
	}
}

func hasCode(err error, code ErrCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// IsPermissionDenied checks if the error is a permission denied error
func IsPermissionDenied(err error) bool {
	return hasCode(err, ErrCodePermissionDenied)
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	return hasCode(err, ErrCodeNotFound)
}

// IsRateLimited checks if the error is a rate limited error
func IsRateLimited(err error) bool {
	return hasCode(err, ErrCodeRateLimited)
}

// IsTransient checks if the error is a transient failure
func IsTransient(err error) bool {
	return hasCode(err, ErrCodeTransient)
}
