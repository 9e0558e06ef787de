package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unique error code
type ErrorCode int

// Common error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrValidation
	ErrStorageUnavailable
	ErrStorageWrite
	ErrStorageCorrupt
	ErrDelivery
	ErrInternal
)

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode maps the error code to an HTTP status. Storage errors are
// infrastructure failures and collapse to 500; the detail stays in the
// server logs.
func (e *AppError) StatusCode() int {
	switch e.Code {
	case ErrNotFound:
		return http.StatusNotFound
	case ErrValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Error constructors
func NotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func Validation(message string, err error) *AppError {
	return &AppError{
		Code:    ErrValidation,
		Message: message,
		Err:     err,
	}
}

func StorageUnavailable(err error) *AppError {
	return &AppError{
		Code:    ErrStorageUnavailable,
		Message: "storage unavailable",
		Err:     err,
	}
}

func StorageWrite(err error) *AppError {
	return &AppError{
		Code:    ErrStorageWrite,
		Message: "storage write failed",
		Err:     err,
	}
}

func StorageCorrupt(err error) *AppError {
	return &AppError{
		Code:    ErrStorageCorrupt,
		Message: "storage corrupt",
		Err:     err,
	}
}

func Delivery(message string, err error) *AppError {
	return &AppError{
		Code:    ErrDelivery,
		Message: message,
		Err:     err,
	}
}

func Internal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}

// IsCode reports whether err is an AppError carrying the given code.
func IsCode(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
