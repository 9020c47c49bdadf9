package models

import (
	"errors"
	"fmt"
)

// Error categories for remote and infrastructure failures. Validation
// rejections never use these; they travel as ValidationResult values.
const (
	CodeAuthFailure     = "AUTH_FAILURE"
	CodeSessionExpired  = "SESSION_EXPIRED"
	CodeValidationError = "VALIDATION_ERROR"
	CodeBookingConflict = "BOOKING_CONFLICT"
	CodeNetworkError    = "NETWORK_ERROR"
	CodeRateLimited     = "RATE_LIMITED"
	CodeStorageError    = "STORAGE_ERROR"
	CodeSystemError     = "SYSTEM_ERROR"
)

// ServiceError carries an error category plus a user-facing message. Detail
// holds operator-facing context (draft ids for reconciliation, upstream error
// text) and is never shown to the rider.
type ServiceError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func (e *ServiceError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewServiceError builds a categorized error.
func NewServiceError(code, message string) *ServiceError {
	return &ServiceError{Code: code, Message: message}
}

// WithDetail returns a copy of the error carrying operator-facing detail.
func (e *ServiceError) WithDetail(detail string) *ServiceError {
	dup := *e
	dup.Detail = detail
	return &dup
}

// CodeOf extracts the category of err, or SYSTEM_ERROR when err carries none.
func CodeOf(err error) string {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Code
	}
	return CodeSystemError
}
