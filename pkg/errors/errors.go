package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unique error code
type ErrorCode int

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

// Common error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrBadRequest
	ErrUnauthorized
	ErrForbidden
	ErrConflict
	ErrInternal
	// ErrValidation: locally recoverable, inline field errors, no retry.
	ErrValidation
	// ErrUnavailable: a collaborator could not be reached; manual retry of
	// the same step is allowed.
	ErrUnavailable
	// ErrPaymentVerification: recoverable only through a brand-new payment
	// order; the failed order must never be retried.
	ErrPaymentVerification
	// ErrVerificationTimeout: the charge is ambiguous. Fatal to the
	// automated flow; the user is directed to support instead of a retry.
	ErrVerificationTimeout
)

// StatusCode maps the error class to an HTTP status. The error-handling
// middleware picks this up via the StatusCode() interface.
func (e *AppError) StatusCode() int {
	switch e.Code {
	case ErrNotFound:
		return http.StatusNotFound
	case ErrBadRequest, ErrValidation:
		return http.StatusBadRequest
	case ErrUnauthorized:
		return http.StatusUnauthorized
	case ErrForbidden:
		return http.StatusForbidden
	case ErrConflict:
		return http.StatusConflict
	case ErrUnavailable:
		return http.StatusBadGateway
	case ErrPaymentVerification:
		return http.StatusUnprocessableEntity
	case ErrVerificationTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func NewNotFound(resource string, err error) *AppError {
	return &AppError{Code: ErrNotFound, Message: fmt.Sprintf("%s not found", resource), Err: err}
}

func NewBadRequest(message string, err error) *AppError {
	return &AppError{Code: ErrBadRequest, Message: message, Err: err}
}

func NewConflict(message string, err error) *AppError {
	return &AppError{Code: ErrConflict, Message: message, Err: err}
}

func NewInternal(err error) *AppError {
	return &AppError{Code: ErrInternal, Message: "internal server error", Err: err}
}

func NewUnauthorized(err error) *AppError {
	return &AppError{Code: ErrUnauthorized, Message: "unauthorized", Err: err}
}

// NewValidation reports a field-level validation failure. Fields maps field
// name to message so the form can render inline errors.
func NewValidation(message string, fields map[string]string) *AppError {
	return &AppError{Code: ErrValidation, Message: message, Err: &FieldErrors{Fields: fields}}
}

func NewUnavailable(collaborator string, err error) *AppError {
	return &AppError{Code: ErrUnavailable, Message: fmt.Sprintf("%s unavailable", collaborator), Err: err}
}

func NewPaymentVerification(message string, err error) *AppError {
	return &AppError{Code: ErrPaymentVerification, Message: message, Err: err}
}

func NewVerificationTimeout(message string) *AppError {
	return &AppError{Code: ErrVerificationTimeout, Message: message}
}

// FieldErrors carries per-field validation messages inside an AppError.
type FieldErrors struct {
	Fields map[string]string
}

func (f *FieldErrors) Error() string {
	return fmt.Sprintf("%d invalid fields", len(f.Fields))
}

// FieldsOf extracts per-field messages when err wraps a FieldErrors.
func FieldsOf(err error) map[string]string {
	var fe *FieldErrors
	if errors.As(err, &fe) {
		return fe.Fields
	}
	return nil
}

// CodeOf returns the AppError code, or ErrInternal for foreign errors.
func CodeOf(err error) ErrorCode {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ErrInternal
}
