// Package apperror provides the structured error type shared by every layer.
// Services return *AppError for every business failure; the HTTP layer maps
// Code and HTTPStatus onto the error envelope.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeInternal               = "INTERNAL_ERROR"
	CodeValidation             = "VALIDATION_ERROR"
	CodeInsufficientStock      = "INSUFFICIENT_STOCK"
	CodeInsufficientBalance    = "INSUFFICIENT_BALANCE"
	CodeInvalidState           = "INVALID_STATE"
	CodeUnauthorized           = "UNAUTHORIZED"
	CodeForbidden              = "FORBIDDEN"
	CodeNotFound               = "NOT_FOUND"
	CodeConflict               = "CONFLICT"
	CodeDuplicate              = "DUPLICATE_ENTRY"
	CodeConcurrentModification = "CONCURRENT_MODIFICATION"
	CodeIdempotency            = "IDEMPOTENCY_CONFLICT"
)

var statusByCode = map[string]int{
	CodeInternal:               http.StatusInternalServerError,
	CodeValidation:             http.StatusBadRequest,
	CodeInsufficientStock:      http.StatusBadRequest,
	CodeInsufficientBalance:    http.StatusBadRequest,
	CodeInvalidState:           http.StatusBadRequest,
	CodeUnauthorized:           http.StatusUnauthorized,
	CodeForbidden:              http.StatusForbidden,
	CodeNotFound:               http.StatusNotFound,
	CodeConflict:               http.StatusConflict,
	CodeDuplicate:              http.StatusConflict,
	CodeConcurrentModification: http.StatusConflict,
	CodeIdempotency:            http.StatusConflict,
}

// AppError is a business failure with a machine-readable code.
type AppError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus defaults to the status registered for Code.
	HTTPStatus int `json:"-"`

	// Err is logged, never sent to clients.
	Err error `json:"-"`
}

// New builds an error for code. Unknown codes map to 500.
func New(code, message string) *AppError {
	status, ok := statusByCode[code]
	if !ok {
		status = http.StatusInternalServerError
	}
	return &AppError{Code: code, Message: message, HTTPStatus: status}
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Code + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
}

func (e *AppError) Unwrap() error { return e.Err }

// WithDetail sets one details entry.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any, 1)
	}
	e.Details[key] = value
	return e
}

// WithCause attaches the underlying error.
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

func NewValidation(message string) *AppError { return New(CodeValidation, message) }

func NewUnauthorized(message string) *AppError { return New(CodeUnauthorized, message) }

func NewForbidden(message string) *AppError { return New(CodeForbidden, message) }

func NewConflict(message string) *AppError { return New(CodeConflict, message) }

// NewInvalidState reports an illegal status transition, such as returning a
// machine that is not in use.
func NewInvalidState(message string) *AppError { return New(CodeInvalidState, message) }

func NewNotFound(entity string, id any) *AppError {
	return New(CodeNotFound, entity+" not found").
		WithDetail("entity", entity).
		WithDetail("id", id)
}

// NewInsufficientStock is returned when no single lot covers a stock-out.
func NewInsufficientStock(material string, requested, available any) *AppError {
	return New(CodeInsufficientStock, "Insufficient stock").
		WithDetail("material", material).
		WithDetail("requested", requested).
		WithDetail("available", available)
}

// NewInsufficientBalance is returned when a wallet or bank cannot cover a payment.
func NewInsufficientBalance(source string, required, available any) *AppError {
	return New(CodeInsufficientBalance, "Insufficient balance").
		WithDetail("source", source).
		WithDetail("required", required).
		WithDetail("available", available)
}

func NewConcurrentModification(entity string, id any) *AppError {
	return New(CodeConcurrentModification, "Record was modified by another user. Please refresh and try again.").
		WithDetail("entity", entity).
		WithDetail("id", id)
}

func NewDuplicate(entity, field, value string) *AppError {
	return New(CodeDuplicate, fmt.Sprintf("%s with this %s already exists", entity, field)).
		WithDetail("entity", entity).
		WithDetail("field", field).
		WithDetail("value", value)
}

// NewInternal hides err behind a generic message.
func NewInternal(err error) *AppError {
	return New(CodeInternal, "Internal server error").WithCause(err)
}

// NewIdempotencyConflict is returned while a request with the same key is in flight.
func NewIdempotencyConflict(key string) *AppError {
	return New(CodeIdempotency, "Operation already in progress or completed").
		WithDetail("idempotency_key", key)
}

// NewIdempotencyMismatch is returned when a key is reused for a different request.
func NewIdempotencyMismatch(key string) *AppError {
	return New(CodeIdempotency, "Idempotency key mismatch").
		WithDetail("idempotency_key", key)
}

// AsAppError finds the first *AppError in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus returns 500 for errors that are not *AppError.
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

func HasCode(err error, code string) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

func IsNotFound(err error) bool { return HasCode(err, CodeNotFound) }

func IsConcurrentModification(err error) bool {
	return HasCode(err, CodeConcurrentModification)
}
