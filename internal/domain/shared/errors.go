package shared

import "errors"

// Error codes surfaced to callers of the marketplace core
const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeNotFound            = "NOT_FOUND"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeInvalidTransition   = "INVALID_TRANSITION"
	CodeInsufficientStock   = "INSUFFICIENT_STOCK"
	CodeAmountMismatch      = "AMOUNT_MISMATCH"
	CodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target is a DomainError with the same code
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a VALIDATION_ERROR with the given message
func NewValidationError(message string) *DomainError {
	return NewDomainError(CodeValidation, message)
}

// NewNotFoundError creates a NOT_FOUND error with the given message
func NewNotFoundError(message string) *DomainError {
	return NewDomainError(CodeNotFound, message)
}

// NewUnauthorizedError creates an UNAUTHORIZED error with the given message
func NewUnauthorizedError(message string) *DomainError {
	return NewDomainError(CodeUnauthorized, message)
}

// NewInvalidTransitionError creates an INVALID_TRANSITION error with the given message
func NewInvalidTransitionError(message string) *DomainError {
	return NewDomainError(CodeInvalidTransition, message)
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError(CodeNotFound, "Resource not found")
	ErrUnauthorized        = NewDomainError(CodeUnauthorized, "Not authorized to perform this action")
	ErrInsufficientStock   = NewDomainError(CodeInsufficientStock, "Insufficient stock available")
	ErrAmountMismatch      = NewDomainError(CodeAmountMismatch, "Payment amount does not match order total")
	ErrConcurrencyConflict = NewDomainError(CodeConcurrencyConflict, "Resource was modified by another process")
)

// ErrorCode extracts the domain error code from err, looking through wrapped errors.
// Returns an empty string when err carries no DomainError.
func ErrorCode(err error) string {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}

// IsCode reports whether err (or anything it wraps) is a DomainError with the given code
func IsCode(err error, code string) bool {
	return err != nil && ErrorCode(err) == code
}
