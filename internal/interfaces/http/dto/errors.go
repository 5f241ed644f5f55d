package dto

import (
	"net/http"

	"github.com/kasamthapa/krisi/internal/domain/shared"
)

// Error codes surfaced by the HTTP layer. Domain codes pass through unchanged.
const (
	ErrCodeValidation          = shared.CodeValidation
	ErrCodeNotFound            = shared.CodeNotFound
	ErrCodeUnauthorized        = shared.CodeUnauthorized
	ErrCodeInvalidTransition   = shared.CodeInvalidTransition
	ErrCodeInsufficientStock   = shared.CodeInsufficientStock
	ErrCodeAmountMismatch      = shared.CodeAmountMismatch
	ErrCodeConcurrencyConflict = shared.CodeConcurrencyConflict

	ErrCodeBadRequest = "BAD_REQUEST"
	ErrCodeInternal   = "INTERNAL_ERROR"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeValidation:          http.StatusBadRequest,
	ErrCodeBadRequest:          http.StatusBadRequest,
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeUnauthorized:        http.StatusForbidden,
	ErrCodeInvalidTransition:   http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeInsufficientStock:   http.StatusUnprocessableEntity,
	ErrCodeAmountMismatch:      http.StatusUnprocessableEntity,
	ErrCodeInternal:            http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
