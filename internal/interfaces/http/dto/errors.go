package dto

import "net/http"

// Error codes returned in the "code" field of failed responses.
// Domain error codes pass through unchanged.
const (
	ErrCodeValidation            = "VALIDATION_ERROR"
	ErrCodeInvalidState          = "INVALID_STATE"
	ErrCodeBadRequest            = "BAD_REQUEST"
	ErrCodeNotFound              = "NOT_FOUND"
	ErrCodeUnauthorized          = "UNAUTHORIZED"
	ErrCodeForbidden             = "FORBIDDEN"
	ErrCodeTokenExpired          = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid          = "INVALID_TOKEN"
	ErrCodeConcurrencyConflict   = "CONCURRENCY_CONFLICT"
	ErrCodeIdempotencyInProgress = "IDEMPOTENCY_IN_PROGRESS"
	ErrCodeIdempotencyMismatch   = "IDEMPOTENCY_KEY_REUSED"
	ErrCodeRequestTooLarge       = "REQUEST_TOO_LARGE"
	ErrCodeAllocationShortfall   = "ALLOCATION_SHORTFALL"
	ErrCodePersistence           = "PERSISTENCE_ERROR"
	ErrCodeInternal              = "INTERNAL_ERROR"
	ErrCodeUnavailable           = "SERVICE_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// Input errors -> 400 Bad Request
	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeInvalidState: http.StatusBadRequest,
	ErrCodeBadRequest:   http.StatusBadRequest,

	ErrCodeNotFound: http.StatusNotFound,

	// Auth errors
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,

	ErrCodeConcurrencyConflict:   http.StatusConflict,
	ErrCodeIdempotencyInProgress: http.StatusConflict,
	ErrCodeIdempotencyMismatch:   http.StatusUnprocessableEntity,
	ErrCodeRequestTooLarge:       http.StatusRequestEntityTooLarge,

	// A shortfall means the warehouse is out of room, not that the request was malformed
	ErrCodeAllocationShortfall: http.StatusInternalServerError,
	ErrCodePersistence:         http.StatusInternalServerError,
	ErrCodeInternal:            http.StatusInternalServerError,
	ErrCodeUnavailable:         http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
