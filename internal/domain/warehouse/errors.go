package warehouse

import (
	"fmt"

	"github.com/ventdepot/backend/internal/domain/shared"
)

// Error codes surfaced by the allocator. Handlers map these to HTTP status codes.
const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeInvalidState        = "INVALID_STATE"
	CodeNotFound            = "NOT_FOUND"
	CodeAllocationShortfall = "ALLOCATION_SHORTFALL"
	CodePersistence         = "PERSISTENCE_ERROR"
)

// Shortfall reasons
const (
	ReasonNoBinsAvailable      = "no bins available"
	ReasonInsufficientCapacity = "insufficient bin capacity to allocate all items"
)

// ErrAllocationShortfall is the sentinel matched by errors.Is for any AllocationShortfallError
var ErrAllocationShortfall = shared.NewDomainError(CodeAllocationShortfall, "Not enough bin capacity to place all units")

// NewValidationError creates a validation error with the given message
func NewValidationError(message string) *shared.DomainError {
	return shared.NewDomainError(CodeValidation, message)
}

// NewInvalidStateError creates an error for an operation not allowed in the current state
func NewInvalidStateError(message string) *shared.DomainError {
	return shared.NewDomainError(CodeInvalidState, message)
}

// NewNotFoundError creates a not-found error naming the missing entity
func NewNotFoundError(entity string, id int64) *shared.DomainError {
	return shared.NewDomainError(CodeNotFound, fmt.Sprintf("%s %d not found", entity, id))
}

// AllocationShortfallError reports that the candidate bins could not absorb every unit.
// Remaining is the number of units left unplaced when the bins ran out.
type AllocationShortfallError struct {
	Remaining int
	Reason    string
}

// NewAllocationShortfallError creates a shortfall error
func NewAllocationShortfallError(remaining int, reason string) *AllocationShortfallError {
	return &AllocationShortfallError{Remaining: remaining, Reason: reason}
}

// Error implements the error interface
func (e *AllocationShortfallError) Error() string {
	return fmt.Sprintf("%s: %d units remaining", e.Reason, e.Remaining)
}

// Unwrap exposes the shortfall sentinel so callers can match on the domain code
func (e *AllocationShortfallError) Unwrap() error {
	return ErrAllocationShortfall
}

// PersistenceError wraps a failure of the underlying store
type PersistenceError struct {
	Op  string
	Err error
}

// NewPersistenceError wraps err with the operation that failed
func NewPersistenceError(op string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Err: err}
}

// Error implements the error interface
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying store error
func (e *PersistenceError) Unwrap() error {
	return e.Err
}
