package warehouse

import (
	"strings"

	"github.com/ventdepot/backend/internal/domain/warehouse"
)

// RequestContext carries the caller identity into the allocator.
// It is built by the HTTP layer from the authenticated JWT claims.
type RequestContext struct {
	ActorID   string
	RequestID string
}

// Validate checks that an actor is present
func (rc RequestContext) Validate() error {
	if strings.TrimSpace(rc.ActorID) == "" {
		return warehouse.NewValidationError("Actor ID is required")
	}
	return nil
}
