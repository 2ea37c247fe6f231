package warehouse

import (
	"strings"

	"github.com/ventdepot/backend/internal/domain/shared"
)

// Rack is the top of the physical storage hierarchy. Its code is the primary fill-order key.
type Rack struct {
	shared.BaseEntity
	Code string
	Name string
}

// NewRack creates a new rack
func NewRack(code, name string) (*Rack, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, NewValidationError("Rack code cannot be empty")
	}
	if len(code) > 50 {
		return nil, NewValidationError("Rack code cannot exceed 50 characters")
	}
	return &Rack{
		BaseEntity: shared.NewBaseEntity(),
		Code:       code,
		Name:       name,
	}, nil
}

// Shelf belongs to a rack. Its level is the secondary fill-order key.
type Shelf struct {
	shared.BaseEntity
	RackID int64
	Level  int
	Name   string
}

// NewShelf creates a new shelf on a rack
func NewShelf(rackID int64, level int, name string) (*Shelf, error) {
	if rackID <= 0 {
		return nil, NewValidationError("Rack ID is required")
	}
	if level < 0 {
		return nil, NewValidationError("Shelf level cannot be negative")
	}
	return &Shelf{
		BaseEntity: shared.NewBaseEntity(),
		RackID:     rackID,
		Level:      level,
		Name:       name,
	}, nil
}
