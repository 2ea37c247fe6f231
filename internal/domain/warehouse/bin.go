package warehouse

import (
	"fmt"
	"strings"

	"github.com/ventdepot/backend/internal/domain/shared"
)

// DefaultBinCapacity is the nominal number of units a bin holds when none is configured
const DefaultBinCapacity = 100

// BinStatus represents how much of a bin's capacity is committed
type BinStatus string

const (
	BinStatusEmpty   BinStatus = "empty"
	BinStatusPartial BinStatus = "partial"
	BinStatusFull    BinStatus = "full"
)

// IsValid checks if the status is a valid BinStatus
func (s BinStatus) IsValid() bool {
	switch s {
	case BinStatusEmpty, BinStatusPartial, BinStatusFull:
		return true
	}
	return false
}

// String returns the string representation of BinStatus
func (s BinStatus) String() string {
	return string(s)
}

// AcceptsStock returns true if a bin in this status is an allocation candidate
func (s BinStatus) AcceptsStock() bool {
	return s == BinStatusEmpty || s == BinStatusPartial
}

// DeriveBinStatus computes the status from committed quantity.
// full only when used == capacity, empty when nothing is committed.
func DeriveBinStatus(used, capacity int) BinStatus {
	switch {
	case used <= 0:
		return BinStatusEmpty
	case used >= capacity:
		return BinStatusFull
	default:
		return BinStatusPartial
	}
}

// CandidateBinStatuses lists the statuses eligible for automatic allocation, in declaration order
func CandidateBinStatuses() []BinStatus {
	statuses := make([]BinStatus, 0, 2)
	for _, s := range []BinStatus{BinStatusEmpty, BinStatusPartial, BinStatusFull} {
		if s.AcceptsStock() {
			statuses = append(statuses, s)
		}
	}
	return statuses
}

// Bin is the smallest addressable storage unit
type Bin struct {
	shared.BaseEntity
	ShelfID  int64
	Code     string
	Position int
	Capacity int
	Used     int
	Status   BinStatus

	// Location keys, populated by reads that join the rack/shelf hierarchy
	RackCode   string
	ShelfLevel int
}

// NewBin creates an empty bin. A non-positive capacity falls back to DefaultBinCapacity.
func NewBin(shelfID int64, code string, position, capacity int) (*Bin, error) {
	code = strings.TrimSpace(code)
	if shelfID <= 0 {
		return nil, NewValidationError("Shelf ID is required")
	}
	if code == "" {
		return nil, NewValidationError("Bin code cannot be empty")
	}
	if position < 0 {
		return nil, NewValidationError("Bin position cannot be negative")
	}
	if capacity <= 0 {
		capacity = DefaultBinCapacity
	}
	return &Bin{
		BaseEntity: shared.NewBaseEntity(),
		ShelfID:    shelfID,
		Code:       code,
		Position:   position,
		Capacity:   capacity,
		Status:     BinStatusEmpty,
	}, nil
}

// Free returns the uncommitted capacity
func (b *Bin) Free() int {
	free := b.Capacity - b.Used
	if free < 0 {
		return 0
	}
	return free
}

// IsFull returns true if no capacity remains
func (b *Bin) IsFull() bool {
	return b.Free() == 0
}

// Place commits quantity units to the bin and re-derives its status
func (b *Bin) Place(quantity int) error {
	if quantity <= 0 {
		return NewValidationError("Placed quantity must be positive")
	}
	if quantity > b.Free() {
		return NewAllocationShortfallError(quantity-b.Free(),
			fmt.Sprintf("bin %s has only %d free units", b.Code, b.Free()))
	}
	b.Used += quantity
	b.Status = DeriveBinStatus(b.Used, b.Capacity)
	b.Touch()
	return nil
}

// Slot returns the planner view of this bin
func (b *Bin) Slot() BinSlot {
	return BinSlot{BinID: b.ID, Capacity: b.Capacity, Used: b.Used}
}

// ApplySlot copies planned usage back onto the bin
func (b *Bin) ApplySlot(slot BinSlot) {
	if slot.Used == b.Used {
		return
	}
	b.Used = slot.Used
	b.Status = DeriveBinStatus(b.Used, b.Capacity)
	b.Touch()
}
