package warehouse

import (
	"context"
	"errors"
	"fmt"

	"github.com/ventdepot/backend/internal/domain/shared"
	"github.com/ventdepot/backend/internal/domain/warehouse"
	"go.uber.org/zap"
)

// LayoutRequest describes a block of identical racks to provision
type LayoutRequest struct {
	RackCodes    []string
	Levels       int // shelves per rack, numbered from 1
	BinsPerShelf int // bins per shelf, positions numbered from 1
	Capacity     int // zero uses the configured default
}

// LayoutResult summarizes what ProvisionLayout created
type LayoutResult struct {
	Racks   int
	Shelves int
	Bins    int
}

// LayoutService provisions the rack, shelf and bin hierarchy
type LayoutService struct {
	locations       warehouse.LocationRepository
	bins            warehouse.BinRepository
	defaultCapacity int
	logger          *zap.Logger
}

// NewLayoutService creates a LayoutService. Bins requested without a capacity get defaultCapacity.
func NewLayoutService(locations warehouse.LocationRepository, bins warehouse.BinRepository, defaultCapacity int, logger *zap.Logger) *LayoutService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaultCapacity <= 0 {
		defaultCapacity = warehouse.DefaultBinCapacity
	}
	return &LayoutService{
		locations:       locations,
		bins:            bins,
		defaultCapacity: defaultCapacity,
		logger:          logger,
	}
}

// ProvisionLayout creates every rack in req with its shelves and empty bins.
// Existing rack codes are rejected before anything is written.
func (s *LayoutService) ProvisionLayout(ctx context.Context, req LayoutRequest) (*LayoutResult, error) {
	if len(req.RackCodes) == 0 {
		return nil, warehouse.NewValidationError("At least one rack code is required")
	}
	if req.Levels <= 0 || req.BinsPerShelf <= 0 {
		return nil, warehouse.NewValidationError("Levels and bins per shelf must be positive")
	}
	if req.Capacity < 0 {
		return nil, warehouse.NewValidationError("Bin capacity cannot be negative")
	}
	capacity := req.Capacity
	if capacity == 0 {
		capacity = s.defaultCapacity
	}

	seen := make(map[string]bool, len(req.RackCodes))
	for _, code := range req.RackCodes {
		if seen[code] {
			return nil, warehouse.NewValidationError(fmt.Sprintf("Rack code %s listed twice", code))
		}
		seen[code] = true

		_, err := s.locations.FindRackByCode(ctx, code)
		if err == nil {
			return nil, warehouse.NewInvalidStateError(fmt.Sprintf("Rack %s already exists", code))
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
	}

	result := &LayoutResult{}
	for _, code := range req.RackCodes {
		rack, err := warehouse.NewRack(code, "Rack "+code)
		if err != nil {
			return nil, err
		}
		if err := s.locations.SaveRack(ctx, rack); err != nil {
			return nil, err
		}
		result.Racks++

		for level := 1; level <= req.Levels; level++ {
			shelf, err := warehouse.NewShelf(rack.ID, level, fmt.Sprintf("%s/%d", code, level))
			if err != nil {
				return nil, err
			}
			if err := s.locations.SaveShelf(ctx, shelf); err != nil {
				return nil, err
			}
			result.Shelves++

			for pos := 1; pos <= req.BinsPerShelf; pos++ {
				bin, err := warehouse.NewBin(shelf.ID, fmt.Sprintf("%s-%d-%02d", code, level, pos), pos, capacity)
				if err != nil {
					return nil, err
				}
				if err := s.bins.Save(ctx, bin); err != nil {
					return nil, err
				}
				result.Bins++
			}
		}
	}

	s.logger.Info("Warehouse layout provisioned",
		zap.Strings("racks", req.RackCodes),
		zap.Int("shelves", result.Shelves),
		zap.Int("bins", result.Bins),
		zap.Int("capacity", capacity),
	)
	return result, nil
}
