package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	appwarehouse "github.com/ventdepot/backend/internal/application/warehouse"
	"github.com/ventdepot/backend/internal/interfaces/http/dto"
	"github.com/ventdepot/backend/internal/interfaces/http/middleware"
)

// AllocationService is the part of the allocator the HTTP layer calls
type AllocationService interface {
	UpdatePurchaseOrderStatus(ctx context.Context, rc appwarehouse.RequestContext, poID int64, status string) (*appwarehouse.StatusUpdateResult, error)
	AllocateItemsToBins(ctx context.Context, rc appwarehouse.RequestContext, poID int64, requests []appwarehouse.ManualAllocation) (*appwarehouse.AllocationResult, error)
	ListCandidateBins(ctx context.Context) ([]appwarehouse.CandidateBinDTO, error)
	GetPurchaseOrderAllocation(ctx context.Context, poID int64) (*appwarehouse.PurchaseOrderAllocationView, error)
}

// WarehouseHandler serves the bin allocation actions
type WarehouseHandler struct {
	BaseHandler
	service AllocationService
}

// NewWarehouseHandler creates a new WarehouseHandler
func NewWarehouseHandler(service AllocationService) *WarehouseHandler {
	return &WarehouseHandler{service: service}
}

// UpdatePOStatus handles POST /update_po_status.
// Setting status to received allocates every outstanding unit to bins.
func (h *WarehouseHandler) UpdatePOStatus(c *gin.Context) {
	var req dto.UpdatePOStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.service.UpdatePurchaseOrderStatus(c.Request.Context(), requestContext(c), req.POID, req.Status)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{
		Success:    true,
		Message:    result.Message,
		Status:     string(result.Status),
		Allocation: result.Allocation,
	})
}

// AllocateItemsToBins handles POST /allocate_items_to_bins
func (h *WarehouseHandler) AllocateItemsToBins(c *gin.Context) {
	var req dto.AllocateItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.service.AllocateItemsToBins(c.Request.Context(), requestContext(c), req.POID, req.ToManualAllocations())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{
		Success:    true,
		Message:    fmt.Sprintf("Allocated %d units to bins", result.UnitsAllocated),
		Status:     string(result.OrderStatus),
		Allocation: result,
	})
}

// GetEmptyBins handles GET /get_empty_bins
func (h *WarehouseHandler) GetEmptyBins(c *gin.Context) {
	bins, err := h.service.ListCandidateBins(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewBinsResponse(bins))
}

// GetPOAllocation handles GET /get_po_allocation?po_id=
func (h *WarehouseHandler) GetPOAllocation(c *gin.Context) {
	var query dto.GetPOAllocationQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	view, err := h.service.GetPurchaseOrderAllocation(c.Request.Context(), query.POID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPOAllocationResponse(view))
}
