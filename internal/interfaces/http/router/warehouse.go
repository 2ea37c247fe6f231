package router

import (
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ventdepot/backend/internal/domain/shared"
	"github.com/ventdepot/backend/internal/infrastructure/auth"
	"github.com/ventdepot/backend/internal/interfaces/http/handler"
	"github.com/ventdepot/backend/internal/interfaces/http/middleware"
)

// WarehouseRoutes builds the /warehouse group. POST actions require warehouse:allocate
// and honour Idempotency-Key; reads require warehouse:read.
func WarehouseRoutes(h *handler.WarehouseHandler, store shared.IdempotencyStore, idempotencyTTL time.Duration) *DomainGroup {
	allocate := []gin.HandlerFunc{middleware.RequirePermission(auth.PermissionWarehouseAllocate)}
	if store != nil {
		allocate = append(allocate, middleware.Idempotency(store, idempotencyTTL))
	}
	mutating := func(action gin.HandlerFunc) []gin.HandlerFunc {
		return slices.Concat(allocate, []gin.HandlerFunc{action})
	}
	read := middleware.RequirePermission(auth.PermissionWarehouseRead)

	return NewDomainGroup("warehouse", "/warehouse").
		POST("/update_po_status", mutating(h.UpdatePOStatus)...).
		POST("/allocate_items_to_bins", mutating(h.AllocateItemsToBins)...).
		GET("/get_empty_bins", read, h.GetEmptyBins).
		GET("/get_po_allocation", read, h.GetPOAllocation)
}
