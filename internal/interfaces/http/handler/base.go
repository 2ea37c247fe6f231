package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	appwarehouse "github.com/ventdepot/backend/internal/application/warehouse"
	"github.com/ventdepot/backend/internal/domain/shared"
	"github.com/ventdepot/backend/internal/domain/warehouse"
	"github.com/ventdepot/backend/internal/infrastructure/logger"
	"github.com/ventdepot/backend/internal/interfaces/http/dto"
	"github.com/ventdepot/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID returns the request ID assigned by the RequestID middleware
func getRequestID(c *gin.Context) string {
	if id := middleware.GetRequestID(c); id != "" {
		return id
	}
	return c.GetHeader(middleware.RequestIDHeader)
}

// requestContext builds the allocator request context from the JWT claims
func requestContext(c *gin.Context) appwarehouse.RequestContext {
	return appwarehouse.RequestContext{
		ActorID:   middleware.GetJWTUserID(c),
		RequestID: getRequestID(c),
	}
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// HandleError converts service errors to HTTP responses.
// Shortfalls are checked before the generic domain error so Remaining is reported.
// Store failures are logged and hidden behind a generic message.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	requestID := getRequestID(c)

	var shortfall *warehouse.AllocationShortfallError
	if errors.As(err, &shortfall) {
		c.JSON(dto.GetHTTPStatus(dto.ErrCodeAllocationShortfall),
			dto.NewShortfallResponse(shortfall.Reason, shortfall.Remaining, requestID))
		return
	}

	var persistenceErr *warehouse.PersistenceError
	if errors.As(err, &persistenceErr) {
		logger.FromContext(c.Request.Context()).Error("Warehouse store failure",
			zap.String("operation", persistenceErr.Op),
			zap.Error(persistenceErr.Err),
		)
		h.Error(c, http.StatusInternalServerError, dto.ErrCodePersistence, "A database error occurred")
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		c.JSON(dto.GetHTTPStatus(domainErr.Code),
			dto.NewErrorResponseWithRequestID(domainErr.Code, domainErr.Message, requestID))
		return
	}

	logger.FromContext(c.Request.Context()).Error("Unhandled error", zap.Error(err))
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred")
}
