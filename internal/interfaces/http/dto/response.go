package dto

import (
	appwarehouse "github.com/ventdepot/backend/internal/application/warehouse"
)

// MessageResponse is returned by the mutating warehouse actions
type MessageResponse struct {
	Success    bool                           `json:"success"`
	Message    string                         `json:"message"`
	Status     string                         `json:"status,omitempty"`
	Allocation *appwarehouse.AllocationResult `json:"allocation,omitempty"`
}

// BinsResponse lists the bins available for automatic allocation
type BinsResponse struct {
	Success bool                           `json:"success"`
	Bins    []appwarehouse.CandidateBinDTO `json:"bins"`
}

// POAllocationResponse is a purchase order with its items and their placements
type POAllocationResponse struct {
	Success bool                             `json:"success"`
	PO      appwarehouse.PurchaseOrderDTO    `json:"po"`
	Items   []appwarehouse.ItemAllocationDTO `json:"items"`
}

// HealthResponse reports service liveness
type HealthResponse struct {
	Success  bool   `json:"success"`
	Status   string `json:"status"`
	Database string `json:"database"`
}

// ErrorResponse is the body of every failed request.
// Remaining is set only for allocation shortfalls.
type ErrorResponse struct {
	Success   bool               `json:"success"`
	Message   string             `json:"message"`
	Code      string             `json:"code,omitempty"`
	Remaining *int               `json:"remaining,omitempty"`
	RequestID string             `json:"request_id,omitempty"`
	Details   []ValidationDetail `json:"details,omitempty"`
}

// ValidationDetail represents a single field validation error
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// NewMessageResponse creates a success response carrying a message
func NewMessageResponse(message string) MessageResponse {
	return MessageResponse{Success: true, Message: message}
}

// NewBinsResponse creates the candidate bin listing. A nil slice is sent as [].
func NewBinsResponse(bins []appwarehouse.CandidateBinDTO) BinsResponse {
	if bins == nil {
		bins = []appwarehouse.CandidateBinDTO{}
	}
	return BinsResponse{Success: true, Bins: bins}
}

// NewPOAllocationResponse flattens the allocation view into the response body
func NewPOAllocationResponse(view *appwarehouse.PurchaseOrderAllocationView) POAllocationResponse {
	items := view.Items
	if items == nil {
		items = []appwarehouse.ItemAllocationDTO{}
	}
	return POAllocationResponse{Success: true, PO: view.PO, Items: items}
}

// NewErrorResponse creates an error response
func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{Success: false, Message: message, Code: code}
}

// NewErrorResponseWithRequestID creates an error response with request ID
func NewErrorResponseWithRequestID(code, message, requestID string) ErrorResponse {
	resp := NewErrorResponse(code, message)
	resp.RequestID = requestID
	return resp
}

// NewShortfallResponse creates the error response for an allocation shortfall
func NewShortfallResponse(message string, remaining int, requestID string) ErrorResponse {
	resp := NewErrorResponseWithRequestID(ErrCodeAllocationShortfall, message, requestID)
	resp.Remaining = &remaining
	return resp
}

// NewValidationErrorResponse creates a validation error response with field details
func NewValidationErrorResponse(message, requestID string, details []ValidationDetail) ErrorResponse {
	resp := NewErrorResponseWithRequestID(ErrCodeValidation, message, requestID)
	resp.Details = details
	return resp
}
