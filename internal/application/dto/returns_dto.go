package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/warehouse-pro/internal/domain/entity"
)

// ReturnLineRequest línea esperada de una devolución.
type ReturnLineRequest struct {
	ProductID        string          `json:"product_id" validate:"required"`
	BatchNumber      string          `json:"batch_number,omitempty"`
	QuantityExpected decimal.Decimal `json:"quantity_expected" validate:"required"`
}

// CreateReturnRequest body para POST /api/returns.
type CreateReturnRequest struct {
	CustomerReference   string              `json:"customer_reference,omitempty"`
	ReceivingLocationID string              `json:"receiving_location_id" validate:"required"`
	Reason              string              `json:"reason,omitempty"`
	Notes               string              `json:"notes,omitempty"`
	Lines               []ReturnLineRequest `json:"lines,omitempty"`
}

// ReceiveReturnLineRequest registra una recepción (parcial permitida).
type ReceiveReturnLineRequest struct {
	Quantity decimal.Decimal `json:"quantity" validate:"required"`
}

// ProcessReturnLineRequest clasifica una línea recibida.
type ProcessReturnLineRequest struct {
	QuantityAccepted decimal.Decimal `json:"quantity_accepted"`
	QuantityRejected decimal.Decimal `json:"quantity_rejected"`
	Disposition      string          `json:"disposition" validate:"required,oneof=RESTOCK SCRAP QUARANTINE"`
}

// ReturnLineResponse línea de devolución en respuestas.
type ReturnLineResponse struct {
	ID               string          `json:"id"`
	LineNumber       int             `json:"line_number"`
	ProductID        string          `json:"product_id"`
	BatchNumber      string          `json:"batch_number,omitempty"`
	QuantityExpected decimal.Decimal `json:"quantity_expected"`
	QuantityReceived decimal.Decimal `json:"quantity_received"`
	QuantityAccepted decimal.Decimal `json:"quantity_accepted"`
	QuantityRejected decimal.Decimal `json:"quantity_rejected"`
	Status           string          `json:"status"`
	Disposition      string          `json:"disposition"`
	Notes            string          `json:"notes,omitempty"`
	ReceivedAt       *time.Time      `json:"received_at,omitempty"`
	ProcessedAt      *time.Time      `json:"processed_at,omitempty"`
}

// ReturnResponse salida de una orden de devolución con sus líneas.
type ReturnResponse struct {
	ID                  string               `json:"id"`
	Number              string               `json:"number"`
	Status              string               `json:"status"`
	CustomerReference   string               `json:"customer_reference,omitempty"`
	ReceivingLocationID string               `json:"receiving_location_id"`
	Reason              string               `json:"reason,omitempty"`
	Notes               string               `json:"notes,omitempty"`
	Lines               []ReturnLineResponse `json:"lines"`
	CreatedAt           time.Time            `json:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at"`
	CreatedBy           string               `json:"created_by"`
	InTransitAt         *time.Time           `json:"in_transit_at,omitempty"`
	ReceivedAt          *time.Time           `json:"received_at,omitempty"`
	CompletedAt         *time.Time           `json:"completed_at,omitempty"`
	CancelledAt         *time.Time           `json:"cancelled_at,omitempty"`
}

// ReturnListResponse lista paginada de devoluciones.
type ReturnListResponse struct {
	Items []ReturnResponse `json:"items"`
	Page  PageResponse     `json:"page"`
}

// ToReturnResponse mapea la orden a su DTO de salida.
func ToReturnResponse(o *entity.ReturnOrder) ReturnResponse {
	resp := ReturnResponse{
		ID:                  o.ID,
		Number:              o.Number,
		Status:              string(o.Status),
		CustomerReference:   o.CustomerReference,
		ReceivingLocationID: o.ReceivingLocationID,
		Reason:              o.Reason,
		Notes:               o.Notes,
		Lines:               make([]ReturnLineResponse, 0, len(o.Lines)),
		CreatedAt:           o.CreatedAt,
		UpdatedAt:           o.UpdatedAt,
		CreatedBy:           o.CreatedBy,
		InTransitAt:         o.InTransitAt,
		ReceivedAt:          o.ReceivedAt,
		CompletedAt:         o.CompletedAt,
		CancelledAt:         o.CancelledAt,
	}
	for _, l := range o.Lines {
		resp.Lines = append(resp.Lines, ReturnLineResponse{
			ID:               l.ID,
			LineNumber:       l.LineNumber,
			ProductID:        l.ProductID,
			BatchNumber:      l.BatchNumber,
			QuantityExpected: l.QuantityExpected,
			QuantityReceived: l.QuantityReceived,
			QuantityAccepted: l.QuantityAccepted,
			QuantityRejected: l.QuantityRejected,
			Status:           string(l.Status),
			Disposition:      string(l.Disposition),
			Notes:            l.Notes,
			ReceivedAt:       l.ReceivedAt,
			ProcessedAt:      l.ProcessedAt,
		})
	}
	return resp
}
