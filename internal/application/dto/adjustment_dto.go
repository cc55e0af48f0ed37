package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/warehouse-pro/internal/domain/entity"
)

// AdjustmentLineRequest línea de ajuste en creación/edición.
type AdjustmentLineRequest struct {
	ProductID      string          `json:"product_id" validate:"required"`
	LocationID     string          `json:"location_id" validate:"required"`
	BatchNumber    string          `json:"batch_number,omitempty"`
	SerialNumber   string          `json:"serial_number,omitempty"`
	QuantityChange decimal.Decimal `json:"quantity_change" validate:"required"`
	Reason         string          `json:"reason,omitempty"`
}

// CreateAdjustmentRequest body para POST /api/adjustments.
type CreateAdjustmentRequest struct {
	Reason string                  `json:"reason" validate:"required,min=1,max=500"`
	Notes  string                  `json:"notes,omitempty"`
	Lines  []AdjustmentLineRequest `json:"lines,omitempty"`
}

// QuickAdjustRequest body para POST /api/adjustments/quick: crea, aprueba y
// postea un ajuste de una línea en una sola llamada.
type QuickAdjustRequest struct {
	ProductID      string          `json:"product_id" validate:"required"`
	LocationID     string          `json:"location_id" validate:"required"`
	BatchNumber    string          `json:"batch_number,omitempty"`
	SerialNumber   string          `json:"serial_number,omitempty"`
	QuantityChange decimal.Decimal `json:"quantity_change" validate:"required"`
	Reason         string          `json:"reason" validate:"required,min=1,max=500"`
}

// AdjustmentLineResponse línea de ajuste en respuestas.
type AdjustmentLineResponse struct {
	ID             string          `json:"id"`
	LineNumber     int             `json:"line_number"`
	ProductID      string          `json:"product_id"`
	LocationID     string          `json:"location_id"`
	BatchNumber    string          `json:"batch_number,omitempty"`
	SerialNumber   string          `json:"serial_number,omitempty"`
	QuantityBefore decimal.Decimal `json:"quantity_before"`
	QuantityChange decimal.Decimal `json:"quantity_change"`
	UnitCost       decimal.Decimal `json:"unit_cost"`
	Reason         string          `json:"reason,omitempty"`
	IsProcessed    bool            `json:"is_processed"`
	ProcessedAt    *time.Time      `json:"processed_at,omitempty"`
	MovementID     string          `json:"movement_id,omitempty"`
}

// AdjustmentResponse salida de un ajuste con sus líneas.
type AdjustmentResponse struct {
	ID            string                   `json:"id"`
	Number        string                   `json:"number"`
	Status        string                   `json:"status"`
	Reason        string                   `json:"reason"`
	Notes         string                   `json:"notes,omitempty"`
	Lines         []AdjustmentLineResponse `json:"lines"`
	TotalLines    int                      `json:"total_lines"`
	TotalQuantity decimal.Decimal          `json:"total_quantity"`
	TotalValue    decimal.Decimal          `json:"total_value"`
	SourceType    string                   `json:"source_type,omitempty"`
	SourceID      string                   `json:"source_id,omitempty"`
	CreatedAt     time.Time                `json:"created_at"`
	UpdatedAt     time.Time                `json:"updated_at"`
	CreatedBy     string                   `json:"created_by"`
	SubmittedAt   *time.Time               `json:"submitted_at,omitempty"`
	ApprovedAt    *time.Time               `json:"approved_at,omitempty"`
	ApprovedBy    string                   `json:"approved_by,omitempty"`
	PostedAt      *time.Time               `json:"posted_at,omitempty"`
	PostedBy      string                   `json:"posted_by,omitempty"`
	CancelledAt   *time.Time               `json:"cancelled_at,omitempty"`
}

// AdjustmentListResponse lista paginada de ajustes.
type AdjustmentListResponse struct {
	Items []AdjustmentResponse `json:"items"`
	Page  PageResponse         `json:"page"`
}

// ToAdjustmentResponse mapea la entidad a su DTO de salida.
func ToAdjustmentResponse(a *entity.StockAdjustment) AdjustmentResponse {
	resp := AdjustmentResponse{
		ID:            a.ID,
		Number:        a.Number,
		Status:        string(a.Status),
		Reason:        a.Reason,
		Notes:         a.Notes,
		Lines:         make([]AdjustmentLineResponse, 0, len(a.Lines)),
		TotalLines:    a.TotalLines,
		TotalQuantity: a.TotalQuantity,
		TotalValue:    a.TotalValue,
		SourceType:    a.SourceType,
		SourceID:      a.SourceID,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
		CreatedBy:     a.CreatedBy,
		SubmittedAt:   a.SubmittedAt,
		ApprovedAt:    a.ApprovedAt,
		ApprovedBy:    a.ApprovedBy,
		PostedAt:      a.PostedAt,
		PostedBy:      a.PostedBy,
		CancelledAt:   a.CancelledAt,
	}
	for _, l := range a.Lines {
		resp.Lines = append(resp.Lines, AdjustmentLineResponse{
			ID:             l.ID,
			LineNumber:     l.LineNumber,
			ProductID:      l.ProductID,
			LocationID:     l.LocationID,
			BatchNumber:    l.BatchNumber,
			SerialNumber:   l.SerialNumber,
			QuantityBefore: l.QuantityBefore,
			QuantityChange: l.QuantityChange,
			UnitCost:       l.UnitCost,
			Reason:         l.Reason,
			IsProcessed:    l.IsProcessed,
			ProcessedAt:    l.ProcessedAt,
			MovementID:     l.MovementID,
		})
	}
	return resp
}
