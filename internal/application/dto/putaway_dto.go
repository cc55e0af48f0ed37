package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/warehouse-pro/internal/domain/entity"
	"github.com/tu-usuario/warehouse-pro/internal/domain/putaway"
)

// CreatePutawayRequest body para POST /api/putaway.
type CreatePutawayRequest struct {
	ProductID           string          `json:"product_id" validate:"required"`
	BatchNumber         string          `json:"batch_number,omitempty"`
	FromLocationID      string          `json:"from_location_id" validate:"required"`
	SuggestedLocationID string          `json:"suggested_location_id,omitempty"`
	Quantity            decimal.Decimal `json:"quantity" validate:"required"`
	Priority            int             `json:"priority" validate:"min=0,max=9"`
}

// CreatePutawayFromReceiptRequest genera tareas desde una recepción.
type CreatePutawayFromReceiptRequest struct {
	ReceiptID string `json:"receipt_id" validate:"required"`
}

// AssignPutawayRequest asigna la tarea a un operario.
type AssignPutawayRequest struct {
	AssignedTo string `json:"assigned_to" validate:"required"`
}

// CompletePutawayRequest confirma el guardado (parcial permitido) en la
// ubicación real elegida por el operario.
type CompletePutawayRequest struct {
	ActualLocationID string          `json:"actual_location_id" validate:"required"`
	Quantity         decimal.Decimal `json:"quantity" validate:"required"`
}

// SuggestLocationsRequest parámetros para GET /api/putaway/suggestions.
type SuggestLocationsRequest struct {
	ProductID   string `query:"product_id" validate:"required"`
	WarehouseID string `query:"warehouse_id" validate:"required"`
	Limit       int    `query:"limit" validate:"min=0,max=20"`
}

// PutawayResponse salida de una tarea de putaway.
type PutawayResponse struct {
	ID                  string          `json:"id"`
	Number              string          `json:"number"`
	Status              string          `json:"status"`
	ProductID           string          `json:"product_id"`
	BatchNumber         string          `json:"batch_number,omitempty"`
	FromLocationID      string          `json:"from_location_id"`
	SuggestedLocationID string          `json:"suggested_location_id,omitempty"`
	QuantityToPutaway   decimal.Decimal `json:"quantity_to_putaway"`
	QuantityPutaway     decimal.Decimal `json:"quantity_putaway"`
	AssignedTo          string          `json:"assigned_to,omitempty"`
	ReceiptID           string          `json:"receipt_id,omitempty"`
	ReceiptNumber       string          `json:"receipt_number,omitempty"`
	Priority            int             `json:"priority"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
	CreatedBy           string          `json:"created_by"`
	AssignedAt          *time.Time      `json:"assigned_at,omitempty"`
	StartedAt           *time.Time      `json:"started_at,omitempty"`
	CompletedAt         *time.Time      `json:"completed_at,omitempty"`
	CancelledAt         *time.Time      `json:"cancelled_at,omitempty"`
}

// PutawayListResponse lista paginada de tareas.
type PutawayListResponse struct {
	Items []PutawayResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// LocationSuggestionResponse sugerencia de ubicación rankeada.
type LocationSuggestionResponse struct {
	LocationID   string          `json:"location_id"`
	LocationCode string          `json:"location_code"`
	Zone         string          `json:"zone,omitempty"`
	Occupancy    decimal.Decimal `json:"occupancy"`
	Score        int             `json:"score"`
	Reason       string          `json:"reason"`
}

// ToPutawayResponse mapea la tarea a su DTO de salida.
func ToPutawayResponse(t *entity.PutawayTask) PutawayResponse {
	return PutawayResponse{
		ID:                  t.ID,
		Number:              t.Number,
		Status:              string(t.Status),
		ProductID:           t.ProductID,
		BatchNumber:         t.BatchNumber,
		FromLocationID:      t.FromLocationID,
		SuggestedLocationID: t.SuggestedLocationID,
		QuantityToPutaway:   t.QuantityToPutaway,
		QuantityPutaway:     t.QuantityPutaway,
		AssignedTo:          t.AssignedTo,
		ReceiptID:           t.ReceiptID,
		ReceiptNumber:       t.ReceiptNumber,
		Priority:            t.Priority,
		CreatedAt:           t.CreatedAt,
		UpdatedAt:           t.UpdatedAt,
		CreatedBy:           t.CreatedBy,
		AssignedAt:          t.AssignedAt,
		StartedAt:           t.StartedAt,
		CompletedAt:         t.CompletedAt,
		CancelledAt:         t.CancelledAt,
	}
}

// ToLocationSuggestionResponses mapea los candidatos del ranker.
func ToLocationSuggestionResponses(candidates []putaway.Candidate) []LocationSuggestionResponse {
	out := make([]LocationSuggestionResponse, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, LocationSuggestionResponse{
			LocationID:   c.Location.ID,
			LocationCode: c.Location.Code,
			Zone:         c.Location.Zone,
			Occupancy:    c.Occupancy,
			Score:        c.Score,
			Reason:       c.Reason,
		})
	}
	return out
}
