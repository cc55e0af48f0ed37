package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/warehouse-pro/internal/domain/entity"
)

// CycleCountItemRequest clave de stock a contar en una sesión.
type CycleCountItemRequest struct {
	ProductID   string `json:"product_id" validate:"required"`
	LocationID  string `json:"location_id" validate:"required"`
	BatchNumber string `json:"batch_number,omitempty"`
}

// CreateCycleCountRequest body para POST /api/cycle-counts.
type CreateCycleCountRequest struct {
	WarehouseID   string                  `json:"warehouse_id" validate:"required"`
	Description   string                  `json:"description,omitempty"`
	BlindCount    bool                    `json:"blind_count"`
	AllowRecounts bool                    `json:"allow_recounts"`
	MaxRecounts   int                     `json:"max_recounts" validate:"min=0,max=10"`
	Items         []CycleCountItemRequest `json:"items" validate:"required,min=1"`
}

// ScheduleCycleCountRequest body para programar una sesión.
type ScheduleCycleCountRequest struct {
	ScheduledFor time.Time `json:"scheduled_for" validate:"required"`
}

// RecordCountRequest body para registrar el conteo de un ítem.
type RecordCountRequest struct {
	CountedQuantity decimal.Decimal `json:"counted_quantity"`
	Notes           string          `json:"notes,omitempty"`
}

// CycleCountItemResponse ítem de conteo en respuestas. Expected y Variance
// se omiten mientras la sesión es de conteo ciego y sigue abierta.
type CycleCountItemResponse struct {
	ID               string           `json:"id"`
	LineNumber       int              `json:"line_number"`
	ProductID        string           `json:"product_id"`
	LocationID       string           `json:"location_id"`
	BatchNumber      string           `json:"batch_number,omitempty"`
	ExpectedQuantity *decimal.Decimal `json:"expected_quantity,omitempty"`
	CountedQuantity  *decimal.Decimal `json:"counted_quantity,omitempty"`
	Variance         *decimal.Decimal `json:"variance,omitempty"`
	Status           string           `json:"status"`
	RequiresApproval bool             `json:"requires_approval"`
	IsApproved       bool             `json:"is_approved"`
	RecountNumber    int              `json:"recount_number"`
	CountedBy        string           `json:"counted_by,omitempty"`
	CountedAt        *time.Time       `json:"counted_at,omitempty"`
	ApprovedBy       string           `json:"approved_by,omitempty"`
	ApprovedAt       *time.Time       `json:"approved_at,omitempty"`
	AdjustedAt       *time.Time       `json:"adjusted_at,omitempty"`
	MovementID       string           `json:"movement_id,omitempty"`
	Notes            string           `json:"notes,omitempty"`
}

// CycleCountResponse salida de una sesión con sus ítems.
type CycleCountResponse struct {
	ID            string                   `json:"id"`
	Number        string                   `json:"number"`
	Status        string                   `json:"status"`
	WarehouseID   string                   `json:"warehouse_id"`
	Description   string                   `json:"description,omitempty"`
	BlindCount    bool                     `json:"blind_count"`
	AllowRecounts bool                     `json:"allow_recounts"`
	MaxRecounts   int                      `json:"max_recounts"`
	Items         []CycleCountItemResponse `json:"items"`
	ScheduledFor  *time.Time               `json:"scheduled_for,omitempty"`
	StartedAt     *time.Time               `json:"started_at,omitempty"`
	CompletedAt   *time.Time               `json:"completed_at,omitempty"`
	CancelledAt   *time.Time               `json:"cancelled_at,omitempty"`
	CreatedAt     time.Time                `json:"created_at"`
	UpdatedAt     time.Time                `json:"updated_at"`
	CreatedBy     string                   `json:"created_by"`
}

// CycleCountListResponse lista paginada de sesiones.
type CycleCountListResponse struct {
	Items []CycleCountResponse `json:"items"`
	Page  PageResponse         `json:"page"`
}

// ToCycleCountResponse mapea la sesión a su DTO. En conteo ciego, mientras la
// sesión no esté en REVIEW ni COMPLETE, esperado y varianza van ocultos.
func ToCycleCountResponse(s *entity.CycleCountSession) CycleCountResponse {
	hideExpected := s.BlindCount &&
		s.Status != entity.CycleCountReview &&
		s.Status != entity.CycleCountComplete

	resp := CycleCountResponse{
		ID:            s.ID,
		Number:        s.Number,
		Status:        string(s.Status),
		WarehouseID:   s.WarehouseID,
		Description:   s.Description,
		BlindCount:    s.BlindCount,
		AllowRecounts: s.AllowRecounts,
		MaxRecounts:   s.MaxRecounts,
		Items:         make([]CycleCountItemResponse, 0, len(s.Items)),
		ScheduledFor:  s.ScheduledFor,
		StartedAt:     s.StartedAt,
		CompletedAt:   s.CompletedAt,
		CancelledAt:   s.CancelledAt,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
		CreatedBy:     s.CreatedBy,
	}
	for _, it := range s.Items {
		item := CycleCountItemResponse{
			ID:               it.ID,
			LineNumber:       it.LineNumber,
			ProductID:        it.ProductID,
			LocationID:       it.LocationID,
			BatchNumber:      it.BatchNumber,
			CountedQuantity:  it.CountedQuantity,
			Status:           string(it.Status),
			RequiresApproval: it.RequiresApproval,
			IsApproved:       it.IsApproved,
			RecountNumber:    it.RecountNumber,
			CountedBy:        it.CountedBy,
			CountedAt:        it.CountedAt,
			ApprovedBy:       it.ApprovedBy,
			ApprovedAt:       it.ApprovedAt,
			AdjustedAt:       it.AdjustedAt,
			MovementID:       it.MovementID,
			Notes:            it.Notes,
		}
		if !hideExpected {
			expected := it.ExpectedQuantity
			variance := it.Variance
			item.ExpectedQuantity = &expected
			item.Variance = &variance
		}
		resp.Items = append(resp.Items, item)
	}
	return resp
}
