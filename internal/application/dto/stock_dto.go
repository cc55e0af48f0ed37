package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/warehouse-pro/internal/domain/entity"
)

// StockLevelResponse fila del libro de stock en respuestas.
type StockLevelResponse struct {
	ProductID        string          `json:"product_id"`
	LocationID       string          `json:"location_id"`
	BatchNumber      string          `json:"batch_number,omitempty"`
	SerialNumber     string          `json:"serial_number,omitempty"`
	QuantityOnHand   decimal.Decimal `json:"quantity_on_hand"`
	QuantityReserved decimal.Decimal `json:"quantity_reserved"`
	Available        decimal.Decimal `json:"available"`
	LastMovementAt   time.Time       `json:"last_movement_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// StockLevelListResponse niveles de stock de un producto o ubicación.
type StockLevelListResponse struct {
	Items []StockLevelResponse `json:"items"`
}

// MovementResponse movimiento del libro en respuestas.
type MovementResponse struct {
	ID              string          `json:"id"`
	MovementNumber  string          `json:"movement_number"`
	MovementType    string          `json:"movement_type"`
	ProductID       string          `json:"product_id"`
	FromLocationID  string          `json:"from_location_id,omitempty"`
	ToLocationID    string          `json:"to_location_id,omitempty"`
	Quantity        decimal.Decimal `json:"quantity"`
	BatchNumber     string          `json:"batch_number,omitempty"`
	SerialNumber    string          `json:"serial_number,omitempty"`
	ReferenceType   string          `json:"reference_type"`
	ReferenceID     string          `json:"reference_id"`
	ReferenceNumber string          `json:"reference_number,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	CreatedBy       string          `json:"created_by"`
}

// MovementListResponse lista de movimientos.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// ToStockLevelResponse mapea una fila del libro a su DTO.
func ToStockLevelResponse(s *entity.StockLevel) StockLevelResponse {
	return StockLevelResponse{
		ProductID:        s.ProductID,
		LocationID:       s.LocationID,
		BatchNumber:      s.BatchNumber,
		SerialNumber:     s.SerialNumber,
		QuantityOnHand:   s.QuantityOnHand,
		QuantityReserved: s.QuantityReserved,
		Available:        s.Available(),
		LastMovementAt:   s.LastMovementAt,
		UpdatedAt:        s.UpdatedAt,
	}
}

// ToMovementResponse mapea un movimiento a su DTO.
func ToMovementResponse(m *entity.StockMovement) MovementResponse {
	return MovementResponse{
		ID:              m.ID,
		MovementNumber:  m.MovementNumber,
		MovementType:    m.MovementType,
		ProductID:       m.ProductID,
		FromLocationID:  m.FromLocationID,
		ToLocationID:    m.ToLocationID,
		Quantity:        m.Quantity,
		BatchNumber:     m.BatchNumber,
		SerialNumber:    m.SerialNumber,
		ReferenceType:   m.ReferenceType,
		ReferenceID:     m.ReferenceID,
		ReferenceNumber: m.ReferenceNumber,
		Notes:           m.Notes,
		CreatedAt:       m.CreatedAt,
		CreatedBy:       m.CreatedBy,
	}
}
