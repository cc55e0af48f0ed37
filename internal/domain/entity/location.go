package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de ubicación dentro de una bodega.
const (
	LocationTypeStorage   = "STORAGE"   // almacenamiento general
	LocationTypeStaging   = "STAGING"   // zona de recepción/espera
	LocationTypeReceiving = "RECEIVING" // muelle de entrada
	LocationTypeShipping  = "SHIPPING"  // muelle de salida
)

// Location representa una ubicación física de almacenamiento
// (bodega > zona > pasillo > nivel > posición). Level 0 es piso.
type Location struct {
	ID          string
	CompanyID   string
	WarehouseID string
	Code        string // ej. A-01-02-03
	Type        string
	Zone        string
	Aisle       string
	Level       int
	Capacity    decimal.Decimal // capacidad máxima en unidades; cero = sin límite
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsGroundLevel indica si la ubicación está a nivel de piso (más rápida de
// alcanzar; el scorer de putaway la premia).
func (l *Location) IsGroundLevel() bool {
	return l.Level == 0
}
