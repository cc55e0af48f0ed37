package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de stock. La dirección no va en el tipo sino en qué
// ubicaciones (origen/destino) tiene el movimiento.
const (
	MovementTypeAdjustment = "ADJUSTMENT"  // ajuste manual (+/-)
	MovementTypeTransfer   = "TRANSFER"    // traslado entre ubicaciones
	MovementTypeReceipt    = "RECEIPT"     // entrada por recepción
	MovementTypePick       = "PICK"        // salida por picking
	MovementTypeReturn     = "RETURN"      // entrada por devolución
	MovementTypePutaway    = "PUTAWAY"     // traslado staging -> ubicación final
	MovementTypeCycleCount = "CYCLE_COUNT" // ajuste por conteo cíclico
)

// Tipos de documento de referencia para un movimiento.
const (
	ReferenceTypeAdjustment  = "STOCK_ADJUSTMENT"
	ReferenceTypeCycleCount  = "CYCLE_COUNT_SESSION"
	ReferenceTypePutaway     = "PUTAWAY_TASK"
	ReferenceTypeReturnOrder = "RETURN_ORDER"
)

// StockMovement es el hecho inmutable de un delta del libro de stock.
// Se agrega, jamás se edita ni se borra. Cada delta del libro tiene
// exactamente una fila de movimiento.
//
// Quantity es siempre magnitud (>= 0); la dirección la dan las ubicaciones:
// solo destino = entrada, solo origen = salida, ambas = traslado.
type StockMovement struct {
	ID              string
	CompanyID       string
	MovementNumber  string // único por empresa: SM-yyyyMMdd-#### o MOV-yyyyMMddHHmmss-###
	MovementType    string
	ProductID       string
	FromLocationID  string // vacío si es entrada pura
	ToLocationID    string // vacío si es salida pura
	Quantity        decimal.Decimal
	BatchNumber     string
	SerialNumber    string
	ReferenceType   string // documento de workflow que originó el movimiento
	ReferenceID     string
	ReferenceNumber string
	LineID          string // línea concreta del documento (clave de idempotencia junto al documento)
	Notes           string
	CreatedAt       time.Time
	CreatedBy       string
}

// IsInbound indica si el movimiento solo suma stock (sin ubicación origen).
func (m *StockMovement) IsInbound() bool {
	return m.FromLocationID == "" && m.ToLocationID != ""
}

// IsOutbound indica si el movimiento solo resta stock (sin ubicación destino).
func (m *StockMovement) IsOutbound() bool {
	return m.FromLocationID != "" && m.ToLocationID == ""
}
