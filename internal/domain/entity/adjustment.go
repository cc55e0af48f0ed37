package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/warehouse-pro/internal/domain"
)

// AdjustmentStatus estado de un ajuste de stock (enum cerrado).
type AdjustmentStatus string

const (
	AdjustmentDraft           AdjustmentStatus = "DRAFT"
	AdjustmentPendingApproval AdjustmentStatus = "PENDING_APPROVAL"
	AdjustmentApproved        AdjustmentStatus = "APPROVED"
	AdjustmentPosted          AdjustmentStatus = "POSTED"
	AdjustmentCancelled       AdjustmentStatus = "CANCELLED"
)

// adjustmentTransitions tabla única de transiciones permitidas.
// Cualquier salto que no esté aquí se rechaza con ErrInvalidTransition.
var adjustmentTransitions = map[AdjustmentStatus][]AdjustmentStatus{
	AdjustmentDraft:           {AdjustmentPendingApproval, AdjustmentCancelled},
	AdjustmentPendingApproval: {AdjustmentApproved, AdjustmentDraft, AdjustmentCancelled},
	AdjustmentApproved:        {AdjustmentPosted, AdjustmentCancelled},
	AdjustmentPosted:          {},
	AdjustmentCancelled:       {},
}

// StockAdjustment documento de ajuste de stock con sus líneas.
// Las líneas solo se editan en DRAFT; el libro solo se toca al pasar
// APPROVED -> POSTED, y siempre a través del motor de posteo.
type StockAdjustment struct {
	ID             string
	CompanyID      string
	Number         string // ADJ-yyyyMMdd-####
	Status         AdjustmentStatus
	Reason         string
	Notes          string
	Lines          []*AdjustmentLine
	TotalLines     int             // derivado de Lines, nunca se fija aparte
	TotalQuantity  decimal.Decimal // suma de deltas firmados
	TotalValue     decimal.Decimal // suma de delta * costo unitario
	CreatedAt      time.Time
	UpdatedAt      time.Time
	CreatedBy      string
	SubmittedAt    *time.Time
	ApprovedAt     *time.Time
	ApprovedBy     string
	PostedAt       *time.Time
	PostedBy       string
	CancelledAt    *time.Time
	SourceType     string // ej. CYCLE_COUNT_SESSION cuando viene de un conteo
	SourceID       string
}

// AdjustmentLine línea de ajuste: delta firmado sobre una clave de stock.
// IsProcessed marca que el motor de posteo ya la consumió; una línea se
// postea a lo sumo una vez (clave de idempotencia documento+línea).
type AdjustmentLine struct {
	ID             string
	AdjustmentID   string
	LineNumber     int
	ProductID      string
	LocationID     string
	BatchNumber    string
	SerialNumber   string
	QuantityBefore decimal.Decimal // cantidad en mano al crear la línea (informativa)
	QuantityChange decimal.Decimal // delta firmado; nunca cero
	UnitCost       decimal.Decimal
	Reason         string
	IsProcessed    bool
	ProcessedAt    *time.Time
	MovementID     string // movimiento generado al postear
}

// CanTransitionTo indica si el salto de estado está en la tabla.
func (a *StockAdjustment) CanTransitionTo(to AdjustmentStatus) bool {
	for _, s := range adjustmentTransitions[a.Status] {
		if s == to {
			return true
		}
	}
	return false
}

// TransitionTo aplica la transición o falla con ErrInvalidTransition.
func (a *StockAdjustment) TransitionTo(to AdjustmentStatus) error {
	if !a.CanTransitionTo(to) {
		return fmt.Errorf("%w: ajuste %s de %s a %s", domain.ErrInvalidTransition, a.Number, a.Status, to)
	}
	a.Status = to
	return nil
}

// IsEditable indica si las líneas pueden agregarse/editarse/eliminarse.
func (a *StockAdjustment) IsEditable() bool {
	return a.Status == AdjustmentDraft
}

// RecomputeTotals recalcula los totales a partir de las líneas.
// Se invoca en cada mutación de líneas; los totales jamás se fijan a mano.
func (a *StockAdjustment) RecomputeTotals() {
	a.TotalLines = len(a.Lines)
	total := decimal.Zero
	value := decimal.Zero
	for _, l := range a.Lines {
		total = total.Add(l.QuantityChange)
		value = value.Add(l.QuantityChange.Mul(l.UnitCost))
	}
	a.TotalQuantity = total
	a.TotalValue = value
}

// LineByID busca una línea por ID; nil si no existe.
func (a *StockAdjustment) LineByID(lineID string) *AdjustmentLine {
	for _, l := range a.Lines {
		if l.ID == lineID {
			return l
		}
	}
	return nil
}
