package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/warehouse-pro/internal/domain"
)

// ReturnStatus estado de una orden de devolución.
type ReturnStatus string

const (
	ReturnPending    ReturnStatus = "PENDING"
	ReturnInTransit  ReturnStatus = "IN_TRANSIT"
	ReturnReceived   ReturnStatus = "RECEIVED"
	ReturnInProgress ReturnStatus = "IN_PROGRESS"
	ReturnComplete   ReturnStatus = "COMPLETE"
	ReturnCancelled  ReturnStatus = "CANCELLED"
)

// returnTransitions tabla única de transiciones.
// Cancelable desde cualquier estado salvo COMPLETE.
var returnTransitions = map[ReturnStatus][]ReturnStatus{
	ReturnPending:    {ReturnInTransit, ReturnCancelled},
	ReturnInTransit:  {ReturnReceived, ReturnCancelled},
	ReturnReceived:   {ReturnInProgress, ReturnCancelled},
	ReturnInProgress: {ReturnComplete, ReturnCancelled},
	ReturnComplete:   {},
	ReturnCancelled:  {},
}

// ReturnLineStatus sub-estado de una línea de devolución.
type ReturnLineStatus string

const (
	ReturnLineUnreceived ReturnLineStatus = "UNRECEIVED"
	ReturnLineReceived   ReturnLineStatus = "RECEIVED"
	ReturnLineProcessed  ReturnLineStatus = "PROCESSED"
)

// Disposition destino de la mercancía devuelta tras inspección.
type Disposition string

const (
	DispositionPending    Disposition = "PENDING"
	DispositionRestock    Disposition = "RESTOCK"
	DispositionScrap      Disposition = "SCRAP"
	DispositionQuarantine Disposition = "QUARANTINE"
)

// ReturnOrder orden de devolución de cliente. Recibir una línea postea la
// entrada en la ubicación de recepción (vía motor de posteo); procesarla
// clasifica lo recibido (aceptado/rechazado + disposición) sin tocar el libro.
type ReturnOrder struct {
	ID                  string
	CompanyID           string
	Number              string // RET-yyyyMMdd-####
	Status              ReturnStatus
	CustomerReference   string
	ReceivingLocationID string
	Reason              string
	Notes               string
	Lines               []*ReturnLine
	CreatedAt           time.Time
	UpdatedAt           time.Time
	CreatedBy           string
	InTransitAt         *time.Time
	ReceivedAt          *time.Time
	CompletedAt         *time.Time
	CancelledAt         *time.Time
}

// ReturnLine línea de devolución. La recepción puede ser parcial; cada
// recepción genera su propio movimiento de entrada.
type ReturnLine struct {
	ID               string
	ReturnOrderID    string
	LineNumber       int
	ProductID        string
	BatchNumber      string
	QuantityExpected decimal.Decimal
	QuantityReceived decimal.Decimal
	QuantityAccepted decimal.Decimal
	QuantityRejected decimal.Decimal
	Status           ReturnLineStatus
	Disposition      Disposition
	Notes            string
	ReceivedAt       *time.Time
	ProcessedAt      *time.Time
}

// CanTransitionTo indica si el salto de estado está permitido.
func (r *ReturnOrder) CanTransitionTo(to ReturnStatus) bool {
	for _, s := range returnTransitions[r.Status] {
		if s == to {
			return true
		}
	}
	return false
}

// TransitionTo aplica la transición o falla con ErrInvalidTransition.
func (r *ReturnOrder) TransitionTo(to ReturnStatus) error {
	if !r.CanTransitionTo(to) {
		return fmt.Errorf("%w: devolución %s de %s a %s", domain.ErrInvalidTransition, r.Number, r.Status, to)
	}
	r.Status = to
	return nil
}

// IsEditable indica si las líneas pueden agregarse o eliminarse.
func (r *ReturnOrder) IsEditable() bool {
	return r.Status == ReturnPending
}

// LineByID busca una línea por ID; nil si no existe.
func (r *ReturnOrder) LineByID(lineID string) *ReturnLine {
	for _, l := range r.Lines {
		if l.ID == lineID {
			return l
		}
	}
	return nil
}

// AllReceivedLinesProcessed indica si toda línea con cantidad recibida tiene
// disposición definida. Requisito para cerrar la orden.
func (r *ReturnOrder) AllReceivedLinesProcessed() bool {
	for _, l := range r.Lines {
		if l.QuantityReceived.IsPositive() && l.Disposition == DispositionPending {
			return false
		}
	}
	return true
}
