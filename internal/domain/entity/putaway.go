package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/warehouse-pro/internal/domain"
)

// PutawayStatus estado de una tarea de putaway.
type PutawayStatus string

const (
	PutawayPending    PutawayStatus = "PENDING"
	PutawayAssigned   PutawayStatus = "ASSIGNED"
	PutawayInProgress PutawayStatus = "IN_PROGRESS"
	PutawayComplete   PutawayStatus = "COMPLETE"
	PutawayCancelled  PutawayStatus = "CANCELLED"
)

// putawayTransitions tabla única de transiciones.
// Cancelable desde cualquier estado salvo COMPLETE.
var putawayTransitions = map[PutawayStatus][]PutawayStatus{
	PutawayPending:    {PutawayAssigned, PutawayCancelled},
	PutawayAssigned:   {PutawayInProgress, PutawayCancelled},
	PutawayInProgress: {PutawayComplete, PutawayCancelled},
	PutawayComplete:   {},
	PutawayCancelled:  {},
}

// PutawayTask tarea de guardado: mover mercancía desde la ubicación de
// staging/recepción a una ubicación final. El traslado real del libro ocurre
// en cada CompleteTask parcial, vía motor de posteo; la tarea pasa a
// COMPLETE solo cuando QuantityPutaway alcanza QuantityToPutaway.
type PutawayTask struct {
	ID                  string
	CompanyID           string
	Number              string // PA-yyyyMMdd-####
	Status              PutawayStatus
	ProductID           string
	BatchNumber         string
	FromLocationID      string // staging/recepción
	SuggestedLocationID string // sugerencia del scorer; el operario puede ignorarla
	QuantityToPutaway   decimal.Decimal
	QuantityPutaway     decimal.Decimal
	AssignedTo          string
	ReceiptID           string // recepción de mercancía que originó la tarea, si aplica
	ReceiptNumber       string
	Priority            int
	CreatedAt           time.Time
	UpdatedAt           time.Time
	CreatedBy           string
	AssignedAt          *time.Time
	StartedAt           *time.Time
	CompletedAt         *time.Time
	CancelledAt         *time.Time
}

// CanTransitionTo indica si el salto de estado está permitido.
func (t *PutawayTask) CanTransitionTo(to PutawayStatus) bool {
	for _, s := range putawayTransitions[t.Status] {
		if s == to {
			return true
		}
	}
	return false
}

// TransitionTo aplica la transición o falla con ErrInvalidTransition.
func (t *PutawayTask) TransitionTo(to PutawayStatus) error {
	if !t.CanTransitionTo(to) {
		return fmt.Errorf("%w: tarea %s de %s a %s", domain.ErrInvalidTransition, t.Number, t.Status, to)
	}
	t.Status = to
	return nil
}

// Remaining cantidad pendiente de guardar.
func (t *PutawayTask) Remaining() decimal.Decimal {
	return t.QuantityToPutaway.Sub(t.QuantityPutaway)
}
