package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/warehouse-pro/internal/domain"
)

// CycleCountStatus estado de una sesión de conteo cíclico.
type CycleCountStatus string

const (
	CycleCountDraft      CycleCountStatus = "DRAFT"
	CycleCountScheduled  CycleCountStatus = "SCHEDULED"
	CycleCountInProgress CycleCountStatus = "IN_PROGRESS"
	CycleCountReview     CycleCountStatus = "REVIEW"
	CycleCountComplete   CycleCountStatus = "COMPLETE"
	CycleCountCancelled  CycleCountStatus = "CANCELLED"
)

// cycleCountTransitions tabla única de transiciones de sesión.
// Cancelable desde cualquier estado salvo COMPLETE.
var cycleCountTransitions = map[CycleCountStatus][]CycleCountStatus{
	CycleCountDraft:      {CycleCountScheduled, CycleCountCancelled},
	CycleCountScheduled:  {CycleCountInProgress, CycleCountCancelled},
	CycleCountInProgress: {CycleCountReview, CycleCountCancelled},
	CycleCountReview:     {CycleCountComplete, CycleCountCancelled},
	CycleCountComplete:   {},
	CycleCountCancelled:  {},
}

// CountItemStatus sub-estado de un ítem de conteo.
type CountItemStatus string

const (
	CountItemPending    CountItemStatus = "PENDING"
	CountItemCounted    CountItemStatus = "COUNTED"
	CountItemRecounting CountItemStatus = "RECOUNTING"
	CountItemApproved   CountItemStatus = "APPROVED"
	CountItemAdjusted   CountItemStatus = "ADJUSTED"
)

var countItemTransitions = map[CountItemStatus][]CountItemStatus{
	CountItemPending:    {CountItemCounted},
	CountItemCounted:    {CountItemRecounting, CountItemApproved, CountItemAdjusted},
	CountItemRecounting: {CountItemCounted},
	CountItemApproved:   {CountItemAdjusted},
	CountItemAdjusted:   {},
}

// CycleCountSession sesión de conteo cíclico sobre un conjunto de claves de
// stock. La sesión no toca el libro; el ajuste de cada ítem pasa por el
// motor de posteo (AdjustStock) o por un StockAdjustment derivado.
type CycleCountSession struct {
	ID            string
	CompanyID     string
	Number        string // CC-yyyyMMdd-####
	Status        CycleCountStatus
	WarehouseID   string
	Description   string
	BlindCount    bool // ocultar cantidad esperada al operario
	AllowRecounts bool
	MaxRecounts   int
	Items         []*CycleCountItem
	ScheduledFor  *time.Time
	StartedAt     *time.Time
	CompletedAt   *time.Time
	CancelledAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
	CreatedBy     string
}

// CycleCountItem ítem contable: una clave de stock con cantidad esperada.
// Variance = contado - esperado; una varianza distinta de cero exige
// aprobación antes de cerrar la sesión o ajustar el libro.
type CycleCountItem struct {
	ID               string
	SessionID        string
	LineNumber       int
	ProductID        string
	LocationID       string
	BatchNumber      string
	ExpectedQuantity decimal.Decimal
	CountedQuantity  *decimal.Decimal // nil mientras PENDING/RECOUNTING
	Variance         decimal.Decimal
	Status           CountItemStatus
	RequiresApproval bool
	IsApproved       bool
	RecountNumber    int
	CountedBy        string
	CountedAt        *time.Time
	ApprovedBy       string
	ApprovedAt       *time.Time
	AdjustedAt       *time.Time
	MovementID       string // movimiento generado si el ítem se ajustó directo
	Notes            string
}

// CanTransitionTo indica si el salto de estado de la sesión está permitido.
func (s *CycleCountSession) CanTransitionTo(to CycleCountStatus) bool {
	for _, st := range cycleCountTransitions[s.Status] {
		if st == to {
			return true
		}
	}
	return false
}

// TransitionTo aplica la transición de sesión o falla con ErrInvalidTransition.
func (s *CycleCountSession) TransitionTo(to CycleCountStatus) error {
	if !s.CanTransitionTo(to) {
		return fmt.Errorf("%w: sesión %s de %s a %s", domain.ErrInvalidTransition, s.Number, s.Status, to)
	}
	s.Status = to
	return nil
}

// HasUnapprovedVariances indica si queda algún ítem con varianza sin aprobar.
// Bloquea IN_PROGRESS -> REVIEW y REVIEW -> COMPLETE.
func (s *CycleCountSession) HasUnapprovedVariances() bool {
	for _, it := range s.Items {
		if it.RequiresApproval && !it.IsApproved {
			return true
		}
	}
	return false
}

// HasOpenItems indica si queda algún ítem sin contar o en reconteo.
// Bloquea el cierre de la sesión.
func (s *CycleCountSession) HasOpenItems() bool {
	for _, it := range s.Items {
		if it.Status == CountItemPending || it.Status == CountItemRecounting {
			return true
		}
	}
	return false
}

// ItemByID busca un ítem por ID; nil si no existe.
func (s *CycleCountSession) ItemByID(itemID string) *CycleCountItem {
	for _, it := range s.Items {
		if it.ID == itemID {
			return it
		}
	}
	return nil
}

// CanTransitionTo indica si el salto de sub-estado del ítem está permitido.
func (i *CycleCountItem) CanTransitionTo(to CountItemStatus) bool {
	for _, st := range countItemTransitions[i.Status] {
		if st == to {
			return true
		}
	}
	return false
}

// TransitionTo aplica la transición del ítem o falla con ErrInvalidTransition.
func (i *CycleCountItem) TransitionTo(to CountItemStatus) error {
	if !i.CanTransitionTo(to) {
		return fmt.Errorf("%w: ítem %d de %s a %s", domain.ErrInvalidTransition, i.LineNumber, i.Status, to)
	}
	i.Status = to
	return nil
}

// RecordCount registra un conteo: fija contado, calcula varianza y marca
// si requiere aprobación. Válido desde PENDING o RECOUNTING.
func (i *CycleCountItem) RecordCount(counted decimal.Decimal, userID string, now time.Time) error {
	if err := i.TransitionTo(CountItemCounted); err != nil {
		return err
	}
	i.CountedQuantity = &counted
	i.Variance = counted.Sub(i.ExpectedQuantity)
	i.RequiresApproval = !i.Variance.IsZero()
	i.IsApproved = false
	i.CountedBy = userID
	i.CountedAt = &now
	return nil
}
