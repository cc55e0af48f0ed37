// Package cyclecount implementa el workflow de conteos cíclicos:
// Draft -> Scheduled -> InProgress -> Review -> Complete, con sub-estados
// por ítem y ajuste de varianzas a través del motor de posteo.
package cyclecount

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/warehouse-pro/internal/application/ledger"
	"github.com/tu-usuario/warehouse-pro/internal/application/sequence"
	"github.com/tu-usuario/warehouse-pro/internal/domain"
	"github.com/tu-usuario/warehouse-pro/internal/domain/docnum"
	"github.com/tu-usuario/warehouse-pro/internal/domain/entity"
	"github.com/tu-usuario/warehouse-pro/internal/domain/repository"
)

// UseCase caso de uso de conteos cíclicos. La sesión nunca toca el libro
// por sí misma: el ajuste de un ítem (AdjustStock) delega en el motor de
// posteo, y la alternativa por lotes es CreateFromCycleCount en ajustes.
type UseCase struct {
	txRunner    ledger.TxRunner
	poster      *ledger.Poster
	sessionRepo repository.CycleCountRepository
	productRepo repository.ProductRepository
	locRepo     repository.LocationRepository
	sheets      CountSheetGenerator
}

// NewUseCase construye el caso de uso. sheets puede ser nil si no se
// imprimen hojas de conteo.
func NewUseCase(
	txRunner ledger.TxRunner,
	poster *ledger.Poster,
	sessionRepo repository.CycleCountRepository,
	productRepo repository.ProductRepository,
	locRepo repository.LocationRepository,
	sheets CountSheetGenerator,
) *UseCase {
	return &UseCase{
		txRunner:    txRunner,
		poster:      poster,
		sessionRepo: sessionRepo,
		productRepo: productRepo,
		locRepo:     locRepo,
		sheets:      sheets,
	}
}

// CreateSessionInput datos para crear una sesión de conteo.
type CreateSessionInput struct {
	WarehouseID   string
	Description   string
	BlindCount    bool
	AllowRecounts bool
	MaxRecounts   int
	ScheduledFor  *time.Time
	Items         []ItemInput
}

// ItemInput clave de stock a contar.
type ItemInput struct {
	ProductID   string
	LocationID  string
	BatchNumber string
}

// CreateSession crea una sesión DRAFT con número CC-yyyyMMdd-####.
// La cantidad esperada de cada ítem se congela desde el libro al crear.
func (uc *UseCase) CreateSession(ctx context.Context, companyID, userID string, in CreateSessionInput) (*entity.CycleCountSession, error) {
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: la sesión requiere al menos un ítem", domain.ErrInvalidInput)
	}
	if in.AllowRecounts && in.MaxRecounts <= 0 {
		return nil, fmt.Errorf("%w: MaxRecounts debe ser positivo si se permiten reconteos", domain.ErrInvalidInput)
	}
	now := time.Now().UTC()
	session := &entity.CycleCountSession{
		ID:            uuid.New().String(),
		CompanyID:     companyID,
		Status:        entity.CycleCountDraft,
		WarehouseID:   in.WarehouseID,
		Description:   in.Description,
		BlindCount:    in.BlindCount,
		AllowRecounts: in.AllowRecounts,
		MaxRecounts:   in.MaxRecounts,
		ScheduledFor:  in.ScheduledFor,
		CreatedAt:     now,
		UpdatedAt:     now,
		CreatedBy:     userID,
	}
	err := uc.txRunner.Run(ctx, func(r ledger.TxRepos) error {
		number, err := sequence.NextDocumentNumber(r.Sequences, companyID, docnum.PrefixCycleCount, now)
		if err != nil {
			return err
		}
		session.Number = number
		for i, ii := range in.Items {
			product, err := r.Products.GetByID(ii.ProductID)
			if err != nil {
				return err
			}
			if product == nil || product.CompanyID != companyID {
				return fmt.Errorf("%w: producto %s", domain.ErrNotFound, ii.ProductID)
			}
			loc, err := r.Locations.GetByID(companyID, ii.LocationID)
			if err != nil {
				return err
			}
			if loc == nil {
				return fmt.Errorf("%w: ubicación %s", domain.ErrNotFound, ii.LocationID)
			}
			expected := decimal.Zero
			level, err := r.StockLevels.Get(entity.StockKey{
				CompanyID:   companyID,
				ProductID:   ii.ProductID,
				LocationID:  ii.LocationID,
				BatchNumber: ii.BatchNumber,
			})
			if err != nil {
				return err
			}
			if level != nil {
				expected = level.QuantityOnHand
			}
			session.Items = append(session.Items, &entity.CycleCountItem{
				ID:               uuid.New().String(),
				SessionID:        session.ID,
				LineNumber:       i + 1,
				ProductID:        ii.ProductID,
				LocationID:       ii.LocationID,
				BatchNumber:      ii.BatchNumber,
				ExpectedQuantity: expected,
				Status:           entity.CountItemPending,
			})
		}
		return r.CycleCounts.Create(session)
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// ScheduleSession pasa DRAFT -> SCHEDULED.
func (uc *UseCase) ScheduleSession(ctx context.Context, companyID, sessionID string, scheduledFor time.Time) (*entity.CycleCountSession, error) {
	return uc.transition(ctx, companyID, sessionID, entity.CycleCountScheduled, func(s *entity.CycleCountSession, now time.Time) error {
		s.ScheduledFor = &scheduledFor
		return nil
	})
}

// StartSession pasa SCHEDULED -> IN_PROGRESS.
func (uc *UseCase) StartSession(ctx context.Context, companyID, sessionID string) (*entity.CycleCountSession, error) {
	return uc.transition(ctx, companyID, sessionID, entity.CycleCountInProgress, func(s *entity.CycleCountSession, now time.Time) error {
		s.StartedAt = &now
		return nil
	})
}

// RecordCount registra el conteo de un ítem (sesión IN_PROGRESS). Calcula
// variance = contado - esperado; una varianza distinta de cero marca el
// ítem como pendiente de aprobación.
func (uc *UseCase) RecordCount(ctx context.Context, companyID, userID, sessionID, itemID string, counted decimal.Decimal) (*entity.CycleCountSession, error) {
	if counted.IsNegative() {
		return nil, fmt.Errorf("%w: la cantidad contada no puede ser negativa", domain.ErrInvalidInput)
	}
	return uc.mutateItem(ctx, companyID, sessionID, itemID, func(s *entity.CycleCountSession, it *entity.CycleCountItem, now time.Time) error {
		if s.Status != entity.CycleCountInProgress {
			return fmt.Errorf("%w: solo se cuenta con la sesión IN_PROGRESS (actual %s)", domain.ErrInvalidTransition, s.Status)
		}
		return it.RecordCount(counted, userID, now)
	})
}

// RequestRecount pide recontar un ítem ya contado. Solo si la sesión lo
// permite y el ítem no agotó el cupo; exceder el cupo falla con
// ErrRecountLimitExceeded.
func (uc *UseCase) RequestRecount(ctx context.Context, companyID, sessionID, itemID string) (*entity.CycleCountSession, error) {
	return uc.mutateItem(ctx, companyID, sessionID, itemID, func(s *entity.CycleCountSession, it *entity.CycleCountItem, now time.Time) error {
		if s.Status != entity.CycleCountInProgress {
			return fmt.Errorf("%w: solo se reconta con la sesión IN_PROGRESS (actual %s)", domain.ErrInvalidTransition, s.Status)
		}
		if !s.AllowRecounts {
			return fmt.Errorf("%w: la sesión %s no permite reconteos", domain.ErrRecountLimitExceeded, s.Number)
		}
		if it.RecountNumber >= s.MaxRecounts {
			return fmt.Errorf("%w: ítem %d ya usó %d de %d reconteos", domain.ErrRecountLimitExceeded, it.LineNumber, it.RecountNumber, s.MaxRecounts)
		}
		if err := it.TransitionTo(entity.CountItemRecounting); err != nil {
			return err
		}
		it.RecountNumber++
		it.CountedQuantity = nil
		it.Variance = decimal.Zero
		it.RequiresApproval = false
		it.IsApproved = false
		return nil
	})
}

// ApproveVariance aprueba la varianza de un ítem contado. Requisito para
// que la sesión avance a REVIEW/COMPLETE y para ajustar el stock.
func (uc *UseCase) ApproveVariance(ctx context.Context, companyID, userID, sessionID, itemID string) (*entity.CycleCountSession, error) {
	return uc.mutateItem(ctx, companyID, sessionID, itemID, func(s *entity.CycleCountSession, it *entity.CycleCountItem, now time.Time) error {
		if !it.RequiresApproval {
			return fmt.Errorf("%w: el ítem %d no tiene varianza por aprobar", domain.ErrInvalidInput, it.LineNumber)
		}
		if err := it.TransitionTo(entity.CountItemApproved); err != nil {
			return err
		}
		it.IsApproved = true
		it.ApprovedBy = userID
		it.ApprovedAt = &now
		return nil
	})
}

// AdjustStock postea la varianza aprobada de un ítem como delta del libro
// (delta = variance) a través del motor de posteo, y deja el ítem ADJUSTED
// con el movimiento generado. Acción terminal por ítem: repetirla falla con
// ErrAlreadyProcessed.
func (uc *UseCase) AdjustStock(ctx context.Context, companyID, userID, sessionID, itemID string) (*entity.CycleCountSession, error) {
	return uc.mutateItem(ctx, companyID, sessionID, itemID, func(s *entity.CycleCountSession, it *entity.CycleCountItem, now time.Time) error {
		if it.Status == entity.CountItemAdjusted {
			return fmt.Errorf("%w: ítem %d de la sesión %s", domain.ErrAlreadyProcessed, it.LineNumber, s.Number)
		}
		if it.Variance.IsZero() {
			return fmt.Errorf("%w: el ítem %d no tiene varianza que ajustar", domain.ErrInvalidInput, it.LineNumber)
		}
		if it.RequiresApproval && !it.IsApproved {
			return fmt.Errorf("%w: la varianza del ítem %d no está aprobada", domain.ErrInvalidTransition, it.LineNumber)
		}
		if err := it.TransitionTo(entity.CountItemAdjusted); err != nil {
			return err
		}
		it.AdjustedAt = &now
		return nil
	}, func(r ledger.TxRepos, s *entity.CycleCountSession, it *entity.CycleCountItem, now time.Time) error {
		in := ledger.PostingInput{
			CompanyID:       companyID,
			ProductID:       it.ProductID,
			BatchNumber:     it.BatchNumber,
			Quantity:        it.Variance.Abs(),
			MovementType:    entity.MovementTypeCycleCount,
			ReferenceType:   entity.ReferenceTypeCycleCount,
			ReferenceID:     s.ID,
			ReferenceNumber: s.Number,
			LineID:          it.ID,
			LineNumber:      it.LineNumber,
			Notes:           "Ajuste por conteo cíclico",
			CreatedBy:       userID,
			Now:             now,
		}
		if it.Variance.IsPositive() {
			in.ToLocationID = it.LocationID
		} else {
			in.FromLocationID = it.LocationID
		}
		mov, err := uc.poster.Post(r, in)
		if err != nil {
			return err
		}
		it.MovementID = mov.ID
		return nil
	})
}

// SubmitForReview pasa IN_PROGRESS -> REVIEW. Bloqueado mientras quede
// alguna varianza sin aprobar.
func (uc *UseCase) SubmitForReview(ctx context.Context, companyID, sessionID string) (*entity.CycleCountSession, error) {
	return uc.transition(ctx, companyID, sessionID, entity.CycleCountReview, func(s *entity.CycleCountSession, now time.Time) error {
		if s.HasUnapprovedVariances() {
			return fmt.Errorf("%w: quedan varianzas sin aprobar en %s", domain.ErrInvalidTransition, s.Number)
		}
		return nil
	})
}

// CompleteSession pasa REVIEW -> COMPLETE. Bloqueado mientras quede algún
// ítem sin contar, en reconteo, o con varianza sin aprobar.
func (uc *UseCase) CompleteSession(ctx context.Context, companyID, sessionID string) (*entity.CycleCountSession, error) {
	return uc.transition(ctx, companyID, sessionID, entity.CycleCountComplete, func(s *entity.CycleCountSession, now time.Time) error {
		if s.HasOpenItems() {
			return fmt.Errorf("%w: quedan ítems sin contar en %s", domain.ErrInvalidTransition, s.Number)
		}
		if s.HasUnapprovedVariances() {
			return fmt.Errorf("%w: quedan varianzas sin aprobar en %s", domain.ErrInvalidTransition, s.Number)
		}
		s.CompletedAt = &now
		return nil
	})
}

// CancelSession anula la sesión desde cualquier estado salvo COMPLETE.
func (uc *UseCase) CancelSession(ctx context.Context, companyID, sessionID string) (*entity.CycleCountSession, error) {
	return uc.transition(ctx, companyID, sessionID, entity.CycleCountCancelled, func(s *entity.CycleCountSession, now time.Time) error {
		s.CancelledAt = &now
		return nil
	})
}

// Get devuelve una sesión con sus ítems.
func (uc *UseCase) Get(ctx context.Context, companyID, sessionID string) (*entity.CycleCountSession, error) {
	s, err := uc.sessionRepo.GetByID(companyID, sessionID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("%w: sesión de conteo %s", domain.ErrNotFound, sessionID)
	}
	return s, nil
}

// List lista sesiones por estado (vacío = todas).
func (uc *UseCase) List(ctx context.Context, companyID string, status entity.CycleCountStatus, limit, offset int) ([]*entity.CycleCountSession, error) {
	return uc.sessionRepo.List(companyID, status, limit, offset)
}

// CountSheet genera el PDF de la hoja de conteo. En sesiones de conteo
// ciego la cantidad esperada se omite de la hoja.
func (uc *UseCase) CountSheet(ctx context.Context, companyID, sessionID string) ([]byte, error) {
	if uc.sheets == nil {
		return nil, fmt.Errorf("%w: generación de hojas de conteo no configurada", domain.ErrInvalidInput)
	}
	session, err := uc.Get(ctx, companyID, sessionID)
	if err != nil {
		return nil, err
	}
	lines := make([]CountSheetLine, 0, len(session.Items))
	for _, it := range session.Items {
		line := CountSheetLine{
			LineNumber:  it.LineNumber,
			BatchNumber: it.BatchNumber,
		}
		if product, err := uc.productRepo.GetByID(it.ProductID); err == nil && product != nil {
			line.SKU = product.SKU
			line.ProductName = product.Name
		}
		if loc, err := uc.locRepo.GetByID(companyID, it.LocationID); err == nil && loc != nil {
			line.LocationCode = loc.Code
		}
		if !session.BlindCount {
			line.Expected = it.ExpectedQuantity.String()
		}
		lines = append(lines, line)
	}
	return uc.sheets.GenerateCountSheet(ctx, session, lines)
}

// ── Internos ─────────────────────────────────────────────────────────────────

// mutateItem carga la sesión con bloqueo, aplica mutate sobre el ítem y
// persiste ítem y cabecera en la misma transacción. post, si se pasa, corre
// tras mutate y dentro de la misma transacción (para AdjustStock).
func (uc *UseCase) mutateItem(
	ctx context.Context,
	companyID, sessionID, itemID string,
	mutate func(s *entity.CycleCountSession, it *entity.CycleCountItem, now time.Time) error,
	post ...func(r ledger.TxRepos, s *entity.CycleCountSession, it *entity.CycleCountItem, now time.Time) error,
) (*entity.CycleCountSession, error) {
	var session *entity.CycleCountSession
	err := uc.txRunner.Run(ctx, func(r ledger.TxRepos) error {
		var err error
		session, err = uc.getForUpdate(r, companyID, sessionID)
		if err != nil {
			return err
		}
		it := session.ItemByID(itemID)
		if it == nil {
			return fmt.Errorf("%w: ítem %s", domain.ErrNotFound, itemID)
		}
		now := time.Now().UTC()
		if err := mutate(session, it, now); err != nil {
			return err
		}
		for _, p := range post {
			if err := p(r, session, it, now); err != nil {
				return err
			}
		}
		if err := r.CycleCounts.SaveItem(it); err != nil {
			return err
		}
		session.UpdatedAt = now
		return r.CycleCounts.UpdateHeader(session)
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (uc *UseCase) getForUpdate(r ledger.TxRepos, companyID, sessionID string) (*entity.CycleCountSession, error) {
	session, err := r.CycleCounts.GetForUpdate(companyID, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("%w: sesión de conteo %s", domain.ErrNotFound, sessionID)
	}
	return session, nil
}

func (uc *UseCase) transition(ctx context.Context, companyID, sessionID string, to entity.CycleCountStatus, mutate func(s *entity.CycleCountSession, now time.Time) error) (*entity.CycleCountSession, error) {
	var session *entity.CycleCountSession
	err := uc.txRunner.Run(ctx, func(r ledger.TxRepos) error {
		var err error
		session, err = uc.getForUpdate(r, companyID, sessionID)
		if err != nil {
			return err
		}
		if err := session.TransitionTo(to); err != nil {
			return err
		}
		now := time.Now().UTC()
		if err := mutate(session, now); err != nil {
			return err
		}
		session.UpdatedAt = now
		return r.CycleCounts.UpdateHeader(session)
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}
