// Package adjustment implementa el workflow de ajustes de stock:
// Draft -> PendingApproval -> Approved -> Posted, con posteo atómico.
package adjustment

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

// UseCase caso de uso del workflow de ajustes. Toda mutación del documento
// corre en una transacción; el libro solo se toca en Post, vía motor de
// posteo.
type UseCase struct {
	txRunner    ledger.TxRunner
	poster      *ledger.Poster
	adjRepo     repository.AdjustmentRepository
	productRepo repository.ProductRepository
	locRepo     repository.LocationRepository
	levelRepo   repository.StockLevelRepository
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	txRunner ledger.TxRunner,
	poster *ledger.Poster,
	adjRepo repository.AdjustmentRepository,
	productRepo repository.ProductRepository,
	locRepo repository.LocationRepository,
	levelRepo repository.StockLevelRepository,
) *UseCase {
	return &UseCase{
		txRunner:    txRunner,
		poster:      poster,
		adjRepo:     adjRepo,
		productRepo: productRepo,
		locRepo:     locRepo,
		levelRepo:   levelRepo,
	}
}

// CreateInput datos para crear un ajuste.
type CreateInput struct {
	Reason string
	Notes  string
	Lines  []LineInput
}

// LineInput datos de una línea de ajuste. QuantityChange es delta firmado.
type LineInput struct {
	ProductID      string
	LocationID     string
	BatchNumber    string
	SerialNumber   string
	QuantityChange decimal.Decimal
	UnitCost       decimal.Decimal
	Reason         string
}

// Create crea un ajuste en DRAFT con número ADJ-yyyyMMdd-#### y sus líneas
// iniciales (puede crearse vacío y agregar líneas después).
func (uc *UseCase) Create(ctx context.Context, companyID, userID string, in CreateInput) (*entity.StockAdjustment, error) {
	if in.Reason == "" {
		return nil, fmt.Errorf("%w: el ajuste requiere un motivo", domain.ErrInvalidInput)
	}
	now := time.Now().UTC()
	adj := &entity.StockAdjustment{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		Status:    entity.AdjustmentDraft,
		Reason:    in.Reason,
		Notes:     in.Notes,
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: userID,
	}
	err := uc.txRunner.Run(ctx, func(r ledger.TxRepos) error {
		number, err := sequence.NextDocumentNumber(r.Sequences, companyID, docnum.PrefixAdjustment, now)
		if err != nil {
			return err
		}
		adj.Number = number
		for i, li := range in.Lines {
			line, err := uc.buildLine(r, adj, i+1, li)
			if err != nil {
				return err
			}
			adj.Lines = append(adj.Lines, line)
		}
		adj.RecomputeTotals()
		return r.Adjustments.Create(adj)
	})
	if err != nil {
		return nil, err
	}
	return adj, nil
}

// AddLine agrega una línea; solo en DRAFT.
func (uc *UseCase) AddLine(ctx context.Context, companyID, adjustmentID string, in LineInput) (*entity.StockAdjustment, error) {
	var adj *entity.StockAdjustment
	err := uc.txRunner.Run(ctx, func(r ledger.TxRepos) error {
		var err error
		adj, err = uc.editable(r, companyID, adjustmentID)
		if err != nil {
			return err
		}
		line, err := uc.buildLine(r, adj, len(adj.Lines)+1, in)
		if err != nil {
			return err
		}
		adj.Lines = append(adj.Lines, line)
		if err := r.Adjustments.SaveLine(line); err != nil {
			return err
		}
		adj.RecomputeTotals()
		adj.UpdatedAt = time.Now().UTC()
		return r.Adjustments.UpdateHeader(adj)
	})
	if err != nil {
		return nil, err
	}
	return adj, nil
}

// UpdateLine reemplaza los datos de una línea; solo en DRAFT.
func (uc *UseCase) UpdateLine(ctx context.Context, companyID, adjustmentID, lineID string, in LineInput) (*entity.StockAdjustment, error) {
	var adj *entity.StockAdjustment
	err := uc.txRunner.Run(ctx, func(r ledger.TxRepos) error {
		var err error
		adj, err = uc.editable(r, companyID, adjustmentID)
		if err != nil {
			return err
		}
		line := adj.LineByID(lineID)
		if line == nil {
			return fmt.Errorf("%w: línea %s", domain.ErrNotFound, lineID)
		}
		updated, err := uc.buildLine(r, adj, line.LineNumber, in)
		if err != nil {
			return err
		}
		updated.ID = line.ID
		*line = *updated
		if err := r.Adjustments.SaveLine(line); err != nil {
			return err
		}
		adj.RecomputeTotals()
		adj.UpdatedAt = time.Now().UTC()
		return r.Adjustments.UpdateHeader(adj)
	})
	if err != nil {
		return nil, err
	}
	return adj, nil
}

// RemoveLine elimina una línea; solo en DRAFT.
func (uc *UseCase) RemoveLine(ctx context.Context, companyID, adjustmentID, lineID string) (*entity.StockAdjustment, error) {
	var adj *entity.StockAdjustment
	err := uc.txRunner.Run(ctx, func(r ledger.TxRepos) error {
		var err error
		adj, err = uc.editable(r, companyID, adjustmentID)
		if err != nil {
			return err
		}
		if adj.LineByID(lineID) == nil {
			return fmt.Errorf("%w: línea %s", domain.ErrNotFound, lineID)
		}
		if err := r.Adjustments.DeleteLine(adj.ID, lineID); err != nil {
			return err
		}
		kept := adj.Lines[:0]
		for _, l := range adj.Lines {
			if l.ID != lineID {
				kept = append(kept, l)
			}
		}
		adj.Lines = kept
		adj.RecomputeTotals()
		adj.UpdatedAt = time.Now().UTC()
		return r.Adjustments.UpdateHeader(adj)
	})
	if err != nil {
		return nil, err
	}
	return adj, nil
}

// SubmitForApproval pasa DRAFT -> PENDING_APPROVAL. Rechaza documentos sin
// líneas.
func (uc *UseCase) SubmitForApproval(ctx context.Context, companyID, adjustmentID string) (*entity.StockAdjustment, error) {
	return uc.transition(ctx, companyID, adjustmentID, entity.AdjustmentPendingApproval, func(adj *entity.StockAdjustment, now time.Time) error {
		if len(adj.Lines) == 0 {
			return fmt.Errorf("%w: no se puede enviar un ajuste sin líneas", domain.ErrInvalidInput)
		}
		adj.SubmittedAt = &now
		return nil
	})
}

// Approve pasa PENDING_APPROVAL -> APPROVED.
func (uc *UseCase) Approve(ctx context.Context, companyID, userID, adjustmentID string) (*entity.StockAdjustment, error) {
	return uc.transition(ctx, companyID, adjustmentID, entity.AdjustmentApproved, func(adj *entity.StockAdjustment, now time.Time) error {
		adj.ApprovedAt = &now
		adj.ApprovedBy = userID
		return nil
	})
}

// Reject devuelve PENDING_APPROVAL -> DRAFT para corrección.
func (uc *UseCase) Reject(ctx context.Context, companyID, adjustmentID string) (*entity.StockAdjustment, error) {
	return uc.transition(ctx, companyID, adjustmentID, entity.AdjustmentDraft, func(adj *entity.StockAdjustment, now time.Time) error {
		adj.SubmittedAt = nil
		return nil
	})
}

// Cancel anula el ajuste desde DRAFT, PENDING_APPROVAL o APPROVED.
func (uc *UseCase) Cancel(ctx context.Context, companyID, adjustmentID string) (*entity.StockAdjustment, error) {
	return uc.transition(ctx, companyID, adjustmentID, entity.AdjustmentCancelled, func(adj *entity.StockAdjustment, now time.Time) error {
		adj.CancelledAt = &now
		return nil
	})
}

// Post postea un ajuste APPROVED: una llamada al motor de posteo por línea,
// marca de idempotencia incluida, y el documento pasa a POSTED, todo en una
// transacción. Si cualquier línea falla (p. ej. stock insuficiente) se hace
// Rollback completo: cero líneas procesadas, cero deltas, el documento sigue
// APPROVED.
func (uc *UseCase) Post(ctx context.Context, companyID, userID, adjustmentID string) (*entity.StockAdjustment, error) {
	var adj *entity.StockAdjustment
	err := uc.txRunner.Run(ctx, func(r ledger.TxRepos) error {
		var err error
		adj, err = uc.get(r, companyID, adjustmentID, true)
		if err != nil {
			return err
		}
		if err := adj.TransitionTo(entity.AdjustmentPosted); err != nil {
			return err
		}
		if len(adj.Lines) == 0 {
			return fmt.Errorf("%w: el ajuste no tiene líneas", domain.ErrInvalidInput)
		}
		now := time.Now().UTC()
		for _, line := range adj.Lines {
			if line.IsProcessed {
				return fmt.Errorf("%w: línea %d del ajuste %s", domain.ErrAlreadyProcessed, line.LineNumber, adj.Number)
			}
			mov, err := uc.postLine(r, adj, line, userID, now)
			if err != nil {
				return err
			}
			line.IsProcessed = true
			line.ProcessedAt = &now
			line.MovementID = mov.ID
			if err := r.Adjustments.MarkLineProcessed(line.ID, mov.ID, now); err != nil {
				return err
			}
		}
		adj.PostedAt = &now
		adj.PostedBy = userID
		adj.UpdatedAt = now
		return r.Adjustments.UpdateHeader(adj)
	})
	if err != nil {
		return nil, err
	}
	return adj, nil
}

// QuickAdjust encadena Create + SubmitForApproval + Approve + Post,
// cortando en el primer fallo. Pensado para correcciones pequeñas de un
// supervisor con permiso de aprobación.
func (uc *UseCase) QuickAdjust(ctx context.Context, companyID, userID string, in CreateInput) (*entity.StockAdjustment, error) {
	if len(in.Lines) == 0 {
		return nil, fmt.Errorf("%w: el ajuste rápido requiere líneas", domain.ErrInvalidInput)
	}
	adj, err := uc.Create(ctx, companyID, userID, in)
	if err != nil {
		return nil, err
	}
	if _, err := uc.SubmitForApproval(ctx, companyID, adj.ID); err != nil {
		return nil, err
	}
	if _, err := uc.Approve(ctx, companyID, userID, adj.ID); err != nil {
		return nil, err
	}
	return uc.Post(ctx, companyID, userID, adj.ID)
}

// CreateFromCycleCount deriva un ajuste DRAFT desde los ítems contados de
// una sesión cuya varianza es distinta de cero. Los ítems ya ajustados
// directo (ADJUSTED) se omiten para que la misma varianza nunca se postee
// dos veces.
func (uc *UseCase) CreateFromCycleCount(ctx context.Context, companyID, userID, sessionID string) (*entity.StockAdjustment, error) {
	var adj *entity.StockAdjustment
	err := uc.txRunner.Run(ctx, func(r ledger.TxRepos) error {
		session, err := r.CycleCounts.GetByID(companyID, sessionID)
		if err != nil {
			return err
		}
		if session == nil {
			return fmt.Errorf("%w: sesión de conteo %s", domain.ErrNotFound, sessionID)
		}
		now := time.Now().UTC()
		number, err := sequence.NextDocumentNumber(r.Sequences, companyID, docnum.PrefixAdjustment, now)
		if err != nil {
			return err
		}
		adj = &entity.StockAdjustment{
			ID:         uuid.New().String(),
			CompanyID:  companyID,
			Number:     number,
			Status:     entity.AdjustmentDraft,
			Reason:     "Varianzas de conteo cíclico " + session.Number,
			CreatedAt:  now,
			UpdatedAt:  now,
			CreatedBy:  userID,
			SourceType: entity.ReferenceTypeCycleCount,
			SourceID:   session.ID,
		}
		lineNo := 0
		for _, it := range session.Items {
			if it.Variance.IsZero() || it.Status == entity.CountItemAdjusted || it.CountedQuantity == nil {
				continue
			}
			lineNo++
			product, err := r.Products.GetByID(it.ProductID)
			if err != nil {
				return err
			}
			unitCost := decimal.Zero
			if product != nil {
				unitCost = product.UnitCost
			}
			adj.Lines = append(adj.Lines, &entity.AdjustmentLine{
				ID:             uuid.New().String(),
				AdjustmentID:   adj.ID,
				LineNumber:     lineNo,
				ProductID:      it.ProductID,
				LocationID:     it.LocationID,
				BatchNumber:    it.BatchNumber,
				QuantityBefore: it.ExpectedQuantity,
				QuantityChange: it.Variance,
				UnitCost:       unitCost,
				Reason:         "Varianza de conteo",
			})
		}
		if len(adj.Lines) == 0 {
			return fmt.Errorf("%w: la sesión %s no tiene varianzas pendientes", domain.ErrInvalidInput, session.Number)
		}
		adj.RecomputeTotals()
		return r.Adjustments.Create(adj)
	})
	if err != nil {
		return nil, err
	}
	return adj, nil
}

// Get devuelve un ajuste con sus líneas.
func (uc *UseCase) Get(ctx context.Context, companyID, adjustmentID string) (*entity.StockAdjustment, error) {
	adj, err := uc.adjRepo.GetByID(companyID, adjustmentID)
	if err != nil {
		return nil, err
	}
	if adj == nil {
		return nil, fmt.Errorf("%w: ajuste %s", domain.ErrNotFound, adjustmentID)
	}
	return adj, nil
}

// List lista ajustes por estado (vacío = todos).
func (uc *UseCase) List(ctx context.Context, companyID string, status entity.AdjustmentStatus, limit, offset int) ([]*entity.StockAdjustment, error) {
	return uc.adjRepo.List(companyID, status, limit, offset)
}

// ── Internos ─────────────────────────────────────────────────────────────────

// postLine invoca el motor de posteo para una línea. El signo del delta
// decide la dirección: positivo entra a la ubicación, negativo sale.
func (uc *UseCase) postLine(r ledger.TxRepos, adj *entity.StockAdjustment, line *entity.AdjustmentLine, userID string, now time.Time) (*entity.StockMovement, error) {
	in := ledger.PostingInput{
		CompanyID:       adj.CompanyID,
		ProductID:       line.ProductID,
		BatchNumber:     line.BatchNumber,
		SerialNumber:    line.SerialNumber,
		Quantity:        line.QuantityChange.Abs(),
		MovementType:    entity.MovementTypeAdjustment,
		ReferenceType:   entity.ReferenceTypeAdjustment,
		ReferenceID:     adj.ID,
		ReferenceNumber: adj.Number,
		LineID:          line.ID,
		LineNumber:      line.LineNumber,
		Notes:           line.Reason,
		CreatedBy:       userID,
		Now:             now,
	}
	if line.QuantityChange.IsPositive() {
		in.ToLocationID = line.LocationID
	} else {
		in.FromLocationID = line.LocationID
	}
	return uc.poster.Post(r, in)
}

func (uc *UseCase) get(r ledger.TxRepos, companyID, adjustmentID string, forUpdate bool) (*entity.StockAdjustment, error) {
	var adj *entity.StockAdjustment
	var err error
	if forUpdate {
		adj, err = r.Adjustments.GetForUpdate(companyID, adjustmentID)
	} else {
		adj, err = r.Adjustments.GetByID(companyID, adjustmentID)
	}
	if err != nil {
		return nil, err
	}
	if adj == nil {
		return nil, fmt.Errorf("%w: ajuste %s", domain.ErrNotFound, adjustmentID)
	}
	return adj, nil
}

func (uc *UseCase) editable(r ledger.TxRepos, companyID, adjustmentID string) (*entity.StockAdjustment, error) {
	adj, err := uc.get(r, companyID, adjustmentID, true)
	if err != nil {
		return nil, err
	}
	if !adj.IsEditable() {
		return nil, fmt.Errorf("%w: las líneas solo se editan en DRAFT (actual %s)", domain.ErrInvalidTransition, adj.Status)
	}
	return adj, nil
}

// buildLine valida y construye una línea nueva (producto y ubicación deben
// existir y ser de la empresa; delta distinto de cero; lote si el producto
// lo exige). QuantityBefore se toma del libro como referencia informativa.
func (uc *UseCase) buildLine(r ledger.TxRepos, adj *entity.StockAdjustment, lineNumber int, in LineInput) (*entity.AdjustmentLine, error) {
	if in.QuantityChange.IsZero() {
		return nil, fmt.Errorf("%w: el delta de la línea no puede ser cero", domain.ErrInvalidInput)
	}
	product, err := r.Products.GetByID(in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, in.ProductID)
	}
	if product.CompanyID != adj.CompanyID {
		return nil, domain.ErrForbidden
	}
	if product.TrackBatches && in.BatchNumber == "" {
		return nil, fmt.Errorf("%w: el producto %s exige lote", domain.ErrInvalidInput, product.SKU)
	}
	if product.TrackSerials && in.SerialNumber == "" {
		return nil, fmt.Errorf("%w: el producto %s exige número de serie", domain.ErrInvalidInput, product.SKU)
	}
	loc, err := r.Locations.GetByID(adj.CompanyID, in.LocationID)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, fmt.Errorf("%w: ubicación %s", domain.ErrNotFound, in.LocationID)
	}
	unitCost := in.UnitCost
	if unitCost.IsZero() {
		unitCost = product.UnitCost
	}
	before := decimal.Zero
	level, err := r.StockLevels.Get(entity.StockKey{
		CompanyID:    adj.CompanyID,
		ProductID:    in.ProductID,
		LocationID:   in.LocationID,
		BatchNumber:  in.BatchNumber,
		SerialNumber: in.SerialNumber,
	})
	if err != nil {
		return nil, err
	}
	if level != nil {
		before = level.QuantityOnHand
	}
	return &entity.AdjustmentLine{
		ID:             uuid.New().String(),
		AdjustmentID:   adj.ID,
		LineNumber:     lineNumber,
		ProductID:      in.ProductID,
		LocationID:     in.LocationID,
		BatchNumber:    in.BatchNumber,
		SerialNumber:   in.SerialNumber,
		QuantityBefore: before,
		QuantityChange: in.QuantityChange,
		UnitCost:       unitCost,
		Reason:         in.Reason,
	}, nil
}

// transition aplica una transición de estado genérica en una transacción.
func (uc *UseCase) transition(ctx context.Context, companyID, adjustmentID string, to entity.AdjustmentStatus, mutate func(adj *entity.StockAdjustment, now time.Time) error) (*entity.StockAdjustment, error) {
	var adj *entity.StockAdjustment
	err := uc.txRunner.Run(ctx, func(r ledger.TxRepos) error {
		var err error
		adj, err = uc.get(r, companyID, adjustmentID, true)
		if err != nil {
			return err
		}
		if err := adj.TransitionTo(to); err != nil {
			return err
		}
		now := time.Now().UTC()
		if err := mutate(adj, now); err != nil {
			return err
		}
		adj.UpdatedAt = now
		return r.Adjustments.UpdateHeader(adj)
	})
	if err != nil {
		return nil, err
	}
	return adj, nil
}
