// Package returns implementa el workflow de devoluciones:
// Pending -> InTransit -> Received -> InProgress -> Complete. Recibir una
// línea postea la entrada en la ubicación de recepción; procesarla
// clasifica lo recibido (aceptado/rechazado + disposición).
package returns

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

// UseCase caso de uso de devoluciones. ReceiveLine es la única operación
// que toca el libro, siempre a través del motor de posteo.
type UseCase struct {
	txRunner  ledger.TxRunner
	poster    *ledger.Poster
	orderRepo repository.ReturnOrderRepository
}

// NewUseCase construye el caso de uso.
func NewUseCase(txRunner ledger.TxRunner, poster *ledger.Poster, orderRepo repository.ReturnOrderRepository) *UseCase {
	return &UseCase{txRunner: txRunner, poster: poster, orderRepo: orderRepo}
}

// CreateInput datos para crear una orden de devolución.
type CreateInput struct {
	CustomerReference   string
	ReceivingLocationID string
	Reason              string
	Notes               string
	Lines               []LineInput
}

// LineInput línea esperada de la devolución.
type LineInput struct {
	ProductID        string
	BatchNumber      string
	QuantityExpected decimal.Decimal
}

// Create crea una orden PENDING con número RET-yyyyMMdd-####.
func (uc *UseCase) Create(ctx context.Context, companyID, userID string, in CreateInput) (*entity.ReturnOrder, error) {
	if in.ReceivingLocationID == "" {
		return nil, fmt.Errorf("%w: falta la ubicación de recepción", domain.ErrInvalidInput)
	}
	now := time.Now().UTC()
	order := &entity.ReturnOrder{
		ID:                  uuid.New().String(),
		CompanyID:           companyID,
		Status:              entity.ReturnPending,
		CustomerReference:   in.CustomerReference,
		ReceivingLocationID: in.ReceivingLocationID,
		Reason:              in.Reason,
		Notes:               in.Notes,
		CreatedAt:           now,
		UpdatedAt:           now,
		CreatedBy:           userID,
	}
	err := uc.txRunner.Run(ctx, func(r ledger.TxRepos) error {
		loc, err := r.Locations.GetByID(companyID, in.ReceivingLocationID)
		if err != nil {
			return err
		}
		if loc == nil {
			return fmt.Errorf("%w: ubicación %s", domain.ErrNotFound, in.ReceivingLocationID)
		}
		number, err := sequence.NextDocumentNumber(r.Sequences, companyID, docnum.PrefixReturn, now)
		if err != nil {
			return err
		}
		order.Number = number
		for i, li := range in.Lines {
			line, err := uc.buildLine(r, order, i+1, li)
			if err != nil {
				return err
			}
			order.Lines = append(order.Lines, line)
		}
		return r.Returns.Create(order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// AddLine agrega una línea esperada; solo en PENDING.
func (uc *UseCase) AddLine(ctx context.Context, companyID, orderID string, in LineInput) (*entity.ReturnOrder, error) {
	var order *entity.ReturnOrder
	err := uc.txRunner.Run(ctx, func(r ledger.TxRepos) error {
		var err error
		order, err = uc.getForUpdate(r, companyID, orderID)
		if err != nil {
			return err
		}
		if !order.IsEditable() {
			return fmt.Errorf("%w: las líneas solo se editan en PENDING (actual %s)", domain.ErrInvalidTransition, order.Status)
		}
		line, err := uc.buildLine(r, order, len(order.Lines)+1, in)
		if err != nil {
			return err
		}
		order.Lines = append(order.Lines, line)
		if err := r.Returns.SaveLine(line); err != nil {
			return err
		}
		order.UpdatedAt = time.Now().UTC()
		return r.Returns.UpdateHeader(order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// RemoveLine elimina una línea esperada; solo en PENDING.
func (uc *UseCase) RemoveLine(ctx context.Context, companyID, orderID, lineID string) (*entity.ReturnOrder, error) {
	var order *entity.ReturnOrder
	err := uc.txRunner.Run(ctx, func(r ledger.TxRepos) error {
		var err error
		order, err = uc.getForUpdate(r, companyID, orderID)
		if err != nil {
			return err
		}
		if !order.IsEditable() {
			return fmt.Errorf("%w: las líneas solo se editan en PENDING (actual %s)", domain.ErrInvalidTransition, order.Status)
		}
		if order.LineByID(lineID) == nil {
			return fmt.Errorf("%w: línea %s", domain.ErrNotFound, lineID)
		}
		if err := r.Returns.DeleteLine(order.ID, lineID); err != nil {
			return err
		}
		kept := order.Lines[:0]
		for _, l := range order.Lines {
			if l.ID != lineID {
				kept = append(kept, l)
			}
		}
		order.Lines = kept
		order.UpdatedAt = time.Now().UTC()
		return r.Returns.UpdateHeader(order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// MarkInTransit pasa PENDING -> IN_TRANSIT. Rechaza órdenes sin líneas.
func (uc *UseCase) MarkInTransit(ctx context.Context, companyID, orderID string) (*entity.ReturnOrder, error) {
	return uc.transition(ctx, companyID, orderID, entity.ReturnInTransit, func(o *entity.ReturnOrder, now time.Time) error {
		if len(o.Lines) == 0 {
			return fmt.Errorf("%w: la devolución no tiene líneas", domain.ErrInvalidInput)
		}
		o.InTransitAt = &now
		return nil
	})
}

// StartReceiving pasa IN_TRANSIT -> RECEIVED (la mercancía llegó al muelle).
func (uc *UseCase) StartReceiving(ctx context.Context, companyID, orderID string) (*entity.ReturnOrder, error) {
	return uc.transition(ctx, companyID, orderID, entity.ReturnReceived, func(o *entity.ReturnOrder, now time.Time) error {
		o.ReceivedAt = &now
		return nil
	})
}

// StartProcessing pasa RECEIVED -> IN_PROGRESS (inicia la inspección).
func (uc *UseCase) StartProcessing(ctx context.Context, companyID, orderID string) (*entity.ReturnOrder, error) {
	return uc.transition(ctx, companyID, orderID, entity.ReturnInProgress, func(o *entity.ReturnOrder, now time.Time) error {
		return nil
	})
}

// ReceiveLine registra una recepción (parcial permitida) de una línea y
// postea la entrada en la ubicación de recepción de la orden, vía motor de
// posteo, en la misma transacción. Válido con la orden RECEIVED o
// IN_PROGRESS.
func (uc *UseCase) ReceiveLine(ctx context.Context, companyID, userID, orderID, lineID string, quantity decimal.Decimal) (*entity.ReturnOrder, error) {
	if !quantity.IsPositive() {
		return nil, fmt.Errorf("%w: la cantidad recibida debe ser positiva", domain.ErrInvalidInput)
	}
	var order *entity.ReturnOrder
	err := uc.txRunner.Run(ctx, func(r ledger.TxRepos) error {
		var err error
		order, err = uc.getForUpdate(r, companyID, orderID)
		if err != nil {
			return err
		}
		if order.Status != entity.ReturnReceived && order.Status != entity.ReturnInProgress {
			return fmt.Errorf("%w: solo se reciben líneas con la orden RECEIVED o IN_PROGRESS (actual %s)", domain.ErrInvalidTransition, order.Status)
		}
		line := order.LineByID(lineID)
		if line == nil {
			return fmt.Errorf("%w: línea %s", domain.ErrNotFound, lineID)
		}
		if line.Status == entity.ReturnLineProcessed {
			return fmt.Errorf("%w: línea %d de la devolución %s", domain.ErrAlreadyProcessed, line.LineNumber, order.Number)
		}
		pending := line.QuantityExpected.Sub(line.QuantityReceived)
		if quantity.GreaterThan(pending) {
			return fmt.Errorf("%w: cantidad %s supera lo pendiente %s", domain.ErrInvalidInput, quantity, pending)
		}
		now := time.Now().UTC()
		// Cada recepción parcial es su propio posteo; el ordinal del
		// movimiento es el de la recepción dentro de la orden.
		previous, err := r.Movements.ListByReference(companyID, entity.ReferenceTypeReturnOrder, order.ID)
		if err != nil {
			return err
		}
		if _, err := uc.poster.Post(r, ledger.PostingInput{
			CompanyID:       companyID,
			ProductID:       line.ProductID,
			ToLocationID:    order.ReceivingLocationID,
			BatchNumber:     line.BatchNumber,
			Quantity:        quantity,
			MovementType:    entity.MovementTypeReturn,
			ReferenceType:   entity.ReferenceTypeReturnOrder,
			ReferenceID:     order.ID,
			ReferenceNumber: order.Number,
			LineID:          line.ID,
			LineNumber:      len(previous) + 1,
			Notes:           "Recepción de devolución",
			CreatedBy:       userID,
			Now:             now,
		}); err != nil {
			return err
		}
		line.QuantityReceived = line.QuantityReceived.Add(quantity)
		line.Status = entity.ReturnLineReceived
		line.ReceivedAt = &now
		if err := r.Returns.SaveLine(line); err != nil {
			return err
		}
		order.UpdatedAt = now
		return r.Returns.UpdateHeader(order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// ProcessLine clasifica una línea recibida: reparto aceptado/rechazado y
// disposición (RESTOCK, SCRAP o QUARANTINE). No toca el libro: el destino
// posterior de lo clasificado es un flujo aparte (putaway/descarte).
func (uc *UseCase) ProcessLine(ctx context.Context, companyID, orderID, lineID string, accepted, rejected decimal.Decimal, disposition entity.Disposition) (*entity.ReturnOrder, error) {
	switch disposition {
	case entity.DispositionRestock, entity.DispositionScrap, entity.DispositionQuarantine:
	default:
		return nil, fmt.Errorf("%w: disposición %s inválida", domain.ErrInvalidInput, disposition)
	}
	if accepted.IsNegative() || rejected.IsNegative() {
		return nil, fmt.Errorf("%w: cantidades negativas", domain.ErrInvalidInput)
	}
	var order *entity.ReturnOrder
	err := uc.txRunner.Run(ctx, func(r ledger.TxRepos) error {
		var err error
		order, err = uc.getForUpdate(r, companyID, orderID)
		if err != nil {
			return err
		}
		if order.Status != entity.ReturnInProgress {
			return fmt.Errorf("%w: solo se procesan líneas con la orden IN_PROGRESS (actual %s)", domain.ErrInvalidTransition, order.Status)
		}
		line := order.LineByID(lineID)
		if line == nil {
			return fmt.Errorf("%w: línea %s", domain.ErrNotFound, lineID)
		}
		if line.Status != entity.ReturnLineReceived {
			return fmt.Errorf("%w: la línea %d no está recibida", domain.ErrInvalidTransition, line.LineNumber)
		}
		if !accepted.Add(rejected).Equal(line.QuantityReceived) {
			return fmt.Errorf("%w: aceptado %s + rechazado %s debe igualar lo recibido %s", domain.ErrInvalidInput, accepted, rejected, line.QuantityReceived)
		}
		now := time.Now().UTC()
		line.QuantityAccepted = accepted
		line.QuantityRejected = rejected
		line.Disposition = disposition
		line.Status = entity.ReturnLineProcessed
		line.ProcessedAt = &now
		if err := r.Returns.SaveLine(line); err != nil {
			return err
		}
		order.UpdatedAt = now
		return r.Returns.UpdateHeader(order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Complete pasa IN_PROGRESS -> COMPLETE. Exige que toda línea con cantidad
// recibida tenga disposición definida.
func (uc *UseCase) Complete(ctx context.Context, companyID, orderID string) (*entity.ReturnOrder, error) {
	return uc.transition(ctx, companyID, orderID, entity.ReturnComplete, func(o *entity.ReturnOrder, now time.Time) error {
		if !o.AllReceivedLinesProcessed() {
			return fmt.Errorf("%w: quedan líneas recibidas sin disposición en %s", domain.ErrInvalidTransition, o.Number)
		}
		o.CompletedAt = &now
		return nil
	})
}

// Cancel anula la orden desde cualquier estado salvo COMPLETE. Lo ya
// recibido permanece en el libro (cada recepción fue su propio posteo).
func (uc *UseCase) Cancel(ctx context.Context, companyID, orderID string) (*entity.ReturnOrder, error) {
	return uc.transition(ctx, companyID, orderID, entity.ReturnCancelled, func(o *entity.ReturnOrder, now time.Time) error {
		o.CancelledAt = &now
		return nil
	})
}

// Get devuelve una orden con sus líneas.
func (uc *UseCase) Get(ctx context.Context, companyID, orderID string) (*entity.ReturnOrder, error) {
	order, err := uc.orderRepo.GetByID(companyID, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: devolución %s", domain.ErrNotFound, orderID)
	}
	return order, nil
}

// List lista órdenes por estado (vacío = todas).
func (uc *UseCase) List(ctx context.Context, companyID string, status entity.ReturnStatus, limit, offset int) ([]*entity.ReturnOrder, error) {
	return uc.orderRepo.List(companyID, status, limit, offset)
}

// ── Internos ─────────────────────────────────────────────────────────────────

func (uc *UseCase) buildLine(r ledger.TxRepos, order *entity.ReturnOrder, lineNumber int, in LineInput) (*entity.ReturnLine, error) {
	if !in.QuantityExpected.IsPositive() {
		return nil, fmt.Errorf("%w: la cantidad esperada debe ser positiva", domain.ErrInvalidInput)
	}
	product, err := r.Products.GetByID(in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil || product.CompanyID != order.CompanyID {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, in.ProductID)
	}
	return &entity.ReturnLine{
		ID:               uuid.New().String(),
		ReturnOrderID:    order.ID,
		LineNumber:       lineNumber,
		ProductID:        in.ProductID,
		BatchNumber:      in.BatchNumber,
		QuantityExpected: in.QuantityExpected,
		QuantityReceived: decimal.Zero,
		Status:           entity.ReturnLineUnreceived,
		Disposition:      entity.DispositionPending,
	}, nil
}

func (uc *UseCase) getForUpdate(r ledger.TxRepos, companyID, orderID string) (*entity.ReturnOrder, error) {
	order, err := r.Returns.GetForUpdate(companyID, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: devolución %s", domain.ErrNotFound, orderID)
	}
	return order, nil
}

func (uc *UseCase) transition(ctx context.Context, companyID, orderID string, to entity.ReturnStatus, mutate func(o *entity.ReturnOrder, now time.Time) error) (*entity.ReturnOrder, error) {
	var order *entity.ReturnOrder
	err := uc.txRunner.Run(ctx, func(r ledger.TxRepos) error {
		var err error
		order, err = uc.getForUpdate(r, companyID, orderID)
		if err != nil {
			return err
		}
		if err := order.TransitionTo(to); err != nil {
			return err
		}
		now := time.Now().UTC()
		if err := mutate(order, now); err != nil {
			return err
		}
		order.UpdatedAt = now
		return r.Returns.UpdateHeader(order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}
