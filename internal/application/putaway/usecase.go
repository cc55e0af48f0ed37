// Package putaway implementa el workflow de tareas de guardado:
// Pending -> Assigned -> InProgress -> Complete, con traslado del libro en
// cada completado parcial y sugerencia heurística de ubicaciones.
package putaway

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
	domputaway "github.com/tu-usuario/warehouse-pro/internal/domain/putaway"
	"github.com/tu-usuario/warehouse-pro/internal/domain/repository"
)

// UseCase caso de uso de putaway. CompleteTask es la única operación que
// toca el libro (traslado staging -> ubicación final vía motor de posteo).
type UseCase struct {
	txRunner    ledger.TxRunner
	poster      *ledger.Poster
	taskRepo    repository.PutawayRepository
	productRepo repository.ProductRepository
	locRepo     repository.LocationRepository
	levelRepo   repository.StockLevelRepository
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	txRunner ledger.TxRunner,
	poster *ledger.Poster,
	taskRepo repository.PutawayRepository,
	productRepo repository.ProductRepository,
	locRepo repository.LocationRepository,
	levelRepo repository.StockLevelRepository,
) *UseCase {
	return &UseCase{
		txRunner:    txRunner,
		poster:      poster,
		taskRepo:    taskRepo,
		productRepo: productRepo,
		locRepo:     locRepo,
		levelRepo:   levelRepo,
	}
}

// CreateTaskInput datos para crear una tarea manual.
type CreateTaskInput struct {
	ProductID           string
	BatchNumber         string
	FromLocationID      string
	SuggestedLocationID string
	Quantity            decimal.Decimal
	Priority            int
}

// CreateTask crea una tarea PENDING con número PA-yyyyMMdd-####.
func (uc *UseCase) CreateTask(ctx context.Context, companyID, userID string, in CreateTaskInput) (*entity.PutawayTask, error) {
	if !in.Quantity.IsPositive() {
		return nil, fmt.Errorf("%w: la cantidad a guardar debe ser positiva", domain.ErrInvalidInput)
	}
	var task *entity.PutawayTask
	err := uc.txRunner.Run(ctx, func(r ledger.TxRepos) error {
		product, err := r.Products.GetByID(in.ProductID)
		if err != nil {
			return err
		}
		if product == nil || product.CompanyID != companyID {
			return fmt.Errorf("%w: producto %s", domain.ErrNotFound, in.ProductID)
		}
		from, err := r.Locations.GetByID(companyID, in.FromLocationID)
		if err != nil {
			return err
		}
		if from == nil {
			return fmt.Errorf("%w: ubicación origen %s", domain.ErrNotFound, in.FromLocationID)
		}
		now := time.Now().UTC()
		number, err := sequence.NextDocumentNumber(r.Sequences, companyID, docnum.PrefixPutaway, now)
		if err != nil {
			return err
		}
		task = &entity.PutawayTask{
			ID:                  uuid.New().String(),
			CompanyID:           companyID,
			Number:              number,
			Status:              entity.PutawayPending,
			ProductID:           in.ProductID,
			BatchNumber:         in.BatchNumber,
			FromLocationID:      in.FromLocationID,
			SuggestedLocationID: in.SuggestedLocationID,
			QuantityToPutaway:   in.Quantity,
			QuantityPutaway:     decimal.Zero,
			Priority:            in.Priority,
			CreatedAt:           now,
			UpdatedAt:           now,
			CreatedBy:           userID,
		}
		return r.Putaways.Create(task)
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// CreateFromGoodsReceipt deriva una tarea PENDING por cada línea de la
// recepción, con origen en la ubicación de staging de la recepción.
func (uc *UseCase) CreateFromGoodsReceipt(ctx context.Context, companyID, userID, receiptID string) ([]*entity.PutawayTask, error) {
	var tasks []*entity.PutawayTask
	err := uc.txRunner.Run(ctx, func(r ledger.TxRepos) error {
		receipt, err := r.Receipts.GetByID(companyID, receiptID)
		if err != nil {
			return err
		}
		if receipt == nil {
			return fmt.Errorf("%w: recepción %s", domain.ErrNotFound, receiptID)
		}
		if len(receipt.Lines) == 0 {
			return fmt.Errorf("%w: la recepción %s no tiene líneas", domain.ErrInvalidInput, receipt.Number)
		}
		now := time.Now().UTC()
		for _, line := range receipt.Lines {
			if !line.QuantityReceived.IsPositive() {
				continue
			}
			number, err := sequence.NextDocumentNumber(r.Sequences, companyID, docnum.PrefixPutaway, now)
			if err != nil {
				return err
			}
			task := &entity.PutawayTask{
				ID:                uuid.New().String(),
				CompanyID:         companyID,
				Number:            number,
				Status:            entity.PutawayPending,
				ProductID:         line.ProductID,
				BatchNumber:       line.BatchNumber,
				FromLocationID:    receipt.StagingLocationID,
				QuantityToPutaway: line.QuantityReceived,
				QuantityPutaway:   decimal.Zero,
				ReceiptID:         receipt.ID,
				ReceiptNumber:     receipt.Number,
				CreatedAt:         now,
				UpdatedAt:         now,
				CreatedBy:         userID,
			}
			if err := r.Putaways.Create(task); err != nil {
				return err
			}
			tasks = append(tasks, task)
		}
		if len(tasks) == 0 {
			return fmt.Errorf("%w: la recepción %s no tiene cantidades por guardar", domain.ErrInvalidInput, receipt.Number)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// AssignTask pasa PENDING -> ASSIGNED y fija el operario.
func (uc *UseCase) AssignTask(ctx context.Context, companyID, taskID, assigneeID string) (*entity.PutawayTask, error) {
	if assigneeID == "" {
		return nil, fmt.Errorf("%w: falta el operario asignado", domain.ErrInvalidInput)
	}
	return uc.transition(ctx, companyID, taskID, entity.PutawayAssigned, func(t *entity.PutawayTask, now time.Time) error {
		t.AssignedTo = assigneeID
		t.AssignedAt = &now
		return nil
	})
}

// StartTask pasa ASSIGNED -> IN_PROGRESS.
func (uc *UseCase) StartTask(ctx context.Context, companyID, taskID string) (*entity.PutawayTask, error) {
	return uc.transition(ctx, companyID, taskID, entity.PutawayInProgress, func(t *entity.PutawayTask, now time.Time) error {
		t.StartedAt = &now
		return nil
	})
}

// CompleteTask registra un guardado (parcial o total) en la ubicación real
// elegida: postea el traslado staging -> destino vía motor de posteo y
// acumula la cantidad guardada. La tarea pasa a COMPLETE solo cuando la
// cantidad guardada alcanza la cantidad a guardar; un parcial queda
// IN_PROGRESS.
func (uc *UseCase) CompleteTask(ctx context.Context, companyID, userID, taskID, actualLocationID string, quantity decimal.Decimal) (*entity.PutawayTask, error) {
	var task *entity.PutawayTask
	err := uc.txRunner.Run(ctx, func(r ledger.TxRepos) error {
		var err error
		task, err = uc.getForUpdate(r, companyID, taskID)
		if err != nil {
			return err
		}
		if task.Status != entity.PutawayInProgress {
			return fmt.Errorf("%w: solo se completa una tarea IN_PROGRESS (actual %s)", domain.ErrInvalidTransition, task.Status)
		}
		if !quantity.IsPositive() || quantity.GreaterThan(task.Remaining()) {
			return fmt.Errorf("%w: cantidad %s fuera de rango (pendiente %s)", domain.ErrInvalidInput, quantity, task.Remaining())
		}
		dest, err := r.Locations.GetByID(companyID, actualLocationID)
		if err != nil {
			return err
		}
		if dest == nil {
			return fmt.Errorf("%w: ubicación destino %s", domain.ErrNotFound, actualLocationID)
		}
		now := time.Now().UTC()
		// Cada parcial es su propio posteo; el número de línea del
		// movimiento es el ordinal del parcial dentro de la tarea.
		previous, err := r.Movements.ListByReference(companyID, entity.ReferenceTypePutaway, task.ID)
		if err != nil {
			return err
		}
		if _, err := uc.poster.Post(r, ledger.PostingInput{
			CompanyID:       companyID,
			ProductID:       task.ProductID,
			FromLocationID:  task.FromLocationID,
			ToLocationID:    actualLocationID,
			BatchNumber:     task.BatchNumber,
			Quantity:        quantity,
			MovementType:    entity.MovementTypePutaway,
			ReferenceType:   entity.ReferenceTypePutaway,
			ReferenceID:     task.ID,
			ReferenceNumber: task.Number,
			LineID:          task.ID, // la tarea es su propia línea
			LineNumber:      len(previous) + 1,
			CreatedBy:       userID,
			Now:             now,
		}); err != nil {
			return err
		}
		task.QuantityPutaway = task.QuantityPutaway.Add(quantity)
		if task.QuantityPutaway.GreaterThanOrEqual(task.QuantityToPutaway) {
			if err := task.TransitionTo(entity.PutawayComplete); err != nil {
				return err
			}
			task.CompletedAt = &now
		}
		task.UpdatedAt = now
		return r.Putaways.Update(task)
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// CancelTask anula la tarea desde cualquier estado salvo COMPLETE. Lo ya
// guardado por completados parciales permanece en el libro (cada parcial
// fue su propio posteo atómico).
func (uc *UseCase) CancelTask(ctx context.Context, companyID, taskID string) (*entity.PutawayTask, error) {
	return uc.transition(ctx, companyID, taskID, entity.PutawayCancelled, func(t *entity.PutawayTask, now time.Time) error {
		t.CancelledAt = &now
		return nil
	})
}

// SuggestLocations puntúa las ubicaciones de almacenamiento activas de la
// bodega y devuelve las topN mejores para guardar el producto. Solo
// consulta: no reserva ni muta nada.
func (uc *UseCase) SuggestLocations(ctx context.Context, companyID, warehouseID, productID string, quantity decimal.Decimal, topN int) ([]domputaway.Candidate, error) {
	product, err := uc.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil || product.CompanyID != companyID {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
	}
	locations, err := uc.locRepo.ListActiveByWarehouse(companyID, warehouseID)
	if err != nil {
		return nil, err
	}
	storage := locations[:0]
	for _, loc := range locations {
		if loc.Type == entity.LocationTypeStorage {
			storage = append(storage, loc)
		}
	}
	occupancy, err := uc.levelRepo.OccupancyByWarehouse(companyID, warehouseID)
	if err != nil {
		return nil, err
	}
	if topN <= 0 {
		topN = 5
	}
	return domputaway.Rank(storage, occupancy, quantity, product.PreferredZone, topN), nil
}

// Get devuelve una tarea.
func (uc *UseCase) Get(ctx context.Context, companyID, taskID string) (*entity.PutawayTask, error) {
	task, err := uc.taskRepo.GetByID(companyID, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, fmt.Errorf("%w: tarea %s", domain.ErrNotFound, taskID)
	}
	return task, nil
}

// List lista tareas por estado (vacío = todas).
func (uc *UseCase) List(ctx context.Context, companyID string, status entity.PutawayStatus, limit, offset int) ([]*entity.PutawayTask, error) {
	return uc.taskRepo.List(companyID, status, limit, offset)
}

// ── Internos ─────────────────────────────────────────────────────────────────

func (uc *UseCase) getForUpdate(r ledger.TxRepos, companyID, taskID string) (*entity.PutawayTask, error) {
	task, err := r.Putaways.GetForUpdate(companyID, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, fmt.Errorf("%w: tarea %s", domain.ErrNotFound, taskID)
	}
	return task, nil
}

func (uc *UseCase) transition(ctx context.Context, companyID, taskID string, to entity.PutawayStatus, mutate func(t *entity.PutawayTask, now time.Time) error) (*entity.PutawayTask, error) {
	var task *entity.PutawayTask
	err := uc.txRunner.Run(ctx, func(r ledger.TxRepos) error {
		var err error
		task, err = uc.getForUpdate(r, companyID, taskID)
		if err != nil {
			return err
		}
		if err := task.TransitionTo(to); err != nil {
			return err
		}
		now := time.Now().UTC()
		if err := mutate(task, now); err != nil {
			return err
		}
		task.UpdatedAt = now
		return r.Putaways.Update(task)
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}
