package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tu-usuario/warehouse-pro/internal/domain"
	"github.com/tu-usuario/warehouse-pro/internal/domain/entity"
	"github.com/tu-usuario/warehouse-pro/internal/domain/repository"
)

var _ repository.PutawayRepository = (*PutawayRepo)(nil)

// PutawayRepo adaptador de tareas de putaway sobre PostgreSQL.
type PutawayRepo struct {
	q Querier
}

// NewPutawayRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPutawayRepository(q Querier) *PutawayRepo {
	return &PutawayRepo{q: q}
}

const putawayColumns = `id, company_id, number, status, product_id, batch_number,
		from_location_id, suggested_location_id,
		quantity_to_putaway, quantity_putaway,
		assigned_to, receipt_id, receipt_number, priority,
		created_at, updated_at, created_by,
		assigned_at, started_at, completed_at, cancelled_at`

// Create inserta la tarea.
func (r *PutawayRepo) Create(task *entity.PutawayTask) error {
	query := `
		INSERT INTO putaway_tasks (` + putawayColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`
	_, err := r.q.Exec(context.Background(), query,
		task.ID, task.CompanyID, task.Number, task.Status, task.ProductID, task.BatchNumber,
		task.FromLocationID, nullIfEmpty(task.SuggestedLocationID),
		task.QuantityToPutaway, task.QuantityPutaway,
		nullIfEmpty(task.AssignedTo), nullIfEmpty(task.ReceiptID), task.ReceiptNumber, task.Priority,
		task.CreatedAt, task.UpdatedAt, task.CreatedBy,
		task.AssignedAt, task.StartedAt, task.CompletedAt, task.CancelledAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: tarea %s", domain.ErrDuplicate, task.Number)
		}
		return fmt.Errorf("create putaway task: %w", err)
	}
	return nil
}

// GetByID obtiene la tarea; nil si no existe.
func (r *PutawayRepo) GetByID(companyID, id string) (*entity.PutawayTask, error) {
	return r.get(companyID, id, false)
}

// GetForUpdate obtiene la tarea bloqueando la fila (FOR UPDATE).
func (r *PutawayRepo) GetForUpdate(companyID, id string) (*entity.PutawayTask, error) {
	return r.get(companyID, id, true)
}

func (r *PutawayRepo) get(companyID, id string, forUpdate bool) (*entity.PutawayTask, error) {
	query := `
		SELECT ` + putawayColumns + `
		FROM putaway_tasks
		WHERE company_id = $1 AND id = $2`
	if forUpdate {
		query += " FOR UPDATE"
	}
	task, err := r.scanOne(r.q.QueryRow(context.Background(), query, companyID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get putaway task: %w", err)
	}
	return task, nil
}

// List lista tareas por estado (vacío = todas), prioridad primero y luego
// más antiguas primero (orden de trabajo).
func (r *PutawayRepo) List(companyID string, status entity.PutawayStatus, limit, offset int) ([]*entity.PutawayTask, error) {
	query := `
		SELECT ` + putawayColumns + `
		FROM putaway_tasks
		WHERE company_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY priority DESC, created_at
		LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(context.Background(), query, companyID, string(status), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list putaway tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*entity.PutawayTask
	for rows.Next() {
		task, err := r.scanOne(rows)
		if err != nil {
			return nil, fmt.Errorf("scan putaway task: %w", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// Update persiste estado, cantidades y timestamps de transición.
func (r *PutawayRepo) Update(task *entity.PutawayTask) error {
	query := `
		UPDATE putaway_tasks
		SET status = $3, suggested_location_id = $4,
		    quantity_putaway = $5, assigned_to = $6, priority = $7,
		    updated_at = $8, assigned_at = $9, started_at = $10,
		    completed_at = $11, cancelled_at = $12
		WHERE company_id = $1 AND id = $2`
	_, err := r.q.Exec(context.Background(), query,
		task.CompanyID, task.ID, task.Status, nullIfEmpty(task.SuggestedLocationID),
		task.QuantityPutaway, nullIfEmpty(task.AssignedTo), task.Priority,
		task.UpdatedAt, task.AssignedAt, task.StartedAt,
		task.CompletedAt, task.CancelledAt,
	)
	if err != nil {
		return fmt.Errorf("update putaway task: %w", err)
	}
	return nil
}

func (r *PutawayRepo) scanOne(row pgx.Row) (*entity.PutawayTask, error) {
	var t entity.PutawayTask
	var suggested, assignedTo, receiptID *string
	err := row.Scan(
		&t.ID, &t.CompanyID, &t.Number, &t.Status, &t.ProductID, &t.BatchNumber,
		&t.FromLocationID, &suggested,
		&t.QuantityToPutaway, &t.QuantityPutaway,
		&assignedTo, &receiptID, &t.ReceiptNumber, &t.Priority,
		&t.CreatedAt, &t.UpdatedAt, &t.CreatedBy,
		&t.AssignedAt, &t.StartedAt, &t.CompletedAt, &t.CancelledAt,
	)
	if err != nil {
		return nil, err
	}
	t.SuggestedLocationID = deref(suggested)
	t.AssignedTo = deref(assignedTo)
	t.ReceiptID = deref(receiptID)
	return &t, nil
}
