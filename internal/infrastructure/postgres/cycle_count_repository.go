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

var _ repository.CycleCountRepository = (*CycleCountRepo)(nil)

// CycleCountRepo adaptador de sesiones de conteo cíclico sobre PostgreSQL.
type CycleCountRepo struct {
	q Querier
}

// NewCycleCountRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCycleCountRepository(q Querier) *CycleCountRepo {
	return &CycleCountRepo{q: q}
}

const cycleCountColumns = `id, company_id, number, status, warehouse_id, description,
		blind_count, allow_recounts, max_recounts,
		scheduled_for, started_at, completed_at, cancelled_at,
		created_at, updated_at, created_by`

const cycleCountItemColumns = `id, session_id, line_number, product_id, location_id, batch_number,
		expected_quantity, counted_quantity, variance, status,
		requires_approval, is_approved, recount_number,
		counted_by, counted_at, approved_by, approved_at, adjusted_at, movement_id, notes`

// Create inserta la sesión y sus ítems.
func (r *CycleCountRepo) Create(session *entity.CycleCountSession) error {
	query := `
		INSERT INTO cycle_count_sessions (` + cycleCountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.q.Exec(context.Background(), query,
		session.ID, session.CompanyID, session.Number, session.Status,
		session.WarehouseID, session.Description,
		session.BlindCount, session.AllowRecounts, session.MaxRecounts,
		session.ScheduledFor, session.StartedAt, session.CompletedAt, session.CancelledAt,
		session.CreatedAt, session.UpdatedAt, session.CreatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: sesión %s", domain.ErrDuplicate, session.Number)
		}
		return fmt.Errorf("create cycle count session: %w", err)
	}
	for _, item := range session.Items {
		if err := r.SaveItem(item); err != nil {
			return err
		}
	}
	return nil
}

// GetByID carga la sesión con sus ítems; nil si no existe.
func (r *CycleCountRepo) GetByID(companyID, id string) (*entity.CycleCountSession, error) {
	return r.get(companyID, id, false)
}

// GetForUpdate carga la sesión bloqueando la cabecera (FOR UPDATE).
func (r *CycleCountRepo) GetForUpdate(companyID, id string) (*entity.CycleCountSession, error) {
	return r.get(companyID, id, true)
}

func (r *CycleCountRepo) get(companyID, id string, forUpdate bool) (*entity.CycleCountSession, error) {
	ctx := context.Background()
	query := `
		SELECT ` + cycleCountColumns + `
		FROM cycle_count_sessions
		WHERE company_id = $1 AND id = $2`
	if forUpdate {
		query += " FOR UPDATE"
	}
	session, err := r.scanHeader(r.q.QueryRow(ctx, query, companyID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cycle count session: %w", err)
	}
	if err := r.loadItems(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// List lista sesiones por estado (vacío = todas), más recientes primero,
// sin ítems.
func (r *CycleCountRepo) List(companyID string, status entity.CycleCountStatus, limit, offset int) ([]*entity.CycleCountSession, error) {
	query := `
		SELECT ` + cycleCountColumns + `
		FROM cycle_count_sessions
		WHERE company_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(context.Background(), query, companyID, string(status), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list cycle count sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*entity.CycleCountSession
	for rows.Next() {
		session, err := r.scanHeader(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cycle count session: %w", err)
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

// UpdateHeader persiste estado y timestamps de transición.
func (r *CycleCountRepo) UpdateHeader(session *entity.CycleCountSession) error {
	query := `
		UPDATE cycle_count_sessions
		SET status = $3, description = $4,
		    blind_count = $5, allow_recounts = $6, max_recounts = $7,
		    scheduled_for = $8, started_at = $9, completed_at = $10, cancelled_at = $11,
		    updated_at = $12
		WHERE company_id = $1 AND id = $2`
	_, err := r.q.Exec(context.Background(), query,
		session.CompanyID, session.ID, session.Status, session.Description,
		session.BlindCount, session.AllowRecounts, session.MaxRecounts,
		session.ScheduledFor, session.StartedAt, session.CompletedAt, session.CancelledAt,
		session.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update cycle count session: %w", err)
	}
	return nil
}

// SaveItem inserta o actualiza un ítem (upsert por ID).
func (r *CycleCountRepo) SaveItem(item *entity.CycleCountItem) error {
	query := `
		INSERT INTO cycle_count_items (` + cycleCountItemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		ON CONFLICT (id) DO UPDATE SET
			counted_quantity = EXCLUDED.counted_quantity,
			variance = EXCLUDED.variance,
			status = EXCLUDED.status,
			requires_approval = EXCLUDED.requires_approval,
			is_approved = EXCLUDED.is_approved,
			recount_number = EXCLUDED.recount_number,
			counted_by = EXCLUDED.counted_by,
			counted_at = EXCLUDED.counted_at,
			approved_by = EXCLUDED.approved_by,
			approved_at = EXCLUDED.approved_at,
			adjusted_at = EXCLUDED.adjusted_at,
			movement_id = EXCLUDED.movement_id,
			notes = EXCLUDED.notes`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.SessionID, item.LineNumber, item.ProductID, item.LocationID, item.BatchNumber,
		item.ExpectedQuantity, item.CountedQuantity, item.Variance, item.Status,
		item.RequiresApproval, item.IsApproved, item.RecountNumber,
		nullIfEmpty(item.CountedBy), item.CountedAt,
		nullIfEmpty(item.ApprovedBy), item.ApprovedAt,
		item.AdjustedAt, nullIfEmpty(item.MovementID), item.Notes,
	)
	if err != nil {
		return fmt.Errorf("save cycle count item: %w", err)
	}
	return nil
}

func (r *CycleCountRepo) loadItems(ctx context.Context, session *entity.CycleCountSession) error {
	query := `
		SELECT ` + cycleCountItemColumns + `
		FROM cycle_count_items
		WHERE session_id = $1
		ORDER BY line_number`
	rows, err := r.q.Query(ctx, query, session.ID)
	if err != nil {
		return fmt.Errorf("load cycle count items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it entity.CycleCountItem
		var countedBy, approvedBy, movementID *string
		if err := rows.Scan(
			&it.ID, &it.SessionID, &it.LineNumber, &it.ProductID, &it.LocationID, &it.BatchNumber,
			&it.ExpectedQuantity, &it.CountedQuantity, &it.Variance, &it.Status,
			&it.RequiresApproval, &it.IsApproved, &it.RecountNumber,
			&countedBy, &it.CountedAt, &approvedBy, &it.ApprovedAt,
			&it.AdjustedAt, &movementID, &it.Notes,
		); err != nil {
			return fmt.Errorf("scan cycle count item: %w", err)
		}
		it.CountedBy = deref(countedBy)
		it.ApprovedBy = deref(approvedBy)
		it.MovementID = deref(movementID)
		session.Items = append(session.Items, &it)
	}
	return rows.Err()
}

func (r *CycleCountRepo) scanHeader(row pgx.Row) (*entity.CycleCountSession, error) {
	var s entity.CycleCountSession
	err := row.Scan(
		&s.ID, &s.CompanyID, &s.Number, &s.Status, &s.WarehouseID, &s.Description,
		&s.BlindCount, &s.AllowRecounts, &s.MaxRecounts,
		&s.ScheduledFor, &s.StartedAt, &s.CompletedAt, &s.CancelledAt,
		&s.CreatedAt, &s.UpdatedAt, &s.CreatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
