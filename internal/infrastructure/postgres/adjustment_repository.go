package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/tu-usuario/warehouse-pro/internal/domain"
	"github.com/tu-usuario/warehouse-pro/internal/domain/entity"
	"github.com/tu-usuario/warehouse-pro/internal/domain/repository"
)

var _ repository.AdjustmentRepository = (*AdjustmentRepo)(nil)

// AdjustmentRepo adaptador de ajustes de stock sobre PostgreSQL.
type AdjustmentRepo struct {
	q Querier
}

// NewAdjustmentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAdjustmentRepository(q Querier) *AdjustmentRepo {
	return &AdjustmentRepo{q: q}
}

const adjustmentColumns = `id, company_id, number, status, reason, notes,
		total_lines, total_quantity, total_value,
		created_at, updated_at, created_by,
		submitted_at, approved_at, approved_by, posted_at, posted_by, cancelled_at,
		source_type, source_id`

const adjustmentLineColumns = `id, adjustment_id, line_number, product_id, location_id,
		batch_number, serial_number, quantity_before, quantity_change, unit_cost,
		reason, is_processed, processed_at, movement_id`

// Create inserta la cabecera y sus líneas. Un número duplicado se reporta
// como ErrDuplicate.
func (r *AdjustmentRepo) Create(adj *entity.StockAdjustment) error {
	ctx := context.Background()
	query := `
		INSERT INTO stock_adjustments (` + adjustmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`
	_, err := r.q.Exec(ctx, query,
		adj.ID, adj.CompanyID, adj.Number, adj.Status, adj.Reason, adj.Notes,
		adj.TotalLines, adj.TotalQuantity, adj.TotalValue,
		adj.CreatedAt, adj.UpdatedAt, adj.CreatedBy,
		adj.SubmittedAt, adj.ApprovedAt, nullIfEmpty(adj.ApprovedBy),
		adj.PostedAt, nullIfEmpty(adj.PostedBy), adj.CancelledAt,
		nullIfEmpty(adj.SourceType), nullIfEmpty(adj.SourceID),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: ajuste %s", domain.ErrDuplicate, adj.Number)
		}
		return fmt.Errorf("create adjustment: %w", err)
	}
	for _, line := range adj.Lines {
		if err := r.SaveLine(line); err != nil {
			return err
		}
	}
	return nil
}

// GetByID carga el ajuste con sus líneas; nil si no existe.
func (r *AdjustmentRepo) GetByID(companyID, id string) (*entity.StockAdjustment, error) {
	return r.get(companyID, id, false)
}

// GetForUpdate carga el ajuste bloqueando la cabecera (FOR UPDATE).
func (r *AdjustmentRepo) GetForUpdate(companyID, id string) (*entity.StockAdjustment, error) {
	return r.get(companyID, id, true)
}

func (r *AdjustmentRepo) get(companyID, id string, forUpdate bool) (*entity.StockAdjustment, error) {
	ctx := context.Background()
	query := `
		SELECT ` + adjustmentColumns + `
		FROM stock_adjustments
		WHERE company_id = $1 AND id = $2`
	if forUpdate {
		query += " FOR UPDATE"
	}
	adj, err := r.scanHeader(r.q.QueryRow(ctx, query, companyID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get adjustment: %w", err)
	}
	if err := r.loadLines(ctx, adj); err != nil {
		return nil, err
	}
	return adj, nil
}

// List lista ajustes por estado (vacío = todos), más recientes primero,
// sin líneas.
func (r *AdjustmentRepo) List(companyID string, status entity.AdjustmentStatus, limit, offset int) ([]*entity.StockAdjustment, error) {
	query := `
		SELECT ` + adjustmentColumns + `
		FROM stock_adjustments
		WHERE company_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(context.Background(), query, companyID, string(status), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list adjustments: %w", err)
	}
	defer rows.Close()

	var adjustments []*entity.StockAdjustment
	for rows.Next() {
		adj, err := r.scanHeader(rows)
		if err != nil {
			return nil, fmt.Errorf("scan adjustment: %w", err)
		}
		adjustments = append(adjustments, adj)
	}
	return adjustments, rows.Err()
}

// UpdateHeader persiste estado, totales y timestamps de transición.
func (r *AdjustmentRepo) UpdateHeader(adj *entity.StockAdjustment) error {
	query := `
		UPDATE stock_adjustments
		SET status = $3, reason = $4, notes = $5,
		    total_lines = $6, total_quantity = $7, total_value = $8,
		    updated_at = $9, submitted_at = $10,
		    approved_at = $11, approved_by = $12,
		    posted_at = $13, posted_by = $14, cancelled_at = $15
		WHERE company_id = $1 AND id = $2`
	_, err := r.q.Exec(context.Background(), query,
		adj.CompanyID, adj.ID, adj.Status, adj.Reason, adj.Notes,
		adj.TotalLines, adj.TotalQuantity, adj.TotalValue,
		adj.UpdatedAt, adj.SubmittedAt,
		adj.ApprovedAt, nullIfEmpty(adj.ApprovedBy),
		adj.PostedAt, nullIfEmpty(adj.PostedBy), adj.CancelledAt,
	)
	if err != nil {
		return fmt.Errorf("update adjustment: %w", err)
	}
	return nil
}

// SaveLine inserta o actualiza una línea (upsert por ID).
func (r *AdjustmentRepo) SaveLine(line *entity.AdjustmentLine) error {
	query := `
		INSERT INTO stock_adjustment_lines (` + adjustmentLineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			line_number = EXCLUDED.line_number,
			product_id = EXCLUDED.product_id,
			location_id = EXCLUDED.location_id,
			batch_number = EXCLUDED.batch_number,
			serial_number = EXCLUDED.serial_number,
			quantity_before = EXCLUDED.quantity_before,
			quantity_change = EXCLUDED.quantity_change,
			unit_cost = EXCLUDED.unit_cost,
			reason = EXCLUDED.reason`
	_, err := r.q.Exec(context.Background(), query,
		line.ID, line.AdjustmentID, line.LineNumber, line.ProductID, line.LocationID,
		line.BatchNumber, line.SerialNumber, line.QuantityBefore, line.QuantityChange, line.UnitCost,
		line.Reason, line.IsProcessed, line.ProcessedAt, nullIfEmpty(line.MovementID),
	)
	if err != nil {
		return fmt.Errorf("save adjustment line: %w", err)
	}
	return nil
}

// DeleteLine elimina una línea de un ajuste en borrador.
func (r *AdjustmentRepo) DeleteLine(adjustmentID, lineID string) error {
	query := `DELETE FROM stock_adjustment_lines WHERE adjustment_id = $1 AND id = $2`
	_, err := r.q.Exec(context.Background(), query, adjustmentID, lineID)
	if err != nil {
		return fmt.Errorf("delete adjustment line: %w", err)
	}
	return nil
}

// MarkLineProcessed estampa la marca de idempotencia junto al movimiento
// generado. Debe correr en la misma transacción que el posteo.
func (r *AdjustmentRepo) MarkLineProcessed(lineID, movementID string, at time.Time) error {
	query := `
		UPDATE stock_adjustment_lines
		SET is_processed = true, processed_at = $2, movement_id = $3
		WHERE id = $1 AND is_processed = false`
	tag, err := r.q.Exec(context.Background(), query, lineID, at, movementID)
	if err != nil {
		return fmt.Errorf("mark line processed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: línea %s", domain.ErrAlreadyProcessed, lineID)
	}
	return nil
}

func (r *AdjustmentRepo) loadLines(ctx context.Context, adj *entity.StockAdjustment) error {
	query := `
		SELECT ` + adjustmentLineColumns + `
		FROM stock_adjustment_lines
		WHERE adjustment_id = $1
		ORDER BY line_number`
	rows, err := r.q.Query(ctx, query, adj.ID)
	if err != nil {
		return fmt.Errorf("load adjustment lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l entity.AdjustmentLine
		var movementID *string
		if err := rows.Scan(
			&l.ID, &l.AdjustmentID, &l.LineNumber, &l.ProductID, &l.LocationID,
			&l.BatchNumber, &l.SerialNumber, &l.QuantityBefore, &l.QuantityChange, &l.UnitCost,
			&l.Reason, &l.IsProcessed, &l.ProcessedAt, &movementID,
		); err != nil {
			return fmt.Errorf("scan adjustment line: %w", err)
		}
		l.MovementID = deref(movementID)
		adj.Lines = append(adj.Lines, &l)
	}
	return rows.Err()
}

func (r *AdjustmentRepo) scanHeader(row pgx.Row) (*entity.StockAdjustment, error) {
	var a entity.StockAdjustment
	var approvedBy, postedBy, sourceType, sourceID *string
	err := row.Scan(
		&a.ID, &a.CompanyID, &a.Number, &a.Status, &a.Reason, &a.Notes,
		&a.TotalLines, &a.TotalQuantity, &a.TotalValue,
		&a.CreatedAt, &a.UpdatedAt, &a.CreatedBy,
		&a.SubmittedAt, &a.ApprovedAt, &approvedBy, &a.PostedAt, &postedBy, &a.CancelledAt,
		&sourceType, &sourceID,
	)
	if err != nil {
		return nil, err
	}
	a.ApprovedBy = deref(approvedBy)
	a.PostedBy = deref(postedBy)
	a.SourceType = deref(sourceType)
	a.SourceID = deref(sourceID)
	return &a, nil
}
