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

var _ repository.ReturnOrderRepository = (*ReturnOrderRepo)(nil)

// ReturnOrderRepo adaptador de órdenes de devolución sobre PostgreSQL.
type ReturnOrderRepo struct {
	q Querier
}

// NewReturnOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReturnOrderRepository(q Querier) *ReturnOrderRepo {
	return &ReturnOrderRepo{q: q}
}

const returnOrderColumns = `id, company_id, number, status, customer_reference,
		receiving_location_id, reason, notes,
		created_at, updated_at, created_by,
		in_transit_at, received_at, completed_at, cancelled_at`

const returnLineColumns = `id, return_order_id, line_number, product_id, batch_number,
		quantity_expected, quantity_received, quantity_accepted, quantity_rejected,
		status, disposition, notes, received_at, processed_at`

// Create inserta la orden y sus líneas.
func (r *ReturnOrderRepo) Create(order *entity.ReturnOrder) error {
	query := `
		INSERT INTO return_orders (` + returnOrderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(context.Background(), query,
		order.ID, order.CompanyID, order.Number, order.Status, order.CustomerReference,
		order.ReceivingLocationID, order.Reason, order.Notes,
		order.CreatedAt, order.UpdatedAt, order.CreatedBy,
		order.InTransitAt, order.ReceivedAt, order.CompletedAt, order.CancelledAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: devolución %s", domain.ErrDuplicate, order.Number)
		}
		return fmt.Errorf("create return order: %w", err)
	}
	for _, line := range order.Lines {
		if err := r.SaveLine(line); err != nil {
			return err
		}
	}
	return nil
}

// GetByID carga la orden con sus líneas; nil si no existe.
func (r *ReturnOrderRepo) GetByID(companyID, id string) (*entity.ReturnOrder, error) {
	return r.get(companyID, id, false)
}

// GetForUpdate carga la orden bloqueando la cabecera (FOR UPDATE).
func (r *ReturnOrderRepo) GetForUpdate(companyID, id string) (*entity.ReturnOrder, error) {
	return r.get(companyID, id, true)
}

func (r *ReturnOrderRepo) get(companyID, id string, forUpdate bool) (*entity.ReturnOrder, error) {
	ctx := context.Background()
	query := `
		SELECT ` + returnOrderColumns + `
		FROM return_orders
		WHERE company_id = $1 AND id = $2`
	if forUpdate {
		query += " FOR UPDATE"
	}
	order, err := r.scanHeader(r.q.QueryRow(ctx, query, companyID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get return order: %w", err)
	}
	if err := r.loadLines(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// List lista órdenes por estado (vacío = todas), más recientes primero,
// sin líneas.
func (r *ReturnOrderRepo) List(companyID string, status entity.ReturnStatus, limit, offset int) ([]*entity.ReturnOrder, error) {
	query := `
		SELECT ` + returnOrderColumns + `
		FROM return_orders
		WHERE company_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(context.Background(), query, companyID, string(status), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list return orders: %w", err)
	}
	defer rows.Close()

	var orders []*entity.ReturnOrder
	for rows.Next() {
		order, err := r.scanHeader(rows)
		if err != nil {
			return nil, fmt.Errorf("scan return order: %w", err)
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

// UpdateHeader persiste estado y timestamps de transición.
func (r *ReturnOrderRepo) UpdateHeader(order *entity.ReturnOrder) error {
	query := `
		UPDATE return_orders
		SET status = $3, customer_reference = $4, reason = $5, notes = $6,
		    updated_at = $7, in_transit_at = $8, received_at = $9,
		    completed_at = $10, cancelled_at = $11
		WHERE company_id = $1 AND id = $2`
	_, err := r.q.Exec(context.Background(), query,
		order.CompanyID, order.ID, order.Status, order.CustomerReference, order.Reason, order.Notes,
		order.UpdatedAt, order.InTransitAt, order.ReceivedAt,
		order.CompletedAt, order.CancelledAt,
	)
	if err != nil {
		return fmt.Errorf("update return order: %w", err)
	}
	return nil
}

// SaveLine inserta o actualiza una línea (upsert por ID).
func (r *ReturnOrderRepo) SaveLine(line *entity.ReturnLine) error {
	query := `
		INSERT INTO return_lines (` + returnLineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			quantity_received = EXCLUDED.quantity_received,
			quantity_accepted = EXCLUDED.quantity_accepted,
			quantity_rejected = EXCLUDED.quantity_rejected,
			status = EXCLUDED.status,
			disposition = EXCLUDED.disposition,
			notes = EXCLUDED.notes,
			received_at = EXCLUDED.received_at,
			processed_at = EXCLUDED.processed_at`
	_, err := r.q.Exec(context.Background(), query,
		line.ID, line.ReturnOrderID, line.LineNumber, line.ProductID, line.BatchNumber,
		line.QuantityExpected, line.QuantityReceived, line.QuantityAccepted, line.QuantityRejected,
		line.Status, line.Disposition, line.Notes, line.ReceivedAt, line.ProcessedAt,
	)
	if err != nil {
		return fmt.Errorf("save return line: %w", err)
	}
	return nil
}

// DeleteLine elimina una línea de una orden en PENDING.
func (r *ReturnOrderRepo) DeleteLine(returnOrderID, lineID string) error {
	query := `DELETE FROM return_lines WHERE return_order_id = $1 AND id = $2`
	_, err := r.q.Exec(context.Background(), query, returnOrderID, lineID)
	if err != nil {
		return fmt.Errorf("delete return line: %w", err)
	}
	return nil
}

func (r *ReturnOrderRepo) loadLines(ctx context.Context, order *entity.ReturnOrder) error {
	query := `
		SELECT ` + returnLineColumns + `
		FROM return_lines
		WHERE return_order_id = $1
		ORDER BY line_number`
	rows, err := r.q.Query(ctx, query, order.ID)
	if err != nil {
		return fmt.Errorf("load return lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l entity.ReturnLine
		if err := rows.Scan(
			&l.ID, &l.ReturnOrderID, &l.LineNumber, &l.ProductID, &l.BatchNumber,
			&l.QuantityExpected, &l.QuantityReceived, &l.QuantityAccepted, &l.QuantityRejected,
			&l.Status, &l.Disposition, &l.Notes, &l.ReceivedAt, &l.ProcessedAt,
		); err != nil {
			return fmt.Errorf("scan return line: %w", err)
		}
		order.Lines = append(order.Lines, &l)
	}
	return rows.Err()
}

func (r *ReturnOrderRepo) scanHeader(row pgx.Row) (*entity.ReturnOrder, error) {
	var o entity.ReturnOrder
	err := row.Scan(
		&o.ID, &o.CompanyID, &o.Number, &o.Status, &o.CustomerReference,
		&o.ReceivingLocationID, &o.Reason, &o.Notes,
		&o.CreatedAt, &o.UpdatedAt, &o.CreatedBy,
		&o.InTransitAt, &o.ReceivedAt, &o.CompletedAt, &o.CancelledAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}
