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

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo adaptador del historial de movimientos (append-only).
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

const movementColumns = `id, company_id, movement_number, movement_type, product_id,
		from_location_id, to_location_id, quantity, batch_number, serial_number,
		reference_type, reference_id, reference_number, line_id, notes, created_at, created_by`

// Append agrega un movimiento. El número de movimiento es único por empresa;
// una colisión se reporta como ErrDuplicate.
func (r *StockMovementRepo) Append(m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(context.Background(), query,
		m.ID, m.CompanyID, m.MovementNumber, m.MovementType, m.ProductID,
		nullIfEmpty(m.FromLocationID), nullIfEmpty(m.ToLocationID), m.Quantity,
		m.BatchNumber, m.SerialNumber,
		m.ReferenceType, m.ReferenceID, m.ReferenceNumber, m.LineID, m.Notes,
		m.CreatedAt, m.CreatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: movimiento %s", domain.ErrDuplicate, m.MovementNumber)
		}
		return fmt.Errorf("append movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento; nil si no existe.
func (r *StockMovementRepo) GetByID(companyID, id string) (*entity.StockMovement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM stock_movements
		WHERE company_id = $1 AND id = $2`
	m, err := r.scanOne(r.q.QueryRow(context.Background(), query, companyID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return m, nil
}

// ListByReference movimientos generados por un documento de workflow, en
// orden de creación.
func (r *StockMovementRepo) ListByReference(companyID, referenceType, referenceID string) ([]*entity.StockMovement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM stock_movements
		WHERE company_id = $1 AND reference_type = $2 AND reference_id = $3
		ORDER BY created_at, movement_number`
	return r.list(query, companyID, referenceType, referenceID)
}

// ListByKey movimientos de una clave de stock, más recientes primero.
func (r *StockMovementRepo) ListByKey(key entity.StockKey, limit, offset int) ([]*entity.StockMovement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM stock_movements
		WHERE company_id = $1 AND product_id = $2
		  AND (from_location_id = $3 OR to_location_id = $3)
		  AND batch_number = $4 AND serial_number = $5
		ORDER BY created_at DESC, movement_number DESC
		LIMIT $6 OFFSET $7`
	return r.list(query, key.CompanyID, key.ProductID, key.LocationID,
		key.BatchNumber, key.SerialNumber, limit, offset)
}

func (r *StockMovementRepo) list(query string, args ...any) ([]*entity.StockMovement, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	var movements []*entity.StockMovement
	for rows.Next() {
		m, err := r.scanOne(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

func (r *StockMovementRepo) scanOne(row pgx.Row) (*entity.StockMovement, error) {
	var m entity.StockMovement
	var fromLoc, toLoc *string
	err := row.Scan(
		&m.ID, &m.CompanyID, &m.MovementNumber, &m.MovementType, &m.ProductID,
		&fromLoc, &toLoc, &m.Quantity, &m.BatchNumber, &m.SerialNumber,
		&m.ReferenceType, &m.ReferenceID, &m.ReferenceNumber, &m.LineID, &m.Notes,
		&m.CreatedAt, &m.CreatedBy,
	)
	if err != nil {
		return nil, err
	}
	m.FromLocationID = deref(fromLoc)
	m.ToLocationID = deref(toLoc)
	return &m, nil
}
