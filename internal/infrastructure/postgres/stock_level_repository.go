package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/warehouse-pro/internal/domain"
	"github.com/tu-usuario/warehouse-pro/internal/domain/entity"
	"github.com/tu-usuario/warehouse-pro/internal/domain/repository"
)

var _ repository.StockLevelRepository = (*StockLevelRepo)(nil)

// StockLevelRepo adaptador del libro de stock sobre PostgreSQL (usable con
// pool o tx).
type StockLevelRepo struct {
	q Querier
}

// NewStockLevelRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockLevelRepository(q Querier) *StockLevelRepo {
	return &StockLevelRepo{q: q}
}

const stockLevelColumns = `company_id, product_id, location_id, batch_number, serial_number,
		quantity_on_hand, quantity_reserved, last_movement_at, updated_at`

// Get obtiene la fila del libro para una clave; nil si nunca hubo stock.
func (r *StockLevelRepo) Get(key entity.StockKey) (*entity.StockLevel, error) {
	query := `
		SELECT ` + stockLevelColumns + `
		FROM stock_levels
		WHERE company_id = $1 AND product_id = $2 AND location_id = $3
		  AND batch_number = $4 AND serial_number = $5`
	level, err := r.scanOne(r.q.QueryRow(context.Background(), query,
		key.CompanyID, key.ProductID, key.LocationID, key.BatchNumber, key.SerialNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock level: %w", err)
	}
	return level, nil
}

// ApplyDelta aplica un delta a la cantidad en mano de una clave. Bloquea la
// fila (FOR UPDATE), rechaza con ErrInsufficientStock el delta negativo que
// dejaría la cantidad bajo cero o bajo lo reservado, y crea la fila si no
// existe y el delta es positivo. El alta usa ON CONFLICT para que dos
// transacciones que estrenan la misma clave a la vez se serialicen en vez de
// chocar contra la primary key.
func (r *StockLevelRepo) ApplyDelta(key entity.StockKey, delta decimal.Decimal, at time.Time) (*entity.StockLevel, error) {
	ctx := context.Background()
	query := `
		SELECT ` + stockLevelColumns + `
		FROM stock_levels
		WHERE company_id = $1 AND product_id = $2 AND location_id = $3
		  AND batch_number = $4 AND serial_number = $5
		FOR UPDATE`
	level, err := r.scanOne(r.q.QueryRow(ctx, query,
		key.CompanyID, key.ProductID, key.LocationID, key.BatchNumber, key.SerialNumber))
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("lock stock level: %w", err)
		}
		if delta.IsNegative() {
			return nil, fmt.Errorf("%w: en mano 0, solicitado %s", domain.ErrInsufficientStock, delta)
		}
		// El delta aquí siempre es positivo, así que sumar sobre la fila del
		// ganador no puede violar ni la no-negatividad ni lo reservado.
		upsert := `
			INSERT INTO stock_levels (` + stockLevelColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, 0, $7, $7)
			ON CONFLICT (company_id, product_id, location_id, batch_number, serial_number)
			DO UPDATE SET quantity_on_hand = stock_levels.quantity_on_hand + EXCLUDED.quantity_on_hand,
			              last_movement_at = EXCLUDED.last_movement_at,
			              updated_at       = EXCLUDED.updated_at
			RETURNING ` + stockLevelColumns
		created, err := r.scanOne(r.q.QueryRow(ctx, upsert,
			key.CompanyID, key.ProductID, key.LocationID, key.BatchNumber, key.SerialNumber,
			delta, at))
		if err != nil {
			return nil, fmt.Errorf("upsert stock level: %w", err)
		}
		return created, nil
	}

	newQty := level.QuantityOnHand.Add(delta)
	if newQty.IsNegative() || newQty.LessThan(level.QuantityReserved) {
		return nil, fmt.Errorf("%w: en mano %s, reservado %s, solicitado %s",
			domain.ErrInsufficientStock, level.QuantityOnHand, level.QuantityReserved, delta)
	}

	update := `
		UPDATE stock_levels
		SET quantity_on_hand = $6, last_movement_at = $7, updated_at = $7
		WHERE company_id = $1 AND product_id = $2 AND location_id = $3
		  AND batch_number = $4 AND serial_number = $5`
	if _, err := r.q.Exec(ctx, update,
		key.CompanyID, key.ProductID, key.LocationID, key.BatchNumber, key.SerialNumber,
		newQty, at); err != nil {
		return nil, fmt.Errorf("update stock level: %w", err)
	}
	level.QuantityOnHand = newQty
	level.LastMovementAt = at
	level.UpdatedAt = at
	return level, nil
}

// ListByProduct niveles de un producto en todas las ubicaciones.
func (r *StockLevelRepo) ListByProduct(companyID, productID string) ([]*entity.StockLevel, error) {
	query := `
		SELECT ` + stockLevelColumns + `
		FROM stock_levels
		WHERE company_id = $1 AND product_id = $2
		ORDER BY location_id, batch_number, serial_number`
	return r.list(query, companyID, productID)
}

// ListByLocation niveles de todos los productos en una ubicación.
func (r *StockLevelRepo) ListByLocation(companyID, locationID string) ([]*entity.StockLevel, error) {
	query := `
		SELECT ` + stockLevelColumns + `
		FROM stock_levels
		WHERE company_id = $1 AND location_id = $2
		ORDER BY product_id, batch_number, serial_number`
	return r.list(query, companyID, locationID)
}

// OccupancyByWarehouse suma la cantidad en mano por ubicación de una bodega.
func (r *StockLevelRepo) OccupancyByWarehouse(companyID, warehouseID string) (map[string]decimal.Decimal, error) {
	query := `
		SELECT sl.location_id, COALESCE(SUM(sl.quantity_on_hand), 0)
		FROM stock_levels sl
		JOIN locations l ON l.id = sl.location_id
		WHERE sl.company_id = $1 AND l.warehouse_id = $2
		GROUP BY sl.location_id`
	rows, err := r.q.Query(context.Background(), query, companyID, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("occupancy by warehouse: %w", err)
	}
	defer rows.Close()

	occupancy := make(map[string]decimal.Decimal)
	for rows.Next() {
		var locationID string
		var qty decimal.Decimal
		if err := rows.Scan(&locationID, &qty); err != nil {
			return nil, fmt.Errorf("scan occupancy: %w", err)
		}
		occupancy[locationID] = qty
	}
	return occupancy, rows.Err()
}

func (r *StockLevelRepo) list(query string, args ...any) ([]*entity.StockLevel, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock levels: %w", err)
	}
	defer rows.Close()

	var levels []*entity.StockLevel
	for rows.Next() {
		level, err := r.scanOne(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock level: %w", err)
		}
		levels = append(levels, level)
	}
	return levels, rows.Err()
}

func (r *StockLevelRepo) scanOne(row pgx.Row) (*entity.StockLevel, error) {
	var s entity.StockLevel
	err := row.Scan(
		&s.CompanyID, &s.ProductID, &s.LocationID, &s.BatchNumber, &s.SerialNumber,
		&s.QuantityOnHand, &s.QuantityReserved, &s.LastMovementAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
