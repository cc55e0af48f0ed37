package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tu-usuario/warehouse-pro/internal/domain/entity"
	"github.com/tu-usuario/warehouse-pro/internal/domain/repository"
)

var _ repository.LocationRepository = (*LocationRepo)(nil)

// LocationRepo adaptador de ubicaciones sobre PostgreSQL.
type LocationRepo struct {
	q Querier
}

// NewLocationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLocationRepository(q Querier) *LocationRepo {
	return &LocationRepo{q: q}
}

const locationColumns = `id, company_id, warehouse_id, code, type, zone, aisle, level,
		capacity, is_active, created_at, updated_at`

// GetByID obtiene una ubicación; nil si no existe.
func (r *LocationRepo) GetByID(companyID, id string) (*entity.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations WHERE company_id = $1 AND id = $2`
	loc, err := r.scanOne(r.q.QueryRow(context.Background(), query, companyID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get location: %w", err)
	}
	return loc, nil
}

// ListActiveByWarehouse ubicaciones activas de una bodega, por código.
func (r *LocationRepo) ListActiveByWarehouse(companyID, warehouseID string) ([]*entity.Location, error) {
	query := `
		SELECT ` + locationColumns + `
		FROM locations
		WHERE company_id = $1 AND warehouse_id = $2 AND is_active = true
		ORDER BY code`
	rows, err := r.q.Query(context.Background(), query, companyID, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()

	var locations []*entity.Location
	for rows.Next() {
		loc, err := r.scanOne(rows)
		if err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		locations = append(locations, loc)
	}
	return locations, rows.Err()
}

func (r *LocationRepo) scanOne(row pgx.Row) (*entity.Location, error) {
	var l entity.Location
	err := row.Scan(
		&l.ID, &l.CompanyID, &l.WarehouseID, &l.Code, &l.Type, &l.Zone, &l.Aisle, &l.Level,
		&l.Capacity, &l.IsActive, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}
