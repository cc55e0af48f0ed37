// Package stock expone las consultas de solo lectura sobre el libro de
// stock y su historial de movimientos.
package stock

import (
	"context"
	"fmt"

	"github.com/tu-usuario/warehouse-pro/internal/domain"
	"github.com/tu-usuario/warehouse-pro/internal/domain/entity"
	"github.com/tu-usuario/warehouse-pro/internal/domain/repository"
)

// QueryService consultas del libro. No muta nada; toda mutación pasa por el
// motor de posteo de los workflows.
type QueryService struct {
	levelRepo    repository.StockLevelRepository
	movementRepo repository.StockMovementRepository
}

// NewQueryService construye el servicio.
func NewQueryService(levelRepo repository.StockLevelRepository, movementRepo repository.StockMovementRepository) *QueryService {
	return &QueryService{levelRepo: levelRepo, movementRepo: movementRepo}
}

// LevelsByProduct niveles de un producto en todas las ubicaciones.
func (s *QueryService) LevelsByProduct(ctx context.Context, companyID, productID string) ([]*entity.StockLevel, error) {
	return s.levelRepo.ListByProduct(companyID, productID)
}

// LevelsByLocation niveles de todos los productos en una ubicación.
func (s *QueryService) LevelsByLocation(ctx context.Context, companyID, locationID string) ([]*entity.StockLevel, error) {
	return s.levelRepo.ListByLocation(companyID, locationID)
}

// Level nivel de una clave exacta; nil si nunca hubo stock en esa clave.
func (s *QueryService) Level(ctx context.Context, key entity.StockKey) (*entity.StockLevel, error) {
	return s.levelRepo.Get(key)
}

// MovementByID un movimiento concreto.
func (s *QueryService) MovementByID(ctx context.Context, companyID, id string) (*entity.StockMovement, error) {
	m, err := s.movementRepo.GetByID(companyID, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("%w: movimiento %s", domain.ErrNotFound, id)
	}
	return m, nil
}

// MovementsByReference movimientos generados por un documento de workflow.
func (s *QueryService) MovementsByReference(ctx context.Context, companyID, referenceType, referenceID string) ([]*entity.StockMovement, error) {
	return s.movementRepo.ListByReference(companyID, referenceType, referenceID)
}

// MovementsByKey historial de una clave de stock, más recientes primero.
func (s *QueryService) MovementsByKey(ctx context.Context, key entity.StockKey, limit, offset int) ([]*entity.StockMovement, error) {
	return s.movementRepo.ListByKey(key, limit, offset)
}
