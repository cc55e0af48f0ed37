package repository

import (
	"github.com/tu-usuario/warehouse-pro/internal/domain/entity"
)

// StockMovementRepository puerto del historial de movimientos (append-only).
// No hay Update ni Delete: los movimientos son hechos inmutables.
type StockMovementRepository interface {
	Append(movement *entity.StockMovement) error
	GetByID(companyID, id string) (*entity.StockMovement, error)
	// ListByReference movimientos generados por un documento de workflow.
	ListByReference(companyID, referenceType, referenceID string) ([]*entity.StockMovement, error)
	// ListByKey movimientos de una clave de stock, más recientes primero.
	ListByKey(key entity.StockKey, limit, offset int) ([]*entity.StockMovement, error)
}
