package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/warehouse-pro/internal/domain/entity"
)

// StockLevelRepository puerto del libro de stock (cantidad actual por clave).
//
// ApplyDelta es EL ÚNICO camino de mutación de QuantityOnHand: bloquea la
// fila (SELECT FOR UPDATE), valida que un delta negativo no deje la cantidad
// bajo cero ni bajo lo reservado (ErrInsufficientStock con cantidades actual
// y solicitada), crea la fila si no existe y el delta es positivo, y estampa
// LastMovementAt. No registra movimientos: eso es del motor de posteo.
type StockLevelRepository interface {
	Get(key entity.StockKey) (*entity.StockLevel, error)
	ApplyDelta(key entity.StockKey, delta decimal.Decimal, at time.Time) (*entity.StockLevel, error)
	ListByProduct(companyID, productID string) ([]*entity.StockLevel, error)
	ListByLocation(companyID, locationID string) ([]*entity.StockLevel, error)
	// OccupancyByWarehouse suma la cantidad en mano por ubicación de una
	// bodega (para el scorer de putaway).
	OccupancyByWarehouse(companyID, warehouseID string) (map[string]decimal.Decimal, error)
}
