package repository

import (
	"time"

	"github.com/tu-usuario/warehouse-pro/internal/domain/entity"
)

// AdjustmentRepository puerto de persistencia de ajustes de stock.
// GetByID y GetForUpdate cargan el documento con sus líneas ordenadas.
type AdjustmentRepository interface {
	Create(adj *entity.StockAdjustment) error
	GetByID(companyID, id string) (*entity.StockAdjustment, error)
	// GetForUpdate bloquea la cabecera (FOR UPDATE) para transiciones y posteo.
	GetForUpdate(companyID, id string) (*entity.StockAdjustment, error)
	List(companyID string, status entity.AdjustmentStatus, limit, offset int) ([]*entity.StockAdjustment, error)
	// UpdateHeader persiste estado, totales y timestamps de transición.
	UpdateHeader(adj *entity.StockAdjustment) error
	SaveLine(line *entity.AdjustmentLine) error
	DeleteLine(adjustmentID, lineID string) error
	// MarkLineProcessed estampa la marca de idempotencia junto al movimiento
	// generado; debe ejecutarse en la misma transacción que el posteo.
	MarkLineProcessed(lineID, movementID string, at time.Time) error
}
