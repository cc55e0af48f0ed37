package repository

import (
	"github.com/tu-usuario/warehouse-pro/internal/domain/entity"
)

// ReturnOrderRepository puerto de persistencia de órdenes de devolución.
// GetByID y GetForUpdate cargan la orden con sus líneas ordenadas.
type ReturnOrderRepository interface {
	Create(order *entity.ReturnOrder) error
	GetByID(companyID, id string) (*entity.ReturnOrder, error)
	GetForUpdate(companyID, id string) (*entity.ReturnOrder, error)
	List(companyID string, status entity.ReturnStatus, limit, offset int) ([]*entity.ReturnOrder, error)
	UpdateHeader(order *entity.ReturnOrder) error
	SaveLine(line *entity.ReturnLine) error
	DeleteLine(returnOrderID, lineID string) error
}
