package repository

import (
	"github.com/tu-usuario/warehouse-pro/internal/domain/entity"
)

// LocationRepository puerto de persistencia de ubicaciones.
type LocationRepository interface {
	GetByID(companyID, id string) (*entity.Location, error)
	ListActiveByWarehouse(companyID, warehouseID string) ([]*entity.Location, error)
}
