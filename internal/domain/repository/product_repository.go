package repository

import (
	"github.com/tu-usuario/warehouse-pro/internal/domain/entity"
)

// ProductRepository puerto de persistencia de productos.
type ProductRepository interface {
	GetByID(id string) (*entity.Product, error)
	GetBySKU(companyID, sku string) (*entity.Product, error)
}
