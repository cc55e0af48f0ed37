package repository

import (
	"github.com/tu-usuario/warehouse-pro/internal/domain/entity"
)

// GoodsReceiptRepository puerto de lectura de recepciones confirmadas
// (el proceso de recepción es externo; aquí solo se consultan para derivar
// tareas de putaway).
type GoodsReceiptRepository interface {
	GetByID(companyID, id string) (*entity.GoodsReceipt, error)
}
