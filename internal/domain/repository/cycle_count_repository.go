package repository

import (
	"github.com/tu-usuario/warehouse-pro/internal/domain/entity"
)

// CycleCountRepository puerto de persistencia de sesiones de conteo cíclico.
// GetByID y GetForUpdate cargan la sesión con sus ítems ordenados.
type CycleCountRepository interface {
	Create(session *entity.CycleCountSession) error
	GetByID(companyID, id string) (*entity.CycleCountSession, error)
	GetForUpdate(companyID, id string) (*entity.CycleCountSession, error)
	List(companyID string, status entity.CycleCountStatus, limit, offset int) ([]*entity.CycleCountSession, error)
	UpdateHeader(session *entity.CycleCountSession) error
	SaveItem(item *entity.CycleCountItem) error
}
