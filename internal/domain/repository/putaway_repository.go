package repository

import (
	"github.com/tu-usuario/warehouse-pro/internal/domain/entity"
)

// PutawayRepository puerto de persistencia de tareas de putaway.
type PutawayRepository interface {
	Create(task *entity.PutawayTask) error
	GetByID(companyID, id string) (*entity.PutawayTask, error)
	GetForUpdate(companyID, id string) (*entity.PutawayTask, error)
	List(companyID string, status entity.PutawayStatus, limit, offset int) ([]*entity.PutawayTask, error)
	Update(task *entity.PutawayTask) error
}
