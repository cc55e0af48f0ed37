package ledger

import (
	"context"

	"github.com/tu-usuario/warehouse-pro/internal/domain/repository"
)

// TxRepos repositorios atados a una misma transacción de BD. Los casos de
// uso de workflow reciben este conjunto dentro de TxRunner.Run para que el
// posteo, la marca de idempotencia de la línea y el cambio de estado del
// documento hagan Commit o Rollback juntos.
type TxRepos struct {
	StockLevels repository.StockLevelRepository
	Movements   repository.StockMovementRepository
	Adjustments repository.AdjustmentRepository
	CycleCounts repository.CycleCountRepository
	Putaways    repository.PutawayRepository
	Returns     repository.ReturnOrderRepository
	Sequences   repository.SequenceRepository
	Products    repository.ProductRepository
	Locations   repository.LocationRepository
	Receipts    repository.GoodsReceiptRepository
}

// TxRunner ejecuta fn dentro de una transacción de BD con repos atados a esa
// tx. Si fn devuelve error se hace Rollback; si no, Commit. Garantiza la
// atomicidad del motor de posteo.
type TxRunner interface {
	Run(ctx context.Context, fn func(r TxRepos) error) error
}
