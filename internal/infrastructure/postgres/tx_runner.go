package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tu-usuario/warehouse-pro/internal/application/ledger"
)

var _ ledger.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL con todos
// los repositorios atados a esa tx.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace
// Commit o Rollback según el resultado.
func (r *TxRunner) Run(ctx context.Context, fn func(repos ledger.TxRepos) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	repos := ledger.TxRepos{
		StockLevels: NewStockLevelRepository(tx),
		Movements:   NewStockMovementRepository(tx),
		Adjustments: NewAdjustmentRepository(tx),
		CycleCounts: NewCycleCountRepository(tx),
		Putaways:    NewPutawayRepository(tx),
		Returns:     NewReturnOrderRepository(tx),
		Sequences:   NewSequenceRepository(tx),
		Products:    NewProductRepository(tx),
		Locations:   NewLocationRepository(tx),
		Receipts:    NewGoodsReceiptRepository(tx),
	}

	if err := fn(repos); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
