// Package testutil provee dobles en memoria de los puertos de persistencia
// para los tests de casos de uso: un Store compartido, los repos falsos y un
// TxRunner que emula el Rollback restaurando un snapshot del estado.
package testutil

import (
	"context"

	"github.com/tu-usuario/warehouse-pro/internal/application/ledger"
	"github.com/tu-usuario/warehouse-pro/internal/domain/entity"
)

// Store estado compartido en memoria. Los repos guardan y devuelven copias
// profundas: mutar la entidad devuelta no toca lo "persistido" hasta el
// siguiente Save/Update, igual que con una base real.
type Store struct {
	Levels      map[entity.StockKey]*entity.StockLevel
	Movements   []*entity.StockMovement
	Adjustments map[string]*entity.StockAdjustment
	Sessions    map[string]*entity.CycleCountSession
	Tasks       map[string]*entity.PutawayTask
	Orders      map[string]*entity.ReturnOrder
	Sequences   map[string]int
	Products    map[string]*entity.Product
	Locations   map[string]*entity.Location
	Receipts    map[string]*entity.GoodsReceipt
}

// NewStore construye un Store vacío.
func NewStore() *Store {
	return &Store{
		Levels:      map[entity.StockKey]*entity.StockLevel{},
		Adjustments: map[string]*entity.StockAdjustment{},
		Sessions:    map[string]*entity.CycleCountSession{},
		Tasks:       map[string]*entity.PutawayTask{},
		Orders:      map[string]*entity.ReturnOrder{},
		Sequences:   map[string]int{},
		Products:    map[string]*entity.Product{},
		Locations:   map[string]*entity.Location{},
		Receipts:    map[string]*entity.GoodsReceipt{},
	}
}

// Repos devuelve el conjunto de repos falsos atados al Store.
func (s *Store) Repos() ledger.TxRepos {
	return ledger.TxRepos{
		StockLevels: &StockLevelRepo{store: s},
		Movements:   &StockMovementRepo{store: s},
		Adjustments: &AdjustmentRepo{store: s},
		CycleCounts: &CycleCountRepo{store: s},
		Putaways:    &PutawayRepo{store: s},
		Returns:     &ReturnOrderRepo{store: s},
		Sequences:   &SequenceRepo{store: s},
		Products:    &ProductRepo{store: s},
		Locations:   &LocationRepo{store: s},
		Receipts:    &GoodsReceiptRepo{store: s},
	}
}

// snapshot copia superficial de los mapas. Los valores guardados jamás se
// mutan en sitio (toda escritura reemplaza el puntero), así que basta con
// copiar los mapas para poder restaurar.
func (s *Store) snapshot() *Store {
	snap := &Store{
		Levels:      make(map[entity.StockKey]*entity.StockLevel, len(s.Levels)),
		Movements:   append([]*entity.StockMovement(nil), s.Movements...),
		Adjustments: make(map[string]*entity.StockAdjustment, len(s.Adjustments)),
		Sessions:    make(map[string]*entity.CycleCountSession, len(s.Sessions)),
		Tasks:       make(map[string]*entity.PutawayTask, len(s.Tasks)),
		Orders:      make(map[string]*entity.ReturnOrder, len(s.Orders)),
		Sequences:   make(map[string]int, len(s.Sequences)),
		Products:    make(map[string]*entity.Product, len(s.Products)),
		Locations:   make(map[string]*entity.Location, len(s.Locations)),
		Receipts:    make(map[string]*entity.GoodsReceipt, len(s.Receipts)),
	}
	for k, v := range s.Levels {
		snap.Levels[k] = v
	}
	for k, v := range s.Adjustments {
		snap.Adjustments[k] = v
	}
	for k, v := range s.Sessions {
		snap.Sessions[k] = v
	}
	for k, v := range s.Tasks {
		snap.Tasks[k] = v
	}
	for k, v := range s.Orders {
		snap.Orders[k] = v
	}
	for k, v := range s.Sequences {
		snap.Sequences[k] = v
	}
	for k, v := range s.Products {
		snap.Products[k] = v
	}
	for k, v := range s.Locations {
		snap.Locations[k] = v
	}
	for k, v := range s.Receipts {
		snap.Receipts[k] = v
	}
	return snap
}

func (s *Store) restore(snap *Store) {
	*s = *snap
}

// TxRunner emula la transacción: ejecuta fn sobre el Store y, si fn devuelve
// error, restaura el snapshot previo (Rollback). Satisface ledger.TxRunner.
type TxRunner struct {
	Store *Store
}

// NewTxRunner construye el runner sobre el Store dado.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{Store: store}
}

var _ ledger.TxRunner = (*TxRunner)(nil)

// Run ejecuta fn "en transacción".
func (t *TxRunner) Run(ctx context.Context, fn func(r ledger.TxRepos) error) error {
	snap := t.Store.snapshot()
	if err := fn(t.Store.Repos()); err != nil {
		t.Store.restore(snap)
		return err
	}
	return nil
}

// ── Copias profundas ─────────────────────────────────────────────────────────

func cloneLevel(l *entity.StockLevel) *entity.StockLevel {
	if l == nil {
		return nil
	}
	c := *l
	return &c
}

func cloneMovement(m *entity.StockMovement) *entity.StockMovement {
	if m == nil {
		return nil
	}
	c := *m
	return &c
}

func cloneAdjustment(a *entity.StockAdjustment) *entity.StockAdjustment {
	if a == nil {
		return nil
	}
	c := *a
	c.Lines = make([]*entity.AdjustmentLine, len(a.Lines))
	for i, l := range a.Lines {
		cl := *l
		c.Lines[i] = &cl
	}
	return &c
}

func cloneSession(s *entity.CycleCountSession) *entity.CycleCountSession {
	if s == nil {
		return nil
	}
	c := *s
	c.Items = make([]*entity.CycleCountItem, len(s.Items))
	for i, it := range s.Items {
		ci := *it
		c.Items[i] = &ci
	}
	return &c
}

func cloneTask(t *entity.PutawayTask) *entity.PutawayTask {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func cloneOrder(o *entity.ReturnOrder) *entity.ReturnOrder {
	if o == nil {
		return nil
	}
	c := *o
	c.Lines = make([]*entity.ReturnLine, len(o.Lines))
	for i, l := range o.Lines {
		cl := *l
		c.Lines[i] = &cl
	}
	return &c
}

func cloneReceipt(r *entity.GoodsReceipt) *entity.GoodsReceipt {
	if r == nil {
		return nil
	}
	c := *r
	c.Lines = make([]*entity.GoodsReceiptLine, len(r.Lines))
	for i, l := range r.Lines {
		cl := *l
		c.Lines[i] = &cl
	}
	return &c
}
