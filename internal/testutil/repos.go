package testutil

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/warehouse-pro/internal/domain"
	"github.com/tu-usuario/warehouse-pro/internal/domain/entity"
	"github.com/tu-usuario/warehouse-pro/internal/domain/repository"
)

// StockLevelRepo doble en memoria del libro de stock. ApplyDelta replica la
// semántica del repo real: crea la fila con el primer delta positivo y
// rechaza con ErrInsufficientStock el delta que dejaría la cantidad bajo
// cero o bajo lo reservado.
type StockLevelRepo struct {
	store *Store
}

var _ repository.StockLevelRepository = (*StockLevelRepo)(nil)

func (r *StockLevelRepo) Get(key entity.StockKey) (*entity.StockLevel, error) {
	return cloneLevel(r.store.Levels[key]), nil
}

func (r *StockLevelRepo) ApplyDelta(key entity.StockKey, delta decimal.Decimal, at time.Time) (*entity.StockLevel, error) {
	level := r.store.Levels[key]
	if level == nil {
		if delta.IsNegative() {
			return nil, fmt.Errorf("%w: en mano 0, solicitado %s", domain.ErrInsufficientStock, delta)
		}
		created := &entity.StockLevel{
			CompanyID:        key.CompanyID,
			ProductID:        key.ProductID,
			LocationID:       key.LocationID,
			BatchNumber:      key.BatchNumber,
			SerialNumber:     key.SerialNumber,
			QuantityOnHand:   delta,
			QuantityReserved: decimal.Zero,
			LastMovementAt:   at,
			UpdatedAt:        at,
		}
		r.store.Levels[key] = created
		return cloneLevel(created), nil
	}
	newQty := level.QuantityOnHand.Add(delta)
	if newQty.IsNegative() || newQty.LessThan(level.QuantityReserved) {
		return nil, fmt.Errorf("%w: en mano %s, reservado %s, solicitado %s",
			domain.ErrInsufficientStock, level.QuantityOnHand, level.QuantityReserved, delta)
	}
	updated := cloneLevel(level)
	updated.QuantityOnHand = newQty
	updated.LastMovementAt = at
	updated.UpdatedAt = at
	r.store.Levels[key] = updated
	return cloneLevel(updated), nil
}

func (r *StockLevelRepo) ListByProduct(companyID, productID string) ([]*entity.StockLevel, error) {
	var out []*entity.StockLevel
	for _, l := range r.store.Levels {
		if l.CompanyID == companyID && l.ProductID == productID {
			out = append(out, cloneLevel(l))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LocationID < out[j].LocationID })
	return out, nil
}

func (r *StockLevelRepo) ListByLocation(companyID, locationID string) ([]*entity.StockLevel, error) {
	var out []*entity.StockLevel
	for _, l := range r.store.Levels {
		if l.CompanyID == companyID && l.LocationID == locationID {
			out = append(out, cloneLevel(l))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

func (r *StockLevelRepo) OccupancyByWarehouse(companyID, warehouseID string) (map[string]decimal.Decimal, error) {
	occ := map[string]decimal.Decimal{}
	for _, l := range r.store.Levels {
		if l.CompanyID != companyID {
			continue
		}
		loc := r.store.Locations[l.LocationID]
		if loc == nil || loc.WarehouseID != warehouseID {
			continue
		}
		occ[l.LocationID] = occ[l.LocationID].Add(l.QuantityOnHand)
	}
	return occ, nil
}

// StockMovementRepo doble en memoria del historial de movimientos.
type StockMovementRepo struct {
	store *Store
}

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

func (r *StockMovementRepo) Append(movement *entity.StockMovement) error {
	for _, m := range r.store.Movements {
		if m.CompanyID == movement.CompanyID && m.MovementNumber == movement.MovementNumber {
			return fmt.Errorf("%w: número de movimiento %s", domain.ErrDuplicate, movement.MovementNumber)
		}
	}
	r.store.Movements = append(r.store.Movements, cloneMovement(movement))
	return nil
}

func (r *StockMovementRepo) GetByID(companyID, id string) (*entity.StockMovement, error) {
	for _, m := range r.store.Movements {
		if m.CompanyID == companyID && m.ID == id {
			return cloneMovement(m), nil
		}
	}
	return nil, nil
}

func (r *StockMovementRepo) ListByReference(companyID, referenceType, referenceID string) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for _, m := range r.store.Movements {
		if m.CompanyID == companyID && m.ReferenceType == referenceType && m.ReferenceID == referenceID {
			out = append(out, cloneMovement(m))
		}
	}
	return out, nil
}

func (r *StockMovementRepo) ListByKey(key entity.StockKey, limit, offset int) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for i := len(r.store.Movements) - 1; i >= 0; i-- {
		m := r.store.Movements[i]
		if m.CompanyID != key.CompanyID || m.ProductID != key.ProductID ||
			m.BatchNumber != key.BatchNumber || m.SerialNumber != key.SerialNumber {
			continue
		}
		if m.FromLocationID != key.LocationID && m.ToLocationID != key.LocationID {
			continue
		}
		out = append(out, cloneMovement(m))
	}
	if offset > 0 {
		if offset >= len(out) {
			return nil, nil
		}
		out = out[offset:]
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// AdjustmentRepo doble en memoria de ajustes de stock.
type AdjustmentRepo struct {
	store *Store
}

var _ repository.AdjustmentRepository = (*AdjustmentRepo)(nil)

func (r *AdjustmentRepo) Create(adj *entity.StockAdjustment) error {
	r.store.Adjustments[adj.ID] = cloneAdjustment(adj)
	return nil
}

func (r *AdjustmentRepo) GetByID(companyID, id string) (*entity.StockAdjustment, error) {
	adj := r.store.Adjustments[id]
	if adj == nil || adj.CompanyID != companyID {
		return nil, nil
	}
	return cloneAdjustment(adj), nil
}

func (r *AdjustmentRepo) GetForUpdate(companyID, id string) (*entity.StockAdjustment, error) {
	return r.GetByID(companyID, id)
}

func (r *AdjustmentRepo) List(companyID string, status entity.AdjustmentStatus, limit, offset int) ([]*entity.StockAdjustment, error) {
	var out []*entity.StockAdjustment
	for _, a := range r.store.Adjustments {
		if a.CompanyID != companyID {
			continue
		}
		if status != "" && a.Status != status {
			continue
		}
		out = append(out, cloneAdjustment(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, limit, offset), nil
}

func (r *AdjustmentRepo) UpdateHeader(adj *entity.StockAdjustment) error {
	stored := r.store.Adjustments[adj.ID]
	if stored == nil {
		return nil
	}
	updated := cloneAdjustment(adj)
	updated.Lines = stored.Lines
	r.store.Adjustments[adj.ID] = updated
	return nil
}

func (r *AdjustmentRepo) SaveLine(line *entity.AdjustmentLine) error {
	stored := r.store.Adjustments[line.AdjustmentID]
	if stored == nil {
		return nil
	}
	updated := cloneAdjustment(stored)
	replaced := false
	for i, l := range updated.Lines {
		if l.ID == line.ID {
			cl := *line
			updated.Lines[i] = &cl
			replaced = true
			break
		}
	}
	if !replaced {
		cl := *line
		updated.Lines = append(updated.Lines, &cl)
	}
	r.store.Adjustments[line.AdjustmentID] = updated
	return nil
}

func (r *AdjustmentRepo) DeleteLine(adjustmentID, lineID string) error {
	stored := r.store.Adjustments[adjustmentID]
	if stored == nil {
		return nil
	}
	updated := cloneAdjustment(stored)
	kept := updated.Lines[:0]
	for _, l := range updated.Lines {
		if l.ID != lineID {
			kept = append(kept, l)
		}
	}
	updated.Lines = kept
	r.store.Adjustments[adjustmentID] = updated
	return nil
}

func (r *AdjustmentRepo) MarkLineProcessed(lineID, movementID string, at time.Time) error {
	for id, adj := range r.store.Adjustments {
		for _, l := range adj.Lines {
			if l.ID != lineID {
				continue
			}
			if l.IsProcessed {
				return fmt.Errorf("%w: línea %s", domain.ErrAlreadyProcessed, lineID)
			}
			updated := cloneAdjustment(adj)
			ul := updated.LineByID(lineID)
			ul.IsProcessed = true
			ul.ProcessedAt = &at
			ul.MovementID = movementID
			r.store.Adjustments[id] = updated
			return nil
		}
	}
	return fmt.Errorf("%w: línea %s", domain.ErrNotFound, lineID)
}

// CycleCountRepo doble en memoria de sesiones de conteo.
type CycleCountRepo struct {
	store *Store
}

var _ repository.CycleCountRepository = (*CycleCountRepo)(nil)

func (r *CycleCountRepo) Create(session *entity.CycleCountSession) error {
	r.store.Sessions[session.ID] = cloneSession(session)
	return nil
}

func (r *CycleCountRepo) GetByID(companyID, id string) (*entity.CycleCountSession, error) {
	s := r.store.Sessions[id]
	if s == nil || s.CompanyID != companyID {
		return nil, nil
	}
	return cloneSession(s), nil
}

func (r *CycleCountRepo) GetForUpdate(companyID, id string) (*entity.CycleCountSession, error) {
	return r.GetByID(companyID, id)
}

func (r *CycleCountRepo) List(companyID string, status entity.CycleCountStatus, limit, offset int) ([]*entity.CycleCountSession, error) {
	var out []*entity.CycleCountSession
	for _, s := range r.store.Sessions {
		if s.CompanyID != companyID {
			continue
		}
		if status != "" && s.Status != status {
			continue
		}
		out = append(out, cloneSession(s))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, limit, offset), nil
}

func (r *CycleCountRepo) UpdateHeader(session *entity.CycleCountSession) error {
	stored := r.store.Sessions[session.ID]
	if stored == nil {
		return nil
	}
	updated := cloneSession(session)
	updated.Items = stored.Items
	r.store.Sessions[session.ID] = updated
	return nil
}

func (r *CycleCountRepo) SaveItem(item *entity.CycleCountItem) error {
	stored := r.store.Sessions[item.SessionID]
	if stored == nil {
		return nil
	}
	updated := cloneSession(stored)
	replaced := false
	for i, it := range updated.Items {
		if it.ID == item.ID {
			ci := *item
			updated.Items[i] = &ci
			replaced = true
			break
		}
	}
	if !replaced {
		ci := *item
		updated.Items = append(updated.Items, &ci)
	}
	r.store.Sessions[item.SessionID] = updated
	return nil
}

// PutawayRepo doble en memoria de tareas de putaway.
type PutawayRepo struct {
	store *Store
}

var _ repository.PutawayRepository = (*PutawayRepo)(nil)

func (r *PutawayRepo) Create(task *entity.PutawayTask) error {
	r.store.Tasks[task.ID] = cloneTask(task)
	return nil
}

func (r *PutawayRepo) GetByID(companyID, id string) (*entity.PutawayTask, error) {
	t := r.store.Tasks[id]
	if t == nil || t.CompanyID != companyID {
		return nil, nil
	}
	return cloneTask(t), nil
}

func (r *PutawayRepo) GetForUpdate(companyID, id string) (*entity.PutawayTask, error) {
	return r.GetByID(companyID, id)
}

func (r *PutawayRepo) List(companyID string, status entity.PutawayStatus, limit, offset int) ([]*entity.PutawayTask, error) {
	var out []*entity.PutawayTask
	for _, t := range r.store.Tasks {
		if t.CompanyID != companyID {
			continue
		}
		if status != "" && t.Status != status {
			continue
		}
		out = append(out, cloneTask(t))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return paginate(out, limit, offset), nil
}

func (r *PutawayRepo) Update(task *entity.PutawayTask) error {
	if r.store.Tasks[task.ID] == nil {
		return nil
	}
	r.store.Tasks[task.ID] = cloneTask(task)
	return nil
}

// ReturnOrderRepo doble en memoria de órdenes de devolución.
type ReturnOrderRepo struct {
	store *Store
}

var _ repository.ReturnOrderRepository = (*ReturnOrderRepo)(nil)

func (r *ReturnOrderRepo) Create(order *entity.ReturnOrder) error {
	r.store.Orders[order.ID] = cloneOrder(order)
	return nil
}

func (r *ReturnOrderRepo) GetByID(companyID, id string) (*entity.ReturnOrder, error) {
	o := r.store.Orders[id]
	if o == nil || o.CompanyID != companyID {
		return nil, nil
	}
	return cloneOrder(o), nil
}

func (r *ReturnOrderRepo) GetForUpdate(companyID, id string) (*entity.ReturnOrder, error) {
	return r.GetByID(companyID, id)
}

func (r *ReturnOrderRepo) List(companyID string, status entity.ReturnStatus, limit, offset int) ([]*entity.ReturnOrder, error) {
	var out []*entity.ReturnOrder
	for _, o := range r.store.Orders {
		if o.CompanyID != companyID {
			continue
		}
		if status != "" && o.Status != status {
			continue
		}
		out = append(out, cloneOrder(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, limit, offset), nil
}

func (r *ReturnOrderRepo) UpdateHeader(order *entity.ReturnOrder) error {
	stored := r.store.Orders[order.ID]
	if stored == nil {
		return nil
	}
	updated := cloneOrder(order)
	updated.Lines = stored.Lines
	r.store.Orders[order.ID] = updated
	return nil
}

func (r *ReturnOrderRepo) SaveLine(line *entity.ReturnLine) error {
	stored := r.store.Orders[line.ReturnOrderID]
	if stored == nil {
		return nil
	}
	updated := cloneOrder(stored)
	replaced := false
	for i, l := range updated.Lines {
		if l.ID == line.ID {
			cl := *line
			updated.Lines[i] = &cl
			replaced = true
			break
		}
	}
	if !replaced {
		cl := *line
		updated.Lines = append(updated.Lines, &cl)
	}
	r.store.Orders[line.ReturnOrderID] = updated
	return nil
}

func (r *ReturnOrderRepo) DeleteLine(returnOrderID, lineID string) error {
	stored := r.store.Orders[returnOrderID]
	if stored == nil {
		return nil
	}
	updated := cloneOrder(stored)
	kept := updated.Lines[:0]
	for _, l := range updated.Lines {
		if l.ID != lineID {
			kept = append(kept, l)
		}
	}
	updated.Lines = kept
	r.store.Orders[returnOrderID] = updated
	return nil
}

// SequenceRepo doble en memoria del contador de numeración.
type SequenceRepo struct {
	store *Store
}

var _ repository.SequenceRepository = (*SequenceRepo)(nil)

func (r *SequenceRepo) Next(companyID, key string) (int, error) {
	k := companyID + "|" + key
	r.store.Sequences[k]++
	return r.store.Sequences[k], nil
}

// ProductRepo doble en memoria de productos.
type ProductRepo struct {
	store *Store
}

var _ repository.ProductRepository = (*ProductRepo)(nil)

func (r *ProductRepo) GetByID(id string) (*entity.Product, error) {
	p := r.store.Products[id]
	if p == nil {
		return nil, nil
	}
	c := *p
	return &c, nil
}

func (r *ProductRepo) GetBySKU(companyID, sku string) (*entity.Product, error) {
	for _, p := range r.store.Products {
		if p.CompanyID == companyID && p.SKU == sku {
			c := *p
			return &c, nil
		}
	}
	return nil, nil
}

// LocationRepo doble en memoria de ubicaciones.
type LocationRepo struct {
	store *Store
}

var _ repository.LocationRepository = (*LocationRepo)(nil)

func (r *LocationRepo) GetByID(companyID, id string) (*entity.Location, error) {
	l := r.store.Locations[id]
	if l == nil || l.CompanyID != companyID {
		return nil, nil
	}
	c := *l
	return &c, nil
}

func (r *LocationRepo) ListActiveByWarehouse(companyID, warehouseID string) ([]*entity.Location, error) {
	var out []*entity.Location
	for _, l := range r.store.Locations {
		if l.CompanyID == companyID && l.WarehouseID == warehouseID && l.IsActive {
			c := *l
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// GoodsReceiptRepo doble en memoria de recepciones confirmadas.
type GoodsReceiptRepo struct {
	store *Store
}

var _ repository.GoodsReceiptRepository = (*GoodsReceiptRepo)(nil)

func (r *GoodsReceiptRepo) GetByID(companyID, id string) (*entity.GoodsReceipt, error) {
	gr := r.store.Receipts[id]
	if gr == nil || gr.CompanyID != companyID {
		return nil, nil
	}
	return cloneReceipt(gr), nil
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return nil
		}
		items = items[offset:]
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}
