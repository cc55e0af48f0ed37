package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto o SKU del almacén (multi-ubicación).
// El stock por ubicación/lote vive en StockLevel, nunca aquí.
type Product struct {
	ID            string
	CompanyID     string
	SKU           string // código único por empresa
	Name          string
	Description   string
	UnitCost      decimal.Decimal
	UnitMeasure   string
	TrackBatches  bool   // exige lote en las claves de stock
	TrackSerials  bool   // exige serie en las claves de stock
	PreferredZone string // zona preferida para putaway, puede estar vacía
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
