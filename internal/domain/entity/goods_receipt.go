package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// GoodsReceipt recepción de mercancía ya confirmada. El proceso de recepción
// en sí es externo a este núcleo; aquí solo se lee para derivar tareas de
// putaway (una por línea con cantidad pendiente de guardar).
type GoodsReceipt struct {
	ID                string
	CompanyID         string
	Number            string
	StagingLocationID string // dónde quedó la mercancía al recibirse
	Lines             []*GoodsReceiptLine
	ReceivedAt        time.Time
}

// GoodsReceiptLine línea recibida pendiente de guardado.
type GoodsReceiptLine struct {
	ID               string
	ReceiptID        string
	LineNumber       int
	ProductID        string
	BatchNumber      string
	QuantityReceived decimal.Decimal
}
