package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockLevel representa la cantidad actual de un producto en una ubicación,
// por lote/serie. Identidad: (company, product, location, batch, serial);
// batch y serial vacíos cuando no aplican. La fila se crea con el primer
// movimiento positivo y nunca se borra aunque la cantidad llegue a cero
// (continuidad de auditoría).
type StockLevel struct {
	CompanyID        string
	ProductID        string
	LocationID       string
	BatchNumber      string
	SerialNumber     string
	QuantityOnHand   decimal.Decimal // invariante: >= 0
	QuantityReserved decimal.Decimal // invariante: <= QuantityOnHand
	LastMovementAt   time.Time
	UpdatedAt        time.Time
}

// Available devuelve la cantidad disponible (en mano menos reservada).
func (s *StockLevel) Available() decimal.Decimal {
	return s.QuantityOnHand.Sub(s.QuantityReserved)
}

// Key devuelve la identidad de la fila.
func (s *StockLevel) Key() StockKey {
	return StockKey{
		CompanyID:    s.CompanyID,
		ProductID:    s.ProductID,
		LocationID:   s.LocationID,
		BatchNumber:  s.BatchNumber,
		SerialNumber: s.SerialNumber,
	}
}

// StockKey identidad de una fila del libro de stock.
type StockKey struct {
	CompanyID    string
	ProductID    string
	LocationID   string
	BatchNumber  string
	SerialNumber string
}
