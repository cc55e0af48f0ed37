// Package ledger implementa el motor de posteo: el único camino por el que
// una línea de workflow se convierte en verdad del libro de stock.
package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/warehouse-pro/internal/domain"
	"github.com/tu-usuario/warehouse-pro/internal/domain/docnum"
	"github.com/tu-usuario/warehouse-pro/internal/domain/entity"
)

// PostingInput entrada del motor de posteo. Quantity es magnitud (> 0);
// la dirección la dan las ubicaciones: solo To = entrada, solo From =
// salida, ambas = traslado.
type PostingInput struct {
	CompanyID       string
	ProductID       string
	FromLocationID  string
	ToLocationID    string
	BatchNumber     string
	SerialNumber    string
	Quantity        decimal.Decimal
	MovementType    string
	ReferenceType   string
	ReferenceID     string
	ReferenceNumber string
	LineID          string
	LineNumber      int
	Notes           string
	CreatedBy       string
	Now             time.Time
}

// Poster motor de posteo. Aplica los deltas del libro (lado que pierde y
// lado que gana) y agrega exactamente un movimiento, todo con los repos de
// la transacción del caller; la atomicidad viene de esa transacción.
type Poster struct{}

// NewPoster construye el motor.
func NewPoster() *Poster { return &Poster{} }

// Post aplica el efecto de una línea al libro y registra el movimiento.
//
//  1. Valida la entrada (cantidad > 0, al menos una ubicación).
//  2. ApplyDelta negativo en la ubicación origen, si hay.
//  3. ApplyDelta positivo en la ubicación destino, si hay.
//  4. Agrega la fila de movimiento con número generado según el workflow:
//     ajustes -> SM-yyyyMMdd-#### (secuencia diaria), resto ->
//     MOV-yyyyMMddHHmmss-###.
//
// La verificación y marca de idempotencia de la línea es del caller, en la
// misma transacción.
func (p *Poster) Post(r TxRepos, in PostingInput) (*entity.StockMovement, error) {
	if err := p.validate(in); err != nil {
		return nil, err
	}

	if in.FromLocationID != "" {
		key := entity.StockKey{
			CompanyID:    in.CompanyID,
			ProductID:    in.ProductID,
			LocationID:   in.FromLocationID,
			BatchNumber:  in.BatchNumber,
			SerialNumber: in.SerialNumber,
		}
		if _, err := r.StockLevels.ApplyDelta(key, in.Quantity.Neg(), in.Now); err != nil {
			return nil, err
		}
	}
	if in.ToLocationID != "" {
		key := entity.StockKey{
			CompanyID:    in.CompanyID,
			ProductID:    in.ProductID,
			LocationID:   in.ToLocationID,
			BatchNumber:  in.BatchNumber,
			SerialNumber: in.SerialNumber,
		}
		if _, err := r.StockLevels.ApplyDelta(key, in.Quantity, in.Now); err != nil {
			return nil, err
		}
	}

	number, err := p.movementNumber(r, in)
	if err != nil {
		return nil, err
	}
	mov := &entity.StockMovement{
		ID:              uuid.New().String(),
		CompanyID:       in.CompanyID,
		MovementNumber:  number,
		MovementType:    in.MovementType,
		ProductID:       in.ProductID,
		FromLocationID:  in.FromLocationID,
		ToLocationID:    in.ToLocationID,
		Quantity:        in.Quantity,
		BatchNumber:     in.BatchNumber,
		SerialNumber:    in.SerialNumber,
		ReferenceType:   in.ReferenceType,
		ReferenceID:     in.ReferenceID,
		ReferenceNumber: in.ReferenceNumber,
		LineID:          in.LineID,
		Notes:           in.Notes,
		CreatedAt:       in.Now,
		CreatedBy:       in.CreatedBy,
	}
	if err := r.Movements.Append(mov); err != nil {
		return nil, err
	}
	return mov, nil
}

func (p *Poster) validate(in PostingInput) error {
	if in.CompanyID == "" || in.ProductID == "" {
		return fmt.Errorf("%w: falta empresa o producto", domain.ErrInvalidInput)
	}
	if !in.Quantity.IsPositive() {
		return fmt.Errorf("%w: la cantidad del movimiento debe ser positiva", domain.ErrInvalidInput)
	}
	if in.FromLocationID == "" && in.ToLocationID == "" {
		return fmt.Errorf("%w: el movimiento necesita ubicación origen o destino", domain.ErrInvalidInput)
	}
	if in.FromLocationID != "" && in.FromLocationID == in.ToLocationID {
		return fmt.Errorf("%w: origen y destino no pueden ser la misma ubicación", domain.ErrInvalidInput)
	}
	if in.ReferenceType == "" || in.ReferenceID == "" || in.LineID == "" {
		return fmt.Errorf("%w: el movimiento debe referenciar documento y línea", domain.ErrInvalidInput)
	}
	return nil
}

// movementNumber genera el número según el workflow de origen. Los formatos
// son compatibles con los registros de auditoría existentes.
func (p *Poster) movementNumber(r TxRepos, in PostingInput) (string, error) {
	if in.ReferenceType == entity.ReferenceTypeAdjustment {
		seq, err := r.Sequences.Next(in.CompanyID, docnum.SequenceKey("SM", in.Now))
		if err != nil {
			return "", fmt.Errorf("secuencia de movimiento: %w", err)
		}
		return docnum.MovementDaily(in.Now, seq), nil
	}
	return docnum.MovementTimestamped(in.Now, in.LineNumber), nil
}
