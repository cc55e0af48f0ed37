package ledger_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/warehouse-pro/internal/application/ledger"
	"github.com/tu-usuario/warehouse-pro/internal/domain"
	"github.com/tu-usuario/warehouse-pro/internal/domain/entity"
	"github.com/tu-usuario/warehouse-pro/internal/testutil"
)

const (
	companyID = "co-1"
	productID = "prod-1"
	userID    = "user-1"
)

var now = time.Date(2025, 3, 1, 15, 45, 2, 0, time.UTC)

func validInput() ledger.PostingInput {
	return ledger.PostingInput{
		CompanyID:       companyID,
		ProductID:       productID,
		ToLocationID:    "loc-a",
		Quantity:        decimal.NewFromInt(10),
		MovementType:    entity.MovementTypeReturn,
		ReferenceType:   entity.ReferenceTypeReturnOrder,
		ReferenceID:     "ret-1",
		ReferenceNumber: "RET-20250301-0001",
		LineID:          "line-1",
		LineNumber:      1,
		CreatedBy:       userID,
		Now:             now,
	}
}

func TestPost_Validaciones(t *testing.T) {
	store := testutil.NewStore()
	poster := ledger.NewPoster()

	cases := []struct {
		name   string
		mutate func(in *ledger.PostingInput)
	}{
		{"cantidad cero", func(in *ledger.PostingInput) { in.Quantity = decimal.Zero }},
		{"cantidad negativa", func(in *ledger.PostingInput) { in.Quantity = decimal.NewFromInt(-1) }},
		{"sin ubicaciones", func(in *ledger.PostingInput) { in.ToLocationID = "" }},
		{"origen igual a destino", func(in *ledger.PostingInput) {
			in.FromLocationID = "loc-a"
			in.ToLocationID = "loc-a"
		}},
		{"sin producto", func(in *ledger.PostingInput) { in.ProductID = "" }},
		{"sin referencia", func(in *ledger.PostingInput) { in.ReferenceID = "" }},
		{"sin línea", func(in *ledger.PostingInput) { in.LineID = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)
			_, err := poster.Post(store.Repos(), in)
			require.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Empty(t, store.Movements, "una entrada inválida no debe dejar movimientos")
			assert.Empty(t, store.Levels, "una entrada inválida no debe tocar el libro")
		})
	}
}

func TestPost_EntradaCreaNivelYMovimiento(t *testing.T) {
	store := testutil.NewStore()
	poster := ledger.NewPoster()

	mov, err := poster.Post(store.Repos(), validInput())
	require.NoError(t, err)

	key := entity.StockKey{CompanyID: companyID, ProductID: productID, LocationID: "loc-a"}
	level := store.Levels[key]
	require.NotNil(t, level, "la fila del libro se crea con el primer movimiento positivo")
	assert.True(t, level.QuantityOnHand.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, now, level.LastMovementAt)

	require.Len(t, store.Movements, 1, "cada delta del libro tiene exactamente un movimiento")
	assert.Equal(t, mov.ID, store.Movements[0].ID)
	assert.Equal(t, "MOV-20250301154502-001", mov.MovementNumber)
	assert.True(t, mov.IsInbound())
	assert.Equal(t, "ret-1", mov.ReferenceID)
	assert.Equal(t, userID, mov.CreatedBy)
}

func TestPost_SalidaSinStockFalla(t *testing.T) {
	store := testutil.NewStore()
	poster := ledger.NewPoster()

	in := validInput()
	in.ToLocationID = ""
	in.FromLocationID = "loc-a"
	_, err := poster.Post(store.Repos(), in)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Empty(t, store.Movements)
}

func TestPost_SalidaBajoReservaFalla(t *testing.T) {
	store := testutil.NewStore()
	key := entity.StockKey{CompanyID: companyID, ProductID: productID, LocationID: "loc-a"}
	store.Levels[key] = &entity.StockLevel{
		CompanyID:        companyID,
		ProductID:        productID,
		LocationID:       "loc-a",
		QuantityOnHand:   decimal.NewFromInt(10),
		QuantityReserved: decimal.NewFromInt(8),
	}
	poster := ledger.NewPoster()

	// Quedan 2 disponibles: sacar 5 dejaría la cantidad bajo lo reservado.
	in := validInput()
	in.ToLocationID = ""
	in.FromLocationID = "loc-a"
	in.Quantity = decimal.NewFromInt(5)
	_, err := poster.Post(store.Repos(), in)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, store.Levels[key].QuantityOnHand.Equal(decimal.NewFromInt(10)), "el libro no debe cambiar")
}

func TestPost_TrasladoMueveEntreClaves(t *testing.T) {
	store := testutil.NewStore()
	from := entity.StockKey{CompanyID: companyID, ProductID: productID, LocationID: "loc-a"}
	store.Levels[from] = &entity.StockLevel{
		CompanyID:      companyID,
		ProductID:      productID,
		LocationID:     "loc-a",
		QuantityOnHand: decimal.NewFromInt(10),
	}
	poster := ledger.NewPoster()

	in := validInput()
	in.FromLocationID = "loc-a"
	in.ToLocationID = "loc-b"
	in.Quantity = decimal.NewFromInt(4)
	in.MovementType = entity.MovementTypePutaway
	mov, err := poster.Post(store.Repos(), in)
	require.NoError(t, err)

	to := entity.StockKey{CompanyID: companyID, ProductID: productID, LocationID: "loc-b"}
	assert.True(t, store.Levels[from].QuantityOnHand.Equal(decimal.NewFromInt(6)))
	assert.True(t, store.Levels[to].QuantityOnHand.Equal(decimal.NewFromInt(4)))
	assert.False(t, mov.IsInbound())
	assert.False(t, mov.IsOutbound())
	require.Len(t, store.Movements, 1, "un traslado es un solo movimiento, no dos")
}

func TestPost_AjusteUsaSecuenciaDiaria(t *testing.T) {
	store := testutil.NewStore()
	poster := ledger.NewPoster()

	in := validInput()
	in.MovementType = entity.MovementTypeAdjustment
	in.ReferenceType = entity.ReferenceTypeAdjustment
	in.ReferenceID = "adj-1"

	first, err := poster.Post(store.Repos(), in)
	require.NoError(t, err)
	assert.Equal(t, "SM-20250301-0001", first.MovementNumber)

	in.LineID = "line-2"
	in.LineNumber = 2
	second, err := poster.Post(store.Repos(), in)
	require.NoError(t, err)
	assert.Equal(t, "SM-20250301-0002", second.MovementNumber, "la secuencia diaria avanza por posteo")
}

func TestPost_ClavesDeLoteSeparadas(t *testing.T) {
	store := testutil.NewStore()
	poster := ledger.NewPoster()

	in := validInput()
	in.BatchNumber = "L-001"
	_, err := poster.Post(store.Repos(), in)
	require.NoError(t, err)

	in.LineID = "line-2"
	in.BatchNumber = "L-002"
	_, err = poster.Post(store.Repos(), in)
	require.NoError(t, err)

	assert.Len(t, store.Levels, 2, "lotes distintos son filas distintas del libro")
}

func TestPost_DosEntradasMismaClaveAcumulan(t *testing.T) {
	store := testutil.NewStore()
	poster := ledger.NewPoster()

	_, err := poster.Post(store.Repos(), validInput())
	require.NoError(t, err)

	in := validInput()
	in.LineID = "line-2"
	in.LineNumber = 2
	in.Quantity = decimal.NewFromInt(5)
	_, err = poster.Post(store.Repos(), in)
	require.NoError(t, err)

	key := entity.StockKey{CompanyID: companyID, ProductID: productID, LocationID: "loc-a"}
	require.Len(t, store.Levels, 1, "la misma clave siempre es una sola fila del libro")
	assert.True(t, store.Levels[key].QuantityOnHand.Equal(decimal.NewFromInt(15)),
		"las entradas sobre la misma clave se acumulan")
	assert.Len(t, store.Movements, 2)
}
