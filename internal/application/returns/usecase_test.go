package returns_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/warehouse-pro/internal/application/ledger"
	"github.com/tu-usuario/warehouse-pro/internal/application/returns"
	"github.com/tu-usuario/warehouse-pro/internal/domain"
	"github.com/tu-usuario/warehouse-pro/internal/domain/entity"
	"github.com/tu-usuario/warehouse-pro/internal/testutil"
)

const (
	companyID = "co-1"
	userID    = "user-1"
)

func newFixture(t *testing.T) (*testutil.Store, *returns.UseCase) {
	t.Helper()
	store := testutil.NewStore()
	store.Products["prod-1"] = &entity.Product{
		ID: "prod-1", CompanyID: companyID, SKU: "SKU-1", Name: "Tornillo",
	}
	store.Locations["muelle"] = &entity.Location{
		ID: "muelle", CompanyID: companyID, WarehouseID: "wh-1", Code: "REC-01",
		Type: entity.LocationTypeReceiving, IsActive: true,
	}
	repos := store.Repos()
	uc := returns.NewUseCase(testutil.NewTxRunner(store), ledger.NewPoster(), repos.Returns)
	return store, uc
}

func defaultInput() returns.CreateInput {
	return returns.CreateInput{
		CustomerReference:   "PED-991",
		ReceivingLocationID: "muelle",
		Reason:              "producto equivocado",
		Lines: []returns.LineInput{
			{ProductID: "prod-1", QuantityExpected: decimal.NewFromInt(10)},
		},
	}
}

// received crea la orden y la lleva hasta RECEIVED.
func received(t *testing.T, uc *returns.UseCase) *entity.ReturnOrder {
	t.Helper()
	ctx := context.Background()
	order, err := uc.Create(ctx, companyID, userID, defaultInput())
	require.NoError(t, err)
	_, err = uc.MarkInTransit(ctx, companyID, order.ID)
	require.NoError(t, err)
	order, err = uc.StartReceiving(ctx, companyID, order.ID)
	require.NoError(t, err)
	return order
}

func TestCreate_AsignaNumeroYLineas(t *testing.T) {
	_, uc := newFixture(t)
	order, err := uc.Create(context.Background(), companyID, userID, defaultInput())
	require.NoError(t, err)

	assert.Regexp(t, `^RET-\d{8}-0001$`, order.Number)
	assert.Equal(t, entity.ReturnPending, order.Status)
	require.Len(t, order.Lines, 1)
	assert.Equal(t, entity.ReturnLineUnreceived, order.Lines[0].Status)
	assert.Equal(t, entity.DispositionPending, order.Lines[0].Disposition)
}

func TestCreate_Validaciones(t *testing.T) {
	_, uc := newFixture(t)
	ctx := context.Background()

	in := defaultInput()
	in.ReceivingLocationID = ""
	_, err := uc.Create(ctx, companyID, userID, in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	in = defaultInput()
	in.ReceivingLocationID = "loc-nope"
	_, err = uc.Create(ctx, companyID, userID, in)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	in = defaultInput()
	in.Lines[0].QuantityExpected = decimal.Zero
	_, err = uc.Create(ctx, companyID, userID, in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	in = defaultInput()
	in.Lines[0].ProductID = "prod-nope"
	_, err = uc.Create(ctx, companyID, userID, in)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMarkInTransit_RechazaOrdenVacia(t *testing.T) {
	_, uc := newFixture(t)
	ctx := context.Background()
	in := defaultInput()
	in.Lines = nil
	order, err := uc.Create(ctx, companyID, userID, in)
	require.NoError(t, err)

	_, err = uc.MarkInTransit(ctx, companyID, order.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAddRemoveLine_SoloEnPending(t *testing.T) {
	_, uc := newFixture(t)
	ctx := context.Background()
	order, err := uc.Create(ctx, companyID, userID, defaultInput())
	require.NoError(t, err)

	order, err = uc.AddLine(ctx, companyID, order.ID, returns.LineInput{
		ProductID: "prod-1", BatchNumber: "L-001", QuantityExpected: decimal.NewFromInt(2),
	})
	require.NoError(t, err)
	require.Len(t, order.Lines, 2)
	assert.Equal(t, 2, order.Lines[1].LineNumber)

	_, err = uc.MarkInTransit(ctx, companyID, order.ID)
	require.NoError(t, err)

	_, err = uc.AddLine(ctx, companyID, order.ID, returns.LineInput{
		ProductID: "prod-1", QuantityExpected: decimal.NewFromInt(1),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = uc.RemoveLine(ctx, companyID, order.ID, order.Lines[0].ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestReceiveLine_PosteaLaEntradaEnElMuelle(t *testing.T) {
	store, uc := newFixture(t)
	ctx := context.Background()
	order := received(t, uc)
	lineID := order.Lines[0].ID

	order, err := uc.ReceiveLine(ctx, companyID, userID, order.ID, lineID, decimal.NewFromInt(6))
	require.NoError(t, err)

	line := order.Lines[0]
	assert.Equal(t, entity.ReturnLineReceived, line.Status)
	assert.True(t, line.QuantityReceived.Equal(decimal.NewFromInt(6)))

	key := entity.StockKey{CompanyID: companyID, ProductID: "prod-1", LocationID: "muelle"}
	require.NotNil(t, store.Levels[key])
	assert.True(t, store.Levels[key].QuantityOnHand.Equal(decimal.NewFromInt(6)))
	require.Len(t, store.Movements, 1)
	assert.Equal(t, entity.MovementTypeReturn, store.Movements[0].MovementType)
	assert.True(t, store.Movements[0].IsInbound())

	// Segunda recepción parcial: su propio movimiento.
	order, err = uc.ReceiveLine(ctx, companyID, userID, order.ID, lineID, decimal.NewFromInt(4))
	require.NoError(t, err)
	assert.True(t, order.Lines[0].QuantityReceived.Equal(decimal.NewFromInt(10)))
	assert.True(t, store.Levels[key].QuantityOnHand.Equal(decimal.NewFromInt(10)))
	assert.Len(t, store.Movements, 2)
}

func TestReceiveLine_NoSuperaLoEsperado(t *testing.T) {
	store, uc := newFixture(t)
	ctx := context.Background()
	order := received(t, uc)

	_, err := uc.ReceiveLine(ctx, companyID, userID, order.ID, order.Lines[0].ID, decimal.NewFromInt(11))
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, store.Movements, "el fallo no debe dejar movimientos")
	assert.Empty(t, store.Levels)
}

func TestReceiveLine_SoloConOrdenRecibidaOEnProceso(t *testing.T) {
	_, uc := newFixture(t)
	ctx := context.Background()
	order, err := uc.Create(ctx, companyID, userID, defaultInput())
	require.NoError(t, err)

	_, err = uc.ReceiveLine(ctx, companyID, userID, order.ID, order.Lines[0].ID, decimal.NewFromInt(1))
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestProcessLine_ClasificaLoRecibido(t *testing.T) {
	store, uc := newFixture(t)
	ctx := context.Background()
	order := received(t, uc)
	lineID := order.Lines[0].ID

	_, err := uc.ReceiveLine(ctx, companyID, userID, order.ID, lineID, decimal.NewFromInt(10))
	require.NoError(t, err)
	_, err = uc.StartProcessing(ctx, companyID, order.ID)
	require.NoError(t, err)

	order, err = uc.ProcessLine(ctx, companyID, order.ID, lineID,
		decimal.NewFromInt(7), decimal.NewFromInt(3), entity.DispositionRestock)
	require.NoError(t, err)

	line := order.Lines[0]
	assert.Equal(t, entity.ReturnLineProcessed, line.Status)
	assert.True(t, line.QuantityAccepted.Equal(decimal.NewFromInt(7)))
	assert.True(t, line.QuantityRejected.Equal(decimal.NewFromInt(3)))
	assert.Equal(t, entity.DispositionRestock, line.Disposition)

	// Procesar no toca el libro: solo clasifica.
	key := entity.StockKey{CompanyID: companyID, ProductID: "prod-1", LocationID: "muelle"}
	assert.True(t, store.Levels[key].QuantityOnHand.Equal(decimal.NewFromInt(10)))
	assert.Len(t, store.Movements, 1)
}

func TestProcessLine_Validaciones(t *testing.T) {
	_, uc := newFixture(t)
	ctx := context.Background()
	order := received(t, uc)
	lineID := order.Lines[0].ID

	_, err := uc.ReceiveLine(ctx, companyID, userID, order.ID, lineID, decimal.NewFromInt(10))
	require.NoError(t, err)
	_, err = uc.StartProcessing(ctx, companyID, order.ID)
	require.NoError(t, err)

	_, err = uc.ProcessLine(ctx, companyID, order.ID, lineID,
		decimal.NewFromInt(5), decimal.NewFromInt(3), entity.DispositionRestock)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "aceptado + rechazado debe igualar lo recibido")

	_, err = uc.ProcessLine(ctx, companyID, order.ID, lineID,
		decimal.NewFromInt(7), decimal.NewFromInt(3), entity.Disposition("DONAR"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "disposición fuera del enum")

	_, err = uc.ProcessLine(ctx, companyID, order.ID, lineID,
		decimal.NewFromInt(-1), decimal.NewFromInt(11), entity.DispositionScrap)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidades negativas")
}

func TestProcessLine_ExigeLineaRecibida(t *testing.T) {
	_, uc := newFixture(t)
	ctx := context.Background()
	order := received(t, uc)
	_, err := uc.StartProcessing(ctx, companyID, order.ID)
	require.NoError(t, err)

	_, err = uc.ProcessLine(ctx, companyID, order.ID, order.Lines[0].ID,
		decimal.Zero, decimal.Zero, entity.DispositionScrap)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestComplete_ExigeDisposicionDeTodoLoRecibido(t *testing.T) {
	_, uc := newFixture(t)
	ctx := context.Background()
	order := received(t, uc)
	lineID := order.Lines[0].ID

	_, err := uc.ReceiveLine(ctx, companyID, userID, order.ID, lineID, decimal.NewFromInt(10))
	require.NoError(t, err)
	_, err = uc.StartProcessing(ctx, companyID, order.ID)
	require.NoError(t, err)

	_, err = uc.Complete(ctx, companyID, order.ID)
	require.ErrorIs(t, err, domain.ErrInvalidTransition, "hay una línea recibida sin disposición")

	_, err = uc.ProcessLine(ctx, companyID, order.ID, lineID,
		decimal.NewFromInt(10), decimal.Zero, entity.DispositionQuarantine)
	require.NoError(t, err)

	order, err = uc.Complete(ctx, companyID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReturnComplete, order.Status)
	require.NotNil(t, order.CompletedAt)
}

func TestComplete_LineaNuncaRecibidaNoBloquea(t *testing.T) {
	_, uc := newFixture(t)
	ctx := context.Background()
	order := received(t, uc)
	_, err := uc.StartProcessing(ctx, companyID, order.ID)
	require.NoError(t, err)

	// Nada se recibió: el cliente nunca envió la mercancía.
	order, err = uc.Complete(ctx, companyID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReturnComplete, order.Status)
}

func TestCancel_ConservaLoYaPosteado(t *testing.T) {
	store, uc := newFixture(t)
	ctx := context.Background()
	order := received(t, uc)

	_, err := uc.ReceiveLine(ctx, companyID, userID, order.ID, order.Lines[0].ID, decimal.NewFromInt(6))
	require.NoError(t, err)

	got, err := uc.Cancel(ctx, companyID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReturnCancelled, got.Status)

	key := entity.StockKey{CompanyID: companyID, ProductID: "prod-1", LocationID: "muelle"}
	assert.True(t, store.Levels[key].QuantityOnHand.Equal(decimal.NewFromInt(6)),
		"cancelar no revierte recepciones ya posteadas")
	assert.Len(t, store.Movements, 1)
}
