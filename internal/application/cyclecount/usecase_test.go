package cyclecount_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/warehouse-pro/internal/application/cyclecount"
	"github.com/tu-usuario/warehouse-pro/internal/application/ledger"
	"github.com/tu-usuario/warehouse-pro/internal/domain"
	"github.com/tu-usuario/warehouse-pro/internal/domain/entity"
	"github.com/tu-usuario/warehouse-pro/internal/testutil"
)

const (
	companyID = "co-1"
	userID    = "user-1"
	superID   = "super-1"
)

// fakeSheets captura lo que se mandaría al PDF.
type fakeSheets struct {
	session *entity.CycleCountSession
	lines   []cyclecount.CountSheetLine
}

func (f *fakeSheets) GenerateCountSheet(ctx context.Context, session *entity.CycleCountSession, lines []cyclecount.CountSheetLine) ([]byte, error) {
	f.session = session
	f.lines = lines
	return []byte("%PDF"), nil
}

func newFixture(t *testing.T) (*testutil.Store, *cyclecount.UseCase, *fakeSheets) {
	t.Helper()
	store := testutil.NewStore()
	store.Products["prod-1"] = &entity.Product{
		ID: "prod-1", CompanyID: companyID, SKU: "SKU-1", Name: "Tornillo",
		UnitCost: decimal.NewFromInt(2),
	}
	store.Locations["loc-a"] = &entity.Location{
		ID: "loc-a", CompanyID: companyID, WarehouseID: "wh-1", Code: "A-01", IsActive: true,
	}
	store.Locations["loc-b"] = &entity.Location{
		ID: "loc-b", CompanyID: companyID, WarehouseID: "wh-1", Code: "B-01", IsActive: true,
	}
	key := entity.StockKey{CompanyID: companyID, ProductID: "prod-1", LocationID: "loc-a"}
	store.Levels[key] = &entity.StockLevel{
		CompanyID: companyID, ProductID: "prod-1", LocationID: "loc-a",
		QuantityOnHand: decimal.NewFromInt(10),
	}
	sheets := &fakeSheets{}
	repos := store.Repos()
	uc := cyclecount.NewUseCase(
		testutil.NewTxRunner(store),
		ledger.NewPoster(),
		repos.CycleCounts,
		repos.Products,
		repos.Locations,
		sheets,
	)
	return store, uc, sheets
}

func defaultInput() cyclecount.CreateSessionInput {
	return cyclecount.CreateSessionInput{
		WarehouseID:   "wh-1",
		Description:   "conteo de pasillo A",
		AllowRecounts: true,
		MaxRecounts:   1,
		Items:         []cyclecount.ItemInput{{ProductID: "prod-1", LocationID: "loc-a"}},
	}
}

// inProgress crea la sesión y la lleva hasta IN_PROGRESS.
func inProgress(t *testing.T, uc *cyclecount.UseCase, in cyclecount.CreateSessionInput) *entity.CycleCountSession {
	t.Helper()
	ctx := context.Background()
	s, err := uc.CreateSession(ctx, companyID, userID, in)
	require.NoError(t, err)
	_, err = uc.ScheduleSession(ctx, companyID, s.ID, time.Now().UTC())
	require.NoError(t, err)
	s, err = uc.StartSession(ctx, companyID, s.ID)
	require.NoError(t, err)
	return s
}

func TestCreateSession_CongelaLaCantidadEsperada(t *testing.T) {
	_, uc, _ := newFixture(t)
	s, err := uc.CreateSession(context.Background(), companyID, userID, defaultInput())
	require.NoError(t, err)

	assert.Regexp(t, `^CC-\d{8}-0001$`, s.Number)
	assert.Equal(t, entity.CycleCountDraft, s.Status)
	require.Len(t, s.Items, 1)
	assert.True(t, s.Items[0].ExpectedQuantity.Equal(decimal.NewFromInt(10)), "esperado congelado desde el libro al crear")
	assert.Equal(t, entity.CountItemPending, s.Items[0].Status)
}

func TestCreateSession_Validaciones(t *testing.T) {
	_, uc, _ := newFixture(t)
	ctx := context.Background()

	in := defaultInput()
	in.Items = nil
	_, err := uc.CreateSession(ctx, companyID, userID, in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "sin ítems no hay sesión")

	in = defaultInput()
	in.MaxRecounts = 0
	_, err = uc.CreateSession(ctx, companyID, userID, in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "reconteos permitidos exigen cupo positivo")

	in = defaultInput()
	in.Items = []cyclecount.ItemInput{{ProductID: "prod-nope", LocationID: "loc-a"}}
	_, err = uc.CreateSession(ctx, companyID, userID, in)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecordCount_SoloConSesionEnProgreso(t *testing.T) {
	_, uc, _ := newFixture(t)
	ctx := context.Background()
	s, err := uc.CreateSession(ctx, companyID, userID, defaultInput())
	require.NoError(t, err)

	_, err = uc.RecordCount(ctx, companyID, userID, s.ID, s.Items[0].ID, decimal.NewFromInt(9))
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "no se cuenta en DRAFT")
}

func TestRecordCount_VarianzaMarcaAprobacionPendiente(t *testing.T) {
	_, uc, _ := newFixture(t)
	s := inProgress(t, uc, defaultInput())

	s, err := uc.RecordCount(context.Background(), companyID, userID, s.ID, s.Items[0].ID, decimal.NewFromInt(7))
	require.NoError(t, err)

	it := s.Items[0]
	assert.Equal(t, entity.CountItemCounted, it.Status)
	assert.True(t, it.Variance.Equal(decimal.NewFromInt(-3)))
	assert.True(t, it.RequiresApproval)
	assert.Equal(t, userID, it.CountedBy)
}

func TestRecordCount_CantidadNegativaRechazada(t *testing.T) {
	_, uc, _ := newFixture(t)
	s := inProgress(t, uc, defaultInput())
	_, err := uc.RecordCount(context.Background(), companyID, userID, s.ID, s.Items[0].ID, decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRequestRecount_RespetaElCupo(t *testing.T) {
	_, uc, _ := newFixture(t)
	ctx := context.Background()
	s := inProgress(t, uc, defaultInput()) // MaxRecounts = 1
	itemID := s.Items[0].ID

	_, err := uc.RecordCount(ctx, companyID, userID, s.ID, itemID, decimal.NewFromInt(7))
	require.NoError(t, err)

	s, err = uc.RequestRecount(ctx, companyID, s.ID, itemID)
	require.NoError(t, err)
	it := s.Items[0]
	assert.Equal(t, entity.CountItemRecounting, it.Status)
	assert.Equal(t, 1, it.RecountNumber)
	assert.Nil(t, it.CountedQuantity, "el reconteo limpia el conteo previo")
	assert.False(t, it.RequiresApproval)

	_, err = uc.RecordCount(ctx, companyID, userID, s.ID, itemID, decimal.NewFromInt(8))
	require.NoError(t, err)

	_, err = uc.RequestRecount(ctx, companyID, s.ID, itemID)
	assert.ErrorIs(t, err, domain.ErrRecountLimitExceeded, "el segundo reconteo excede el cupo")
}

func TestRequestRecount_SesionSinReconteos(t *testing.T) {
	_, uc, _ := newFixture(t)
	ctx := context.Background()
	in := defaultInput()
	in.AllowRecounts = false
	in.MaxRecounts = 0
	s := inProgress(t, uc, in)

	_, err := uc.RecordCount(ctx, companyID, userID, s.ID, s.Items[0].ID, decimal.NewFromInt(7))
	require.NoError(t, err)
	_, err = uc.RequestRecount(ctx, companyID, s.ID, s.Items[0].ID)
	assert.ErrorIs(t, err, domain.ErrRecountLimitExceeded)
}

func TestAdjustStock_PosteaLaVarianzaAprobada(t *testing.T) {
	store, uc, _ := newFixture(t)
	ctx := context.Background()
	s := inProgress(t, uc, defaultInput())
	itemID := s.Items[0].ID

	_, err := uc.RecordCount(ctx, companyID, userID, s.ID, itemID, decimal.NewFromInt(7))
	require.NoError(t, err)

	// Sin aprobar la varianza el ajuste está bloqueado.
	_, err = uc.AdjustStock(ctx, companyID, superID, s.ID, itemID)
	require.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = uc.ApproveVariance(ctx, companyID, superID, s.ID, itemID)
	require.NoError(t, err)

	s, err = uc.AdjustStock(ctx, companyID, superID, s.ID, itemID)
	require.NoError(t, err)

	it := s.Items[0]
	assert.Equal(t, entity.CountItemAdjusted, it.Status)
	assert.NotEmpty(t, it.MovementID)

	key := entity.StockKey{CompanyID: companyID, ProductID: "prod-1", LocationID: "loc-a"}
	assert.True(t, store.Levels[key].QuantityOnHand.Equal(decimal.NewFromInt(7)), "el libro queda en lo contado")
	require.Len(t, store.Movements, 1)
	assert.Equal(t, entity.MovementTypeCycleCount, store.Movements[0].MovementType)
	assert.True(t, store.Movements[0].IsOutbound(), "varianza negativa = salida")

	// Acción terminal por ítem.
	_, err = uc.AdjustStock(ctx, companyID, superID, s.ID, itemID)
	require.ErrorIs(t, err, domain.ErrAlreadyProcessed)
	assert.Len(t, store.Movements, 1, "la misma varianza nunca se postea dos veces")
}

func TestAdjustStock_SinVarianzaFalla(t *testing.T) {
	_, uc, _ := newFixture(t)
	ctx := context.Background()
	s := inProgress(t, uc, defaultInput())

	_, err := uc.RecordCount(ctx, companyID, userID, s.ID, s.Items[0].ID, decimal.NewFromInt(10))
	require.NoError(t, err)
	_, err = uc.AdjustStock(ctx, companyID, superID, s.ID, s.Items[0].ID)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestApproveVariance_SinVarianzaFalla(t *testing.T) {
	_, uc, _ := newFixture(t)
	ctx := context.Background()
	s := inProgress(t, uc, defaultInput())
	_, err := uc.RecordCount(ctx, companyID, userID, s.ID, s.Items[0].ID, decimal.NewFromInt(10))
	require.NoError(t, err)

	_, err = uc.ApproveVariance(ctx, companyID, superID, s.ID, s.Items[0].ID)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSubmitForReview_BloqueadoConVarianzasSinAprobar(t *testing.T) {
	_, uc, _ := newFixture(t)
	ctx := context.Background()
	s := inProgress(t, uc, defaultInput())
	itemID := s.Items[0].ID

	_, err := uc.RecordCount(ctx, companyID, userID, s.ID, itemID, decimal.NewFromInt(7))
	require.NoError(t, err)

	_, err = uc.SubmitForReview(ctx, companyID, s.ID)
	require.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = uc.ApproveVariance(ctx, companyID, superID, s.ID, itemID)
	require.NoError(t, err)
	s, err = uc.SubmitForReview(ctx, companyID, s.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.CycleCountReview, s.Status)
}

func TestCompleteSession_BloqueadaConItemsAbiertos(t *testing.T) {
	_, uc, _ := newFixture(t)
	ctx := context.Background()
	in := defaultInput()
	in.Items = append(in.Items, cyclecount.ItemInput{ProductID: "prod-1", LocationID: "loc-b"})
	s := inProgress(t, uc, in)

	// Solo se cuenta el primero; el segundo queda PENDING.
	_, err := uc.RecordCount(ctx, companyID, userID, s.ID, s.Items[0].ID, decimal.NewFromInt(10))
	require.NoError(t, err)
	s, err = uc.SubmitForReview(ctx, companyID, s.ID)
	require.NoError(t, err)

	_, err = uc.CompleteSession(ctx, companyID, s.ID)
	require.ErrorIs(t, err, domain.ErrInvalidTransition, "queda un ítem sin contar")

	got, err := uc.Get(ctx, companyID, s.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.CycleCountReview, got.Status)
}

func TestCompleteSession_CierraConTodoContado(t *testing.T) {
	_, uc, _ := newFixture(t)
	ctx := context.Background()
	s := inProgress(t, uc, defaultInput())
	_, err := uc.RecordCount(ctx, companyID, userID, s.ID, s.Items[0].ID, decimal.NewFromInt(10))
	require.NoError(t, err)
	_, err = uc.SubmitForReview(ctx, companyID, s.ID)
	require.NoError(t, err)

	s, err = uc.CompleteSession(ctx, companyID, s.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.CycleCountComplete, s.Status)
	require.NotNil(t, s.CompletedAt)

	_, err = uc.CancelSession(ctx, companyID, s.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "COMPLETE es terminal")
}

func TestCountSheet_ConteoCiegoOcultaElEsperado(t *testing.T) {
	_, uc, sheets := newFixture(t)
	ctx := context.Background()
	in := defaultInput()
	in.BlindCount = true
	s, err := uc.CreateSession(ctx, companyID, userID, in)
	require.NoError(t, err)

	pdf, err := uc.CountSheet(ctx, companyID, s.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, pdf)

	require.Len(t, sheets.lines, 1)
	assert.Empty(t, sheets.lines[0].Expected, "en conteo ciego la hoja no muestra el esperado")
	assert.Equal(t, "SKU-1", sheets.lines[0].SKU)
	assert.Equal(t, "A-01", sheets.lines[0].LocationCode)
}

func TestCountSheet_ConteoEstandarMuestraElEsperado(t *testing.T) {
	_, uc, sheets := newFixture(t)
	ctx := context.Background()
	s, err := uc.CreateSession(ctx, companyID, userID, defaultInput())
	require.NoError(t, err)

	_, err = uc.CountSheet(ctx, companyID, s.ID)
	require.NoError(t, err)
	require.Len(t, sheets.lines, 1)
	assert.Equal(t, "10", sheets.lines[0].Expected)
}
