package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/warehouse-pro/internal/application/adjustment"
	"github.com/tu-usuario/warehouse-pro/internal/application/cyclecount"
	"github.com/tu-usuario/warehouse-pro/internal/application/dto"
	"github.com/tu-usuario/warehouse-pro/internal/application/ledger"
	"github.com/tu-usuario/warehouse-pro/internal/application/putaway"
	"github.com/tu-usuario/warehouse-pro/internal/application/returns"
	"github.com/tu-usuario/warehouse-pro/internal/application/stock"
	"github.com/tu-usuario/warehouse-pro/internal/domain/entity"
	infrapdf "github.com/tu-usuario/warehouse-pro/internal/infrastructure/pdf"
	apphttp "github.com/tu-usuario/warehouse-pro/internal/interfaces/http"
	"github.com/tu-usuario/warehouse-pro/internal/testutil"
)

// buildRouterApp monta el router completo sobre repos en memoria, igual que
// main.go lo hace sobre PostgreSQL.
func buildRouterApp(store *testutil.Store) *fiber.App {
	txRunner := testutil.NewTxRunner(store)
	poster := ledger.NewPoster()
	repos := store.Repos()

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		AdjustmentUC: adjustment.NewUseCase(txRunner, poster, repos.Adjustments, repos.Products, repos.Locations, repos.StockLevels),
		CycleCountUC: cyclecount.NewUseCase(txRunner, poster, repos.CycleCounts, repos.Products, repos.Locations, infrapdf.NewCountSheetGenerator()),
		PutawayUC:    putaway.NewUseCase(txRunner, poster, repos.Putaways, repos.Products, repos.Locations, repos.StockLevels),
		ReturnsUC:    returns.NewUseCase(txRunner, poster, repos.Returns),
		StockQuery:   stock.NewQueryService(repos.StockLevels, repos.Movements),
		JWTSecret:    testJWTSecret,
	})
	return app
}

// counted devuelve un puntero a decimal, como lo guarda un ítem contado.
func counted(qty int64) *decimal.Decimal {
	d := decimal.NewFromInt(qty)
	return &d
}

// Deriva un ajuste DRAFT desde las varianzas pendientes de una sesión de
// conteo vía la ruta pública.
func TestRouter_AjusteDesdeConteoCiclico(t *testing.T) {
	store := testutil.NewStore()
	store.Products["prod-1"] = &entity.Product{
		ID: "prod-1", CompanyID: testCompanyID, SKU: "SKU-1", Name: "Tornillo",
		UnitCost: decimal.NewFromInt(3),
	}
	store.Locations["loc-a"] = &entity.Location{
		ID: "loc-a", CompanyID: testCompanyID, WarehouseID: "wh-1", Code: "A-01", IsActive: true,
	}
	store.Sessions["cc-1"] = &entity.CycleCountSession{
		ID:        "cc-1",
		CompanyID: testCompanyID,
		Number:    "CC-20250301-0001",
		Status:    entity.CycleCountReview,
		Items: []*entity.CycleCountItem{
			{
				ID: "item-1", SessionID: "cc-1", LineNumber: 1,
				ProductID: "prod-1", LocationID: "loc-a",
				ExpectedQuantity: decimal.NewFromInt(10),
				CountedQuantity:  counted(7),
				Variance:         decimal.NewFromInt(-3),
				Status:           entity.CountItemApproved,
				RequiresApproval: true,
				IsApproved:       true,
			},
		},
	}
	app := buildRouterApp(store)

	req := httptest.NewRequest(http.MethodPost, "/api/adjustments/from-cycle-count/cc-1", nil)
	req.Header.Set("Authorization", tokenForRole(t, apphttp.RoleOperario))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode,
		"la ruta debe existir y derivar el ajuste")

	var body dto.AdjustmentResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "DRAFT", body.Status, "el ajuste derivado nace en borrador")
	assert.Equal(t, "CYCLE_COUNT", body.SourceType)
	assert.Equal(t, "cc-1", body.SourceID)
	require.Len(t, body.Lines, 1, "una línea por ítem con varianza pendiente")
	assert.True(t, decimal.NewFromInt(-3).Equal(body.Lines[0].QuantityChange),
		"la línea debe llevar la varianza como delta")

	// El documento quedó persistido y consultable.
	stored, ok := store.Adjustments[body.ID]
	require.True(t, ok, "el ajuste debe quedar guardado")
	assert.Equal(t, entity.AdjustmentDraft, stored.Status)
}

// Una sesión inexistente responde 404 por la misma ruta.
func TestRouter_AjusteDesdeConteoInexistente(t *testing.T) {
	app := buildRouterApp(testutil.NewStore())

	req := httptest.NewRequest(http.MethodPost, "/api/adjustments/from-cycle-count/no-existe", nil)
	req.Header.Set("Authorization", tokenForRole(t, apphttp.RoleOperario))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
