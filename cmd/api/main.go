package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/tu-usuario/warehouse-pro/internal/application/adjustment"
	"github.com/tu-usuario/warehouse-pro/internal/application/cyclecount"
	"github.com/tu-usuario/warehouse-pro/internal/application/ledger"
	"github.com/tu-usuario/warehouse-pro/internal/application/putaway"
	"github.com/tu-usuario/warehouse-pro/internal/application/returns"
	"github.com/tu-usuario/warehouse-pro/internal/application/stock"
	infrapdf "github.com/tu-usuario/warehouse-pro/internal/infrastructure/pdf"
	"github.com/tu-usuario/warehouse-pro/internal/infrastructure/postgres"
	httpRouter "github.com/tu-usuario/warehouse-pro/internal/interfaces/http"
	"github.com/tu-usuario/warehouse-pro/pkg/config"
	"github.com/tu-usuario/warehouse-pro/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.Log.Level,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Repos sobre el pool (lecturas fuera de transacción)
	adjustmentRepo := postgres.NewAdjustmentRepository(pool)
	cycleCountRepo := postgres.NewCycleCountRepository(pool)
	putawayRepo := postgres.NewPutawayRepository(pool)
	returnRepo := postgres.NewReturnOrderRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	locationRepo := postgres.NewLocationRepository(pool)
	levelRepo := postgres.NewStockLevelRepository(pool)
	movementRepo := postgres.NewStockMovementRepository(pool)

	txRunner := postgres.NewTxRunner(pool)
	poster := ledger.NewPoster()

	countSheetGen := infrapdf.NewCountSheetGenerator()

	adjustmentUC := adjustment.NewUseCase(txRunner, poster, adjustmentRepo, productRepo, locationRepo, levelRepo)
	cycleCountUC := cyclecount.NewUseCase(txRunner, poster, cycleCountRepo, productRepo, locationRepo, countSheetGen)
	putawayUC := putaway.NewUseCase(txRunner, poster, putawayRepo, productRepo, locationRepo, levelRepo)
	returnsUC := returns.NewUseCase(txRunner, poster, returnRepo)
	stockQuery := stock.NewQueryService(levelRepo, movementRepo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Warehouse Pro API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AdjustmentUC: adjustmentUC,
		CycleCountUC: cycleCountUC,
		PutawayUC:    putawayUC,
		ReturnsUC:    returnsUC,
		StockQuery:   stockQuery,
		JWTSecret:    cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
