package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/warehouse-pro/internal/application/adjustment"
	"github.com/tu-usuario/warehouse-pro/internal/application/cyclecount"
	"github.com/tu-usuario/warehouse-pro/internal/application/putaway"
	"github.com/tu-usuario/warehouse-pro/internal/application/returns"
	"github.com/tu-usuario/warehouse-pro/internal/application/stock"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AdjustmentUC *adjustment.UseCase
	CycleCountUC *cyclecount.UseCase
	PutawayUC    *putaway.UseCase
	ReturnsUC    *returns.UseCase
	StockQuery   *stock.QueryService
	JWTSecret    string
}

// Router registra las rutas de la API. Todas las rutas de negocio requieren
// Bearer Token; las aprobaciones exigen rol supervisor o admin.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	approver := RequireRole(RoleSupervisor, RoleAdmin)

	// Stock (consultas de solo lectura)
	stockGroup := protected.Group("/stock")
	stockHandler := NewStockHandler(deps.StockQuery)
	stockGroup.Get("/products/:productId", stockHandler.LevelsByProduct)
	stockGroup.Get("/locations/:locationId", stockHandler.LevelsByLocation)
	stockGroup.Get("/movements", stockHandler.MovementsByReference)
	stockGroup.Get("/movements/history", stockHandler.MovementsByKey)
	stockGroup.Get("/movements/:id", stockHandler.MovementByID)

	// Ajustes de stock
	adjustments := protected.Group("/adjustments")
	adjustmentHandler := NewAdjustmentHandler(deps.AdjustmentUC)
	adjustments.Post("/", adjustmentHandler.Create)
	adjustments.Post("/quick", approver, adjustmentHandler.QuickAdjust)
	adjustments.Post("/from-cycle-count/:sessionId", adjustmentHandler.CreateFromCycleCount)
	adjustments.Get("/", adjustmentHandler.List)
	adjustments.Get("/:id", adjustmentHandler.GetByID)
	adjustments.Post("/:id/lines", adjustmentHandler.AddLine)
	adjustments.Put("/:id/lines/:lineId", adjustmentHandler.UpdateLine)
	adjustments.Delete("/:id/lines/:lineId", adjustmentHandler.RemoveLine)
	adjustments.Post("/:id/submit", adjustmentHandler.Submit)
	adjustments.Post("/:id/approve", approver, adjustmentHandler.Approve)
	adjustments.Post("/:id/reject", approver, adjustmentHandler.Reject)
	adjustments.Post("/:id/cancel", adjustmentHandler.Cancel)
	adjustments.Post("/:id/post", approver, adjustmentHandler.Post)

	// Conteos cíclicos
	cycleCounts := protected.Group("/cycle-counts")
	cycleCountHandler := NewCycleCountHandler(deps.CycleCountUC)
	cycleCounts.Post("/", cycleCountHandler.Create)
	cycleCounts.Get("/", cycleCountHandler.List)
	cycleCounts.Get("/:id", cycleCountHandler.GetByID)
	cycleCounts.Get("/:id/sheet", cycleCountHandler.CountSheet)
	cycleCounts.Post("/:id/schedule", cycleCountHandler.Schedule)
	cycleCounts.Post("/:id/start", cycleCountHandler.Start)
	cycleCounts.Post("/:id/items/:itemId/count", cycleCountHandler.RecordCount)
	cycleCounts.Post("/:id/items/:itemId/recount", cycleCountHandler.RequestRecount)
	cycleCounts.Post("/:id/items/:itemId/approve", approver, cycleCountHandler.ApproveVariance)
	cycleCounts.Post("/:id/items/:itemId/adjust", approver, cycleCountHandler.AdjustStock)
	cycleCounts.Post("/:id/review", cycleCountHandler.SubmitForReview)
	cycleCounts.Post("/:id/complete", approver, cycleCountHandler.Complete)
	cycleCounts.Post("/:id/cancel", cycleCountHandler.Cancel)

	// Putaway
	putawayGroup := protected.Group("/putaway")
	putawayHandler := NewPutawayHandler(deps.PutawayUC)
	putawayGroup.Post("/", putawayHandler.Create)
	putawayGroup.Post("/from-receipt", putawayHandler.CreateFromReceipt)
	putawayGroup.Get("/suggestions", putawayHandler.Suggest)
	putawayGroup.Get("/", putawayHandler.List)
	putawayGroup.Get("/:id", putawayHandler.GetByID)
	putawayGroup.Post("/:id/assign", putawayHandler.Assign)
	putawayGroup.Post("/:id/start", putawayHandler.Start)
	putawayGroup.Post("/:id/complete", putawayHandler.Complete)
	putawayGroup.Post("/:id/cancel", putawayHandler.Cancel)

	// Devoluciones
	returnsGroup := protected.Group("/returns")
	returnsHandler := NewReturnsHandler(deps.ReturnsUC)
	returnsGroup.Post("/", returnsHandler.Create)
	returnsGroup.Get("/", returnsHandler.List)
	returnsGroup.Get("/:id", returnsHandler.GetByID)
	returnsGroup.Post("/:id/lines", returnsHandler.AddLine)
	returnsGroup.Delete("/:id/lines/:lineId", returnsHandler.RemoveLine)
	returnsGroup.Post("/:id/in-transit", returnsHandler.MarkInTransit)
	returnsGroup.Post("/:id/receive", returnsHandler.StartReceiving)
	returnsGroup.Post("/:id/process", returnsHandler.StartProcessing)
	returnsGroup.Post("/:id/lines/:lineId/receive", returnsHandler.ReceiveLine)
	returnsGroup.Post("/:id/lines/:lineId/process", returnsHandler.ProcessLine)
	returnsGroup.Post("/:id/complete", returnsHandler.Complete)
	returnsGroup.Post("/:id/cancel", returnsHandler.Cancel)
}
