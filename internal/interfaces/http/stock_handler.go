package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/warehouse-pro/internal/application/dto"
	"github.com/tu-usuario/warehouse-pro/internal/application/stock"
	"github.com/tu-usuario/warehouse-pro/internal/domain/entity"
)

// StockHandler maneja las consultas de solo lectura del libro de stock (protegido).
type StockHandler struct {
	svc *stock.QueryService
}

// NewStockHandler construye el handler.
func NewStockHandler(svc *stock.QueryService) *StockHandler {
	return &StockHandler{svc: svc}
}

// LevelsByProduct godoc
// @Summary      Niveles de stock de un producto
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        productId  path  string  true  "ID del producto"
// @Success      200  {object}  dto.StockLevelListResponse
// @Router       /api/stock/products/{productId} [get]
func (h *StockHandler) LevelsByProduct(c *fiber.Ctx) error {
	levels, err := h.svc.LevelsByProduct(c.Context(), GetCompanyID(c), c.Params("productId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(levelsResponse(levels))
}

// LevelsByLocation niveles de todos los productos en una ubicación.
func (h *StockHandler) LevelsByLocation(c *fiber.Ctx) error {
	levels, err := h.svc.LevelsByLocation(c.Context(), GetCompanyID(c), c.Params("locationId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(levelsResponse(levels))
}

// MovementByID un movimiento del historial.
func (h *StockHandler) MovementByID(c *fiber.Ctx) error {
	m, err := h.svc.MovementByID(c.Context(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToMovementResponse(m))
}

// MovementsByReference godoc
// @Summary      Movimientos generados por un documento de workflow
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        reference_type  query  string  true  "STOCK_ADJUSTMENT | CYCLE_COUNT_SESSION | PUTAWAY_TASK | RETURN_ORDER"
// @Param        reference_id    query  string  true  "ID del documento"
// @Success      200  {object}  dto.MovementListResponse
// @Router       /api/stock/movements [get]
func (h *StockHandler) MovementsByReference(c *fiber.Ctx) error {
	refType := c.Query("reference_type")
	refID := c.Query("reference_id")
	if refType == "" || refID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "reference_type y reference_id son requeridos"})
	}
	movements, err := h.svc.MovementsByReference(c.Context(), GetCompanyID(c), refType, refID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(movementsResponse(movements, dto.PageResponse{}))
}

// MovementsByKey historial de una clave de stock (producto + ubicación +
// lote/serie), más recientes primero.
func (h *StockHandler) MovementsByKey(c *fiber.Ctx) error {
	productID := c.Query("product_id")
	locationID := c.Query("location_id")
	if productID == "" || locationID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "product_id y location_id son requeridos"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "query inválida"})
	}
	page.DefaultPage()
	key := entity.StockKey{
		CompanyID:    GetCompanyID(c),
		ProductID:    productID,
		LocationID:   locationID,
		BatchNumber:  c.Query("batch_number"),
		SerialNumber: c.Query("serial_number"),
	}
	movements, err := h.svc.MovementsByKey(c.Context(), key, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(movementsResponse(movements, dto.PageResponse{Limit: page.Limit, Offset: page.Offset}))
}

func levelsResponse(levels []*entity.StockLevel) dto.StockLevelListResponse {
	resp := dto.StockLevelListResponse{Items: make([]dto.StockLevelResponse, 0, len(levels))}
	for _, l := range levels {
		resp.Items = append(resp.Items, dto.ToStockLevelResponse(l))
	}
	return resp
}

func movementsResponse(movements []*entity.StockMovement, page dto.PageResponse) dto.MovementListResponse {
	resp := dto.MovementListResponse{
		Items: make([]dto.MovementResponse, 0, len(movements)),
		Page:  page,
	}
	for _, m := range movements {
		resp.Items = append(resp.Items, dto.ToMovementResponse(m))
	}
	return resp
}
