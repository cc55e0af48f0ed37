package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/warehouse-pro/internal/application/dto"
	"github.com/tu-usuario/warehouse-pro/internal/application/putaway"
	"github.com/tu-usuario/warehouse-pro/internal/domain/entity"
)

// PutawayHandler maneja las peticiones HTTP del workflow de putaway (protegido).
type PutawayHandler struct {
	uc *putaway.UseCase
}

// NewPutawayHandler construye el handler.
func NewPutawayHandler(uc *putaway.UseCase) *PutawayHandler {
	return &PutawayHandler{uc: uc}
}

// Create crea una tarea de putaway manual (PENDING).
func (h *PutawayHandler) Create(c *fiber.Ctx) error {
	var in dto.CreatePutawayRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	task, err := h.uc.CreateTask(c.Context(), GetCompanyID(c), GetUserID(c), putaway.CreateTaskInput{
		ProductID:           in.ProductID,
		BatchNumber:         in.BatchNumber,
		FromLocationID:      in.FromLocationID,
		SuggestedLocationID: in.SuggestedLocationID,
		Quantity:            in.Quantity,
		Priority:            in.Priority,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToPutawayResponse(task))
}

// CreateFromReceipt godoc
// @Summary      Generar tareas de putaway desde una recepción
// @Description  Una tarea por línea de la recepción con cantidad pendiente.
// @Tags         putaway
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreatePutawayFromReceiptRequest  true  "receipt_id"
// @Success      201   {object}  dto.PutawayListResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/putaway/from-receipt [post]
func (h *PutawayHandler) CreateFromReceipt(c *fiber.Ctx) error {
	var in dto.CreatePutawayFromReceiptRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	tasks, err := h.uc.CreateFromGoodsReceipt(c.Context(), GetCompanyID(c), GetUserID(c), in.ReceiptID)
	if err != nil {
		return respondError(c, err)
	}
	resp := dto.PutawayListResponse{Items: make([]dto.PutawayResponse, 0, len(tasks))}
	for _, t := range tasks {
		resp.Items = append(resp.Items, dto.ToPutawayResponse(t))
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Assign asigna la tarea a un operario (PENDING -> ASSIGNED).
func (h *PutawayHandler) Assign(c *fiber.Ctx) error {
	var in dto.AssignPutawayRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	task, err := h.uc.AssignTask(c.Context(), GetCompanyID(c), c.Params("id"), in.AssignedTo)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToPutawayResponse(task))
}

// Start inicia la tarea (ASSIGNED -> IN_PROGRESS).
func (h *PutawayHandler) Start(c *fiber.Ctx) error {
	return h.simple(c, h.uc.StartTask)
}

// Complete godoc
// @Summary      Confirmar guardado (parcial permitido)
// @Description  Postea el traslado staging -> ubicación real elegida por el
//               operario; la tarea cierra cuando se guardó todo.
// @Tags         putaway
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la tarea"
// @Param        body  body  dto.CompletePutawayRequest  true  "actual_location_id, quantity"
// @Success      200   {object}  dto.PutawayResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/putaway/{id}/complete [post]
func (h *PutawayHandler) Complete(c *fiber.Ctx) error {
	var in dto.CompletePutawayRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	task, err := h.uc.CompleteTask(c.Context(), GetCompanyID(c), GetUserID(c), c.Params("id"), in.ActualLocationID, in.Quantity)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToPutawayResponse(task))
}

// Cancel anula la tarea.
func (h *PutawayHandler) Cancel(c *fiber.Ctx) error {
	return h.simple(c, h.uc.CancelTask)
}

// Suggest godoc
// @Summary      Sugerir ubicaciones para guardar un producto
// @Description  Ranking heurístico: base 100, +50 vacía, +10 piso, +30 zona
//               preferida del producto. Solo sugiere, no reserva.
// @Tags         putaway
// @Security     Bearer
// @Produce      json
// @Param        product_id    query  string  true   "ID del producto"
// @Param        warehouse_id  query  string  true   "ID de la bodega"
// @Param        quantity      query  string  false  "Cantidad a guardar"
// @Param        limit         query  int     false  "Máximo de sugerencias (default 5)"
// @Success      200  {array}  dto.LocationSuggestionResponse
// @Router       /api/putaway/suggestions [get]
func (h *PutawayHandler) Suggest(c *fiber.Ctx) error {
	productID := c.Query("product_id")
	warehouseID := c.Query("warehouse_id")
	if productID == "" || warehouseID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "product_id y warehouse_id son requeridos"})
	}
	quantity := decimal.Zero
	if q := c.Query("quantity"); q != "" {
		parsed, err := decimal.NewFromString(q)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "quantity inválida"})
		}
		quantity = parsed
	}
	limit := c.QueryInt("limit")

	candidates, err := h.uc.SuggestLocations(c.Context(), GetCompanyID(c), warehouseID, productID, quantity, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToLocationSuggestionResponses(candidates))
}

// GetByID devuelve la tarea.
func (h *PutawayHandler) GetByID(c *fiber.Ctx) error {
	return h.simple(c, h.uc.Get)
}

// List lista tareas por estado (query status, vacío = todas).
func (h *PutawayHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "query inválida"})
	}
	page.DefaultPage()
	status := entity.PutawayStatus(c.Query("status"))
	tasks, err := h.uc.List(c.Context(), GetCompanyID(c), status, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	resp := dto.PutawayListResponse{
		Items: make([]dto.PutawayResponse, 0, len(tasks)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
	for _, t := range tasks {
		resp.Items = append(resp.Items, dto.ToPutawayResponse(t))
	}
	return c.JSON(resp)
}

func (h *PutawayHandler) simple(c *fiber.Ctx, op func(ctx context.Context, companyID, taskID string) (*entity.PutawayTask, error)) error {
	task, err := op(c.Context(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToPutawayResponse(task))
}
