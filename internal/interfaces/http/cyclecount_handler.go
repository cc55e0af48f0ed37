package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/warehouse-pro/internal/application/cyclecount"
	"github.com/tu-usuario/warehouse-pro/internal/application/dto"
	"github.com/tu-usuario/warehouse-pro/internal/domain/entity"
)

// CycleCountHandler maneja las peticiones HTTP del workflow de conteo cíclico (protegido).
type CycleCountHandler struct {
	uc *cyclecount.UseCase
}

// NewCycleCountHandler construye el handler.
func NewCycleCountHandler(uc *cyclecount.UseCase) *CycleCountHandler {
	return &CycleCountHandler{uc: uc}
}

// Create godoc
// @Summary      Crear sesión de conteo cíclico (DRAFT)
// @Description  Congela la cantidad esperada de cada ítem desde el libro de
//               stock al momento de la creación.
// @Tags         cycle-counts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateCycleCountRequest  true  "warehouse_id, blind_count, items"
// @Success      201   {object}  dto.CycleCountResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/cycle-counts [post]
func (h *CycleCountHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateCycleCountRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	input := cyclecount.CreateSessionInput{
		WarehouseID:   in.WarehouseID,
		Description:   in.Description,
		BlindCount:    in.BlindCount,
		AllowRecounts: in.AllowRecounts,
		MaxRecounts:   in.MaxRecounts,
	}
	for _, it := range in.Items {
		input.Items = append(input.Items, cyclecount.ItemInput{
			ProductID:   it.ProductID,
			LocationID:  it.LocationID,
			BatchNumber: it.BatchNumber,
		})
	}
	session, err := h.uc.CreateSession(c.Context(), GetCompanyID(c), GetUserID(c), input)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToCycleCountResponse(session))
}

// Schedule programa la sesión (DRAFT -> SCHEDULED).
func (h *CycleCountHandler) Schedule(c *fiber.Ctx) error {
	var in dto.ScheduleCycleCountRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	session, err := h.uc.ScheduleSession(c.Context(), GetCompanyID(c), c.Params("id"), in.ScheduledFor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToCycleCountResponse(session))
}

// Start inicia la sesión (SCHEDULED -> IN_PROGRESS).
func (h *CycleCountHandler) Start(c *fiber.Ctx) error {
	return h.simple(c, h.uc.StartSession)
}

// RecordCount registra el conteo físico de un ítem.
func (h *CycleCountHandler) RecordCount(c *fiber.Ctx) error {
	var in dto.RecordCountRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	session, err := h.uc.RecordCount(c.Context(), GetCompanyID(c), GetUserID(c), c.Params("id"), c.Params("itemId"), in.CountedQuantity)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToCycleCountResponse(session))
}

// RequestRecount solicita reconteo de un ítem (hasta max_recounts).
func (h *CycleCountHandler) RequestRecount(c *fiber.Ctx) error {
	session, err := h.uc.RequestRecount(c.Context(), GetCompanyID(c), c.Params("id"), c.Params("itemId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToCycleCountResponse(session))
}

// ApproveVariance aprueba la varianza de un ítem. Solo supervisor/admin.
func (h *CycleCountHandler) ApproveVariance(c *fiber.Ctx) error {
	session, err := h.uc.ApproveVariance(c.Context(), GetCompanyID(c), GetUserID(c), c.Params("id"), c.Params("itemId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToCycleCountResponse(session))
}

// AdjustStock godoc
// @Summary      Ajustar el libro con la varianza aprobada de un ítem
// @Description  Postea delta = contado - esperado vía motor de posteo. Un
//               ítem se ajusta a lo sumo una vez.
// @Tags         cycle-counts
// @Security     Bearer
// @Produce      json
// @Param        id      path  string  true  "ID de la sesión"
// @Param        itemId  path  string  true  "ID del ítem"
// @Success      200  {object}  dto.CycleCountResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/cycle-counts/{id}/items/{itemId}/adjust [post]
func (h *CycleCountHandler) AdjustStock(c *fiber.Ctx) error {
	session, err := h.uc.AdjustStock(c.Context(), GetCompanyID(c), GetUserID(c), c.Params("id"), c.Params("itemId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToCycleCountResponse(session))
}

// SubmitForReview pasa la sesión a revisión (IN_PROGRESS -> REVIEW).
func (h *CycleCountHandler) SubmitForReview(c *fiber.Ctx) error {
	return h.simple(c, h.uc.SubmitForReview)
}

// Complete cierra la sesión (REVIEW -> COMPLETE).
func (h *CycleCountHandler) Complete(c *fiber.Ctx) error {
	return h.simple(c, h.uc.CompleteSession)
}

// Cancel anula la sesión.
func (h *CycleCountHandler) Cancel(c *fiber.Ctx) error {
	return h.simple(c, h.uc.CancelSession)
}

// GetByID devuelve la sesión con sus ítems (esperado oculto en conteo ciego abierto).
func (h *CycleCountHandler) GetByID(c *fiber.Ctx) error {
	return h.simple(c, h.uc.Get)
}

// CountSheet godoc
// @Summary      Hoja de conteo imprimible (PDF)
// @Tags         cycle-counts
// @Security     Bearer
// @Produce      application/pdf
// @Param        id  path  string  true  "ID de la sesión"
// @Success      200  {file}  binary
// @Router       /api/cycle-counts/{id}/sheet [get]
func (h *CycleCountHandler) CountSheet(c *fiber.Ctx) error {
	pdfBytes, err := h.uc.CountSheet(c.Context(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="hoja-conteo.pdf"`)
	return c.Send(pdfBytes)
}

// List lista sesiones por estado (query status, vacío = todas).
func (h *CycleCountHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "query inválida"})
	}
	page.DefaultPage()
	status := entity.CycleCountStatus(c.Query("status"))
	sessions, err := h.uc.List(c.Context(), GetCompanyID(c), status, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	resp := dto.CycleCountListResponse{
		Items: make([]dto.CycleCountResponse, 0, len(sessions)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
	for _, s := range sessions {
		resp.Items = append(resp.Items, dto.ToCycleCountResponse(s))
	}
	return c.JSON(resp)
}

func (h *CycleCountHandler) simple(c *fiber.Ctx, op func(ctx context.Context, companyID, sessionID string) (*entity.CycleCountSession, error)) error {
	session, err := op(c.Context(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToCycleCountResponse(session))
}
