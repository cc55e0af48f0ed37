package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/warehouse-pro/internal/application/adjustment"
	"github.com/tu-usuario/warehouse-pro/internal/application/dto"
	"github.com/tu-usuario/warehouse-pro/internal/domain/entity"
)

// AdjustmentHandler maneja las peticiones HTTP del workflow de ajustes (protegido).
type AdjustmentHandler struct {
	uc *adjustment.UseCase
}

// NewAdjustmentHandler construye el handler.
func NewAdjustmentHandler(uc *adjustment.UseCase) *AdjustmentHandler {
	return &AdjustmentHandler{uc: uc}
}

// Create godoc
// @Summary      Crear ajuste de stock (DRAFT)
// @Tags         adjustments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateAdjustmentRequest  true  "reason, notes, lines"
// @Success      201   {object}  dto.AdjustmentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/adjustments [post]
func (h *AdjustmentHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateAdjustmentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	input := adjustment.CreateInput{Reason: in.Reason, Notes: in.Notes}
	for _, l := range in.Lines {
		input.Lines = append(input.Lines, lineInput(l))
	}
	adj, err := h.uc.Create(c.Context(), GetCompanyID(c), GetUserID(c), input)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToAdjustmentResponse(adj))
}

// QuickAdjust godoc
// @Summary      Ajuste rápido de una línea (crea, aprueba y postea)
// @Tags         adjustments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.QuickAdjustRequest  true  "product_id, location_id, quantity_change, reason"
// @Success      201   {object}  dto.AdjustmentResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/adjustments/quick [post]
func (h *AdjustmentHandler) QuickAdjust(c *fiber.Ctx) error {
	var in dto.QuickAdjustRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	adj, err := h.uc.QuickAdjust(c.Context(), GetCompanyID(c), GetUserID(c), adjustment.CreateInput{
		Reason: in.Reason,
		Lines: []adjustment.LineInput{{
			ProductID:      in.ProductID,
			LocationID:     in.LocationID,
			BatchNumber:    in.BatchNumber,
			SerialNumber:   in.SerialNumber,
			QuantityChange: in.QuantityChange,
			Reason:         in.Reason,
		}},
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToAdjustmentResponse(adj))
}

// CreateFromCycleCount godoc
// @Summary      Derivar ajuste desde las varianzas de una sesión de conteo
// @Description  Crea un ajuste DRAFT con una línea por ítem contado cuya
//               varianza sea distinta de cero y aún no esté ajustado.
// @Tags         adjustments
// @Security     Bearer
// @Produce      json
// @Param        sessionId  path  string  true  "ID de la sesión de conteo"
// @Success      201  {object}  dto.AdjustmentResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/adjustments/from-cycle-count/{sessionId} [post]
func (h *AdjustmentHandler) CreateFromCycleCount(c *fiber.Ctx) error {
	adj, err := h.uc.CreateFromCycleCount(c.Context(), GetCompanyID(c), GetUserID(c), c.Params("sessionId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToAdjustmentResponse(adj))
}

// AddLine agrega una línea a un ajuste en DRAFT.
func (h *AdjustmentHandler) AddLine(c *fiber.Ctx) error {
	var in dto.AdjustmentLineRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	adj, err := h.uc.AddLine(c.Context(), GetCompanyID(c), c.Params("id"), lineInput(in))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToAdjustmentResponse(adj))
}

// UpdateLine reemplaza los datos de una línea de un ajuste en DRAFT.
func (h *AdjustmentHandler) UpdateLine(c *fiber.Ctx) error {
	var in dto.AdjustmentLineRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	adj, err := h.uc.UpdateLine(c.Context(), GetCompanyID(c), c.Params("id"), c.Params("lineId"), lineInput(in))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToAdjustmentResponse(adj))
}

// RemoveLine elimina una línea de un ajuste en DRAFT.
func (h *AdjustmentHandler) RemoveLine(c *fiber.Ctx) error {
	adj, err := h.uc.RemoveLine(c.Context(), GetCompanyID(c), c.Params("id"), c.Params("lineId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToAdjustmentResponse(adj))
}

// Submit envía el ajuste a aprobación (DRAFT -> PENDING_APPROVAL).
func (h *AdjustmentHandler) Submit(c *fiber.Ctx) error {
	return h.simple(c, h.uc.SubmitForApproval)
}

// Approve aprueba el ajuste (PENDING_APPROVAL -> APPROVED). Solo supervisor/admin.
func (h *AdjustmentHandler) Approve(c *fiber.Ctx) error {
	adj, err := h.uc.Approve(c.Context(), GetCompanyID(c), GetUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToAdjustmentResponse(adj))
}

// Reject devuelve el ajuste a borrador (PENDING_APPROVAL -> DRAFT).
func (h *AdjustmentHandler) Reject(c *fiber.Ctx) error {
	return h.simple(c, h.uc.Reject)
}

// Cancel anula el ajuste.
func (h *AdjustmentHandler) Cancel(c *fiber.Ctx) error {
	return h.simple(c, h.uc.Cancel)
}

// Post godoc
// @Summary      Postear ajuste aprobado al libro de stock
// @Description  Aplica todas las líneas del ajuste al libro en una sola
//               transacción; si alguna falla no se postea ninguna.
// @Tags         adjustments
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del ajuste"
// @Success      200  {object}  dto.AdjustmentResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/adjustments/{id}/post [post]
func (h *AdjustmentHandler) Post(c *fiber.Ctx) error {
	adj, err := h.uc.Post(c.Context(), GetCompanyID(c), GetUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToAdjustmentResponse(adj))
}

// GetByID devuelve el ajuste con sus líneas.
func (h *AdjustmentHandler) GetByID(c *fiber.Ctx) error {
	adj, err := h.uc.Get(c.Context(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToAdjustmentResponse(adj))
}

// List lista ajustes por estado (query status, vacío = todos).
func (h *AdjustmentHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "query inválida"})
	}
	page.DefaultPage()
	status := entity.AdjustmentStatus(c.Query("status"))
	adjustments, err := h.uc.List(c.Context(), GetCompanyID(c), status, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	resp := dto.AdjustmentListResponse{
		Items: make([]dto.AdjustmentResponse, 0, len(adjustments)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
	for _, a := range adjustments {
		resp.Items = append(resp.Items, dto.ToAdjustmentResponse(a))
	}
	return c.JSON(resp)
}

func (h *AdjustmentHandler) simple(c *fiber.Ctx, op func(ctx context.Context, companyID, adjustmentID string) (*entity.StockAdjustment, error)) error {
	adj, err := op(c.Context(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToAdjustmentResponse(adj))
}

func lineInput(in dto.AdjustmentLineRequest) adjustment.LineInput {
	return adjustment.LineInput{
		ProductID:      in.ProductID,
		LocationID:     in.LocationID,
		BatchNumber:    in.BatchNumber,
		SerialNumber:   in.SerialNumber,
		QuantityChange: in.QuantityChange,
		Reason:         in.Reason,
	}
}
