package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/warehouse-pro/internal/application/dto"
	"github.com/tu-usuario/warehouse-pro/internal/application/returns"
	"github.com/tu-usuario/warehouse-pro/internal/domain/entity"
)

// ReturnsHandler maneja las peticiones HTTP del workflow de devoluciones (protegido).
type ReturnsHandler struct {
	uc *returns.UseCase
}

// NewReturnsHandler construye el handler.
func NewReturnsHandler(uc *returns.UseCase) *ReturnsHandler {
	return &ReturnsHandler{uc: uc}
}

// Create crea una orden de devolución (PENDING).
func (h *ReturnsHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateReturnRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	input := returns.CreateInput{
		CustomerReference:   in.CustomerReference,
		ReceivingLocationID: in.ReceivingLocationID,
		Reason:              in.Reason,
		Notes:               in.Notes,
	}
	for _, l := range in.Lines {
		input.Lines = append(input.Lines, returns.LineInput{
			ProductID:        l.ProductID,
			BatchNumber:      l.BatchNumber,
			QuantityExpected: l.QuantityExpected,
		})
	}
	order, err := h.uc.Create(c.Context(), GetCompanyID(c), GetUserID(c), input)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToReturnResponse(order))
}

// AddLine agrega una línea esperada (solo en PENDING).
func (h *ReturnsHandler) AddLine(c *fiber.Ctx) error {
	var in dto.ReturnLineRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	order, err := h.uc.AddLine(c.Context(), GetCompanyID(c), c.Params("id"), returns.LineInput{
		ProductID:        in.ProductID,
		BatchNumber:      in.BatchNumber,
		QuantityExpected: in.QuantityExpected,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToReturnResponse(order))
}

// RemoveLine elimina una línea esperada (solo en PENDING).
func (h *ReturnsHandler) RemoveLine(c *fiber.Ctx) error {
	order, err := h.uc.RemoveLine(c.Context(), GetCompanyID(c), c.Params("id"), c.Params("lineId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToReturnResponse(order))
}

// MarkInTransit marca la mercancía en camino (PENDING -> IN_TRANSIT).
func (h *ReturnsHandler) MarkInTransit(c *fiber.Ctx) error {
	return h.simple(c, h.uc.MarkInTransit)
}

// StartReceiving registra la llegada al muelle (IN_TRANSIT -> RECEIVED).
func (h *ReturnsHandler) StartReceiving(c *fiber.Ctx) error {
	return h.simple(c, h.uc.StartReceiving)
}

// StartProcessing inicia la inspección (RECEIVED -> IN_PROGRESS).
func (h *ReturnsHandler) StartProcessing(c *fiber.Ctx) error {
	return h.simple(c, h.uc.StartProcessing)
}

// ReceiveLine godoc
// @Summary      Registrar recepción de una línea (parcial permitida)
// @Description  Postea la entrada en la ubicación de recepción de la orden.
// @Tags         returns
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id      path  string  true  "ID de la devolución"
// @Param        lineId  path  string  true  "ID de la línea"
// @Param        body    body  dto.ReceiveReturnLineRequest  true  "quantity"
// @Success      200  {object}  dto.ReturnResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/returns/{id}/lines/{lineId}/receive [post]
func (h *ReturnsHandler) ReceiveLine(c *fiber.Ctx) error {
	var in dto.ReceiveReturnLineRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	order, err := h.uc.ReceiveLine(c.Context(), GetCompanyID(c), GetUserID(c), c.Params("id"), c.Params("lineId"), in.Quantity)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToReturnResponse(order))
}

// ProcessLine clasifica una línea recibida (aceptado/rechazado + disposición).
func (h *ReturnsHandler) ProcessLine(c *fiber.Ctx) error {
	var in dto.ProcessReturnLineRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	order, err := h.uc.ProcessLine(c.Context(), GetCompanyID(c), c.Params("id"), c.Params("lineId"),
		in.QuantityAccepted, in.QuantityRejected, entity.Disposition(in.Disposition))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToReturnResponse(order))
}

// Complete cierra la orden (IN_PROGRESS -> COMPLETE).
func (h *ReturnsHandler) Complete(c *fiber.Ctx) error {
	return h.simple(c, h.uc.Complete)
}

// Cancel anula la orden.
func (h *ReturnsHandler) Cancel(c *fiber.Ctx) error {
	return h.simple(c, h.uc.Cancel)
}

// GetByID devuelve la orden con sus líneas.
func (h *ReturnsHandler) GetByID(c *fiber.Ctx) error {
	return h.simple(c, h.uc.Get)
}

// List lista órdenes por estado (query status, vacío = todas).
func (h *ReturnsHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "query inválida"})
	}
	page.DefaultPage()
	status := entity.ReturnStatus(c.Query("status"))
	orders, err := h.uc.List(c.Context(), GetCompanyID(c), status, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	resp := dto.ReturnListResponse{
		Items: make([]dto.ReturnResponse, 0, len(orders)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
	for _, o := range orders {
		resp.Items = append(resp.Items, dto.ToReturnResponse(o))
	}
	return c.JSON(resp)
}

func (h *ReturnsHandler) simple(c *fiber.Ctx, op func(ctx context.Context, companyID, orderID string) (*entity.ReturnOrder, error)) error {
	order, err := op(c.Context(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToReturnResponse(order))
}
