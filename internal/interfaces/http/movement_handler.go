package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Movimientos-api/internal/application/dto"
	"github.com/jhoicas/Movimientos-api/internal/application/inventory"
)

// MovementHandler expone el libro de movimentações (protegido).
type MovementHandler struct {
	uc       *inventory.MovementUseCase
	receipts *inventory.ReceiptUseCase
}

// NewMovementHandler construye el handler.
func NewMovementHandler(uc *inventory.MovementUseCase, receipts *inventory.ReceiptUseCase) *MovementHandler {
	return &MovementHandler{uc: uc, receipts: receipts}
}

// Open godoc
// @Summary      Abrir movimentação
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.OpenMovementRequest  true  "type: entrada | saida"
// @Success      201   {object}  dto.MovementView
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/movements [post]
func (h *MovementHandler) Open(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == 0 {
		return unauthorized(c)
	}
	var in dto.OpenMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	mov, err := h.uc.Open(c.UserContext(), tenantID, in.Type)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(mov)
}

// List godoc
// @Summary      Listar movimentações
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        state   query  string  false  "aberta | fechada | cancelada"
// @Param        limit   query  int     false  "máx 100"
// @Param        offset  query  int     false  "desplazamiento"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/movements [get]
func (h *MovementHandler) List(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == 0 {
		return unauthorized(c)
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badRequest(c, "INVALID_QUERY", "limit/offset inválidos")
	}
	list, err := h.uc.List(c.UserContext(), tenantID, c.Query("state"), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"total":     len(list),
		"movements": list,
	})
}

// Get devuelve una movimentação.
func (h *MovementHandler) Get(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == 0 {
		return unauthorized(c)
	}
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "INVALID_ID", "id inválido")
	}
	mov, err := h.uc.Get(c.UserContext(), tenantID, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(mov)
}

// GetByLink busca por link público dentro del comercio del token.
func (h *MovementHandler) GetByLink(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == 0 {
		return unauthorized(c)
	}
	mov, err := h.uc.GetByLink(c.UserContext(), tenantID, c.Params("link"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(mov)
}

// GetCart devuelve el carrito con sus agregados.
func (h *MovementHandler) GetCart(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == 0 {
		return unauthorized(c)
	}
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "INVALID_ID", "id inválido")
	}
	cart, err := h.uc.GetCart(c.UserContext(), tenantID, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(cart)
}

// AddItem godoc
// @Summary      Agregar producto al carrito
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                  true  "movimentação"
// @Param        body  body  dto.AddItemRequest   true  "product_id, quantity, discount_percent"
// @Success      200   {object}  dto.CartView
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/movements/{id}/items [post]
func (h *MovementHandler) AddItem(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == 0 {
		return unauthorized(c)
	}
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "INVALID_ID", "id inválido")
	}
	var in dto.AddItemRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	cart, err := h.uc.AddItem(c.UserContext(), tenantID, id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(cart)
}

// RemoveItem quita una línea del carrito.
func (h *MovementHandler) RemoveItem(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == 0 {
		return unauthorized(c)
	}
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "INVALID_ID", "id inválido")
	}
	itemID, ok := paramID(c, "itemId")
	if !ok {
		return badRequest(c, "INVALID_ID", "itemId inválido")
	}
	cart, err := h.uc.RemoveItem(c.UserContext(), tenantID, id, itemID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(cart)
}

// Finalize godoc
// @Summary      Cerrar movimentação (aplica stock)
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                   true  "movimentação"
// @Param        body  body  dto.FinalizeRequest   true  "type debe coincidir con el de la movimentação"
// @Success      200   {object}  dto.MovementView
// @Failure      409   {object}  dto.InsufficientStockResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/movements/{id}/finalize [post]
func (h *MovementHandler) Finalize(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == 0 {
		return unauthorized(c)
	}
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "INVALID_ID", "id inválido")
	}
	var in dto.FinalizeRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	mov, err := h.uc.Finalize(c.UserContext(), tenantID, id, in.Type)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(mov)
}

// Cancel descarta el carrito; nunca toca stock.
func (h *MovementHandler) Cancel(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == 0 {
		return unauthorized(c)
	}
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "INVALID_ID", "id inválido")
	}
	if err := h.uc.Cancel(c.UserContext(), tenantID, id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// StockEntries cambios de stock aplicados al cerrar.
func (h *MovementHandler) StockEntries(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == 0 {
		return unauthorized(c)
	}
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "INVALID_ID", "id inválido")
	}
	entries, err := h.uc.StockEntries(c.UserContext(), tenantID, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(entries), "entries": entries})
}

// Receipt descarga el comprobante PDF (solo fechada).
func (h *MovementHandler) Receipt(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == 0 {
		return unauthorized(c)
	}
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "INVALID_ID", "id inválido")
	}
	pdfBytes, filename, err := h.receipts.Download(c.UserContext(), tenantID, id)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(pdfBytes)
}
