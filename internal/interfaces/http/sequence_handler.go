package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Movimientos-api/internal/application/inventory"
)

// SequenceHandler expone el asignador de consecutivos a otros módulos del comercio.
type SequenceHandler struct {
	alloc *inventory.SequenceAllocator
}

// NewSequenceHandler construye el handler.
func NewSequenceHandler(alloc *inventory.SequenceAllocator) *SequenceHandler {
	return &SequenceHandler{alloc: alloc}
}

type nextSequenceRequest struct {
	Step int64 `json:"step"`
}

// Next reserva el siguiente valor del scope. Sin cuerpo, step = 1.
func (h *SequenceHandler) Next(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == 0 {
		return unauthorized(c)
	}
	in := nextSequenceRequest{Step: 1}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badRequest(c, "INVALID_BODY", "cuerpo inválido")
		}
	}
	scope := c.Params("scope")
	v, err := h.alloc.Allocate(c.UserContext(), tenantID, scope, in.Step)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"scope": scope, "value": v})
}
