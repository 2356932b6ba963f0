package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Movimientos-api/internal/application/inventory"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Movements *inventory.MovementUseCase
	Receipts  *inventory.ReceiptUseCase
	Sequences *inventory.SequenceAllocator
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Libro de movimentações
	movements := protected.Group("/movements")
	h := NewMovementHandler(deps.Movements, deps.Receipts)
	closers := RequireRole(RoleAdmin, RoleBodeguero)
	movements.Post("/", h.Open)
	movements.Get("/", h.List)
	movements.Get("/link/:link", h.GetByLink)
	movements.Get("/:id", h.Get)
	movements.Get("/:id/cart", h.GetCart)
	movements.Post("/:id/items", h.AddItem)
	movements.Delete("/:id/items/:itemId", h.RemoveItem)
	movements.Post("/:id/finalize", closers, h.Finalize)
	movements.Post("/:id/cancel", closers, h.Cancel)
	movements.Get("/:id/stock-entries", h.StockEntries)
	movements.Get("/:id/receipt", h.Receipt)

	// Consecutivos por scope
	sequences := protected.Group("/sequences")
	sequenceHandler := NewSequenceHandler(deps.Sequences)
	sequences.Post("/:scope/next", RequireRole(RoleAdmin), sequenceHandler.Next)
}
