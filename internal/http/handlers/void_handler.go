package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	applog "sarisari/internal/log"
	"sarisari/internal/services"
	"sarisari/internal/validate"
)

type VoidHandler struct {
	Void *services.VoidService
}

// List shows recent non-voided orders.
func (h *VoidHandler) List(c *fiber.Ctx) error {
	orders, err := h.Void.ListVoidable(time.Now())
	if err != nil {
		applog.Error(c, "void.list", err, nil)
		return c.Status(500).SendString("Could not load recent orders")
	}
	return render(c, "void_orders", fiber.Map{"Orders": orders, "WindowDays": h.Void.WindowDays})
}

// Lines shows one order's lines with product names and current stock.
func (h *VoidHandler) Lines(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(404).SendString("Order not found")
	}
	lines, err := h.Void.LoadLines(id)
	if err != nil {
		applog.Error(c, "void.lines", err, map[string]any{"order_id": id})
		return c.Status(404).SendString("Order not found")
	}
	return render(c, "void_order", fiber.Map{"OrderID": id, "Lines": lines})
}

// Submit voids the order. An already-voided order is a precondition failure
// (400, nothing re-applied); a partial restock is a 409 naming the lines that
// were not restored.
func (h *VoidHandler) Submit(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(404).SendString("Order not found")
	}
	if err := h.Void.Void(id); err != nil {
		if errors.Is(err, services.ErrAlreadyVoided) {
			return c.Status(400).SendString("Order is already voided")
		}
		var partial *services.PartialVoidError
		if errors.As(err, &partial) {
			applog.Error(c, "void.partial", err, map[string]any{
				"order_id": id,
				"restored": partial.Restored,
			})
			return c.Status(fiber.StatusConflict).SendString(
				"Order voided but stock not fully restored: " + partial.Error())
		}
		applog.Error(c, "void.fail", err, map[string]any{"order_id": id})
		return c.Status(500).SendString("Could not void the order")
	}
	applog.Audit(c, "void.success", map[string]any{"order_id": id})
	return c.Redirect("/void")
}
