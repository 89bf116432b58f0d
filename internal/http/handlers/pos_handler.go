package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "sarisari/internal/log"
	"sarisari/internal/services"
	"sarisari/internal/validate"
)

// POSHandler drives the cashier register: catalog browsing, the cart, and
// the checkout commit.
type POSHandler struct {
	Catalog  *services.CatalogService
	Checkout *services.CheckoutService
}

func (h *POSHandler) Register(c *fiber.Ctx) error {
	sid := ensureSID(c)
	category := c.Query("category")
	products, err := h.Catalog.List(category, c.Query("q"), 1, 50)
	if err != nil {
		applog.Error(c, "pos.catalog.load", err, nil)
		return c.Status(500).SendString("Could not load products")
	}
	categories, err := h.Catalog.Categories()
	if err != nil {
		applog.Error(c, "pos.categories.load", err, nil)
		return c.Status(500).SendString("Could not load products")
	}
	return render(c, "pos", fiber.Map{
		"Products":   products,
		"Categories": categories,
		"Category":   category,
		"Cart":       h.Checkout.Lines(sid),
		"Total":      h.Checkout.Total(sid),
		"Receipt":    c.Query("receipt"),
	})
}

func (h *POSHandler) CartAdd(c *fiber.Ctx) error {
	sid := ensureSID(c)
	productID, ok := validate.ID(c.FormValue("productId"))
	if !ok {
		return c.Status(400).SendString("missing productId")
	}
	qty, ok := validate.Qty(c.FormValue("qty"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "qty"})
		return c.Status(400).SendString("quantity must be at least 1")
	}
	if err := h.Checkout.AddToCart(sid, productID, qty); err != nil {
		if errors.Is(err, services.ErrBadQty) || errors.Is(err, services.ErrExceedsStock) {
			return c.Status(400).SendString(err.Error())
		}
		applog.Error(c, "pos.cart.add", err, map[string]any{"product": productID})
		return c.Status(500).SendString("Could not add item")
	}
	return c.Redirect("/pos")
}

func (h *POSHandler) CartRemove(c *fiber.Ctx) error {
	sid := ensureSID(c)
	productID, ok := validate.ID(c.FormValue("productId"))
	if !ok {
		return c.Status(400).SendString("missing productId")
	}
	h.Checkout.RemoveFromCart(sid, productID)
	return c.Redirect("/pos")
}

// CheckoutCommit runs the multi-record commit. A partial commit is surfaced
// as 409 with the failing step, distinct from clean validation failures.
func (h *POSHandler) CheckoutCommit(c *fiber.Ctx) error {
	sid := ensureSID(c)
	receipt, err := h.Checkout.Commit(sid)
	if err != nil {
		var partial *services.PartialCommitError
		if errors.As(err, &partial) {
			applog.Error(c, "pos.checkout.partial", err, map[string]any{
				"order_id": partial.OrderID,
				"step":     partial.Step,
				"intent":   partial.IntentID,
			})
			return c.Status(fiber.StatusConflict).SendString(
				"Transaction incomplete: " + partial.Error() + ". Flag for reconciliation.")
		}
		if errors.Is(err, services.ErrEmptyCart) || errors.Is(err, services.ErrCommitInFlight) {
			return c.Status(400).SendString(err.Error())
		}
		applog.Error(c, "pos.checkout.fail", err, nil)
		return c.Status(500).SendString("Could not complete the transaction")
	}

	applog.Audit(c, "pos.checkout", map[string]any{
		"order_id":     receipt.OrderID,
		"order_number": receipt.OrderNumber,
		"total":        receipt.Total.String(),
	})
	return c.Redirect("/pos?receipt=" + receipt.OrderNumber)
}
