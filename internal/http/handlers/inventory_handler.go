package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	applog "sarisari/internal/log"
	"sarisari/internal/services"
	"sarisari/internal/validate"
)

type InventoryHandler struct {
	Catalog *services.CatalogService
	Inv     *services.InventoryService
}

func (h *InventoryHandler) Page(c *fiber.Ctx) error {
	products, err := h.Catalog.List(c.Query("category"), c.Query("q"), 1, 100)
	if err != nil {
		applog.Error(c, "inventory.list", err, nil)
		return c.Status(500).SendString("Could not load inventory")
	}
	categories, _ := h.Catalog.Categories()
	return render(c, "inventory", fiber.Map{"Products": products, "Categories": categories})
}

func (h *InventoryHandler) Create(c *fiber.Ctx) error {
	name, okName := validate.Name(c.FormValue("name"))
	category, okCat := validate.Category(c.FormValue("category"))
	price, okPrice := validate.Price(c.FormValue("unit_price"))
	stock, err := strconv.Atoi(c.FormValue("stock_quantity"))
	if !okName || !okCat || !okPrice || err != nil || stock < 0 {
		applog.Security(c, "validation.fail", map[string]any{"form": "inventory.create"})
		return c.Status(400).SendString("invalid product input")
	}
	id, err := h.Inv.Create(name, category, price, stock, c.FormValue("image_path"))
	if err != nil {
		applog.Error(c, "inventory.create", err, map[string]any{"name": name})
		return c.Status(400).SendString("could not save product")
	}
	applog.Audit(c, "inventory.create", map[string]any{"product": id, "stock": stock})
	return c.Redirect("/inventory")
}

func (h *InventoryHandler) Update(c *fiber.Ctx) error {
	id, okID := validate.ID(c.Params("id"))
	name, okName := validate.Name(c.FormValue("name"))
	category, okCat := validate.Category(c.FormValue("category"))
	price, okPrice := validate.Price(c.FormValue("unit_price"))
	if !okID || !okName || !okCat || !okPrice {
		return c.Status(400).SendString("invalid product input")
	}
	if err := h.Inv.Update(id, name, category, price); err != nil {
		applog.Error(c, "inventory.update", err, map[string]any{"product": id})
		return c.Status(400).SendString("could not update product")
	}
	applog.Audit(c, "inventory.update", map[string]any{"product": id})
	return c.Redirect("/inventory")
}

func (h *InventoryHandler) Delete(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(400).SendString("missing id")
	}
	if err := h.Inv.Delete(id); err != nil {
		applog.Error(c, "inventory.delete", err, map[string]any{"product": id})
		return c.Status(400).SendString("could not delete product")
	}
	applog.Audit(c, "inventory.delete", map[string]any{"product": id})
	return c.Redirect("/inventory")
}

func (h *InventoryHandler) AddStock(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(400).SendString("missing id")
	}
	by, ok := validate.Qty(c.FormValue("qty"))
	if !ok {
		return c.Status(400).SendString("quantity must be at least 1")
	}
	if err := h.Inv.AddStock(id, by); err != nil {
		if errors.Is(err, services.ErrBadQty) {
			return c.Status(400).SendString(err.Error())
		}
		applog.Error(c, "inventory.addstock", err, map[string]any{"product": id, "qty": by})
		return c.Status(400).SendString("could not update stock")
	}
	applog.Audit(c, "inventory.addstock", map[string]any{"product": id, "qty": by})
	return c.Redirect("/inventory")
}
