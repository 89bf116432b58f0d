package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"sarisari/internal/domain"
	applog "sarisari/internal/log"
	"sarisari/internal/services"
	"sarisari/internal/validate"
)

// StorefrontHandler serves the public catalog and the top-sellers widget.
type StorefrontHandler struct {
	Catalog *services.CatalogService
	Reports *services.ReportService
}

func (h *StorefrontHandler) Home(c *fiber.Ctx) error {
	q := ""
	if raw := c.Query("q"); raw != "" {
		var ok bool
		if q, ok = validate.Q(raw); !ok {
			applog.Security(c, "validation.fail", map[string]any{"field": "q", "value": raw})
			c.Status(400)
			return render(c, "home", fiber.Map{
				"Products": []domain.Product{}, "Q": "", "Category": "",
				"Err": "Enter a valid keyword (letters/numbers only)",
			})
		}
	}
	products, err := h.Catalog.List(c.Query("category"), q, 1, 24)
	if err != nil {
		applog.Error(c, "storefront.list", err, nil)
		return c.Status(500).SendString("Could not load the catalog")
	}
	categories, _ := h.Catalog.Categories()

	// Top three sellers over the trailing month.
	top, err := h.Reports.TopSellersSince(30, 3, time.Now())
	if err != nil {
		applog.Error(c, "storefront.topsellers", err, nil)
		top = nil
	}

	return render(c, "home", fiber.Map{
		"Products":   products,
		"Categories": categories,
		"Category":   c.Query("category"),
		"Q":          q,
		"TopSellers": top,
	})
}
