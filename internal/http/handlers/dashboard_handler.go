package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	applog "sarisari/internal/log"
	"sarisari/internal/services"
)

type DashboardHandler struct {
	Reports *services.ReportService
}

// Show renders the sales dashboard for the selected granularity (day, week,
// month, year; defaults to month).
func (h *DashboardHandler) Show(c *fiber.Ctx) error {
	g := services.ParseGranularity(c.Query("range"))
	data, err := h.Reports.Dashboard(g, time.Now())
	if err != nil {
		applog.Error(c, "dashboard.load", err, map[string]any{"range": string(g)})
		return c.Status(500).SendString("Could not load the dashboard")
	}
	return render(c, "dashboard", fiber.Map{
		"Range":   string(g),
		"Trend":   data.Trend,
		"Top":     data.Top,
		"Summary": data.Summary,
	})
}
