package handlers_test

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	html "github.com/gofiber/template/html/v2"

	"sarisari/internal/domain"
	"sarisari/internal/http/handlers"
	"sarisari/internal/repos"
	"sarisari/internal/services"
)

func TestHome_InvalidQueryKeepsPageLocals(t *testing.T) {
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	prodRepo := repos.NewProductRepo(db)
	h := &handlers.StorefrontHandler{
		Catalog: services.NewCatalogService(prodRepo),
		Reports: services.NewReportService(repos.NewOrderRepo(db), prodRepo),
	}

	engine := html.New("../../../web/templates", ".html")
	app := fiber.New(fiber.Config{Views: engine})
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("CSRFToken", "tok-f6-check")
		c.Locals("user", &domain.User{Name: "Cash", Role: domain.RoleCashier})
		return c.Next()
	})
	app.Get("/", h.Home)

	resp, err := app.Test(httptest.NewRequest("GET", "/?q=%3Cscript%3E", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("invalid query: want 400, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "Enter a valid keyword") {
		t.Fatalf("error message missing from page: %q", body)
	}
	if !strings.Contains(string(body), "tok-f6-check") {
		t.Fatal("page rendered without the request locals")
	}
}
