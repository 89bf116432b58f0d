package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"sarisari/internal/domain"
	"sarisari/internal/http/handlers"
	"sarisari/internal/repos"
	"sarisari/internal/services"
)

func TestAllowedPredicate(t *testing.T) {
	manager := &domain.User{ID: "m", Role: domain.RoleManager}
	cashier := &domain.User{ID: "c", Role: domain.RoleCashier}

	cases := []struct {
		name string
		user *domain.User
		role string
		want bool
	}{
		{"no session denies", nil, domain.RoleCashier, false},
		{"role match allows", cashier, domain.RoleCashier, true},
		{"cashier denied manager screens", cashier, domain.RoleManager, false},
		{"manager passes manager gate", manager, domain.RoleManager, true},
		{"manager passes cashier gate", manager, domain.RoleCashier, true},
	}
	for _, tc := range cases {
		if got := handlers.Allowed(tc.user, tc.role); got != tc.want {
			t.Errorf("%s: Allowed=%v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestRequireRoleMiddleware(t *testing.T) {
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	userRepo := repos.NewUserRepo(db)
	authSvc := &services.AuthService{Users: userRepo}

	// Bind sessions to the seeded operator accounts.
	if err := userRepo.BindSession("sid-cashier", "u-cashier"); err != nil {
		t.Fatal(err)
	}
	if err := userRepo.BindSession("sid-manager", "u-manager"); err != nil {
		t.Fatal(err)
	}

	app := fiber.New()
	app.Get("/pos", handlers.RequireRole(authSvc, domain.RoleCashier), func(c *fiber.Ctx) error {
		return c.SendString("register")
	})
	app.Get("/dashboard", handlers.RequireRole(authSvc, domain.RoleManager), func(c *fiber.Ctx) error {
		return c.SendString("dashboard")
	})

	get := func(path, sid string) *http.Response {
		req := httptest.NewRequest("GET", path, nil)
		if sid != "" {
			req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
		}
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("request %s: %v", path, err)
		}
		return resp
	}

	// No session redirects to login.
	if resp := get("/pos", ""); resp.StatusCode != fiber.StatusFound {
		t.Fatalf("anon: want 302, got %d", resp.StatusCode)
	}

	// Cashier reaches the register but not the dashboard.
	if resp := get("/pos", "sid-cashier"); resp.StatusCode != fiber.StatusOK {
		t.Fatalf("cashier /pos: want 200, got %d", resp.StatusCode)
	}
	if resp := get("/dashboard", "sid-cashier"); resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("cashier /dashboard: want 403, got %d", resp.StatusCode)
	}

	// Manager reaches both.
	if resp := get("/dashboard", "sid-manager"); resp.StatusCode != fiber.StatusOK {
		t.Fatalf("manager /dashboard: want 200, got %d", resp.StatusCode)
	}
	if resp := get("/pos", "sid-manager"); resp.StatusCode != fiber.StatusOK {
		t.Fatalf("manager /pos: want 200, got %d", resp.StatusCode)
	}
}
