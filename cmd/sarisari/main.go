package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
	"github.com/spf13/cobra"

	"sarisari/internal/config"
	"sarisari/internal/domain"
	"sarisari/internal/http/handlers"
	applog "sarisari/internal/log"
	"sarisari/internal/repos"
	"sarisari/internal/services"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "sarisari",
		Short:         "Point-of-sale and inventory service for a single retail store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newReconcileCmd(), newSeedCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the storefront, register, and dashboard server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			// Optional file logging alongside stdout.
			if cfg.LogFile != "" {
				f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
				if err != nil {
					log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
				} else {
					log.SetOutput(io.MultiWriter(os.Stdout, f))
				}
			}

			db, err := repos.OpenDB(cfg.DBDSN)
			if err != nil {
				return err
			}

			userRepo := repos.NewUserRepo(db)
			authSvc := &services.AuthService{Users: userRepo}
			authH := &handlers.AuthHandler{Auth: authSvc}

			engine := html.New("./web/templates", ".html")

			app := fiber.New(fiber.Config{
				Views: engine,
				ErrorHandler: func(c *fiber.Ctx, err error) error {
					applog.Error(c, "server.error", err, nil)
					return c.Status(fiber.StatusInternalServerError).
						SendString("Something went wrong. Please try again.")
				},
			})
			app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

			// ---------- Middlewares ----------
			app.Use(requestid.New())
			app.Use(logger.New())
			app.Use(helmet.New())
			// Attach user to context if logged in (for templates/headers)
			app.Use(func(c *fiber.Ctx) error {
				if sid := c.Cookies("sid"); sid != "" {
					if u, err := authSvc.CurrentUser(sid); err == nil && u != nil {
						c.Locals("user", u)
					}
				}
				return c.Next()
			})
			app.Use(limiter.New(limiter.Config{
				Max:        120,
				Expiration: time.Minute,
				Next: func(c *fiber.Ctx) bool {
					return strings.HasPrefix(string(c.Request().URI().Path()), "/static/")
				},
			}))
			app.Use(csrf.New(csrf.Config{
				KeyLookup:      "form:csrf",
				CookieName:     "csrf_",
				CookieSameSite: "Lax",
				CookieSecure:   false, // set true behind HTTPS
				ErrorHandler: func(c *fiber.Ctx, err error) error {
					applog.Security(c, "csrf.fail", nil)
					return c.Status(fiber.StatusForbidden).
						SendString("Security check failed. Please refresh and try again.")
				},
			}))
			app.Use(func(c *fiber.Ctx) error {
				if tok := c.Locals("csrf"); tok != nil {
					c.Locals("CSRFToken", tok.(string))
				}
				return c.Next()
			})

			app.Static("/static", "./web/static")

			deps := handlers.NewDeps(db, cfg, authSvc)

			// Public storefront
			app.Get("/", deps.StorefrontHandler.Home)

			// Auth (login throttled)
			app.Get("/login", authH.LoginForm)
			app.Post("/login", limiter.New(limiter.Config{
				Max:        5,
				Expiration: 10 * time.Minute,
				LimitReached: func(c *fiber.Ctx) error {
					applog.Security(c, "rate.login.hit", nil)
					return c.Status(fiber.StatusTooManyRequests).
						SendString("Too many attempts. Please try again later.")
				},
			}), authH.Login)
			app.Post("/logout", authH.Logout)

			// Register (cashiers and managers)
			pos := app.Group("/pos", handlers.RequireRole(authSvc, domain.RoleCashier))
			pos.Get("/", deps.POSHandler.Register)
			pos.Post("/cart", deps.POSHandler.CartAdd)
			pos.Post("/cart/remove", deps.POSHandler.CartRemove)
			pos.Post("/checkout", deps.POSHandler.CheckoutCommit)

			vd := app.Group("/void", handlers.RequireRole(authSvc, domain.RoleCashier))
			vd.Get("/", deps.VoidHandler.List)
			vd.Get("/:id", deps.VoidHandler.Lines)
			vd.Post("/:id", deps.VoidHandler.Submit)

			// Manager screens
			app.Get("/dashboard", handlers.RequireRole(authSvc, domain.RoleManager), deps.DashboardHandler.Show)

			inv := app.Group("/inventory", handlers.RequireRole(authSvc, domain.RoleManager))
			inv.Get("/", deps.InventoryHandler.Page)
			inv.Post("/", deps.InventoryHandler.Create)
			inv.Post("/:id", deps.InventoryHandler.Update)
			inv.Post("/:id/delete", deps.InventoryHandler.Delete)
			inv.Post("/:id/stock", deps.InventoryHandler.AddStock)

			// Health & 404
			app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
			app.Use(func(c *fiber.Ctx) error {
				return c.Status(404).SendString("Page not found")
			})

			return app.Listen(":" + cfg.Port)
		},
	}
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the database schema and demo data without serving",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			// OpenDB ensures the schema and seeds products and the two
			// operator accounts when missing.
			db, err := repos.OpenDB(cfg.DBDSN)
			if err != nil {
				return err
			}
			var products, users int
			if err := db.Get(&products, `SELECT COUNT(*) FROM products`); err != nil {
				return err
			}
			if err := db.Get(&users, `SELECT COUNT(*) FROM users`); err != nil {
				return err
			}
			fmt.Printf("%s ready: %d products, %d users\n", cfg.DBDSN, products, users)
			return nil
		},
	}
}

func newReconcileCmd() *cobra.Command {
	var repair bool
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "List partial commits; optionally repair them",
		Long: `Scan the commit-intent log for checkouts that failed partway
(order header without lines, stock not decremented, missing sales record)
and print them. With --repair each one is rolled back or completed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			db, err := repos.OpenDB(cfg.DBDSN)
			if err != nil {
				return err
			}

			svc := services.NewReconcileService(
				repos.NewIntentRepo(db),
				repos.NewOrderRepo(db),
				repos.NewProductRepo(db),
				repos.NewSalesRepo(db),
			)

			intents, err := svc.FindPartial()
			if err != nil {
				return err
			}
			if len(intents) == 0 {
				fmt.Println("no partial commits found")
				return nil
			}
			for _, in := range intents {
				fmt.Printf("%s  order=%s  state=%s  step=%s  created=%s\n",
					in.ID, in.OrderID, in.State, in.Step, in.CreatedAt)
				if !repair {
					continue
				}
				report, err := svc.Repair(in.ID)
				if err != nil {
					fmt.Printf("  repair failed: %v\n", err)
					continue
				}
				fmt.Printf("  repaired: %s\n", report.Action)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&repair, "repair", false, "repair the partial commits found")
	return cmd
}
