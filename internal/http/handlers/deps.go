package handlers

import (
	"github.com/jmoiron/sqlx"

	"sarisari/internal/config"
	"sarisari/internal/repos"
	"sarisari/internal/services"
)

type Deps struct {
	StorefrontHandler *StorefrontHandler
	POSHandler        *POSHandler
	VoidHandler       *VoidHandler
	DashboardHandler  *DashboardHandler
	InventoryHandler  *InventoryHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, auth *services.AuthService) *Deps {
	prodRepo := repos.NewProductRepo(db)
	orderRepo := repos.NewOrderRepo(db)
	salesRepo := repos.NewSalesRepo(db)
	intentRepo := repos.NewIntentRepo(db)

	catalogSvc := services.NewCatalogService(prodRepo)
	checkoutSvc := services.NewCheckoutService(prodRepo, orderRepo, salesRepo, intentRepo)
	voidSvc := services.NewVoidService(orderRepo, prodRepo, salesRepo, cfg.VoidWindowDays)
	reportSvc := services.NewReportService(orderRepo, prodRepo)
	invSvc := services.NewInventoryService(prodRepo)

	return &Deps{
		StorefrontHandler: &StorefrontHandler{Catalog: catalogSvc, Reports: reportSvc},
		POSHandler:        &POSHandler{Catalog: catalogSvc, Checkout: checkoutSvc},
		VoidHandler:       &VoidHandler{Void: voidSvc},
		DashboardHandler:  &DashboardHandler{Reports: reportSvc},
		InventoryHandler:  &InventoryHandler{Catalog: catalogSvc, Inv: invSvc},
	}
}
