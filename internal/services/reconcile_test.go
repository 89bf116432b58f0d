package services_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"sarisari/internal/domain"
	"sarisari/internal/repos"
	"sarisari/internal/services"
)

func decimalFrom(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	return decimal.RequireFromString(s)
}

func TestRepair_StockStepRollsBack(t *testing.T) {
	db := memdb(t)
	prodRepo := repos.NewProductRepo(db)
	orderRepo := repos.NewOrderRepo(db)
	intentRepo := repos.NewIntentRepo(db)
	svc := services.NewReconcileService(intentRepo, orderRepo, prodRepo, repos.NewSalesRepo(db))

	// Manufacture a commit that died mid stock step: header and lines exist,
	// p1 was decremented, p2 was not.
	orderID, _, err := orderRepo.Create(decimalFrom(t, "25"))
	require.NoError(t, err)
	require.NoError(t, orderRepo.InsertLines([]domain.OrderLine{
		{OrderID: orderID, ProductID: "p1", Quantity: 2, UnitPrice: decimalFrom(t, "10")},
		{OrderID: orderID, ProductID: "p2", Quantity: 1, UnitPrice: decimalFrom(t, "5")},
	}))
	require.NoError(t, prodRepo.DecrementStock("p1", 2))

	intentID, err := intentRepo.Create(orderID)
	require.NoError(t, err)
	require.NoError(t, intentRepo.SetStep(intentID, repos.StepStock))
	require.NoError(t, intentRepo.SetDecremented(intentID, []string{"p1"}))
	require.NoError(t, intentRepo.SetState(intentID, repos.IntentFailed))

	found, err := svc.FindPartial()
	require.NoError(t, err)
	require.Len(t, found, 1)

	report, err := svc.Repair(intentID)
	require.NoError(t, err)
	require.Equal(t, "stock restored, order voided", report.Action)

	// Only the decremented product is restored; p2 stays untouched.
	p1, _ := prodRepo.Get("p1")
	require.Equal(t, 5, p1.StockQty)
	p2, _ := prodRepo.Get("p2")
	require.Equal(t, 1, p2.StockQty)

	o, err := orderRepo.Get(orderID)
	require.NoError(t, err)
	require.Equal(t, domain.OrderVoided, o.Status)

	intent, err := intentRepo.Get(intentID)
	require.NoError(t, err)
	require.Equal(t, repos.IntentRepaired, intent.State)

	// Nothing left to find.
	found, err = svc.FindPartial()
	require.NoError(t, err)
	require.Empty(t, found)
}

func TestRepair_AfterStockConflictRestoresOnlyTakenStock(t *testing.T) {
	db := memdb(t)
	checkout := newCheckout(db)
	prodRepo := repos.NewProductRepo(db)
	orderRepo := repos.NewOrderRepo(db)
	intentRepo := repos.NewIntentRepo(db)
	svc := services.NewReconcileService(intentRepo, orderRepo, prodRepo, repos.NewSalesRepo(db))
	sid := "s1"

	require.NoError(t, checkout.AddToCart(sid, "p1", 2))
	require.NoError(t, checkout.AddToCart(sid, "p2", 1))

	// p2 sells through on another register before the commit lands.
	require.NoError(t, prodRepo.DecrementStock("p2", 1))

	_, err := checkout.Commit(sid)
	var partial *services.PartialCommitError
	require.ErrorAs(t, err, &partial)
	require.Equal(t, []string{"p1"}, partial.Decremented)

	// The durable record matches what was actually taken.
	intent, err := intentRepo.Get(partial.IntentID)
	require.NoError(t, err)
	require.Equal(t, []string{"p1"}, intent.Decremented())

	report, err := svc.Repair(partial.IntentID)
	require.NoError(t, err)
	require.Equal(t, "stock restored, order voided", report.Action)

	// p1 is put back in full; p2 was never taken and must not be inflated.
	p1, _ := prodRepo.Get("p1")
	require.Equal(t, 5, p1.StockQty)
	p2, _ := prodRepo.Get("p2")
	require.Equal(t, 0, p2.StockQty)

	o, err := orderRepo.Get(partial.OrderID)
	require.NoError(t, err)
	require.Equal(t, domain.OrderVoided, o.Status)
}

func TestRepair_LinesStepDeletesOrphanHeader(t *testing.T) {
	db := memdb(t)
	orderRepo := repos.NewOrderRepo(db)
	intentRepo := repos.NewIntentRepo(db)
	svc := services.NewReconcileService(intentRepo, orderRepo, repos.NewProductRepo(db), repos.NewSalesRepo(db))

	orderID, _, err := orderRepo.Create(decimalFrom(t, "10"))
	require.NoError(t, err)

	intentID, err := intentRepo.Create(orderID)
	require.NoError(t, err)
	require.NoError(t, intentRepo.SetStep(intentID, repos.StepLines))
	require.NoError(t, intentRepo.SetState(intentID, repos.IntentFailed))

	report, err := svc.Repair(intentID)
	require.NoError(t, err)
	require.Equal(t, "orphan order header deleted", report.Action)

	_, err = orderRepo.Get(orderID)
	require.Error(t, err, "orphan header should be gone")
}

func TestRepair_SalesStepRollsForward(t *testing.T) {
	db := memdb(t)
	orderRepo := repos.NewOrderRepo(db)
	intentRepo := repos.NewIntentRepo(db)
	svc := services.NewReconcileService(intentRepo, orderRepo, repos.NewProductRepo(db), repos.NewSalesRepo(db))

	orderID, _, err := orderRepo.Create(decimalFrom(t, "40"))
	require.NoError(t, err)

	intentID, err := intentRepo.Create(orderID)
	require.NoError(t, err)
	require.NoError(t, intentRepo.SetStep(intentID, repos.StepSales))
	require.NoError(t, intentRepo.SetState(intentID, repos.IntentFailed))

	report, err := svc.Repair(intentID)
	require.NoError(t, err)
	require.Equal(t, "sales record completed", report.Action)

	var salesCount int
	require.NoError(t, db.Get(&salesCount, `SELECT COUNT(*) FROM sales WHERE order_id = ?`, orderID))
	require.Equal(t, 1, salesCount)

	intent, err := intentRepo.Get(intentID)
	require.NoError(t, err)
	require.Equal(t, repos.IntentCommitted, intent.State)
}

func TestRepair_ResolvedIntentRejected(t *testing.T) {
	db := memdb(t)
	intentRepo := repos.NewIntentRepo(db)
	svc := services.NewReconcileService(intentRepo, repos.NewOrderRepo(db), repos.NewProductRepo(db), repos.NewSalesRepo(db))

	intentID, err := intentRepo.Create("some-order")
	require.NoError(t, err)
	require.NoError(t, intentRepo.SetState(intentID, repos.IntentCommitted))

	_, err = svc.Repair(intentID)
	require.Error(t, err)
}
