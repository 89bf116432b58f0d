package repos_test

import (
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"sarisari/internal/domain"
	"sarisari/internal/repos"
)

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	db.MustExec(`INSERT INTO products(id,name,category,unit_price,stock_quantity,status) VALUES
	  ('p1','Test Pork','Meats',10.00,3,'In Stock')`)
	return db
}

func TestDecrementStock_ConditionalUpdate(t *testing.T) {
	db := memdb(t)
	r := repos.NewProductRepo(db)

	if err := r.DecrementStock("p1", 2); err != nil {
		t.Fatal(err)
	}
	p, err := r.Get("p1")
	if err != nil {
		t.Fatal(err)
	}
	if p.StockQty != 1 || p.Status != domain.StatusInStock {
		t.Fatalf("want qty=1 in stock, got %d %q", p.StockQty, p.Status)
	}

	// Asking for more than remains matches no row and changes nothing.
	err = r.DecrementStock("p1", 2)
	var conflict *repos.StockConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("want StockConflictError, got %v", err)
	}
	p, _ = r.Get("p1")
	if p.StockQty != 1 {
		t.Fatalf("conflict must not change stock, got %d", p.StockQty)
	}

	// Draining the remainder flips the derived status.
	if err := r.DecrementStock("p1", 1); err != nil {
		t.Fatal(err)
	}
	p, _ = r.Get("p1")
	if p.StockQty != 0 || p.Status != domain.StatusOutOfStock {
		t.Fatalf("want qty=0 out of stock, got %d %q", p.StockQty, p.Status)
	}
}

func TestAddStock_RevivesStatus(t *testing.T) {
	db := memdb(t)
	r := repos.NewProductRepo(db)

	if err := r.DecrementStock("p1", 3); err != nil {
		t.Fatal(err)
	}
	if err := r.AddStock("p1", 2); err != nil {
		t.Fatal(err)
	}
	p, err := r.Get("p1")
	if err != nil {
		t.Fatal(err)
	}
	if p.StockQty != 2 || p.Status != domain.StatusInStock {
		t.Fatalf("want qty=2 in stock, got %d %q", p.StockQty, p.Status)
	}

	if err := r.AddStock("missing", 1); err == nil {
		t.Fatal("want error for unknown product")
	}
}

func TestListCompletedBetween_ExcludesVoided(t *testing.T) {
	db := memdb(t)
	orders := repos.NewOrderRepo(db)

	id1, _, err := orders.Create(decimal.RequireFromString("10"))
	if err != nil {
		t.Fatal(err)
	}
	id2, _, err := orders.Create(decimal.RequireFromString("20"))
	if err != nil {
		t.Fatal(err)
	}
	if ok, err := orders.MarkVoided(id2); err != nil || !ok {
		t.Fatalf("void failed: ok=%v err=%v", ok, err)
	}

	got, err := orders.ListCompletedBetween(time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != id1 {
		t.Fatalf("want only the completed order %s, got %+v", id1, got)
	}
}

func TestMarkVoided_PreconditionOnSecondCall(t *testing.T) {
	db := memdb(t)
	orders := repos.NewOrderRepo(db)

	id, _, err := orders.Create(decimal.RequireFromString("10"))
	if err != nil {
		t.Fatal(err)
	}
	ok, err := orders.MarkVoided(id)
	if err != nil || !ok {
		t.Fatalf("first void: ok=%v err=%v", ok, err)
	}
	ok, err = orders.MarkVoided(id)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("second void must not match any row")
	}
}
