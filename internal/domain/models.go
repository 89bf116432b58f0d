package domain

import "github.com/shopspring/decimal"

// Stock statuses. Derived from stock_quantity only through StockStatus;
// call sites must not invent their own strings.
const (
	StatusInStock    = "In Stock"
	StatusOutOfStock = "Out of Stock"
)

// Order statuses.
const (
	OrderCompleted = "Completed"
	OrderVoided    = "Voided"
)

// StockStatus maps a stock quantity to its display status.
// quantity > 0 <=> in stock.
func StockStatus(qty int) string {
	if qty > 0 {
		return StatusInStock
	}
	return StatusOutOfStock
}

type Product struct {
	ID          string          `db:"id"`
	Name        string          `db:"name"`
	Category    string          `db:"category"`
	UnitPrice   decimal.Decimal `db:"unit_price"`
	StockQty    int             `db:"stock_quantity"`
	Status      string          `db:"status"`
	ImagePath   string          `db:"image_path"`
	LastUpdated string          `db:"last_updated"`
}

type Order struct {
	ID          string          `db:"id"`
	OrderNumber string          `db:"order_number"`
	TotalAmount decimal.Decimal `db:"total_amount"`
	Status      string          `db:"status"`
	OrderDate   string          `db:"order_date"`
}

// OrderLine carries the unit price captured at sale time, independent of the
// product's current price.
type OrderLine struct {
	OrderID   string          `db:"order_id"`
	ProductID string          `db:"product_id"`
	Quantity  int             `db:"quantity"`
	UnitPrice decimal.Decimal `db:"unit_price"`
}
