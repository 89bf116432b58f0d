package repos

import (
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// SalesRepo maintains the derived per-order sales record. It is written at
// checkout and removed best-effort at void; a missing row is never an error.
type SalesRepo struct{ db *sqlx.DB }

func NewSalesRepo(db *sqlx.DB) *SalesRepo { return &SalesRepo{db: db} }

func (r *SalesRepo) Insert(orderID string, amount decimal.Decimal) error {
	_, err := r.db.Exec(`
	  INSERT INTO sales(order_id, amount, sale_date)
	  VALUES(?, ?, CURRENT_TIMESTAMP)
	  ON CONFLICT(order_id) DO NOTHING
	`, orderID, amount)
	return err
}

// DeleteByOrder removes the sales record for an order if one exists.
func (r *SalesRepo) DeleteByOrder(orderID string) error {
	_, err := r.db.Exec(`DELETE FROM sales WHERE order_id = ?`, orderID)
	return err
}
