package repos

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"sarisari/internal/domain"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

// LineView is an order line joined with the product's display name and
// current stock, as shown on the void screen.
type LineView struct {
	OrderID     string          `db:"order_id"`
	ProductID   string          `db:"product_id"`
	ProductName string          `db:"product_name"`
	Quantity    int             `db:"quantity"`
	UnitPrice   decimal.Decimal `db:"unit_price"`
	CurrentQty  int             `db:"current_qty"`
}

// Create inserts a new order header with status Completed and returns the
// generated id and human order number.
func (r *OrderRepo) Create(total decimal.Decimal) (id, number string, err error) {
	id = uuid.NewString()
	number = newOrderNumber(id)
	_, err = r.db.Exec(`
	  INSERT INTO orders(id, order_number, total_amount, status, order_date)
	  VALUES(?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, id, number, total, domain.OrderCompleted)
	if err != nil {
		return "", "", err
	}
	return id, number, nil
}

func newOrderNumber(id string) string {
	short := strings.ToUpper(strings.ReplaceAll(id, "-", ""))[:6]
	return fmt.Sprintf("ORD-%s-%s", time.Now().UTC().Format("20060102"), short)
}

// InsertLines batch-inserts the line items for one order.
func (r *OrderRepo) InsertLines(lines []domain.OrderLine) error {
	if len(lines) == 0 {
		return nil
	}
	_, err := r.db.NamedExec(`
	  INSERT INTO order_lines(order_id, product_id, quantity, unit_price)
	  VALUES(:order_id, :product_id, :quantity, :unit_price)
	`, lines)
	return err
}

func (r *OrderRepo) Get(id string) (domain.Order, error) {
	var o domain.Order
	err := r.db.Get(&o, `
	  SELECT id, order_number, total_amount, status, order_date
	  FROM orders WHERE id = ?
	`, id)
	return o, err
}

func (r *OrderRepo) Lines(orderID string) ([]domain.OrderLine, error) {
	var out []domain.OrderLine
	err := r.db.Select(&out, `
	  SELECT order_id, product_id, quantity, unit_price
	  FROM order_lines WHERE order_id = ?
	`, orderID)
	return out, err
}

// LinesWithProducts joins lines with current product name and stock. A line
// whose product was deleted still comes back, with an empty name the caller
// turns into a placeholder.
func (r *OrderRepo) LinesWithProducts(orderID string) ([]LineView, error) {
	var out []LineView
	err := r.db.Select(&out, `
	  SELECT ol.order_id, ol.product_id,
	         COALESCE(p.name, '')          AS product_name,
	         ol.quantity, ol.unit_price,
	         COALESCE(p.stock_quantity, 0) AS current_qty
	  FROM order_lines ol
	  LEFT JOIN products p ON p.id = ol.product_id
	  WHERE ol.order_id = ?
	`, orderID)
	return out, err
}

// ListVoidable returns non-voided orders whose date falls within the trailing
// window, newest first.
func (r *OrderRepo) ListVoidable(since time.Time) ([]domain.Order, error) {
	var out []domain.Order
	err := r.db.Select(&out, `
	  SELECT id, order_number, total_amount, status, order_date
	  FROM orders
	  WHERE status != ? AND datetime(order_date) >= datetime(?)
	  ORDER BY datetime(order_date) DESC
	`, domain.OrderVoided, since.UTC().Format("2006-01-02 15:04:05"))
	return out, err
}

// MarkVoided transitions Completed -> Voided. The conditional WHERE makes the
// transition a precondition check: zero rows affected means the order was
// already voided (or never existed) and the caller must not restock.
func (r *OrderRepo) MarkVoided(id string) (bool, error) {
	res, err := r.db.Exec(`
	  UPDATE orders SET status = ? WHERE id = ? AND status = ?
	`, domain.OrderVoided, id, domain.OrderCompleted)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// ListCompletedBetween returns completed orders inside [from, to], for the
// dashboard aggregations. Voided orders never qualify.
func (r *OrderRepo) ListCompletedBetween(from, to time.Time) ([]domain.Order, error) {
	var out []domain.Order
	err := r.db.Select(&out, `
	  SELECT id, order_number, total_amount, status, order_date
	  FROM orders
	  WHERE status = ?
	    AND datetime(order_date) >= datetime(?)
	    AND datetime(order_date) <= datetime(?)
	  ORDER BY datetime(order_date)
	`, domain.OrderCompleted,
		from.UTC().Format("2006-01-02 15:04:05"),
		to.UTC().Format("2006-01-02 15:04:05"))
	return out, err
}

// LinesForOrders fetches all lines belonging to the given order set.
func (r *OrderRepo) LinesForOrders(orderIDs []string) ([]domain.OrderLine, error) {
	if len(orderIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`
	  SELECT order_id, product_id, quantity, unit_price
	  FROM order_lines WHERE order_id IN (?)
	  ORDER BY order_id, product_id
	`, orderIDs)
	if err != nil {
		return nil, err
	}
	var out []domain.OrderLine
	err = r.db.Select(&out, query, args...)
	return out, err
}

// DeleteHeader removes an orphan order header during reconciliation. Only
// valid for orders whose lines were never written.
func (r *OrderRepo) DeleteHeader(id string) error {
	_, err := r.db.Exec(`DELETE FROM orders WHERE id = ?`, id)
	return err
}
