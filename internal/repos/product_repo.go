package repos

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"sarisari/internal/domain"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

// StockConflictError is returned when a conditional stock decrement matches
// no row: the product is unknown or has fewer units than requested.
type StockConflictError struct {
	ProductID string
	Qty       int
}

func (e *StockConflictError) Error() string {
	return fmt.Sprintf("insufficient stock for %s (need %d)", e.ProductID, e.Qty)
}

func (r *ProductRepo) Get(id string) (domain.Product, error) {
	var p domain.Product
	err := r.db.Get(&p, `
	  SELECT id, name, category, unit_price, stock_quantity, status, image_path,
	         COALESCE(last_updated,'') AS last_updated
	  FROM products
	  WHERE id = ?
	`, id)
	return p, err
}

func (r *ProductRepo) List(category, nameQuery string, limit, offset int) ([]domain.Product, error) {
	where := `1=1`
	args := []any{}
	if category != "" {
		where += ` AND category = ?`
		args = append(args, category)
	}
	if nameQuery != "" {
		where += ` AND LOWER(name) LIKE ?`
		args = append(args, "%"+nameQuery+"%")
	}
	sql := `
	  SELECT id, name, category, unit_price, stock_quantity, status, image_path,
	         COALESCE(last_updated,'') AS last_updated
	  FROM products
	  WHERE ` + where + `
	  ORDER BY name
	  LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	var out []domain.Product
	err := r.db.Select(&out, sql, args...)
	return out, err
}

func (r *ProductRepo) Categories() ([]string, error) {
	var out []string
	err := r.db.Select(&out, `SELECT DISTINCT category FROM products ORDER BY category`)
	return out, err
}

// NamesByID resolves display names for a set of products. Missing ids simply
// have no entry; callers degrade to a placeholder label.
func (r *ProductRepo) NamesByID(ids []string) (map[string]string, error) {
	out := map[string]string{}
	if len(ids) == 0 {
		return out, nil
	}
	query, args, err := sqlx.In(`SELECT id, name FROM products WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	rows := []struct {
		ID   string `db:"id"`
		Name string `db:"name"`
	}{}
	if err := r.db.Select(&rows, query, args...); err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row.Name
	}
	return out, nil
}

func (r *ProductRepo) Create(p domain.Product) error {
	_, err := r.db.Exec(`
	  INSERT INTO products(id, name, category, unit_price, stock_quantity, status, image_path, last_updated)
	  VALUES(?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, p.ID, p.Name, p.Category, p.UnitPrice, p.StockQty, domain.StockStatus(p.StockQty), p.ImagePath)
	return err
}

func (r *ProductRepo) Update(id, name, category string, price decimal.Decimal) error {
	_, err := r.db.Exec(`
	  UPDATE products
	  SET name = ?, category = ?, unit_price = ?, last_updated = CURRENT_TIMESTAMP
	  WHERE id = ?
	`, name, category, price, id)
	return err
}

func (r *ProductRepo) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM products WHERE id = ?`, id)
	return err
}

// DecrementStock atomically subtracts "by" units and recomputes the status in
// the same statement. The WHERE guard makes two racing registers serialize at
// the store instead of losing updates to read-then-write.
func (r *ProductRepo) DecrementStock(id string, by int) error {
	res, err := r.db.Exec(`
		UPDATE products
		SET stock_quantity = stock_quantity - ?,
		    status = CASE WHEN stock_quantity - ? > 0 THEN ? ELSE ? END,
		    last_updated = CURRENT_TIMESTAMP
		WHERE id = ? AND stock_quantity >= ?
	`, by, by, domain.StatusInStock, domain.StatusOutOfStock, id, by)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return &StockConflictError{ProductID: id, Qty: by}
	}
	return nil
}

// AddStock atomically adds "by" units and recomputes the status. Used for
// void restocks and the inventory editor's add-stock action.
func (r *ProductRepo) AddStock(id string, by int) error {
	res, err := r.db.Exec(`
		UPDATE products
		SET stock_quantity = stock_quantity + ?,
		    status = CASE WHEN stock_quantity + ? > 0 THEN ? ELSE ? END,
		    last_updated = CURRENT_TIMESTAMP
		WHERE id = ?
	`, by, by, domain.StatusInStock, domain.StatusOutOfStock, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("product %s not found", id)
	}
	return nil
}
