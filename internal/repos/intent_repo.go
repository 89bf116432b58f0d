package repos

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Intent states.
const (
	IntentPending   = "pending"
	IntentCommitted = "committed"
	IntentFailed    = "failed"
	IntentRepaired  = "repaired"
)

// Checkout steps recorded on an intent, in execution order.
const (
	StepHeader = "header"
	StepLines  = "lines"
	StepStock  = "stock"
	StepSales  = "sales"
)

// Intent is the write-ahead marker for one checkout commit. It is created
// pending before the order header is written and advanced step by step, so a
// failure at any point leaves a row naming exactly how far the commit got.
type Intent struct {
	ID              string `db:"id"`
	OrderID         string `db:"order_id"`
	State           string `db:"state"`
	Step            string `db:"step"`
	DecrementedJSON string `db:"decremented_json"`
	CreatedAt       string `db:"created_at"`
	UpdatedAt       string `db:"updated_at"`
}

// Decremented returns the product ids whose stock was already decremented
// under this intent.
func (i Intent) Decremented() []string {
	var out []string
	_ = json.Unmarshal([]byte(i.DecrementedJSON), &out)
	return out
}

type IntentRepo struct{ db *sqlx.DB }

func NewIntentRepo(db *sqlx.DB) *IntentRepo { return &IntentRepo{db: db} }

func (r *IntentRepo) Create(orderID string) (string, error) {
	id := uuid.NewString()
	_, err := r.db.Exec(`
	  INSERT INTO commit_intents(id, order_id, state, step, created_at)
	  VALUES(?, ?, ?, '', CURRENT_TIMESTAMP)
	`, id, orderID, IntentPending)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *IntentRepo) SetStep(id, step string) error {
	_, err := r.db.Exec(`
	  UPDATE commit_intents SET step = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, step, id)
	return err
}

// SetOrder binds the generated order id once the header insert succeeded.
func (r *IntentRepo) SetOrder(id, orderID string) error {
	_, err := r.db.Exec(`
	  UPDATE commit_intents SET order_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, orderID, id)
	return err
}

// SetDecremented replaces the intent's decremented set. Callers write the set
// before applying a decrement and roll it back if the decrement fails, so the
// durable record always covers every decrement actually applied.
func (r *IntentRepo) SetDecremented(id string, productIDs []string) error {
	if productIDs == nil {
		productIDs = []string{}
	}
	b, err := json.Marshal(productIDs)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(`
	  UPDATE commit_intents SET decremented_json = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, string(b), id)
	return err
}

func (r *IntentRepo) SetState(id, state string) error {
	_, err := r.db.Exec(`
	  UPDATE commit_intents SET state = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, state, id)
	return err
}

func (r *IntentRepo) Get(id string) (Intent, error) {
	var out Intent
	err := r.db.Get(&out, `
	  SELECT id, order_id, state, step, decremented_json,
	         COALESCE(created_at,'') AS created_at, COALESCE(updated_at,'') AS updated_at
	  FROM commit_intents WHERE id = ?
	`, id)
	return out, err
}

// ListUnresolved returns intents still marking a partial commit: pending rows
// abandoned mid-flight and failed rows awaiting repair.
func (r *IntentRepo) ListUnresolved() ([]Intent, error) {
	var out []Intent
	err := r.db.Select(&out, `
	  SELECT id, order_id, state, step, decremented_json,
	         COALESCE(created_at,'') AS created_at, COALESCE(updated_at,'') AS updated_at
	  FROM commit_intents
	  WHERE state IN (?, ?)
	  ORDER BY datetime(created_at)
	`, IntentPending, IntentFailed)
	return out, err
}
