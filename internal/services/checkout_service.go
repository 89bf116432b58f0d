package services

import (
	"sync"

	"github.com/shopspring/decimal"

	"sarisari/internal/domain"
	applog "sarisari/internal/log"
	"sarisari/internal/repos"
)

// Checkout states, one per cashier session. A single commit may be in flight
// per cart; tests assert on these instead of a UI.
const (
	StateIdle            = "idle"
	StateCommitting      = "committing"
	StateCommitted       = "committed"
	StatePartiallyFailed = "partially_failed"
)

// CartLine holds the quantity and the unit price snapshot captured when the
// item was first added. Later price edits do not affect it.
type CartLine struct {
	ProductID string
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
}

type cart struct {
	lines []CartLine
	state string
}

// Receipt summarizes a successful commit.
type Receipt struct {
	OrderID     string
	OrderNumber string
	Total       decimal.Decimal
}

// CheckoutService owns the ephemeral carts and the multi-record commit
// sequence: order header, order lines, per-product stock decrement, derived
// sales record. Each step is a separate store call; a write-ahead intent row
// makes any partial failure detectable.
type CheckoutService struct {
	Prods   *repos.ProductRepo
	Orders  *repos.OrderRepo
	Sales   *repos.SalesRepo
	Intents *repos.IntentRepo

	mu    sync.Mutex
	carts map[string]*cart
}

func NewCheckoutService(prods *repos.ProductRepo, orders *repos.OrderRepo, sales *repos.SalesRepo, intents *repos.IntentRepo) *CheckoutService {
	return &CheckoutService{Prods: prods, Orders: orders, Sales: sales, Intents: intents, carts: map[string]*cart{}}
}

func (s *CheckoutService) cartFor(sid string) *cart {
	c, ok := s.carts[sid]
	if !ok {
		c = &cart{state: StateIdle}
		s.carts[sid] = c
	}
	return c
}

// AddToCart validates against the product's current stock and merges
// duplicate products, clamping the merged quantity to stock. The price
// snapshot of an existing line is preserved.
func (s *CheckoutService) AddToCart(sid, productID string, qty int) error {
	if qty < 1 {
		return ErrBadQty
	}
	p, err := s.Prods.Get(productID)
	if err != nil {
		return err
	}
	if qty > p.StockQty {
		return ErrExceedsStock
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.cartFor(sid)
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			merged := c.lines[i].Quantity + qty
			if merged > p.StockQty {
				merged = p.StockQty
			}
			c.lines[i].Quantity = merged
			return nil
		}
	}
	c.lines = append(c.lines, CartLine{
		ProductID: productID,
		Name:      p.Name,
		Quantity:  qty,
		UnitPrice: p.UnitPrice,
	})
	return nil
}

// RemoveFromCart drops the line if present; no-op otherwise.
func (s *CheckoutService) RemoveFromCart(sid, productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.cartFor(sid)
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

// Lines returns a copy of the cart in insertion order.
func (s *CheckoutService) Lines(sid string) []CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.cartFor(sid)
	out := make([]CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// Total sums snapshot price x quantity over the cart. Pure; no re-fetch.
func (s *CheckoutService) Total(sid string) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cartTotal(s.cartFor(sid).lines)
}

func cartTotal(lines []CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

// State exposes the cart's workflow state.
func (s *CheckoutService) State(sid string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cartFor(sid).state
}

// Clear discards the cart without committing.
func (s *CheckoutService) Clear(sid string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sid)
}

// abandonIntent marks an intent failed so the reconciler will pick it up.
func (s *CheckoutService) abandonIntent(intentID string) {
	if err := s.Intents.SetState(intentID, repos.IntentFailed); err != nil {
		applog.Error(nil, "checkout.intent.abandon", err, map[string]any{"intent": intentID})
	}
}

// Commit converts the cart into an order. Sequence:
//
//  1. write a pending commit intent
//  2. insert the order header (status Completed, total from snapshots)
//  3. batch-insert the order lines
//  4. conditionally decrement each product's stock, recomputing status
//  5. insert the derived sales record
//  6. mark the intent committed, clear the cart
//
// A failure at step 2 leaves nothing durable and returns a plain error. A
// failure later returns *PartialCommitError naming the failed step and the
// stock already decremented; the intent row stays behind for the reconciler.
func (s *CheckoutService) Commit(sid string) (Receipt, error) {
	s.mu.Lock()
	c := s.cartFor(sid)
	if c.state == StateCommitting {
		s.mu.Unlock()
		return Receipt{}, ErrCommitInFlight
	}
	if len(c.lines) == 0 {
		s.mu.Unlock()
		return Receipt{}, ErrEmptyCart
	}
	c.state = StateCommitting
	lines := make([]CartLine, len(c.lines))
	copy(lines, c.lines)
	s.mu.Unlock()

	total := cartTotal(lines)

	fail := func(state string, err error) (Receipt, error) {
		s.mu.Lock()
		c.state = state
		s.mu.Unlock()
		return Receipt{}, err
	}

	intentID, err := s.Intents.Create("")
	if err != nil {
		return fail(StateIdle, err)
	}

	// Step: order header.
	if err := s.Intents.SetStep(intentID, repos.StepHeader); err != nil {
		return fail(StateIdle, err)
	}
	orderID, orderNumber, err := s.Orders.Create(total)
	if err != nil {
		// Nothing durable was written; a clean failure, not a partial one.
		s.abandonIntent(intentID)
		return fail(StateIdle, err)
	}

	partial := func(step string, cause error, decremented []string) (Receipt, error) {
		s.abandonIntent(intentID)
		return fail(StatePartiallyFailed, &PartialCommitError{
			IntentID:    intentID,
			OrderID:     orderID,
			OrderNumber: orderNumber,
			Step:        step,
			Decremented: decremented,
			Cause:       cause,
		})
	}

	if err := s.Intents.SetOrder(intentID, orderID); err != nil {
		return partial(repos.StepHeader, err, nil)
	}

	// Step: order lines, carrying the snapshot prices.
	if err := s.Intents.SetStep(intentID, repos.StepLines); err != nil {
		return partial(repos.StepHeader, err, nil)
	}
	ols := make([]domain.OrderLine, 0, len(lines))
	for _, l := range lines {
		ols = append(ols, domain.OrderLine{
			OrderID:   orderID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}
	if err := s.Orders.InsertLines(ols); err != nil {
		return partial(repos.StepLines, err, nil)
	}

	// Step: stock decrements, one conditional update per line. Each product is
	// recorded on the intent before its decrement and rolled back from the
	// record on a conflict, so the durable set covers every decrement applied.
	if err := s.Intents.SetStep(intentID, repos.StepStock); err != nil {
		return partial(repos.StepLines, err, nil)
	}
	var decremented []string
	for _, l := range lines {
		if err := s.Intents.SetDecremented(intentID, append(decremented, l.ProductID)); err != nil {
			return partial(repos.StepStock, err, decremented)
		}
		if err := s.Prods.DecrementStock(l.ProductID, l.Quantity); err != nil {
			if rerr := s.Intents.SetDecremented(intentID, decremented); rerr != nil {
				applog.Error(nil, "checkout.intent.record", rerr, map[string]any{"intent": intentID})
			}
			return partial(repos.StepStock, err, decremented)
		}
		decremented = append(decremented, l.ProductID)
	}

	// Step: derived sales record.
	if err := s.Intents.SetStep(intentID, repos.StepSales); err != nil {
		return partial(repos.StepStock, err, decremented)
	}
	if err := s.Sales.Insert(orderID, total); err != nil {
		return partial(repos.StepSales, err, decremented)
	}

	if err := s.Intents.SetState(intentID, repos.IntentCommitted); err != nil {
		return partial(repos.StepSales, err, decremented)
	}

	s.mu.Lock()
	delete(s.carts, sid)
	s.mu.Unlock()

	return Receipt{OrderID: orderID, OrderNumber: orderNumber, Total: total}, nil
}
