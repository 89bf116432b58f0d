package services

import (
	"fmt"
	"time"

	"sarisari/internal/domain"
	applog "sarisari/internal/log"
	"sarisari/internal/repos"
)

// VoidService reverses a committed order's stock effect: a conditional
// Completed -> Voided transition first, then per-line restocks, then a
// best-effort cleanup of the derived sales record.
type VoidService struct {
	Orders     *repos.OrderRepo
	Prods      *repos.ProductRepo
	Sales      *repos.SalesRepo
	WindowDays int
}

func NewVoidService(orders *repos.OrderRepo, prods *repos.ProductRepo, sales *repos.SalesRepo, windowDays int) *VoidService {
	if windowDays <= 0 {
		windowDays = 7
	}
	return &VoidService{Orders: orders, Prods: prods, Sales: sales, WindowDays: windowDays}
}

// ListVoidable returns non-voided orders from the trailing window, newest first.
func (s *VoidService) ListVoidable(now time.Time) ([]domain.Order, error) {
	since := now.AddDate(0, 0, -s.WindowDays)
	return s.Orders.ListVoidable(since)
}

// LineDisplay is one order line as shown on the void screen.
type LineDisplay struct {
	ProductID   string
	ProductName string
	Quantity    int
	CurrentQty  int
}

// LoadLines returns the order's lines joined with product names and current
// stock. A deleted product degrades to a placeholder label rather than
// aborting the view.
func (s *VoidService) LoadLines(orderID string) ([]LineDisplay, error) {
	rows, err := s.Orders.LinesWithProducts(orderID)
	if err != nil {
		return nil, err
	}
	out := make([]LineDisplay, 0, len(rows))
	for _, r := range rows {
		name := r.ProductName
		if name == "" {
			name = fmt.Sprintf("Product #%s", r.ProductID)
		}
		out = append(out, LineDisplay{
			ProductID:   r.ProductID,
			ProductName: name,
			Quantity:    r.Quantity,
			CurrentQty:  r.CurrentQty,
		})
	}
	return out, nil
}

// Void marks the order Voided and restores stock for every line.
//
// The status transition runs first and is the precondition: if it affects no
// row the order was already voided (or never existed) and no restock happens,
// so a double void can never restore stock twice. Restock failures after a
// successful transition are collected per line into *PartialVoidError.
func (s *VoidService) Void(orderID string) error {
	ok, err := s.Orders.MarkVoided(orderID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrAlreadyVoided
	}

	lines, err := s.Orders.Lines(orderID)
	if err != nil {
		// Transitioned but nothing restored yet; surface as partial.
		return &PartialVoidError{OrderID: orderID, Failed: []LineFailure{{Err: err}}}
	}

	var restored []string
	var failed []LineFailure
	for _, l := range lines {
		if err := s.Prods.AddStock(l.ProductID, l.Quantity); err != nil {
			failed = append(failed, LineFailure{ProductID: l.ProductID, Quantity: l.Quantity, Err: err})
			continue
		}
		restored = append(restored, l.ProductID)
	}

	// Best-effort: a missing sales record is not an error.
	if err := s.Sales.DeleteByOrder(orderID); err != nil {
		applog.Error(nil, "void.sales.cleanup", err, map[string]any{"order_id": orderID})
	}

	if len(failed) > 0 {
		return &PartialVoidError{OrderID: orderID, Restored: restored, Failed: failed}
	}
	return nil
}
