package services

import (
	"errors"
	"fmt"
	"strings"
)

// Validation failures. These are rejected before any remote call and never
// leave partial state behind.
var (
	ErrEmptyCart      = errors.New("cart is empty")
	ErrBadQty         = errors.New("quantity must be at least 1")
	ErrExceedsStock   = errors.New("quantity exceeds available stock")
	ErrCommitInFlight = errors.New("a commit is already in progress for this cart")
	ErrAlreadyVoided  = errors.New("order is already voided")
	ErrBadCreds       = errors.New("invalid email or password")
)

// PartialCommitError reports a checkout that failed after the order header
// was written. It names the step that failed and which products had already
// had stock decremented, so an operator (or the reconciler) can see exactly
// what was applied.
type PartialCommitError struct {
	IntentID    string
	OrderID     string
	OrderNumber string
	Step        string
	Decremented []string
	Cause       error
}

func (e *PartialCommitError) Error() string {
	return fmt.Sprintf("partial commit of order %s: step %q failed: %v (stock already decremented: [%s])",
		e.OrderNumber, e.Step, e.Cause, strings.Join(e.Decremented, " "))
}

func (e *PartialCommitError) Unwrap() error { return e.Cause }

// LineFailure records one order line whose stock restoration failed.
type LineFailure struct {
	ProductID string
	Quantity  int
	Err       error
}

// PartialVoidError reports a void whose status transition succeeded but whose
// stock restoration failed for one or more lines. Restored and failed lines
// are listed separately so the operator can identify exactly which products
// were not put back.
type PartialVoidError struct {
	OrderID  string
	Restored []string
	Failed   []LineFailure
}

func (e *PartialVoidError) Error() string {
	parts := make([]string, 0, len(e.Failed))
	for _, f := range e.Failed {
		parts = append(parts, fmt.Sprintf("%s x%d: %v", f.ProductID, f.Quantity, f.Err))
	}
	return fmt.Sprintf("order %s voided but stock not fully restored: %s", e.OrderID, strings.Join(parts, "; "))
}
