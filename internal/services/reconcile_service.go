package services

import (
	"fmt"

	"sarisari/internal/repos"
)

// ReconcileService finds and repairs partial commits using the write-ahead
// intent rows left behind by failed checkouts. Repair direction depends on
// how far the commit got: rollback while the order is still incomplete,
// roll forward once only the derived sales record is missing.
type ReconcileService struct {
	Intents *repos.IntentRepo
	Orders  *repos.OrderRepo
	Prods   *repos.ProductRepo
	Sales   *repos.SalesRepo
}

func NewReconcileService(intents *repos.IntentRepo, orders *repos.OrderRepo, prods *repos.ProductRepo, sales *repos.SalesRepo) *ReconcileService {
	return &ReconcileService{Intents: intents, Orders: orders, Prods: prods, Sales: sales}
}

// FindPartial lists intents still marking a partial commit.
func (s *ReconcileService) FindPartial() ([]repos.Intent, error) {
	return s.Intents.ListUnresolved()
}

type RepairReport struct {
	IntentID string
	OrderID  string
	Step     string
	Action   string
}

// Repair resolves one intent:
//
//   - failed before the header existed: nothing durable, mark repaired
//   - failed at lines: the header is an orphan, delete it
//   - failed at stock: restore the decremented products and void the order
//   - failed at sales: everything else landed, insert the sales record
func (s *ReconcileService) Repair(intentID string) (RepairReport, error) {
	intent, err := s.Intents.Get(intentID)
	if err != nil {
		return RepairReport{}, err
	}
	if intent.State == repos.IntentCommitted || intent.State == repos.IntentRepaired {
		return RepairReport{}, fmt.Errorf("intent %s already resolved (%s)", intentID, intent.State)
	}

	report := RepairReport{IntentID: intent.ID, OrderID: intent.OrderID, Step: intent.Step}

	switch intent.Step {
	case "", repos.StepHeader:
		report.Action = "nothing durable written"
		return report, s.Intents.SetState(intent.ID, repos.IntentRepaired)

	case repos.StepLines:
		// Lines are one batch insert; a failure there means the header is
		// the only durable row.
		if err := s.Orders.DeleteHeader(intent.OrderID); err != nil {
			return report, err
		}
		report.Action = "orphan order header deleted"
		return report, s.Intents.SetState(intent.ID, repos.IntentRepaired)

	case repos.StepStock:
		lines, err := s.Orders.Lines(intent.OrderID)
		if err != nil {
			return report, err
		}
		qtyByProduct := map[string]int{}
		for _, l := range lines {
			qtyByProduct[l.ProductID] = l.Quantity
		}
		for _, pid := range intent.Decremented() {
			qty, ok := qtyByProduct[pid]
			if !ok {
				continue
			}
			if err := s.Prods.AddStock(pid, qty); err != nil {
				return report, fmt.Errorf("restore %s: %w", pid, err)
			}
		}
		if _, err := s.Orders.MarkVoided(intent.OrderID); err != nil {
			return report, err
		}
		report.Action = "stock restored, order voided"
		return report, s.Intents.SetState(intent.ID, repos.IntentRepaired)

	case repos.StepSales:
		o, err := s.Orders.Get(intent.OrderID)
		if err != nil {
			return report, err
		}
		if err := s.Sales.Insert(o.ID, o.TotalAmount); err != nil {
			return report, err
		}
		report.Action = "sales record completed"
		return report, s.Intents.SetState(intent.ID, repos.IntentCommitted)
	}

	return report, fmt.Errorf("intent %s has unknown step %q", intentID, intent.Step)
}
