package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"sarisari/internal/domain"
	"sarisari/internal/repos"
)

// Granularity selects the dashboard's time bucketing.
type Granularity string

const (
	GranDay   Granularity = "day"
	GranWeek  Granularity = "week"
	GranMonth Granularity = "month"
	GranYear  Granularity = "year"
)

// ParseGranularity falls back to the month view for unknown values.
func ParseGranularity(s string) Granularity {
	switch Granularity(s) {
	case GranDay, GranWeek, GranMonth, GranYear:
		return Granularity(s)
	}
	return GranMonth
}

type TrendPoint struct {
	Label  string
	Amount decimal.Decimal
}

type TopSeller struct {
	ProductID string
	Name      string
	Quantity  int
}

type Summary struct {
	TotalSales decimal.Decimal
	Orders     int
	Units      int
	AvgOrder   decimal.Decimal
}

var weekdayLabels = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

var monthLabels = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// Labels is the fixed bucket sequence for a granularity. The sequence comes
// from the granularity alone, never from the data, so empty buckets render
// as zero instead of disappearing.
func Labels(g Granularity) []string {
	switch g {
	case GranDay:
		out := make([]string, 24)
		for h := range out {
			out[h] = fmt.Sprintf("%02d:00", h)
		}
		return out
	case GranWeek:
		return append([]string(nil), weekdayLabels...)
	case GranMonth:
		return []string{"Week 1", "Week 2", "Week 3", "Week 4", "Week 5"}
	default:
		return append([]string(nil), monthLabels...)
	}
}

func bucketLabel(g Granularity, t time.Time) string {
	switch g {
	case GranDay:
		return fmt.Sprintf("%02d:00", t.Hour())
	case GranWeek:
		return weekdayLabels[(int(t.Weekday())+6)%7]
	case GranMonth:
		return fmt.Sprintf("Week %d", (t.Day()+6)/7)
	default:
		return monthLabels[int(t.Month())-1]
	}
}

// parseOrderDate accepts the store's timestamp formats.
func parseOrderDate(s string) (time.Time, bool) {
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// TrendBuckets sums order totals into the fixed label sequence. Only
// Completed orders contribute; anything else is skipped even if present in
// the input. Timestamps are stored in UTC; loc is the zone the query window
// was computed in, so labels and window agree. Deterministic for a fixed
// input.
func TrendBuckets(g Granularity, orders []domain.Order, loc *time.Location) []TrendPoint {
	if loc == nil {
		loc = time.UTC
	}
	sums := map[string]decimal.Decimal{}
	for _, o := range orders {
		if o.Status != domain.OrderCompleted {
			continue
		}
		t, ok := parseOrderDate(o.OrderDate)
		if !ok {
			continue
		}
		label := bucketLabel(g, t.In(loc))
		sums[label] = sums[label].Add(o.TotalAmount)
	}

	labels := Labels(g)
	out := make([]TrendPoint, 0, len(labels))
	for _, label := range labels {
		amount, ok := sums[label]
		if !ok {
			amount = decimal.Zero
		}
		out = append(out, TrendPoint{Label: label, Amount: amount})
	}
	return out
}

// TopSellers ranks products by summed line quantity, descending. Ties keep
// first-seen order, so the ranking is stable across invocations. Products
// missing from the name map get a placeholder label.
func TopSellers(lines []domain.OrderLine, names map[string]string, n int) []TopSeller {
	totals := map[string]int{}
	var order []string
	for _, l := range lines {
		if _, seen := totals[l.ProductID]; !seen {
			order = append(order, l.ProductID)
		}
		totals[l.ProductID] += l.Quantity
	}

	out := make([]TopSeller, 0, len(order))
	for _, pid := range order {
		name, ok := names[pid]
		if !ok {
			name = fmt.Sprintf("Product #%s", pid)
		}
		out = append(out, TopSeller{ProductID: pid, Name: name, Quantity: totals[pid]})
	}
	// Stable sort keeps first-seen order among equal quantities.
	sort.SliceStable(out, func(i, j int) bool { return out[i].Quantity > out[j].Quantity })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Summarize computes the dashboard header cards.
func Summarize(orders []domain.Order, lines []domain.OrderLine) Summary {
	s := Summary{TotalSales: decimal.Zero, AvgOrder: decimal.Zero}
	for _, o := range orders {
		if o.Status != domain.OrderCompleted {
			continue
		}
		s.TotalSales = s.TotalSales.Add(o.TotalAmount)
		s.Orders++
	}
	for _, l := range lines {
		s.Units += l.Quantity
	}
	if s.Orders > 0 {
		s.AvgOrder = s.TotalSales.DivRound(decimal.NewFromInt(int64(s.Orders)), 2)
	}
	return s
}

// RangeBounds computes the inclusive query window for a granularity: the
// current day, Monday-started week, calendar month, or calendar year.
func RangeBounds(g Granularity, now time.Time) (from, to time.Time) {
	y, m, d := now.Date()
	loc := now.Location()
	switch g {
	case GranDay:
		from = time.Date(y, m, d, 0, 0, 0, 0, loc)
		to = time.Date(y, m, d, 23, 59, 59, 0, loc)
	case GranWeek:
		offset := (int(now.Weekday()) + 6) % 7
		monday := time.Date(y, m, d, 0, 0, 0, 0, loc).AddDate(0, 0, -offset)
		from = monday
		to = monday.AddDate(0, 0, 6).Add(23*time.Hour + 59*time.Minute + 59*time.Second)
	case GranMonth:
		from = time.Date(y, m, 1, 0, 0, 0, 0, loc)
		to = from.AddDate(0, 1, 0).Add(-time.Second)
	default:
		from = time.Date(y, 1, 1, 0, 0, 0, 0, loc)
		to = time.Date(y, 12, 31, 23, 59, 59, 0, loc)
	}
	return from, to
}

// DashboardData is everything the sales dashboard renders.
type DashboardData struct {
	Trend   []TrendPoint
	Top     []TopSeller
	Summary Summary
}

// ReportService fetches the time-bounded order slice and runs the pure
// aggregations over it.
type ReportService struct {
	Orders *repos.OrderRepo
	Prods  *repos.ProductRepo
}

func NewReportService(orders *repos.OrderRepo, prods *repos.ProductRepo) *ReportService {
	return &ReportService{Orders: orders, Prods: prods}
}

func (s *ReportService) Dashboard(g Granularity, now time.Time) (DashboardData, error) {
	from, to := RangeBounds(g, now)
	orders, err := s.Orders.ListCompletedBetween(from, to)
	if err != nil {
		return DashboardData{}, err
	}

	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	lines, err := s.Orders.LinesForOrders(ids)
	if err != nil {
		return DashboardData{}, err
	}

	top := TopSellers(lines, nil, 5)
	names, err := s.Prods.NamesByID(sellerIDs(top))
	if err != nil {
		return DashboardData{}, err
	}
	top = rename(top, names)

	return DashboardData{
		Trend:   TrendBuckets(g, orders, now.Location()),
		Top:     top,
		Summary: Summarize(orders, lines),
	}, nil
}

// TopSellersSince powers the storefront widget: top n by quantity over the
// trailing number of days.
func (s *ReportService) TopSellersSince(days, n int, now time.Time) ([]TopSeller, error) {
	orders, err := s.Orders.ListCompletedBetween(now.AddDate(0, 0, -days), now)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	lines, err := s.Orders.LinesForOrders(ids)
	if err != nil {
		return nil, err
	}
	top := TopSellers(lines, nil, n)
	names, err := s.Prods.NamesByID(sellerIDs(top))
	if err != nil {
		return nil, err
	}
	return rename(top, names), nil
}

func sellerIDs(top []TopSeller) []string {
	out := make([]string, 0, len(top))
	for _, t := range top {
		out = append(out, t.ProductID)
	}
	return out
}

func rename(top []TopSeller, names map[string]string) []TopSeller {
	for i := range top {
		if name, ok := names[top[i].ProductID]; ok {
			top[i].Name = name
		}
	}
	return top
}
