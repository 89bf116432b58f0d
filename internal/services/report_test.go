package services_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sarisari/internal/domain"
	"sarisari/internal/services"
)

func order(id, date, status string, total string) domain.Order {
	return domain.Order{
		ID:          id,
		OrderNumber: "ORD-" + id,
		TotalAmount: decimal.RequireFromString(total),
		Status:      status,
		OrderDate:   date,
	}
}

func TestTrendBuckets_MonthViewZeroFillsAndExcludesVoided(t *testing.T) {
	orders := []domain.Order{
		order("a", "2026-08-03 10:00:00", domain.OrderCompleted, "100"), // Week 1
		order("b", "2026-08-04 15:30:00", domain.OrderCompleted, "50"),  // Week 1
		order("c", "2026-08-18 09:00:00", domain.OrderCompleted, "70"),  // Week 3
		order("d", "2026-08-19 09:00:00", domain.OrderVoided, "999"),    // excluded
		order("e", "2026-08-30 09:00:00", domain.OrderCompleted, "20"),  // Week 5
	}

	points := services.TrendBuckets(services.GranMonth, orders, time.UTC)
	require.Len(t, points, 5)

	labels := make([]string, len(points))
	for i, p := range points {
		labels[i] = p.Label
	}
	assert.Equal(t, []string{"Week 1", "Week 2", "Week 3", "Week 4", "Week 5"}, labels)

	assert.True(t, points[0].Amount.Equal(decimal.RequireFromString("150")))
	assert.True(t, points[1].Amount.IsZero(), "empty week must appear with zero")
	assert.True(t, points[2].Amount.Equal(decimal.RequireFromString("70")))
	assert.True(t, points[3].Amount.IsZero())
	assert.True(t, points[4].Amount.Equal(decimal.RequireFromString("20")))
}

func TestTrendBuckets_WeekAndDayLabels(t *testing.T) {
	// 2026-08-24 is a Monday.
	orders := []domain.Order{
		order("a", "2026-08-24 08:05:00", domain.OrderCompleted, "10"),
		order("b", "2026-08-30 23:00:00", domain.OrderCompleted, "5"), // Sunday
	}

	week := services.TrendBuckets(services.GranWeek, orders, time.UTC)
	require.Len(t, week, 7)
	assert.Equal(t, "Mon", week[0].Label)
	assert.True(t, week[0].Amount.Equal(decimal.RequireFromString("10")))
	assert.Equal(t, "Sun", week[6].Label)
	assert.True(t, week[6].Amount.Equal(decimal.RequireFromString("5")))

	day := services.TrendBuckets(services.GranDay, orders[:1], time.UTC)
	require.Len(t, day, 24)
	assert.Equal(t, "08:00", day[8].Label)
	assert.True(t, day[8].Amount.Equal(decimal.RequireFromString("10")))
	assert.True(t, day[9].Amount.IsZero())
}

func TestTrendBuckets_LabelsInQueryWindowZone(t *testing.T) {
	// A sale at 00:30 local in a UTC+8 store is stored as 16:30 UTC the
	// previous day. Its label must follow the window's zone, not the raw
	// stored hour.
	loc := time.FixedZone("UTC+8", 8*3600)
	orders := []domain.Order{
		order("a", "2026-08-23 16:30:00", domain.OrderCompleted, "100"),
	}

	now := time.Date(2026, 8, 24, 9, 0, 0, 0, loc)
	from, to := services.RangeBounds(services.GranDay, now)
	sold, _ := time.ParseInLocation("2006-01-02 15:04:05", "2026-08-23 16:30:00", time.UTC)
	require.True(t, !sold.Before(from) && !sold.After(to), "sale must fall inside the local day window")

	day := services.TrendBuckets(services.GranDay, orders, loc)
	assert.True(t, day[0].Amount.Equal(decimal.RequireFromString("100")),
		"sale at 00:30 local belongs in the 00:00 bucket")
	assert.True(t, day[16].Amount.IsZero())

	// Sunday 23:30 UTC is Monday 07:30 local; week labeling follows suit.
	week := services.TrendBuckets(services.GranWeek,
		[]domain.Order{order("b", "2026-08-23 23:30:00", domain.OrderCompleted, "40")}, loc)
	assert.True(t, week[0].Amount.Equal(decimal.RequireFromString("40")), "Mon bucket")
	assert.True(t, week[6].Amount.IsZero(), "Sun bucket stays empty")
}

func TestTrendBuckets_Deterministic(t *testing.T) {
	orders := []domain.Order{
		order("a", "2026-03-01 10:00:00", domain.OrderCompleted, "12.50"),
		order("b", "2026-07-14 10:00:00", domain.OrderCompleted, "7.25"),
	}
	first := services.TrendBuckets(services.GranYear, orders, time.UTC)
	second := services.TrendBuckets(services.GranYear, orders, time.UTC)
	require.Equal(t, first, second)
}

func TestTopSellers_RankingTiesAndPlaceholder(t *testing.T) {
	lines := []domain.OrderLine{
		{OrderID: "o1", ProductID: "rice", Quantity: 2},
		{OrderID: "o1", ProductID: "soju", Quantity: 5},
		{OrderID: "o2", ProductID: "tea", Quantity: 2},
		{OrderID: "o2", ProductID: "rice", Quantity: 1},
	}
	names := map[string]string{"rice": "Jasmine Rice", "soju": "Soju"}

	top := services.TopSellers(lines, names, 3)
	require.Len(t, top, 3)
	assert.Equal(t, "soju", top[0].ProductID)
	// rice (3) beats tea (2); tea keeps its slot by quantity, not by name.
	assert.Equal(t, "rice", top[1].ProductID)
	assert.Equal(t, "tea", top[2].ProductID)
	// No name entry degrades to a placeholder, not an error.
	assert.Equal(t, "Product #tea", top[2].Name)

	// Equal quantities keep first-seen order.
	tied := services.TopSellers([]domain.OrderLine{
		{ProductID: "a", Quantity: 2},
		{ProductID: "b", Quantity: 2},
	}, nil, 2)
	assert.Equal(t, "a", tied[0].ProductID)
	assert.Equal(t, "b", tied[1].ProductID)
}

func TestSummarize(t *testing.T) {
	orders := []domain.Order{
		order("a", "2026-08-03 10:00:00", domain.OrderCompleted, "100"),
		order("b", "2026-08-04 10:00:00", domain.OrderCompleted, "50"),
		order("c", "2026-08-05 10:00:00", domain.OrderVoided, "30"),
	}
	lines := []domain.OrderLine{
		{OrderID: "a", ProductID: "x", Quantity: 3},
		{OrderID: "b", ProductID: "y", Quantity: 1},
	}

	s := services.Summarize(orders, lines)
	assert.Equal(t, 2, s.Orders)
	assert.Equal(t, 4, s.Units)
	assert.True(t, s.TotalSales.Equal(decimal.RequireFromString("150")))
	assert.True(t, s.AvgOrder.Equal(decimal.RequireFromString("75")))
}

func TestRangeBounds(t *testing.T) {
	// Wednesday 2026-08-26.
	now := time.Date(2026, 8, 26, 14, 30, 0, 0, time.UTC)

	from, to := services.RangeBounds(services.GranWeek, now)
	assert.Equal(t, time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC), from, "week starts Monday")
	assert.Equal(t, time.Date(2026, 8, 30, 23, 59, 59, 0, time.UTC), to)

	from, to = services.RangeBounds(services.GranMonth, now)
	assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, 8, 31, 23, 59, 59, 0, time.UTC), to)

	from, to = services.RangeBounds(services.GranDay, now)
	assert.Equal(t, 26, from.Day())
	assert.Equal(t, 23, to.Hour())
}
