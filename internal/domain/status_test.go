package domain

import "testing"

func TestStockStatus(t *testing.T) {
	cases := []struct {
		qty  int
		want string
	}{
		{5, StatusInStock},
		{1, StatusInStock},
		{0, StatusOutOfStock},
		{-2, StatusOutOfStock},
	}
	for _, tc := range cases {
		if got := StockStatus(tc.qty); got != tc.want {
			t.Errorf("StockStatus(%d) = %q, want %q", tc.qty, got, tc.want)
		}
	}
}
