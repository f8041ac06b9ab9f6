package helper

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestMinorUnitsToDisplay(t *testing.T) {
	cases := []struct {
		units int64
		want  string
	}{
		{0, "0.00"},
		{1, "0.01"},
		{100, "1.00"},
		{301, "3.01"},
		{12345, "123.45"},
		{-250, "-2.50"},
	}
	for _, c := range cases {
		if got := MinorUnitsToDisplay(c.units); got != c.want {
			t.Fatalf("MinorUnitsToDisplay(%d) = %s, want %s", c.units, got, c.want)
		}
	}
}

func TestTrimDecimal(t *testing.T) {
	if got := TrimDecimal(decimal.RequireFromString("1.005")); got != "1.01" {
		t.Fatalf("unexpected rounding: %s", got)
	}
	if got := TrimDecimal(decimal.NewFromInt(3)); got != "3.00" {
		t.Fatalf("TrimDecimal(3) = %s", got)
	}
}
