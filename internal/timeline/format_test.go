package timeline

import (
	"math"
	"testing"
)

func TestFormatTime(t *testing.T) {
	cases := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00"},
		{5, "00:05"},
		{59, "00:59"},
		{60, "01:00"},
		{65, "01:05"},
		{65.9, "01:05"}, // floored, not rounded
		{600, "10:00"},
		{3661, "61:01"}, // minutes wrap, no hour field
		{-3, "00:00"},
		{math.NaN(), "00:00"},
		{math.Inf(1), "00:00"},
	}

	for _, c := range cases {
		if got := FormatTime(c.seconds); got != c.want {
			t.Errorf("FormatTime(%v) = %q, expected %q", c.seconds, got, c.want)
		}
	}
}
