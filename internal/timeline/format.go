package timeline

import (
	"fmt"
	"math"
)

// FormatTime renders seconds as MM:SS for timeline labels. Whole seconds
// are floored, not rounded, and minutes keep counting past 59 with no hour
// field: 65 -> "01:05", 3661 -> "61:01".
func FormatTime(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
