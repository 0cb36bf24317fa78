package common

import (
	"fmt"
)

// FormatPct renders a percentage to one decimal place, e.g. "12.0%".
// NaN renders as "NaN%": malformed metric input is shown, not masked.
func FormatPct(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// FormatRatio renders a dimensionless ratio to two decimal places, e.g. "1.40".
func FormatRatio(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// FormatCurrency renders a projected value with a currency marker, e.g. "$125.44".
func FormatCurrency(marker string, v float64) string {
	return fmt.Sprintf("%s%.2f", marker, v)
}
