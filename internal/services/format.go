package services

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// displayDateLayout is the human-readable date format used on estimates,
// e.g. "Jan 05, 2025".
const displayDateLayout = "Jan 02, 2006"

// FormatCurrency formats an amount as a US dollar string with thousands
// separators and exactly 2 decimal places, e.g. "$1,234.56". Rounding is
// half away from zero; negative amounts get a leading minus.
func FormatCurrency(amount float64) string {
	// Round half away from zero to 2 decimals before splitting. The
	// sign comes from the rounded cents, so amounts that round to zero
	// never print a minus.
	cents := math.Round(math.Abs(amount) * 100)
	negative := amount < 0 && cents != 0
	raw := fmt.Sprintf("%.2f", cents/100)

	parts := strings.SplitN(raw, ".", 2)
	intPart := parts[0]
	decPart := parts[1]

	result := "$" + groupThousands(intPart) + "." + decPart
	if negative {
		result = "-" + result
	}
	return result
}

// groupThousands inserts commas into an integer string every 3 digits
// from the right.
func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	result := s[n-3:]
	remaining := s[:n-3]

	for len(remaining) > 3 {
		result = remaining[len(remaining)-3:] + "," + result
		remaining = remaining[:len(remaining)-3]
	}
	if len(remaining) > 0 {
		result = remaining + "," + result
	}

	return result
}

// FormatDate formats a date for display on estimates.
func FormatDate(t time.Time) string {
	return t.Format(displayDateLayout)
}

// FormatQuantity returns a quantity without decimals when it is a whole
// number, otherwise with 2 decimal places.
func FormatQuantity(qty float64) string {
	if qty == math.Trunc(qty) {
		return fmt.Sprintf("%.0f", qty)
	}
	return fmt.Sprintf("%.2f", qty)
}
