package pricing

import "fmt"

// Money represents a monetary value stored in minor units.
type Money = int64

// FormatMoney renders minor units as a display amount, e.g. 10050 -> "$100.50".
func FormatMoney(v Money) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s$%d.%02d", sign, v/100, v%100)
}
