package common

import (
	"fmt"
	"strings"

	"marketplace-ledger-go/internal/models"

	"github.com/shopspring/decimal"
)

// DefaultWidth is the separator width of every report.
const DefaultWidth = 80

func printSeparator(char string, width int) {
	fmt.Println("\n" + strings.Repeat(char, width))
}

// PrintHeader prints a report title between separators
func PrintHeader(title string, width int) {
	printSeparator("=", width)
	fmt.Println(title)
	fmt.Println(strings.Repeat("=", width))
}

// PrintFooter prints a summary line between separators
func PrintFooter(message string, width int) {
	printSeparator("=", width)
	fmt.Println(message)
	fmt.Println(strings.Repeat("=", width) + "\n")
}

// PrintBoxSeparator prints a box-drawing separator line (for sub-sections)
func PrintBoxSeparator(width int) {
	fmt.Println("├" + strings.Repeat("─", width))
}

// BoxPrefix returns the appropriate box-drawing prefix for list items
func BoxPrefix(isLast bool) string {
	if isLast {
		return "└  "
	}
	return "│  "
}

// FormatMoney renders an amount with exactly two decimals.
func FormatMoney(amount decimal.Decimal) string {
	return amount.StringFixed(models.MoneyScale)
}

// FormatRate renders a seller's commission rate, or "default" when the
// seller has none and falls back to the configured rate.
func FormatRate(rate decimal.NullDecimal) string {
	if !rate.Valid {
		return "default"
	}
	return rate.Decimal.StringFixed(models.RateScale) + "%"
}
