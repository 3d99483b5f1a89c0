// Package amountwords renders rupee amounts as words in the Indian
// numbering system (thousand, lakh, crore).
package amountwords

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	thousand = 1000
	lakh     = 100000
	crore    = 10000000
)

var ones = []string{
	"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine",
	"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen",
	"Seventeen", "Eighteen", "Nineteen",
}

var tens = []string{
	"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety",
}

// Zero is returned for zero and for negative amounts.
const Zero = "Zero"

// Indian converts n to words, e.g. 1234567 ->
// "Twelve Lakh Thirty Four Thousand Five Hundred Sixty Seven".
// Negative input is clamped to zero.
func Indian(n int64) string {
	if n <= 0 {
		return Zero
	}
	return strings.Join(indianParts(n), " ")
}

// Rupees rounds amount to the nearest whole rupee and renders it.
func Rupees(amount float64) string {
	return Indian(decimal.NewFromFloat(amount).Round(0).IntPart())
}

func indianParts(n int64) []string {
	var parts []string

	// Crore counts of 100 or more are themselves spelled in the Indian system.
	if n >= crore {
		parts = append(parts, indianParts(n/crore)...)
		parts = append(parts, "Crore")
		n %= crore
	}
	if n >= lakh {
		parts = append(parts, under100(n/lakh), "Lakh")
		n %= lakh
	}
	if n >= thousand {
		parts = append(parts, under100(n/thousand), "Thousand")
		n %= thousand
	}
	if n >= 100 {
		parts = append(parts, ones[n/100], "Hundred")
		n %= 100
	}
	if n > 0 {
		parts = append(parts, under100(n))
	}
	return parts
}

func under100(n int64) string {
	if n < 20 {
		return ones[n]
	}
	result := tens[n/10]
	if n%10 != 0 {
		result += " " + ones[n%10]
	}
	return result
}
