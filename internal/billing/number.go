package billing

import (
	"fmt"
	"strings"
	"unicode"
)

// Number builds the invoice number for a vehicle's month, e.g.
// "INV-202502-KA01AB1234". One tripsheet exists per vehicle and month, so the
// number is unique per bill.
func Number(registration string, month, year int) string {
	reg := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToUpper(r)
		}
		return -1
	}, registration)
	return fmt.Sprintf("INV-%04d%02d-%s", year, month, reg)
}
