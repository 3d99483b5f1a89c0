// Package salary computes driver pay for an approved tripsheet and nets off
// cash advances already paid out for the same month.
package salary

import (
	"github.com/shopspring/decimal"
	"github.com/ukydev/fleet-backoffice/internal/amountwords"
	"github.com/ukydev/fleet-backoffice/internal/models"
	"github.com/ukydev/fleet-backoffice/internal/money"
)

// Pay scale shared by every driver.
const (
	BaseSalary    = 20000
	BaseDays      = 22
	ExtraDayRate  = 909
	ExtraHourRate = 80
)

// Calculate computes gross pay from a recomputed tripsheet summary. Extra
// hours are the driver-side overage (above 12 h a day), not the billing one.
// FinalSalary equals TotalSalary until advances are applied.
func Calculate(summary models.TripsheetSummary) models.SalaryCalculation {
	extraDays := max(0, summary.TotalWorkingDays-BaseDays)
	extraDaysAmount := money.Count(extraDays * ExtraDayRate)

	driverExtra := money.Of(summary.TotalDriverExtraHours)
	extraHoursAmount := driverExtra.Mul(decimal.NewFromInt(ExtraHourRate))

	total := decimal.Sum(decimal.NewFromInt(BaseSalary), extraDaysAmount, extraHoursAmount)

	return models.SalaryCalculation{
		BaseSalary:            BaseSalary,
		BaseDays:              BaseDays,
		TotalWorkingDays:      summary.TotalWorkingDays,
		ExtraDays:             extraDays,
		ExtraDayRate:          ExtraDayRate,
		ExtraDaysAmount:       money.Amount(extraDaysAmount),
		TotalHours:            summary.TotalHours,
		TotalDriverExtraHours: money.Hours(driverExtra),
		ExtraHourRate:         ExtraHourRate,
		ExtraHoursAmount:      money.Amount(extraHoursAmount),
		TotalSalary:           money.Amount(total),
		FinalSalary:           money.Amount(total),
		AmountInWords:         amountwords.Rupees(money.Amount(total)),
	}
}
