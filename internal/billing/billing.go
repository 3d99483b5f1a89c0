// Package billing computes the client invoice for an approved tripsheet.
package billing

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/ukydev/fleet-backoffice/internal/apperror"
	"github.com/ukydev/fleet-backoffice/internal/models"
	"github.com/ukydev/fleet-backoffice/internal/money"
)

// KmsPerBaseDay is the distance allowance included in the base amount for
// each base day. It is not part of the vehicle type configuration.
const KmsPerBaseDay = 100

// Calculate prices a month of work under rules. The summary must already be
// recomputed from the tripsheet entries.
func Calculate(summary models.TripsheetSummary, rules *models.BillingRules) (models.BillingCalculation, error) {
	if err := checkRules(rules); err != nil {
		return models.BillingCalculation{}, err
	}

	baseAmount := money.Of(*rules.BaseAmount)
	baseDays := *rules.BaseDays

	extraDays := max(0, summary.TotalWorkingDays-baseDays)
	extraDaysAmount := money.Count(extraDays).Mul(money.Of(rules.ExtraDayRate))

	baseKms := baseDays * KmsPerBaseDay
	extraKms := max(0, summary.TotalKms-baseKms)
	extraKmsAmount := money.Count(extraKms).Mul(money.Of(rules.ExtraKmRate))

	extraHours := money.Of(summary.TotalExtraHours)
	extraHoursAmount := extraHours.Mul(money.Of(rules.ExtraHourRate))

	subTotal := decimal.Sum(baseAmount, extraDaysAmount, extraKmsAmount, extraHoursAmount)

	return models.BillingCalculation{
		BaseAmount:       money.Amount(baseAmount),
		BaseDays:         baseDays,
		TotalWorkingDays: summary.TotalWorkingDays,
		ExtraDays:        extraDays,
		ExtraDayRate:     rules.ExtraDayRate,
		ExtraDaysAmount:  money.Amount(extraDaysAmount),
		TotalKms:         summary.TotalKms,
		BaseKms:          baseKms,
		ExtraKms:         extraKms,
		ExtraKmRate:      rules.ExtraKmRate,
		ExtraKmsAmount:   money.Amount(extraKmsAmount),
		TotalExtraHours:  money.Hours(extraHours),
		ExtraHourRate:    rules.ExtraHourRate,
		ExtraHoursAmount: money.Amount(extraHoursAmount),
		SubTotal:         money.Amount(subTotal),
		TotalAmount:      money.Amount(subTotal),
	}, nil
}

// ApplyAdjustment sets the signed manual adjustment on calc and recomputes the
// total from the stored subtotal. The total may not drop below zero.
func ApplyAdjustment(calc models.BillingCalculation, adjustments float64) (models.BillingCalculation, error) {
	total := money.Of(calc.SubTotal).Add(money.Of(adjustments))
	if total.IsNegative() {
		return calc, apperror.InvalidField("adjustments",
			fmt.Sprintf("would make the total negative (sub total is %.2f)", calc.SubTotal))
	}
	calc.Adjustments = money.Amount(money.Of(adjustments))
	calc.TotalAmount = money.Amount(total)
	return calc, nil
}

func checkRules(rules *models.BillingRules) error {
	if rules == nil {
		return apperror.Configuration("vehicle type has no billing rules")
	}
	if rules.BaseAmount == nil {
		return apperror.Configuration("billing rules are missing base_amount")
	}
	if rules.BaseDays == nil {
		return apperror.Configuration("billing rules are missing base_days")
	}

	checks := []struct {
		name     string
		negative bool
	}{
		{"base_amount", *rules.BaseAmount < 0},
		{"base_days", *rules.BaseDays < 0},
		{"extra_day_rate", rules.ExtraDayRate < 0},
		{"extra_km_rate", rules.ExtraKmRate < 0},
		{"extra_hour_rate", rules.ExtraHourRate < 0},
	}
	for _, c := range checks {
		if c.negative {
			return apperror.Configuration(fmt.Sprintf("billing rules have a negative %s", c.name))
		}
	}
	return nil
}
