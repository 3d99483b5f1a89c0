package salary

import (
	"github.com/shopspring/decimal"
	"github.com/ukydev/fleet-backoffice/internal/amountwords"
	"github.com/ukydev/fleet-backoffice/internal/models"
	"github.com/ukydev/fleet-backoffice/internal/money"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Eligible reports whether adv may be deducted from the driver's salary for
// month/year: it was paid out and no salary has consumed it yet.
func Eligible(adv models.AdvanceSalary, driverID primitive.ObjectID, month, year int) bool {
	return adv.DriverID == driverID &&
		adv.RequestedMonth == month &&
		adv.RequestedYear == year &&
		adv.Status == models.AdvancePaid &&
		adv.DeductedFromSalaryID == nil
}

// Select filters advances down to the eligible ones.
func Select(advances []models.AdvanceSalary, driverID primitive.ObjectID, month, year int) []models.AdvanceSalary {
	var out []models.AdvanceSalary
	for _, adv := range advances {
		if Eligible(adv, driverID, month, year) {
			out = append(out, adv)
		}
	}
	return out
}

// ApplyAdvances deducts the sum of advances from calc. The final salary is
// floored at zero and the words are re-rendered from it. Callers pass only
// advances that passed Eligible.
func ApplyAdvances(calc models.SalaryCalculation, advances []models.AdvanceSalary) models.SalaryCalculation {
	sum := decimal.Zero
	for _, adv := range advances {
		sum = sum.Add(money.Of(adv.Amount))
	}

	final := money.PositivePart(money.Of(calc.TotalSalary).Sub(sum))

	calc.AdvanceDeduction = money.Amount(sum)
	calc.FinalSalary = money.Amount(final)
	calc.AmountInWords = amountwords.Rupees(calc.FinalSalary)
	return calc
}

// IDs returns the identifiers of advances, in order.
func IDs(advances []models.AdvanceSalary) []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(advances))
	for _, adv := range advances {
		ids = append(ids, adv.ID)
	}
	return ids
}
