package salary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ukydev/fleet-backoffice/internal/models"
)

func TestCalculate_BaseMonth(t *testing.T) {
	calc := Calculate(models.TripsheetSummary{TotalWorkingDays: 20, TotalHours: 200})

	assert.Equal(t, 20000.0, calc.TotalSalary)
	assert.Equal(t, 20000.0, calc.FinalSalary)
	assert.Zero(t, calc.ExtraDays)
	assert.Zero(t, calc.ExtraDaysAmount)
	assert.Zero(t, calc.ExtraHoursAmount)
	assert.Equal(t, 200.0, calc.TotalHours)
	assert.Equal(t, "Twenty Thousand", calc.AmountInWords)
}

func TestCalculate_ExtraDaysAndHours(t *testing.T) {
	calc := Calculate(models.TripsheetSummary{TotalWorkingDays: 24, TotalDriverExtraHours: 5, TotalExtraHours: 29})

	assert.Equal(t, 2, calc.ExtraDays)
	assert.Equal(t, 1818.0, calc.ExtraDaysAmount)
	assert.Equal(t, 5.0, calc.TotalDriverExtraHours)
	assert.Equal(t, 400.0, calc.ExtraHoursAmount, "only driver-side overage is paid")
	assert.Equal(t, 22218.0, calc.TotalSalary)
	assert.Equal(t, "Twenty Two Thousand Two Hundred Eighteen", calc.AmountInWords)
}

func TestCalculate_FractionalHours(t *testing.T) {
	calc := Calculate(models.TripsheetSummary{TotalWorkingDays: 22, TotalDriverExtraHours: 2.3})

	assert.Equal(t, 184.0, calc.ExtraHoursAmount)
	assert.Equal(t, 20184.0, calc.TotalSalary)
}

func TestCalculate_NeverBelowBase(t *testing.T) {
	for days := 0; days <= 31; days++ {
		for _, hours := range []float64{0, 0.1, 7.5, 40} {
			calc := Calculate(models.TripsheetSummary{TotalWorkingDays: days, TotalDriverExtraHours: hours})
			assert.GreaterOrEqual(t, calc.TotalSalary, float64(BaseSalary))
		}
	}
}
