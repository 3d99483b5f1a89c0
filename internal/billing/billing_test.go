package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/fleet-backoffice/internal/apperror"
	"github.com/ukydev/fleet-backoffice/internal/models"
)

func f(v float64) *float64 { return &v }
func i(v int) *int         { return &v }

func sedanRules() *models.BillingRules {
	return &models.BillingRules{
		BaseAmount:      f(55000),
		BaseDays:        i(22),
		ExtraDayRate:    2500,
		ExtraKmRate:     10,
		BaseHoursPerDay: 10,
		ExtraHourRate:   100,
	}
}

func TestCalculate_OverageOnEveryAxis(t *testing.T) {
	summary := models.TripsheetSummary{TotalWorkingDays: 25, TotalKms: 2600, TotalExtraHours: 3}

	calc, err := Calculate(summary, sedanRules())
	require.NoError(t, err)

	assert.Equal(t, 3, calc.ExtraDays)
	assert.Equal(t, 7500.0, calc.ExtraDaysAmount)
	assert.Equal(t, 2200, calc.BaseKms)
	assert.Equal(t, 400, calc.ExtraKms)
	assert.Equal(t, 4000.0, calc.ExtraKmsAmount)
	assert.Equal(t, 3.0, calc.TotalExtraHours)
	assert.Equal(t, 300.0, calc.ExtraHoursAmount)
	assert.Equal(t, 66800.0, calc.SubTotal)
	assert.Equal(t, 66800.0, calc.TotalAmount)
	assert.Zero(t, calc.Adjustments)
}

func TestCalculate_NoWorkingDays(t *testing.T) {
	calc, err := Calculate(models.TripsheetSummary{TotalOffDays: 30}, sedanRules())
	require.NoError(t, err)

	assert.Zero(t, calc.ExtraDays)
	assert.Zero(t, calc.ExtraDaysAmount)
	assert.Zero(t, calc.ExtraKms)
	assert.Zero(t, calc.ExtraKmsAmount)
	assert.Zero(t, calc.ExtraHoursAmount)
	assert.Equal(t, 55000.0, calc.TotalAmount)
}

func TestCalculate_WithinAllowances(t *testing.T) {
	for days := 0; days <= 22; days++ {
		calc, err := Calculate(models.TripsheetSummary{TotalWorkingDays: days, TotalKms: 2200}, sedanRules())
		require.NoError(t, err)
		assert.Zero(t, calc.ExtraDaysAmount, "days=%d", days)
		assert.Zero(t, calc.ExtraKmsAmount, "days=%d", days)
	}
}

func TestCalculate_Monotonic(t *testing.T) {
	base := models.TripsheetSummary{TotalWorkingDays: 20, TotalKms: 2000, TotalExtraHours: 1}
	steps := []func(s *models.TripsheetSummary){
		func(s *models.TripsheetSummary) { s.TotalWorkingDays++ },
		func(s *models.TripsheetSummary) { s.TotalKms += 75 },
		func(s *models.TripsheetSummary) { s.TotalExtraHours += 0.7 },
	}

	for n, step := range steps {
		s := base
		prev, err := Calculate(s, sedanRules())
		require.NoError(t, err)
		for k := 0; k < 10; k++ {
			step(&s)
			next, err := Calculate(s, sedanRules())
			require.NoError(t, err)
			assert.GreaterOrEqual(t, next.TotalAmount, prev.TotalAmount, "axis %d step %d", n, k)
			prev = next
		}
	}
}

func TestCalculate_FractionalHours(t *testing.T) {
	rules := sedanRules()
	rules.ExtraHourRate = 75.5

	calc, err := Calculate(models.TripsheetSummary{TotalExtraHours: 7.3}, rules)
	require.NoError(t, err)
	assert.Equal(t, 551.15, calc.ExtraHoursAmount)
	assert.Equal(t, 55551.15, calc.TotalAmount)
}

func TestCalculate_ConfigurationErrors(t *testing.T) {
	tests := []struct {
		name  string
		rules *models.BillingRules
	}{
		{"no rules", nil},
		{"missing base amount", &models.BillingRules{BaseDays: i(22)}},
		{"missing base days", &models.BillingRules{BaseAmount: f(55000)}},
		{"negative base amount", &models.BillingRules{BaseAmount: f(-1), BaseDays: i(22)}},
		{"negative km rate", &models.BillingRules{BaseAmount: f(55000), BaseDays: i(22), ExtraKmRate: -3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Calculate(models.TripsheetSummary{TotalWorkingDays: 25}, tt.rules)
			require.Error(t, err)
			assert.True(t, apperror.HasCode(err, apperror.CodeConfiguration), err.Error())
		})
	}
}

func TestCalculate_ZeroBaseIsAllowed(t *testing.T) {
	calc, err := Calculate(models.TripsheetSummary{TotalWorkingDays: 2, TotalKms: 40},
		&models.BillingRules{BaseAmount: f(0), BaseDays: i(0), ExtraDayRate: 1000, ExtraKmRate: 5})
	require.NoError(t, err)
	assert.Equal(t, 2200.0, calc.TotalAmount)
}

func TestApplyAdjustment(t *testing.T) {
	calc, err := Calculate(models.TripsheetSummary{TotalWorkingDays: 25, TotalKms: 2600, TotalExtraHours: 3}, sedanRules())
	require.NoError(t, err)

	discounted, err := ApplyAdjustment(calc, -1800)
	require.NoError(t, err)
	assert.Equal(t, -1800.0, discounted.Adjustments)
	assert.Equal(t, 65000.0, discounted.TotalAmount)
	assert.Equal(t, 66800.0, discounted.SubTotal)

	// Adjustments replace, they do not accumulate.
	toll, err := ApplyAdjustment(discounted, 450.5)
	require.NoError(t, err)
	assert.Equal(t, 67250.5, toll.TotalAmount)

	_, err = ApplyAdjustment(calc, -70000)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}
