// Package tripsheet holds the day-level rules of a monthly tripsheet:
// deriving and validating daily entries, backfilling missing days,
// aggregating the summary the calculators consume, and the
// draft/submitted/approved lifecycle.
package tripsheet

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/ukydev/fleet-backoffice/internal/apperror"
	"github.com/ukydev/fleet-backoffice/internal/models"
	"github.com/ukydev/fleet-backoffice/internal/money"
)

// Overage thresholds. They are separate business rules applied to the same
// raw hours and must not be derived from one another.
const (
	BillingHoursThreshold = 10 // client billing: hours above this per day are extra
	DriverHoursThreshold  = 12 // driver salary: hours above this per day are extra
)

const clockLayout = "15:04"

// EntryInput is what a driver submits for one day.
type EntryInput struct {
	Status       models.EntryStatus
	StartingKm   *int
	ClosingKm    *int
	StartingTime string
	ClosingTime  string
	FuelLitres   *float64
	FuelAmount   *float64
	Remarks      string
}

// BuildEntry validates in and derives the computed fields for date. Working
// days get totals and both overage figures; off and pending days carry no
// working fields.
func BuildEntry(date time.Time, in EntryInput) (models.DailyEntry, error) {
	entry := newEntry(date, in.Status)
	entry.Remarks = in.Remarks

	switch in.Status {
	case models.EntryPending, models.EntryOff:
		return entry, nil
	case models.EntryWorking:
	default:
		return models.DailyEntry{}, apperror.InvalidField("status", fmt.Sprintf("must be one of pending, working, off (got %q)", in.Status))
	}

	fields := map[string]string{}
	if in.StartingKm == nil {
		fields["starting_km"] = "is required for a working day"
	} else if *in.StartingKm < 0 {
		fields["starting_km"] = "must not be negative"
	}
	if in.ClosingKm == nil {
		fields["closing_km"] = "is required for a working day"
	}
	if in.StartingKm != nil && in.ClosingKm != nil && *in.ClosingKm <= *in.StartingKm {
		fields["closing_km"] = "must be greater than starting_km"
	}

	start, startErr := time.Parse(clockLayout, in.StartingTime)
	if in.StartingTime == "" {
		fields["starting_time"] = "is required for a working day"
	} else if startErr != nil {
		fields["starting_time"] = "must be HH:mm"
	}
	end, endErr := time.Parse(clockLayout, in.ClosingTime)
	if in.ClosingTime == "" {
		fields["closing_time"] = "is required for a working day"
	} else if endErr != nil {
		fields["closing_time"] = "must be HH:mm"
	}
	if startErr == nil && endErr == nil && start.Equal(end) {
		fields["closing_time"] = "must differ from starting_time"
	}

	if in.FuelLitres != nil && *in.FuelLitres < 0 {
		fields["fuel_litres"] = "must not be negative"
	}
	if in.FuelAmount != nil && *in.FuelAmount < 0 {
		fields["fuel_amount"] = "must not be negative"
	}
	if len(fields) > 0 {
		return models.DailyEntry{}, apperror.Validation(fields)
	}

	totalKm := *in.ClosingKm - *in.StartingKm
	hours := shiftHours(start, end)
	extra := money.PositivePart(hours.Sub(decimal.NewFromInt(BillingHoursThreshold)))
	driverExtra := money.PositivePart(hours.Sub(decimal.NewFromInt(DriverHoursThreshold)))

	entry.StartingKm = intPtr(*in.StartingKm)
	entry.ClosingKm = intPtr(*in.ClosingKm)
	entry.TotalKm = &totalKm
	entry.StartingTime = in.StartingTime
	entry.ClosingTime = in.ClosingTime
	entry.TotalHours = floatPtr(money.Hours(hours))
	entry.ExtraHours = floatPtr(money.Hours(extra))
	entry.DriverExtraHours = floatPtr(money.Hours(driverExtra))
	if in.FuelLitres != nil {
		entry.FuelLitres = floatPtr(*in.FuelLitres)
	}
	if in.FuelAmount != nil {
		entry.FuelAmount = floatPtr(*in.FuelAmount)
	}
	return entry, nil
}

// shiftHours returns the hours between two clock times rounded to one
// decimal. A closing time earlier than the starting time is on the next day.
func shiftHours(start, end time.Time) decimal.Decimal {
	d := end.Sub(start)
	if d < 0 {
		d += 24 * time.Hour
	}
	hours := decimal.NewFromInt(int64(d / time.Minute)).Div(decimal.NewFromInt(60))
	return hours.Round(1)
}

func newEntry(date time.Time, status models.EntryStatus) models.DailyEntry {
	day := truncateDay(date)
	return models.DailyEntry{
		Date:      day,
		DayOfWeek: day.Weekday().String(),
		DayType:   dayTypeOf(day),
		Status:    status,
	}
}

func dayTypeOf(day time.Time) models.DayType {
	switch day.Weekday() {
	case time.Saturday:
		return models.DaySaturday
	case time.Sunday:
		return models.DaySunday
	default:
		return models.DayWorking
	}
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
