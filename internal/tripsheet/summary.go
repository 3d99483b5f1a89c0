package tripsheet

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/ukydev/fleet-backoffice/internal/models"
	"github.com/ukydev/fleet-backoffice/internal/money"
)

// DaysInMonth returns the number of calendar days in month of year.
func DaysInMonth(month, year int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// NewEntries returns one pending entry for every day of the month.
func NewEntries(month, year int) []models.DailyEntry {
	n := DaysInMonth(month, year)
	entries := make([]models.DailyEntry, 0, n)
	for day := 1; day <= n; day++ {
		entries = append(entries, newEntry(time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), models.EntryPending))
	}
	return entries
}

// NormalizeEntries returns exactly one entry per calendar day of the month,
// ordered by date. Missing days are backfilled as pending; entries outside
// the month and repeated days (after the first) are dropped.
func NormalizeEntries(entries []models.DailyEntry, month, year int) []models.DailyEntry {
	byDay := make(map[int]models.DailyEntry, len(entries))
	for _, e := range entries {
		d := truncateDay(e.Date)
		if d.Year() != year || int(d.Month()) != month {
			continue
		}
		if _, seen := byDay[d.Day()]; seen {
			continue
		}
		e.Date = d
		byDay[d.Day()] = e
	}

	out := NewEntries(month, year)
	for i := range out {
		if e, ok := byDay[out[i].Date.Day()]; ok {
			out[i] = e
		}
	}
	return out
}

// RecomputeSummary folds entries into a summary in a single pass. Hours are
// rounded per entry when written, so the sums here are not re-rounded.
func RecomputeSummary(entries []models.DailyEntry) models.TripsheetSummary {
	var s models.TripsheetSummary
	hours, extra, driverExtra := decimal.Zero, decimal.Zero, decimal.Zero
	litres, fuelAmount := decimal.Zero, decimal.Zero

	for _, e := range entries {
		switch e.Status {
		case models.EntryOff:
			s.TotalOffDays++
			continue
		case models.EntryWorking:
			s.TotalWorkingDays++
		default:
			s.TotalPendingDays++
			continue
		}

		if e.TotalKm != nil {
			s.TotalKms += *e.TotalKm
		}
		hours = hours.Add(valueOf(e.TotalHours))
		extra = extra.Add(valueOf(e.ExtraHours))
		driverExtra = driverExtra.Add(valueOf(e.DriverExtraHours))
		litres = litres.Add(valueOf(e.FuelLitres))
		fuelAmount = fuelAmount.Add(valueOf(e.FuelAmount))
	}

	s.TotalHours = hours.InexactFloat64()
	s.TotalExtraHours = extra.InexactFloat64()
	s.TotalDriverExtraHours = driverExtra.InexactFloat64()
	s.TotalFuelLitres = litres.InexactFloat64()
	s.TotalFuelAmount = money.Amount(fuelAmount)
	return s
}

// Refresh normalizes the entries of ts and recomputes its summary. It is
// called on every read and write so a stored summary is never trusted.
func Refresh(ts *models.Tripsheet) {
	ts.Entries = NormalizeEntries(ts.Entries, ts.Month, ts.Year)
	ts.Summary = RecomputeSummary(ts.Entries)
}

func valueOf(f *float64) decimal.Decimal {
	if f == nil {
		return decimal.Zero
	}
	return decimal.NewFromFloat(*f)
}
