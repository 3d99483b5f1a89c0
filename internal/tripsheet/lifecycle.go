package tripsheet

import (
	"fmt"
	"strings"
	"time"

	"github.com/ukydev/fleet-backoffice/internal/apperror"
	"github.com/ukydev/fleet-backoffice/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Initialize creates a draft tripsheet with every day of the month pending.
func Initialize(vehicleID, driverID primitive.ObjectID, month, year int, now time.Time) (models.Tripsheet, error) {
	fields := map[string]string{}
	if month < 1 || month > 12 {
		fields["month"] = "must be between 1 and 12"
	}
	if year < 2000 || year > 2100 {
		fields["year"] = "must be between 2000 and 2100"
	}
	if vehicleID.IsZero() {
		fields["vehicle_id"] = "is required"
	}
	if driverID.IsZero() {
		fields["driver_id"] = "is required"
	}
	if len(fields) > 0 {
		return models.Tripsheet{}, apperror.Validation(fields)
	}

	ts := models.Tripsheet{
		VehicleID: vehicleID,
		DriverID:  driverID,
		Month:     month,
		Year:      year,
		Status:    models.TripsheetDraft,
		Entries:   NewEntries(month, year),
		CreatedAt: now,
		UpdatedAt: now,
	}
	ts.Summary = RecomputeSummary(ts.Entries)
	return ts, nil
}

// SetEntry replaces the entry for date. Only draft tripsheets are editable.
func SetEntry(ts *models.Tripsheet, date time.Time, in EntryInput, now time.Time) (models.DailyEntry, error) {
	if ts.Status != models.TripsheetDraft {
		return models.DailyEntry{}, apperror.Precondition(fmt.Sprintf("entries can only be edited while the tripsheet is in draft (status is %s)", ts.Status))
	}
	day := truncateDay(date)
	if day.Year() != ts.Year || int(day.Month()) != ts.Month {
		return models.DailyEntry{}, apperror.InvalidField("date", fmt.Sprintf("must fall within %02d/%d", ts.Month, ts.Year))
	}

	entry, err := BuildEntry(day, in)
	if err != nil {
		return models.DailyEntry{}, err
	}

	ts.Entries = NormalizeEntries(ts.Entries, ts.Month, ts.Year)
	ts.Entries[day.Day()-1] = entry
	ts.Summary = RecomputeSummary(ts.Entries)
	ts.UpdatedAt = now
	return entry, nil
}

// Submit locks a draft tripsheet. Every day must be filled in.
func Submit(ts *models.Tripsheet, now time.Time) error {
	if ts.Status != models.TripsheetDraft {
		return apperror.Precondition(fmt.Sprintf("only draft tripsheets can be submitted (status is %s)", ts.Status))
	}
	Refresh(ts)
	if ts.Summary.TotalPendingDays > 0 {
		return apperror.Precondition(fmt.Sprintf("tripsheet has %d pending days", ts.Summary.TotalPendingDays))
	}
	ts.Status = models.TripsheetSubmitted
	ts.SubmittedAt = &now
	ts.UpdatedAt = now
	return nil
}

// Approve moves a submitted tripsheet to approved, after which billing and
// salary may be generated.
func Approve(ts *models.Tripsheet, approvedBy string, now time.Time) error {
	if ts.Status != models.TripsheetSubmitted {
		return apperror.Precondition(fmt.Sprintf("only submitted tripsheets can be approved (status is %s)", ts.Status))
	}
	ts.Status = models.TripsheetApproved
	ts.ApprovedAt = &now
	ts.ApprovedBy = approvedBy
	ts.UpdatedAt = now
	return nil
}

// Reject sends a submitted tripsheet back to draft for correction.
func Reject(ts *models.Tripsheet, reason string, now time.Time) error {
	if ts.Status != models.TripsheetSubmitted {
		return apperror.Precondition(fmt.Sprintf("only submitted tripsheets can be rejected (status is %s)", ts.Status))
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return apperror.InvalidField("reason", "is required")
	}
	ts.Status = models.TripsheetDraft
	ts.RejectedAt = &now
	ts.RejectionReason = reason
	ts.UpdatedAt = now
	return nil
}
