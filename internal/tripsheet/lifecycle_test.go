package tripsheet

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/fleet-backoffice/internal/apperror"
	"github.com/ukydev/fleet-backoffice/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var now = time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)

func newDraft(t *testing.T) models.Tripsheet {
	t.Helper()
	ts, err := Initialize(primitive.NewObjectID(), primitive.NewObjectID(), 2, 2025, now)
	require.NoError(t, err)
	return ts
}

func fillMonth(t *testing.T, ts *models.Tripsheet) {
	t.Helper()
	for d := 1; d <= DaysInMonth(ts.Month, ts.Year); d++ {
		in := EntryInput{Status: models.EntryOff}
		if d%7 != 0 {
			in = working(d*100, d*100+90, "09:00", "19:00")
		}
		_, err := SetEntry(ts, feb(d), in, now)
		require.NoError(t, err)
	}
}

func TestInitialize(t *testing.T) {
	ts := newDraft(t)

	assert.Equal(t, models.TripsheetDraft, ts.Status)
	assert.Len(t, ts.Entries, 28)
	assert.Equal(t, 28, ts.Summary.TotalPendingDays)
	assert.Equal(t, now, ts.CreatedAt)
}

func TestInitialize_Validation(t *testing.T) {
	_, err := Initialize(primitive.NilObjectID, primitive.NewObjectID(), 13, 1999, now)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields, "month")
	assert.Contains(t, appErr.Fields, "year")
	assert.Contains(t, appErr.Fields, "vehicle_id")
	assert.NotContains(t, appErr.Fields, "driver_id")
}

func TestSetEntry_UpdatesSummary(t *testing.T) {
	ts := newDraft(t)

	entry, err := SetEntry(&ts, feb(10), working(100, 250, "08:00", "21:00"), now)
	require.NoError(t, err)

	assert.Equal(t, 13.0, *entry.TotalHours)
	assert.Equal(t, entry, ts.Entries[9])
	assert.Equal(t, 1, ts.Summary.TotalWorkingDays)
	assert.Equal(t, 150, ts.Summary.TotalKms)
	assert.Equal(t, 3.0, ts.Summary.TotalExtraHours)
	assert.Equal(t, 1.0, ts.Summary.TotalDriverExtraHours)
}

func TestSetEntry_DateOutsideMonth(t *testing.T) {
	ts := newDraft(t)

	_, err := SetEntry(&ts, time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC), EntryInput{Status: models.EntryOff}, now)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestSetEntry_FrozenAfterSubmit(t *testing.T) {
	ts := newDraft(t)
	fillMonth(t, &ts)
	require.NoError(t, Submit(&ts, now))

	_, err := SetEntry(&ts, feb(1), EntryInput{Status: models.EntryOff}, now)
	assert.True(t, apperror.HasCode(err, apperror.CodePrecondition))
	assert.Equal(t, models.EntryWorking, ts.Entries[0].Status)
}

func TestSubmit_RejectsPendingDays(t *testing.T) {
	ts := newDraft(t)
	_, err := SetEntry(&ts, feb(1), EntryInput{Status: models.EntryOff}, now)
	require.NoError(t, err)

	err = Submit(&ts, now)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodePrecondition))
	assert.Contains(t, err.Error(), "27 pending days")
	assert.Equal(t, models.TripsheetDraft, ts.Status)
}

func TestLifecycle_SubmitApprove(t *testing.T) {
	ts := newDraft(t)
	fillMonth(t, &ts)

	require.NoError(t, Submit(&ts, now))
	assert.Equal(t, models.TripsheetSubmitted, ts.Status)
	assert.Equal(t, 24, ts.Summary.TotalWorkingDays)
	assert.Equal(t, 4, ts.Summary.TotalOffDays)

	require.NoError(t, Approve(&ts, "admin", now))
	assert.Equal(t, models.TripsheetApproved, ts.Status)
	assert.Equal(t, "admin", ts.ApprovedBy)

	assert.True(t, apperror.HasCode(Approve(&ts, "admin", now), apperror.CodePrecondition))
	assert.True(t, apperror.HasCode(Reject(&ts, "late", now), apperror.CodePrecondition))
}

func TestLifecycle_RejectReturnsToDraft(t *testing.T) {
	ts := newDraft(t)
	fillMonth(t, &ts)
	require.NoError(t, Submit(&ts, now))

	assert.True(t, apperror.HasCode(Reject(&ts, "  ", now), apperror.CodeValidation))

	require.NoError(t, Reject(&ts, "day 3 closing km looks wrong", now))
	assert.Equal(t, models.TripsheetDraft, ts.Status)
	assert.Equal(t, "day 3 closing km looks wrong", ts.RejectionReason)

	_, err := SetEntry(&ts, feb(3), working(300, 380, "09:00", "19:00"), now)
	assert.NoError(t, err)
}

func TestApprove_RequiresSubmitted(t *testing.T) {
	ts := newDraft(t)
	assert.True(t, apperror.HasCode(Approve(&ts, "admin", now), apperror.CodePrecondition))
}
