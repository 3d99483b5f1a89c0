package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-backoffice/internal/apperror"
	"github.com/ukydev/fleet-backoffice/internal/db"
	"github.com/ukydev/fleet-backoffice/internal/lock"
	"github.com/ukydev/fleet-backoffice/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const batchLockTTL = 5 * time.Minute

// BatchResult reports a generate-all run over one month.
type BatchResult struct {
	BatchID   string               `json:"batch_id"`
	Month     int                  `json:"month"`
	Year      int                  `json:"year"`
	Generated []string             `json:"generated"`
	Skipped   []string             `json:"skipped"`
	Failed    []apperror.ItemError `json:"failed"`
}

// Err returns a PartialBatchFailure when any item failed.
func (r *BatchResult) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	return &apperror.PartialBatchFailure{Succeeded: len(r.Generated), Failed: r.Failed}
}

type batchRunner struct {
	kind       string
	tripsheets db.TripsheetCollection
	locker     lock.Locker
	logger     log.FieldLogger
}

// run calls generate for every approved tripsheet of the period that done
// reports as not yet processed. One failure never stops the rest.
func (b batchRunner) run(
	ctx context.Context,
	month, year int,
	done func(ctx context.Context, tripsheetID primitive.ObjectID) (bool, error),
	generate func(ctx context.Context, ts models.Tripsheet) (primitive.ObjectID, error),
) (*BatchResult, error) {
	if month < 1 || month > 12 || year < 2000 || year > 2100 {
		return nil, apperror.InvalidField("period", "month must be 1-12 and year 2000-2100")
	}

	result := &BatchResult{
		BatchID:   uuid.NewString(),
		Month:     month,
		Year:      year,
		Generated: []string{},
		Skipped:   []string{},
		Failed:    []apperror.ItemError{},
	}
	logger := b.logger.WithFields(log.Fields{"batch_id": result.BatchID, "kind": b.kind, "month": month, "year": year})

	release, err := b.locker.Obtain(ctx, lock.PeriodKey(b.kind, month, year), batchLockTTL)
	switch {
	case errors.Is(err, lock.ErrNotObtained):
		return nil, apperror.ErrServiceBusy
	case err != nil:
		// Unique indexes still prevent duplicates, so carry on unlocked.
		logger.WithError(err).Warn("could not obtain batch lock; proceeding without it")
	default:
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				logger.WithError(err).Warn("failed to release batch lock")
			}
		}()
	}

	approved, err := b.tripsheets.FindTripsheets(ctx, db.TripsheetFilter{Month: month, Year: year, Status: models.TripsheetApproved})
	if err != nil {
		return nil, apperror.Internal(err)
	}

	for _, ts := range approved {
		id := ts.ID.Hex()
		already, err := done(ctx, ts.ID)
		if err != nil {
			result.Failed = append(result.Failed, apperror.NewItemError(id, err))
			continue
		}
		if already {
			result.Skipped = append(result.Skipped, id)
			continue
		}

		created, err := generate(ctx, ts)
		if err != nil {
			logger.WithError(err).WithField("tripsheet_id", id).Warn("batch item failed")
			result.Failed = append(result.Failed, apperror.NewItemError(id, err))
			continue
		}
		result.Generated = append(result.Generated, created.Hex())
	}

	logger.WithFields(log.Fields{
		"generated": len(result.Generated),
		"skipped":   len(result.Skipped),
		"failed":    len(result.Failed),
	}).Info("batch finished")
	return result, result.Err()
}
