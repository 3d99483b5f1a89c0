package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-backoffice/internal/apperror"
	"github.com/ukydev/fleet-backoffice/internal/db"
	"github.com/ukydev/fleet-backoffice/internal/events"
	"github.com/ukydev/fleet-backoffice/internal/export"
	"github.com/ukydev/fleet-backoffice/internal/lock"
	"github.com/ukydev/fleet-backoffice/internal/models"
	"github.com/ukydev/fleet-backoffice/internal/salary"
	"github.com/ukydev/fleet-backoffice/internal/tripsheet"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var errAdvancesChanged = apperror.Precondition("advances changed while the salary was being generated, retry")

// SalaryService generates driver salaries and nets off paid advances.
type SalaryService struct {
	tripsheets db.TripsheetCollection
	salaries   db.SalaryCollection
	advances   db.AdvanceCollection
	drivers    db.DriverCollection
	vehicles   db.VehicleCollection
	tx         db.Transactor
	events     events.Publisher
	logger     log.FieldLogger
	batch      batchRunner
	company    string
	now        func() time.Time
}

func NewSalaryService(
	tripsheets db.TripsheetCollection,
	salaries db.SalaryCollection,
	advances db.AdvanceCollection,
	drivers db.DriverCollection,
	vehicles db.VehicleCollection,
	tx db.Transactor,
	locker lock.Locker,
	pub events.Publisher,
	logger log.FieldLogger,
	company string,
) *SalaryService {
	return &SalaryService{
		tripsheets: tripsheets,
		salaries:   salaries,
		advances:   advances,
		drivers:    drivers,
		vehicles:   vehicles,
		tx:         tx,
		events:     pub,
		logger:     logger,
		batch:      batchRunner{kind: "salary", tripsheets: tripsheets, locker: locker, logger: logger},
		company:    company,
		now:        utcNow,
	}
}

// ReconcileResult reports a re-run of advance marking for one salary.
type ReconcileResult struct {
	SalaryID string `json:"salary_id"`
	Expected int    `json:"expected"`
	Marked   int64  `json:"marked"`
}

// Generate creates the salary for an approved tripsheet and marks the paid
// advances it consumed as deducted.
func (s *SalaryService) Generate(ctx context.Context, tripsheetID primitive.ObjectID, notes string, actor Actor) (*models.DriverSalary, error) {
	ts, err := s.tripsheets.FindTripsheetByID(ctx, tripsheetID)
	if err != nil {
		return nil, lookup(err, apperror.ErrTripsheetNotFound)
	}
	return s.generate(ctx, *ts, notes, actor)
}

// GenerateAll pays every approved tripsheet of the period that has no
// salary yet.
func (s *SalaryService) GenerateAll(ctx context.Context, month, year int, actor Actor) (*BatchResult, error) {
	return s.batch.run(ctx, month, year,
		func(ctx context.Context, id primitive.ObjectID) (bool, error) {
			_, err := s.salaries.FindSalaryByTripsheet(ctx, id)
			return present(err)
		},
		func(ctx context.Context, ts models.Tripsheet) (primitive.ObjectID, error) {
			rec, err := s.generate(ctx, ts, "", actor)
			if err != nil {
				return primitive.NilObjectID, err
			}
			return rec.ID, nil
		},
	)
}

func (s *SalaryService) generate(ctx context.Context, ts models.Tripsheet, notes string, actor Actor) (*models.DriverSalary, error) {
	if ts.Status != models.TripsheetApproved {
		return nil, apperror.Precondition("salaries can only be generated for approved tripsheets (status is " + string(ts.Status) + ")")
	}
	_, err := s.salaries.FindSalaryByTripsheet(ctx, ts.ID)
	if found, err := present(err); err != nil {
		return nil, err
	} else if found {
		return nil, apperror.ErrDuplicateSalary
	}

	tripsheet.Refresh(&ts)
	gross := salary.Calculate(ts.Summary)
	now := s.now()
	logger := s.logger.WithField("tripsheet_id", ts.ID.Hex())

	rec := &models.DriverSalary{
		ID:          primitive.NewObjectID(),
		TripsheetID: ts.ID,
		DriverID:    ts.DriverID,
		VehicleID:   ts.VehicleID,
		Month:       ts.Month,
		Year:        ts.Year,
		Notes:       notes,
		GeneratedBy: actor.Username,
		GeneratedAt: now,
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		found, err := s.advances.FindDeductibleAdvances(ctx, ts.DriverID, ts.Month, ts.Year)
		if err != nil {
			return err
		}
		consumed := salary.Select(found, ts.DriverID, ts.Month, ts.Year)
		rec.Calculation = salary.ApplyAdvances(gross, consumed)
		rec.DeductedAdvanceIDs = salary.IDs(consumed)

		if err := s.salaries.InsertSalary(ctx, rec); err != nil {
			return err
		}

		marked, err := s.advances.MarkDeducted(ctx, rec.DeductedAdvanceIDs, rec.ID, now)
		if s.tx.Atomic() {
			if err != nil {
				return err
			}
			if marked != int64(len(consumed)) {
				return errAdvancesChanged
			}
			return nil
		}

		// Without transactions the salary is already committed. Leave it in
		// place; ReconcileAdvances repeats the marking.
		if err != nil || marked != int64(len(consumed)) {
			logger.WithError(err).WithFields(log.Fields{
				"salary_id": rec.ID.Hex(),
				"expected":  len(consumed),
				"marked":    marked,
			}).Warn("advance marking incomplete; reconcile the salary")
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, db.ErrDuplicate):
			return nil, apperror.ErrDuplicateSalary
		case errors.Is(err, errAdvancesChanged):
			return nil, errAdvancesChanged
		}
		return nil, apperror.Internal(err)
	}

	logger.WithFields(log.Fields{
		"salary_id":   rec.ID.Hex(),
		"total":       rec.Calculation.TotalSalary,
		"deduction":   rec.Calculation.AdvanceDeduction,
		"final":       rec.Calculation.FinalSalary,
		"advance_ids": len(rec.DeductedAdvanceIDs),
	}).Info("salary generated")

	publish(ctx, s.events, s.logger, events.SalaryGenerated, map[string]any{
		"salary_id": rec.ID.Hex(), "driver_id": rec.DriverID.Hex(), "final_salary": rec.Calculation.FinalSalary,
	})
	for _, id := range rec.DeductedAdvanceIDs {
		publish(ctx, s.events, s.logger, events.AdvanceDeducted, map[string]any{
			"advance_id": id.Hex(), "salary_id": rec.ID.Hex(),
		})
	}
	return rec, nil
}

func (s *SalaryService) Get(ctx context.Context, id primitive.ObjectID) (*models.DriverSalary, error) {
	rec, err := s.salaries.FindSalaryByID(ctx, id)
	if err != nil {
		return nil, lookup(err, apperror.ErrSalaryNotFound)
	}
	return rec, nil
}

// ReconcileAdvances repeats the advance marking for a salary. Advances that
// are already marked are left alone, so it can be run any number of times.
func (s *SalaryService) ReconcileAdvances(ctx context.Context, id primitive.ObjectID) (*ReconcileResult, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	marked, err := s.advances.MarkDeducted(ctx, rec.DeductedAdvanceIDs, rec.ID, s.now())
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("mark advances for salary %s: %w", id.Hex(), err))
	}
	if marked > 0 {
		s.logger.WithFields(log.Fields{"salary_id": id.Hex(), "marked": marked}).Info("advances reconciled")
	}
	return &ReconcileResult{SalaryID: id.Hex(), Expected: len(rec.DeductedAdvanceIDs), Marked: marked}, nil
}

// Slip renders the salary slip PDF.
func (s *SalaryService) Slip(ctx context.Context, id primitive.ObjectID) ([]byte, string, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	driver, err := s.drivers.FindDriverByID(ctx, rec.DriverID)
	if err != nil {
		return nil, "", lookup(err, apperror.ErrDriverNotFound)
	}
	vehicle, err := s.vehicles.FindVehicleByID(ctx, rec.VehicleID)
	if err != nil {
		return nil, "", lookup(err, apperror.ErrVehicleNotFound)
	}

	data, err := export.SalarySlip(*rec, export.SlipHeader{
		Company:       s.company,
		DriverName:    driver.Name,
		VehicleNumber: vehicle.RegistrationNumber,
	})
	if err != nil {
		return nil, "", apperror.Internal(err)
	}
	return data, export.SlipFilename(driver.Name, rec.Month, rec.Year), nil
}
