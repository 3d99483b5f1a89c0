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
	"github.com/ukydev/fleet-backoffice/internal/models"
	"github.com/ukydev/fleet-backoffice/internal/tripsheet"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TripsheetService runs the monthly tripsheet lifecycle.
type TripsheetService struct {
	tripsheets db.TripsheetCollection
	vehicles   db.VehicleCollection
	drivers    db.DriverCollection
	events     events.Publisher
	logger     log.FieldLogger
	now        func() time.Time
}

func NewTripsheetService(tripsheets db.TripsheetCollection, vehicles db.VehicleCollection, drivers db.DriverCollection, pub events.Publisher, logger log.FieldLogger) *TripsheetService {
	return &TripsheetService{
		tripsheets: tripsheets,
		vehicles:   vehicles,
		drivers:    drivers,
		events:     pub,
		logger:     logger,
		now:        utcNow,
	}
}

// Create opens the tripsheet for a vehicle's month with every day pending.
func (s *TripsheetService) Create(ctx context.Context, vehicleID, driverID primitive.ObjectID, month, year int, actor Actor) (*models.Tripsheet, error) {
	if !actor.owns(driverID) {
		return nil, apperror.ErrForbidden
	}
	ts, err := tripsheet.Initialize(vehicleID, driverID, month, year, s.now())
	if err != nil {
		return nil, err
	}
	if _, err := s.vehicles.FindVehicleByID(ctx, vehicleID); err != nil {
		return nil, lookup(err, apperror.ErrVehicleNotFound)
	}
	if _, err := s.drivers.FindDriverByID(ctx, driverID); err != nil {
		return nil, lookup(err, apperror.ErrDriverNotFound)
	}

	if err := s.tripsheets.InsertTripsheet(ctx, &ts); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return nil, apperror.Precondition(fmt.Sprintf("a tripsheet for this vehicle already exists for %02d/%d", month, year))
		}
		return nil, apperror.Internal(err)
	}

	s.logger.WithFields(log.Fields{"tripsheet_id": ts.ID.Hex(), "month": month, "year": year}).Info("tripsheet created")
	return &ts, nil
}

// Get loads a tripsheet with its summary recomputed from the entries.
func (s *TripsheetService) Get(ctx context.Context, id primitive.ObjectID, actor Actor) (*models.Tripsheet, error) {
	ts, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.owns(ts.DriverID) {
		return nil, apperror.ErrForbidden
	}
	return ts, nil
}

// List returns matching tripsheets. Drivers only ever see their own.
func (s *TripsheetService) List(ctx context.Context, filter db.TripsheetFilter, actor Actor) ([]models.Tripsheet, error) {
	if actor.IsDriver() {
		if actor.DriverID == nil {
			return nil, apperror.ErrForbidden
		}
		filter.DriverID = actor.DriverID
	}
	list, err := s.tripsheets.FindTripsheets(ctx, filter)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	for i := range list {
		tripsheet.Refresh(&list[i])
	}
	return list, nil
}

// UpdateEntry records one day of a draft tripsheet.
func (s *TripsheetService) UpdateEntry(ctx context.Context, id primitive.ObjectID, date time.Time, in tripsheet.EntryInput, actor Actor) (*models.Tripsheet, error) {
	return s.mutate(ctx, id, actor, func(ts *models.Tripsheet) error {
		_, err := tripsheet.SetEntry(ts, date, in, s.now())
		return err
	})
}

// Submit locks the tripsheet for review.
func (s *TripsheetService) Submit(ctx context.Context, id primitive.ObjectID, actor Actor) (*models.Tripsheet, error) {
	ts, err := s.mutate(ctx, id, actor, func(ts *models.Tripsheet) error {
		return tripsheet.Submit(ts, s.now())
	})
	if err != nil {
		return nil, err
	}
	publish(ctx, s.events, s.logger, events.TripsheetSubmitted, map[string]any{
		"tripsheet_id": ts.ID.Hex(), "month": ts.Month, "year": ts.Year,
	})
	return ts, nil
}

// Approve releases a submitted tripsheet for billing and salary.
func (s *TripsheetService) Approve(ctx context.Context, id primitive.ObjectID, actor Actor) (*models.Tripsheet, error) {
	ts, err := s.mutate(ctx, id, actor, func(ts *models.Tripsheet) error {
		return tripsheet.Approve(ts, actor.Username, s.now())
	})
	if err != nil {
		return nil, err
	}
	publish(ctx, s.events, s.logger, events.TripsheetApproved, map[string]any{
		"tripsheet_id": ts.ID.Hex(), "approved_by": ts.ApprovedBy,
	})
	return ts, nil
}

// Reject returns a submitted tripsheet to its driver.
func (s *TripsheetService) Reject(ctx context.Context, id primitive.ObjectID, reason string, actor Actor) (*models.Tripsheet, error) {
	return s.mutate(ctx, id, actor, func(ts *models.Tripsheet) error {
		return tripsheet.Reject(ts, reason, s.now())
	})
}

// Export renders the tripsheet as an Excel workbook.
func (s *TripsheetService) Export(ctx context.Context, id primitive.ObjectID) ([]byte, string, error) {
	ts, err := s.load(ctx, id)
	if err != nil {
		return nil, "", err
	}
	vehicle, err := s.vehicles.FindVehicleByID(ctx, ts.VehicleID)
	if err != nil {
		return nil, "", lookup(err, apperror.ErrVehicleNotFound)
	}
	driver, err := s.drivers.FindDriverByID(ctx, ts.DriverID)
	if err != nil {
		return nil, "", lookup(err, apperror.ErrDriverNotFound)
	}

	data, err := export.TripsheetWorkbook(*ts, export.TripsheetHeader{
		VehicleNumber: vehicle.RegistrationNumber,
		DriverName:    driver.Name,
	})
	if err != nil {
		return nil, "", apperror.Internal(err)
	}
	return data, export.TripsheetFilename(vehicle.RegistrationNumber, ts.Month, ts.Year), nil
}

func (s *TripsheetService) load(ctx context.Context, id primitive.ObjectID) (*models.Tripsheet, error) {
	ts, err := s.tripsheets.FindTripsheetByID(ctx, id)
	if err != nil {
		return nil, lookup(err, apperror.ErrTripsheetNotFound)
	}
	tripsheet.Refresh(ts)
	return ts, nil
}

func (s *TripsheetService) mutate(ctx context.Context, id primitive.ObjectID, actor Actor, change func(ts *models.Tripsheet) error) (*models.Tripsheet, error) {
	ts, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.owns(ts.DriverID) {
		return nil, apperror.ErrForbidden
	}
	if err := change(ts); err != nil {
		return nil, err
	}
	if err := s.tripsheets.ReplaceTripsheet(ctx, ts); err != nil {
		return nil, lookup(err, apperror.ErrTripsheetNotFound)
	}
	s.logger.WithFields(log.Fields{"tripsheet_id": ts.ID.Hex(), "status": ts.Status, "user": actor.Username}).Debug("tripsheet updated")
	return ts, nil
}
