package services

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-backoffice/internal/apperror"
	"github.com/ukydev/fleet-backoffice/internal/billing"
	"github.com/ukydev/fleet-backoffice/internal/db"
	"github.com/ukydev/fleet-backoffice/internal/events"
	"github.com/ukydev/fleet-backoffice/internal/export"
	"github.com/ukydev/fleet-backoffice/internal/lock"
	"github.com/ukydev/fleet-backoffice/internal/models"
	"github.com/ukydev/fleet-backoffice/internal/tripsheet"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BillingService generates and maintains client bills.
type BillingService struct {
	tripsheets   db.TripsheetCollection
	bills        db.BillCollection
	vehicles     db.VehicleCollection
	vehicleTypes db.VehicleTypeCollection
	events       events.Publisher
	logger       log.FieldLogger
	batch        batchRunner
	company      string
	now          func() time.Time
}

func NewBillingService(
	tripsheets db.TripsheetCollection,
	bills db.BillCollection,
	vehicles db.VehicleCollection,
	vehicleTypes db.VehicleTypeCollection,
	locker lock.Locker,
	pub events.Publisher,
	logger log.FieldLogger,
	company string,
) *BillingService {
	return &BillingService{
		tripsheets:   tripsheets,
		bills:        bills,
		vehicles:     vehicles,
		vehicleTypes: vehicleTypes,
		events:       pub,
		logger:       logger,
		batch:        batchRunner{kind: "billing", tripsheets: tripsheets, locker: locker, logger: logger},
		company:      company,
		now:          utcNow,
	}
}

// Generate creates the bill for an approved tripsheet.
func (s *BillingService) Generate(ctx context.Context, tripsheetID primitive.ObjectID, actor Actor) (*models.Bill, error) {
	ts, err := s.tripsheets.FindTripsheetByID(ctx, tripsheetID)
	if err != nil {
		return nil, lookup(err, apperror.ErrTripsheetNotFound)
	}
	return s.generate(ctx, *ts, actor)
}

// GenerateAll bills every approved, unbilled tripsheet of the period.
func (s *BillingService) GenerateAll(ctx context.Context, month, year int, actor Actor) (*BatchResult, error) {
	return s.batch.run(ctx, month, year,
		func(ctx context.Context, id primitive.ObjectID) (bool, error) {
			_, err := s.bills.FindBillByTripsheet(ctx, id)
			return present(err)
		},
		func(ctx context.Context, ts models.Tripsheet) (primitive.ObjectID, error) {
			bill, err := s.generate(ctx, ts, actor)
			if err != nil {
				return primitive.NilObjectID, err
			}
			return bill.ID, nil
		},
	)
}

func (s *BillingService) generate(ctx context.Context, ts models.Tripsheet, actor Actor) (*models.Bill, error) {
	if ts.Status != models.TripsheetApproved {
		return nil, apperror.Precondition("bills can only be generated for approved tripsheets (status is " + string(ts.Status) + ")")
	}
	_, err := s.bills.FindBillByTripsheet(ctx, ts.ID)
	if found, err := present(err); err != nil {
		return nil, err
	} else if found {
		return nil, apperror.ErrDuplicateBill
	}

	vehicle, err := s.vehicles.FindVehicleByID(ctx, ts.VehicleID)
	if err != nil {
		return nil, lookup(err, apperror.ErrVehicleNotFound)
	}
	vehicleType, err := s.vehicleTypes.FindVehicleTypeByID(ctx, vehicle.VehicleTypeID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperror.Configuration("vehicle " + vehicle.RegistrationNumber + " has no vehicle type")
		}
		return nil, apperror.Internal(err)
	}

	tripsheet.Refresh(&ts)
	calc, err := billing.Calculate(ts.Summary, vehicleType.BillingRules)
	if err != nil {
		return nil, err
	}

	now := s.now()
	bill := &models.Bill{
		BillNumber:    billing.Number(vehicle.RegistrationNumber, ts.Month, ts.Year),
		TripsheetID:   ts.ID,
		VehicleID:     ts.VehicleID,
		VehicleTypeID: vehicleType.ID,
		Month:         ts.Month,
		Year:          ts.Year,
		Calculation:   calc,
		Status:        models.BillGenerated,
		GeneratedBy:   actor.Username,
		GeneratedAt:   now,
		UpdatedAt:     now,
	}
	if err := s.bills.InsertBill(ctx, bill); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return nil, apperror.ErrDuplicateBill
		}
		return nil, apperror.Internal(err)
	}

	s.logger.WithFields(log.Fields{
		"bill_id":      bill.ID.Hex(),
		"tripsheet_id": ts.ID.Hex(),
		"total":        calc.TotalAmount,
	}).Info("bill generated")
	publish(ctx, s.events, s.logger, events.BillGenerated, map[string]any{
		"bill_id": bill.ID.Hex(), "bill_number": bill.BillNumber, "total_amount": calc.TotalAmount,
	})
	return bill, nil
}

func (s *BillingService) Get(ctx context.Context, id primitive.ObjectID) (*models.Bill, error) {
	bill, err := s.bills.FindBillByID(ctx, id)
	if err != nil {
		return nil, lookup(err, apperror.ErrBillNotFound)
	}
	return bill, nil
}

// Adjust sets the signed manual adjustment on a bill. The calculated figures
// are left as generated.
func (s *BillingService) Adjust(ctx context.Context, id primitive.ObjectID, adjustments float64, notes string, actor Actor) (*models.Bill, error) {
	bill, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	calc, err := billing.ApplyAdjustment(bill.Calculation, adjustments)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.bills.UpdateBillCalculation(ctx, id, calc, notes, now); err != nil {
		return nil, lookup(err, apperror.ErrBillNotFound)
	}
	bill.Calculation = calc
	bill.AdjustmentNotes = notes
	bill.UpdatedAt = now

	s.logger.WithFields(log.Fields{"bill_id": id.Hex(), "adjustments": adjustments, "user": actor.Username}).Info("bill adjusted")
	return bill, nil
}

// Invoice renders the bill as a PDF.
func (s *BillingService) Invoice(ctx context.Context, id primitive.ObjectID) ([]byte, string, error) {
	bill, err := s.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	vehicle, err := s.vehicles.FindVehicleByID(ctx, bill.VehicleID)
	if err != nil {
		return nil, "", lookup(err, apperror.ErrVehicleNotFound)
	}
	typeName := ""
	if vt, err := s.vehicleTypes.FindVehicleTypeByID(ctx, bill.VehicleTypeID); err == nil {
		typeName = vt.Name
	}

	data, err := export.Invoice(*bill, export.InvoiceHeader{
		Company:       s.company,
		ClientName:    vehicle.ClientName,
		VehicleNumber: vehicle.RegistrationNumber,
		VehicleType:   typeName,
	})
	if err != nil {
		return nil, "", apperror.Internal(err)
	}
	return data, export.InvoiceFilename(bill.BillNumber), nil
}

// present turns the error of a find-by-tripsheet lookup into a presence
// flag.
func present(err error) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, db.ErrNotFound):
		return false, nil
	default:
		return false, apperror.Internal(err)
	}
}
