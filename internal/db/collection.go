package db

import (
	"context"
	"time"

	"github.com/ukydev/fleet-backoffice/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VehicleTypeCollection stores vehicle types and their billing rules.
type VehicleTypeCollection interface {
	InsertVehicleType(ctx context.Context, vt *models.VehicleType) error
	FindVehicleTypeByID(ctx context.Context, id primitive.ObjectID) (*models.VehicleType, error)
	FindVehicleTypes(ctx context.Context) ([]models.VehicleType, error)
	UpdateVehicleType(ctx context.Context, vt *models.VehicleType) error
}

// VehicleCollection stores fleet vehicles.
type VehicleCollection interface {
	InsertVehicle(ctx context.Context, vehicle *models.Vehicle) error
	FindVehicleByID(ctx context.Context, id primitive.ObjectID) (*models.Vehicle, error)
	FindVehicles(ctx context.Context) ([]models.Vehicle, error)
}

// DriverCollection stores drivers.
type DriverCollection interface {
	InsertDriver(ctx context.Context, driver *models.Driver) error
	FindDriverByID(ctx context.Context, id primitive.ObjectID) (*models.Driver, error)
	FindDrivers(ctx context.Context) ([]models.Driver, error)
}

// TripsheetCollection stores monthly tripsheets with their daily entries.
type TripsheetCollection interface {
	InsertTripsheet(ctx context.Context, ts *models.Tripsheet) error
	FindTripsheetByID(ctx context.Context, id primitive.ObjectID) (*models.Tripsheet, error)
	FindTripsheets(ctx context.Context, filter TripsheetFilter) ([]models.Tripsheet, error)
	ReplaceTripsheet(ctx context.Context, ts *models.Tripsheet) error
}

// BillCollection stores generated bills. One bill exists per tripsheet.
type BillCollection interface {
	InsertBill(ctx context.Context, bill *models.Bill) error
	FindBillByID(ctx context.Context, id primitive.ObjectID) (*models.Bill, error)
	FindBillByTripsheet(ctx context.Context, tripsheetID primitive.ObjectID) (*models.Bill, error)
	UpdateBillCalculation(ctx context.Context, id primitive.ObjectID, calc models.BillingCalculation, notes string, now time.Time) error
}

// SalaryCollection stores generated driver salaries. One salary exists per
// tripsheet.
type SalaryCollection interface {
	InsertSalary(ctx context.Context, salary *models.DriverSalary) error
	FindSalaryByID(ctx context.Context, id primitive.ObjectID) (*models.DriverSalary, error)
	FindSalaryByTripsheet(ctx context.Context, tripsheetID primitive.ObjectID) (*models.DriverSalary, error)
}

// AdvanceCollection stores cash advances.
type AdvanceCollection interface {
	InsertAdvance(ctx context.Context, adv *models.AdvanceSalary) error
	FindAdvanceByID(ctx context.Context, id primitive.ObjectID) (*models.AdvanceSalary, error)
	FindAdvances(ctx context.Context, filter AdvanceFilter) ([]models.AdvanceSalary, error)
	// FindDeductibleAdvances returns paid advances for the driver and period
	// that no salary has consumed.
	FindDeductibleAdvances(ctx context.Context, driverID primitive.ObjectID, month, year int) ([]models.AdvanceSalary, error)
	// MarkDeducted links the given advances to salaryID. Only advances that
	// are still paid and unlinked are touched, so it is safe to repeat. It
	// returns the number of advances changed.
	MarkDeducted(ctx context.Context, ids []primitive.ObjectID, salaryID primitive.ObjectID, now time.Time) (int64, error)
	ReplaceAdvance(ctx context.Context, adv *models.AdvanceSalary) error
}
