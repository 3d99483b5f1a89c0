package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/fleet-backoffice/internal/apperror"
	"github.com/ukydev/fleet-backoffice/internal/db"
	"github.com/ukydev/fleet-backoffice/internal/events"
	"github.com/ukydev/fleet-backoffice/internal/lock"
	"github.com/ukydev/fleet-backoffice/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type billingFixture struct {
	tripsheets   *MockTripsheetCollection
	bills        *MockBillCollection
	vehicles     *MockVehicleCollection
	vehicleTypes *MockVehicleTypeCollection
	locker       *fakeLocker
	events       *recordingPublisher
	service      *BillingService

	vehicle     models.Vehicle
	vehicleType models.VehicleType
}

func newBillingFixture() *billingFixture {
	baseAmount, baseDays := 55000.0, 22
	f := &billingFixture{
		tripsheets:   new(MockTripsheetCollection),
		bills:        new(MockBillCollection),
		vehicles:     new(MockVehicleCollection),
		vehicleTypes: new(MockVehicleTypeCollection),
		locker:       &fakeLocker{},
		events:       &recordingPublisher{},
	}
	f.vehicleType = models.VehicleType{
		ID:   primitive.NewObjectID(),
		Name: "Sedan",
		BillingRules: &models.BillingRules{
			BaseAmount:      &baseAmount,
			BaseDays:        &baseDays,
			ExtraDayRate:    2500,
			ExtraKmRate:     10,
			BaseHoursPerDay: 10,
			ExtraHourRate:   100,
		},
	}
	f.vehicle = models.Vehicle{
		ID:                 primitive.NewObjectID(),
		RegistrationNumber: "KA-01-AB-1234",
		VehicleTypeID:      f.vehicleType.ID,
		ClientName:         "Acme Logistics",
	}
	f.service = NewBillingService(f.tripsheets, f.bills, f.vehicles, f.vehicleTypes, f.locker, f.events, quietLogger(), "Fleet Services")
	f.service.now = fixedClock
	return f
}

// scenarioA is 25 working days, 2600 km and 3 billable extra hours.
func (f *billingFixture) scenarioA(t *testing.T) models.Tripsheet {
	ts := approved(marchTripsheet(t, primitive.NewObjectID(), 25, 104, map[int]shift{
		1: {"08:00", "19:00"},
		2: {"08:00", "19:00"},
		3: {"08:00", "19:00"},
	}))
	ts.VehicleID = f.vehicle.ID
	return ts
}

func (f *billingFixture) expectVehicle() {
	f.vehicles.On("FindVehicleByID", mock.Anything, f.vehicle.ID).Return(&f.vehicle, nil)
	f.vehicleTypes.On("FindVehicleTypeByID", mock.Anything, f.vehicleType.ID).Return(&f.vehicleType, nil)
}

func TestBillingService_Generate(t *testing.T) {
	f := newBillingFixture()
	ts := f.scenarioA(t)

	f.tripsheets.On("FindTripsheetByID", mock.Anything, ts.ID).Return(&ts, nil)
	f.bills.On("FindBillByTripsheet", mock.Anything, ts.ID).Return(nil, db.ErrNotFound)
	f.expectVehicle()
	f.bills.On("InsertBill", mock.Anything, mock.MatchedBy(func(b *models.Bill) bool {
		return b.TripsheetID == ts.ID && b.Calculation.TotalAmount == 66800
	})).Return(nil)

	bill, err := f.service.Generate(context.Background(), ts.ID, adminActor)
	require.NoError(t, err)

	assert.Equal(t, "INV-202503-KA01AB1234", bill.BillNumber)
	assert.Equal(t, models.BillGenerated, bill.Status)
	assert.Equal(t, "admin", bill.GeneratedBy)
	assert.Equal(t, fixedNow, bill.GeneratedAt)
	assert.Equal(t, 3, bill.Calculation.ExtraDays)
	assert.Equal(t, 400, bill.Calculation.ExtraKms)
	assert.Equal(t, 3.0, bill.Calculation.TotalExtraHours)
	assert.Equal(t, 66800.0, bill.Calculation.SubTotal)
	assert.Equal(t, []string{events.BillGenerated}, f.events.events)
	f.bills.AssertExpectations(t)
}

func TestBillingService_GenerateRequiresApproval(t *testing.T) {
	f := newBillingFixture()
	ts := f.scenarioA(t)
	ts.Status = models.TripsheetSubmitted
	f.tripsheets.On("FindTripsheetByID", mock.Anything, ts.ID).Return(&ts, nil)

	_, err := f.service.Generate(context.Background(), ts.ID, adminActor)

	assert.True(t, apperror.HasCode(err, apperror.CodePrecondition))
	f.bills.AssertNotCalled(t, "InsertBill", mock.Anything, mock.Anything)
}

func TestBillingService_GenerateDuplicate(t *testing.T) {
	t.Run("bill already on file", func(t *testing.T) {
		f := newBillingFixture()
		ts := f.scenarioA(t)
		f.tripsheets.On("FindTripsheetByID", mock.Anything, ts.ID).Return(&ts, nil)
		f.bills.On("FindBillByTripsheet", mock.Anything, ts.ID).Return(&models.Bill{ID: primitive.NewObjectID()}, nil)

		_, err := f.service.Generate(context.Background(), ts.ID, adminActor)

		assert.ErrorIs(t, err, apperror.ErrDuplicateBill)
		f.bills.AssertNotCalled(t, "InsertBill", mock.Anything, mock.Anything)
	})

	t.Run("lost the insert race", func(t *testing.T) {
		f := newBillingFixture()
		ts := f.scenarioA(t)
		f.tripsheets.On("FindTripsheetByID", mock.Anything, ts.ID).Return(&ts, nil)
		f.bills.On("FindBillByTripsheet", mock.Anything, ts.ID).Return(nil, db.ErrNotFound)
		f.expectVehicle()
		f.bills.On("InsertBill", mock.Anything, mock.Anything).Return(fmt.Errorf("insert bill: %w", db.ErrDuplicate))

		_, err := f.service.Generate(context.Background(), ts.ID, adminActor)

		assert.ErrorIs(t, err, apperror.ErrDuplicateBill)
		assert.Empty(t, f.events.events)
	})
}

func TestBillingService_GenerateConfiguration(t *testing.T) {
	t.Run("vehicle type has no rules", func(t *testing.T) {
		f := newBillingFixture()
		f.vehicleType.BillingRules = nil
		ts := f.scenarioA(t)
		f.tripsheets.On("FindTripsheetByID", mock.Anything, ts.ID).Return(&ts, nil)
		f.bills.On("FindBillByTripsheet", mock.Anything, ts.ID).Return(nil, db.ErrNotFound)
		f.expectVehicle()

		_, err := f.service.Generate(context.Background(), ts.ID, adminActor)

		assert.True(t, apperror.HasCode(err, apperror.CodeConfiguration))
	})

	t.Run("vehicle type missing", func(t *testing.T) {
		f := newBillingFixture()
		ts := f.scenarioA(t)
		f.tripsheets.On("FindTripsheetByID", mock.Anything, ts.ID).Return(&ts, nil)
		f.bills.On("FindBillByTripsheet", mock.Anything, ts.ID).Return(nil, db.ErrNotFound)
		f.vehicles.On("FindVehicleByID", mock.Anything, f.vehicle.ID).Return(&f.vehicle, nil)
		f.vehicleTypes.On("FindVehicleTypeByID", mock.Anything, f.vehicleType.ID).Return(nil, db.ErrNotFound)

		_, err := f.service.Generate(context.Background(), ts.ID, adminActor)

		assert.True(t, apperror.HasCode(err, apperror.CodeConfiguration))
	})
}

func TestBillingService_GenerateUnknownTripsheet(t *testing.T) {
	f := newBillingFixture()
	id := primitive.NewObjectID()
	f.tripsheets.On("FindTripsheetByID", mock.Anything, id).Return(nil, db.ErrNotFound)

	_, err := f.service.Generate(context.Background(), id, adminActor)

	assert.ErrorIs(t, err, apperror.ErrTripsheetNotFound)
}

func TestBillingService_Adjust(t *testing.T) {
	f := newBillingFixture()
	bill := &models.Bill{
		ID:          primitive.NewObjectID(),
		Calculation: models.BillingCalculation{SubTotal: 66800, TotalAmount: 66800},
	}
	f.bills.On("FindBillByID", mock.Anything, bill.ID).Return(bill, nil)
	f.bills.On("UpdateBillCalculation", mock.Anything, bill.ID, mock.MatchedBy(func(c models.BillingCalculation) bool {
		return c.Adjustments == -1800 && c.TotalAmount == 65000
	}), "toll refund", fixedNow).Return(nil)

	got, err := f.service.Adjust(context.Background(), bill.ID, -1800, "toll refund", adminActor)
	require.NoError(t, err)

	assert.Equal(t, 65000.0, got.Calculation.TotalAmount)
	assert.Equal(t, 66800.0, got.Calculation.SubTotal)
	assert.Equal(t, "toll refund", got.AdjustmentNotes)
	f.bills.AssertExpectations(t)
}

func TestBillingService_AdjustBelowZero(t *testing.T) {
	f := newBillingFixture()
	bill := &models.Bill{
		ID:          primitive.NewObjectID(),
		Calculation: models.BillingCalculation{SubTotal: 1000, TotalAmount: 1000},
	}
	f.bills.On("FindBillByID", mock.Anything, bill.ID).Return(bill, nil)

	_, err := f.service.Adjust(context.Background(), bill.ID, -1500, "", adminActor)

	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
	f.bills.AssertNotCalled(t, "UpdateBillCalculation", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBillingService_Invoice(t *testing.T) {
	f := newBillingFixture()
	bill := &models.Bill{
		ID:            primitive.NewObjectID(),
		BillNumber:    "INV-202503-KA01AB1234",
		VehicleID:     f.vehicle.ID,
		VehicleTypeID: f.vehicleType.ID,
		Month:         3,
		Year:          2025,
		Calculation:   models.BillingCalculation{SubTotal: 66800, TotalAmount: 66800},
	}
	f.bills.On("FindBillByID", mock.Anything, bill.ID).Return(bill, nil)
	f.expectVehicle()

	data, name, err := f.service.Invoice(context.Background(), bill.ID)
	require.NoError(t, err)

	assert.Equal(t, "INV-202503-KA01AB1234.pdf", name)
	assert.Equal(t, "%PDF-", string(data[:5]))
}

func TestBillingService_GenerateAll(t *testing.T) {
	f := newBillingFixture()
	billed := f.scenarioA(t)
	fresh := f.scenarioA(t)
	orphan := f.scenarioA(t)
	orphan.VehicleID = primitive.NewObjectID()

	f.tripsheets.On("FindTripsheets", mock.Anything, db.TripsheetFilter{Month: 3, Year: 2025, Status: models.TripsheetApproved}).
		Return([]models.Tripsheet{billed, fresh, orphan}, nil)
	f.bills.On("FindBillByTripsheet", mock.Anything, billed.ID).Return(&models.Bill{ID: primitive.NewObjectID()}, nil)
	f.bills.On("FindBillByTripsheet", mock.Anything, fresh.ID).Return(nil, db.ErrNotFound)
	f.bills.On("FindBillByTripsheet", mock.Anything, orphan.ID).Return(nil, db.ErrNotFound)
	f.expectVehicle()
	f.vehicles.On("FindVehicleByID", mock.Anything, orphan.VehicleID).Return(nil, db.ErrNotFound)
	f.bills.On("InsertBill", mock.Anything, mock.Anything).Return(nil)

	result, err := f.service.GenerateAll(context.Background(), 3, 2025, adminActor)

	var partial *apperror.PartialBatchFailure
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, 1, partial.Succeeded)
	require.NotNil(t, result)
	assert.NotEmpty(t, result.BatchID)
	assert.Len(t, result.Generated, 1)
	assert.Equal(t, []string{billed.ID.Hex()}, result.Skipped)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, orphan.ID.Hex(), result.Failed[0].ID)
	assert.Equal(t, apperror.CodeNotFound, result.Failed[0].Code)
	assert.True(t, f.locker.released)
}

func TestBillingService_GenerateAllLocking(t *testing.T) {
	t.Run("another run holds the period", func(t *testing.T) {
		f := newBillingFixture()
		f.locker.err = lock.ErrNotObtained

		result, err := f.service.GenerateAll(context.Background(), 3, 2025, adminActor)

		assert.Nil(t, result)
		assert.ErrorIs(t, err, apperror.ErrServiceBusy)
		f.tripsheets.AssertNotCalled(t, "FindTripsheets", mock.Anything, mock.Anything)
	})

	t.Run("lock backend down", func(t *testing.T) {
		f := newBillingFixture()
		f.locker.err = errors.New("dial tcp: connection refused")
		f.tripsheets.On("FindTripsheets", mock.Anything, mock.Anything).Return([]models.Tripsheet{}, nil)

		result, err := f.service.GenerateAll(context.Background(), 3, 2025, adminActor)

		require.NoError(t, err)
		assert.Empty(t, result.Generated)
		assert.False(t, f.locker.released)
	})

	t.Run("invalid period", func(t *testing.T) {
		f := newBillingFixture()

		_, err := f.service.GenerateAll(context.Background(), 13, 2025, adminActor)

		assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
	})
}
