package services

import (
	"context"
	"io"
	"sync"
	"time"

	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/fleet-backoffice/internal/db"
	"github.com/ukydev/fleet-backoffice/internal/lock"
	"github.com/ukydev/fleet-backoffice/internal/models"
	"github.com/ukydev/fleet-backoffice/internal/tripsheet"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MockTripsheetCollection struct{ mock.Mock }

func (m *MockTripsheetCollection) InsertTripsheet(ctx context.Context, ts *models.Tripsheet) error {
	args := m.Called(ctx, ts)
	if args.Error(0) == nil {
		ts.ID = primitive.NewObjectID()
	}
	return args.Error(0)
}

func (m *MockTripsheetCollection) FindTripsheetByID(ctx context.Context, id primitive.ObjectID) (*models.Tripsheet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	// Hand out a copy so that callers mutating it do not change the fixture.
	ts := *args.Get(0).(*models.Tripsheet)
	ts.Entries = append([]models.DailyEntry(nil), ts.Entries...)
	return &ts, args.Error(1)
}

func (m *MockTripsheetCollection) FindTripsheets(ctx context.Context, filter db.TripsheetFilter) ([]models.Tripsheet, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Tripsheet), args.Error(1)
}

func (m *MockTripsheetCollection) ReplaceTripsheet(ctx context.Context, ts *models.Tripsheet) error {
	return m.Called(ctx, ts).Error(0)
}

type MockBillCollection struct{ mock.Mock }

func (m *MockBillCollection) InsertBill(ctx context.Context, bill *models.Bill) error {
	args := m.Called(ctx, bill)
	if args.Error(0) == nil {
		bill.ID = primitive.NewObjectID()
	}
	return args.Error(0)
}

func (m *MockBillCollection) FindBillByID(ctx context.Context, id primitive.ObjectID) (*models.Bill, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bill), args.Error(1)
}

func (m *MockBillCollection) FindBillByTripsheet(ctx context.Context, tripsheetID primitive.ObjectID) (*models.Bill, error) {
	args := m.Called(ctx, tripsheetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bill), args.Error(1)
}

func (m *MockBillCollection) UpdateBillCalculation(ctx context.Context, id primitive.ObjectID, calc models.BillingCalculation, notes string, now time.Time) error {
	return m.Called(ctx, id, calc, notes, now).Error(0)
}

type MockSalaryCollection struct{ mock.Mock }

func (m *MockSalaryCollection) InsertSalary(ctx context.Context, salary *models.DriverSalary) error {
	return m.Called(ctx, salary).Error(0)
}

func (m *MockSalaryCollection) FindSalaryByID(ctx context.Context, id primitive.ObjectID) (*models.DriverSalary, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DriverSalary), args.Error(1)
}

func (m *MockSalaryCollection) FindSalaryByTripsheet(ctx context.Context, tripsheetID primitive.ObjectID) (*models.DriverSalary, error) {
	args := m.Called(ctx, tripsheetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DriverSalary), args.Error(1)
}

type MockAdvanceCollection struct{ mock.Mock }

func (m *MockAdvanceCollection) InsertAdvance(ctx context.Context, adv *models.AdvanceSalary) error {
	args := m.Called(ctx, adv)
	if args.Error(0) == nil {
		adv.ID = primitive.NewObjectID()
	}
	return args.Error(0)
}

func (m *MockAdvanceCollection) FindAdvanceByID(ctx context.Context, id primitive.ObjectID) (*models.AdvanceSalary, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	adv := *args.Get(0).(*models.AdvanceSalary)
	return &adv, args.Error(1)
}

func (m *MockAdvanceCollection) FindAdvances(ctx context.Context, filter db.AdvanceFilter) ([]models.AdvanceSalary, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AdvanceSalary), args.Error(1)
}

func (m *MockAdvanceCollection) FindDeductibleAdvances(ctx context.Context, driverID primitive.ObjectID, month, year int) ([]models.AdvanceSalary, error) {
	args := m.Called(ctx, driverID, month, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AdvanceSalary), args.Error(1)
}

func (m *MockAdvanceCollection) MarkDeducted(ctx context.Context, ids []primitive.ObjectID, salaryID primitive.ObjectID, now time.Time) (int64, error) {
	args := m.Called(ctx, ids, salaryID, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAdvanceCollection) ReplaceAdvance(ctx context.Context, adv *models.AdvanceSalary) error {
	return m.Called(ctx, adv).Error(0)
}

type MockVehicleCollection struct{ mock.Mock }

func (m *MockVehicleCollection) InsertVehicle(ctx context.Context, vehicle *models.Vehicle) error {
	return m.Called(ctx, vehicle).Error(0)
}

func (m *MockVehicleCollection) FindVehicleByID(ctx context.Context, id primitive.ObjectID) (*models.Vehicle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vehicle), args.Error(1)
}

func (m *MockVehicleCollection) FindVehicles(ctx context.Context) ([]models.Vehicle, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Vehicle), args.Error(1)
}

type MockVehicleTypeCollection struct{ mock.Mock }

func (m *MockVehicleTypeCollection) InsertVehicleType(ctx context.Context, vt *models.VehicleType) error {
	return m.Called(ctx, vt).Error(0)
}

func (m *MockVehicleTypeCollection) FindVehicleTypeByID(ctx context.Context, id primitive.ObjectID) (*models.VehicleType, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VehicleType), args.Error(1)
}

func (m *MockVehicleTypeCollection) FindVehicleTypes(ctx context.Context) ([]models.VehicleType, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.VehicleType), args.Error(1)
}

func (m *MockVehicleTypeCollection) UpdateVehicleType(ctx context.Context, vt *models.VehicleType) error {
	return m.Called(ctx, vt).Error(0)
}

type MockDriverCollection struct{ mock.Mock }

func (m *MockDriverCollection) InsertDriver(ctx context.Context, driver *models.Driver) error {
	return m.Called(ctx, driver).Error(0)
}

func (m *MockDriverCollection) FindDriverByID(ctx context.Context, id primitive.ObjectID) (*models.Driver, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Driver), args.Error(1)
}

func (m *MockDriverCollection) FindDrivers(ctx context.Context) ([]models.Driver, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Driver), args.Error(1)
}

// fakeTx runs fn directly. With atomic set it reports transactional
// semantics, which is what the service branches on.
type fakeTx struct {
	atomic bool
	calls  int
}

func (t *fakeTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(ctx)
}

func (t *fakeTx) Atomic() bool { return t.atomic }

type fakeLocker struct {
	err      error
	released bool
}

func (l *fakeLocker) Obtain(context.Context, string, time.Duration) (lock.Release, error) {
	if l.err != nil {
		return nil, l.err
	}
	return func(context.Context) error {
		l.released = true
		return nil
	}, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, eventType string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
	return p.err
}

func (p *recordingPublisher) Close() {}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

var fixedNow = time.Date(2025, time.March, 2, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

var adminActor = Actor{UserID: "u-admin", Username: "admin", Role: models.RoleAdmin}

func driverActor(id primitive.ObjectID) Actor {
	return Actor{UserID: "u-driver", Username: "ravi", Role: models.RoleDriver, DriverID: &id}
}

type shift struct{ start, end string }

// marchTripsheet fills March 2025 with working days first and off days
// after. Working days run 08:00-17:00 unless long overrides the day.
func marchTripsheet(t *testing.T, driverID primitive.ObjectID, working, kmPerDay int, long map[int]shift) models.Tripsheet {
	t.Helper()
	ts, err := tripsheet.Initialize(primitive.NewObjectID(), driverID, 3, 2025, fixedNow)
	require.NoError(t, err)
	ts.ID = primitive.NewObjectID()

	for day := 1; day <= tripsheet.DaysInMonth(3, 2025); day++ {
		in := tripsheet.EntryInput{Status: models.EntryOff}
		if day <= working {
			sh, ok := long[day]
			if !ok {
				sh = shift{"08:00", "17:00"}
			}
			start := day * 1000
			end := start + kmPerDay
			in = tripsheet.EntryInput{
				Status:       models.EntryWorking,
				StartingKm:   &start,
				ClosingKm:    &end,
				StartingTime: sh.start,
				ClosingTime:  sh.end,
			}
		}
		_, err := tripsheet.SetEntry(&ts, time.Date(2025, time.March, day, 0, 0, 0, 0, time.UTC), in, fixedNow)
		require.NoError(t, err)
	}
	return ts
}

func approved(ts models.Tripsheet) models.Tripsheet {
	ts.Status = models.TripsheetApproved
	return ts
}
