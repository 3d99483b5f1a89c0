package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/fleet-backoffice/internal/db"
	"github.com/ukydev/fleet-backoffice/internal/middleware"
	"github.com/ukydev/fleet-backoffice/internal/models"
	"github.com/ukydev/fleet-backoffice/internal/response"
	"github.com/ukydev/fleet-backoffice/internal/services"
	"github.com/ukydev/fleet-backoffice/internal/tripsheet"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockUserCollection is a mock implementation of UserCollection
type MockUserCollection struct {
	mock.Mock
}

func (m *MockUserCollection) InsertUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	if args.Error(0) == nil {
		user.ID = primitive.NewObjectID()
		user.IsActive = true
	}
	return args.Error(0)
}

func (m *MockUserCollection) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserCollection) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserCollection) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserCollection) UpdateUser(ctx context.Context, id string, user models.User) error {
	args := m.Called(ctx, id, user)
	return args.Error(0)
}

func (m *MockUserCollection) UpdateLastLogin(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockVehicleTypeCollection struct {
	mock.Mock
}

func (m *MockVehicleTypeCollection) InsertVehicleType(ctx context.Context, vt *models.VehicleType) error {
	args := m.Called(ctx, vt)
	if args.Error(0) == nil {
		vt.ID = primitive.NewObjectID()
	}
	return args.Error(0)
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
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.VehicleType), args.Error(1)
}

func (m *MockVehicleTypeCollection) UpdateVehicleType(ctx context.Context, vt *models.VehicleType) error {
	return m.Called(ctx, vt).Error(0)
}

type MockVehicleCollection struct {
	mock.Mock
}

func (m *MockVehicleCollection) InsertVehicle(ctx context.Context, vehicle *models.Vehicle) error {
	args := m.Called(ctx, vehicle)
	if args.Error(0) == nil {
		vehicle.ID = primitive.NewObjectID()
	}
	return args.Error(0)
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
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Vehicle), args.Error(1)
}

type MockDriverCollection struct {
	mock.Mock
}

func (m *MockDriverCollection) InsertDriver(ctx context.Context, driver *models.Driver) error {
	args := m.Called(ctx, driver)
	if args.Error(0) == nil {
		driver.ID = primitive.NewObjectID()
	}
	return args.Error(0)
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
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Driver), args.Error(1)
}

type MockTripsheetService struct {
	mock.Mock
}

func (m *MockTripsheetService) tripsheet(args mock.Arguments) (*models.Tripsheet, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tripsheet), args.Error(1)
}

func (m *MockTripsheetService) Create(ctx context.Context, vehicleID, driverID primitive.ObjectID, month, year int, actor services.Actor) (*models.Tripsheet, error) {
	return m.tripsheet(m.Called(ctx, vehicleID, driverID, month, year, actor))
}

func (m *MockTripsheetService) Get(ctx context.Context, id primitive.ObjectID, actor services.Actor) (*models.Tripsheet, error) {
	return m.tripsheet(m.Called(ctx, id, actor))
}

func (m *MockTripsheetService) List(ctx context.Context, filter db.TripsheetFilter, actor services.Actor) ([]models.Tripsheet, error) {
	args := m.Called(ctx, filter, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Tripsheet), args.Error(1)
}

func (m *MockTripsheetService) UpdateEntry(ctx context.Context, id primitive.ObjectID, date time.Time, in tripsheet.EntryInput, actor services.Actor) (*models.Tripsheet, error) {
	return m.tripsheet(m.Called(ctx, id, date, in, actor))
}

func (m *MockTripsheetService) Submit(ctx context.Context, id primitive.ObjectID, actor services.Actor) (*models.Tripsheet, error) {
	return m.tripsheet(m.Called(ctx, id, actor))
}

func (m *MockTripsheetService) Approve(ctx context.Context, id primitive.ObjectID, actor services.Actor) (*models.Tripsheet, error) {
	return m.tripsheet(m.Called(ctx, id, actor))
}

func (m *MockTripsheetService) Reject(ctx context.Context, id primitive.ObjectID, reason string, actor services.Actor) (*models.Tripsheet, error) {
	return m.tripsheet(m.Called(ctx, id, reason, actor))
}

func (m *MockTripsheetService) Export(ctx context.Context, id primitive.ObjectID) ([]byte, string, error) {
	args := m.Called(ctx, id)
	data, _ := args.Get(0).([]byte)
	return data, args.String(1), args.Error(2)
}

type MockBillingService struct {
	mock.Mock
}

func (m *MockBillingService) bill(args mock.Arguments) (*models.Bill, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bill), args.Error(1)
}

func (m *MockBillingService) Generate(ctx context.Context, tripsheetID primitive.ObjectID, actor services.Actor) (*models.Bill, error) {
	return m.bill(m.Called(ctx, tripsheetID, actor))
}

func (m *MockBillingService) GenerateAll(ctx context.Context, month, year int, actor services.Actor) (*services.BatchResult, error) {
	args := m.Called(ctx, month, year, actor)
	result, _ := args.Get(0).(*services.BatchResult)
	return result, args.Error(1)
}

func (m *MockBillingService) Get(ctx context.Context, id primitive.ObjectID) (*models.Bill, error) {
	return m.bill(m.Called(ctx, id))
}

func (m *MockBillingService) Adjust(ctx context.Context, id primitive.ObjectID, adjustments float64, notes string, actor services.Actor) (*models.Bill, error) {
	return m.bill(m.Called(ctx, id, adjustments, notes, actor))
}

func (m *MockBillingService) Invoice(ctx context.Context, id primitive.ObjectID) ([]byte, string, error) {
	args := m.Called(ctx, id)
	data, _ := args.Get(0).([]byte)
	return data, args.String(1), args.Error(2)
}

type MockSalaryService struct {
	mock.Mock
}

func (m *MockSalaryService) salary(args mock.Arguments) (*models.DriverSalary, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DriverSalary), args.Error(1)
}

func (m *MockSalaryService) Generate(ctx context.Context, tripsheetID primitive.ObjectID, notes string, actor services.Actor) (*models.DriverSalary, error) {
	return m.salary(m.Called(ctx, tripsheetID, notes, actor))
}

func (m *MockSalaryService) GenerateAll(ctx context.Context, month, year int, actor services.Actor) (*services.BatchResult, error) {
	args := m.Called(ctx, month, year, actor)
	result, _ := args.Get(0).(*services.BatchResult)
	return result, args.Error(1)
}

func (m *MockSalaryService) Get(ctx context.Context, id primitive.ObjectID) (*models.DriverSalary, error) {
	return m.salary(m.Called(ctx, id))
}

func (m *MockSalaryService) ReconcileAdvances(ctx context.Context, id primitive.ObjectID) (*services.ReconcileResult, error) {
	args := m.Called(ctx, id)
	result, _ := args.Get(0).(*services.ReconcileResult)
	return result, args.Error(1)
}

func (m *MockSalaryService) Slip(ctx context.Context, id primitive.ObjectID) ([]byte, string, error) {
	args := m.Called(ctx, id)
	data, _ := args.Get(0).([]byte)
	return data, args.String(1), args.Error(2)
}

type MockAdvanceService struct {
	mock.Mock
}

func (m *MockAdvanceService) advance(args mock.Arguments) (*models.AdvanceSalary, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AdvanceSalary), args.Error(1)
}

func (m *MockAdvanceService) Request(ctx context.Context, req services.AdvanceRequest, actor services.Actor) (*models.AdvanceSalary, error) {
	return m.advance(m.Called(ctx, req, actor))
}

func (m *MockAdvanceService) List(ctx context.Context, filter db.AdvanceFilter, actor services.Actor) ([]models.AdvanceSalary, error) {
	args := m.Called(ctx, filter, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AdvanceSalary), args.Error(1)
}

func (m *MockAdvanceService) Approve(ctx context.Context, id primitive.ObjectID, actor services.Actor) (*models.AdvanceSalary, error) {
	return m.advance(m.Called(ctx, id, actor))
}

func (m *MockAdvanceService) Reject(ctx context.Context, id primitive.ObjectID, reason string, actor services.Actor) (*models.AdvanceSalary, error) {
	return m.advance(m.Called(ctx, id, reason, actor))
}

func (m *MockAdvanceService) Pay(ctx context.Context, id primitive.ObjectID, actor services.Actor) (*models.AdvanceSalary, error) {
	return m.advance(m.Called(ctx, id, actor))
}

func quietLogger() *log.Logger {
	l := log.New()
	l.SetOutput(io.Discard)
	return l
}

var (
	managerClaims = &models.Claims{UserID: primitive.NewObjectID().Hex(), Username: "meera", Role: models.RoleManager}
	driverObjID   = primitive.NewObjectID()
	driverClaims  = &models.Claims{UserID: primitive.NewObjectID().Hex(), Username: "ravi", Role: models.RoleDriver, DriverID: driverObjID.Hex()}
)

// newRequest builds a request with an optional JSON body, path values and
// authenticated claims.
func newRequest(t *testing.T, method, target string, body any, claims *models.Claims, pathValues ...string) *http.Request {
	t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		rd = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, rd)
	for i := 0; i+1 < len(pathValues); i += 2 {
		req.SetPathValue(pathValues[i], pathValues[i+1])
	}
	if claims != nil {
		req = req.WithContext(context.WithValue(req.Context(), middleware.UserContextKey, claims))
	}
	return req
}

// errorBody decodes an error envelope.
func errorBody(t *testing.T, w *httptest.ResponseRecorder) response.ErrorBody {
	t.Helper()
	var env struct {
		Error response.ErrorBody `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env.Error
}
