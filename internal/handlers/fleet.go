package handlers

import (
	"errors"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-backoffice/internal/apperror"
	"github.com/ukydev/fleet-backoffice/internal/contextutil"
	"github.com/ukydev/fleet-backoffice/internal/db"
	"github.com/ukydev/fleet-backoffice/internal/models"
	"github.com/ukydev/fleet-backoffice/internal/response"
)

// billingRulesRequest leaves base_amount and base_days as pointers so a
// type can be saved before its rates are agreed. Billing refuses it until
// both are set.
type billingRulesRequest struct {
	BaseAmount      *float64 `json:"base_amount" validate:"omitempty,gte=0"`
	BaseDays        *int     `json:"base_days" validate:"omitempty,gte=0"`
	ExtraDayRate    float64  `json:"extra_day_rate" validate:"gte=0"`
	ExtraKmRate     float64  `json:"extra_km_rate" validate:"gte=0"`
	BaseHoursPerDay float64  `json:"base_hours_per_day" validate:"gte=0"`
	ExtraHourRate   float64  `json:"extra_hour_rate" validate:"gte=0"`
}

func (b *billingRulesRequest) rules() *models.BillingRules {
	if b == nil {
		return nil
	}
	return &models.BillingRules{
		BaseAmount:      b.BaseAmount,
		BaseDays:        b.BaseDays,
		ExtraDayRate:    b.ExtraDayRate,
		ExtraKmRate:     b.ExtraKmRate,
		BaseHoursPerDay: b.BaseHoursPerDay,
		ExtraHourRate:   b.ExtraHourRate,
	}
}

type vehicleTypeRequest struct {
	Name         string               `json:"name" validate:"required,max=100"`
	Description  string               `json:"description" validate:"max=500"`
	BillingRules *billingRulesRequest `json:"billing_rules"`
	IsActive     *bool                `json:"is_active"`
}

type vehicleRequest struct {
	RegistrationNumber string `json:"registration_number" validate:"required,max=20"`
	VehicleTypeID      string `json:"vehicle_type_id" validate:"required,mongodb"`
	Make               string `json:"make" validate:"max=50"`
	Model              string `json:"model" validate:"max=50"`
	Year               int    `json:"year" validate:"omitempty,min=1950,max=2100"`
	ClientName         string `json:"client_name" validate:"required,max=200"`
	Status             string `json:"status" validate:"omitempty,oneof=active inactive"`
}

type driverRequest struct {
	Name          string `json:"name" validate:"required,max=100"`
	Phone         string `json:"phone" validate:"max=20"`
	LicenseNumber string `json:"license_number" validate:"max=30"`
	Status        string `json:"status" validate:"omitempty,oneof=active inactive"`
}

// FleetHandler maintains vehicle types, vehicles and drivers.
type FleetHandler struct {
	vehicleTypes db.VehicleTypeCollection
	vehicles     db.VehicleCollection
	drivers      db.DriverCollection
	logger       log.FieldLogger
}

func NewFleetHandler(vehicleTypes db.VehicleTypeCollection, vehicles db.VehicleCollection, drivers db.DriverCollection, logger log.FieldLogger) *FleetHandler {
	return &FleetHandler{vehicleTypes: vehicleTypes, vehicles: vehicles, drivers: drivers, logger: logger}
}

func (h *FleetHandler) CreateVehicleType(w http.ResponseWriter, r *http.Request) {
	req, err := decode[vehicleTypeRequest](w, r)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	vt := &models.VehicleType{
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		BillingRules: req.BillingRules.rules(),
		IsActive:     req.IsActive == nil || *req.IsActive,
	}
	if err := h.vehicleTypes.InsertVehicleType(r.Context(), vt); err != nil {
		fail(w, r, h.logger, storeError(err, "vehicle type"))
		return
	}
	contextutil.Logger(r.Context(), h.logger).WithField("vehicle_type_id", vt.ID.Hex()).Info("vehicle type created")
	response.JSON(w, http.StatusCreated, vt)
}

func (h *FleetHandler) ListVehicleTypes(w http.ResponseWriter, r *http.Request) {
	list, err := h.vehicleTypes.FindVehicleTypes(r.Context())
	if err != nil {
		fail(w, r, h.logger, apperror.Internal(err))
		return
	}
	response.JSON(w, http.StatusOK, list)
}

func (h *FleetHandler) GetVehicleType(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	vt, err := h.vehicleTypes.FindVehicleTypeByID(r.Context(), id)
	if err != nil {
		fail(w, r, h.logger, notFound(err, apperror.ErrVehicleTypeNotFound))
		return
	}
	response.JSON(w, http.StatusOK, vt)
}

// UpdateVehicleType replaces a type's fields and rules. Bills already
// generated keep the figures they were computed with.
func (h *FleetHandler) UpdateVehicleType(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	req, err := decode[vehicleTypeRequest](w, r)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	vt, err := h.vehicleTypes.FindVehicleTypeByID(r.Context(), id)
	if err != nil {
		fail(w, r, h.logger, notFound(err, apperror.ErrVehicleTypeNotFound))
		return
	}

	vt.Name = strings.TrimSpace(req.Name)
	vt.Description = req.Description
	vt.BillingRules = req.BillingRules.rules()
	if req.IsActive != nil {
		vt.IsActive = *req.IsActive
	}
	if err := h.vehicleTypes.UpdateVehicleType(r.Context(), vt); err != nil {
		fail(w, r, h.logger, notFound(err, apperror.ErrVehicleTypeNotFound))
		return
	}
	response.JSON(w, http.StatusOK, vt)
}

func (h *FleetHandler) CreateVehicle(w http.ResponseWriter, r *http.Request) {
	req, err := decode[vehicleRequest](w, r)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	typeID, err := objectID("vehicle_type_id", req.VehicleTypeID)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	if _, err := h.vehicleTypes.FindVehicleTypeByID(r.Context(), typeID); err != nil {
		fail(w, r, h.logger, notFound(err, apperror.ErrVehicleTypeNotFound))
		return
	}

	vehicle := &models.Vehicle{
		RegistrationNumber: strings.ToUpper(strings.TrimSpace(req.RegistrationNumber)),
		VehicleTypeID:      typeID,
		Make:               req.Make,
		Model:              req.Model,
		Year:               req.Year,
		ClientName:         req.ClientName,
		Status:             statusOrActive(req.Status),
	}
	if err := h.vehicles.InsertVehicle(r.Context(), vehicle); err != nil {
		fail(w, r, h.logger, storeError(err, "vehicle "+vehicle.RegistrationNumber))
		return
	}
	contextutil.Logger(r.Context(), h.logger).WithField("vehicle_id", vehicle.ID.Hex()).Info("vehicle created")
	response.JSON(w, http.StatusCreated, vehicle)
}

func (h *FleetHandler) ListVehicles(w http.ResponseWriter, r *http.Request) {
	list, err := h.vehicles.FindVehicles(r.Context())
	if err != nil {
		fail(w, r, h.logger, apperror.Internal(err))
		return
	}
	response.JSON(w, http.StatusOK, list)
}

func (h *FleetHandler) GetVehicle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	vehicle, err := h.vehicles.FindVehicleByID(r.Context(), id)
	if err != nil {
		fail(w, r, h.logger, notFound(err, apperror.ErrVehicleNotFound))
		return
	}
	response.JSON(w, http.StatusOK, vehicle)
}

func (h *FleetHandler) CreateDriver(w http.ResponseWriter, r *http.Request) {
	req, err := decode[driverRequest](w, r)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	driver := &models.Driver{
		Name:          strings.TrimSpace(req.Name),
		Phone:         req.Phone,
		LicenseNumber: req.LicenseNumber,
		Status:        statusOrActive(req.Status),
	}
	if err := h.drivers.InsertDriver(r.Context(), driver); err != nil {
		fail(w, r, h.logger, storeError(err, "driver"))
		return
	}
	contextutil.Logger(r.Context(), h.logger).WithField("driver_id", driver.ID.Hex()).Info("driver created")
	response.JSON(w, http.StatusCreated, driver)
}

func (h *FleetHandler) ListDrivers(w http.ResponseWriter, r *http.Request) {
	list, err := h.drivers.FindDrivers(r.Context())
	if err != nil {
		fail(w, r, h.logger, apperror.Internal(err))
		return
	}
	response.JSON(w, http.StatusOK, list)
}

func (h *FleetHandler) GetDriver(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	driver, err := h.drivers.FindDriverByID(r.Context(), id)
	if err != nil {
		fail(w, r, h.logger, notFound(err, apperror.ErrDriverNotFound))
		return
	}
	response.JSON(w, http.StatusOK, driver)
}

func statusOrActive(s string) string {
	if s == "" {
		return "active"
	}
	return s
}

func notFound(err error, missing *apperror.AppError) error {
	if errors.Is(err, db.ErrNotFound) {
		return missing
	}
	return apperror.Internal(err)
}

func storeError(err error, what string) error {
	if errors.Is(err, db.ErrDuplicate) {
		return apperror.Precondition(what + " already exists")
	}
	return apperror.Internal(err)
}
