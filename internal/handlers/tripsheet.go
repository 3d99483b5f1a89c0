package handlers

import (
	"context"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-backoffice/internal/apperror"
	"github.com/ukydev/fleet-backoffice/internal/db"
	"github.com/ukydev/fleet-backoffice/internal/models"
	"github.com/ukydev/fleet-backoffice/internal/response"
	"github.com/ukydev/fleet-backoffice/internal/services"
	"github.com/ukydev/fleet-backoffice/internal/tripsheet"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TripsheetService is the tripsheet workflow used by TripsheetHandler.
type TripsheetService interface {
	Create(ctx context.Context, vehicleID, driverID primitive.ObjectID, month, year int, actor services.Actor) (*models.Tripsheet, error)
	Get(ctx context.Context, id primitive.ObjectID, actor services.Actor) (*models.Tripsheet, error)
	List(ctx context.Context, filter db.TripsheetFilter, actor services.Actor) ([]models.Tripsheet, error)
	UpdateEntry(ctx context.Context, id primitive.ObjectID, date time.Time, in tripsheet.EntryInput, actor services.Actor) (*models.Tripsheet, error)
	Submit(ctx context.Context, id primitive.ObjectID, actor services.Actor) (*models.Tripsheet, error)
	Approve(ctx context.Context, id primitive.ObjectID, actor services.Actor) (*models.Tripsheet, error)
	Reject(ctx context.Context, id primitive.ObjectID, reason string, actor services.Actor) (*models.Tripsheet, error)
	Export(ctx context.Context, id primitive.ObjectID) ([]byte, string, error)
}

type createTripsheetRequest struct {
	VehicleID string `json:"vehicle_id" validate:"required,mongodb"`
	DriverID  string `json:"driver_id" validate:"omitempty,mongodb"`
	Month     int    `json:"month" validate:"required,min=1,max=12"`
	Year      int    `json:"year" validate:"required,min=2000,max=2100"`
}

type entryRequest struct {
	Status       string   `json:"status" validate:"required,oneof=pending working off"`
	StartingKm   *int     `json:"starting_km"`
	ClosingKm    *int     `json:"closing_km"`
	StartingTime string   `json:"starting_time"`
	ClosingTime  string   `json:"closing_time"`
	FuelLitres   *float64 `json:"fuel_litres"`
	FuelAmount   *float64 `json:"fuel_amount"`
	Remarks      string   `json:"remarks" validate:"max=500"`
}

type reasonRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

type TripsheetHandler struct {
	service TripsheetService
	logger  log.FieldLogger
}

func NewTripsheetHandler(service TripsheetService, logger log.FieldLogger) *TripsheetHandler {
	return &TripsheetHandler{service: service, logger: logger}
}

// Create opens a month. Drivers may leave driver_id out to use their own.
func (h *TripsheetHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, err := actor(r)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	req, err := decode[createTripsheetRequest](w, r)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}

	vehicleID, err := objectID("vehicle_id", req.VehicleID)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	var driverID primitive.ObjectID
	switch {
	case req.DriverID != "":
		if driverID, err = objectID("driver_id", req.DriverID); err != nil {
			fail(w, r, h.logger, err)
			return
		}
	case caller.DriverID != nil:
		driverID = *caller.DriverID
	default:
		fail(w, r, h.logger, apperror.InvalidField("driver_id", "is required"))
		return
	}

	ts, err := h.service.Create(r.Context(), vehicleID, driverID, req.Month, req.Year, caller)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	response.JSON(w, http.StatusCreated, ts)
}

func (h *TripsheetHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, err := actor(r)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	filter, err := tripsheetFilter(r)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	list, err := h.service.List(r.Context(), filter, caller)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, list)
}

func tripsheetFilter(r *http.Request) (db.TripsheetFilter, error) {
	var (
		f   db.TripsheetFilter
		err error
	)
	if f.Month, err = queryInt(r, "month"); err != nil {
		return f, err
	}
	if f.Year, err = queryInt(r, "year"); err != nil {
		return f, err
	}
	switch status := models.TripsheetStatus(r.URL.Query().Get("status")); status {
	case "", models.TripsheetDraft, models.TripsheetSubmitted, models.TripsheetApproved:
		f.Status = status
	default:
		return f, apperror.InvalidField("status", "must be one of draft, submitted, approved")
	}
	if f.DriverID, err = optionalID(r, "driver_id"); err != nil {
		return f, err
	}
	if f.VehicleID, err = optionalID(r, "vehicle_id"); err != nil {
		return f, err
	}
	return f, nil
}

func (h *TripsheetHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.withID(w, r, func(id primitive.ObjectID, caller services.Actor) (*models.Tripsheet, error) {
		return h.service.Get(r.Context(), id, caller)
	})
}

// UpdateEntry records the day named by the {date} path segment.
func (h *TripsheetHandler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	date, err := parseDate("date", r.PathValue("date"))
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	req, err := decode[entryRequest](w, r)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	in := tripsheet.EntryInput{
		Status:       models.EntryStatus(req.Status),
		StartingKm:   req.StartingKm,
		ClosingKm:    req.ClosingKm,
		StartingTime: req.StartingTime,
		ClosingTime:  req.ClosingTime,
		FuelLitres:   req.FuelLitres,
		FuelAmount:   req.FuelAmount,
		Remarks:      req.Remarks,
	}
	h.withID(w, r, func(id primitive.ObjectID, caller services.Actor) (*models.Tripsheet, error) {
		return h.service.UpdateEntry(r.Context(), id, date, in, caller)
	})
}

func (h *TripsheetHandler) Submit(w http.ResponseWriter, r *http.Request) {
	h.withID(w, r, func(id primitive.ObjectID, caller services.Actor) (*models.Tripsheet, error) {
		return h.service.Submit(r.Context(), id, caller)
	})
}

func (h *TripsheetHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.withID(w, r, func(id primitive.ObjectID, caller services.Actor) (*models.Tripsheet, error) {
		return h.service.Approve(r.Context(), id, caller)
	})
}

func (h *TripsheetHandler) Reject(w http.ResponseWriter, r *http.Request) {
	req, err := decode[reasonRequest](w, r)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	h.withID(w, r, func(id primitive.ObjectID, caller services.Actor) (*models.Tripsheet, error) {
		return h.service.Reject(r.Context(), id, req.Reason, caller)
	})
}

func (h *TripsheetHandler) Export(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	data, filename, err := h.service.Export(r.Context(), id)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	response.File(w, contentTypeXLSX, filename, data)
}

func (h *TripsheetHandler) withID(w http.ResponseWriter, r *http.Request, call func(id primitive.ObjectID, caller services.Actor) (*models.Tripsheet, error)) {
	caller, err := actor(r)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	ts, err := call(id, caller)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, ts)
}
