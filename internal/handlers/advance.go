package handlers

import (
	"context"
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-backoffice/internal/apperror"
	"github.com/ukydev/fleet-backoffice/internal/db"
	"github.com/ukydev/fleet-backoffice/internal/models"
	"github.com/ukydev/fleet-backoffice/internal/response"
	"github.com/ukydev/fleet-backoffice/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AdvanceService interface {
	Request(ctx context.Context, req services.AdvanceRequest, actor services.Actor) (*models.AdvanceSalary, error)
	List(ctx context.Context, filter db.AdvanceFilter, actor services.Actor) ([]models.AdvanceSalary, error)
	Approve(ctx context.Context, id primitive.ObjectID, actor services.Actor) (*models.AdvanceSalary, error)
	Reject(ctx context.Context, id primitive.ObjectID, reason string, actor services.Actor) (*models.AdvanceSalary, error)
	Pay(ctx context.Context, id primitive.ObjectID, actor services.Actor) (*models.AdvanceSalary, error)
}

type advanceRequest struct {
	DriverID  string  `json:"driver_id" validate:"omitempty,mongodb"`
	VehicleID string  `json:"vehicle_id" validate:"omitempty,mongodb"`
	Amount    float64 `json:"amount" validate:"gt=0"`
	Reason    string  `json:"reason" validate:"max=500"`
	Month     int     `json:"requested_month" validate:"required,min=1,max=12"`
	Year      int     `json:"requested_year" validate:"required,min=2000,max=2100"`
}

type AdvanceHandler struct {
	service AdvanceService
	logger  log.FieldLogger
}

func NewAdvanceHandler(service AdvanceService, logger log.FieldLogger) *AdvanceHandler {
	return &AdvanceHandler{service: service, logger: logger}
}

// Request records a pending advance. The service pins drivers to their own
// driver id.
func (h *AdvanceHandler) Request(w http.ResponseWriter, r *http.Request) {
	caller, err := actor(r)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	req, err := decode[advanceRequest](w, r)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}

	in := services.AdvanceRequest{Amount: req.Amount, Reason: req.Reason, Month: req.Month, Year: req.Year}
	if req.DriverID != "" {
		if in.DriverID, err = objectID("driver_id", req.DriverID); err != nil {
			fail(w, r, h.logger, err)
			return
		}
	}
	if req.VehicleID != "" {
		if in.VehicleID, err = objectID("vehicle_id", req.VehicleID); err != nil {
			fail(w, r, h.logger, err)
			return
		}
	}

	adv, err := h.service.Request(r.Context(), in, caller)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	response.JSON(w, http.StatusCreated, adv)
}

func (h *AdvanceHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, err := actor(r)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}

	var filter db.AdvanceFilter
	if filter.DriverID, err = optionalID(r, "driver_id"); err != nil {
		fail(w, r, h.logger, err)
		return
	}
	switch status := models.AdvanceStatus(r.URL.Query().Get("status")); status {
	case "", models.AdvancePending, models.AdvanceApproved, models.AdvancePaid, models.AdvanceDeducted, models.AdvanceRejected:
		filter.Status = status
	default:
		fail(w, r, h.logger, apperror.InvalidField("status", "must be one of pending, approved, paid, deducted, rejected"))
		return
	}
	if filter.Month, err = queryInt(r, "month"); err != nil {
		fail(w, r, h.logger, err)
		return
	}
	if filter.Year, err = queryInt(r, "year"); err != nil {
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

func (h *AdvanceHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Approve)
}

func (h *AdvanceHandler) Pay(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Pay)
}

func (h *AdvanceHandler) Reject(w http.ResponseWriter, r *http.Request) {
	req, err := decode[reasonRequest](w, r)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	h.transition(w, r, func(ctx context.Context, id primitive.ObjectID, caller services.Actor) (*models.AdvanceSalary, error) {
		return h.service.Reject(ctx, id, req.Reason, caller)
	})
}

func (h *AdvanceHandler) transition(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, id primitive.ObjectID, caller services.Actor) (*models.AdvanceSalary, error)) {
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
	adv, err := apply(r.Context(), id, caller)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, adv)
}
