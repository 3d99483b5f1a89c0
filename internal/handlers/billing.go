package handlers

import (
	"context"
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-backoffice/internal/models"
	"github.com/ukydev/fleet-backoffice/internal/response"
	"github.com/ukydev/fleet-backoffice/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BillingService interface {
	Generate(ctx context.Context, tripsheetID primitive.ObjectID, actor services.Actor) (*models.Bill, error)
	GenerateAll(ctx context.Context, month, year int, actor services.Actor) (*services.BatchResult, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Bill, error)
	Adjust(ctx context.Context, id primitive.ObjectID, adjustments float64, notes string, actor services.Actor) (*models.Bill, error)
	Invoice(ctx context.Context, id primitive.ObjectID) ([]byte, string, error)
}

type generateRequest struct {
	TripsheetID string `json:"tripsheet_id" validate:"required,mongodb"`
	Notes       string `json:"notes" validate:"max=500"`
}

type adjustRequest struct {
	Adjustments *float64 `json:"adjustments" validate:"required"`
	Notes       string   `json:"notes" validate:"max=500"`
}

type BillingHandler struct {
	service BillingService
	logger  log.FieldLogger
}

func NewBillingHandler(service BillingService, logger log.FieldLogger) *BillingHandler {
	return &BillingHandler{service: service, logger: logger}
}

func (h *BillingHandler) Generate(w http.ResponseWriter, r *http.Request) {
	caller, err := actor(r)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	req, err := decode[generateRequest](w, r)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	tripsheetID, err := objectID("tripsheet_id", req.TripsheetID)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	bill, err := h.service.Generate(r.Context(), tripsheetID, caller)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	response.JSON(w, http.StatusCreated, bill)
}

func (h *BillingHandler) GenerateAll(w http.ResponseWriter, r *http.Request) {
	caller, err := actor(r)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	req, err := decode[periodRequest](w, r)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	result, err := h.service.GenerateAll(r.Context(), req.Month, req.Year, caller)
	batchResponse(w, r, h.logger, result, err)
}

func (h *BillingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	bill, err := h.service.Get(r.Context(), id)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, bill)
}

func (h *BillingHandler) Adjust(w http.ResponseWriter, r *http.Request) {
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
	req, err := decode[adjustRequest](w, r)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	bill, err := h.service.Adjust(r.Context(), id, *req.Adjustments, req.Notes, caller)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, bill)
}

func (h *BillingHandler) Invoice(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	data, filename, err := h.service.Invoice(r.Context(), id)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	response.File(w, contentTypePDF, filename, data)
}
