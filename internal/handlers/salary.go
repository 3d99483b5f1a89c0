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

type SalaryService interface {
	Generate(ctx context.Context, tripsheetID primitive.ObjectID, notes string, actor services.Actor) (*models.DriverSalary, error)
	GenerateAll(ctx context.Context, month, year int, actor services.Actor) (*services.BatchResult, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.DriverSalary, error)
	ReconcileAdvances(ctx context.Context, id primitive.ObjectID) (*services.ReconcileResult, error)
	Slip(ctx context.Context, id primitive.ObjectID) ([]byte, string, error)
}

type SalaryHandler struct {
	service SalaryService
	logger  log.FieldLogger
}

func NewSalaryHandler(service SalaryService, logger log.FieldLogger) *SalaryHandler {
	return &SalaryHandler{service: service, logger: logger}
}

func (h *SalaryHandler) Generate(w http.ResponseWriter, r *http.Request) {
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
	rec, err := h.service.Generate(r.Context(), tripsheetID, req.Notes, caller)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	response.JSON(w, http.StatusCreated, rec)
}

func (h *SalaryHandler) GenerateAll(w http.ResponseWriter, r *http.Request) {
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

func (h *SalaryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	rec, err := h.service.Get(r.Context(), id)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, rec)
}

// ReconcileAdvances repeats advance marking for a salary generated
// without transactions.
func (h *SalaryHandler) ReconcileAdvances(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	result, err := h.service.ReconcileAdvances(r.Context(), id)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, result)
}

func (h *SalaryHandler) Slip(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	data, filename, err := h.service.Slip(r.Context(), id)
	if err != nil {
		fail(w, r, h.logger, err)
		return
	}
	response.File(w, contentTypePDF, filename, data)
}
