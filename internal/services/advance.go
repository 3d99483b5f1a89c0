package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-backoffice/internal/apperror"
	"github.com/ukydev/fleet-backoffice/internal/db"
	"github.com/ukydev/fleet-backoffice/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdvanceRequest is a driver's request for cash against a month's salary.
type AdvanceRequest struct {
	DriverID  primitive.ObjectID
	VehicleID primitive.ObjectID
	Amount    float64
	Reason    string
	Month     int
	Year      int
}

// AdvanceService runs the advance workflow:
// pending -> approved -> paid, or pending -> rejected. Salary generation
// moves paid advances to deducted.
type AdvanceService struct {
	advances db.AdvanceCollection
	drivers  db.DriverCollection
	logger   log.FieldLogger
	now      func() time.Time
}

func NewAdvanceService(advances db.AdvanceCollection, drivers db.DriverCollection, logger log.FieldLogger) *AdvanceService {
	return &AdvanceService{advances: advances, drivers: drivers, logger: logger, now: utcNow}
}

// Request records a pending advance. Drivers may only request for
// themselves.
func (s *AdvanceService) Request(ctx context.Context, req AdvanceRequest, actor Actor) (*models.AdvanceSalary, error) {
	if actor.IsDriver() {
		if actor.DriverID == nil {
			return nil, apperror.ErrForbidden
		}
		req.DriverID = *actor.DriverID
	}

	fields := map[string]string{}
	if req.DriverID.IsZero() {
		fields["driver_id"] = "is required"
	}
	if req.Amount <= 0 {
		fields["amount"] = "must be greater than zero"
	}
	if req.Month < 1 || req.Month > 12 {
		fields["requested_month"] = "must be between 1 and 12"
	}
	if req.Year < 2000 || req.Year > 2100 {
		fields["requested_year"] = "must be between 2000 and 2100"
	}
	if len(fields) > 0 {
		return nil, apperror.Validation(fields)
	}
	if _, err := s.drivers.FindDriverByID(ctx, req.DriverID); err != nil {
		return nil, lookup(err, apperror.ErrDriverNotFound)
	}

	now := s.now()
	adv := &models.AdvanceSalary{
		DriverID:       req.DriverID,
		VehicleID:      req.VehicleID,
		Amount:         req.Amount,
		Reason:         strings.TrimSpace(req.Reason),
		RequestedMonth: req.Month,
		RequestedYear:  req.Year,
		Status:         models.AdvancePending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.advances.InsertAdvance(ctx, adv); err != nil {
		return nil, apperror.Internal(err)
	}
	s.logger.WithFields(log.Fields{"advance_id": adv.ID.Hex(), "driver_id": adv.DriverID.Hex(), "amount": adv.Amount}).Info("advance requested")
	return adv, nil
}

// List returns advances matching filter. Drivers only see their own.
func (s *AdvanceService) List(ctx context.Context, filter db.AdvanceFilter, actor Actor) ([]models.AdvanceSalary, error) {
	if actor.IsDriver() {
		if actor.DriverID == nil {
			return nil, apperror.ErrForbidden
		}
		filter.DriverID = actor.DriverID
	}
	list, err := s.advances.FindAdvances(ctx, filter)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return list, nil
}

func (s *AdvanceService) Approve(ctx context.Context, id primitive.ObjectID, actor Actor) (*models.AdvanceSalary, error) {
	return s.transition(ctx, id, models.AdvancePending, actor, func(adv *models.AdvanceSalary, now time.Time) error {
		adv.Status = models.AdvanceApproved
		adv.ApprovedBy = actor.Username
		adv.ApprovedAt = &now
		return nil
	})
}

func (s *AdvanceService) Reject(ctx context.Context, id primitive.ObjectID, reason string, actor Actor) (*models.AdvanceSalary, error) {
	return s.transition(ctx, id, models.AdvancePending, actor, func(adv *models.AdvanceSalary, _ time.Time) error {
		reason = strings.TrimSpace(reason)
		if reason == "" {
			return apperror.InvalidField("reason", "is required")
		}
		adv.Status = models.AdvanceRejected
		adv.RejectionReason = reason
		return nil
	})
}

// Pay records that an approved advance was handed over. Only paid advances
// are deducted from a salary.
func (s *AdvanceService) Pay(ctx context.Context, id primitive.ObjectID, actor Actor) (*models.AdvanceSalary, error) {
	return s.transition(ctx, id, models.AdvanceApproved, actor, func(adv *models.AdvanceSalary, now time.Time) error {
		adv.Status = models.AdvancePaid
		adv.PaidAt = &now
		return nil
	})
}

func (s *AdvanceService) transition(ctx context.Context, id primitive.ObjectID, from models.AdvanceStatus, actor Actor, apply func(adv *models.AdvanceSalary, now time.Time) error) (*models.AdvanceSalary, error) {
	adv, err := s.advances.FindAdvanceByID(ctx, id)
	if err != nil {
		return nil, lookup(err, apperror.ErrAdvanceNotFound)
	}
	if adv.Status != from {
		return nil, apperror.Precondition(fmt.Sprintf("advance is %s, expected %s", adv.Status, from))
	}

	now := s.now()
	if err := apply(adv, now); err != nil {
		return nil, err
	}
	adv.UpdatedAt = now
	if err := s.advances.ReplaceAdvance(ctx, adv); err != nil {
		return nil, lookup(err, apperror.ErrAdvanceNotFound)
	}
	s.logger.WithFields(log.Fields{"advance_id": id.Hex(), "status": adv.Status, "user": actor.Username}).Info("advance updated")
	return adv, nil
}
