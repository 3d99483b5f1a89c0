// Package services implements the back-office workflows on top of the pure
// calculators: tripsheet lifecycle, bill and salary generation, and cash
// advances.
package services

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-backoffice/internal/apperror"
	"github.com/ukydev/fleet-backoffice/internal/db"
	"github.com/ukydev/fleet-backoffice/internal/events"
	"github.com/ukydev/fleet-backoffice/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Actor is the authenticated user performing an operation.
type Actor struct {
	UserID   string
	Username string
	Role     models.Role
	DriverID *primitive.ObjectID
}

// ActorFromClaims builds an Actor from validated token claims.
func ActorFromClaims(c *models.Claims) Actor {
	a := Actor{UserID: c.UserID, Username: c.Username, Role: c.Role}
	if id, err := primitive.ObjectIDFromHex(c.DriverID); err == nil {
		a.DriverID = &id
	}
	return a
}

// IsDriver reports whether the actor is limited to their own records.
func (a Actor) IsDriver() bool {
	return a.Role == models.RoleDriver
}

// owns reports whether a driver actor may touch records of driverID. Other
// roles are checked by permission middleware instead.
func (a Actor) owns(driverID primitive.ObjectID) bool {
	if !a.IsDriver() {
		return true
	}
	return a.DriverID != nil && *a.DriverID == driverID
}

// lookup converts a storage error into the API error for a missing resource.
func lookup(err error, notFound *apperror.AppError) error {
	if errors.Is(err, db.ErrNotFound) {
		return notFound
	}
	return apperror.Internal(err)
}

func publish(ctx context.Context, pub events.Publisher, logger log.FieldLogger, eventType string, data map[string]any) {
	if err := pub.Publish(ctx, eventType, data); err != nil {
		logger.WithError(err).WithField("event", eventType).Warn("failed to publish event")
	}
}

func utcNow() time.Time {
	return time.Now().UTC()
}
