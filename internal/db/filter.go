package db

import (
	"github.com/ukydev/fleet-backoffice/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TripsheetFilter narrows a tripsheet listing. Zero fields match anything.
type TripsheetFilter struct {
	Month     int
	Year      int
	Status    models.TripsheetStatus
	DriverID  *primitive.ObjectID
	VehicleID *primitive.ObjectID
}

func (f TripsheetFilter) bson() bson.M {
	m := bson.M{}
	if f.Month != 0 {
		m["month"] = f.Month
	}
	if f.Year != 0 {
		m["year"] = f.Year
	}
	if f.Status != "" {
		m["status"] = f.Status
	}
	if f.DriverID != nil {
		m["driver_id"] = *f.DriverID
	}
	if f.VehicleID != nil {
		m["vehicle_id"] = *f.VehicleID
	}
	return m
}

// AdvanceFilter narrows an advance listing. Zero fields match anything.
type AdvanceFilter struct {
	DriverID *primitive.ObjectID
	Status   models.AdvanceStatus
	Month    int
	Year     int
}

func (f AdvanceFilter) bson() bson.M {
	m := bson.M{}
	if f.DriverID != nil {
		m["driver_id"] = *f.DriverID
	}
	if f.Status != "" {
		m["status"] = f.Status
	}
	if f.Month != 0 {
		m["requested_month"] = f.Month
	}
	if f.Year != 0 {
		m["requested_year"] = f.Year
	}
	return m
}

func deductibleFilter(driverID primitive.ObjectID, month, year int) bson.M {
	return bson.M{
		"driver_id":               driverID,
		"requested_month":         month,
		"requested_year":          year,
		"status":                  models.AdvancePaid,
		"deducted_from_salary_id": bson.M{"$exists": false},
	}
}
