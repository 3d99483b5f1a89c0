package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BillingRules is the per-vehicle-type billing configuration. BaseAmount and
// BaseDays are pointers so a missing value can be told apart from zero.
type BillingRules struct {
	BaseAmount      *float64 `bson:"base_amount,omitempty" json:"base_amount,omitempty"`
	BaseDays        *int     `bson:"base_days,omitempty" json:"base_days,omitempty"`
	ExtraDayRate    float64  `bson:"extra_day_rate" json:"extra_day_rate"`
	ExtraKmRate     float64  `bson:"extra_km_rate" json:"extra_km_rate"`
	BaseHoursPerDay float64  `bson:"base_hours_per_day" json:"base_hours_per_day"`
	ExtraHourRate   float64  `bson:"extra_hour_rate" json:"extra_hour_rate"`
}

// VehicleType groups vehicles that share billing rules.
type VehicleType struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Description  string             `bson:"description" json:"description"`
	BillingRules *BillingRules      `bson:"billing_rules,omitempty" json:"billing_rules,omitempty"`
	IsActive     bool               `bson:"is_active" json:"is_active"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

// Vehicle represents a fleet vehicle.
type Vehicle struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RegistrationNumber string             `bson:"registration_number" json:"registration_number"`
	VehicleTypeID      primitive.ObjectID `bson:"vehicle_type_id" json:"vehicle_type_id"`
	Make               string             `bson:"make" json:"make"`
	Model              string             `bson:"model" json:"model"`
	Year               int                `bson:"year" json:"year"`
	ClientName         string             `bson:"client_name" json:"client_name"`
	Status             string             `bson:"status" json:"status"` // "active" or "inactive"
	CreatedAt          time.Time          `bson:"created_at" json:"created_at"`
}

// Driver is a salaried vehicle driver.
type Driver struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID        *primitive.ObjectID `bson:"user_id,omitempty" json:"user_id,omitempty"`
	Name          string              `bson:"name" json:"name"`
	Phone         string              `bson:"phone" json:"phone"`
	LicenseNumber string              `bson:"license_number" json:"license_number"`
	Status        string              `bson:"status" json:"status"` // "active" or "inactive"
	CreatedAt     time.Time           `bson:"created_at" json:"created_at"`
}
