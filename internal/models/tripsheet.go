package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TripsheetStatus is the lifecycle state of a monthly tripsheet.
type TripsheetStatus string

const (
	TripsheetDraft     TripsheetStatus = "draft"
	TripsheetSubmitted TripsheetStatus = "submitted"
	TripsheetApproved  TripsheetStatus = "approved"
)

// EntryStatus is the state of a single day on a tripsheet.
type EntryStatus string

const (
	EntryPending EntryStatus = "pending"
	EntryWorking EntryStatus = "working"
	EntryOff     EntryStatus = "off"
)

// DayType classifies a calendar day.
type DayType string

const (
	DayWorking  DayType = "working"
	DaySaturday DayType = "saturday"
	DaySunday   DayType = "sunday"
)

// DailyEntry is one calendar day for one vehicle/driver pair. The working
// fields are nil unless Status is EntryWorking.
type DailyEntry struct {
	Date      time.Time   `bson:"date" json:"date"`
	DayOfWeek string      `bson:"day_of_week" json:"day_of_week"`
	DayType   DayType     `bson:"day_type" json:"day_type"`
	Status    EntryStatus `bson:"status" json:"status"`

	StartingKm       *int     `bson:"starting_km,omitempty" json:"starting_km,omitempty"`
	ClosingKm        *int     `bson:"closing_km,omitempty" json:"closing_km,omitempty"`
	TotalKm          *int     `bson:"total_km,omitempty" json:"total_km,omitempty"`
	StartingTime     string   `bson:"starting_time,omitempty" json:"starting_time,omitempty"` // HH:mm
	ClosingTime      string   `bson:"closing_time,omitempty" json:"closing_time,omitempty"`   // HH:mm
	TotalHours       *float64 `bson:"total_hours,omitempty" json:"total_hours,omitempty"`
	ExtraHours       *float64 `bson:"extra_hours,omitempty" json:"extra_hours,omitempty"`               // above the 10h billing threshold
	DriverExtraHours *float64 `bson:"driver_extra_hours,omitempty" json:"driver_extra_hours,omitempty"` // above the 12h salary threshold
	FuelLitres       *float64 `bson:"fuel_litres,omitempty" json:"fuel_litres,omitempty"`
	FuelAmount       *float64 `bson:"fuel_amount,omitempty" json:"fuel_amount,omitempty"`
	Remarks          string   `bson:"remarks,omitempty" json:"remarks,omitempty"`
}

// TripsheetSummary is derived from the entries and recomputed on every read.
type TripsheetSummary struct {
	TotalWorkingDays      int     `bson:"total_working_days" json:"total_working_days"`
	TotalOffDays          int     `bson:"total_off_days" json:"total_off_days"`
	TotalPendingDays      int     `bson:"total_pending_days" json:"total_pending_days"`
	TotalKms              int     `bson:"total_kms" json:"total_kms"`
	TotalHours            float64 `bson:"total_hours" json:"total_hours"`
	TotalExtraHours       float64 `bson:"total_extra_hours" json:"total_extra_hours"`
	TotalDriverExtraHours float64 `bson:"total_driver_extra_hours" json:"total_driver_extra_hours"`
	TotalFuelLitres       float64 `bson:"total_fuel_litres" json:"total_fuel_litres"`
	TotalFuelAmount       float64 `bson:"total_fuel_amount" json:"total_fuel_amount"`
}

// Tripsheet is one vehicle's monthly record of daily entries.
type Tripsheet struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	VehicleID       primitive.ObjectID `bson:"vehicle_id" json:"vehicle_id"`
	DriverID        primitive.ObjectID `bson:"driver_id" json:"driver_id"`
	Month           int                `bson:"month" json:"month"` // 1-12
	Year            int                `bson:"year" json:"year"`
	Status          TripsheetStatus    `bson:"status" json:"status"`
	Entries         []DailyEntry       `bson:"entries" json:"entries"`
	Summary         TripsheetSummary   `bson:"summary" json:"summary"`
	SubmittedAt     *time.Time         `bson:"submitted_at,omitempty" json:"submitted_at,omitempty"`
	ApprovedAt      *time.Time         `bson:"approved_at,omitempty" json:"approved_at,omitempty"`
	ApprovedBy      string             `bson:"approved_by,omitempty" json:"approved_by,omitempty"`
	RejectedAt      *time.Time         `bson:"rejected_at,omitempty" json:"rejected_at,omitempty"`
	RejectionReason string             `bson:"rejection_reason,omitempty" json:"rejection_reason,omitempty"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updated_at"`
}
