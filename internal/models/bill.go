package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BillStatus tracks a bill after generation.
type BillStatus string

const (
	BillGenerated BillStatus = "generated"
	BillSent      BillStatus = "sent"
	BillPaid      BillStatus = "paid"
)

// BillingCalculation is the client-facing invoice breakdown. SubTotal is what
// the calculator produced; TotalAmount is SubTotal plus Adjustments.
type BillingCalculation struct {
	BaseAmount       float64 `bson:"base_amount" json:"base_amount"`
	BaseDays         int     `bson:"base_days" json:"base_days"`
	TotalWorkingDays int     `bson:"total_working_days" json:"total_working_days"`
	ExtraDays        int     `bson:"extra_days" json:"extra_days"`
	ExtraDayRate     float64 `bson:"extra_day_rate" json:"extra_day_rate"`
	ExtraDaysAmount  float64 `bson:"extra_days_amount" json:"extra_days_amount"`
	TotalKms         int     `bson:"total_kms" json:"total_kms"`
	BaseKms          int     `bson:"base_kms" json:"base_kms"`
	ExtraKms         int     `bson:"extra_kms" json:"extra_kms"`
	ExtraKmRate      float64 `bson:"extra_km_rate" json:"extra_km_rate"`
	ExtraKmsAmount   float64 `bson:"extra_kms_amount" json:"extra_kms_amount"`
	TotalExtraHours  float64 `bson:"total_extra_hours" json:"total_extra_hours"`
	ExtraHourRate    float64 `bson:"extra_hour_rate" json:"extra_hour_rate"`
	ExtraHoursAmount float64 `bson:"extra_hours_amount" json:"extra_hours_amount"`
	SubTotal         float64 `bson:"sub_total" json:"sub_total"`
	Adjustments      float64 `bson:"adjustments" json:"adjustments"`
	TotalAmount      float64 `bson:"total_amount" json:"total_amount"`
}

// Bill is the invoice generated for one approved tripsheet.
type Bill struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BillNumber      string             `bson:"bill_number" json:"bill_number"`
	TripsheetID     primitive.ObjectID `bson:"tripsheet_id" json:"tripsheet_id"`
	VehicleID       primitive.ObjectID `bson:"vehicle_id" json:"vehicle_id"`
	VehicleTypeID   primitive.ObjectID `bson:"vehicle_type_id" json:"vehicle_type_id"`
	Month           int                `bson:"month" json:"month"`
	Year            int                `bson:"year" json:"year"`
	Calculation     BillingCalculation `bson:"calculation" json:"calculation"`
	AdjustmentNotes string             `bson:"adjustment_notes,omitempty" json:"adjustment_notes,omitempty"`
	Status          BillStatus         `bson:"status" json:"status"`
	GeneratedBy     string             `bson:"generated_by" json:"generated_by"`
	GeneratedAt     time.Time          `bson:"generated_at" json:"generated_at"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updated_at"`
}
