package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SalaryCalculation is the driver pay breakdown. TotalSalary is gross;
// FinalSalary is what remains after AdvanceDeduction and is what
// AmountInWords renders.
type SalaryCalculation struct {
	BaseSalary            float64 `bson:"base_salary" json:"base_salary"`
	BaseDays              int     `bson:"base_days" json:"base_days"`
	TotalWorkingDays      int     `bson:"total_working_days" json:"total_working_days"`
	ExtraDays             int     `bson:"extra_days" json:"extra_days"`
	ExtraDayRate          float64 `bson:"extra_day_rate" json:"extra_day_rate"`
	ExtraDaysAmount       float64 `bson:"extra_days_amount" json:"extra_days_amount"`
	TotalHours            float64 `bson:"total_hours" json:"total_hours"`
	TotalDriverExtraHours float64 `bson:"total_driver_extra_hours" json:"total_driver_extra_hours"`
	ExtraHourRate         float64 `bson:"extra_hour_rate" json:"extra_hour_rate"`
	ExtraHoursAmount      float64 `bson:"extra_hours_amount" json:"extra_hours_amount"`
	TotalSalary           float64 `bson:"total_salary" json:"total_salary"`
	AdvanceDeduction      float64 `bson:"advance_deduction" json:"advance_deduction"`
	FinalSalary           float64 `bson:"final_salary" json:"final_salary"`
	AmountInWords         string  `bson:"amount_in_words" json:"amount_in_words"`
}

// DriverSalary is the salary generated for one approved tripsheet.
type DriverSalary struct {
	ID                 primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	TripsheetID        primitive.ObjectID   `bson:"tripsheet_id" json:"tripsheet_id"`
	DriverID           primitive.ObjectID   `bson:"driver_id" json:"driver_id"`
	VehicleID          primitive.ObjectID   `bson:"vehicle_id" json:"vehicle_id"`
	Month              int                  `bson:"month" json:"month"`
	Year               int                  `bson:"year" json:"year"`
	Calculation        SalaryCalculation    `bson:"calculation" json:"calculation"`
	DeductedAdvanceIDs []primitive.ObjectID `bson:"deducted_advance_ids,omitempty" json:"deducted_advance_ids,omitempty"`
	Notes              string               `bson:"notes,omitempty" json:"notes,omitempty"`
	GeneratedBy        string               `bson:"generated_by" json:"generated_by"`
	GeneratedAt        time.Time            `bson:"generated_at" json:"generated_at"`
}
