package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdvanceStatus is the lifecycle of a cash advance:
// pending -> approved -> paid -> deducted, or pending -> rejected.
type AdvanceStatus string

const (
	AdvancePending  AdvanceStatus = "pending"
	AdvanceApproved AdvanceStatus = "approved"
	AdvancePaid     AdvanceStatus = "paid"
	AdvanceDeducted AdvanceStatus = "deducted"
	AdvanceRejected AdvanceStatus = "rejected"
)

// AdvanceSalary is a cash advance netted against a later salary.
// DeductedFromSalaryID is set exactly once, when a salary consumes it.
type AdvanceSalary struct {
	ID                   primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	DriverID             primitive.ObjectID  `bson:"driver_id" json:"driver_id"`
	VehicleID            primitive.ObjectID  `bson:"vehicle_id" json:"vehicle_id"`
	Amount               float64             `bson:"amount" json:"amount"`
	Reason               string              `bson:"reason" json:"reason"`
	RequestedMonth       int                 `bson:"requested_month" json:"requested_month"`
	RequestedYear        int                 `bson:"requested_year" json:"requested_year"`
	Status               AdvanceStatus       `bson:"status" json:"status"`
	ApprovedBy           string              `bson:"approved_by,omitempty" json:"approved_by,omitempty"`
	ApprovedAt           *time.Time          `bson:"approved_at,omitempty" json:"approved_at,omitempty"`
	PaidAt               *time.Time          `bson:"paid_at,omitempty" json:"paid_at,omitempty"`
	RejectionReason      string              `bson:"rejection_reason,omitempty" json:"rejection_reason,omitempty"`
	DeductedFromSalaryID *primitive.ObjectID `bson:"deducted_from_salary_id,omitempty" json:"deducted_from_salary_id,omitempty"`
	DeductedAt           *time.Time          `bson:"deducted_at,omitempty" json:"deducted_at,omitempty"`
	CreatedAt            time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt            time.Time           `bson:"updated_at" json:"updated_at"`
}
