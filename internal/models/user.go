package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role represents user roles in the system
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleDriver  Role = "driver"
	RoleViewer  Role = "viewer"
)

// User represents a user in the system. Driver accounts carry the ID of
// the driver record they fill tripsheets for.
type User struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Username     string              `bson:"username" json:"username"`
	Email        string              `bson:"email" json:"email"`
	PasswordHash string              `bson:"password_hash" json:"-"`
	Role         Role                `bson:"role" json:"role"`
	DriverID     *primitive.ObjectID `bson:"driver_id,omitempty" json:"driver_id,omitempty"`
	FirstName    string              `bson:"first_name" json:"first_name"`
	LastName     string              `bson:"last_name" json:"last_name"`
	IsActive     bool                `bson:"is_active" json:"is_active"`
	LastLogin    *time.Time          `bson:"last_login,omitempty" json:"last_login,omitempty"`
	CreatedAt    time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time           `bson:"updated_at" json:"updated_at"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=50"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"max=100"`
	LastName  string `json:"last_name" validate:"max=100"`
	Role      Role   `json:"role" validate:"required,oneof=admin manager driver viewer"`
	// DriverID is required for driver accounts.
	DriverID string `json:"driver_id,omitempty" validate:"omitempty,mongodb"`
}

// LoginResponse represents a successful login response
type LoginResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

// Claims represents JWT claims
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
	DriverID string `json:"driver_id,omitempty"`
	Exp      int64  `json:"exp"`
}

// Actions checked by HasPermission.
const (
	ActionManageUsers      = "manage_users"
	ActionManageConfig     = "manage_config"
	ActionViewTripsheets   = "view_tripsheets"
	ActionEditTripsheet    = "edit_tripsheet"
	ActionApproveTripsheet = "approve_tripsheet"
	ActionGenerateBilling  = "generate_billing"
	ActionViewBilling      = "view_billing"
	ActionGenerateSalary   = "generate_salary"
	ActionViewSalaries     = "view_salaries"
	ActionRequestAdvance   = "request_advance"
	ActionManageAdvances   = "manage_advances"
)

// IsValidRole checks if a role is valid
func IsValidRole(role Role) bool {
	switch role {
	case RoleAdmin, RoleManager, RoleDriver, RoleViewer:
		return true
	default:
		return false
	}
}

// HasPermission checks if a user has permission for a specific action
func (u *User) HasPermission(action string) bool {
	switch u.Role {
	case RoleAdmin:
		return true
	case RoleManager:
		return action != ActionManageUsers
	case RoleDriver:
		return action == ActionViewTripsheets || action == ActionEditTripsheet ||
			action == ActionRequestAdvance
	case RoleViewer:
		return action == ActionViewTripsheets || action == ActionViewBilling ||
			action == ActionViewSalaries
	default:
		return false
	}
}
