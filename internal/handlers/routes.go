package handlers

import (
	"context"
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-backoffice/internal/middleware"
	"github.com/ukydev/fleet-backoffice/internal/models"
)

// Router holds everything NewRouter mounts.
type Router struct {
	Auth       *AuthHandler
	Fleet      *FleetHandler
	Tripsheets *TripsheetHandler
	Billing    *BillingHandler
	Salary     *SalaryHandler
	Advances   *AdvanceHandler

	AuthMiddleware *middleware.AuthMiddleware
	RateLimiter    *middleware.IPRateLimiter
	Ping           func(ctx context.Context) error
	Logger         log.FieldLogger
}

// NewRouter mounts every route on a ServeMux and wraps it in the common
// middleware chain. Authentication runs for all paths except login,
// registration and health.
func NewRouter(rt Router) http.Handler {
	mux := http.NewServeMux()
	perm := func(action string, h http.HandlerFunc) http.Handler {
		return rt.AuthMiddleware.RequirePermission(action)(h)
	}
	authed := func(h http.HandlerFunc) http.Handler {
		return rt.AuthMiddleware.RequireRole(models.RoleManager, models.RoleDriver, models.RoleViewer)(h)
	}
	// Export carries no driver scoping, so drivers are kept out.
	office := func(h http.HandlerFunc) http.Handler {
		return rt.AuthMiddleware.RequireRole(models.RoleManager, models.RoleViewer)(h)
	}

	mux.HandleFunc("GET /health", Health(rt.Ping))

	mux.HandleFunc("POST /api/auth/login", rt.Auth.Login)
	mux.HandleFunc("POST /api/auth/register", rt.Auth.Register)
	mux.Handle("GET /api/auth/profile", authed(rt.Auth.GetProfile))
	mux.Handle("PUT /api/auth/profile", authed(rt.Auth.UpdateProfile))
	mux.Handle("POST /api/auth/change-password", authed(rt.Auth.ChangePassword))

	mux.Handle("POST /api/vehicle-types", perm(models.ActionManageConfig, rt.Fleet.CreateVehicleType))
	mux.Handle("GET /api/vehicle-types", authed(rt.Fleet.ListVehicleTypes))
	mux.Handle("GET /api/vehicle-types/{id}", authed(rt.Fleet.GetVehicleType))
	mux.Handle("PUT /api/vehicle-types/{id}", perm(models.ActionManageConfig, rt.Fleet.UpdateVehicleType))
	mux.Handle("POST /api/vehicles", perm(models.ActionManageConfig, rt.Fleet.CreateVehicle))
	mux.Handle("GET /api/vehicles", authed(rt.Fleet.ListVehicles))
	mux.Handle("GET /api/vehicles/{id}", authed(rt.Fleet.GetVehicle))
	mux.Handle("POST /api/drivers", perm(models.ActionManageConfig, rt.Fleet.CreateDriver))
	mux.Handle("GET /api/drivers", authed(rt.Fleet.ListDrivers))
	mux.Handle("GET /api/drivers/{id}", authed(rt.Fleet.GetDriver))

	mux.Handle("POST /api/tripsheets", perm(models.ActionEditTripsheet, rt.Tripsheets.Create))
	mux.Handle("GET /api/tripsheets", perm(models.ActionViewTripsheets, rt.Tripsheets.List))
	mux.Handle("GET /api/tripsheets/{id}", perm(models.ActionViewTripsheets, rt.Tripsheets.Get))
	mux.Handle("PUT /api/tripsheets/{id}/entries/{date}", perm(models.ActionEditTripsheet, rt.Tripsheets.UpdateEntry))
	mux.Handle("POST /api/tripsheets/{id}/submit", perm(models.ActionEditTripsheet, rt.Tripsheets.Submit))
	mux.Handle("POST /api/admin/tripsheets/{id}/approve", perm(models.ActionApproveTripsheet, rt.Tripsheets.Approve))
	mux.Handle("POST /api/admin/tripsheets/{id}/reject", perm(models.ActionApproveTripsheet, rt.Tripsheets.Reject))
	mux.Handle("GET /api/admin/tripsheets/{id}/export", office(rt.Tripsheets.Export))

	mux.Handle("POST /api/admin/billing", perm(models.ActionGenerateBilling, rt.Billing.Generate))
	mux.Handle("POST /api/admin/billing/generate-all", perm(models.ActionGenerateBilling, rt.Billing.GenerateAll))
	mux.Handle("GET /api/admin/billing/{id}", perm(models.ActionViewBilling, rt.Billing.Get))
	mux.Handle("PUT /api/admin/billing/{id}/adjustments", perm(models.ActionGenerateBilling, rt.Billing.Adjust))
	mux.Handle("GET /api/admin/billing/{id}/invoice", perm(models.ActionViewBilling, rt.Billing.Invoice))

	mux.Handle("POST /api/admin/salary", perm(models.ActionGenerateSalary, rt.Salary.Generate))
	mux.Handle("POST /api/admin/salary/generate-all", perm(models.ActionGenerateSalary, rt.Salary.GenerateAll))
	mux.Handle("GET /api/admin/salary/{id}", perm(models.ActionViewSalaries, rt.Salary.Get))
	mux.Handle("POST /api/admin/salary/{id}/reconcile-advances", perm(models.ActionGenerateSalary, rt.Salary.ReconcileAdvances))
	mux.Handle("GET /api/admin/salary/{id}/slip", perm(models.ActionViewSalaries, rt.Salary.Slip))

	mux.Handle("POST /api/advances", perm(models.ActionRequestAdvance, rt.Advances.Request))
	mux.Handle("GET /api/advances", perm(models.ActionRequestAdvance, rt.Advances.List))
	mux.Handle("POST /api/admin/advances/{id}/approve", perm(models.ActionManageAdvances, rt.Advances.Approve))
	mux.Handle("POST /api/admin/advances/{id}/reject", perm(models.ActionManageAdvances, rt.Advances.Reject))
	mux.Handle("POST /api/admin/advances/{id}/pay", perm(models.ActionManageAdvances, rt.Advances.Pay))

	var h http.Handler = rt.AuthMiddleware.Authenticate(mux)
	if rt.RateLimiter != nil {
		h = rt.RateLimiter.RateLimit(h)
	}
	return middleware.Chain(h,
		middleware.Recover(rt.Logger),
		middleware.RequestID,
		middleware.Logger(rt.Logger),
	)
}
