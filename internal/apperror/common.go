package apperror

import "net/http"

var (
	ErrUnauthorized = New(
		CodeUnauthorized,
		"Authentication is required",
		http.StatusUnauthorized,
	)

	ErrForbidden = New(
		CodeForbidden,
		"You do not have permission to access this resource",
		http.StatusForbidden,
	)

	ErrTripsheetNotFound   = NotFound("tripsheet")
	ErrBillNotFound        = NotFound("bill")
	ErrSalaryNotFound      = NotFound("salary")
	ErrAdvanceNotFound     = NotFound("advance")
	ErrVehicleNotFound     = NotFound("vehicle")
	ErrDriverNotFound      = NotFound("driver")
	ErrVehicleTypeNotFound = NotFound("vehicle type")

	ErrDuplicateBill = New(
		CodeDuplicateBill,
		"a bill already exists for this tripsheet",
		http.StatusConflict,
	)

	ErrDuplicateSalary = New(
		CodeDuplicateSalary,
		"a salary already exists for this tripsheet",
		http.StatusConflict,
	)

	ErrServiceBusy = New(
		CodeServiceUnavailable,
		"another generation run for this period is in progress",
		http.StatusServiceUnavailable,
	)
)
