package apperror

const (
	// Client errors (4xx)
	CodeValidation      = "VALIDATION_ERROR"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeForbidden       = "FORBIDDEN"
	CodeNotFound        = "NOT_FOUND"
	CodePrecondition    = "PRECONDITION_FAILED"
	CodeDuplicateBill   = "DUPLICATE_BILL"
	CodeDuplicateSalary = "DUPLICATE_SALARY"
	CodeConfiguration   = "CONFIGURATION_ERROR"
	CodePartialBatch    = "PARTIAL_BATCH_FAILURE"

	// Server errors (5xx)
	CodeInternalError      = "INTERNAL_ERROR"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)
