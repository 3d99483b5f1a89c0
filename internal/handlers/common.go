// Package handlers exposes the back office over HTTP.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-backoffice/internal/apperror"
	"github.com/ukydev/fleet-backoffice/internal/contextutil"
	"github.com/ukydev/fleet-backoffice/internal/middleware"
	"github.com/ukydev/fleet-backoffice/internal/response"
	"github.com/ukydev/fleet-backoffice/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const maxBodyBytes = 1 << 20

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF  = "application/pdf"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decode reads a JSON body into T and validates it.
func decode[T any](w http.ResponseWriter, r *http.Request) (T, error) {
	var req T
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, apperror.InvalidField("body", "must be a valid JSON object")
	}
	if err := validate.Struct(req); err != nil {
		return req, validationError(err)
	}
	return req, nil
}

func validationError(err error) error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return apperror.InvalidField("body", "is invalid")
	}
	fields := make(map[string]string, len(errs))
	for _, fe := range errs {
		fields[fe.Field()] = validationMessage(fe)
	}
	return apperror.Validation(fields)
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "email":
		return "must be a valid email address"
	case "mongodb":
		return "must be a valid id"
	case "datetime":
		return "must match " + fe.Param()
	}
	return "is invalid"
}

func objectID(field, value string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(value)
	if err != nil {
		return primitive.NilObjectID, apperror.InvalidField(field, "must be a valid id")
	}
	return id, nil
}

func pathID(r *http.Request) (primitive.ObjectID, error) {
	return objectID("id", r.PathValue("id"))
}

// optionalID parses an optional id query parameter.
func optionalID(r *http.Request, key string) (*primitive.ObjectID, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil, nil
	}
	id, err := objectID(key, v)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// queryInt parses an optional integer query parameter. Missing means 0.
func queryInt(r *http.Request, key string) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, apperror.InvalidField(key, "must be a number")
	}
	return n, nil
}

func parseDate(field, value string) (time.Time, error) {
	d, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, apperror.InvalidField(field, "must be a date in YYYY-MM-DD format")
	}
	return d, nil
}

// actor returns the authenticated caller.
func actor(r *http.Request) (services.Actor, error) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		return services.Actor{}, apperror.ErrUnauthorized
	}
	return services.ActorFromClaims(claims), nil
}

// fail logs server-side failures and writes the error response.
func fail(w http.ResponseWriter, r *http.Request, logger log.FieldLogger, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) || appErr.HTTPStatus >= http.StatusInternalServerError {
		contextutil.Logger(r.Context(), logger).WithError(err).WithFields(log.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Error("request failed")
	}
	response.Error(w, r, err)
}

// batchResponse writes a generate-all result. Partial failures are 207
// with the same body.
func batchResponse(w http.ResponseWriter, r *http.Request, logger log.FieldLogger, result *services.BatchResult, err error) {
	var partial *apperror.PartialBatchFailure
	switch {
	case err == nil:
		response.JSON(w, http.StatusOK, result)
	case errors.As(err, &partial) && result != nil:
		contextutil.Logger(r.Context(), logger).WithError(partial).
			WithField("batch_id", result.BatchID).
			Warn("batch completed with failures")
		response.JSON(w, http.StatusMultiStatus, result)
	default:
		fail(w, r, logger, err)
	}
}

type periodRequest struct {
	Month int `json:"month" validate:"required,min=1,max=12"`
	Year  int `json:"year" validate:"required,min=2000,max=2100"`
}
