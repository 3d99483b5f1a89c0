package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/ukydev/fleet-backoffice/internal/apperror"
	"github.com/ukydev/fleet-backoffice/internal/response"
)

const healthTimeout = 2 * time.Second

// Health reports 200 while ping succeeds and 503 otherwise.
func Health(ping func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()
		if ping != nil {
			if err := ping(ctx); err != nil {
				response.Error(w, r, apperror.Wrap(err, apperror.CodeServiceUnavailable, "database unreachable", http.StatusServiceUnavailable))
				return
			}
		}
		response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
