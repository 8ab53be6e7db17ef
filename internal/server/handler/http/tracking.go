package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/beaconfund/granttrack/internal/middleware"
	"github.com/beaconfund/granttrack/internal/models"
	"github.com/beaconfund/granttrack/internal/service"
)

// TrackingHandler handles authenticated tracking-status requests.
type TrackingHandler struct {
	Service TrackingService
}

// StatusResponse is the tracking view of a record. The password never
// leaves the store through this surface.
type StatusResponse struct {
	GrantCategory string                   `json:"grantCategory"`
	Status        models.ApplicationStatus `json:"status"`
	SubmittedAt   time.Time                `json:"submittedAt"`
}

// Status handles GET /api/tracking requests.
// The passkey and category arrive via the PasskeyAuth middleware; the
// handler authenticates them and returns the record's tracking status.
func (h *TrackingHandler) Status(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	pk := middleware.GetPasskeyFromContext(ctx)
	category := middleware.GetCategoryFromContext(ctx)

	rec, err := h.Service.Authenticate(ctx, pk, category)
	switch {
	case errors.Is(err, service.ErrInvalidPasskey):
		http.Error(w, "passkey not recognized for this grant", http.StatusUnauthorized)
		return
	case err != nil:
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(StatusResponse{
		GrantCategory: rec.GrantCategory,
		Status:        rec.Status,
		SubmittedAt:   rec.SubmittedAt,
	})
}
