// Package http provides HTTP handlers for application intake and
// passkey-based tracking lookups.
package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/beaconfund/granttrack/internal/models"
)

// TrackingService defines the tracking operations required by the HTTP
// handlers.
type TrackingService interface {
	// SubmitApplication stores a new application record without a passkey.
	SubmitApplication(ctx context.Context, email, password, category string) (*models.ApplicationRecord, error)
	// ListCategories returns the selectable grant categories.
	ListCategories(ctx context.Context) ([]string, error)
	// GetOrIssuePasskey returns the record's passkey, issuing one if absent.
	GetOrIssuePasskey(ctx context.Context, email, password, category string) (string, error)
	// Authenticate validates a passkey against the selected category.
	Authenticate(ctx context.Context, pk, category string) (*models.ApplicationRecord, error)
}

// ApplicationHandler handles HTTP requests for application intake and
// category listing.
type ApplicationHandler struct {
	// Service performs the underlying tracking operations.
	Service TrackingService
}

// SubmitRequest represents the JSON payload for application submission.
type SubmitRequest struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	GrantCategory string `json:"grantCategory"`
}

// SubmitResponse echoes the stored record without its password.
type SubmitResponse struct {
	ID            string                   `json:"id"`
	GrantCategory string                   `json:"grantCategory"`
	Status        models.ApplicationStatus `json:"status"`
	SubmittedAt   time.Time                `json:"submittedAt"`
}

// Submit handles POST /api/applications.
// It expects a JSON body with non-empty email, password and grantCategory
// fields and stores the application without a passkey; issuance happens
// later through the passkey endpoints.
func (h *ApplicationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil ||
		req.Email == "" || req.Password == "" || req.GrantCategory == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	rec, err := h.Service.SubmitApplication(r.Context(), req.Email, req.Password, req.GrantCategory)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(SubmitResponse{
		ID:            rec.ID,
		GrantCategory: rec.GrantCategory,
		Status:        rec.Status,
		SubmittedAt:   rec.SubmittedAt,
	})
}

// Categories handles GET /api/categories.
// It returns the distinct grant categories that have applications,
// which the selection stage uses to populate its picker.
func (h *ApplicationHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Service.ListCategories(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if categories == nil {
		categories = []string{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string][]string{
		"categories": categories,
	})
}
