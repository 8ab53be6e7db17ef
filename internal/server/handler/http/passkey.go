package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/beaconfund/granttrack/internal/passkey"
	"github.com/beaconfund/granttrack/internal/service"
)

// PasskeyHandler handles passkey issuance, recovery and login.
type PasskeyHandler struct {
	Service TrackingService
}

// CredentialsRequest represents the JSON payload for issuance and recovery.
type CredentialsRequest struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	GrantCategory string `json:"grantCategory"`
}

// GetOrIssue handles POST /api/passkey.
// One endpoint serves both "get my passkey" and "lost my passkey": the
// record's existing passkey is returned when present, otherwise a fresh
// one is issued. The not-found answer names no field, so callers cannot
// probe which emails have applications.
func (h *PasskeyHandler) GetOrIssue(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil ||
		req.Email == "" || req.Password == "" || req.GrantCategory == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	pk, err := h.Service.GetOrIssuePasskey(r.Context(), req.Email, req.Password, req.GrantCategory)
	switch {
	case errors.Is(err, service.ErrRecordNotFound):
		http.Error(w, "no application matches those details", http.StatusNotFound)
		return
	case errors.Is(err, passkey.ErrIssuanceExhausted):
		http.Error(w, "something went wrong, please try again", http.StatusServiceUnavailable)
		return
	case err != nil:
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"passkey": pk,
	})
}

// LoginRequest represents the JSON payload for passkey login.
type LoginRequest struct {
	Passkey       string `json:"passkey"`
	GrantCategory string `json:"grantCategory"`
}

// Login handles POST /api/login.
// It validates the passkey against the selected category and returns a
// JSON status "ok" when the pair authenticates.
func (h *PasskeyHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil ||
		req.Passkey == "" || req.GrantCategory == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	rec, err := h.Service.Authenticate(r.Context(), req.Passkey, req.GrantCategory)
	switch {
	case errors.Is(err, service.ErrInvalidPasskey):
		http.Error(w, "passkey not recognized for this grant", http.StatusUnauthorized)
		return
	case err != nil:
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":        "ok",
		"grantCategory": rec.GrantCategory,
	})
}
