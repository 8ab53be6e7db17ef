package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPasskeyAuth_MissingHeaders(t *testing.T) {
	handler := PasskeyAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not be reached without credentials")
	}))

	tests := []struct {
		name     string
		passkey  string
		category string
	}{
		{"no headers", "", ""},
		{"passkey only", "PK-7F3K9QZ1", ""},
		{"category only", "", "STEM Grant"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/api/tracking", nil)
			if tt.passkey != "" {
				req.Header.Set(PasskeyHeader, tt.passkey)
			}
			if tt.category != "" {
				req.Header.Set(CategoryHeader, tt.category)
			}
			handler.ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestPasskeyAuth_StoresCredentialsInContext(t *testing.T) {
	var gotPasskey, gotCategory string
	handler := PasskeyAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPasskey = GetPasskeyFromContext(r.Context())
		gotCategory = GetCategoryFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/tracking", nil)
	req.Header.Set(PasskeyHeader, "PK-7F3K9QZ1")
	req.Header.Set(CategoryHeader, "STEM Grant")
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotPasskey != "PK-7F3K9QZ1" {
		t.Errorf("expected passkey in context, got %q", gotPasskey)
	}
	if gotCategory != "STEM Grant" {
		t.Errorf("expected category in context, got %q", gotCategory)
	}
}

func TestGetFromContext_Empty(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	if got := GetPasskeyFromContext(req.Context()); got != "" {
		t.Errorf("expected empty passkey, got %q", got)
	}
	if got := GetCategoryFromContext(req.Context()); got != "" {
		t.Errorf("expected empty category, got %q", got)
	}
}
