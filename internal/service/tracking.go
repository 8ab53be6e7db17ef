package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/beaconfund/granttrack/internal/models"
	"github.com/beaconfund/granttrack/internal/passkey"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RecordRepository defines the persistence operations required by the
// tracking service. Lookups return (nil, nil) when no record matches.
type RecordRepository interface {
	// CreateRecord stores a newly submitted application.
	CreateRecord(ctx context.Context, rec models.ApplicationRecord) error
	// ListCategories returns the distinct grant categories in the store.
	ListCategories(ctx context.Context) ([]string, error)
	// FindRecord matches the exact (email, password, category) triple.
	FindRecord(ctx context.Context, email, password, category string) (*models.ApplicationRecord, error)
	// FindRecordByPasskey matches a passkey within the given category.
	FindRecordByPasskey(ctx context.Context, pk, category string) (*models.ApplicationRecord, error)
	// AssignPasskey sets the passkey once and returns the value now on the
	// record (the existing one if already assigned).
	AssignPasskey(ctx context.Context, id, pk string) (string, error)
	// HasPasskey reports whether any record carries the passkey.
	HasPasskey(ctx context.Context, pk string) (bool, error)
}

// Tracking implements the foundation-side tracking operations by
// delegating persistence to a RecordRepository.
type Tracking struct {
	repo RecordRepository
	log  *zap.Logger

	// issueMu serializes check-uniqueness-then-assign across requests.
	issueMu sync.Mutex
}

// NewTrackingService constructs a Tracking service using the provided
// repository.
func NewTrackingService(repo RecordRepository, log *zap.Logger) *Tracking {
	return &Tracking{repo: repo, log: log}
}

// SubmitApplication stores a new application record without a passkey,
// mirroring the submission pipeline. Returns the stored record.
func (s *Tracking) SubmitApplication(ctx context.Context, email, password, category string) (*models.ApplicationRecord, error) {
	rec := models.ApplicationRecord{
		ID:            uuid.NewString(),
		Email:         email,
		Password:      password,
		GrantCategory: category,
		Status:        models.StatusReceived,
		SubmittedAt:   time.Now().UTC(),
	}
	if err := s.repo.CreateRecord(ctx, rec); err != nil {
		return nil, fmt.Errorf("create record: %w", err)
	}
	return &rec, nil
}

// ListCategories returns the selectable grant categories.
func (s *Tracking) ListCategories(ctx context.Context) ([]string, error) {
	return s.repo.ListCategories(ctx)
}

// GetOrIssuePasskey resolves an email/password pair to a record in the
// category and returns its passkey, issuing a unique one if the record has
// none. First issuance and recovery share this path, so a record that
// already has a passkey always gets the same value back.
func (s *Tracking) GetOrIssuePasskey(ctx context.Context, email, password, category string) (string, error) {
	rec, err := s.repo.FindRecord(ctx, email, password, category)
	if err != nil {
		return "", fmt.Errorf("find record: %w", err)
	}
	if rec == nil {
		return "", ErrRecordNotFound
	}
	if rec.Passkey != "" {
		return rec.Passkey, nil
	}

	s.issueMu.Lock()
	defer s.issueMu.Unlock()

	for attempt := 0; attempt < passkey.MaxAttempts; attempt++ {
		candidate, err := passkey.Generate()
		if err != nil {
			return "", err
		}
		taken, err := s.repo.HasPasskey(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check passkey uniqueness: %w", err)
		}
		if taken {
			s.log.Warn("passkey collision, regenerating", zap.Int("attempt", attempt+1))
			continue
		}
		return s.repo.AssignPasskey(ctx, rec.ID, candidate)
	}

	s.log.Error("passkey issuance exhausted", zap.String("category", category))
	return "", passkey.ErrIssuanceExhausted
}

// Authenticate validates a passkey against the selected category and
// returns the matching record.
func (s *Tracking) Authenticate(ctx context.Context, pk, category string) (*models.ApplicationRecord, error) {
	if pk == "" {
		return nil, ErrInvalidPasskey
	}
	rec, err := s.repo.FindRecordByPasskey(ctx, pk, category)
	if err != nil {
		return nil, fmt.Errorf("find record by passkey: %w", err)
	}
	if rec == nil {
		return nil, ErrInvalidPasskey
	}
	return rec, nil
}
