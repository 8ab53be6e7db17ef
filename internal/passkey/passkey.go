// Package passkey issues the opaque bearer credentials used for
// tracking-status lookups. A passkey is assigned to a record exactly once;
// recovery re-surfaces the existing value instead of minting a new one.
package passkey

import (
	"crypto/rand"
	"errors"
	"fmt"
	"sync"

	"github.com/beaconfund/granttrack/internal/models"
	"go.uber.org/zap"
)

// ErrIssuanceExhausted is returned when passkey generation keeps colliding
// with existing passkeys. Operational only: callers surface a generic
// "try again" message, never this detail.
var ErrIssuanceExhausted = errors.New("passkey issuance exhausted retries")

const (
	// prefix marks every issued passkey.
	prefix = "PK-"
	// tokenLen is the number of random characters after the prefix.
	tokenLen = 8
	// alphabet excludes 0/O and 1/I so applicants can retype passkeys
	// without ambiguity.
	alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	// MaxAttempts bounds the collision-regenerate loop.
	MaxAttempts = 5
)

// Store is the record-store surface the issuer needs: a uniqueness probe,
// a once-only assignment, and best-effort persistence.
type Store interface {
	HasPasskey(passkey string) bool
	AssignPasskey(id, passkey string) (string, error)
	Save() error
}

// Issuer generates unique passkeys against a record store.
type Issuer struct {
	// mu serializes the check-uniqueness-then-assign sequence so a
	// re-entrant call (rapid double submission) cannot double-issue.
	mu  sync.Mutex
	log *zap.Logger
}

// NewIssuer constructs an Issuer. log must not be nil.
func NewIssuer(log *zap.Logger) *Issuer {
	return &Issuer{log: log}
}

// Generate returns one candidate passkey, e.g. "PK-7F3K9QZ1".
func Generate() (string, error) {
	buf := make([]byte, tokenLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}
	return prefix + string(buf), nil
}

// Issue produces a passkey that no record in the store carries,
// regenerating on collision up to MaxAttempts times.
func (i *Issuer) Issue(store Store) (string, error) {
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		candidate, err := Generate()
		if err != nil {
			return "", err
		}
		if !store.HasPasskey(candidate) {
			return candidate, nil
		}
		i.log.Warn("passkey collision, regenerating", zap.Int("attempt", attempt+1))
	}
	return "", ErrIssuanceExhausted
}

// GetOrIssue is the single entry point for both first-time issuance and
// recovery. It returns the record's existing passkey when present;
// otherwise it issues a fresh one, assigns it through the store, and
// persists. Persistence failure is logged but does not undo the in-memory
// assignment: the credential is low-stakes and durability is best-effort.
func (i *Issuer) GetOrIssue(store Store, rec *models.ApplicationRecord) (string, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if rec.Passkey != "" {
		return rec.Passkey, nil
	}

	candidate, err := i.Issue(store)
	if err != nil {
		return "", err
	}

	assigned, err := store.AssignPasskey(rec.ID, candidate)
	if err != nil {
		return "", fmt.Errorf("assign passkey: %w", err)
	}
	rec.Passkey = assigned

	if err := store.Save(); err != nil {
		i.log.Error("failed to persist store after issuance", zap.Error(err))
	}
	return assigned, nil
}
