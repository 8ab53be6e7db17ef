// Package service implements the grant-tracking business logic: the
// authentication stage machine driven by the rendering layer, and the
// server-side tracking service backed by a record repository.
package service

import (
	"errors"

	"github.com/beaconfund/granttrack/internal/models"
	"github.com/beaconfund/granttrack/internal/passkey"
	"go.uber.org/zap"
)

// Stage is one step of the tracking login flow. The set is closed so the
// compiler rejects unhandled stages.
type Stage int

const (
	// StageGrantSelection — pick the grant category to authenticate into.
	// Initial stage, and the target of every "change grant" action.
	StageGrantSelection Stage = iota
	// StagePasskeyLogin — enter the passkey for the selected category.
	StagePasskeyLogin
	// StageGetPasskey — first-time issuance via email and password.
	StageGetPasskey
	// StagePasskeyRecovery — re-surface a lost passkey via email and
	// password. Same semantics as StageGetPasskey, separate entry point.
	StagePasskeyRecovery
	// StageTracking — authenticated status view. Terminal until logout.
	StageTracking
)

// String returns the stage name used in logs and error messages.
func (s Stage) String() string {
	switch s {
	case StageGrantSelection:
		return "grantSelection"
	case StagePasskeyLogin:
		return "passkeyLogin"
	case StageGetPasskey:
		return "getPasskey"
	case StagePasskeyRecovery:
		return "passKeyRecovery"
	case StageTracking:
		return "tracking"
	}
	return "unknown"
}

// RecordStore is the store surface the flow needs. The client-local
// LocalStore satisfies it.
type RecordStore interface {
	passkey.Store
	ListCategories() []string
	FindRecord(email, password, category string) (*models.ApplicationRecord, bool)
	FindRecordByPasskey(pk, category string) (*models.ApplicationRecord, bool)
}

// Flow is the authentication state machine. It holds the current stage,
// the selected category, the last stage-scoped error, and the passkey
// surfaced by issuance or recovery. All methods are synchronous; the
// rendering layer reads the state back after each action.
type Flow struct {
	store  RecordStore
	issuer *passkey.Issuer
	log    *zap.Logger

	stage    Stage
	category string
	issued   string
	current  *models.ApplicationRecord
	stageErr *StageError
}

// NewFlow returns a flow at the grant-selection stage.
func NewFlow(store RecordStore, issuer *passkey.Issuer, log *zap.Logger) *Flow {
	return &Flow{
		store:  store,
		issuer: issuer,
		log:    log,
		stage:  StageGrantSelection,
	}
}

// Stage returns the current stage.
func (f *Flow) Stage() Stage { return f.stage }

// Categories returns the selectable grant categories.
func (f *Flow) Categories() []string { return f.store.ListCategories() }

// SelectedCategory returns the category chosen at the selection stage.
func (f *Flow) SelectedCategory() string { return f.category }

// IssuedPasskey returns the passkey surfaced by the last successful
// issuance or recovery, for display and login pre-fill. Empty otherwise.
func (f *Flow) IssuedPasskey() string { return f.issued }

// Record returns the authenticated record while in the tracking stage.
func (f *Flow) Record() *models.ApplicationRecord {
	if f.stage != StageTracking {
		return nil
	}
	return f.current
}

// Err returns the stage-scoped error from the last action, or nil.
// Errors are cleared by the next successful transition.
func (f *Flow) Err() *StageError { return f.stageErr }

// SelectGrant stores the chosen category and advances to passkey login.
// Fails with NoApplicationsFound when the store is empty and with
// NoGrantSelected when the pick is blank or not an existing category.
func (f *Flow) SelectGrant(category string) error {
	categories := f.store.ListCategories()
	if len(categories) == 0 {
		return f.fail(StageGrantSelection, CodeNoApplicationsFound, "no submitted applications found")
	}
	valid := false
	for _, c := range categories {
		if c == category {
			valid = true
			break
		}
	}
	if category == "" || !valid {
		return f.fail(StageGrantSelection, CodeNoGrantSelected, "select a grant to continue")
	}

	f.category = category
	f.advance(StagePasskeyLogin)
	return nil
}

// SubmitPasskey authenticates the passkey against the selected category.
// On success the flow enters the tracking stage; on failure it stays at
// login with an InvalidPasskey error.
func (f *Flow) SubmitPasskey(pk string) error {
	rec, ok := f.store.FindRecordByPasskey(pk, f.category)
	if !ok {
		return f.fail(StagePasskeyLogin, CodeInvalidPasskey, "passkey not recognized for this grant")
	}

	f.current = rec
	f.advance(StageTracking)
	return nil
}

// RequestPasskey moves from login to the first-time issuance stage.
func (f *Flow) RequestPasskey() {
	f.advance(StageGetPasskey)
}

// RequestRecovery moves from login to the lost-passkey stage.
func (f *Flow) RequestRecovery() {
	f.advance(StagePasskeyRecovery)
}

// SubmitCredentials resolves an email/password pair to a record in the
// selected category and returns its passkey, issuing one if the record has
// none yet. Issuance and recovery are the same operation: a record that
// already has a passkey gets the existing value back, never a new one.
// On success the flow returns to login with the passkey surfaced.
func (f *Flow) SubmitCredentials(email, password string) (string, error) {
	stage := f.stage
	if email == "" || password == "" {
		return "", f.fail(stage, CodeRecordNotFound, "no application matches those details")
	}

	rec, ok := f.store.FindRecord(email, password, f.category)
	if !ok {
		return "", f.fail(stage, CodeRecordNotFound, "no application matches those details")
	}

	pk, err := f.issuer.GetOrIssue(f.store, rec)
	if err != nil {
		if errors.Is(err, passkey.ErrIssuanceExhausted) {
			f.log.Error("passkey issuance exhausted", zap.String("category", f.category))
			return "", f.fail(stage, CodeIssuanceExhausted, "something went wrong, please try again")
		}
		return "", err
	}

	f.issued = pk
	f.advance(StagePasskeyLogin)
	return pk, nil
}

// ChangeGrant returns to the selection stage from anywhere, clearing the
// selected category, any surfaced passkey, and the authenticated record.
// From the tracking stage this is the logout action.
func (f *Flow) ChangeGrant() {
	f.category = ""
	f.issued = ""
	f.current = nil
	f.advance(StageGrantSelection)
}

func (f *Flow) advance(next Stage) {
	f.stage = next
	f.stageErr = nil
}

func (f *Flow) fail(stage Stage, code Code, message string) error {
	f.stageErr = newStageError(stage, code, message)
	return f.stageErr
}
