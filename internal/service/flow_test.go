package service

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/beaconfund/granttrack/internal/client/storage"
	"github.com/beaconfund/granttrack/internal/models"
	"github.com/beaconfund/granttrack/internal/passkey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestFlow(t *testing.T, records ...models.ApplicationRecord) (*Flow, *storage.LocalStore) {
	t.Helper()
	ls := storage.NewLocalStore(filepath.Join(t.TempDir(), "applications.json"))
	require.NoError(t, ls.Load())
	for _, rec := range records {
		ls.Append(rec)
	}
	fl := NewFlow(ls, passkey.NewIssuer(zap.NewNop()), zap.NewNop())
	return fl, ls
}

func stemRecord(pk string) models.ApplicationRecord {
	return models.ApplicationRecord{
		ID:            "rec-stem",
		Email:         "a@x.com",
		Password:      "pw1",
		GrantCategory: "STEM Grant",
		Passkey:       pk,
		Status:        models.StatusUnderReview,
		SubmittedAt:   time.Date(2026, 2, 14, 9, 0, 0, 0, time.UTC),
	}
}

func TestFlow_EmptyStoreReportsNoApplications(t *testing.T) {
	fl, _ := newTestFlow(t)

	assert.Equal(t, StageGrantSelection, fl.Stage())
	assert.Empty(t, fl.Categories())

	err := fl.SelectGrant("STEM Grant")
	require.Error(t, err)
	assert.True(t, IsCode(err, CodeNoApplicationsFound))
	assert.Equal(t, StageGrantSelection, fl.Stage(), "must stay at selection")
}

func TestFlow_SelectGrantValidation(t *testing.T) {
	fl, _ := newTestFlow(t, stemRecord(""))

	err := fl.SelectGrant("")
	assert.True(t, IsCode(err, CodeNoGrantSelected))

	err = fl.SelectGrant("Nonexistent Grant")
	assert.True(t, IsCode(err, CodeNoGrantSelected))

	require.NoError(t, fl.SelectGrant("STEM Grant"))
	assert.Equal(t, StagePasskeyLogin, fl.Stage())
	assert.Equal(t, "STEM Grant", fl.SelectedCategory())
	assert.Nil(t, fl.Err(), "transition must clear the stage error")
}

func TestFlow_WrongPasskeyStaysAtLogin(t *testing.T) {
	fl, _ := newTestFlow(t, stemRecord(""))
	require.NoError(t, fl.SelectGrant("STEM Grant"))

	err := fl.SubmitPasskey("ABC")
	require.Error(t, err)
	assert.True(t, IsCode(err, CodeInvalidPasskey))
	assert.Equal(t, StagePasskeyLogin, fl.Stage())
	assert.Nil(t, fl.Record())
}

func TestFlow_IssueThenLogin(t *testing.T) {
	fl, ls := newTestFlow(t, stemRecord(""))
	require.NoError(t, fl.SelectGrant("STEM Grant"))

	fl.RequestPasskey()
	assert.Equal(t, StageGetPasskey, fl.Stage())

	pk, err := fl.SubmitCredentials("a@x.com", "pw1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(pk, "PK-"))
	assert.Equal(t, StagePasskeyLogin, fl.Stage(), "issuance returns to login")
	assert.Equal(t, pk, fl.IssuedPasskey())

	rec, ok := ls.FindRecord("a@x.com", "pw1", "STEM Grant")
	require.True(t, ok)
	assert.Equal(t, pk, rec.Passkey)

	require.NoError(t, fl.SubmitPasskey(pk))
	assert.Equal(t, StageTracking, fl.Stage())
	require.NotNil(t, fl.Record())
	assert.Equal(t, models.StatusUnderReview, fl.Record().Status)
}

func TestFlow_RecoveryReturnsExistingPasskey(t *testing.T) {
	fl, _ := newTestFlow(t, stemRecord("PK-7F3K9QZ1"))
	require.NoError(t, fl.SelectGrant("STEM Grant"))

	fl.RequestRecovery()
	assert.Equal(t, StagePasskeyRecovery, fl.Stage())

	pk, err := fl.SubmitCredentials("a@x.com", "pw1")
	require.NoError(t, err)
	assert.Equal(t, "PK-7F3K9QZ1", pk, "recovery must never mint a new passkey")
	assert.Equal(t, StagePasskeyLogin, fl.Stage())
}

func TestFlow_CredentialsValidation(t *testing.T) {
	fl, _ := newTestFlow(t, stemRecord(""))
	require.NoError(t, fl.SelectGrant("STEM Grant"))
	fl.RequestPasskey()

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"empty email", "", "pw1"},
		{"empty password", "a@x.com", ""},
		{"wrong password", "a@x.com", "pw2"},
		{"wrong email", "b@x.com", "pw1"},
		{"case mismatch", "A@x.com", "pw1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fl.SubmitCredentials(tt.email, tt.password)
			require.Error(t, err)
			assert.True(t, IsCode(err, CodeRecordNotFound))
			assert.Equal(t, StageGetPasskey, fl.Stage(), "must stay for a retry")
		})
	}
}

func TestFlow_CategoryIsolation(t *testing.T) {
	arts := models.ApplicationRecord{
		ID:            "rec-arts",
		Email:         "b@x.com",
		Password:      "pw2",
		GrantCategory: "Arts Grant",
		Passkey:       "PK-ARTSARTS",
	}
	fl, _ := newTestFlow(t, stemRecord("PK-7F3K9QZ1"), arts)

	require.NoError(t, fl.SelectGrant("Arts Grant"))

	// the STEM record's passkey exists in the store but must not open
	// the Arts tracking view
	err := fl.SubmitPasskey("PK-7F3K9QZ1")
	require.Error(t, err)
	assert.True(t, IsCode(err, CodeInvalidPasskey))

	require.NoError(t, fl.SubmitPasskey("PK-ARTSARTS"))
	assert.Equal(t, StageTracking, fl.Stage())
}

func TestFlow_ChangeGrantResetsState(t *testing.T) {
	fl, _ := newTestFlow(t, stemRecord("PK-7F3K9QZ1"))
	require.NoError(t, fl.SelectGrant("STEM Grant"))
	require.NoError(t, fl.SubmitPasskey("PK-7F3K9QZ1"))
	require.Equal(t, StageTracking, fl.Stage())

	fl.ChangeGrant()
	assert.Equal(t, StageGrantSelection, fl.Stage())
	assert.Empty(t, fl.SelectedCategory())
	assert.Empty(t, fl.IssuedPasskey())
	assert.Nil(t, fl.Record())
}

func TestStage_String(t *testing.T) {
	names := map[Stage]string{
		StageGrantSelection:  "grantSelection",
		StagePasskeyLogin:    "passkeyLogin",
		StageGetPasskey:      "getPasskey",
		StagePasskeyRecovery: "passKeyRecovery",
		StageTracking:        "tracking",
	}
	for stage, want := range names {
		assert.Equal(t, want, stage.String())
	}
}
