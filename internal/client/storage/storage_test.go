package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/beaconfund/granttrack/internal/models"
)

func testStore(t *testing.T) *LocalStore {
	t.Helper()
	return NewLocalStore(filepath.Join(t.TempDir(), "applications.json"))
}

func record(email, password, category, passkey string) models.ApplicationRecord {
	return models.ApplicationRecord{
		ID:            email + "/" + category,
		Email:         email,
		Password:      password,
		GrantCategory: category,
		Passkey:       passkey,
		Status:        models.StatusReceived,
		SubmittedAt:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestLoad_FileNotExist(t *testing.T) {
	ls := testStore(t)
	if err := ls.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(ls.Records) != 0 {
		t.Errorf("expected no records, got %d", len(ls.Records))
	}
	if got := ls.ListCategories(); len(got) != 0 {
		t.Errorf("expected no categories, got %v", got)
	}
}

func TestLoad_FileExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "applications.json")
	data := LocalStore{
		Records: []models.ApplicationRecord{record("a@x.com", "pw1", "STEM Grant", "")},
		Version: 1,
	}
	buf, _ := json.Marshal(&data)
	if err := os.WriteFile(path, buf, 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	ls := NewLocalStore(path)
	if err := ls.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(ls.Records) != 1 || ls.Records[0].Email != "a@x.com" {
		t.Errorf("unexpected records: %+v", ls.Records)
	}
	if ls.Version != 1 {
		t.Errorf("expected version 1, got %d", ls.Version)
	}
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "applications.json")
	ls := NewLocalStore(path)
	ls.Append(record("b@x.com", "pw2", "Arts Grant", "PK-AAAAAAAA"))
	if err := ls.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	out := NewLocalStore(path)
	if err := out.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(out.Records) != 1 || out.Records[0].Passkey != "PK-AAAAAAAA" {
		t.Errorf("unexpected saved data: %+v", out.Records)
	}
}

func TestListCategories_Dedupes(t *testing.T) {
	ls := testStore(t)
	ls.Append(record("a@x.com", "pw1", "STEM Grant", ""))
	ls.Append(record("b@x.com", "pw2", "Arts Grant", ""))
	ls.Append(record("c@x.com", "pw3", "STEM Grant", ""))

	got := ls.ListCategories()
	want := []string{"STEM Grant", "Arts Grant"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected %v, got %v", want, got)
		}
	}
}

func TestFindRecord_ExactTripleOnly(t *testing.T) {
	ls := testStore(t)
	ls.Append(record("a@x.com", "pw1", "STEM Grant", ""))

	if _, ok := ls.FindRecord("a@x.com", "pw1", "STEM Grant"); !ok {
		t.Fatal("expected exact triple to match")
	}

	// every one-field mutation of the triple must miss
	misses := [][3]string{
		{"A@x.com", "pw1", "STEM Grant"},
		{"a@x.com", "PW1", "STEM Grant"},
		{"a@x.com", "pw1", "Arts Grant"},
		{"", "pw1", "STEM Grant"},
	}
	for _, m := range misses {
		if _, ok := ls.FindRecord(m[0], m[1], m[2]); ok {
			t.Errorf("expected no match for %v", m)
		}
	}
}

func TestFindRecord_DuplicateTripleFirstWins(t *testing.T) {
	ls := testStore(t)
	first := record("a@x.com", "pw1", "STEM Grant", "PK-FIRST111")
	second := record("a@x.com", "pw1", "STEM Grant", "PK-SECOND22")
	second.ID = "second"
	ls.Append(first)
	ls.Append(second)

	rec, ok := ls.FindRecord("a@x.com", "pw1", "STEM Grant")
	if !ok || rec.Passkey != "PK-FIRST111" {
		t.Errorf("expected first record in store order, got %+v", rec)
	}
}

func TestFindRecordByPasskey_CategoryIsolation(t *testing.T) {
	ls := testStore(t)
	ls.Append(record("a@x.com", "pw1", "STEM Grant", "PK-7F3K9QZ1"))
	ls.Append(record("b@x.com", "pw2", "Arts Grant", "PK-B2B2B2B2"))

	if _, ok := ls.FindRecordByPasskey("PK-7F3K9QZ1", "STEM Grant"); !ok {
		t.Fatal("expected passkey to match in its own category")
	}
	if _, ok := ls.FindRecordByPasskey("PK-7F3K9QZ1", "Arts Grant"); ok {
		t.Error("passkey must not authenticate into another category")
	}
	if _, ok := ls.FindRecordByPasskey("", "STEM Grant"); ok {
		t.Error("empty passkey must not match")
	}
}

func TestAssignPasskey_GetOrCreate(t *testing.T) {
	ls := testStore(t)
	rec := record("a@x.com", "pw1", "STEM Grant", "")
	ls.Append(rec)

	got, err := ls.AssignPasskey(rec.ID, "PK-7F3K9QZ1")
	if err != nil {
		t.Fatalf("AssignPasskey failed: %v", err)
	}
	if got != "PK-7F3K9QZ1" {
		t.Errorf("expected assigned passkey, got %q", got)
	}

	// second assignment must keep the original value
	got, err = ls.AssignPasskey(rec.ID, "PK-DIFFERENT")
	if err != nil {
		t.Fatalf("AssignPasskey failed: %v", err)
	}
	if got != "PK-7F3K9QZ1" {
		t.Errorf("expected existing passkey back, got %q", got)
	}
	if !ls.HasPasskey("PK-7F3K9QZ1") {
		t.Error("expected store to carry the assigned passkey")
	}
	if ls.HasPasskey("PK-DIFFERENT") {
		t.Error("second value must never be stored")
	}

	if _, err := ls.AssignPasskey("missing", "PK-XXXXXXXX"); err == nil {
		t.Error("expected error for unknown record")
	}
}
