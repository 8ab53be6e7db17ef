// Package storage implements the client-local application record store,
// a JSON file loaded once at startup and persisted on every mutation.
package storage

import (
	"encoding/json"
	"errors"
	"os"
	"sync"

	"github.com/beaconfund/granttrack/internal/models"
)

// ErrRecordUnknown is returned when a passkey assignment targets a record
// that is not in the store.
var ErrRecordUnknown = errors.New("record not in store")

// storeVersion is the persisted layout version.
const storeVersion = 1

// LocalStore holds the browser-equivalent view of the applicant's own
// submitted applications.
type LocalStore struct {
	Records []models.ApplicationRecord `json:"applications"`
	Version int                        `json:"version"`
	mu      sync.Mutex
	path    string
}

// NewLocalStore returns a store backed by the given file path.
// Call Load before use.
func NewLocalStore(path string) *LocalStore {
	return &LocalStore{path: path, Version: storeVersion}
}

// Load reads the store file. A missing file is not an error: the store
// starts empty, matching a client that has never submitted an application.
func (ls *LocalStore) Load() error {
	f, err := os.Open(ls.path)
	if err != nil {
		if os.IsNotExist(err) {
			ls.Records = []models.ApplicationRecord{}
			ls.Version = storeVersion
			return nil
		}
		return err
	}
	defer f.Close()
	return json.NewDecoder(f).Decode(ls)
}

// Save writes the full store back to its file.
func (ls *LocalStore) Save() error {
	f, err := os.Create(ls.path)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(ls)
}

// Append adds a record submitted by the application pipeline. Records
// arrive without a passkey.
func (ls *LocalStore) Append(rec models.ApplicationRecord) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	ls.Records = append(ls.Records, rec)
}

// ListCategories returns the distinct grant categories across all records,
// in first-seen order. Empty store yields an empty slice.
func (ls *LocalStore) ListCategories() []string {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	seen := make(map[string]bool, len(ls.Records))
	categories := []string{}
	for _, rec := range ls.Records {
		if !seen[rec.GrantCategory] {
			seen[rec.GrantCategory] = true
			categories = append(categories, rec.GrantCategory)
		}
	}
	return categories
}

// FindRecord matches the exact (email, password, category) triple,
// case-sensitive. Duplicate triples resolve to the first record in store
// order.
func (ls *LocalStore) FindRecord(email, password, category string) (*models.ApplicationRecord, bool) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	for i := range ls.Records {
		rec := &ls.Records[i]
		if rec.Email == email && rec.Password == password && rec.GrantCategory == category {
			return rec, true
		}
	}
	return nil, false
}

// FindRecordByPasskey matches a passkey within the selected category only.
// A passkey from another category's record does not authenticate here.
func (ls *LocalStore) FindRecordByPasskey(passkey, category string) (*models.ApplicationRecord, bool) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	if passkey == "" {
		return nil, false
	}
	for i := range ls.Records {
		rec := &ls.Records[i]
		if rec.Passkey == passkey && rec.GrantCategory == category {
			return rec, true
		}
	}
	return nil, false
}

// HasPasskey reports whether any record already carries the given passkey.
// Used by the issuer for its store-wide uniqueness check.
func (ls *LocalStore) HasPasskey(passkey string) bool {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	for i := range ls.Records {
		if ls.Records[i].Passkey == passkey {
			return true
		}
	}
	return false
}

// AssignPasskey sets the passkey on the record with the given ID and
// returns the value now on the record. If the record already has a passkey
// the existing value is returned unchanged: issuance is get-or-create.
func (ls *LocalStore) AssignPasskey(id, passkey string) (string, error) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	for i := range ls.Records {
		rec := &ls.Records[i]
		if rec.ID != id {
			continue
		}
		if rec.Passkey != "" {
			return rec.Passkey, nil
		}
		rec.Passkey = passkey
		return passkey, nil
	}
	return "", ErrRecordUnknown
}
