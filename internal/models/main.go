// Package models defines the core data structures for grant applications.
package models

import "time"

// ApplicationRecord represents one submitted grant or scholarship
// application. Records are created by the submission pipeline; the
// tracking core only reads them and assigns a passkey once.
type ApplicationRecord struct {
	// ID is the unique identifier for the record.
	ID string `json:"id"`
	// Email is the applicant-supplied address. Not unique across categories.
	Email string `json:"email"`
	// Password is the applicant-chosen secret, stored in plaintext and used
	// only as a lookup key to re-derive the passkey. It is not a security
	// boundary and is never used for any other authorization.
	Password string `json:"password"`
	// GrantCategory is the program the applicant applied to.
	GrantCategory string `json:"grantCategory"`
	// Passkey is the opaque bearer credential for tracking lookups.
	// Empty until first issuance, immutable thereafter.
	Passkey string `json:"passkey,omitempty"`
	// Status is the review status, owned by the review pipeline.
	Status ApplicationStatus `json:"status"`
	// SubmittedAt is when the application was submitted.
	SubmittedAt time.Time `json:"submittedAt"`
}

// ApplicationStatus defines the set of valid review statuses.
type ApplicationStatus string

const (
	// StatusReceived means the application has been submitted and stored.
	StatusReceived ApplicationStatus = "received"
	// StatusUnderReview means the review committee is evaluating it.
	StatusUnderReview ApplicationStatus = "under_review"
	// StatusApproved means the grant was awarded.
	StatusApproved ApplicationStatus = "approved"
	// StatusDeclined means the application was not selected.
	StatusDeclined ApplicationStatus = "declined"
)
