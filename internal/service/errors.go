package service

import (
	"errors"
	"fmt"
)

// Code identifies a stage-scoped validation failure. The set is closed:
// every code is user-correctable and rendered inline by the stage that
// produced it, never propagated to a global handler.
type Code string

const (
	// CodeNoGrantSelected — the user tried to advance past selection
	// without picking a category.
	CodeNoGrantSelected Code = "NO_GRANT_SELECTED"

	// CodeNoApplicationsFound — the store holds no applications at all.
	CodeNoApplicationsFound Code = "NO_APPLICATIONS_FOUND"

	// CodeRecordNotFound — no record matches the email/password/category
	// triple. Surfaced verbatim with no hint about which field is wrong.
	CodeRecordNotFound Code = "RECORD_NOT_FOUND"

	// CodeInvalidPasskey — the passkey matches no record in the selected
	// category.
	CodeInvalidPasskey Code = "INVALID_PASSKEY"

	// CodeIssuanceExhausted — passkey generation kept colliding. Shown to
	// the user as a generic retry message; the detail goes to the log.
	CodeIssuanceExhausted Code = "ISSUANCE_EXHAUSTED"
)

// StageError is a validation failure scoped to the stage that raised it.
type StageError struct {
	// Code identifies the failure category.
	Code Code
	// Stage is the stage the error belongs to.
	Stage Stage
	// Message is the user-facing text.
	Message string
}

// Error implements the error interface.
func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %s (stage=%s)", e.Code, e.Message, e.Stage)
}

// IsCode reports whether err is a StageError carrying the given code.
// Uses errors.As to handle wrapped errors.
func IsCode(err error, code Code) bool {
	var se *StageError
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}

func newStageError(stage Stage, code Code, message string) *StageError {
	return &StageError{Code: code, Stage: stage, Message: message}
}

// Sentinel errors for the server-side tracking service.
var (
	// ErrRecordNotFound — no record matches the lookup.
	ErrRecordNotFound = errors.New("record not found")
	// ErrInvalidPasskey — the passkey matches no record in the category.
	ErrInvalidPasskey = errors.New("invalid passkey")
)
