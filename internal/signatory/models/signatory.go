package models

import (
	"time"

	"github.com/google/uuid"
)

// CongressionalTitle classifies a signatory who is a member of Congress.
type CongressionalTitle string

const (
	TitleRepresentative CongressionalTitle = "representative"
	TitleSenator        CongressionalTitle = "senator"
	TitleNone           CongressionalTitle = ""
)

// IsValid reports whether the title is one of the supported values.
func (t CongressionalTitle) IsValid() bool {
	switch t {
	case TitleRepresentative, TitleSenator, TitleNone:
		return true
	}
	return false
}

// Signatory is the persisted petition signature. Created exactly once by the
// intake flow after all gating checks pass; never mutated afterwards.
// SubmittedAt, SourceIP and DeviceFingerprint are write-once tracking fields.
type Signatory struct {
	// ID is assigned by the store on creation.
	ID uuid.UUID

	FirstName string
	LastName  string

	// Email is stored normalized (lowercased, trimmed). It is the uniqueness
	// key; raw input casing is never compared.
	Email string

	State    string
	Comments string

	// ConsentToPublicListing controls display on the public list, not
	// acceptance of the signature.
	ConsentToPublicListing bool
	NewsletterOptIn        bool

	SubmittedAt       time.Time
	SourceIP          string
	DeviceFingerprint string

	IsCongressMember   bool
	CongressionalTitle CongressionalTitle
	District           string
}
