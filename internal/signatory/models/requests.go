package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	dErrors "petition/pkg/domain-errors"
	"petition/pkg/email"
)

// SignRequest is the POST /signatories body.
type SignRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	State     string `json:"state"`
	Comments  string `json:"comments"`

	// ConsentToPublicListing defaults to true when absent from the payload.
	ConsentToPublicListing *bool `json:"consentToPublicListing"`
	NewsletterOptIn        bool  `json:"newsletterOptIn"`

	IsCongressMember   bool   `json:"isCongressMember"`
	CongressionalTitle string `json:"congressionalTitle"`
	District           string `json:"district"`

	VerificationToken string `json:"verificationToken"`
}

// Normalize trims free-text fields and canonicalizes the email. Call before
// Validate.
func (r *SignRequest) Normalize() {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = email.Normalize(r.Email)
	r.State = strings.TrimSpace(r.State)
	r.Comments = strings.TrimSpace(r.Comments)
	r.District = strings.TrimSpace(r.District)
	r.CongressionalTitle = strings.ToLower(strings.TrimSpace(r.CongressionalTitle))
}

// Validate checks required fields in a stable order so the first missing
// field names the error, matching the "<field> is required" contract.
func (r *SignRequest) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"firstName", r.FirstName},
		{"lastName", r.LastName},
		{"email", r.Email},
		{"state", r.State},
		{"verificationToken", r.VerificationToken},
	}
	for _, f := range required {
		if f.value == "" {
			return dErrors.New(dErrors.CodeValidation, f.name+" is required")
		}
	}

	if _, _, ok := email.Split(r.Email); !ok {
		return dErrors.New(dErrors.CodeValidation, "email is invalid")
	}
	if !CongressionalTitle(r.CongressionalTitle).IsValid() {
		return dErrors.New(dErrors.CodeValidation, "congressionalTitle is invalid")
	}

	return nil
}

// Consent resolves the public-listing consent flag with its default.
func (r *SignRequest) Consent() bool {
	if r.ConsentToPublicListing == nil {
		return true
	}
	return *r.ConsentToPublicListing
}

// Signatory materializes the persisted entity from a validated request plus
// the request-scoped tracking metadata. The store assigns the ID.
func (r *SignRequest) Signatory(sourceIP, deviceFingerprint string, now time.Time) *Signatory {
	return &Signatory{
		FirstName:              r.FirstName,
		LastName:               r.LastName,
		Email:                  r.Email,
		State:                  r.State,
		Comments:               r.Comments,
		ConsentToPublicListing: r.Consent(),
		NewsletterOptIn:        r.NewsletterOptIn,
		SubmittedAt:            now,
		SourceIP:               sourceIP,
		DeviceFingerprint:      deviceFingerprint,
		IsCongressMember:       r.IsCongressMember,
		CongressionalTitle:     CongressionalTitle(r.CongressionalTitle),
		District:               r.District,
	}
}

// SignResponse is the 201 body for an accepted signature.
type SignResponse struct {
	Message string    `json:"message"`
	ID      uuid.UUID `json:"id"`
}

// PublicSignatory is a recent-list entry. Identity fields are populated only
// when the signatory consented to public listing; otherwise the entry exposes
// classification and jurisdiction alone.
type PublicSignatory struct {
	FirstName          string             `json:"firstName,omitempty"`
	LastName           string             `json:"lastName,omitempty"`
	State              string             `json:"state"`
	SubmittedAt        time.Time          `json:"submittedAt"`
	IsCongressMember   bool               `json:"isCongressMember"`
	CongressionalTitle CongressionalTitle `json:"congressionalTitle,omitempty"`
	District           string             `json:"district,omitempty"`
	IsPublic           bool               `json:"isPublic"`
}

// PublicView redacts a signatory for the recent list.
func (s *Signatory) PublicView() PublicSignatory {
	view := PublicSignatory{
		State:              s.State,
		SubmittedAt:        s.SubmittedAt,
		IsCongressMember:   s.IsCongressMember,
		CongressionalTitle: s.CongressionalTitle,
		District:           s.District,
		IsPublic:           s.ConsentToPublicListing,
	}
	if s.ConsentToPublicListing {
		view.FirstName = s.FirstName
		view.LastName = s.LastName
	}
	return view
}

// StateStats is the per-jurisdiction slice of the aggregate stats.
type StateStats struct {
	State           string `json:"state"`
	Total           int    `json:"total"`
	CongressMembers int    `json:"congressMembers"`
	Constituents    int    `json:"constituents"`
}

// StatsResponse is the GET /signatories body.
type StatsResponse struct {
	TotalCount          int               `json:"totalCount"`
	CongressMemberCount int               `json:"congressMemberCount"`
	ConstituentCount    int               `json:"constituentCount"`
	StateBreakdown      []StateStats      `json:"stateBreakdown"`
	Signatories         []PublicSignatory `json:"signatories"`
}
