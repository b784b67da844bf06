package models

// RejectionReason identifies exactly which gate turned a submission away.
// Every rejection in the intake flow is attributable to one reason; nothing
// is silently swallowed.
type RejectionReason string

const (
	ReasonVerificationFailed      RejectionReason = "verification_failed"
	ReasonVerificationUnavailable RejectionReason = "verification_unavailable"
	ReasonDuplicateEmail          RejectionReason = "duplicate_email"
	ReasonTooManyFromLocation     RejectionReason = "too_many_from_location"
	ReasonTooManyAttempts         RejectionReason = "too_many_attempts"
	ReasonSimilarEmail            RejectionReason = "suspiciously_similar_email"
	ReasonStorageUnavailable      RejectionReason = "storage_unavailable"
)

// userMessages are the client-facing texts. Policy rejections are expected
// outcomes and get specific, actionable wording; infrastructure failures stay
// opaque.
var userMessages = map[RejectionReason]string{
	ReasonVerificationFailed:      "Security verification failed. Please try again.",
	ReasonVerificationUnavailable: "Security verification failed. Please try again.",
	ReasonDuplicateEmail:          "This email address has already been used to sign the charter",
	ReasonTooManyFromLocation:     "Too many signatures from this location recently. Please try again later or contact support if you believe this is an error.",
	ReasonTooManyAttempts:         "Please wait before attempting to sign again. If you're having trouble, contact support.",
	ReasonSimilarEmail:            "A very similar email address has already been used. Please check your email spelling or contact support.",
	ReasonStorageUnavailable:      "Internal server error",
}

// Message returns the user-legible text for the reason.
func (r RejectionReason) Message() string {
	if msg, ok := userMessages[r]; ok {
		return msg
	}
	return "Internal server error"
}

// IsPolicy reports whether the reason is a policy rejection (duplicate or
// abuse throttle) as opposed to a collaborator failure.
func (r RejectionReason) IsPolicy() bool {
	switch r {
	case ReasonDuplicateEmail, ReasonTooManyFromLocation, ReasonTooManyAttempts, ReasonSimilarEmail:
		return true
	}
	return false
}

// RejectionError is the terminal Rejected outcome of the intake state
// machine, carrying the reason code for transport mapping and metrics.
type RejectionError struct {
	Reason RejectionReason
}

func (e *RejectionError) Error() string {
	return "submission rejected: " + string(e.Reason)
}

// Reject constructs a RejectionError for the given reason.
func Reject(reason RejectionReason) *RejectionError {
	return &RejectionError{Reason: reason}
}
