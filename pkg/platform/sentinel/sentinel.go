package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into rejection reasons.
//
// ErrAlreadyUsed states that a resource (here: a normalized email) is already
// claimed. For validation errors (bad input, missing fields), use
// pkg/domain-errors directly.
var ErrAlreadyUsed = errors.New("already used")
