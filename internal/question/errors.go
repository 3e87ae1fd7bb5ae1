package question

import (
	"errors"
	"fmt"
)

// Tier-level failure classes. None of these ever cross the pipeline boundary;
// they only steer tier skipping and logging.
var (
	// ErrNotConfigured marks a tier whose client or credential is absent.
	ErrNotConfigured = errors.New("not configured")
	// ErrProvider marks a network or parse failure from the generative source.
	ErrProvider = errors.New("provider failure")
	// ErrStore marks a persistence query or insert failure.
	ErrStore = errors.New("store failure")
)

// ValidationError rejects a single candidate. Malformed candidates are a
// normal, high-frequency outcome given they originate from free-form
// generated text, so this is data, not an exception.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid candidate: %s", e.Reason)
}
