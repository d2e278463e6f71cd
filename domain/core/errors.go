package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Configuration errors, detected before any subject is processed
	ErrInvalidConfig     = errors.New("invalid run configuration")
	ErrUnknownFitter     = fmt.Errorf("%w: unknown fitting function", ErrInvalidConfig)
	ErrUnknownPolicy     = fmt.Errorf("%w: unknown trial-length policy", ErrInvalidConfig)
	ErrBufferNotNested   = fmt.Errorf("%w: buffer band not nested in fitting range", ErrInvalidConfig)
	ErrUnknownMontage    = fmt.Errorf("%w: unknown montage", ErrInvalidConfig)

	// Cohort errors
	ErrMissingMetadata  = errors.New("recording has no cohort metadata")
	ErrChannelMismatch  = errors.New("channel list differs between subjects")
	ErrGridMismatch     = errors.New("frequency grid differs between subjects")

	// Per-subject / per-channel pipeline errors
	ErrInsufficientData    = errors.New("insufficient data for analysis")
	ErrInsufficientSamples = fmt.Errorf("%w: fewer than two samples after buffer exclusion", ErrInsufficientData)
	ErrNoWindows           = fmt.Errorf("%w: signal shorter than one analysis window", ErrInsufficientData)
	ErrNoConsensus         = fmt.Errorf("%w: no inlier consensus found", ErrInsufficientData)

	// State machine errors
	ErrInvalidState = errors.New("invalid subject pipeline state")
)

// NewValidationError reports a configuration field that failed validation.
func NewValidationError(field string, reason string) error {
	return fmt.Errorf("%w: validation failed for %s: %s", ErrInvalidConfig, field, reason)
}

// NewFitError attaches subject/channel/condition context to a fitting failure
// so QA can attribute it deterministically.
func NewFitError(subject SubjectID, channel string, condition string, err error) error {
	return fmt.Errorf("subject %s channel %s condition %s: %w", subject, channel, condition, err)
}

// IsConfigError reports whether err is a pre-run configuration error.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}

// IsInsufficientData reports whether err is a recoverable per-channel
// data shortage rather than a run-level failure.
func IsInsufficientData(err error) bool {
	return errors.Is(err, ErrInsufficientData)
}
