package cohort

import (
	"fmt"

	"neuroslope/domain/core"
	"neuroslope/domain/eeg"
)

// Stage tracks a subject's position in the per-subject pipeline.
// Transitions are strictly one-way; re-entry requires rebuilding the
// subject from scratch.
type Stage int

const (
	StageRaw Stage = iota
	StageModified
	StagePSDsComputed
	StageSlopesFitted
)

func (s Stage) String() string {
	switch s {
	case StageRaw:
		return "raw"
	case StageModified:
		return "modified"
	case StagePSDsComputed:
		return "psds_computed"
	case StageSlopesFitted:
		return "slopes_fitted"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// ChannelCondition keys per-channel per-condition pipeline products.
type ChannelCondition struct {
	Channel   string
	Condition eeg.Condition
}

// SlopeFit is the fitted line for one (subject, channel, condition)
// PSD in log-log space. Valid is false when the fit was skipped for
// insufficient data; Slope and Intercept are NaN in that case.
type SlopeFit struct {
	Slope     float64
	Intercept float64
	RSquared  float64
	NumPoints int
	Valid     bool
}

// Subject owns one recording's full pipeline state: demographics,
// raw signal, event markers, per-channel PSDs and fitted slopes.
type Subject struct {
	ID    core.SubjectID
	Group string
	Age   int
	Sex   string

	Recording *eeg.Recording
	Events    eeg.Events

	PSDs         map[ChannelCondition]eeg.PSD
	Fits         map[ChannelCondition]SlopeFit
	WindowCounts map[eeg.Condition]int

	stage Stage
}

// NewSubject binds a recording, its event markers and cohort metadata
// into a raw-stage subject.
func NewSubject(rec *eeg.Recording, events eeg.Events, group string, age int, sex string) *Subject {
	return &Subject{
		ID:           rec.Subject,
		Group:        group,
		Age:          age,
		Sex:          sex,
		Recording:    rec,
		Events:       events,
		PSDs:         make(map[ChannelCondition]eeg.PSD),
		Fits:         make(map[ChannelCondition]SlopeFit),
		WindowCounts: make(map[eeg.Condition]int),
		stage:        StageRaw,
	}
}

// Stage returns the subject's current pipeline stage.
func (s *Subject) Stage() Stage {
	return s.stage
}

// MarkModified records that the trial-length modification has been
// applied. Only valid from the raw stage.
func (s *Subject) MarkModified() error {
	if s.stage != StageRaw {
		return fmt.Errorf("%w: cannot modify trial length at stage %s", core.ErrInvalidState, s.stage)
	}
	s.stage = StageModified
	return nil
}

// MarkPSDsComputed records completed spectral estimation. Valid from
// the raw or modified stage.
func (s *Subject) MarkPSDsComputed() error {
	if s.stage != StageRaw && s.stage != StageModified {
		return fmt.Errorf("%w: cannot compute PSDs at stage %s", core.ErrInvalidState, s.stage)
	}
	s.stage = StagePSDsComputed
	return nil
}

// MarkSlopesFitted records completed slope fitting. Fitting before
// spectral estimation is an invalid-state error.
func (s *Subject) MarkSlopesFitted() error {
	if s.stage != StagePSDsComputed {
		return fmt.Errorf("%w: cannot fit slopes at stage %s", core.ErrInvalidState, s.stage)
	}
	s.stage = StageSlopesFitted
	return nil
}

// Fit returns the slope fit for one channel/condition.
func (s *Subject) Fit(channel string, condition eeg.Condition) (SlopeFit, bool) {
	f, ok := s.Fits[ChannelCondition{Channel: channel, Condition: condition}]
	return f, ok
}
