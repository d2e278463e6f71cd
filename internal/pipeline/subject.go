package pipeline

import (
	"fmt"

	"neuroslope/domain/cohort"
	"neuroslope/domain/core"
	"neuroslope/domain/eeg"
	"neuroslope/domain/run"
	"neuroslope/internal"
	"neuroslope/internal/fit"
	"neuroslope/internal/spectral"
	"neuroslope/ports"
)

// SubjectProcessor runs one subject's full pipeline: conditional
// trial-length modification, windowing and spectral estimation per
// channel per condition, then slope fitting with run-global parameters.
//
// Per-channel data shortages are recorded as missing values with a
// diagnostic log entry rather than aborting the cohort; a single
// channel's artifact should not void other channels or subjects.
type SubjectProcessor struct {
	params run.Params
	est    *spectral.Estimator
	log    *internal.Logger
}

// NewSubjectProcessor creates a processor sharing one run-global
// estimator, so every subject lands on an identical frequency grid.
func NewSubjectProcessor(params run.Params, est *spectral.Estimator, logger *internal.Logger) *SubjectProcessor {
	return &SubjectProcessor{
		params: params,
		est:    est,
		log:    logger.WithComponent("Pipeline"),
	}
}

// Process advances the subject through its stages in order. The fitter
// is per-subject owned; RANSAC state is not safe for concurrent use.
func (p *SubjectProcessor) Process(s *cohort.Subject, fitter ports.LineFitter) error {
	if p.params.EqualizeApplies(s.Group) {
		if err := p.ModifyTrialLength(s); err != nil {
			return err
		}
	}
	if err := p.ComputePSDs(s); err != nil {
		return err
	}
	return p.FitSlopes(s, fitter)
}

// ModifyTrialLength restricts the subject's usable signal to the
// configured sub-epoch range. Applied at most once, before windowing.
func (p *SubjectProcessor) ModifyTrialLength(s *cohort.Subject) error {
	if err := s.MarkModified(); err != nil {
		return fmt.Errorf("subject %s: %w", s.ID, err)
	}
	s.Events = spectral.RestrictEvents(s.Events, p.params.SubEpochLo, p.params.SubEpochHi, p.est.WindowLength())
	p.log.Debug("subject %s (%s): trial length restricted to sub-epochs [%d, %d)",
		s.ID, s.Group, p.params.SubEpochLo, p.params.SubEpochHi)
	return nil
}

// ComputePSDs populates the subject's per-channel per-condition PSD
// records and records window counts per condition as a byproduct of
// windowing.
func (p *SubjectProcessor) ComputePSDs(s *cohort.Subject) error {
	for _, cond := range eeg.Conditions() {
		intervals := s.Events[cond]
		count := 0
		for chIdx, ch := range s.Recording.Channels {
			wins, err := spectral.Windows(s.Recording.Samples(chIdx), intervals,
				p.est.WindowLength(), p.params.NWinsUpperLimit)
			if err != nil {
				if core.IsInsufficientData(err) {
					p.log.Warn("subject %s channel %s condition %s: %v; recording as missing",
						s.ID, ch, cond, err)
					break // all channels share the interval set
				}
				return core.NewFitError(s.ID, ch, string(cond), err)
			}
			count = len(wins)

			psd, err := p.est.AveragePSD(wins)
			if err != nil {
				return core.NewFitError(s.ID, ch, string(cond), err)
			}
			s.PSDs[cohort.ChannelCondition{Channel: ch, Condition: cond}] = psd
		}
		s.WindowCounts[cond] = count
	}
	if err := s.MarkPSDsComputed(); err != nil {
		return fmt.Errorf("subject %s: %w", s.ID, err)
	}
	return nil
}

// FitSlopes fits a line to every populated PSD record. Fit-degenerate
// channels (too-wide buffer, no consensus) become missing values.
func (p *SubjectProcessor) FitSlopes(s *cohort.Subject, fitter ports.LineFitter) error {
	if s.Stage() != cohort.StagePSDsComputed {
		return fmt.Errorf("subject %s: %w: fit requested at stage %s",
			s.ID, core.ErrInvalidState, s.Stage())
	}
	for _, cond := range eeg.Conditions() {
		for _, ch := range s.Recording.Channels {
			key := cohort.ChannelCondition{Channel: ch, Condition: cond}
			psd, ok := s.PSDs[key]
			if !ok {
				continue // windowing already recorded this as missing
			}
			sf, err := fit.FitPSD(psd, p.params, fitter)
			if err != nil {
				if core.IsInsufficientData(err) {
					p.log.Warn("subject %s channel %s condition %s: %v; recording as missing",
						s.ID, ch, cond, err)
					continue
				}
				return core.NewFitError(s.ID, ch, string(cond), err)
			}
			s.Fits[key] = sf
		}
	}
	if err := s.MarkSlopesFitted(); err != nil {
		return fmt.Errorf("subject %s: %w", s.ID, err)
	}
	return nil
}
