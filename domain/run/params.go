package run

import (
	"fmt"

	"neuroslope/domain/core"
)

// FittingFunc selects the line-fitting strategy for PSD slopes.
type FittingFunc string

const (
	// FitLinreg is ordinary least squares over all post-filter samples.
	FitLinreg FittingFunc = "linreg"
	// FitRANSAC is robust consensus regression; the default, since real
	// PSDs contain localized deviations from pure 1/f behavior that bias
	// an unweighted fit.
	FitRANSAC FittingFunc = "ransac"
)

// TrialPolicy selects whether trial lengths are modified before windowing.
type TrialPolicy string

const (
	// PolicyNone leaves every recording untouched.
	PolicyNone TrialPolicy = "none"
	// PolicyEqualize restricts subjects of the configured target group to
	// a fixed sub-epoch range, equalizing analyzable duration across
	// groups whose recordings differ in length.
	PolicyEqualize TrialPolicy = "equalize-to-target-group"
)

// Montage selects the sensor layout or source model the run operates on.
type Montage string

const (
	MontageSensorLevel Montage = "sensor-level"
	MontageDMN         Montage = "dmn"
	MontageFrontal     Montage = "frontal"
	MontageDorsal      Montage = "dorsal"
	MontageVentral     Montage = "ventral"
)

var knownMontages = map[Montage]bool{
	MontageSensorLevel: true,
	MontageDMN:         true,
	MontageFrontal:     true,
	MontageDorsal:      true,
	MontageVentral:     true,
}

// Params is the complete run-global configuration surface. It is
// validated once before any subject is processed and never mutated
// afterwards.
type Params struct {
	Montage Montage

	// Buffer band excluded from fitting, to avoid alpha contamination.
	PSDBufferLoFreq float64
	PSDBufferHiFreq float64

	// Fitting range and strategy.
	FittingFunc   FittingFunc
	FittingLoFreq float64
	FittingHiFreq float64

	// Trial-length policy. TargetGroup and the sub-epoch range only
	// apply under PolicyEqualize.
	TrialPolicy  TrialPolicy
	TargetGroup  string
	SubEpochLo   int
	SubEpochHi   int

	// Analysis windowing.
	WindowSeconds   float64
	NWinsUpperLimit int // 0 means unlimited
}

// DefaultParams mirrors the canonical resting-state analysis:
// RANSAC over 2-24 Hz with the 7-14 Hz alpha buffer excluded,
// 10-second windows, no window cap.
func DefaultParams() Params {
	return Params{
		Montage:         MontageSensorLevel,
		PSDBufferLoFreq: 7,
		PSDBufferHiFreq: 14,
		FittingFunc:     FitRANSAC,
		FittingLoFreq:   2,
		FittingHiFreq:   24,
		TrialPolicy:     PolicyNone,
		SubEpochLo:      0,
		SubEpochHi:      30,
		WindowSeconds:   10,
		NWinsUpperLimit: 0,
	}
}

// Validate checks the configuration before any subject is processed.
// All violations are configuration errors, fatal for the whole run.
func (p Params) Validate() error {
	if !knownMontages[p.Montage] {
		return fmt.Errorf("%w: %q", core.ErrUnknownMontage, p.Montage)
	}
	switch p.FittingFunc {
	case FitLinreg, FitRANSAC:
	default:
		return fmt.Errorf("%w: %q", core.ErrUnknownFitter, p.FittingFunc)
	}
	switch p.TrialPolicy {
	case PolicyNone:
	case PolicyEqualize:
		if p.TargetGroup == "" {
			return core.NewValidationError("target_group", "required under equalize-to-target-group policy")
		}
		if p.SubEpochLo < 0 || p.SubEpochHi <= p.SubEpochLo {
			return core.NewValidationError("sub_epochs",
				fmt.Sprintf("range [%d, %d) is empty or negative", p.SubEpochLo, p.SubEpochHi))
		}
	default:
		return fmt.Errorf("%w: %q", core.ErrUnknownPolicy, p.TrialPolicy)
	}
	if p.FittingLoFreq <= 0 || p.FittingHiFreq <= p.FittingLoFreq {
		return core.NewValidationError("fitting_range",
			fmt.Sprintf("[%v, %v] is not a positive increasing range", p.FittingLoFreq, p.FittingHiFreq))
	}
	// The buffer is a closed sub-interval of the fitting range, not the
	// complement: lo <= buf_lo <= buf_hi <= hi.
	if p.PSDBufferLoFreq < p.FittingLoFreq ||
		p.PSDBufferHiFreq < p.PSDBufferLoFreq ||
		p.FittingHiFreq < p.PSDBufferHiFreq {
		return fmt.Errorf("%w: buffer [%v, %v] vs fitting [%v, %v]", core.ErrBufferNotNested,
			p.PSDBufferLoFreq, p.PSDBufferHiFreq, p.FittingLoFreq, p.FittingHiFreq)
	}
	if p.WindowSeconds <= 0 {
		return core.NewValidationError("window_seconds", "must be positive")
	}
	if p.NWinsUpperLimit < 0 {
		return core.NewValidationError("nwins_upper_limit", "must be >= 0 (0 means unlimited)")
	}
	return nil
}

// EqualizeApplies reports whether the trial-length modification applies
// to a subject of the given group.
func (p Params) EqualizeApplies(group string) bool {
	return p.TrialPolicy == PolicyEqualize && group == p.TargetGroup
}
