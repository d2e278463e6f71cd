package spectral

import (
	"fmt"

	"neuroslope/domain/core"
	"neuroslope/domain/eeg"
)

// Windows segments one channel's usable signal for one condition into
// fixed-length, non-overlapping analysis windows. Window k of an
// interval covers samples [k*winLen, (k+1)*winLen) relative to the
// interval start; trailing partial windows are discarded. Windows never
// straddle interval boundaries.
//
// A positive maxWindows truncates the sequence to at most that many
// windows, earliest retained; 0 means unlimited. The cap exists to
// equalize analyzable duration across groups whose recordings differ
// in length.
//
// The returned windows alias signal; callers must not mutate them.
func Windows(signal []float64, intervals []eeg.Interval, winLen, maxWindows int) ([][]float64, error) {
	if winLen <= 0 {
		return nil, core.NewValidationError("window_length", "must be positive samples")
	}
	if maxWindows < 0 {
		return nil, core.NewValidationError("max_windows", "must be >= 0 (0 means unlimited)")
	}

	var out [][]float64
	for _, iv := range intervals {
		start, end := iv.Start, iv.End
		if start < 0 {
			start = 0
		}
		if end > len(signal) {
			end = len(signal)
		}
		for pos := start; pos+winLen <= end; pos += winLen {
			out = append(out, signal[pos:pos+winLen])
			if maxWindows > 0 && len(out) == maxWindows {
				return out, nil
			}
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %d usable samples across %d intervals, window is %d samples",
			core.ErrNoWindows, totalSamples(intervals, len(signal)), len(intervals), winLen)
	}
	return out, nil
}

func totalSamples(intervals []eeg.Interval, signalLen int) int {
	n := 0
	for _, iv := range intervals {
		start, end := iv.Start, iv.End
		if start < 0 {
			start = 0
		}
		if end > signalLen {
			end = signalLen
		}
		if end > start {
			n += end - start
		}
	}
	return n
}

// RestrictEvents applies the trial-length modification: for each
// condition, only sub-epochs [loEpoch, hiEpoch) of the usable signal
// are kept, where a sub-epoch is one window length counted across the
// condition's intervals in temporal order. This is a precondition
// transform on the marker set, applied once per subject before
// windowing, not a windowing parameter.
func RestrictEvents(events eeg.Events, loEpoch, hiEpoch, winLen int) eeg.Events {
	out := make(eeg.Events, len(events))
	for cond, intervals := range events {
		out[cond] = restrictIntervals(intervals, loEpoch, hiEpoch, winLen)
	}
	return out
}

func restrictIntervals(intervals []eeg.Interval, loEpoch, hiEpoch, winLen int) []eeg.Interval {
	var out []eeg.Interval
	epoch := 0
	for _, iv := range intervals {
		nEpochs := iv.Len() / winLen
		for k := 0; k < nEpochs; k++ {
			if epoch >= loEpoch && epoch < hiEpoch {
				seg := eeg.Interval{Start: iv.Start + k*winLen, End: iv.Start + (k+1)*winLen}
				// Merge with the previous segment when contiguous.
				if n := len(out); n > 0 && out[n-1].End == seg.Start {
					out[n-1].End = seg.End
				} else {
					out = append(out, seg)
				}
			}
			epoch++
		}
	}
	return out
}
