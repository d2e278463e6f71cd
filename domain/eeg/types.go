package eeg

import (
	"fmt"

	"neuroslope/domain/core"
)

// Condition labels a resting-state recording segment.
type Condition string

const (
	EyesClosed Condition = "EYESC"
	EyesOpen   Condition = "EYESO"
)

// Conditions returns all conditions in canonical (export column) order.
func Conditions() []Condition {
	return []Condition{EyesClosed, EyesOpen}
}

// Interval is a half-open sample range [Start, End) into a continuous signal.
type Interval struct {
	Start int
	End   int
}

// Len returns the number of samples covered by the interval.
func (iv Interval) Len() int {
	if iv.End <= iv.Start {
		return 0
	}
	return iv.End - iv.Start
}

// Events maps each condition to its marker-derived intervals, in temporal order.
type Events map[Condition][]Interval

// Recording holds one subject's continuous multichannel time series.
// Channel ordering is significant and must be identical across all
// subjects in a run.
type Recording struct {
	Subject    core.SubjectID
	Channels   []string
	SampleRate float64
	Data       [][]float64 // indexed [channel][sample]
}

// Validate checks structural consistency of the recording.
func (r *Recording) Validate() error {
	if r.SampleRate <= 0 {
		return fmt.Errorf("recording %s: sample rate must be positive, got %v", r.Subject, r.SampleRate)
	}
	if len(r.Channels) == 0 {
		return fmt.Errorf("recording %s: no channels", r.Subject)
	}
	if len(r.Data) != len(r.Channels) {
		return fmt.Errorf("recording %s: %d channels but %d data series", r.Subject, len(r.Channels), len(r.Data))
	}
	for i := 1; i < len(r.Data); i++ {
		if len(r.Data[i]) != len(r.Data[0]) {
			return fmt.Errorf("recording %s: channel %s length %d differs from channel %s length %d",
				r.Subject, r.Channels[i], len(r.Data[i]), r.Channels[0], len(r.Data[0]))
		}
	}
	return nil
}

// Samples returns the time series for one channel index.
func (r *Recording) Samples(ch int) []float64 {
	return r.Data[ch]
}

// NumSamples returns the per-channel sample count.
func (r *Recording) NumSamples() int {
	if len(r.Data) == 0 {
		return 0
	}
	return len(r.Data[0])
}

// Duration returns the recording length in seconds.
func (r *Recording) Duration() float64 {
	return float64(r.NumSamples()) / r.SampleRate
}

// PSD is an averaged power spectral density estimate over a fixed
// frequency grid. Freqs is monotonically increasing; the grid is
// identical for every channel and subject within a run.
type PSD struct {
	Freqs []float64
	Power []float64
}

// SameGrid reports whether two PSDs share an identical frequency grid.
func (p PSD) SameGrid(q PSD) bool {
	if len(p.Freqs) != len(q.Freqs) {
		return false
	}
	for i := range p.Freqs {
		if p.Freqs[i] != q.Freqs[i] {
			return false
		}
	}
	return true
}
