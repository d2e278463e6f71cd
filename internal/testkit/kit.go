// Package testkit provides synthetic recordings with known spectral
// slope and in-memory collaborator ports for pipeline tests.
package testkit

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/dsp/fourier"

	"neuroslope/domain/cohort"
	"neuroslope/domain/core"
	"neuroslope/domain/eeg"
)

// GenerateOneOverF synthesizes n samples whose PSD follows
// f^slope (slope is negative for 1/f-like decay), via random-phase
// spectral synthesis and an inverse real FFT.
func GenerateOneOverF(n int, sampleRate, slope float64, rng *rand.Rand) []float64 {
	fft := fourier.NewFFT(n)
	coeffs := make([]complex128, n/2+1)
	for k := 1; k < len(coeffs); k++ {
		f := fft.Freq(k) * sampleRate
		mag := math.Pow(f, slope/2)
		phase := rng.Float64() * 2 * math.Pi
		coeffs[k] = complex(mag*math.Cos(phase), mag*math.Sin(phase))
	}
	seq := fft.Sequence(nil, coeffs)
	inv := 1 / float64(n)
	for i := range seq {
		seq[i] *= inv
	}
	return seq
}

// SyntheticRecording builds a multichannel recording of 1/f noise with
// the given spectral slope, deterministically from the seed.
func SyntheticRecording(id core.SubjectID, channels []string, sampleRate, seconds, slope float64, seed int64) *eeg.Recording {
	rng := rand.New(rand.NewSource(seed))
	n := int(seconds * sampleRate)
	data := make([][]float64, len(channels))
	for i := range channels {
		data[i] = GenerateOneOverF(n, sampleRate, slope, rng)
	}
	return &eeg.Recording{
		Subject:    id,
		Channels:   channels,
		SampleRate: sampleRate,
		Data:       data,
	}
}

// SplitHalfEvents marks the first half of a recording eyes-closed and
// the second half eyes-open.
func SplitHalfEvents(rec *eeg.Recording) eeg.Events {
	half := rec.NumSamples() / 2
	return eeg.Events{
		eeg.EyesClosed: {{Start: 0, End: half}},
		eeg.EyesOpen:   {{Start: half, End: rec.NumSamples()}},
	}
}

// PowerLawPSD builds a PSD that is perfectly linear in log-log space:
// log10(power) = intercept + slope*log10(freq). Zero and negative
// frequencies get zero power.
func PowerLawPSD(freqs []float64, slope, intercept float64) eeg.PSD {
	power := make([]float64, len(freqs))
	for i, f := range freqs {
		if f <= 0 {
			continue
		}
		power[i] = math.Pow(10, intercept+slope*math.Log10(f))
	}
	return eeg.PSD{Freqs: append([]float64(nil), freqs...), Power: power}
}

// LinearFreqs returns an evenly spaced frequency grid [0, (n-1)*step].
func LinearFreqs(n int, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i) * step
	}
	return out
}

// MemoryCohort implements the recording, event and metadata ports over
// in-memory fixtures.
type MemoryCohort struct {
	order  []core.SubjectID
	recs   map[core.SubjectID]*eeg.Recording
	events map[core.SubjectID]eeg.Events
	roster cohort.Roster
}

// NewMemoryCohort creates an empty fixture cohort.
func NewMemoryCohort() *MemoryCohort {
	return &MemoryCohort{
		recs:   make(map[core.SubjectID]*eeg.Recording),
		events: make(map[core.SubjectID]eeg.Events),
		roster: make(cohort.Roster),
	}
}

// Add registers one subject with its recording, events and metadata.
func (m *MemoryCohort) Add(rec *eeg.Recording, events eeg.Events, demo cohort.Demographics) {
	m.order = append(m.order, rec.Subject)
	m.recs[rec.Subject] = rec
	m.events[rec.Subject] = events
	m.roster[rec.Subject] = demo
}

// DropMetadata removes one subject's roster entry, leaving the
// recording discoverable. Used to exercise the fail-fast metadata check.
func (m *MemoryCohort) DropMetadata(id core.SubjectID) {
	delete(m.roster, id)
}

// ListSubjects returns subjects in insertion order.
func (m *MemoryCohort) ListSubjects(ctx context.Context) ([]core.SubjectID, error) {
	return append([]core.SubjectID(nil), m.order...), nil
}

// LoadRecording returns the fixture recording.
func (m *MemoryCohort) LoadRecording(ctx context.Context, id core.SubjectID) (*eeg.Recording, error) {
	rec, ok := m.recs[id]
	if !ok {
		return nil, fmt.Errorf("no fixture recording for subject %s", id)
	}
	return rec, nil
}

// LoadEvents returns the fixture events.
func (m *MemoryCohort) LoadEvents(ctx context.Context, id core.SubjectID) (eeg.Events, error) {
	ev, ok := m.events[id]
	if !ok {
		return nil, fmt.Errorf("no fixture events for subject %s", id)
	}
	return ev, nil
}

// LoadRoster returns the fixture roster.
func (m *MemoryCohort) LoadRoster(ctx context.Context) (cohort.Roster, error) {
	out := make(cohort.Roster, len(m.roster))
	for k, v := range m.roster {
		out[k] = v
	}
	return out, nil
}
