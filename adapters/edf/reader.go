// Package edf loads continuous EEG recordings from EDF files via the
// OpenPSG EDF reader.
package edf

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	openpsg "github.com/OpenPSG/edf"

	"neuroslope/domain/core"
	"neuroslope/domain/eeg"
	"neuroslope/internal"
)

const readChunk = 4096

// ReaderAdapter implements the recording port over a directory of
// per-subject .edf files. The channel list and sample rate are
// run-global configuration: every file must carry exactly the
// configured signals in the configured order, which the cohort runner
// re-validates against the first subject.
type ReaderAdapter struct {
	dir        string
	channels   []string
	sampleRate float64
	log        *internal.Logger
}

// NewReaderAdapter creates a loader for the given import directory.
func NewReaderAdapter(dir string, channels []string, sampleRate float64, logger *internal.Logger) (*ReaderAdapter, error) {
	if len(channels) == 0 {
		return nil, core.NewValidationError("channels", "channel list cannot be empty")
	}
	if sampleRate <= 0 {
		return nil, core.NewValidationError("sample_rate", "must be positive")
	}
	return &ReaderAdapter{
		dir:        dir,
		channels:   channels,
		sampleRate: sampleRate,
		log:        logger.WithComponent("EDFReader"),
	}, nil
}

// ListSubjects discovers every .edf file under the import directory.
// The subject identity is the file name without extension. Order is
// lexicographic, so the cohort index assignment is stable across runs.
func (a *ReaderAdapter) ListSubjects(ctx context.Context) ([]core.SubjectID, error) {
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list import directory %s: %w", a.dir, err)
	}
	var ids []core.SubjectID
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".edf") {
			continue
		}
		id, err := core.ParseSubjectID(strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	a.log.Debug("discovered %d recordings in %s", len(ids), a.dir)
	return ids, nil
}

// LoadRecording reads all configured signals of one subject's file.
func (a *ReaderAdapter) LoadRecording(ctx context.Context, id core.SubjectID) (*eeg.Recording, error) {
	path := filepath.Join(a.dir, id.String()+".edf")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open recording %s: %w", path, err)
	}
	defer f.Close()

	er, err := openpsg.Open(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse EDF header of %s: %w", path, err)
	}

	data := make([][]float64, len(a.channels))
	for i, ch := range a.channels {
		sr, err := er.Signal(i)
		if err != nil {
			return nil, fmt.Errorf("recording %s has no signal %d (%s): %w", id, i, ch, err)
		}
		samples, err := readAll(sr)
		if err != nil {
			return nil, fmt.Errorf("failed to read signal %s of recording %s: %w", ch, id, err)
		}
		data[i] = samples
	}

	rec := &eeg.Recording{
		Subject:    id,
		Channels:   a.channels,
		SampleRate: a.sampleRate,
		Data:       data,
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	a.log.Debug("loaded %s: %d channels x %d samples (%.1fs)",
		id, len(rec.Channels), rec.NumSamples(), rec.Duration())
	return rec, nil
}

func readAll(sr *openpsg.SignalReader) ([]float64, error) {
	var out []float64
	buf := make([]float64, readChunk)
	for {
		n, err := sr.Read(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
	}
}
