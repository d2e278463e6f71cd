// Package evt loads cleaned condition-marker files. Each subject has a
// tab-separated .evt file with a header row and one interval per line:
//
//	CONDITION	START	END
//	EYESC	0	30720
//	EYESO	30720	61440
//
// START and END are half-open sample offsets into the continuous
// recording.
package evt

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"neuroslope/domain/core"
	"neuroslope/domain/eeg"
)

// ReaderAdapter implements the event port over a directory of
// per-subject .evt files.
type ReaderAdapter struct {
	dir string
}

// NewReaderAdapter creates a marker loader for the given directory.
func NewReaderAdapter(dir string) *ReaderAdapter {
	return &ReaderAdapter{dir: dir}
}

// LoadEvents parses one subject's marker file into per-condition
// interval lists, preserving file order.
func (a *ReaderAdapter) LoadEvents(ctx context.Context, id core.SubjectID) (eeg.Events, error) {
	path := filepath.Join(a.dir, id.String()+".evt")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open event file %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = '\t'
	r.FieldsPerRecord = 3

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse event file %s: %w", path, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("event file %s has no marker rows", path)
	}

	events := make(eeg.Events)
	for i, row := range rows[1:] { // skip header
		cond := eeg.Condition(row[0])
		switch cond {
		case eeg.EyesClosed, eeg.EyesOpen:
		default:
			return nil, fmt.Errorf("event file %s row %d: unknown condition %q", path, i+2, row[0])
		}
		start, err := strconv.Atoi(row[1])
		if err != nil {
			return nil, fmt.Errorf("event file %s row %d: bad start sample %q", path, i+2, row[1])
		}
		end, err := strconv.Atoi(row[2])
		if err != nil {
			return nil, fmt.Errorf("event file %s row %d: bad end sample %q", path, i+2, row[2])
		}
		if start < 0 || end <= start {
			return nil, fmt.Errorf("event file %s row %d: interval [%d, %d) is empty or negative", path, i+2, start, end)
		}
		events[cond] = append(events[cond], eeg.Interval{Start: start, End: end})
	}
	return events, nil
}
