package ports

import (
	"context"

	"neuroslope/domain/cohort"
	"neuroslope/domain/core"
	"neuroslope/domain/eeg"
)

// RecordingPort discovers and loads per-subject recordings. The channel
// list and sample rate must be consistent across all subjects in a run;
// the cohort runner validates this and treats a mismatch as fatal.
type RecordingPort interface {
	// ListSubjects returns the identities of every discovered recording,
	// in a stable order.
	ListSubjects(ctx context.Context) ([]core.SubjectID, error)
	// LoadRecording reads one subject's continuous multichannel signal.
	LoadRecording(ctx context.Context, id core.SubjectID) (*eeg.Recording, error)
}

// EventPort loads the condition boundaries used to split a continuous
// recording before windowing.
type EventPort interface {
	LoadEvents(ctx context.Context, id core.SubjectID) (eeg.Events, error)
}

// MetadataPort yields cohort metadata (group, age, sex) per subject.
// The roster must cover every subject the recording port discovers.
type MetadataPort interface {
	LoadRoster(ctx context.Context) (cohort.Roster, error)
}
