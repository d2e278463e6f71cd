package run

import (
	"neuroslope/domain/core"
)

// Manifest is the complete specification of one pipeline run - the
// truth source written to the export directory before any subject is
// processed, so a result table can always be traced back to the exact
// parameters that produced it.
type Manifest struct {
	RunID       core.RunID     `json:"run_id"`
	Params      Params         `json:"params"`
	CodeVersion string         `json:"code_version"`
	NumSubjects int            `json:"num_subjects"`
	Channels    []string       `json:"channels"`
	CreatedAt   core.Timestamp `json:"created_at"`
}

// NewManifest creates a manifest for a run over the given cohort size.
func NewManifest(params Params, codeVersion string, numSubjects int) *Manifest {
	return &Manifest{
		RunID:       core.NewRunID(),
		Params:      params,
		CodeVersion: codeVersion,
		NumSubjects: numSubjects,
		CreatedAt:   core.Now(),
	}
}

// Validate checks if the manifest is complete.
func (m *Manifest) Validate() error {
	if core.ID(m.RunID).IsEmpty() {
		return core.NewValidationError("manifest", "run_id cannot be empty")
	}
	if m.CodeVersion == "" {
		return core.NewValidationError("manifest", "code_version cannot be empty")
	}
	if m.NumSubjects <= 0 {
		return core.NewValidationError("manifest", "num_subjects must be positive")
	}
	return m.Params.Validate()
}
