package ports

import (
	"context"

	"neuroslope/domain/cohort"
	"neuroslope/domain/run"
)

// ResultSink persists the final cohort table. The core does not dictate
// a format; CSV, XLSX and Postgres sinks all implement this.
type ResultSink interface {
	WriteTable(ctx context.Context, manifest *run.Manifest, table *cohort.Table) error
}
