// Package postgres persists run results into a relational store for
// longitudinal querying across runs.
package postgres

import (
	"context"
	"math"

	"github.com/jmoiron/sqlx"

	"neuroslope/domain/cohort"
	"neuroslope/domain/run"
	"neuroslope/internal/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id        TEXT PRIMARY KEY,
	montage       TEXT NOT NULL,
	fitting_func  TEXT NOT NULL,
	fitting_lo    DOUBLE PRECISION NOT NULL,
	fitting_hi    DOUBLE PRECISION NOT NULL,
	buffer_lo     DOUBLE PRECISION NOT NULL,
	buffer_hi     DOUBLE PRECISION NOT NULL,
	code_version  TEXT NOT NULL,
	num_subjects  INTEGER NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS slope_fits (
	run_id     TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
	subject_id TEXT NOT NULL,
	class      TEXT NOT NULL,
	age        INTEGER NOT NULL,
	sex        TEXT NOT NULL,
	channel    TEXT NOT NULL,
	condition  TEXT NOT NULL,
	nwindows   INTEGER NOT NULL,
	slope      DOUBLE PRECISION,
	PRIMARY KEY (run_id, subject_id, channel, condition)
);`

// ResultRepository implements the result sink over PostgreSQL.
type ResultRepository struct {
	db *sqlx.DB
}

// NewResultRepository creates a new PostgreSQL result repository.
func NewResultRepository(db *sqlx.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// EnsureSchema creates the result tables when absent.
func (r *ResultRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return errors.WithCode(errors.CodeDatabaseError, err)
	}
	return nil
}

// WriteTable stores the run row and one slope row per
// (subject, channel, condition), inside a single transaction so a
// failed export leaves no partial run behind.
func (r *ResultRepository) WriteTable(ctx context.Context, m *run.Manifest, t *cohort.Table) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.WithCode(errors.CodeDatabaseError, err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (run_id, montage, fitting_func, fitting_lo, fitting_hi, buffer_lo, buffer_hi, code_version, num_subjects, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, m.RunID.String(), string(m.Params.Montage), string(m.Params.FittingFunc),
		m.Params.FittingLoFreq, m.Params.FittingHiFreq,
		m.Params.PSDBufferLoFreq, m.Params.PSDBufferHiFreq,
		m.CodeVersion, m.NumSubjects, m.CreatedAt.Time())
	if err != nil {
		return errors.WithCode(errors.CodeDatabaseError, err)
	}

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO slope_fits (run_id, subject_id, class, age, sex, channel, condition, nwindows, slope)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`)
	if err != nil {
		return errors.WithCode(errors.CodeDatabaseError, err)
	}
	defer stmt.Close()

	for _, row := range t.Rows {
		for key, v := range row.Slopes {
			var slope interface{}
			if !math.IsNaN(v) {
				slope = v
			}
			_, err := stmt.ExecContext(ctx, m.RunID.String(), string(row.Subject),
				row.Group, row.Age, row.Sex, key.Channel, string(key.Condition),
				row.NWindows[key.Condition], slope)
			if err != nil {
				return errors.WithCode(errors.CodeDatabaseError, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.WithCode(errors.CodeDatabaseError, err)
	}
	return nil
}
