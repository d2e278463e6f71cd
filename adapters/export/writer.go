// Package export persists run results into a per-run export directory:
// the slope table as CSV and XLSX, the run manifest as JSON, and a
// human-readable markdown parameters report.
package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"neuroslope/domain/cohort"
	"neuroslope/domain/run"
	"neuroslope/internal"
	"neuroslope/internal/errors"
	"neuroslope/internal/pipeline"
)

// DirectorySink writes the result table into a run directory.
type DirectorySink struct {
	dir string
	log *internal.Logger
}

// NewDirectorySink creates a sink over an existing run directory.
func NewDirectorySink(dir string, logger *internal.Logger) *DirectorySink {
	return &DirectorySink{dir: dir, log: logger.WithComponent("Export")}
}

// Dir returns the run directory this sink writes into.
func (s *DirectorySink) Dir() string {
	return s.dir
}

func tableStem(m *run.Manifest) string {
	return fmt.Sprintf("rs-full-%s-%s-%g-%g", m.Params.Montage, m.Params.FittingFunc,
		m.Params.FittingLoFreq, m.Params.FittingHiFreq)
}

// WriteTable exports the table as CSV and XLSX plus the manifest JSON.
func (s *DirectorySink) WriteTable(ctx context.Context, m *run.Manifest, t *cohort.Table) error {
	if err := s.writeCSV(m, t); err != nil {
		return errors.WithCode(errors.CodeExportError, err)
	}
	if err := s.writeXLSX(m, t); err != nil {
		return errors.WithCode(errors.CodeExportError, err)
	}
	if err := s.writeManifest(m); err != nil {
		return errors.WithCode(errors.CodeExportError, err)
	}
	s.log.Info("results exported to %s", s.dir)
	return nil
}

func (s *DirectorySink) writeCSV(m *run.Manifest, t *cohort.Table) error {
	path := filepath.Join(s.dir, tableStem(m)+".csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(t.Header()); err != nil {
		return err
	}
	if err := w.WriteAll(t.Records()); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func (s *DirectorySink) writeXLSX(m *run.Manifest, t *cohort.Table) error {
	path := filepath.Join(s.dir, tableStem(m)+".xlsx")
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	for col, name := range t.Header() {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return err
		}
	}
	for rowIdx, rec := range t.Records() {
		for col, v := range rec {
			if v == "" {
				continue // missing value stays an empty cell
			}
			cell, err := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return f.SaveAs(path)
}

func (s *DirectorySink) writeManifest(m *run.Manifest) error {
	path := filepath.Join(s.dir, "manifest.json")
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// WriteReport writes the parameters.md run report: every run parameter
// plus the per-group slope summaries, so a run directory is readable
// without tooling.
func (s *DirectorySink) WriteReport(m *run.Manifest, summaries []pipeline.GroupSummary) error {
	var b []byte
	b = fmt.Appendf(b, "# Spectral slopes run %s\n\n", m.RunID)
	b = fmt.Appendf(b, "Computed %s with code version %s over %d subjects.\n\n",
		m.CreatedAt.Time().Format("2006-01-02 15:04:05"), m.CodeVersion, m.NumSubjects)

	b = fmt.Appendf(b, "## Parameters\n\n")
	b = fmt.Appendf(b, "| parameter | value |\n|---|---|\n")
	b = fmt.Appendf(b, "| montage | %s |\n", m.Params.Montage)
	b = fmt.Appendf(b, "| fitting_func | %s |\n", m.Params.FittingFunc)
	b = fmt.Appendf(b, "| fitting_lofreq | %g |\n", m.Params.FittingLoFreq)
	b = fmt.Appendf(b, "| fitting_hifreq | %g |\n", m.Params.FittingHiFreq)
	b = fmt.Appendf(b, "| psd_buffer_lofreq | %g |\n", m.Params.PSDBufferLoFreq)
	b = fmt.Appendf(b, "| psd_buffer_hifreq | %g |\n", m.Params.PSDBufferHiFreq)
	b = fmt.Appendf(b, "| trial_protocol | %s |\n", m.Params.TrialPolicy)
	if m.Params.TrialPolicy == run.PolicyEqualize {
		b = fmt.Appendf(b, "| target_group | %s |\n", m.Params.TargetGroup)
		b = fmt.Appendf(b, "| sub_epochs | [%d, %d) |\n", m.Params.SubEpochLo, m.Params.SubEpochHi)
	}
	b = fmt.Appendf(b, "| window_seconds | %g |\n", m.Params.WindowSeconds)
	b = fmt.Appendf(b, "| nwins_upperlimit | %d |\n", m.Params.NWinsUpperLimit)
	b = fmt.Appendf(b, "| channels | %d |\n\n", len(m.Channels))

	b = fmt.Appendf(b, "## Slope summary\n\n")
	b = fmt.Appendf(b, "| group | condition | subjects | slopes | missing | mean | median | sd |\n")
	b = fmt.Appendf(b, "|---|---|---|---|---|---|---|---|\n")
	for _, gs := range summaries {
		b = fmt.Appendf(b, "| %s | %s | %d | %d | %d | %.4f | %.4f | %.4f |\n",
			gs.Group, gs.Condition, gs.NumSubjects, gs.NumSlopes, gs.NumMissing,
			gs.Mean, gs.Median, gs.StdDev)
	}

	path := filepath.Join(s.dir, "parameters.md")
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return errors.WithCode(errors.CodeExportError, err)
	}
	return nil
}
