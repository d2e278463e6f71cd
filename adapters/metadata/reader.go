// Package metadata reads cohort demographics (group, age, sex) from
// an auxiliary spreadsheet, either .csv or .xlsx.
package metadata

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"neuroslope/domain/cohort"
	"neuroslope/domain/core"
	"neuroslope/internal"
)

// DataReader handles reading cohort metadata from Excel and CSV files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	log      *internal.Logger
}

// NewDataReader creates a metadata reader that handles both Excel and CSV files
func NewDataReader(filePath string, logger *internal.Logger) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &DataReader{filePath: filePath, fileType: fileType, log: logger.WithComponent("MetadataReader")}
}

// LoadRoster reads the demographics table into a roster keyed by
// subject identity. Required columns: SUBJECT, CLASS, AGE, SEX.
func (r *DataReader) LoadRoster(ctx context.Context) (cohort.Roster, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("metadata file not found: %s", r.filePath)
	}

	var rows [][]string
	var err error
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	case "xlsx":
		rows, err = r.readExcelRows()
	default:
		return nil, fmt.Errorf("unsupported metadata file type: %s", r.fileType)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("metadata file %s has no data rows", r.filePath)
	}

	cols, err := locateColumns(rows[0])
	if err != nil {
		return nil, fmt.Errorf("metadata file %s: %w", r.filePath, err)
	}

	roster := make(cohort.Roster)
	for i, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		if len(row) <= cols.sex {
			return nil, fmt.Errorf("metadata file %s row %d: %d fields, want at least %d",
				r.filePath, i+2, len(row), cols.sex+1)
		}
		id, err := core.ParseSubjectID(row[cols.subject])
		if err != nil {
			return nil, fmt.Errorf("metadata file %s row %d: %w", r.filePath, i+2, err)
		}
		age, err := strconv.Atoi(strings.TrimSpace(row[cols.age]))
		if err != nil {
			return nil, fmt.Errorf("metadata file %s row %d: bad age %q", r.filePath, i+2, row[cols.age])
		}
		roster[id] = cohort.Demographics{
			Group: strings.TrimSpace(row[cols.class]),
			Age:   age,
			Sex:   strings.TrimSpace(row[cols.sex]),
		}
	}

	r.log.Debug("loaded metadata for %d subjects from %s", len(roster), r.filePath)
	return roster, nil
}

type columnIndex struct {
	subject, class, age, sex int
}

func locateColumns(header []string) (columnIndex, error) {
	idx := columnIndex{subject: -1, class: -1, age: -1, sex: -1}
	for i, name := range header {
		switch strings.ToUpper(strings.TrimSpace(name)) {
		case "SUBJECT":
			idx.subject = i
		case "CLASS":
			idx.class = i
		case "AGE":
			idx.age = i
		case "SEX":
			idx.sex = i
		}
	}
	if idx.subject < 0 || idx.class < 0 || idx.age < 0 || idx.sex < 0 {
		return idx, fmt.Errorf("header must contain SUBJECT, CLASS, AGE and SEX columns, got %v", header)
	}
	return idx, nil
}

func (r *DataReader) readCSVRows() ([][]string, error) {
	f, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV file: %w", err)
	}
	return rows, nil
}

func (r *DataReader) readExcelRows() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	// Always use Sheet1
	rows, err := f.GetRows("Sheet1")
	if err != nil {
		return nil, fmt.Errorf("failed to read Sheet1: %w", err)
	}
	return rows, nil
}
