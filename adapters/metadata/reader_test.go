package metadata

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"neuroslope/domain/cohort"
	"neuroslope/internal"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ya-oa.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}

// TestLoadRosterCSV tests loading demographics from a CSV file with
// columns located by header name, not position.
func TestLoadRosterCSV(t *testing.T) {
	path := writeCSV(t, "AGE,SUBJECT,SEX,CLASS\n"+
		"24,s01,F,YA\n"+
		"71, s02 ,M,OA\n")

	roster, err := NewDataReader(path, internal.NewLogger(internal.LogLevelError)).
		LoadRoster(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(roster) != 2 {
		t.Fatalf("expected 2 subjects, got %d", len(roster))
	}
	if got := roster["s01"]; got != (cohort.Demographics{Group: "YA", Age: 24, Sex: "F"}) {
		t.Errorf("unexpected demographics for s01: %+v", got)
	}
	// Whitespace around the subject identity is trimmed.
	if got := roster["s02"]; got != (cohort.Demographics{Group: "OA", Age: 71, Sex: "M"}) {
		t.Errorf("unexpected demographics for s02: %+v", got)
	}
}

func TestLoadRosterRejectsBadFiles(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing required column", "SUBJECT,CLASS,AGE\ns01,YA,24\n"},
		{"non-numeric age", "SUBJECT,CLASS,AGE,SEX\ns01,YA,old,F\n"},
		{"empty subject", "SUBJECT,CLASS,AGE,SEX\n ,YA,24,F\n"},
		{"header only", "SUBJECT,CLASS,AGE,SEX\n"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			path := writeCSV(t, test.content)
			_, err := NewDataReader(path, internal.NewLogger(internal.LogLevelError)).
				LoadRoster(context.Background())
			if err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadRosterMissingFile(t *testing.T) {
	reader := NewDataReader(filepath.Join(t.TempDir(), "absent.csv"),
		internal.NewLogger(internal.LogLevelError))
	if _, err := reader.LoadRoster(context.Background()); err == nil {
		t.Error("expected error for missing metadata file")
	}
}
