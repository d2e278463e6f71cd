package config

import (
	"os"
	"strconv"
	"strings"

	"neuroslope/domain/run"
	"neuroslope/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Run         run.Params
	Paths       PathConfig
	Acquisition AcquisitionConfig
	Workers     int
	Database    DatabaseConfig
	Report      ReportConfig
}

// PathConfig holds file system paths
type PathConfig struct {
	ImportDirEDF string // directory of per-subject .edf recordings
	ImportDirEvt string // directory of per-subject .evt marker files
	MetadataPath string // cohort demographics .csv or .xlsx
	ExportDir    string // parent of per-run export directories
}

// AcquisitionConfig describes the recording hardware layout. The EDF
// reader needs the channel labels and sample rate up front so that
// every subject is checked against the same grid.
type AcquisitionConfig struct {
	Channels   []string
	SampleRate float64
}

// DatabaseConfig holds the optional Postgres result store settings
type DatabaseConfig struct {
	URL     string
	Enabled bool
}

// ReportConfig holds run report server settings
type ReportConfig struct {
	Port string
}

// Load reads configuration from environment variables and validates it.
// Selector and frequency-range violations are detected here, before any
// subject is processed.
func Load() (*Config, error) {
	params := run.DefaultParams()
	params.Montage = run.Montage(getEnv("MONTAGE", string(params.Montage)))
	params.FittingFunc = run.FittingFunc(getEnv("FITTING_FUNC", string(params.FittingFunc)))
	params.TrialPolicy = run.TrialPolicy(getEnv("TRIAL_PROTOCOL", string(params.TrialPolicy)))
	params.TargetGroup = getEnv("TARGET_GROUP", params.TargetGroup)

	var err error
	if params.PSDBufferLoFreq, err = getEnvFloat("PSD_BUFFER_LOFREQ", params.PSDBufferLoFreq); err != nil {
		return nil, err
	}
	if params.PSDBufferHiFreq, err = getEnvFloat("PSD_BUFFER_HIFREQ", params.PSDBufferHiFreq); err != nil {
		return nil, err
	}
	if params.FittingLoFreq, err = getEnvFloat("FITTING_LOFREQ", params.FittingLoFreq); err != nil {
		return nil, err
	}
	if params.FittingHiFreq, err = getEnvFloat("FITTING_HIFREQ", params.FittingHiFreq); err != nil {
		return nil, err
	}
	if params.WindowSeconds, err = getEnvFloat("WINDOW_SECONDS", params.WindowSeconds); err != nil {
		return nil, err
	}
	if params.SubEpochLo, err = getEnvInt("SUB_EPOCH_LO", params.SubEpochLo); err != nil {
		return nil, err
	}
	if params.SubEpochHi, err = getEnvInt("SUB_EPOCH_HI", params.SubEpochHi); err != nil {
		return nil, err
	}
	if params.NWinsUpperLimit, err = getEnvInt("NWINS_UPPERLIMIT", params.NWinsUpperLimit); err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, err)
	}

	workers, err := getEnvInt("WORKERS", 0) // 0 means one worker per CPU
	if err != nil {
		return nil, err
	}
	if workers < 0 {
		return nil, errors.New(errors.CodeConfigInvalid, "WORKERS must be >= 0")
	}

	channels := splitList(getEnv("CHANNELS", ""))
	if len(channels) == 0 {
		return nil, errors.New(errors.CodeConfigInvalid, "CHANNELS must list at least one channel label")
	}
	sampleRate, err := getEnvFloat("SAMPLE_RATE", 500)
	if err != nil {
		return nil, err
	}
	if sampleRate <= 0 {
		return nil, errors.New(errors.CodeConfigInvalid, "SAMPLE_RATE must be positive")
	}

	dbURL := getEnv("DATABASE_URL", "")

	return &Config{
		Run: params,
		Paths: PathConfig{
			ImportDirEDF: getEnv("IMPORT_DIR_EDF", "data/rs/full/edf"),
			ImportDirEvt: getEnv("IMPORT_DIR_EVT", "data/rs/full/evt/clean"),
			MetadataPath: getEnv("IMPORT_PATH_METADATA", "data/auxilliary/ya-oa.csv"),
			ExportDir:    getEnv("EXPORT_DIR", "data/runs"),
		},
		Acquisition: AcquisitionConfig{
			Channels:   channels,
			SampleRate: sampleRate,
		},
		Workers: workers,
		Database: DatabaseConfig{
			URL:     dbURL,
			Enabled: dbURL != "",
		},
		Report: ReportConfig{
			Port: getEnv("REPORT_PORT", "8090"),
		},
	}, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid float for %s: %q", key, v)
	}
	return f, nil
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid integer for %s: %q", key, v)
	}
	return n, nil
}
