// Package config loads regdesk settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// Environment variable names
const (
	EnvIELTSReport           = "REGDESK_IELTS_REPORT"
	EnvIELTSSheet            = "REGDESK_IELTS_SHEET"
	EnvSchoolReport          = "REGDESK_SCHOOL_REPORT"
	EnvSchoolSheet           = "REGDESK_SCHOOL_SHEET"
	EnvRowCacheSize          = "REGDESK_ROW_CACHE_SIZE"
	EnvExcludeBlankCountries = "REGDESK_EXCLUDE_BLANK_COUNTRIES"
	EnvCSVEncoding           = "REGDESK_CSV_ENCODING"
	EnvLogLevel              = "LOG_LEVEL"
)

// DefaultEnvFile is read by Load when present.
const DefaultEnvFile = ".env"

// Config holds the settings of one regdesk run. A nil CSVEncoding means UTF-8.
type Config struct {
	IELTSReport           string
	IELTSSheet            string
	SchoolReport          string
	SchoolSheet           string
	RowCacheSize          int
	ExcludeBlankCountries bool
	CSVEncoding           encoding.Encoding
	LogLevel              slog.Level
}

// Load reads DefaultEnvFile if it exists, then the environment.
// Variables already set in the environment take precedence over the file.
func Load() (Config, error) {
	return LoadFiles(DefaultEnvFile)
}

// LoadFiles is Load with explicit env files. Missing files are ignored.
func LoadFiles(files ...string) (Config, error) {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return fromEnv()
}

func fromEnv() (Config, error) {
	cfg := Config{
		IELTSReport:  getEnv(EnvIELTSReport, "ORS.xlsx"),
		IELTSSheet:   getEnv(EnvIELTSSheet, "Unpaid"),
		SchoolReport: getEnv(EnvSchoolReport, "schools.xlsx"),
		SchoolSheet:  strings.TrimSpace(os.Getenv(EnvSchoolSheet)),
		LogLevel:     ParseLogLevel(os.Getenv(EnvLogLevel)),
	}

	var err error
	if cfg.RowCacheSize, err = getIntEnv(EnvRowCacheSize, 100); err != nil {
		return Config{}, err
	}
	if cfg.ExcludeBlankCountries, err = getBoolEnv(EnvExcludeBlankCountries, false); err != nil {
		return Config{}, err
	}

	if name := strings.TrimSpace(os.Getenv(EnvCSVEncoding)); name != "" {
		if cfg.CSVEncoding, err = htmlindex.Get(name); err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvCSVEncoding, err)
		}
	}

	if cfg.RowCacheSize < 1 {
		return Config{}, fmt.Errorf("%s must be at least 1, got %d", EnvRowCacheSize, cfg.RowCacheSize)
	}
	return cfg, nil
}

// ParseLogLevel maps debug, warn and error (any case) to their slog level.
// Anything else is info.
func ParseLogLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func getIntEnv(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	i, err := cast.ToIntE(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return i, nil
}

func getBoolEnv(key string, fallback bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
