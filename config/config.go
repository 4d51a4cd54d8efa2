package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"cryptoLedger/internal/adapters/logger" // Import the logger package for LogLevel
	"cryptoLedger/internal/ports"
)

// Config holds all application configuration.
type Config struct {
	// Directories
	ReportsDir string // exchange exports waiting to be processed
	ResultsDir string // summary files, formatted reports and the processed/ archive

	// Database
	LedgerDBPath string

	// Outputs
	ArchiveReports        bool // move processed reports to ResultsDir/processed
	WriteFormattedReports bool // write one formatted workbook per recognized report

	// Logging
	LogLevel  logger.LogLevel // Use the LogLevel type from the logger adapter
	LogFormat string          // "text" or "json"
}

// ProcessedDir is where reports are archived after a successful import.
func (c *Config) ProcessedDir() string {
	return filepath.Join(c.ResultsDir, "processed")
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var err error
	var errs []string // Collect validation errors

	cfg.ReportsDir = getEnv("REPORTS_DIR", "./data/reports")
	cfg.ResultsDir = getEnv("RESULTS_DIR", "./data/results")
	if cfg.ReportsDir == cfg.ResultsDir {
		errs = append(errs, "REPORTS_DIR and RESULTS_DIR must be different directories")
	}

	cfg.LedgerDBPath = getEnv("LEDGER_DB_PATH", "./data/ledger.db")

	cfg.ArchiveReports, err = getEnvAsBoolRequired("ARCHIVE_REPORTS", true)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid ARCHIVE_REPORTS: %v", err))
	}
	cfg.WriteFormattedReports, err = getEnvAsBoolRequired("WRITE_FORMATTED_REPORTS", true)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid WRITE_FORMATTED_REPORTS: %v", err))
	}

	// Logging
	logLevelStr := getEnv("LOG_LEVEL", "INFO")
	cfg.LogLevel = logger.ParseLevel(logLevelStr) // Use the parser from the logger package

	cfg.LogFormat = strings.ToLower(getEnv("LOG_FORMAT", logger.FormatText))
	if cfg.LogFormat != logger.FormatText && cfg.LogFormat != logger.FormatJSON {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT must be %q or %q", logger.FormatText, logger.FormatJSON))
	}

	// Combine validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s: %w", strings.Join(errs, "; "), ports.ErrConfigurationError)
	}

	return cfg, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsBoolRequired(key string, defaultValue bool) (bool, error) {
	valueStr := strings.TrimSpace(os.Getenv(key))
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return false, fmt.Errorf("invalid boolean value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}
