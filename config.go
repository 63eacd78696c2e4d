package main

import (
	"log/slog"
	"os"
)

// Config is read from the environment; command-line flags override it.
type Config struct {
	Port        string
	ProjectID   string // GCP project for photo import; empty disables it
	Region      string
	Model       string
	DBPath      string // sqlite progress file; empty keeps progress in memory
	CatalogPath string
	Numbering   Numbering
	LogLevel    slog.Level
}

// LoadConfig reads PORT, GCP_PROJECT_ID, GCP_REGION, GEMINI_MODEL,
// CROSSWORD_DB, CROSSWORD_CATALOG, CROSSWORD_NUMBERING and CROSSWORD_LOG_LEVEL.
func LoadConfig() (Config, error) {
	cfg := Config{
		Port:        os.Getenv("PORT"),
		ProjectID:   os.Getenv("GCP_PROJECT_ID"),
		Region:      os.Getenv("GCP_REGION"),
		Model:       os.Getenv("GEMINI_MODEL"),
		DBPath:      os.Getenv("CROSSWORD_DB"),
		CatalogPath: os.Getenv("CROSSWORD_CATALOG"),
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	var err error
	if cfg.Numbering, err = ParseNumbering(os.Getenv("CROSSWORD_NUMBERING")); err != nil {
		return cfg, err
	}
	if cfg.LogLevel, err = parseLogLevel(os.Getenv("CROSSWORD_LOG_LEVEL")); err != nil {
		return cfg, err
	}
	return cfg, nil
}
