package gsheet

import "time"

// Config holds configuration for the Google Sheets backend.
type Config struct {
	SpreadsheetID string        // Spreadsheet to operate on
	MaxRetries    int           // Attempts beyond the first for transient failures (default: 3)
	RetryMin      time.Duration // Minimum backoff between retries (default: 500ms)
	RetryMax      time.Duration // Maximum backoff between retries (default: 20s)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.SpreadsheetID == "" {
		return ErrMissingSpreadsheetID
	}
	return nil
}

func (c *Config) withDefaults() *Config {
	out := *c
	if out.MaxRetries <= 0 {
		out.MaxRetries = 3
	}
	if out.RetryMin <= 0 {
		out.RetryMin = 500 * time.Millisecond
	}
	if out.RetryMax <= 0 {
		out.RetryMax = 20 * time.Second
	}
	return &out
}
