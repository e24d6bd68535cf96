package excel

// Config holds configuration for the Excel backend.
type Config struct {
	FilePath string // Path to the workbook file
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.FilePath == "" {
		return ErrMissingFilePath
	}
	return nil
}
