package csvfile

// Config holds configuration for the CSV backend.
type Config struct {
	FilePath string // Path to the delimited-text file
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.FilePath == "" {
		return ErrMissingFilePath
	}
	return nil
}
