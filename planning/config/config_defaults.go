package config

import "github.com/rs/zerolog"

// GetDefaultProjectConfig obtains a default configuration for a project. The default configuration enumerates no
// operations, so callers must provide them before validating.
func GetDefaultProjectConfig() *ProjectConfig {
	// Create a project configuration
	projectConfig := &ProjectConfig{
		Enumeration: EnumerationConfig{
			Operations:         []string{},
			OperationsFile:     "",
			MaxLength:          0,
			Timeout:            0,
			TestLimit:          0,
			CheckpointDatabase: "checkpoints.db",
			CheckpointInterval: 1000,
			ResumeRunID:        "",
			OutputFile:         "",
		},
		Logging: LoggingConfig{
			Level:        zerolog.InfoLevel,
			LogDirectory: "",
			NoColor:      false,
		},
	}

	// Return the project configuration
	return projectConfig
}
