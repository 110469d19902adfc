package cmd

import (
	"github.com/crytic/seqenum/planning/config"
	"github.com/spf13/cobra"
)

// addInitFlags adds the various flags for the init command
func addInitFlags() error {
	// Output path for configuration
	initCmd.Flags().String("out", "", "output path for the new project configuration file (.json or .toml)")

	// Operations file
	initCmd.Flags().String("operations-file", "", "path to a file listing operations, one per line")

	// Max length
	initCmd.Flags().Int("max-length", 0, "maximum sequence length. 0 means the number of operations")

	return nil
}

// updateProjectConfigWithInitFlags will update the given projectConfig with any CLI arguments that were provided to the init command
func updateProjectConfigWithInitFlags(cmd *cobra.Command, projectConfig *config.ProjectConfig) error {
	var err error

	// Update the operations file
	if cmd.Flags().Changed("operations-file") {
		projectConfig.Enumeration.OperationsFile, err = cmd.Flags().GetString("operations-file")
		if err != nil {
			return err
		}
	}

	// Update the maximum sequence length
	if cmd.Flags().Changed("max-length") {
		projectConfig.Enumeration.MaxLength, err = cmd.Flags().GetInt("max-length")
		if err != nil {
			return err
		}
	}
	return nil
}
