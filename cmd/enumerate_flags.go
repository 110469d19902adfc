package cmd

import (
	"fmt"

	"github.com/crytic/seqenum/planning/config"
	"github.com/spf13/cobra"
)

// addEnumerateFlags adds the various flags for the enumerate command
func addEnumerateFlags() error {
	// Get the default project config
	defaultConfig := config.GetDefaultProjectConfig()

	// Prevent alphabetical sorting of usage message
	enumerateCmd.Flags().SortFlags = false

	// Config file
	enumerateCmd.Flags().String("config", "", "path to config file")

	// Operations
	enumerateCmd.Flags().StringSlice("operations", []string{},
		"ordered operations to enumerate sequences of (replaces the operations of the config file)")

	// Max length
	enumerateCmd.Flags().Int("max-length", 0,
		"maximum sequence length (unless a config file is provided, default is the number of operations)")

	// Test limit
	enumerateCmd.Flags().Uint64("test-limit", 0,
		fmt.Sprintf("number of sequences to produce before exiting (unless a config file is provided, default is %d). 0 means that test limit is not enforced", defaultConfig.Enumeration.TestLimit))

	// Timeout
	enumerateCmd.Flags().Int("timeout", 0,
		fmt.Sprintf("number of seconds to run for (unless a config file is provided, default is %d). 0 means that timeout is not enforced", defaultConfig.Enumeration.Timeout))

	// Checkpoint database
	enumerateCmd.Flags().String("checkpoint-db", "",
		fmt.Sprintf("path of the checkpoint database (unless a config file is provided, default is %q)", defaultConfig.Enumeration.CheckpointDatabase))

	// Checkpoint interval
	enumerateCmd.Flags().Uint64("checkpoint-interval", 0,
		fmt.Sprintf("number of sequences between two checkpoints (unless a config file is provided, default is %d)", defaultConfig.Enumeration.CheckpointInterval))

	// Resume
	enumerateCmd.Flags().String("resume", "", "identifier of a checkpointed run to resume")

	// Output file
	enumerateCmd.Flags().String("out", "", "path of the file sequences are written to. If not provided, sequences are written to stdout")

	// Progress bar
	enumerateCmd.Flags().Bool("progress", false, "display a progress bar on stderr")

	// Logging color
	enumerateCmd.Flags().Bool("no-color", false, "disable colored terminal output")
	return nil
}

// updateProjectConfigWithEnumerateFlags will update the given projectConfig with any CLI arguments that were provided
// to the enumerate command
func updateProjectConfigWithEnumerateFlags(cmd *cobra.Command, projectConfig *config.ProjectConfig) error {
	var err error

	// Update operations. Operations provided on the command line replace those of the config file.
	if cmd.Flags().Changed("operations") {
		projectConfig.Enumeration.Operations, err = cmd.Flags().GetStringSlice("operations")
		if err != nil {
			return err
		}
		projectConfig.Enumeration.OperationsFile = ""
	}

	// Update max length
	if cmd.Flags().Changed("max-length") {
		projectConfig.Enumeration.MaxLength, err = cmd.Flags().GetInt("max-length")
		if err != nil {
			return err
		}
	}

	// Update test limit
	if cmd.Flags().Changed("test-limit") {
		projectConfig.Enumeration.TestLimit, err = cmd.Flags().GetUint64("test-limit")
		if err != nil {
			return err
		}
	}

	// Update timeout
	if cmd.Flags().Changed("timeout") {
		projectConfig.Enumeration.Timeout, err = cmd.Flags().GetInt("timeout")
		if err != nil {
			return err
		}
	}

	// Update checkpoint database
	if cmd.Flags().Changed("checkpoint-db") {
		projectConfig.Enumeration.CheckpointDatabase, err = cmd.Flags().GetString("checkpoint-db")
		if err != nil {
			return err
		}
	}

	// Update checkpoint interval
	if cmd.Flags().Changed("checkpoint-interval") {
		projectConfig.Enumeration.CheckpointInterval, err = cmd.Flags().GetUint64("checkpoint-interval")
		if err != nil {
			return err
		}
	}

	// Update the run to resume
	if cmd.Flags().Changed("resume") {
		projectConfig.Enumeration.ResumeRunID, err = cmd.Flags().GetString("resume")
		if err != nil {
			return err
		}
	}

	// Update output file
	if cmd.Flags().Changed("out") {
		projectConfig.Enumeration.OutputFile, err = cmd.Flags().GetString("out")
		if err != nil {
			return err
		}
	}

	// Update logging color mode
	if cmd.Flags().Changed("no-color") {
		projectConfig.Logging.NoColor, err = cmd.Flags().GetBool("no-color")
		if err != nil {
			return err
		}
	}
	return nil
}
