package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/crytic/seqenum/cmd/exitcodes"
	"github.com/crytic/seqenum/logging"
	"github.com/crytic/seqenum/logging/colors"
	"github.com/crytic/seqenum/planning"
	"github.com/crytic/seqenum/planning/config"
	"github.com/crytic/seqenum/utils"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/net/context"
)

// enumerateCmd represents the command provider for enumeration runs
var enumerateCmd = &cobra.Command{
	Use:               "enumerate",
	Short:             "Enumerates every sequence of the configured operations",
	Long:              `Enumerates every ordered sequence of distinct operations, checkpointing progress so that the run can be resumed`,
	Args:              cmdValidateEnumerateArgs,
	ValidArgsFunction: cmdValidEnumerateArgs,
	RunE:              cmdRunEnumerate,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	// Add all the flags allowed for the enumerate command
	err := addEnumerateFlags()
	if err != nil {
		cmdLogger.Panic("Failed to initialize the enumerate command", err)
	}

	// Add the enumerate command and its associated flags to the root command
	rootCmd.AddCommand(enumerateCmd)
}

// cmdValidEnumerateArgs will return which flags and sub-commands are valid for dynamic completion for the enumerate
// command
func cmdValidEnumerateArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	// Gather a list of flags that are available to be used in the current command but have not been used yet
	var unusedFlags []string

	// Examine all the flags, and add any flags that have not been set in the current command line
	// to a list of unused flags
	cmd.Flags().VisitAll(func(flag *pflag.Flag) {
		if !flag.Changed {
			// When adding a flag to a command, include the "--" prefix to indicate that it is a flag
			// and not a positional argument.
			unusedFlags = append(unusedFlags, "--"+flag.Name)
		}
	})
	// Provide a list of flags that can be used in the current command (but have not been used yet)
	// for autocompletion suggestions
	return unusedFlags, cobra.ShellCompDirectiveNoFileComp
}

// cmdValidateEnumerateArgs makes sure that there are no positional arguments provided to the enumerate command
func cmdValidateEnumerateArgs(cmd *cobra.Command, args []string) error {
	// Make sure we have no positional args
	if err := cobra.NoArgs(cmd, args); err != nil {
		err = errors.Errorf("enumerate does not accept any positional arguments, only flags and their associated values")
		cmdLogger.Error("Failed to validate args to the enumerate command", err)
		return err
	}
	return nil
}

// cmdRunEnumerate executes the CLI enumerate command and navigates through the following possibilities:
// #1: We will search for either a custom config file (via --config) or the default (seqenum.json).
// If we find it, read it. If we can't read it, throw an error.
// #2: If a custom file was provided (--config was used), and we can't find the file, throw an error.
// #3: If seqenum.json can't be found, use the default project configuration.
func cmdRunEnumerate(cmd *cobra.Command, args []string) error {
	var projectConfig *config.ProjectConfig

	// Check to see if --config flag was used and store the value of --config flag
	configFlagUsed := cmd.Flags().Changed("config")
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		cmdLogger.Error("Failed to run the enumerate command", err)
		return err
	}

	// If --config was not used, look for `seqenum.json` in the current work directory
	if !configFlagUsed {
		workingDirectory, err := os.Getwd()
		if err != nil {
			cmdLogger.Error("Failed to run the enumerate command", err)
			return err
		}
		configPath = filepath.Join(workingDirectory, DefaultProjectConfigFilename)
	}

	// Check to see if the file exists at configPath
	_, existenceError := os.Stat(configPath)

	// Possibility #1: File was found
	if existenceError == nil {
		// Try to read the configuration file and throw an error if something goes wrong
		cmdLogger.Info("Reading the configuration file at: ", colors.Bold, configPath, colors.Reset)
		projectConfig, err = config.ReadProjectConfigFromFile(configPath)
		if err != nil {
			cmdLogger.Error("Failed to run the enumerate command", err)
			return err
		}
	}

	// Possibility #2: If the --config flag was used, and we couldn't find the file, we'll throw an error
	if configFlagUsed && existenceError != nil {
		cmdLogger.Error("Failed to run the enumerate command", existenceError)
		return existenceError
	}

	// Possibility #3: --config flag was not used and seqenum.json was not found, so use the default project config
	if !configFlagUsed && existenceError != nil {
		cmdLogger.Warn(fmt.Sprintf("Unable to find the config file at %v, will use the default project configuration instead", configPath))
		projectConfig = config.GetDefaultProjectConfig()
	}

	// Update the project configuration given whatever flags were set using the CLI
	err = updateProjectConfigWithEnumerateFlags(cmd, projectConfig)
	if err != nil {
		cmdLogger.Error("Failed to run the enumerate command", err)
		return err
	}

	// Set up our global logger before creating the planner, so that it inherits our writers
	closeLogFile, err := setupGlobalLogger(projectConfig.Logging)
	if err != nil {
		cmdLogger.Error("Failed to run the enumerate command", err)
		return err
	}
	defer closeLogFile()

	// Open the destination of our sequences
	output, closeOutput, err := openSequenceOutput(projectConfig.Enumeration.OutputFile, projectConfig.Enumeration.ResumeRunID != "")
	if err != nil {
		cmdLogger.Error("Failed to run the enumerate command", err)
		return err
	}
	writer := newSequenceWriter(output)

	// Create our planner
	planner, err := planning.NewPlanner(*projectConfig, writer.Handle)
	if err != nil {
		cmdLogger.Error("Failed to create the planner", err)
		closeOutput()
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}

	// Attach a progress bar if requested
	if progress, _ := cmd.Flags().GetBool("progress"); progress {
		attachProgressBar(planner, os.Stderr)
	}

	// Stop our planner on keyboard interrupts, which checkpoints the run before returning
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	defer signal.Stop(c)
	go func() {
		if _, ok := <-c; ok {
			cmdLogger.Info("Interrupt received, stopping the planner...")
			planner.Stop()
		}
	}()

	// Run the planner, then flush whatever sequences remain buffered
	plannerErr := planner.Start()
	flushErr := writer.Flush()
	closeOutput()

	if plannerErr != nil {
		if errors.Is(plannerErr, planning.ErrInvalidCheckpoint) {
			return exitcodes.NewErrorWithExitCode(plannerErr, exitcodes.ExitCodeInvalidCheckpoint)
		}
		return exitcodes.NewErrorWithExitCode(plannerErr, exitcodes.ExitCodePlannerError)
	}
	return flushErr
}

// setupGlobalLogger configures the global logger from the logging configuration: colorized or plain output to stderr,
// and structured output to a log file if a log directory is configured.
// Returns a function closing the log file, or an error if one occurs.
func setupGlobalLogger(loggingConfig config.LoggingConfig) (func(), error) {
	if loggingConfig.NoColor {
		colors.DisableColor()
	}

	logging.GlobalLogger = logging.NewLogger(loggingConfig.Level)
	logging.GlobalLogger.AddWriter(os.Stderr, logging.UNSTRUCTURED, !loggingConfig.NoColor)

	// If we have a log directory, log structured output to a file in it as well
	if loggingConfig.LogDirectory == "" {
		return func() {}, nil
	}
	logFile, err := utils.CreateFile(loggingConfig.LogDirectory, fmt.Sprintf("seqenum-%d.log", time.Now().Unix()))
	if err != nil {
		return nil, err
	}
	logging.GlobalLogger.AddWriter(logFile, logging.STRUCTURED, false)
	return func() { _ = logFile.Close() }, nil
}

// openSequenceOutput opens the destination produced sequences are written to: the provided file, or stdout if the
// path is empty. A resumed run appends to the file so the sequences produced before its checkpoint are kept.
// Returns the writer and a function closing it, or an error if one occurs.
func openSequenceOutput(path string, resume bool) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	openFile := utils.CreateFile
	if resume {
		openFile = utils.OpenFileForAppend
	}
	file, err := openFile(filepath.Dir(path), filepath.Base(path))
	if err != nil {
		return nil, nil, err
	}
	return file, func() { _ = file.Close() }, nil
}

// sequenceWriter writes every sequence it is handed as a line of comma-separated operations.
type sequenceWriter struct {
	// writer describes the buffered destination of the sequences.
	writer *bufio.Writer
}

// newSequenceWriter creates a sequenceWriter writing to the provided destination.
func newSequenceWriter(w io.Writer) *sequenceWriter {
	return &sequenceWriter{
		writer: bufio.NewWriter(w),
	}
}

// Handle writes the provided sequence, implementing planning.SequenceHandler.
func (s *sequenceWriter) Handle(ctx context.Context, sequence []string) error {
	_, err := s.writer.WriteString(strings.Join(sequence, ",") + "\n")
	return errors.WithStack(err)
}

// Flush writes any buffered sequences to the destination.
func (s *sequenceWriter) Flush() error {
	return errors.WithStack(s.writer.Flush())
}
