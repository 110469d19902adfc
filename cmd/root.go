package cmd

import (
	"os"

	"github.com/crytic/seqenum/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// rootCmd represents the root CLI command object which all other commands stem from.
var rootCmd = &cobra.Command{
	Use:   "seqenum",
	Short: "A resumable, exhaustive call sequence enumerator",
	Long: `seqenum enumerates every ordered sequence of distinct operations up to a maximum length, in a
deterministic order, and checkpoints its position so that long runs can be stopped and resumed.`,
}

// cmdLogger is the logger that will be used for the cmd package. Diagnostics go to stderr so that produced sequences
// can be piped from stdout.
var cmdLogger = logging.NewLogger(zerolog.InfoLevel)

func init() {
	cmdLogger.AddWriter(os.Stderr, logging.UNSTRUCTURED, true)
}

// Execute provides an exportable function to invoke the CLI. Returns an error if one was encountered.
func Execute() error {
	return rootCmd.Execute()
}
