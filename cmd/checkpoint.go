package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/crytic/seqenum/enumeration/checkpoints"
	"github.com/crytic/seqenum/logging/colors"
	"github.com/crytic/seqenum/utils"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// checkpointCmd represents the command provider for managing saved checkpoints
var checkpointCmd = &cobra.Command{
	Use:   "checkpoint",
	Short: "Manages the checkpoints of enumeration runs",
	Long:  `Lists, shows, and deletes the checkpoints of enumeration runs saved in a checkpoint database`,
}

// checkpointListCmd represents the command provider for listing checkpoints
var checkpointListCmd = &cobra.Command{
	Use:           "list",
	Short:         "Lists every checkpointed run",
	Args:          cobra.NoArgs,
	RunE:          cmdRunCheckpointList,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// checkpointShowCmd represents the command provider for showing a checkpoint
var checkpointShowCmd = &cobra.Command{
	Use:           "show <run-id>",
	Short:         "Shows the checkpoint of a run as JSON",
	Args:          cobra.ExactArgs(1),
	RunE:          cmdRunCheckpointShow,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// checkpointDeleteCmd represents the command provider for deleting a checkpoint
var checkpointDeleteCmd = &cobra.Command{
	Use:           "delete <run-id>",
	Short:         "Deletes the checkpoint of a run",
	Args:          cobra.ExactArgs(1),
	RunE:          cmdRunCheckpointDelete,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Add the flags shared by every checkpoint command
	checkpointCmd.PersistentFlags().String("checkpoint-db", DefaultCheckpointDatabase, "path of the checkpoint database")
	checkpointListCmd.Flags().Bool("incomplete", false, "only list runs which have sequences left to produce")

	// Add the checkpoint commands to the root command
	checkpointCmd.AddCommand(checkpointListCmd, checkpointShowCmd, checkpointDeleteCmd)
	rootCmd.AddCommand(checkpointCmd)
}

// openCheckpointStore opens the checkpoint database provided to a checkpoint command. Unlike the planner, these
// commands never create a database.
// Returns the store, or an error if one occurs.
func openCheckpointStore(cmd *cobra.Command) (*checkpoints.Store, error) {
	path, err := cmd.Flags().GetString("checkpoint-db")
	if err != nil {
		return nil, err
	}
	if !utils.FileExists(path) {
		return nil, errors.Errorf("checkpoint database %s does not exist", path)
	}
	return checkpoints.OpenStore(path)
}

// cmdRunCheckpointList executes the checkpoint list CLI command
func cmdRunCheckpointList(cmd *cobra.Command, args []string) error {
	store, err := openCheckpointStore(cmd)
	if err != nil {
		cmdLogger.Error("Failed to run the checkpoint list command", err)
		return err
	}
	defer store.Close()

	envelopes, err := store.List()
	if err != nil {
		cmdLogger.Error("Failed to run the checkpoint list command", err)
		return err
	}

	// Filter out completed runs if requested
	if incomplete, _ := cmd.Flags().GetBool("incomplete"); incomplete {
		envelopes = utils.SliceWhere(envelopes, func(envelope *checkpoints.Envelope) bool {
			return !runComplete(envelope)
		})
	}

	return writeCheckpointTable(cmd.OutOrStdout(), envelopes)
}

// runComplete indicates whether a checkpointed run has produced every sequence up to its maximum length.
func runComplete(envelope *checkpoints.Envelope) bool {
	return envelope.Checkpoint.CompletedLength() >= envelope.MaxLength
}

// writeCheckpointTable writes a table summarizing the provided checkpoints.
// Returns an error if one occurs.
func writeCheckpointTable(w io.Writer, envelopes []*checkpoints.Envelope) error {
	table := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(table, "RUN ID\tOPERATIONS\tMAX LENGTH\tSEQUENCES\tSTATE\tUPDATED")
	for _, envelope := range envelopes {
		state := fmt.Sprintf("length %d", envelope.Checkpoint.Length)
		if runComplete(envelope) {
			state = "complete"
		}
		fmt.Fprintf(table, "%s\t%d\t%d\t%s\t%s\t%s\n",
			envelope.RunID,
			envelope.DomainSize,
			envelope.MaxLength,
			humanize.Comma(int64(envelope.Iterated)),
			state,
			humanize.Time(time.Unix(envelope.UpdatedAt, 0)),
		)
	}
	return errors.WithStack(table.Flush())
}

// cmdRunCheckpointShow executes the checkpoint show CLI command
func cmdRunCheckpointShow(cmd *cobra.Command, args []string) error {
	store, err := openCheckpointStore(cmd)
	if err != nil {
		cmdLogger.Error("Failed to run the checkpoint show command", err)
		return err
	}
	defer store.Close()

	envelope, err := store.Load(args[0])
	if err != nil {
		cmdLogger.Error("Failed to run the checkpoint show command", err)
		return err
	}

	b, err := json.MarshalIndent(envelope, "", "\t")
	if err != nil {
		return errors.WithStack(err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return errors.WithStack(err)
}

// cmdRunCheckpointDelete executes the checkpoint delete CLI command
func cmdRunCheckpointDelete(cmd *cobra.Command, args []string) error {
	store, err := openCheckpointStore(cmd)
	if err != nil {
		cmdLogger.Error("Failed to run the checkpoint delete command", err)
		return err
	}
	defer store.Close()

	err = store.Delete(args[0])
	if err != nil {
		cmdLogger.Error("Failed to run the checkpoint delete command", err)
		return err
	}
	cmdLogger.Info("Deleted the checkpoint of run ", colors.Bold, args[0], colors.Reset)
	return nil
}
