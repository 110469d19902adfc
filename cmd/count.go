package cmd

import (
	"fmt"
	"io"

	"github.com/crytic/seqenum/enumeration"
	"github.com/dustin/go-humanize"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// countCmd represents the command provider for counting enumeration spaces
var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Counts the sequences an enumeration produces",
	Long: `Counts the sequences an enumeration over a domain of the provided size produces, for every sequence length
up to the maximum length`,
	Args:          cobra.NoArgs,
	RunE:          cmdRunCount,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Add flags to count command
	countCmd.Flags().Int("domain-size", 0, "number of distinct operations in the domain")
	countCmd.Flags().Int("max-length", 0, "maximum sequence length. 0 means the domain size")
	err := countCmd.MarkFlagRequired("domain-size")
	if err != nil {
		cmdLogger.Panic("Failed to initialize the count command", err)
	}

	// Add the count command and its associated flags to the root command
	rootCmd.AddCommand(countCmd)
}

// cmdRunCount executes the count CLI command
func cmdRunCount(cmd *cobra.Command, args []string) error {
	domainSize, err := cmd.Flags().GetInt("domain-size")
	if err != nil {
		return err
	}
	maxLength, err := cmd.Flags().GetInt("max-length")
	if err != nil {
		return err
	}
	if maxLength == 0 {
		maxLength = domainSize
	}

	err = writeCounts(cmd.OutOrStdout(), domainSize, maxLength)
	if err != nil {
		cmdLogger.Error("Failed to run the count command", err)
	}
	return err
}

// writeCounts writes the amount of sequences of every length up to maxLength over a domain of the provided size,
// followed by their total.
// Returns an error if the parameters are invalid or the total does not fit in 256 bits.
func writeCounts(w io.Writer, domainSize int, maxLength int) error {
	levelCounts, err := enumeration.LevelCounts(domainSize, maxLength)
	if err != nil {
		return err
	}

	total := new(uint256.Int)
	for i, levelCount := range levelCounts {
		var overflow bool
		total, overflow = new(uint256.Int).AddOverflow(total, levelCount)
		if overflow {
			return errors.Wrapf(enumeration.ErrCountOverflow, "sequences of up to %d out of %d operations", maxLength, domainSize)
		}
		_, err = fmt.Fprintf(w, "length %d: %s\n", i+1, humanize.BigComma(levelCount.ToBig()))
		if err != nil {
			return errors.WithStack(err)
		}
	}

	_, err = fmt.Fprintf(w, "total: %s\n", humanize.BigComma(total.ToBig()))
	return errors.WithStack(err)
}
