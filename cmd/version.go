package cmd

import (
	"fmt"

	"github.com/crytic/seqenum/version"
	"github.com/spf13/cobra"
)

// versionCmd represents the version command that displays build information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and build information",
	Long: `Print detailed version and build information for seqenum.

This includes the semantic version, git commit hash, build timestamp,
the checkpoint format written by this build, and the Go version used to compile the binary.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		short, err := cmd.Flags().GetBool("short")
		if err == nil && short {
			fmt.Println(version.GetInfo().Short())
			return
		}
		fmt.Print(version.GetInfo().String())
	},
}

func init() {
	versionCmd.Flags().Bool("short", false, "print only the version and commit")
	rootCmd.AddCommand(versionCmd)
}
