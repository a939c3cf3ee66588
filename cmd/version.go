package cmd

import (
	"fmt"

	"github.com/aixblock/rewards-engine/internal/version"
	"github.com/spf13/cobra"
)

var runVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and commit of the binary",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Version: %s\n", version.GetVersion())
		fmt.Printf("Commit: %s\n", version.GetCommit())
	},
}
