package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oklahomahail/plotboard/internal/schema"
)

// Version is set at build time via -ldflags
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("plotboard %s (schema %s)\n", Version, schema.CurrentVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
