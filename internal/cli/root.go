package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "plotboard",
	Short: "Import and merge plot-board export bundles",
	Long: `plotboard imports previously exported story-planning boards and
reconciles them against boards stored locally. It detects bundle formats
(full bundle, bare board, template), migrates older schema versions, and
merges under replace, merge, or append strategies with a configurable
conflict policy.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to board database (overrides PLOTBOARD_DB_PATH)")
	rootCmd.PersistentFlags().String("output", "", "Output format: table, json, yaml")
}
