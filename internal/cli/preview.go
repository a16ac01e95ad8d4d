package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	"github.com/oklahomahail/plotboard/internal/bundle"
	"github.com/oklahomahail/plotboard/internal/domain"
	"github.com/oklahomahail/plotboard/internal/importer"
)

var previewCmd = &cobra.Command{
	Use:   "preview <bundle.json>",
	Short: "Preview an import without applying it",
	Long: `Runs the import pipeline without executing the merge: reports what
would be imported, which conflicts were detected and how the policy
would resolve them, and whether a schema migration is needed.

With --diff and --board, also shows a unified diff between the stored
board and the board the import would produce. Nothing is written either
way.

Examples:
  plotboard preview bundle.json
  plotboard preview bundle.json --board b1 --strategy merge --on-conflict rename
  plotboard preview bundle.json --board b1 --diff
`,
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

var (
	previewBoard          string
	previewStrategy       string
	previewOnConflict     string
	previewAllowOverwrite bool
	previewDiff           bool
)

func init() {
	rootCmd.AddCommand(previewCmd)

	previewCmd.Flags().StringVar(&previewBoard, "board", "", "Existing board id to preview against")
	previewCmd.Flags().StringVar(&previewStrategy, "strategy", "", "Merge strategy: replace, merge, append")
	previewCmd.Flags().StringVar(&previewOnConflict, "on-conflict", "", "Conflict policy: skip, overwrite, rename, manual")
	previewCmd.Flags().BoolVar(&previewAllowOverwrite, "allow-overwrite", false, "Suppress the board-identity conflict")
	previewCmd.Flags().BoolVar(&previewDiff, "diff", false, "Show a unified diff of the stored board vs. the merge result")
}

func runPreview(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	opts := importer.DefaultOptions()
	opts.Strategy = domain.MergeStrategy(a.Config.DefaultStrategy)
	opts.OnConflict = domain.ConflictResolution(a.Config.DefaultOnConflict)
	if previewStrategy != "" {
		opts.Strategy = domain.MergeStrategy(previewStrategy)
	}
	if previewOnConflict != "" {
		opts.OnConflict = domain.ConflictResolution(previewOnConflict)
	}
	opts.AllowOverwrite = previewAllowOverwrite

	raw, err := bundle.ReadFile(args[0])
	if err != nil {
		return err
	}

	existing, err := loadExistingBoard(a, previewBoard)
	if err != nil {
		return err
	}

	result := a.Engine.Preview(raw, existing, opts)
	if err := a.Renderer.RenderPreview(result); err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("preview failed")
	}

	if previewDiff && existing != nil {
		return renderBoardDiff(a, raw, existing, opts)
	}
	return nil
}

// renderBoardDiff runs the merge in memory (the engine performs no I/O
// and writes nothing) and diffs the stored board against the result.
func renderBoardDiff(a *app, raw []byte, existing *domain.PlotBoard, opts importer.ImportOptions) error {
	result := a.Engine.Import(raw, existing, opts)
	if !result.Success {
		return fmt.Errorf("could not compute merge result for diff")
	}

	before, err := json.MarshalIndent(existing, "", "  ")
	if err != nil {
		return err
	}
	after, err := json.MarshalIndent(result.Board, "", "  ")
	if err != nil {
		return err
	}

	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(before)),
		B:        difflib.SplitLines(string(after)),
		FromFile: "stored/" + existing.ID,
		ToFile:   "merged/" + result.Board.ID,
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return err
	}
	if text == "" {
		fmt.Fprintln(os.Stdout, "no changes")
		return nil
	}
	fmt.Fprint(os.Stdout, text)
	return nil
}
