package cli

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/oklahomahail/plotboard/internal/bundle"
	"github.com/oklahomahail/plotboard/internal/domain"
	"github.com/oklahomahail/plotboard/internal/importer"
)

var importCmd = &cobra.Command{
	Use:   "import <bundle.json>",
	Short: "Import a board bundle",
	Long: `Imports an exported bundle, a bare board, or a board template and
saves the resulting board.

Examples:
  plotboard import bundle.json                             # Import as a new board
  plotboard import bundle.json --board b1                  # Merge target: stored board b1
  plotboard import bundle.json --board b1 --strategy merge --on-conflict overwrite
  plotboard import bundle.json --board b1 --strategy append
  plotboard import template.json --regenerate-ids
`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var (
	importBoard          string
	importStrategy       string
	importOnConflict     string
	importNoValidate     bool
	importNoMigrate      bool
	importNoBackup       bool
	importAllowOverwrite bool
	importRegenerateIDs  bool
	importNoViews        bool
	importTemplates      bool
	importNoSettings     bool
)

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVar(&importBoard, "board", "", "Existing board id to merge into")
	importCmd.Flags().StringVar(&importStrategy, "strategy", "", "Merge strategy: replace, merge, append")
	importCmd.Flags().StringVar(&importOnConflict, "on-conflict", "", "Conflict policy: skip, overwrite, rename, manual")
	importCmd.Flags().BoolVar(&importNoValidate, "no-validate", false, "Skip schema version validation")
	importCmd.Flags().BoolVar(&importNoMigrate, "no-migrate", false, "Report trailing schema versions instead of migrating")
	importCmd.Flags().BoolVar(&importNoBackup, "no-backup", false, "Skip backing up the existing board")
	importCmd.Flags().BoolVar(&importAllowOverwrite, "allow-overwrite", false, "Suppress the board-identity conflict")
	importCmd.Flags().BoolVar(&importRegenerateIDs, "regenerate-ids", false, "Regenerate view/template ids instead of preserving them")
	importCmd.Flags().BoolVar(&importNoViews, "no-views", false, "Skip importing saved views")
	importCmd.Flags().BoolVar(&importTemplates, "templates", false, "Import board templates from the bundle")
	importCmd.Flags().BoolVar(&importNoSettings, "no-settings", false, "Keep existing board settings during a merge")
}

func buildImportOptions(cfg configDefaults) importer.ImportOptions {
	opts := importer.DefaultOptions()
	opts.Strategy = domain.MergeStrategy(cfg.strategy)
	opts.OnConflict = domain.ConflictResolution(cfg.onConflict)

	if importStrategy != "" {
		opts.Strategy = domain.MergeStrategy(importStrategy)
	}
	if importOnConflict != "" {
		opts.OnConflict = domain.ConflictResolution(importOnConflict)
	}
	opts.ValidateSchema = !importNoValidate
	opts.AutoMigrate = !importNoMigrate
	opts.CreateBackup = !importNoBackup
	opts.AllowOverwrite = importAllowOverwrite
	opts.PreserveIDs = !importRegenerateIDs
	opts.ImportViews = !importNoViews
	opts.ImportTemplates = importTemplates
	opts.ImportSettings = !importNoSettings
	return opts
}

type configDefaults struct {
	strategy   string
	onConflict string
}

func runImport(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	opts := buildImportOptions(configDefaults{
		strategy:   a.Config.DefaultStrategy,
		onConflict: a.Config.DefaultOnConflict,
	})

	raw, err := bundle.ReadFile(args[0])
	if err != nil {
		return err
	}

	existing, err := loadExistingBoard(a, importBoard)
	if err != nil {
		return err
	}

	if opts.CreateBackup && existing != nil {
		if err := a.Store.BackupBoard(existing.ID); err != nil {
			return err
		}
	}

	result := a.Engine.Import(raw, existing, opts)
	if err := a.Renderer.RenderImportResult(result); err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("import failed")
	}

	// Serialize writes per board id: the save fails if the stored board
	// changed since we read it.
	var ifUpdatedAt time.Time
	if existing != nil && existing.ID == result.Board.ID {
		ifUpdatedAt = existing.UpdatedAt
	}
	if err := a.Store.SaveBoard(result.Board, ifUpdatedAt); err != nil {
		return err
	}
	if len(result.Views) > 0 {
		if err := a.Store.SaveViews(result.Views); err != nil {
			return err
		}
	}
	if len(result.Templates) > 0 {
		if err := a.Store.SaveTemplates(result.Templates); err != nil {
			return err
		}
	}

	return nil
}

func loadExistingBoard(a *app, boardID string) (*domain.PlotBoard, error) {
	if boardID == "" {
		return nil, nil
	}
	board, err := a.Store.GetBoard(boardID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("board %s not found", boardID)
	}
	if err != nil {
		return nil, err
	}
	return board, nil
}
