// Package importer implements the plot-board import pipeline: conflict
// detection, policy resolution, and strategy-based merge execution,
// sequenced by an orchestrator that never lets a failure escape as an
// error.
package importer

import (
	"github.com/oklahomahail/plotboard/internal/domain"
)

// ImportOptions configures a single import run. Use DefaultOptions and
// override fields; the zero value disables everything.
type ImportOptions struct {
	// Strategy selects how the incoming board combines with the
	// existing one.
	Strategy domain.MergeStrategy
	// OnConflict is the policy applied to every detected conflict.
	OnConflict domain.ConflictResolution
	// ValidateSchema enables schema version checking and migration.
	ValidateSchema bool
	// AutoMigrate upgrades trailing bundles automatically; when false a
	// version gap is reported as advisory migration info instead.
	AutoMigrate bool
	// CreateBackup asks the host to back up the existing board before
	// persisting the result. The engine itself performs no I/O.
	CreateBackup bool
	// AllowOverwrite suppresses the board-level identity conflict.
	AllowOverwrite bool
	// PreserveIDs keeps incoming view/template ids; when false they are
	// regenerated.
	PreserveIDs bool
	// ImportViews copies the bundle's saved views onto the result board.
	ImportViews bool
	// ImportTemplates copies the bundle's templates (never as built-in).
	ImportTemplates bool
	// ImportSettings takes the incoming board's settings during a merge.
	ImportSettings bool
}

// DefaultOptions returns the documented defaults for an import run.
func DefaultOptions() ImportOptions {
	return ImportOptions{
		Strategy:        domain.MergeReplace,
		OnConflict:      domain.ResolutionSkip,
		ValidateSchema:  true,
		AutoMigrate:     true,
		CreateBackup:    true,
		AllowOverwrite:  false,
		PreserveIDs:     true,
		ImportViews:     true,
		ImportTemplates: false,
		ImportSettings:  true,
	}
}

// ImportConflict records one collision between an incoming item and an
// existing one. Existing and Incoming hold pointers to the live objects
// (*domain.PlotBoard, *domain.PlotColumn, or *domain.PlotCard); the
// engine only inspects their identity fields, and the executor matches
// conflicts back to bundle items by pointer identity on Incoming.
type ImportConflict struct {
	Type       domain.ConflictType       `json:"type"`
	Item       string                    `json:"item"`
	Existing   any                       `json:"existing,omitempty"`
	Incoming   any                       `json:"incoming,omitempty"`
	Resolution domain.ConflictResolution `json:"resolution,omitempty"`
	Resolved   bool                      `json:"resolved"`
}

// MigrationInfo summarizes what schema migration did (or would need to
// do) for a bundle.
type MigrationInfo struct {
	Required    bool     `json:"required"`
	FromVersion string   `json:"fromVersion"`
	ToVersion   string   `json:"toVersion"`
	Changes     []string `json:"changes,omitempty"`
	Warnings    []string `json:"warnings,omitempty"`
}

// ImportMetadata echoes counts computed by walking the final result.
type ImportMetadata struct {
	BoardsImported    int `json:"boardsImported"`
	ColumnsImported   int `json:"columnsImported"`
	CardsImported     int `json:"cardsImported"`
	ViewsImported     int `json:"viewsImported"`
	TemplatesImported int `json:"templatesImported"`
	ConflictCount     int `json:"conflictCount"`
	WarningCount      int `json:"warningCount"`
}

// ImportResult is the outcome of an import run. Success is false when
// any stage failed; the board is never partially mutated on failure.
type ImportResult struct {
	Success   bool                       `json:"success"`
	Board     *domain.PlotBoard          `json:"board,omitempty"`
	Views     []domain.SavedView         `json:"views,omitempty"`
	Templates []domain.PlotBoardTemplate `json:"templates,omitempty"`
	Metadata  ImportMetadata             `json:"metadata"`
	Conflicts []*ImportConflict          `json:"conflicts,omitempty"`
	Errors    []string                   `json:"errors,omitempty"`
	Warnings  []string                   `json:"warnings,omitempty"`
	Migration *MigrationInfo             `json:"migration,omitempty"`
}

// PreviewResult summarizes what an import would do, for confirmation
// surfaces. Produced by the same pipeline minus merge execution.
type PreviewResult struct {
	Success       bool              `json:"success"`
	BoardTitle    string            `json:"boardTitle"`
	ColumnCount   int               `json:"columnCount"`
	CardCount     int               `json:"cardCount"`
	ViewCount     int               `json:"viewCount"`
	TemplateCount int               `json:"templateCount"`
	Conflicts     []*ImportConflict `json:"conflicts,omitempty"`
	Migration     *MigrationInfo    `json:"migration,omitempty"`
	Errors        []string          `json:"errors,omitempty"`
	Warnings      []string          `json:"warnings,omitempty"`
}
