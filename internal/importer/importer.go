package importer

import (
	"fmt"
	"log/slog"

	"github.com/oklahomahail/plotboard/internal/bundle"
	"github.com/oklahomahail/plotboard/internal/domain"
	"github.com/oklahomahail/plotboard/internal/id"
	"github.com/oklahomahail/plotboard/internal/schema"
)

// Engine runs the import pipeline. It keeps no state between calls
// beyond the injected schema manager and id allocator, both of which are
// safe for concurrent use.
type Engine struct {
	schema *schema.Manager
	ids    *id.Allocator
	log    *slog.Logger
}

// New creates an engine. A nil logger disables logging.
func New(mgr *schema.Manager, ids *id.Allocator, log *slog.Logger) *Engine {
	if mgr == nil {
		mgr = schema.NewManager()
	}
	if ids == nil {
		ids = id.NewAllocator()
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Engine{schema: mgr, ids: ids, log: log}
}

// Import runs the full pipeline: parse, verify, migrate, detect,
// resolve, execute. It never returns an error; every failure is captured
// in the result and no partial board is ever returned on failure.
func (e *Engine) Import(raw []byte, existing *domain.PlotBoard, opts ImportOptions) (result *ImportResult) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("import panicked", "panic", r)
			result = &ImportResult{Success: false, Errors: []string{fmt.Sprintf("import failed: %v", r)}}
		}
	}()

	b, err := bundle.Parse(raw, e.ids)
	if err != nil {
		e.log.Error("import failed", "stage", "parse", "error", err)
		return &ImportResult{Success: false, Errors: []string{err.Error()}}
	}

	return e.ImportBundle(b, existing, opts)
}

// ImportBundle runs the pipeline on an already-parsed bundle.
func (e *Engine) ImportBundle(b *bundle.ExportBundle, existing *domain.PlotBoard, opts ImportOptions) (result *ImportResult) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("import panicked", "panic", r)
			result = &ImportResult{Success: false, Errors: []string{fmt.Sprintf("import failed: %v", r)}}
		}
	}()

	e.log.Info("import started",
		"board", b.Metadata.BoardID,
		"schema_version", b.Metadata.SchemaVersion,
		"strategy", opts.Strategy,
		"on_conflict", opts.OnConflict)

	result = &ImportResult{}

	if err := e.validateOptions(opts); err != nil {
		return fail(result, err)
	}

	if !e.verifyIntegrity(b, result) {
		return result
	}

	migration, err := e.migrate(b, opts, result)
	if err != nil {
		return fail(result, err)
	}
	result.Migration = migration

	if existing != nil {
		result.Conflicts = DetectConflicts(b, existing, opts)
	}
	ResolveConflicts(result.Conflicts, opts.OnConflict, e.ids)

	exec, err := ExecuteMerge(b, existing, result.Conflicts, opts, e.ids)
	if err != nil {
		return fail(result, err)
	}

	result.Success = true
	result.Board = exec.Board
	result.Views = exec.Views
	result.Templates = exec.Templates
	result.Warnings = append(result.Warnings, exec.Warnings...)
	result.Metadata = ImportMetadata{
		BoardsImported:    1,
		ColumnsImported:   len(exec.Board.Columns),
		CardsImported:     exec.Board.CardCount(),
		ViewsImported:     len(exec.Views),
		TemplatesImported: len(exec.Templates),
		ConflictCount:     len(result.Conflicts),
		WarningCount:      len(result.Warnings),
	}
	return result
}

// Preview runs the pipeline minus merge execution and summarizes what an
// import would do.
func (e *Engine) Preview(raw []byte, existing *domain.PlotBoard, opts ImportOptions) (result *PreviewResult) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("preview panicked", "panic", r)
			result = &PreviewResult{Success: false, Errors: []string{fmt.Sprintf("preview failed: %v", r)}}
		}
	}()

	result = &PreviewResult{}

	b, err := bundle.Parse(raw, e.ids)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	inner := &ImportResult{}
	if !e.verifyIntegrity(b, inner) {
		result.Errors = inner.Errors
		result.Warnings = inner.Warnings
		return result
	}
	migration, err := e.migrate(b, opts, inner)
	if err != nil {
		result.Errors = append(inner.Errors, err.Error())
		result.Warnings = inner.Warnings
		return result
	}

	if existing != nil {
		result.Conflicts = DetectConflicts(b, existing, opts)
	}
	ResolveConflicts(result.Conflicts, opts.OnConflict, e.ids)

	result.Success = true
	result.BoardTitle = b.Board.Title
	result.ColumnCount = len(b.Board.Columns)
	result.CardCount = b.Board.CardCount()
	result.ViewCount = len(b.Views)
	result.TemplateCount = len(b.Templates)
	result.Migration = migration
	result.Warnings = inner.Warnings
	return result
}

func (e *Engine) validateOptions(opts ImportOptions) error {
	if err := domain.ValidateMergeStrategy(opts.Strategy); err != nil {
		return err
	}
	return domain.ValidateConflictResolution(opts.OnConflict)
}

// verifyIntegrity checks the bundle checksum before any migration
// mutates the board. A missing checksum is advisory; a mismatch is
// fatal. Returns false when the import must stop.
func (e *Engine) verifyIntegrity(b *bundle.ExportBundle, result *ImportResult) bool {
	if b.Metadata.Checksum == "" {
		result.Warnings = append(result.Warnings, "bundle has no checksum; integrity not verified")
		return true
	}
	if err := bundle.Verify(b); err != nil {
		e.log.Error("import failed", "stage", "verify", "error", err)
		result.Errors = append(result.Errors, err.Error())
		return false
	}
	return true
}

// migrate applies the schema version policy of the pipeline: skip when
// validation is off or the version is unknown, upgrade when trailing and
// auto-migration is on, and report advisory info when it is off. A
// migration failure aborts the whole import.
func (e *Engine) migrate(b *bundle.ExportBundle, opts ImportOptions, result *ImportResult) (*MigrationInfo, error) {
	if !opts.ValidateSchema {
		return nil, nil
	}

	from := b.Metadata.SchemaVersion
	if from == "unknown" || from == "" {
		result.Warnings = append(result.Warnings, "bundle schema version is unknown; migration skipped")
		return nil, nil
	}

	target := e.schema.CurrentVersion()
	if schema.Compare(from, target) == 0 {
		return nil, nil
	}

	if !opts.AutoMigrate {
		return &MigrationInfo{
			Required:    true,
			FromVersion: from,
			ToVersion:   target,
			Changes:     []string{"Manual migration required"},
			Warnings:    []string{"Auto-migration is disabled"},
		}, nil
	}

	changes, warns, err := e.schema.Migrate(b, target)
	if err != nil {
		e.log.Error("import failed", "stage", "migrate", "from", from, "to", target, "error", err)
		return nil, err
	}

	return &MigrationInfo{
		Required:    true,
		FromVersion: from,
		ToVersion:   target,
		Changes:     changes,
		Warnings:    warns,
	}, nil
}

func fail(result *ImportResult, err error) *ImportResult {
	result.Success = false
	result.Board = nil
	result.Views = nil
	result.Templates = nil
	result.Errors = append(result.Errors, err.Error())
	return result
}
