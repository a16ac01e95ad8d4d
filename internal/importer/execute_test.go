package importer

import (
	"strings"
	"testing"

	"github.com/oklahomahail/plotboard/internal/bundle"
	"github.com/oklahomahail/plotboard/internal/domain"
	"github.com/oklahomahail/plotboard/internal/id"
)

func mustExecute(t *testing.T, b *bundle.ExportBundle, existing *domain.PlotBoard, conflicts []*ImportConflict, opts ImportOptions) *ExecuteResult {
	t.Helper()
	result, err := ExecuteMerge(b, existing, conflicts, opts, id.NewAllocator())
	if err != nil {
		t.Fatalf("ExecuteMerge() error: %v", err)
	}
	if err := domain.ValidateBoard(result.Board); err != nil {
		t.Fatalf("merge produced invalid board: %v", err)
	}
	return result
}

func TestExecuteReplace(t *testing.T) {
	existing := existingBoard()
	incoming := existing.Clone()
	incoming.Title = "Replacement"
	incoming.Columns = incoming.Columns[:1]
	inc := incomingBundle(incoming)

	opts := DefaultOptions()
	result := mustExecute(t, inc, existing, nil, opts)

	if result.Board.Title != "Replacement" {
		t.Errorf("title = %q, want Replacement", result.Board.Title)
	}
	if len(result.Board.Columns) != 1 {
		t.Errorf("columns = %d, want 1", len(result.Board.Columns))
	}
	// The existing board is untouched.
	if existing.Title != "Novel Outline" || len(existing.Columns) != 2 {
		t.Error("replace mutated the existing board")
	}
	// The result is a copy, not an alias of the bundle.
	result.Board.Columns[0].Title = "mutated"
	if inc.Board.Columns[0].Title == "mutated" {
		t.Error("result aliases the bundle board")
	}
}

func TestExecuteReplaceIsIdempotent(t *testing.T) {
	existing := existingBoard()
	inc := incomingBundle(existing.Clone())
	opts := DefaultOptions()

	first := mustExecute(t, inc, existing, nil, opts)
	second := mustExecute(t, inc, first.Board, nil, opts)

	if len(second.Board.Columns) != len(first.Board.Columns) {
		t.Errorf("second replace changed column count: %d vs %d",
			len(second.Board.Columns), len(first.Board.Columns))
	}
	if second.Board.CardCount() != first.Board.CardCount() {
		t.Errorf("second replace changed card count: %d vs %d",
			second.Board.CardCount(), first.Board.CardCount())
	}
}

func TestExecuteMergeOverwrite(t *testing.T) {
	existing := existingBoard()

	// Incoming shares column c1 but brings a reworked Opening card, a new
	// card, and a brand new column. Existing card k2 has no incoming
	// counterpart and must survive.
	incoming := &domain.PlotBoard{
		ID: "b1", ProjectID: "p1", Title: "Revised Outline",
		Columns: []domain.PlotColumn{
			{
				ID: "c1", BoardID: "b1", Title: "Act I", Order: 0, Type: domain.ColumnTypeAct,
				Cards: []domain.PlotCard{
					{ID: "k1", ColumnID: "c1", Title: "Opening", Description: "revised", Order: 0},
					{ID: "k9", ColumnID: "c1", Title: "New Beat", Order: 1},
				},
			},
			{ID: "c3", BoardID: "b1", Title: "Act III", Order: 1, Type: domain.ColumnTypeAct},
		},
	}
	inc := incomingBundle(incoming)

	opts := DefaultOptions()
	opts.Strategy = domain.MergeMerge
	opts.OnConflict = domain.ResolutionOverwrite
	opts.AllowOverwrite = true

	conflicts := DetectConflicts(inc, existing, opts)
	ResolveConflicts(conflicts, opts.OnConflict, id.NewAllocator())
	result := mustExecute(t, inc, existing, conflicts, opts)
	board := result.Board

	if board.Title != "Revised Outline" {
		t.Errorf("title = %q, want Revised Outline", board.Title)
	}

	// c1 overwritten in place, c2 untouched, c3 appended.
	if len(board.Columns) != 3 {
		t.Fatalf("columns = %d, want 3", len(board.Columns))
	}
	if board.Columns[0].ID != "c1" || board.Columns[0].Order != 0 {
		t.Errorf("c1 not kept in place: id=%q order=%d", board.Columns[0].ID, board.Columns[0].Order)
	}
	if board.Columns[1].ID != "c2" || board.Columns[1].Order != 1 {
		t.Errorf("c2 displaced: id=%q order=%d", board.Columns[1].ID, board.Columns[1].Order)
	}
	if board.Columns[2].ID != "c3" {
		t.Errorf("columns[2] = %q, want c3", board.Columns[2].ID)
	}

	// Card-level merge inside c1: k1 replaced, k2 retained, k9 appended.
	c1 := board.Columns[0]
	if len(c1.Cards) != 3 {
		t.Fatalf("c1 cards = %d, want 3", len(c1.Cards))
	}
	byID := make(map[string]domain.PlotCard, len(c1.Cards))
	for _, card := range c1.Cards {
		byID[card.ID] = card
	}
	if got, ok := byID["k1"]; !ok || got.Description != "revised" {
		t.Errorf("k1 not overwritten: %+v", got)
	}
	if _, ok := byID["k2"]; !ok {
		t.Error("existing-only card k2 lost during overwrite")
	}
	if _, ok := byID["k9"]; !ok {
		t.Error("incoming-only card k9 not appended")
	}
}

func TestExecuteMergeSkip(t *testing.T) {
	existing := existingBoard()
	incoming := existing.Clone()
	incoming.Columns[0].Cards[0].Description = "should not land"
	inc := incomingBundle(incoming)

	opts := DefaultOptions()
	opts.Strategy = domain.MergeMerge
	opts.OnConflict = domain.ResolutionSkip
	opts.AllowOverwrite = true

	conflicts := DetectConflicts(inc, existing, opts)
	ResolveConflicts(conflicts, opts.OnConflict, id.NewAllocator())
	result := mustExecute(t, inc, existing, conflicts, opts)
	board := result.Board

	// Every incoming item collided and was skipped; nothing duplicated.
	if len(board.Columns) != 2 {
		t.Errorf("columns = %d, want 2", len(board.Columns))
	}
	if board.CardCount() != existing.CardCount() {
		t.Errorf("cards = %d, want %d", board.CardCount(), existing.CardCount())
	}
	if board.Columns[0].Cards[0].Description == "should not land" {
		t.Error("skipped card overwrote existing data")
	}
}

func TestExecuteMergeRename(t *testing.T) {
	existing := existingBoard()
	inc := incomingBundle(existing.Clone())

	opts := DefaultOptions()
	opts.Strategy = domain.MergeMerge
	opts.OnConflict = domain.ResolutionRename
	opts.AllowOverwrite = true

	conflicts := DetectConflicts(inc, existing, opts)
	ResolveConflicts(conflicts, opts.OnConflict, id.NewAllocator())
	result := mustExecute(t, inc, existing, conflicts, opts)
	board := result.Board

	// Both incoming columns were renamed and appended next to the
	// originals.
	if len(board.Columns) != 4 {
		t.Fatalf("columns = %d, want 4", len(board.Columns))
	}
	renamed := 0
	for _, col := range board.Columns {
		if strings.HasSuffix(col.Title, " (Imported)") {
			renamed++
		}
	}
	if renamed != 2 {
		t.Errorf("renamed columns = %d, want 2", renamed)
	}
}

func TestExecuteMergeManualKeepsExisting(t *testing.T) {
	existing := existingBoard()
	incoming := existing.Clone()
	incoming.Columns[0].Title = "Act I Revised"
	incoming.Columns[0].Cards[0].Description = "should not land"
	inc := incomingBundle(incoming)

	opts := DefaultOptions()
	opts.Strategy = domain.MergeMerge
	opts.OnConflict = domain.ResolutionManual
	opts.AllowOverwrite = true

	conflicts := DetectConflicts(inc, existing, opts)
	ResolveConflicts(conflicts, opts.OnConflict, id.NewAllocator())
	result := mustExecute(t, inc, existing, conflicts, opts)

	if len(result.Warnings) == 0 {
		t.Error("unresolved conflicts produced no warning")
	}
	// Existing data wins for every unresolved conflict.
	c1 := result.Board.Columns[0]
	if c1.Cards[0].Description == "should not land" {
		t.Error("unresolved conflict overwrote existing card")
	}
}

func TestExecuteMergeWithoutExistingFallsBackToReplace(t *testing.T) {
	inc := incomingBundle(existingBoard())

	opts := DefaultOptions()
	opts.Strategy = domain.MergeMerge

	result := mustExecute(t, inc, nil, nil, opts)
	if result.Board.ID != "b1" || len(result.Board.Columns) != 2 {
		t.Errorf("fallback replace mangled the board: %+v", result.Board)
	}
}

func TestExecuteAppend(t *testing.T) {
	existing := existingBoard()
	inc := incomingBundle(existing.Clone())

	opts := DefaultOptions()
	opts.Strategy = domain.MergeAppend

	result := mustExecute(t, inc, existing, nil, opts)
	board := result.Board

	// Append is purely additive: every incoming column lands after the
	// existing ones with a fresh identity.
	if len(board.Columns) != len(existing.Columns)+len(inc.Board.Columns) {
		t.Fatalf("columns = %d, want %d", len(board.Columns), len(existing.Columns)+len(inc.Board.Columns))
	}
	if board.CardCount() != existing.CardCount()+inc.Board.CardCount() {
		t.Errorf("cards = %d, want %d", board.CardCount(), existing.CardCount()+inc.Board.CardCount())
	}

	for i, col := range board.Columns {
		if col.Order != i {
			t.Errorf("column %s order = %d, want %d", col.ID, col.Order, i)
		}
	}
	appended := board.Columns[len(existing.Columns):]
	for _, col := range appended {
		if !strings.Contains(col.ID, "_appended_") {
			t.Errorf("appended column id %q missing _appended_ marker", col.ID)
		}
		if col.BoardID != board.ID {
			t.Errorf("appended column %s board ref = %q", col.ID, col.BoardID)
		}
		for _, card := range col.Cards {
			if !strings.Contains(card.ID, "_appended_") {
				t.Errorf("appended card id %q missing _appended_ marker", card.ID)
			}
			if card.ColumnID != col.ID {
				t.Errorf("appended card %s column ref = %q, want %q", card.ID, card.ColumnID, col.ID)
			}
		}
	}
}

func TestExecuteImportsViewsAndTemplates(t *testing.T) {
	existing := existingBoard()
	inc := incomingBundle(existing.Clone())
	inc.Views = []domain.SavedView{
		{ID: "v1", BoardID: "other", Name: "By Status"},
	}
	inc.Templates = []domain.PlotBoardTemplate{
		{ID: "t1", Name: "Three-Act", Category: "structure", IsBuiltIn: true},
	}

	opts := DefaultOptions()
	opts.ImportTemplates = true

	result := mustExecute(t, inc, existing, nil, opts)

	if len(result.Views) != 1 {
		t.Fatalf("views = %d, want 1", len(result.Views))
	}
	if result.Views[0].BoardID != result.Board.ID {
		t.Errorf("view board ref = %q, want %q", result.Views[0].BoardID, result.Board.ID)
	}
	if result.Views[0].ID != "v1" {
		t.Errorf("view id = %q, want v1 (preserveIds)", result.Views[0].ID)
	}

	if len(result.Templates) != 1 {
		t.Fatalf("templates = %d, want 1", len(result.Templates))
	}
	if result.Templates[0].IsBuiltIn {
		t.Error("imported template kept built-in flag")
	}
}

func TestExecuteRegeneratesIDsWhenNotPreserved(t *testing.T) {
	existing := existingBoard()
	inc := incomingBundle(existing.Clone())
	inc.Views = []domain.SavedView{{ID: "v1", Name: "By Status"}}
	inc.Templates = []domain.PlotBoardTemplate{{ID: "t1", Name: "Beats", Category: "structure"}}

	opts := DefaultOptions()
	opts.PreserveIDs = false
	opts.ImportTemplates = true

	result := mustExecute(t, inc, existing, nil, opts)

	if result.Views[0].ID == "v1" {
		t.Error("view id not regenerated")
	}
	if result.Templates[0].ID == "t1" {
		t.Error("template id not regenerated")
	}
}

func TestExecuteSkipsViewsWhenDisabled(t *testing.T) {
	existing := existingBoard()
	inc := incomingBundle(existing.Clone())
	inc.Views = []domain.SavedView{{ID: "v1", Name: "By Status"}}

	opts := DefaultOptions()
	opts.ImportViews = false

	result := mustExecute(t, inc, existing, nil, opts)
	if len(result.Views) != 0 {
		t.Errorf("views = %d, want 0", len(result.Views))
	}
}
