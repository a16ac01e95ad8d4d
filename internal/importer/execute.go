package importer

import (
	"fmt"
	"time"

	"github.com/oklahomahail/plotboard/internal/bundle"
	"github.com/oklahomahail/plotboard/internal/domain"
	"github.com/oklahomahail/plotboard/internal/id"
)

// ExecuteResult is the output of merge execution, before the
// orchestrator wraps it in an ImportResult.
type ExecuteResult struct {
	Board     *domain.PlotBoard
	Views     []domain.SavedView
	Templates []domain.PlotBoardTemplate
	Warnings  []string
}

// ExecuteMerge produces the final board under the selected strategy.
// Merge and Append require an existing board and fall back to Replace
// without one. The input bundle and existing board are never mutated;
// the result is always a fresh copy with dense order indexes.
func ExecuteMerge(b *bundle.ExportBundle, existing *domain.PlotBoard, conflicts []*ImportConflict, opts ImportOptions, ids *id.Allocator) (*ExecuteResult, error) {
	result := &ExecuteResult{}

	if n := countUnresolved(conflicts); n > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%d conflicts remain unresolved; existing data was kept for them", n))
	}

	var board *domain.PlotBoard
	switch {
	case existing == nil || opts.Strategy == domain.MergeReplace:
		board = executeReplace(b)
	case opts.Strategy == domain.MergeMerge:
		board = executeMerge(b, existing, conflicts, opts)
	case opts.Strategy == domain.MergeAppend:
		board = executeAppend(b, existing, ids)
	default:
		return nil, fmt.Errorf("unknown merge strategy %q", opts.Strategy)
	}

	board.UpdatedAt = time.Now().UTC()
	if err := domain.ValidateBoard(board); err != nil {
		return nil, fmt.Errorf("merge produced an invalid board: %w", err)
	}
	result.Board = board

	if opts.ImportViews && len(b.Views) > 0 {
		result.Views = importViews(b.Views, board.ID, opts, ids)
	}
	if opts.ImportTemplates && len(b.Templates) > 0 {
		result.Templates = importTemplates(b.Templates, opts, ids)
	}

	return result, nil
}

// executeReplace takes the incoming board verbatim, ignoring the
// existing board and every conflict.
func executeReplace(b *bundle.ExportBundle) *domain.PlotBoard {
	board := b.Board.Clone()
	reindexColumns(board)
	return board
}

// executeMerge reconciles the incoming board into a copy of the
// existing one. Column dispositions come from the resolved conflicts;
// an overwritten column is merged card by card rather than replaced
// wholesale, so cards that only exist locally survive the import.
func executeMerge(b *bundle.ExportBundle, existing *domain.PlotBoard, conflicts []*ImportConflict, opts ImportOptions) *domain.PlotBoard {
	merged := existing.Clone()

	if b.Board.Title != "" {
		merged.Title = b.Board.Title
	}
	if b.Board.Description != "" {
		merged.Description = b.Board.Description
	}
	if opts.ImportSettings {
		merged.Settings = b.Board.Settings
	}

	for i := range b.Board.Columns {
		incCol := &b.Board.Columns[i]
		c := findColumnConflict(conflicts, incCol)

		switch {
		case c == nil:
			// New column: append to the end.
			appendColumn(merged, incCol.Clone())

		case !c.Resolved:
			// Manual and unresolved: keep the existing column untouched.
			continue

		case c.Resolution == domain.ResolutionSkip:
			continue

		case c.Resolution == domain.ResolutionRename:
			// The resolver already gave it a fresh identity; it is a new
			// column now.
			appendColumn(merged, incCol.Clone())

		case c.Resolution == domain.ResolutionOverwrite:
			exCol, ok := c.Existing.(*domain.PlotColumn)
			if !ok {
				appendColumn(merged, incCol.Clone())
				continue
			}
			idx := columnIndexByID(merged, exCol.ID)
			if idx < 0 {
				appendColumn(merged, incCol.Clone())
				continue
			}
			merged.Columns[idx] = *overwriteColumn(&merged.Columns[idx], incCol, conflicts)
		}
	}

	reindexColumns(merged)
	return merged
}

// overwriteColumn merges an incoming column into the existing one at its
// current position: metadata and identity come from the incoming column,
// cards are reconciled individually. Matched cards are replaced in
// place, existing-only cards are retained, incoming-only cards are
// appended.
func overwriteColumn(exCol, incCol *domain.PlotColumn, conflicts []*ImportConflict) *domain.PlotColumn {
	out := incCol.Clone()
	out.Order = exCol.Order

	cards := make([]domain.PlotCard, len(exCol.Cards))
	for i := range exCol.Cards {
		cards[i] = *exCol.Cards[i].Clone()
	}

	for i := range incCol.Cards {
		incCard := &incCol.Cards[i]
		c := findCardConflict(conflicts, incCard)

		switch {
		case c == nil:
			cards = append(cards, *incCard.Clone())

		case !c.Resolved, c.Resolution == domain.ResolutionSkip:
			continue

		case c.Resolution == domain.ResolutionRename:
			cards = append(cards, *incCard.Clone())

		case c.Resolution == domain.ResolutionOverwrite:
			exCard, ok := c.Existing.(*domain.PlotCard)
			if !ok {
				cards = append(cards, *incCard.Clone())
				continue
			}
			if idx := cardIndexByID(cards, exCard.ID); idx >= 0 {
				cards[idx] = *incCard.Clone()
			} else {
				cards = append(cards, *incCard.Clone())
			}
		}
	}

	out.Cards = cards
	return out
}

// executeAppend deep-copies every incoming column with a fresh identity
// and places it after the existing columns. Conflicts are deliberately
// not consulted: duplicates end up side by side.
func executeAppend(b *bundle.ExportBundle, existing *domain.PlotBoard, ids *id.Allocator) *domain.PlotBoard {
	board := existing.Clone()

	for i := range b.Board.Columns {
		col := b.Board.Columns[i].Clone()
		col.ID = ids.Appended(col.ID)
		col.BoardID = board.ID
		col.Order = len(existing.Columns) + i
		for j := range col.Cards {
			card := &col.Cards[j]
			card.ID = ids.Appended(card.ID)
			card.ColumnID = col.ID
			card.Order = j
		}
		board.Columns = append(board.Columns, *col)
	}

	reindexColumns(board)
	return board
}

func importViews(views []domain.SavedView, boardID string, opts ImportOptions, ids *id.Allocator) []domain.SavedView {
	out := make([]domain.SavedView, 0, len(views))
	for _, v := range views {
		v.BoardID = boardID
		if !opts.PreserveIDs {
			v.ID = ids.View()
		}
		out = append(out, v)
	}
	return out
}

func importTemplates(templates []domain.PlotBoardTemplate, opts ImportOptions, ids *id.Allocator) []domain.PlotBoardTemplate {
	out := make([]domain.PlotBoardTemplate, 0, len(templates))
	for _, t := range templates {
		if !opts.PreserveIDs {
			t.ID = ids.Template()
		}
		// Imported templates are never treated as built-in.
		t.IsBuiltIn = false
		out = append(out, t)
	}
	return out
}

// appendColumn re-parents a column onto the board and appends it with
// the next dense order index.
func appendColumn(board *domain.PlotBoard, col *domain.PlotColumn) {
	col.BoardID = board.ID
	col.Order = len(board.Columns)
	for i := range col.Cards {
		col.Cards[i].ColumnID = col.ID
	}
	board.Columns = append(board.Columns, *col)
}

// reindexColumns rewrites order fields and back-references so every
// order is a dense 0-based index within its parent.
func reindexColumns(board *domain.PlotBoard) {
	for i := range board.Columns {
		col := &board.Columns[i]
		col.Order = i
		col.BoardID = board.ID
		for j := range col.Cards {
			col.Cards[j].Order = j
			col.Cards[j].ColumnID = col.ID
		}
	}
}

// findColumnConflict matches a conflict to an incoming column by
// pointer identity.
func findColumnConflict(conflicts []*ImportConflict, col *domain.PlotColumn) *ImportConflict {
	for _, c := range conflicts {
		if c.Type == domain.ConflictColumnExists && c.Incoming == any(col) {
			return c
		}
	}
	return nil
}

func findCardConflict(conflicts []*ImportConflict, card *domain.PlotCard) *ImportConflict {
	for _, c := range conflicts {
		if c.Type == domain.ConflictCardExists && c.Incoming == any(card) {
			return c
		}
	}
	return nil
}

func columnIndexByID(board *domain.PlotBoard, id string) int {
	for i := range board.Columns {
		if board.Columns[i].ID == id {
			return i
		}
	}
	return -1
}

func cardIndexByID(cards []domain.PlotCard, id string) int {
	for i := range cards {
		if cards[i].ID == id {
			return i
		}
	}
	return -1
}

func countUnresolved(conflicts []*ImportConflict) int {
	n := 0
	for _, c := range conflicts {
		if !c.Resolved {
			n++
		}
	}
	return n
}
