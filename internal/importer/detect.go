package importer

import (
	"fmt"

	"github.com/oklahomahail/plotboard/internal/bundle"
	"github.com/oklahomahail/plotboard/internal/domain"
)

// DetectConflicts walks the incoming board against the existing one and
// returns every collision in stable order: board, then columns in
// incoming order, then cards in incoming order within each matched
// column. Columns and cards with no match produce no conflict; the
// merge strategy treats them as new.
func DetectConflicts(incoming *bundle.ExportBundle, existing *domain.PlotBoard, opts ImportOptions) []*ImportConflict {
	var conflicts []*ImportConflict

	if incoming.Board.ID == existing.ID && !opts.AllowOverwrite {
		conflicts = append(conflicts, &ImportConflict{
			Type:     domain.ConflictBoardExists,
			Item:     fmt.Sprintf("board %q", existing.Title),
			Existing: existing,
			Incoming: &incoming.Board,
		})
	}

	for i := range incoming.Board.Columns {
		incCol := &incoming.Board.Columns[i]
		exCol := findColumn(existing, incCol)
		if exCol == nil {
			continue
		}

		conflicts = append(conflicts, &ImportConflict{
			Type:     domain.ConflictColumnExists,
			Item:     fmt.Sprintf("column %q", incCol.Title),
			Existing: exCol,
			Incoming: incCol,
		})

		// Card conflicts are only meaningful inside a matched column.
		for j := range incCol.Cards {
			incCard := &incCol.Cards[j]
			exCard := findCard(exCol, incCard)
			if exCard == nil {
				continue
			}
			conflicts = append(conflicts, &ImportConflict{
				Type:     domain.ConflictCardExists,
				Item:     fmt.Sprintf("card %q in column %q", incCard.Title, incCol.Title),
				Existing: exCard,
				Incoming: incCard,
			})
		}
	}

	return conflicts
}

// findColumn matches by id first, then by exact title. First match wins.
func findColumn(board *domain.PlotBoard, col *domain.PlotColumn) *domain.PlotColumn {
	for i := range board.Columns {
		ex := &board.Columns[i]
		if ex.ID == col.ID || ex.Title == col.Title {
			return ex
		}
	}
	return nil
}

// findCard matches by id first, then by (title, sceneId) pair.
func findCard(col *domain.PlotColumn, card *domain.PlotCard) *domain.PlotCard {
	for i := range col.Cards {
		ex := &col.Cards[i]
		if ex.ID == card.ID || (ex.Title == card.Title && ex.SceneID == card.SceneID) {
			return ex
		}
	}
	return nil
}
