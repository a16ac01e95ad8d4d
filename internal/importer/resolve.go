package importer

import (
	"github.com/oklahomahail/plotboard/internal/domain"
	"github.com/oklahomahail/plotboard/internal/id"
)

// ResolveConflicts applies one global policy to every detected conflict.
// Skip and Overwrite only tag the conflicts; the executor interprets the
// tags. Rename additionally rewrites the incoming column/card identity
// in place so the executor can treat it as new. Manual leaves conflicts
// unresolved for an external caller.
func ResolveConflicts(conflicts []*ImportConflict, policy domain.ConflictResolution, ids *id.Allocator) {
	for _, c := range conflicts {
		switch policy {
		case domain.ResolutionSkip:
			c.Resolution = domain.ResolutionSkip
			c.Resolved = true

		case domain.ResolutionOverwrite:
			c.Resolution = domain.ResolutionOverwrite
			c.Resolved = true

		case domain.ResolutionRename:
			c.Resolution = domain.ResolutionRename
			c.Resolved = true
			renameIncoming(c, ids)

		case domain.ResolutionManual:
			c.Resolution = domain.ResolutionManual
			c.Resolved = false
		}
	}
}

// renameIncoming rewrites the incoming item's title and id. Boards are
// never renamed: forking the user's board under a global policy would be
// worse than surfacing the conflict.
func renameIncoming(c *ImportConflict, ids *id.Allocator) {
	switch c.Type {
	case domain.ConflictColumnExists:
		col, ok := c.Incoming.(*domain.PlotColumn)
		if !ok {
			return
		}
		col.Title += " (Imported)"
		col.ID = ids.Imported(col.ID)
		// Keep card back-references pointing at the renamed column.
		for i := range col.Cards {
			col.Cards[i].ColumnID = col.ID
		}

	case domain.ConflictCardExists:
		card, ok := c.Incoming.(*domain.PlotCard)
		if !ok {
			return
		}
		card.Title += " (Imported)"
		card.ID = ids.Imported(card.ID)
	}
}
