package importer

import (
	"strings"
	"testing"

	"github.com/oklahomahail/plotboard/internal/domain"
	"github.com/oklahomahail/plotboard/internal/id"
)

func TestResolveSkipAndOverwrite(t *testing.T) {
	for _, policy := range []domain.ConflictResolution{domain.ResolutionSkip, domain.ResolutionOverwrite} {
		existing := existingBoard()
		inc := incomingBundle(existing.Clone())
		conflicts := DetectConflicts(inc, existing, DefaultOptions())

		ResolveConflicts(conflicts, policy, id.NewAllocator())

		for i, c := range conflicts {
			if !c.Resolved {
				t.Errorf("policy %s: conflict %d not resolved", policy, i)
			}
			if c.Resolution != policy {
				t.Errorf("policy %s: conflict %d resolution = %q", policy, i, c.Resolution)
			}
		}
		// These policies never rewrite incoming items.
		if inc.Board.Columns[0].ID != "c1" {
			t.Errorf("policy %s mutated incoming column id", policy)
		}
	}
}

func TestResolveManualLeavesUnresolved(t *testing.T) {
	existing := existingBoard()
	inc := incomingBundle(existing.Clone())
	conflicts := DetectConflicts(inc, existing, DefaultOptions())

	ResolveConflicts(conflicts, domain.ResolutionManual, id.NewAllocator())

	for i, c := range conflicts {
		if c.Resolved {
			t.Errorf("conflict %d resolved under manual policy", i)
		}
		if c.Resolution != domain.ResolutionManual {
			t.Errorf("conflict %d resolution = %q, want manual", i, c.Resolution)
		}
	}
}

func TestResolveRenameColumn(t *testing.T) {
	existing := existingBoard()
	inc := incomingBundle(existing.Clone())
	conflicts := DetectConflicts(inc, existing, DefaultOptions())

	ResolveConflicts(conflicts, domain.ResolutionRename, id.NewAllocator())

	col := &inc.Board.Columns[0]
	if !strings.HasSuffix(col.Title, " (Imported)") {
		t.Errorf("column title = %q, want (Imported) suffix", col.Title)
	}
	if !strings.Contains(col.ID, "_imported_") {
		t.Errorf("column id = %q, want _imported_ marker", col.ID)
	}
	if col.ID == "c1" {
		t.Error("column id not rewritten")
	}
	for i := range col.Cards {
		if col.Cards[i].ColumnID != col.ID {
			t.Errorf("card %d back-reference %q not repointed to %q", i, col.Cards[i].ColumnID, col.ID)
		}
	}
}

func TestResolveRenameCard(t *testing.T) {
	existing := existingBoard()
	inc := incomingBundle(existing.Clone())
	conflicts := DetectConflicts(inc, existing, DefaultOptions())

	ResolveConflicts(conflicts, domain.ResolutionRename, id.NewAllocator())

	card := &inc.Board.Columns[0].Cards[0]
	if !strings.HasSuffix(card.Title, " (Imported)") {
		t.Errorf("card title = %q, want (Imported) suffix", card.Title)
	}
	if !strings.Contains(card.ID, "_imported_") {
		t.Errorf("card id = %q, want _imported_ marker", card.ID)
	}
}

func TestResolveRenameNeverForksBoard(t *testing.T) {
	existing := existingBoard()
	inc := incomingBundle(existing.Clone())
	conflicts := DetectConflicts(inc, existing, DefaultOptions())

	ResolveConflicts(conflicts, domain.ResolutionRename, id.NewAllocator())

	if inc.Board.ID != existing.ID {
		t.Errorf("board id rewritten to %q under rename policy", inc.Board.ID)
	}
	if strings.Contains(inc.Board.Title, "(Imported)") {
		t.Errorf("board title rewritten to %q under rename policy", inc.Board.Title)
	}
	// The board conflict is still tagged resolved so execution proceeds.
	for _, c := range conflicts {
		if c.Type == domain.ConflictBoardExists && !c.Resolved {
			t.Error("board conflict left unresolved under rename policy")
		}
	}
}
