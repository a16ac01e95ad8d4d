package domain

import "fmt"

// ValidateMergeStrategy validates a merge strategy value
func ValidateMergeStrategy(s MergeStrategy) error {
	switch s {
	case MergeReplace, MergeMerge, MergeAppend:
		return nil
	default:
		return fmt.Errorf("invalid merge strategy %q: must be one of: replace, merge, append", s)
	}
}

// ValidateConflictResolution validates a conflict resolution policy
func ValidateConflictResolution(r ConflictResolution) error {
	switch r {
	case ResolutionSkip, ResolutionOverwrite, ResolutionRename, ResolutionManual:
		return nil
	default:
		return fmt.Errorf("invalid conflict resolution %q: must be one of: skip, overwrite, rename, manual", r)
	}
}

// ValidateBoard checks the structural invariants the merge engine relies
// on: non-empty identity, single ownership via back-references, dense
// 0-based order indexes, and unique ids within the board.
func ValidateBoard(b *PlotBoard) error {
	if b.ID == "" {
		return fmt.Errorf("board has empty id")
	}

	columnIDs := make(map[string]bool, len(b.Columns))
	columnOrders := make(map[int]bool, len(b.Columns))

	for i := range b.Columns {
		col := &b.Columns[i]
		if col.ID == "" {
			return fmt.Errorf("board %s: column %d has empty id", b.ID, i)
		}
		if columnIDs[col.ID] {
			return fmt.Errorf("board %s: duplicate column id %s", b.ID, col.ID)
		}
		columnIDs[col.ID] = true

		if col.BoardID != b.ID {
			return fmt.Errorf("column %s: board back-reference %q does not match board %s", col.ID, col.BoardID, b.ID)
		}
		if col.Order < 0 || col.Order >= len(b.Columns) {
			return fmt.Errorf("column %s: order %d out of range [0,%d)", col.ID, col.Order, len(b.Columns))
		}
		if columnOrders[col.Order] {
			return fmt.Errorf("column %s: duplicate order %d", col.ID, col.Order)
		}
		columnOrders[col.Order] = true

		if err := validateCards(col); err != nil {
			return err
		}
	}

	return nil
}

func validateCards(col *PlotColumn) error {
	cardIDs := make(map[string]bool, len(col.Cards))
	cardOrders := make(map[int]bool, len(col.Cards))

	for i := range col.Cards {
		card := &col.Cards[i]
		if card.ID == "" {
			return fmt.Errorf("column %s: card %d has empty id", col.ID, i)
		}
		if cardIDs[card.ID] {
			return fmt.Errorf("column %s: duplicate card id %s", col.ID, card.ID)
		}
		cardIDs[card.ID] = true

		if card.ColumnID != col.ID {
			return fmt.Errorf("card %s: column back-reference %q does not match column %s", card.ID, card.ColumnID, col.ID)
		}
		if card.Order < 0 || card.Order >= len(col.Cards) {
			return fmt.Errorf("card %s: order %d out of range [0,%d)", card.ID, card.Order, len(col.Cards))
		}
		if cardOrders[card.Order] {
			return fmt.Errorf("card %s: duplicate order %d", card.ID, card.Order)
		}
		cardOrders[card.Order] = true
	}

	return nil
}
