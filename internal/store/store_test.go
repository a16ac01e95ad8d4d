package store

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/oklahomahail/plotboard/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleBoard(id string) *domain.PlotBoard {
	return &domain.PlotBoard{
		ID: id, ProjectID: "p1", Title: "Board " + id,
		UpdatedAt: time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC),
		Columns: []domain.PlotColumn{
			{
				ID: id + "-c1", BoardID: id, Title: "Act I", Order: 0,
				Cards: []domain.PlotCard{
					{ID: id + "-k1", ColumnID: id + "-c1", Title: "Opening", Order: 0},
				},
			},
		},
	}
}

func TestSaveAndGetBoard(t *testing.T) {
	s := openTestStore(t)
	board := sampleBoard("b1")

	if err := s.SaveBoard(board, time.Time{}); err != nil {
		t.Fatalf("SaveBoard() error: %v", err)
	}

	got, err := s.GetBoard("b1")
	if err != nil {
		t.Fatalf("GetBoard() error: %v", err)
	}
	if got.Title != board.Title || got.ProjectID != board.ProjectID {
		t.Errorf("loaded board = %+v", got)
	}
	if len(got.Columns) != 1 || len(got.Columns[0].Cards) != 1 {
		t.Errorf("loaded board lost structure: %+v", got)
	}
}

func TestGetBoardMissing(t *testing.T) {
	s := openTestStore(t)
	_, err := s.GetBoard("nope")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("GetBoard() error = %v, want sql.ErrNoRows", err)
	}
}

func TestSaveBoardCompareAndSwap(t *testing.T) {
	s := openTestStore(t)
	board := sampleBoard("b1")

	if err := s.SaveBoard(board, time.Time{}); err != nil {
		t.Fatalf("initial SaveBoard() error: %v", err)
	}

	// Save conditioned on the stored timestamp succeeds.
	updated := sampleBoard("b1")
	updated.Title = "Renamed"
	updated.UpdatedAt = board.UpdatedAt.Add(time.Minute)
	if err := s.SaveBoard(updated, board.UpdatedAt); err != nil {
		t.Fatalf("conditional SaveBoard() error: %v", err)
	}

	// A second save against the old timestamp loses the race.
	stale := sampleBoard("b1")
	err := s.SaveBoard(stale, board.UpdatedAt)
	var serr *StaleBoardError
	if !errors.As(err, &serr) {
		t.Fatalf("stale SaveBoard() error = %v, want StaleBoardError", err)
	}
	if serr.BoardID != "b1" {
		t.Errorf("BoardID = %q, want b1", serr.BoardID)
	}
	if !serr.Actual.Equal(updated.UpdatedAt) {
		t.Errorf("Actual = %s, want %s", serr.Actual, updated.UpdatedAt)
	}

	// The losing save left nothing behind.
	got, err := s.GetBoard("b1")
	if err != nil {
		t.Fatalf("GetBoard() error: %v", err)
	}
	if got.Title != "Renamed" {
		t.Errorf("title = %q, want Renamed", got.Title)
	}
}

func TestSaveBoardUnconditional(t *testing.T) {
	s := openTestStore(t)
	board := sampleBoard("b1")
	if err := s.SaveBoard(board, time.Time{}); err != nil {
		t.Fatalf("SaveBoard() error: %v", err)
	}

	// Zero time skips the check even when the row exists.
	board.Title = "Clobbered"
	if err := s.SaveBoard(board, time.Time{}); err != nil {
		t.Fatalf("unconditional SaveBoard() error: %v", err)
	}
	got, err := s.GetBoard("b1")
	if err != nil {
		t.Fatalf("GetBoard() error: %v", err)
	}
	if got.Title != "Clobbered" {
		t.Errorf("title = %q, want Clobbered", got.Title)
	}
}

func TestBackupBoard(t *testing.T) {
	s := openTestStore(t)

	// Backing up a missing board is a no-op.
	if err := s.BackupBoard("nope"); err != nil {
		t.Fatalf("BackupBoard() on missing board: %v", err)
	}

	board := sampleBoard("b1")
	if err := s.SaveBoard(board, time.Time{}); err != nil {
		t.Fatalf("SaveBoard() error: %v", err)
	}
	if err := s.BackupBoard("b1"); err != nil {
		t.Fatalf("BackupBoard() error: %v", err)
	}

	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM board_backups WHERE board_id = ?", "b1").Scan(&n); err != nil {
		t.Fatalf("failed to count backups: %v", err)
	}
	if n != 1 {
		t.Errorf("backups = %d, want 1", n)
	}
}

func TestListBoards(t *testing.T) {
	s := openTestStore(t)

	boards, err := s.ListBoards()
	if err != nil {
		t.Fatalf("ListBoards() error: %v", err)
	}
	if len(boards) != 0 {
		t.Errorf("empty store listed %d boards", len(boards))
	}

	for _, id := range []string{"b2", "b1"} {
		if err := s.SaveBoard(sampleBoard(id), time.Time{}); err != nil {
			t.Fatalf("SaveBoard(%s) error: %v", id, err)
		}
	}

	boards, err = s.ListBoards()
	if err != nil {
		t.Fatalf("ListBoards() error: %v", err)
	}
	if len(boards) != 2 {
		t.Fatalf("listed %d boards, want 2", len(boards))
	}
	// Ordered by title.
	if boards[0].ID != "b1" || boards[1].ID != "b2" {
		t.Errorf("order = %s, %s, want b1, b2", boards[0].ID, boards[1].ID)
	}
	if boards[0].Columns != 1 || boards[0].Cards != 1 {
		t.Errorf("summary counts = %d/%d, want 1/1", boards[0].Columns, boards[0].Cards)
	}
}

func TestSaveViewsAndTemplates(t *testing.T) {
	s := openTestStore(t)

	views := []domain.SavedView{
		{ID: "v1", BoardID: "b1", Name: "By Status"},
	}
	if err := s.SaveViews(views); err != nil {
		t.Fatalf("SaveViews() error: %v", err)
	}
	// Upsert: same id again must not fail or duplicate.
	views[0].Name = "By Priority"
	if err := s.SaveViews(views); err != nil {
		t.Fatalf("SaveViews() upsert error: %v", err)
	}

	templates := []domain.PlotBoardTemplate{
		{ID: "t1", Name: "Three-Act", Category: "structure"},
	}
	if err := s.SaveTemplates(templates); err != nil {
		t.Fatalf("SaveTemplates() error: %v", err)
	}
	if err := s.SaveTemplates(templates); err != nil {
		t.Fatalf("SaveTemplates() upsert error: %v", err)
	}

	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM views").Scan(&n); err != nil {
		t.Fatalf("failed to count views: %v", err)
	}
	if n != 1 {
		t.Errorf("views = %d, want 1", n)
	}
	if err := s.db.QueryRow("SELECT COUNT(*) FROM templates").Scan(&n); err != nil {
		t.Fatalf("failed to count templates: %v", err)
	}
	if n != 1 {
		t.Errorf("templates = %d, want 1", n)
	}
}
