// Package store provides SQLite persistence for the CLI host around the
// import engine. Boards are stored as canonical JSON rows; saves use a
// compare-and-swap on updated_at so two concurrent imports against the
// same board cannot silently lose updates.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/oklahomahail/plotboard/internal/domain"
)

const schemaSQL = `
	CREATE TABLE IF NOT EXISTS boards (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL,
		title TEXT NOT NULL,
		data TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS board_backups (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		board_id TEXT NOT NULL,
		data TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS views (
		id TEXT PRIMARY KEY,
		board_id TEXT NOT NULL,
		data TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS templates (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		data TEXT NOT NULL
	);
`

// StaleBoardError is returned when a save loses a compare-and-swap race.
type StaleBoardError struct {
	BoardID  string
	Expected time.Time
	Actual   time.Time
}

func (e *StaleBoardError) Error() string {
	return fmt.Sprintf("board %s was modified concurrently: expected updated_at %s, got %s",
		e.BoardID, e.Expected.Format(time.RFC3339), e.Actual.Format(time.RFC3339))
}

// BoardSummary is a row in the board listing
type BoardSummary struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"projectId"`
	Title     string    `json:"title"`
	Columns   int       `json:"columns"`
	Cards     int       `json:"cards"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store wraps the SQLite connection
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the board database at path.
// ":memory:" works for tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// GetBoard loads a board by id. Returns sql.ErrNoRows when absent.
func (s *Store) GetBoard(id string) (*domain.PlotBoard, error) {
	var data string
	if err := s.db.QueryRow("SELECT data FROM boards WHERE id = ?", id).Scan(&data); err != nil {
		return nil, err
	}

	var board domain.PlotBoard
	if err := json.Unmarshal([]byte(data), &board); err != nil {
		return nil, fmt.Errorf("failed to decode board %s: %w", id, err)
	}
	return &board, nil
}

// SaveBoard upserts a board. When the board already exists, ifUpdatedAt
// must match the stored row's updated_at or the save fails with
// StaleBoardError. Pass the zero time for an unconditional save.
func (s *Store) SaveBoard(board *domain.PlotBoard, ifUpdatedAt time.Time) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var stored string
	err = tx.QueryRow("SELECT updated_at FROM boards WHERE id = ?", board.ID).Scan(&stored)
	switch {
	case err == sql.ErrNoRows:
		// New board, nothing to check.
	case err != nil:
		return fmt.Errorf("failed to check board %s: %w", board.ID, err)
	case !ifUpdatedAt.IsZero():
		actual, perr := time.Parse(time.RFC3339Nano, stored)
		if perr != nil {
			return fmt.Errorf("failed to parse stored timestamp for board %s: %w", board.ID, perr)
		}
		if !actual.Equal(ifUpdatedAt) {
			return &StaleBoardError{BoardID: board.ID, Expected: ifUpdatedAt, Actual: actual}
		}
	}

	data, err := json.Marshal(board)
	if err != nil {
		return fmt.Errorf("failed to encode board %s: %w", board.ID, err)
	}

	_, err = tx.Exec(`
		INSERT INTO boards (id, project_id, title, data, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			project_id = excluded.project_id,
			title = excluded.title,
			data = excluded.data,
			updated_at = excluded.updated_at
	`, board.ID, board.ProjectID, board.Title, string(data), board.UpdatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to save board %s: %w", board.ID, err)
	}

	return tx.Commit()
}

// BackupBoard copies the current stored row of a board into
// board_backups. A missing board is not an error; there is simply
// nothing to back up.
func (s *Store) BackupBoard(id string) error {
	var data string
	err := s.db.QueryRow("SELECT data FROM boards WHERE id = ?", id).Scan(&data)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read board %s: %w", id, err)
	}

	_, err = s.db.Exec(`
		INSERT INTO board_backups (board_id, data, created_at)
		VALUES (?, ?, ?)
	`, id, data, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to back up board %s: %w", id, err)
	}
	return nil
}

// ListBoards returns summaries of every stored board, ordered by title.
func (s *Store) ListBoards() ([]BoardSummary, error) {
	rows, err := s.db.Query("SELECT data FROM boards ORDER BY title")
	if err != nil {
		return nil, fmt.Errorf("failed to list boards: %w", err)
	}
	defer rows.Close()

	var out []BoardSummary
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var board domain.PlotBoard
		if err := json.Unmarshal([]byte(data), &board); err != nil {
			return nil, fmt.Errorf("failed to decode board row: %w", err)
		}
		out = append(out, BoardSummary{
			ID:        board.ID,
			ProjectID: board.ProjectID,
			Title:     board.Title,
			Columns:   len(board.Columns),
			Cards:     board.CardCount(),
			UpdatedAt: board.UpdatedAt,
		})
	}
	return out, rows.Err()
}

// SaveViews upserts saved views
func (s *Store) SaveViews(views []domain.SavedView) error {
	for _, v := range views {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode view %s: %w", v.ID, err)
		}
		if _, err := s.db.Exec(`
			INSERT INTO views (id, board_id, data) VALUES (?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET board_id = excluded.board_id, data = excluded.data
		`, v.ID, v.BoardID, string(data)); err != nil {
			return fmt.Errorf("failed to save view %s: %w", v.ID, err)
		}
	}
	return nil
}

// SaveTemplates upserts board templates
func (s *Store) SaveTemplates(templates []domain.PlotBoardTemplate) error {
	for _, t := range templates {
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("failed to encode template %s: %w", t.ID, err)
		}
		if _, err := s.db.Exec(`
			INSERT INTO templates (id, name, data) VALUES (?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET name = excluded.name, data = excluded.data
		`, t.ID, t.Name, string(data)); err != nil {
			return fmt.Errorf("failed to save template %s: %w", t.ID, err)
		}
	}
	return nil
}
