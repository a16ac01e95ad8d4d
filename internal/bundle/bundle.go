// Package bundle defines the export-bundle shape produced by the board
// exporter and the parser that normalizes raw import input into it.
//
// Three input shapes are accepted: a full bundle (metadata + board), a
// bare board, and a board template. Bare boards and templates get
// synthesized metadata so the rest of the pipeline only ever sees a
// complete ExportBundle.
package bundle

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/oklahomahail/plotboard/internal/domain"
	"github.com/oklahomahail/plotboard/internal/id"
)

// ErrInvalidFormat is returned when raw input matches none of the
// accepted bundle shapes.
var ErrInvalidFormat = errors.New("invalid import data format")

// ErrChecksumMismatch is returned when a bundle's checksum does not match
// its board content.
var ErrChecksumMismatch = errors.New("bundle checksum does not match board content")

// BundleMetadata describes a bundle's provenance and integrity.
type BundleMetadata struct {
	ExportedAt    time.Time           `json:"exportedAt"`
	SchemaVersion string              `json:"schemaVersion"`
	Format        domain.BundleFormat `json:"format"`
	BoardID       string              `json:"boardId"`
	BoardTitle    string              `json:"boardTitle"`
	CardsCount    int                 `json:"cardsCount"`
	ColumnsCount  int                 `json:"columnsCount"`
	TotalSize     int                 `json:"totalSize"`
	Checksum      string              `json:"checksum"`
}

// ExportBundle is the canonical import payload: one board plus optional
// saved views and templates. It lives only for the duration of a single
// import call and is never persisted by the engine.
type ExportBundle struct {
	Metadata  BundleMetadata             `json:"metadata"`
	Board     domain.PlotBoard           `json:"board"`
	Views     []domain.SavedView         `json:"views,omitempty"`
	Templates []domain.PlotBoardTemplate `json:"templates,omitempty"`
}

// Parse normalizes raw JSON into an ExportBundle, detecting one of three
// shapes: full bundle, bare board, or template. The allocator is used to
// mint ids when materializing a template. Returns ErrInvalidFormat when
// the input matches no shape.
func Parse(data []byte, ids *id.Allocator) (*ExportBundle, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	switch {
	case has(probe, "metadata") && has(probe, "board"):
		var b ExportBundle
		if err := json.Unmarshal(data, &b); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
		return &b, nil

	case has(probe, "id") && has(probe, "projectId") && has(probe, "columns"):
		var board domain.PlotBoard
		if err := json.Unmarshal(data, &board); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
		return fromBoard(&board, len(data)), nil

	case has(probe, "name") && has(probe, "columns") && has(probe, "category"):
		var tpl domain.PlotBoardTemplate
		if err := json.Unmarshal(data, &tpl); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
		return fromTemplate(&tpl, ids, len(data)), nil

	default:
		return nil, ErrInvalidFormat
	}
}

// ReadFile loads a bundle file from disk. This is the only I/O the
// import boundary performs; everything downstream works on bytes.
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bundle: %w", err)
	}
	return data, nil
}

// fromBoard wraps a bare board in synthesized metadata. The schema
// version of a bare board is unknowable, so migration is skipped
// downstream with a warning.
func fromBoard(board *domain.PlotBoard, size int) *ExportBundle {
	b := &ExportBundle{
		Metadata: BundleMetadata{
			ExportedAt:    time.Now().UTC(),
			SchemaVersion: "unknown",
			Format:        domain.FormatJSON,
			BoardID:       board.ID,
			BoardTitle:    board.Title,
			CardsCount:    board.CardCount(),
			ColumnsCount:  len(board.Columns),
			TotalSize:     size,
		},
		Board: *board,
	}
	b.Metadata.Checksum = Checksum(&b.Board)
	return b
}

// fromTemplate materializes a template into a full board with freshly
// generated ids for the board, every column, and every default card.
func fromTemplate(tpl *domain.PlotBoardTemplate, ids *id.Allocator, size int) *ExportBundle {
	now := time.Now().UTC()
	board := domain.PlotBoard{
		ID:          ids.Board(),
		Title:       tpl.Name,
		Description: tpl.Description,
		Columns:     make([]domain.PlotColumn, 0, len(tpl.Columns)),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	for i, ct := range tpl.Columns {
		colType := ct.Type
		if colType == "" {
			colType = domain.ColumnTypeCustom
		}
		col := domain.PlotColumn{
			ID:          ids.Column(),
			BoardID:     board.ID,
			Title:       ct.Title,
			Description: ct.Description,
			Color:       ct.Color,
			Order:       i,
			Type:        colType,
			Cards:       make([]domain.PlotCard, 0, len(ct.DefaultCards)),
		}
		for j, dc := range ct.DefaultCards {
			col.Cards = append(col.Cards, domain.PlotCard{
				ID:          ids.Card(),
				ColumnID:    col.ID,
				Title:       dc.Title,
				Description: dc.Description,
				Order:       j,
				Status:      dc.Status,
				Priority:    dc.Priority,
				Tags:        dc.Tags,
				CreatedAt:   now,
				UpdatedAt:   now,
			})
		}
		board.Columns = append(board.Columns, col)
	}

	b := &ExportBundle{
		Metadata: BundleMetadata{
			ExportedAt:    now,
			SchemaVersion: "unknown",
			Format:        domain.FormatTemplate,
			BoardID:       board.ID,
			BoardTitle:    board.Title,
			CardsCount:    board.CardCount(),
			ColumnsCount:  len(board.Columns),
			TotalSize:     size,
		},
		Board: board,
	}
	b.Metadata.Checksum = Checksum(&b.Board)
	return b
}

// Verify recomputes the board checksum and compares it against the
// bundle metadata. A bundle without a checksum verifies trivially; the
// caller decides whether that is worth a warning.
func Verify(b *ExportBundle) error {
	if b.Metadata.Checksum == "" {
		return nil
	}
	if got := Checksum(&b.Board); got != b.Metadata.Checksum {
		return fmt.Errorf("%w: expected %s, got %s", ErrChecksumMismatch, b.Metadata.Checksum, got)
	}
	return nil
}

func has(probe map[string]json.RawMessage, key string) bool {
	raw, ok := probe[key]
	return ok && string(raw) != "null"
}
