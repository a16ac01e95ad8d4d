package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/oklahomahail/plotboard/internal/importer"
	"github.com/oklahomahail/plotboard/internal/store"
)

// Format represents an output format
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// Renderer handles output rendering
type Renderer struct {
	writer io.Writer
	format Format
}

// NewRenderer creates a new renderer
func NewRenderer(writer io.Writer, format Format) *Renderer {
	return &Renderer{writer: writer, format: format}
}

// RenderJSON renders data as JSON
func (r *Renderer) RenderJSON(data interface{}) error {
	encoder := json.NewEncoder(r.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// RenderYAML renders data as YAML
func (r *Renderer) RenderYAML(data interface{}) error {
	encoder := yaml.NewEncoder(r.writer)
	defer encoder.Close()
	return encoder.Encode(data)
}

// RenderImportResult renders an import result in the configured format
func (r *Renderer) RenderImportResult(res *importer.ImportResult) error {
	switch r.format {
	case FormatJSON:
		return r.RenderJSON(res)
	case FormatYAML:
		return r.RenderYAML(res)
	default:
		return r.renderImportTable(res)
	}
}

func (r *Renderer) renderImportTable(res *importer.ImportResult) error {
	var sb strings.Builder

	if !res.Success {
		sb.WriteString("import failed\n")
		for _, e := range res.Errors {
			fmt.Fprintf(&sb, "  error: %s\n", e)
		}
		_, err := io.WriteString(r.writer, sb.String())
		return err
	}

	fmt.Fprintf(&sb, "imported board %q (%s)\n", res.Board.Title, res.Board.ID)
	fmt.Fprintf(&sb, "  columns:   %d\n", res.Metadata.ColumnsImported)
	fmt.Fprintf(&sb, "  cards:     %d\n", res.Metadata.CardsImported)
	if res.Metadata.ViewsImported > 0 {
		fmt.Fprintf(&sb, "  views:     %d\n", res.Metadata.ViewsImported)
	}
	if res.Metadata.TemplatesImported > 0 {
		fmt.Fprintf(&sb, "  templates: %d\n", res.Metadata.TemplatesImported)
	}
	if res.Metadata.ConflictCount > 0 {
		fmt.Fprintf(&sb, "  conflicts: %d\n", res.Metadata.ConflictCount)
	}
	writeMigration(&sb, res.Migration)
	for _, w := range res.Warnings {
		fmt.Fprintf(&sb, "  warning: %s\n", w)
	}

	_, err := io.WriteString(r.writer, sb.String())
	return err
}

// RenderPreview renders a preview result in the configured format
func (r *Renderer) RenderPreview(res *importer.PreviewResult) error {
	switch r.format {
	case FormatJSON:
		return r.RenderJSON(res)
	case FormatYAML:
		return r.RenderYAML(res)
	}

	var sb strings.Builder
	if !res.Success {
		sb.WriteString("preview failed\n")
		for _, e := range res.Errors {
			fmt.Fprintf(&sb, "  error: %s\n", e)
		}
		_, err := io.WriteString(r.writer, sb.String())
		return err
	}

	fmt.Fprintf(&sb, "would import board %q\n", res.BoardTitle)
	fmt.Fprintf(&sb, "  columns:   %d\n", res.ColumnCount)
	fmt.Fprintf(&sb, "  cards:     %d\n", res.CardCount)
	if res.ViewCount > 0 {
		fmt.Fprintf(&sb, "  views:     %d\n", res.ViewCount)
	}
	if res.TemplateCount > 0 {
		fmt.Fprintf(&sb, "  templates: %d\n", res.TemplateCount)
	}
	writeMigration(&sb, res.Migration)
	for _, c := range res.Conflicts {
		state := string(c.Resolution)
		if !c.Resolved {
			state = "unresolved"
		}
		fmt.Fprintf(&sb, "  conflict [%s] %s -> %s\n", c.Type, c.Item, state)
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(&sb, "  warning: %s\n", w)
	}

	_, err := io.WriteString(r.writer, sb.String())
	return err
}

// RenderBoardList renders board summaries in the configured format
func (r *Renderer) RenderBoardList(boards []store.BoardSummary) error {
	switch r.format {
	case FormatJSON:
		return r.RenderJSON(boards)
	case FormatYAML:
		return r.RenderYAML(boards)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%-24s %-32s %8s %8s\n", "ID", "TITLE", "COLUMNS", "CARDS")
	for _, b := range boards {
		fmt.Fprintf(&sb, "%-24s %-32s %8d %8d\n", b.ID, b.Title, b.Columns, b.Cards)
	}
	_, err := io.WriteString(r.writer, sb.String())
	return err
}

func writeMigration(sb *strings.Builder, mig *importer.MigrationInfo) {
	if mig == nil {
		return
	}
	fmt.Fprintf(sb, "  migration: %s -> %s\n", mig.FromVersion, mig.ToVersion)
	for _, c := range mig.Changes {
		fmt.Fprintf(sb, "    change: %s\n", c)
	}
	for _, w := range mig.Warnings {
		fmt.Fprintf(sb, "    warning: %s\n", w)
	}
}
