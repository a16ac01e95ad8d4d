package domain

import "time"

// ColumnType represents the structural role of a column on a plot board
type ColumnType string

const (
	ColumnTypeAct     ColumnType = "act"
	ColumnTypeChapter ColumnType = "chapter"
	ColumnTypeScene   ColumnType = "scene"
	ColumnTypeCustom  ColumnType = "custom"
)

// CardStatus represents the drafting state of a card
type CardStatus string

const (
	CardStatusIdea    CardStatus = "idea"
	CardStatusDrafted CardStatus = "drafted"
	CardStatusRevised CardStatus = "revised"
	CardStatusFinal   CardStatus = "final"
)

// CardPriority represents the priority of a card
type CardPriority string

const (
	CardPriorityLow    CardPriority = "low"
	CardPriorityMedium CardPriority = "medium"
	CardPriorityHigh   CardPriority = "high"
)

// MergeStrategy selects how an imported board is combined with an
// existing one.
type MergeStrategy string

const (
	// MergeReplace discards the existing board and takes the incoming
	// board verbatim.
	MergeReplace MergeStrategy = "replace"
	// MergeMerge reconciles the incoming board into the existing one,
	// column by column and card by card.
	MergeMerge MergeStrategy = "merge"
	// MergeAppend keeps the existing board intact and appends every
	// incoming column with a fresh identity.
	MergeAppend MergeStrategy = "append"
)

// ConflictResolution is the policy applied to every detected conflict in
// a single import run.
type ConflictResolution string

const (
	ResolutionSkip      ConflictResolution = "skip"
	ResolutionOverwrite ConflictResolution = "overwrite"
	ResolutionRename    ConflictResolution = "rename"
	ResolutionManual    ConflictResolution = "manual"
)

// ConflictType tags what kind of collision a conflict describes.
type ConflictType string

const (
	ConflictBoardExists    ConflictType = "board_exists"
	ConflictColumnExists   ConflictType = "column_exists"
	ConflictCardExists     ConflictType = "card_exists"
	ConflictViewExists     ConflictType = "view_exists"
	ConflictTemplateExists ConflictType = "template_exists"
	ConflictSchemaMismatch ConflictType = "schema_mismatch"
	ConflictIDCollision    ConflictType = "id_collision"
)

// BundleFormat identifies the serialization format of an export bundle.
type BundleFormat string

const (
	FormatJSON     BundleFormat = "json"
	FormatTemplate BundleFormat = "template"
)

// BoardSettings holds per-board display preferences
type BoardSettings struct {
	ShowCardCounts bool   `json:"showCardCounts"`
	CompactView    bool   `json:"compactView"`
	ColorScheme    string `json:"colorScheme,omitempty"`
}

// ColumnSettings holds per-column preferences
type ColumnSettings struct {
	WIPLimit  int  `json:"wipLimit,omitempty"`
	Collapsed bool `json:"collapsed"`
}

// PlotBoard represents a story-planning board: an ordered list of columns
// holding scene/beat cards.
type PlotBoard struct {
	ID          string        `json:"id"`
	ProjectID   string        `json:"projectId"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Columns     []PlotColumn  `json:"columns"`
	Settings    BoardSettings `json:"settings"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// PlotColumn represents a single column on a board. Order is a dense
// 0-based index within the board's column list.
type PlotColumn struct {
	ID          string         `json:"id"`
	BoardID     string         `json:"boardId"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Color       string         `json:"color,omitempty"`
	Order       int            `json:"order"`
	Type        ColumnType     `json:"type"`
	Settings    ColumnSettings `json:"settings"`
	Cards       []PlotCard     `json:"cards"`
}

// PlotCard represents a scene or beat card. Order is a dense 0-based
// index within the column's card list. SceneID optionally links the card
// to an external scene entity.
type PlotCard struct {
	ID          string       `json:"id"`
	ColumnID    string       `json:"columnId"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Order       int          `json:"order"`
	Status      CardStatus   `json:"status,omitempty"`
	Priority    CardPriority `json:"priority,omitempty"`
	Tags        []string     `json:"tags,omitempty"`
	SceneID     string       `json:"sceneId,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// SavedView represents a saved filter/sort configuration over a board
type SavedView struct {
	ID        string            `json:"id"`
	BoardID   string            `json:"boardId"`
	Name      string            `json:"name"`
	Filters   map[string]string `json:"filters,omitempty"`
	SortBy    string            `json:"sortBy,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}

// PlotBoardTemplate represents a reusable board layout
type PlotBoardTemplate struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Category    string           `json:"category"`
	Columns     []ColumnTemplate `json:"columns"`
	IsBuiltIn   bool             `json:"isBuiltIn"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// ColumnTemplate describes a column within a template
type ColumnTemplate struct {
	Title        string         `json:"title"`
	Description  string         `json:"description,omitempty"`
	Color        string         `json:"color,omitempty"`
	Type         ColumnType     `json:"type,omitempty"`
	DefaultCards []CardTemplate `json:"defaultCards,omitempty"`
}

// CardTemplate describes a starter card within a column template
type CardTemplate struct {
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Status      CardStatus   `json:"status,omitempty"`
	Priority    CardPriority `json:"priority,omitempty"`
	Tags        []string     `json:"tags,omitempty"`
}

// Clone returns a deep copy of the board. Merge execution always works
// on copies so the caller's board and the parsed bundle are never
// mutated through shared slices.
func (b *PlotBoard) Clone() *PlotBoard {
	out := *b
	out.Columns = make([]PlotColumn, len(b.Columns))
	for i := range b.Columns {
		out.Columns[i] = *b.Columns[i].Clone()
	}
	return &out
}

// Clone returns a deep copy of the column and its cards
func (c *PlotColumn) Clone() *PlotColumn {
	out := *c
	out.Cards = make([]PlotCard, len(c.Cards))
	for i := range c.Cards {
		out.Cards[i] = *c.Cards[i].Clone()
	}
	return &out
}

// Clone returns a deep copy of the card
func (card *PlotCard) Clone() *PlotCard {
	out := *card
	if card.Tags != nil {
		out.Tags = make([]string, len(card.Tags))
		copy(out.Tags, card.Tags)
	}
	return &out
}

// CardCount returns the total number of cards across all columns
func (b *PlotBoard) CardCount() int {
	n := 0
	for i := range b.Columns {
		n += len(b.Columns[i].Cards)
	}
	return n
}
