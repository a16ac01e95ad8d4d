// Package schema manages bundle schema versions and migrations.
//
// Bundles carry the schema version they were exported under. When it
// trails the engine's current version, a registered chain of migration
// steps upgrades the bundle in place, each step reporting what it
// changed and anything it could not fix cleanly.
package schema

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/oklahomahail/plotboard/internal/bundle"
	"github.com/oklahomahail/plotboard/internal/domain"
)

// CurrentVersion is the schema version this engine reads and writes.
const CurrentVersion = "2.0.0"

// MigrationError is returned when a bundle cannot be migrated to the
// target version.
type MigrationError struct {
	FromVersion string
	ToVersion   string
	Reason      string
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("cannot migrate bundle from %s to %s: %s", e.FromVersion, e.ToVersion, e.Reason)
}

// Migration is a single upgrade step between two adjacent schema
// versions. Apply mutates the bundle and returns human-readable change
// and warning descriptions.
type Migration struct {
	From        string
	To          string
	Description string
	Apply       func(*bundle.ExportBundle) (changes, warnings []string)
}

// Manager resolves version comparisons and runs migration chains.
// Safe for concurrent reads; Migrate mutates only the bundle it is
// handed.
type Manager struct {
	current    string
	migrations []Migration
}

// NewManager returns a manager with the built-in migration chain
// registered.
func NewManager() *Manager {
	m := &Manager{current: CurrentVersion}
	m.Register(Migration{
		From:        "1.0.0",
		To:          "1.1.0",
		Description: "normalize card tags",
		Apply:       migrateTags,
	})
	m.Register(Migration{
		From:        "1.1.0",
		To:          "2.0.0",
		Description: "introduce column types and normalized card status",
		Apply:       migrateColumnTypes,
	})
	return m
}

// Register adds a migration step to the chain
func (m *Manager) Register(mig Migration) {
	m.migrations = append(m.migrations, mig)
}

// CurrentVersion returns the engine's schema version
func (m *Manager) CurrentVersion() string {
	return m.current
}

// Compare compares two dotted version strings numerically, segment by
// segment. Missing segments count as zero; non-numeric segments count as
// zero. Returns -1, 0, or 1.
func Compare(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	n := len(as)
	if len(bs) > n {
		n = len(bs)
	}
	for i := 0; i < n; i++ {
		av, bv := 0, 0
		if i < len(as) {
			av, _ = strconv.Atoi(as[i])
		}
		if i < len(bs) {
			bv, _ = strconv.Atoi(bs[i])
		}
		if av < bv {
			return -1
		}
		if av > bv {
			return 1
		}
	}
	return 0
}

// Migrate upgrades a bundle in place to the target version by walking
// the registered chain from the bundle's current version. It returns
// the accumulated change and warning descriptions. A gap in the chain
// or a downgrade request yields a MigrationError and leaves the bundle
// version untouched at the point of failure.
func (m *Manager) Migrate(b *bundle.ExportBundle, target string) ([]string, []string, error) {
	cur := b.Metadata.SchemaVersion
	if Compare(cur, target) > 0 {
		return nil, nil, &MigrationError{FromVersion: cur, ToVersion: target, Reason: "downgrades are not supported"}
	}

	var changes, warnings []string
	for Compare(cur, target) < 0 {
		step := m.find(cur)
		if step == nil {
			return nil, nil, &MigrationError{FromVersion: cur, ToVersion: target, Reason: fmt.Sprintf("no migration step registered from %s", cur)}
		}
		c, w := step.Apply(b)
		changes = append(changes, fmt.Sprintf("%s -> %s: %s", step.From, step.To, step.Description))
		changes = append(changes, c...)
		warnings = append(warnings, w...)
		cur = step.To
		b.Metadata.SchemaVersion = cur
	}

	return changes, warnings, nil
}

func (m *Manager) find(from string) *Migration {
	for i := range m.migrations {
		if m.migrations[i].From == from {
			return &m.migrations[i]
		}
	}
	return nil
}

// migrateTags initializes nil tag lists and drops duplicate tags.
// Pre-1.1.0 exporters omitted the tags field entirely.
func migrateTags(b *bundle.ExportBundle) ([]string, []string) {
	var changes, warnings []string
	initialized, deduped := 0, 0

	for i := range b.Board.Columns {
		col := &b.Board.Columns[i]
		for j := range col.Cards {
			card := &col.Cards[j]
			if card.Tags == nil {
				card.Tags = []string{}
				initialized++
				continue
			}
			seen := make(map[string]bool, len(card.Tags))
			out := card.Tags[:0]
			for _, tag := range card.Tags {
				if seen[tag] {
					deduped++
					continue
				}
				seen[tag] = true
				out = append(out, tag)
			}
			card.Tags = out
		}
	}

	if initialized > 0 {
		changes = append(changes, fmt.Sprintf("initialized empty tag lists on %d cards", initialized))
	}
	if deduped > 0 {
		warnings = append(warnings, fmt.Sprintf("removed %d duplicate tags", deduped))
	}
	return changes, warnings
}

// migrateColumnTypes fills the column type introduced in 2.0.0 and maps
// the legacy "draft" card status to "drafted".
func migrateColumnTypes(b *bundle.ExportBundle) ([]string, []string) {
	var changes, warnings []string
	typed, restatused := 0, 0

	for i := range b.Board.Columns {
		col := &b.Board.Columns[i]
		if col.Type == "" {
			col.Type = domain.ColumnTypeCustom
			typed++
		}
		if col.Settings.WIPLimit < 0 {
			col.Settings.WIPLimit = 0
			warnings = append(warnings, fmt.Sprintf("column %s: reset negative WIP limit", col.ID))
		}
		for j := range col.Cards {
			card := &col.Cards[j]
			if card.Status == "draft" {
				card.Status = domain.CardStatusDrafted
				restatused++
			}
		}
	}

	if typed > 0 {
		changes = append(changes, fmt.Sprintf("defaulted %d columns to type %q", typed, domain.ColumnTypeCustom))
	}
	if restatused > 0 {
		changes = append(changes, fmt.Sprintf("renamed legacy status on %d cards", restatused))
	}
	return changes, warnings
}
