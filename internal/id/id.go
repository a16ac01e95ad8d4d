// Package id generates process-unique identifiers for boards, columns,
// cards, views, and templates.
//
// Identifiers combine an atomic counter with a random UUID fragment, so
// items created in the same call (or the same millisecond) can never
// collide. Wall-clock time is deliberately not part of the token.
package id

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
)

// Allocator hands out unique tokens for the lifetime of a process.
// The zero value is ready to use; all methods are safe for concurrent
// callers.
type Allocator struct {
	seq atomic.Uint64
}

// NewAllocator returns a fresh allocator
func NewAllocator() *Allocator {
	return &Allocator{}
}

// Next returns a new token of the form "<seq>-<rand8>"
func (a *Allocator) Next() string {
	n := a.seq.Add(1)
	frag := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%d-%s", n, frag)
}

// Board returns a new board identifier
func (a *Allocator) Board() string {
	return "board_" + a.Next()
}

// Column returns a new column identifier
func (a *Allocator) Column() string {
	return "col_" + a.Next()
}

// Card returns a new card identifier
func (a *Allocator) Card() string {
	return "card_" + a.Next()
}

// View returns a new saved-view identifier
func (a *Allocator) View() string {
	return "view_" + a.Next()
}

// Template returns a new template identifier
func (a *Allocator) Template() string {
	return "tpl_" + a.Next()
}

// Imported derives a unique identifier for a renamed import of an
// existing item.
func (a *Allocator) Imported(id string) string {
	return id + "_imported_" + a.Next()
}

// Appended derives a unique identifier for an append-strategy copy of an
// existing item.
func (a *Allocator) Appended(id string) string {
	return id + "_appended_" + a.Next()
}
