// Package journal provides an advisory audit log of destructive operations,
// backed by BoltDB. It records what was attempted and how it ended; it is
// never consulted to decide future behavior.
package journal

import (
	"fmt"
	"time"

	"uproot/pkg/backend"
	"uproot/pkg/residue"
)

// Operation represents the kind of destructive operation recorded.
type Operation string

const (
	OpRemove Operation = "remove"
	OpForce  Operation = "force-remove"
	OpClean  Operation = "clean"
)

// Item is one target or path within a recorded batch.
type Item struct {
	Identifier string `json:"identifier"`
	Kind       string `json:"kind,omitempty"`
	Succeeded  bool   `json:"succeeded"`
	Cancelled  bool   `json:"cancelled,omitempty"`
	Detail     string `json:"detail,omitempty"`
}

// Entry represents a single operation batch in the journal.
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Operation Operation `json:"operation"`
	Items     []Item    `json:"items"`
}

// NewRemovalEntry builds a journal entry from a removal batch.
func NewRemovalEntry(mode backend.Mode, results []backend.RemovalResult) *Entry {
	op := OpRemove
	if mode == backend.ModeForced {
		op = OpForce
	}
	entry := &Entry{
		ID:        generateID(),
		Timestamp: time.Now(),
		Operation: op,
	}
	for _, r := range results {
		item := Item{
			Identifier: r.Identifier,
			Kind:       string(r.Kind),
			Succeeded:  r.Status == backend.StatusSucceeded,
			Cancelled:  r.Status == backend.StatusCancelled,
		}
		if r.Err != nil {
			item.Detail = r.Err.Error()
		}
		entry.Items = append(entry.Items, item)
	}
	return entry
}

// NewCleanEntry builds a journal entry from a residue clean run.
func NewCleanEntry(results []residue.CleanResult) *Entry {
	entry := &Entry{
		ID:        generateID(),
		Timestamp: time.Now(),
		Operation: OpClean,
	}
	for _, r := range results {
		item := Item{
			Identifier: r.Path,
			Succeeded:  r.Succeeded,
			Cancelled:  r.Cancelled,
		}
		if r.Err != nil {
			item.Detail = r.Err.Error()
		}
		entry.Items = append(entry.Items, item)
	}
	return entry
}

// generateID generates a unique ID for the entry.
func generateID() string {
	return time.Now().Format("20060102150405.000000")
}

// FormatTime returns a human-readable timestamp.
func (e *Entry) FormatTime() string {
	return e.Timestamp.Format("2006-01-02 15:04:05")
}

// Counts returns how many items succeeded, failed, and were cancelled.
func (e *Entry) Counts() (succeeded, failed, cancelled int) {
	for _, item := range e.Items {
		switch {
		case item.Succeeded:
			succeeded++
		case item.Cancelled:
			cancelled++
		default:
			failed++
		}
	}
	return succeeded, failed, cancelled
}

// Summary returns a brief summary of the batch.
func (e *Entry) Summary() string {
	ok, failed, cancelled := e.Counts()
	return fmt.Sprintf("%s %s: %d ok, %d failed, %d cancelled",
		e.FormatTime(), e.Operation, ok, failed, cancelled)
}
