package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"uproot/pkg/backend"
	"uproot/pkg/inventory"
	"uproot/pkg/residue"
)

// Table wraps tabwriter for consistent styling.
type Table struct {
	writer  *tabwriter.Writer
	headers []string
}

// NewTable creates a new table writing to stdout.
func NewTable(header []string) *Table {
	return NewTableWriter(os.Stdout, header)
}

// NewTableWriter creates a new table that writes to a specific writer.
func NewTableWriter(w io.Writer, header []string) *Table {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	t := &Table{writer: tw, headers: header}
	if len(header) > 0 {
		headerRow := make([]string, len(header))
		for i, h := range header {
			headerRow[i] = Bold(strings.ToUpper(h))
		}
		fmt.Fprintln(tw, strings.Join(headerRow, "\t"))
	}
	return t
}

// AddRow adds a row to the table.
func (t *Table) AddRow(row []string) {
	fmt.Fprintln(t.writer, strings.Join(row, "\t"))
}

// Render outputs the table.
func (t *Table) Render() {
	t.writer.Flush()
}

// PrintEntries prints inventory entries in a formatted table.
func PrintEntries(entries []inventory.Entry) {
	if len(entries) == 0 {
		MutedMsg("No packages found")
		return
	}

	table := NewTable([]string{"backend", "identifier", "version", "size", ""})
	for _, e := range entries {
		kind := UnitKind.Sprint("[" + string(e.Kind) + "]")
		name := UnitName.Sprint(e.Identifier)
		version := UnitVersion.Sprint(e.Version)

		note := ""
		if e.Protected {
			note = Protected.Sprint(SymbolLock + " protected")
		}

		table.AddRow([]string{kind, name, version, FormatSize(e.InstalledSizeBytes), note})
	}
	table.Render()
}

// PrintRemovalResults prints one line per removal outcome.
func PrintRemovalResults(results []backend.RemovalResult) {
	for _, r := range results {
		label := fmt.Sprintf("%s [%s]", r.Identifier, r.Kind)
		switch r.Status {
		case backend.StatusSucceeded:
			SuccessMsg("removed %s", label)
		case backend.StatusCancelled:
			MutedMsg(SymbolCancelled + " cancelled " + label)
		default:
			detail := "unknown error"
			if r.Err != nil {
				detail = r.Err.Error()
			}
			ErrorMsg("failed %s: %s", label, detail)
		}
		for _, w := range r.Warnings {
			WarningMsg("%s: %s", r.Identifier, w)
		}
	}
}

// PrintCandidates prints residue scan results in a formatted table.
func PrintCandidates(candidates []residue.Candidate) {
	if len(candidates) == 0 {
		MutedMsg("No residue found")
		return
	}

	table := NewTable([]string{"path", "kind", "size", "match"})
	for _, c := range candidates {
		path := Residue.Sprint(c.Path)
		if c.Symlink {
			path += Muted.Sprint(" (symlink)")
		}
		table.AddRow([]string{path, string(c.Kind), FormatSize(c.SizeBytes), string(c.Confidence)})
	}
	table.Render()
}

// PrintCleanResults prints one line per deletion attempt.
func PrintCleanResults(results []residue.CleanResult) {
	for _, r := range results {
		switch {
		case r.Succeeded:
			SuccessMsg("deleted %s", r.Path)
		case r.Cancelled:
			MutedMsg(SymbolCancelled + " cancelled " + r.Path)
		default:
			detail := "unknown error"
			if r.Err != nil {
				detail = r.Err.Error()
			}
			ErrorMsg("failed %s: %s", r.Path, detail)
		}
	}
}

// FormatSize renders a byte count in human units.
func FormatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
