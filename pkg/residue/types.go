// Package residue locates and deletes leftover files of removed packages.
package residue

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Kind classifies what a leftover path holds.
type Kind string

const (
	KindConfig Kind = "config"
	KindCache  Kind = "cache"
	KindLog    Kind = "log"
	KindData   Kind = "data"
	KindOther  Kind = "other"
)

// Valid reports whether k is a known residue kind.
func (k Kind) Valid() bool {
	switch k {
	case KindConfig, KindCache, KindLog, KindData, KindOther:
		return true
	}
	return false
}

// Confidence grades how a candidate was matched to its unit.
type Confidence string

const (
	// ConfidenceExact means the entry name equals a derived candidate name.
	ConfidenceExact Confidence = "exact"
	// ConfidencePattern means a candidate name occurs in the entry name on a
	// segment boundary.
	ConfidencePattern Confidence = "pattern"
	// ConfidenceHeuristic is reserved for weaker signals; the scanner does
	// not currently emit it.
	ConfidenceHeuristic Confidence = "heuristic"
)

// rank orders confidences for deduplication. Higher wins.
func (c Confidence) rank() int {
	switch c {
	case ConfidenceExact:
		return 2
	case ConfidencePattern:
		return 1
	default:
		return 0
	}
}

// Rule describes one directory to scan. Rules are loaded from configuration
// once at startup and never mutated afterwards.
type Rule struct {
	// Root is the directory whose entries are inspected. A leading "~/" is
	// expanded against the invoking user's home directory at load time.
	Root string
	// Pattern filters entry names with shell glob syntax. Empty or "*"
	// accepts every entry.
	Pattern string
	// Kind tags candidates produced under this rule.
	Kind Kind
}

func (r Rule) String() string {
	pattern := r.Pattern
	if pattern == "" {
		pattern = "*"
	}
	return fmt.Sprintf("%s:%s [%s]", r.Root, pattern, r.Kind)
}

// Candidate is one path suspected to belong to a removed unit.
type Candidate struct {
	Path        string
	Kind        Kind
	SizeBytes   int64
	Confidence  Confidence
	MatchedRule string
	// Symlink marks entries that were recorded without being followed.
	Symlink bool
}

// Roots returns the cleaned, deduplicated root directories of a rule set.
func Roots(rules []Rule) []string {
	seen := make(map[string]struct{}, len(rules))
	var roots []string
	for _, r := range rules {
		root := filepath.Clean(r.Root)
		if _, ok := seen[root]; ok {
			continue
		}
		seen[root] = struct{}{}
		roots = append(roots, root)
	}
	return roots
}

// withinRoot reports whether path lies inside root (or is root itself) after
// lexical cleaning. It never consults the filesystem.
func withinRoot(path, root string) bool {
	path = filepath.Clean(path)
	root = filepath.Clean(root)
	if path == root {
		return true
	}
	return strings.HasPrefix(path, root+string(filepath.Separator))
}
