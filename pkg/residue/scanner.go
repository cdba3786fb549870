package residue

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"uproot/pkg/backend"
)

// Scanner walks configured scan roots looking for paths left behind by a
// removed unit. Rules are read-only after construction.
type Scanner struct {
	rules []Rule
}

// NewScanner creates a Scanner over the given rules.
func NewScanner(rules []Rule) *Scanner {
	return &Scanner{rules: rules}
}

// Rules returns the configured rule set.
func (s *Scanner) Rules() []Rule {
	return s.rules
}

// Scan inspects every configured root for entries matching the unit's derived
// names. Roots that do not exist or cannot be read are skipped. At most one
// candidate is produced per path; when several rules match the same path the
// highest confidence wins and the rule notes are combined.
func (s *Scanner) Scan(ctx context.Context, unit backend.PackageUnit) ([]Candidate, error) {
	names := candidateNames(unit)
	if len(names) == 0 {
		return nil, nil
	}

	byPath := make(map[string]int)
	var out []Candidate

	for _, rule := range s.rules {
		root := filepath.Clean(rule.Root)
		entries, err := os.ReadDir(root)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if err := ctx.Err(); err != nil {
				return out, err
			}
			if !matchesPattern(rule.Pattern, entry.Name()) {
				continue
			}
			confidence := matchConfidence(entry.Name(), names)
			if confidence == "" {
				continue
			}

			path := filepath.Join(root, entry.Name())
			if !withinRoot(path, root) {
				continue
			}

			if idx, ok := byPath[path]; ok {
				prev := &out[idx]
				if confidence.rank() > prev.Confidence.rank() {
					prev.Confidence = confidence
					prev.Kind = rule.Kind
				}
				prev.MatchedRule += "; " + rule.String()
				continue
			}

			cand := Candidate{
				Path:        path,
				Kind:        rule.Kind,
				Confidence:  confidence,
				MatchedRule: rule.String(),
			}

			info, err := os.Lstat(path)
			switch {
			case err != nil:
				continue
			case info.Mode()&fs.ModeSymlink != 0:
				cand.Symlink = true
				cand.SizeBytes = info.Size()
			case info.IsDir():
				size, err := directorySize(ctx, path)
				if err != nil {
					return out, err
				}
				cand.SizeBytes = size
			default:
				cand.SizeBytes = info.Size()
			}

			byPath[path] = len(out)
			out = append(out, cand)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func matchesPattern(pattern, name string) bool {
	if pattern == "" || pattern == "*" {
		return true
	}
	ok, err := filepath.Match(pattern, name)
	return err == nil && ok
}

// matchConfidence grades an entry name against the derived candidate names.
// An empty result means no match.
func matchConfidence(entry string, names []string) Confidence {
	lower := strings.ToLower(entry)
	for _, name := range names {
		if lower == name {
			return ConfidenceExact
		}
	}
	for _, name := range names {
		if containsSegment(lower, name) {
			return ConfidencePattern
		}
	}
	return ""
}

// containsSegment reports whether name occurs in entry bounded on both sides
// by a non-alphanumeric character or the string edge. Incidental substring
// overlap ("app" inside "application-data") does not count.
func containsSegment(entry, name string) bool {
	for start := 0; ; {
		idx := strings.Index(entry[start:], name)
		if idx < 0 {
			return false
		}
		idx += start
		end := idx + len(name)
		beforeOK := idx == 0 || !isWordByte(entry[idx-1])
		afterOK := end == len(entry) || !isWordByte(entry[end])
		if beforeOK && afterOK {
			return true
		}
		start = idx + 1
	}
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}

var versionTokenPattern = regexp.MustCompile(`^v?[0-9]+([.-][0-9]+)*$`)

var archTokens = map[string]struct{}{
	"x86_64": {}, "x86-64": {}, "amd64": {}, "i386": {}, "i686": {},
	"arm64": {}, "aarch64": {}, "armhf": {},
}

// candidateNames derives the names a unit's leftovers may appear under:
// lowercase, spaces and underscores folded to hyphens, AppImage suffix and
// version/arch tags stripped, plus the bare application segment for
// reverse-DNS Flatpak identifiers.
func candidateNames(unit backend.PackageUnit) []string {
	seen := make(map[string]struct{})
	var names []string
	add := func(raw string) {
		name := normalizeName(raw)
		if name == "" || name == "." || name == ".." {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}

	add(unit.Identifier)
	add(unit.DisplayName)

	switch unit.Kind {
	case backend.KindFlatpak:
		if idx := strings.LastIndex(unit.Identifier, "."); idx >= 0 {
			add(unit.Identifier[idx+1:])
		}
		// Flatpak app data also lives under the full reverse-DNS id.
		add(strings.ToLower(unit.Identifier))
	case backend.KindAppImage:
		add(stripAppImageTags(unit.Identifier))
	}

	return names
}

func normalizeName(raw string) string {
	name := strings.ToLower(strings.TrimSpace(raw))
	name = strings.ReplaceAll(name, " ", "-")
	name = strings.ReplaceAll(name, "_", "-")
	return strings.Trim(name, "-")
}

// stripAppImageTags reduces an AppImage file name to its application name:
// "App_Name-1.2.3-x86_64.AppImage" yields "app-name".
func stripAppImageTags(identifier string) string {
	name := strings.ToLower(filepath.Base(identifier))
	name = strings.TrimSuffix(name, ".appimage")

	tokens := strings.FieldsFunc(name, func(r rune) bool { return r == '-' || r == '_' || r == ' ' })
	end := len(tokens)
	for end > 1 {
		tok := tokens[end-1]
		if _, arch := archTokens[tok]; arch || versionTokenPattern.MatchString(tok) {
			end--
			continue
		}
		break
	}
	return strings.Join(tokens[:end], "-")
}

// directorySize aggregates file sizes under dir. Symlinks are counted by
// their own size and never followed; unreadable entries are skipped.
func directorySize(ctx context.Context, dir string) (int64, error) {
	var total int64
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		total += info.Size()
		return nil
	})
	if err != nil {
		return total, err
	}
	return total, nil
}
