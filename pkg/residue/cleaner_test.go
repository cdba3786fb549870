package residue

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"uproot/internal/executor"
	"uproot/pkg/backend"
)

func newTestCleaner(t *testing.T, roots ...string) *Cleaner {
	t.Helper()
	rules := make([]Rule, len(roots))
	for i, root := range roots {
		rules[i] = Rule{Root: root, Kind: KindData}
	}
	return NewCleaner(executor.New(false, false), rules)
}

func record(c *Cleaner, paths ...string) {
	candidates := make([]Candidate, len(paths))
	for i, p := range paths {
		candidates[i] = Candidate{Path: p}
	}
	c.Record(candidates)
}

func TestCleanDeletesRecordedPaths(t *testing.T) {
	root := t.TempDir()
	dir := mkdir(t, root, "foo")
	mkfile(t, filepath.Join(dir, "keepsake"), 10)
	file := filepath.Join(root, "foo.log")
	mkfile(t, file, 10)

	c := newTestCleaner(t, root)
	record(c, dir, file)

	results := c.Clean(context.Background(), []string{dir, file})
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, r := range results {
		if !r.Succeeded {
			t.Errorf("%s: expected success, got %v", r.Path, r.Err)
		}
	}
	if _, err := os.Lstat(dir); !os.IsNotExist(err) {
		t.Error("directory was not deleted")
	}
	if _, err := os.Lstat(file); !os.IsNotExist(err) {
		t.Error("file was not deleted")
	}
}

func TestCleanRefusesUnrecordedPath(t *testing.T) {
	root := t.TempDir()
	victim := filepath.Join(root, "innocent")
	mkfile(t, victim, 10)

	c := newTestCleaner(t, root)
	// Nothing recorded: the path came from somewhere else.

	results := c.Clean(context.Background(), []string{victim})
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Succeeded {
		t.Fatal("unrecorded path must never be deleted")
	}
	if results[0].Err == nil {
		t.Fatal("expected an error for the unrecorded path")
	}
	if _, err := os.Lstat(victim); err != nil {
		t.Error("the file must survive a refused clean")
	}
}

func TestCleanRefusesPathOutsideRoots(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	victim := filepath.Join(outside, "foo")
	mkfile(t, victim, 10)

	c := newTestCleaner(t, root)
	record(c, victim)

	results := c.Clean(context.Background(), []string{victim})
	if results[0].Succeeded {
		t.Fatal("path outside the scan roots must never be deleted")
	}
	if _, err := os.Lstat(victim); err != nil {
		t.Error("the file must survive a refused clean")
	}
}

func TestCleanRefusesRootItself(t *testing.T) {
	root := t.TempDir()

	c := newTestCleaner(t, root)
	record(c, root)

	results := c.Clean(context.Background(), []string{root})
	if results[0].Succeeded {
		t.Fatal("a configured root must never be a deletion target")
	}
	if _, err := os.Lstat(root); err != nil {
		t.Error("the root must survive")
	}
}

func TestCleanRefusesNestedRoot(t *testing.T) {
	outer := t.TempDir()
	inner := mkdir(t, outer, "inner")
	child := filepath.Join(inner, "leftover")
	mkfile(t, child, 10)

	// The inner root lies within the outer one, so it passes the
	// containment check against outer. It is still a configured root and
	// must never be deleted.
	c := newTestCleaner(t, outer, inner)
	record(c, inner, child)

	results := c.Clean(context.Background(), []string{inner, child})
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Succeeded {
		t.Fatal("a nested root must never be a deletion target")
	}
	if _, err := os.Lstat(inner); err != nil {
		t.Error("the nested root must survive")
	}
	if !results[1].Succeeded {
		t.Errorf("a child of the nested root should still be deletable, got %v", results[1].Err)
	}
	if _, err := os.Lstat(child); !os.IsNotExist(err) {
		t.Error("the child was not deleted")
	}
}

func TestCleanVanishedPathDoesNotBlockOthers(t *testing.T) {
	root := t.TempDir()
	gone := filepath.Join(root, "gone")
	alive := filepath.Join(root, "alive")
	mkfile(t, alive, 10)

	c := newTestCleaner(t, root)
	record(c, gone, alive)

	results := c.Clean(context.Background(), []string{gone, alive})
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Succeeded {
		t.Error("vanished path should be reported as failed")
	}
	if results[0].Err == nil || backend.AsError(results[0].Err).Kind != backend.ErrFilesystem {
		t.Errorf("vanished path: expected filesystem error, got %v", results[0].Err)
	}
	if !results[1].Succeeded {
		t.Errorf("alive path should still be deleted, got %v", results[1].Err)
	}
}

func TestCleanCancellationMarksRemaining(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "a")
	b := filepath.Join(root, "b")
	mkfile(t, a, 10)
	mkfile(t, b, 10)

	c := newTestCleaner(t, root)
	record(c, a, b)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := c.Clean(ctx, []string{a, b})
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, r := range results {
		if !r.Cancelled {
			t.Errorf("%s: expected cancelled", r.Path)
		}
		if r.Succeeded {
			t.Errorf("%s: nothing should be deleted after cancellation", r.Path)
		}
	}
	if _, err := os.Lstat(a); err != nil {
		t.Error("file a must survive cancellation")
	}
}

func TestCleanUncleanedSibling(t *testing.T) {
	root := t.TempDir()
	scanned := filepath.Join(root, "foo")
	sibling := filepath.Join(root, "bar")
	mkfile(t, scanned, 10)
	mkfile(t, sibling, 10)

	c := newTestCleaner(t, root)
	record(c, scanned)

	c.Clean(context.Background(), []string{scanned})
	if _, err := os.Lstat(sibling); err != nil {
		t.Error("paths not passed to Clean must be untouched")
	}
}
