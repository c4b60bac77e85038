package jsonout

import (
	"errors"
	"io/fs"
	"path/filepath"
	"testing"

	"snapdiff/internal/platform/fsx"
	kit "snapdiff/internal/platform/testkit"
)

func TestTreeStaterResolvesAboveSnapshotDir(t *testing.T) {
	t.Parallel()

	// change paths are relative to the grandparent of the snapshot dir
	root := t.TempDir()
	snapDir := filepath.Join(root, "shares", "vol1")
	kit.WriteFile(t, root, filepath.Join("shares", "vol1", ".marker"), "")
	kit.WriteFile(t, root, filepath.Join("home", "user", "notes.txt"), "0123456")

	st := NewTreeStater(fsx.NewOS(), snapDir)

	md, err := st.Stat("home/user/notes.txt")
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if md.Size != 7 {
		t.Fatalf("size = %d, want 7", md.Size)
	}
	if md.Mtime.Sec == 0 {
		t.Fatal("expected a populated mtime")
	}
}

func TestTreeStaterMissingEntry(t *testing.T) {
	t.Parallel()

	st := NewTreeStater(fsx.NewOS(), filepath.Join(t.TempDir(), "a", "b"))
	if _, err := st.Stat("nope.txt"); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected not-exist, got %v", err)
	}
}
