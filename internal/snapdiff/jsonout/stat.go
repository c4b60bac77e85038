package jsonout

import "snapdiff/internal/platform/fsx"

// Stater resolves change paths to metadata from the snapshotted tree
type Stater interface {
	Stat(path string) (fsx.Metadata, error)
}

// TreeStater stats change paths against the filesystem the snapshot
// container lives in, two levels above the container itself
type TreeStater struct {
	fs   fsx.FS
	root string
}

// NewTreeStater derives the tree root from the snapshot container path
func NewTreeStater(fsys fsx.FS, snapDir string) *TreeStater {
	// the parent hops stay literal so the kernel resolves them through
	// the mounted snapshot rather than a lexically cleaned path
	return &TreeStater{fs: fsys, root: snapDir + "/../.."}
}

// Stat looks up one change path without following symlinks
func (t *TreeStater) Stat(path string) (fsx.Metadata, error) {
	return t.fs.Lstat(t.root + "/" + path)
}
