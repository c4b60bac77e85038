// Package buckets routes change records into per-level bucket files and
// serializes them back out in ascending level order
package buckets

import (
	"io"
	"sort"
	"strconv"

	perr "snapdiff/internal/platform/errors"
	"snapdiff/internal/platform/fsx"
	"snapdiff/internal/platform/logger"
)

// Set owns the open bucket files for one run, keyed by shifted level.
// Files are created lazily on first append and named <dir>/<level>.
type Set struct {
	fs    fsx.FS
	dir   string
	run   logger.Logger
	files map[int]io.WriteCloser
}

// NewSet builds an empty bucket set rooted at dir, which must exist
func NewSet(fsys fsx.FS, dir string, run logger.Logger) *Set {
	return &Set{fs: fsys, dir: dir, run: run, files: make(map[int]io.WriteCloser)}
}

// Path names the bucket file for a shifted level
func (s *Set) Path(level int) string {
	return s.fs.Join(s.dir, strconv.Itoa(level))
}

// Append writes one record line to the bucket for level, creating the
// bucket file on first use
func (s *Set) Append(level int, line string) error {
	f, ok := s.files[level]
	if !ok {
		name := s.Path(level)
		created, err := s.fs.Create(name)
		if err != nil {
			s.run.Error().Err(err).Msg("Could not open file: " + name)
			return perr.FromFSf(err, "create bucket: %s", name)
		}
		s.run.Info().Msg("Writing to bucket file: " + name)
		s.files[level] = created
		f = created
	}
	if _, err := io.WriteString(f, line); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeIO, "append bucket %d", level)
	}
	return nil
}

// Levels returns the open bucket levels in ascending order
func (s *Set) Levels() []int {
	levels := make([]int, 0, len(s.files))
	for level := range s.files {
		levels = append(levels, level)
	}
	sort.Ints(levels)
	return levels
}

// DrainInto closes the bucket for level, copies its file into w, and
// releases it from the set. The bucket file stays on disk.
func (s *Set) DrainInto(level int, w io.Writer) error {
	f, ok := s.files[level]
	if !ok {
		return perr.NotFoundf("bucket %d not open", level)
	}
	if err := f.Close(); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeIO, "close bucket %d", level)
	}
	delete(s.files, level)

	name := s.Path(level)
	r, err := s.fs.Open(name)
	if err != nil {
		return perr.FromFSf(err, "reopen bucket: %s", name)
	}
	defer func() { _ = r.Close() }()

	if _, err := io.Copy(w, r); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeIO, "copy bucket %d", level)
	}
	return nil
}

// CloseAll releases any buckets still open. Serialization normally drains
// the set first, so this is the failure-path cleanup.
func (s *Set) CloseAll() error {
	var first error
	for level, f := range s.files {
		if err := f.Close(); err != nil && first == nil {
			first = err
		}
		delete(s.files, level)
	}
	return first
}
