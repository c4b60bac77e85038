package buckets

import (
	perr "snapdiff/internal/platform/errors"
	"snapdiff/internal/platform/fsx"
	"snapdiff/internal/platform/logger"
)

// SerializedName is the concatenated diff file written next to the
// bucket directory
const SerializedName = "serialized_diff"

// Serializer concatenates bucket files into a single ordered diff
type Serializer struct {
	fs  fsx.FS
	run logger.Logger
}

// NewSerializer builds a serializer writing through fsys
func NewSerializer(fsys fsx.FS, run logger.Logger) *Serializer {
	return &Serializer{fs: fsys, run: run}
}

// Serialize writes resultDir/serialized_diff by draining set in ascending
// level order. Shallower levels always land before deeper ones, and the
// bucket files themselves stay on disk.
func (s *Serializer) Serialize(set *Set, resultDir string) error {
	name := s.fs.Join(resultDir, SerializedName)
	out, err := s.fs.Create(name)
	if err != nil {
		s.run.Error().Err(err).Msg("Could not open file: " + name)
		return perr.FromFSf(err, "create serialized diff: %s", name)
	}

	s.run.Info().Msg("Writing to serialized diff file: " + name)

	for _, level := range set.Levels() {
		if err := set.DrainInto(level, out); err != nil {
			_ = out.Close()
			return err
		}
	}
	if err := out.Close(); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeIO, "close serialized diff: %s", name)
	}
	return nil
}
