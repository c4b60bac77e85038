package buckets

import (
	"bufio"
	"context"
	"strconv"
	"strings"

	perr "snapdiff/internal/platform/errors"
	"snapdiff/internal/platform/fsx"
	"snapdiff/internal/platform/logger"
	"snapdiff/internal/snapdiff/domain"
)

const maxScanTokenSize = 32 * 1024 * 1024

// Bucketizer routes raw page records into per-level bucket files
type Bucketizer struct {
	fs  fsx.FS
	run logger.Logger
}

// NewBucketizer builds a bucketizer reading raw pages through fsys
func NewBucketizer(fsys fsx.FS, run logger.Logger) *Bucketizer {
	return &Bucketizer{fs: fsys, run: run}
}

// Bucketize walks raw pages 0..pages-1 under rawDir and appends every
// record to its level bucket in set. Object ids are dropped on the way
// through; the payload fields are re-joined with tabs.
func (b *Bucketizer) Bucketize(ctx context.Context, rawDir string, pages int, set *Set) error {
	for n := 0; n < pages; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := b.bucketizeFile(b.fs.Join(rawDir, strconv.Itoa(n)), set); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bucketizer) bucketizeFile(name string, set *Set) error {
	f, err := b.fs.Open(name)
	if err != nil {
		b.run.Error().Err(err).Msg("Could not open file: " + name)
		return perr.FromFSf(err, "open raw chunk: %s", name)
	}
	defer func() { _ = f.Close() }()

	b.run.Info().Msg("Bucketizing diff from raw file: " + name)

	sc := bufio.NewScanner(f)
	buf := make([]byte, 512*1024)
	sc.Buffer(buf, maxScanTokenSize)

	sawMarker := false
	for sc.Scan() {
		ln, err := domain.ParseLine(sc.Text())
		if err != nil {
			b.run.Error().Err(err).Msg("Malformed record in raw chunk: " + name)
			return perr.Wrapf(err, perr.ErrorCodeParse, "raw chunk: %s", name)
		}
		if ln.Marker != domain.MarkerNone {
			// data past the page marker never reaches a bucket
			sawMarker = true
			break
		}
		rec := ln.Record
		if err := set.Append(rec.BucketLevel(), strings.Join(rec.Payload, "\t")+"\n"); err != nil {
			return err
		}
	}

	// both tails are tolerated: the records already routed stay routed
	if err := sc.Err(); err != nil {
		b.run.Error().Err(err).Msg("Error reading file: " + name)
		return nil
	}
	if !sawMarker {
		b.run.Error().Msg("Missing page marker in raw chunk: " + name)
	}
	return nil
}
