package ingest

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	perr "snapdiff/internal/platform/errors"
	"snapdiff/internal/platform/fsx"
	"snapdiff/internal/platform/logger"
	"snapdiff/internal/snapdiff/domain"
)

const (
	defaultRetries   = 10
	maxScanTokenSize = 32 * 1024 * 1024
)

// Config tunes the drain loop
type Config struct {
	Retries int           // attempts after the first; <0 -> default 10
	Delay   time.Duration // pause between open retries
}

// Reader drains a paged diff stream into numbered raw page files
type Reader struct {
	src     domain.Source
	fs      fsx.FS
	run     logger.Logger
	retries int
	delay   time.Duration
}

// NewReader builds a drain loop over src writing page copies through fsys
func NewReader(src domain.Source, fsys fsx.FS, run logger.Logger, cfg Config) *Reader {
	retries := cfg.Retries
	if retries < 0 {
		retries = defaultRetries
	}
	return &Reader{src: src, fs: fsys, run: run, retries: retries, delay: cfg.Delay}
}

// Drain walks the stream cookie by cookie until the final page marker,
// writing each page verbatim to rawDir/<n>. Returns the number of pages
// captured.
func (r *Reader) Drain(ctx context.Context, rawDir string) (int, error) {
	cookie := domain.StartCookie
	pages := 0
	readRetries := 0

	for {
		name := r.src.Addr(cookie)
		src, err := r.openWithRetry(ctx, cookie, name)
		if err != nil {
			return pages, err
		}

		localName := r.fs.Join(rawDir, strconv.Itoa(pages))
		local, err := r.fs.Create(localName)
		if err != nil {
			_ = src.Close()
			r.run.Error().Err(err).Msg("Could not open file: " + localName)
			return pages, perr.FromFSf(err, "create raw chunk: %s", localName)
		}

		r.run.Info().Msg("Saving raw chunk in file: " + localName)
		r.run.Info().Msg("Reading snapdiff: " + name)

		written, sum, copyErr := capturePage(local, src)
		if cerr := src.Close(); cerr != nil && copyErr == nil {
			copyErr = cerr
		}
		if copyErr != nil {
			// the page is re-fetched whole, so the truncated copy is
			// simply overwritten on the next pass
			if readRetries == r.retries {
				r.run.Error().Err(copyErr).Msg("Read snapdiff failed: exceeded maximum retries.")
				return pages, perr.Wrapf(copyErr, perr.ErrorCodeIO, "read snapshot diff: %s", name)
			}
			r.run.Error().Err(copyErr).Msgf("Reading snapdiff stream returned bad: %s, reopening and retrying...(%d)", name, readRetries)
			readRetries++
			continue
		}

		scan, err := r.scanPage(localName)
		if err != nil {
			r.run.Error().Err(err).Msg("Error reading file: " + localName)
			return pages, err
		}

		r.run.Info().
			Int64("bytes", written).
			Str("xxh64", fmt.Sprintf("%016x", sum)).
			Msg("Captured raw chunk: " + localName)

		if scan.marker == domain.MarkerNone {
			r.run.Error().Msg("Missing page marker in raw chunk: " + localName)
			return pages, perr.Framingf("missing page marker in raw chunk: %s", localName)
		}

		pages++
		if scan.marker == domain.MarkerEOF {
			return pages, nil
		}
		if scan.lastData != "" {
			cookie = scan.lastData
		}
		if scan.next != "" {
			cookie = scan.next
		}
	}
}

// openWithRetry announces the page once, then retries the open while the
// page is still materializing. Miss logs carry the zero-based attempt.
func (r *Reader) openWithRetry(ctx context.Context, cookie, name string) (io.ReadCloser, error) {
	r.run.Info().Msg("Opening snapdiff stream: " + name)

	var last error
	for attempt := 0; ; attempt++ {
		src, err := r.src.Open(ctx, cookie)
		if err == nil {
			return src, nil
		}
		last = err
		r.run.Error().Err(err).Msgf("Snapshot diff not opened: %s, retrying...(%d)", name, attempt)
		if !perr.IsRetryable(err) || attempt == r.retries {
			break
		}
		if err := sleepCtx(ctx, r.delay); err != nil {
			return nil, err
		}
	}
	r.run.Error().Err(last).Msg("Could not open snapshot diff: " + name)
	return nil, last
}

// capturePage copies one page verbatim, closing dst, and returns the bytes
// written and the page checksum
func capturePage(dst io.WriteCloser, src io.Reader) (int64, uint64, error) {
	h := xxhash.New()
	n, err := io.Copy(io.MultiWriter(dst, h), src)
	if cerr := dst.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return n, 0, err
	}
	return n, h.Sum64(), nil
}

type pageScan struct {
	marker   domain.Marker
	next     string // cookie carried on the marker line, when present
	lastData string // object id of the last data line before the marker
}

// scanPage extracts the framing of a captured page from its local copy.
// The first marker stops the scan; later lines stay in the raw file but
// never steer the drain.
func (r *Reader) scanPage(name string) (pageScan, error) {
	f, err := r.fs.Open(name)
	if err != nil {
		return pageScan{}, perr.FromFSf(err, "open raw chunk: %s", name)
	}
	defer func() { _ = f.Close() }()

	sc := bufio.NewScanner(f)
	buf := make([]byte, 512*1024)
	sc.Buffer(buf, maxScanTokenSize)

	var scan pageScan
	for sc.Scan() {
		toks := strings.Fields(sc.Text())
		if m := domain.MarkerOf(toks); m != domain.MarkerNone {
			scan.marker = m
			if len(toks) > 3 {
				scan.next = toks[3]
			}
			break
		}
		if len(toks) > 1 {
			scan.lastData = toks[1]
		}
	}
	if err := sc.Err(); err != nil {
		return pageScan{}, perr.Wrapf(err, perr.ErrorCodeIO, "scan raw chunk: %s", name)
	}
	return scan, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
