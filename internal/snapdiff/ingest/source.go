package ingest

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"

	perr "snapdiff/internal/platform/errors"
)

// PageSource opens snapshot diff pages materialized under the snapshot
// container by the external diff facility
type PageSource struct {
	SnapDir string
	Snap1   string
	Snap2   string
}

// Open returns the page addressed by cookie. Not-found maps to a transient
// error so the drain loop can wait for the page to materialize
func (s *PageSource) Open(ctx context.Context, cookie string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := s.Addr(cookie)
	f, err := os.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "snapshot diff not materialized: %s", name)
		}
		return nil, perr.FromFSf(err, "open snapshot diff: %s", name)
	}
	return f, nil
}
