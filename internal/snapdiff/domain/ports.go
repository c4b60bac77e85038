package domain

import (
	"context"
	"io"
)

// Source is the paged diff stream, opened one continuation cookie at a time
type Source interface {
	// Addr renders the address a cookie resolves to, for logs and errors
	Addr(cookie string) string

	// Open returns the page addressed by cookie for reading
	Open(ctx context.Context, cookie string) (io.ReadCloser, error)
}
