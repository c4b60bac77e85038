package errors

// Filesystem-specific helpers for mapping fs errors to project ErrorCode and retry semantics

import (
	"context"
	stderrs "errors"
	"fmt"
	"io/fs"
	"syscall"
)

// ExtractPathError returns (*fs.PathError, true) if the root cause is a PathError.
func ExtractPathError(err error) (*fs.PathError, bool) {
	var pathErr *fs.PathError
	if stderrs.As(Root(err), &pathErr) {
		return pathErr, true
	}
	return nil, false
}

// Human-friendly predicates for common filesystem error classes.

// IsNotExist reports whether the error is a missing file or directory
func IsNotExist(err error) bool { return stderrs.Is(err, fs.ErrNotExist) }

// IsPermission reports whether the error is a permission failure
func IsPermission(err error) bool { return stderrs.Is(err, fs.ErrPermission) }

// IsClosed reports whether the error is a use-after-close failure
func IsClosed(err error) bool { return stderrs.Is(err, fs.ErrClosed) }

// FSErrorCode maps a filesystem error to an ErrorCode with an ok flag
// !ok means err wasn't a PathError; caller may fall back to generic handling
func FSErrorCode(err error) (ErrorCode, bool) {
	pathErr, ok := ExtractPathError(err)
	if !ok {
		return ErrorCodeUnknown, false
	}

	switch {
	case stderrs.Is(pathErr, fs.ErrNotExist):
		return ErrorCodeNotFound, true

	case stderrs.Is(pathErr, fs.ErrPermission), stderrs.Is(pathErr, fs.ErrClosed):
		return ErrorCodeIO, true
	}

	// Default: still an I/O error
	return ErrorCodeIO, true
}

// FromFS wraps a filesystem error with a mapped ErrorCode and message.
// If err is nil, returns nil
func FromFS(err error, msg string) error {
	if err == nil {
		return nil
	}
	if code, ok := FSErrorCode(err); ok {
		return Wrap(err, code, msg)
	}
	return Wrap(err, ErrorCodeIO, msg)
}

// FromFSf is the formatted variant of FromFS
func FromFSf(err error, format string, a ...any) error {
	if err == nil {
		return nil
	}
	if code, ok := FSErrorCode(err); ok {
		return Wrap(err, code, fmt.Sprintf(format, a...))
	}
	return Wrap(err, ErrorCodeIO, fmt.Sprintf(format, a...))
}

// IsRetryable reports whether a filesystem error represents a transient condition
// worth retrying. A missing page counts: the external diff facility materializes
// pages lazily, so "no such entry" on open means "not yet", not "never"
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	// Do not retry local cancellations/timeouts; let the caller decide higher-level retries
	if stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) {
		return false
	}

	if IsCode(err, ErrorCodeUnavailable) {
		return true
	}

	if stderrs.Is(err, fs.ErrNotExist) {
		return true
	}

	// Transient errno classes surfaced by reads against a stream the
	// producer is still filling
	var errno syscall.Errno
	if stderrs.As(Root(err), &errno) {
		switch errno {
		case syscall.EINTR, syscall.EAGAIN, syscall.EBUSY:
			return true
		default:
			return false
		}
	}

	return false
}
