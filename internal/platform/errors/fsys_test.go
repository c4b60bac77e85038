package errors

import (
	"context"
	stderrs "errors"
	"io/fs"
	"syscall"
	"testing"
)

func pathErr(op, path string, cause error) *fs.PathError {
	return &fs.PathError{Op: op, Path: path, Err: cause}
}

func TestFSErrorCodeMappings(t *testing.T) {
	cases := []struct {
		cause error
		want  ErrorCode
	}{
		{fs.ErrNotExist, ErrorCodeNotFound},
		{fs.ErrPermission, ErrorCodeIO},
		{fs.ErrClosed, ErrorCodeIO},
		{stderrs.New("short write"), ErrorCodeIO}, // default branch
	}
	for _, c := range cases {
		got, ok := FSErrorCode(pathErr("open", "/tmp/x", c.cause))
		if !ok {
			t.Fatalf("expected ok for PathError cause %v", c.cause)
		}
		if got != c.want {
			t.Fatalf("FSErrorCode(%v) = %v, want %v", c.cause, got, c.want)
		}
	}

	// Non-path error path
	if _, ok := FSErrorCode(stderrs.New("nope")); ok {
		t.Fatalf("FSErrorCode should return ok=false for non-path error")
	}

	// Wrapped PathError still maps
	wrapped := Wrap(pathErr("open", "raw/0", fs.ErrNotExist), ErrorCodeUnknown, "outer")
	if got, ok := FSErrorCode(wrapped); !ok || got != ErrorCodeNotFound {
		t.Fatalf("FSErrorCode(wrapped) = %v ok=%v", got, ok)
	}
}

func TestFromFSVariants(t *testing.T) {
	// nil passthrough
	if FromFS(nil, "x") != nil {
		t.Fatalf("FromFS(nil) should be nil")
	}
	if FromFSf(nil, "x %d", 1) != nil {
		t.Fatalf("FromFSf(nil) should be nil")
	}

	err := FromFS(pathErr("open", "serialized_diff", fs.ErrNotExist), "open serialized diff")
	if CodeOf(err) != ErrorCodeNotFound {
		t.Fatalf("FromFS map code = %v", CodeOf(err))
	}
	errf := FromFSf(pathErr("write", "parallel_diff/0", fs.ErrPermission), "bucket %d", 0)
	if CodeOf(errf) != ErrorCodeIO {
		t.Fatalf("FromFSf code = %v, want %v", CodeOf(errf), ErrorCodeIO)
	}

	// Foreign (non-path) error falls back to IO
	if CodeOf(FromFS(stderrs.New("hm"), "x")) != ErrorCodeIO {
		t.Fatalf("FromFS fallback code mismatch")
	}
}

func TestPredicates(t *testing.T) {
	if !IsNotExist(pathErr("open", "x", fs.ErrNotExist)) || IsNotExist(stderrs.New("x")) {
		t.Fatalf("IsNotExist mismatch")
	}
	if !IsPermission(pathErr("open", "x", fs.ErrPermission)) {
		t.Fatalf("IsPermission mismatch")
	}
	if !IsClosed(pathErr("read", "x", fs.ErrClosed)) {
		t.Fatalf("IsClosed mismatch")
	}
	if pe, ok := ExtractPathError(Wrap(pathErr("open", "raw/3", fs.ErrNotExist), ErrorCodeIO, "w")); !ok || pe.Path != "raw/3" {
		t.Fatalf("ExtractPathError through wrap failed")
	}
}

func TestIsRetryable(t *testing.T) {
	// missing page -> retryable
	if !IsRetryable(pathErr("open", "snap1^snap2^0", fs.ErrNotExist)) {
		t.Fatalf("missing page should be retryable")
	}
	// explicit unavailable code -> retryable
	if !IsRetryable(Unavailablef("page not materialized")) {
		t.Fatalf("unavailable should be retryable")
	}
	// transient errnos -> retryable
	for _, errno := range []syscall.Errno{syscall.EINTR, syscall.EAGAIN, syscall.EBUSY} {
		if !IsRetryable(pathErr("read", "x", errno)) {
			t.Fatalf("errno %v should be retryable", errno)
		}
	}
	// hard failures -> not retryable
	if IsRetryable(pathErr("open", "x", fs.ErrPermission)) {
		t.Fatalf("permission should not be retryable")
	}
	if IsRetryable(pathErr("read", "x", syscall.EIO)) {
		t.Fatalf("EIO should not be retryable")
	}
	// local cancellation -> never retry
	if IsRetryable(context.Canceled) || IsRetryable(context.DeadlineExceeded) {
		t.Fatalf("cancellation should not be retryable")
	}
	if IsRetryable(nil) {
		t.Fatalf("nil should not be retryable")
	}
}
