package buckets

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	perr "snapdiff/internal/platform/errors"
	"snapdiff/internal/platform/fsx"
	"snapdiff/internal/platform/logger"
	kit "snapdiff/internal/platform/testkit"
)

type fixture struct {
	rawDir    string
	bucketDir string
	resultDir string
	set       *Set
	bk        *Bucketizer
	sr        *Serializer
	log       *bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	var buf bytes.Buffer
	run := logger.NewRunLog(&buf)
	osfs := fsx.NewOS()

	resultDir := t.TempDir()
	bucketDir := filepath.Join(resultDir, "parallel_diff")
	if err := os.Mkdir(bucketDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	return &fixture{
		rawDir:    t.TempDir(),
		bucketDir: bucketDir,
		resultDir: resultDir,
		set:       NewSet(osfs, bucketDir, run),
		bk:        NewBucketizer(osfs, run),
		sr:        NewSerializer(osfs, run),
		log:       &buf,
	}
}

func TestBucketizeRoutesByShiftedLevel(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	kit.WriteFile(t, f.rawDir, "0", "-513 a FILE_CREATE x.txt\n0 b DIR_CREATE d\n-513 1 EOB -513\n")
	kit.WriteFile(t, f.rawDir, "1", "512 c FILE_DELETE y.txt\n-513 d FILE_CREATE z.txt\n0 0 EOF\n")

	if err := f.bk.Bucketize(context.Background(), f.rawDir, 2, f.set); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() { _ = f.set.CloseAll() }()

	levels := f.set.Levels()
	if len(levels) != 3 || levels[0] != 0 || levels[1] != 513 || levels[2] != 1025 {
		t.Fatalf("levels = %v, want [0 513 1025]", levels)
	}

	// object ids are stripped and page order is preserved inside a bucket
	if err := f.set.CloseAll(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if got := kit.ReadFile(t, filepath.Join(f.bucketDir, "0")); got != "FILE_CREATE\tx.txt\nFILE_CREATE\tz.txt\n" {
		t.Fatalf("bucket 0 = %q", got)
	}
	if got := kit.ReadFile(t, filepath.Join(f.bucketDir, "513")); got != "DIR_CREATE\td\n" {
		t.Fatalf("bucket 513 = %q", got)
	}
	if got := kit.ReadFile(t, filepath.Join(f.bucketDir, "1025")); got != "FILE_DELETE\ty.txt\n" {
		t.Fatalf("bucket 1025 = %q", got)
	}
}

func TestBucketizeNormalizesFieldSeparators(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	kit.WriteFile(t, f.rawDir, "0", "0 9 FILE_RENAME\ta/old.txt   a/new.txt\n0 0 EOF\n")

	if err := f.bk.Bucketize(context.Background(), f.rawDir, 1, f.set); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.set.CloseAll(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if got := kit.ReadFile(t, filepath.Join(f.bucketDir, "513")); got != "FILE_RENAME\ta/old.txt\ta/new.txt\n" {
		t.Fatalf("bucket 513 = %q", got)
	}
}

func TestBucketizeStopsAtMarker(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	kit.WriteFile(t, f.rawDir, "0", "0 1 FILE_CREATE a\n0 0 EOF\n7 7 NEVER_ROUTED\n")

	if err := f.bk.Bucketize(context.Background(), f.rawDir, 1, f.set); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() { _ = f.set.CloseAll() }()

	levels := f.set.Levels()
	if len(levels) != 1 || levels[0] != 513 {
		t.Fatalf("levels = %v, want [513]", levels)
	}
}

func TestBucketizeMarkerLineOpensNoBucket(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	kit.WriteFile(t, f.rawDir, "0", "-513 1 EOB -513\n")

	if err := f.bk.Bucketize(context.Background(), f.rawDir, 1, f.set); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if levels := f.set.Levels(); len(levels) != 0 {
		t.Fatalf("levels = %v, want none", levels)
	}
	if names := kit.ListNames(t, f.bucketDir); len(names) != 0 {
		t.Fatalf("bucket files = %v, want none", names)
	}
}

func TestBucketizeMissingMarkerIsLenient(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	kit.WriteFile(t, f.rawDir, "0", "0 1 FILE_CREATE a\n")
	kit.WriteFile(t, f.rawDir, "1", "5 2 DIR_CREATE d\n0 0 EOF\n")

	if err := f.bk.Bucketize(context.Background(), f.rawDir, 2, f.set); err != nil {
		t.Fatalf("expected lenient handling, got %v", err)
	}
	defer func() { _ = f.set.CloseAll() }()

	// both pages routed despite the first missing its marker
	levels := f.set.Levels()
	if len(levels) != 2 || levels[0] != 513 || levels[1] != 518 {
		t.Fatalf("levels = %v, want [513 518]", levels)
	}
	kit.MustContain(t, f.log.String(), "Missing page marker in raw chunk")
}

func TestBucketizeMalformedLevelIsFatal(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	kit.WriteFile(t, f.rawDir, "0", "xyz 1 FILE_CREATE a\n0 0 EOF\n")

	err := f.bk.Bucketize(context.Background(), f.rawDir, 1, f.set)
	if !perr.IsCode(err, perr.ErrorCodeParse) {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestBucketizeMissingRawFileIsFatal(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	kit.WriteFile(t, f.rawDir, "0", "0 1 FILE_CREATE a\n0 0 EOF\n")

	err := f.bk.Bucketize(context.Background(), f.rawDir, 2, f.set)
	if !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
	kit.MustContain(t, f.log.String(), "Could not open file: ")
}

func TestSerializeAscendingNumericOrder(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	// lexicographic ordering would put 10 before 2
	if err := f.set.Append(10, "ten\n"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := f.set.Append(2, "two\n"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := f.set.Append(513, "five-thirteen\n"); err != nil {
		t.Fatalf("append: %v", err)
	}

	if err := f.sr.Serialize(f.set, f.resultDir); err != nil {
		t.Fatalf("serialize: %v", err)
	}

	got := kit.ReadFile(t, filepath.Join(f.resultDir, SerializedName))
	if got != "two\nten\nfive-thirteen\n" {
		t.Fatalf("serialized = %q", got)
	}

	// the set is drained but the bucket files survive
	if levels := f.set.Levels(); len(levels) != 0 {
		t.Fatalf("levels after serialize = %v, want none", levels)
	}
	names := kit.ListNames(t, f.bucketDir)
	if len(names) != 3 {
		t.Fatalf("bucket files after serialize = %v, want 3", names)
	}
}

func TestSerializeEmptySet(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	if err := f.sr.Serialize(f.set, f.resultDir); err != nil {
		t.Fatalf("serialize: %v", err)
	}
	if got := kit.ReadFile(t, filepath.Join(f.resultDir, SerializedName)); got != "" {
		t.Fatalf("serialized = %q, want empty", got)
	}
}

func TestSetCloseAllIdempotent(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	if err := f.set.Append(0, "a\n"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := f.set.CloseAll(); err != nil {
		t.Fatalf("close all: %v", err)
	}
	if err := f.set.CloseAll(); err != nil {
		t.Fatalf("second close all: %v", err)
	}
	if err := f.set.DrainInto(0, &bytes.Buffer{}); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("expected not-found after close, got %v", err)
	}
}
