// Package service orchestrates the snapshot diff pipeline: invocation
// preconditions, the run log lifecycle, and the four stages in strict order,
// stopping at the first fatal failure
package service

import (
	"context"
	"runtime"
	"time"

	"github.com/google/uuid"

	perr "snapdiff/internal/platform/errors"
	"snapdiff/internal/platform/fsx"
	"snapdiff/internal/platform/logger"
	"snapdiff/internal/platform/validate"
	"snapdiff/internal/snapdiff/buckets"
	"snapdiff/internal/snapdiff/ingest"
	"snapdiff/internal/snapdiff/jsonout"
)

// Artifact names created under the result directory
const (
	LogName       = "out.log"
	RawDirName    = "raw"
	BucketDirName = "parallel_diff"
	JSONDirName   = "serialized_json"
)

// Params are the per-run invocation arguments
type Params struct {
	SnapDir   string `json:"snap_dir"   validate:"required"`
	Snap1     string `json:"snap1"      validate:"required"`
	Snap2     string `json:"snap2"      validate:"required"`
	ResultDir string `json:"result_dir" validate:"required"`
	JSON      bool   `json:"json"`
}

// Config holds the pipeline tunables
type Config struct {
	Retries    int           // open/read retry budget per the source contract; <0 -> 10
	RetryDelay time.Duration // pause between open attempts; 0 keeps the tight loop
	BatchSize  int           // records per json artifact; <=0 -> 1000
}

// Pipeline drives the snapshot diff stages against one result directory
type Pipeline struct {
	FS  fsx.FS
	Cfg Config
}

// New constructs the pipeline service
func New(fsys fsx.FS, cfg Config) *Pipeline {
	if fsys == nil {
		panic("service.Pipeline requires a non nil filesystem")
	}
	return &Pipeline{FS: fsys, Cfg: cfg}
}

// Run validates the invocation, prepares the result directory and executes
// ingest, bucketize, serialize and (optionally) json emission in order.
// Diagnostics for everything past the precondition checks go to out.log in
// the result directory; the process logger only carries run-level breadcrumbs.
func (p *Pipeline) Run(ctx context.Context, prm Params) error {
	if err := validate.Struct(prm); err != nil {
		return err
	}

	ctx = logger.WithRun(ctx, uuid.NewString())
	plog := logger.C(ctx)

	plog.Info().
		Str("snap_dir", prm.SnapDir).
		Str("snap1", prm.Snap1).
		Str("snap2", prm.Snap2).
		Str("result_dir", prm.ResultDir).
		Bool("json", prm.JSON).
		Msg("snapshot diff run starting")

	if !p.FS.IsDir(prm.ResultDir) {
		plog.Error().Msgf("Result directory %s is not a directory.", prm.ResultDir)
		return perr.Preconditionf("result directory %s is not a directory", prm.ResultDir)
	}

	empty, err := p.FS.IsDirEmpty(prm.ResultDir)
	if err != nil {
		return perr.FromFSf(err, "inspect result directory %s", prm.ResultDir)
	}
	if !empty {
		plog.Error().Msgf("Result directory %s is not empty.", prm.ResultDir)
		return perr.Preconditionf("result directory %s is not empty", prm.ResultDir)
	}

	logName := p.FS.Join(prm.ResultDir, LogName)
	logFile, err := p.FS.Create(logName)
	if err != nil {
		plog.Error().Err(err).Msg("Could not open log file: " + logName)
		return perr.FromFSf(err, "open log file %s", logName)
	}
	defer logFile.Close()

	run := logger.NewRunLog(logFile)

	// snapshots are exposed as alternate data streams on windows, so the
	// snapshot locator is a file there rather than a directory
	if runtime.GOOS != "windows" && !p.FS.IsDir(prm.SnapDir) {
		run.Error().Msg("Snapshot directory " + prm.SnapDir + " is not a directory.")
		return perr.Preconditionf("snapshot directory %s is not a directory", prm.SnapDir)
	}

	run.Info().Msg("Input parameters : ")
	run.Info().Msg("snapDir: " + prm.SnapDir)
	run.Info().Msg("snap1: " + prm.Snap1)
	run.Info().Msg("snap2: " + prm.Snap2)
	run.Info().Msg("resultDir: " + prm.ResultDir)

	rawDir := p.FS.Join(prm.ResultDir, RawDirName)
	if err := p.FS.MkDir(rawDir); err != nil {
		run.Error().Msg("Unable to create directory: " + rawDir)
		return perr.FromFSf(err, "create directory %s", rawDir)
	}

	run.Info().Msg("Reading raw diffs")
	pages, err := p.drain(ctx, prm, rawDir, run)
	if err != nil {
		run.Error().Msg("Issue in reading raw diff")
		return err
	}

	run.Info().Msg("Generating bucketized diffs")
	set, err := p.bucketize(ctx, rawDir, p.FS.Join(prm.ResultDir, BucketDirName), pages, run)
	if err != nil {
		run.Error().Msg("Issue in bucketizing diff")
		return err
	}
	defer set.CloseAll()

	run.Info().Msg("Generating serialized diffs")
	if err := buckets.NewSerializer(p.FS, run).Serialize(set, prm.ResultDir); err != nil {
		run.Error().Msg("Issue in serializing diff")
		return err
	}

	// the json directory is part of the result layout even when emission
	// is turned off
	jsonDir := p.FS.Join(prm.ResultDir, JSONDirName)
	if err := p.FS.MkDir(jsonDir); err != nil {
		run.Error().Msg("Unable to create directory: " + jsonDir)
		return perr.FromFSf(err, "create directory %s", jsonDir)
	}

	if prm.JSON {
		run.Info().Msg("Generating json file")
		if err := p.emit(ctx, prm, jsonDir, run); err != nil {
			run.Error().Msg("Issue in generalizing json")
			return err
		}
	}

	run.Info().Msg("Snapshot diff completed successfully")
	plog.Info().Int("pages", pages).Msg("snapshot diff run completed")
	return nil
}

func (p *Pipeline) drain(ctx context.Context, prm Params, rawDir string, run logger.Logger) (int, error) {
	src := &ingest.PageSource{SnapDir: prm.SnapDir, Snap1: prm.Snap1, Snap2: prm.Snap2}
	r := ingest.NewReader(src, p.FS, run, ingest.Config{
		Retries: p.Cfg.Retries,
		Delay:   p.Cfg.RetryDelay,
	})
	return r.Drain(ctx, rawDir)
}

func (p *Pipeline) bucketize(ctx context.Context, rawDir, bucketDir string, pages int, run logger.Logger) (*buckets.Set, error) {
	if err := p.FS.MkDir(bucketDir); err != nil {
		run.Error().Msg("Unable to create directory: " + bucketDir)
		return nil, perr.FromFSf(err, "create directory %s", bucketDir)
	}

	set := buckets.NewSet(p.FS, bucketDir, run)
	if err := buckets.NewBucketizer(p.FS, run).Bucketize(ctx, rawDir, pages, set); err != nil {
		set.CloseAll()
		return nil, err
	}
	return set, nil
}

func (p *Pipeline) emit(ctx context.Context, prm Params, jsonDir string, run logger.Logger) error {
	em := jsonout.NewEmitter(p.FS, jsonout.NewTreeStater(p.FS, prm.SnapDir), run, p.Cfg.BatchSize)
	return em.Emit(ctx, p.FS.Join(prm.ResultDir, buckets.SerializedName), jsonDir)
}
