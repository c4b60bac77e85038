// Package jsonout classifies serialized diff records and exports them as
// batched json files for downstream indexing
package jsonout

import (
	"bufio"
	"context"
	"encoding/json"
	"strconv"
	"strings"

	perr "snapdiff/internal/platform/errors"
	"snapdiff/internal/platform/fsx"
	"snapdiff/internal/platform/logger"
)

const (
	// DefaultBatchSize caps records per json file so no single file
	// grows unwieldy
	DefaultBatchSize = 1000

	maxScanTokenSize = 32 * 1024 * 1024
)

// Emitter turns the serialized diff into classified, stat-enriched json
type Emitter struct {
	fs    fsx.FS
	st    Stater
	run   logger.Logger
	batch int
}

// NewEmitter builds an emitter; batch <= 0 selects DefaultBatchSize
func NewEmitter(fsys fsx.FS, st Stater, run logger.Logger, batch int) *Emitter {
	if batch <= 0 {
		batch = DefaultBatchSize
	}
	return &Emitter{fs: fsys, st: st, run: run, batch: batch}
}

// Emit reads the serialized diff and writes jsonDir/<n>.json batches in
// stream order. Classification never reorders records; a file is written
// only when its batch holds at least one record.
func (e *Emitter) Emit(ctx context.Context, serialName, jsonDir string) error {
	f, err := e.fs.Open(serialName)
	if err != nil {
		e.run.Error().Err(err).Msg("Could not open file: " + serialName)
		return perr.FromFSf(err, "open serialized diff: %s", serialName)
	}
	defer func() { _ = f.Close() }()

	e.run.Info().Msg("JSONizing diffs from: " + serialName)

	sc := bufio.NewScanner(f)
	buf := make([]byte, 512*1024)
	sc.Buffer(buf, maxScanTokenSize)

	items := make([]any, 0, e.batch)
	fileCount := 0

	for sc.Scan() {
		toks := strings.Fields(sc.Text())
		if len(toks) < 2 {
			if len(toks) == 1 {
				e.run.Error().Msg("Malformed serialized record: " + sc.Text())
			}
			continue
		}
		item, ok := e.classify(toks)
		if !ok {
			continue
		}
		items = append(items, item)

		if len(items) == e.batch {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := e.writeBatch(jsonDir, fileCount, items); err != nil {
				return err
			}
			fileCount++
			items = items[:0]
		}
	}
	if err := sc.Err(); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeIO, "read serialized diff: %s", serialName)
	}
	if len(items) > 0 {
		return e.writeBatch(jsonDir, fileCount, items)
	}
	return nil
}

// classify maps one record onto its export shape. Records with an
// unfamiliar entry type pass through without a shape, and records too
// short for their operation are dropped with a log line.
func (e *Emitter) classify(toks []string) (any, bool) {
	op, path := toks[0], toks[1]
	entry, opType, found := strings.Cut(op, "_")
	if !found {
		opType = op
	}

	switch entry {
	case "FILE", "DIR":
		objectType := "file"
		if entry == "DIR" {
			objectType = "dir"
		}
		switch opType {
		case "DELETE":
			return deleteChange{Type: "delete", ObjectType: objectType, Path: path}, true
		case "RENAME":
			if len(toks) < 3 {
				e.run.Error().Msg("Malformed rename record for path: " + path)
				return nil, false
			}
			return renameChange{Type: "rename", PathOld: path, PathNew: toks[2]}, true
		default:
			c := entryChange{
				Type:     objectType,
				Created:  strings.ContainsRune(opType, 'C'),
				Modified: strings.ContainsRune(opType, 'M'),
				Stat:     strings.ContainsRune(opType, 'S'),
				Xattr:    strings.ContainsRune(opType, 'X'),
			}
			e.enrich(&c.statFields, path)
			return c, true
		}

	case "SYM":
		if opType == "DELETE" {
			return deleteChange{Type: "delete", ObjectType: "symlink", Path: path}, true
		}
		c := symlinkChange{
			Type:    "symlink",
			Created: strings.ContainsRune(opType, 'C'),
			Stat:    strings.ContainsRune(opType, 'S'),
		}
		if c.Created {
			if len(toks) < 3 {
				e.run.Error().Msg("Malformed symlink record for path: " + path)
				return nil, false
			}
			c.Target = toks[2]
		}
		e.enrich(&c.statFields, path)
		return c, true
	}

	return nil, false
}

// enrich attaches the stat group when the entry can still be resolved.
// A failed stat leaves the record classification-only.
func (e *Emitter) enrich(s *statFields, path string) {
	md, err := e.st.Stat(path)
	if err != nil {
		e.run.Error().Err(err).Msg("Could not stat file: " + path)
		return
	}
	s.fill(md, path)
}

func (e *Emitter) writeBatch(jsonDir string, n int, items []any) error {
	name := e.fs.Join(jsonDir, strconv.Itoa(n)+".json")
	f, err := e.fs.Create(name)
	if err != nil {
		e.run.Error().Err(err).Msg("Could not open file: " + name)
		return perr.FromFSf(err, "create json batch: %s", name)
	}

	e.run.Info().Msg("Writing to json file: " + name)

	enc := json.NewEncoder(f)
	if err := enc.Encode(items); err != nil {
		_ = f.Close()
		return perr.Wrapf(err, perr.ErrorCodeIO, "encode json batch: %s", name)
	}
	if err := f.Close(); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeIO, "close json batch: %s", name)
	}
	return nil
}
