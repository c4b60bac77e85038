// Package fsx abstracts the filesystem operations the pipeline performs
// so components stay portable across linux and windows targets.
package fsx

import (
	"errors"
	"io"
	"os"
	"path/filepath"
)

// TimeSpec is a split-resolution timestamp. Nsec is 0 on platforms whose
// stat call only resolves whole seconds.
type TimeSpec struct {
	Sec  int64
	Nsec int64
}

// Metadata carries the stat fields exported into enriched records.
type Metadata struct {
	Size  int64
	Atime TimeSpec
	Ctime TimeSpec
	Mtime TimeSpec
}

// FS abstracts filesystem operations.
type FS interface {
	Join(elem ...string) string
	IsDir(path string) bool
	IsDirEmpty(path string) (bool, error)
	MkDir(path string) error
	Create(path string) (io.WriteCloser, error)
	Open(path string) (io.ReadCloser, error)
	Lstat(path string) (Metadata, error)
}

// OS is the production implementation of FS using the standard library.
type OS struct{}

func NewOS() *OS {
	return &OS{}
}

func (*OS) Join(elem ...string) string {
	return filepath.Join(elem...)
}

func (*OS) IsDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

func (*OS) IsDirEmpty(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer func() { _ = f.Close() }()

	_, err = f.Readdirnames(1)
	if errors.Is(err, io.EOF) {
		return true, nil
	}
	return false, err
}

func (*OS) MkDir(path string) error {
	return os.Mkdir(path, 0o755)
}

func (*OS) Create(path string) (io.WriteCloser, error) {
	return os.Create(path)
}

func (*OS) Open(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

func (*OS) Lstat(path string) (Metadata, error) {
	return lstat(path)
}
