//go:build !linux && !windows

package fsx

import "os"

// lstat falls back to modification time on platforms without a wired
// stat structure.
func lstat(path string) (Metadata, error) {
	fi, err := os.Lstat(path)
	if err != nil {
		return Metadata{}, err
	}
	mt := fi.ModTime()
	ts := TimeSpec{Sec: mt.Unix(), Nsec: int64(mt.Nanosecond())}
	return Metadata{Size: fi.Size(), Atime: ts, Ctime: ts, Mtime: ts}, nil
}
