//go:build linux

package fsx

import (
	"os"
	"syscall"
)

// lstat reads symlink-aware metadata with nanosecond resolution.
func lstat(path string) (Metadata, error) {
	fi, err := os.Lstat(path)
	if err != nil {
		return Metadata{}, err
	}
	st := fi.Sys().(*syscall.Stat_t)
	return Metadata{
		Size:  st.Size,
		Atime: TimeSpec{Sec: int64(st.Atim.Sec), Nsec: int64(st.Atim.Nsec)},
		Ctime: TimeSpec{Sec: int64(st.Ctim.Sec), Nsec: int64(st.Ctim.Nsec)},
		Mtime: TimeSpec{Sec: int64(st.Mtim.Sec), Nsec: int64(st.Mtim.Nsec)},
	}, nil
}
