//go:build windows

package fsx

import (
	"os"
	"syscall"
)

// lstat reads metadata the way the windows _stat family reports it:
// whole-second timestamps, with creation time in the ctime slot.
func lstat(path string) (Metadata, error) {
	fi, err := os.Lstat(path)
	if err != nil {
		return Metadata{}, err
	}
	st := fi.Sys().(*syscall.Win32FileAttributeData)
	return Metadata{
		Size:  fi.Size(),
		Atime: TimeSpec{Sec: st.LastAccessTime.Nanoseconds() / 1e9},
		Ctime: TimeSpec{Sec: st.CreationTime.Nanoseconds() / 1e9},
		Mtime: TimeSpec{Sec: st.LastWriteTime.Nanoseconds() / 1e9},
	}, nil
}
