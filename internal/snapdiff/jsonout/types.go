package jsonout

import "snapdiff/internal/platform/fsx"

// timeSpec mirrors the split-resolution stat timestamps on the wire
type timeSpec struct {
	Nsec int64 `json:"nsec"`
	Sec  int64 `json:"sec"`
}

// statFields is the metadata group attached when the entry still exists
// in the snapshotted tree. The whole group is omitted when the stat fails.
type statFields struct {
	Size  *int64    `json:"size,omitempty"`
	Atime *timeSpec `json:"atime,omitempty"`
	Ctime *timeSpec `json:"ctime,omitempty"`
	Mtime *timeSpec `json:"mtime,omitempty"`
	Path  *string   `json:"path,omitempty"`
}

func (s *statFields) fill(md fsx.Metadata, path string) {
	size := md.Size
	s.Size = &size
	s.Atime = &timeSpec{Nsec: md.Atime.Nsec, Sec: md.Atime.Sec}
	s.Ctime = &timeSpec{Nsec: md.Ctime.Nsec, Sec: md.Ctime.Sec}
	s.Mtime = &timeSpec{Nsec: md.Mtime.Nsec, Sec: md.Mtime.Sec}
	s.Path = &path
}

// deleteChange records a removed file, dir or symlink
type deleteChange struct {
	Type       string `json:"type"` // always "delete"
	ObjectType string `json:"object_type"`
	Path       string `json:"path"`
}

// renameChange records a moved entry
type renameChange struct {
	Type    string `json:"type"` // always "rename"
	PathOld string `json:"path_old"`
	PathNew string `json:"path_new"`
}

// entryChange records a created or mutated file or dir, with the change
// aspects broken out of the operation flags
type entryChange struct {
	statFields
	Type     string `json:"type"` // "file" or "dir"
	Created  bool   `json:"created"`
	Modified bool   `json:"modified"`
	Stat     bool   `json:"stat"`
	Xattr    bool   `json:"xattr"`
}

// symlinkChange records a created or mutated symlink. Target is carried
// only on creation; symlinks have no modified or xattr aspect.
type symlinkChange struct {
	statFields
	Type    string `json:"type"` // always "symlink"
	Created bool   `json:"created"`
	Target  string `json:"target,omitempty"`
	Stat    bool   `json:"stat"`
}
