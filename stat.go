package vfat

import (
	"os"
	"time"
)

// FileInfo returns the os.FileInfo of an entry.
// Sys() returns the Metadata of the entry.
func FileInfo(e Entry) os.FileInfo {
	return entryFileInfo{e}
}

type entryFileInfo struct {
	entry Entry
}

func (e entryFileInfo) Name() string {
	return e.entry.Name()
}

func (e entryFileInfo) Size() int64 {
	if f, ok := e.entry.AsFile(); ok {
		return f.Size()
	}
	return 0
}

// Mode is always read-only as writing is not supported.
func (e entryFileInfo) Mode() os.FileMode {
	if e.IsDir() {
		return os.ModeDir | 0555
	}
	return 0444
}

func (e entryFileInfo) ModTime() time.Time {
	return e.entry.Metadata().Modified.AsTime()
}

func (e entryFileInfo) IsDir() bool {
	return e.entry.IsDir()
}

func (e entryFileInfo) Sys() interface{} {
	return e.entry.Metadata()
}
