package vfat

import (
	"io/fs"

	"github.com/spf13/afero"
)

// NewIOFS provides a mounted VFat as read-only fs.FS.
// Paths have to follow the rules of fs.ValidPath, so the root is ".".
func NewIOFS(vfat *VFat) fs.FS {
	return afero.NewIOFS(NewFs(vfat))
}
