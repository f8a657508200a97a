// Package testimage builds raw disk images with an MBR and a single FAT32 partition.
package testimage

import (
	"os"
	"path"

	diskfs "github.com/diskfs/go-diskfs"
	"github.com/diskfs/go-diskfs/disk"
	"github.com/diskfs/go-diskfs/filesystem"
	"github.com/diskfs/go-diskfs/partition/mbr"
	"github.com/pkg/errors"
)

const (
	sectorSize = 512

	// PartitionStart is the first sector of the FAT32 partition.
	PartitionStart = 2048
)

// Entry is a file or directory to put into the image.
// Directories are created with all of their parents, files need an existing parent.
type Entry struct {
	Path    string
	Dir     bool
	Content []byte
}

// Create writes a new image of size bytes to file. The partition fills everything after PartitionStart.
func Create(file string, size int64, label string, entries []Entry) error {
	img, err := diskfs.Create(file, size, diskfs.Raw, diskfs.SectorSizeDefault)
	if err != nil {
		return errors.Wrapf(err, "could not create %s", file)
	}
	defer img.File.Close()

	err = img.Partition(&mbr.Table{
		LogicalSectorSize:  sectorSize,
		PhysicalSectorSize: sectorSize,
		Partitions: []*mbr.Partition{
			{
				Bootable: false,
				Type:     mbr.Fat32LBA,
				Start:    PartitionStart,
				Size:     uint32(size/sectorSize) - PartitionStart,
			},
		},
	})
	if err != nil {
		return errors.Wrap(err, "could not write the partition table")
	}

	fs, err := img.CreateFilesystem(disk.FilesystemSpec{
		Partition:   1,
		FSType:      filesystem.TypeFat32,
		VolumeLabel: label,
	})
	if err != nil {
		return errors.Wrap(err, "could not create the filesystem")
	}

	for _, e := range entries {
		if e.Dir {
			if err := fs.Mkdir(e.Path); err != nil {
				return errors.Wrapf(err, "could not create directory %s", e.Path)
			}
			continue
		}

		if dir := path.Dir(e.Path); dir != "/" {
			if err := fs.Mkdir(dir); err != nil {
				return errors.Wrapf(err, "could not create directory %s", dir)
			}
		}

		f, err := fs.OpenFile(e.Path, os.O_CREATE|os.O_RDWR)
		if err != nil {
			return errors.Wrapf(err, "could not create file %s", e.Path)
		}

		if len(e.Content) > 0 {
			if _, err := f.Write(e.Content); err != nil {
				return errors.Wrapf(err, "could not write file %s", e.Path)
			}
		}
	}

	return nil
}
