// Package vfat is a read-only FAT32 filesystem driver working on raw sector devices.
//
// Mount reads the master boot record of a BlockDevice, mounts the first FAT32 partition
// and provides its directory tree through VFat.Open. The mounted filesystem can also be
// used as afero.Fs (NewFs) or fs.FS (NewIOFS).
package vfat

//go:generate go run ./cmd/generate testdata
