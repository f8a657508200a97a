package vfat

import (
	"fmt"

	"github.com/aligator/vfat/checkpoint"
)

// BlockDevice is the raw sector transport the filesystem reads from,
// for example an SD card driver or a disk image (see package blockdev).
//
// Generated mock using mockgen:
//  mockgen -source=blockdevice.go -destination=mock_blockdevice_test.go -package vfat
type BlockDevice interface {
	// SectorSize returns the size of one sector in bytes.
	SectorSize() uint64

	// ReadSector reads sector n into buf which must be at least SectorSize() bytes long.
	// It returns the number of bytes read.
	ReadSector(n uint64, buf []byte) (int, error)

	// WriteSector writes buf to sector n.
	// It is never called by this read-only filesystem.
	WriteSector(n uint64, buf []byte) (int, error)
}

// ReadAllSector reads the whole sector n of device into a new buffer.
// The returned buffer is shortened to the number of bytes actually read.
func ReadAllSector(device BlockDevice, n uint64) ([]byte, error) {
	buf := make([]byte, device.SectorSize())
	read, err := device.ReadSector(n, buf)
	if err != nil {
		return nil, checkpoint.Wrap(err, fmt.Errorf("%w: reading sector %d", ErrIO, n))
	}

	return buf[:read], nil
}
