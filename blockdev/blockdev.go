// Package blockdev provides sector based access to disk images and block devices
// so that they can be mounted with vfat.Mount.
package blockdev

import (
	"io"
	"os"

	"github.com/pkg/errors"
)

// DefaultSectorSize is used if the sector size is neither given nor detectable.
const DefaultSectorSize = 512

// ErrReadOnly is returned by WriteSector.
var ErrReadOnly = errors.New("blockdev: device is read-only")

// Device reads fixed size sectors from an io.ReaderAt.
type Device struct {
	reader     io.ReaderAt
	closer     io.Closer
	sectorSize uint64
}

// New creates a Device reading from r. A sectorSize of 0 selects DefaultSectorSize.
func New(r io.ReaderAt, sectorSize uint64) *Device {
	if sectorSize == 0 {
		sectorSize = DefaultSectorSize
	}

	d := &Device{
		reader:     r,
		sectorSize: sectorSize,
	}
	if c, ok := r.(io.Closer); ok {
		d.closer = c
	}
	return d
}

// Open opens an image file or a block device read-only.
//
// If sectorSize is 0 the logical sector size is queried from the kernel for block devices.
// Regular files and systems without that possibility use DefaultSectorSize.
func Open(path string, sectorSize uint64) (*Device, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open %s", path)
	}

	if sectorSize == 0 {
		sectorSize, err = detectSectorSize(f)
		if err != nil {
			_ = f.Close()
			return nil, errors.Wrapf(err, "could not detect the sector size of %s", path)
		}
	}

	return New(f, sectorSize), nil
}

// SectorSize returns the size of one sector in bytes.
func (d *Device) SectorSize() uint64 {
	return d.sectorSize
}

// ReadSector reads sector n into buf. At most one sector is read.
//
// If the device ends inside of the sector, the number of bytes actually read is returned without an error.
func (d *Device) ReadSector(n uint64, buf []byte) (int, error) {
	if uint64(len(buf)) > d.sectorSize {
		buf = buf[:d.sectorSize]
	}

	read, err := d.reader.ReadAt(buf, int64(n*d.sectorSize))
	if err == io.EOF && read > 0 {
		return read, nil
	}
	if err != nil {
		return read, errors.Wrapf(err, "could not read sector %d", n)
	}
	return read, nil
}

// WriteSector always fails with ErrReadOnly.
func (d *Device) WriteSector(n uint64, buf []byte) (int, error) {
	return 0, errors.Wrapf(ErrReadOnly, "could not write sector %d", n)
}

// Close closes the underlying reader if it is an io.Closer.
func (d *Device) Close() error {
	if d.closer == nil {
		return nil
	}
	return errors.Wrap(d.closer.Close(), "could not close device")
}
