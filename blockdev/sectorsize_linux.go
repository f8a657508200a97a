package blockdev

import (
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// detectSectorSize asks the kernel for the logical sector size of block devices.
func detectSectorSize(f *os.File) (uint64, error) {
	info, err := f.Stat()
	if err != nil {
		return 0, errors.Wrap(err, "stat")
	}

	if info.Mode()&os.ModeDevice == 0 {
		return DefaultSectorSize, nil
	}

	size, err := unix.IoctlGetInt(int(f.Fd()), unix.BLKSSZGET)
	if err != nil {
		return 0, errors.Wrap(err, "ioctl BLKSSZGET")
	}
	return uint64(size), nil
}
