//go:build !linux

package blockdev

import "os"

func detectSectorSize(f *os.File) (uint64, error) {
	return DefaultSectorSize, nil
}
