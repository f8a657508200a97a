package vfat

import (
	"errors"
	"fmt"
	"io/fs"
)

// These errors may occur while mounting or reading the filesystem.
// All of them are returned decorated by checkpoint, so use errors.Is to check for them.
var (
	ErrIO                   = errors.New("i/o error")
	ErrBadSignature         = errors.New("bad signature")
	ErrUnknownBootIndicator = errors.New("unknown boot indicator")
	ErrEBPBSize             = errors.New("extended BIOS parameter block has an invalid size")
	ErrNotFound             = fmt.Errorf("not found: %w", fs.ErrNotExist)
	ErrInvalidInput         = fmt.Errorf("invalid input: %w", fs.ErrInvalid)
	ErrInvalidData          = errors.New("invalid data")
	ErrUnsupported          = errors.New("operation not supported on a read-only filesystem")
)

// UnknownBootIndicatorError reports the partition table entry (0-indexed)
// which contains a boot indicator other than 0x00 or 0x80.
type UnknownBootIndicatorError struct {
	Partition int
	Indicator byte
}

func (e *UnknownBootIndicatorError) Error() string {
	return fmt.Sprintf("partition %d: %v 0x%02X", e.Partition, ErrUnknownBootIndicator, e.Indicator)
}

func (e *UnknownBootIndicatorError) Is(target error) bool {
	return target == ErrUnknownBootIndicator
}
