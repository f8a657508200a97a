package vfat

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/aligator/vfat/checkpoint"
)

// ReadBiosParameterBlock reads the FAT32 extended BIOS parameter block from the given (physical) sector of device.
//
// It returns ErrEBPBSize if the sector is smaller than the structure
// and ErrBadSignature if the boot sector does not end with 0x55 0xAA.
func ReadBiosParameterBlock(device BlockDevice, sector uint64) (*BiosParameterBlock, error) {
	buf, err := ReadAllSector(device, sector)
	if err != nil {
		return nil, checkpoint.Wrap(err, fmt.Errorf("%w: could not read the boot sector", ErrIO))
	}

	bpb := &BiosParameterBlock{}
	if size := binary.Size(bpb); len(buf) < size {
		return nil, checkpoint.From(fmt.Errorf("%w: read %d bytes, need %d", ErrEBPBSize, len(buf), size))
	}

	if err := decodeRecord(buf, bpb); err != nil {
		return nil, err
	}

	if bpb.Signature != bootSignature {
		return nil, checkpoint.From(fmt.Errorf("%w: boot sector ends with 0x%02X 0x%02X", ErrBadSignature, bpb.Signature[0], bpb.Signature[1]))
	}

	return bpb, nil
}

// SectorsPerFAT returns the size of one FAT in sectors.
// The 16 bit field is used if it is set, the FAT32 field otherwise.
func (b *BiosParameterBlock) SectorsPerFAT() uint32 {
	if b.FATSize16 != 0 {
		return uint32(b.FATSize16)
	}
	return b.FATSize32
}

// Label returns the volume label without padding.
func (b *BiosParameterBlock) Label() string {
	return strings.TrimRight(string(b.VolumeLabel[:]), " \x00")
}

// validate checks the geometry values the driver relies on.
// If skipChecks is set only the checks without which reading is impossible are done.
func (b *BiosParameterBlock) validate(skipChecks bool) error {
	if b.BytesPerSector == 0 {
		return checkpoint.From(fmt.Errorf("%w: logical sector size is 0", ErrInvalidData))
	}
	if b.SectorsPerCluster == 0 {
		return checkpoint.From(fmt.Errorf("%w: sectors per cluster is 0", ErrInvalidData))
	}
	if b.SectorsPerFAT() == 0 {
		return checkpoint.From(fmt.Errorf("%w: sectors per FAT is 0", ErrInvalidData))
	}

	if skipChecks {
		return nil
	}

	// FAT only supports 512, 1024, 2048 and 4096.
	switch b.BytesPerSector {
	case 512, 1024, 2048, 4096:
	default:
		return checkpoint.From(fmt.Errorf("%w: invalid sector size %d", ErrInvalidData, b.BytesPerSector))
	}

	// Sectors per cluster has to be a power of two.
	if b.SectorsPerCluster&(b.SectorsPerCluster-1) != 0 {
		return checkpoint.From(fmt.Errorf("%w: invalid sectors per cluster %d", ErrInvalidData, b.SectorsPerCluster))
	}

	if b.ReservedSectorCount == 0 {
		return checkpoint.From(fmt.Errorf("%w: reserved sector count is 0", ErrInvalidData))
	}

	if b.NumFATs == 0 {
		return checkpoint.From(fmt.Errorf("%w: no FAT present", ErrInvalidData))
	}

	if ClusterFrom(b.RootCluster) < firstDataCluster {
		return checkpoint.From(fmt.Errorf("%w: invalid root cluster %d", ErrInvalidData, b.RootCluster))
	}

	return nil
}
