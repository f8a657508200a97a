package vfat

import (
	"fmt"

	"github.com/aligator/vfat/checkpoint"
)

// Partition types which identify a FAT32 partition.
const (
	PartitionTypeFAT32CHS = 0x0B
	PartitionTypeFAT32LBA = 0x0C
)

// Valid values of PartitionEntry.BootIndicator.
const (
	BootIndicatorInactive = 0x00
	BootIndicatorActive   = 0x80
)

// ReadMasterBootRecord reads and validates the master boot record from sector 0 of device.
//
// It returns ErrBadSignature if the MBR does not end with 0x55 0xAA and an
// UnknownBootIndicatorError if a partition entry has a boot indicator other than 0x00 or 0x80.
func ReadMasterBootRecord(device BlockDevice) (*MasterBootRecord, error) {
	buf, err := ReadAllSector(device, 0)
	if err != nil {
		return nil, checkpoint.Wrap(err, fmt.Errorf("%w: could not read the master boot record", ErrIO))
	}

	mbr := &MasterBootRecord{}
	if err := decodeRecord(buf, mbr); err != nil {
		return nil, err
	}

	if mbr.Signature != bootSignature {
		return nil, checkpoint.From(fmt.Errorf("%w: master boot record ends with 0x%02X 0x%02X", ErrBadSignature, mbr.Signature[0], mbr.Signature[1]))
	}

	for i, p := range mbr.Partitions {
		if p.BootIndicator != BootIndicatorInactive && p.BootIndicator != BootIndicatorActive {
			return nil, checkpoint.From(&UnknownBootIndicatorError{Partition: i, Indicator: p.BootIndicator})
		}
	}

	return mbr, nil
}

// FirstFAT32 returns the index of the first partition entry with a FAT32 type or -1 if there is none.
func (m *MasterBootRecord) FirstFAT32() int {
	for i, p := range m.Partitions {
		if p.IsFAT32() {
			return i
		}
	}
	return -1
}

// IsFAT32 reports whether the partition type is one of the FAT32 types.
func (p PartitionEntry) IsFAT32() bool {
	return p.Type == PartitionTypeFAT32CHS || p.Type == PartitionTypeFAT32LBA
}

// Bootable reports whether the partition is marked as active.
func (p PartitionEntry) Bootable() bool {
	return p.BootIndicator == BootIndicatorActive
}
