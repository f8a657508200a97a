// File model contains the structs which match the direct on-disk structures of the FAT32 filesystem.
// They are only ever filled by decodeRecord which reads them field by field in little endian.

package vfat

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/aligator/vfat/checkpoint"
)

// CHS is a cylinder-head-sector address as stored in a partition table entry.
type CHS struct {
	Head           byte
	SectorCylinder [2]byte
}

// PartitionEntry is one of the four 16 byte entries of the MBR partition table.
type PartitionEntry struct {
	BootIndicator  byte
	Start          CHS
	Type           byte
	End            CHS
	RelativeSector uint32
	TotalSectors   uint32
}

// MasterBootRecord is the first sector of a partitioned device.
type MasterBootRecord struct {
	Bootstrap  [436]byte
	DiskID     [10]byte
	Partitions [4]PartitionEntry
	Signature  [2]byte
}

// BiosParameterBlock is the FAT32 boot sector including the extended BIOS parameter block.
type BiosParameterBlock struct {
	JumpBoot            [3]byte
	OEMName             [8]byte
	BytesPerSector      uint16
	SectorsPerCluster   uint8
	ReservedSectorCount uint16
	NumFATs             uint8
	RootEntryCount      uint16
	TotalSectors16      uint16
	Media               uint8
	FATSize16           uint16
	SectorsPerTrack     uint16
	NumberOfHeads       uint16
	HiddenSectors       uint32
	TotalSectors32      uint32

	// FAT32 extended part
	FATSize32        uint32
	ExtFlags         uint16
	FSVersion        uint16
	RootCluster      uint32
	FSInfo           uint16
	BackupBootSector uint16
	Reserved         [12]byte
	DriveNumber      uint8
	NTFlags          uint8
	BootSignature    uint8
	VolumeID         uint32
	VolumeLabel      [11]byte
	FileSystemType   [8]byte
	BootCode         [420]byte
	Signature        [2]byte
}

// regularDirEntry is a directory record describing a file or a directory using its 8.3 name.
type regularDirEntry struct {
	Name            [8]byte
	Ext             [3]byte
	Attributes      Attributes
	NTReserved      uint8
	CreateTimeTenth uint8
	CreateTime      uint16
	CreateDate      uint16
	LastAccessDate  uint16
	FirstClusterHI  uint16
	WriteTime       uint16
	WriteDate       uint16
	FirstClusterLO  uint16
	FileSize        uint32
}

// lfnDirEntry is a directory record holding 13 UTF-16 code units of a long file name.
type lfnDirEntry struct {
	Sequence   uint8
	Name1      [10]byte
	Attributes Attributes
	EntryType  uint8
	Checksum   uint8
	Name2      [12]byte
	Zero       uint16
	Name3      [4]byte
}

const (
	dirEntrySize = 32

	// lfnCharsPerEntry is the number of bytes of name data one long file name record holds.
	lfnCharsPerEntry = 10 + 12 + 4
)

var bootSignature = [2]byte{0x55, 0xAA}

// decodeRecord fills the fixed layout record v from the beginning of buf.
func decodeRecord(buf []byte, v interface{}) error {
	size := binary.Size(v)
	if size < 0 || len(buf) < size {
		return checkpoint.From(fmt.Errorf("%w: record needs %d bytes, got %d", ErrInvalidData, size, len(buf)))
	}

	return checkpoint.From(binary.Read(bytes.NewReader(buf[:size]), binary.LittleEndian, v))
}
