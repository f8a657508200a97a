package vfat

import (
	"bytes"
	"encoding/binary"
	"testing"
	"unicode/utf16"

	"github.com/aligator/vfat/blockdev"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

// testGeometry describes the layout of an image built by testImage.
type testGeometry struct {
	deviceSectorSize  int
	bytesPerSector    int
	sectorsPerCluster int
	// partitionStart is counted in device sectors.
	partitionStart  int
	reservedSectors int
	numFATs         int
	sectorsPerFAT   int
	dataClusters    int
}

func defaultGeometry() testGeometry {
	return testGeometry{
		deviceSectorSize:  512,
		bytesPerSector:    512,
		sectorsPerCluster: 1,
		partitionStart:    8,
		reservedSectors:   4,
		numFATs:           2,
		sectorsPerFAT:     1,
		dataClusters:      64,
	}
}

// testImage builds a tiny MBR partitioned FAT32 image in memory.
// The root directory always starts at cluster 2.
type testImage struct {
	geo      testGeometry
	fat      []uint32
	clusters map[Cluster][]byte

	bootIndicator byte
	partitionType byte
	label         string
}

func newTestImage(geo testGeometry) *testImage {
	img := &testImage{
		geo:           geo,
		fat:           make([]uint32, geo.sectorsPerFAT*geo.bytesPerSector/fatEntrySize),
		clusters:      make(map[Cluster][]byte),
		bootIndicator: BootIndicatorActive,
		partitionType: PartitionTypeFAT32LBA,
		label:         "TESTVOL",
	}
	img.fat[0] = 0x0FFFFFF8
	img.fat[1] = 0x0FFFFFFF
	img.fat[2] = 0x0FFFFFFF
	return img
}

func (img *testImage) bytesPerCluster() int {
	return img.geo.bytesPerSector * img.geo.sectorsPerCluster
}

// setFAT sets the raw FAT entry of cluster.
func (img *testImage) setFAT(cluster Cluster, value uint32) {
	img.fat[cluster] = value
}

// chain links the given clusters in order and terminates the chain with an end of chain marker.
func (img *testImage) chain(clusters ...Cluster) {
	for i, c := range clusters {
		if i == len(clusters)-1 {
			img.fat[c] = 0x0FFFFFFF
		} else {
			img.fat[c] = uint32(clusters[i+1])
		}
	}
}

// write spreads data over the given clusters and links them.
func (img *testImage) write(data []byte, clusters ...Cluster) {
	img.chain(clusters...)
	for _, c := range clusters {
		n := img.bytesPerCluster()
		if n > len(data) {
			n = len(data)
		}
		img.clusters[c] = data[:n]
		data = data[n:]
	}
}

// fileData returns size bytes where each byte depends on its position.
func fileData(size int) []byte {
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i % 251)
	}
	return data
}

func (img *testImage) totalLogicalSectors() int {
	g := img.geo
	return g.reservedSectors + g.numFATs*g.sectorsPerFAT + g.dataClusters*g.sectorsPerCluster
}

func (img *testImage) build() []byte {
	g := img.geo
	factor := g.bytesPerSector / g.deviceSectorSize
	partitionOffset := g.partitionStart * g.deviceSectorSize

	out := make([]byte, partitionOffset+img.totalLogicalSectors()*g.bytesPerSector)

	mbr := MasterBootRecord{Signature: bootSignature}
	mbr.Partitions[0] = PartitionEntry{
		BootIndicator:  img.bootIndicator,
		Type:           img.partitionType,
		RelativeSector: uint32(g.partitionStart),
		TotalSectors:   uint32(img.totalLogicalSectors() * factor),
	}
	copy(out, encode(mbr))

	bpb := BiosParameterBlock{
		JumpBoot:            [3]byte{0xEB, 0x58, 0x90},
		BytesPerSector:      uint16(g.bytesPerSector),
		SectorsPerCluster:   uint8(g.sectorsPerCluster),
		ReservedSectorCount: uint16(g.reservedSectors),
		NumFATs:             uint8(g.numFATs),
		Media:               0xF8,
		TotalSectors32:      uint32(img.totalLogicalSectors()),
		FATSize32:           uint32(g.sectorsPerFAT),
		RootCluster:         uint32(firstDataCluster),
		FSInfo:              1,
		BackupBootSector:    6,
		DriveNumber:         0x80,
		BootSignature:       0x29,
		VolumeID:            0x12345678,
		Signature:           bootSignature,
	}
	copy(bpb.OEMName[:], "MSWIN4.1")
	copy(bpb.VolumeLabel[:], padRight(img.label, 11))
	copy(bpb.FileSystemType[:], "FAT32   ")
	copy(out[partitionOffset:], encode(bpb))

	fat := encode(img.fat)
	for i := 0; i < g.numFATs; i++ {
		offset := partitionOffset + (g.reservedSectors+i*g.sectorsPerFAT)*g.bytesPerSector
		copy(out[offset:], fat)
	}

	dataOffset := partitionOffset + (g.reservedSectors+g.numFATs*g.sectorsPerFAT)*g.bytesPerSector
	for c, data := range img.clusters {
		copy(out[dataOffset+int(c-firstDataCluster)*img.bytesPerCluster():], data)
	}

	return out
}

// device returns the built image as BlockDevice.
func (img *testImage) device() BlockDevice {
	return memDevice(img.build(), img.geo.deviceSectorSize)
}

func memDevice(data []byte, sectorSize int) BlockDevice {
	return blockdev.New(bytes.NewReader(data), uint64(sectorSize))
}

// mount mounts the built image and fails the test on errors.
func (img *testImage) mount(t *testing.T) *VFat {
	t.Helper()

	fs, err := Mount(img.device(), WithLogger(testLogger()))
	if err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	return fs
}

func testLogger() logrus.FieldLogger {
	log, _ := test.NewNullLogger()
	return log
}

func encode(v interface{}) []byte {
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func padRight(s string, n int) string {
	for len(s) < n {
		s += " "
	}
	return s
}

// dirRecord is a raw 32 byte directory record.
type dirRecord []byte

// shortRecord creates a regular directory record. name and ext are padded with spaces.
func shortRecord(name, ext string, attributes Attributes, cluster Cluster, size uint32) dirRecord {
	e := regularDirEntry{
		Attributes:     attributes,
		CreateTime:     0x7BBD, // 15:29:58
		CreateDate:     0x4A8F, // 2017-04-15
		LastAccessDate: 0x4A90, // 2017-04-16
		WriteTime:      0x6000, // 12:00:00
		WriteDate:      0x4A91, // 2017-04-17
		FirstClusterHI: uint16(cluster >> 16),
		FirstClusterLO: uint16(cluster),
		FileSize:       size,
	}
	copy(e.Name[:], padRight(name, 8))
	copy(e.Ext[:], padRight(ext, 3))
	return encode(e)
}

// lfnRecords creates the long file name records for name in on-disk order, so the last part comes first.
func lfnRecords(name string) []dirRecord {
	units := utf16.Encode([]rune(name))
	count := (len(units) + 12) / 13
	if len(units)%13 != 0 {
		units = append(units, 0x0000)
	}
	for len(units) < count*13 {
		units = append(units, 0xFFFF)
	}

	records := make([]dirRecord, count)
	for i := 0; i < count; i++ {
		part := encode(units[i*13 : (i+1)*13])

		e := lfnDirEntry{
			Sequence:   uint8(i + 1),
			Attributes: AttrLongName,
		}
		if i == count-1 {
			e.Sequence |= 0x40
		}
		copy(e.Name1[:], part[0:10])
		copy(e.Name2[:], part[10:22])
		copy(e.Name3[:], part[22:26])

		records[count-1-i] = encode(e)
	}
	return records
}

// withLongName returns the long file name records followed by the regular record.
func withLongName(name string, regular dirRecord) []dirRecord {
	return append(lfnRecords(name), regular)
}

// dirData concatenates records to the content of a directory.
func dirData(records ...dirRecord) []byte {
	var data []byte
	for _, r := range records {
		data = append(data, r...)
	}
	return data
}

func flatten(groups ...[]dirRecord) []dirRecord {
	var result []dirRecord
	for _, g := range groups {
		result = append(result, g...)
	}
	return result
}
