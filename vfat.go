package vfat

import (
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/aligator/vfat/checkpoint"
	"github.com/sirupsen/logrus"
)

// Geometry contains the layout information of a mounted FAT32 partition.
type Geometry struct {
	// Partition is the index of the used MBR partition table entry.
	Partition         int
	PartitionStart    uint64
	BytesPerSector    uint16
	SectorsPerCluster uint8
	SectorsPerFAT     uint32
	// FATStartSector and DataStartSector are sector numbers as used by the CachedDevice.
	FATStartSector  uint64
	DataStartSector uint64
	RootCluster     Cluster
}

// BytesPerCluster returns the size of one cluster in bytes.
func (g Geometry) BytesPerCluster() int {
	return int(g.BytesPerSector) * int(g.SectorsPerCluster)
}

// VFat is a mounted, read-only FAT32 filesystem.
//
// All entries opened from it keep a reference to it. Every operation which
// reads from the device locks the VFat, so it is safe to use from several goroutines
// although the operations are effectively serialized.
type VFat struct {
	lock   sync.Mutex
	device *CachedDevice
	log    logrus.FieldLogger

	geometry Geometry
	label    string
}

type options struct {
	log        logrus.FieldLogger
	skipChecks bool
}

// Option configures Mount.
type Option func(*options)

// WithLogger sets the logger used by the filesystem. It defaults to the logrus standard logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(o *options) {
		o.log = log
	}
}

// WithSkipChecks skips some validations of the boot sector which may allow you to
// mount not perfectly standard FAT32 filesystems.
// Use with caution!
func WithSkipChecks() Option {
	return func(o *options) {
		o.skipChecks = true
	}
}

// Mount locates the first FAT32 partition in the master boot record of device and mounts it.
//
// Mounting fails if any of the boot sector validations fails.
// If there is no FAT32 partition an ErrNotFound error is returned.
func Mount(device BlockDevice, opts ...Option) (*VFat, error) {
	o := options{
		log: logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	mbr, err := ReadMasterBootRecord(device)
	if err != nil {
		return nil, err
	}

	index := mbr.FirstFAT32()
	if index < 0 {
		return nil, checkpoint.From(fmt.Errorf("%w: no FAT32 partition in the master boot record", ErrNotFound))
	}
	entry := mbr.Partitions[index]
	start := uint64(entry.RelativeSector)

	bpb, err := ReadBiosParameterBlock(device, start)
	if err != nil {
		return nil, err
	}

	if err := bpb.validate(o.skipChecks); err != nil {
		return nil, err
	}

	cache, err := NewCachedDevice(device, Partition{
		Start:      start,
		SectorSize: uint64(bpb.BytesPerSector),
	})
	if err != nil {
		return nil, err
	}

	sectorsPerFAT := bpb.SectorsPerFAT()
	fatStart := start + uint64(bpb.ReservedSectorCount)

	fs := &VFat{
		device: cache,
		log:    o.log,
		label:  bpb.Label(),
		geometry: Geometry{
			Partition:         index,
			PartitionStart:    start,
			BytesPerSector:    bpb.BytesPerSector,
			SectorsPerCluster: bpb.SectorsPerCluster,
			SectorsPerFAT:     sectorsPerFAT,
			FATStartSector:    fatStart,
			DataStartSector:   fatStart + uint64(sectorsPerFAT)*uint64(bpb.NumFATs),
			RootCluster:       ClusterFrom(bpb.RootCluster),
		},
	}

	fs.log.WithFields(logrus.Fields{
		"partition":         index,
		"partitionStart":    start,
		"bytesPerSector":    bpb.BytesPerSector,
		"sectorsPerCluster": bpb.SectorsPerCluster,
		"fatStart":          fs.geometry.FATStartSector,
		"dataStart":         fs.geometry.DataStartSector,
		"rootCluster":       fs.geometry.RootCluster,
	}).Debug("mounted FAT32 partition")

	return fs, nil
}

// Geometry returns the layout of the mounted partition.
func (fs *VFat) Geometry() Geometry {
	return fs.geometry
}

// Label returns the volume label from the boot sector.
func (fs *VFat) Label() string {
	return fs.label
}

// Root returns the root directory.
func (fs *VFat) Root() *Dir {
	return &Dir{
		entryHeader: entryHeader{
			fs:           fs,
			metadata:     Metadata{Attributes: AttrDirectory},
			firstCluster: fs.geometry.RootCluster,
		},
		root: true,
	}
}

// fatEntry reads the FAT entry of cluster through the cache.
// The caller must hold fs.lock.
func (fs *VFat) fatEntry(cluster Cluster) (FatEntry, error) {
	offset := uint64(cluster) * fatEntrySize
	bytesPerSector := uint64(fs.geometry.BytesPerSector)

	if offset+fatEntrySize > uint64(fs.geometry.SectorsPerFAT)*bytesPerSector {
		return 0, checkpoint.From(fmt.Errorf("%w: cluster %d is outside of the FAT", ErrInvalidData, cluster))
	}

	sector, err := fs.device.Get(fs.geometry.FATStartSector + offset/bytesPerSector)
	if err != nil {
		return 0, err
	}

	b := sector[offset%bytesPerSector:]
	return FatEntry(uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24), nil
}

// readCluster reads up to len(buf) bytes starting at offset inside of cluster.
// It returns the number of bytes read which is limited by the end of the cluster.
// The caller must hold fs.lock.
func (fs *VFat) readCluster(cluster Cluster, offset int, buf []byte) (int, error) {
	if !cluster.IsData() {
		return 0, checkpoint.From(fmt.Errorf("%w: cluster %d is no data cluster", ErrInvalidData, cluster))
	}

	bytesPerSector := int(fs.geometry.BytesPerSector)
	bytesPerCluster := fs.geometry.BytesPerCluster()
	if offset < 0 || offset >= bytesPerCluster {
		return 0, nil
	}

	toRead := len(buf)
	if remaining := bytesPerCluster - offset; toRead > remaining {
		toRead = remaining
	}

	sector := fs.geometry.DataStartSector +
		uint64(cluster-firstDataCluster)*uint64(fs.geometry.SectorsPerCluster) +
		uint64(offset/bytesPerSector)
	inSector := offset % bytesPerSector

	read := 0
	for read < toRead {
		data, err := fs.device.Get(sector)
		if err != nil {
			return read, err
		}

		read += copy(buf[read:toRead], data[inSector:])
		inSector = 0
		sector++
	}

	return read, nil
}

// readChain appends the content of all clusters of the chain starting at start to buf.
//
// A second cursor walks the chain twice as fast. If both ever meet, the chain has a cycle
// and ErrInvalidData is returned instead of looping forever.
// The caller must hold fs.lock.
func (fs *VFat) readChain(start Cluster, buf []byte) ([]byte, error) {
	bytesPerCluster := fs.geometry.BytesPerCluster()
	current := start

	entry, err := fs.fatEntry(current)
	if err != nil {
		return buf, err
	}

	// fast is only valid while hasFast is true. It stops at the end of the chain.
	var fast Cluster
	hasFast := false
	switch status := entry.Status(); status.Kind {
	case StatusData:
		fast, hasFast = status.Next, true
	case StatusEOC:
	default:
		return buf, fs.invalidChain(start, current, status)
	}

	for {
		if hasFast && fast == current {
			fs.log.WithFields(logrus.Fields{"start": start, "cluster": current}).Warn("cluster chain has a cycle")
			return buf, checkpoint.From(fmt.Errorf("%w: cluster chain starting at %d has a cycle", ErrInvalidData, start))
		}

		offset := len(buf)
		buf = append(buf, make([]byte, bytesPerCluster)...)
		n, err := fs.readCluster(current, 0, buf[offset:])
		buf = buf[:offset+n]
		if err != nil {
			return buf, err
		}

		entry, err := fs.fatEntry(current)
		if err != nil {
			return buf, err
		}

		status := entry.Status()
		switch status.Kind {
		case StatusData:
			current = status.Next
		case StatusEOC:
			return buf, nil
		default:
			return buf, fs.invalidChain(start, current, status)
		}

		for i := 0; i < 2 && hasFast; i++ {
			entry, err := fs.fatEntry(fast)
			if err != nil {
				return buf, err
			}

			switch status := entry.Status(); status.Kind {
			case StatusData:
				fast = status.Next
			case StatusEOC:
				hasFast = false
			default:
				return buf, fs.invalidChain(start, fast, status)
			}
		}
	}
}

func (fs *VFat) invalidChain(start, at Cluster, status Status) error {
	fs.log.WithFields(logrus.Fields{"start": start, "cluster": at, "status": status}).Warn("invalid cluster chain")
	return checkpoint.From(fmt.Errorf("%w: invalid cluster chain starting at %d: cluster %d is %v", ErrInvalidData, start, at, status))
}

// Open resolves the absolute path and returns the found entry.
//
// The components are resolved from left to right:
//  "/"  restarts at the root directory
//  "."  is ignored
//  ".." goes back to the previously resolved entry (but not above the root)
// Any other component is looked up case-insensitively by its short and long name in the current directory.
//
// It returns ErrInvalidInput if path is not absolute and ErrNotFound if a component cannot be found.
func (fs *VFat) Open(path string) (Entry, error) {
	if !strings.HasPrefix(path, "/") {
		return nil, checkpoint.From(fmt.Errorf("%w: path %q is not absolute", ErrInvalidInput, path))
	}
	if !utf8.ValidString(path) {
		return nil, checkpoint.From(fmt.Errorf("%w: path %q is no valid UTF-8", ErrInvalidInput, path))
	}

	fs.lock.Lock()
	defer fs.lock.Unlock()

	var stack []Entry
	for _, component := range splitPath(path) {
		switch component {
		case "/":
			stack = append(stack[:0], fs.Root())
		case ".":
		case "..":
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
		default:
			var dir *Dir
			if len(stack) > 0 {
				dir, _ = stack[len(stack)-1].AsDir()
			}
			if dir == nil {
				return nil, checkpoint.From(fmt.Errorf("%w: %q in %q: parent is no directory", ErrNotFound, component, path))
			}

			entry, err := dir.find(component)
			if err != nil {
				return nil, checkpoint.Wrap(err, fmt.Errorf("could not open %q", path))
			}
			stack = append(stack, entry)
		}
	}

	if len(stack) == 0 {
		return nil, checkpoint.From(fmt.Errorf("%w: %q", ErrNotFound, path))
	}
	return stack[len(stack)-1], nil
}

// splitPath splits an absolute path into "/" followed by its non-empty components.
func splitPath(path string) []string {
	components := []string{"/"}
	for _, c := range strings.Split(path, "/") {
		if c != "" {
			components = append(components, c)
		}
	}
	return components
}

// CreateFile is not supported by this read-only filesystem.
func (fs *VFat) CreateFile(path string) (*File, error) {
	return nil, checkpoint.From(fmt.Errorf("%w: create file %q", ErrUnsupported, path))
}

// CreateDir is not supported by this read-only filesystem.
func (fs *VFat) CreateDir(path string, parents bool) (*Dir, error) {
	return nil, checkpoint.From(fmt.Errorf("%w: create directory %q", ErrUnsupported, path))
}

// Rename is not supported by this read-only filesystem.
func (fs *VFat) Rename(from, to string) error {
	return checkpoint.From(fmt.Errorf("%w: rename %q to %q", ErrUnsupported, from, to))
}

// Remove is not supported by this read-only filesystem.
func (fs *VFat) Remove(path string, children bool) error {
	return checkpoint.From(fmt.Errorf("%w: remove %q", ErrUnsupported, path))
}
