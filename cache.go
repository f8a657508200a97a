package vfat

import (
	"fmt"
	"sort"

	"github.com/aligator/vfat/checkpoint"
)

// Partition describes where logical sectors begin and how large they are.
type Partition struct {
	// Start is the physical sector where the partition begins.
	Start uint64
	// SectorSize is the size of a logical sector of the partition in bytes.
	SectorSize uint64
}

type cacheEntry struct {
	data  []byte
	dirty bool
}

// CachedDevice transparently caches the sectors of a BlockDevice and maps
// logical sectors inside of a partition to physical sectors.
//
// An access to a sector n before Partition.Start is made to physical sector n and
// cached with the size of a physical sector. An access to a sector n at or after
// Partition.Start is made to the logical sector n - Partition.Start and cached
// with the size of a logical sector.
//
// Cached sectors are never evicted.
type CachedDevice struct {
	device    BlockDevice
	partition Partition
	cache     map[uint64]*cacheEntry
}

// NewCachedDevice creates a cache for device.
// partition.SectorSize must be a non-zero multiple of the sector size of the device.
func NewCachedDevice(device BlockDevice, partition Partition) (*CachedDevice, error) {
	physical := device.SectorSize()
	if physical == 0 || partition.SectorSize < physical || partition.SectorSize%physical != 0 {
		return nil, checkpoint.From(fmt.Errorf("%w: logical sector size %d is no multiple of the device sector size %d", ErrInvalidData, partition.SectorSize, physical))
	}

	return &CachedDevice{
		device:    device,
		partition: partition,
		cache:     make(map[uint64]*cacheEntry),
	}, nil
}

// Partition returns the partition the cache maps sectors for.
func (c *CachedDevice) Partition() Partition {
	return c.partition
}

// virtualToPhysical maps a requested sector to the first physical sector
// and the number of physical sectors needed to fill it.
func (c *CachedDevice) virtualToPhysical(virt uint64) (uint64, uint64) {
	physical := c.device.SectorSize()
	if physical == c.partition.SectorSize || virt < c.partition.Start {
		return virt, 1
	}

	factor := c.partition.SectorSize / physical
	return c.partition.Start + (virt-c.partition.Start)*factor, factor
}

// Get returns the cached content of sector. If it is not cached yet, it is read from the device first.
// The returned slice points into the cache and must not be modified.
func (c *CachedDevice) Get(sector uint64) ([]byte, error) {
	entry, err := c.load(sector)
	if err != nil {
		return nil, err
	}
	return entry.data, nil
}

// GetMut works like Get but marks the sector as dirty as it is presumed that it gets modified.
// Note that dirty sectors are never written back (see Flush).
func (c *CachedDevice) GetMut(sector uint64) ([]byte, error) {
	entry, err := c.load(sector)
	if err != nil {
		return nil, err
	}
	entry.dirty = true
	return entry.data, nil
}

func (c *CachedDevice) load(sector uint64) (*cacheEntry, error) {
	if entry, ok := c.cache[sector]; ok {
		return entry, nil
	}

	physicalSector, factor := c.virtualToPhysical(sector)
	physicalSize := c.device.SectorSize()

	data := make([]byte, physicalSize*factor)
	for i := uint64(0); i < factor; i++ {
		buf := data[i*physicalSize : (i+1)*physicalSize]
		n, err := c.device.ReadSector(physicalSector+i, buf)
		if err != nil {
			return nil, checkpoint.Wrap(err, fmt.Errorf("%w: reading physical sector %d", ErrIO, physicalSector+i))
		}
		if uint64(n) < physicalSize {
			return nil, checkpoint.From(fmt.Errorf("%w: short read of physical sector %d: %d of %d bytes", ErrIO, physicalSector+i, n, physicalSize))
		}
	}

	entry := &cacheEntry{data: data}
	c.cache[sector] = entry
	return entry, nil
}

// IsDirty reports whether sector is cached and was requested with GetMut.
func (c *CachedDevice) IsDirty(sector uint64) bool {
	entry, ok := c.cache[sector]
	return ok && entry.dirty
}

// Len returns the number of cached sectors.
func (c *CachedDevice) Len() int {
	return len(c.cache)
}

// Flush would write all dirty sectors back to the device.
// Writing is not supported, so it fails if any sector is dirty.
func (c *CachedDevice) Flush() error {
	var dirty []uint64
	for sector, entry := range c.cache {
		if entry.dirty {
			dirty = append(dirty, sector)
		}
	}
	if len(dirty) == 0 {
		return nil
	}

	sort.Slice(dirty, func(i, j int) bool { return dirty[i] < dirty[j] })
	return checkpoint.From(fmt.Errorf("%w: %d dirty sectors cannot be written back (first: %d)", ErrUnsupported, len(dirty), dirty[0]))
}

// SectorSize returns the logical sector size.
func (c *CachedDevice) SectorSize() uint64 {
	return c.partition.SectorSize
}

// ReadSector copies the cached sector n into buf and returns the number of copied bytes.
func (c *CachedDevice) ReadSector(n uint64, buf []byte) (int, error) {
	data, err := c.Get(n)
	if err != nil {
		return 0, err
	}
	return copy(buf, data), nil
}

// WriteSector is not supported.
func (c *CachedDevice) WriteSector(n uint64, buf []byte) (int, error) {
	return 0, checkpoint.From(fmt.Errorf("%w: write to sector %d", ErrUnsupported, n))
}
