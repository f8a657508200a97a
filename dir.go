package vfat

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/aligator/vfat/checkpoint"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

const (
	// entryEnd as first byte of a record marks the end of the directory.
	entryEnd = 0x00
	// entryDeleted as first byte of a record marks a free or deleted record.
	entryDeleted = 0xE5
	// entryKanji as first byte of a short name stands for a real 0xE5.
	entryKanji = 0x05

	lfnSequenceMask = 0x1F
)

// Dir is a directory of a mounted VFat.
type Dir struct {
	entryHeader
	root bool
}

func (d *Dir) Name() string {
	if d.root {
		return "/"
	}
	return d.entryHeader.Name()
}

func (d *Dir) IsDir() bool {
	return true
}

func (d *Dir) AsFile() (*File, bool) {
	return nil, false
}

func (d *Dir) AsDir() (*Dir, bool) {
	return d, true
}

// IsRoot reports whether d is the root directory.
func (d *Dir) IsRoot() bool {
	return d.root
}

func (d *Dir) String() string {
	return fmt.Sprintf("dir %q (cluster %d)", d.Name(), d.firstCluster)
}

// Entries reads the whole directory and returns an iterator over its entries.
// The entries are decoded lazily while iterating.
func (d *Dir) Entries() (*EntryIterator, error) {
	d.fs.lock.Lock()
	defer d.fs.lock.Unlock()

	return d.entries()
}

// entries works like Entries but the caller must hold the lock of the VFat.
func (d *Dir) entries() (*EntryIterator, error) {
	data, err := d.fs.readChain(d.firstCluster, nil)
	if err != nil {
		return nil, checkpoint.Wrap(err, fmt.Errorf("could not read %v", d))
	}

	return &EntryIterator{
		fs:   d.fs,
		data: data,
	}, nil
}

// Find returns the entry with the given name. The short and the long name
// are both compared case-insensitively.
//
// It returns ErrInvalidInput if name is no valid UTF-8 and ErrNotFound if there is no such entry.
func (d *Dir) Find(name string) (Entry, error) {
	d.fs.lock.Lock()
	defer d.fs.lock.Unlock()

	return d.find(name)
}

func (d *Dir) find(name string) (Entry, error) {
	if !utf8.ValidString(name) {
		return nil, checkpoint.From(fmt.Errorf("%w: name %q is no valid UTF-8", ErrInvalidInput, name))
	}

	it, err := d.entries()
	if err != nil {
		return nil, err
	}

	for entry, ok := it.Next(); ok; entry, ok = it.Next() {
		if strings.EqualFold(entry.ShortName(), name) || strings.EqualFold(entry.LongName(), name) {
			return entry, nil
		}
	}

	return nil, checkpoint.From(fmt.Errorf("%w: %q in %v", ErrNotFound, name, d))
}

// ReadDir returns all entries of the directory in on-disk order, including "." and ".." if present.
func (d *Dir) ReadDir() ([]Entry, error) {
	it, err := d.Entries()
	if err != nil {
		return nil, err
	}

	var result []Entry
	for entry, ok := it.Next(); ok; entry, ok = it.Next() {
		result = append(result, entry)
	}
	return result, nil
}

// EntryIterator iterates over the records of a directory which has already been read into memory.
type EntryIterator struct {
	fs   *VFat
	data []byte
	// index of the next record
	index int
}

// Reset restarts the iteration at the first record.
func (it *EntryIterator) Reset() {
	it.index = 0
}

// Next returns the next entry. It returns false after the last entry.
//
// Deleted records are skipped and long file name records are collected until the
// regular record they belong to is reached.
func (it *EntryIterator) Next() (Entry, bool) {
	var lfnBuf []byte

	for {
		offset := it.index * dirEntrySize
		if offset+dirEntrySize > len(it.data) {
			return nil, false
		}
		record := it.data[offset : offset+dirEntrySize]

		switch record[0] {
		case entryEnd:
			return nil, false
		case entryDeleted:
			it.index++
			continue
		}
		it.index++

		if Attributes(record[11]) == AttrLongName {
			var lfn lfnDirEntry
			if err := decodeRecord(record, &lfn); err != nil {
				return nil, false
			}
			lfnBuf = lfn.placeInto(lfnBuf)
			continue
		}

		var regular regularDirEntry
		if err := decodeRecord(record, &regular); err != nil {
			return nil, false
		}

		return it.newEntry(&regular, decodeLongName(lfnBuf)), true
	}
}

func (it *EntryIterator) newEntry(e *regularDirEntry, longName string) Entry {
	header := entryHeader{
		fs:           it.fs,
		shortName:    e.shortName(),
		longName:     longName,
		metadata:     newMetadata(e),
		firstCluster: clusterFromHalves(e.FirstClusterHI, e.FirstClusterLO),
	}

	if !e.Attributes.IsDirectory() {
		return &File{
			entryHeader: header,
			size:        int64(e.FileSize),
			cluster:     header.firstCluster,
		}
	}

	// A ".." record which points to the root directory contains cluster 0.
	if header.firstCluster == 0 {
		header.firstCluster = it.fs.geometry.RootCluster
	}
	return &Dir{entryHeader: header}
}

// placeInto copies the name data of the record into buf at the position defined by its sequence number.
// buf is grown as needed. Records with an invalid sequence number are ignored.
func (e *lfnDirEntry) placeInto(buf []byte) []byte {
	sequence := int(e.Sequence & lfnSequenceMask)
	if sequence == 0 {
		return buf
	}

	start := (sequence - 1) * lfnCharsPerEntry
	if end := sequence * lfnCharsPerEntry; end > len(buf) {
		buf = append(buf, make([]byte, end-len(buf))...)
	}

	n := copy(buf[start:], e.Name1[:])
	n += copy(buf[start+n:], e.Name2[:])
	copy(buf[start+n:], e.Name3[:])
	return buf
}

// decodeLongName decodes the UTF-16LE name up to the first 0x0000 or 0xFFFF code unit.
func decodeLongName(buf []byte) string {
	if len(buf)%2 != 0 {
		panic(fmt.Sprintf("long file name buffer has odd length %d", len(buf)))
	}

	end := len(buf)
	for i := 0; i < len(buf); i += 2 {
		unit := binary.LittleEndian.Uint16(buf[i:])
		if unit == 0x0000 || unit == 0xFFFF {
			end = i
			break
		}
	}

	name, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder().Bytes(buf[:end])
	if err != nil {
		return ""
	}
	return string(name)
}

// shortName returns the 8.3 name with trailing padding removed, e.g. "README.TXT".
func (e *regularDirEntry) shortName() string {
	raw := e.Name
	if raw[0] == entryKanji {
		raw[0] = entryDeleted
	}

	name := decodeShortName(raw[:])
	if ext := decodeShortName(e.Ext[:]); ext != "" {
		return name + "." + ext
	}
	return name
}

func decodeShortName(raw []byte) string {
	raw = bytes.TrimRight(raw, " ")
	decoded, err := charmap.CodePage437.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return string(decoded)
}
