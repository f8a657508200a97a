package vfat

import (
	"fmt"
	"io"

	"github.com/aligator/vfat/checkpoint"
)

// File is a regular file of a mounted VFat.
// It implements io.Reader, io.ReaderAt and io.Seeker.
type File struct {
	entryHeader
	size int64

	// offset is the position of the next Read.
	offset int64
	// cluster contains the byte at offset. It is 0 if offset is at the end of the chain.
	cluster Cluster
}

func (f *File) IsDir() bool {
	return false
}

func (f *File) AsFile() (*File, bool) {
	return f, true
}

func (f *File) AsDir() (*Dir, bool) {
	return nil, false
}

// Size returns the size of the file in bytes.
func (f *File) Size() int64 {
	return f.size
}

func (f *File) String() string {
	return fmt.Sprintf("file %q (cluster %d, %d bytes)", f.Name(), f.firstCluster, f.size)
}

// Read reads up to len(p) bytes from the current position and advances it.
// At the end of the file it returns io.EOF.
func (f *File) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	f.fs.lock.Lock()
	defer f.fs.lock.Unlock()

	if f.offset >= f.size {
		return 0, io.EOF
	}

	if remaining := f.size - f.offset; int64(len(p)) > remaining {
		p = p[:remaining]
	}

	n, cluster, err := f.readFrom(f.cluster, f.offset, p)
	f.offset += int64(n)
	f.cluster = cluster
	if err != nil {
		return n, checkpoint.Wrap(err, fmt.Errorf("could not read %v", f))
	}
	return n, nil
}

// ReadAt reads len(p) bytes starting at off. It does not use or change the position used by Read and Seek.
// If less than len(p) bytes are left, it returns the read bytes together with io.EOF.
func (f *File) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, checkpoint.From(fmt.Errorf("%w: negative offset %d", ErrInvalidInput, off))
	}

	f.fs.lock.Lock()
	defer f.fs.lock.Unlock()

	if off >= f.size {
		return 0, io.EOF
	}

	want := len(p)
	if remaining := f.size - off; int64(want) > remaining {
		p = p[:remaining]
	}

	cluster, err := f.locate(off)
	if err != nil {
		return 0, checkpoint.Wrap(err, fmt.Errorf("could not read %v at %d", f, off))
	}

	n, _, err := f.readFrom(cluster, off, p)
	if err != nil {
		return n, checkpoint.Wrap(err, fmt.Errorf("could not read %v at %d", f, off))
	}
	if n < want {
		return n, io.EOF
	}
	return n, nil
}

// readFrom reads len(buf) bytes starting at offset which lies inside of cluster.
// It follows the chain through the FAT and returns the cluster containing the byte after the last one read.
// The caller must hold the lock of the VFat.
func (f *File) readFrom(cluster Cluster, offset int64, buf []byte) (int, Cluster, error) {
	bytesPerCluster := f.fs.geometry.BytesPerCluster()
	inCluster := int(offset % int64(bytesPerCluster))

	read := 0
	for read < len(buf) {
		n, err := f.fs.readCluster(cluster, inCluster, buf[read:])
		read += n
		if err != nil {
			return read, cluster, err
		}

		if inCluster+n < bytesPerCluster {
			break
		}
		inCluster = 0

		entry, err := f.fs.fatEntry(cluster)
		if err != nil {
			return read, cluster, err
		}

		switch status := entry.Status(); status.Kind {
		case StatusData:
			cluster = status.Next
		case StatusEOC:
			if read < len(buf) {
				return read, 0, checkpoint.From(fmt.Errorf("%w: cluster chain ends after %d of %d bytes: %v", ErrInvalidData, offset+int64(read), f.size, io.ErrUnexpectedEOF))
			}
			cluster = 0
		default:
			return read, cluster, f.fs.invalidChain(f.firstCluster, cluster, status)
		}
	}

	return read, cluster, nil
}

// locate returns the cluster containing the byte at offset.
// The caller must hold the lock of the VFat.
func (f *File) locate(offset int64) (Cluster, error) {
	hops := offset / int64(f.fs.geometry.BytesPerCluster())

	cluster := f.firstCluster
	for i := int64(0); i < hops; i++ {
		entry, err := f.fs.fatEntry(cluster)
		if err != nil {
			return 0, err
		}

		status := entry.Status()
		if status.Kind != StatusData {
			return 0, checkpoint.From(fmt.Errorf("%w: cluster chain of %v is too short for offset %d", ErrInvalidInput, f, offset))
		}
		cluster = status.Next
	}

	return cluster, nil
}

// Seek sets the position of the next Read.
// Seeking exactly to the end of the file is allowed. Seeking before the start or
// beyond the end of the file returns ErrInvalidInput.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = f.offset + offset
	case io.SeekEnd:
		target = f.size + offset
	default:
		return f.offset, checkpoint.From(fmt.Errorf("%w: whence %d", ErrInvalidInput, whence))
	}

	if target < 0 || target > f.size {
		return f.offset, checkpoint.From(fmt.Errorf("%w: seek to %d outside of %v", ErrInvalidInput, target, f))
	}

	if target == f.size {
		f.offset = target
		f.cluster = 0
		return target, nil
	}

	f.fs.lock.Lock()
	defer f.fs.lock.Unlock()

	cluster, err := f.locate(target)
	if err != nil {
		return f.offset, err
	}

	f.offset = target
	f.cluster = cluster
	return target, nil
}

// Close does nothing as a File holds no resources besides the mounted VFat.
func (f *File) Close() error {
	return nil
}

// Write is not supported.
func (f *File) Write(p []byte) (int, error) {
	return 0, checkpoint.From(fmt.Errorf("%w: write to %v", ErrUnsupported, f))
}

// WriteAt is not supported.
func (f *File) WriteAt(p []byte, off int64) (int, error) {
	return 0, checkpoint.From(fmt.Errorf("%w: write to %v", ErrUnsupported, f))
}

// Sync is not supported.
func (f *File) Sync() error {
	return checkpoint.From(fmt.Errorf("%w: sync %v", ErrUnsupported, f))
}

// Truncate is not supported.
func (f *File) Truncate(size int64) error {
	return checkpoint.From(fmt.Errorf("%w: truncate %v", ErrUnsupported, f))
}
