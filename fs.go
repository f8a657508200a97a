package vfat

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/aligator/vfat/checkpoint"
	"github.com/spf13/afero"
)

// These errors may occur while using the afero.Fs.
var (
	ErrReadFile = errors.New("could not read file")
	ErrReadDir  = errors.New("could not read the directory")
)

// Fs provides a mounted VFat as read-only afero.Fs.
//
// All methods which would modify the filesystem return an *os.PathError wrapping ErrUnsupported.
// Paths are resolved relative to the root, so "a/b" and "/a/b" are the same file.
type Fs struct {
	vfat *VFat
}

// NewFs wraps vfat into an afero.Fs.
func NewFs(vfat *VFat) *Fs {
	return &Fs{vfat: vfat}
}

// VFat returns the underlying filesystem.
func (fs *Fs) VFat() *VFat {
	return fs.vfat
}

// absolute turns any afero path into the absolute path VFat.Open expects.
// Only "/" separates components, a backslash is part of the name.
func absolute(name string) string {
	if strings.HasPrefix(name, "/") {
		return name
	}
	return "/" + name
}

// pathError wraps err into an *os.PathError. Not found errors are replaced by os.ErrNotExist
// so that os.IsNotExist works which does not unwrap errors.
func pathError(op, name string, err error) error {
	if errors.Is(err, ErrNotFound) {
		return &os.PathError{Op: op, Path: name, Err: os.ErrNotExist}
	}
	return &os.PathError{Op: op, Path: name, Err: err}
}

func unsupported(op, name string) error {
	return checkpoint.From(&os.PathError{Op: op, Path: name, Err: ErrUnsupported})
}

func (fs *Fs) Create(name string) (afero.File, error) {
	return nil, unsupported("create", name)
}

func (fs *Fs) Mkdir(name string, perm os.FileMode) error {
	return unsupported("mkdir", name)
}

func (fs *Fs) MkdirAll(path string, perm os.FileMode) error {
	return unsupported("mkdir", path)
}

func (fs *Fs) Open(name string) (afero.File, error) {
	entry, err := fs.vfat.Open(absolute(name))
	if err != nil {
		return nil, pathError("open", name, err)
	}

	return &fsFile{
		path:  name,
		entry: entry,
	}, nil
}

// OpenFile only supports os.O_RDONLY.
func (fs *Fs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if flag&(os.O_WRONLY|os.O_RDWR|os.O_APPEND|os.O_CREATE|os.O_TRUNC) != 0 {
		return nil, unsupported("open", name)
	}
	return fs.Open(name)
}

func (fs *Fs) Remove(name string) error {
	return unsupported("remove", name)
}

func (fs *Fs) RemoveAll(path string) error {
	return unsupported("remove", path)
}

func (fs *Fs) Rename(oldname, newname string) error {
	return unsupported("rename", oldname)
}

func (fs *Fs) Stat(name string) (os.FileInfo, error) {
	entry, err := fs.vfat.Open(absolute(name))
	if err != nil {
		return nil, pathError("stat", name, err)
	}
	return FileInfo(entry), nil
}

func (fs *Fs) Name() string {
	return "vfat"
}

func (fs *Fs) Chmod(name string, mode os.FileMode) error {
	return unsupported("chmod", name)
}

func (fs *Fs) Chown(name string, uid, gid int) error {
	return unsupported("chown", name)
}

func (fs *Fs) Chtimes(name string, atime time.Time, mtime time.Time) error {
	return unsupported("chtimes", name)
}

// fsFile is the afero.File returned by Fs.
type fsFile struct {
	path  string
	entry Entry

	// listing holds the not yet returned directory entries once Readdir has been called.
	listing []os.FileInfo
	listed  bool
}

func (f *fsFile) file() (*File, error) {
	file, ok := f.entry.AsFile()
	if !ok {
		return nil, &os.PathError{Op: "read", Path: f.path, Err: syscall.EISDIR}
	}
	return file, nil
}

func (f *fsFile) Close() error {
	f.listing = nil
	f.listed = false
	return nil
}

func (f *fsFile) Read(p []byte) (int, error) {
	file, err := f.file()
	if err != nil {
		return 0, err
	}

	n, err := file.Read(p)
	if err != nil && err != io.EOF {
		return n, checkpoint.Wrap(err, ErrReadFile)
	}
	return n, err
}

func (f *fsFile) ReadAt(p []byte, off int64) (int, error) {
	file, err := f.file()
	if err != nil {
		return 0, err
	}

	n, err := file.ReadAt(p, off)
	if err != nil && err != io.EOF {
		return n, checkpoint.Wrap(err, ErrReadFile)
	}
	return n, err
}

// Seek on a directory only supports going back to the start which restarts Readdir.
func (f *fsFile) Seek(offset int64, whence int) (int64, error) {
	if file, ok := f.entry.AsFile(); ok {
		return file.Seek(offset, whence)
	}

	if offset != 0 || whence != io.SeekStart {
		return 0, checkpoint.From(fmt.Errorf("%w: seek to %d (whence %d) in directory %q", ErrInvalidInput, offset, whence, f.path))
	}
	f.listing = nil
	f.listed = false
	return 0, nil
}

func (f *fsFile) Write(p []byte) (int, error) {
	return 0, unsupported("write", f.path)
}

func (f *fsFile) WriteAt(p []byte, off int64) (int, error) {
	return 0, unsupported("write", f.path)
}

func (f *fsFile) Name() string {
	return f.path
}

// Readdir reads the content of a directory like os.File.Readdir does.
// The entries "." and ".." as well as the volume label are left out.
// May return syscall.ENOTDIR if the current file is no directory.
func (f *fsFile) Readdir(count int) ([]os.FileInfo, error) {
	dir, ok := f.entry.AsDir()
	if !ok {
		return nil, checkpoint.Wrap(&os.PathError{Op: "readdir", Path: f.path, Err: syscall.ENOTDIR}, ErrReadDir)
	}

	if !f.listed {
		entries, err := dir.ReadDir()
		if err != nil {
			return nil, checkpoint.Wrap(err, ErrReadDir)
		}

		for _, e := range entries {
			if e.Name() == "." || e.Name() == ".." || e.Metadata().Attributes.VolumeID() {
				continue
			}
			f.listing = append(f.listing, FileInfo(e))
		}
		f.listed = true
	}

	if count <= 0 {
		result := f.listing
		f.listing = nil
		return result, nil
	}

	if len(f.listing) == 0 {
		return nil, io.EOF
	}

	if count > len(f.listing) {
		count = len(f.listing)
	}
	result := f.listing[:count]
	f.listing = f.listing[count:]
	return result, nil
}

func (f *fsFile) Readdirnames(count int) ([]string, error) {
	content, err := f.Readdir(count)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(content))
	for i, entry := range content {
		names[i] = entry.Name()
	}

	return names, nil
}

func (f *fsFile) Stat() (os.FileInfo, error) {
	return FileInfo(f.entry), nil
}

func (f *fsFile) Sync() error {
	return unsupported("sync", f.path)
}

func (f *fsFile) Truncate(size int64) error {
	return unsupported("truncate", f.path)
}

func (f *fsFile) WriteString(s string) (int, error) {
	return f.Write([]byte(s))
}
