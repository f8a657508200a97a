package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/aligator/vfat"
)

// absolute makes p absolute by prefixing it with cwd.
// "." and ".." stay in place, VFat.Open resolves them against the entries which actually exist.
func absolute(cwd, p string) string {
	switch {
	case p == "":
		return cwd
	case strings.HasPrefix(p, "/"):
		return p
	case strings.HasSuffix(cwd, "/"):
		return cwd + p
	default:
		return cwd + "/" + p
	}
}

// visible reports whether ls shows the entry without -a.
func visible(e vfat.Entry) bool {
	attributes := e.Metadata().Attributes
	if attributes.Hidden() || attributes.VolumeID() {
		return false
	}
	return e.Name() != "." && e.Name() != ".."
}

func formatEntry(e vfat.Entry) string {
	size := int64(0)
	if f, ok := e.AsFile(); ok {
		size = f.Size()
	}

	name := e.Name()
	if e.IsDir() {
		name += "/"
	}

	return fmt.Sprintf("%v  %v  %10d  %s", e.Metadata().Attributes, e.Metadata().Modified, size, name)
}

func list(w io.Writer, fs *vfat.VFat, p string, all bool) error {
	entry, err := fs.Open(p)
	if err != nil {
		return err
	}

	dir, ok := entry.AsDir()
	if !ok {
		_, err := fmt.Fprintln(w, formatEntry(entry))
		return err
	}

	entries, err := dir.ReadDir()
	if err != nil {
		return err
	}

	for _, e := range entries {
		if !all && !visible(e) {
			continue
		}
		if _, err := fmt.Fprintln(w, formatEntry(e)); err != nil {
			return err
		}
	}
	return nil
}

func cat(w io.Writer, fs *vfat.VFat, p string) error {
	entry, err := fs.Open(p)
	if err != nil {
		return err
	}

	file, ok := entry.AsFile()
	if !ok {
		return fmt.Errorf("%s is a directory", p)
	}

	content, err := io.ReadAll(file)
	if err != nil {
		return err
	}

	if utf8.Valid(content) {
		_, err = w.Write(content)
		return err
	}

	_, err = io.WriteString(w, hex.Dump(content))
	return err
}

func stat(w io.Writer, fs *vfat.VFat, p string) error {
	entry, err := fs.Open(p)
	if err != nil {
		return err
	}

	info := vfat.FileInfo(entry)
	meta := entry.Metadata()
	_, err = fmt.Fprintf(w, `name:       %s
short name: %s
long name:  %s
size:       %d
mode:       %v
cluster:    %d
created:    %v
accessed:   %04d-%02d-%02d
modified:   %v
`, entry.Name(), entry.ShortName(), entry.LongName(), info.Size(), info.Mode(), meta.FirstCluster(),
		meta.Created, meta.Accessed.Year(), meta.Accessed.Month(), meta.Accessed.Day(), meta.Modified)
	return err
}

func tree(w io.Writer, fs *vfat.VFat, p string) error {
	entry, err := fs.Open(p)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintln(w, path.Clean(p)); err != nil {
		return err
	}

	dir, ok := entry.AsDir()
	if !ok {
		return nil
	}

	visited := map[vfat.Cluster]bool{dir.FirstCluster(): true}
	return printTree(w, dir, "", visited)
}

func printTree(w io.Writer, dir *vfat.Dir, indent string, visited map[vfat.Cluster]bool) error {
	entries, err := dir.ReadDir()
	if err != nil {
		return err
	}

	var shown []vfat.Entry
	for _, e := range entries {
		if visible(e) {
			shown = append(shown, e)
		}
	}

	for i, e := range shown {
		branch, next := "├── ", "│   "
		if i == len(shown)-1 {
			branch, next = "└── ", "    "
		}

		if _, err := fmt.Fprintln(w, indent+branch+e.Name()); err != nil {
			return err
		}

		sub, ok := e.AsDir()
		if !ok || visited[sub.FirstCluster()] {
			continue
		}
		visited[sub.FirstCluster()] = true

		if err := printTree(w, sub, indent+next, visited); err != nil {
			return err
		}
	}
	return nil
}
