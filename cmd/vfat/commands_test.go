package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aligator/vfat"
	"github.com/aligator/vfat/blockdev"
	"github.com/aligator/vfat/internal/testimage"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFs(t *testing.T) *vfat.VFat {
	t.Helper()

	file := filepath.Join(t.TempDir(), "fat32.img")
	err := testimage.Create(file, 64*1024*1024, "CMDTEST", []testimage.Entry{
		{Path: "/README.md", Content: []byte("# readme\n")},
		{Path: "/docs", Dir: true},
		{Path: "/docs/hello.txt", Content: []byte("Hello World!\n")},
		{Path: "/docs/binary.bin", Content: []byte{0xff, 0xfe, 0x00, 0x01}},
		{Path: "/docs/sub", Dir: true},
	})
	require.NoError(t, err)

	device, err := blockdev.Open(file, 0)
	require.NoError(t, err)
	t.Cleanup(func() { device.Close() })

	log, _ := test.NewNullLogger()
	fs, err := vfat.Mount(device, vfat.WithLogger(log))
	require.NoError(t, err)
	return fs
}

func TestAbsolute(t *testing.T) {
	tests := []struct {
		name string
		cwd  string
		p    string
		want string
	}{
		{name: "empty", cwd: "/a", p: "", want: "/a"},
		{name: "absolute", cwd: "/a", p: "/b/c", want: "/b/c"},
		{name: "relative", cwd: "/a", p: "b", want: "/a/b"},
		{name: "relative to the root", cwd: "/", p: "b", want: "/b"},
		{name: "dot dot is kept", cwd: "/a/b", p: "../c", want: "/a/b/../c"},
		{name: "dot is kept", cwd: "/a", p: "./b/", want: "/a/./b/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, absolute(tt.cwd, tt.p))
		})
	}
}

func TestList(t *testing.T) {
	fs := testFs(t)

	var out bytes.Buffer
	require.NoError(t, list(&out, fs, "/docs", false))
	listing := strings.ToLower(out.String())
	assert.Contains(t, listing, "hello.txt")
	assert.Contains(t, listing, "sub/")
	assert.NotContains(t, listing, " ./")

	out.Reset()
	require.NoError(t, list(&out, fs, "/docs", true))
	assert.Contains(t, out.String(), " ./")
	assert.Contains(t, out.String(), " ../")

	out.Reset()
	require.NoError(t, list(&out, fs, "/docs/hello.txt", false))
	assert.Equal(t, 1, strings.Count(out.String(), "\n"))

	assert.Error(t, list(&out, fs, "/missing", false))
}

func TestCat(t *testing.T) {
	fs := testFs(t)

	var out bytes.Buffer
	require.NoError(t, cat(&out, fs, "/docs/hello.txt"))
	assert.Equal(t, "Hello World!\n", out.String())

	out.Reset()
	require.NoError(t, cat(&out, fs, "/docs/binary.bin"))
	assert.Contains(t, out.String(), "ff fe 00 01")

	assert.Error(t, cat(&out, fs, "/docs"))
}

func TestStatAndTree(t *testing.T) {
	fs := testFs(t)

	var out bytes.Buffer
	require.NoError(t, stat(&out, fs, "/docs/hello.txt"))
	assert.Contains(t, out.String(), "size:       13\n")
	assert.Contains(t, out.String(), "mode:       -r--r--r--\n")

	out.Reset()
	require.NoError(t, tree(&out, fs, "/"))
	lines := strings.Split(strings.ToLower(out.String()), "\n")
	assert.Equal(t, "/", lines[0])
	assert.Contains(t, lines, "└── docs")
	assert.Contains(t, lines, "    ├── hello.txt")
	assert.Contains(t, lines, "    └── sub")
}

func TestPrintInfo(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printInfo(&out, testFs(t)))

	assert.Contains(t, out.String(), "partition start:     2048\n")
	assert.Contains(t, out.String(), "root cluster:        2\n")
}
