package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aligator/vfat/internal/testimage"
)

// main for creating the test image testdata/fat32.img. Can be executed using 'go generate' from the project root.
func main() {
	dest := "testdata"
	if len(os.Args) > 1 {
		dest = os.Args[1]
	}

	if err := os.MkdirAll(dest, 0o755); err != nil {
		panic(err)
	}

	readme := []byte("# vfat test image\n\nThis image was created by cmd/generate. Do not edit it by hand.\n")

	// A file spanning several clusters to be able to check seeking and reading across cluster borders.
	var long bytes.Buffer
	for i := 0; long.Len() < 5000; i++ {
		fmt.Fprintf(&long, "line %04d of a file which is longer than one cluster\n", i)
	}

	entries := []testimage.Entry{
		{Path: "/README.md", Content: readme},
		{Path: "/DoNotEdit_tests", Dir: true},
		{Path: "/DoNotEdit_tests/HelloWorldThisIsALoongFileName.txt", Content: []byte("Hello World!\n")},
		{Path: "/DoNotEdit_tests/long.txt", Content: long.Bytes()},
		{Path: "/DoNotEdit_tests/sub/empty.txt"},
	}

	file := filepath.Join(dest, "fat32.img")
	if err := testimage.Create(file, 64*1024*1024, "VFATTEST", entries); err != nil {
		panic(err)
	}

	fmt.Println("created", file)
}
