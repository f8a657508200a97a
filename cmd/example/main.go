package main

import (
	"fmt"
	"io"
	"os"

	"github.com/aligator/vfat"
	"github.com/aligator/vfat/blockdev"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// main is just an example to play with vfat.
// It expects an image with a file README.md in the root directory, as built by cmd/generate.
func main() {
	if len(os.Args) < 2 {
		fmt.Println("usage: example <image>")
		os.Exit(1)
	}

	if err := run(os.Args[1]); err != nil {
		logrus.Fatal(err)
	}
}

func run(image string) error {
	device, err := blockdev.Open(image, 0)
	if err != nil {
		return err
	}
	defer device.Close()

	mounted, err := vfat.Mount(device)
	if err != nil {
		return errors.Wrapf(err, "could not mount %s", image)
	}
	fmt.Printf("Volume %q on partition %d\n\n", mounted.Label(), mounted.Geometry().Partition)

	fat := vfat.NewFs(mounted)
	err = afero.Walk(fat, "/", func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		fmt.Printf("%-50s %5v %v\n", path, info.IsDir(), info.ModTime())
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "walk")
	}

	readme, err := fat.Open("README.md")
	if err != nil {
		return err
	}
	defer readme.Close()

	info, err := readme.Stat()
	if err != nil {
		return err
	}

	content, err := afero.ReadAll(readme)
	if err != nil {
		return errors.Wrapf(err, "read %s", info.Name())
	}
	fmt.Printf("\n%s (%d bytes):\n\n%s\n", info.Name(), info.Size(), content)

	// Jump back into the middle and read a small chunk.
	middle, err := readme.Seek(info.Size()/2, io.SeekStart)
	if err != nil {
		return errors.Wrap(err, "seek")
	}

	chunk := make([]byte, 52)
	n, err := readme.Read(chunk)
	if err != nil && err != io.EOF {
		return errors.Wrapf(err, "read %s at %d", info.Name(), middle)
	}
	fmt.Printf("\n%d bytes from offset %d:\n\n%s\n", n, middle, chunk[:n])
	return nil
}
