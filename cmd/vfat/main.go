package main

import (
	"fmt"
	"io"
	"os"

	"github.com/aligator/vfat"
	"github.com/aligator/vfat/blockdev"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:    "vfat",
		Usage:   "inspect FAT32 disk images and block devices without modifying them",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "image",
				Aliases:  []string{"i"},
				Usage:    "disk image or block device containing an MBR with a FAT32 partition",
				EnvVars:  []string{"VFAT_IMAGE"},
				Required: true,
			},
			&cli.Uint64Flag{
				Name:    "sector-size",
				Usage:   "sector size of the device in bytes, 0 detects it",
				EnvVars: []string{"VFAT_SECTOR_SIZE"},
			},
			&cli.BoolFlag{
				Name:  "skip-checks",
				Usage: "skip boot sector validations which are not needed to read the filesystem",
			},
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "enable debug logging",
				EnvVars: []string{"VFAT_DEBUG"},
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("debug") {
				logrus.SetLevel(logrus.DebugLevel)
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "info",
				Usage:  "print the volume label and the partition geometry",
				Action: withFs(info),
			},
			{
				Name:      "ls",
				Usage:     "list a directory",
				ArgsUsage: "[path]",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "all", Aliases: []string{"a"}, Usage: "also list hidden entries, . and .."},
				},
				Action: withFs(func(c *cli.Context, fs *vfat.VFat) error {
					return list(c.App.Writer, fs, absolute("/", c.Args().First()), c.Bool("all"))
				}),
			},
			{
				Name:      "cat",
				Usage:     "print the content of files, binary files are printed as hex dump",
				ArgsUsage: "path...",
				Action: withFs(func(c *cli.Context, fs *vfat.VFat) error {
					for _, p := range c.Args().Slice() {
						if err := cat(c.App.Writer, fs, absolute("/", p)); err != nil {
							return err
						}
					}
					return nil
				}),
			},
			{
				Name:      "stat",
				Usage:     "print the metadata of an entry",
				ArgsUsage: "path",
				Action: withFs(func(c *cli.Context, fs *vfat.VFat) error {
					return stat(c.App.Writer, fs, absolute("/", c.Args().First()))
				}),
			},
			{
				Name:      "tree",
				Usage:     "print a directory recursively",
				ArgsUsage: "[path]",
				Action: withFs(func(c *cli.Context, fs *vfat.VFat) error {
					return tree(c.App.Writer, fs, absolute("/", c.Args().First()))
				}),
			},
			{
				Name:  "shell",
				Usage: "start an interactive shell",
				Action: withFs(func(c *cli.Context, fs *vfat.VFat) error {
					return newShell(fs, c.App.Writer).run(c.App.Reader)
				}),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}

// withFs mounts the image given by the global flags for the duration of action.
func withFs(action func(c *cli.Context, fs *vfat.VFat) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		device, err := blockdev.Open(c.String("image"), c.Uint64("sector-size"))
		if err != nil {
			return err
		}
		defer device.Close()

		opts := []vfat.Option{vfat.WithLogger(logrus.StandardLogger())}
		if c.Bool("skip-checks") {
			opts = append(opts, vfat.WithSkipChecks())
		}

		fs, err := vfat.Mount(device, opts...)
		if err != nil {
			return fmt.Errorf("could not mount %s: %w", c.String("image"), err)
		}

		return action(c, fs)
	}
}

func info(c *cli.Context, fs *vfat.VFat) error {
	return printInfo(c.App.Writer, fs)
}

func printInfo(w io.Writer, fs *vfat.VFat) error {
	g := fs.Geometry()
	_, err := fmt.Fprintf(w, `label:               %s
partition:           %d
partition start:     %d
bytes per sector:    %d
sectors per cluster: %d
sectors per FAT:     %d
FAT start sector:    %d
data start sector:   %d
root cluster:        %d
`, fs.Label(), g.Partition, g.PartitionStart, g.BytesPerSector, g.SectorsPerCluster, g.SectorsPerFAT, g.FATStartSector, g.DataStartSector, g.RootCluster)
	return err
}
