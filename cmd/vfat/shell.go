package main

import (
	"bufio"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aligator/vfat"
)

// shell is a small interactive shell working on a mounted filesystem.
// Errors of single commands are printed and do not end the session.
type shell struct {
	fs  *vfat.VFat
	out io.Writer
	cwd string
}

func newShell(fs *vfat.VFat, out io.Writer) *shell {
	return &shell{
		fs:  fs,
		out: out,
		cwd: "/",
	}
}

func (s *shell) prompt() {
	fmt.Fprintf(s.out, "%s> ", s.cwd)
}

// run executes one command per line of in until it ends or "exit" is read.
func (s *shell) run(in io.Reader) error {
	scanner := bufio.NewScanner(in)

	s.prompt()
	for scanner.Scan() {
		args := strings.Fields(scanner.Text())
		if len(args) > 0 {
			if args[0] == "exit" {
				return nil
			}

			if err := s.exec(args[0], args[1:]); err != nil {
				fmt.Fprintf(s.out, "error: %v\n", err)
			}
		}
		s.prompt()
	}

	return scanner.Err()
}

func (s *shell) exec(cmd string, args []string) error {
	switch cmd {
	case "echo":
		_, err := fmt.Fprintln(s.out, strings.Join(args, " "))
		return err
	case "pwd":
		_, err := fmt.Fprintln(s.out, s.cwd)
		return err
	case "cd":
		return s.cd(args)
	case "ls":
		return s.ls(args)
	case "cat":
		if len(args) == 0 {
			return fmt.Errorf("usage: cat <path>...")
		}
		for _, p := range args {
			if err := cat(s.out, s.fs, absolute(s.cwd, p)); err != nil {
				return err
			}
		}
		return nil
	case "stat":
		if len(args) != 1 {
			return fmt.Errorf("usage: stat <path>")
		}
		return stat(s.out, s.fs, absolute(s.cwd, args[0]))
	case "info":
		return printInfo(s.out, s.fs)
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func (s *shell) cd(args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("usage: cd [path]")
	}

	target := "/"
	if len(args) == 1 {
		target = absolute(s.cwd, args[0])
	}

	entry, err := s.fs.Open(target)
	if err != nil {
		return err
	}
	if !entry.IsDir() {
		return fmt.Errorf("%s is no directory", target)
	}

	// Open succeeded, so every component exists and cleaning gives the same directory.
	s.cwd = path.Clean(target)
	return nil
}

func (s *shell) ls(args []string) error {
	all := false
	var paths []string
	for _, arg := range args {
		if arg == "-a" {
			all = true
			continue
		}
		paths = append(paths, arg)
	}

	if len(paths) > 1 {
		return fmt.Errorf("usage: ls [-a] [path]")
	}

	target := s.cwd
	if len(paths) == 1 {
		target = absolute(s.cwd, paths[0])
	}
	return list(s.out, s.fs, target, all)
}
