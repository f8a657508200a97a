// Package checkpoint decorates errors with the location they passed through,
// which adds up to something similar to a stacktrace when errors are wrapped
// on their way up the call stack.
// Each error added to a checkpoint can still be checked by errors.Is and retrieved by errors.As.
package checkpoint

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"strings"
)

// From marks err with the location of the caller.
// It returns nil if err == nil. io.EOF and io.ErrUnexpectedEOF are returned unchanged
// because callers compare them with == (https://github.com/golang/go/issues/39155).
func From(err error) error {
	if err == nil || err == io.EOF || err == io.ErrUnexpectedEOF {
		return err
	}

	return newCheckpoint(err, nil)
}

// Wrap adds a checkpoint on top of prev which is further described by err.
// It returns nil if prev == nil so that it can be used directly on return values:
//  data, err := readSomething()
//  return data, checkpoint.Wrap(err, ErrSomethingWentWrong)
// Both errors stay visible to errors.Is and errors.As:
//  errors.Is(err, ErrSomethingWentWrong) // true
//  errors.Is(err, io.ErrUnexpectedEOF)   // true if readSomething returned it
// If err is nil the checkpoint only records the location.
func Wrap(prev, err error) error {
	if prev == io.EOF {
		return io.EOF
	}

	if prev == nil {
		return nil
	}

	return newCheckpoint(err, prev)
}

func newCheckpoint(err, prev error) *checkpoint {
	// Skip newCheckpoint and From / Wrap.
	_, file, line, ok := runtime.Caller(2)

	c := &checkpoint{
		err:  err,
		prev: prev,
	}
	if ok {
		c.location = fmt.Sprintf("%s:%d", filepath.Base(file), line)
	}

	return c
}

type checkpoint struct {
	err  error
	prev error

	// location is empty if no caller information was available.
	location string
}

func (c *checkpoint) Error() string {
	location := c.location
	if location == "" {
		location = "unknown"
	}

	var b strings.Builder
	b.WriteString(location)
	if c.err != nil {
		b.WriteString(": ")
		b.WriteString(c.err.Error())
	}

	if c.prev == nil {
		return b.String()
	}

	prev := c.prev.Error()
	if _, ok := c.prev.(*checkpoint); !ok {
		prev = strings.ReplaceAll(prev, "\n", "\n\t")
	}
	b.WriteString("\n\t")
	b.WriteString(prev)

	return b.String()
}

func (c *checkpoint) Unwrap() error {
	if c.prev == nil {
		// From has no cause, expose the error itself.
		return c.err
	}
	return c.prev
}

func (c *checkpoint) Is(target error) bool {
	return c.err != nil && errors.Is(c.err, target)
}

func (c *checkpoint) As(target interface{}) bool {
	return c.err != nil && errors.As(c.err, target)
}
