// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package resource

import (
	"fmt"
	"io"
	"os"

	"github.com/ironcore-dev/pci-utils/pciutils/pci"
)

// File is a Region for resource files that cannot be memory-mapped, such as
// the configuration space of most devices. Every access is a positioned read
// or write on the open file. *os.File keeps no user-space buffer and writable
// files are opened with O_SYNC, so a store is visible to other readers of the
// same file as soon as it returns.
type File struct {
	f        *os.File
	path     string
	readOnly bool
	closed   bool
}

func OpenFile(path string, readOnly bool) (*File, error) {
	flag := os.O_RDWR | os.O_SYNC
	if readOnly {
		flag = os.O_RDONLY
	}

	f, err := os.OpenFile(path, flag, 0)
	if err != nil {
		return nil, fmt.Errorf("open resource file: %w", err)
	}

	return &File{
		f:        f,
		path:     path,
		readOnly: readOnly,
	}, nil
}

func (f *File) Path() string { return f.path }

// Len returns the current size of the file, or 0 if it cannot be determined.
func (f *File) Len() int64 {
	info, err := f.f.Stat()
	if err != nil {
		return 0
	}
	return info.Size()
}

func (f *File) Load(off int64, p []byte) error {
	n, err := f.f.ReadAt(p, off)
	if n == len(p) {
		return nil
	}
	if err == nil {
		err = io.ErrUnexpectedEOF
	}
	return fmt.Errorf("read %d bytes at %#x from %s: %w", len(p), off, f.path, err)
}

func (f *File) Store(off int64, p []byte) error {
	if f.readOnly {
		return ErrReadOnly
	}
	if _, err := f.f.WriteAt(p, off); err != nil {
		return fmt.Errorf("write %d bytes at %#x to %s: %w", len(p), off, f.path, err)
	}
	return nil
}

// Gather only supports contiguous ranges.
func (f *File) Gather(off, stride int64, p []byte) error {
	if stride != 1 {
		return fmt.Errorf("%w: stride %d on %s, only contiguous ranges can be read", pci.ErrUnsupportedOperation, stride, f.path)
	}
	return f.Load(off, p)
}

func (f *File) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	return f.f.Close()
}
