// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

//go:build unix

package resource

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"unsafe"

	"github.com/ironcore-dev/pci-utils/pciutils/pci"
	"golang.org/x/sys/unix"
)

// MapOptions selects the part of a resource file to map.
type MapOptions struct {
	ReadOnly bool
	// Start must be a multiple of the page size.
	Start int64
	// End defaults to the size of the file when zero.
	End int64
}

// Mapping is a Region backed by a shared memory mapping of a resource file.
type Mapping struct {
	path     string
	data     []byte
	start    int64
	length   int64
	readOnly bool
}

// Map maps [opts.Start, opts.End) of the file at path into memory.
func Map(path string, opts MapOptions) (*Mapping, error) {
	pageSize := int64(unix.Getpagesize())
	if opts.Start < 0 || opts.Start%pageSize != 0 {
		return nil, fmt.Errorf("%w: start offset %#x must be aligned to %#x", pci.ErrAlignment, opts.Start, pageSize)
	}

	flag, prot := os.O_RDWR, unix.PROT_READ|unix.PROT_WRITE
	if opts.ReadOnly {
		flag, prot = os.O_RDONLY, unix.PROT_READ
	}

	file, err := os.OpenFile(path, flag, 0)
	if err != nil {
		return nil, fmt.Errorf("open resource file: %w", err)
	}
	// the mapping stays valid once the descriptor is closed
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat resource file: %w", err)
	}

	size := info.Size()
	end := opts.End
	if end == 0 {
		end = size
	}
	if end < opts.Start || (size > 0 && end > size) {
		return nil, fmt.Errorf("%w: mapping [%#x, %#x) of %s (file size %#x)", pci.ErrRange, opts.Start, end, path, size)
	}

	length := end - opts.Start
	data, err := unix.Mmap(int(file.Fd()), opts.Start, int(length), prot, unix.MAP_SHARED)
	if err != nil {
		if errors.Is(err, unix.EINVAL) || errors.Is(err, unix.ENODEV) || errors.Is(err, unix.ENXIO) {
			return nil, fmt.Errorf("%w %s (is it an I/O region rather than a memory region?): %w",
				pci.ErrUnsupportedMapping, path, err)
		}
		return nil, fmt.Errorf("mmap: %w", err)
	}

	return &Mapping{
		path:     path,
		data:     data,
		start:    opts.Start,
		length:   length,
		readOnly: opts.ReadOnly,
	}, nil
}

func (m *Mapping) Path() string { return m.path }

// Offset returns the file offset the mapping starts at.
func (m *Mapping) Offset() int64 { return m.start }

// Len returns the mapped size. It keeps reporting it after Unmap.
func (m *Mapping) Len() int64 { return m.length }

// Load performs a single 16 or 32-bit load when p has that width and off is
// aligned to it, so that device registers see one access of the right size.
func (m *Mapping) Load(off int64, p []byte) error {
	if m.data == nil {
		return ErrNotMapped
	}

	b := m.data[off : off+int64(len(p))]
	switch {
	case len(p) == 2 && off%2 == 0:
		binary.NativeEndian.PutUint16(p, *(*uint16)(unsafe.Pointer(&b[0])))
	case len(p) == 4 && off%4 == 0:
		binary.NativeEndian.PutUint32(p, *(*uint32)(unsafe.Pointer(&b[0])))
	default:
		copy(p, b)
	}
	return nil
}

func (m *Mapping) Store(off int64, p []byte) error {
	if m.data == nil {
		return ErrNotMapped
	}
	if m.readOnly {
		return ErrReadOnly
	}

	b := m.data[off : off+int64(len(p))]
	switch {
	case len(p) == 2 && off%2 == 0:
		*(*uint16)(unsafe.Pointer(&b[0])) = binary.NativeEndian.Uint16(p)
	case len(p) == 4 && off%4 == 0:
		*(*uint32)(unsafe.Pointer(&b[0])) = binary.NativeEndian.Uint32(p)
	default:
		copy(b, p)
	}
	return nil
}

func (m *Mapping) Gather(off, stride int64, p []byte) error {
	if m.data == nil {
		return ErrNotMapped
	}
	if stride < 1 {
		return fmt.Errorf("%w: stride %d", pci.ErrUnsupportedOperation, stride)
	}

	for i := range p {
		p[i] = m.data[off+int64(i)*stride]
	}
	return nil
}

// Sync flushes changes to the mapped memory back to the file.
func (m *Mapping) Sync() error {
	if m.data == nil {
		return ErrNotMapped
	}
	return unix.Msync(m.data, unix.MS_SYNC)
}

// Unmap releases the mapping. It is safe to call more than once.
func (m *Mapping) Unmap() error {
	if m.data == nil {
		return nil
	}

	data := m.data
	m.data = nil
	if err := unix.Munmap(data); err != nil {
		return fmt.Errorf("munmap: %w", err)
	}
	return nil
}

func (m *Mapping) Close() error {
	return m.Unmap()
}
