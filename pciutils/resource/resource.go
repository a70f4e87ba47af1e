// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

// Package resource provides little-endian register access to PCI resource
// files, either memory-mapped or through positioned file I/O.
package resource

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/ironcore-dev/pci-utils/pciutils/pci"
)

// Resource reads and writes 8, 16 and 32-bit registers of a Region.
//
// Addresses are logical: a region mapped from a non-zero start offset is
// addressed starting at that offset. The checked accessors validate
// alignment, bounds and value width; the Unchecked variants skip all of it
// and accessing outside the region through them is undefined.
//
// A Resource is not safe for concurrent use.
type Resource struct {
	region Region
	base   int64
}

// New returns a Resource over region whose first byte is at logical address base.
func New(region Region, base int64) *Resource {
	return &Resource{region: region, base: base}
}

func (r *Resource) Region() Region { return r.region }

// Base returns the logical address of the first byte of the region.
func (r *Resource) Base() int64 { return r.base }

// Len returns the size of the region; 0 means the size is unknown and the
// upper bound is not checked.
func (r *Resource) Len() int64 { return r.region.Len() }

func (r *Resource) Close() error {
	return r.region.Close()
}

func (r *Resource) check(op string, addr, span, align int64) error {
	length := r.region.Len()
	off := addr - r.base
	if addr < r.base || span < 0 || (length != 0 && (off > length || span > length-off)) {
		return &AccessError{Op: op, Addr: addr, Width: span, Length: length, Err: pci.ErrRange}
	}
	if align > 1 && addr%align != 0 {
		return &AccessError{Op: op, Addr: addr, Width: align, Length: length, Err: pci.ErrAlignment}
	}
	return nil
}

func checkValue(op string, addr int64, value uint64, width int64, max uint64) error {
	if value > max {
		return &AccessError{Op: op, Addr: addr, Width: width, Value: value, Err: pci.ErrValueRange}
	}
	return nil
}

func (r *Resource) Read8(addr int64) (uint8, error) {
	if err := r.check("read8", addr, 1, 1); err != nil {
		return 0, err
	}
	return r.Read8Unchecked(addr)
}

func (r *Resource) Read16(addr int64) (uint16, error) {
	if err := r.check("read16", addr, 2, 2); err != nil {
		return 0, err
	}
	return r.Read16Unchecked(addr)
}

func (r *Resource) Read32(addr int64) (uint32, error) {
	if err := r.check("read32", addr, 4, 4); err != nil {
		return 0, err
	}
	return r.Read32Unchecked(addr)
}

func (r *Resource) Write8(addr int64, value uint64) error {
	if err := r.check("write8", addr, 1, 1); err != nil {
		return err
	}
	if err := checkValue("write8", addr, value, 1, math.MaxUint8); err != nil {
		return err
	}
	return r.Write8Unchecked(addr, value)
}

func (r *Resource) Write16(addr int64, value uint64) error {
	if err := r.check("write16", addr, 2, 2); err != nil {
		return err
	}
	if err := checkValue("write16", addr, value, 2, math.MaxUint16); err != nil {
		return err
	}
	return r.Write16Unchecked(addr, value)
}

func (r *Resource) Write32(addr int64, value uint64) error {
	if err := r.check("write32", addr, 4, 4); err != nil {
		return err
	}
	if err := checkValue("write32", addr, value, 4, math.MaxUint32); err != nil {
		return err
	}
	return r.Write32Unchecked(addr, value)
}

func (r *Resource) Read8Unchecked(addr int64) (uint8, error) {
	var b [1]byte
	if err := r.region.Load(addr-r.base, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Resource) Read16Unchecked(addr int64) (uint16, error) {
	var b [2]byte
	if err := r.region.Load(addr-r.base, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b[:]), nil
}

func (r *Resource) Read32Unchecked(addr int64) (uint32, error) {
	var b [4]byte
	if err := r.region.Load(addr-r.base, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

// Write8Unchecked writes the low 8 bits of value.
func (r *Resource) Write8Unchecked(addr int64, value uint64) error {
	return r.region.Store(addr-r.base, []byte{uint8(value)})
}

// Write16Unchecked writes the low 16 bits of value.
func (r *Resource) Write16Unchecked(addr int64, value uint64) error {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], uint16(value))
	return r.region.Store(addr-r.base, b[:])
}

// Write32Unchecked writes the low 32 bits of value.
func (r *Resource) Write32Unchecked(addr int64, value uint64) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(value))
	return r.region.Store(addr-r.base, b[:])
}

// ReadBytes copies len(p) bytes starting at addr into p.
func (r *Resource) ReadBytes(addr int64, p []byte) error {
	if err := r.check("read", addr, int64(len(p)), 1); err != nil {
		return err
	}
	return r.region.Load(addr-r.base, p)
}

// WriteBytes copies p into the region starting at addr.
func (r *Resource) WriteBytes(addr int64, p []byte) error {
	if err := r.check("write", addr, int64(len(p)), 1); err != nil {
		return err
	}
	return r.region.Store(addr-r.base, p)
}

// Gather fills p with every stride-th byte starting at addr. Regions backed
// by positioned file I/O only support a stride of 1.
func (r *Resource) Gather(addr, stride int64, p []byte) error {
	if len(p) == 0 {
		return nil
	}
	if stride < 1 {
		return fmt.Errorf("gather: %w: stride %d", pci.ErrUnsupportedOperation, stride)
	}
	if err := r.check("gather", addr, 1, 1); err != nil {
		return err
	}
	// the last byte read is at off+(len(p)-1)*stride, which may not fit an int64
	if length, off := r.region.Len(), addr-r.base; length != 0 && int64(len(p)-1) > (length-off-1)/stride {
		return &AccessError{Op: "gather", Addr: addr, Width: int64(len(p)), Length: length, Err: pci.ErrRange}
	}
	return r.region.Gather(addr-r.base, stride, p)
}
