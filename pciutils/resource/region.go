// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package resource

import (
	"errors"
	"fmt"

	"github.com/ironcore-dev/pci-utils/pciutils/pci"
)

var (
	ErrNotMapped = errors.New("region not mapped")
	ErrReadOnly  = errors.New("region is read-only")
)

// Region is a byte-addressable view of a resource file. Offsets are relative
// to the first byte of the region.
type Region interface {
	// Load fills p with the bytes starting at off.
	Load(off int64, p []byte) error
	// Store writes p starting at off.
	Store(off int64, p []byte) error
	// Gather fills p with every stride-th byte starting at off.
	Gather(off, stride int64, p []byte) error
	// Len returns the size of the region, or 0 if it is unknown.
	Len() int64
	Close() error
}

// AccessError describes a rejected register access.
type AccessError struct {
	Op     string
	Addr   int64
	Width  int64
	Length int64
	Value  uint64
	Err    error
}

func (e *AccessError) Error() string {
	switch e.Err {
	case pci.ErrAlignment:
		return fmt.Sprintf("%s: address 0x%08x is not a multiple of %d", e.Op, e.Addr, e.Width)
	case pci.ErrValueRange:
		return fmt.Sprintf("%s: value %#x out of range for %d-bit access", e.Op, e.Value, e.Width*8)
	default:
		return fmt.Sprintf("%s: address 0x%08x out of range (resource size 0x%08x)", e.Op, e.Addr, e.Length)
	}
}

func (e *AccessError) Unwrap() error {
	return e.Err
}
