// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package pci

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/siderolabs/go-pcidb/pkg/pcidb"
)

var idPattern = regexp.MustCompile(`^([0-9a-fA-F]+):([0-9a-fA-F]+)$`)

// IDFields is implemented by any value that carries a vendor/device pair.
type IDFields interface {
	Vendor() uint16
	Device() uint16
}

// ID is a PCI vendor/device (or subsystem vendor/device) pair.
type ID struct {
	vendor uint16
	device uint16
}

func NewID(vendor, device uint) (ID, error) {
	if vendor > 0xffff {
		return ID{}, fmt.Errorf("%w: PCI vendor 0x%x should be in range [0..0xffff]", ErrRange, vendor)
	}
	if device > 0xffff {
		return ID{}, fmt.Errorf("%w: PCI device 0x%x should be in range [0..0xffff]", ErrRange, device)
	}

	return ID{vendor: uint16(vendor), device: uint16(device)}, nil
}

// ParseID parses an ID of the form VVVV:DDDD.
func ParseID(s string) (ID, error) {
	m := idPattern.FindStringSubmatch(s)
	if m == nil {
		return ID{}, fmt.Errorf("%w: %q is not a PCI ID", ErrFormat, s)
	}

	vendor, err := parseHex(m[1])
	if err != nil {
		return ID{}, fmt.Errorf("%w: PCI ID %q: %w", ErrRange, s, err)
	}
	device, err := parseHex(m[2])
	if err != nil {
		return ID{}, fmt.Errorf("%w: PCI ID %q: %w", ErrRange, s, err)
	}

	return NewID(vendor, device)
}

// MustParseID is like ParseID but panics on error.
func MustParseID(s string) ID {
	id, err := ParseID(s)
	if err != nil {
		panic(err)
	}
	return id
}

func IDFrom(v IDFields) (ID, error) {
	return NewID(uint(v.Vendor()), uint(v.Device()))
}

func (i ID) Vendor() uint16 { return i.vendor }
func (i ID) Device() uint16 { return i.device }

func (i ID) String() string {
	return fmt.Sprintf("%04x:%04x", i.vendor, i.device)
}

func (i ID) Equal(o ID) bool {
	return i == o
}

// Compare orders IDs lexicographically by their canonical form.
func (i ID) Compare(o ID) int {
	return strings.Compare(i.String(), o.String())
}

func (i ID) Less(o ID) bool {
	return i.Compare(o) < 0
}

// VendorName looks up the vendor in the PCI ID database.
func (i ID) VendorName() (string, bool) {
	return pcidb.LookupVendor(i.vendor)
}

// ProductName looks up the device in the PCI ID database.
func (i ID) ProductName() (string, bool) {
	return pcidb.LookupProduct(i.vendor, i.device)
}

func (i ID) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

func (i *ID) UnmarshalText(text []byte) error {
	id, err := ParseID(string(text))
	if err != nil {
		return err
	}
	*i = id
	return nil
}

func parseHex(s string) (uint, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, err
	}
	return uint(v), nil
}
