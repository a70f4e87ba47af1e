// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package pci

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	MaxBus      = 0x100
	MaxSlot     = 0x1f
	MaxFunction = 0x7
)

var addressPattern = regexp.MustCompile(
	`^(?:(?:([0-9a-fA-F]+):)?([0-9a-fA-F]+):)?([0-9a-fA-F]+)(?:\.([0-9a-fA-F]+))?$`,
)

// AddressFields is implemented by any value that carries the four components
// of a PCI address. Address implements it as well.
type AddressFields interface {
	Domain() uint16
	Bus() uint16
	Slot() uint8
	Function() uint8
}

// Address identifies a PCI function by its position in the bus topology.
// The zero value is 0000:00:00.0.
type Address struct {
	domain   uint16
	bus      uint16
	slot     uint8
	function uint8
}

// NewAddress returns the address for the given components, failing with
// ErrRange if bus, slot or function exceed their bounds.
func NewAddress(domain, bus, slot, function uint) (Address, error) {
	switch {
	case domain > 0xffff:
		return Address{}, fmt.Errorf("%w: PCI domain 0x%x should be in range [0..0xffff]", ErrRange, domain)
	case bus > MaxBus:
		return Address{}, fmt.Errorf("%w: PCI bus 0x%x should be in range [0..0x%x]", ErrRange, bus, MaxBus)
	case slot > MaxSlot:
		return Address{}, fmt.Errorf("%w: PCI slot 0x%x should be in range [0..0x%x]", ErrRange, slot, MaxSlot)
	case function > MaxFunction:
		return Address{}, fmt.Errorf("%w: PCI function 0x%x should be in range [0..0x%x]", ErrRange, function, MaxFunction)
	}

	return Address{
		domain:   uint16(domain),
		bus:      uint16(bus),
		slot:     uint8(slot),
		function: uint8(function),
	}, nil
}

// ParseAddress parses an address of the form [[DDDD:]BB:]SS[.F]. Every
// component is hexadecimal, omitted components default to zero.
func ParseAddress(s string) (Address, error) {
	m := addressPattern.FindStringSubmatch(s)
	if m == nil {
		return Address{}, fmt.Errorf("%w: %q is not a PCI address", ErrFormat, s)
	}

	var fields [4]uint
	for i, part := range m[1:] {
		v, err := parseHex(part)
		if err != nil {
			return Address{}, fmt.Errorf("%w: PCI address %q: %w", ErrRange, s, err)
		}
		fields[i] = v
	}

	return NewAddress(fields[0], fields[1], fields[2], fields[3])
}

// MustParseAddress is like ParseAddress but panics on error.
func MustParseAddress(s string) Address {
	addr, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return addr
}

// AddressFrom copies the fields of another address-like value, validating them.
func AddressFrom(v AddressFields) (Address, error) {
	return NewAddress(uint(v.Domain()), uint(v.Bus()), uint(v.Slot()), uint(v.Function()))
}

func (p Address) Domain() uint16  { return p.domain }
func (p Address) Bus() uint16     { return p.bus }
func (p Address) Slot() uint8     { return p.slot }
func (p Address) Function() uint8 { return p.function }

// DevFn returns slot and function packed into a single byte.
func (p Address) DevFn() uint8 {
	return p.slot<<3 | p.function
}

func (p Address) String() string {
	return fmt.Sprintf("%04x:%02x:%02x.%1x", p.domain, p.bus, p.slot, p.function)
}

// Equal reports whether both addresses have the same canonical form.
func (p Address) Equal(o Address) bool {
	return p == o
}

// Compare orders addresses lexicographically by their canonical form.
func (p Address) Compare(o Address) int {
	return strings.Compare(p.String(), o.String())
}

func (p Address) Less(o Address) bool {
	return p.Compare(o) < 0
}

func (p Address) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Address) UnmarshalText(text []byte) error {
	addr, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*p = addr
	return nil
}
