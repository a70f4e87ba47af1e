// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/ironcore-dev/pci-utils/pciutils/device"
	"github.com/ironcore-dev/pci-utils/pciutils/pci"
	"github.com/ironcore-dev/pci-utils/pciutils/resource"
	"gopkg.in/alecthomas/kingpin.v2"
)

var errNoResource = errors.New("no such resource")

// target selects the register space of a device.
type target struct {
	address  *string
	resource *int
	start    *string
}

func addTarget(cmd *kingpin.CmdClause) *target {
	return &target{
		address:  cmd.Arg("address", "PCI address [[DDDD:]BB:]SS[.F]").Required().String(),
		resource: cmd.Flag("resource", "Resource index; the configuration space is used if unset").Default("-1").Int(),
		start:    cmd.Flag("start", "Page aligned offset to start the resource mapping at").Default("0").String(),
	}
}

func (t *target) open(bus *device.Bus, readOnly bool) (*resource.Resource, error) {
	addr, err := pci.ParseAddress(*t.address)
	if err != nil {
		return nil, err
	}
	dev := bus.Device(addr)

	var (
		res *resource.Resource
		ok  bool
	)
	if *t.resource < 0 {
		res, ok, err = dev.Config(readOnly)
	} else {
		start, perr := parseOffset(*t.start)
		if perr != nil {
			return nil, perr
		}
		res, ok, err = dev.Resource(*t.resource, resource.MapOptions{ReadOnly: readOnly, Start: start})
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w on %s", errNoResource, addr)
	}
	return res, nil
}

func parseOffset(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid offset %q: %w", s, err)
	}
	return v, nil
}

func (c *cli) runList(out io.Writer, bus *device.Bus) error {
	var filter pci.Filter
	for _, s := range *c.listIDs {
		id, err := pci.ParseID(s)
		if err != nil {
			return err
		}
		filter.IDs = append(filter.IDs, id)
	}
	for _, s := range *c.listVendors {
		v, err := strconv.ParseUint(s, 16, 16)
		if err != nil {
			return fmt.Errorf("invalid vendor %q: %w", s, err)
		}
		filter.Vendors = append(filter.Vendors, pci.Vendor(v))
	}
	for _, s := range *c.listClasses {
		c, err := strconv.ParseUint(s, 16, 32)
		if err != nil {
			return fmt.Errorf("invalid class %q: %w", s, err)
		}
		filter.Classes = append(filter.Classes, pci.Class(c))
	}

	var (
		devices []*device.Device
		err     error
	)
	if len(filter.IDs)+len(filter.Vendors)+len(filter.Classes) == 0 {
		devices, err = bus.Devices()
	} else {
		devices, err = bus.Scan(filter)
	}
	if err != nil {
		return err
	}

	for _, dev := range devices {
		id, ok := dev.ID()
		if !ok {
			fmt.Fprintf(out, "%s unknown\n", dev)
			continue
		}
		class, _ := dev.ClassCode()
		fmt.Fprintf(out, "%s %s %s %s\n", dev, class, id, describe(id))
	}
	return nil
}

func describe(id pci.ID) string {
	vendor, ok := id.VendorName()
	if !ok {
		return ""
	}
	product, ok := id.ProductName()
	if !ok {
		return vendor
	}
	return vendor + " " + product
}

func runShow(out io.Writer, bus *device.Bus, address string) error {
	addr, err := pci.ParseAddress(address)
	if err != nil {
		return err
	}
	dev := bus.Device(addr)

	fmt.Fprintf(out, "address:   %s (devfn %#02x)\n", addr, dev.DevFn())
	if id, ok := dev.ID(); ok {
		fmt.Fprintf(out, "id:        %s %s\n", id, describe(id))
	} else {
		fmt.Fprintln(out, "id:        unknown")
	}
	if id, ok := dev.SubsystemID(); ok {
		fmt.Fprintf(out, "subsystem: %s %s\n", id, describe(id))
	} else {
		fmt.Fprintln(out, "subsystem: unknown")
	}
	if class, ok := dev.ClassCode(); ok {
		fmt.Fprintf(out, "class:     %s\n", class)
	} else {
		fmt.Fprintln(out, "class:     unknown")
	}
	return nil
}

func runRead(out io.Writer, bus *device.Bus, a accessArgs) (err error) {
	t, width, unchecked := a.target, *a.width, *a.unchecked
	addr, err := parseOffset(*a.offset)
	if err != nil {
		return err
	}

	res, err := t.open(bus, true)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, res.Close())
	}()

	var value uint64
	switch width {
	case "8":
		var v uint8
		if unchecked {
			v, err = res.Read8Unchecked(addr)
		} else {
			v, err = res.Read8(addr)
		}
		value = uint64(v)
	case "16":
		var v uint16
		if unchecked {
			v, err = res.Read16Unchecked(addr)
		} else {
			v, err = res.Read16(addr)
		}
		value = uint64(v)
	default:
		var v uint32
		if unchecked {
			v, err = res.Read32Unchecked(addr)
		} else {
			v, err = res.Read32(addr)
		}
		value = uint64(v)
	}
	if err != nil {
		return err
	}

	digits, _ := strconv.Atoi(width)
	fmt.Fprintf(out, "%0*x\n", digits/4, value)
	return nil
}

func runWrite(bus *device.Bus, a accessArgs, value string) (err error) {
	t, width, unchecked := a.target, *a.width, *a.unchecked
	addr, err := parseOffset(*a.offset)
	if err != nil {
		return err
	}
	v, err := strconv.ParseUint(value, 0, 64)
	if err != nil {
		return fmt.Errorf("invalid value %q: %w", value, err)
	}

	res, err := t.open(bus, false)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, res.Close())
	}()

	switch {
	case width == "8" && unchecked:
		return res.Write8Unchecked(addr, v)
	case width == "8":
		return res.Write8(addr, v)
	case width == "16" && unchecked:
		return res.Write16Unchecked(addr, v)
	case width == "16":
		return res.Write16(addr, v)
	case unchecked:
		return res.Write32Unchecked(addr, v)
	default:
		return res.Write32(addr, v)
	}
}

func runDump(out io.Writer, bus *device.Bus, t *target, offset, length string) (err error) {
	addr, err := parseOffset(offset)
	if err != nil {
		return err
	}
	n, err := parseOffset(length)
	if err != nil {
		return err
	}
	if n < 0 {
		return fmt.Errorf("invalid length %d", n)
	}

	res, err := t.open(bus, true)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, res.Close())
	}()

	if size := res.Len(); size != 0 && n > size {
		return fmt.Errorf("%w: length %#x exceeds resource size %#x", pci.ErrRange, n, size)
	}

	var line [16]byte
	for i := int64(0); i < n; i += int64(len(line)) {
		buf := line[:min(int64(len(line)), n-i)]
		if err := res.ReadBytes(addr+i, buf); err != nil {
			return err
		}
		fmt.Fprintf(out, "%08x: % x\n", addr+i, buf)
	}
	return nil
}
