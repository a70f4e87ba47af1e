// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

// Package device looks up PCI devices in sysfs and opens their resources.
package device

import (
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"github.com/ironcore-dev/pci-utils/pciutils/pci"
)

// Bus enumerates the PCI devices below a sysfs root.
type Bus struct {
	log  logr.Logger
	opts Options
}

func NewBus(log logr.Logger, opts Options) *Bus {
	opts.Defaults()

	return &Bus{
		log:  log,
		opts: opts,
	}
}

// Device returns the device at addr. It does not check that the device exists.
func (b *Bus) Device(addr pci.Address) *Device {
	return New(b.log, addr, b.opts)
}

// Devices lists every device in sysfs, in directory order.
func (b *Bus) Devices() ([]*Device, error) {
	entries, err := os.ReadDir(b.opts.devicesDir())
	if err != nil {
		return nil, fmt.Errorf("failed to read pci devices: %w", err)
	}

	devices := make([]*Device, 0, len(entries))
	for _, entry := range entries {
		addr, err := pci.ParseAddress(entry.Name())
		if err != nil {
			b.log.V(1).Info("Skipping entry, not a pci address", "entry", entry.Name(), "error", err)
			continue
		}
		devices = append(devices, b.Device(addr))
	}

	return devices, nil
}

// DeviceByID returns the first device with the given ID in enumeration order.
// Systems with several identical controllers have more than one match; use
// DevicesByID to see all of them.
func (b *Bus) DeviceByID(id pci.ID) (*Device, bool, error) {
	devices, err := b.DevicesByID(id)
	if err != nil || len(devices) == 0 {
		return nil, false, err
	}

	if len(devices) > 1 {
		b.log.V(1).Info("Multiple devices match id, using the first", "id", id, "count", len(devices))
	}
	return devices[0], true, nil
}

// DevicesByID returns all devices with the given ID. Devices whose ID cannot
// be read are skipped.
func (b *Bus) DevicesByID(id pci.ID) ([]*Device, error) {
	devices, err := b.Devices()
	if err != nil {
		return nil, err
	}

	var matching []*Device
	for _, device := range devices {
		if devID, ok := device.ID(); ok && devID == id {
			matching = append(matching, device)
		}
	}
	return matching, nil
}

// Scan returns the devices matching filter, parsed in bulk from sysfs.
func (b *Bus) Scan(filter pci.Filter) ([]*Device, error) {
	reader, err := pci.NewReaderWithMount(b.log, b.opts.SysfsRoot, filter)
	if err != nil {
		return nil, err
	}

	addrs, err := reader.Read()
	if err != nil {
		return nil, err
	}

	devices := make([]*Device, 0, len(addrs))
	for _, addr := range addrs {
		devices = append(devices, b.Device(addr))
	}
	return devices, nil
}
