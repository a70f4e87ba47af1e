// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package pci

import (
	"fmt"
	"slices"

	"github.com/go-logr/logr"
	"github.com/prometheus/procfs/sysfs"
)

type reader struct {
	log logr.Logger
	fs  sysfs.FS

	match matcher
}

func NewReader(log logr.Logger, filter Filter) (*reader, error) {
	fs, err := sysfs.NewDefaultFS()
	if err != nil {
		return nil, fmt.Errorf("failed to open sysfs: %w", err)
	}

	return &reader{
		log:   log,
		fs:    fs,
		match: newMatcher(filter),
	}, nil
}

func NewReaderWithMount(log logr.Logger, mountPoint string, filter Filter) (*reader, error) {
	fs, err := sysfs.NewFS(mountPoint)
	if err != nil {
		return nil, fmt.Errorf("failed to open sysfs: %w", err)
	}

	return &reader{
		log:   log,
		fs:    fs,
		match: newMatcher(filter),
	}, nil
}

func (r *reader) Read() ([]Address, error) {
	devices, err := r.fs.PciDevices()
	if err != nil {
		return nil, fmt.Errorf("failed to read pci devices: %w", err)
	}

	var pciDevices []Address
	for _, device := range devices {
		id, err := NewID(uint(device.Vendor), uint(device.Device))
		if err != nil {
			r.log.V(1).Info("Skipping device, invalid id", "device", device.Name(), "error", err)
			continue
		}

		class := Class(device.Class)
		if attr := r.match.mismatch(id, class); attr != "" {
			r.log.V(3).Info(
				"Skipping device, "+attr+" not matching",
				"device", device.Name(), "id", id, "class", class,
			)
			continue
		}

		addr, err := NewAddress(
			uint(device.Location.Segment),
			uint(device.Location.Bus),
			uint(device.Location.Device),
			uint(device.Location.Function),
		)
		if err != nil {
			r.log.V(1).Info("Skipping device, invalid location", "device", device.Name(), "error", err)
			continue
		}

		r.log.V(1).Info("Found matching pci device", "device", device.Name(), "id", id)
		pciDevices = append(pciDevices, addr)
	}

	slices.SortFunc(pciDevices, Address.Compare)

	return pciDevices, nil
}
