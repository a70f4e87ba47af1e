// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package device

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-logr/logr"
	"github.com/ironcore-dev/pci-utils/pciutils/pci"
	"github.com/ironcore-dev/pci-utils/pciutils/resource"
)

// Device gives access to the sysfs attributes and resource files of a PCI
// function. Resources it returns are owned by the caller.
type Device struct {
	address    pci.Address
	basePath   string
	log        logr.Logger
	privileged func() bool
}

func New(log logr.Logger, address pci.Address, opts Options) *Device {
	opts.Defaults()

	return &Device{
		address:    address,
		basePath:   filepath.Join(opts.devicesDir(), address.String()),
		log:        log.WithValues("device", address),
		privileged: opts.Privileged,
	}
}

func (d *Device) Address() pci.Address { return d.address }

func (d *Device) DevFn() uint8 { return d.address.DevFn() }

// Path returns the full path of a sysfs attribute of the device.
func (d *Device) Path(attr string) string {
	return filepath.Join(d.basePath, attr)
}

func (d *Device) String() string {
	return d.address.String()
}

// ID returns the vendor and device ID. It reports false if the attributes
// cannot be read, which happens when the device is removed while scanning.
func (d *Device) ID() (pci.ID, bool) {
	return d.readID("vendor", "device")
}

// SubsystemID returns the subsystem vendor and device ID.
func (d *Device) SubsystemID() (pci.ID, bool) {
	return d.readID("subsystem_vendor", "subsystem_device")
}

func (d *Device) ClassCode() (pci.Class, bool) {
	class, ok := d.readHex("class")
	return pci.Class(class), ok
}

func (d *Device) readID(vendorAttr, deviceAttr string) (pci.ID, bool) {
	vendor, ok := d.readHex(vendorAttr)
	if !ok {
		return pci.ID{}, false
	}
	device, ok := d.readHex(deviceAttr)
	if !ok {
		return pci.ID{}, false
	}

	id, err := pci.NewID(uint(vendor), uint(device))
	if err != nil {
		d.log.V(1).Info("Invalid id attribute", "attribute", vendorAttr, "error", err)
		return pci.ID{}, false
	}
	return id, true
}

func (d *Device) readHex(attr string) (uint64, bool) {
	data, err := os.ReadFile(d.Path(attr))
	if err != nil {
		d.log.V(1).Info("Failed to read attribute", "attribute", attr, "error", err)
		return 0, false
	}

	s := strings.TrimPrefix(strings.TrimSpace(string(data)), "0x")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		d.log.V(1).Info("Failed to parse attribute", "attribute", attr, "error", err)
		return 0, false
	}
	return v, true
}

// Resource maps the resourceN file of the device. It reports false if the
// device has no such resource.
func (d *Device) Resource(index int, opts resource.MapOptions) (*resource.Resource, bool, error) {
	return d.ResourceFile(fmt.Sprintf("resource%d", index), opts)
}

// ResourceFile maps a resource file of the device by name, for example
// resource0_wc.
func (d *Device) ResourceFile(name string, opts resource.MapOptions) (*resource.Resource, bool, error) {
	path := d.Path(name)
	if ok, err := exists(path); !ok {
		return nil, false, err
	}

	res, err := resource.OpenMapped(path, opts)
	if err != nil {
		return nil, false, fmt.Errorf("failed to open %s of %s: %w", name, d.address, err)
	}

	d.log.V(2).Info("Opened resource", "resource", name, "size", res.Len())
	return res, true, nil
}

// Config opens the configuration space of the device. Without root
// privileges the kernel only exposes the first 64 bytes, which is logged as
// a warning but does not fail.
func (d *Device) Config(readOnly bool) (*resource.Resource, bool, error) {
	if !d.privileged() {
		d.log.Info("WARNING: not running as root, only the first 64 bytes of PCI configuration space may be accessible")
	}

	path := d.Path("config")
	if ok, err := exists(path); !ok {
		return nil, false, err
	}

	res, err := resource.OpenConfig(path, readOnly)
	if err != nil {
		return nil, false, fmt.Errorf("failed to open config space of %s: %w", d.address, err)
	}
	return res, true, nil
}

func exists(path string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
}
