// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package device

import (
	"os"
	"path/filepath"
)

const (
	DefaultSysfsRoot = "/sys"
	// SysfsRootEnv names the environment variable that relocates the sysfs
	// root, e.g. into a simulated device tree.
	SysfsRootEnv = "SIMULATION_SYS"
)

// Options configures where devices are looked up and how privilege is checked.
type Options struct {
	// SysfsRoot is the mount point of sysfs.
	SysfsRoot string
	// Privileged reports whether the process may access the full
	// configuration space.
	Privileged func() bool
}

func (o *Options) Defaults() {
	if o.SysfsRoot == "" {
		o.SysfsRoot = DefaultSysfsRoot
	}

	if o.Privileged == nil {
		o.Privileged = func() bool {
			return os.Geteuid() == 0
		}
	}
}

func (o *Options) devicesDir() string {
	return filepath.Join(o.SysfsRoot, "bus", "pci", "devices")
}

// RootFromEnv returns the sysfs root named by SysfsRootEnv, or DefaultSysfsRoot.
func RootFromEnv() string {
	if root := os.Getenv(SysfsRootEnv); root != "" {
		return root
	}
	return DefaultSysfsRoot
}
