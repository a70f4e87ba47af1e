// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package resource

import (
	"errors"

	"github.com/ironcore-dev/pci-utils/pciutils/pci"
)

// OpenMapped returns a Resource over a memory mapping of path. It never falls
// back to positioned I/O.
func OpenMapped(path string, opts MapOptions) (*Resource, error) {
	m, err := Map(path, opts)
	if err != nil {
		return nil, err
	}
	return New(m, m.Offset()), nil
}

// OpenEmulated returns a Resource that accesses path through positioned I/O.
func OpenEmulated(path string, readOnly bool) (*Resource, error) {
	f, err := OpenFile(path, readOnly)
	if err != nil {
		return nil, err
	}
	return New(f, 0), nil
}

// OpenConfig returns a Resource for a configuration space file. The file is
// mapped if possible and accessed through positioned I/O otherwise.
func OpenConfig(path string, readOnly bool) (*Resource, error) {
	res, err := OpenMapped(path, MapOptions{ReadOnly: readOnly})
	if err == nil {
		return res, nil
	}
	if !errors.Is(err, pci.ErrUnsupportedMapping) {
		return nil, err
	}
	return OpenEmulated(path, readOnly)
}
