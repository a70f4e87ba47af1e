// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

//go:build !unix

package resource

import (
	"fmt"

	"github.com/ironcore-dev/pci-utils/pciutils/pci"
)

type MapOptions struct {
	ReadOnly bool
	Start    int64
	End      int64
}

// Mapping is never constructed on platforms without mmap.
type Mapping struct {
	path string
}

func Map(path string, _ MapOptions) (*Mapping, error) {
	return nil, fmt.Errorf("%w %s: not supported on this platform", pci.ErrUnsupportedMapping, path)
}

func (m *Mapping) Path() string                      { return m.path }
func (m *Mapping) Offset() int64                     { return 0 }
func (m *Mapping) Len() int64                        { return 0 }
func (m *Mapping) Load(int64, []byte) error          { return ErrNotMapped }
func (m *Mapping) Store(int64, []byte) error         { return ErrNotMapped }
func (m *Mapping) Gather(int64, int64, []byte) error { return ErrNotMapped }
func (m *Mapping) Sync() error                       { return ErrNotMapped }
func (m *Mapping) Unmap() error                      { return nil }
func (m *Mapping) Close() error                      { return nil }
