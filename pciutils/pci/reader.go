// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package pci

import (
	"fmt"

	"k8s.io/apimachinery/pkg/util/sets"
)

type Class uint32
type Vendor uint16

var (
	Class3DController Class = 0x030200
	ClassEthernet     Class = 0x020000
	ClassNVMe         Class = 0x010802

	VendorIntel  Vendor = 0x8086
	VendorNvidia Vendor = 0x10de
	VendorRedHat Vendor = 0x1af4
)

func (c Class) String() string {
	return fmt.Sprintf("0x%06x", uint32(c))
}

// Filter restricts a scan to matching devices. An empty list places no
// restriction on that attribute.
type Filter struct {
	Vendors []Vendor
	IDs     []ID
	Classes []Class
}

type matcher struct {
	vendors sets.Set[Vendor]
	ids     sets.Set[ID]
	classes sets.Set[Class]
}

func newMatcher(f Filter) matcher {
	return matcher{
		vendors: sets.New(f.Vendors...),
		ids:     sets.New(f.IDs...),
		classes: sets.New(f.Classes...),
	}
}

// mismatch returns the first attribute that excludes the device, or "".
func (m matcher) mismatch(id ID, class Class) string {
	switch {
	case m.classes.Len() > 0 && !m.classes.Has(class):
		return "class"
	case m.vendors.Len() > 0 && !m.vendors.Has(Vendor(id.Vendor())):
		return "vendor"
	case m.ids.Len() > 0 && !m.ids.Has(id):
		return "id"
	}
	return ""
}

type Reader interface {
	Read() ([]Address, error)
}
