// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package pci_test

import (
	"slices"

	"github.com/ironcore-dev/pci-utils/pciutils/pci"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type foreignAddress struct {
	domain, bus   uint16
	slot, function uint8
}

func (f foreignAddress) Domain() uint16  { return f.domain }
func (f foreignAddress) Bus() uint16     { return f.bus }
func (f foreignAddress) Slot() uint8     { return f.slot }
func (f foreignAddress) Function() uint8 { return f.function }

var _ = Describe("Address", func() {

	It("should round-trip every valid bus, slot and function through its canonical form", func() {
		for bus := uint(0); bus <= pci.MaxBus; bus++ {
			for slot := uint(0); slot <= pci.MaxSlot; slot++ {
				for fn := uint(0); fn <= pci.MaxFunction; fn++ {
					addr, err := pci.NewAddress(0x1f, bus, slot, fn)
					Expect(err).NotTo(HaveOccurred())

					parsed, err := pci.ParseAddress(addr.String())
					Expect(err).NotTo(HaveOccurred())
					Expect(parsed).To(Equal(addr))
				}
			}
		}
	})

	It("should reject components out of range", func() {
		_, err := pci.NewAddress(0, 0, 0x20, 0)
		Expect(err).To(MatchError(pci.ErrRange))

		_, err = pci.NewAddress(0, 0, 0, 8)
		Expect(err).To(MatchError(pci.ErrRange))

		_, err = pci.NewAddress(0, 0x101, 0, 0)
		Expect(err).To(MatchError(pci.ErrRange))

		_, err = pci.NewAddress(0x10000, 0, 0, 0)
		Expect(err).To(MatchError(pci.ErrRange))

		_, err = pci.ParseAddress("0000:00:20.0")
		Expect(err).To(MatchError(pci.ErrRange))

		_, err = pci.NewAddress(0, 0x100, 0x1f, 7)
		Expect(err).NotTo(HaveOccurred())
	})

	DescribeTable("parsing",
		func(in, want string) {
			addr, err := pci.ParseAddress(in)
			Expect(err).NotTo(HaveOccurred())
			Expect(addr.String()).To(Equal(want))
		},
		Entry("full form", "0000:17:00.0", "0000:17:00.0"),
		Entry("upper case", "00AB:1F:1F.7", "00ab:1f:1f.7"),
		Entry("without domain", "17:03.1", "0000:17:03.1"),
		Entry("slot only", "1c", "0000:00:1c.0"),
		Entry("slot and function", "3.2", "0000:00:03.2"),
		Entry("short components", "1:2:3.4", "0001:02:03.4"),
	)

	DescribeTable("malformed input",
		func(in string) {
			_, err := pci.ParseAddress(in)
			Expect(err).To(MatchError(pci.ErrFormat))
		},
		Entry("empty", ""),
		Entry("too many components", "0:0:0:0.0"),
		Entry("not hex", "0000:zz:00.0"),
		Entry("trailing dot", "00:01."),
		Entry("whitespace", " 00:01.0"),
	)

	It("should copy address-like values", func() {
		addr, err := pci.AddressFrom(foreignAddress{domain: 1, bus: 2, slot: 3, function: 4})
		Expect(err).NotTo(HaveOccurred())
		Expect(addr.String()).To(Equal("0001:02:03.4"))

		same, err := pci.AddressFrom(addr)
		Expect(err).NotTo(HaveOccurred())
		Expect(same.Equal(addr)).To(BeTrue())

		_, err = pci.AddressFrom(foreignAddress{slot: 0x20})
		Expect(err).To(MatchError(pci.ErrRange))
	})

	It("should pack slot and function into devfn", func() {
		Expect(pci.MustParseAddress("00:1f.3").DevFn()).To(Equal(uint8(0xfb)))
	})

	It("should order by canonical form", func() {
		addrs := []pci.Address{
			pci.MustParseAddress("0000:20:00.0"),
			pci.MustParseAddress("0000:100:00.0"),
			pci.MustParseAddress("0000:03:00.1"),
			pci.MustParseAddress("0000:03:00.0"),
		}
		slices.SortFunc(addrs, pci.Address.Compare)

		var got []string
		for _, a := range addrs {
			got = append(got, a.String())
		}
		Expect(got).To(Equal([]string{"0000:03:00.0", "0000:03:00.1", "0000:100:00.0", "0000:20:00.0"}))
		Expect(addrs[0].Less(addrs[1])).To(BeTrue())
	})

	It("should deduplicate as a map key", func() {
		set := map[pci.Address]struct{}{}
		set[pci.MustParseAddress("17:00.0")] = struct{}{}
		set[pci.MustParseAddress("0000:17:00.0")] = struct{}{}
		Expect(set).To(HaveLen(1))
	})

	It("should marshal as text", func() {
		var addr pci.Address
		Expect(addr.UnmarshalText([]byte("0000:65:00.0"))).To(Succeed())
		text, err := addr.MarshalText()
		Expect(err).NotTo(HaveOccurred())
		Expect(string(text)).To(Equal("0000:65:00.0"))
		Expect(addr.UnmarshalText([]byte("bogus!"))).To(MatchError(pci.ErrFormat))
	})
})
