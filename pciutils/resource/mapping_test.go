// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

//go:build unix

package resource_test

import (
	"os"
	"path/filepath"

	"github.com/ironcore-dev/pci-utils/pciutils/pci"
	"github.com/ironcore-dev/pci-utils/pciutils/resource"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Mapping", func() {
	pageSize := int64(os.Getpagesize())

	It("should reject a start offset that is not page aligned", func() {
		path := writeResourceFile(int(2 * pageSize))

		_, err := resource.Map(path, resource.MapOptions{Start: 1})
		Expect(err).To(MatchError(pci.ErrAlignment))

		_, err = resource.OpenMapped(path, resource.MapOptions{Start: pageSize / 2})
		Expect(err).To(MatchError(pci.ErrAlignment))
	})

	It("should translate addresses relative to the start offset", func() {
		path := writeResourceFile(int(3 * pageSize))

		res, err := resource.OpenMapped(path, resource.MapOptions{Start: pageSize, End: 2 * pageSize})
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(res.Close)

		Expect(res.Base()).To(Equal(pageSize))
		Expect(res.Len()).To(Equal(pageSize))

		By("reading byte 0 of the mapped region at the start offset")
		v8, err := res.Read8(pageSize)
		Expect(err).NotTo(HaveOccurred())
		Expect(v8).To(Equal(uint8(pageSize % 251)))

		By("rejecting addresses below the start offset")
		_, err = res.Read8(pageSize - 1)
		Expect(err).To(MatchError(pci.ErrRange))

		By("rejecting addresses past the end offset")
		_, err = res.Read32(2 * pageSize)
		Expect(err).To(MatchError(pci.ErrRange))

		v32, err := res.Read32(2*pageSize - 4)
		Expect(err).NotTo(HaveOccurred())
		Expect(v32).NotTo(BeZero())

		By("writing through to the file at the translated offset")
		Expect(res.Write32(pageSize+8, 0xdeadbeef)).To(Succeed())
		m, ok := res.Region().(*resource.Mapping)
		Expect(ok).To(BeTrue())
		Expect(m.Sync()).To(Succeed())

		data, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(data[pageSize+8 : pageSize+12]).To(Equal([]byte{0xef, 0xbe, 0xad, 0xde}))
	})

	It("should reject a range outside of the file", func() {
		path := writeResourceFile(int(pageSize))

		_, err := resource.Map(path, resource.MapOptions{End: 2 * pageSize})
		Expect(err).To(MatchError(pci.ErrRange))

		_, err = resource.Map(path, resource.MapOptions{Start: 2 * pageSize, End: pageSize})
		Expect(err).To(MatchError(pci.ErrRange))
	})

	It("should report files that cannot be mapped", func() {
		path := filepath.Join(GinkgoT().TempDir(), "resource1")
		Expect(os.WriteFile(path, nil, 0o600)).To(Succeed())

		_, err := resource.Map(path, resource.MapOptions{})
		Expect(err).To(MatchError(pci.ErrUnsupportedMapping))
		Expect(err).To(MatchError(ContainSubstring("I/O region")))
	})

	It("should fail to open a missing file", func() {
		_, err := resource.Map(filepath.Join(GinkgoT().TempDir(), "missing"), resource.MapOptions{})
		Expect(err).To(MatchError(os.ErrNotExist))
	})

	It("should refuse writes to a read-only mapping", func() {
		res, err := resource.OpenMapped(writeResourceFile(regionSize), resource.MapOptions{ReadOnly: true})
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(res.Close)

		v8, err := res.Read8(3)
		Expect(err).NotTo(HaveOccurred())
		Expect(v8).To(Equal(uint8(3)))

		Expect(res.Write8(3, 0)).To(MatchError(resource.ErrReadOnly))
	})

	It("should gather strided bytes", func() {
		res, err := resource.OpenMapped(writeResourceFile(regionSize), resource.MapOptions{})
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(res.Close)

		buf := make([]byte, 4)
		Expect(res.Gather(0x10, 4, buf)).To(Succeed())
		Expect(buf).To(Equal([]byte{0x10, 0x14, 0x18, 0x1c}))

		Expect(res.Gather(regionSize-8, 4, buf)).To(MatchError(pci.ErrRange))
		Expect(res.Gather(0, 0, buf)).To(MatchError(pci.ErrUnsupportedOperation))
	})

	It("should unmap idempotently", func() {
		m, err := resource.Map(writeResourceFile(regionSize), resource.MapOptions{})
		Expect(err).NotTo(HaveOccurred())

		Expect(m.Unmap()).To(Succeed())
		Expect(m.Unmap()).To(Succeed())
		Expect(m.Close()).To(Succeed())
		Expect(m.Len()).To(Equal(int64(regionSize)))

		res := resource.New(m, 0)
		_, err = res.Read8(0)
		Expect(err).To(MatchError(resource.ErrNotMapped))
	})
})
