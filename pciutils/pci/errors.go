// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package pci

import (
	"errors"
)

var (
	// ErrFormat is returned when an identifier string does not match its grammar.
	ErrFormat = errors.New("malformed identifier")
	// ErrRange is returned when an identifier field or a register address is out of bounds.
	ErrRange = errors.New("out of range")
	// ErrAlignment is returned when an address or offset is not a multiple of the
	// access width or of the page size.
	ErrAlignment = errors.New("misaligned")
	// ErrValueRange is returned when a written value does not fit the access width.
	ErrValueRange = errors.New("value exceeds access width")
	// ErrUnsupportedMapping is returned when a file cannot be memory-mapped.
	ErrUnsupportedMapping = errors.New("cannot memory-map resource file")
	// ErrUnsupportedOperation is returned for strided access on backends that only
	// support contiguous ranges.
	ErrUnsupportedOperation = errors.New("unsupported operation")
)
