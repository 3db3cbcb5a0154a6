// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package memory provides the 64K address space that receives assembled
// machine code.
package memory

import (
	"errors"

	"github.com/beevik/asm6502/codec"
)

// Errors
var (
	ErrMemoryOutOfBounds = errors.New("Memory access out of bounds")
)

// Size is the number of addressable bytes.
const Size = 64 * 1024

// The Memory interface presents the operations used to store and inspect
// machine code.
type Memory interface {
	// LoadByte loads a single byte from the address and returns it.
	LoadByte(addr uint16) byte

	// LoadBytes loads multiple bytes from the address and stores them into
	// the buffer 'b'.
	LoadBytes(addr uint16, b []byte)

	// StoreByte stores a byte to the requested address.
	StoreByte(addr uint16, v byte)

	// StoreBytes stores multiple bytes to the requested address.
	StoreBytes(addr uint16, b []byte)
}

// FlatMemory represents an entire 16-bit address space as a singular
// 64K buffer.
type FlatMemory struct {
	b [Size]byte
}

// NewFlatMemory creates a new 16-bit memory space.
func NewFlatMemory() *FlatMemory {
	return &FlatMemory{}
}

// LoadByte loads a single byte from the address and returns it.
func (m *FlatMemory) LoadByte(addr uint16) byte {
	return m.b[addr]
}

// LoadBytes loads multiple bytes from the address. Bytes past the end of
// the address space read as zero.
func (m *FlatMemory) LoadBytes(addr uint16, b []byte) {
	n := copy(b, m.b[addr:])
	clear(b[n:])
}

// StoreByte stores a byte at the requested address.
func (m *FlatMemory) StoreByte(addr uint16, v byte) {
	m.b[addr] = v
}

// StoreBytes stores multiple bytes to the requested address. Bytes that
// would land past the end of the address space are dropped.
func (m *FlatMemory) StoreBytes(addr uint16, b []byte) {
	copy(m.b[addr:], b)
}

// Fetch reads an n-byte little-endian value starting at addr. Values wider
// than 16 bits are not supported.
func (m *FlatMemory) Fetch(addr uint16, n int) (int, error) {
	switch {
	case n < 1:
		return 0, nil
	case n > 2:
		return 0, codec.ErrTooWide
	case int(addr)+n > Size:
		return 0, ErrMemoryOutOfBounds
	}

	v := make([]int, n)
	for i := range v {
		v[i] = int(m.b[int(addr)+i])
	}
	return codec.DecodeLittleEndian(v)
}

// Load stores machine code at the requested origin. It fails without
// modifying memory if the code would not fit.
func Load(m Memory, origin uint16, code []byte) error {
	if int(origin)+len(code) > Size {
		return ErrMemoryOutOfBounds
	}
	m.StoreBytes(origin, code)
	return nil
}
