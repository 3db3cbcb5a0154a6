// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package memory

import (
	"bytes"
	"errors"
	"testing"

	"github.com/beevik/asm6502/codec"
)

func TestLoadStore(t *testing.T) {
	m := NewFlatMemory()

	m.StoreByte(0x1000, 0xa9)
	m.StoreBytes(0x1001, []byte{0x15, 0xbd, 0x00, 0x40})

	if v := m.LoadByte(0x1000); v != 0xa9 {
		t.Errorf("LoadByte: expected $A9, got $%02X", v)
	}

	b := make([]byte, 5)
	m.LoadBytes(0x1000, b)
	if !bytes.Equal(b, []byte{0xa9, 0x15, 0xbd, 0x00, 0x40}) {
		t.Errorf("LoadBytes: got % X", b)
	}
}

func TestLoadBytesPastEnd(t *testing.T) {
	m := NewFlatMemory()
	m.StoreBytes(0xfffe, []byte{0x01, 0x02, 0x03, 0x04})

	b := []byte{0xff, 0xff, 0xff, 0xff}
	m.LoadBytes(0xfffe, b)
	if !bytes.Equal(b, []byte{0x01, 0x02, 0x00, 0x00}) {
		t.Errorf("LoadBytes: got % X", b)
	}
	if v := m.LoadByte(0x0000); v != 0 {
		t.Errorf("StoreBytes wrapped to $0000: got $%02X", v)
	}
}

func TestFetch(t *testing.T) {
	m := NewFlatMemory()
	m.StoreBytes(0x1000, []byte{0xad, 0x27, 0xaf})
	m.StoreByte(0xffff, 0x42)

	tests := []struct {
		addr uint16
		n    int
		v    int
	}{
		{0x1000, 1, 0xad},
		{0x1001, 2, 0xaf27},
		{0x1000, 2, 0x27ad},
		{0xffff, 1, 0x42},
		{0x2000, 2, 0},
		{0x1000, 0, 0},
	}

	for _, test := range tests {
		v, err := m.Fetch(test.addr, test.n)
		if err != nil {
			t.Errorf("Fetch($%04X, %d): unexpected error: %v", test.addr, test.n, err)
			continue
		}
		if v != test.v {
			t.Errorf("Fetch($%04X, %d): expected $%X, got $%X", test.addr, test.n, test.v, v)
		}
	}

	if _, err := m.Fetch(0xffff, 2); !errors.Is(err, ErrMemoryOutOfBounds) {
		t.Errorf("Fetch past end: expected ErrMemoryOutOfBounds, got %v", err)
	}
	if _, err := m.Fetch(0x1000, 3); !errors.Is(err, codec.ErrTooWide) {
		t.Errorf("Fetch 3 bytes: expected ErrTooWide, got %v", err)
	}
}

func TestLoad(t *testing.T) {
	m := NewFlatMemory()

	if err := Load(m, 0x1000, []byte{0xa9, 0x15}); err != nil {
		t.Fatal(err)
	}
	if v, _ := m.Fetch(0x1000, 2); v != 0x15a9 {
		t.Errorf("unexpected contents $%04X", v)
	}

	err := Load(m, 0xffff, []byte{0xea, 0xea})
	if !errors.Is(err, ErrMemoryOutOfBounds) {
		t.Errorf("expected ErrMemoryOutOfBounds, got %v", err)
	}
	if v := m.LoadByte(0xffff); v != 0 {
		t.Errorf("memory modified by failed load: $%02X", v)
	}
}
