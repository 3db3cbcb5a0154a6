// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package codec converts integers to and from the little-endian byte
// sequences used by 6502 machine code.
package codec

import (
	"errors"
	"fmt"
	"math/bits"
)

// ErrTooWide is returned when a value needs more than 16 bits, either as a
// two's complement integer or as a multi-byte read.
var ErrTooWide = errors.New("Integers longer than 16-bits are not supported")

// A RangeError is returned when a value being decoded does not fit in a
// byte.
type RangeError struct {
	Value int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("Value out of bounds: %d", e.Value)
}

// BitLength returns the minimum number of bits needed to represent v. For
// negative values, the sign bit is not counted.
func BitLength(v int) int {
	if v < 0 {
		v = ^v
	}
	return bits.Len(uint(v))
}

// TwosComplement returns the unsigned 8-bit or 16-bit two's complement form
// of v. Non-negative values are returned unchanged.
func TwosComplement(v int) (int, error) {
	if v >= 0 {
		return v, nil
	}

	n := BitLength(v)
	switch {
	case n >= 16:
		return 0, ErrTooWide
	case n < 8:
		return v + 0x100, nil
	default:
		return v + 0x10000, nil
	}
}

// EncodeLittleEndian returns the minimal little-endian byte sequence for v.
// Zero encodes as a single zero byte.
func EncodeLittleEndian(v int) ([]byte, error) {
	if v == 0 {
		return []byte{0}, nil
	}

	v, err := TwosComplement(v)
	if err != nil {
		return nil, err
	}

	var b []byte
	for v > 0 {
		b = append(b, byte(v&0xff))
		v >>= 8
	}
	return b, nil
}

// DecodeLittleEndian folds a little-endian sequence of byte values into an
// unsigned integer. Every value must lie in the range 0-255.
func DecodeLittleEndian(values []int) (int, error) {
	v := 0
	for i := len(values) - 1; i >= 0; i-- {
		if values[i] < 0 || values[i] > 0xff {
			return 0, &RangeError{Value: values[i]}
		}
		v = v<<8 | values[i]
	}
	return v, nil
}

// DecodeBytes folds a little-endian byte slice into an unsigned integer.
func DecodeBytes(b []byte) int {
	v := 0
	for i := len(b) - 1; i >= 0; i-- {
		v = v<<8 | int(b[i])
	}
	return v
}
