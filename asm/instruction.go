// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"fmt"
	"strconv"

	"github.com/beevik/asm6502/codec"
)

// An Instruction is a single line of assembly code: a mnemonic and an
// optional argument. It must be resolved before its machine code is
// available.
type Instruction struct {
	Mnemonic string // all-caps mnemonic
	Argument string // raw argument text, empty if absent

	table    OpcodeTable
	modes    []Mode
	literal  string
	modeErr  error
	derived  bool
	resolved bool
	encoding Encoding
	err      error
}

// NewInstruction creates an instruction resolved against the default
// opcode table.
func NewInstruction(mnemonic, argument string) *Instruction {
	return Opcodes.Instruction(mnemonic, argument)
}

// An Encoding is the machine code form of a resolved instruction.
type Encoding struct {
	Opcode       byte   // opcode value
	Mode         Mode   // selected addressing mode
	Width        int    // operand width in bits
	Literal      string // literal text captured from the argument
	Operand      int    // parsed operand value
	OperandBytes []byte // little-endian operand data
}

// Size returns the combined size of the opcode and operand in bytes.
func (e Encoding) Size() int {
	return 1 + len(e.OperandBytes)
}

// Bytes returns the opcode followed by the operand bytes.
func (e Encoding) Bytes() []byte {
	b := make([]byte, 0, e.Size())
	b = append(b, e.Opcode)
	return append(b, e.OperandBytes...)
}

// Modes returns the addressing modes suggested by the instruction's
// argument. The result is derived once and cached.
func (i *Instruction) Modes() ([]Mode, error) {
	if !i.derived {
		i.modes, i.literal, i.modeErr = DeriveModes(i.Argument)
		i.derived = true
	}
	return i.modes, i.modeErr
}

// Resolve selects the instruction's opcode and encodes its operand. Only
// the first call does any work; later calls return the same result.
func (i *Instruction) Resolve() (Encoding, error) {
	if !i.resolved {
		i.encoding, i.err = i.resolve()
		i.resolved = true
	}
	return i.encoding, i.err
}

// Resolved reports whether Resolve has been called.
func (i *Instruction) Resolved() bool {
	return i.resolved
}

func (i *Instruction) resolve() (Encoding, error) {
	modes, err := i.Modes()
	if err != nil {
		return Encoding{}, err
	}

	table := i.table
	if table == nil {
		table = Opcodes
	}

	r, err := table.Lookup(i.Mnemonic, modes)
	if err != nil {
		return Encoding{}, err
	}

	e := Encoding{
		Opcode:  r.Opcode,
		Mode:    r.Mode,
		Width:   r.Width,
		Literal: i.literal,
	}

	// Accumulator and implied instructions carry no operand.
	if i.literal == "" {
		return e, nil
	}

	e.Operand, err = ParseLiteral(i.literal)
	if err != nil {
		return Encoding{}, newError(Syntax, "Unknown, incompatible or malformed argument: %s", i.Argument)
	}

	n := codec.BitLength(e.Operand)
	if n > r.Width {
		return Encoding{}, newError(Overflow, "%d-bit literal %s is too long", n, i.literal)
	}

	b, err := codec.EncodeLittleEndian(e.Operand)
	if err != nil {
		return Encoding{}, err
	}
	e.OperandBytes = b

	return e, nil
}

// String returns the instruction as it would appear in source code.
func (i *Instruction) String() string {
	if i.Argument == "" {
		return i.Mnemonic
	}
	return fmt.Sprintf("%s %s", i.Mnemonic, i.Argument)
}

// ParseLiteral parses a numeric literal. A '%' prefix selects binary, a '$'
// prefix selects hexadecimal, and anything else is decimal.
func ParseLiteral(s string) (int, error) {
	base, offset := 10, 0
	if len(s) > 0 {
		switch s[0] {
		case '%':
			base, offset = 2, 1
		case '$':
			base, offset = 16, 1
		}
	}

	v, err := strconv.ParseUint(s[offset:], base, 32)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}
