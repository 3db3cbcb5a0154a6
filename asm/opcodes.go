// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"sort"
	"strings"
)

// An OpcodeRecord describes one (opcode, addressing mode) variant of a
// mnemonic.
type OpcodeRecord struct {
	Opcode byte // hexadecimal opcode value
	Mode   Mode // addressing mode
	Width  int  // maximum operand width in bits
}

// Size returns the maximum number of operand bytes the record's
// instructions carry.
func (r OpcodeRecord) Size() int {
	return r.Width / 8
}

// An OpcodeTable maps an all-caps mnemonic to its opcode variants. When
// an operand could match several variants, the earliest record wins.
type OpcodeTable map[string][]OpcodeRecord

// Opcodes is the table used by the assembler unless another is supplied.
var Opcodes = OpcodeTable{
	"LDA": {
		{0xad, ABS, 16},
		{0xbd, ABX, 16},
		{0xb9, ABY, 16},
		{0xa9, IMM, 8},
		{0xa5, ZPG, 8},
		{0xa1, IDX, 8},
		{0xb5, ZPX, 8},
		{0xb1, IDY, 8},
	},
}

// Lookup selects the first record for the mnemonic whose addressing mode is
// one of the candidate modes.
func (t OpcodeTable) Lookup(mnemonic string, modes []Mode) (OpcodeRecord, error) {
	records, ok := t[mnemonic]
	if !ok {
		return OpcodeRecord{}, newError(UnknownMnemonic, "Unknown or misspelled mnemonic: %s", mnemonic)
	}

	for _, r := range records {
		if containsMode(modes, r.Mode) {
			return r, nil
		}
	}

	return OpcodeRecord{}, newError(Syntax, "Invalid addressing mode: %s for the %s mnemonic",
		joinModes(modes), mnemonic)
}

// Mnemonics returns all mnemonics in the table in alphabetical order.
func (t OpcodeTable) Mnemonics() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Instruction creates an unresolved instruction that will be resolved
// against this table.
func (t OpcodeTable) Instruction(mnemonic, argument string) *Instruction {
	return &Instruction{
		Mnemonic: strings.ToUpper(mnemonic),
		Argument: argument,
		table:    t,
	}
}
