// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/beevik/asm6502/asm"
)

func runCommands(h *Host, script string) string {
	var out bytes.Buffer
	h.RunCommands(strings.NewReader(script), &out, false)
	return out.String()
}

func checkOutput(t *testing.T, out string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(out, w) {
			t.Errorf("output missing %q:\n%s", w, out)
		}
	}
}

func checkMemory(t *testing.T, h *Host, addr uint16, expected []byte) {
	t.Helper()
	b := make([]byte, len(expected))
	h.mem.LoadBytes(addr, b)
	if !bytes.Equal(b, expected) {
		t.Errorf("memory at $%04X: expected % X, got % X", addr, expected, b)
	}
}

func TestAssembleText(t *testing.T) {
	h := New()
	out := runCommands(h, `assemble text $0800
LDA #$15
LDA $4000,X
END
memory fetch $0800 2
memory fetch $0802
`)

	checkOutput(t, out,
		"Assembled 5 bytes to $0800..$0804.",
		"$0800: $15A9 (5545)",
		"$0802: $BD (189)")
	checkMemory(t, h, 0x0800, []byte{0xa9, 0x15, 0xbd, 0x00, 0x40})
}

func TestAssembleTextErrors(t *testing.T) {
	h := New()
	out := runCommands(h, `assemble text
LDA #$15
LDB #$10
LDA #999
end
`)

	checkOutput(t, out,
		"Failed to assemble: 2 error(s) occurred during the assemble process.",
		"Error in line 2: Unknown or misspelled mnemonic: LDB",
		"Error in line 3: 10-bit literal 999 is too long")
	checkMemory(t, h, asm.DefaultOrigin, []byte{0x00, 0x00})
}

func TestAssembleTextVerbose(t *testing.T) {
	h := New()
	out := runCommands(h, "set verbose true\nassemble text $0300\nLDA ($20),Y\nEND\n")

	checkOutput(t, out,
		"Setting Verbose updated.",
		"0300-   B1 20       LDA ($20),Y",
		"Assembled 2 bytes to $0300..$0301.")
}

func TestAssembleFileAndLoad(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "prog.asm")
	err := os.WriteFile(src, []byte("LDA #$15\nLDA $4000,X\n"), 0600)
	if err != nil {
		t.Fatal(err)
	}
	bin := filepath.Join(dir, "prog.bin")

	h := New()
	out := runCommands(h, "assemble file "+src+"\nload "+bin+"\nload "+bin+" $2000\n")

	checkOutput(t, out,
		"Assembled 'prog.asm' to produce 'prog.bin' and 'prog.map'.",
		"Loaded 'prog.bin' to $1000..$1004.",
		"Loaded 'prog.map' source map.",
		"Loaded 'prog.bin' to $2000..$2004.")
	checkMemory(t, h, 0x1000, []byte{0xa9, 0x15, 0xbd, 0x00, 0x40})
	checkMemory(t, h, 0x2000, []byte{0xa9, 0x15, 0xbd, 0x00, 0x40})

	if h.sourceMap == nil {
		t.Fatal("source map not loaded")
	}
	if f, l := h.sourceMap.Search(0x1002); filepath.Base(f) != "prog.asm" || l != 2 {
		t.Errorf("source map search: got %s:%d", f, l)
	}
}

func TestMemoryFetchSourceLine(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "prog.asm")
	err := os.WriteFile(src, []byte("LDA #$15\nLDA $4000,X\n"), 0600)
	if err != nil {
		t.Fatal(err)
	}
	bin := filepath.Join(dir, "prog.bin")

	h := New()
	out := runCommands(h, "assemble file "+src+"\nload "+bin+"\nmemory fetch $1002\nmemory fetch $1003\n")

	checkOutput(t, out,
		"$1002: $BD (189)  ; prog.asm:2\n",
		"$1003: $00 (0)\n")

	// Loading elsewhere leaves the source map describing the original origin.
	out = runCommands(h, "load "+bin+" $3000\nmemory fetch $3002\n")
	checkOutput(t, out, "$3002: $BD (189)\n")
}

func TestAssembleFileErrors(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "bad.asm")
	err := os.WriteFile(src, []byte("LDA #$15\nJMP $5F03\n"), 0600)
	if err != nil {
		t.Fatal(err)
	}

	h := New()
	out := runCommands(h, "assemble file "+src+"\n")

	checkOutput(t, out,
		"line 2: Unknown or misspelled mnemonic: JMP",
		"Failed to assemble 'bad.asm': 1 error(s) occurred during the assemble process.")
}

func TestLoadRequiresAddress(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "raw.bin")
	err := os.WriteFile(bin, []byte{0xea, 0xea}, 0600)
	if err != nil {
		t.Fatal(err)
	}

	h := New()
	out := runCommands(h, "load "+bin+"\nload "+bin+" $0300\n")

	checkOutput(t, out,
		"File 'raw.bin' has no source map and requires an address.",
		"Loaded 'raw.bin' to $0300..$0301.")
	checkMemory(t, h, 0x0300, []byte{0xea, 0xea})
}

func TestMemorySet(t *testing.T) {
	h := New()
	out := runCommands(h, `memory set $0300 $A9 21 %1
memory fetch $0300 2
memory set $0300 $1FF
memory set $FFFF 1 2
memory fetch $FFFF 2
memory fetch $0300 3
`)

	checkOutput(t, out,
		"Stored 3 byte(s) at $0300.",
		"$0300: $15A9 (5545)",
		"Value $1FF is not a byte.",
		"Memory access out of bounds",
		"Integers longer than 16-bits are not supported")
	checkMemory(t, h, 0x0300, []byte{0xa9, 0x15, 0x01})
	checkMemory(t, h, 0xffff, []byte{0x00})
}

func TestMemoryDump(t *testing.T) {
	h := New()
	h.mem.StoreBytes(0x1000, []byte{0xa9, 0x15, 0xbd, 0x00, 0x40})

	out := runCommands(h, "memory dump $1000 5\n\n")

	checkOutput(t, out,
		"1000- A9 15 BD 00 40",
		").=.@",
		"1005- 00 00 00 00 00")

	if h.settings.NextMemDumpAddr != 0x100a {
		t.Errorf("expected next dump address $100A, got $%04X", h.settings.NextMemDumpAddr)
	}
}

func TestMemoryDumpAligned(t *testing.T) {
	h := New()
	h.mem.StoreBytes(0x2003, []byte("HELLO, WORLD"))

	out := runCommands(h, "memory dump $2003 12\n")

	checkOutput(t, out,
		"2000-          48 45 4C 4C 4F",
		"2008- 2C 20 57 4F 52 4C 44")
}

func TestSet(t *testing.T) {
	h := New()
	out := runCommands(h, `set origin $2000
set verb true
set hex on
set mem 10
set bogus 1
set origin $12345
set
`)

	checkOutput(t, out,
		"Setting Origin updated.",
		"Setting HexMode updated.",
		"Setting MemDumpBytes updated.",
		"Setting 'bogus' not found",
		"value out of range for Origin",
		"Variables:")

	s := h.settings
	if s.Origin != 0x2000 || !s.Verbose || !s.HexMode || s.MemDumpBytes != 0x10 {
		t.Errorf("unexpected settings: %+v", *s)
	}
}

func TestHexMode(t *testing.T) {
	h := New()
	out := runCommands(h, "set hexmode true\nmemory set 300 A9 15\nmemory fetch 300 2\n")

	checkOutput(t, out, "Stored 2 byte(s) at $0300.", "$0300: $15A9")
	checkMemory(t, h, 0x0300, []byte{0xa9, 0x15})
}

func TestOpcodes(t *testing.T) {
	h := New()
	out := runCommands(h, "opcodes l\nopcodes\nopcodes xyz\n")

	checkOutput(t, out,
		"LDA opcodes:",
		"    AD  ABS   a       3",
		"    A9  IMM   #       2",
		"    B1  IDY   (zp),y  2",
		"    LDA  a  a,x  a,y  #  zp  (zp,x)  zp,x  (zp),y",
		"Mnemonic 'xyz':")
}

func TestModes(t *testing.T) {
	h := New()
	out := runCommands(h, "modes $4000,X\nmodes %01100111\nmodes x\n")

	checkOutput(t, out,
		"Modes:   ABX (a,x)",
		"Literal: $4000 = $4000 (16384)",
		"Modes:   ZPG (zp), REL (r)",
		"Literal: %01100111 = $67 (103)",
		"Unknown, incompatible or malformed argument: x")
}

func TestHelp(t *testing.T) {
	h := New()
	out := runCommands(h, "help\nhelp memory\nhelp memory fetch\n")

	checkOutput(t, out,
		"Available commands:",
		"    memory           Memory commands",
		"Memory commands:",
		"Syntax: memory fetch <address> [<bytes>]",
		"Description:\n   Read a 1- or 2-byte little-endian value")
}

func TestCommandGroups(t *testing.T) {
	h := New()
	out := runCommands(h, "memory\nmem fetch $0000\nm\nbogus\nas\n")

	checkOutput(t, out,
		"Memory commands:\n    dump             Dump memory at address",
		"    set              Set memory at address",
		"$0000: $00 (0)",
		"0000- 00 00 00 00 00",
		"Command not found.",
		"Assemble commands:\n    file")
}

func TestRepeatLastCommand(t *testing.T) {
	h := New()
	h.mem.StoreBytes(0x0300, []byte{0xa9, 0x15})
	out := runCommands(h, "memory fetch $0300\n\n")

	if n := strings.Count(out, "$0300: $A9 (169)"); n != 2 {
		t.Errorf("expected fetch to run twice, ran %d times:\n%s", n, out)
	}
}

func TestQuit(t *testing.T) {
	h := New()
	runCommands(h, "quit\nmemory set $10 1\n")
	checkMemory(t, h, 0x0010, []byte{0x00})
}

func TestCustomOpcodeTable(t *testing.T) {
	h := New()
	h.SetOpcodeTable(asm.OpcodeTable{
		"NOP": {{Opcode: 0xea, Mode: asm.IMP}},
		"LDA": asm.Opcodes["LDA"],
	})

	out := runCommands(h, "assemble text $0200\nnop\nlda #1\nEND\nopcodes n\n")

	checkOutput(t, out, "Assembled 3 bytes to $0200..$0202.", "NOP opcodes:")
	checkMemory(t, h, 0x0200, []byte{0xea, 0xa9, 0x01})
}

func TestIndentWrap(t *testing.T) {
	s := indentWrap(3, strings.Repeat("word ", 30))
	for _, line := range strings.Split(s, "\n") {
		if len(line) > 80 || !strings.HasPrefix(line, "   word") {
			t.Errorf("bad wrapped line %q", line)
		}
	}
}
