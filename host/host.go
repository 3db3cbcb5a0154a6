// Copyright 2018 Brett Vickers.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package host allows you to create a "host" that wraps the assembler in an
// interactive command shell with 64K of memory to receive assembled code.
//
// Within the host it is possible to assemble files and typed-in code, load
// binaries and their source maps into memory, dump and modify the contents
// of memory, inspect the opcode table and the addressing modes of operand
// expressions, and adjust session settings.
package host

import (
	"bufio"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/beevik/asm6502/asm"
	"github.com/beevik/asm6502/memory"
	"github.com/beevik/cmd"
	"github.com/beevik/prefixtree/v2"
)

// A Host represents an assembler session: 64K of memory, an opcode table,
// the most recently loaded source map and a set of session settings.
type Host struct {
	input       *bufio.Scanner
	output      *bufio.Writer
	interactive bool
	mem         *memory.FlatMemory
	table       asm.OpcodeTable
	mnemonics   *prefixtree.Tree[string]
	sourceMap   *asm.SourceMap
	lastCmd     *selection
	settings    *settings
}

// New creates a new assembler host using the default opcode table.
func New() *Host {
	h := &Host{
		mem:      memory.NewFlatMemory(),
		settings: newSettings(),
	}
	h.SetOpcodeTable(asm.Opcodes)
	return h
}

// SetOpcodeTable replaces the opcode table used by the host's assembler.
func (h *Host) SetOpcodeTable(table asm.OpcodeTable) {
	h.table = table
	h.mnemonics = prefixtree.New[string]()
	for _, m := range table.Mnemonics() {
		h.mnemonics.Add(strings.ToLower(m), m)
	}
}

// RunCommands accepts host commands from a reader and outputs the results
// to a writer. If the commands are interactive, a prompt is displayed while
// the host waits for the the next command to be entered.
func (h *Host) RunCommands(r io.Reader, w io.Writer, interactive bool) {
	h.input = bufio.NewScanner(r)
	h.output = bufio.NewWriter(w)
	h.interactive = interactive

	defer h.flush()

	for {
		h.prompt("* ")

		line, err := h.getLine()
		if err != nil {
			break
		}

		var c selection
		if line != "" {
			n, args, err := cmds.Lookup(line)
			switch {
			case errors.Is(err, cmd.ErrNotFound):
				h.println("Command not found.")
				continue
			case errors.Is(err, cmd.ErrAmbiguous):
				h.println("Command is ambiguous.")
				continue
			case err != nil:
				h.printf("ERROR: %v.\n", err)
				continue
			}

			switch n := n.(type) {
			case *cmd.Command:
				c = selection{Command: n, Args: args}
			case *cmd.Tree:
				if group, ok := n.Data.(*command); ok {
					h.displayCommands(group)
				}
				continue
			}
		} else if h.lastCmd != nil {
			c = *h.lastCmd
		}

		if c.Command == nil {
			continue
		}
		h.lastCmd = &c

		entry, ok := c.Command.Data.(*command)
		if !ok || entry.handler == nil {
			continue
		}

		err = entry.handler(h, c)
		h.flush()
		if err != nil {
			break
		}
	}
}

func (h *Host) printf(format string, args ...any) {
	fmt.Fprintf(h.output, format, args...)
	h.flush()
}

func (h *Host) println(args ...any) {
	fmt.Fprintln(h.output, args...)
	h.flush()
}

func (h *Host) flush() {
	h.output.Flush()
}

func (h *Host) getLine() (string, error) {
	if h.input.Scan() {
		return strings.TrimSpace(h.input.Text()), nil
	}
	if h.input.Err() != nil {
		return "", h.input.Err()
	}
	return "", io.EOF
}

func (h *Host) prompt(p string) {
	if h.interactive {
		h.printf("%s", p)
	}
}

func (h *Host) cmdHelp(c selection) error {
	entry, err := findCommand(c.Args)
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	if entry.sub != nil {
		h.displayCommands(entry)
		return nil
	}

	if entry.usage != "" {
		h.printf("Syntax: %s\n\n", entry.usage)
	}
	switch {
	case entry.description != "":
		h.printf("Description:\n%s\n\n", indentWrap(3, entry.description))
	case entry.brief != "":
		h.printf("Description:\n%s.\n\n", indentWrap(3, entry.brief))
	}
	return nil
}

func (h *Host) cmdAssembleFile(c selection) error {
	if len(c.Args) < 1 {
		h.displayHelpText(c)
		return nil
	}

	filename := c.Args[0]
	if filepath.Ext(filename) == "" {
		filename += ".asm"
	}

	var options asm.Option
	verbose := h.settings.Verbose
	if len(c.Args) >= 2 {
		v, err := stringToBool(c.Args[1])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		verbose = v
	}
	if verbose {
		options |= asm.Verbose
	}

	err := asm.AssembleFile(filename, h.settings.Origin, options, h.output)
	if err != nil {
		h.printf("Failed to assemble '%s': %v\n", filepath.Base(filename), err)
	}
	return nil
}

func (h *Host) cmdAssembleText(c selection) error {
	origin := h.settings.Origin
	if len(c.Args) > 0 {
		addr, err := h.parseAddr(c.Args[0])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		origin = addr
	}

	if h.interactive {
		h.println("Enter assembly language instructions.")
		h.println("Type END to finish.")
	}

	var b strings.Builder
	for {
		h.prompt(fmt.Sprintf("%04X- ", origin))
		line, err := h.getLine()
		if err != nil || strings.ToUpper(line) == "END" {
			break
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}

	var options asm.Option
	if h.settings.Verbose {
		options |= asm.Verbose
	}

	a := asm.NewAssembler(strings.NewReader(b.String()), h.output, options)
	a.Table = h.table
	a.Origin = origin

	code, err := a.Binary()
	if err != nil {
		h.printf("Failed to assemble: %v\n", err)
		for _, e := range a.Errors() {
			h.printf("Error in line %d: %s\n", e.Line, e.Msg)
		}
		return nil
	}

	if len(code) == 0 {
		h.println("No code assembled.")
		return nil
	}

	err = memory.Load(h.mem, origin, code)
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	h.printf("Assembled %d bytes to $%04X..$%04X.\n", len(code), origin, int(origin)+len(code)-1)
	return nil
}

func (h *Host) cmdLoad(c selection) error {
	if len(c.Args) < 1 {
		h.displayHelpText(c)
		return nil
	}

	filename := c.Args[0]
	if filepath.Ext(filename) == "" {
		filename += ".bin"
	}

	loadAddr := -1
	if len(c.Args) >= 2 {
		addr, err := h.parseAddr(c.Args[1])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		loadAddr = int(addr)
	}

	h.load(filename, loadAddr)
	return nil
}

func (h *Host) cmdMemoryDump(c selection) error {
	addr := h.settings.NextMemDumpAddr
	if len(c.Args) > 0 && c.Args[0] != "$" {
		a, err := h.parseAddr(c.Args[0])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		addr = a
	}

	bytes := h.settings.MemDumpBytes
	if len(c.Args) >= 2 {
		v, err := h.parseValue(c.Args[1])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		bytes = v
	}

	h.dumpMemory(addr, bytes)

	h.settings.NextMemDumpAddr = addr + uint16(bytes)
	h.lastCmd.Args = []string{"$", fmt.Sprintf("%d", bytes)}
	return nil
}

func (h *Host) cmdMemoryFetch(c selection) error {
	if len(c.Args) < 1 {
		h.displayHelpText(c)
		return nil
	}

	addr, err := h.parseAddr(c.Args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	n := 1
	if len(c.Args) >= 2 {
		n, err = h.parseValue(c.Args[1])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
	}

	v, err := h.mem.Fetch(addr, n)
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	h.printf("$%04X: $%0*X (%d)%s\n", addr, n*2, v, v, h.sourceRef(addr))
	return nil
}

func (h *Host) cmdMemorySet(c selection) error {
	if len(c.Args) < 2 {
		h.displayHelpText(c)
		return nil
	}

	addr, err := h.parseAddr(c.Args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	b := make([]byte, 0, len(c.Args)-1)
	for _, s := range c.Args[1:] {
		v, err := h.parseValue(s)
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		if v > 0xff {
			h.printf("Value %s is not a byte.\n", s)
			return nil
		}
		b = append(b, byte(v))
	}

	err = memory.Load(h.mem, addr, b)
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	h.printf("Stored %d byte(s) at $%04X.\n", len(b), addr)
	return nil
}

func (h *Host) cmdModes(c selection) error {
	if len(c.Args) < 1 {
		h.displayHelpText(c)
		return nil
	}

	arg := strings.Join(c.Args, " ")
	modes, literal, err := asm.DeriveModes(arg)
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	names := make([]string, len(modes))
	for i, m := range modes {
		names[i] = fmt.Sprintf("%s (%s)", m.Name(), m)
	}
	h.printf("Modes:   %s\n", strings.Join(names, ", "))

	if literal != "" {
		v, err := asm.ParseLiteral(literal)
		if err != nil {
			h.printf("Literal: %s (invalid)\n", literal)
		} else {
			h.printf("Literal: %s = $%X (%d)\n", literal, v, v)
		}
	}
	return nil
}

func (h *Host) cmdOpcodes(c selection) error {
	if len(c.Args) == 0 {
		for _, m := range h.table.Mnemonics() {
			records := h.table[m]
			modes := make([]string, len(records))
			for i, r := range records {
				modes[i] = r.Mode.String()
			}
			h.printf("    %-4s %s\n", m, strings.Join(modes, "  "))
		}
		return nil
	}

	m, err := h.mnemonics.FindValue(strings.ToLower(c.Args[0]))
	if err != nil {
		h.printf("Mnemonic '%s': %v\n", c.Args[0], err)
		return nil
	}

	h.printf("%s opcodes:\n", m)
	h.println("    Op  Mode  Syntax  Bytes")
	h.println("    --  ----  ------  -----")
	for _, r := range h.table[m] {
		h.printf("    %02X  %-4s  %-6s  %d\n", r.Opcode, r.Mode.Name(), r.Mode, 1+r.Size())
	}
	return nil
}

func (h *Host) cmdQuit(c selection) error {
	return errors.New("Exiting program")
}

func (h *Host) cmdSet(c selection) error {
	switch len(c.Args) {
	case 0:
		h.println("Variables:")
		h.settings.Display(h.output)

	case 1:
		h.displayHelpText(c)

	default:
		key, value := c.Args[0], strings.Join(c.Args[1:], " ")

		var err error
		switch h.settings.Kind(key) {
		case reflect.Invalid:
			err = fmt.Errorf("Setting '%s' not found", key)
		case reflect.Bool:
			var v bool
			v, err = stringToBool(value)
			if err == nil {
				err = h.settings.Set(key, v)
			}
		default:
			var v int
			v, err = h.parseValue(value)
			if err == nil {
				err = h.settings.Set(key, v)
			}
		}

		if err == nil {
			h.printf("Setting %s updated.\n", h.settings.Name(key))
		} else {
			h.printf("%v\n", err)
		}
	}

	return nil
}

func (h *Host) load(filename string, addr int) {
	file, err := os.Open(filename)
	if err != nil {
		h.printf("Failed to open '%s': %v\n", filepath.Base(filename), err)
		return
	}
	defer file.Close()

	a := &asm.Assembly{}
	_, err = a.ReadFrom(file)
	if err != nil {
		h.printf("Failed to read '%s': %v\n", filepath.Base(filename), err)
		return
	}

	ext := filepath.Ext(filename)
	mapFilename := filename[:len(filename)-len(ext)] + ".map"

	var sourceMap *asm.SourceMap
	if mapFile, err := os.Open(mapFilename); err == nil {
		defer mapFile.Close()

		sourceMap = &asm.SourceMap{}
		_, err = sourceMap.ReadFrom(mapFile)
		switch {
		case err != nil:
			h.printf("Failed to read '%s': %v\n", filepath.Base(mapFilename), err)
			sourceMap = nil
		case sourceMap.CRC != crc32.ChecksumIEEE(a.Code):
			h.printf("Source map '%s' does not match '%s'.\n", filepath.Base(mapFilename), filepath.Base(filename))
			sourceMap = nil
		}
	}

	var origin uint16
	switch {
	case addr >= 0:
		origin = uint16(addr)
	case sourceMap != nil:
		origin = sourceMap.Origin
	default:
		h.printf("File '%s' has no source map and requires an address.\n", filepath.Base(filename))
		return
	}

	err = memory.Load(h.mem, origin, a.Code)
	if err != nil {
		h.printf("Failed to load '%s': %v\n", filepath.Base(filename), err)
		return
	}
	h.printf("Loaded '%s' to $%04X..$%04X.\n", filepath.Base(filename), origin, int(origin)+len(a.Code)-1)

	if sourceMap != nil && sourceMap.Origin == origin {
		h.sourceMap = sourceMap
		h.printf("Loaded '%s' source map.\n", filepath.Base(mapFilename))
	}
}

// Return the source file and line that produced the instruction at addr,
// formatted as a listing annotation.
func (h *Host) sourceRef(addr uint16) string {
	if h.sourceMap == nil {
		return ""
	}
	filename, line := h.sourceMap.Search(int(addr))
	if line < 0 {
		return ""
	}
	return fmt.Sprintf("  ; %s:%d", filepath.Base(filename), line)
}

// Parse a numeric literal. In hex mode, unprefixed literals are
// hexadecimal.
func (h *Host) parseValue(s string) (int, error) {
	lit := s
	if h.settings.HexMode && lit != "" && lit[0] != '$' && lit[0] != '%' {
		lit = "$" + lit
	}
	v, err := asm.ParseLiteral(lit)
	if err != nil {
		return 0, fmt.Errorf("invalid value '%s'", s)
	}
	return v, nil
}

func (h *Host) parseAddr(s string) (uint16, error) {
	v, err := h.parseValue(s)
	if err != nil {
		return 0, err
	}
	if v > 0xffff {
		return 0, fmt.Errorf("address '%s' out of range", s)
	}
	return uint16(v), nil
}

func (h *Host) dumpMemory(addr0 uint16, bytes int) {
	if bytes <= 0 {
		return
	}

	addr1 := addr0 + uint16(bytes-1)
	if int(addr0)+bytes-1 > 0xffff {
		addr1 = 0xffff
	}

	buf := []byte("    -" + strings.Repeat(" ", 35))

	// Don't align display for short dumps.
	if addr1-addr0 < 8 {
		addrToBuf(addr0, buf[0:4])
		for a, c1, c2 := uint32(addr0), 6, 32; a <= uint32(addr1); a, c1, c2 = a+1, c1+3, c2+1 {
			m := h.mem.LoadByte(uint16(a))
			byteToBuf(m, buf[c1:c1+2])
			buf[c2] = toPrintableChar(m)
		}
		h.println(string(buf))
		return
	}

	// Align addr0 and addr1 to 8-byte boundaries.
	start := uint32(addr0) & 0xfff8
	stop := (uint32(addr1) + 8) & 0xffff8
	if stop > 0x10000 {
		stop = 0x10000
	}

	a := start
	for r := start; r < stop; r += 8 {
		addrToBuf(uint16(a), buf[0:4])
		for c1, c2 := 6, 32; c1 < 29; c1, c2, a = c1+3, c2+1, a+1 {
			if a >= uint32(addr0) && a <= uint32(addr1) {
				m := h.mem.LoadByte(uint16(a))
				byteToBuf(m, buf[c1:c1+2])
				buf[c2] = toPrintableChar(m)
			} else {
				buf[c1] = ' '
				buf[c1+1] = ' '
				buf[c2] = ' '
			}
		}
		h.println(string(buf))
	}
}

func (h *Host) displayHelpText(c selection) {
	entry, ok := c.Command.Data.(*command)
	if ok && entry.usage != "" {
		h.printf("Syntax: %s\n", entry.usage)
	} else {
		h.println("<no help text>")
	}
}

func (h *Host) displayCommands(group *command) {
	title := group.brief
	if title == "" {
		title = "Available commands"
	}
	h.printf("%s:\n", title)
	for _, c := range group.sub {
		if c.brief != "" {
			h.printf("    %-15s  %s\n", c.name, c.brief)
		}
	}
}
