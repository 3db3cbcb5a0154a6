// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package asm implements a table-driven 6502 assembler.
//
// Each line of source code holds a mnemonic and an optional argument. The
// argument's lexical shape determines the candidate addressing modes, the
// opcode table selects the first matching opcode, and the argument's
// literal is encoded as little-endian operand bytes. Errors are collected
// per line, so a single pass reports every faulty line.
package asm

import (
	"bufio"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// Option type used by the Assemble function.
type Option uint

// Options for the Assemble function.
const (
	Verbose Option = 1 << iota // verbose output during assembly
)

// DefaultOrigin is the load address used when none is specified.
const DefaultOrigin = 0x1000

// An Assembler turns the lines of a source reader into machine code. An
// assembler performs a single pass over its source; subsequent calls to
// Assemble and Binary return the results of that pass.
type Assembler struct {
	Table  OpcodeTable // opcode table; Opcodes if nil
	Origin uint16      // address of the first instruction, for listings

	r            io.Reader
	out          io.Writer
	verbose      bool
	assembled    bool
	readErr      error
	instructions []*Instruction
	lines        []int // source line of each instruction
	errors       []*Error
	code         []byte
}

// NewAssembler creates an assembler that reads source code from r. Verbose
// output, if requested, is written to out.
func NewAssembler(r io.Reader, out io.Writer, options Option) *Assembler {
	if out == nil {
		out = os.Stdout
	}
	return &Assembler{
		r:       r,
		out:     out,
		verbose: (options & Verbose) != 0,
	}
}

// Assemble parses and resolves every line of source code. If any line
// fails, an *AggregateError describing all failed lines is returned.
func (a *Assembler) Assemble() error {
	if !a.assembled {
		a.assembled = true
		a.readErr = a.parse()
	}
	return a.result()
}

// Binary returns the machine code for the assembled source, assembling it
// first if necessary. No code is returned unless every line assembled
// successfully.
func (a *Assembler) Binary() ([]byte, error) {
	if err := a.Assemble(); err != nil {
		return nil, err
	}
	if a.code == nil {
		a.generateCode()
	}
	return a.code, nil
}

// Errors returns the errors encountered during assembly, in source line
// order.
func (a *Assembler) Errors() []*Error {
	return a.errors
}

// HasErrors returns true if any line failed to assemble.
func (a *Assembler) HasErrors() bool {
	return len(a.errors) > 0
}

// Success returns true if the source has been assembled without errors.
func (a *Assembler) Success() bool {
	return a.assembled && a.readErr == nil && len(a.errors) == 0
}

// Instructions returns the successfully resolved instructions.
func (a *Assembler) Instructions() []*Instruction {
	return a.instructions
}

func (a *Assembler) result() error {
	switch {
	case a.readErr != nil:
		return a.readErr
	case len(a.errors) > 0:
		return &AggregateError{Errors: a.errors}
	default:
		return nil
	}
}

func (a *Assembler) table() OpcodeTable {
	if a.Table == nil {
		return Opcodes
	}
	return a.Table
}

// Read the source code and resolve each line into an instruction.
func (a *Assembler) parse() error {
	a.logSection("Parsing assembly code")

	scanner := bufio.NewScanner(a.r)
	row := 0
	for scanner.Scan() {
		row++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		a.parseLine(row, line)
	}
	return scanner.Err()
}

// Parse a single non-empty line of assembly code.
func (a *Assembler) parseLine(row int, line string) {
	mnemonic, argument := splitLine(line)
	inst := a.table().Instruction(mnemonic, argument)

	e, err := inst.Resolve()
	if err != nil {
		a.addError(row, line, err)
		return
	}

	a.instructions = append(a.instructions, inst)
	a.lines = append(a.lines, row)
	a.logLine(row, fmt.Sprintf("op=%s mode=%s", inst.Mnemonic, e.Mode.Name()), line)
}

// Split a line into a mnemonic and the remainder of the line.
func splitLine(line string) (mnemonic, argument string) {
	i := strings.IndexFunc(line, unicode.IsSpace)
	if i < 0 {
		return line, ""
	}
	return line[:i], strings.TrimLeftFunc(line[i:], unicode.IsSpace)
}

// Generate machine code for all resolved instructions.
func (a *Assembler) generateCode() {
	a.logSection("Generating code")

	a.code = []byte{}
	addr := int(a.Origin)
	for _, inst := range a.instructions {
		e, _ := inst.Resolve()
		b := e.Bytes()
		a.code = append(a.code, b...)
		a.log("%04X-   %-8s    %s", addr&0xffff, byteString(b), inst)
		addr += len(b)
	}
}

// Append an error to the assembler's error state, tagging it with the line
// number where it occurred.
func (a *Assembler) addError(row int, line string, err error) {
	var e *Error
	if !errors.As(err, &e) {
		e = &Error{Kind: Syntax, Msg: err.Error()}
	}
	e.Line = row
	a.errors = append(a.errors, e)
	a.logLine(row, "err="+e.Kind.String(), line)
	if a.verbose {
		fmt.Fprintf(a.out, "Error on line %d: %s\n", e.Line, e.Msg)
	}
}

// In verbose mode, log a string to the output.
func (a *Assembler) log(format string, args ...any) {
	if a.verbose {
		fmt.Fprintf(a.out, format, args...)
		fmt.Fprintf(a.out, "\n")
	}
}

// In verbose mode, log a detail string and its associated line of
// assembly code.
func (a *Assembler) logLine(row int, detail, line string) {
	if a.verbose {
		fmt.Fprintf(a.out, "%-3d | %-20s | %s\n", row, detail, line)
	}
}

// In verbose mode, log a section header to the output.
func (a *Assembler) logSection(name string) {
	if a.verbose {
		fmt.Fprintln(a.out, strings.Repeat("-", len(name)+6))
		fmt.Fprintf(a.out, "-- %s --\n", name)
		fmt.Fprintln(a.out, strings.Repeat("-", len(name)+6))
	}
}

// Assembly contains the assembled machine code and other data associated with
// the machine code.
type Assembly struct {
	Origin uint16   // Address of the first byte of code
	Code   []byte   // Assembled machine code
	Errors []string // Errors encountered during assembly
}

// ReadFrom reads machine code from a binary input source.
func (a *Assembly) ReadFrom(r io.Reader) (n int64, err error) {
	a.Errors = []string{}
	a.Code, err = io.ReadAll(r)
	n = int64(len(a.Code))
	if n > 0x10000 {
		return n, fmt.Errorf("code exceeded 64K size")
	}
	return n, err
}

// WriteTo saves machine code as binary data into an output writer.
func (a *Assembly) WriteTo(w io.Writer) (n int64, err error) {
	nn, err := w.Write(a.Code)
	return int64(nn), err
}

// AssembleFile reads a file containing 6502 assembly code, assembles it,
// and produces a binary output file and a source map file.
func AssembleFile(path string, origin uint16, options Option, out io.Writer) error {
	inFile, err := os.Open(path)
	if err != nil {
		return err
	}
	defer inFile.Close()

	assembly, sourceMap, err := Assemble(inFile, path, origin, out, options)
	if err != nil {
		for _, e := range assembly.Errors {
			fmt.Fprintln(out, e)
		}
		return err
	}

	ext := filepath.Ext(path)
	prefix := path[:len(path)-len(ext)]
	binPath := prefix + ".bin"
	binFile, err := os.OpenFile(binPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer binFile.Close()

	_, err = assembly.WriteTo(binFile)
	if err != nil {
		return err
	}

	mapPath := prefix + ".map"
	mapFile, err := os.OpenFile(mapPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer mapFile.Close()

	_, err = sourceMap.WriteTo(mapFile)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Assembled '%s' to produce '%s' and '%s'.\n",
		filepath.Base(path),
		filepath.Base(binPath),
		filepath.Base(mapPath))
	return nil
}

// Assemble reads data from the provided stream and attempts to assemble it
// into 6502 byte code. The code is assumed to be loaded at origin.
func Assemble(r io.Reader, filename string, origin uint16, out io.Writer, options Option) (*Assembly, *SourceMap, error) {
	a := NewAssembler(r, out, options)
	a.Origin = origin

	code, err := a.Binary()

	errors := make([]string, 0, len(a.errors))
	for _, e := range a.errors {
		errors = append(errors, fmt.Sprintf("Error in '%s' line %d: %s", filename, e.Line, e.Msg))
	}

	assembly := &Assembly{
		Origin: origin,
		Code:   code,
		Errors: errors,
	}

	sourceMap := &SourceMap{
		Origin: origin,
		Size:   uint32(len(code)),
		CRC:    crc32.ChecksumIEEE(code),
		Files:  []string{filename},
	}
	if err == nil {
		addr := int(origin)
		for i, inst := range a.instructions {
			e, _ := inst.Resolve()
			sourceMap.Lines = append(sourceMap.Lines, SourceLine{
				Address:   addr,
				FileIndex: 0,
				Line:      a.lines[i],
			})
			addr += e.Size()
		}
	}

	return assembly, sourceMap, err
}

var hex = "0123456789ABCDEF"

// Return a hexadecimal string representation of a byte slice, with bytes
// separated by spaces.
func byteString(b []byte) string {
	if len(b) < 1 {
		return ""
	}

	s := make([]byte, 0, len(b)*3-1)
	for i, v := range b {
		if i > 0 {
			s = append(s, ' ')
		}
		s = append(s, hex[v>>4], hex[v&0x0f])
	}
	return string(s)
}
