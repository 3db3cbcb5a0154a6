// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"regexp"
	"strings"
)

// Mode describes a memory addressing mode.
type Mode byte

// All possible memory addressing modes
const (
	ACC Mode = iota // Accumulator
	IMP             // Implied
	IMM             // Immediate
	ABS             // Absolute
	ZPG             // Zero Page
	REL             // Relative
	IND             // Absolute Indirect
	ABX             // Absolute,X
	ABY             // Absolute,Y
	ZPX             // Zero Page,X
	ZPY             // Zero Page,Y
	IDX             // (Zero Page,X)
	IDY             // (Zero Page),Y
)

var modeName = []string{
	"ACC",
	"IMP",
	"IMM",
	"ABS",
	"ZPG",
	"REL",
	"IND",
	"ABX",
	"ABY",
	"ZPX",
	"ZPY",
	"IDX",
	"IDY",
}

var modeSymbol = []string{
	"A",      // ACC
	"i",      // IMP
	"#",      // IMM
	"a",      // ABS
	"zp",     // ZPG
	"r",      // REL
	"(a)",    // IND
	"a,x",    // ABX
	"a,y",    // ABY
	"zp,x",   // ZPX
	"zp,y",   // ZPY
	"(zp,x)", // IDX
	"(zp),y", // IDY
}

// String returns the conventional operand notation for the mode.
func (m Mode) String() string {
	if int(m) < len(modeSymbol) {
		return modeSymbol[m]
	}
	return "?"
}

// Name returns the three-letter tag for the mode.
func (m Mode) Name() string {
	if int(m) < len(modeName) {
		return modeName[m]
	}
	return "???"
}

func joinModes(modes []Mode) string {
	s := make([]string, len(modes))
	for i, m := range modes {
		s[i] = m.String()
	}
	return strings.Join(s, ", ")
}

// Literal shapes accepted in operands. The 8-bit and 16-bit decimal shapes
// overlap at three digits; pattern order decides which wins.
const (
	binLiteral8  = `%[01]{1,8}`
	binLiteral16 = `%[01]{9,16}`
	hexLiteral8  = `\$[0-9A-Fa-f]{1,2}`
	hexLiteral16 = `\$[0-9A-Fa-f]{3,4}`
	decLiteral8  = `[0-9]{1,3}`
	decLiteral16 = `[0-9]{3,5}`

	literal8  = binLiteral8 + `|` + hexLiteral8 + `|` + decLiteral8
	literal16 = binLiteral16 + `|` + hexLiteral16 + `|` + decLiteral16
	literal   = binLiteral8 + `|` + binLiteral16 + `|` +
		hexLiteral8 + `|` + hexLiteral16 + `|` +
		decLiteral8 + `|` + decLiteral16
)

// A modePattern associates an operand shape with the addressing modes it
// may represent. The first capture group holds the numeric literal.
type modePattern struct {
	re    *regexp.Regexp
	modes []Mode
}

// Operand shapes in priority order.
var modePatterns = []modePattern{
	{regexp.MustCompile(`^#(` + literal + `)$`), []Mode{IMM}},
	{regexp.MustCompile(`^(` + literal16 + `)$`), []Mode{ABS}},
	{regexp.MustCompile(`^(` + literal8 + `)$`), []Mode{ZPG, REL}},
	{regexp.MustCompile(`^\((` + literal + `)\)$`), []Mode{IND}},
	{regexp.MustCompile(`^(` + literal16 + `),[Xx]$`), []Mode{ABX}},
	{regexp.MustCompile(`^(` + literal8 + `),[Xx]$`), []Mode{ZPX}},
	{regexp.MustCompile(`^(` + literal16 + `),[Yy]$`), []Mode{ABY}},
	{regexp.MustCompile(`^(` + literal8 + `),[Yy]$`), []Mode{ZPY}},
	{regexp.MustCompile(`^\((` + literal + `),[Xx]\)$`), []Mode{IDX}},
	{regexp.MustCompile(`^\((` + literal + `)\),[Yy]$`), []Mode{IDY}},
}

// DeriveModes returns the addressing modes an instruction argument could
// represent, along with the numeric literal embedded in the argument. An
// empty argument represents either the accumulator or implied mode.
func DeriveModes(argument string) (modes []Mode, literal string, err error) {
	if argument == "" {
		return []Mode{ACC, IMP}, "", nil
	}

	for _, p := range modePatterns {
		m := p.re.FindStringSubmatch(argument)
		if m == nil {
			continue
		}
		modes = make([]Mode, len(p.modes))
		copy(modes, p.modes)
		return modes, m[1], nil
	}

	return nil, "", newError(Syntax, "Unknown, incompatible or malformed argument: %s", argument)
}

func containsMode(modes []Mode, m Mode) bool {
	for _, mm := range modes {
		if mm == m {
			return true
		}
	}
	return false
}
