// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import "fmt"

// ErrorKind identifies the class of an assembly error.
type ErrorKind byte

// Assembly error classes
const (
	UnknownMnemonic ErrorKind = iota // mnemonic not present in the opcode table
	Syntax                           // malformed argument or incompatible addressing mode
	Overflow                         // literal too wide for the addressing mode
)

var kindName = []string{
	"unknown mnemonic",
	"syntax error",
	"overflow",
}

func (k ErrorKind) String() string {
	if int(k) < len(kindName) {
		return kindName[k]
	}
	return "error"
}

// An Error describes a problem with a single line of assembly code. Line is
// the 1-based source line number, or 0 if the error has not been associated
// with a line.
type Error struct {
	Kind ErrorKind
	Line int
	Msg  string
}

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	return e.Msg
}

// An AggregateError is returned when one or more lines fail to assemble.
// The individual line errors are kept in source line order.
type AggregateError struct {
	Errors []*Error
}

func (e *AggregateError) Error() string {
	return fmt.Sprintf("%d error(s) occurred during the assemble process.", len(e.Errors))
}

// Unwrap returns the individual line errors.
func (e *AggregateError) Unwrap() []error {
	errs := make([]error, len(e.Errors))
	for i, le := range e.Errors {
		errs[i] = le
	}
	return errs
}
