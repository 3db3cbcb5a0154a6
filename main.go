// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/beevik/asm6502/asm"
	"github.com/beevik/asm6502/host"
	"github.com/beevik/term"
)

type cliArgs struct {
	Assemble cliAssembleCmd `cmd:"" aliases:"a" help:"Assemble a source file into .bin and .map files."`
	Shell    cliShellCmd    `cmd:"" help:"Run the interactive assembler shell."`
	Modes    cliModesCmd    `cmd:"" help:"Show the addressing modes of an instruction argument."`
}

type cliAssembleCmd struct {
	File    string `arg:"" help:"Path to the assembly source file."`
	Origin  string `short:"o" help:"Load address of the first instruction (default $1000)."`
	Verbose bool   `short:"v" help:"Print a listing while assembling."`
}

type cliShellCmd struct {
	Scripts []string `arg:"" optional:"" help:"Command scripts to run before reading standard input."`
}

type cliModesCmd struct {
	Argument string `arg:"" help:"Instruction argument, for example '$4000,X'."`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(argv []string, stdout, stderr io.Writer) int {
	if len(argv) == 0 {
		return cmdShell(nil, stdout, stderr)
	}

	args, parsed, err := parseCLI(argv, stdout, stderr)
	if err != nil {
		return fail(stderr, err, 2)
	}

	selected := parsed.Selected()
	if selected == nil {
		return cmdShell(nil, stdout, stderr)
	}

	switch selected.Path() {
	case "assemble":
		return cmdAssemble(args.Assemble, stdout, stderr)
	case "shell":
		return cmdShell(args.Shell.Scripts, stdout, stderr)
	case "modes":
		return cmdModes(args.Modes.Argument, stdout, stderr)
	default:
		return 2
	}
}

func parseCLI(argv []string, stdout, stderr io.Writer) (cliArgs, *kong.Context, error) {
	var args cliArgs
	parser, err := kong.New(
		&args,
		kong.Name("asm6502"),
		kong.Description("A table-driven 6502 assembler."),
		kong.Writers(stdout, stderr),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	if err != nil {
		return args, nil, err
	}
	parsed, err := parser.Parse(argv)
	if err != nil {
		return args, nil, err
	}
	return args, parsed, nil
}

func cmdAssemble(c cliAssembleCmd, stdout, stderr io.Writer) int {
	origin := uint16(asm.DefaultOrigin)
	if c.Origin != "" {
		v, err := asm.ParseLiteral(c.Origin)
		if err != nil || v > 0xffff {
			return fail(stderr, fmt.Errorf("invalid origin '%s'", c.Origin), 2)
		}
		origin = uint16(v)
	}

	var options asm.Option
	if c.Verbose {
		options |= asm.Verbose
	}

	err := asm.AssembleFile(c.File, origin, options, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to assemble file '%s'.\n", c.File)
		return fail(stderr, err, 1)
	}
	return 0
}

func cmdShell(scripts []string, stdout, stderr io.Writer) int {
	h := host.New()

	// Run commands contained in command-line files.
	for _, filename := range scripts {
		file, err := os.Open(filename)
		if err != nil {
			return fail(stderr, err, 1)
		}
		h.RunCommands(file, stdout, false)
		file.Close()
	}

	// Run commands from standard input, prompting only at a terminal.
	h.RunCommands(os.Stdin, stdout, term.IsTerminal(int(os.Stdin.Fd())))
	return 0
}

func cmdModes(arg string, stdout, stderr io.Writer) int {
	modes, literal, err := asm.DeriveModes(arg)
	if err != nil {
		return fail(stderr, err, 1)
	}

	names := make([]string, len(modes))
	for i, m := range modes {
		names[i] = fmt.Sprintf("%s (%s)", m.Name(), m)
	}
	fmt.Fprintf(stdout, "%s\n", strings.Join(names, ", "))
	if literal != "" {
		fmt.Fprintf(stdout, "literal %s\n", literal)
	}
	return 0
}

func fail(stderr io.Writer, err error, code int) int {
	fmt.Fprintf(stderr, "ERROR: %v\n", err)
	return code
}
