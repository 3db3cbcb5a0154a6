// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"strings"

	"github.com/beevik/cmd"
	"github.com/beevik/prefixtree/v2"
)

// A command describes a host command or a group of subcommands. Commands
// are stored as the data of each node in the cmd tree.
type command struct {
	name        string
	brief       string
	description string
	usage       string
	handler     func(*Host, selection) error
	sub         []*command
	subTree     *prefixtree.Tree[*command]
}

// A selection is a command chosen from the cmd tree along with the
// arguments that followed it on the command line.
type selection struct {
	Command *cmd.Command
	Args    []string
}

var (
	cmds     *cmd.Tree
	commands *command
)

func init() {
	commands = &command{name: "asm6502", sub: []*command{
		{
			name:        "help",
			brief:       "Display help for a command",
			description: "Display help for a command.",
			usage:       "help [<command>]",
			handler:     (*Host).cmdHelp,
		},
		{
			name:  "assemble",
			brief: "Assemble commands",
			sub: []*command{
				{
					name:  "file",
					brief: "Assemble a file from disk and save the binary to disk",
					description: "Run the assembler on the specified file," +
						" producing a binary file and source map file if successful." +
						" If you want verbose output, specify true as a second parameter.",
					usage:   "assemble file <filename> [<verbose>]",
					handler: (*Host).cmdAssembleFile,
				},
				{
					name:  "text",
					brief: "Assemble lines typed at the prompt",
					description: "Start interactive assembler mode. Each line" +
						" entered is an instruction. Once you type END, the" +
						" instructions will be assembled and stored in memory at" +
						" the specified address, or at the Origin setting if no" +
						" address is given.",
					usage:   "assemble text [<address>]",
					handler: (*Host).cmdAssembleText,
				},
			},
		},
		{
			name:  "load",
			brief: "Load a binary file",
			description: "Load the contents of a binary file into memory. If" +
				" the file has an associated source map, it will be loaded too" +
				" and its origin used as the load address. Files without a" +
				" source map require an address.",
			usage:   "load <filename> [<address>]",
			handler: (*Host).cmdLoad,
		},
		{
			name:  "memory",
			brief: "Memory commands",
			sub: []*command{
				{
					name:  "dump",
					brief: "Dump memory at address",
					description: "Dump the contents of memory starting from the" +
						" specified address. The number of bytes to dump may be" +
						" specified as an option. If no address is specified, the" +
						" memory dump continues from where the last dump left off.",
					usage:   "memory dump [<address>] [<bytes>]",
					handler: (*Host).cmdMemoryDump,
				},
				{
					name:  "fetch",
					brief: "Read a value from memory",
					description: "Read a 1- or 2-byte little-endian value from" +
						" memory at the specified address.",
					usage:   "memory fetch <address> [<bytes>]",
					handler: (*Host).cmdMemoryFetch,
				},
				{
					name:  "set",
					brief: "Set memory at address",
					description: "Set the contents of memory starting from the specified" +
						" address. The values to assign should be a series of" +
						" space-separated byte values.",
					usage:   "memory set <address> <byte> [<byte> ...]",
					handler: (*Host).cmdMemorySet,
				},
			},
		},
		{
			name:  "modes",
			brief: "Show the addressing modes of an argument",
			description: "Display the addressing modes an instruction argument" +
				" could represent, along with the numeric literal it contains.",
			usage:   "modes <argument>",
			handler: (*Host).cmdModes,
		},
		{
			name:  "opcodes",
			brief: "List opcodes",
			description: "List the opcodes available for a mnemonic. The" +
				" mnemonic may be abbreviated to any unique prefix. With no" +
				" mnemonic, list every mnemonic the assembler knows.",
			usage:   "opcodes [<mnemonic>]",
			handler: (*Host).cmdOpcodes,
		},
		{
			name:        "quit",
			brief:       "Quit the program",
			description: "Quit the program.",
			usage:       "quit",
			handler:     (*Host).cmdQuit,
		},
		{
			name:  "set",
			brief: "Set a configuration variable",
			description: "Set the value of a configuration variable. To see the" +
				" current values of all configuration variables, type set" +
				" without any arguments.",
			usage:   "set [<var> <value>]",
			handler: (*Host).cmdSet,
		},
	}}

	root := cmd.NewTree(cmd.TreeDescriptor{Name: commands.name, Data: commands})
	addCommands(root, commands)

	// Add command shortcuts.
	root.AddShortcut("a", "assemble file")
	root.AddShortcut("at", "assemble text")
	root.AddShortcut("m", "memory dump")
	root.AddShortcut("mf", "memory fetch")
	root.AddShortcut("ms", "memory set")
	root.AddShortcut("?", "help")

	cmds = root
}

func addCommands(t *cmd.Tree, group *command) {
	group.subTree = prefixtree.New[*command]()
	for _, c := range group.sub {
		group.subTree.Add(c.name, c)
		if c.sub != nil {
			addCommands(t.AddSubtree(cmd.TreeDescriptor{
				Name:  c.name,
				Brief: c.brief,
				Data:  c,
			}), c)
			continue
		}
		t.AddCommand(cmd.CommandDescriptor{
			Name:        c.name,
			Brief:       c.brief,
			Description: c.description,
			Usage:       c.usage,
			Data:        c,
		})
	}
}

// Find the command or command group named by a series of words, each of
// which may be abbreviated to a unique prefix.
func findCommand(words []string) (*command, error) {
	c := commands
	for _, w := range words {
		if c.subTree == nil {
			break
		}
		next, err := c.subTree.FindValue(strings.ToLower(w))
		if err != nil {
			return nil, err
		}
		c = next
	}
	return c, nil
}
