// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/beevik/asm6502/asm"
	"github.com/beevik/prefixtree/v2"
)

type settings struct {
	Origin          uint16 `doc:"default load address for assembled code"`
	Verbose         bool   `doc:"verbose assembler output"`
	HexMode         bool   `doc:"hexadecimal input mode"`
	MemDumpBytes    int    `doc:"default number of memory bytes to dump"`
	NextMemDumpAddr uint16 `doc:"address of next memory dump"`
}

func newSettings() *settings {
	return &settings{
		Origin:       asm.DefaultOrigin,
		MemDumpBytes: 64,
	}
}

type settingsField struct {
	name  string
	index int
	kind  reflect.Kind
	typ   reflect.Type
	doc   string
}

var (
	settingsTree   = prefixtree.New[*settingsField]()
	settingsFields []settingsField
)

func init() {
	settingsType := reflect.TypeOf(settings{})
	settingsFields = make([]settingsField, settingsType.NumField())
	for i := range settingsFields {
		f := settingsType.Field(i)
		doc, _ := f.Tag.Lookup("doc")
		settingsFields[i] = settingsField{
			name:  f.Name,
			index: i,
			kind:  f.Type.Kind(),
			typ:   f.Type,
			doc:   doc,
		}
		settingsTree.Add(strings.ToLower(f.Name), &settingsFields[i])
	}
}

// Display writes every setting and its current value.
func (s *settings) Display(w io.Writer) {
	value := reflect.ValueOf(s).Elem()
	for i, f := range settingsFields {
		v := value.Field(i)
		var line string
		switch f.kind {
		case reflect.Uint16:
			line = fmt.Sprintf("    %-16s $%04X", f.name, uint16(v.Uint()))
		default:
			line = fmt.Sprintf("    %-16s %v", f.name, v)
		}
		fmt.Fprintf(w, "%-28s (%s)\n", line, f.doc)
	}
}

// Name returns the full name of the setting matching the key prefix.
func (s *settings) Name(key string) string {
	f, err := settingsTree.FindValue(strings.ToLower(key))
	if err != nil {
		return ""
	}
	return f.name
}

// Kind returns the value kind of the setting matching the key prefix, or
// reflect.Invalid if no single setting matches.
func (s *settings) Kind(key string) reflect.Kind {
	f, err := settingsTree.FindValue(strings.ToLower(key))
	if err != nil {
		return reflect.Invalid
	}
	return f.kind
}

// Set assigns a value to the setting matching the key prefix.
func (s *settings) Set(key string, value any) error {
	f, err := settingsTree.FindValue(strings.ToLower(key))
	if err != nil {
		return err
	}

	vIn := reflect.ValueOf(value)
	if !vIn.Type().ConvertibleTo(f.typ) {
		return errors.New("invalid type")
	}
	if f.kind == reflect.Uint16 && vIn.CanInt() && (vIn.Int() < 0 || vIn.Int() > 0xffff) {
		return fmt.Errorf("value out of range for %s", f.name)
	}

	vOut := reflect.ValueOf(s).Elem().Field(f.index)
	vOut.Set(vIn.Convert(f.typ))
	return nil
}
