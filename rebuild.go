// Copyright (C) 2024 Atomize Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package atomize

import "fmt"

// CustomDecoder reconstructs every KindCustom value the stream contains.
// Decoding is type-blind: the wire carries no per-type tag for custom
// values, so one decoder function serves all of them (spec.md §6.3).
type CustomDecoder func(r *Reader) (any, error)

// Reader is the inverse of Writer: the surface a CustomDecoder uses to pull
// back exactly the children its matching EncodeAtoms wrote.
type Reader struct {
	rb    *rebuilder
	pos   int
	until int
}

// More reports whether the custom value has more children to read.
func (r *Reader) More() bool { return r.pos < r.until }

// ReadValue reconstructs the next child value.
func (r *Reader) ReadValue() (any, error) {
	if !r.More() {
		return nil, fmt.Errorf("atomize: %w", ErrIncompleteData)
	}
	v, next, err := r.rb.decodeAt(r.pos)
	if err != nil {
		return nil, err
	}
	r.pos = next
	return v, nil
}

// rebuilder walks an atom stream and reconstructs the Go values it
// describes, registering every value (scalar or composite) into arena at
// its atom-index so a later back-reference resolves to the identical
// instance, including ones still being populated (spec.md §4.5).
type rebuilder struct {
	cells         []Cell
	arena         []any
	dictionary    []any
	customDecoder CustomDecoder
}

// Rebuild reconstructs a Go value from an in-memory atom stream, the path
// spec.md §2 describes as sharing reconstruction logic with Deserialize.
func Rebuild(cells []Cell, opts ...Option) (any, error) {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	rb := &rebuilder{cells: cells, customDecoder: o.customDecoder}
	if o.dictionary != nil {
		rb.dictionary = o.dictionary.values
	}
	if len(cells) == 0 {
		return nil, nil
	}
	v, next, err := rb.decodeAt(0)
	if err != nil {
		return nil, err
	}
	if next != len(cells) {
		return nil, fmt.Errorf("atomize: %w", ErrExcessContent)
	}
	return v, nil
}

// Deserialize parses bytes and reconstructs the value they describe.
func Deserialize(data []byte, opts ...Option) (any, error) {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	if o.compress {
		decompressed, err := decompressBytes(data)
		if err != nil {
			return nil, err
		}
		data = decompressed
	}
	cells, err := DeserializeAtoms(data)
	if err != nil {
		return nil, err
	}
	return Rebuild(cells, opts...)
}

func (rb *rebuilder) decodeAt(i int) (any, int, error) {
	if i >= len(rb.cells) {
		return nil, 0, fmt.Errorf("atomize: %w", ErrIncompleteData)
	}
	c := rb.cells[i]
	switch c.tag {
	case cellBackRef:
		if c.backref < 0 {
			idx := -c.backref - 1
			if idx >= len(rb.dictionary) {
				return nil, 0, fmt.Errorf("atomize: dictionary back-reference %d out of range: %w", c.backref, ErrBadTag)
			}
			return rb.dictionary[idx], i + 1, nil
		}
		if c.backref >= len(rb.arena) {
			return nil, 0, fmt.Errorf("atomize: back-reference %d out of range: %w", c.backref, ErrBadTag)
		}
		return rb.arena[c.backref], i + 1, nil
	case cellScalar:
		rb.arena = append(rb.arena, c.scalar)
		return c.scalar, i + 1, nil
	case cellHeader:
		return rb.decodeComposite(i)
	default:
		return nil, 0, fmt.Errorf("atomize: %w", ErrBadTag)
	}
}

func (rb *rebuilder) decodeComposite(i int) (any, int, error) {
	h := rb.cells[i].header
	switch h.Kind {
	case ArrayAtom:
		shell := &[]any{}
		rb.arena = append(rb.arena, shell)
		cursor, err := rb.fillChildren(i+1, h.Until, func(v any) { *shell = append(*shell, v) })
		if err != nil {
			return nil, 0, err
		}
		return shell, cursor, nil

	case SetAtom:
		shell := NewSet()
		rb.arena = append(rb.arena, shell)
		cursor, err := rb.fillChildren(i+1, h.Until, func(v any) { shell.Add(v) })
		if err != nil {
			return nil, 0, err
		}
		return shell, cursor, nil

	case ObjectAtom, MapAtom:
		shell := NewMap()
		rb.arena = append(rb.arena, shell)
		var keys []any
		cursor, err := rb.fillChildren(i+1, h.Until, func(v any) { keys = append(keys, v) })
		if err != nil {
			return nil, 0, err
		}
		for _, k := range keys {
			v, next, err := rb.decodeAt(cursor)
			if err != nil {
				return nil, 0, err
			}
			shell.Set(k, v)
			cursor = next
		}
		return shell, cursor, nil

	case CustomAtom:
		if rb.customDecoder == nil {
			return nil, 0, fmt.Errorf("atomize: custom atom with no CustomDecoder configured: %w", ErrUnsupportedValue)
		}
		// Custom values register a placeholder slot before decoding so
		// sibling back-references can find them; a custom value cannot
		// reference itself, since the decoder only returns its result
		// once fully constructed.
		idx := len(rb.arena)
		rb.arena = append(rb.arena, nil)
		r := &Reader{rb: rb, pos: i + 1, until: h.Until}
		v, err := rb.customDecoder(r)
		if err != nil {
			return nil, 0, err
		}
		rb.arena[idx] = v
		return v, h.Until, nil

	default:
		return nil, 0, fmt.Errorf("atomize: %w", ErrBadTag)
	}
}

// fillChildren decodes consecutive children starting at cursor up to (not
// including) until, calling add for each one, and returns the index just
// past the last child.
func (rb *rebuilder) fillChildren(cursor, until int, add func(any)) (int, error) {
	for cursor < until {
		v, next, err := rb.decodeAt(cursor)
		if err != nil {
			return 0, err
		}
		add(v)
		cursor = next
	}
	return cursor, nil
}
