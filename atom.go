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

// Kind classifies a host value before it reaches a Builder. It is the Go
// stand-in for the dynamically-typed tag spec.md's Classifier produces.
type Kind int

const (
	KindNull Kind = iota
	KindBoolean
	KindNumber
	KindString
	KindBytes
	KindArray
	KindObject
	KindMap
	KindSet
	KindCustom
	// KindFunction and KindInstance have no default Builder; they only
	// ever reach the wire when WithKeepUnknownAsIs is set.
	KindFunction
	KindInstance
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBoolean:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindMap:
		return "map"
	case KindSet:
		return "set"
	case KindCustom:
		return "custom"
	case KindFunction:
		return "function"
	case KindInstance:
		return "instance"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// AtomKind tags a composite header cell in the atom stream. On the wire it
// occupies the high nibble of the composite's own tag byte (see
// writeCompositeTag); it is not packed into the low bits of a word shared
// with the composite's length.
type AtomKind int

const (
	AsIs AtomKind = iota
	ArrayAtom
	ObjectAtom
	MapAtom
	SetAtom
	CustomAtom
)

// atomBits is the number of low bits a packed composite header word would
// reserve for AtomKind; spec.md calls this ATOM_BITS. Header keeps Kind and
// Until in separate fields, so atomBits is used only by popJump's overflow
// check on the packed form; the wire format does not use it.
const atomBits = 3

func (k AtomKind) String() string {
	switch k {
	case AsIs:
		return "AsIs"
	case ArrayAtom:
		return "Array"
	case ObjectAtom:
		return "Object"
	case MapAtom:
		return "Map"
	case SetAtom:
		return "Set"
	case CustomAtom:
		return "Custom"
	default:
		return fmt.Sprintf("AtomKind(%d)", int(k))
	}
}

// cellTag discriminates the three shapes a Cell can take in the in-memory
// atom stream. Unlike spec.md's conceptual stream — a flat array of plain
// integers that overloads sign and magnitude to mean different things — a
// Cell is an explicitly tagged Go struct, so it never needs the wire
// format's AsIs disambiguation trick internally; AsIs only matters once the
// stream is serialized to bytes (see serialize.go).
type cellTag uint8

const (
	cellScalar cellTag = iota
	cellBackRef
	cellHeader
)

// Header is the payload of a cellHeader cell: it opens a composite and
// records where its first child-run ends.
type Header struct {
	Kind AtomKind
	// Until is the index, within the flat []Cell stream, of the cell
	// immediately following this composite's first child-run (spec.md
	// §3.1). For Array/Set it bounds the whole composite; for Object/Map
	// it bounds only the key run, with the value run following
	// immediately and bounded instead by a read-count (spec.md §4.5).
	Until int
}

// Cell is one element of the in-memory atom stream produced by an
// Atomizer and consumed by a Rebuilder.
type Cell struct {
	tag     cellTag
	scalar  any
	backref int
	header  Header
}

func scalarCell(v any) Cell   { return Cell{tag: cellScalar, scalar: v} }
func backRefCell(i int) Cell  { return Cell{tag: cellBackRef, backref: i} }
func headerCell(h Header) Cell { return Cell{tag: cellHeader, header: h} }
