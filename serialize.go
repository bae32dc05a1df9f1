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

import (
	"fmt"
	"math"
)

// Tag bits occupying the low nibble of every wire tag byte (spec.md §4.4).
// A plain scalar sentinel leaves all three clear and carries its Kind in
// the high nibble instead.
const (
	tagComposite byte = 1 << 0 // ComplexAtom
	tagBackRef   byte = 1 << 1 // BackReference
	tagInt       byte = 1 << 2 // Int
)

// putUvarint appends v to dst using a continuation-bit-in-the-high-position
// varint, the same shape as ion.UnsafeWriteUVarint's loop.
func putUvarint(dst []byte, v uint64) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}
	return append(dst, byte(v))
}

func zigzagEncode(n int64) uint64 { return uint64((n << 1) ^ (n >> 63)) }
func zigzagDecode(u uint64) int64 { return int64(u>>1) ^ -int64(u&1) }

// SerializeAtoms packs an in-memory atom stream into bytes (spec.md §4.4).
func SerializeAtoms(cells []Cell) ([]byte, error) {
	var out []byte
	out, i, err := encodeRun(cells, 0, len(cells), out)
	if err != nil {
		return nil, err
	}
	if i != len(cells) {
		return nil, fmt.Errorf("atomize: %w", ErrExcessContent)
	}
	return out, nil
}

// encodeRun encodes consecutive sibling values starting at cells[i], up to
// (but not past) the boundary index `until`, appending to dst. It returns
// the updated buffer and the cell index just past the last value encoded.
func encodeRun(cells []Cell, i, until int, dst []byte) ([]byte, int, error) {
	for i < until {
		next, err := encodeOne(cells, i, &dst)
		if err != nil {
			return nil, 0, err
		}
		i = next
	}
	return dst, i, nil
}

// encodeOne encodes exactly one value (spanning however many cells it owns)
// starting at cells[i], returning the index of the next sibling.
func encodeOne(cells []Cell, i int, dst *[]byte) (int, error) {
	if i >= len(cells) {
		return 0, fmt.Errorf("atomize: %w", ErrIncompleteData)
	}
	c := cells[i]
	switch c.tag {
	case cellBackRef:
		*dst = append(*dst, tagBackRef)
		*dst = putUvarint(*dst, zigzagEncode(int64(^c.backref)))
		return i + 1, nil
	case cellScalar:
		encodeScalar(c.scalar, dst)
		return i + 1, nil
	case cellHeader:
		return encodeComposite(cells, i, dst)
	default:
		return 0, fmt.Errorf("atomize: %w", ErrBadTag)
	}
}

func encodeScalar(v any, dst *[]byte) {
	switch x := v.(type) {
	case nil:
		*dst = append(*dst, byte(KindNull)<<4)
	case bool:
		*dst = append(*dst, byte(KindBoolean)<<4)
		if x {
			*dst = append(*dst, 1)
		} else {
			*dst = append(*dst, 0)
		}
	case int64:
		*dst = append(*dst, tagInt)
		*dst = putUvarint(*dst, zigzagEncode(x))
	case uint64:
		*dst = append(*dst, tagInt)
		*dst = putUvarint(*dst, zigzagEncode(int64(x)))
	case float64:
		*dst = append(*dst, byte(KindNumber)<<4)
		*dst = putUvarint(*dst, math.Float64bits(x))
	case string:
		*dst = append(*dst, byte(KindString)<<4)
		*dst = putUvarint(*dst, uint64(len(x)))
		*dst = append(*dst, x...)
	case []byte:
		*dst = append(*dst, byte(KindBytes)<<4)
		*dst = putUvarint(*dst, uint64(len(x)))
		*dst = append(*dst, x...)
	default:
		// Any scalar reachable here was kept as-is under
		// WithKeepUnknownAsIs (functions, channels, builtin maps, ...) or
		// produced by a non-default Builder or a custom classifier; fall
		// back to its string form tagged as an opaque string atom.
		s := fmt.Sprint(x)
		*dst = append(*dst, byte(KindString)<<4)
		*dst = putUvarint(*dst, uint64(len(s)))
		*dst = append(*dst, s...)
	}
}

// encodeComposite encodes a header cell and everything it owns. Array/Set/
// Custom composites are entirely bounded by header.Until; Object/Map
// composites bound only their key run that way, then re-use the number of
// keys actually encoded to know how many values follow (spec.md §4.5's
// read-by-count rule, applied symmetrically on the write side).
func encodeComposite(cells []Cell, i int, dst *[]byte) (int, error) {
	h := cells[i].header
	switch h.Kind {
	case ArrayAtom, SetAtom, CustomAtom:
		var body []byte
		body, next, err := encodeRun(cells, i+1, h.Until, body)
		if err != nil {
			return 0, err
		}
		writeCompositeTag(dst, h.Kind, len(body))
		*dst = append(*dst, body...)
		return next, nil
	case ObjectAtom, MapAtom:
		var keyBody []byte
		keyBody, next, err := encodeRun(cells, i+1, h.Until, keyBody)
		if err != nil {
			return 0, err
		}
		numKeys := countValues(keyBody)
		writeCompositeTag(dst, h.Kind, len(keyBody))
		*dst = append(*dst, keyBody...)

		cursor := next
		for k := 0; k < numKeys; k++ {
			n, err := encodeOne(cells, cursor, dst)
			if err != nil {
				return 0, err
			}
			cursor = n
		}
		return cursor, nil
	default:
		return 0, fmt.Errorf("atomize: %w", ErrBadTag)
	}
}

func writeCompositeTag(dst *[]byte, kind AtomKind, length int) {
	*dst = append(*dst, byte(kind)<<4|tagComposite)
	*dst = putUvarint(*dst, uint64(length))
}

// countValues reports how many top-level values a just-encoded byte run
// contains, by re-walking its tags without materializing the values. This
// mirrors the decoder's own "advance the cursor one value at a time" walk,
// just over already-serialized bytes instead of cells.
func countValues(body []byte) int {
	n := 0
	for len(body) > 0 {
		size, err := skipOne(body)
		if err != nil {
			return n
		}
		body = body[size:]
		n++
	}
	return n
}
