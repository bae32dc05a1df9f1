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

func getUvarint(data []byte) (uint64, int, error) {
	var v uint64
	var shift uint
	for i, b := range data {
		if shift >= 64 {
			return 0, 0, fmt.Errorf("atomize: %w", ErrBadTag)
		}
		v |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return v, i + 1, nil
		}
		shift += 7
	}
	return 0, 0, fmt.Errorf("atomize: %w", ErrIncompleteData)
}

// DeserializeAtoms parses serialized bytes back into an in-memory atom
// stream, the exact inverse of SerializeAtoms, sharing reconstruction logic
// with the direct atom-stream path via Rebuild.
func DeserializeAtoms(data []byte) ([]Cell, error) {
	var cells []Cell
	n, err := decodeOne(data, &cells)
	if err != nil {
		return nil, err
	}
	if n != len(data) {
		return nil, fmt.Errorf("atomize: %w", ErrExcessContent)
	}
	return cells, nil
}

// skipOne reports how many bytes a single already-serialized value
// occupies without retaining the cells it would produce; used by the
// encoder to count how many keys it just wrote (see countValues).
func skipOne(data []byte) (int, error) {
	var scratch []Cell
	return decodeOne(data, &scratch)
}

// decodeOne decodes exactly one value starting at data[0], appending
// whatever cells it produces (one for a scalar/back-reference, one header
// plus its descendants for a composite) to *out, and returns the number of
// bytes consumed.
func decodeOne(data []byte, out *[]Cell) (int, error) {
	if len(data) == 0 {
		return 0, fmt.Errorf("atomize: %w", ErrIncompleteData)
	}
	tag := data[0]

	switch {
	case tag == tagBackRef:
		u, n, err := getUvarint(data[1:])
		if err != nil {
			return 0, err
		}
		s := zigzagDecode(u)
		*out = append(*out, backRefCell(int(^s)))
		return 1 + n, nil

	case tag == tagInt:
		u, n, err := getUvarint(data[1:])
		if err != nil {
			return 0, err
		}
		*out = append(*out, scalarCell(zigzagDecode(u)))
		return 1 + n, nil

	case tag&tagComposite != 0:
		return decodeComposite(data, out)

	default:
		return decodeScalarSentinel(data, out)
	}
}

func decodeScalarSentinel(data []byte, out *[]Cell) (int, error) {
	if data[0]&0x0f != 0 {
		return 0, fmt.Errorf("atomize: %w", ErrBadTag)
	}
	kind := Kind(data[0] >> 4)
	switch kind {
	case KindNull:
		*out = append(*out, scalarCell(nil))
		return 1, nil
	case KindBoolean:
		if len(data) < 2 {
			return 0, fmt.Errorf("atomize: %w", ErrIncompleteData)
		}
		*out = append(*out, scalarCell(data[1] != 0))
		return 2, nil
	case KindNumber:
		bits, n, err := getUvarint(data[1:])
		if err != nil {
			return 0, err
		}
		*out = append(*out, scalarCell(math.Float64frombits(bits)))
		return 1 + n, nil
	case KindString:
		s, n, err := decodeLengthPrefixed(data[1:])
		if err != nil {
			return 0, err
		}
		*out = append(*out, scalarCell(string(s)))
		return 1 + n, nil
	case KindBytes:
		b, n, err := decodeLengthPrefixed(data[1:])
		if err != nil {
			return 0, err
		}
		cp := make([]byte, len(b))
		copy(cp, b)
		*out = append(*out, scalarCell(cp))
		return 1 + n, nil
	default:
		return 0, fmt.Errorf("atomize: %w", ErrBadTag)
	}
}

func decodeLengthPrefixed(data []byte) ([]byte, int, error) {
	length, n, err := getUvarint(data)
	if err != nil {
		return nil, 0, err
	}
	if n+int(length) > len(data) {
		return nil, 0, fmt.Errorf("atomize: %w", ErrIncompleteData)
	}
	return data[n : n+int(length)], n + int(length), nil
}

// decodeComposite decodes a header and everything it owns, reconstructing
// Header.Until in cell-index terms (the in-memory IR's own convention)
// from the byte-length the wire carries. Object/Map composites count how
// many key values they actually decoded and then decode exactly that many
// trailing values, mirroring encodeComposite on the write side.
func decodeComposite(data []byte, out *[]Cell) (int, error) {
	kind := AtomKind(data[0] >> 4)
	length, n, err := getUvarint(data[1:])
	if err != nil {
		return 0, err
	}
	pos := 1 + n
	if pos+int(length) > len(data) {
		return 0, fmt.Errorf("atomize: %w", ErrIncompleteData)
	}
	sub := data[pos : pos+int(length)]

	hIdx := len(*out)
	*out = append(*out, headerCell(Header{Kind: kind}))

	consumed, numKeys := 0, 0
	for consumed < len(sub) {
		c, err := decodeOne(sub[consumed:], out)
		if err != nil {
			return 0, err
		}
		consumed += c
		numKeys++
	}
	(*out)[hIdx].header.Until = len(*out)
	total := pos + int(length)

	switch kind {
	case ObjectAtom, MapAtom:
		for k := 0; k < numKeys; k++ {
			c, err := decodeOne(data[total:], out)
			if err != nil {
				return 0, err
			}
			total += c
		}
	case ArrayAtom, SetAtom, CustomAtom:
		// entirely bounded by the header's length; nothing follows.
	default:
		return 0, fmt.Errorf("atomize: %w", ErrBadTag)
	}
	return total, nil
}
