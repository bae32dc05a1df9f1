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
	"encoding/binary"
	"math"
	"reflect"

	"github.com/dchest/siphash"
)

// Fixed siphash keys. Identity hashing here is a dedup and cycle-detection
// aid, not a security boundary (spec.md §1 disclaims adversarial-input
// hardening), so a static key pair is sufficient.
const (
	sipK0 = 0x6c62272e07bb0142
	sipK1 = 0x62b821756295c58d
)

// identityKey is the reference-table key for one atomized value. Composite
// values (anything with a Go pointer identity, including []byte slices) key
// on that pointer; string and number values key on a content hash instead,
// since spec.md §5 treats a repeated string/number value as "the same
// object" even though Go gives such values no address of their own.
type identityKey struct {
	ptr  uintptr
	hash uint64
}

// identity reports the identityKey for v and whether v is eligible for the
// reference table at all. Values with neither a pointer nor a recognized
// scalar shape (e.g. bare structs passed by value) return ok=false: they can
// still be atomized, just never deduplicated or cycle-checked.
func identity(rv reflect.Value) (identityKey, bool) {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		if rv.IsNil() {
			return identityKey{}, false
		}
		return identityKey{ptr: rv.Pointer()}, true
	case reflect.String:
		return identityKey{hash: siphash.Hash(sipK0, sipK1, []byte(rv.String()))}, true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return identityKey{hash: hashUint64(uint64(rv.Int()))}, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return identityKey{hash: hashUint64(rv.Uint())}, true
	case reflect.Float32, reflect.Float64:
		return identityKey{hash: hashUint64(math.Float64bits(rv.Float()))}, true
	default:
		return identityKey{}, false
	}
}

func hashUint64(u uint64) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], u)
	return siphash.Hash(sipK0, sipK1, buf[:])
}
