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
	"reflect"

	"golang.org/x/exp/slices"
)

// Dictionary is a prelude vocabulary two independently-constructed
// Atomizer/Rebuilder pairs can agree on out of band (spec.md §4.2's
// "optional dictionary", exercised by §8.1.6). Dictionary entries are
// addressed by negative back-reference indices, so they never collide
// with a stream's own non-negative atom-indexes: values[0] is index -1,
// values[1] is index -2, and so on.
type Dictionary struct {
	values []any
}

// NewDictionary builds a Dictionary from values, in order.
func NewDictionary(values ...any) *Dictionary {
	return &Dictionary{values: slices.Clone(values)}
}

// seed registers every identifiable dictionary entry into refs so the
// Atomizer emits a back-reference instead of re-encoding it. Entries with
// no stable identity (e.g. a bare struct value) are skipped: they can
// still appear in the dictionary for the Rebuilder's sake, they simply
// cannot be recognized again on the encode side.
func (d *Dictionary) seed(refs map[identityKey]refEntry) {
	for i, v := range d.values {
		if v == nil {
			continue
		}
		id, ok := identity(reflect.ValueOf(v))
		if !ok {
			continue
		}
		refs[id] = refEntry{index: -(i + 1), open: false}
	}
}
