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
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Map is the host container for the Map Kind: an insertion-order-preserving
// key/value container, unlike Go's builtin map whose iteration order is
// randomized. Both keys and values may be arbitrary atomizable values.
type Map struct {
	m *orderedmap.OrderedMap[any, any]
}

// NewMap returns an empty, insertion-ordered Map.
func NewMap() *Map {
	return &Map{m: orderedmap.New[any, any]()}
}

// Set inserts or updates key, preserving key's original position on update.
func (m *Map) Set(key, value any) {
	m.m.Set(key, value)
}

// Get reports the value stored under key, if any.
func (m *Map) Get(key any) (any, bool) {
	return m.m.Get(key)
}

// Len reports the number of entries.
func (m *Map) Len() int {
	return m.m.Len()
}

// Each calls fn once per entry in insertion order.
func (m *Map) Each(fn func(key, value any)) {
	for pair := m.m.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Key, pair.Value)
	}
}

// Set is the host container for the Set Kind: an insertion-order-preserving
// collection of distinct values. Elements are keyed in a Go map[any]int, so
// they compare with Go's == on interface values: pointers (including *Map
// and *Set) by address, strings and numbers by dynamic type and value. This
// is not the reference table's identity (identity.go): int(1) and int64(1)
// are distinct elements here, and adding or looking up an element of an
// unhashable type, such as a slice or a builtin map, panics.
type Set struct {
	order []any
	index map[any]int
}

// NewSet returns an empty, insertion-ordered Set.
func NewSet() *Set {
	return &Set{index: make(map[any]int)}
}

// Add inserts v if not already present; it is a no-op otherwise.
func (s *Set) Add(v any) {
	if _, ok := s.index[v]; ok {
		return
	}
	s.index[v] = len(s.order)
	s.order = append(s.order, v)
}

// Has reports whether v has been added.
func (s *Set) Has(v any) bool {
	_, ok := s.index[v]
	return ok
}

// Len reports the number of distinct elements.
func (s *Set) Len() int {
	return len(s.order)
}

// Each calls fn once per element in insertion order.
func (s *Set) Each(fn func(v any)) {
	for _, v := range s.order {
		fn(v)
	}
}
