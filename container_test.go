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

import "testing"

func TestMapPreservesInsertionOrder(t *testing.T) {
	m := NewMap()
	m.Set("z", 1)
	m.Set("a", 2)
	m.Set("m", 3)

	var got []string
	m.Each(func(k, _ any) { got = append(got, k.(string)) })

	want := []string{"z", "a", "m"}
	for i, k := range want {
		if got[i] != k {
			t.Errorf("position %d: got %q, want %q", i, got[i], k)
		}
	}
}

func TestMapSetUpdateKeepsPosition(t *testing.T) {
	m := NewMap()
	m.Set("a", 1)
	m.Set("b", 2)
	m.Set("a", 99)

	var keys []string
	m.Each(func(k, _ any) { keys = append(keys, k.(string)) })
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Errorf("updating an existing key moved it: got %v", keys)
	}
	if v, _ := m.Get("a"); v != 99 {
		t.Errorf("got %v, want 99", v)
	}
}

func TestSetPreservesInsertionOrderAndDedups(t *testing.T) {
	s := NewSet()
	s.Add("x")
	s.Add("y")
	s.Add("x")

	if s.Len() != 2 {
		t.Fatalf("got len %d, want 2", s.Len())
	}
	var got []string
	s.Each(func(v any) { got = append(got, v.(string)) })
	if got[0] != "x" || got[1] != "y" {
		t.Errorf("got %v, want [x y]", got)
	}
}
