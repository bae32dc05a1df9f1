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
	"errors"
	"testing"
)

func roundTrip(t *testing.T, v any, opts ...Option) any {
	t.Helper()
	data, err := Serialize(v, opts...)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	out, err := Deserialize(data, opts...)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	return out
}

func TestScalarRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want any
	}{
		{"null", nil, nil},
		{"true", true, true},
		{"false", false, false},
		{"string", "hello", "hello"},
		{"empty string", "", ""},
		{"zero", 0, int64(0)},
		{"minus one", -1, int64(-1)},
		{"boundary low", -(1 << 30) + 1, int64(-(1 << 30) + 1)},
		{"boundary exact", -(1 << 30), int64(-(1 << 30))},
		{"float", 3.5, 3.5},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := roundTrip(t, c.in)
			if got != c.want {
				t.Errorf("case %s: got %#v, want %#v", c.name, got, c.want)
			}
		})
	}
}

func TestBytesRoundTrip(t *testing.T) {
	in := []byte{1, 2, 3, 4}
	out := roundTrip(t, in)
	got, ok := out.([]byte)
	if !ok {
		t.Fatalf("got %T, want []byte", out)
	}
	if len(got) != len(in) {
		t.Fatalf("got len %d, want %d", len(got), len(in))
	}
	for i := range in {
		if got[i] != in[i] {
			t.Errorf("byte %d: got %d, want %d", i, got[i], in[i])
		}
	}
}

func TestArrayRoundTrip(t *testing.T) {
	in := []any{int64(1), "two", 3.0, nil}
	out := roundTrip(t, in)
	got, ok := out.(*[]any)
	if !ok {
		t.Fatalf("got %T, want *[]any", out)
	}
	if len(*got) != len(in) {
		t.Fatalf("got len %d, want %d", len(*got), len(in))
	}
	for i := range in {
		if (*got)[i] != in[i] {
			t.Errorf("element %d: got %#v, want %#v", i, (*got)[i], in[i])
		}
	}
}

func TestSharedStringIsDeduplicatedButEqual(t *testing.T) {
	shared := "shared-value"
	in := []any{shared, shared}
	data, err := Serialize(in)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	out, err := Deserialize(data)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	got := out.(*[]any)
	if (*got)[0] != shared || (*got)[1] != shared {
		t.Errorf("got %#v, want both elements %q", *got, shared)
	}
}

func TestCyclicArraySelfReference(t *testing.T) {
	x := make([]any, 1)
	x[0] = x

	cells, err := Atomize(x)
	if err != nil {
		t.Fatalf("Atomize: %v", err)
	}
	out, err := Rebuild(cells)
	if err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	shell, ok := out.(*[]any)
	if !ok {
		t.Fatalf("got %T, want *[]any", out)
	}
	if len(*shell) != 1 {
		t.Fatalf("got len %d, want 1", len(*shell))
	}
	inner, ok := (*shell)[0].(*[]any)
	if !ok || inner != shell {
		t.Errorf("self-reference not preserved: got %#v", (*shell)[0])
	}
}

func TestMutuallyReferencingMaps(t *testing.T) {
	m1, m2 := NewMap(), NewMap()
	m1.Set("other", m2)
	m2.Set("other", m1)
	m1.Set("name", "first")
	m2.Set("name", "second")

	out := roundTrip(t, m1)
	got1, ok := out.(*Map)
	if !ok {
		t.Fatalf("got %T, want *Map", out)
	}
	other1, _ := got1.Get("other")
	got2, ok := other1.(*Map)
	if !ok {
		t.Fatalf("got %T, want *Map", other1)
	}
	other2, _ := got2.Get("other")
	if other2 != got1 {
		t.Errorf("mutual reference not preserved: m2's \"other\" does not point back to m1")
	}
	if n, _ := got1.Get("name"); n != "first" {
		t.Errorf("got %v, want \"first\"", n)
	}
	if n, _ := got2.Get("name"); n != "second" {
		t.Errorf("got %v, want \"second\"", n)
	}
}

func TestSelfReferentialObjectPreservesIdentity(t *testing.T) {
	type node struct {
		Name string
		Next any
	}
	n := &node{Name: "root"}
	n.Next = n

	cells, err := Atomize(n)
	if err != nil {
		t.Fatalf("Atomize: %v", err)
	}
	out, err := Rebuild(cells)
	if err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	shell, ok := out.(*Map)
	if !ok {
		t.Fatalf("got %T, want *Map", out)
	}
	next, _ := shell.Get("Next")
	if next != shell {
		t.Errorf("self-reference not preserved: got %#v", next)
	}
}

func TestUnknownValueFailsWithoutKeepUnknownAsIs(t *testing.T) {
	ch := make(chan int)
	_, err := Serialize(ch)
	if !errors.Is(err, ErrUnsupportedValue) {
		t.Errorf("got %v, want ErrUnsupportedValue", err)
	}
}

func TestDictionaryAgreement(t *testing.T) {
	shared := "shared-vocabulary-entry"
	dict := NewDictionary(shared)
	opt := WithDictionary(dict)

	in := []any{shared, shared, "not-in-dictionary"}
	data, err := Serialize(in, opt)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	out, err := Deserialize(data, opt)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	got := out.(*[]any)
	if (*got)[0] != shared || (*got)[1] != shared {
		t.Errorf("got %#v, want both dictionary entries to resolve to %q", *got, shared)
	}
	if (*got)[2] != "not-in-dictionary" {
		t.Errorf("got %#v", (*got)[2])
	}
}

func TestSerializeIsDeterministic(t *testing.T) {
	v := []any{int64(1), "two", []any{int64(3)}}
	a, err := Serialize(v)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	b, err := Serialize(v)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if len(a) != len(b) {
		t.Fatalf("got len %d and %d, want equal", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("byte %d differs between identical encodes", i)
		}
	}
}

func TestCompressionRoundTrip(t *testing.T) {
	v := []any{"repeat", "repeat", "repeat", "repeat"}
	out := roundTrip(t, v, WithCompression(true))
	got, ok := out.(*[]any)
	if !ok || len(*got) != 4 {
		t.Fatalf("got %#v", out)
	}
}
