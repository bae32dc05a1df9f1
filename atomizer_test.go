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

func TestObjectFieldTags(t *testing.T) {
	type person struct {
		Name   string
		Age    int    `atomize:"years"`
		Secret string `atomize:"-"`
		Note   string `atomize:",omitempty"`
	}
	p := person{Name: "Ada", Age: 36, Secret: "ignored"}

	out := roundTrip(t, p)
	got, ok := out.(*Map)
	if !ok {
		t.Fatalf("got %T, want *Map", out)
	}
	if v, _ := got.Get("Name"); v != "Ada" {
		t.Errorf("Name: got %v", v)
	}
	if v, _ := got.Get("years"); v != int64(36) {
		t.Errorf("years: got %v, want 36", v)
	}
	if _, ok := got.Get("Secret"); ok {
		t.Errorf("Secret field should have been skipped via atomize:\"-\"")
	}
	if _, ok := got.Get("Note"); ok {
		t.Errorf("empty omitempty field Note should have been skipped")
	}
}

func TestSetRoundTrip(t *testing.T) {
	s := NewSet()
	s.Add("a")
	s.Add("b")
	s.Add("c")

	out := roundTrip(t, s)
	got, ok := out.(*Set)
	if !ok {
		t.Fatalf("got %T, want *Set", out)
	}
	if got.Len() != 3 {
		t.Fatalf("got len %d, want 3", got.Len())
	}
	var order []string
	got.Each(func(v any) { order = append(order, v.(string)) })
	want := []string{"a", "b", "c"}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("position %d: got %q, want %q", i, order[i], want[i])
		}
	}
}

func TestKeepUnknownAsIs(t *testing.T) {
	fn := func() {}
	cells, err := Atomize(fn, WithKeepUnknownAsIs(true))
	if err != nil {
		t.Fatalf("Atomize: %v", err)
	}
	if len(cells) != 1 {
		t.Fatalf("got %d cells, want 1", len(cells))
	}
}

func TestEncodedIntoNothingFails(t *testing.T) {
	type marker struct{}
	noop := func(w *Writer, v any) (bool, error) { return false, nil }

	_, err := Atomize(marker{}, WithClassifier(ClassifierFunc(func(v any) Kind {
		return KindCustom
	})), WithBuilder(KindCustom, noop))
	if !errors.Is(err, ErrEncodedIntoNothing) {
		t.Errorf("got %v, want ErrEncodedIntoNothing", err)
	}
}

func TestInfiniteLoopWithoutAllowSelfReference(t *testing.T) {
	badBuilder := func(w *Writer, v any) (bool, error) {
		if err := w.WriteChild(v); err != nil {
			return false, err
		}
		w.EmitRaw("unreachable")
		return true, nil
	}

	ptr := &struct{ X int }{X: 1}
	_, err := Atomize(ptr, WithClassifier(ClassifierFunc(func(v any) Kind {
		return KindCustom
	})), WithBuilder(KindCustom, badBuilder))
	if !errors.Is(err, ErrInfiniteLoop) {
		t.Errorf("got %v, want ErrInfiniteLoop", err)
	}
}
