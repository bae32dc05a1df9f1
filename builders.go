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
	"math"
	"reflect"
	"strings"
)

// defaultBuilders returns the Kind→Builder table every Atomizer starts
// from, grounded on spec.md §4.3's table. Callers override or extend it
// with WithBuilder.
func defaultBuilders() map[Kind]Builder {
	return map[Kind]Builder{
		KindNull:    nullBuilder,
		KindBoolean: boolBuilder,
		KindNumber:  numberBuilder,
		KindString:  stringBuilder,
		KindBytes:   bytesBuilder,
		KindArray:   arrayBuilder,
		KindObject:  objectBuilder,
		KindMap:     mapBuilder,
		KindSet:     setBuilder,
		KindCustom:  customBuilder,
	}
}

func nullBuilder(w *Writer, v any) (bool, error) {
	w.EmitRaw(nil)
	return false, nil
}

// boolBuilder accepts bool and any defined type whose underlying type is
// bool (e.g. `type Flag bool`) the same way numberBuilder tolerates defined
// numeric types: the classifier routes both here via reflect.Kind, so the
// builder must convert rather than assert the exact predeclared type.
func boolBuilder(w *Writer, v any) (bool, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Bool {
		return false, badKind("boolBuilder", KindBoolean, KindInstance)
	}
	w.EmitRaw(rv.Bool())
	return false, nil
}

// numberBuilder handles every Go numeric kind, normalizing to either int64
// or float64 on the wire. Small integers and NaN are not cacheable: they
// are cheaper to re-emit than to look up, and NaN famously compares unequal
// to itself so it could never be found again regardless.
func numberBuilder(w *Writer, v any) (bool, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := rv.Int()
		w.EmitAsIs(n)
		return n < -128 || n >= 128, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n := rv.Uint()
		w.EmitAsIs(n)
		return n >= 128, nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		w.EmitAsIs(f)
		return !math.IsNaN(f), nil
	}
	return false, badKind("numberBuilder", KindNumber, KindInstance)
}

// stringBuilder accepts string and any defined type whose underlying type
// is string (e.g. `type Name string`); see boolBuilder.
func stringBuilder(w *Writer, v any) (bool, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.String {
		return false, badKind("stringBuilder", KindString, KindInstance)
	}
	w.EmitRaw(rv.String())
	return true, nil
}

// bytesBuilder accepts []byte and any defined slice-of-byte type (e.g.
// `type Blob []byte`); see boolBuilder.
func bytesBuilder(w *Writer, v any) (bool, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice || rv.Type().Elem().Kind() != reflect.Uint8 {
		return false, badKind("bytesBuilder", KindBytes, KindInstance)
	}
	w.EmitRaw(rv.Bytes())
	return true, nil
}

func asIsBuilder(w *Writer, v any) (bool, error) {
	w.EmitAsIs(v)
	return false, nil
}

func arrayBuilder(w *Writer, v any) (bool, error) {
	if err := w.AllowSelfReference(); err != nil {
		return false, err
	}
	w.PushJump(ArrayAtom)
	rv := reflect.ValueOf(v)
	for i := 0; i < rv.Len(); i++ {
		if err := w.WriteChild(rv.Index(i).Interface()); err != nil {
			return false, err
		}
	}
	if err := w.PopJump(); err != nil {
		return false, err
	}
	return true, nil
}

func setBuilder(w *Writer, v any) (bool, error) {
	s := v.(*Set)
	if err := w.AllowSelfReference(); err != nil {
		return false, err
	}
	w.PushJump(SetAtom)
	var werr error
	s.Each(func(elem any) {
		if werr == nil {
			werr = w.WriteChild(elem)
		}
	})
	if werr != nil {
		return false, werr
	}
	if err := w.PopJump(); err != nil {
		return false, err
	}
	return true, nil
}

// objectBuilder walks a struct (or pointer to one) by field order via
// reflect.VisibleFields, the same traversal ion.compileEncoder uses to
// build its field-encoder list, except ours runs per value instead of
// being cached per reflect.Type — struct shapes here are expected to be
// small and this library favors simplicity over that optimization.
func objectBuilder(w *Writer, v any) (bool, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			w.EmitRaw(nil)
			return false, nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return false, badKind("objectBuilder", KindObject, KindInstance)
	}

	type field struct {
		name string
		val  reflect.Value
	}
	var fields []field
	for _, sf := range reflect.VisibleFields(rv.Type()) {
		if sf.PkgPath != "" {
			continue
		}
		name, omitempty, skip := parseAtomizeTag(sf)
		if skip {
			continue
		}
		fv := rv.FieldByIndex(sf.Index)
		if omitempty && fv.IsZero() {
			continue
		}
		fields = append(fields, field{name: name, val: fv})
	}

	if err := w.AllowSelfReference(); err != nil {
		return false, err
	}
	w.PushJump(ObjectAtom)
	for _, f := range fields {
		if err := w.WriteChild(f.name); err != nil {
			return false, err
		}
	}
	if err := w.PopJump(); err != nil {
		return false, err
	}
	for _, f := range fields {
		if err := w.WriteChild(f.val.Interface()); err != nil {
			return false, err
		}
	}
	return true, nil
}

func parseAtomizeTag(sf reflect.StructField) (name string, omitempty bool, skip bool) {
	name = sf.Name
	tag, ok := sf.Tag.Lookup("atomize")
	if !ok {
		return name, false, false
	}
	parts := strings.Split(tag, ",")
	if parts[0] == "-" {
		return "", false, true
	}
	if parts[0] != "" {
		name = parts[0]
	}
	for _, p := range parts[1:] {
		if p == "omitempty" {
			omitempty = true
		}
	}
	return name, omitempty, false
}

func mapBuilder(w *Writer, v any) (bool, error) {
	m := v.(*Map)
	if err := w.AllowSelfReference(); err != nil {
		return false, err
	}
	w.PushJump(MapAtom)
	var werr error
	m.Each(func(key, _ any) {
		if werr == nil {
			werr = w.WriteChild(key)
		}
	})
	if werr != nil {
		return false, werr
	}
	if err := w.PopJump(); err != nil {
		return false, err
	}
	m.Each(func(_, value any) {
		if werr == nil {
			werr = w.WriteChild(value)
		}
	})
	if werr != nil {
		return false, werr
	}
	return true, nil
}

func customBuilder(w *Writer, v any) (bool, error) {
	w.PushJump(CustomAtom)
	cacheable, err := v.(Atomizable).EncodeAtoms(w)
	if err != nil {
		return false, err
	}
	if err := w.PopJump(); err != nil {
		return false, err
	}
	return cacheable, nil
}
