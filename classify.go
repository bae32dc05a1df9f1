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

import "reflect"

// Classifier assigns a Kind to a host value, the seam spec.md §4.2 calls
// out as host-pluggable. A Classifier set with WithClassifier replaces the
// default one entirely (the default is not consulted as a fallback), so it
// must classify every value the Atomizer meets; together with WithBuilder
// it lets callers route arbitrary types (e.g. time.Time) to a Kind of their
// choosing without touching this package.
type Classifier interface {
	Classify(v any) Kind
}

// ClassifierFunc adapts a plain function to a Classifier.
type ClassifierFunc func(v any) Kind

func (f ClassifierFunc) Classify(v any) Kind { return f(v) }

// defaultClassifier dispatches on reflect.Kind the way ion.encoderFunc picks
// an encoder for a reflect.Type: a small switch over the handful of shapes
// Go's type system actually produces, rather than per-type registration.
type defaultClassifier struct{}

func (defaultClassifier) Classify(v any) Kind {
	if v == nil {
		return KindNull
	}
	switch v.(type) {
	case Atomizable:
		return KindCustom
	case *Map:
		return KindMap
	case *Set:
		return KindSet
	case []byte:
		return KindBytes
	case string:
		return KindString
	case bool:
		return KindBoolean
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Invalid:
		return KindNull
	case reflect.Bool:
		return KindBoolean
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return KindNumber
	case reflect.String:
		return KindString
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return KindBytes
		}
		return KindArray
	case reflect.Map:
		// A builtin Go map has no stable iteration order, so it cannot
		// satisfy the map Kind's insertion-order invariant (container.go's
		// *Map) or this library's determinism property. Callers that want a
		// map atomized must build one explicitly via NewMap.
		return KindInstance
	case reflect.Struct:
		return KindObject
	case reflect.Pointer:
		if rv.IsNil() {
			return KindNull
		}
		if rv.Elem().Kind() == reflect.Struct {
			return KindObject
		}
		return KindInstance
	case reflect.Func:
		return KindFunction
	default:
		return KindInstance
	}
}
