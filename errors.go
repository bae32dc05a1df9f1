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
	"fmt"
)

// Sentinel errors, one per row of spec.md's error table. Check these with
// errors.Is rather than comparing directly, since most call sites wrap them
// with additional context via fmt.Errorf("...: %w", ...).
var (
	// ErrUnsupportedValue is raised when the classifier yields a kind with
	// no registered builder and unknown values are not being kept as-is.
	ErrUnsupportedValue = errors.New("atomize: value has no builder for its kind")

	// ErrInfiniteLoop is raised when a value back-references a currently
	// open ancestor that never called AllowSelfReference.
	ErrInfiniteLoop = errors.New("atomize: infinite loop when encoding (cyclic value not marked with AllowSelfReference)")

	// ErrEncodedIntoNothing is raised when a builder returns without
	// appending any cell to the writer.
	ErrEncodedIntoNothing = errors.New("atomize: value encoded into nothing")

	// ErrJumpOverflow is raised when a composite's until-index cannot be
	// packed into a header word without losing information.
	ErrJumpOverflow = errors.New("atomize: value too large to encode (jump overflow)")

	// ErrIncompleteData is raised when the decoder cursor reaches the end
	// of the input while still inside a value.
	ErrIncompleteData = errors.New("atomize: incomplete data")

	// ErrExcessContent is raised when bytes remain after the top-level
	// value has been fully decoded.
	ErrExcessContent = errors.New("atomize: excess content after top-level value")

	// ErrBadTag is raised when the decoder encounters a tag byte it does
	// not recognize.
	ErrBadTag = errors.New("atomize: unrecognized tag byte")

	// ErrNoJumpOpen is raised by PopJump/AllowSelfReference misuse outside
	// of an open builder frame; it indicates a bug in a custom builder.
	ErrNoJumpOpen = errors.New("atomize: PopJump with no matching PushJump")
)

// KindError reports that a value's classified Kind did not match what an
// operation expected, mirroring ion.TypeError's Func/Field-qualified message.
type KindError struct {
	Func  string
	Wanted, Found Kind
}

func (e *KindError) Error() string {
	if e.Func == "" {
		return fmt.Sprintf("atomize: found kind %s, wanted kind %s", e.Found, e.Wanted)
	}
	return fmt.Sprintf("atomize.%s: found kind %s, wanted kind %s", e.Func, e.Found, e.Wanted)
}

func badKind(fn string, wanted, found Kind) error {
	return &KindError{Func: fn, Wanted: wanted, Found: found}
}
