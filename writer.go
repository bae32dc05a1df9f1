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

// Writer is the only surface a Builder uses to append to the atom stream
// (spec.md §4.1). It is a thin, privileged handle onto the Atomizer that
// created it; Builders never see the Atomizer itself.
type Writer struct {
	a *Atomizer
}

// EmitRaw appends v as an inline scalar literal.
func (w *Writer) EmitRaw(v any) { w.a.emitRaw(v) }

// EmitAsIs appends v as a scalar literal that must not be mistaken for a
// header or back-reference word when the stream is later serialized to
// bytes (spec.md §3.1's AsIs marker).
func (w *Writer) EmitAsIs(v any) { w.a.emitAsIs(v) }

// PushJump opens a composite of the given kind, reserving a header cell
// whose until-index is patched in by the matching PopJump.
func (w *Writer) PushJump(kind AtomKind) { w.a.pushJump(kind) }

// PopJump closes the most recently opened composite.
func (w *Writer) PopJump() error { return w.a.popJump() }

// AllowSelfReference marks the value currently being built as a legal
// target for a back-reference from within its own subtree. Without this
// call, a cycle back to an open composite is reported as ErrInfiniteLoop.
func (w *Writer) AllowSelfReference() error { return w.a.allowSelfReference() }

// WriteChild recursively atomizes v as a child of the value currently being
// built, resolving identity, cycles, and dispatch exactly as the top-level
// call does.
func (w *Writer) WriteChild(v any) error { return w.a.atomizeValue(v) }
