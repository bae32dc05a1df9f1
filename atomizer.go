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
	"fmt"
	"reflect"
)

// Atomizable lets a value provide its own atomization, becoming KindCustom.
// EncodeAtoms writes zero or more children via w (customBuilder frames them
// in a Custom composite, which a CustomDecoder reads back through a Reader)
// and reports whether the value is safe to deduplicate by identity,
// mirroring the cacheable hint every built-in Builder returns.
type Atomizable interface {
	EncodeAtoms(w *Writer) (cacheable bool, err error)
}

// Builder encodes one classified value onto w. Composite builders call
// w.AllowSelfReference before recursing into children that might cycle
// back to v, and must bracket their children with PushJump/PopJump.
type Builder func(w *Writer, v any) (cacheable bool, err error)

type refEntry struct {
	index int
	open  bool
}

// frame tracks one value currently being atomized, from entry until its
// Builder returns. It is spec.md §4.2's "active_val/active_index", kept on
// an explicit stack (for save/restore across recursive atomizeValue calls)
// and indexed by identity (for O(1) cycle detection against any ancestor,
// not just the immediate parent).
type frame struct {
	id             identityKey
	hasID          bool
	index          int
	selfRefAllowed bool
}

// Atomizer walks a Go value into a linear atom stream (spec.md §4.2),
// assigning atom-indexes, deduplicating by identity, and detecting cycles.
type Atomizer struct {
	classifier      Classifier
	builders        map[Kind]Builder
	keepUnknownAsIs bool

	cells []Cell
	jumps []int

	refs  map[identityKey]refEntry
	open  map[identityKey]*frame
	stack []*frame

	atomIndex int
}

func newAtomizer(opts Options) *Atomizer {
	a := &Atomizer{
		classifier:      opts.classifier,
		builders:        opts.builders,
		keepUnknownAsIs: opts.keepUnknownAsIs,
		refs:            make(map[identityKey]refEntry),
		open:            make(map[identityKey]*frame),
	}
	if a.classifier == nil {
		a.classifier = defaultClassifier{}
	}
	if a.builders == nil {
		a.builders = defaultBuilders()
	}
	if opts.dictionary != nil {
		opts.dictionary.seed(a.refs)
	}
	return a
}

// Atomize walks v and returns the resulting atom stream, for the direct
// atom-stream path. Serialize runs the same walk before packing the cells
// into bytes.
func Atomize(v any, opts ...Option) ([]Cell, error) {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	a := newAtomizer(o)
	if err := a.atomizeValue(v); err != nil {
		return nil, err
	}
	return a.cells, nil
}

func (a *Atomizer) writer() *Writer { return &Writer{a: a} }

// atomizeValue is the recursion discipline of spec.md §4.2: classify,
// check for an existing or open reference, dispatch to a Builder, and
// register the result in the reference table if the Builder allows it.
func (a *Atomizer) atomizeValue(v any) error {
	rv := reflect.ValueOf(v)
	id, hasID := identityKey{}, false
	if v != nil {
		id, hasID = identity(rv)
	}

	if hasID {
		if entry, ok := a.refs[id]; ok && !entry.open {
			a.emitBackRef(entry.index)
			return nil
		}
		if fr, ok := a.open[id]; ok {
			if !fr.selfRefAllowed {
				return fmt.Errorf("atomize: %w", ErrInfiniteLoop)
			}
			a.emitBackRef(fr.index)
			return nil
		}
	}

	index := a.atomIndex
	a.atomIndex++

	fr := &frame{id: id, hasID: hasID, index: index}
	a.stack = append(a.stack, fr)
	if hasID {
		a.open[id] = fr
	}

	kind := a.classifier.Classify(v)
	builder, ok := a.builders[kind]
	if !ok {
		if a.keepUnknownAsIs {
			builder = asIsBuilder
		} else {
			a.popFrame()
			return fmt.Errorf("atomize: kind %s: %w", kind, ErrUnsupportedValue)
		}
	}

	before := len(a.cells)
	cacheable, err := builder(a.writer(), v)
	a.popFrame()
	if err != nil {
		return err
	}
	if len(a.cells) == before {
		return fmt.Errorf("atomize: %w", ErrEncodedIntoNothing)
	}

	if hasID && cacheable {
		a.refs[id] = refEntry{index: index, open: false}
	}
	return nil
}

func (a *Atomizer) popFrame() {
	fr := a.stack[len(a.stack)-1]
	a.stack = a.stack[:len(a.stack)-1]
	if fr.hasID {
		delete(a.open, fr.id)
	}
}

func (a *Atomizer) emitRaw(v any)   { a.cells = append(a.cells, scalarCell(v)) }
func (a *Atomizer) emitAsIs(v any)  { a.cells = append(a.cells, scalarCell(v)) }
func (a *Atomizer) emitBackRef(i int) { a.cells = append(a.cells, backRefCell(i)) }

func (a *Atomizer) pushJump(kind AtomKind) {
	a.cells = append(a.cells, headerCell(Header{Kind: kind}))
	a.jumps = append(a.jumps, len(a.cells)-1)
}

func (a *Atomizer) popJump() error {
	if len(a.jumps) == 0 {
		return ErrNoJumpOpen
	}
	pos := a.jumps[len(a.jumps)-1]
	a.jumps = a.jumps[:len(a.jumps)-1]

	until := len(a.cells)
	packed := until<<atomBits | int(a.cells[pos].header.Kind)
	if (packed >> atomBits) != until {
		return fmt.Errorf("atomize: %w", ErrJumpOverflow)
	}
	a.cells[pos].header.Until = until
	return nil
}

func (a *Atomizer) allowSelfReference() error {
	if len(a.stack) == 0 {
		return ErrNoJumpOpen
	}
	fr := a.stack[len(a.stack)-1]
	fr.selfRefAllowed = true
	if fr.hasID {
		a.refs[fr.id] = refEntry{index: fr.index, open: true}
	}
	return nil
}
