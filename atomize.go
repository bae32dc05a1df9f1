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

// Package atomize walks arbitrary in-memory Go value graphs into a linear,
// cycle-aware atom stream and back, deduplicating repeated references by
// identity rather than by value. It is a Go-native redesign of the
// grinstead/atomize JavaScript library's Atomizer/Writer/Builder/Serializer/
// Rebuilder pipeline.
package atomize

// Options configures an Atomizer or Rebuilder. The zero value is the
// library's default behavior; build one with the With* functions below.
type Options struct {
	classifier      Classifier
	builders        map[Kind]Builder
	keepUnknownAsIs bool
	dictionary      *Dictionary
	customDecoder   CustomDecoder
	compress        bool
}

// Option mutates an Options in place; see the With* constructors.
type Option func(*Options)

// WithClassifier overrides the default reflect-based Classifier.
func WithClassifier(c Classifier) Option {
	return func(o *Options) { o.classifier = c }
}

// WithBuilder registers or replaces the Builder for one Kind.
func WithBuilder(kind Kind, b Builder) Option {
	return func(o *Options) {
		if o.builders == nil {
			o.builders = defaultBuilders()
		}
		o.builders[kind] = b
	}
}

// WithKeepUnknownAsIs controls whether values with no registered Builder
// are kept verbatim (EmitAsIs) instead of failing with ErrUnsupportedValue.
func WithKeepUnknownAsIs(keep bool) Option {
	return func(o *Options) { o.keepUnknownAsIs = keep }
}

// WithDictionary supplies a shared prelude vocabulary (see dictionary.go).
func WithDictionary(d *Dictionary) Option {
	return func(o *Options) { o.dictionary = d }
}

// WithCustomDecoder registers the single decoder used for every KindCustom
// value encountered while rebuilding.
func WithCustomDecoder(d CustomDecoder) Option {
	return func(o *Options) { o.customDecoder = d }
}

// WithCompression wraps Serialize's output in (and Deserialize's input is
// expected to be in) s2 whole-buffer framing.
func WithCompression(enabled bool) Option {
	return func(o *Options) { o.compress = enabled }
}

// Serialize atomizes v and packs the result into bytes, optionally
// compressing them (spec.md §6.1's "serializer" composition).
func Serialize(v any, opts ...Option) ([]byte, error) {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	a := newAtomizer(o)
	if err := a.atomizeValue(v); err != nil {
		return nil, err
	}
	data, err := SerializeAtoms(a.cells)
	if err != nil {
		return nil, err
	}
	if o.compress {
		data = compressBytes(data)
	}
	return data, nil
}
