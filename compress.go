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

import "github.com/klauspost/compress/s2"

// compressBytes wraps a serialized buffer with whole-buffer s2 framing.
// This is not streaming I/O (spec.md's non-goal) — it is a single
// in-memory transform applied after SerializeAtoms has already produced
// the complete buffer.
func compressBytes(data []byte) []byte {
	dst := make([]byte, 0, s2.MaxEncodedLen(len(data)))
	return s2.Encode(dst, data)
}

// decompressBytes reverses compressBytes.
func decompressBytes(data []byte) ([]byte, error) {
	dst := make([]byte, 0, len(data))
	return s2.Decode(dst, data)
}
