// Copyright 2024 The Erigon Authors
// This file is part of Erigon.
//
// Erigon is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Erigon is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Erigon. If not, see <http://www.gnu.org/licenses/>.

package pruner

import (
	"bytes"
	"encoding/binary"
)

// uint64Key is the big-endian encoding shared by every tx-number- and
// block-number-keyed table this package touches.
func uint64Key(n uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, n)
	return b
}

// blockRangeKeyBounds turns an inclusive block range into the [from, to]
// byte-key bounds deleteKeyRange needs for a table whose key is the block
// number followed by an arbitrary composite suffix (address, incarnation,
// storage slot, ...). The upper bound is padded with 0xFF well past any
// suffix length in use so every row for block r.To is included regardless
// of its suffix.
func blockRangeKeyBounds(r BlockRange) (from, to []byte) {
	from = uint64Key(r.From)
	to = append(uint64Key(r.To), bytes.Repeat([]byte{0xFF}, 32)...)
	return from, to
}
