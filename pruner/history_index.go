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
	"fmt"

	"github.com/erigontech/erigon-lib/kv"
	"github.com/erigontech/erigon-lib/kv/historyv2"
)

// shardKeyOps is the set of pure helpers the caller supplies for a sharded
// history table: keyMatches reports whether two encoded keys belong to the
// same logical key ignoring their shard boundary, lastKey returns the
// encoding of that logical key's sentinel (highest_block_number == MAX)
// shard key, and highest decodes a key's highest_block_number.
type shardKeyOps struct {
	keyMatches func(a, b []byte) bool
	lastKey    func(key []byte) []byte
	highest    func(key []byte) uint64
}

var accountHistoryOps = shardKeyOps{
	keyMatches: func(a, b []byte) bool {
		return historyv2.AccountKeyMatches(historyv2.DecodeShardedKey(a), historyv2.DecodeShardedKey(b))
	},
	lastKey: func(key []byte) []byte {
		return historyv2.DecodeShardedKey(key).Last().Encode()
	},
	highest: func(key []byte) uint64 {
		return historyv2.DecodeShardedKey(key).HighestBlockNumber
	},
}

var storageHistoryOps = shardKeyOps{
	keyMatches: func(a, b []byte) bool {
		return historyv2.StorageKeyMatches(historyv2.DecodeStorageShardedKey(a), historyv2.DecodeStorageShardedKey(b))
	},
	lastKey: func(key []byte) []byte {
		return historyv2.DecodeStorageShardedKey(key).Last().Encode()
	},
	highest: func(key []byte) uint64 {
		return historyv2.DecodeStorageShardedKey(key).Highest
	},
}

// pruneHistoryIndex mutates every shard of a sharded block-number index so
// that no block <= toBlock remains, preserving the invariants that no
// persisted shard is empty and that exactly one shard per logical key, the
// lexicographic maximum, carries the open (MaxBlockNumber) sentinel.
//
// This walks cursor in ascending (key, highest_block_number) order. Each
// logical key's shards are contiguous, so once a shard's pruning decision is
// made, every shard after it for the same key is known to need no change:
// that's what the seek to lastKey after each decision skips past.
func pruneHistoryIndex(cursor kv.RwCursor, toBlock uint64, ops shardKeyOps) error {
	for {
		key, value, err := cursor.Next()
		if err != nil {
			return fmt.Errorf("history index: cursor next: %w", err)
		}
		if key == nil {
			return nil
		}

		if ops.highest(key) <= toBlock {
			// Case A: every block in this shard is <= toBlock.
			if err := cursor.DeleteCurrent(); err != nil {
				return fmt.Errorf("history index: delete shard: %w", err)
			}
			if ops.highest(key) == toBlock {
				// The shards (if any) after this one all start strictly
				// above toBlock, so they need no pruning; skip straight to
				// the sentinel (or past it, if the sentinel is this shard).
				if _, err := cursor.SeekExact(ops.lastKey(key)); err != nil {
					return fmt.Errorf("history index: seek sentinel: %w", err)
				}
			}
			continue
		}

		// Case B: the shard spans toBlock.
		blocks, err := historyv2.DecodeBlockList(value)
		if err != nil {
			return fmt.Errorf("history index: decode block list: %w", err)
		}
		newBlocks := blocks.FilterGreaterThan(toBlock)

		if len(newBlocks) != blocks.Len() {
			switch {
			case len(newBlocks) > 0:
				encoded, err := historyv2.NewPreSorted(newBlocks).Encode()
				if err != nil {
					return fmt.Errorf("history index: encode block list: %w", err)
				}
				if err := cursor.Upsert(key, encoded); err != nil {
					return fmt.Errorf("history index: upsert shard: %w", err)
				}
			case ops.highest(key) == historyv2.MaxBlockNumber:
				// The sentinel emptied out. Its identity (the MAX upper
				// bound) must survive for the logical key to stay
				// discoverable, so either the previous shard's contents
				// move up into it, or, if there is no previous shard, the
				// whole logical key disappears.
				prevKey, prevValue, err := cursor.Prev()
				if err != nil {
					return fmt.Errorf("history index: seek prior shard: %w", err)
				}
				if prevKey != nil && ops.keyMatches(prevKey, key) {
					if err := cursor.DeleteCurrent(); err != nil {
						return fmt.Errorf("history index: delete prior shard: %w", err)
					}
					if err := cursor.Upsert(key, prevValue); err != nil {
						return fmt.Errorf("history index: move prior shard into sentinel: %w", err)
					}
				} else {
					// No prior shard of this logical key. Prev() only moves
					// the cursor when it actually finds a predecessor row
					// (which is what happened here, just with a non-matching
					// key, if prevKey != nil); when the sentinel was the
					// first row in the whole table, Prev() finds nothing and
					// leaves the cursor sitting on the sentinel already. Only
					// step forward to undo the move in the former case.
					if prevKey != nil {
						if _, _, err := cursor.Next(); err != nil {
							return fmt.Errorf("history index: return to sentinel: %w", err)
						}
					}
					if cur, _, err := cursor.Current(); err != nil {
						return fmt.Errorf("history index: locate sentinel: %w", err)
					} else if !bytes.Equal(cur, key) {
						return fmt.Errorf("history index: expected cursor back on sentinel %x, got %x", key, cur)
					}
					if err := cursor.DeleteCurrent(); err != nil {
						return fmt.Errorf("history index: delete sentinel: %w", err)
					}
				}
			default:
				// Not the sentinel: the sentinel shard (still non-empty,
				// still present, still the maximum) keeps the invariant
				// satisfied on its own.
				if err := cursor.DeleteCurrent(); err != nil {
					return fmt.Errorf("history index: delete emptied shard: %w", err)
				}
			}
		}

		if _, err := cursor.SeekExact(ops.lastKey(key)); err != nil {
			return fmt.Errorf("history index: seek sentinel: %w", err)
		}
	}
}
