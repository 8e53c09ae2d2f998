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
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erigontech/erigon-lib/common"
	"github.com/erigontech/erigon-lib/kv"
	"github.com/erigontech/erigon-lib/kv/historyv2"
	"github.com/erigontech/erigon-lib/kv/memdb"
)

func putShard(t *testing.T, tx kv.RwTx, table string, key historyv2.ShardedKey, blocks []uint64) {
	t.Helper()
	encoded, err := historyv2.NewPreSorted(blocks).Encode()
	require.NoError(t, err)
	require.NoError(t, tx.Put(table, key.Encode(), encoded))
}

func readShards(t *testing.T, tx kv.Tx, table string) map[uint64][]uint64 {
	t.Helper()
	cursor, err := tx.Cursor(table)
	require.NoError(t, err)
	defer cursor.Close()

	out := map[uint64][]uint64{}
	for k, v, err := cursor.First(); k != nil; k, v, err = cursor.Next() {
		require.NoError(t, err)
		sk := historyv2.DecodeShardedKey(k)
		bl, err := historyv2.DecodeBlockList(v)
		require.NoError(t, err)
		out[sk.HighestBlockNumber] = bl.Iter()
	}
	return out
}

// A single account with three shards: two closed shards and an open
// sentinel. to_block lands exactly on the boundary of the first shard
// (Case A, `highest == to_block`), so the seek to the sentinel skips the
// second shard and the sentinel, which both stay untouched.
func TestPruneHistoryIndex_MixedShards(t *testing.T) {
	db := memdb.New(kv.E2AccountsHistory)
	tx, err := db.BeginRw(context.Background())
	require.NoError(t, err)

	addr := common.BytesToAddress([]byte{0x01})
	putShard(t, tx, kv.E2AccountsHistory, historyv2.ShardedKey{Key: addr, HighestBlockNumber: 100}, []uint64{10, 50, 100})
	putShard(t, tx, kv.E2AccountsHistory, historyv2.ShardedKey{Key: addr, HighestBlockNumber: 200}, []uint64{150, 200})
	putShard(t, tx, kv.E2AccountsHistory, historyv2.ShardedKey{Key: addr, HighestBlockNumber: historyv2.MaxBlockNumber}, []uint64{250, 300})

	cursor, err := tx.RwCursor(kv.E2AccountsHistory)
	require.NoError(t, err)
	require.NoError(t, pruneHistoryIndex(cursor, 100, accountHistoryOps))
	cursor.Close()

	shards := readShards(t, tx, kv.E2AccountsHistory)
	require.Len(t, shards, 2)
	require.Equal(t, []uint64{150, 200}, shards[200])
	require.Equal(t, []uint64{250, 300}, shards[historyv2.MaxBlockNumber])
}

// The sentinel itself is pruned to empty. The prior shard of the same key
// holds only blocks <= to_block, so Case A deletes it before the sentinel is
// reached; Prev() then finds no prior shard and the logical key disappears.
func TestPruneHistoryIndex_SentinelEmptiedAfterPriorShardPruned(t *testing.T) {
	db := memdb.New(kv.E2AccountsHistory)
	tx, err := db.BeginRw(context.Background())
	require.NoError(t, err)

	addr := common.BytesToAddress([]byte{0x02})
	putShard(t, tx, kv.E2AccountsHistory, historyv2.ShardedKey{Key: addr, HighestBlockNumber: 100}, []uint64{50, 100})
	putShard(t, tx, kv.E2AccountsHistory, historyv2.ShardedKey{Key: addr, HighestBlockNumber: historyv2.MaxBlockNumber}, []uint64{150})

	cursor, err := tx.RwCursor(kv.E2AccountsHistory)
	require.NoError(t, err)
	require.NoError(t, pruneHistoryIndex(cursor, 150, accountHistoryOps))
	cursor.Close()

	shards := readShards(t, tx, kv.E2AccountsHistory)
	require.Empty(t, shards)
}

// The sentinel is pruned to empty and there is no prior shard of the same
// key at all, so the logical key disappears. This key is also the very first
// row of the whole table, exercising the edge case where Prev() finds no
// predecessor anywhere and must not move the cursor off the sentinel.
func TestPruneHistoryIndex_SentinelDeletedNoPriorShard_FirstRowInTable(t *testing.T) {
	db := memdb.New(kv.E2AccountsHistory)
	tx, err := db.BeginRw(context.Background())
	require.NoError(t, err)

	addr := common.BytesToAddress([]byte{0x03})
	putShard(t, tx, kv.E2AccountsHistory, historyv2.ShardedKey{Key: addr, HighestBlockNumber: historyv2.MaxBlockNumber}, []uint64{10})

	cursor, err := tx.RwCursor(kv.E2AccountsHistory)
	require.NoError(t, err)
	require.NoError(t, pruneHistoryIndex(cursor, 10, accountHistoryOps))
	cursor.Close()

	shards := readShards(t, tx, kv.E2AccountsHistory)
	require.Empty(t, shards)
}

// Same "no prior shard" case, but now a different, lexicographically-earlier
// account's sentinel immediately precedes this one in cursor order: Prev()
// finds a row, but it belongs to a different logical key.
func TestPruneHistoryIndex_SentinelDeletedNoPriorShard_PrecededByOtherKey(t *testing.T) {
	db := memdb.New(kv.E2AccountsHistory)
	tx, err := db.BeginRw(context.Background())
	require.NoError(t, err)

	addrA := common.BytesToAddress([]byte{0x01})
	addrB := common.BytesToAddress([]byte{0x02})
	putShard(t, tx, kv.E2AccountsHistory, historyv2.ShardedKey{Key: addrA, HighestBlockNumber: historyv2.MaxBlockNumber}, []uint64{5, 500})
	putShard(t, tx, kv.E2AccountsHistory, historyv2.ShardedKey{Key: addrB, HighestBlockNumber: historyv2.MaxBlockNumber}, []uint64{10})

	cursor, err := tx.RwCursor(kv.E2AccountsHistory)
	require.NoError(t, err)
	require.NoError(t, pruneHistoryIndex(cursor, 10, accountHistoryOps))
	cursor.Close()

	shards := readShards(t, tx, kv.E2AccountsHistory)
	require.Len(t, shards, 1)
	require.Equal(t, []uint64{500}, shards[historyv2.MaxBlockNumber])
}

// Batching: splitting the same prune into several limit-bounded calls must
// not change the final state versus a single call (spec §8's round-trip
// property).
func TestPruneHistoryIndex_BatchingIsOrderIndependent(t *testing.T) {
	addr := common.BytesToAddress([]byte{0x04})
	blocks := make([]uint64, 0, 7001)
	for b := uint64(0); b <= 7000; b++ {
		blocks = append(blocks, b)
	}

	build := func() (*memdb.DB, kv.RwTx) {
		db := memdb.New(kv.E2AccountsHistory)
		tx, err := db.BeginRw(context.Background())
		require.NoError(t, err)
		putShard(t, tx, kv.E2AccountsHistory, historyv2.ShardedKey{Key: addr, HighestBlockNumber: 3000}, blocks[:3001])
		putShard(t, tx, kv.E2AccountsHistory, historyv2.ShardedKey{Key: addr, HighestBlockNumber: historyv2.MaxBlockNumber}, blocks[3001:])
		return db, tx
	}

	_, single := build()
	cursor, err := single.RwCursor(kv.E2AccountsHistory)
	require.NoError(t, err)
	require.NoError(t, pruneHistoryIndex(cursor, 4000, accountHistoryOps))
	cursor.Close()
	wantShards := readShards(t, single, kv.E2AccountsHistory)

	// Same target, reached via two batches of limit=3000 blocks each, as
	// planBlockRange would actually produce: [0..2999] then [3000..4000].
	_, staged := build()
	for _, toBlock := range []uint64{2999, 4000} {
		cursor, err := staged.RwCursor(kv.E2AccountsHistory)
		require.NoError(t, err)
		require.NoError(t, pruneHistoryIndex(cursor, toBlock, accountHistoryOps))
		cursor.Close()
	}
	gotShards := readShards(t, staged, kv.E2AccountsHistory)

	require.Equal(t, wantShards, gotShards)
	require.Len(t, gotShards, 1)
	require.Equal(t, uint64(4001), gotShards[historyv2.MaxBlockNumber][0])
	require.Len(t, gotShards[historyv2.MaxBlockNumber], 3000)
}

// StorageHistory uses a different key shape (address, storage key, highest)
// but the same algorithm; one shard, sentinel, storage slot pair.
func TestPruneHistoryIndex_StorageShardedKey(t *testing.T) {
	db := memdb.New(kv.E2StorageHistory)
	tx, err := db.BeginRw(context.Background())
	require.NoError(t, err)

	addr := common.BytesToAddress([]byte{0x05})
	slot := common.BytesToHash([]byte{0x09})
	key := historyv2.StorageShardedKey{Address: addr, StorageKey: slot, Highest: historyv2.MaxBlockNumber}
	encoded, err := historyv2.NewPreSorted([]uint64{1, 2, 3}).Encode()
	require.NoError(t, err)
	require.NoError(t, tx.Put(kv.E2StorageHistory, key.Encode(), encoded))

	cursor, err := tx.RwCursor(kv.E2StorageHistory)
	require.NoError(t, err)
	require.NoError(t, pruneHistoryIndex(cursor, 2, storageHistoryOps))
	cursor.Close()

	v, err := tx.GetOne(kv.E2StorageHistory, key.Encode())
	require.NoError(t, err)
	require.NotNil(t, v)
	bl, err := historyv2.DecodeBlockList(v)
	require.NoError(t, err)
	require.Equal(t, []uint64{3}, bl.Iter())
}
