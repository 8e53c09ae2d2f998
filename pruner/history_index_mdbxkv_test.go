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
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erigontech/erigon-lib/common"
	"github.com/erigontech/erigon-lib/kv"
	"github.com/erigontech/erigon-lib/kv/historyv2"
	"github.com/erigontech/erigon-lib/kv/mdbxkv"
)

// These mirror a subset of the memdb scenarios in history_index_test.go
// against the production MDBX adapter, to pin that its Prev/SeekExact
// virtual-position semantics agree with memdb's: pruneHistoryIndex's
// correctness depends on that agreement, not on which backend is live.
func newMdbxDB(t *testing.T, tables ...string) *mdbxkv.DB {
	t.Helper()
	db, err := mdbxkv.Open(filepath.Join(t.TempDir(), "test.mdbx"), tables)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return db
}

func TestPruneHistoryIndex_MDBX_MixedShards(t *testing.T) {
	db := newMdbxDB(t, kv.E2AccountsHistory)
	tx, err := db.BeginRw(context.Background())
	require.NoError(t, err)
	defer tx.Rollback()

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

func TestPruneHistoryIndex_MDBX_SentinelEmptiedAfterPriorShardPruned(t *testing.T) {
	db := newMdbxDB(t, kv.E2AccountsHistory)
	tx, err := db.BeginRw(context.Background())
	require.NoError(t, err)
	defer tx.Rollback()

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

// Same edge case history_index_test.go pins for memdb: the emptied sentinel
// is the first row in the whole table, so Prev() must find nothing and must
// not move the cursor off it.
func TestPruneHistoryIndex_MDBX_SentinelDeletedNoPriorShard_FirstRowInTable(t *testing.T) {
	db := newMdbxDB(t, kv.E2AccountsHistory)
	tx, err := db.BeginRw(context.Background())
	require.NoError(t, err)
	defer tx.Rollback()

	addr := common.BytesToAddress([]byte{0x03})
	putShard(t, tx, kv.E2AccountsHistory, historyv2.ShardedKey{Key: addr, HighestBlockNumber: historyv2.MaxBlockNumber}, []uint64{10})

	cursor, err := tx.RwCursor(kv.E2AccountsHistory)
	require.NoError(t, err)
	require.NoError(t, pruneHistoryIndex(cursor, 10, accountHistoryOps))
	cursor.Close()

	shards := readShards(t, tx, kv.E2AccountsHistory)
	require.Empty(t, shards)
}

func TestPruneHistoryIndex_MDBX_BatchingIsOrderIndependent(t *testing.T) {
	addr := common.BytesToAddress([]byte{0x04})
	blocks := make([]uint64, 0, 7001)
	for b := uint64(0); b <= 7000; b++ {
		blocks = append(blocks, b)
	}

	build := func(t *testing.T) kv.RwTx {
		db := newMdbxDB(t, kv.E2AccountsHistory)
		tx, err := db.BeginRw(context.Background())
		require.NoError(t, err)
		putShard(t, tx, kv.E2AccountsHistory, historyv2.ShardedKey{Key: addr, HighestBlockNumber: 3000}, blocks[:3001])
		putShard(t, tx, kv.E2AccountsHistory, historyv2.ShardedKey{Key: addr, HighestBlockNumber: historyv2.MaxBlockNumber}, blocks[3001:])
		return tx
	}

	single := build(t)
	defer single.Rollback()
	cursor, err := single.RwCursor(kv.E2AccountsHistory)
	require.NoError(t, err)
	require.NoError(t, pruneHistoryIndex(cursor, 4000, accountHistoryOps))
	cursor.Close()
	wantShards := readShards(t, single, kv.E2AccountsHistory)

	staged := build(t)
	defer staged.Rollback()
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
