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
	"fmt"

	"github.com/erigontech/erigon-lib/kv"
	"github.com/erigontech/erigon-prune/ethdb/prune"
)

// BlockRange is an inclusive [From, To] range of block numbers.
type BlockRange struct {
	From, To uint64
}

// TxRange is an inclusive [From, To] range of transaction numbers.
type TxRange struct {
	From, To uint64
}

// BlockBodyIndices locates a block's transactions within the flat,
// globally-numbered transaction space.
type BlockBodyIndices struct {
	FirstTxNum uint64
	TxCount    uint64
}

func (b BlockBodyIndices) LastTxNum() uint64 {
	if b.TxCount == 0 {
		// An empty block's "last" tx is one before its first, so
		// FirstTxNum > LastTxNum marks an empty range. For FirstTxNum == 0
		// this wraps to MaxUint64, so planTxRange tests for emptiness
		// against FirstTxNum+TxCount instead of this value.
		return b.FirstTxNum - 1
	}
	return b.FirstTxNum + b.TxCount - 1
}

// Transaction is the minimal shape the transaction-lookup pruner needs:
// something it can hash.
type Transaction interface {
	Hash() [32]byte
}

// BlockReader is the block/transaction provider the planner and the
// transaction-lookup pruner consume.
type BlockReader interface {
	// BlockBodyIndices returns nil if block has no recorded body, meaning
	// it was already pruned, or the store is inconsistent. Either way the
	// caller's response is the same: stop, don't error.
	BlockBodyIndices(tx kv.Tx, block uint64) (*BlockBodyIndices, error)
	// TransactionsByTxNumRange returns every transaction with number in
	// [from, to], in tx-number order.
	TransactionsByTxNumRange(tx kv.Tx, r TxRange) ([]Transaction, error)
}

func nextFromBlock(cp *prune.Checkpoint) uint64 {
	if cp == nil {
		return 0
	}
	return cp.BlockNumber + 1
}

// planBlockRange computes the next inclusive block range to prune for part,
// bounded by limit blocks per call, resuming after checkpoint's recorded
// progress. ok is false once from exceeds toBlock: nothing left to do.
func planBlockRange(checkpoint *prune.Checkpoint, toBlock, limit uint64) (r BlockRange, final, ok bool) {
	from := nextFromBlock(checkpoint)
	end := toBlock
	if from+limit-1 < end {
		end = from + limit - 1
	}
	if from > end {
		return BlockRange{}, false, false
	}
	return BlockRange{From: from, To: end}, end == toBlock, true
}

// planTxRange computes the next block range exactly as planBlockRange does,
// then resolves it to a transaction-number range via reader. A nil
// BlockBodyIndices lookup (already pruned, or store inconsistency) yields
// ok=false, the part driver treats that as nothing left to do, not an
// error. A block range made up entirely of empty blocks still advances the
// checkpoint, with no transaction range to delete.
func planTxRange(tx kv.Tx, reader BlockReader, checkpoint *prune.Checkpoint, toBlock, limit uint64) (blocks BlockRange, txs TxRange, hasTxs, final, ok bool, err error) {
	blocks, final, ok = planBlockRange(checkpoint, toBlock, limit)
	if !ok {
		return BlockRange{}, TxRange{}, false, false, false, nil
	}

	fromBody, err := reader.BlockBodyIndices(tx, blocks.From)
	if err != nil {
		return BlockRange{}, TxRange{}, false, false, false, fmt.Errorf("plan tx range: block body %d: %w", blocks.From, err)
	}
	if fromBody == nil {
		return BlockRange{}, TxRange{}, false, false, false, nil
	}

	toBody, err := reader.BlockBodyIndices(tx, blocks.To)
	if err != nil {
		return BlockRange{}, TxRange{}, false, false, false, fmt.Errorf("plan tx range: block body %d: %w", blocks.To, err)
	}
	if toBody == nil {
		return BlockRange{}, TxRange{}, false, false, false, nil
	}

	fromTx := fromBody.FirstTxNum
	if fromTx >= toBody.FirstTxNum+toBody.TxCount {
		return blocks, TxRange{}, false, final, true, nil
	}
	return blocks, TxRange{From: fromTx, To: toBody.LastTxNum()}, true, final, true, nil
}
