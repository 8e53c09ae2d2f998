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

func (p *Pruner) checkpointFor(tx kv.Tx, part prune.Part) (*prune.Checkpoint, error) {
	cp, err := p.checkpoints.GetPruneCheckpoint(tx, part)
	if err != nil {
		return nil, newStorageErr(part, err)
	}
	return cp, nil
}

func (p *Pruner) saveCheckpoint(tx kv.RwTx, part prune.Part, blockEnd uint64, mode prune.Mode) error {
	if err := p.checkpoints.SavePruneCheckpoint(tx, part, prune.Checkpoint{BlockNumber: blockEnd, Mode: mode}); err != nil {
		return newStorageErr(part, err)
	}
	return nil
}

// pruneReceipts implements the Receipts part: plan_tx_range w/ limit =
// Receipts, then delete_range<Receipts>(tx_range).
func (p *Pruner) pruneReceipts(tx kv.RwTx, toBlock, limit uint64, mode prune.Mode) (int, bool, bool, error) {
	return p.pruneTxRangedTable(tx, prune.Receipts, kv.Receipts, toBlock, limit, mode)
}

// pruneSenderRecovery implements the SenderRecovery part: symmetric to
// Receipts, over TxSenders.
func (p *Pruner) pruneSenderRecovery(tx kv.RwTx, toBlock, limit uint64, mode prune.Mode) (int, bool, bool, error) {
	return p.pruneTxRangedTable(tx, prune.SenderRecovery, kv.TxSenders, toBlock, limit, mode)
}

// pruneTxRangedTable covers the two parts (Receipts, SenderRecovery) that
// are planned by tx-range and mutated by a plain key-range delete.
func (p *Pruner) pruneTxRangedTable(tx kv.RwTx, part prune.Part, table string, toBlock, limit uint64, mode prune.Mode) (int, bool, bool, error) {
	checkpoint, err := p.checkpointFor(tx, part)
	if err != nil {
		return 0, false, false, err
	}

	blocks, txs, hasTxs, final, ok, err := planTxRange(tx, p.blockReader, checkpoint, toBlock, limit)
	if err != nil {
		return 0, false, false, newStorageErr(part, err)
	}
	if !ok {
		return 0, false, false, nil
	}

	rows := 0
	if hasTxs {
		rows, err = deleteKeyRange(tx, table, uint64Key(txs.From), uint64Key(txs.To))
		if err != nil {
			return 0, false, false, newStorageErr(part, err)
		}
	}

	if err := p.saveCheckpoint(tx, part, blocks.To, mode); err != nil {
		return 0, false, false, err
	}
	return rows, final, true, nil
}

// pruneTransactionLookup implements the TransactionLookup part: plan_tx_range
// w/ limit = TransactionLookup, fetch and hash the transactions (in
// parallel), sort, delete_by_keys<TxHashNumber>.
func (p *Pruner) pruneTransactionLookup(tx kv.RwTx, toBlock, limit uint64, mode prune.Mode) (int, bool, bool, error) {
	const part = prune.TransactionLookup

	checkpoint, err := p.checkpointFor(tx, part)
	if err != nil {
		return 0, false, false, err
	}

	blocks, txs, hasTxs, final, ok, err := planTxRange(tx, p.blockReader, checkpoint, toBlock, limit)
	if err != nil {
		return 0, false, false, newStorageErr(part, err)
	}
	if !ok {
		return 0, false, false, nil
	}

	rows := 0
	if hasTxs {
		txCount := int(txs.To-txs.From) + 1
		transactions, err := p.blockReader.TransactionsByTxNumRange(tx, txs)
		if err != nil {
			return 0, false, false, newStorageErr(part, err)
		}
		if len(transactions) != txCount {
			return 0, false, false, newInconsistentErr(part, fmt.Sprintf(
				"transactions_by_tx_range returned %d rows for a range of %d", len(transactions), txCount))
		}

		hashes := hashTransactions(transactions)
		rows, err = deleteByKeys(tx, kv.TxHashNumber, hashes)
		if err != nil {
			return 0, false, false, newStorageErr(part, err)
		}
	}

	if err := p.saveCheckpoint(tx, part, blocks.To, mode); err != nil {
		return 0, false, false, err
	}
	return rows, final, true, nil
}

// pruneAccountHistory implements the AccountHistory part: plan_block_range
// w/ limit = AccountHistory, delete_range<AccountChangeSet>(block_range),
// then history-index prune on AccountHistory.
func (p *Pruner) pruneAccountHistory(tx kv.RwTx, toBlock, limit uint64, mode prune.Mode) (int, bool, bool, error) {
	const part = prune.AccountHistory

	checkpoint, err := p.checkpointFor(tx, part)
	if err != nil {
		return 0, false, false, err
	}

	blocks, final, ok := planBlockRange(checkpoint, toBlock, limit)
	if !ok {
		return 0, false, false, nil
	}

	from, to := blockRangeKeyBounds(blocks)
	rows, err := deleteKeyRange(tx, kv.AccountChangeSetDeprecated, from, to)
	if err != nil {
		return 0, false, false, newStorageErr(part, err)
	}

	if err := p.pruneHistoryTable(tx, part, kv.E2AccountsHistory, blocks.To, accountHistoryOps); err != nil {
		return 0, false, false, err
	}

	if err := p.saveCheckpoint(tx, part, blocks.To, mode); err != nil {
		return 0, false, false, err
	}
	return rows, final, true, nil
}

// pruneStorageHistory implements the StorageHistory part: same shape as
// AccountHistory, over StorageChangeSet/StorageHistory.
func (p *Pruner) pruneStorageHistory(tx kv.RwTx, toBlock, limit uint64, mode prune.Mode) (int, bool, bool, error) {
	const part = prune.StorageHistory

	checkpoint, err := p.checkpointFor(tx, part)
	if err != nil {
		return 0, false, false, err
	}

	blocks, final, ok := planBlockRange(checkpoint, toBlock, limit)
	if !ok {
		return 0, false, false, nil
	}

	from, to := blockRangeKeyBounds(blocks)
	rows, err := deleteKeyRange(tx, kv.StorageChangeSetDeprecated, from, to)
	if err != nil {
		return 0, false, false, newStorageErr(part, err)
	}

	if err := p.pruneHistoryTable(tx, part, kv.E2StorageHistory, blocks.To, storageHistoryOps); err != nil {
		return 0, false, false, err
	}

	if err := p.saveCheckpoint(tx, part, blocks.To, mode); err != nil {
		return 0, false, false, err
	}
	return rows, final, true, nil
}

func (p *Pruner) pruneHistoryTable(tx kv.RwTx, part prune.Part, table string, toBlock uint64, ops shardKeyOps) error {
	cursor, err := tx.RwCursor(table)
	if err != nil {
		return newStorageErr(part, err)
	}
	defer cursor.Close()

	if err := pruneHistoryIndex(cursor, toBlock, ops); err != nil {
		return newStorageErr(part, err)
	}
	return nil
}
