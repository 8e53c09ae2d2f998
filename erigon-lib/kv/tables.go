// Copyright 2021 The Erigon Authors
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

package kv

// Table name constants for the tables the pruner touches. This is a
// deliberately small subset of erigon's real chaindata schema: only the
// tables that back the five prune parts (see ethdb/prune.Part), plus the
// bookkeeping table the pruner itself owns.

const (
	// Receipts holds one row per transaction.
	//
	// key   - tx_num_u64
	// value - rlp(receipt)
	Receipts = "Receipts"

	// TxSenders caches the recovered sender of every transaction, so the
	// node doesn't have to re-run ECDSA recovery on every read.
	//
	// key   - tx_num_u64
	// value - address (20 bytes)
	TxSenders = "TxSender"

	// TxHashNumber is the reverse lookup from transaction hash to its
	// global transaction number.
	//
	// key   - tx hash (32 bytes)
	// value - tx_num_u64
	TxHashNumber = "BlockTransactionLookup"
)

const (
	// AccountChangeSetDeprecated records, for every block, which accounts
	// changed and their encoded pre-block state. Superseded by erigon's E3
	// domains for live reads, but still written/read by the legacy history
	// index this package implements, per
	// docs/programmers_guide/db_walkthrough.MD#table-history-of-accounts.
	//
	// key   - block_num_u64
	// value - address + account(encoded)
	AccountChangeSetDeprecated = "AccountChangeSet"

	// StorageChangeSetDeprecated is AccountChangeSetDeprecated's storage
	// counterpart.
	//
	// key   - block_num_u64 + address + incarnation_u64
	// value - plain_storage_key + value
	StorageChangeSetDeprecated = "StorageChangeSet"
)

const (
	// E2AccountsHistory and E2StorageHistory are sharded indices designed to
	// answer two questions cheaply:
	//  1. what is the smallest block number >= X where account A changed?
	//  2. what is the last shard of A, so a new block number can be appended?
	//
	// Each index entry ("shard") holds a roaring-bitmap-encoded, ascending
	// list of block numbers, capped at roughly 2Kb so that popular
	// accounts/slots don't degrade lookups or blow past MDBX's inline page
	// size. A shard that is not the logically-last one for its key carries
	// an 8-byte big-endian suffix equal to the highest block number it
	// contains; the logically-last shard instead carries the sentinel
	// suffix 0xFFFFFFFFFFFFFFFF ("open": more blocks can still be appended
	// to it). See erigon-lib/kv/historyv2 for the Go encoding of this key.
	//
	// E2AccountsHistory:
	//   key   - address + shard_id_u64
	//   value - roaring bitmap - list of blocks where the account changed
	//
	// E2StorageHistory:
	//   key   - address + storage_key + shard_id_u64
	//   value - roaring bitmap - list of blocks where the slot changed
	E2AccountsHistory = "AccountHistory"
	E2StorageHistory  = "StorageHistory"
)

const (
	// PruneCheckpoint records, per prune part, the highest block number
	// that has already been pruned and under which PruneMode. Absence of a
	// row for a part means that part has never been pruned.
	//
	// key   - part name (string, see ethdb/prune.Part)
	// value - encoded PruneCheckpoint
	PruneCheckpoint = "PruneCheckpoint"
)

// PruneTables lists every table the pruner is allowed to touch, as a flat
// list with no record of which part owns which table. Kept as a package-level slice (rather than scattering
// string literals through pruner/) so that adding a table to a part's scope
// is a one-line change, matching the "polymorphism over prune-part
// specifics" design note.
var PruneTables = []string{
	Receipts,
	TxSenders,
	TxHashNumber,
	AccountChangeSetDeprecated,
	StorageChangeSetDeprecated,
	E2AccountsHistory,
	E2StorageHistory,
	PruneCheckpoint,
}
