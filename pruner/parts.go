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
	"github.com/erigontech/erigon-lib/kv"
	"github.com/erigontech/erigon-prune/ethdb/prune"
)

// partRunner executes one bounded iteration of a part's prune loop: plan the
// next range, mutate the tables it owns, write the checkpoint. It returns
// the number of rows removed and whether this was the part's final range
// for the current to_block, or ok=false if there was nothing left to do.
type partRunner func(p *Pruner, tx kv.RwTx, toBlock, limit uint64, mode prune.Mode) (rows int, final, ok bool, err error)

// partSpec binds a part to its runner and the limit field of
// CommitThresholds it reads. Adding a new part means adding one partSpec and
// one CommitThresholds field, not a new branch in the driver.
type partSpec struct {
	part   prune.Part
	runner partRunner
	limit  func(CommitThresholds) uint64
}

var partSpecs = []partSpec{
	{prune.Receipts, (*Pruner).pruneReceipts, func(c CommitThresholds) uint64 { return c.Receipts }},
	{prune.TransactionLookup, (*Pruner).pruneTransactionLookup, func(c CommitThresholds) uint64 { return c.TransactionLookup }},
	{prune.SenderRecovery, (*Pruner).pruneSenderRecovery, func(c CommitThresholds) uint64 { return c.SenderRecovery }},
	{prune.AccountHistory, (*Pruner).pruneAccountHistory, func(c CommitThresholds) uint64 { return c.AccountHistory }},
	{prune.StorageHistory, (*Pruner).pruneStorageHistory, func(c CommitThresholds) uint64 { return c.StorageHistory }},
}
