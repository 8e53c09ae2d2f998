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

// Package pruner reclaims space in the node's key-value store by deleting
// derived and historical table rows whose block number has fallen behind a
// per-part target, incrementally and crash-safely.
package pruner

import (
	"context"
	"time"

	"github.com/erigontech/erigon-lib/kv"
	"github.com/erigontech/erigon-lib/log/v3"
	"github.com/erigontech/erigon-prune/ethdb/prune"
)

// CommitThresholds is the per-part batch size budget: how many blocks (or,
// for tx-ranged parts, how many blocks' worth of transactions) a single
// write transaction covers. Adding a prune part means adding one field here.
type CommitThresholds struct {
	Receipts          uint64
	TransactionLookup uint64
	SenderRecovery    uint64
	AccountHistory    uint64
	StorageHistory    uint64
}

// DefaultCommitThresholds matches every part to 10_000.
func DefaultCommitThresholds() CommitThresholds {
	return CommitThresholds{
		Receipts:          10_000,
		TransactionLookup: 10_000,
		SenderRecovery:    10_000,
		AccountHistory:    10_000,
		StorageHistory:    10_000,
	}
}

// Pruner runs one full pass over all enabled parts on demand, in a fixed
// order, each part progressing incrementally via its own checkpoint.
type Pruner struct {
	db          kv.RwDB
	blockReader BlockReader
	checkpoints KVCheckpointStore

	minBlockInterval uint64
	lastTip          *uint64

	modes      prune.Modes
	thresholds CommitThresholds
}

// New builds a Pruner. minBlockInterval gates Needed; modes configures which
// parts run and how far back; thresholds bounds each part's per-transaction
// batch size.
func New(db kv.RwDB, blockReader BlockReader, minBlockInterval uint64, modes prune.Modes, thresholds CommitThresholds) *Pruner {
	return &Pruner{
		db:               db,
		blockReader:      blockReader,
		minBlockInterval: minBlockInterval,
		modes:            modes,
		thresholds:       thresholds,
	}
}

// Run executes one pass over every part in the fixed order Receipts,
// TransactionLookup, SenderRecovery, AccountHistory, StorageHistory against
// tip. Parts have no data dependency on each other; the order exists to make
// testing deterministic and because later parts can be more expensive. A
// part whose Mode resolves to "disabled" at this tip is skipped.
func (p *Pruner) Run(ctx context.Context, tip uint64) error {
	start := time.Now()

	for _, spec := range partSpecs {
		toBlock, mode, ok, err := p.modes.Target(spec.part, tip)
		if err != nil {
			return newModeResolutionErr(spec.part, err)
		}
		if !ok {
			continue
		}
		if err := p.runPartUntilDone(ctx, spec, toBlock, mode); err != nil {
			return err
		}
	}

	p.lastTip = &tip
	log.Info("prune: run finished", "tip", tip, "took", time.Since(start))
	return nil
}

// Needed reports whether a Run is due at tip: true if no run has completed
// yet, or tip has advanced at least minBlockInterval blocks past the last
// run's tip. Subtraction saturates at zero so a reorg that drops tip below
// the last recorded run never spuriously triggers one.
func (p *Pruner) Needed(tip uint64) bool {
	if p.lastTip == nil {
		return true
	}
	var delta uint64
	if tip > *p.lastTip {
		delta = tip - *p.lastTip
	}
	return delta >= p.minBlockInterval
}
