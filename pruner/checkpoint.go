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
	"encoding/binary"
	"fmt"

	"github.com/erigontech/erigon-lib/kv"
	"github.com/erigontech/erigon-lib/log/v3"
	"github.com/erigontech/erigon-prune/ethdb/prune"
)

// CheckpointReader reads a part's last recorded checkpoint.
type CheckpointReader interface {
	GetPruneCheckpoint(tx kv.Tx, part prune.Part) (*prune.Checkpoint, error)
}

// CheckpointWriter persists a part's checkpoint.
type CheckpointWriter interface {
	SavePruneCheckpoint(tx kv.RwTx, part prune.Part, cp prune.Checkpoint) error
}

// KVCheckpointStore stores one Checkpoint per part in kv.PruneCheckpoint,
// keyed by the part name. The value is the block number (8 bytes, big
// endian) followed by the mode's string form, enough to round-trip the
// Before/Distance/Full shape without a general-purpose codec.
type KVCheckpointStore struct{}

func (KVCheckpointStore) GetPruneCheckpoint(tx kv.Tx, part prune.Part) (*prune.Checkpoint, error) {
	v, err := tx.GetOne(kv.PruneCheckpoint, []byte(part))
	if err != nil {
		return nil, fmt.Errorf("checkpoint: get %s: %w", part, err)
	}
	if v == nil {
		return nil, nil
	}
	if len(v) < 8 {
		return nil, fmt.Errorf("checkpoint: %s: short value (%d bytes)", part, len(v))
	}
	cp := prune.Checkpoint{
		BlockNumber: binary.BigEndian.Uint64(v[:8]),
		Mode:        decodeMode(v[8:]),
	}
	return &cp, nil
}

func (KVCheckpointStore) SavePruneCheckpoint(tx kv.RwTx, part prune.Part, cp prune.Checkpoint) error {
	v := make([]byte, 8+len(encodeMode(cp.Mode)))
	binary.BigEndian.PutUint64(v[:8], cp.BlockNumber)
	copy(v[8:], encodeMode(cp.Mode))
	if err := tx.Put(kv.PruneCheckpoint, []byte(part), v); err != nil {
		return fmt.Errorf("checkpoint: put %s: %w", part, err)
	}
	log.Debug("prune: checkpoint saved", "part", part, "block", cp.BlockNumber, "mode", cp.Mode)
	return nil
}

// encodeMode/decodeMode round-trip a Mode through its String() form. Modes
// are tiny and infrequent to persist, so a human-readable encoding (visible
// in any raw table dump) is worth more here than a compact binary one.
func encodeMode(m prune.Mode) []byte { return []byte(m.String()) }

func decodeMode(b []byte) prune.Mode {
	mode, err := prune.ParseMode(string(b))
	if err != nil {
		// A checkpoint with an unparsable mode string is still useful for
		// its block number; callers only ever read BlockNumber to find where
		// to resume, so fall back to Disabled rather than failing reads.
		return prune.Disabled()
	}
	return mode
}
