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
	"time"

	"github.com/erigontech/erigon-lib/log/v3"
	"github.com/erigontech/erigon-prune/ethdb/prune"
)

// runPartUntilDone loops spec's part driver: begin a write transaction, run
// one bounded iteration, commit, repeat until the part reports its final
// range or has nothing left to prune. Each iteration is wrapped in its own
// transaction, so a failure aborts only the in-flight iteration: everything
// committed in earlier iterations of this same Run stands.
func (p *Pruner) runPartUntilDone(ctx context.Context, spec partSpec, toBlock uint64, mode prune.Mode) error {
	for {
		tx, err := p.db.BeginRw(ctx)
		if err != nil {
			return newStorageErr(spec.part, err)
		}

		start := time.Now()
		rows, final, ok, err := spec.runner(p, tx, toBlock, spec.limit(p.thresholds), mode)
		if err != nil {
			tx.Rollback()
			return err
		}
		if !ok {
			tx.Rollback()
			log.Debug("prune: nothing to do", "part", spec.part)
			return nil
		}

		if err := tx.Commit(); err != nil {
			return newStorageErr(spec.part, err)
		}

		log.Info("prune: iteration committed", "part", spec.part, "rows", rows, "final", final, "took", time.Since(start))

		if final {
			return nil
		}
	}
}
