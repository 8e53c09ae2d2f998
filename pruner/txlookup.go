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
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
)

// hashTransactions hashes each transaction and returns the hashes sorted
// ascending. Hashing is pure per-transaction work with no shared mutable
// state, so it fans out across GOMAXPROCS workers; sorting up front turns
// the caller's subsequent cursor-based deletion into a forward sweep
// instead of random point lookups.
func hashTransactions(txns []Transaction) [][]byte {
	out := make([][]byte, len(txns))

	workers := runtime.GOMAXPROCS(0)
	if workers > len(txns) {
		workers = len(txns)
	}
	if workers < 1 {
		workers = 1
	}

	var g errgroup.Group
	chunk := (len(txns) + workers - 1) / workers
	if chunk < 1 {
		chunk = 1
	}
	for start := 0; start < len(txns); start += chunk {
		end := start + chunk
		if end > len(txns) {
			end = len(txns)
		}
		start, end := start, end
		g.Go(func() error {
			for i := start; i < end; i++ {
				h := txns[i].Hash()
				out[i] = h[:]
			}
			return nil
		})
	}
	_ = g.Wait() // hashing cannot fail; Group is used only for the fan-out

	sort.Slice(out, func(i, j int) bool { return bytes.Compare(out[i], out[j]) < 0 })
	return out
}
