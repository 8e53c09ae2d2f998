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
	"fmt"

	"github.com/erigontech/erigon-lib/kv"
)

// deleteKeyRange deletes every row of table whose key is within [fromKey,
// toKey] inclusive, walking forward from fromKey. It returns the number of
// rows removed.
func deleteKeyRange(tx kv.RwTx, table string, fromKey, toKey []byte) (int, error) {
	cursor, err := tx.RwCursor(table)
	if err != nil {
		return 0, fmt.Errorf("delete range %s: cursor: %w", table, err)
	}
	defer cursor.Close()

	count := 0
	key, _, err := cursor.Seek(fromKey)
	if err != nil {
		return 0, fmt.Errorf("delete range %s: seek: %w", table, err)
	}
	for key != nil && bytes.Compare(key, toKey) <= 0 {
		if err := cursor.DeleteCurrent(); err != nil {
			return count, fmt.Errorf("delete range %s: delete: %w", table, err)
		}
		count++
		key, _, err = cursor.Next()
		if err != nil {
			return count, fmt.Errorf("delete range %s: next: %w", table, err)
		}
	}
	return count, nil
}

// deleteByKeys deletes table rows for each key in sortedKeys, which must
// already be sorted in the table's natural key order: that's what turns
// what would otherwise be random point lookups into a single forward cursor
// sweep. Returns the number of rows actually removed (a key absent from the
// table is not an error).
func deleteByKeys(tx kv.RwTx, table string, sortedKeys [][]byte) (int, error) {
	cursor, err := tx.RwCursor(table)
	if err != nil {
		return 0, fmt.Errorf("delete by keys %s: cursor: %w", table, err)
	}
	defer cursor.Close()

	count := 0
	for _, key := range sortedKeys {
		found, _, err := cursor.Seek(key)
		if err != nil {
			return count, fmt.Errorf("delete by keys %s: seek: %w", table, err)
		}
		if found == nil || !bytes.Equal(found, key) {
			continue
		}
		if err := cursor.DeleteCurrent(); err != nil {
			return count, fmt.Errorf("delete by keys %s: delete: %w", table, err)
		}
		count++
	}
	return count, nil
}
