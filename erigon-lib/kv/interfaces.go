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

import "context"

// Tx is a read-only database transaction. All reads inside a Tx observe a
// consistent snapshot of the store.
type Tx interface {
	GetOne(table string, key []byte) (val []byte, err error)
	Has(table string, key []byte) (bool, error)
	Cursor(table string) (Cursor, error)
	Rollback()
}

// RwTx is a read-write transaction. Exactly one RwTx may be open against a
// given RwDB at a time; it must be committed or rolled back before another
// one can begin.
type RwTx interface {
	Tx
	Put(table string, key, value []byte) error
	Delete(table string, key []byte) error
	RwCursor(table string) (RwCursor, error)
	Commit() error
}

// Cursor iterates a single table's rows in key order.
type Cursor interface {
	First() (key, value []byte, err error)
	Next() (key, value []byte, err error)
	Prev() (key, value []byte, err error)
	Last() (key, value []byte, err error)
	Current() (key, value []byte, err error)
	// Seek positions the cursor at the first key >= seek and returns it, or
	// (nil, nil, nil) if no such key exists.
	Seek(seek []byte) (key, value []byte, err error)
	// SeekExact positions the cursor at key and returns its value, or
	// (nil, nil) if key is not present. Either way the cursor's position is
	// pinned to key itself, so a subsequent Next always returns the first
	// row strictly greater than key, which is what lets the history-index
	// pruner jump straight to a logical key's sentinel shard and have the
	// following Next land on the next distinct logical key, whether or not
	// that sentinel shard turns out to still exist (see
	// pruner/history_index.go).
	SeekExact(key []byte) (value []byte, err error)
	Close()
}

// RwCursor additionally allows mutating the table at the cursor's current
// position or at an arbitrary key.
type RwCursor interface {
	Cursor
	Put(key, value []byte) error
	// Upsert inserts key/value, overwriting any existing value for key.
	Upsert(key, value []byte) error
	// Delete removes the row for key, if present.
	Delete(key []byte) error
	// DeleteCurrent removes the row the cursor is currently positioned on.
	DeleteCurrent() error
}

// DB opens read-only transactions.
type DB interface {
	BeginRo(ctx context.Context) (Tx, error)
	Close()
}

// RwDB additionally opens the single read-write transaction a store allows
// at a time.
type RwDB interface {
	DB
	BeginRw(ctx context.Context) (RwTx, error)
}
