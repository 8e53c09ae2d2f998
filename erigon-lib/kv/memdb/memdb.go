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

// Package memdb is an in-process kv.RwDB backed by one google/btree.BTree
// per table. It gives tests (and any embedder that doesn't need MDBX's
// durability) the same ordered-cursor semantics the pruner relies on,
// without requiring cgo.
package memdb

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/google/btree"

	"github.com/erigontech/erigon-lib/kv"
)

const degree = 32

type item struct {
	key, value []byte
}

func (a item) Less(than btree.Item) bool {
	return bytes.Compare(a.key, than.(item).key) < 0
}

// DB is a kv.RwDB. Exactly one write transaction may be open at a time;
// BeginRw blocks until any prior one commits or rolls back.
type DB struct {
	writeMu sync.Mutex
	mu      sync.RWMutex
	tables  map[string]*btree.BTree
}

// New creates an empty DB with the given tables pre-declared.
func New(tableNames ...string) *DB {
	tables := make(map[string]*btree.BTree, len(tableNames))
	for _, name := range tableNames {
		tables[name] = btree.New(degree)
	}
	return &DB{tables: tables}
}

func (db *DB) Close() {}

func (db *DB) BeginRo(_ context.Context) (kv.Tx, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return &tx{db: db, tables: db.snapshot()}, nil
}

func (db *DB) BeginRw(_ context.Context) (kv.RwTx, error) {
	db.writeMu.Lock()
	db.mu.RLock()
	snap := db.snapshot()
	db.mu.RUnlock()
	return &tx{db: db, tables: snap, writable: true}, nil
}

func (db *DB) snapshot() map[string]*btree.BTree {
	snap := make(map[string]*btree.BTree, len(db.tables))
	for name, t := range db.tables {
		snap[name] = t.Clone()
	}
	return snap
}

type tx struct {
	db       *DB
	tables   map[string]*btree.BTree
	writable bool
	done     bool
}

func (t *tx) tableTree(table string) (*btree.BTree, error) {
	bt, ok := t.tables[table]
	if !ok {
		return nil, fmt.Errorf("memdb: unknown table %q", table)
	}
	return bt, nil
}

func (t *tx) GetOne(table string, key []byte) ([]byte, error) {
	bt, err := t.tableTree(table)
	if err != nil {
		return nil, err
	}
	found := bt.Get(item{key: key})
	if found == nil {
		return nil, nil
	}
	return found.(item).value, nil
}

func (t *tx) Has(table string, key []byte) (bool, error) {
	v, err := t.GetOne(table, key)
	return v != nil, err
}

func (t *tx) Cursor(table string) (kv.Cursor, error) {
	bt, err := t.tableTree(table)
	if err != nil {
		return nil, err
	}
	return &cursor{tree: bt, writable: false}, nil
}

func (t *tx) RwCursor(table string) (kv.RwCursor, error) {
	if !t.writable {
		return nil, fmt.Errorf("memdb: read-only transaction")
	}
	bt, err := t.tableTree(table)
	if err != nil {
		return nil, err
	}
	return &cursor{tree: bt, writable: true}, nil
}

func (t *tx) Put(table string, key, value []byte) error {
	bt, err := t.tableTree(table)
	if err != nil {
		return err
	}
	bt.ReplaceOrInsert(item{key: append([]byte(nil), key...), value: append([]byte(nil), value...)})
	return nil
}

func (t *tx) Delete(table string, key []byte) error {
	bt, err := t.tableTree(table)
	if err != nil {
		return err
	}
	bt.Delete(item{key: key})
	return nil
}

func (t *tx) Commit() error {
	if t.done {
		return fmt.Errorf("memdb: transaction already closed")
	}
	t.done = true
	defer t.db.writeMu.Unlock()
	t.db.mu.Lock()
	defer t.db.mu.Unlock()
	t.db.tables = t.tables
	return nil
}

func (t *tx) Rollback() {
	if t.done {
		return
	}
	t.done = true
	if t.writable {
		t.db.writeMu.Unlock()
	}
}
