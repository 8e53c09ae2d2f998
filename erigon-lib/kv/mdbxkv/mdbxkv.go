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

// Package mdbxkv adapts github.com/erigontech/mdbx-go, erigon's production
// storage engine, to the kv.RwDB/Tx/Cursor surface the rest of this module
// programs against. erigon-lib's own kv/mdbx package is the model this
// follows, trimmed to the handful of operations the pruner needs.
package mdbxkv

import (
	"context"
	"fmt"

	"github.com/erigontech/mdbx-go/mdbx"

	"github.com/erigontech/erigon-lib/kv"
)

// DB opens (or creates) an MDBX environment at path with one named table
// (DBI) per entry in tables.
type DB struct {
	env    *mdbx.Env
	tables []string
	dbis   map[string]mdbx.DBI
}

// Open creates the MDBX environment at path, declaring one DBI per table.
// The environment's maximum DBI count is set to len(tables)+1.
func Open(path string, tables []string) (*DB, error) {
	env, err := mdbx.NewEnv(mdbx.Default)
	if err != nil {
		return nil, fmt.Errorf("mdbxkv: new env: %w", err)
	}
	if err := env.SetOption(mdbx.OptMaxDB, uint64(len(tables)+1)); err != nil {
		return nil, fmt.Errorf("mdbxkv: set max dbs: %w", err)
	}
	if err := env.Open(path, mdbx.NoSubdir, 0664); err != nil {
		return nil, fmt.Errorf("mdbxkv: open %s: %w", path, err)
	}
	db := &DB{env: env, tables: tables, dbis: make(map[string]mdbx.DBI, len(tables))}
	if err := db.createDBIs(); err != nil {
		env.Close()
		return nil, err
	}
	return db, nil
}

func (db *DB) createDBIs() error {
	txn, err := db.env.BeginTxn(nil, 0)
	if err != nil {
		return fmt.Errorf("mdbxkv: begin setup txn: %w", err)
	}
	for _, table := range db.tables {
		dbi, err := txn.OpenDBISimple(table, mdbx.Create)
		if err != nil {
			txn.Abort()
			return fmt.Errorf("mdbxkv: open dbi %s: %w", table, err)
		}
		db.dbis[table] = dbi
	}
	if _, err := txn.Commit(); err != nil {
		return fmt.Errorf("mdbxkv: commit setup txn: %w", err)
	}
	return nil
}

func (db *DB) Close() { db.env.Close() }

func (db *DB) BeginRo(_ context.Context) (kv.Tx, error) {
	txn, err := db.env.BeginTxn(nil, mdbx.Readonly)
	if err != nil {
		return nil, fmt.Errorf("mdbxkv: begin ro txn: %w", err)
	}
	return &tx{db: db, txn: txn}, nil
}

func (db *DB) BeginRw(_ context.Context) (kv.RwTx, error) {
	txn, err := db.env.BeginTxn(nil, 0)
	if err != nil {
		return nil, fmt.Errorf("mdbxkv: begin rw txn: %w", err)
	}
	return &tx{db: db, txn: txn, writable: true}, nil
}

type tx struct {
	db       *DB
	txn      *mdbx.Txn
	writable bool
}

func (t *tx) dbi(table string) (mdbx.DBI, error) {
	d, ok := t.db.dbis[table]
	if !ok {
		return 0, fmt.Errorf("mdbxkv: unknown table %q", table)
	}
	return d, nil
}

func (t *tx) GetOne(table string, key []byte) ([]byte, error) {
	d, err := t.dbi(table)
	if err != nil {
		return nil, err
	}
	v, err := t.txn.Get(d, key)
	if mdbx.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mdbxkv: get %s: %w", table, err)
	}
	return v, nil
}

func (t *tx) Has(table string, key []byte) (bool, error) {
	v, err := t.GetOne(table, key)
	return v != nil, err
}

func (t *tx) Cursor(table string) (kv.Cursor, error) {
	d, err := t.dbi(table)
	if err != nil {
		return nil, err
	}
	c, err := t.txn.OpenCursor(d)
	if err != nil {
		return nil, fmt.Errorf("mdbxkv: open cursor %s: %w", table, err)
	}
	return &cursor{c: c}, nil
}

func (t *tx) RwCursor(table string) (kv.RwCursor, error) {
	if !t.writable {
		return nil, fmt.Errorf("mdbxkv: read-only transaction")
	}
	d, err := t.dbi(table)
	if err != nil {
		return nil, err
	}
	c, err := t.txn.OpenCursor(d)
	if err != nil {
		return nil, fmt.Errorf("mdbxkv: open rw cursor %s: %w", table, err)
	}
	return &cursor{c: c, writable: true}, nil
}

func (t *tx) Put(table string, key, value []byte) error {
	d, err := t.dbi(table)
	if err != nil {
		return err
	}
	if err := t.txn.Put(d, key, value, 0); err != nil {
		return fmt.Errorf("mdbxkv: put %s: %w", table, err)
	}
	return nil
}

func (t *tx) Delete(table string, key []byte) error {
	d, err := t.dbi(table)
	if err != nil {
		return err
	}
	if err := t.txn.Del(d, key, nil); err != nil && !mdbx.IsNotFound(err) {
		return fmt.Errorf("mdbxkv: delete %s: %w", table, err)
	}
	return nil
}

func (t *tx) Commit() error {
	if _, err := t.txn.Commit(); err != nil {
		return fmt.Errorf("mdbxkv: commit: %w", err)
	}
	return nil
}

func (t *tx) Rollback() { t.txn.Abort() }
