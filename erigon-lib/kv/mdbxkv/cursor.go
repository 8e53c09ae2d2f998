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

package mdbxkv

import (
	"fmt"

	"github.com/erigontech/mdbx-go/mdbx"
)

// cursor tracks a virtual position (pos) independent of MDBX's own cursor
// state, the same way erigon-lib/kv/memdb does: pos is pinned to whatever
// key SeekExact was last asked for, found or not, so that a following Next
// always lands on the first row strictly greater than pos. MDBX itself
// leaves cursor state unspecified after a failed exact-match seek, so this
// package never relies on it across calls: every navigation op re-derives
// its result from pos with a fresh Get.
type cursor struct {
	c        *mdbx.Cursor
	writable bool

	started bool
	pos     []byte
}

func (c *cursor) Close() { c.c.Close() }

func (c *cursor) First() ([]byte, []byte, error) {
	return c.land(c.c.Get(nil, nil, mdbx.First))
}

func (c *cursor) Last() ([]byte, []byte, error) {
	return c.land(c.c.Get(nil, nil, mdbx.Last))
}

func (c *cursor) Next() ([]byte, []byte, error) {
	if !c.started {
		return c.First()
	}
	k, v, err := c.c.Get(c.pos, nil, mdbx.SetRange)
	if isNotFound(err) {
		return c.land(nil, nil, nil)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("mdbxkv: next: %w", err)
	}
	if string(k) == string(c.pos) {
		// SetRange landed exactly on pos; step one further.
		return c.land(c.c.Get(nil, nil, mdbx.Next))
	}
	return c.land(k, v, nil)
}

func (c *cursor) Prev() ([]byte, []byte, error) {
	if !c.started {
		return c.Last()
	}
	_, _, err := c.c.Get(c.pos, nil, mdbx.SetRange)
	if isNotFound(err) {
		// No row at or after pos: the row strictly before it is the last one.
		return c.land(c.c.Get(nil, nil, mdbx.Last))
	}
	if err != nil {
		return nil, nil, fmt.Errorf("mdbxkv: prev: %w", err)
	}
	// SetRange landed on pos itself or on the first row past it; either way
	// one step back is the first row strictly less than pos.
	return c.land(c.c.Get(nil, nil, mdbx.Prev))
}

func (c *cursor) Current() ([]byte, []byte, error) {
	if !c.started {
		return nil, nil, nil
	}
	k, v, err := c.c.Get(c.pos, nil, mdbx.Set)
	if isNotFound(err) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("mdbxkv: current: %w", err)
	}
	return k, v, nil
}

func (c *cursor) Seek(seek []byte) ([]byte, []byte, error) {
	return c.land(c.c.Get(seek, nil, mdbx.SetRange))
}

func (c *cursor) SeekExact(key []byte) ([]byte, error) {
	c.started = true
	c.pos = append([]byte(nil), key...)
	_, v, err := c.c.Get(key, nil, mdbx.Set)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mdbxkv: seek exact: %w", err)
	}
	return v, nil
}

func (c *cursor) land(k, v []byte, err error) ([]byte, []byte, error) {
	c.started = true
	if isNotFound(err) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("mdbxkv: cursor: %w", err)
	}
	if k != nil {
		c.pos = k
	}
	return k, v, nil
}

func isNotFound(err error) bool { return err != nil && mdbx.IsNotFound(err) }

func (c *cursor) requireWritable() error {
	if !c.writable {
		return fmt.Errorf("mdbxkv: cursor is read-only")
	}
	return nil
}

func (c *cursor) Put(key, value []byte) error { return c.Upsert(key, value) }

func (c *cursor) Upsert(key, value []byte) error {
	if err := c.requireWritable(); err != nil {
		return err
	}
	if err := c.c.Put(key, value, 0); err != nil {
		return fmt.Errorf("mdbxkv: put: %w", err)
	}
	c.started = true
	c.pos = append([]byte(nil), key...)
	return nil
}

func (c *cursor) Delete(key []byte) error {
	if err := c.requireWritable(); err != nil {
		return err
	}
	if _, _, err := c.c.Get(key, nil, mdbx.Set); isNotFound(err) {
		return nil
	} else if err != nil {
		return fmt.Errorf("mdbxkv: delete seek: %w", err)
	}
	if err := c.c.Del(0); err != nil {
		return fmt.Errorf("mdbxkv: delete: %w", err)
	}
	return nil
}

func (c *cursor) DeleteCurrent() error {
	if err := c.requireWritable(); err != nil {
		return err
	}
	if !c.started {
		return fmt.Errorf("mdbxkv: DeleteCurrent on unpositioned cursor")
	}
	if _, _, err := c.c.Get(c.pos, nil, mdbx.Set); err != nil {
		return fmt.Errorf("mdbxkv: delete current seek: %w", err)
	}
	if err := c.c.Del(0); err != nil {
		return fmt.Errorf("mdbxkv: delete current: %w", err)
	}
	return nil
}
