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

package memdb

import (
	"fmt"

	"github.com/google/btree"
)

// cursor walks a single table's btree in key order. It tracks a virtual
// position (pos) that is updated by every navigation call, including
// SeekExact when the sought key is absent, which is what lets the
// history-index pruner jump to a shard key that may or may not exist and
// have the following Next() land on the correct row regardless (see
// pruner/history_index.go, and the Open Question resolution in DESIGN.md).
type cursor struct {
	tree     *btree.BTree
	writable bool

	started bool
	pos     []byte
}

func (c *cursor) Close() {}

func (c *cursor) First() ([]byte, []byte, error) {
	var found *item
	c.tree.Ascend(func(i btree.Item) bool {
		it := i.(item)
		found = &it
		return false
	})
	return c.land(found)
}

func (c *cursor) Last() ([]byte, []byte, error) {
	var found *item
	c.tree.Descend(func(i btree.Item) bool {
		it := i.(item)
		found = &it
		return false
	})
	return c.land(found)
}

func (c *cursor) Next() ([]byte, []byte, error) {
	if !c.started {
		return c.First()
	}
	var found *item
	c.tree.AscendGreaterOrEqual(item{key: c.pos}, func(i btree.Item) bool {
		it := i.(item)
		if string(it.key) == string(c.pos) {
			return true // skip the row at pos itself, keep looking
		}
		found = &it
		return false
	})
	return c.land(found)
}

func (c *cursor) Prev() ([]byte, []byte, error) {
	if !c.started {
		return c.Last()
	}
	var found *item
	c.tree.DescendLessOrEqual(item{key: c.pos}, func(i btree.Item) bool {
		it := i.(item)
		if string(it.key) == string(c.pos) {
			return true
		}
		found = &it
		return false
	})
	return c.land(found)
}

func (c *cursor) Current() ([]byte, []byte, error) {
	if !c.started {
		return nil, nil, nil
	}
	found := c.tree.Get(item{key: c.pos})
	if found == nil {
		return nil, nil, nil
	}
	it := found.(item)
	return it.key, it.value, nil
}

func (c *cursor) Seek(seek []byte) ([]byte, []byte, error) {
	var found *item
	c.tree.AscendGreaterOrEqual(item{key: seek}, func(i btree.Item) bool {
		it := i.(item)
		found = &it
		return false
	})
	return c.land(found)
}

func (c *cursor) SeekExact(key []byte) ([]byte, error) {
	c.started = true
	c.pos = append([]byte(nil), key...)
	found := c.tree.Get(item{key: key})
	if found == nil {
		return nil, nil
	}
	return found.(item).value, nil
}

func (c *cursor) land(found *item) ([]byte, []byte, error) {
	if found == nil {
		c.started = true
		return nil, nil, nil
	}
	c.started = true
	c.pos = found.key
	return found.key, found.value, nil
}

func (c *cursor) requireWritable() error {
	if !c.writable {
		return fmt.Errorf("memdb: cursor is read-only")
	}
	return nil
}

func (c *cursor) Put(key, value []byte) error {
	return c.Upsert(key, value)
}

func (c *cursor) Upsert(key, value []byte) error {
	if err := c.requireWritable(); err != nil {
		return err
	}
	k := append([]byte(nil), key...)
	c.tree.ReplaceOrInsert(item{key: k, value: append([]byte(nil), value...)})
	c.started = true
	c.pos = k
	return nil
}

func (c *cursor) Delete(key []byte) error {
	if err := c.requireWritable(); err != nil {
		return err
	}
	c.tree.Delete(item{key: key})
	return nil
}

func (c *cursor) DeleteCurrent() error {
	if err := c.requireWritable(); err != nil {
		return err
	}
	if !c.started {
		return fmt.Errorf("memdb: DeleteCurrent on unpositioned cursor")
	}
	c.tree.Delete(item{key: c.pos})
	return nil
}
