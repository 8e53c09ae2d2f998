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

// Package historyv2 implements the legacy (pre-E3) sharded block-number
// index erigon keeps for AccountHistory/StorageHistory: see the doc comment
// on kv.E2AccountsHistory/kv.E2StorageHistory for the on-disk layout this
// package encodes and decodes.
package historyv2

import (
	"encoding/binary"

	"github.com/erigontech/erigon-lib/common"
)

// MaxBlockNumber is the sentinel suffix marking a shard as the logically
// last ("open") one for its key.
const MaxBlockNumber uint64 = ^uint64(0)

// ShardedKey is AccountHistory's key: an address plus the shard's upper
// bound (MaxBlockNumber for the open/last shard).
type ShardedKey struct {
	Key                common.Address
	HighestBlockNumber uint64
}

func (k ShardedKey) Encode() []byte {
	b := make([]byte, common.AddressLength+8)
	copy(b, k.Key[:])
	binary.BigEndian.PutUint64(b[common.AddressLength:], k.HighestBlockNumber)
	return b
}

func DecodeShardedKey(b []byte) ShardedKey {
	var k ShardedKey
	copy(k.Key[:], b[:common.AddressLength])
	k.HighestBlockNumber = binary.BigEndian.Uint64(b[common.AddressLength:])
	return k
}

// Last returns the sentinel key for the same logical key as k, i.e. the key
// identifying the open shard that new block numbers get appended to.
func (k ShardedKey) Last() ShardedKey {
	return ShardedKey{Key: k.Key, HighestBlockNumber: MaxBlockNumber}
}

// AccountKeyMatches reports whether two AccountHistory keys belong to the
// same logical key (same address), ignoring their shard boundary.
func AccountKeyMatches(a, b ShardedKey) bool { return a.Key == b.Key }

// StorageShardedKey is StorageHistory's key: an address, a storage slot, and
// the shard's upper bound.
type StorageShardedKey struct {
	Address    common.Address
	StorageKey common.Hash
	Highest    uint64
}

func (k StorageShardedKey) Encode() []byte {
	b := make([]byte, common.AddressLength+common.HashLength+8)
	copy(b, k.Address[:])
	copy(b[common.AddressLength:], k.StorageKey[:])
	binary.BigEndian.PutUint64(b[common.AddressLength+common.HashLength:], k.Highest)
	return b
}

func DecodeStorageShardedKey(b []byte) StorageShardedKey {
	var k StorageShardedKey
	copy(k.Address[:], b[:common.AddressLength])
	copy(k.StorageKey[:], b[common.AddressLength:common.AddressLength+common.HashLength])
	k.Highest = binary.BigEndian.Uint64(b[common.AddressLength+common.HashLength:])
	return k
}

// Last returns the sentinel key for the same logical (address, storage key)
// pair as k.
func (k StorageShardedKey) Last() StorageShardedKey {
	return StorageShardedKey{Address: k.Address, StorageKey: k.StorageKey, Highest: MaxBlockNumber}
}

// StorageKeyMatches reports whether two StorageHistory keys belong to the
// same logical key (same address + storage slot), ignoring their shard
// boundary.
func StorageKeyMatches(a, b StorageShardedKey) bool {
	return a.Address == b.Address && a.StorageKey == b.StorageKey
}
