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

// Package prune holds the fixed enumeration of prune parts, the mode that
// tells each part how far back to prune, and per-part checkpoints.
package prune

// Part names a category of historical data the pruner reclaims as a unit.
type Part string

const (
	Receipts          Part = "Receipts"
	TransactionLookup Part = "TransactionLookup"
	SenderRecovery    Part = "SenderRecovery"
	AccountHistory    Part = "AccountHistory"
	StorageHistory    Part = "StorageHistory"
)

// Order is the fixed execution order a run visits parts in: deterministic
// for testing, and because later parts may be more expensive than earlier
// ones. There is no cross-part data dependency.
var Order = []Part{Receipts, TransactionLookup, SenderRecovery, AccountHistory, StorageHistory}
