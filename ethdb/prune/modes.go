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

package prune

import "fmt"

// Modes is the configuration surface: one Mode per part.
type Modes struct {
	Receipts          Mode
	TransactionLookup Mode
	SenderRecovery    Mode
	AccountHistory    Mode
	StorageHistory    Mode
}

// DefaultModes disables pruning for every part.
func DefaultModes() Modes {
	return Modes{
		Receipts:          Disabled(),
		TransactionLookup: Disabled(),
		SenderRecovery:    Disabled(),
		AccountHistory:    Disabled(),
		StorageHistory:    Disabled(),
	}
}

func (m Modes) modeFor(part Part) (Mode, error) {
	switch part {
	case Receipts:
		return m.Receipts, nil
	case TransactionLookup:
		return m.TransactionLookup, nil
	case SenderRecovery:
		return m.SenderRecovery, nil
	case AccountHistory:
		return m.AccountHistory, nil
	case StorageHistory:
		return m.StorageHistory, nil
	default:
		return Mode{}, fmt.Errorf("prune: unknown part %q", part)
	}
}

// Target resolves part's configured mode against tip. ok is false when the
// part is disabled or not yet prunable at this tip: the caller (the run
// orchestrator) skips the part for this run rather than treating it as an
// error.
func (m Modes) Target(part Part, tip uint64) (toBlock uint64, mode Mode, ok bool, err error) {
	mode, err = m.modeFor(part)
	if err != nil {
		return 0, Mode{}, false, err
	}
	toBlock, ok = mode.Target(tip)
	return toBlock, mode, ok, nil
}
