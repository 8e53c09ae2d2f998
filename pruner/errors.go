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
	"errors"
	"fmt"

	"github.com/erigontech/erigon-prune/ethdb/prune"
)

// Kind classifies why a Run failed, for callers that want to branch on
// failure class rather than match on error strings.
type Kind int

const (
	// StorageError is any failure bubbled up from the KV store.
	StorageError Kind = iota
	// InconsistentData means a data-model invariant the pruner relies on
	// was violated, e.g. the block/transaction provider returned fewer
	// transactions than the requested range size.
	InconsistentData
	// ModeResolution is a failure resolving a part's configured Mode
	// against the current tip.
	ModeResolution
)

func (k Kind) String() string {
	switch k {
	case StorageError:
		return "storage"
	case InconsistentData:
		return "inconsistent_data"
	case ModeResolution:
		return "mode_resolution"
	default:
		return "unknown"
	}
}

// Error wraps a failure with the part it occurred in and a Kind, without
// discarding the underlying error.
type Error struct {
	Kind Kind
	Part prune.Part
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("prune %s (%s): %v", e.Part, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func newStorageErr(part prune.Part, err error) error {
	return &Error{Kind: StorageError, Part: part, Err: err}
}

func newInconsistentErr(part prune.Part, reason string) error {
	return &Error{Kind: InconsistentData, Part: part, Err: errors.New(reason)}
}

func newModeResolutionErr(part prune.Part, err error) error {
	return &Error{Kind: ModeResolution, Part: part, Err: err}
}
