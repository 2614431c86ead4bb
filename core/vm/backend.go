// Copyright 2015 The go-probeum Authors
// This file is part of the go-probeum library.
//
// The go-probeum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-probeum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-probeum library. If not, see <http://www.gnu.org/licenses/>.

package vm

import (
	"github.com/holiman/uint256"

	"github.com/probeum/evmcore/common"
)

// Basic is the minimal account state the executor reads from and writes
// back to a Backend: balance and nonce. Code and storage are addressed
// separately since they are typically large or iterated.
type Basic struct {
	Balance *uint256.Int
	Nonce   uint64
}

// Log is a single LOGn record emitted by a call frame.
type Log struct {
	Address common.Address
	Topics  []common.Hash
	Data    []byte
}

// Backend is the read-only view of world state the executor speculates
// over. It never mutates state directly; the executor accumulates a
// Substate overlay and, at the end of a successful outermost transaction,
// emits an []Apply describing the net effect for an ApplyBackend to commit.
type Backend interface {
	GasPrice() *uint256.Int
	Origin() common.Address
	BlockHash(number uint64) common.Hash
	BlockNumber() *uint256.Int
	BlockCoinbase() common.Address
	BlockTimestamp() *uint256.Int
	BlockDifficulty() *uint256.Int
	BlockGasLimit() *uint256.Int
	ChainID() *uint256.Int

	Exists(address common.Address) bool
	Basic(address common.Address) Basic
	CodeHash(address common.Address) common.Hash
	CodeSize(address common.Address) int
	Code(address common.Address) []byte
	Storage(address common.Address, index common.Hash) common.Hash
	OriginalStorage(address common.Address, index common.Hash) common.Hash
}

// Apply describes one net effect of a completed, committed transaction:
// either an account create/modify (with an optional storage reset and an
// optional full storage set) or an account deletion.
type Apply struct {
	Delete bool

	Address      common.Address
	Basic        Basic
	Code         []byte
	CodeChanged  bool
	Storage      map[common.Hash]common.Hash
	ResetStorage bool
}

// ApplyBackend is a Backend that can commit a batch of Apply records and
// logs produced by a completed transaction.
type ApplyBackend interface {
	Backend
	Apply(values []Apply, logs []Log, deleteEmpty bool)
}
