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

// minimalHandler is a zero-value-returning Handler a test fake can embed to
// pick up a full interface implementation, overriding only the methods its
// scenario cares about.
type minimalHandler struct{}

func (minimalHandler) GasPrice() *uint256.Int          { return uint256.NewInt(0) }
func (minimalHandler) Origin() common.Address          { return common.Address{} }
func (minimalHandler) BlockHash(uint64) common.Hash    { return common.Hash{} }
func (minimalHandler) BlockNumber() *uint256.Int       { return uint256.NewInt(0) }
func (minimalHandler) BlockCoinbase() common.Address   { return common.Address{} }
func (minimalHandler) BlockTimestamp() *uint256.Int    { return uint256.NewInt(0) }
func (minimalHandler) BlockDifficulty() *uint256.Int   { return uint256.NewInt(0) }
func (minimalHandler) BlockGasLimit() *uint256.Int     { return uint256.NewInt(0) }
func (minimalHandler) ChainID() *uint256.Int           { return uint256.NewInt(0) }
func (minimalHandler) CodeHash(common.Address) common.Hash { return common.Hash{} }

func (minimalHandler) Exists(common.Address) bool { return false }
func (minimalHandler) Basic(common.Address) Basic { return Basic{Balance: uint256.NewInt(0)} }
func (minimalHandler) CodeSize(common.Address) int { return 0 }
func (minimalHandler) Code(common.Address) []byte  { return nil }
func (minimalHandler) Storage(common.Address, common.Hash) common.Hash         { return common.Hash{} }
func (minimalHandler) OriginalStorage(common.Address, common.Hash) common.Hash { return common.Hash{} }

func (minimalHandler) IsStatic() bool { return false }
func (minimalHandler) Depth() int     { return 0 }
func (minimalHandler) Gas() uint64    { return 0 }

func (minimalHandler) Deleted(common.Address) bool                         { return false }
func (minimalHandler) MarkDelete(common.Address, common.Address) *ExitError { return nil }

func (minimalHandler) SetStorage(common.Address, common.Hash, common.Hash) *ExitError { return nil }
func (minimalHandler) Log(Log) *ExitError                                             { return nil }

func (minimalHandler) Create(common.Address, CreateScheme, *uint256.Int, []byte, common.Hash, *uint64) (ExitReason, common.Address, []byte) {
	return ExitReverted, common.Address{}, nil
}
func (minimalHandler) Call(common.Address, *Transfer, []byte, *uint64, bool, CallContext) (ExitReason, []byte) {
	return ExitReverted, nil
}

func (minimalHandler) PreValidate(*Context, OpCode, *Stack) *ExitError { return nil }
