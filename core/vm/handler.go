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

// CreateScheme selects how CREATE derives the new contract's address.
type CreateScheme int

const (
	CreateLegacy CreateScheme = iota
	CreateFixed
	Create2
)

// Transfer describes a value movement accompanying a CALL-family trap.
type Transfer struct {
	Source      common.Address
	Target      common.Address
	Value       *uint256.Int
}

// Handler is everything the interpreter needs from its host to resolve
// system opcodes (SLOAD/SSTORE/BALANCE/EXTCODE*/LOG/SELFDESTRUCT and the
// gas-pricing questions dynamic costs depend on) without holding a pointer
// back to the executor. A Runtime is handed one when it is constructed
// (NewRuntime); nothing on Machine itself is host-aware.
type Handler interface {
	Backend

	IsStatic() bool
	Depth() int
	Gas() uint64

	Deleted(address common.Address) bool
	MarkDelete(address common.Address, target common.Address) *ExitError

	SetStorage(address common.Address, index, value common.Hash) *ExitError
	Log(log Log) *ExitError

	// Create and Call resolve the nested frame synchronously (the
	// Substate spawn/merge happens inside the executor's implementation)
	// and return the child frame's result in the same shape the
	// interpreter would have gotten from a direct call.
	Create(caller common.Address, scheme CreateScheme, value *uint256.Int, initCode []byte, salt common.Hash, targetGas *uint64) (ExitReason, common.Address, []byte)
	Call(codeAddress common.Address, transfer *Transfer, input []byte, targetGas *uint64, isStatic bool, context CallContext) (ExitReason, []byte)

	PreValidate(context *Context, opcode OpCode, stack *Stack) *ExitError
}

// CallContext carries the three addresses a CALL-family opcode needs that
// differ from the frame's own Context: which address's code to run,
// who appears as msg.sender inside it, and what appears as address(this).
type CallContext struct {
	CodeAddress common.Address
	Caller      common.Address
	Apparent    common.Address
}
