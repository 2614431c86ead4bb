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
	"github.com/probeum/evmcore/params"
)

var staticCostTable = buildStaticCostTable()

func buildStaticCostTable() map[OpCode]uint64 {
	t := map[OpCode]uint64{
		STOP: params.GasZero, CALLDATASIZE: params.GasBase, CODESIZE: params.GasBase,
		POP: params.GasBase, GETPC: params.GasBase, MSIZE: params.GasBase,
		ADDRESS: params.GasBase, ORIGIN: params.GasBase, CALLER: params.GasBase,
		CALLVALUE: params.GasBase, COINBASE: params.GasBase, TIMESTAMP: params.GasBase,
		NUMBER: params.GasBase, DIFFICULTY: params.GasBase, GASLIMIT: params.GasBase,
		GASPRICE: params.GasBase, GAS: params.GasBase,

		ADD: params.GasVeryLow, SUB: params.GasVeryLow, NOT: params.GasVeryLow,
		LT: params.GasVeryLow, GT: params.GasVeryLow, SLT: params.GasVeryLow,
		SGT: params.GasVeryLow, EQ: params.GasVeryLow, ISZERO: params.GasVeryLow,
		AND: params.GasVeryLow, OR: params.GasVeryLow, XOR: params.GasVeryLow,
		BYTE: params.GasVeryLow, CALLDATALOAD: params.GasVeryLow,

		MUL: params.GasLow, DIV: params.GasLow, SDIV: params.GasLow,
		MOD: params.GasLow, SMOD: params.GasLow, SIGNEXTEND: params.GasLow,

		ADDMOD: params.GasMid, MULMOD: params.GasMid, JUMP: params.GasMid,

		JUMPI:    params.GasHigh,
		JUMPDEST: params.GasJumpdest,
	}
	for op := PUSH1; op <= PUSH32; op++ {
		t[op] = params.GasVeryLow
	}
	for op := DUP1; op <= DUP16; op++ {
		t[op] = params.GasVeryLow
	}
	for op := SWAP1; op <= SWAP16; op++ {
		t[op] = params.GasVeryLow
	}
	return t
}

// StaticOpcodeCost returns the opcode's fixed price, if it has one.
// Opcodes whose cost depends on operands or host state (CALL, SSTORE,
// SHA3, LOG*, ...) are absent and must go through DynamicOpcodeCost.
func StaticOpcodeCost(op OpCode) (uint64, bool) {
	c, ok := staticCostTable[op]
	return c, ok
}

// DynamicOpcodeCost resolves the operand- and host-state-dependent price
// of an opcode whose cost StaticOpcodeCost cannot answer, peeking (never
// popping) whatever stack arguments and host queries it needs.
func DynamicOpcodeCost(address common.Address, op OpCode, stack *Stack, isStatic bool, cfg *Config, handler Handler) (GasCost, *MemoryCost, *ExitError) {
	peek := func(n int) *uint256.Int {
		v, err := stack.Peek(n)
		if err != nil {
			return uint256.NewInt(0)
		}
		return v
	}

	var gc GasCost
	switch op {
	case RETURN:
		gc = GasCost{Kind: GasCostZero}
	case MLOAD, MSTORE, MSTORE8:
		gc = GasCost{Kind: GasCostVeryLow}
	case REVERT:
		if cfg.HasRevert {
			gc = GasCost{Kind: GasCostZero}
		} else {
			gc = GasCost{Kind: GasCostInvalid}
		}
	case CHAINID:
		if cfg.HasChainID {
			gc = GasCost{Kind: GasCostBase}
		} else {
			gc = GasCost{Kind: GasCostInvalid}
		}
	case SHL, SHR, SAR:
		if cfg.HasBitwiseShifting {
			gc = GasCost{Kind: GasCostVeryLow}
		} else {
			gc = GasCost{Kind: GasCostInvalid}
		}
	case SELFBALANCE:
		if cfg.HasSelfBalance {
			gc = GasCost{Kind: GasCostLow}
		} else {
			gc = GasCost{Kind: GasCostInvalid}
		}
	case EXTCODESIZE:
		gc = GasCost{Kind: GasCostExtCodeSize}
	case BALANCE:
		gc = GasCost{Kind: GasCostBalance}
	case BLOCKHASH:
		gc = GasCost{Kind: GasCostBlockHash}
	case EXTCODEHASH:
		if cfg.HasExtCodeHash {
			gc = GasCost{Kind: GasCostExtCodeHash}
		} else {
			gc = GasCost{Kind: GasCostInvalid}
		}
	case CALLCODE:
		target := WordToAddress(peek(1))
		gc = GasCost{Kind: GasCostCallCode, Value: peek(2), Gas: peek(0), TargetExists: handler.Exists(target)}
	case STATICCALL:
		target := WordToAddress(peek(1))
		gc = GasCost{Kind: GasCostStaticCall, Gas: peek(0), TargetExists: handler.Exists(target)}
	case SHA3:
		gc = GasCost{Kind: GasCostSha3, Len: peek(1)}
	case EXTCODECOPY:
		gc = GasCost{Kind: GasCostExtCodeCopy, Len: peek(3)}
	case CALLDATACOPY, CODECOPY:
		gc = GasCost{Kind: GasCostVeryLowCopy, Len: peek(2)}
	case EXP:
		gc = GasCost{Kind: GasCostExp, Power: peek(1)}
	case SLOAD:
		gc = GasCost{Kind: GasCostSLoad}
	case DELEGATECALL:
		if cfg.HasDelegateCall {
			target := WordToAddress(peek(1))
			gc = GasCost{Kind: GasCostDelegateCall, Gas: peek(0), TargetExists: handler.Exists(target)}
		} else {
			gc = GasCost{Kind: GasCostInvalid}
		}
	case RETURNDATASIZE:
		if cfg.HasReturnData {
			gc = GasCost{Kind: GasCostBase}
		} else {
			gc = GasCost{Kind: GasCostInvalid}
		}
	case RETURNDATACOPY:
		if cfg.HasReturnData {
			gc = GasCost{Kind: GasCostVeryLowCopy, Len: peek(2)}
		} else {
			gc = GasCost{Kind: GasCostInvalid}
		}
	case SSTORE:
		if isStatic {
			return GasCost{}, nil, ErrOther("static call SSTORE")
		}
		index := WordToHash(peek(0))
		value := WordToHash(peek(1))
		gc = GasCost{Kind: GasCostSStore, Original: handler.OriginalStorage(address, index), Current: handler.Storage(address, index), New: value}
	case CREATE:
		if isStatic {
			return GasCost{}, nil, ErrOther("static call CREATE")
		}
		gc = GasCost{Kind: GasCostCreate}
	case CREATE2:
		if isStatic {
			return GasCost{}, nil, ErrOther("static call CREATE2")
		}
		if !cfg.HasCreate2 {
			gc = GasCost{Kind: GasCostInvalid}
		} else {
			gc = GasCost{Kind: GasCostCreate2, Len: peek(2)}
		}
	case SELFDESTRUCT:
		if isStatic {
			return GasCost{}, nil, ErrOther("static call SELFDESTRUCT")
		}
		target := WordToAddress(peek(0))
		gc = GasCost{Kind: GasCostSuicide, Value: handler.Basic(address).Balance, TargetExists: handler.Exists(target), AlreadyRemoved: handler.Deleted(address)}
	case CALL:
		value := peek(2)
		if isStatic && !value.IsZero() {
			return GasCost{}, nil, ErrOther("static call CALL with value")
		}
		target := WordToAddress(peek(1))
		gc = GasCost{Kind: GasCostCall, Value: value, Gas: peek(0), TargetExists: handler.Exists(target)}
	default:
		if op.IsLog() {
			if isStatic {
				return GasCost{}, nil, ErrOther("static call LOG")
			}
			gc = GasCost{Kind: GasCostLog, LogTopics: uint8(op.LogTopics()), Len: peek(1)}
		} else {
			gc = GasCost{Kind: GasCostInvalid}
		}
	}

	memCost := dynamicMemoryCost(op, stack)
	return gc, memCost, nil
}

func thirtyTwo() *uint256.Int { return uint256.NewInt(32) }
func one() *uint256.Int       { return uint256.NewInt(1) }

func dynamicMemoryCost(op OpCode, stack *Stack) *MemoryCost {
	peek := func(n int) *uint256.Int {
		v, err := stack.Peek(n)
		if err != nil {
			return uint256.NewInt(0)
		}
		return v
	}

	switch op {
	case SHA3, RETURN, REVERT:
		return &MemoryCost{Offset: peek(0), Len: peek(1)}
	default:
		if op.IsLog() {
			return &MemoryCost{Offset: peek(0), Len: peek(1)}
		}
	}

	switch op {
	case CODECOPY, CALLDATACOPY, RETURNDATACOPY:
		return &MemoryCost{Offset: peek(0), Len: peek(2)}
	case EXTCODECOPY:
		return &MemoryCost{Offset: peek(1), Len: peek(3)}
	case MLOAD, MSTORE:
		return &MemoryCost{Offset: peek(0), Len: thirtyTwo()}
	case MSTORE8:
		return &MemoryCost{Offset: peek(0), Len: one()}
	case CREATE, CREATE2:
		return &MemoryCost{Offset: peek(1), Len: peek(2)}
	case CALL, CALLCODE:
		first := MemoryCost{Offset: peek(3), Len: peek(4)}
		second := MemoryCost{Offset: peek(5), Len: peek(6)}
		joined := first.Join(second)
		return &joined
	case DELEGATECALL, STATICCALL:
		first := MemoryCost{Offset: peek(2), Len: peek(3)}
		second := MemoryCost{Offset: peek(4), Len: peek(5)}
		joined := first.Join(second)
		return &joined
	}
	return nil
}
