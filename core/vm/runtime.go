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
	"github.com/probeum/evmcore/crypto"
)

// Context is the per-frame identity a Runtime seeds its Machine with:
// who called this frame (msg.sender), what address(this) resolves to, and
// what msg.value looks like from inside the running code. A DELEGATECALL
// reuses its parent's Context; every other call/create builds a fresh one.
type Context struct {
	Caller        common.Address
	Address       common.Address
	ApparentValue *uint256.Int
}

// Runtime bridges a host-agnostic Machine to a Handler: it drives Run in a
// loop, and every time the Machine suspends on a Trap it pops that
// opcode's stack arguments itself, asks the Handler to resolve them, and
// pushes the result back before resuming. This is the layer the core
// interpreter deliberately knows nothing about.
type Runtime struct {
	machine *Machine
	handler Handler
	context *Context
	cfg     *Config
}

// NewRuntime constructs a Runtime ready to execute code against data,
// under the given Context, charging through handler's Gasometer.
func NewRuntime(code, data []byte, context *Context, cfg *Config, handler Handler) *Runtime {
	return &Runtime{
		machine: NewMachine(code, data, cfg.StackLimit, ^uint64(0)),
		handler: handler,
		context: context,
		cfg:     cfg,
	}
}

// Machine exposes the underlying interpreter core, mainly so callers can
// read ReturnValue() after Execute halts.
func (rt *Runtime) Machine() *Machine { return rt.machine }

// ReturnValue copies out the RETURN/REVERT output of the finished frame.
func (rt *Runtime) ReturnValue() []byte { return rt.machine.ReturnValue() }

func (rt *Runtime) preValidate(op OpCode, stack *Stack) *ExitError {
	return rt.handler.PreValidate(rt.context, op, stack)
}

// Execute drives the Machine to completion, resolving every Trap against
// the Handler as it goes, and returns the frame's terminal ExitReason.
// Every normal return marks the frame resolved; if a trap resolution path
// panics instead, the deferred guard here forces the machine into
// ExitFatal(UnhandledInterrupt) while the panic unwinds, rather than
// leaving it looking suspended mid-trap, mirroring the Drop-based poisoning the original's
// ResolveCreate/ResolveCall guards perform in the Rust source.
func (rt *Runtime) Execute() (result ExitReason) {
	resolved := false
	defer func() {
		if !resolved {
			reason := FromFatal(ErrUnhandledInterrupt)
			rt.machine.Exit(reason)
			result = reason
		}
	}()

	for {
		_, capture := rt.machine.Run(^uint64(0), rt.preValidate)
		switch capture.Kind {
		case CaptureExit:
			resolved = true
			return capture.Exit
		case CaptureTrap:
			if err := rt.resolveTrap(capture.TrapOp); err != nil {
				reason := FromError(err)
				rt.machine.Exit(reason)
				resolved = true
				return reason
			}
			// loop: resume the machine for the next opcode
		}
	}
}

// Run is Execute's Capture-returning twin, used when a caller wants a
// bounded number of steps instead of running to completion (e.g. the
// executor's step-limited test harness). It resolves exactly as many
// traps as Run itself reports within the budget.
func (rt *Runtime) Run(maxSteps uint64) (uint64, Capture) {
	var total uint64
	for total < maxSteps {
		steps, capture := rt.machine.Run(maxSteps-total, rt.preValidate)
		total += steps
		if capture.Kind == CaptureExit {
			return total, capture
		}
		if err := rt.resolveTrap(capture.TrapOp); err != nil {
			reason := FromError(err)
			rt.machine.Exit(reason)
			return total, Capture{Kind: CaptureExit, Exit: reason}
		}
	}
	return total, Capture{Kind: CaptureExit, Exit: ExitStepLimitReached}
}

func (rt *Runtime) popWord() (*uint256.Int, *ExitError) { return rt.machine.stack.Pop() }

func (rt *Runtime) pushWord(v *uint256.Int) *ExitError { return rt.machine.stack.Push(v) }

// resolveTrap pops the stack arguments for op, asks the Handler to
// resolve the corresponding system behavior, and pushes the result back.
func (rt *Runtime) resolveTrap(op OpCode) *ExitError {
	switch {
	case op.IsLog():
		return rt.resolveLog(op)
	}

	switch op {
	case SHA3:
		return rt.resolveSha3()
	case ADDRESS:
		return rt.pushWord(AddressToWord(rt.context.Address))
	case BALANCE:
		return rt.resolveEnvAddress(func(a common.Address) *uint256.Int { return rt.handler.Basic(a).Balance })
	case ORIGIN:
		return rt.pushWord(AddressToWord(rt.handler.Origin()))
	case CALLER:
		return rt.pushWord(AddressToWord(rt.context.Caller))
	case CALLVALUE:
		return rt.pushWord(rt.context.ApparentValue.Clone())
	case GASPRICE:
		return rt.pushWord(rt.handler.GasPrice())
	case EXTCODESIZE:
		return rt.resolveEnvAddress(func(a common.Address) *uint256.Int { return uint256.NewInt(uint64(rt.handler.CodeSize(a))) })
	case EXTCODEHASH:
		return rt.resolveExtCodeHash()
	case EXTCODECOPY:
		return rt.resolveExtCodeCopy()
	case RETURNDATASIZE:
		return rt.pushWord(uint256.NewInt(uint64(rt.machine.ReturnValueLen())))
	case RETURNDATACOPY:
		return rt.resolveReturnDataCopy()
	case BLOCKHASH:
		return rt.resolveBlockHash()
	case COINBASE:
		return rt.pushWord(AddressToWord(rt.handler.BlockCoinbase()))
	case TIMESTAMP:
		return rt.pushWord(rt.handler.BlockTimestamp())
	case NUMBER:
		return rt.pushWord(rt.handler.BlockNumber())
	case DIFFICULTY:
		return rt.pushWord(rt.handler.BlockDifficulty())
	case GASLIMIT:
		return rt.pushWord(rt.handler.BlockGasLimit())
	case CHAINID:
		return rt.pushWord(rt.handler.ChainID())
	case SELFBALANCE:
		return rt.pushWord(rt.handler.Basic(rt.context.Address).Balance)
	case BASEFEE:
		return rt.pushWord(uint256.NewInt(0))
	case GAS:
		return rt.pushWord(uint256.NewInt(rt.handler.Gas()))
	case SLOAD:
		return rt.resolveSload()
	case SSTORE:
		return rt.resolveSstore()
	case SELFDESTRUCT:
		return rt.resolveSelfdestruct()
	case CREATE:
		return rt.resolveCreate(CreateLegacy)
	case CREATE2:
		return rt.resolveCreate(Create2)
	case CALL:
		return rt.resolveCall(true, false)
	case CALLCODE:
		return rt.resolveCall(true, true)
	case DELEGATECALL:
		return rt.resolveDelegateCall()
	case STATICCALL:
		return rt.resolveStaticCall()
	}
	return ErrOther("unimplemented trap opcode")
}

func (rt *Runtime) resolveEnvAddress(f func(common.Address) *uint256.Int) *ExitError {
	addrWord, err := rt.popWord()
	if err != nil {
		return err
	}
	return rt.pushWord(f(WordToAddress(addrWord)))
}

func (rt *Runtime) resolveSha3() *ExitError {
	offset, err := rt.popWord()
	if err != nil {
		return err
	}
	size, err := rt.popWord()
	if err != nil {
		return err
	}
	data, fatal := rt.machine.memory.Get(offset.Uint64(), size.Uint64())
	if fatal != nil {
		return ErrOther(fatal.Error())
	}
	return rt.pushWord(HashToWord(crypto.Keccak256Hash(data)))
}

func (rt *Runtime) resolveExtCodeHash() *ExitError {
	addrWord, err := rt.popWord()
	if err != nil {
		return err
	}
	addr := WordToAddress(addrWord)
	if !rt.handler.Exists(addr) {
		return rt.pushWord(uint256.NewInt(0))
	}
	return rt.pushWord(HashToWord(rt.handler.CodeHash(addr)))
}

func (rt *Runtime) resolveExtCodeCopy() *ExitError {
	addrWord, err := rt.popWord()
	if err != nil {
		return err
	}
	memOffset, err := rt.popWord()
	if err != nil {
		return err
	}
	dataOffset, err := rt.popWord()
	if err != nil {
		return err
	}
	length, err := rt.popWord()
	if err != nil {
		return err
	}
	code := rt.handler.Code(WordToAddress(addrWord))
	return copyIntoMemory(rt.machine, memOffset.Uint64(), dataOffset.Uint64(), length.Uint64(), code)
}

func (rt *Runtime) resolveReturnDataCopy() *ExitError {
	memOffset, err := rt.popWord()
	if err != nil {
		return err
	}
	dataOffset, err := rt.popWord()
	if err != nil {
		return err
	}
	length, err := rt.popWord()
	if err != nil {
		return err
	}
	data := rt.machine.ReturnValue()
	return copyIntoMemory(rt.machine, memOffset.Uint64(), dataOffset.Uint64(), length.Uint64(), data)
}

func copyIntoMemory(m *Machine, memOffset, dataOffset, length uint64, data []byte) *ExitError {
	if length == 0 {
		return nil
	}
	if err := m.memory.ResizeOffset(memOffset, length); err != nil {
		return err
	}
	if fatal := m.memory.CopyLarge(memOffset, dataOffset, length, data); fatal != nil {
		return ErrOther(fatal.Error())
	}
	return nil
}

func (rt *Runtime) resolveBlockHash() *ExitError {
	numWord, err := rt.popWord()
	if err != nil {
		return err
	}
	if !numWord.IsUint64() {
		return rt.pushWord(uint256.NewInt(0))
	}
	return rt.pushWord(HashToWord(rt.handler.BlockHash(numWord.Uint64())))
}

func (rt *Runtime) resolveSload() *ExitError {
	indexWord, err := rt.popWord()
	if err != nil {
		return err
	}
	value := rt.handler.Storage(rt.context.Address, WordToHash(indexWord))
	return rt.pushWord(HashToWord(value))
}

func (rt *Runtime) resolveSstore() *ExitError {
	indexWord, err := rt.popWord()
	if err != nil {
		return err
	}
	valueWord, err := rt.popWord()
	if err != nil {
		return err
	}
	return rt.handler.SetStorage(rt.context.Address, WordToHash(indexWord), WordToHash(valueWord))
}

func (rt *Runtime) resolveSelfdestruct() *ExitError {
	targetWord, err := rt.popWord()
	if err != nil {
		return err
	}
	target := WordToAddress(targetWord)
	if err := rt.handler.MarkDelete(rt.context.Address, target); err != nil {
		return err
	}
	rt.machine.Exit(ExitSuicided)
	return nil
}

func (rt *Runtime) resolveLog(op OpCode) *ExitError {
	offset, err := rt.popWord()
	if err != nil {
		return err
	}
	size, err := rt.popWord()
	if err != nil {
		return err
	}
	n := op.LogTopics()
	topics := make([]common.Hash, 0, n)
	for i := 0; i < n; i++ {
		w, err := rt.popWord()
		if err != nil {
			return err
		}
		topics = append(topics, WordToHash(w))
	}
	data, fatal := rt.machine.memory.Get(offset.Uint64(), size.Uint64())
	if fatal != nil {
		return ErrOther(fatal.Error())
	}
	return rt.handler.Log(Log{Address: rt.context.Address, Topics: topics, Data: append([]byte{}, data...)})
}

func (rt *Runtime) resolveCreate(scheme CreateScheme) *ExitError {
	value, err := rt.popWord()
	if err != nil {
		return err
	}
	offset, err := rt.popWord()
	if err != nil {
		return err
	}
	length, err := rt.popWord()
	if err != nil {
		return err
	}
	var salt common.Hash
	if scheme == Create2 {
		saltWord, err := rt.popWord()
		if err != nil {
			return err
		}
		salt = WordToHash(saltWord)
	}
	if length.IsZero() {
		return rt.pushCreateFailure()
	}
	initCode, fatal := rt.machine.memory.Get(offset.Uint64(), length.Uint64())
	if fatal != nil {
		return ErrOther(fatal.Error())
	}
	reason, address, _ := rt.handler.Create(rt.context.Address, scheme, value, initCode, salt, nil)
	if !reason.IsSucceed() {
		return rt.pushWord(uint256.NewInt(0))
	}
	return rt.pushWord(AddressToWord(address))
}

func (rt *Runtime) pushCreateFailure() *ExitError {
	return rt.pushWord(uint256.NewInt(0))
}

func (rt *Runtime) resolveCall(hasValue, isCallCode bool) *ExitError {
	gas, err := rt.popWord()
	if err != nil {
		return err
	}
	addrWord, err := rt.popWord()
	if err != nil {
		return err
	}
	target := WordToAddress(addrWord)
	value := uint256.NewInt(0)
	if hasValue {
		value, err = rt.popWord()
		if err != nil {
			return err
		}
	}
	argsOffset, err := rt.popWord()
	if err != nil {
		return err
	}
	argsLen, err := rt.popWord()
	if err != nil {
		return err
	}
	retOffset, err := rt.popWord()
	if err != nil {
		return err
	}
	retLen, err := rt.popWord()
	if err != nil {
		return err
	}

	input, fatal := rt.machine.memory.Get(argsOffset.Uint64(), argsLen.Uint64())
	if fatal != nil {
		return ErrOther(fatal.Error())
	}
	var gasPtr *uint64
	if gas.IsUint64() {
		g := gas.Uint64()
		gasPtr = &g
	}

	apparent := target
	transferTarget := target
	if isCallCode {
		apparent = rt.context.Address
		transferTarget = rt.context.Address
	}

	transfer := &Transfer{Source: rt.context.Address, Target: transferTarget, Value: value}
	reason, out := rt.handler.Call(target, transfer, input, gasPtr, false, CallContext{
		CodeAddress: target,
		Caller:      rt.context.Address,
		Apparent:    apparent,
	})
	return rt.finishCall(reason, out, retOffset.Uint64(), retLen.Uint64())
}

func (rt *Runtime) resolveDelegateCall() *ExitError {
	return rt.resolveNoValueCall(false, true)
}

func (rt *Runtime) resolveStaticCall() *ExitError {
	return rt.resolveNoValueCall(true, false)
}

// resolveNoValueCall implements DELEGATECALL and STATICCALL: neither pops
// a value argument, DELEGATECALL preserves the parent's caller/apparent
// address pair, and STATICCALL forces a read-only child frame.
func (rt *Runtime) resolveNoValueCall(static bool, isDelegate bool) *ExitError {
	gas, err := rt.popWord()
	if err != nil {
		return err
	}
	addrWord, err := rt.popWord()
	if err != nil {
		return err
	}
	target := WordToAddress(addrWord)
	argsOffset, err := rt.popWord()
	if err != nil {
		return err
	}
	argsLen, err := rt.popWord()
	if err != nil {
		return err
	}
	retOffset, err := rt.popWord()
	if err != nil {
		return err
	}
	retLen, err := rt.popWord()
	if err != nil {
		return err
	}

	input, fatal := rt.machine.memory.Get(argsOffset.Uint64(), argsLen.Uint64())
	if fatal != nil {
		return ErrOther(fatal.Error())
	}
	var gasPtr *uint64
	if gas.IsUint64() {
		g := gas.Uint64()
		gasPtr = &g
	}

	caller := rt.context.Address
	apparent := target
	if isDelegate {
		caller = rt.context.Caller
		apparent = rt.context.Address
	}

	reason, out := rt.handler.Call(target, nil, input, gasPtr, static, CallContext{
		CodeAddress: target,
		Caller:      caller,
		Apparent:    apparent,
	})
	return rt.finishCall(reason, out, retOffset.Uint64(), retLen.Uint64())
}

func (rt *Runtime) finishCall(reason ExitReason, out []byte, retOffset, retLen uint64) *ExitError {
	if retLen > 0 {
		copyLen := retLen
		if uint64(len(out)) < copyLen {
			copyLen = uint64(len(out))
		}
		if err := copyIntoMemory(rt.machine, retOffset, 0, copyLen, out); err != nil {
			return err
		}
	}
	if reason.IsSucceed() {
		return rt.pushWord(uint256.NewInt(1))
	}
	return rt.pushWord(uint256.NewInt(0))
}
