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
	mapset "github.com/deckarep/golang-set"
	"github.com/holiman/uint256"

	"github.com/probeum/evmcore/common"
	"github.com/probeum/evmcore/crypto"
	"github.com/probeum/evmcore/log"
	"github.com/probeum/evmcore/rlp"
)

// StackAccount is the executor's speculative view of one account: the
// overlay it reads and writes instead of going straight to the Backend,
// so that a reverted call frame can simply be discarded instead of undone.
type StackAccount struct {
	Basic        Basic
	Code         []byte
	CodeKnown    bool
	Storage      map[common.Hash]common.Hash
	ResetStorage bool
}

// l64 applies the EIP-150 "63/64ths" rule: a call may forward at most
// gas - gas/64 of the caller's remaining gas to the callee.
func l64(gas uint64) uint64 {
	return gas - gas/64
}

func minU64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

// StackExecutor is the stack-based, speculative-overlay implementation of
// Handler: it owns a Gasometer for the current frame, a state overlay atop
// a read-only Backend, and spawns child StackExecutors ("substates") for
// nested CALL/CREATE frames, three-way merging their outcome back in.
type StackExecutor struct {
	backend Backend
	cfg     *Config

	gasometer *Gasometer

	state   map[common.Address]*StackAccount
	deleted mapset.Set

	logs []Log

	precompiles map[common.Address]PrecompileFunc

	isStatic bool
	depth    int
	hasDepth bool
}

// PrecompileFunc is a built-in contract: given input and an available gas
// budget it returns (exit reason, output, gas used), or ok=false if the
// address isn't actually a precompile.
type PrecompileFunc func(input []byte, targetGas uint64) (reason ExitReason, output []byte, gasUsed uint64, ok bool)

// NewStackExecutor creates a top-level executor (depth unset, not static).
func NewStackExecutor(backend Backend, gasLimit uint64, cfg *Config, precompiles map[common.Address]PrecompileFunc) *StackExecutor {
	return &StackExecutor{
		backend:     backend,
		cfg:         cfg,
		gasometer:   NewGasometer(gasLimit, cfg),
		state:       make(map[common.Address]*StackAccount),
		deleted:     mapset.NewSet(),
		precompiles: precompiles,
	}
}

// substate spawns a child executor sharing this executor's overlay (by
// value copy of the maps' contents at call sites that matter — Go maps
// passed by reference would alias the parent unintentionally, so merges
// are explicit instead of copy-on-write) for a nested call/create frame.
func (e *StackExecutor) substate(gasLimit uint64, isStatic bool) *StackExecutor {
	state := make(map[common.Address]*StackAccount, len(e.state))
	for addr, acc := range e.state {
		cp := *acc
		cp.Storage = make(map[common.Hash]common.Hash, len(acc.Storage))
		for k, v := range acc.Storage {
			cp.Storage[k] = v
		}
		state[addr] = &cp
	}
	depth := 0
	if e.hasDepth {
		depth = e.depth + 1
	}
	return &StackExecutor{
		backend:     e.backend,
		cfg:         e.cfg,
		gasometer:   NewGasometer(gasLimit, e.cfg),
		state:       state,
		deleted:     e.deleted.Clone(),
		precompiles: e.precompiles,
		isStatic:    isStatic || e.isStatic,
		depth:       depth,
		hasDepth:    true,
	}
}

// mergeSucceed absorbs a successful child frame's effects: its full state
// overlay replaces the parent's, its logs and deletions append, and its
// leftover gas and refund are credited back to the parent.
func (e *StackExecutor) mergeSucceed(sub *StackExecutor) *ExitError {
	e.logs = append(e.logs, sub.logs...)
	sub.deleted.Each(func(item interface{}) bool {
		e.deleted.Add(item)
		return false
	})
	e.state = sub.state
	if err := e.gasometer.RecordStipend(sub.gasometer.Gas()); err != nil {
		return err
	}
	return e.gasometer.RecordRefund(sub.gasometer.RefundedGas())
}

// mergeRevert absorbs a reverted child frame: state changes are discarded,
// but logs already emitted and any leftover gas are still credited back —
// REVERT unwinds storage and balance, not gas accounting or logs incurred
// before the revert.
func (e *StackExecutor) mergeRevert(sub *StackExecutor) *ExitError {
	e.logs = append(e.logs, sub.logs...)
	return e.gasometer.RecordStipend(sub.gasometer.Gas())
}

// mergeFail absorbs a frame that errored out: only its logs survive.
func (e *StackExecutor) mergeFail(sub *StackExecutor) *ExitError {
	e.logs = append(e.logs, sub.logs...)
	return nil
}

// accountMut returns the overlay entry for address, lazily seeding it from
// the Backend the first time it's touched by this executor.
func (e *StackExecutor) accountMut(address common.Address) *StackAccount {
	if acc, ok := e.state[address]; ok {
		return acc
	}
	acc := &StackAccount{
		Basic:   e.backend.Basic(address),
		Storage: make(map[common.Hash]common.Hash),
	}
	e.state[address] = acc
	return acc
}

// Nonce returns address's current nonce, overlay value taking precedence.
func (e *StackExecutor) Nonce(address common.Address) uint64 {
	if acc, ok := e.state[address]; ok {
		return acc.Basic.Nonce
	}
	return e.backend.Basic(address).Nonce
}

// Withdraw debits balance from address's overlay entry.
func (e *StackExecutor) Withdraw(address common.Address, amount *uint256.Int) *ExitError {
	acc := e.accountMut(address)
	if acc.Basic.Balance.Lt(amount) {
		return ErrOutOfFund
	}
	acc.Basic.Balance = new(uint256.Int).Sub(acc.Basic.Balance, amount)
	return nil
}

// Deposit credits balance to address's overlay entry.
func (e *StackExecutor) Deposit(address common.Address, amount *uint256.Int) {
	acc := e.accountMut(address)
	acc.Basic.Balance = new(uint256.Int).Add(acc.Basic.Balance, amount)
}

// Transfer moves value between two overlay accounts atomically: a failed
// withdraw never credits the target.
func (e *StackExecutor) Transfer(t *Transfer) *ExitError {
	if t.Value == nil || t.Value.IsZero() {
		return nil
	}
	if err := e.Withdraw(t.Source, t.Value); err != nil {
		return err
	}
	e.Deposit(t.Target, t.Value)
	return nil
}

// CreateAddress derives the address a CREATE-family opcode will deploy to.
func (e *StackExecutor) CreateAddress(scheme CreateScheme, caller common.Address, nonce uint64, salt common.Hash, codeHash common.Hash) common.Address {
	switch scheme {
	case Create2:
		buf := make([]byte, 0, 1+20+32+32)
		buf = append(buf, 0xff)
		buf = append(buf, caller[:]...)
		buf = append(buf, salt[:]...)
		buf = append(buf, codeHash[:]...)
		return common.BytesToAddress(crypto.Keccak256(buf)[12:])
	case CreateFixed:
		return caller
	default: // CreateLegacy
		enc := rlp.EncodeAddressNonce(caller[:], nonce)
		return common.BytesToAddress(crypto.Keccak256(enc)[12:])
	}
}

// ---- Handler: Backend passthrough ----

func (e *StackExecutor) GasPrice() *uint256.Int            { return e.backend.GasPrice() }
func (e *StackExecutor) Origin() common.Address            { return e.backend.Origin() }
func (e *StackExecutor) BlockHash(n uint64) common.Hash    { return e.backend.BlockHash(n) }
func (e *StackExecutor) BlockNumber() *uint256.Int         { return e.backend.BlockNumber() }
func (e *StackExecutor) BlockCoinbase() common.Address     { return e.backend.BlockCoinbase() }
func (e *StackExecutor) BlockTimestamp() *uint256.Int      { return e.backend.BlockTimestamp() }
func (e *StackExecutor) BlockDifficulty() *uint256.Int     { return e.backend.BlockDifficulty() }
func (e *StackExecutor) BlockGasLimit() *uint256.Int       { return e.backend.BlockGasLimit() }
func (e *StackExecutor) ChainID() *uint256.Int             { return e.backend.ChainID() }
func (e *StackExecutor) CodeHash(a common.Address) common.Hash { return e.backend.CodeHash(a) }

func (e *StackExecutor) Exists(address common.Address) bool {
	if _, ok := e.state[address]; ok {
		return true
	}
	return e.backend.Exists(address)
}

func (e *StackExecutor) Basic(address common.Address) Basic {
	if acc, ok := e.state[address]; ok {
		return acc.Basic
	}
	return e.backend.Basic(address)
}

func (e *StackExecutor) CodeSize(address common.Address) int {
	if acc, ok := e.state[address]; ok && acc.CodeKnown {
		return len(acc.Code)
	}
	return e.backend.CodeSize(address)
}

func (e *StackExecutor) Code(address common.Address) []byte {
	if acc, ok := e.state[address]; ok && acc.CodeKnown {
		return acc.Code
	}
	return e.backend.Code(address)
}

func (e *StackExecutor) Storage(address common.Address, index common.Hash) common.Hash {
	if acc, ok := e.state[address]; ok {
		if v, ok := acc.Storage[index]; ok {
			return v
		}
		if acc.ResetStorage {
			return common.Hash{}
		}
	}
	return e.backend.Storage(address, index)
}

func (e *StackExecutor) OriginalStorage(address common.Address, index common.Hash) common.Hash {
	return e.backend.OriginalStorage(address, index)
}

// ---- Handler: executor-owned state ----

// IsStatic reports whether this frame runs under a STATICCALL ancestor.
func (e *StackExecutor) IsStatic() bool { return e.isStatic }

// Depth returns this frame's call-stack depth (0 for the outermost frame).
func (e *StackExecutor) Depth() int { return e.depth }

// Gas returns the gas remaining in this frame, for the GAS opcode.
func (e *StackExecutor) Gas() uint64 { return e.gasometer.Gas() }

// Deleted reports whether address has been marked for deletion by
// SELFDESTRUCT in this executor or a merged-in child.
func (e *StackExecutor) Deleted(address common.Address) bool {
	return e.deleted.Contains(address)
}

// MarkDelete executes SELFDESTRUCT's account-level effect: the caller's
// balance moves to target and address is queued for deletion at commit.
func (e *StackExecutor) MarkDelete(address common.Address, target common.Address) *ExitError {
	balance := e.Basic(address).Balance
	e.Deposit(target, balance)
	e.accountMut(address).Basic.Balance = new(uint256.Int)
	e.deleted.Add(address)
	return nil
}

// SetStorage executes SSTORE's account-level effect against the overlay.
func (e *StackExecutor) SetStorage(address common.Address, index, value common.Hash) *ExitError {
	acc := e.accountMut(address)
	acc.Storage[index] = value
	return nil
}

// Log appends a LOGn record to this frame's pending log list.
func (e *StackExecutor) Log(l Log) *ExitError {
	e.logs = append(e.logs, l)
	return nil
}

// PreValidate charges gas for one opcode before it executes: static-cost
// opcodes go through the fixed table, everything else falls through to
// DynamicOpcodeCost against this frame's overlay and Gasometer.
func (e *StackExecutor) PreValidate(context *Context, opcode OpCode, stack *Stack) *ExitError {
	if cost, ok := StaticOpcodeCost(opcode); ok {
		return e.gasometer.RecordCost(cost)
	}
	gc, mem, err := DynamicOpcodeCost(context.Address, opcode, stack, e.isStatic, e.cfg, e)
	if err != nil {
		return err
	}
	return e.gasometer.RecordDynamicCost(gc, mem)
}

// Create resolves a CREATE/CREATE2/fixed-scheme creation synchronously,
// including depth and balance checks, address collision detection, nested
// execution, and the three-way substate merge.
func (e *StackExecutor) Create(caller common.Address, scheme CreateScheme, value *uint256.Int, initCode []byte, salt common.Hash, targetGas *uint64) (ExitReason, common.Address, []byte) {
	reason, addr, out := e.createInner(caller, scheme, value, initCode, salt, targetGas, true)
	return reason, addr, out
}

func (e *StackExecutor) createInner(caller common.Address, scheme CreateScheme, value *uint256.Int, initCode []byte, salt common.Hash, targetGas *uint64, takeL64 bool) (ExitReason, common.Address, []byte) {
	if e.hasDepth && e.depth+1 > e.cfg.CallCreateDepth {
		return FromError(ErrCallTooDeep), common.Address{}, nil
	}
	if e.Basic(caller).Balance.Lt(value) {
		return FromError(ErrOutOfFund), common.Address{}, nil
	}

	afterGas := e.gasometer.Gas()
	if takeL64 && e.cfg.CallL64AfterGas {
		afterGas = l64(afterGas)
	}
	gasLimit := afterGas
	if targetGas != nil {
		gasLimit = minU64(afterGas, *targetGas)
	}
	if err := e.gasometer.RecordCost(gasLimit); err != nil {
		return FromError(err), common.Address{}, nil
	}

	var nonce uint64
	var codeHash common.Hash
	if scheme == Create2 {
		codeHash = crypto.Keccak256Hash(initCode)
	} else {
		nonce = e.Nonce(caller)
	}
	address := e.CreateAddress(scheme, caller, nonce, salt, codeHash)

	e.accountMut(caller).Basic.Nonce++

	sub := e.substate(gasLimit, false)
	existing := sub.accountMut(address)
	if existing.CodeKnown {
		if len(existing.Code) > 0 {
			_ = e.mergeFail(sub)
			return FromError(ErrCreateCollision), common.Address{}, nil
		}
	} else {
		code := sub.backend.Code(address)
		existing.Code = code
		existing.CodeKnown = true
		if len(code) > 0 {
			_ = e.mergeFail(sub)
			return FromError(ErrCreateCollision), common.Address{}, nil
		}
	}
	if existing.Basic.Nonce > 0 {
		_ = e.mergeFail(sub)
		return FromError(ErrCreateCollision), common.Address{}, nil
	}
	existing.ResetStorage = true
	existing.Storage = make(map[common.Hash]common.Hash)

	context := &Context{Caller: caller, Address: address, ApparentValue: value}
	transfer := &Transfer{Source: caller, Target: address, Value: value}
	if err := sub.Transfer(transfer); err != nil {
		_ = e.mergeRevert(sub)
		return FromError(err), common.Address{}, nil
	}

	if e.cfg.CreateIncreaseNonce {
		sub.accountMut(address).Basic.Nonce++
	}

	rt := NewRuntime(initCode, nil, context, sub.cfg, sub)
	reason := rt.Execute()

	switch reason.Kind {
	case ExitKindSucceed:
		out := rt.ReturnValue()
		if e.cfg.CreateContractLimit > 0 && len(out) > e.cfg.CreateContractLimit {
			_ = e.mergeFail(sub)
			return FromError(ErrCreateContractLimit), common.Address{}, nil
		}
		if err := sub.gasometer.RecordDeposit(len(out)); err != nil {
			_ = e.mergeFail(sub)
			return FromError(err), common.Address{}, nil
		}
		if err := e.mergeSucceed(sub); err != nil {
			return FromError(err), common.Address{}, nil
		}
		e.accountMut(address).Code = out
		e.accountMut(address).CodeKnown = true
		return reason, address, nil
	case ExitKindRevert:
		_ = e.mergeRevert(sub)
		return reason, common.Address{}, rt.ReturnValue()
	case ExitKindError:
		_ = e.mergeFail(sub)
		return reason, common.Address{}, nil
	default: // ExitKindFatal
		return reason, common.Address{}, nil
	}
}

// Call resolves a CALL/CALLCODE/DELEGATECALL/STATICCALL synchronously.
func (e *StackExecutor) Call(codeAddress common.Address, transfer *Transfer, input []byte, targetGas *uint64, isStatic bool, context CallContext) (ExitReason, []byte) {
	ctx := &Context{Caller: context.Caller, Address: context.Apparent, ApparentValue: uint256.NewInt(0)}
	if transfer != nil {
		ctx.ApparentValue = transfer.Value
	}
	return e.callInner(codeAddress, transfer, input, targetGas, isStatic, true, true, ctx)
}

func (e *StackExecutor) callInner(codeAddress common.Address, transfer *Transfer, input []byte, targetGas *uint64, isStatic, takeL64, takeStipend bool, context *Context) (ExitReason, []byte) {
	if e.hasDepth && e.depth+1 > e.cfg.CallCreateDepth {
		return FromError(ErrCallTooDeep), nil
	}
	if transfer != nil && e.Basic(transfer.Source).Balance.Lt(transfer.Value) {
		return FromError(ErrOutOfFund), nil
	}

	afterGas := e.gasometer.Gas()
	if takeL64 && e.cfg.CallL64AfterGas {
		afterGas = l64(afterGas)
	}
	gasLimit := afterGas
	if targetGas != nil {
		gasLimit = minU64(*targetGas, afterGas)
	}
	if err := e.gasometer.RecordCost(gasLimit); err != nil {
		return FromError(err), nil
	}

	if transfer != nil && takeStipend && !transfer.Value.IsZero() {
		gasLimit += e.cfg.CallStipend
	}

	code := e.Code(codeAddress)

	sub := e.substate(gasLimit, isStatic)
	sub.accountMut(context.Address)

	if transfer != nil {
		if err := sub.Transfer(transfer); err != nil {
			_ = e.mergeRevert(sub)
			return FromError(err), nil
		}
	}

	if pre, ok := e.precompiles[codeAddress]; ok {
		reason, out, gasUsed, matched := pre(input, gasLimit)
		if matched {
			_ = sub.gasometer.RecordCost(gasUsed)
			if reason.IsSucceed() {
				_ = e.mergeSucceed(sub)
			} else {
				_ = e.mergeFail(sub)
			}
			return reason, out
		}
	}

	rt := NewRuntime(code, input, context, sub.cfg, sub)
	reason := rt.Execute()
	log.Debug("call execution", "address", codeAddress.Hex(), "reason", reason.String())

	switch reason.Kind {
	case ExitKindSucceed:
		if err := e.mergeSucceed(sub); err != nil {
			return FromError(err), nil
		}
		return reason, rt.ReturnValue()
	case ExitKindRevert:
		_ = e.mergeRevert(sub)
		return reason, rt.ReturnValue()
	case ExitKindError:
		_ = e.mergeFail(sub)
		return reason, nil
	default:
		return reason, nil
	}
}

// TransactCreate runs a top-level CREATE transaction to completion.
func (e *StackExecutor) TransactCreate(caller common.Address, value *uint256.Int, initCode []byte, gasLimit uint64) ExitReason {
	if err := e.gasometer.RecordTransaction(CreateTransactionCost(initCode)); err != nil {
		return FromError(err)
	}
	reason, _, _ := e.createInner(caller, CreateLegacy, value, initCode, common.Hash{}, &gasLimit, false)
	return reason
}

// TransactCreate2 runs a top-level CREATE2 transaction to completion.
func (e *StackExecutor) TransactCreate2(caller common.Address, value *uint256.Int, initCode []byte, salt common.Hash, gasLimit uint64) ExitReason {
	if err := e.gasometer.RecordTransaction(CreateTransactionCost(initCode)); err != nil {
		return FromError(err)
	}
	reason, _, _ := e.createInner(caller, Create2, value, initCode, salt, &gasLimit, false)
	return reason
}

// TransactCall runs a top-level CALL transaction to completion.
func (e *StackExecutor) TransactCall(caller, address common.Address, value *uint256.Int, data []byte, gasLimit uint64) (ExitReason, []byte) {
	if err := e.gasometer.RecordTransaction(CallTransactionCost(data)); err != nil {
		return FromError(err), nil
	}
	e.accountMut(caller).Basic.Nonce++
	context := &Context{Caller: caller, Address: address, ApparentValue: value}
	reason, out := e.callInner(address, &Transfer{Source: caller, Target: address, Value: value}, data, &gasLimit, false, false, false, context)
	return reason, out
}

// UsedGas reports net gas billed to the transaction sender, post-refund.
func (e *StackExecutor) UsedGas() uint64 { return e.gasometer.UsedGas() }

// Fee converts UsedGas into a wei amount at the given gas price.
func (e *StackExecutor) Fee(price *uint256.Int) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(e.UsedGas()), price)
}

// Deconstruct drains the executor into the Apply records and logs an
// ApplyBackend needs to commit the transaction's net effect.
func (e *StackExecutor) Deconstruct() ([]Apply, []Log) {
	applies := make([]Apply, 0, len(e.state))
	for addr, acc := range e.state {
		if e.deleted.Contains(addr) {
			continue
		}
		applies = append(applies, Apply{
			Address:      addr,
			Basic:        acc.Basic,
			Code:         acc.Code,
			CodeChanged:  acc.CodeKnown,
			Storage:      acc.Storage,
			ResetStorage: acc.ResetStorage,
		})
	}
	e.deleted.Each(func(item interface{}) bool {
		applies = append(applies, Apply{Delete: true, Address: item.(common.Address)})
		return false
	})
	return applies, e.logs
}
