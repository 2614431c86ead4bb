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

// GasCostKind discriminates the dynamic opcode cost shapes the gasometer
// knows how to price. Some carry operand-dependent payloads (call value,
// target existence, original/current/new storage slots).
type GasCostKind int

const (
	GasCostZero GasCostKind = iota
	GasCostBase
	GasCostVeryLow
	GasCostLow
	GasCostInvalid

	GasCostExtCodeSize
	GasCostBalance
	GasCostBlockHash
	GasCostExtCodeHash

	GasCostCall
	GasCostCallCode
	GasCostDelegateCall
	GasCostStaticCall

	GasCostSuicide
	GasCostSStore
	GasCostSha3
	GasCostLog
	GasCostExtCodeCopy
	GasCostVeryLowCopy
	GasCostExp
	GasCostCreate
	GasCostCreate2
	GasCostSLoad
)

// GasCost is a dynamic opcode cost request, carrying whatever operands its
// Kind needs to compute a final price.
type GasCost struct {
	Kind GasCostKind

	Value        *uint256.Int
	Gas          *uint256.Int
	TargetExists bool
	AlreadyRemoved bool

	Original common.Hash
	Current  common.Hash
	New      common.Hash

	Len  *uint256.Int
	Power *uint256.Int
	LogTopics uint8
}

// MemoryCost is a requested memory range a dynamic-cost opcode will touch;
// it is resolved into an expansion cost alongside the opcode's GasCost.
type MemoryCost struct {
	Offset *uint256.Int
	Len    *uint256.Int
}

// Join returns whichever of self/other covers the larger memory range,
// matching the Rust original: CALL-family opcodes touch two independent
// ranges (args, return) but are charged only for the larger expansion,
// never the sum of both.
func (m MemoryCost) Join(other MemoryCost) MemoryCost {
	if m.Len == nil || m.Len.IsZero() {
		return other
	}
	if other.Len == nil || other.Len.IsZero() {
		return m
	}
	selfEnd := new(uint256.Int).Add(m.Offset, m.Len)
	otherEnd := new(uint256.Int).Add(other.Offset, other.Len)
	if selfEnd.Cmp(otherEnd) >= 0 {
		return m
	}
	return other
}

// TransactionCost is the up-front intrinsic cost of a Call or Create
// transaction, billed by calldata composition before any code runs.
type TransactionCost struct {
	IsCreate        bool
	ZeroDataLen     uint64
	NonZeroDataLen  uint64
}

// CallTransactionCost computes the intrinsic cost breakdown for a
// message-call transaction's input data.
func CallTransactionCost(data []byte) TransactionCost {
	zero, nonZero := countZero(data)
	return TransactionCost{IsCreate: false, ZeroDataLen: zero, NonZeroDataLen: nonZero}
}

// CreateTransactionCost computes the intrinsic cost breakdown for a
// contract-creation transaction's init code.
func CreateTransactionCost(data []byte) TransactionCost {
	zero, nonZero := countZero(data)
	return TransactionCost{IsCreate: true, ZeroDataLen: zero, NonZeroDataLen: nonZero}
}

func countZero(data []byte) (zero, nonZero uint64) {
	for _, b := range data {
		if b == 0 {
			zero++
		} else {
			nonZero++
		}
	}
	return
}

type gasInner struct {
	memoryCost  uint64
	usedGas     uint64
	refundedGas int64
}

// Gasometer tracks gas consumption against a fixed limit for a single call
// frame. Once any recording operation fails, the gasometer "poisons": it
// sticks in the failed state and every subsequent query reports as if all
// gas were spent, matching the original's Result<Inner, ExitError> field.
type Gasometer struct {
	gasLimit uint64
	inner    *gasInner
	poison   *ExitError
	cfg      *Config
}

// NewGasometer creates a gasometer with the given gas limit.
func NewGasometer(gasLimit uint64, cfg *Config) *Gasometer {
	return &Gasometer{gasLimit: gasLimit, inner: &gasInner{}, cfg: cfg}
}

func memoryGas(words uint64) (uint64, *ExitError) {
	linear, overflow := checkedMul(words, params.GasMemory)
	if overflow {
		return 0, ErrOutOfGas
	}
	squared, overflow := checkedMul(words, words)
	if overflow {
		return 0, ErrOutOfGas
	}
	quad := squared / params.QuadCoeffDiv
	total, overflow := checkedAdd(linear, quad)
	if overflow {
		return 0, ErrOutOfGas
	}
	return total, nil
}

func checkedAdd(a, b uint64) (uint64, bool) {
	sum := a + b
	return sum, sum < a
}

func checkedMul(a, b uint64) (uint64, bool) {
	if a == 0 || b == 0 {
		return 0, false
	}
	result := a * b
	return result, result/a != b
}

// Gas returns the gas remaining in this frame.
func (g *Gasometer) Gas() uint64 {
	if g.poison != nil {
		return 0
	}
	mg, err := memoryGas(g.inner.memoryCost)
	if err != nil {
		return 0
	}
	if g.gasLimit < g.inner.usedGas+mg {
		return 0
	}
	return g.gasLimit - g.inner.usedGas - mg
}

// TotalUsedGas returns the total gas consumed so far, including memory
// expansion, before refunds.
func (g *Gasometer) TotalUsedGas() uint64 {
	if g.poison != nil {
		return g.gasLimit
	}
	mg, err := memoryGas(g.inner.memoryCost)
	if err != nil {
		return g.gasLimit
	}
	return g.inner.usedGas + mg
}

// RefundedGas returns the accumulated refund counter (pre-cap).
func (g *Gasometer) RefundedGas() int64 {
	if g.poison != nil {
		return 0
	}
	return g.inner.refundedGas
}

// UsedGas returns gas actually charged to the caller: total used gas minus
// the refund, capped at 50% of total used gas (the EIP-2200-era network
// refund rule).
func (g *Gasometer) UsedGas() uint64 {
	if g.poison != nil {
		return g.gasLimit
	}
	tug := g.TotalUsedGas()
	rg := g.inner.refundedGas
	refundCap := tug / 2
	var refund uint64
	if rg > 0 {
		refund = uint64(rg)
	}
	if refund > refundCap {
		refund = refundCap
	}
	return tug - refund
}

// Fail explicitly poisons the gasometer with OutOfGas.
func (g *Gasometer) Fail() *ExitError {
	g.poison = ErrOutOfGas
	return ErrOutOfGas
}

func (g *Gasometer) checkPoison() *ExitError {
	if g.poison != nil {
		return g.poison
	}
	return nil
}

// RecordCost charges an explicit, statically-known cost.
func (g *Gasometer) RecordCost(cost uint64) *ExitError {
	if err := g.checkPoison(); err != nil {
		return err
	}
	allCost, overflow := checkedAdd(g.TotalUsedGas(), cost)
	if overflow || g.gasLimit < allCost {
		g.poison = ErrOutOfGas
		return ErrOutOfGas
	}
	g.inner.usedGas += cost
	return nil
}

// RecordRefund accumulates a signed refund delta.
func (g *Gasometer) RecordRefund(refund int64) *ExitError {
	if err := g.checkPoison(); err != nil {
		return err
	}
	g.inner.refundedGas += refund
	return nil
}

// RecordDeposit charges CREATE's per-byte code-deposit cost.
func (g *Gasometer) RecordDeposit(length int) *ExitError {
	return g.RecordCost(uint64(length) * params.GasCodeDeposit)
}

// RecordDynamicCost resolves a GasCost (and optional memory expansion)
// against the current frame and charges it, in one atomic step so that a
// failure at any stage leaves the gasometer poisoned rather than partially
// updated.
func (g *Gasometer) RecordDynamicCost(cost GasCost, memory *MemoryCost) *ExitError {
	if err := g.checkPoison(); err != nil {
		return err
	}
	gasBefore := g.Gas()

	newMemoryCost := g.inner.memoryCost
	if memory != nil {
		words, err := g.memoryCostWords(*memory)
		if err != nil {
			g.poison = err
			return err
		}
		newMemoryCost = words
	}

	memGas, err := memoryGas(newMemoryCost)
	if err != nil {
		g.poison = err
		return err
	}

	gasCost, err := g.resolveGasCost(cost, gasBefore)
	if err != nil {
		g.poison = err
		return err
	}
	gasRefund := g.resolveGasRefund(cost)

	allCost, overflow := checkedAdd(memGas, g.inner.usedGas)
	if overflow {
		g.poison = ErrOutOfGas
		return ErrOutOfGas
	}
	allCost, overflow = checkedAdd(allCost, gasCost)
	if overflow || g.gasLimit < allCost {
		g.poison = ErrOutOfGas
		return ErrOutOfGas
	}

	afterGas := g.gasLimit - allCost
	if err := g.extraCheck(cost, afterGas); err != nil {
		g.poison = err
		return err
	}

	g.inner.usedGas += gasCost
	g.inner.memoryCost = newMemoryCost
	g.inner.refundedGas += gasRefund
	return nil
}

// RecordStipend credits back a stipend (e.g. the 2300-gas CALL stipend)
// that was provisionally charged against the caller's used gas.
func (g *Gasometer) RecordStipend(stipend uint64) *ExitError {
	if err := g.checkPoison(); err != nil {
		return err
	}
	g.inner.usedGas -= stipend
	return nil
}

// RecordTransaction charges a transaction's up-front intrinsic cost.
func (g *Gasometer) RecordTransaction(cost TransactionCost) *ExitError {
	var gasCost uint64
	if cost.IsCreate {
		gasCost = g.cfg.GasTransactionCreate
	} else {
		gasCost = g.cfg.GasTransactionCall
	}
	gasCost += cost.ZeroDataLen * g.cfg.GasTransactionZeroData
	gasCost += cost.NonZeroDataLen * g.cfg.GasTransactionNonZeroData

	if g.Gas() < gasCost {
		g.poison = ErrOutOfGas
		return ErrOutOfGas
	}
	g.inner.usedGas += gasCost
	return nil
}

func (g *Gasometer) memoryCostWords(memory MemoryCost) (uint64, *ExitError) {
	if memory.Len == nil || memory.Len.IsZero() {
		return g.inner.memoryCost, nil
	}
	end := new(uint256.Int).Add(memory.Offset, memory.Len)
	if end.Cmp(memory.Offset) < 0 {
		return 0, ErrOutOfGas
	}
	if !end.IsUint64() {
		return 0, ErrOutOfGas
	}
	endU64 := end.Uint64()
	words := endU64 / 32
	if endU64%32 != 0 {
		words++
	}
	if words < g.inner.memoryCost {
		words = g.inner.memoryCost
	}
	return words, nil
}

func (g *Gasometer) extraCheck(cost GasCost, afterGas uint64) *ExitError {
	switch cost.Kind {
	case GasCostCall, GasCostCallCode, GasCostDelegateCall, GasCostStaticCall:
		if g.cfg.ErrOnCallWithMoreGas && cost.Gas != nil {
			if !cost.Gas.IsUint64() || cost.Gas.Uint64() > afterGas {
				return ErrOutOfGas
			}
		}
	}
	return nil
}

func (g *Gasometer) resolveGasCost(cost GasCost, gas uint64) (uint64, *ExitError) {
	switch cost.Kind {
	case GasCostZero:
		return params.GasZero, nil
	case GasCostBase:
		return params.GasBase, nil
	case GasCostVeryLow:
		return params.GasVeryLow, nil
	case GasCostLow:
		return params.GasLow, nil
	case GasCostInvalid:
		return 0, ErrOutOfGas
	case GasCostExtCodeSize:
		return g.cfg.GasExtCode, nil
	case GasCostBalance:
		return g.cfg.GasBalance, nil
	case GasCostBlockHash:
		return params.GasBlockHash, nil
	case GasCostExtCodeHash:
		return g.cfg.GasExtCodeHash, nil
	case GasCostCall:
		return callCost(cost.Value, true, true, !cost.TargetExists, g.cfg), nil
	case GasCostCallCode:
		return callCost(cost.Value, true, false, !cost.TargetExists, g.cfg), nil
	case GasCostDelegateCall:
		return callCost(uint256.NewInt(0), false, false, !cost.TargetExists, g.cfg), nil
	case GasCostStaticCall:
		return callCost(uint256.NewInt(0), false, true, !cost.TargetExists, g.cfg), nil
	case GasCostSuicide:
		return suicideCost(cost.Value, cost.TargetExists, g.cfg), nil
	case GasCostSStore:
		if g.cfg.Estimate {
			return g.cfg.GasSStoreSet, nil
		}
		return sstoreCost(cost.Original, cost.Current, cost.New, gas, g.cfg)
	case GasCostSha3:
		return sha3Cost(cost.Len)
	case GasCostLog:
		return logCost(cost.LogTopics, cost.Len)
	case GasCostExtCodeCopy:
		return extCodeCopyCost(cost.Len, g.cfg)
	case GasCostVeryLowCopy:
		return veryLowCopyCost(cost.Len)
	case GasCostExp:
		return expCost(cost.Power, g.cfg)
	case GasCostCreate:
		return params.GasCreate, nil
	case GasCostCreate2:
		return create2Cost(cost.Len)
	case GasCostSLoad:
		return g.cfg.GasSLoad, nil
	}
	return 0, ErrOutOfGas
}

func (g *Gasometer) resolveGasRefund(cost GasCost) int64 {
	if g.cfg.Estimate {
		return 0
	}
	switch cost.Kind {
	case GasCostSStore:
		return sstoreRefund(cost.Original, cost.Current, cost.New, g.cfg)
	case GasCostSuicide:
		return suicideRefund(cost.AlreadyRemoved, g.cfg)
	}
	return 0
}

func suicideRefund(alreadyRemoved bool, cfg *Config) int64 {
	if alreadyRemoved {
		return 0
	}
	return cfg.RefundSuicide
}

func sstoreRefund(original, current, new common.Hash, cfg *Config) int64 {
	var zero common.Hash
	if cfg.SStoreGasMetering {
		if current == new {
			return 0
		}
		if original == current && new == zero {
			return cfg.RefundSStoreClears
		}
		var refund int64
		if original != zero {
			if current == zero {
				refund -= cfg.RefundSStoreClears
			} else if new == zero {
				refund += cfg.RefundSStoreClears
			}
		}
		if original == new {
			if original == zero {
				refund += int64(cfg.GasSStoreSet) - int64(cfg.GasSLoad)
			} else {
				refund += int64(cfg.GasSStoreReset) - int64(cfg.GasSLoad)
			}
		}
		return refund
	}
	if current != zero && new == zero {
		return cfg.RefundSStoreClears
	}
	return 0
}

func sstoreCost(original, current, new common.Hash, gas uint64, cfg *Config) (uint64, *ExitError) {
	var zero common.Hash
	if cfg.SStoreGasMetering {
		if cfg.SStoreRevertUnderStipend && gas < cfg.CallStipend {
			return 0, ErrOutOfGas
		}
		if new == current {
			return cfg.GasSLoad, nil
		}
		if original == current {
			if original == zero {
				return cfg.GasSStoreSet, nil
			}
			return cfg.GasSStoreReset, nil
		}
		return cfg.GasSLoad, nil
	}
	if current == zero && new != zero {
		return cfg.GasSStoreSet, nil
	}
	return cfg.GasSStoreReset, nil
}

func suicideCost(value *uint256.Int, targetExists bool, cfg *Config) uint64 {
	eip161 := !cfg.EmptyConsideredExists
	var shouldChargeTopup bool
	if eip161 {
		shouldChargeTopup = value != nil && !value.IsZero() && !targetExists
	} else {
		shouldChargeTopup = !targetExists
	}
	if shouldChargeTopup {
		return cfg.GasSuicide + cfg.GasSuicideNewAccount
	}
	return cfg.GasSuicide
}

func callCost(value *uint256.Int, isCallOrCallcode, isCallOrStaticcall, newAccount bool, cfg *Config) uint64 {
	transfersValue := value != nil && !value.IsZero()
	cost := cfg.GasCall
	if isCallOrCallcode && transfersValue {
		cost += params.GasCallValue
	}
	eip161 := !cfg.EmptyConsideredExists
	if isCallOrStaticcall {
		if eip161 {
			if transfersValue && newAccount {
				cost += params.GasNewAccount
			}
		} else if newAccount {
			cost += params.GasNewAccount
		}
	}
	return cost
}

func wordCount(len *uint256.Int) (uint64, *ExitError) {
	if len == nil {
		return 0, nil
	}
	if !len.IsUint64() {
		return 0, ErrOutOfGas
	}
	l := len.Uint64()
	words := l / 32
	if l%32 != 0 {
		words++
	}
	return words, nil
}

func sha3Cost(len *uint256.Int) (uint64, *ExitError) {
	words, err := wordCount(len)
	if err != nil {
		return 0, err
	}
	return addChecked(params.GasSha3, mulChecked(params.GasSha3Word, words))
}

func logCost(n uint8, len *uint256.Int) (uint64, *ExitError) {
	if len == nil || !len.IsUint64() {
		return 0, ErrOutOfGas
	}
	cost, overflow := checkedAdd(params.GasLog, len.Uint64()*params.GasLogData)
	if overflow {
		return 0, ErrOutOfGas
	}
	cost, overflow = checkedAdd(cost, params.GasLogTopic*uint64(n))
	if overflow {
		return 0, ErrOutOfGas
	}
	return cost, nil
}

func extCodeCopyCost(len *uint256.Int, cfg *Config) (uint64, *ExitError) {
	words, err := wordCount(len)
	if err != nil {
		return 0, err
	}
	return addChecked(cfg.GasExtCode, mulChecked(params.GasCopy, words))
}

func veryLowCopyCost(len *uint256.Int) (uint64, *ExitError) {
	words, err := wordCount(len)
	if err != nil {
		return 0, err
	}
	return addChecked(params.GasVeryLow, mulChecked(params.GasCopy, words))
}

func expCost(power *uint256.Int, cfg *Config) (uint64, *ExitError) {
	if power == nil || power.IsZero() {
		return params.GasExp, nil
	}
	byteLen := uint64((power.BitLen()+7)/8)
	cost, overflow := checkedAdd(params.GasExp, cfg.GasExpByte*byteLen)
	if overflow {
		return 0, ErrOutOfGas
	}
	return cost, nil
}

func create2Cost(len *uint256.Int) (uint64, *ExitError) {
	words, err := wordCount(len)
	if err != nil {
		return 0, err
	}
	return addChecked(params.GasCreate, mulChecked(params.GasSha3Word, words))
}

func addChecked(a, b uint64) (uint64, *ExitError) {
	sum, overflow := checkedAdd(a, b)
	if overflow {
		return 0, ErrOutOfGas
	}
	return sum, nil
}

func mulChecked(a, b uint64) uint64 {
	r, overflow := checkedMul(a, b)
	if overflow {
		return ^uint64(0)
	}
	return r
}
