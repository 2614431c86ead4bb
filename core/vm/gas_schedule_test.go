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
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"

	"github.com/probeum/evmcore/common"
	"github.com/probeum/evmcore/params"
)

func TestStaticOpcodeCostKnownAndUnknown(t *testing.T) {
	cost, ok := StaticOpcodeCost(ADD)
	assert.True(t, ok)
	assert.Equal(t, params.GasVeryLow, cost)

	_, ok = StaticOpcodeCost(SSTORE)
	assert.False(t, ok, "SSTORE has a dynamic cost and must not appear in the static table")
}

func TestStaticOpcodeCostCoversAllPushDupSwap(t *testing.T) {
	for op := PUSH1; op <= PUSH32; op++ {
		cost, ok := StaticOpcodeCost(op)
		assert.True(t, ok)
		assert.Equal(t, params.GasVeryLow, cost)
	}
	for op := DUP1; op <= DUP16; op++ {
		cost, ok := StaticOpcodeCost(op)
		assert.True(t, ok)
		assert.Equal(t, params.GasVeryLow, cost)
	}
	for op := SWAP1; op <= SWAP16; op++ {
		cost, ok := StaticOpcodeCost(op)
		assert.True(t, ok)
		assert.Equal(t, params.GasVeryLow, cost)
	}
}

type fakeHandlerForGasSchedule struct {
	minimalHandler
	exists  map[common.Address]bool
	storage map[common.Hash]common.Hash
	deleted map[common.Address]bool
}

func (f *fakeHandlerForGasSchedule) Exists(a common.Address) bool { return f.exists[a] }
func (f *fakeHandlerForGasSchedule) Storage(a common.Address, idx common.Hash) common.Hash {
	return f.storage[idx]
}
func (f *fakeHandlerForGasSchedule) OriginalStorage(a common.Address, idx common.Hash) common.Hash {
	return f.storage[idx]
}
func (f *fakeHandlerForGasSchedule) Deleted(a common.Address) bool { return f.deleted[a] }
func (f *fakeHandlerForGasSchedule) Basic(a common.Address) Basic {
	return Basic{Balance: uint256.NewInt(0)}
}

func newFakeHandlerForGasSchedule() *fakeHandlerForGasSchedule {
	return &fakeHandlerForGasSchedule{
		exists:  map[common.Address]bool{},
		storage: map[common.Hash]common.Hash{},
		deleted: map[common.Address]bool{},
	}
}

func TestDynamicOpcodeCostSSTOREUnderStaticCallIsRejected(t *testing.T) {
	cfg := IstanbulConfig()
	stack := NewStack(16)
	_ = stack.Push(uint256.NewInt(1)) // value
	_ = stack.Push(uint256.NewInt(0)) // index
	_, _, err := DynamicOpcodeCost(common.Address{}, SSTORE, stack, true, cfg, newFakeHandlerForGasSchedule())
	assert.NotNil(t, err)
}

func TestDynamicOpcodeCostCreate2RequiresConfigFlag(t *testing.T) {
	cfg := FrontierConfig()
	stack := NewStack(16)
	_ = stack.Push(uint256.NewInt(0))
	_ = stack.Push(uint256.NewInt(0))
	_ = stack.Push(uint256.NewInt(0))
	gc, _, err := DynamicOpcodeCost(common.Address{}, CREATE2, stack, false, cfg, newFakeHandlerForGasSchedule())
	assert.Nil(t, err)
	assert.Equal(t, GasCostInvalid, gc.Kind)
}

func TestDynamicOpcodeCostCallWithValueUnderStaticCallIsRejected(t *testing.T) {
	cfg := IstanbulConfig()
	stack := NewStack(16)
	// CALL operand order (top to bottom): gas, addr, value, argsOffset, argsLen, retOffset, retLen
	for _, v := range []uint64{0, 0, 0, 0, 1, 0, 0} {
		_ = stack.Push(uint256.NewInt(v))
	}
	_, _, err := DynamicOpcodeCost(common.Address{}, CALL, stack, true, cfg, newFakeHandlerForGasSchedule())
	assert.NotNil(t, err)
}

func TestDynamicMemoryCostForMload(t *testing.T) {
	stack := NewStack(16)
	_ = stack.Push(uint256.NewInt(64))
	mc := dynamicMemoryCost(MLOAD, stack)
	assert.True(t, mc.Offset.Eq(uint256.NewInt(64)))
	assert.True(t, mc.Len.Eq(uint256.NewInt(32)))
}

func TestDynamicMemoryCostForCallJoinsArgsAndReturnRanges(t *testing.T) {
	stack := NewStack(16)
	// pushed bottom first: retLen, retOffset, argsLen, argsOffset, value,
	// addr, gas -- so gas ends up on top.
	vals := []uint64{10, 100, 10, 0, 0, 0, 0}
	for _, v := range vals {
		_ = stack.Push(uint256.NewInt(v))
	}
	mc := dynamicMemoryCost(CALL, stack)
	// args range ends at 10, return range ends at 110: the larger wins.
	assert.True(t, mc.Offset.Eq(uint256.NewInt(100)))
	assert.True(t, mc.Len.Eq(uint256.NewInt(10)))
}
