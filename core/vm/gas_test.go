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
	"github.com/stretchr/testify/require"

	"github.com/probeum/evmcore/params"
)

func uintVal(v uint64) *uint256.Int { return uint256.NewInt(v) }

func TestGasometerRecordCostDeductsFromGas(t *testing.T) {
	g := NewGasometer(1000, IstanbulConfig())
	require.Nil(t, g.RecordCost(100))
	assert.Equal(t, uint64(900), g.Gas())
	assert.Equal(t, uint64(100), g.TotalUsedGas())
}

func TestGasometerRecordCostOutOfGasPoisons(t *testing.T) {
	g := NewGasometer(100, IstanbulConfig())
	err := g.RecordCost(101)
	assert.Equal(t, ErrOutOfGas, err)
	assert.Equal(t, uint64(0), g.Gas())

	// Poisoning is sticky: a subsequent call that would otherwise succeed
	// still reports the original failure.
	err2 := g.RecordCost(1)
	assert.Equal(t, ErrOutOfGas, err2)
}

func TestGasometerInvariantGasPlusUsedEqualsLimit(t *testing.T) {
	limit := uint64(100000)
	g := NewGasometer(limit, IstanbulConfig())
	require.Nil(t, g.RecordCost(12345))
	assert.Equal(t, limit, g.Gas()+g.TotalUsedGas())
}

func TestGasometerRefundCappedAtHalfUsedGas(t *testing.T) {
	g := NewGasometer(100000, IstanbulConfig())
	require.Nil(t, g.RecordCost(1000))
	require.Nil(t, g.RecordRefund(10000))

	// refund cap is TotalUsedGas/2 = 500, so UsedGas = 1000 - 500 = 500.
	assert.Equal(t, uint64(500), g.UsedGas())
}

func TestGasometerNegativeRefundNeverGoesBelowZero(t *testing.T) {
	g := NewGasometer(100000, IstanbulConfig())
	require.Nil(t, g.RecordCost(1000))
	require.Nil(t, g.RecordRefund(-10000))

	assert.Equal(t, uint64(1000), g.UsedGas())
}

func TestGasometerRecordStipendCreditsBackGas(t *testing.T) {
	g := NewGasometer(100000, IstanbulConfig())
	require.Nil(t, g.RecordCost(5000))
	require.Nil(t, g.RecordStipend(2000))
	assert.Equal(t, uint64(3000), g.TotalUsedGas())
}

func TestGasometerMemoryExpansionQuadraticCost(t *testing.T) {
	g := NewGasometer(1_000_000, IstanbulConfig())
	// Touching bytes [0, 32) costs exactly one word of linear memory gas:
	// 3 * 1 + 1*1/512 = 3.
	mem := &MemoryCost{Offset: uintVal(0), Len: uintVal(32)}
	require.Nil(t, g.RecordDynamicCost(GasCost{Kind: GasCostVeryLow}, mem))
	assert.Equal(t, uint64(3)+params.GasVeryLow, g.TotalUsedGas())
}

func TestGasMemoryCostJoinPicksLargerRange(t *testing.T) {
	small := MemoryCost{Offset: uintVal(0), Len: uintVal(32)}
	large := MemoryCost{Offset: uintVal(0), Len: uintVal(64)}
	joined := small.Join(large)
	assert.True(t, joined.Len.Eq(uintVal(64)))
}

func TestGasMemoryCostJoinIgnoresZeroLenSide(t *testing.T) {
	zero := MemoryCost{Offset: uintVal(10), Len: uintVal(0)}
	real := MemoryCost{Offset: uintVal(0), Len: uintVal(32)}
	assert.True(t, zero.Join(real).Len.Eq(uintVal(32)))
	assert.True(t, real.Join(zero).Len.Eq(uintVal(32)))
}

func TestCallTransactionCostCountsZeroAndNonZeroBytes(t *testing.T) {
	cost := CallTransactionCost([]byte{0, 1, 0, 2})
	assert.Equal(t, uint64(2), cost.ZeroDataLen)
	assert.Equal(t, uint64(2), cost.NonZeroDataLen)
	assert.False(t, cost.IsCreate)
}

func TestCreateTransactionCostMarksIsCreate(t *testing.T) {
	cost := CreateTransactionCost([]byte{1})
	assert.True(t, cost.IsCreate)
}

func TestGasometerRecordTransactionChargesIntrinsicCost(t *testing.T) {
	cfg := IstanbulConfig()
	g := NewGasometer(100000, cfg)
	require.Nil(t, g.RecordTransaction(CallTransactionCost(nil)))
	assert.Equal(t, cfg.GasTransactionCall, g.TotalUsedGas())
}
