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
)

// memoryBackend is an in-memory, fixed-snapshot Backend the executor and
// runtime tests run against: accounts are pre-seeded, reads never change.
type memoryBackend struct {
	accounts map[common.Address]*memoryAccount
	chainID  *uint256.Int
	origin   common.Address
	gasPrice *uint256.Int
	number   *uint256.Int
}

type memoryAccount struct {
	basic   Basic
	code    []byte
	storage map[common.Hash]common.Hash
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{
		accounts: map[common.Address]*memoryAccount{},
		chainID:  uint256.NewInt(1),
		gasPrice: uint256.NewInt(1),
		number:   uint256.NewInt(1),
	}
}

func (b *memoryBackend) account(a common.Address) *memoryAccount {
	acc, ok := b.accounts[a]
	if !ok {
		acc = &memoryAccount{basic: Basic{Balance: uint256.NewInt(0)}, storage: map[common.Hash]common.Hash{}}
		b.accounts[a] = acc
	}
	return acc
}

func (b *memoryBackend) setBalance(a common.Address, v uint64) {
	b.account(a).basic.Balance = uint256.NewInt(v)
}

func (b *memoryBackend) setCode(a common.Address, code []byte) {
	b.account(a).code = code
}

func (b *memoryBackend) GasPrice() *uint256.Int        { return b.gasPrice }
func (b *memoryBackend) Origin() common.Address        { return b.origin }
func (b *memoryBackend) BlockHash(uint64) common.Hash  { return common.Hash{} }
func (b *memoryBackend) BlockNumber() *uint256.Int     { return b.number }
func (b *memoryBackend) BlockCoinbase() common.Address { return common.Address{} }
func (b *memoryBackend) BlockTimestamp() *uint256.Int  { return uint256.NewInt(0) }
func (b *memoryBackend) BlockDifficulty() *uint256.Int { return uint256.NewInt(0) }
func (b *memoryBackend) BlockGasLimit() *uint256.Int   { return uint256.NewInt(30_000_000) }
func (b *memoryBackend) ChainID() *uint256.Int         { return b.chainID }

func (b *memoryBackend) Exists(a common.Address) bool {
	_, ok := b.accounts[a]
	return ok
}

func (b *memoryBackend) Basic(a common.Address) Basic {
	if acc, ok := b.accounts[a]; ok {
		return acc.basic
	}
	return Basic{Balance: uint256.NewInt(0)}
}

func (b *memoryBackend) CodeHash(a common.Address) common.Hash {
	return common.BytesToHash(b.Code(a))
}

func (b *memoryBackend) CodeSize(a common.Address) int { return len(b.Code(a)) }

func (b *memoryBackend) Code(a common.Address) []byte {
	if acc, ok := b.accounts[a]; ok {
		return acc.code
	}
	return nil
}

func (b *memoryBackend) Storage(a common.Address, index common.Hash) common.Hash {
	if acc, ok := b.accounts[a]; ok {
		return acc.storage[index]
	}
	return common.Hash{}
}

func (b *memoryBackend) OriginalStorage(a common.Address, index common.Hash) common.Hash {
	return b.Storage(a, index)
}

func TestMemoryBackendSeedsZeroBalanceForUnknownAccount(t *testing.T) {
	b := newMemoryBackend()
	addr := common.BytesToAddress([]byte{1})
	assert.False(t, b.Exists(addr))
	assert.True(t, b.Basic(addr).Balance.IsZero())
}

func TestMemoryBackendStoresAndReadsCode(t *testing.T) {
	b := newMemoryBackend()
	addr := common.BytesToAddress([]byte{1})
	b.setCode(addr, []byte{0x60, 0x01})
	assert.Equal(t, 2, b.CodeSize(addr))
	assert.Equal(t, []byte{0x60, 0x01}, b.Code(addr))
}

func TestApplyDeleteRecordCarriesOnlyAddress(t *testing.T) {
	addr := common.BytesToAddress([]byte{9})
	apply := Apply{Delete: true, Address: addr}
	assert.True(t, apply.Delete)
	assert.Equal(t, addr, apply.Address)
}
