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

// WordToHash renders a stack word in the stack's wire representation:
// a big-endian 32-byte word, matching H256::from(U256) in the original.
func WordToHash(w *uint256.Int) common.Hash {
	return common.Hash(w.Bytes32())
}

// HashToWord parses a big-endian 32-byte word off the stack wire
// representation into a uint256.Int.
func HashToWord(h common.Hash) *uint256.Int {
	return new(uint256.Int).SetBytes32(h[:])
}

// AddressToWord left-pads a 20-byte address into a 256-bit word, the shape
// ADDRESS/CALLER/ORIGIN and friends push onto the stack.
func AddressToWord(addr common.Address) *uint256.Int {
	return new(uint256.Int).SetBytes(addr[:])
}

// WordToAddress truncates a 256-bit word to its low 20 bytes, the shape
// CALL-family opcodes read their target address argument in.
func WordToAddress(w *uint256.Int) common.Address {
	b := w.Bytes20()
	return common.Address(b)
}
