// Copyright 2014 The go-probeum Authors
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

// Package crypto supplies the single cryptographic primitive the EVM core
// consumes as an external collaborator: Keccak-256.
package crypto

import (
	"hash"

	"github.com/probeum/evmcore/common"
	"golang.org/x/crypto/sha3"
)

// DigestLength is the length in bytes of a Keccak256 hash.
const DigestLength = 32

// KeccakState wraps sha3.state. In addition to the usual hash methods, it
// also supports Read to pull a variable amount of data out of the hash
// state; Read is faster than Sum because it doesn't copy the internal
// state.
type KeccakState interface {
	hash.Hash
	Read([]byte) (int, error)
}

// NewKeccakState creates a new KeccakState.
func NewKeccakState() KeccakState {
	return sha3.NewLegacyKeccak256().(KeccakState)
}

// HashData hashes the provided data using the given KeccakState and returns
// a 32 byte hash.
func HashData(kh KeccakState, data []byte) (h common.Hash) {
	kh.Reset()
	kh.Write(data)
	kh.Read(h[:])
	return h
}

// Keccak256 calculates and returns the Keccak256 hash of the input data.
func Keccak256(data ...[]byte) []byte {
	b := make([]byte, DigestLength)
	d := NewKeccakState()
	for _, item := range data {
		d.Write(item)
	}
	d.Read(b)
	return b
}

// Keccak256Hash calculates and returns the Keccak256 hash of the input
// data as a common.Hash.
func Keccak256Hash(data ...[]byte) (h common.Hash) {
	d := NewKeccakState()
	for _, item := range data {
		d.Write(item)
	}
	d.Read(h[:])
	return h
}
