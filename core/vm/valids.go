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
	lru "github.com/hashicorp/golang-lru"

	"github.com/probeum/evmcore/crypto"
)

// Valids is a bitmap over a contract's bytecode, marking which byte offsets
// are legal JUMP/JUMPI destinations.
type Valids []bool

// NewValids scans code left to right: JUMPDEST (0x5b) marks its own
// position valid, PUSH1..PUSH32 (0x60..0x7f) skips its immediate data so
// bytes inside a push payload are never mistaken for instructions.
func NewValids(code []byte) Valids {
	valids := make(Valids, len(code))
	for i := 0; i < len(code); i++ {
		op := OpCode(code[i])
		switch {
		case op == JUMPDEST:
			valids[i] = true
		case op.IsPush():
			i += op.PushSize()
		}
	}
	return valids
}

// IsValid reports whether position is a legal jump destination.
func (v Valids) IsValid(position uint64) bool {
	if position >= uint64(len(v)) {
		return false
	}
	return v[position]
}

const validsCacheSize = 1024

// validsCache memoizes Valids by code hash, avoiding a rescan of hot
// contract code across repeated calls within a block.
var validsCache, _ = lru.New(validsCacheSize)

// CachedValids returns the Valids bitmap for code, reusing a prior
// computation keyed by its Keccak-256 hash when available.
func CachedValids(code []byte) Valids {
	hash := crypto.Keccak256Hash(code)
	if v, ok := validsCache.Get(hash); ok {
		return v.(Valids)
	}
	valids := NewValids(code)
	validsCache.Add(hash, valids)
	return valids
}
