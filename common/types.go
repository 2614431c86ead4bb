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

// Package common holds the fixed-size value types shared by the EVM core:
// 160-bit addresses and 256-bit hashes.
package common

import (
	"encoding/hex"
	"fmt"
	"math/big"
)

// Lengths of hashes and addresses in bytes.
const (
	HashLength    = 32
	AddressLength = 20
)

// Hash represents the 32 byte Keccak256 hash of arbitrary data.
type Hash [HashLength]byte

// BytesToHash sets b to Hash, left-padding if b is smaller, truncating the
// leading bytes if b is larger.
func BytesToHash(b []byte) Hash {
	var h Hash
	h.SetBytes(b)
	return h
}

// SetBytes sets the hash to the value of b, left-padding if b is smaller
// than the hash length and truncating from the left if b is larger.
func (h *Hash) SetBytes(b []byte) {
	if len(b) > HashLength {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
}

// Bytes returns the raw bytes of the hash.
func (h Hash) Bytes() []byte { return h[:] }

// Big converts the hash to a big integer, interpreting it big-endian.
func (h Hash) Big() *big.Int { return new(big.Int).SetBytes(h[:]) }

// Hex returns the "0x"-prefixed hex string form of the hash.
func (h Hash) Hex() string { return "0x" + hex.EncodeToString(h[:]) }

// String implements fmt.Stringer.
func (h Hash) String() string { return h.Hex() }

// IsZero reports whether the hash is the zero value.
func (h Hash) IsZero() bool { return h == Hash{} }

// Address represents the 20 byte address of an Ethereum-style account.
type Address [AddressLength]byte

// BytesToAddress sets b to Address, left-padding if b is smaller, truncating
// the leading bytes if b is larger.
func BytesToAddress(b []byte) Address {
	var a Address
	a.SetBytes(b)
	return a
}

// SetBytes sets the address to the value of b, left-padding if b is smaller
// than the address length and truncating from the left if b is larger.
func (a *Address) SetBytes(b []byte) {
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
}

// Bytes returns the raw bytes of the address.
func (a Address) Bytes() []byte { return a[:] }

// Hash returns the address left-padded to 32 bytes.
func (a Address) Hash() Hash { return BytesToHash(a[:]) }

// Hex returns the "0x"-prefixed hex string form of the address.
func (a Address) Hex() string { return "0x" + hex.EncodeToString(a[:]) }

// String implements fmt.Stringer.
func (a Address) String() string { return a.Hex() }

// IsZero reports whether the address is the zero value.
func (a Address) IsZero() bool { return a == Address{} }

// Format implements fmt.Formatter for %x / %s verbs, matching the teacher's
// convention of printing addresses unadorned in log output.
func (a Address) Format(s fmt.State, c byte) {
	switch c {
	case 'x', 'X', 's', 'v':
		fmt.Fprint(s, a.Hex())
	default:
		fmt.Fprintf(s, "%%!%c(address=%x)", c, a[:])
	}
}
