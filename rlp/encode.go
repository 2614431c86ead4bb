// Package rlp supplies the narrow slice of RLP encoding the EVM core
// needs for legacy CREATE address derivation: encoding a two-element
// list of [sender address, nonce]. Full RLP encode/decode is treated as
// an external collaborator out of scope for this module (spec.md §1);
// this is the minimal subset that address derivation cannot do without.
package rlp

import "math/big"

// EncodeAddressNonce RLP-encodes the two-element list [addr, nonce], as
// used by the legacy CREATE address scheme: keccak256(rlp([sender, nonce])).
func EncodeAddressNonce(addr []byte, nonce uint64) []byte {
	nonceBytes := encodeUint(nonce)
	addrItem := encodeString(addr)
	nonceItem := encodeString(nonceBytes)

	body := append(append([]byte{}, addrItem...), nonceItem...)
	return append(encodeListHeader(len(body)), body...)
}

// encodeUint returns the minimal big-endian encoding of n, with the single
// special case that zero encodes as the empty byte string (canonical RLP).
func encodeUint(n uint64) []byte {
	if n == 0 {
		return nil
	}
	b := new(big.Int).SetUint64(n).Bytes()
	return b
}

// encodeString encodes an arbitrary byte string per the RLP string rules.
func encodeString(b []byte) []byte {
	if len(b) == 1 && b[0] < 0x80 {
		return b
	}
	if len(b) < 56 {
		return append([]byte{0x80 + byte(len(b))}, b...)
	}
	lenBytes := big.NewInt(int64(len(b))).Bytes()
	header := append([]byte{0xb7 + byte(len(lenBytes))}, lenBytes...)
	return append(header, b...)
}

// encodeListHeader returns the RLP list-length prefix for a payload of the
// given byte length.
func encodeListHeader(payloadLen int) []byte {
	if payloadLen < 56 {
		return []byte{0xc0 + byte(payloadLen)}
	}
	lenBytes := big.NewInt(int64(payloadLen)).Bytes()
	return append([]byte{0xf7 + byte(len(lenBytes))}, lenBytes...)
}
