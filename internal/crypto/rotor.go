package crypto

import (
	"crypto/aes"
	"crypto/cipher"
)

// RotorKey is the fixed 16-byte key the rotor keystream is derived from.
var RotorKey = []byte("sixteen byte key")

const (
	rotorMask    = 0x9A
	rotorHeadLen = 128
)

// NewRotorStream returns the rotor keystream: AES-128 over RotorKey in
// counter mode with an all-zero IV.
func NewRotorStream() cipher.Stream {
	block, err := aes.NewCipher(RotorKey)
	if err != nil {
		panic("crypto: rotor key: " + err.Error())
	}
	return cipher.NewCTR(block, make([]byte, aes.BlockSize))
}

// DecryptRotor undoes the rotor scrambling of an entry:
//
//	x[i] = data[i] ^ 0x9A   for i < 128
//	y    = reverse(x)
//	out  = y ^ keystream
//
// The result is still deflate-compressed.
func DecryptRotor(data []byte) []byte {
	n := len(data)
	out := make([]byte, n)
	for i, b := range data {
		if i < rotorHeadLen {
			b ^= rotorMask
		}
		out[n-1-i] = b
	}
	NewRotorStream().XORKeyStream(out, out)
	return out
}

// EncryptRotor is the inverse of DecryptRotor.
func EncryptRotor(data []byte) []byte {
	n := len(data)
	ks := make([]byte, n)
	NewRotorStream().XORKeyStream(ks, data)

	out := make([]byte, n)
	for i := range out {
		b := ks[n-1-i]
		if i < rotorHeadLen {
			b ^= rotorMask
		}
		out[i] = b
	}
	return out
}
