package crypto

import "math/bits"

// Envelope layout: a 20-byte header, a 128-byte wrapped session key,
// then the keystream-encrypted payload.
const (
	EnvelopeHeaderLen = 20
	WrappedKeyLen     = 128
	EnvelopePrefixLen = EnvelopeHeaderLen + WrappedKeyLen
)

const envelopeMixAdd = 0xE6546B64

// EnvelopeStream is the rotate-and-mix keystream seeded from an unwrapped
// session key. Byte i is XORed with byte (i mod 4) of the little-endian
// seed; after every fourth byte the seed advances:
//
//	r    = ror32(seed, 19)
//	seed = r + r<<2 + 0xE6546B64   (mod 2^32)
//
// It implements cipher.Stream and keeps its position across calls.
type EnvelopeStream struct {
	seed uint32
	pos  int
}

// NewEnvelopeStream returns a keystream positioned at byte 0.
func NewEnvelopeStream(seed uint32) *EnvelopeStream {
	return &EnvelopeStream{seed: seed}
}

// XORKeyStream XORs each byte of src with the next keystream byte.
// dst and src may overlap entirely.
func (s *EnvelopeStream) XORKeyStream(dst, src []byte) {
	if len(dst) < len(src) {
		panic("crypto: output smaller than input")
	}
	for i, b := range src {
		lane := s.pos & 3
		dst[i] = b ^ byte(s.seed>>(lane*8))
		if lane == 3 {
			s.seed = mixSeed(s.seed)
		}
		s.pos++
	}
}

// Seed returns the current seed value.
func (s *EnvelopeStream) Seed() uint32 { return s.seed }

func mixSeed(k uint32) uint32 {
	r := bits.RotateLeft32(k, -19)
	return r + r<<2 + envelopeMixAdd
}
