package crypto

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"os"
	"sync"
)

var (
	ErrWrappedKeySize    = errors.New("crypto: wrapped key must be 128 bytes")
	ErrBadPadding        = errors.New("crypto: bad PKCS#1 block type 1 padding")
	ErrNativeUnavailable = errors.New("crypto: native key unwrap unavailable")
)

// KeyUnwrapper recovers the 4-byte envelope seed from a 128-byte wrapped key.
// The seed is little-endian. Implementations may be platform specific.
type KeyUnwrapper interface {
	Unwrap(wrapped []byte) ([4]byte, error)
}

// UnwrapFunc adapts a plain function to KeyUnwrapper.
type UnwrapFunc func(wrapped []byte) ([4]byte, error)

func (f UnwrapFunc) Unwrap(wrapped []byte) ([4]byte, error) { return f(wrapped) }

// StaticSeed returns an unwrapper that ignores its input and always yields seed.
// Useful when the session key is already known.
func StaticSeed(seed uint32) KeyUnwrapper {
	key := [4]byte{byte(seed), byte(seed >> 8), byte(seed >> 16), byte(seed >> 24)}
	return UnwrapFunc(func(wrapped []byte) ([4]byte, error) {
		if len(wrapped) != WrappedKeyLen {
			return [4]byte{}, ErrWrappedKeySize
		}
		return key, nil
	})
}

type serialized struct {
	mu sync.Mutex
	u  KeyUnwrapper
}

// Serialize guards u so that at most one Unwrap call runs at a time.
func Serialize(u KeyUnwrapper) KeyUnwrapper {
	return &serialized{u: u}
}

func (s *serialized) Unwrap(wrapped []byte) ([4]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.u.Unwrap(wrapped)
}

// RSAUnwrapper performs an RSA public-key "decrypt" (signature recovery):
// m = c^e mod n, then strips PKCS#1 v1.5 block type 1 padding. The first
// four bytes of the recovered message are the seed.
type RSAUnwrapper struct {
	Key *rsa.PublicKey
}

func (u RSAUnwrapper) Unwrap(wrapped []byte) ([4]byte, error) {
	var seed [4]byte
	if len(wrapped) != WrappedKeyLen {
		return seed, ErrWrappedKeySize
	}
	k := u.Key.Size()
	if k != WrappedKeyLen {
		return seed, fmt.Errorf("crypto: rsa modulus is %d bytes, want %d", k, WrappedKeyLen)
	}

	c := new(big.Int).SetBytes(wrapped)
	if c.Cmp(u.Key.N) >= 0 {
		return seed, fmt.Errorf("crypto: wrapped key out of range for modulus")
	}
	m := new(big.Int).Exp(c, big.NewInt(int64(u.Key.E)), u.Key.N)
	em := m.FillBytes(make([]byte, k))

	msg, err := unpadType1(em)
	if err != nil {
		return seed, err
	}
	if len(msg) < len(seed) {
		return seed, fmt.Errorf("%w: message is %d bytes", ErrBadPadding, len(msg))
	}
	copy(seed[:], msg)
	return seed, nil
}

// unpadType1 strips 00 01 FF..FF 00 (at least eight FF bytes).
func unpadType1(em []byte) ([]byte, error) {
	if len(em) < 11 || em[0] != 0x00 || em[1] != 0x01 {
		return nil, ErrBadPadding
	}
	i := 2
	for i < len(em) && em[i] == 0xFF {
		i++
	}
	if i-2 < 8 || i >= len(em) || em[i] != 0x00 {
		return nil, ErrBadPadding
	}
	return em[i+1:], nil
}

// LoadPublicKey reads a PEM encoded RSA public key (PKIX or PKCS#1).
func LoadPublicKey(path string) (*rsa.PublicKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("crypto: read %s: %w", path, err)
	}
	block, _ := pem.Decode(raw)
	if block == nil {
		return nil, fmt.Errorf("crypto: no PEM block in %s", path)
	}

	switch block.Type {
	case "RSA PUBLIC KEY":
		key, err := x509.ParsePKCS1PublicKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("crypto: parse %s: %w", path, err)
		}
		return key, nil
	default:
		pub, err := x509.ParsePKIXPublicKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("crypto: parse %s: %w", path, err)
		}
		key, ok := pub.(*rsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("crypto: %s is not an RSA public key", path)
		}
		return key, nil
	}
}
