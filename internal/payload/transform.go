package payload

import (
	"encoding/binary"
	"fmt"

	"npk-mesh/internal/crypto"
)

// Decrypt removes the decryption layer selected by tag. Both cipher modes
// also undo the compression that sits inside them: rotor entries come
// out inflated and envelope entries come out LZ4-decompressed.
// The unwrapper is only consulted for envelope entries.
func Decrypt(tag Tag, data []byte, unwrapper crypto.KeyUnwrapper) ([]byte, error) {
	switch tag {
	case TagNone:
		return data, nil
	case TagRotor:
		out, err := inflate(crypto.DecryptRotor(data), 0)
		if err != nil {
			return nil, fmt.Errorf("payload: rotor: %w", err)
		}
		return out, nil
	case TagEnvelope:
		return openEnvelope(data, unwrapper)
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownTag, uint8(tag))
}

// openEnvelope decrypts a 20-byte header + 128-byte wrapped key + payload
// layout. Header bytes 16..20 hold the LZ4 output size.
func openEnvelope(data []byte, unwrapper crypto.KeyUnwrapper) ([]byte, error) {
	if len(data) < crypto.EnvelopePrefixLen {
		return nil, fmt.Errorf("%w: %d bytes", ErrShortEnvelope, len(data))
	}
	if unwrapper == nil {
		return nil, ErrNoUnwrapper
	}

	key, err := unwrapper.Unwrap(data[crypto.EnvelopeHeaderLen:crypto.EnvelopePrefixLen])
	if err != nil {
		return nil, fmt.Errorf("payload: unwrap key: %w", err)
	}
	seed := binary.LittleEndian.Uint32(key[:])

	body := data[crypto.EnvelopePrefixLen:]
	plain := make([]byte, len(body))
	crypto.NewEnvelopeStream(seed).XORKeyStream(plain, body)

	size := binary.LittleEndian.Uint32(data[16:crypto.EnvelopeHeaderLen])
	out, err := decompressLZ4(plain, size)
	if err != nil {
		return nil, fmt.Errorf("payload: envelope: %w", err)
	}
	return out, nil
}

// Transform turns a raw archive entry into the plaintext mesh blob:
// decryption first, then decompression.
func Transform(e RawEntry, unwrapper crypto.KeyUnwrapper) ([]byte, error) {
	data, err := Decrypt(e.Tag, e.Data, unwrapper)
	if err != nil {
		return nil, err
	}
	return Decompress(e.Algorithm, data, e.Size)
}
