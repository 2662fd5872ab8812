package payload

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownAlgorithm = errors.New("payload: unknown compression algorithm")
	ErrUnknownTag       = errors.New("payload: unknown decrypt tag")
	ErrMissingSize      = errors.New("payload: lz4 block requires a declared size")
	ErrSizeMismatch     = errors.New("payload: decompressed size mismatch")
	ErrShortEnvelope    = errors.New("payload: envelope shorter than header and wrapped key")
	ErrNoUnwrapper      = errors.New("payload: envelope entry without key unwrapper")
)

// Algorithm is the archive's numeric compression code.
type Algorithm uint8

const (
	None Algorithm = iota
	Zlib
	LZ4
	Zstd
)

func (a Algorithm) String() string {
	switch a {
	case None:
		return "NONE"
	case Zlib:
		return "ZLIB"
	case LZ4:
		return "LZ4"
	case Zstd:
		return "ZSTANDARD"
	}
	return fmt.Sprintf("Algorithm(%d)", uint8(a))
}

// Tag selects the decryption layer applied before decompression.
type Tag uint8

const (
	TagNone Tag = iota
	TagRotor
	TagEnvelope
)

func (t Tag) String() string {
	switch t {
	case TagNone:
		return "none"
	case TagRotor:
		return "rotor"
	case TagEnvelope:
		return "envelope"
	}
	return fmt.Sprintf("Tag(%d)", uint8(t))
}

// ParseTag accepts the tag names used by archive listings. "rot" and
// "nxs3" are the archive's own spellings.
func ParseTag(s string) (Tag, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return TagNone, nil
	case "rot", "rotor":
		return TagRotor, nil
	case "nxs3", "envelope":
		return TagEnvelope, nil
	}
	return TagNone, fmt.Errorf("%w: %q", ErrUnknownTag, s)
}

// MarshalText and UnmarshalText let tags appear as strings in JSON listings.
func (t Tag) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *Tag) UnmarshalText(b []byte) error {
	v, err := ParseTag(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// RawEntry is one payload unit as produced by the archive layer.
type RawEntry struct {
	Data      []byte
	Size      uint32 // declared uncompressed size
	Algorithm Algorithm
	Tag       Tag
}
