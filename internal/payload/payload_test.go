package payload

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"testing"

	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"npk-mesh/internal/crypto"
)

func sample(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i % 13)
	}
	return data
}

func zlibBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		t.Fatalf("zlib write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("zlib close: %v", err)
	}
	return buf.Bytes()
}

func lz4Block(t *testing.T, data []byte) []byte {
	t.Helper()
	dst := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lz4.CompressBlock(data, dst, nil)
	if err != nil {
		t.Fatalf("CompressBlock: %v", err)
	}
	if n == 0 {
		t.Fatalf("CompressBlock: data not compressible")
	}
	return dst[:n]
}

func TestDecompressIdentity(t *testing.T) {
	for _, data := range [][]byte{nil, {}, {1}, sample(1000)} {
		out, err := Decompress(None, data, 12345)
		if err != nil {
			t.Fatalf("Decompress: %v", err)
		}
		if !bytes.Equal(out, data) {
			t.Fatalf("identity changed data")
		}
	}
}

func TestDecompressZlib(t *testing.T) {
	data := sample(4096)
	comp := zlibBytes(t, data)
	// Trailing bytes past the stream end are not part of the payload.
	comp = append(comp, 0xAA, 0xBB, 0xCC)

	for _, hint := range []uint32{0, 10, uint32(len(data)), 1 << 20} {
		out, err := Decompress(Zlib, comp, hint)
		if err != nil {
			t.Fatalf("hint %d: Decompress: %v", hint, err)
		}
		if !bytes.Equal(out, data) {
			t.Fatalf("hint %d: mismatch", hint)
		}
	}
}

func TestDecompressLZ4(t *testing.T) {
	data := sample(2048)
	comp := lz4Block(t, data)

	out, err := Decompress(LZ4, comp, uint32(len(data)))
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Fatalf("lz4 mismatch")
	}
}

func TestDecompressLZ4MissingSize(t *testing.T) {
	comp := lz4Block(t, sample(2048))
	if _, err := Decompress(LZ4, comp, 0); !errors.Is(err, ErrMissingSize) {
		t.Fatalf("expected ErrMissingSize, got %v", err)
	}
}

func TestDecompressLZ4WrongSize(t *testing.T) {
	data := sample(2048)
	comp := lz4Block(t, data)
	if _, err := Decompress(LZ4, comp, uint32(len(data)+100)); !errors.Is(err, ErrSizeMismatch) {
		t.Fatalf("expected ErrSizeMismatch, got %v", err)
	}
	if _, err := Decompress(LZ4, comp, uint32(len(data)-100)); err == nil {
		t.Fatalf("expected an error for a short output buffer")
	}
}

func TestDecompressZstd(t *testing.T) {
	data := sample(8192)
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatalf("zstd.NewWriter: %v", err)
	}
	comp := enc.EncodeAll(data, nil)
	enc.Close()

	out, err := Decompress(Zstd, comp, 0)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Fatalf("zstd mismatch")
	}
}

func TestDecompressUnknown(t *testing.T) {
	for _, code := range []Algorithm{4, 9, 255} {
		if _, err := Decompress(code, []byte{1, 2, 3}, 3); !errors.Is(err, ErrUnknownAlgorithm) {
			t.Fatalf("code %d: expected ErrUnknownAlgorithm, got %v", code, err)
		}
	}
}

func TestDecryptRotor(t *testing.T) {
	data := sample(3000)
	entry := crypto.EncryptRotor(zlibBytes(t, data))

	out, err := Decrypt(TagRotor, entry, nil)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Fatalf("rotor mismatch")
	}
}

func sealEnvelope(t *testing.T, data []byte, seed uint32) []byte {
	t.Helper()
	comp := lz4Block(t, data)
	body := make([]byte, len(comp))
	crypto.NewEnvelopeStream(seed).XORKeyStream(body, comp)

	header := make([]byte, crypto.EnvelopePrefixLen)
	copy(header, "NXS3")
	binary.LittleEndian.PutUint32(header[16:20], uint32(len(data)))
	return append(header, body...)
}

func TestDecryptEnvelope(t *testing.T) {
	data := sample(1500)
	entry := sealEnvelope(t, data, 0x12345678)

	var calls int
	u := crypto.UnwrapFunc(func(wrapped []byte) ([4]byte, error) {
		calls++
		if len(wrapped) != crypto.WrappedKeyLen {
			t.Fatalf("wrapped key length = %d", len(wrapped))
		}
		return [4]byte{0x78, 0x56, 0x34, 0x12}, nil
	})

	out, err := Decrypt(TagEnvelope, entry, u)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Fatalf("envelope mismatch")
	}
	if calls != 1 {
		t.Fatalf("unwrapper called %d times", calls)
	}
}

func TestDecryptEnvelopeErrors(t *testing.T) {
	if _, err := Decrypt(TagEnvelope, make([]byte, 100), crypto.StaticSeed(1)); !errors.Is(err, ErrShortEnvelope) {
		t.Fatalf("expected ErrShortEnvelope, got %v", err)
	}
	entry := sealEnvelope(t, sample(500), 7)
	if _, err := Decrypt(TagEnvelope, entry, nil); !errors.Is(err, ErrNoUnwrapper) {
		t.Fatalf("expected ErrNoUnwrapper, got %v", err)
	}
	boom := errors.New("boom")
	failing := crypto.UnwrapFunc(func([]byte) ([4]byte, error) { return [4]byte{}, boom })
	if _, err := Decrypt(TagEnvelope, entry, failing); !errors.Is(err, boom) {
		t.Fatalf("expected unwrap error, got %v", err)
	}
}

func TestDecryptUnknownTag(t *testing.T) {
	if _, err := Decrypt(Tag(9), []byte{1}, nil); !errors.Is(err, ErrUnknownTag) {
		t.Fatalf("expected ErrUnknownTag, got %v", err)
	}
}

func TestTransform(t *testing.T) {
	data := sample(700)
	e := RawEntry{Data: lz4Block(t, data), Size: uint32(len(data)), Algorithm: LZ4}
	out, err := Transform(e, nil)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Fatalf("transform mismatch")
	}

	// Envelope output is already decompressed; code 0 leaves it alone.
	e = RawEntry{Data: sealEnvelope(t, data, 99), Tag: TagEnvelope}
	out, err = Transform(e, crypto.StaticSeed(99))
	if err != nil {
		t.Fatalf("Transform envelope: %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Fatalf("envelope transform mismatch")
	}
}

func TestParseTag(t *testing.T) {
	cases := map[string]Tag{"": TagNone, "none": TagNone, "rot": TagRotor, "Rotor": TagRotor, "nxs3": TagEnvelope, "envelope": TagEnvelope}
	for in, want := range cases {
		got, err := ParseTag(in)
		if err != nil || got != want {
			t.Fatalf("ParseTag(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseTag("xor"); !errors.Is(err, ErrUnknownTag) {
		t.Fatalf("expected ErrUnknownTag, got %v", err)
	}

	var v struct{ Tag Tag }
	if err := json.Unmarshal([]byte(`{"Tag":"nxs3"}`), &v); err != nil || v.Tag != TagEnvelope {
		t.Fatalf("json tag = %v, %v", v.Tag, err)
	}
}

func TestAlgorithmString(t *testing.T) {
	if None.String() != "NONE" || Zlib.String() != "ZLIB" || LZ4.String() != "LZ4" || Zstd.String() != "ZSTANDARD" {
		t.Fatalf("unexpected algorithm names")
	}
}
