package payload

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// maxSizeHint caps buffer preallocation from a declared size.
const maxSizeHint = 256 << 20

var zstdDecoder = sync.OnceValues(func() (*zstd.Decoder, error) {
	return zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
})

// Decompress undoes the archive compression selected by code.
//
//	0  identity
//	1  zlib stream; size is only a buffer hint
//	2  LZ4 block; size is the exact output length and is required
//	3  Zstandard frame; size unused
func Decompress(code Algorithm, data []byte, size uint32) ([]byte, error) {
	switch code {
	case None:
		return data, nil
	case Zlib:
		return inflate(data, size)
	case LZ4:
		return decompressLZ4(data, size)
	case Zstd:
		dec, err := zstdDecoder()
		if err != nil {
			return nil, fmt.Errorf("payload: zstd: %w", err)
		}
		out, err := dec.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("payload: zstd: %w", err)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownAlgorithm, uint8(code))
}

// inflate reads one zlib stream and stops at its end marker; trailing
// bytes are ignored.
func inflate(data []byte, hint uint32) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("payload: zlib: %w", err)
	}
	defer r.Close()

	if hint > maxSizeHint {
		hint = maxSizeHint
	}
	buf := bytes.NewBuffer(make([]byte, 0, hint))
	if _, err := io.Copy(buf, r); err != nil {
		return nil, fmt.Errorf("payload: zlib: %w", err)
	}
	return buf.Bytes(), nil
}

func decompressLZ4(data []byte, size uint32) ([]byte, error) {
	if size == 0 {
		return nil, ErrMissingSize
	}
	out := make([]byte, size)
	n, err := lz4.UncompressBlock(data, out)
	if err != nil {
		return nil, fmt.Errorf("payload: lz4: %w", err)
	}
	if n != int(size) {
		return nil, fmt.Errorf("%w: lz4 produced %d bytes, declared %d", ErrSizeMismatch, n, size)
	}
	return out, nil
}
