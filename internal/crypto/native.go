package crypto

import (
	"fmt"
	"path/filepath"
	"runtime"
	"sync"
)

// Native calls public_decrypt(in, out) from the platform key library.
// The library is not reentrant, so calls are serialized.
type Native struct {
	mu   sync.Mutex
	path string
	call func(in, out *byte) int32
}

// DefaultNativePath is the key library location relative to the working
// directory for the current platform.
func DefaultNativePath() string {
	if runtime.GOOS == "windows" {
		return filepath.Join("dll", "libpubdecrypt.dll")
	}
	return filepath.Join("dll", "libpubdecrypt.so")
}

func (n *Native) Unwrap(wrapped []byte) ([4]byte, error) {
	var seed [4]byte
	if len(wrapped) != WrappedKeyLen {
		return seed, ErrWrappedKeySize
	}
	// NUL-terminated copy; the library sees a C string buffer.
	in := make([]byte, len(wrapped)+1)
	copy(in, wrapped)

	n.mu.Lock()
	rc := n.call(&in[0], &seed[0])
	n.mu.Unlock()

	if rc < 0 {
		return [4]byte{}, fmt.Errorf("crypto: public_decrypt in %s returned %d", n.path, rc)
	}
	return seed, nil
}

// LazyNative defers loading the key library until the first envelope entry
// needs it. A load failure is returned from every Unwrap call.
func LazyNative(path string) KeyUnwrapper {
	var (
		once sync.Once
		lib  *Native
		err  error
	)
	return UnwrapFunc(func(wrapped []byte) ([4]byte, error) {
		once.Do(func() { lib, err = LoadNative(path) })
		if err != nil {
			return [4]byte{}, err
		}
		return lib.Unwrap(wrapped)
	})
}
