//go:build darwin || linux

package crypto

import (
	"fmt"

	"github.com/ebitengine/purego"
)

// LoadNative opens the shared object at path and binds public_decrypt.
func LoadNative(path string) (*Native, error) {
	lib, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, fmt.Errorf("%w: dlopen %s: %v", ErrNativeUnavailable, path, err)
	}
	sym, err := purego.Dlsym(lib, "public_decrypt")
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNativeUnavailable, path, err)
	}

	n := &Native{path: path}
	purego.RegisterFunc(&n.call, sym)
	return n, nil
}
