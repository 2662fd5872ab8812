//go:build windows

package crypto

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// LoadNative loads the DLL at path and binds public_decrypt.
func LoadNative(path string) (*Native, error) {
	dll, err := windows.LoadDLL(path)
	if err != nil {
		return nil, fmt.Errorf("%w: load %s: %v", ErrNativeUnavailable, path, err)
	}
	proc, err := dll.FindProc("public_decrypt")
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNativeUnavailable, path, err)
	}

	n := &Native{path: path}
	n.call = func(in, out *byte) int32 {
		r, _, _ := proc.Call(uintptr(unsafe.Pointer(in)), uintptr(unsafe.Pointer(out)))
		return int32(r)
	}
	return n, nil
}
