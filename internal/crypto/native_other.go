//go:build !darwin && !linux && !windows

package crypto

import "fmt"

// LoadNative is not supported on this platform; use RSAUnwrapper instead.
func LoadNative(path string) (*Native, error) {
	return nil, fmt.Errorf("%w: no loader for this platform (%s)", ErrNativeUnavailable, path)
}
