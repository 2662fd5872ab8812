package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"npk-mesh/internal/crypto"
	"npk-mesh/internal/payload"
)

// Config holds input locations, key material and preview settings.
type Config struct {
	// Inputs
	InputDir  string `json:"input_dir"`
	EntryList string `json:"entry_list"`
	OutputDir string `json:"output_dir"`
	Texture   string `json:"texture"`

	// Key unwrapping: PublicKeyPEM wins over KeyLibrary when set
	PublicKeyPEM string `json:"public_key_pem"`
	KeyLibrary   string `json:"key_library"`

	// Decoding
	StrictCounts bool `json:"strict_counts"`

	// Preview settings
	PreviewSize int     `json:"preview_size"`
	Supersample int     `json:"supersample"`
	FillRatio   float64 `json:"fill_ratio"`
	Workers     int     `json:"workers"`
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	// Relative paths in the file are relative to the file
	base := filepath.Dir(path)
	for _, p := range []*string{&cfg.InputDir, &cfg.EntryList, &cfg.OutputDir, &cfg.Texture, &cfg.PublicKeyPEM, &cfg.KeyLibrary} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}

	return cfg, nil
}

// Resolve fills in any empty fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.InputDir != "" {
		c.InputDir = flags.InputDir
	}
	if flags.EntryList != "" {
		c.EntryList = flags.EntryList
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Texture != "" {
		c.Texture = flags.Texture
	}
	if flags.PublicKeyPEM != "" {
		c.PublicKeyPEM = flags.PublicKeyPEM
	}
	if flags.KeyLibrary != "" {
		c.KeyLibrary = flags.KeyLibrary
	}
	if flags.Strict {
		c.StrictCounts = true
	}
	if flags.Size > 0 {
		c.PreviewSize = flags.Size
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}

	// Input dir defaults to the entry list's directory
	if c.InputDir == "" && c.EntryList != "" {
		c.InputDir = filepath.Dir(c.EntryList)
	}
	if c.OutputDir == "" && c.InputDir != "" {
		c.OutputDir = filepath.Join(c.InputDir, "previews")
	}
	if c.KeyLibrary == "" {
		c.KeyLibrary = crypto.DefaultNativePath()
	}

	// Defaults for preview settings
	if c.PreviewSize <= 0 {
		c.PreviewSize = 256
	}
	if c.Supersample <= 0 {
		c.Supersample = 2
	}
	if c.FillRatio <= 0 || c.FillRatio > 1 {
		c.FillRatio = 0.9
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
}

// Unwrapper builds the key unwrapper for envelope entries: an RSA
// unwrapper when a public key is configured, otherwise the native
// library loaded on first use. Both are safe for concurrent use.
func (c *Config) Unwrapper() (crypto.KeyUnwrapper, error) {
	if c.PublicKeyPEM != "" {
		pub, err := crypto.LoadPublicKey(c.PublicKeyPEM)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		return crypto.RSAUnwrapper{Key: pub}, nil
	}
	return crypto.LazyNative(c.KeyLibrary), nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	InputDir     string
	EntryList    string
	OutputDir    string
	Texture      string
	PublicKeyPEM string
	KeyLibrary   string
	Strict       bool
	Size         int
	Workers      int
}

// EntryFlags describes how to read a single entry given on the command
// line rather than through an entry list.
type EntryFlags struct {
	ZFlag uint
	Size  uint
	Tag   string
}

// Entry converts the flags to payload metadata.
func (f EntryFlags) Entry() (payload.Algorithm, uint32, payload.Tag, error) {
	if f.ZFlag > uint(payload.Zstd) {
		return 0, 0, 0, fmt.Errorf("config: %w: %d", payload.ErrUnknownAlgorithm, f.ZFlag)
	}
	tag, err := payload.ParseTag(f.Tag)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("config: %w", err)
	}
	return payload.Algorithm(f.ZFlag), uint32(f.Size), tag, nil
}
