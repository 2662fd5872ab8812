package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"npk-mesh/internal/config"
	"npk-mesh/internal/crypto"
	"npk-mesh/internal/entrylist"
	"npk-mesh/internal/payload"
)

func main() {
	log.SetFlags(0)

	app := &cli.App{
		Name:  "npkmesh",
		Usage: "Decrypt, decompress and decode packed mesh entries",
	}

	app.Commands = []*cli.Command{
		&cmdInspect,
		&cmdTransform,
		&cmdRender,
		&cmdBatch,
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

// entryFlags describe how a single file on the command line is packed.
var entryFlags = []cli.Flag{
	&cli.UintFlag{
		Name:  "zflag",
		Usage: "compression code: 0 none, 1 zlib, 2 lz4, 3 zstd",
	},
	&cli.UintFlag{
		Name:  "size",
		Usage: "decompressed size (required for lz4)",
	},
	&cli.StringFlag{
		Name:  "tag",
		Usage: "encryption tag: none, rotor or envelope",
	},
}

// keyFlags select the key unwrapper for envelope entries.
var keyFlags = []cli.Flag{
	&cli.PathFlag{
		Name:  "key",
		Usage: "RSA public key (PEM) used instead of the native library",
	},
	&cli.PathFlag{
		Name:  "keylib",
		Usage: "native key library exposing public_decrypt",
	},
}

func flagsOf(groups ...[]cli.Flag) []cli.Flag {
	var out []cli.Flag
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// unwrapperFrom builds the key unwrapper from --key/--keylib.
func unwrapperFrom(c *cli.Context) (crypto.KeyUnwrapper, error) {
	cfg := config.Config{}
	cfg.Resolve(config.Flags{
		PublicKeyPEM: c.Path("key"),
		KeyLibrary:   c.Path("keylib"),
	})
	return cfg.Unwrapper()
}

// entryFrom describes path using the --zflag/--size/--tag flags.
func entryFrom(c *cli.Context, path string) (entrylist.Entry, error) {
	code, size, tag, err := config.EntryFlags{
		ZFlag: c.Uint("zflag"),
		Size:  c.Uint("size"),
		Tag:   c.String("tag"),
	}.Entry()
	if err != nil {
		return entrylist.Entry{}, err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return entrylist.Entry{Name: name, Path: path, Size: size, Algorithm: code, Tag: tag}, nil
}

// plaintext loads and transforms one entry.
func plaintext(e entrylist.Entry, u crypto.KeyUnwrapper) ([]byte, error) {
	raw, err := entrylist.Load(e)
	if err != nil {
		return nil, err
	}
	data, err := payload.Transform(raw, u)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", e.Name, err)
	}
	return data, nil
}
