package main

import (
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"npk-mesh/internal/batch"
	"npk-mesh/internal/config"
	"npk-mesh/internal/mesh"
	"npk-mesh/internal/texture"
)

var cmdRender = cli.Command{
	Name:  "render",
	Usage: "Decode one entry and write a WebP preview",
	Flags: flagsOf(entryFlags, keyFlags, []cli.Flag{
		&cli.PathFlag{
			Name:     "in",
			Required: true,
		},
		&cli.PathFlag{
			Name:  "out",
			Usage: "output file (default: <in>.webp)",
		},
		&cli.PathFlag{
			Name:  "texture",
			Usage: "texture image, or a directory of textures named after entries",
		},
		&cli.IntFlag{
			Name:  "px",
			Usage: "preview size in pixels (default: 256)",
		},
	}),
	Action: renderFile,
}

func renderFile(c *cli.Context) error {
	inPath := c.Path("in")
	outPath := c.Path("out")
	if outPath == "" {
		outPath = inPath + ".webp"
	}

	cfg := config.Config{}
	cfg.Resolve(config.Flags{
		Texture:      c.Path("texture"),
		PublicKeyPEM: c.Path("key"),
		KeyLibrary:   c.Path("keylib"),
		Size:         c.Int("px"),
	})
	u, err := cfg.Unwrapper()
	if err != nil {
		return err
	}

	e, err := entryFrom(c, inPath)
	if err != nil {
		return err
	}
	data, err := plaintext(e, u)
	if err != nil {
		return err
	}
	m, err := mesh.DecodeWith(data, mesh.Options{Logger: log.New(os.Stderr, e.Name+": ", 0)})
	if err != nil {
		return err
	}

	bc := batch.Config{
		PreviewSize: cfg.PreviewSize,
		Supersample: cfg.Supersample,
		FillRatio:   cfg.FillRatio,
	}
	if cfg.Texture != "" {
		if bc.Textures, err = texture.Open(cfg.Texture); err != nil {
			return err
		}
	}

	if err := batch.WritePreview(outPath, batch.RenderPreview(bc, m, e.Name)); err != nil {
		return err
	}
	fmt.Printf("Saved %dx%d preview to %s\n", cfg.PreviewSize, cfg.PreviewSize, outPath)
	return nil
}
