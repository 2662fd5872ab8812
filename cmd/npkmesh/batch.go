package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v2"

	"npk-mesh/internal/batch"
	"npk-mesh/internal/config"
	"npk-mesh/internal/entrylist"
	"npk-mesh/internal/texture"
)

var cmdBatch = cli.Command{
	Name:  "batch",
	Usage: "Decode an entry list (or a directory of .mesh files) and write previews",
	Flags: flagsOf(keyFlags, []cli.Flag{
		&cli.PathFlag{
			Name:  "config",
			Usage: "path to a JSON config file",
		},
		&cli.PathFlag{
			Name:  "list",
			Usage: "JSON entry list",
		},
		&cli.PathFlag{
			Name:  "in",
			Usage: "directory scanned for .mesh files when no list is given",
		},
		&cli.PathFlag{
			Name:  "out",
			Usage: "output directory (default: <in>/previews)",
		},
		&cli.PathFlag{
			Name:  "texture",
			Usage: "texture image, or a directory of textures named after entries",
		},
		&cli.IntFlag{
			Name:  "px",
			Usage: "preview size in pixels (default: 256)",
		},
		&cli.IntFlag{
			Name:  "workers",
			Usage: "number of worker goroutines (default: NumCPU)",
		},
		&cli.IntFlag{
			Name:  "test",
			Usage: "process only the first N entries",
		},
		&cli.BoolFlag{
			Name:  "strict",
			Usage: "treat count mismatches as errors",
		},
		&cli.BoolFlag{
			Name:  "no-preview",
			Usage: "decode only, skip WebP previews",
		},
	}),
	Action: runBatch,
}

func runBatch(c *cli.Context) error {
	// Load config
	var cfg config.Config
	if path := c.Path("config"); path != "" {
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return err
		}
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		InputDir:     c.Path("in"),
		EntryList:    c.Path("list"),
		OutputDir:    c.Path("out"),
		Texture:      c.Path("texture"),
		PublicKeyPEM: c.Path("key"),
		KeyLibrary:   c.Path("keylib"),
		Strict:       c.Bool("strict"),
		Size:         c.Int("px"),
		Workers:      c.Int("workers"),
	})

	// Load entries
	var entries []entrylist.Entry
	var err error
	switch {
	case cfg.EntryList != "":
		entries, err = entrylist.Parse(cfg.EntryList)
	case cfg.InputDir != "":
		entries, err = entrylist.Scan(cfg.InputDir)
	default:
		return cli.Exit("batch: need --list, --in or a config naming one", 2)
	}
	if err != nil {
		return err
	}

	// Limit for testing
	if n := c.Int("test"); n > 0 && n < len(entries) {
		entries = entries[:n]
	}
	if len(entries) == 0 {
		fmt.Println("No entries to process.")
		return nil
	}

	u, err := cfg.Unwrapper()
	if err != nil {
		return err
	}

	bc := batch.Config{
		OutputDir:   cfg.OutputDir,
		Unwrapper:   u,
		PreviewSize: cfg.PreviewSize,
		Supersample: cfg.Supersample,
		FillRatio:   cfg.FillRatio,
		Workers:     cfg.Workers,
		Strict:      cfg.StrictCounts,
		Preview:     !c.Bool("no-preview"),
		Logger:      log.New(os.Stderr, "", 0),
	}
	if cfg.Texture != "" {
		if bc.Textures, err = texture.Open(cfg.Texture); err != nil {
			return err
		}
	}

	fmt.Printf("Entries: %d, Workers: %d\n", len(entries), cfg.Workers)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()
	results := batch.Run(bc, entries)
	elapsed := time.Since(start)

	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())

	failed := batch.Failed(results)
	fmt.Printf("Decoded: %d/%d\n", len(results)-failed, len(results))

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return err
	}
	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	if err := batch.WriteManifest(manifestPath, results); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	fmt.Printf("Manifest: %s\n", manifestPath)

	if failed > 0 {
		fmt.Printf("\nFailed (%d):\n", failed)
		shown := 0
		for _, r := range results {
			if r.Success {
				continue
			}
			if shown == 20 {
				fmt.Printf("  ... and %d more\n", failed-shown)
				break
			}
			fmt.Printf("  %s: %s\n", r.Entry.Name, r.Error)
			shown++
		}
		return cli.Exit("", 1)
	}
	return nil
}
