package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

var cmdTransform = cli.Command{
	Name:  "transform",
	Usage: "Decrypt and decompress one entry to its plaintext bytes",
	Flags: flagsOf(entryFlags, keyFlags, []cli.Flag{
		&cli.PathFlag{
			Name:     "in",
			Required: true,
		},
		&cli.PathFlag{
			Name:  "out",
			Usage: "output file (default: <in>.out)",
		},
	}),
	Action: transformFile,
}

func transformFile(c *cli.Context) error {
	inPath := c.Path("in")
	outPath := c.Path("out")
	if outPath == "" {
		outPath = inPath + ".out"
	}

	u, err := unwrapperFrom(c)
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

	if err := os.WriteFile(outPath, data, 0644); err != nil {
		return err
	}
	fmt.Printf("Saved %d bytes to %s\n", len(data), outPath)
	return nil
}
