package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"npk-mesh/internal/crypto"
	"npk-mesh/internal/mesh"
	"npk-mesh/internal/skeleton"
)

var cmdInspect = cli.Command{
	Name:      "inspect",
	Usage:     "Decode entries and print their structure",
	ArgsUsage: "<file>...",
	Flags: flagsOf(entryFlags, keyFlags, []cli.Flag{
		&cli.BoolFlag{
			Name:  "strict",
			Usage: "treat count mismatches as errors",
		},
	}),
	Action: inspectFiles,
}

func inspectFiles(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.Exit("inspect: no input files", 2)
	}
	u, err := unwrapperFrom(c)
	if err != nil {
		return err
	}

	failed := 0
	for _, path := range c.Args().Slice() {
		if err := inspectFile(c, path, u); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			failed++
		}
	}
	if failed > 0 {
		return cli.Exit(fmt.Sprintf("%d of %d files failed", failed, c.NArg()), 1)
	}
	return nil
}

func inspectFile(c *cli.Context, path string, u crypto.KeyUnwrapper) error {
	e, err := entryFrom(c, path)
	if err != nil {
		return err
	}
	data, err := plaintext(e, u)
	if err != nil {
		return err
	}
	m, err := mesh.DecodeWith(data, mesh.Options{
		Strict: c.Bool("strict"),
		Logger: log.New(os.Stderr, e.Name+": ", 0),
	})
	if err != nil {
		return err
	}

	fmt.Printf("%s (%s, %s, %d bytes plain)\n", path, e.Algorithm, e.Tag, len(data))
	fmt.Printf("  vertices: %d, faces: %d, bones: %d\n", len(m.Positions), len(m.Faces), len(m.Bones))

	for i, r := range m.SubmeshRanges() {
		s := m.Submeshes[i]
		fmt.Printf("  submesh %d: vertices [%d,%d) faces [%d,%d) uv layers %d colors %d\n",
			i, r.Vertices.Start, r.Vertices.End, r.Faces.Start, r.Faces.End, s.UVLayers, s.ColorChannels)
	}

	lo, hi := m.Bounds()
	fmt.Printf("  bounds: (%.3f, %.3f, %.3f) - (%.3f, %.3f, %.3f)\n", lo[0], lo[1], lo[2], hi[0], hi[1], hi[2])

	for _, w := range m.Warnings {
		fmt.Printf("  warning: %v\n", w)
	}

	if !m.HasBones {
		return nil
	}
	fmt.Println("  skeleton:")
	pos := skeleton.BindPositions(m.Bones)
	return skeleton.Build(m.Bones).Walk(func(i, depth int) bool {
		p := pos[i]
		fmt.Printf("    %s%s (%.2f, %.2f, %.2f)\n", strings.Repeat("  ", depth), m.Bones[i].Name, p[0], p[1], p[2])
		return true
	})
}
