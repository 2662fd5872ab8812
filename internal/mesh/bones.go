package mesh

import (
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/text/encoding/charmap"
)

// decodeBoneName decodes a fixed 32-byte name field as Latin-1, drops
// every NUL and replaces spaces with underscores.
func decodeBoneName(raw []byte) (string, error) {
	b, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return "", err
	}
	s := strings.ReplaceAll(string(b), "\x00", "")
	return strings.ReplaceAll(s, " ", "_"), nil
}

// collapseRoots gives a skeleton with several roots a single synthetic
// root. Every original root is re-parented to it.
func collapseRoots(bones []Bone) []Bone {
	roots := 0
	for _, b := range bones {
		if b.Parent == NoParent {
			roots++
		}
	}
	if roots <= 1 {
		return bones
	}

	root := int32(len(bones))
	for i := range bones {
		if bones[i].Parent == NoParent {
			bones[i].Parent = root
		}
	}
	return append(bones, Bone{
		Name:   DummyRootName,
		Parent: NoParent,
		Bind:   mgl32.Ident4(),
	})
}
