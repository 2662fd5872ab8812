package mesh

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestFlipX(t *testing.T) {
	m := &Mesh{
		Positions: []mgl32.Vec3{{1, 2, 3}},
		Normals:   []mgl32.Vec3{{-1, 0, 0}},
		Faces:     []Face{{0, 1, 2}},
	}
	f := m.FlipX()
	if f.Positions[0] != (mgl32.Vec3{-1, 2, 3}) || f.Normals[0] != (mgl32.Vec3{1, 0, 0}) {
		t.Fatalf("flip = %v %v", f.Positions[0], f.Normals[0])
	}
	if f.Faces[0] != (Face{1, 0, 2}) {
		t.Fatalf("winding = %v", f.Faces[0])
	}
	if m.Positions[0] != (mgl32.Vec3{1, 2, 3}) || m.Faces[0] != (Face{0, 1, 2}) {
		t.Fatalf("FlipX modified its receiver")
	}
}

func TestBounds(t *testing.T) {
	m := &Mesh{Positions: []mgl32.Vec3{{1, -2, 3}, {-4, 5, 0}}}
	lo, hi := m.Bounds()
	if lo != (mgl32.Vec3{-4, -2, 0}) || hi != (mgl32.Vec3{1, 5, 3}) {
		t.Fatalf("bounds = %v %v", lo, hi)
	}
	var empty Mesh
	lo, hi = empty.Bounds()
	if lo != (mgl32.Vec3{}) || hi != (mgl32.Vec3{}) {
		t.Fatalf("empty bounds = %v %v", lo, hi)
	}
}

func TestCollapseRootsSpecExample(t *testing.T) {
	parents := []int32{NoParent, 0, NoParent, 2}
	bones := make([]Bone, len(parents))
	for i, p := range parents {
		bones[i] = Bone{Parent: p}
	}
	out := collapseRoots(bones)
	if len(out) != 5 {
		t.Fatalf("len = %d", len(out))
	}
	if out[0].Parent != 4 || out[2].Parent != 4 || out[4].Parent != NoParent {
		t.Fatalf("parents = %d %d %d", out[0].Parent, out[2].Parent, out[4].Parent)
	}
	roots := 0
	for _, b := range out {
		if b.Parent == NoParent {
			roots++
		}
	}
	if roots != 1 {
		t.Fatalf("roots = %d", roots)
	}
}
