package mesh

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// SubmeshRanges partitions the flat vertex and face arrays by submesh,
// in descriptor order.
func (m *Mesh) SubmeshRanges() []SubmeshRange {
	out := make([]SubmeshRange, len(m.Submeshes))
	var v, f int
	for i, s := range m.Submeshes {
		out[i] = SubmeshRange{
			Vertices: Range{Start: v, End: v + int(s.VertexCount)},
			Faces:    Range{Start: f, End: f + int(s.FaceCount)},
		}
		v += int(s.VertexCount)
		f += int(s.FaceCount)
	}
	return out
}

// Bounds returns the axis-aligned bounds of Positions. Both are zero for
// an empty mesh.
func (m *Mesh) Bounds() (min, max mgl32.Vec3) {
	if len(m.Positions) == 0 {
		return
	}
	inf := float32(math.Inf(1))
	min = mgl32.Vec3{inf, inf, inf}
	max = mgl32.Vec3{-inf, -inf, -inf}
	for _, p := range m.Positions {
		for k := 0; k < 3; k++ {
			if p[k] < min[k] {
				min[k] = p[k]
			}
			if p[k] > max[k] {
				max[k] = p[k]
			}
		}
	}
	return min, max
}

// FlipX returns a copy mirrored across the YZ plane: X is negated on
// positions and normals and each face is rewound as (1, 0, 2) so that
// front faces stay front-facing. This converts to the right-handed
// convention viewers and exporters expect.
func (m *Mesh) FlipX() *Mesh {
	out := *m
	out.Positions = make([]mgl32.Vec3, len(m.Positions))
	for i, p := range m.Positions {
		out.Positions[i] = mgl32.Vec3{-p[0], p[1], p[2]}
	}
	out.Normals = make([]mgl32.Vec3, len(m.Normals))
	for i, n := range m.Normals {
		out.Normals[i] = mgl32.Vec3{-n[0], n[1], n[2]}
	}
	out.Faces = make([]Face, len(m.Faces))
	for i, f := range m.Faces {
		out.Faces[i] = Face{f[1], f[0], f[2]}
	}
	return &out
}
