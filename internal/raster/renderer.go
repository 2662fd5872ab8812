package raster

import (
	"image"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"npk-mesh/internal/mesh"
)

// View is the camera orientation used for previews, in degrees.
type View struct {
	Pitch float32
	Yaw   float32
}

// DefaultView looks slightly down at the model from its front-right.
var DefaultView = View{Pitch: -15, Yaw: 30}

// Rotation returns the model-to-view rotation for v.
func (v View) Rotation() mgl32.Mat4 {
	rx := mgl32.HomogRotate3DX(mgl32.DegToRad(v.Pitch))
	ry := mgl32.HomogRotate3DY(mgl32.DegToRad(v.Yaw))
	return rx.Mul4(ry)
}

// RenderMesh renders a decoded mesh to a square NRGBA image of
// size*supersample pixels. The mesh is mirrored to the right-handed
// convention first. A nil tex draws with a flat grey material.
func RenderMesh(m *mesh.Mesh, tex *image.NRGBA, view View, size, supersample int) *image.NRGBA {
	if supersample < 1 {
		supersample = 1
	}
	renderSize := size * supersample
	fb := NewFrameBuffer(renderSize, renderSize)
	if m == nil || len(m.Positions) == 0 || len(m.Faces) == 0 {
		return fb.Image()
	}

	rh := m.FlipX()
	R := view.Rotation()

	// Rotate every vertex once and track the view-space bounds
	rotated := make([]mgl32.Vec3, len(rh.Positions))
	lo := [3]float64{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi := [3]float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for i, p := range rh.Positions {
		tv := R.Mul4x1(p.Vec4(1)).Vec3()
		rotated[i] = tv
		for k := 0; k < 3; k++ {
			f := float64(tv[k])
			if f < lo[k] {
				lo[k] = f
			}
			if f > hi[k] {
				hi[k] = f
			}
		}
	}

	center := [3]float64{(lo[0] + hi[0]) / 2, (lo[1] + hi[1]) / 2, (lo[2] + hi[2]) / 2}
	span := math.Max(hi[0]-lo[0], hi[1]-lo[1])
	if span < 0.001 {
		span = 0.001
	}
	// The margin shrinks with the frame so small previews keep a
	// positive drawable extent.
	margin := min(16, size/8) * supersample
	scale := float64(max(renderSize-2*margin, 1)) / span
	half := float64(renderSize) / 2

	verts := make([]Vertex, len(rotated))
	hasUV := len(rh.UVs) >= len(rotated)
	for i, tv := range rotated {
		verts[i] = Vertex{
			X: (float64(tv[0])-center[0])*scale + half,
			Y: half - (float64(tv[1])-center[1])*scale,
			Z: (float64(tv[2]) - center[2]) * scale,
		}
		if hasUV {
			verts[i].U = float64(rh.UVs[i][0])
			verts[i].V = float64(rh.UVs[i][1])
		}
	}

	mat := &Material{Tex: tex, BaseR: 160, BaseG: 160, BaseB: 170, BaseA: 255}
	if tex == nil || !hasUV {
		mat.Tex = nil
		if tex != nil {
			mat.BaseR, mat.BaseG, mat.BaseB, mat.BaseA = averageColor(tex)
		}
	}

	lc := DefaultLightConfig()
	n := len(verts)
	for _, f := range rh.Faces {
		if int(f[0]) >= n || int(f[1]) >= n || int(f[2]) >= n {
			continue
		}
		RasterizeTriangle(fb, verts[f[0]], verts[f[1]], verts[f[2]], mat, &lc)
	}
	return fb.Image()
}

func averageColor(tex *image.NRGBA) (uint8, uint8, uint8, uint8) {
	b := tex.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return 160, 160, 170, 255
	}

	var sumR, sumG, sumB float64
	stride := tex.Stride
	for y := 0; y < h; y++ {
		off := y * stride
		for x := 0; x < w; x++ {
			i := off + x*4
			sumR += float64(tex.Pix[i])
			sumG += float64(tex.Pix[i+1])
			sumB += float64(tex.Pix[i+2])
		}
	}
	n := float64(w * h)
	return uint8(sumR/n + 0.5), uint8(sumG/n + 0.5), uint8(sumB/n + 0.5), 255
}
