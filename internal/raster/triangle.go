package raster

import (
	"image"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Vertex is a projected vertex: X, Y in pixels, Z larger-is-nearer.
type Vertex struct {
	X, Y, Z float64
	U, V    float64
}

// Material is either a texture or, when Tex is nil, a flat color.
type Material struct {
	Tex                        *image.NRGBA
	BaseR, BaseG, BaseB, BaseA uint8
}

// RasterizeTriangle fills one triangle with flat shading, a z-buffer test,
// sRGB-correct lighting and ACES tone mapping. Winding is not culled.
func RasterizeTriangle(fb *FrameBuffer, a, b, c Vertex, mat *Material, lc *LightConfig) {
	// Face normal for flat shading
	e1 := mgl32.Vec3{float32(b.X - a.X), float32(b.Y - a.Y), float32(b.Z - a.Z)}
	e2 := mgl32.Vec3{float32(c.X - a.X), float32(c.Y - a.Y), float32(c.Z - a.Z)}
	n := e1.Cross(e2)
	if n.Len() < 1e-8 {
		return
	}
	shade := lc.Shade(n.Normalize()) * lc.Exposure

	minX := clampInt(int(math.Floor(math.Min(math.Min(a.X, b.X), c.X))), 0, fb.Width-1)
	maxX := clampInt(int(math.Ceil(math.Max(math.Max(a.X, b.X), c.X))), 0, fb.Width-1)
	minY := clampInt(int(math.Floor(math.Min(math.Min(a.Y, b.Y), c.Y))), 0, fb.Height-1)
	maxY := clampInt(int(math.Ceil(math.Max(math.Max(a.Y, b.Y), c.Y))), 0, fb.Height-1)
	if minX > maxX || minY > maxY {
		return
	}

	det := (b.Y-c.Y)*(a.X-c.X) + (c.X-b.X)*(a.Y-c.Y)
	if det > -1e-8 && det < 1e-8 {
		return
	}
	invDet := 1.0 / det

	dy12 := b.Y - c.Y
	dx21 := c.X - b.X
	dy20 := c.Y - a.Y
	dx02 := a.X - c.X

	for sy := minY; sy <= maxY; sy++ {
		dsy := float64(sy) - c.Y
		rowOff := sy * fb.Width
		for sx := minX; sx <= maxX; sx++ {
			dsx := float64(sx) - c.X
			w0 := (dy12*dsx + dx21*dsy) * invDet
			w1 := (dy20*dsx + dx02*dsy) * invDet
			w2 := 1.0 - w0 - w1
			if w0 < -0.001 || w1 < -0.001 || w2 < -0.001 {
				continue
			}

			z := w0*a.Z + w1*b.Z + w2*c.Z
			zIdx := rowOff + sx
			if z <= fb.ZBuf[zIdx] {
				continue
			}

			cr, cg, cb, ca := mat.BaseR, mat.BaseG, mat.BaseB, mat.BaseA
			if mat.Tex != nil {
				u := w0*a.U + w1*b.U + w2*c.U
				v := w0*a.V + w1*b.V + w2*c.V
				cr, cg, cb, ca = SampleTexture(mat.Tex, u, v)
			}
			if ca < 8 {
				continue
			}
			fb.ZBuf[zIdx] = z

			px := zIdx * 4
			fb.Color[px] = toneMap(cr, shade, lc.InvGamma)
			fb.Color[px+1] = toneMap(cg, shade, lc.InvGamma)
			fb.Color[px+2] = toneMap(cb, shade, lc.InvGamma)
			fb.Color[px+3] = ca
		}
	}
}

// toneMap lights an sRGB channel in linear space and encodes it back.
func toneMap(c uint8, shade, invGamma float64) uint8 {
	return clamp255(math.Pow(ACESTonemap(srgbToLinear[c]*shade), invGamma) * 255)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp255(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
