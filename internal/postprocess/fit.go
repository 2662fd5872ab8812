package postprocess

import (
	"image"

	"golang.org/x/image/draw"
)

// OpaqueBounds returns the smallest rectangle holding every pixel with
// non-zero alpha. ok is false for a fully transparent image.
func OpaqueBounds(img *image.NRGBA) (r image.Rectangle, ok bool) {
	b := img.Bounds()
	minX, minY := b.Max.X, b.Max.Y
	maxX, maxY := b.Min.X-1, b.Min.Y-1
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := img.PixOffset(b.Min.X, y)
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.Pix[off+3] > 0 {
				minX = min(minX, x)
				maxX = max(maxX, x)
				minY = min(minY, y)
				maxY = max(maxY, y)
			}
			off += 4
		}
	}
	if maxX < minX {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), true
}

// Fit crops img to its opaque pixels, scales the crop so its longer side
// covers fill of a size x size canvas and centers it there. A blank
// image yields a blank canvas.
func Fit(img *image.NRGBA, size int, fill float64) *image.NRGBA {
	canvas := image.NewNRGBA(image.Rect(0, 0, size, size))
	r, ok := OpaqueBounds(img)
	if !ok || size < 1 {
		return canvas
	}
	if fill <= 0 || fill > 1 {
		fill = 1
	}

	crop := image.NewNRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(crop, crop.Bounds(), img, r.Min, draw.Src)

	longest := max(r.Dx(), r.Dy())
	scale := float64(size) * fill / float64(longest)
	w := max(int(float64(r.Dx())*scale+0.5), 1)
	h := max(int(float64(r.Dy())*scale+0.5), 1)
	scaled := Downsample(crop, w, h)

	off := image.Pt((size-w)/2, (size-h)/2)
	draw.Draw(canvas, scaled.Bounds().Add(off), scaled, image.Point{}, draw.Src)
	return canvas
}
