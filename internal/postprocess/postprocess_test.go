package postprocess

import (
	"image"
	"image/color"
	"testing"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestDownsampleKeepsColorAtEdges(t *testing.T) {
	// Left half opaque white, right half transparent black.
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 4; x++ {
			img.SetNRGBA(x, y, color.NRGBA{255, 255, 255, 255})
		}
	}
	out := Downsample(img, 4, 4)
	if out.Rect.Dx() != 4 || out.Rect.Dy() != 4 {
		t.Fatalf("size = %v", out.Rect)
	}
	for x := 0; x < 4; x++ {
		c := out.NRGBAAt(x, 2)
		if c.A > 16 && c.R < 240 {
			t.Fatalf("pixel %d = %+v, edge darkened", x, c)
		}
	}
}

func TestDownsampleSameSize(t *testing.T) {
	img := solid(3, 3, color.NRGBA{1, 2, 3, 4})
	if Downsample(img, 3, 3) != img {
		t.Fatal("same-size downsample should return the input")
	}
	if out := Downsample(img, 0, 5); out.Rect.Dx() != 0 {
		t.Fatalf("zero width = %v", out.Rect)
	}
}

func TestOpaqueBounds(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	if _, ok := OpaqueBounds(img); ok {
		t.Fatal("blank image should have no opaque bounds")
	}
	img.SetNRGBA(2, 3, color.NRGBA{A: 1})
	img.SetNRGBA(6, 4, color.NRGBA{A: 255})
	r, ok := OpaqueBounds(img)
	if !ok || r != image.Rect(2, 3, 7, 5) {
		t.Fatalf("bounds = %v, %v", r, ok)
	}
}

func TestFitCentersAndScales(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 100, 100))
	for y := 10; y < 20; y++ {
		for x := 10; x < 30; x++ {
			img.SetNRGBA(x, y, color.NRGBA{200, 100, 50, 255})
		}
	}
	out := Fit(img, 40, 0.5)
	if out.Rect.Dx() != 40 {
		t.Fatalf("size = %v", out.Rect)
	}
	r, ok := OpaqueBounds(out)
	if !ok {
		t.Fatal("fit dropped everything")
	}
	if r.Dx() < 19 || r.Dx() > 21 {
		t.Fatalf("width = %d, want ~20", r.Dx())
	}
	if c := out.NRGBAAt(20, 20); c.A != 255 {
		t.Fatalf("center = %+v, want opaque", c)
	}
}

func TestFitBlank(t *testing.T) {
	out := Fit(image.NewNRGBA(image.Rect(0, 0, 5, 5)), 16, 0.9)
	if _, ok := OpaqueBounds(out); ok || out.Rect.Dx() != 16 {
		t.Fatal("blank input should give a blank canvas")
	}
}
