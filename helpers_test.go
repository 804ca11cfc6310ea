package texpatch

import (
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/esimov/texpatch/utils"
)

var (
	red   = color.NRGBA{R: 0xff, A: 0xff}
	green = color.NRGBA{G: 0xff, A: 0xff}
	blue  = color.NRGBA{B: 0xff, A: 0xff}
	white = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

func newImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	return img
}

func newTexture(name string, frame, w, h int) *TextureInfo {
	return &TextureInfo{
		Name:  name,
		Frame: frame,
		Class: Sprite,
		Path:  name + ".png",
		Image: newImage(w, h, white),
	}
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("could not create the directory: %v", err)
	}
	if err := imaging.Save(img, path); err != nil {
		t.Fatalf("could not save %s: %v", path, err)
	}
}

func compareBytes(a, b []uint8, delta int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		if utils.Max(int(a[i])-int(b[i]), int(b[i])-int(a[i])) > delta {
			return false
		}
	}
	return true
}

func pixel(img *image.NRGBA, x, y int) []uint8 {
	i := img.PixOffset(x, y)
	return img.Pix[i : i+4]
}

func rgba(c color.NRGBA) []uint8 {
	return []uint8{c.R, c.G, c.B, c.A}
}
