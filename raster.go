package texpatch

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/esimov/texpatch/imop"
)

// DefaultExtrude is the number of edge pixels repeated around each texture.
const DefaultExtrude = 1

// debugColor is the translucent fill used to highlight the placed regions.
var debugColor = color.NRGBA{R: 0xff, G: 0x00, B: 0xff, A: 0x60}

// Rasterize draws every node of the atlas onto a new fully transparent page.
// The textures replace the destination pixels, there is no blending. When extrude
// is positive each texture is drawn with its edge pixels repeated around it.
func Rasterize(a *Atlas, extrude int) *image.NRGBA {
	page := image.NewNRGBA(image.Rect(0, 0, a.Width, a.Height))
	op := imop.InitOp()
	op.Set(imop.Copy)

	for _, node := range a.Nodes {
		src := node.Texture.Image
		pt := image.Pt(node.X, node.Y)
		if extrude > 0 {
			src = Extrude(src, extrude)
			pt = pt.Sub(image.Pt(extrude, extrude))
		}
		op.Draw(page, src, pt)
	}
	return page
}

// DebugOverlay returns a copy of the page with every node rectangle highlighted.
func DebugOverlay(page *image.NRGBA, a *Atlas) *image.NRGBA {
	dst := image.NewNRGBA(page.Bounds())
	draw.Draw(dst, dst.Bounds(), page, page.Bounds().Min, draw.Src)

	op := imop.InitOp()
	op.Set(imop.SrcOver)
	for _, node := range a.Nodes {
		r := node.Rect()
		fill := image.NewNRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
		draw.Draw(fill, fill.Bounds(), &image.Uniform{C: debugColor}, image.Point{}, draw.Src)
		op.Draw(dst, fill, r.Min)
	}
	return dst
}
