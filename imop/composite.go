package imop

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

const (
	Copy    = "copy"
	SrcOver = "src_over"
)

// Composite holds the currently active composition operation.
type Composite struct {
	current string
	ops     []string
}

// InitOp initializes a new composition operation, Copy being the default one.
func InitOp() *Composite {
	return &Composite{
		current: Copy,
		ops:     []string{Copy, SrcOver},
	}
}

// Set activates one of the supported composition operations.
// Unsupported operations are ignored.
func (op *Composite) Set(cop string) {
	for _, o := range op.ops {
		if o == cop {
			op.current = cop
			return
		}
	}
}

// Get returns the currently active composition operation.
func (op *Composite) Get() string {
	return op.current
}

// Draw composites the whole src image onto dst with its top-left corner at pt.
// The parts falling outside of dst are clipped.
func (op *Composite) Draw(dst, src *image.NRGBA, pt image.Point) {
	sb := src.Bounds()
	r := image.Rectangle{Min: pt, Max: pt.Add(sb.Size())}.Intersect(dst.Bounds())
	if r.Empty() {
		return
	}
	sp := sb.Min.Add(r.Min.Sub(pt))

	switch op.current {
	case Copy:
		draw.Copy(dst, r.Min, src, image.Rectangle{Min: sp, Max: sp.Add(r.Size())}, draw.Src, nil)
	case SrcOver:
		for y := 0; y < r.Dy(); y++ {
			for x := 0; x < r.Dx(); x++ {
				s := src.NRGBAAt(sp.X+x, sp.Y+y)
				b := dst.NRGBAAt(r.Min.X+x, r.Min.Y+y)
				dst.SetNRGBA(r.Min.X+x, r.Min.Y+y, srcOver(s, b))
			}
		}
	}
}

// srcOver applies the source-over formula on non-premultiplied colors.
func srcOver(s, b color.NRGBA) color.NRGBA {
	as := float64(s.A) / 255
	ab := float64(b.A) / 255
	an := as + ab*(1-as)
	if an == 0 {
		return color.NRGBA{}
	}
	mix := func(cs, cb uint8) uint8 {
		c := (float64(cs)/255*as + float64(cb)/255*ab*(1-as)) / an
		return uint8(c*255 + 0.5)
	}
	return color.NRGBA{
		R: mix(s.R, b.R),
		G: mix(s.G, b.G),
		B: mix(s.B, b.B),
		A: uint8(an*255 + 0.5),
	}
}
