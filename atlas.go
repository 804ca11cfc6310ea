package texpatch

import (
	"image"

	"github.com/bits-and-blooms/bitset"
)

// DefaultPageSize is the width and height of a newly created atlas page.
const DefaultPageSize = 2048

// Node is the placement of a single texture on an atlas page.
type Node struct {
	X, Y    int
	Texture *TextureInfo
}

// Rect returns the area covered by the texture on the page.
func (n *Node) Rect() image.Rectangle {
	return image.Rect(n.X, n.Y, n.X+n.Texture.Width(), n.Y+n.Texture.Height())
}

// Atlas is a fixed size page which gets filled with textures.
// The occupancy mask is a flat bitset indexed by y*Width+x.
type Atlas struct {
	Width  int
	Height int
	Nodes  []*Node
	mask   *bitset.BitSet
}

// NewAtlas creates an empty page.
func NewAtlas(width, height int) *Atlas {
	return &Atlas{
		Width:  width,
		Height: height,
		mask:   bitset.New(uint(width * height)),
	}
}

// occupied reports whether the pixel at (x, y) is taken.
// Positions outside of the page are never occupied.
func (a *Atlas) occupied(x, y int) bool {
	if x < 0 || y < 0 || x >= a.Width || y >= a.Height {
		return false
	}
	return a.mask.Test(uint(y*a.Width + x))
}

// fit checks whether a w×h texture surrounded by margin can be placed with its
// top-left corner at (x, y). On failure it returns the column of an occupied
// pixel found inside the tested box, otherwise -1.
func (a *Atlas) fit(x, y, w, h, margin int) (bool, int) {
	x0, y0 := x-margin, y-margin
	x1, y1 := x+w-1+margin, y+h-1+margin

	// Corners first, the right ones give the larger skip.
	switch {
	case a.occupied(x1, y0):
		return false, x1
	case a.occupied(x1, y1):
		return false, x1
	case a.occupied(x0, y0):
		return false, x0
	case a.occupied(x0, y1):
		return false, x0
	}

	for py := y0; py <= y1; py++ {
		for px := x1; px >= x0; px-- {
			if a.occupied(px, py) {
				return false, px
			}
		}
	}
	return true, -1
}

// mark flags the texture footprint as occupied. The margin is not persisted.
func (a *Atlas) mark(x, y, w, h int) {
	for py := y; py < y+h; py++ {
		row := py * a.Width
		for px := x; px < x+w; px++ {
			a.mask.Set(uint(row + px))
		}
	}
}

// Insert searches the page in row-major order for the first position where the
// texture fits and records the new node. It returns false if the page is full.
func (a *Atlas) Insert(tex *TextureInfo, margin int) (*Node, bool) {
	w, h := tex.Width(), tex.Height()
	if w > a.Width || h > a.Height {
		return nil, false
	}

	for y := 0; y <= a.Height-h; y++ {
		for x := 0; x <= a.Width-w; {
			ok, col := a.fit(x, y, w, h, margin)
			if ok {
				a.mark(x, y, w, h)
				node := &Node{X: x, Y: y, Texture: tex}
				a.Nodes = append(a.Nodes, node)
				return node, true
			}
			// Every candidate up to col+margin keeps the occupied pixel inside its box.
			x = col + margin + 1
		}
	}
	return nil, false
}

// Occupied returns the number of pixels covered by textures.
func (a *Atlas) Occupied() int {
	return int(a.mask.Count())
}
