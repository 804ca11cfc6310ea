package texpatch

import (
	"fmt"
	"sort"
)

// Packer distributes textures over fixed size atlas pages.
type Packer struct {
	Width  int
	Height int
	// Margin is the free space required around a texture at the moment it gets placed.
	Margin int
}

// NewPacker returns a packer producing square pages of the given size.
func NewPacker(size, margin int) *Packer {
	return &Packer{Width: size, Height: size, Margin: margin}
}

// Pack places every texture exactly once. The textures are ordered by descending
// area (keeping the encounter order for equal areas) and then inserted first-fit.
// A page which cannot hold the current texture is closed and never revisited.
func (p *Packer) Pack(textures []*TextureInfo) ([]*Atlas, error) {
	if p.Width <= 0 || p.Height <= 0 {
		return nil, fmt.Errorf("invalid page size %dx%d", p.Width, p.Height)
	}
	if p.Margin < 0 {
		return nil, fmt.Errorf("invalid margin %d", p.Margin)
	}
	if len(textures) == 0 {
		return nil, nil
	}

	sorted := make([]*TextureInfo, len(textures))
	copy(sorted, textures)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Area() > sorted[j].Area()
	})

	for _, tex := range sorted {
		if tex.Width() > p.Width || tex.Height() > p.Height {
			return nil, &OversizedTextureError{
				Name:   tex.Name,
				Frame:  tex.Frame,
				Width:  tex.Width(),
				Height: tex.Height(),
				PageW:  p.Width,
				PageH:  p.Height,
			}
		}
	}

	atlas := NewAtlas(p.Width, p.Height)
	atlases := []*Atlas{atlas}
	for _, tex := range sorted {
		if _, ok := atlas.Insert(tex, p.Margin); ok {
			continue
		}
		atlas = NewAtlas(p.Width, p.Height)
		atlases = append(atlases, atlas)
		if _, ok := atlas.Insert(tex, p.Margin); !ok {
			return nil, fmt.Errorf("texture %s (frame %d) could not be placed on an empty page", tex.Name, tex.Frame)
		}
	}
	return atlases, nil
}
