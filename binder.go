package texpatch

import (
	"fmt"
	"image"

	"github.com/esimov/texpatch/store"
)

// Lookup gives access to the entities already present in the data store.
type Lookup interface {
	Sprite(name string) (*store.Sprite, bool)
	Background(name string) (*store.Background, bool)
}

// Store is the entity graph updated by the importer. It is implemented by *store.Data.
type Store interface {
	Lookup
	PageCount() int
	RegionCount() int
	CreateOrGetBackground(name string) (*store.Background, bool)
	CreateOrGetSprite(name string) (*store.Sprite, bool)
	EnsureFrameSlots(s *store.Sprite, count int)
	SetFrame(s *store.Sprite, index int, r *store.Region) error
	AllocatePage(seq, width, height int) (*store.Page, error)
	AllocateRegion(seq int, page *store.Page, rect image.Rectangle) (*store.Region, error)
}

var _ Store = (*store.Data)(nil)

// Binder attaches the packed regions to sprites and backgrounds.
// The page and region sequences start at the counts found in the store
// when the binder is created and grow with every allocation.
type Binder struct {
	store     Store
	pageSeq   int
	regionSeq int
}

// NewBinder creates a binder writing into s.
func NewBinder(s Store) *Binder {
	return &Binder{
		store:     s,
		pageSeq:   s.PageCount(),
		regionSeq: s.RegionCount(),
	}
}

// BindAtlas allocates a page holding img, then a region per node, and binds every region.
func (b *Binder) BindAtlas(a *Atlas, img *image.NRGBA) (*store.Page, error) {
	page, err := b.store.AllocatePage(b.pageSeq, a.Width, a.Height)
	if err != nil {
		return nil, err
	}
	b.pageSeq++
	page.SetImage(img)

	for _, node := range a.Nodes {
		region, err := b.store.AllocateRegion(b.regionSeq, page, node.Rect())
		if err != nil {
			return nil, err
		}
		b.regionSeq++
		if err := b.Bind(node.Texture, region); err != nil {
			return nil, err
		}
	}
	return page, nil
}

// Bind attaches the region to the entity named after the texture.
func (b *Binder) Bind(tex *TextureInfo, region *store.Region) error {
	switch tex.Class {
	case Background:
		bg, _ := b.store.CreateOrGetBackground(tex.Name)
		bg.Region = region
		return nil
	case Sprite:
		spr, created := b.store.CreateOrGetSprite(tex.Name)
		if created {
			initSprite(spr, tex.Width(), tex.Height())
		}
		b.store.EnsureFrameSlots(spr, tex.Frame+1)
		if err := b.store.SetFrame(spr, tex.Frame, region); err != nil {
			return fmt.Errorf("could not bind %s: %w", tex.Path, err)
		}
		return nil
	}
	return &UnknownClassificationError{Class: tex.Class}
}

// initSprite gives a new sprite margins spanning the whole image, the origin
// in the top-left corner and a single fully solid collision mask.
func initSprite(spr *store.Sprite, w, h int) {
	spr.Width, spr.Height = w, h
	spr.MarginLeft, spr.MarginRight = 0, w-1
	spr.MarginTop, spr.MarginBottom = 0, h-1
	spr.OriginX, spr.OriginY = 0, 0

	mask := spr.NewMaskEntry()
	for i := range mask.Data {
		mask.Data[i] = 0xff
	}
	spr.CollisionMasks = []*store.MaskEntry{mask}
}
