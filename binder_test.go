package texpatch

import (
	"errors"
	"image"
	"testing"

	"github.com/esimov/texpatch/store"
	"github.com/stretchr/testify/assert"
)

func allocRegion(t *testing.T, d *store.Data, seq int, page *store.Page, r image.Rectangle) *store.Region {
	t.Helper()
	region, err := d.AllocateRegion(seq, page, r)
	if err != nil {
		t.Fatalf("could not allocate region: %v", err)
	}
	return region
}

func TestBinder_NewSpriteGapFrames(t *testing.T) {
	d := store.New()
	page, err := d.AllocatePage(0, 16, 16)
	assert.NoError(t, err)
	region := allocRegion(t, d, 0, page, image.Rect(0, 0, 3, 2))

	tex := newTexture("spr_walk", 3, 3, 2)
	assert.NoError(t, NewBinder(d).Bind(tex, region))

	spr, ok := d.Sprite("spr_walk")
	assert.True(t, ok)
	assert.Len(t, spr.Frames, 4)
	assert.Same(t, region, spr.Frames[3])
	for i := 0; i < 3; i++ {
		assert.Same(t, store.Placeholder, spr.Frames[i])
	}
}

func TestBinder_NewSpriteDefaults(t *testing.T) {
	d := store.New()
	page, _ := d.AllocatePage(0, 16, 16)
	region := allocRegion(t, d, 0, page, image.Rect(0, 0, 10, 3))

	assert.NoError(t, NewBinder(d).Bind(newTexture("spr_door", 0, 10, 3), region))

	spr, _ := d.Sprite("spr_door")
	assert.Equal(t, 10, spr.Width)
	assert.Equal(t, 3, spr.Height)
	assert.Equal(t, 0, spr.MarginLeft)
	assert.Equal(t, 9, spr.MarginRight)
	assert.Equal(t, 0, spr.MarginTop)
	assert.Equal(t, 2, spr.MarginBottom)
	assert.Equal(t, 0, spr.OriginX)
	assert.Equal(t, 0, spr.OriginY)

	assert.Len(t, spr.CollisionMasks, 1)
	assert.Len(t, spr.CollisionMasks[0].Data, store.MaskSize(10, 3))
	for _, b := range spr.CollisionMasks[0].Data {
		assert.Equal(t, byte(0xff), b)
	}
}

func TestBinder_ExistingSpriteKeepsOtherFrames(t *testing.T) {
	d := store.New()
	page, _ := d.AllocatePage(0, 16, 16)
	r0 := allocRegion(t, d, 0, page, image.Rect(0, 0, 2, 2))
	r1 := allocRegion(t, d, 1, page, image.Rect(4, 0, 6, 2))
	r2 := allocRegion(t, d, 2, page, image.Rect(8, 0, 10, 2))

	b := NewBinder(d)
	assert.NoError(t, b.Bind(newTexture("spr", 0, 2, 2), r0))
	assert.NoError(t, b.Bind(newTexture("spr", 2, 2, 2), r2))

	spr, _ := d.Sprite("spr")
	spr.OriginX = 5
	assert.NoError(t, b.Bind(newTexture("spr", 1, 2, 2), r1))

	assert.Equal(t, []*store.Region{r0, r1, r2}, spr.Frames)
	// geometry is only initialized on creation
	assert.Equal(t, 5, spr.OriginX)
	assert.Len(t, d.Sprites, 1)
}

func TestBinder_Background(t *testing.T) {
	d := store.New()
	page, _ := d.AllocatePage(0, 16, 16)
	first := allocRegion(t, d, 0, page, image.Rect(0, 0, 8, 8))
	second := allocRegion(t, d, 1, page, image.Rect(8, 8, 16, 16))

	tex := newTexture("bg_sky", 0, 8, 8)
	tex.Class = Background

	b := NewBinder(d)
	assert.NoError(t, b.Bind(tex, first))
	assert.NoError(t, b.Bind(tex, second))

	bg, ok := d.Background("bg_sky")
	assert.True(t, ok)
	assert.Same(t, second, bg.Region)
	assert.Len(t, d.Backgrounds, 1)
	assert.Empty(t, d.Sprites)
}

func TestBinder_UnknownClassification(t *testing.T) {
	d := store.New()
	page, _ := d.AllocatePage(0, 4, 4)
	region := allocRegion(t, d, 0, page, image.Rect(0, 0, 1, 1))

	tex := newTexture("odd", 0, 1, 1)
	tex.Class = Classification(7)

	err := NewBinder(d).Bind(tex, region)
	var cerr *UnknownClassificationError
	assert.True(t, errors.As(err, &cerr))
	assert.Equal(t, Classification(7), cerr.Class)
}

func TestBinder_SequenceStartsAtStoreCounts(t *testing.T) {
	d := store.New()
	for i := 0; i < 2; i++ {
		_, err := d.AllocatePage(i, 8, 8)
		assert.NoError(t, err)
	}
	for i := 0; i < 3; i++ {
		allocRegion(t, d, i, d.Pages[0], image.Rect(i, 0, i+1, 1))
	}

	atlases, err := NewPacker(8, 1).Pack([]*TextureInfo{
		newTexture("spr_a", 0, 2, 2),
		newTexture("spr_b", 0, 2, 2),
	})
	assert.NoError(t, err)

	b := NewBinder(d)
	page, err := b.BindAtlas(atlases[0], Rasterize(atlases[0], 0))
	assert.NoError(t, err)
	assert.Equal(t, "Texture 2", page.Name)
	assert.Equal(t, "PageItem 3", d.Regions[3].Name)
	assert.Equal(t, "PageItem 4", d.Regions[4].Name)

	spr, _ := d.Sprite("spr_b")
	assert.Same(t, d.Regions[4], spr.Frames[0])
	assert.Equal(t, atlases[0].Nodes[1].Rect(), spr.Frames[0].Rect)
	assert.Same(t, page, spr.Frames[0].Page)

	img, err := page.Image()
	assert.NoError(t, err)
	assert.Equal(t, rgba(white), pixel(img, 0, 0))
}

func TestBinder_NameAlreadyTaken(t *testing.T) {
	d := store.New()
	_, err := d.AllocatePage(1, 8, 8)
	assert.NoError(t, err)

	// the store holds a single page, so the binder starts at "Texture 1"
	atlases, err := NewPacker(8, 1).Pack([]*TextureInfo{newTexture("spr", 0, 1, 1)})
	assert.NoError(t, err)
	_, err = NewBinder(d).BindAtlas(atlases[0], Rasterize(atlases[0], 0))
	assert.Error(t, err)
}
