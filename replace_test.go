package texpatch

import (
	"bytes"
	"image"
	"log"
	"testing"

	"github.com/esimov/texpatch/store"
	"github.com/stretchr/testify/assert"
)

// storeWithSprite returns a store holding a 8x8 page and a sprite named spr
// whose frame 0 is the 2x2 region at (2,2).
func storeWithSprite(t *testing.T) (*store.Data, *store.Region) {
	t.Helper()
	d := store.New()
	page, err := d.AllocatePage(0, 8, 8)
	assert.NoError(t, err)
	page.SetImage(newImage(8, 8, blue))

	region := allocRegion(t, d, 0, page, image.Rect(2, 2, 4, 4))
	assert.NoError(t, NewBinder(d).Bind(newTexture("spr", 0, 2, 2), region))
	return d, region
}

func TestReplace_InPlace(t *testing.T) {
	d, region := storeWithSprite(t)

	tex := newTexture("spr", 0, 2, 2)
	tex.Image = newImage(2, 2, red)

	var buf bytes.Buffer
	fresh, replaced, err := ReplaceExisting(d, []*TextureInfo{tex}, 0, log.New(&buf, "", 0))
	assert.NoError(t, err)
	assert.Empty(t, fresh)
	assert.Equal(t, 1, replaced)
	assert.Empty(t, buf.String())

	img, _ := region.Page.Image()
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			want := blue
			if image.Pt(x, y).In(region.Rect) {
				want = red
			}
			assert.Equal(t, rgba(want), pixel(img, x, y), "pixel (%d,%d)", x, y)
		}
	}
	// the region keeps its identity and geometry
	spr, _ := d.Sprite("spr")
	assert.Same(t, region, spr.Frames[0])
	assert.Equal(t, image.Rect(2, 2, 4, 4), region.Rect)
}

func TestReplace_ResizesWithWarning(t *testing.T) {
	d, region := storeWithSprite(t)

	tex := newTexture("spr", 0, 4, 4)
	tex.Image = newImage(4, 4, green)

	var buf bytes.Buffer
	_, replaced, err := ReplaceExisting(d, []*TextureInfo{tex}, 0, log.New(&buf, "", 0))
	assert.NoError(t, err)
	assert.Equal(t, 1, replaced)
	assert.Contains(t, buf.String(), "WARNING")
	assert.Contains(t, buf.String(), "spr")

	img, _ := region.Page.Image()
	assert.Equal(t, rgba(green), pixel(img, 2, 2))
	assert.Equal(t, rgba(green), pixel(img, 3, 3))
	assert.Equal(t, rgba(blue), pixel(img, 4, 4))
	assert.Equal(t, rgba(blue), pixel(img, 1, 1))
}

func TestReplace_FreshTextures(t *testing.T) {
	d, _ := storeWithSprite(t)
	b := NewBinder(d)

	page, err := d.AllocatePage(1, 8, 8)
	assert.NoError(t, err)
	gap := allocRegion(t, d, 1, page, image.Rect(0, 0, 2, 2))
	// frame 3 leaves frames 1 and 2 as placeholders
	assert.NoError(t, b.Bind(newTexture("spr", 3, 2, 2), gap))

	textures := []*TextureInfo{
		newTexture("spr", 2, 2, 2),   // placeholder slot
		newTexture("spr", 9, 2, 2),   // beyond the frame list
		newTexture("other", 0, 2, 2), // unknown sprite
	}
	bg := newTexture("bg_sky", 0, 2, 2)
	bg.Class = Background
	textures = append(textures, bg)

	fresh, replaced, err := ReplaceExisting(d, textures, 0, nil)
	assert.NoError(t, err)
	assert.Equal(t, 0, replaced)
	assert.Equal(t, textures, fresh)
}

func TestReplace_Background(t *testing.T) {
	d := store.New()
	page, _ := d.AllocatePage(0, 4, 4)
	region := allocRegion(t, d, 0, page, image.Rect(0, 0, 4, 4))

	bg := newTexture("bg_sky", 0, 4, 4)
	bg.Class = Background
	assert.NoError(t, NewBinder(d).Bind(bg, region))

	bg = newTexture("bg_sky", 0, 4, 4)
	bg.Class = Background
	bg.Image = newImage(4, 4, red)

	fresh, replaced, err := ReplaceExisting(d, []*TextureInfo{bg}, 0, nil)
	assert.NoError(t, err)
	assert.Empty(t, fresh)
	assert.Equal(t, 1, replaced)

	img, _ := page.Image()
	assert.Equal(t, rgba(red), pixel(img, 3, 3))
}

func TestReplace_UnknownClassification(t *testing.T) {
	tex := newTexture("odd", 0, 1, 1)
	tex.Class = Classification(5)

	_, _, err := ReplaceExisting(store.New(), []*TextureInfo{tex}, 0, nil)
	assert.Error(t, err)
}

func TestReplace_RefreshesExtrudedBorder(t *testing.T) {
	d, region := storeWithSprite(t)

	tex := newTexture("spr", 0, 2, 2)
	tex.Image = newImage(2, 2, red)

	_, replaced, err := ReplaceExisting(d, []*TextureInfo{tex}, 1, nil)
	assert.NoError(t, err)
	assert.Equal(t, 1, replaced)

	img, _ := region.Page.Image()
	border := image.Rect(1, 1, 5, 5)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			want := blue
			if image.Pt(x, y).In(border) {
				want = red
			}
			assert.Equal(t, rgba(want), pixel(img, x, y), "pixel (%d,%d)", x, y)
		}
	}
}
