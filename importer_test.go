package texpatch

import (
	"bytes"
	"errors"
	"log"
	"path/filepath"
	"testing"

	"github.com/esimov/texpatch/store"
	"github.com/stretchr/testify/assert"
)

func graphicsDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "sprites", "spr_hero_0.png"), newImage(4, 4, red))
	writePNG(t, filepath.Join(dir, "sprites", "spr_hero_1.png"), newImage(4, 4, green))
	writePNG(t, filepath.Join(dir, "backgrounds", "bg_sky.png"), newImage(16, 8, blue))
	return dir
}

func TestImporter_Import(t *testing.T) {
	var buf bytes.Buffer
	im := NewImporter()
	im.PageSize = 64
	im.Logger = log.New(&buf, "", 0)

	d := store.New()
	report, err := im.Import(d, graphicsDir(t))
	assert.NoError(t, err)
	assert.Equal(t, 0, report.Replaced)
	assert.Equal(t, 3, report.Packed)
	assert.Equal(t, 1, report.Pages)
	assert.Empty(t, report.Overlays)
	assert.Contains(t, buf.String(), "Texture 0")

	assert.Len(t, d.Pages, 1)
	assert.Len(t, d.Regions, 3)

	bg, ok := d.Background("bg_sky")
	assert.True(t, ok)
	assert.Equal(t, 16, bg.Region.Rect.Dx())
	assert.Equal(t, 8, bg.Region.Rect.Dy())

	spr, ok := d.Sprite("spr_hero")
	assert.True(t, ok)
	assert.Len(t, spr.Frames, 2)
	assert.Equal(t, 4, spr.Width)

	img, err := d.Pages[0].Image()
	assert.NoError(t, err)
	pt := bg.Region.Rect.Min
	assert.Equal(t, rgba(blue), pixel(img, pt.X, pt.Y))
	pt = spr.Frames[0].Rect.Min
	assert.Equal(t, rgba(red), pixel(img, pt.X+3, pt.Y+3))
	pt = spr.Frames[1].Rect.Min
	assert.Equal(t, rgba(green), pixel(img, pt.X, pt.Y))
}

func TestImporter_ReplaceOnSecondImport(t *testing.T) {
	im := NewImporter()
	im.PageSize = 64

	d := store.New()
	_, err := im.Import(d, graphicsDir(t))
	assert.NoError(t, err)

	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "sprites", "spr_hero_1.png"), newImage(4, 4, white))
	writePNG(t, filepath.Join(dir, "sprites", "spr_hero_3.png"), newImage(4, 4, white))

	report, err := im.Import(d, dir)
	assert.NoError(t, err)
	assert.Equal(t, 1, report.Replaced)
	assert.Equal(t, 1, report.Packed)
	assert.Equal(t, 1, report.Pages)

	assert.Equal(t, "Texture 1", d.Pages[1].Name)
	assert.Equal(t, "PageItem 3", d.Regions[3].Name)

	spr, _ := d.Sprite("spr_hero")
	assert.Len(t, spr.Frames, 4)
	assert.Same(t, store.Placeholder, spr.Frames[2])
	assert.Same(t, d.Regions[3], spr.Frames[3])

	img, _ := d.Pages[0].Image()
	pt := spr.Frames[1].Rect.Min
	assert.Equal(t, rgba(white), pixel(img, pt.X, pt.Y))
	pt = spr.Frames[0].Rect.Min
	assert.Equal(t, rgba(red), pixel(img, pt.X, pt.Y))
}

func TestImporter_Oversized(t *testing.T) {
	im := NewImporter()
	im.PageSize = 8

	d := store.New()
	_, err := im.Import(d, graphicsDir(t))

	var oerr *OversizedTextureError
	assert.True(t, errors.As(err, &oerr))
	assert.Equal(t, "bg_sky", oerr.Name)
	assert.Empty(t, d.Pages)
	assert.Empty(t, d.Regions)
}

func TestImporter_Debug(t *testing.T) {
	im := NewImporter()
	im.PageSize = 16
	im.Debug = true

	report, err := im.Import(store.New(), graphicsDir(t))
	assert.NoError(t, err)
	assert.Equal(t, report.Pages, len(report.Overlays))
	for _, overlay := range report.Overlays {
		assert.Equal(t, 16, overlay.Bounds().Dx())
	}
}

func TestImporter_InvalidSettings(t *testing.T) {
	im := NewImporter()
	im.Extrude = -1
	_, err := im.Import(store.New(), t.TempDir())
	assert.Error(t, err)

	im = NewImporter()
	im.Margin = -2
	_, err = im.Import(store.New(), t.TempDir())
	assert.Error(t, err)
}

func TestImporter_ExtrudeLargerThanMargin(t *testing.T) {
	for _, tc := range []struct{ margin, extrude int }{{1, 2}, {0, 1}} {
		im := NewImporter()
		im.PageSize = 64
		im.Margin = tc.margin
		im.Extrude = tc.extrude

		d := store.New()
		_, err := im.Import(d, graphicsDir(t))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "exceeds the margin")
		assert.Empty(t, d.Pages)
	}

	im := NewImporter()
	im.PageSize = 64
	im.Margin = 2
	im.Extrude = 2
	_, err := im.Import(store.New(), graphicsDir(t))
	assert.NoError(t, err)
}

func TestImporter_SaveAndReload(t *testing.T) {
	im := NewImporter()
	im.PageSize = 64

	d := store.New()
	_, err := im.Import(d, graphicsDir(t))
	assert.NoError(t, err)

	out := t.TempDir()
	assert.NoError(t, d.Save(out, store.PNG))

	loaded, err := store.Load(out)
	assert.NoError(t, err)
	spr, ok := loaded.Sprite("spr_hero")
	assert.True(t, ok)

	img, err := spr.Frames[1].Page.Image()
	assert.NoError(t, err)
	pt := spr.Frames[1].Rect.Min
	assert.Equal(t, rgba(green), pixel(img, pt.X, pt.Y))
}
