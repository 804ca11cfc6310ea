package texpatch

import (
	"image"
	"log"

	"github.com/disintegration/imaging"
	"github.com/esimov/texpatch/imop"
	"github.com/esimov/texpatch/store"
)

// existingRegion returns the region already holding the texture, if any.
// Placeholder frame slots do not count as existing.
func existingRegion(l Lookup, tex *TextureInfo) (*store.Region, error) {
	switch tex.Class {
	case Background:
		bg, ok := l.Background(tex.Name)
		if !ok || bg.Region == nil {
			return nil, nil
		}
		return bg.Region, nil
	case Sprite:
		spr, ok := l.Sprite(tex.Name)
		if !ok || tex.Frame >= len(spr.Frames) {
			return nil, nil
		}
		region := spr.Frames[tex.Frame]
		if region == nil || region == store.Placeholder {
			return nil, nil
		}
		return region, nil
	}
	return nil, &UnknownClassificationError{Class: tex.Class}
}

// ReplaceExisting overwrites in place the regions of the textures which already
// exist in the store and returns the remaining textures, which need to be packed.
// An image whose size differs from the region it replaces gets resized. When extrude
// is positive the border around the region is refreshed with the new edge pixels,
// which requires the page to have been packed with a margin of at least extrude.
func ReplaceExisting(l Lookup, textures []*TextureInfo, extrude int, logger *log.Logger) ([]*TextureInfo, int, error) {
	var (
		fresh    []*TextureInfo
		replaced int
	)
	for _, tex := range textures {
		region, err := existingRegion(l, tex)
		if err != nil {
			return nil, 0, err
		}
		if region == nil {
			fresh = append(fresh, tex)
			continue
		}
		if err := replaceRegion(region, tex, extrude, logger); err != nil {
			return nil, 0, err
		}
		replaced++
	}
	return fresh, replaced, nil
}

func replaceRegion(region *store.Region, tex *TextureInfo, extrude int, logger *log.Logger) error {
	page, err := region.Page.Image()
	if err != nil {
		return err
	}

	src := tex.Image
	w, h := region.Rect.Dx(), region.Rect.Dy()
	if tex.Width() != w || tex.Height() != h {
		if logger != nil {
			logger.Printf("WARNING: %s has size %dx%d in the base data but is being replaced by an image of size %dx%d, "+
				"the new image will be automatically resized", tex.Name, w, h, tex.Width(), tex.Height())
		}
		src = imaging.Resize(src, w, h, imaging.NearestNeighbor)
	}

	pt := region.Rect.Min
	if extrude > 0 {
		src = Extrude(src, extrude)
		pt = pt.Sub(image.Pt(extrude, extrude))
	}
	op := imop.InitOp()
	op.Set(imop.Copy)
	op.Draw(page, src, pt)
	return nil
}
