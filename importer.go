package texpatch

import (
	"fmt"
	"image"
	"io"
	"log"
)

// DefaultMargin is the free space in pixels required around a newly placed texture.
const DefaultMargin = 1

// Importer options
type Importer struct {
	PageSize int
	Margin   int
	Extrude  int
	Debug    bool
	Logger   *log.Logger
}

// Report summarizes a finished import.
type Report struct {
	Replaced int
	Packed   int
	Pages    int
	// Overlays holds one highlighted copy per new page, only in debug mode.
	Overlays []*image.NRGBA
}

// NewImporter returns an importer with the default settings.
func NewImporter() *Importer {
	return &Importer{
		PageSize: DefaultPageSize,
		Margin:   DefaultMargin,
		Extrude:  DefaultExtrude,
	}
}

func (im *Importer) logger() *log.Logger {
	if im.Logger == nil {
		return log.New(io.Discard, "", 0)
	}
	return im.Logger
}

// Import is the main entry point of the texture import. It loads every image
// found under dir, overwrites the regions of the images already known by the
// store and packs the remaining ones onto new pages bound to their sprites and
// backgrounds. The steps run one after the other; when one of them fails the
// changes already applied to the store are kept.
func (im *Importer) Import(s Store, dir string) (*Report, error) {
	if im.Extrude < 0 {
		return nil, fmt.Errorf("invalid extrude %d", im.Extrude)
	}
	// The extruded border of a texture lands in the free space left by the margin.
	if im.Extrude > im.Margin {
		return nil, fmt.Errorf("extrude %d exceeds the margin %d", im.Extrude, im.Margin)
	}
	logger := im.logger()

	textures, err := ScanDir(dir)
	if err != nil {
		return nil, err
	}
	logger.Printf("found %d images in %s", len(textures), dir)

	fresh, replaced, err := ReplaceExisting(s, textures, im.Extrude, logger)
	if err != nil {
		return nil, err
	}
	logger.Printf("replaced %d existing images in place", replaced)

	packer := NewPacker(im.PageSize, im.Margin)
	atlases, err := packer.Pack(fresh)
	if err != nil {
		return nil, err
	}

	report := &Report{Replaced: replaced, Packed: len(fresh), Pages: len(atlases)}
	binder := NewBinder(s)
	for _, atlas := range atlases {
		img := Rasterize(atlas, im.Extrude)
		page, err := binder.BindAtlas(atlas, img)
		if err != nil {
			return report, err
		}
		logger.Printf("%s: %d images, %.1f%% used", page.Name, len(atlas.Nodes),
			float64(atlas.Occupied())*100/float64(atlas.Width*atlas.Height))

		if im.Debug {
			report.Overlays = append(report.Overlays, DebugOverlay(img, atlas))
		}
	}
	return report, nil
}
