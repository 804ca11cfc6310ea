// Package store holds the entity graph patched by the texture importer:
// atlas pages, the regions cut out of them and the sprites and backgrounds
// referencing those regions. Every entity is indexed by its unique name.
package store

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// SepMaskType describes how the collision masks of a sprite are evaluated.
type SepMaskType int

const (
	AxisAlignedRect SepMaskType = iota
	Precise
	RotatedRect
)

var sepMaskNames = map[SepMaskType]string{
	AxisAlignedRect: "axis-aligned-rect",
	Precise:         "precise",
	RotatedRect:     "rotated-rect",
}

func (t SepMaskType) String() string {
	if s, ok := sepMaskNames[t]; ok {
		return s
	}
	return fmt.Sprintf("SepMaskType(%d)", int(t))
}

// ParseSepMaskType is the inverse of SepMaskType.String.
func ParseSepMaskType(s string) (SepMaskType, error) {
	for t, name := range sepMaskNames {
		if name == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown collision mask type %q", s)
}

// Page is a texture page. Its pixels are decoded only when first requested.
type Page struct {
	Name   string
	Width  int
	Height int
	File   string

	src string
	img *image.NRGBA
}

// Image returns the page pixels, decoding the backing file on first access.
func (p *Page) Image() (*image.NRGBA, error) {
	if p.img != nil {
		return p.img, nil
	}
	if p.src == "" {
		p.img = image.NewNRGBA(image.Rect(0, 0, p.Width, p.Height))
		return p.img, nil
	}
	img, err := imaging.Open(p.src)
	if err != nil {
		return nil, fmt.Errorf("could not load page %s: %w", p.Name, err)
	}
	p.img = imaging.Clone(img)
	return p.img, nil
}

// SetImage replaces the page pixels.
func (p *Page) SetImage(img *image.NRGBA) {
	p.img = img
}

// loaded reports whether the pixels are held in memory.
func (p *Page) loaded() bool { return p.img != nil }

// Region is a rectangle of a page holding a single image.
type Region struct {
	Name string
	Page *Page
	Rect image.Rectangle
}

// Placeholder fills the frame slots of a sprite which were never bound to an image.
// All such slots share this single value. It has no page.
var Placeholder = &Region{Name: "placeholder"}

// MaskEntry is a bit packed collision mask, (width+7)/8 bytes per row.
type MaskEntry struct {
	Data []byte
}

// Sprite is an animated image, one region per frame.
type Sprite struct {
	Name           string
	Width          int
	Height         int
	MarginLeft     int
	MarginRight    int
	MarginTop      int
	MarginBottom   int
	OriginX        int
	OriginY        int
	Transparent    bool
	Smooth         bool
	Preload        bool
	SepMasks       SepMaskType
	Frames         []*Region
	CollisionMasks []*MaskEntry
}

// NewMaskEntry returns an empty collision mask sized to the sprite.
func (s *Sprite) NewMaskEntry() *MaskEntry {
	return &MaskEntry{Data: make([]byte, MaskSize(s.Width, s.Height))}
}

// MaskSize returns the length of a bit packed mask of the given dimensions.
func MaskSize(width, height int) int {
	return (width + 7) / 8 * height
}

// Background is a single image.
type Background struct {
	Name        string
	Region      *Region
	Transparent bool
	Preload     bool
}

// Data is the in-memory entity graph.
type Data struct {
	Pages       []*Page
	Regions     []*Region
	Sprites     []*Sprite
	Backgrounds []*Background

	pages       map[string]*Page
	regions     map[string]*Region
	sprites     map[string]*Sprite
	backgrounds map[string]*Background
}

// New returns an empty store.
func New() *Data {
	return &Data{
		pages:       make(map[string]*Page),
		regions:     make(map[string]*Region),
		sprites:     make(map[string]*Sprite),
		backgrounds: make(map[string]*Background),
	}
}

// PageCount returns the number of pages.
func (d *Data) PageCount() int { return len(d.Pages) }

// RegionCount returns the number of regions.
func (d *Data) RegionCount() int { return len(d.Regions) }

// Page looks up a page by name.
func (d *Data) Page(name string) (*Page, bool) {
	p, ok := d.pages[name]
	return p, ok
}

// Region looks up a region by name.
func (d *Data) Region(name string) (*Region, bool) {
	r, ok := d.regions[name]
	return r, ok
}

// Sprite looks up a sprite by name.
func (d *Data) Sprite(name string) (*Sprite, bool) {
	s, ok := d.sprites[name]
	return s, ok
}

// Background looks up a background by name.
func (d *Data) Background(name string) (*Background, bool) {
	b, ok := d.backgrounds[name]
	return b, ok
}

// CreateOrGetSprite returns the sprite with the given name, creating an empty one
// if it does not exist yet. The boolean reports whether the sprite was created.
func (d *Data) CreateOrGetSprite(name string) (*Sprite, bool) {
	if s, ok := d.sprites[name]; ok {
		return s, false
	}
	s := &Sprite{Name: name}
	d.sprites[name] = s
	d.Sprites = append(d.Sprites, s)
	return s, true
}

// CreateOrGetBackground returns the background with the given name, creating it
// if it does not exist yet. The boolean reports whether the background was created.
func (d *Data) CreateOrGetBackground(name string) (*Background, bool) {
	if b, ok := d.backgrounds[name]; ok {
		return b, false
	}
	b := &Background{Name: name}
	d.backgrounds[name] = b
	d.Backgrounds = append(d.Backgrounds, b)
	return b, true
}

// EnsureFrameSlots grows the frame list of the sprite to at least count entries.
// New slots reference the shared Placeholder.
func (d *Data) EnsureFrameSlots(s *Sprite, count int) {
	for len(s.Frames) < count {
		s.Frames = append(s.Frames, Placeholder)
	}
}

// SetFrame binds a region to an existing frame slot.
func (d *Data) SetFrame(s *Sprite, index int, r *Region) error {
	if index < 0 || index >= len(s.Frames) {
		return fmt.Errorf("sprite %s has %d frame slots, cannot set frame %d", s.Name, len(s.Frames), index)
	}
	s.Frames[index] = r
	return nil
}

// PageName returns the name given to the page allocated with sequence number seq.
func PageName(seq int) string { return fmt.Sprintf("Texture %d", seq) }

// RegionName returns the name given to the region allocated with sequence number seq.
func RegionName(seq int) string { return fmt.Sprintf("PageItem %d", seq) }

// AllocatePage adds a new transparent page named after the sequence number.
// The caller owns the sequence, a number already in use is rejected.
func (d *Data) AllocatePage(seq, width, height int) (*Page, error) {
	name := PageName(seq)
	if _, ok := d.pages[name]; ok {
		return nil, fmt.Errorf("page %q already exists", name)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid page size %dx%d", width, height)
	}
	p := &Page{Name: name, Width: width, Height: height}
	d.addPage(p)
	return p, nil
}

// AllocateRegion adds a new region of page named after the sequence number.
func (d *Data) AllocateRegion(seq int, page *Page, rect image.Rectangle) (*Region, error) {
	name := RegionName(seq)
	if _, ok := d.regions[name]; ok {
		return nil, fmt.Errorf("region %q already exists", name)
	}
	if page == nil {
		return nil, fmt.Errorf("region %q has no page", name)
	}
	if rect.Empty() || !rect.In(image.Rect(0, 0, page.Width, page.Height)) {
		return nil, fmt.Errorf("region %q %v is outside of page %s", name, rect, page.Name)
	}
	r := &Region{Name: name, Page: page, Rect: rect}
	d.addRegion(r)
	return r, nil
}

func (d *Data) addPage(p *Page) {
	d.pages[p.Name] = p
	d.Pages = append(d.Pages, p)
}

func (d *Data) addRegion(r *Region) {
	d.regions[r.Name] = r
	d.Regions = append(d.Regions, r)
}
