package store

import (
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/bmp"
	"gopkg.in/yaml.v3"
)

// ManifestFile is the name of the entity graph file inside a store directory.
const ManifestFile = "manifest.yaml"

// pagesDir is the directory holding the page images inside a store directory.
const pagesDir = "pages"

// Format is the image encoding used for the page files.
type Format string

const (
	PNG Format = "png"
	BMP Format = "bmp"
)

// ParseFormat validates a page format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case PNG, BMP:
		return f, nil
	}
	return "", fmt.Errorf("unsupported page format %q", s)
}

type rect struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	W int `yaml:"w"`
	H int `yaml:"h"`
}

type pageEntry struct {
	Name   string `yaml:"name"`
	File   string `yaml:"file"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

type regionEntry struct {
	Name string `yaml:"name"`
	Page string `yaml:"page"`
	Rect rect   `yaml:"rect"`
}

type spriteEntry struct {
	Name         string   `yaml:"name"`
	Width        int      `yaml:"width"`
	Height       int      `yaml:"height"`
	MarginLeft   int      `yaml:"margin_left"`
	MarginRight  int      `yaml:"margin_right"`
	MarginTop    int      `yaml:"margin_top"`
	MarginBottom int      `yaml:"margin_bottom"`
	OriginX      int      `yaml:"origin_x"`
	OriginY      int      `yaml:"origin_y"`
	Transparent  bool     `yaml:"transparent"`
	Smooth       bool     `yaml:"smooth"`
	Preload      bool     `yaml:"preload"`
	SepMasks     string   `yaml:"sep_masks"`
	Frames       []string `yaml:"frames"`
	Masks        []string `yaml:"masks,omitempty"`
}

type backgroundEntry struct {
	Name        string `yaml:"name"`
	Region      string `yaml:"region"`
	Transparent bool   `yaml:"transparent"`
	Preload     bool   `yaml:"preload"`
}

type manifest struct {
	Pages       []pageEntry       `yaml:"pages"`
	Regions     []regionEntry     `yaml:"regions"`
	Sprites     []spriteEntry     `yaml:"sprites"`
	Backgrounds []backgroundEntry `yaml:"backgrounds"`
}

// Load reads the store kept in dir. A directory without a manifest yields an empty store.
// The page images are not decoded until they are requested.
func Load(dir string) (*Data, error) {
	buf, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return New(), nil
		}
		return nil, fmt.Errorf("could not read the manifest: %w", err)
	}

	var m manifest
	if err := yaml.Unmarshal(buf, &m); err != nil {
		return nil, fmt.Errorf("could not parse %s: %w", ManifestFile, err)
	}

	d := New()
	for _, pe := range m.Pages {
		if _, ok := d.pages[pe.Name]; ok {
			return nil, fmt.Errorf("duplicate page %q", pe.Name)
		}
		d.addPage(&Page{
			Name:   pe.Name,
			Width:  pe.Width,
			Height: pe.Height,
			File:   pe.File,
			src:    filepath.Join(dir, pagesDir, pe.File),
		})
	}
	for _, re := range m.Regions {
		if _, ok := d.regions[re.Name]; ok {
			return nil, fmt.Errorf("duplicate region %q", re.Name)
		}
		page, ok := d.pages[re.Page]
		if !ok {
			return nil, fmt.Errorf("region %q references unknown page %q", re.Name, re.Page)
		}
		d.addRegion(&Region{
			Name: re.Name,
			Page: page,
			Rect: image.Rect(re.Rect.X, re.Rect.Y, re.Rect.X+re.Rect.W, re.Rect.Y+re.Rect.H),
		})
	}
	for _, se := range m.Sprites {
		spr, created := d.CreateOrGetSprite(se.Name)
		if !created {
			return nil, fmt.Errorf("duplicate sprite %q", se.Name)
		}
		if err := se.decode(d, spr); err != nil {
			return nil, err
		}
	}
	for _, be := range m.Backgrounds {
		bg, created := d.CreateOrGetBackground(be.Name)
		if !created {
			return nil, fmt.Errorf("duplicate background %q", be.Name)
		}
		region, ok := d.regions[be.Region]
		if !ok {
			return nil, fmt.Errorf("background %q references unknown region %q", be.Name, be.Region)
		}
		bg.Region = region
		bg.Transparent = be.Transparent
		bg.Preload = be.Preload
	}
	return d, nil
}

func (se *spriteEntry) decode(d *Data, spr *Sprite) error {
	spr.Width, spr.Height = se.Width, se.Height
	spr.MarginLeft, spr.MarginRight = se.MarginLeft, se.MarginRight
	spr.MarginTop, spr.MarginBottom = se.MarginTop, se.MarginBottom
	spr.OriginX, spr.OriginY = se.OriginX, se.OriginY
	spr.Transparent, spr.Smooth, spr.Preload = se.Transparent, se.Smooth, se.Preload

	if se.SepMasks != "" {
		t, err := ParseSepMaskType(se.SepMasks)
		if err != nil {
			return fmt.Errorf("sprite %q: %w", se.Name, err)
		}
		spr.SepMasks = t
	}

	for i, name := range se.Frames {
		if name == "" {
			spr.Frames = append(spr.Frames, Placeholder)
			continue
		}
		region, ok := d.regions[name]
		if !ok {
			return fmt.Errorf("sprite %q frame %d references unknown region %q", se.Name, i, name)
		}
		spr.Frames = append(spr.Frames, region)
	}

	for i, enc := range se.Masks {
		data, err := base64.StdEncoding.DecodeString(enc)
		if err != nil {
			return fmt.Errorf("sprite %q mask %d: %w", se.Name, i, err)
		}
		spr.CollisionMasks = append(spr.CollisionMasks, &MaskEntry{Data: data})
	}
	return nil
}

// Save writes the manifest and every page image into dir using the given page format.
// Pages which were never decoded are copied as they are when the format matches.
func (d *Data) Save(dir string, format Format) error {
	if err := os.MkdirAll(filepath.Join(dir, pagesDir), 0755); err != nil {
		return fmt.Errorf("could not create the store directory: %w", err)
	}

	var m manifest
	for _, p := range d.Pages {
		if err := d.savePage(dir, p, format); err != nil {
			return err
		}
		m.Pages = append(m.Pages, pageEntry{Name: p.Name, File: p.File, Width: p.Width, Height: p.Height})
	}
	for _, r := range d.Regions {
		m.Regions = append(m.Regions, regionEntry{
			Name: r.Name,
			Page: r.Page.Name,
			Rect: rect{X: r.Rect.Min.X, Y: r.Rect.Min.Y, W: r.Rect.Dx(), H: r.Rect.Dy()},
		})
	}
	for _, s := range d.Sprites {
		m.Sprites = append(m.Sprites, encodeSprite(s))
	}
	for _, b := range d.Backgrounds {
		be := backgroundEntry{Name: b.Name, Transparent: b.Transparent, Preload: b.Preload}
		if b.Region != nil {
			be.Region = b.Region.Name
		}
		m.Backgrounds = append(m.Backgrounds, be)
	}

	err := writeFile(filepath.Join(dir, ManifestFile), func(w io.Writer) error {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(&m); err != nil {
			return err
		}
		return enc.Close()
	})
	if err != nil {
		return fmt.Errorf("could not write the manifest: %w", err)
	}
	return nil
}

// writeFile creates path and fills it with write. The file is always closed
// and a failing close is reported, since it may lose buffered data.
func writeFile(path string, write func(w io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func encodeSprite(s *Sprite) spriteEntry {
	se := spriteEntry{
		Name:         s.Name,
		Width:        s.Width,
		Height:       s.Height,
		MarginLeft:   s.MarginLeft,
		MarginRight:  s.MarginRight,
		MarginTop:    s.MarginTop,
		MarginBottom: s.MarginBottom,
		OriginX:      s.OriginX,
		OriginY:      s.OriginY,
		Transparent:  s.Transparent,
		Smooth:       s.Smooth,
		Preload:      s.Preload,
		SepMasks:     s.SepMasks.String(),
	}
	for _, f := range s.Frames {
		if f == Placeholder {
			se.Frames = append(se.Frames, "")
			continue
		}
		se.Frames = append(se.Frames, f.Name)
	}
	for _, mask := range s.CollisionMasks {
		se.Masks = append(se.Masks, base64.StdEncoding.EncodeToString(mask.Data))
	}
	return se
}

// pageFile turns a page name into a file name, e.g. "Texture 3" becomes "texture_3.png".
func pageFile(name string, format Format) string {
	base := strings.ToLower(strings.Join(strings.Fields(name), "_"))
	return base + "." + string(format)
}

func (d *Data) savePage(dir string, p *Page, format Format) error {
	file := pageFile(p.Name, format)
	dst := filepath.Join(dir, pagesDir, file)

	if !p.loaded() && p.src != "" && filepath.Ext(p.src) == "."+string(format) {
		if err := copyFile(p.src, dst); err != nil {
			return fmt.Errorf("could not copy page %s: %w", p.Name, err)
		}
		p.File = file
		return nil
	}

	img, err := p.Image()
	if err != nil {
		return err
	}
	err = writeFile(dst, func(w io.Writer) error {
		return encodePage(w, img, format)
	})
	if err != nil {
		return fmt.Errorf("could not write page %s: %w", p.Name, err)
	}
	p.File = file
	return nil
}

func encodePage(w io.Writer, img image.Image, format Format) error {
	switch format {
	case BMP:
		return bmp.Encode(w, img)
	case PNG:
		return imaging.Encode(w, img, imaging.PNG)
	}
	return fmt.Errorf("unsupported page format %q", format)
}

// copyFile copies src to dst. Copying a file onto itself is a no-op.
func copyFile(src, dst string) error {
	as, err := filepath.Abs(src)
	if err != nil {
		return err
	}
	ad, err := filepath.Abs(dst)
	if err != nil {
		return err
	}
	if as == ad {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	return writeFile(dst, func(w io.Writer) error {
		_, err := io.Copy(w, in)
		return err
	})
}
