package texpatch

import (
	"fmt"
	"os"

	"github.com/esimov/texpatch/store"
	"gopkg.in/yaml.v3"
)

// Margins of the sprite bounding box.
type Margins struct {
	Left   *int `yaml:"left"`
	Right  *int `yaml:"right"`
	Top    *int `yaml:"top"`
	Bottom *int `yaml:"bottom"`
}

// Origin of the sprite.
type Origin struct {
	X *int `yaml:"x"`
	Y *int `yaml:"y"`
}

// SpriteOptions changes the properties of an existing sprite.
// Only the fields present in the file are applied.
type SpriteOptions struct {
	Name        string  `yaml:"name"`
	Margins     Margins `yaml:"margins"`
	Origin      Origin  `yaml:"origin"`
	Transparent *bool   `yaml:"transparent"`
	Smooth      *bool   `yaml:"smooth"`
	Preload     *bool   `yaml:"preload"`
	SepMasks    *string `yaml:"sep_masks"`
}

type spriteOptionsFile struct {
	Sprites []SpriteOptions `yaml:"sprites"`
}

// LoadSpriteOptions reads a sprite options file.
func LoadSpriteOptions(path string) ([]SpriteOptions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read the sprite options: %w", err)
	}

	var f spriteOptionsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("could not parse %s: %w", path, err)
	}
	for i, o := range f.Sprites {
		if o.Name == "" {
			return nil, fmt.Errorf("%s: entry %d has no sprite name", path, i)
		}
	}
	return f.Sprites, nil
}

// ApplySpriteOptions updates the referenced sprites. Nothing is modified
// if one of the entries is invalid.
func ApplySpriteOptions(l Lookup, opts []SpriteOptions) error {
	sprites := make([]*store.Sprite, len(opts))
	sepMasks := make([]store.SepMaskType, len(opts))
	for i, o := range opts {
		spr, ok := l.Sprite(o.Name)
		if !ok {
			return fmt.Errorf("could not find sprite with name %s", o.Name)
		}
		sprites[i] = spr
		if o.SepMasks != nil {
			t, err := store.ParseSepMaskType(*o.SepMasks)
			if err != nil {
				return fmt.Errorf("sprite %s: %w", o.Name, err)
			}
			sepMasks[i] = t
		}
	}

	for i, o := range opts {
		spr := sprites[i]
		setInt(&spr.MarginLeft, o.Margins.Left)
		setInt(&spr.MarginRight, o.Margins.Right)
		setInt(&spr.MarginTop, o.Margins.Top)
		setInt(&spr.MarginBottom, o.Margins.Bottom)
		setInt(&spr.OriginX, o.Origin.X)
		setInt(&spr.OriginY, o.Origin.Y)
		setBool(&spr.Transparent, o.Transparent)
		setBool(&spr.Smooth, o.Smooth)
		setBool(&spr.Preload, o.Preload)
		if o.SepMasks != nil {
			spr.SepMasks = sepMasks[i]
		}
	}
	return nil
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
