package texpatch

import (
	"image"
	"io/fs"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Classification tells the binder which kind of entity a texture belongs to.
type Classification int

const (
	Sprite Classification = iota
	Background
)

func (c Classification) String() string {
	switch c {
	case Sprite:
		return "sprite"
	case Background:
		return "background"
	}
	return "unknown"
}

// spriteFrameRegex splits a file base name into the sprite name and the optional frame suffix.
var spriteFrameRegex = regexp.MustCompile(`^(.+?)(?:_(\d+))?$`)

// TextureInfo is a single decoded input image together with its logical identity.
type TextureInfo struct {
	Name  string
	Frame int
	Class Classification
	Path  string
	Image *image.NRGBA
}

// Width returns the width of the texture image.
func (t *TextureInfo) Width() int { return t.Image.Bounds().Dx() }

// Height returns the height of the texture image.
func (t *TextureInfo) Height() int { return t.Image.Bounds().Dy() }

// Area is used for ordering the textures before packing.
func (t *TextureInfo) Area() int { return t.Width() * t.Height() }

// ParseName parses a file name without extension as <name>[_<digits>].
// When the digits do not fit into an int the frame falls back to 0.
func ParseName(base string) (string, int, error) {
	m := spriteFrameRegex.FindStringSubmatch(base)
	if m == nil || m[1] == "" {
		return "", 0, &NamingConventionError{Path: base}
	}
	frame, err := strconv.Atoi(m[2])
	if err != nil {
		frame = 0
	}
	return m[1], frame, nil
}

// Classify derives the classification from the immediate parent directory of the file.
func Classify(path string) Classification {
	dir := filepath.Base(filepath.Dir(path))
	if strings.EqualFold(dir, "backgrounds") || strings.EqualFold(dir, "background") {
		return Background
	}
	return Sprite
}

// LoadTexture decodes a single image file and derives its name, frame and classification.
func LoadTexture(path string) (*TextureInfo, error) {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	name, frame, err := ParseName(base)
	if err != nil {
		return nil, &NamingConventionError{Path: path}
	}
	img, err := decodeImg(path)
	if err != nil {
		return nil, err
	}
	return &TextureInfo{
		Name:  name,
		Frame: frame,
		Class: Classify(path),
		Path:  path,
		Image: img,
	}, nil
}

// ScanDir loads every png file found under dir, in lexical walk order.
func ScanDir(dir string) ([]*TextureInfo, error) {
	paths, err := walkDir(dir, []string{".png"})
	if err != nil {
		return nil, err
	}

	textures := make([]*TextureInfo, 0, len(paths))
	for _, path := range paths {
		tex, err := LoadTexture(path)
		if err != nil {
			return nil, err
		}
		textures = append(textures, tex)
	}
	return textures, nil
}

// walkDir walks the directory tree in lexical order and collects
// the regular files having one of the provided extensions.
func walkDir(src string, srcExts []string) ([]string, error) {
	var paths []string

	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if isValidExtension(filepath.Ext(d.Name()), srcExts) {
			paths = append(paths, path)
		}
		return nil
	})
	return paths, err
}

// isValidExtension checks for the supported extensions, ignoring the case.
func isValidExtension(ext string, extensions []string) bool {
	for _, ex := range extensions {
		if strings.EqualFold(ex, ext) {
			return true
		}
	}
	return false
}
