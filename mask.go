package texpatch

import (
	"fmt"
	"image"
	"path/filepath"
	"strconv"
	"strings"
)

// maskFile is a collision mask image waiting to be imported.
type maskFile struct {
	name  string
	frame int
	img   *image.NRGBA
}

// ImportMasks replaces the collision masks of existing sprites with the
// <sprite>_<frame>.png images found under dir. Every file is validated before
// any sprite is modified: the sprite must exist, the image must have the sprite
// size and the file of the previous frame must be present as well.
func ImportMasks(l Lookup, dir string) error {
	paths, err := walkDir(dir, []string{".png"})
	if err != nil {
		return err
	}

	present := make(map[string]struct{}, len(paths))
	for _, path := range paths {
		present[strings.ToLower(filepath.Base(path))] = struct{}{}
	}

	files := make([]maskFile, 0, len(paths))
	for _, path := range paths {
		file := filepath.Base(path)
		stripped := strings.TrimSuffix(file, filepath.Ext(file))
		sep := strings.LastIndex(stripped, "_")
		if sep <= 0 {
			return fmt.Errorf("failed to get the sprite name of %s", file)
		}
		name := stripped[:sep]
		frame, err := strconv.Atoi(stripped[sep+1:])
		if err != nil {
			return fmt.Errorf("the frame index of %s could not be determined", file)
		}
		if frame < 0 {
			return fmt.Errorf("%s is using an invalid numbering scheme", name)
		}

		spr, ok := l.Sprite(name)
		if !ok {
			return fmt.Errorf("%s could not be imported as the sprite does not exist", file)
		}
		if frame > 0 {
			prev := fmt.Sprintf("%s_%d.png", name, frame-1)
			if _, ok := present[strings.ToLower(prev)]; !ok {
				return fmt.Errorf("%s is missing one or more frames, the detected missing frame is %s", name, prev)
			}
		}
		img, err := decodeImg(path)
		if err != nil {
			return err
		}
		if img.Bounds().Dx() != spr.Width || img.Bounds().Dy() != spr.Height {
			return fmt.Errorf("%s has size %dx%d, expected %dx%d",
				file, img.Bounds().Dx(), img.Bounds().Dy(), spr.Width, spr.Height)
		}
		files = append(files, maskFile{name: name, frame: frame, img: img})
	}

	for _, mf := range files {
		spr, _ := l.Sprite(mf.name)
		for len(spr.CollisionMasks) <= mf.frame {
			spr.CollisionMasks = append(spr.CollisionMasks, spr.NewMaskEntry())
		}
		spr.CollisionMasks[mf.frame].Data = maskBits(mf.img)
	}
	return nil
}
