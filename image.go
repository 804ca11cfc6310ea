package texpatch

import (
	"fmt"
	"image"
	"os"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/esimov/texpatch/utils"
)

// decodeImg decodes an image file to type *image.NRGBA with min-point at (0, 0).
func decodeImg(src string) (*image.NRGBA, error) {
	ctype, err := utils.DetectContentType(src)
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", src, err)
	}
	if !strings.Contains(ctype, "image") {
		return nil, fmt.Errorf("%s is not an image file (%s)", src, ctype)
	}

	file, err := os.Open(src)
	if err != nil {
		return nil, fmt.Errorf("could not open the image file: %w", err)
	}
	defer file.Close()

	img, err := imaging.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("could not decode %s: %w", src, err)
	}

	return imaging.Clone(img), nil
}

// Extrude returns a copy of src surrounded by a border of n pixels,
// where every border pixel repeats the nearest edge pixel of the source.
func Extrude(src *image.NRGBA, n int) *image.NRGBA {
	if n <= 0 {
		return src
	}
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, w+2*n, h+2*n))

	for dstY := 0; dstY < h+2*n; dstY++ {
		srcY := b.Min.Y + utils.Clamp(dstY-n, 0, h-1)
		di := dst.PixOffset(0, dstY)
		for dstX := 0; dstX < w+2*n; dstX++ {
			srcX := b.Min.X + utils.Clamp(dstX-n, 0, w-1)
			si := src.PixOffset(srcX, srcY)
			copy(dst.Pix[di:di+4], src.Pix[si:si+4])
			di += 4
		}
	}
	return dst
}

// luminance returns the perceived brightness of the pixel at (x, y).
func luminance(src *image.NRGBA, x, y int) uint8 {
	i := src.PixOffset(x, y)
	r, g, b := float32(src.Pix[i]), float32(src.Pix[i+1]), float32(src.Pix[i+2])
	return uint8(r*0.299 + g*0.587 + b*0.114)
}

// maskBits converts an image to a bit packed collision mask.
// A pixel is solid when it is visible and brighter than the mid gray.
// Rows are padded to whole bytes, the most significant bit comes first.
func maskBits(src *image.NRGBA) []byte {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	stride := (w + 7) / 8
	data := make([]byte, stride*h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			px, py := b.Min.X+x, b.Min.Y+y
			if src.Pix[src.PixOffset(px, py)+3] == 0 {
				continue
			}
			if luminance(src, px, py) > 127 {
				data[y*stride+x/8] |= 0x80 >> (x % 8)
			}
		}
	}
	return data
}
