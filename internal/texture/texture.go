// Package texture loads the train front texture.
package texture

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
)

// ErrUnsupportedFormat is returned for files that are not BMP images.
var ErrUnsupportedFormat = errors.New("unsupported texture format")

// Image is a decoded texture as tightly packed RGB rows, bottom row first,
// which is the order glTexImage2D expects.
type Image struct {
	Width  int
	Height int
	Pix    []byte
}

// Load reads a BMP file. A missing or corrupt file is an error; there is no
// fallback texture.
func Load(path string) (*Image, error) {
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".bmp" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening texture: %w", err)
	}
	defer f.Close()

	img, err := bmp.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding texture %s: %w", path, err)
	}
	return FromImage(img), nil
}

// FromImage packs any image into RGB rows, bottom row first.
func FromImage(img image.Image) *Image {
	b := img.Bounds()
	out := &Image{
		Width:  b.Dx(),
		Height: b.Dy(),
		Pix:    make([]byte, 0, b.Dx()*b.Dy()*3),
	}
	for y := b.Max.Y - 1; y >= b.Min.Y; y-- {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			out.Pix = append(out.Pix, byte(r>>8), byte(g>>8), byte(bl>>8))
		}
	}
	return out
}

// At returns the RGB triple at column x of row y, counted from the bottom.
func (i *Image) At(x, y int) (r, g, b byte) {
	o := (y*i.Width + x) * 3
	return i.Pix[o], i.Pix[o+1], i.Pix[o+2]
}
