package platform

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// MaxIconSize bounds the edge length of window and tray icons.
const MaxIconSize = 256

// Icon is an RGBA image in row-major order.
type Icon struct {
	RGBA   []byte
	Width  int
	Height int
}

// NewIcon decodes a PNG, JPEG, GIF, BMP or TIFF image into an icon.
func NewIcon(data []byte) (Icon, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return Icon{}, fmt.Errorf("decode icon: %w", err)
	}
	return IconFromImage(img), nil
}

// LoadIcon reads an icon from an image file.
func LoadIcon(path string) (Icon, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return Icon{}, fmt.Errorf("open icon %s: %w", path, err)
	}
	return IconFromImage(img), nil
}

// IconFromImage converts img, shrinking it to fit MaxIconSize.
func IconFromImage(img image.Image) Icon {
	b := img.Bounds()
	var nrgba *image.NRGBA
	if b.Dx() > MaxIconSize || b.Dy() > MaxIconSize {
		nrgba = imaging.Fit(img, MaxIconSize, MaxIconSize, imaging.Lanczos)
	} else {
		nrgba = imaging.Clone(img)
	}
	return Icon{
		RGBA:   nrgba.Pix,
		Width:  nrgba.Rect.Dx(),
		Height: nrgba.Rect.Dy(),
	}
}

// ARGB packs the pixels as 0xAARRGGBB words, the layout of _NET_WM_ICON.
func (i Icon) ARGB() []uint {
	out := make([]uint, 0, i.Width*i.Height)
	for p := 0; p+3 < len(i.RGBA); p += 4 {
		r, g, b, a := uint(i.RGBA[p]), uint(i.RGBA[p+1]), uint(i.RGBA[p+2]), uint(i.RGBA[p+3])
		out = append(out, a<<24|r<<16|g<<8|b)
	}
	return out
}
