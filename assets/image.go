// Package assets loads the rasters and fonts a compositing session needs:
// the creator's template image, the participant's photo, and the font
// sources text fields are drawn with.
package assets

import (
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
	"github.com/gogpu/gg"

	// Template and photo uploads arrive as PNG, JPEG or WebP.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// MaxUploadDim bounds either dimension of a decoded upload. Phone photos
// commonly exceed template resolution several times over; downscaling once
// at load time keeps every subsequent re-render cheap without visible
// quality loss at export size.
const MaxUploadDim = 4096

// Image is a decoded, immutable raster. It keeps both the standard image
// (for resampling) and the gg buffer (for drawing) so neither conversion
// happens per frame.
type Image struct {
	src image.Image
	buf *gg.ImageBuf
	w   int
	h   int
}

// Decode reads and decodes a raster from r, downscaling anything larger
// than MaxUploadDim on its longest side.
func Decode(r io.Reader) (*Image, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("assets: decode image: %w", err)
	}
	return FromImage(src), nil
}

// FromImage wraps an already decoded image, applying the same size bound
// as Decode.
func FromImage(src image.Image) *Image {
	b := src.Bounds()
	if b.Dx() > MaxUploadDim || b.Dy() > MaxUploadDim {
		src = imaging.Fit(src, MaxUploadDim, MaxUploadDim, imaging.Lanczos)
		b = src.Bounds()
	}
	return &Image{
		src: src,
		buf: gg.ImageBufFromImage(src),
		w:   b.Dx(),
		h:   b.Dy(),
	}
}

// Width returns the raster width in pixels.
func (im *Image) Width() int { return im.w }

// Height returns the raster height in pixels.
func (im *Image) Height() int { return im.h }

// Aspect returns width divided by height.
func (im *Image) Aspect() float64 {
	if im.h == 0 {
		return 1
	}
	return float64(im.w) / float64(im.h)
}

// Std returns the image for resampling operations.
func (im *Image) Std() image.Image { return im.src }

// Buf returns the drawable gg buffer.
func (im *Image) Buf() *gg.ImageBuf { return im.buf }
