package imaging

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Sentinel errors returned (wrapped) by this package.
var (
	ErrInvalidBuffer       = errors.New("invalid raster buffer")
	ErrInvalidRegion       = errors.New("invalid crop region")
	ErrUnsupportedRotation = errors.New("unsupported rotation")
	ErrUnsupportedFormat   = errors.New("unsupported image format")
)

// Buffer is an immutable in-memory raster: width x height pixels stored as
// non-premultiplied RGBA, 4 bytes per pixel, rows top to bottom.
//
// A Buffer is never modified after construction. Operations that change
// pixel content (crop, rotation, background removal) produce a new Buffer.
type Buffer struct {
	img *image.NRGBA
}

// NewBuffer creates a Buffer from raw RGBA bytes.
//
// Parameters:
//   - width, height: Dimensions in pixels. Both must be greater than zero.
//   - pix: Pixel data of exactly width*height*4 bytes. The slice is copied.
//
// Returns ErrInvalidBuffer if the dimensions or the pixel length are wrong.
func NewBuffer(width, height int, pix []byte) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%d must be positive", ErrInvalidBuffer, width, height)
	}
	if len(pix) != width*height*4 {
		return nil, fmt.Errorf("%w: got %d bytes, want %d for %dx%d",
			ErrInvalidBuffer, len(pix), width*height*4, width, height)
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	copy(img.Pix, pix)
	return &Buffer{img: img}, nil
}

// FromImage converts any decoded image into a Buffer.
//
// The result is always anchored at (0,0), whatever the source bounds were.
// Returns ErrInvalidBuffer for empty images.
func FromImage(src image.Image) (*Buffer, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: nil image", ErrInvalidBuffer)
	}
	b := src.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: empty image %dx%d", ErrInvalidBuffer, b.Dx(), b.Dy())
	}
	return &Buffer{img: imaging.Clone(src)}, nil
}

// wrap adopts an NRGBA produced inside this package without copying.
// Callers must not keep a reference to img.
func wrap(img *image.NRGBA) *Buffer {
	if img.Rect.Min != (image.Point{}) {
		img = imaging.Clone(img)
	}
	return &Buffer{img: img}
}

// Width returns the buffer width in pixels.
func (b *Buffer) Width() int { return b.img.Rect.Dx() }

// Height returns the buffer height in pixels.
func (b *Buffer) Height() int { return b.img.Rect.Dy() }

// Bounds returns the rectangle (0,0)-(Width,Height).
func (b *Buffer) Bounds() image.Rectangle { return b.img.Rect }

// Pixels returns a copy of the raw RGBA bytes.
func (b *Buffer) Pixels() []byte {
	out := make([]byte, len(b.img.Pix))
	copy(out, b.img.Pix)
	return out
}

// Image returns a copy of the buffer as an *image.NRGBA.
func (b *Buffer) Image() *image.NRGBA {
	return imaging.Clone(b.img)
}

// At returns the RGBA quadruple at (x, y). Coordinates outside the buffer
// return all zeros.
func (b *Buffer) At(x, y int) [4]uint8 {
	if !(image.Point{X: x, Y: y}).In(b.img.Rect) {
		return [4]uint8{}
	}
	i := b.img.PixOffset(x, y)
	p := b.img.Pix[i : i+4 : i+4]
	return [4]uint8{p[0], p[1], p[2], p[3]}
}

// HasAlpha reports whether any pixel is not fully opaque.
func (b *Buffer) HasAlpha() bool {
	return !b.img.Opaque()
}

// view exposes the backing image to functions in this package that only read.
func (b *Buffer) view() *image.NRGBA { return b.img }
