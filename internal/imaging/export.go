package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/disintegration/imaging"
)

// Format is an export encoding.
type Format string

// Supported export formats.
const (
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
)

// DefaultJPEGQuality is used when ExportOptions.JPEGQuality is zero.
const DefaultJPEGQuality = 90

// ParseFormat accepts "png", "jpeg" and "jpg" in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "png":
		return FormatPNG, nil
	case "jpeg", "jpg":
		return FormatJPEG, nil
	default:
		return "", fmt.Errorf("%w: %q (want png or jpeg)", ErrUnsupportedFormat, s)
	}
}

// MimeType returns the media type of the encoding.
func (f Format) MimeType() string {
	if f == FormatJPEG {
		return "image/jpeg"
	}
	return "image/png"
}

// Extension returns the file extension, without the dot.
func (f Format) Extension() string {
	if f == FormatJPEG {
		return "jpg"
	}
	return "png"
}

// FileName returns the default download name for an export.
func (f Format) FileName() string {
	return "edited-image." + f.Extension()
}

// ExportOptions tunes encoding.
type ExportOptions struct {
	// JPEGQuality in 1..100. Zero selects DefaultJPEGQuality. Ignored for PNG.
	JPEGQuality int
}

// Export flattens buf with adj and encodes the result.
//
// The pipeline runs in a fixed order:
//  1. bake the pending rotation (Rotate)
//  2. apply brightness then contrast (ApplyColor)
//  3. encode as format
//
// PNG output is lossless and deterministic: the same buffer and adjustments
// always produce the same bytes. JPEG is lossy and has no alpha channel; the
// stored color of translucent pixels is kept and their alpha is dropped.
//
// Export never modifies buf, so it may be called repeatedly with different
// formats from the same edit state.
func Export(buf *Buffer, adj Adjustments, format Format, opts ExportOptions) ([]byte, error) {
	flat, err := Flatten(buf, adj)
	if err != nil {
		return nil, fmt.Errorf("failed to flatten image: %w", err)
	}

	var out bytes.Buffer
	switch format {
	case FormatPNG:
		err = imaging.Encode(&out, flat.view(), imaging.PNG, imaging.PNGCompressionLevel(png.DefaultCompression))
	case FormatJPEG:
		quality := opts.JPEGQuality
		if quality == 0 {
			quality = DefaultJPEGQuality
		}
		if quality < 1 || quality > 100 {
			return nil, fmt.Errorf("jpeg quality %d out of range 1-100", quality)
		}
		err = imaging.Encode(&out, dropAlpha(flat.view()), imaging.JPEG, imaging.JPEGQuality(quality))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", format, err)
	}

	return out.Bytes(), nil
}

// EncodePNG encodes a buffer as PNG without applying any adjustments.
func EncodePNG(buf *Buffer) ([]byte, error) {
	return Export(buf, Identity(), FormatPNG, ExportOptions{})
}

// dropAlpha returns an opaque copy of img keeping the stored RGB values.
func dropAlpha(img *image.NRGBA) *image.NRGBA {
	if img.Opaque() {
		return img
	}
	out := imaging.Clone(img)
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = 0xff
	}
	return out
}
