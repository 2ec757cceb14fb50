package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io"
	"os"

	"github.com/disintegration/imaging"
)

// DefaultMaxInputBytes bounds how much encoded data Decode will read.
const DefaultMaxInputBytes = 50 << 20

// Decoded is the result of ingesting an encoded image.
type Decoded struct {
	// Buffer holds the decoded pixels, already rotated according to any
	// EXIF orientation tag.
	Buffer *Buffer

	// Format is the detected source format: "png" or "jpeg".
	Format string

	// Size is the number of encoded bytes read.
	Size int64
}

// Decode reads a PNG or JPEG image from r and converts it into a Buffer.
//
// Parameters:
//   - r: Source of the encoded image.
//   - maxBytes: Upper bound on the encoded size. Zero or negative selects
//     DefaultMaxInputBytes.
//
// The format is sniffed from the data, not from any file name. GIF, WebP and
// everything else is rejected with ErrUnsupportedFormat, as are inputs larger
// than maxBytes.
func Decode(r io.Reader, maxBytes int64) (*Decoded, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxInputBytes
	}

	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: input exceeds %d bytes", ErrUnsupportedFormat, maxBytes)
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	if format != "png" && format != "jpeg" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	buf, err := FromImage(img)
	if err != nil {
		return nil, err
	}
	return &Decoded{Buffer: buf, Format: format, Size: int64(len(data))}, nil
}

// LoadFile opens and decodes a PNG or JPEG file.
func LoadFile(path string, maxBytes int64) (*Decoded, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	return Decode(f, maxBytes)
}

// ImageInfo contains metadata about a loaded image.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the source format: "png" or "jpeg".
	Format string `json:"format"`

	// HasAlpha indicates whether any pixel is translucent.
	HasAlpha bool `json:"has_alpha"`

	// FileSizeBytes is the size of the encoded source in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// Info describes a decoded image.
func (d *Decoded) Info() *ImageInfo {
	return &ImageInfo{
		Width:         d.Buffer.Width(),
		Height:        d.Buffer.Height(),
		Format:        d.Format,
		HasAlpha:      d.Buffer.HasAlpha(),
		FileSizeBytes: d.Size,
	}
}
