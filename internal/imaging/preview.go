package imaging

import (
	"fmt"
	"image"
	"math"

	"golang.org/x/image/draw"
)

// Preview is a rendering of a buffer with its pending adjustments, fitted
// into a display box.
type Preview struct {
	// Image is the rendered, possibly downscaled, picture.
	Image *Buffer

	// SourceWidth and SourceHeight are the full-resolution dimensions of the
	// flattened image, after rotation. Crop regions selected on the preview
	// map onto these through DisplayRegion.ToPixels.
	SourceWidth  int
	SourceHeight int

	// Scale is the display size divided by the source size (<= 1).
	Scale float64
}

// FitSize returns the largest size with the aspect ratio of width x height
// that fits inside maxWidth x maxHeight, never enlarging. A non-positive
// bound leaves that axis unconstrained.
func FitSize(width, height, maxWidth, maxHeight int) (int, int, float64) {
	scale := 1.0
	if maxWidth > 0 {
		scale = math.Min(scale, float64(maxWidth)/float64(width))
	}
	if maxHeight > 0 {
		scale = math.Min(scale, float64(maxHeight)/float64(height))
	}
	w := max(1, int(math.Round(float64(width)*scale)))
	h := max(1, int(math.Round(float64(height)*scale)))
	return w, h, scale
}

// RenderPreview flattens buf with adj and scales the result to fit inside
// maxWidth x maxHeight. The stored buffer is not modified.
func RenderPreview(buf *Buffer, adj Adjustments, maxWidth, maxHeight int) (*Preview, error) {
	flat, err := Flatten(buf, adj)
	if err != nil {
		return nil, fmt.Errorf("failed to render preview: %w", err)
	}

	sw, sh := flat.Width(), flat.Height()
	w, h, scale := FitSize(sw, sh, maxWidth, maxHeight)
	if w == sw && h == sh {
		return &Preview{Image: flat, SourceWidth: sw, SourceHeight: sh, Scale: 1}, nil
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.BiLinear.Scale(dst, dst.Bounds(), flat.view(), flat.Bounds(), draw.Src, nil)

	return &Preview{Image: wrap(dst), SourceWidth: sw, SourceHeight: sh, Scale: scale}, nil
}
