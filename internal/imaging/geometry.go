package imaging

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// Region is a crop rectangle in raw pixel units of a buffer in its current
// orientation. Values are float64 so that regions derived from a scaled
// display keep their sub-pixel precision until CommitCrop rounds them.
type Region struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// FullRegion returns the region covering an entire width x height buffer.
func FullRegion(width, height int) Region {
	return Region{Width: float64(width), Height: float64(height)}
}

// NormalizedRegion converts a region given in 0..1 fractions of the image
// size into pixel units.
func NormalizedRegion(x, y, w, h float64, width, height int) Region {
	fw, fh := float64(width), float64(height)
	return Region{X: x * fw, Y: y * fh, Width: w * fw, Height: h * fh}
}

// DisplayRegion is a crop rectangle selected on a scaled rendering of the
// image. X and Y are relative to the top-left corner of the rendered image,
// and DisplayWidth x DisplayHeight is the size it was rendered at.
type DisplayRegion struct {
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	Width         float64 `json:"width"`
	Height        float64 `json:"height"`
	DisplayWidth  float64 `json:"display_width"`
	DisplayHeight float64 `json:"display_height"`
}

// ToPixels maps the display region onto a width x height buffer using the
// per-axis display-to-pixel scale factor (buffer size / display size).
//
// Returns ErrInvalidRegion if the display size is not positive.
func (d DisplayRegion) ToPixels(width, height int) (Region, error) {
	if !(d.DisplayWidth > 0) || !(d.DisplayHeight > 0) {
		return Region{}, fmt.Errorf("%w: display size %gx%g must be positive",
			ErrInvalidRegion, d.DisplayWidth, d.DisplayHeight)
	}
	sx := float64(width) / d.DisplayWidth
	sy := float64(height) / d.DisplayHeight
	return Region{
		X:      d.X * sx,
		Y:      d.Y * sy,
		Width:  d.Width * sx,
		Height: d.Height * sy,
	}, nil
}

// Clamped intersects r with the bounds of a width x height buffer.
//
// Returns ErrInvalidRegion when the width or height is not positive, any
// value is NaN or infinite, or the region lies entirely outside the buffer.
func (r Region) Clamped(width, height int) (Region, error) {
	for _, v := range [...]float64{r.X, r.Y, r.Width, r.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Region{}, fmt.Errorf("%w: non-finite value in %+v", ErrInvalidRegion, r)
		}
	}
	if r.Width <= 0 || r.Height <= 0 {
		return Region{}, fmt.Errorf("%w: size %gx%g must be positive", ErrInvalidRegion, r.Width, r.Height)
	}

	x, w := clampSpan(r.X, r.Width, float64(width))
	y, h := clampSpan(r.Y, r.Height, float64(height))
	if w <= 0 || h <= 0 {
		return Region{}, fmt.Errorf("%w: %+v outside %dx%d image", ErrInvalidRegion, r, width, height)
	}
	return Region{X: x, Y: y, Width: w, Height: h}, nil
}

// clampSpan intersects [start, start+size) with [0, limit). A span already
// inside the limit is returned unchanged, without float round-off.
func clampSpan(start, size, limit float64) (float64, float64) {
	if start < 0 {
		size += start
		start = 0
	}
	if start+size > limit {
		size = limit - start
	}
	return start, size
}

// PixelRect resolves r against a width x height buffer and returns the
// integer rectangle CommitCrop would extract.
//
// # Clamping Policy
//
// The region is first intersected with the buffer bounds (see Clamped), so
// edges that overshoot through floating-point rounding are tolerated. Origin
// and size are then rounded to the nearest integer (ties away from zero). If
// rounding pushes the far edge past the bounds, the origin moves inward so
// that the rounded size is kept.
//
// Besides the Clamped failures, returns ErrInvalidRegion when the clamped
// result would round to zero area.
func (r Region) PixelRect(width, height int) (image.Rectangle, error) {
	c, err := r.Clamped(width, height)
	if err != nil {
		return image.Rectangle{}, err
	}

	w := int(math.Round(c.Width))
	h := int(math.Round(c.Height))
	if w < 1 || h < 1 {
		return image.Rectangle{}, fmt.Errorf("%w: %+v rounds to an empty area", ErrInvalidRegion, r)
	}

	px := int(math.Round(c.X))
	py := int(math.Round(c.Y))
	if px+w > width {
		px = width - w
	}
	if py+h > height {
		py = height - h
	}

	return image.Rect(px, py, px+w, py+h), nil
}

// CommitCrop extracts the sub-rectangle of buf described by region.
//
// The output dimensions equal the region's rounded pixel width and height
// for any region fully inside the buffer. See Region.PixelRect for how
// regions crossing the edges are clamped.
func CommitCrop(buf *Buffer, region Region) (*Buffer, error) {
	rect, err := region.PixelRect(buf.Width(), buf.Height())
	if err != nil {
		return nil, err
	}
	return wrap(imaging.Crop(buf.view(), rect)), nil
}

// Rotate turns buf clockwise by degrees, which must be 0, 90, 180 or 270.
// Quarter turns swap width and height. Rotation by multiples of 90 degrees
// moves pixels without resampling, so it is exact.
//
// Any other angle fails with ErrUnsupportedRotation.
func Rotate(buf *Buffer, degrees int) (*Buffer, error) {
	switch degrees {
	case 0:
		return buf, nil
	case 90:
		// imaging rotates counter-clockwise.
		return wrap(imaging.Rotate270(buf.view())), nil
	case 180:
		return wrap(imaging.Rotate180(buf.view())), nil
	case 270:
		return wrap(imaging.Rotate90(buf.view())), nil
	default:
		return nil, fmt.Errorf("%w: %d degrees", ErrUnsupportedRotation, degrees)
	}
}

// RotatedSize returns the dimensions of a width x height image after a
// clockwise rotation by degrees.
func RotatedSize(width, height, degrees int) (int, int) {
	if degrees == 90 || degrees == 270 {
		return height, width
	}
	return width, height
}
