package imaging

import (
	"fmt"
	"image"
	"math"

	"github.com/anthonynsimon/bild/parallel"
)

// Level bounds for brightness and contrast. 100 is the identity.
const (
	MinLevel      = 0
	MaxLevel      = 200
	IdentityLevel = 100
)

// Adjustments are the non-destructive edits applied at render and export
// time. They are stored apart from the pixels so that changing them
// repeatedly never resamples the image.
type Adjustments struct {
	// Brightness scales channel values: out = in * Brightness/100.
	Brightness float64 `json:"brightness"`

	// Contrast stretches channel values around mid-gray 128:
	// out = (in-128) * Contrast/100 + 128.
	Contrast float64 `json:"contrast"`

	// Rotation is the pending clockwise display rotation: 0, 90, 180 or 270.
	Rotation int `json:"rotation"`
}

// Identity returns adjustments that leave an image unchanged.
func Identity() Adjustments {
	return Adjustments{Brightness: IdentityLevel, Contrast: IdentityLevel}
}

// IsIdentity reports whether a leaves an image unchanged.
func (a Adjustments) IsIdentity() bool {
	return a.Brightness == IdentityLevel && a.Contrast == IdentityLevel && a.Rotation == 0
}

// Normalized returns a with levels clamped and rotation wrapped into
// [0,360). It fails with ErrUnsupportedRotation if the rotation is not a
// multiple of 90.
func (a Adjustments) Normalized() (Adjustments, error) {
	rot, err := NormalizeRotation(a.Rotation)
	if err != nil {
		return a, err
	}
	return Adjustments{
		Brightness: ClampLevel(a.Brightness),
		Contrast:   ClampLevel(a.Contrast),
		Rotation:   rot,
	}, nil
}

// ClampLevel clamps a brightness or contrast value into [0,200].
// NaN maps to the identity level.
func ClampLevel(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return IdentityLevel
	case v < MinLevel:
		return MinLevel
	case v > MaxLevel:
		return MaxLevel
	}
	return v
}

// NormalizeRotation wraps a quarter-turn angle into [0,360), so 360 becomes
// 0 and -90 becomes 270. Angles that are not a multiple of 90 fail with
// ErrUnsupportedRotation.
func NormalizeRotation(degrees int) (int, error) {
	if degrees%90 != 0 {
		return 0, fmt.Errorf("%w: %d degrees", ErrUnsupportedRotation, degrees)
	}
	return ((degrees % 360) + 360) % 360, nil
}

// colorTable builds the per-channel lookup table for the given levels.
//
// Brightness is applied first, then contrast. The intermediate value is
// kept in floating point and only the final result is clamped to [0,255]
// and rounded to the nearest integer.
func colorTable(brightness, contrast float64) *[256]uint8 {
	bf := brightness / 100
	cf := contrast / 100

	var lut [256]uint8
	for i := range lut {
		v := float64(i) * bf
		v = (v-128)*cf + 128
		switch {
		case !(v > 0): // also catches NaN
			lut[i] = 0
		case v >= 255:
			lut[i] = 255
		default:
			lut[i] = uint8(math.Round(v))
		}
	}
	return &lut
}

// ApplyColor applies brightness then contrast to raw RGBA bytes and returns
// the transformed copy. Only R, G and B change; alpha is left untouched.
// The input slice is not modified.
//
// ApplyColor(pix, 100, 100) returns an exact copy of pix.
func ApplyColor(pix []byte, brightness, contrast float64) []byte {
	out := make([]byte, len(pix))
	copy(out, pix)
	if brightness == IdentityLevel && contrast == IdentityLevel {
		return out
	}

	lut := colorTable(brightness, contrast)
	n := len(out) / 4
	if n == 0 {
		return out
	}
	parallel.Line(n, func(start, end int) {
		for i := start * 4; i < end*4; i += 4 {
			out[i] = lut[out[i]]
			out[i+1] = lut[out[i+1]]
			out[i+2] = lut[out[i+2]]
		}
	})
	return out
}

// AdjustColor returns a new Buffer with brightness and contrast baked in.
func AdjustColor(buf *Buffer, brightness, contrast float64) *Buffer {
	if brightness == IdentityLevel && contrast == IdentityLevel {
		return buf
	}
	src := buf.view()
	return &Buffer{img: &image.NRGBA{
		Pix:    ApplyColor(src.Pix, brightness, contrast),
		Stride: src.Stride,
		Rect:   src.Rect,
	}}
}

// Flatten bakes every pending adjustment into a new Buffer in the fixed
// pipeline order: rotation, then brightness, then contrast.
//
// The input buffer is never modified. Rotation values outside
// {0,90,180,270} fail with ErrUnsupportedRotation.
func Flatten(buf *Buffer, adj Adjustments) (*Buffer, error) {
	rotated, err := Rotate(buf, adj.Rotation)
	if err != nil {
		return nil, err
	}
	return AdjustColor(rotated, adj.Brightness, adj.Contrast), nil
}
