package imaging

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

// createInMemoryImage creates a solid color image.
func createInMemoryImage(width, height int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createSolidBuffer creates a solid color Buffer.
func createSolidBuffer(t *testing.T, width, height int, c color.Color) *Buffer {
	t.Helper()
	buf, err := FromImage(createInMemoryImage(width, height, c))
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}
	return buf
}

// createPatternBuffer creates a buffer with different colors in each quadrant.
func createPatternBuffer(t *testing.T, width, height int) *Buffer {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var c color.Color
			if x < width/2 && y < height/2 {
				c = color.NRGBA{255, 0, 0, 255} // Red top-left
			} else if x >= width/2 && y < height/2 {
				c = color.NRGBA{0, 255, 0, 255} // Green top-right
			} else if x < width/2 && y >= height/2 {
				c = color.NRGBA{0, 0, 255, 255} // Blue bottom-left
			} else {
				c = color.NRGBA{255, 255, 255, 255} // White bottom-right
			}
			img.Set(x, y, c)
		}
	}
	buf, err := FromImage(img)
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}
	return buf
}

// createGradientBuffer gives every pixel a distinct value so that geometry
// mistakes show up.
func createGradientBuffer(t *testing.T, width, height int) *Buffer {
	t.Helper()
	pix := make([]byte, width*height*4)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := (y*width + x) * 4
			pix[i] = uint8(x)
			pix[i+1] = uint8(y)
			pix[i+2] = uint8(x ^ y)
			pix[i+3] = uint8(128 + (x+y)%128)
		}
	}
	buf, err := NewBuffer(width, height, pix)
	if err != nil {
		t.Fatalf("NewBuffer failed: %v", err)
	}
	return buf
}

func TestNewBuffer(t *testing.T) {
	pix := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	buf, err := NewBuffer(2, 1, pix)
	if err != nil {
		t.Fatalf("NewBuffer failed: %v", err)
	}
	if buf.Width() != 2 || buf.Height() != 1 {
		t.Errorf("dimensions: got %dx%d, want 2x1", buf.Width(), buf.Height())
	}
	if got := buf.At(1, 0); got != [4]uint8{5, 6, 7, 8} {
		t.Errorf("At(1,0): got %v, want [5 6 7 8]", got)
	}

	// The buffer must not alias the caller's slice.
	pix[0] = 99
	if got := buf.At(0, 0); got[0] != 1 {
		t.Errorf("buffer changed with input slice: got %v", got)
	}
}

func TestNewBuffer_Invalid(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		pixLen        int
	}{
		{"zero width", 0, 10, 0},
		{"negative height", 10, -1, 0},
		{"short pixels", 2, 2, 15},
		{"long pixels", 2, 2, 17},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBuffer(tt.width, tt.height, make([]byte, tt.pixLen))
			if !errors.Is(err, ErrInvalidBuffer) {
				t.Errorf("got %v, want ErrInvalidBuffer", err)
			}
		})
	}
}

func TestFromImage_Offset(t *testing.T) {
	img := image.NewRGBA(image.Rect(10, 20, 14, 22))
	img.Set(10, 20, color.RGBA{255, 0, 0, 255})

	buf, err := FromImage(img)
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}
	if buf.Bounds() != image.Rect(0, 0, 4, 2) {
		t.Errorf("bounds: got %v, want (0,0)-(4,2)", buf.Bounds())
	}
	if got := buf.At(0, 0); got != [4]uint8{255, 0, 0, 255} {
		t.Errorf("At(0,0): got %v", got)
	}
}

func TestFromImage_Empty(t *testing.T) {
	if _, err := FromImage(image.NewRGBA(image.Rect(0, 0, 0, 5))); !errors.Is(err, ErrInvalidBuffer) {
		t.Errorf("empty image: got %v, want ErrInvalidBuffer", err)
	}
	if _, err := FromImage(nil); !errors.Is(err, ErrInvalidBuffer) {
		t.Errorf("nil image: got %v, want ErrInvalidBuffer", err)
	}
}

func TestBuffer_Immutable(t *testing.T) {
	buf := createSolidBuffer(t, 4, 4, color.NRGBA{10, 20, 30, 255})

	pix := buf.Pixels()
	pix[0] = 200
	img := buf.Image()
	img.Pix[1] = 200

	if got := buf.At(0, 0); got != [4]uint8{10, 20, 30, 255} {
		t.Errorf("buffer mutated through a copy: got %v", got)
	}
}

func TestBuffer_HasAlpha(t *testing.T) {
	if createSolidBuffer(t, 2, 2, color.NRGBA{1, 2, 3, 255}).HasAlpha() {
		t.Error("opaque buffer reported alpha")
	}
	if !createSolidBuffer(t, 2, 2, color.NRGBA{1, 2, 3, 100}).HasAlpha() {
		t.Error("translucent buffer reported no alpha")
	}
}

func TestBuffer_AtOutOfBounds(t *testing.T) {
	buf := createSolidBuffer(t, 2, 2, color.White)
	if got := buf.At(2, 0); got != ([4]uint8{}) {
		t.Errorf("At(2,0): got %v, want zeros", got)
	}
	if got := buf.At(-1, 0); got != ([4]uint8{}) {
		t.Errorf("At(-1,0): got %v, want zeros", got)
	}
}
