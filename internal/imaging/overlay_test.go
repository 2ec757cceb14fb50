package imaging

import (
	"errors"
	"image/color"
	"testing"
)

func grayPreview(t *testing.T) *Preview {
	t.Helper()
	// A 200x200 image shown at half size.
	return &Preview{
		Image:        createSolidBuffer(t, 100, 100, color.NRGBA{100, 100, 100, 255}),
		SourceWidth:  200,
		SourceHeight: 200,
		Scale:        0.5,
	}
}

func TestDrawCropOverlay(t *testing.T) {
	p := grayPreview(t)

	out, err := DrawCropOverlay(p, Region{X: 50, Y: 50, Width: 100, Height: 100}, DefaultOverlayStyle())
	if err != nil {
		t.Fatalf("DrawCropOverlay failed: %v", err)
	}
	if out.Width() != 100 || out.Height() != 100 {
		t.Fatalf("dimensions: got %dx%d, want 100x100", out.Width(), out.Height())
	}

	// Outside the crop is darkened.
	if got := out.At(10, 10); got[0] < 45 || got[0] > 55 || got[3] != 255 {
		t.Errorf("shaded pixel: got %v, want about half of 100", got)
	}

	// Inside, away from guides and the label, is untouched.
	if got := out.At(30, 50); got != [4]uint8{100, 100, 100, 255} {
		t.Errorf("inner pixel: got %v, want unchanged", got)
	}

	// Border at x=25 and the first thirds line at x=41.
	for _, x := range []int{25, 41} {
		if got := out.At(x, 50); got[0] <= 200 {
			t.Errorf("guide at x=%d: got %v, want a light pixel", x, got)
		}
	}

	// The label "100x100" starts at (27,27); the top of the first '1' is lit.
	if got := out.At(28, 27); got != [4]uint8{255, 255, 255, 255} {
		t.Errorf("label pixel: got %v, want white", got)
	}
}

func TestDrawCropOverlay_DoesNotModifyPreview(t *testing.T) {
	p := grayPreview(t)
	before := p.Image.Pixels()

	if _, err := DrawCropOverlay(p, Region{X: 0, Y: 0, Width: 20, Height: 20}, DefaultOverlayStyle()); err != nil {
		t.Fatalf("DrawCropOverlay failed: %v", err)
	}
	for i, v := range p.Image.Pixels() {
		if v != before[i] {
			t.Fatal("DrawCropOverlay modified the preview")
		}
	}
}

func TestDrawCropOverlay_FullRegionNoShade(t *testing.T) {
	p := grayPreview(t)
	style := DefaultOverlayStyle()
	style.ShowSize = false

	out, err := DrawCropOverlay(p, FullRegion(200, 200), style)
	if err != nil {
		t.Fatalf("DrawCropOverlay failed: %v", err)
	}
	// Nothing is cut away, so only the guides differ from the preview.
	if got := out.At(10, 10); got != [4]uint8{100, 100, 100, 255} {
		t.Errorf("pixel (10,10): got %v, want unchanged", got)
	}
	if got := out.At(0, 50); got[0] <= 200 {
		t.Errorf("left border: got %v, want a light pixel", got)
	}
}

func TestDrawCropOverlay_InvalidRegion(t *testing.T) {
	p := grayPreview(t)
	_, err := DrawCropOverlay(p, Region{X: 300, Y: 0, Width: 10, Height: 10}, DefaultOverlayStyle())
	if !errors.Is(err, ErrInvalidRegion) {
		t.Errorf("got %v, want ErrInvalidRegion", err)
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		input   string
		want    color.NRGBA
		wantErr bool
	}{
		{"#FF0000", color.NRGBA{255, 0, 0, 255}, false},
		{"#00FF00", color.NRGBA{0, 255, 0, 255}, false},
		{"0000FF", color.NRGBA{0, 0, 255, 255}, false},
		{"#FF000080", color.NRGBA{255, 0, 0, 128}, false},
		{" #ffffff ", color.NRGBA{255, 255, 255, 255}, false},
		{"", color.NRGBA{}, true},
		{"#FFF", color.NRGBA{}, true},
		{"#GGGGGG", color.NRGBA{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseHexColor(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}
