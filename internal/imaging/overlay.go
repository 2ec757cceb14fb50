package imaging

import (
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

// OverlayStyle controls how a pending crop is drawn on a preview.
type OverlayStyle struct {
	// Shade is blended over the area that will be cut away.
	Shade color.NRGBA

	// Guide colors the crop border and the rule-of-thirds lines.
	Guide color.NRGBA

	// ShowSize labels the crop with its size in full-resolution pixels.
	ShowSize bool
}

// DefaultOverlayStyle returns a half-transparent black shade with light
// guides and a size label.
func DefaultOverlayStyle() OverlayStyle {
	return OverlayStyle{
		Shade:    color.NRGBA{0, 0, 0, 128},
		Guide:    color.NRGBA{255, 255, 255, 200},
		ShowSize: true,
	}
}

// DrawCropOverlay returns a copy of the preview image with region marked on
// it. region is in full-resolution pixels of the previewed image and is
// resolved with the same clamping policy as CommitCrop, so the marked area is
// exactly what ApplyCrop would keep.
func DrawCropOverlay(p *Preview, region Region, style OverlayStyle) (*Buffer, error) {
	rect, err := region.PixelRect(p.SourceWidth, p.SourceHeight)
	if err != nil {
		return nil, err
	}

	dst := imaging.Clone(p.Image.view())
	bounds := dst.Bounds()

	sx := float64(bounds.Dx()) / float64(p.SourceWidth)
	sy := float64(bounds.Dy()) / float64(p.SourceHeight)
	r := image.Rect(
		int(float64(rect.Min.X)*sx),
		int(float64(rect.Min.Y)*sy),
		int(float64(rect.Max.X)*sx),
		int(float64(rect.Max.Y)*sy),
	)
	// Keep at least one display pixel so tiny crops stay visible.
	if r.Dx() < 1 {
		r.Max.X = r.Min.X + 1
	}
	if r.Dy() < 1 {
		r.Max.Y = r.Min.Y + 1
	}
	r = r.Intersect(bounds)

	shade := &image.Uniform{C: style.Shade}
	for _, out := range [...]image.Rectangle{
		image.Rect(bounds.Min.X, bounds.Min.Y, bounds.Max.X, r.Min.Y), // above
		image.Rect(bounds.Min.X, r.Max.Y, bounds.Max.X, bounds.Max.Y), // below
		image.Rect(bounds.Min.X, r.Min.Y, r.Min.X, r.Max.Y),           // left
		image.Rect(r.Max.X, r.Min.Y, bounds.Max.X, r.Max.Y),           // right
	} {
		draw.Draw(dst, out, shade, image.Point{}, draw.Over)
	}

	guide := &image.Uniform{C: style.Guide}
	vline := func(x int) {
		draw.Draw(dst, image.Rect(x, r.Min.Y, x+1, r.Max.Y), guide, image.Point{}, draw.Over)
	}
	hline := func(y int) {
		draw.Draw(dst, image.Rect(r.Min.X+1, y, r.Max.X-1, y+1), guide, image.Point{}, draw.Over)
	}

	vline(r.Min.X)
	if r.Dx() > 1 {
		vline(r.Max.X - 1)
	}
	hline(r.Min.Y)
	if r.Dy() > 1 {
		hline(r.Max.Y - 1)
	}
	if r.Dx() >= 9 && r.Dy() >= 9 {
		for i := 1; i <= 2; i++ {
			vline(r.Min.X + r.Dx()*i/3)
			hline(r.Min.Y + r.Dy()*i/3)
		}
	}

	if style.ShowSize {
		label := fmt.Sprintf("%dx%d", rect.Dx(), rect.Dy())
		drawLabel(dst, r.Min.X+2, r.Min.Y+2, label, color.NRGBA{255, 255, 255, 255}, color.NRGBA{0, 0, 0, 180})
	}

	return wrap(dst), nil
}

// ParseHexColor parses a color like "#FF0000" or "#FF000080". The alpha
// byte is optional and defaults to opaque.
func ParseHexColor(hex string) (color.NRGBA, error) {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) != 6 && len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q", hex)
	}

	val, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	if len(hex) == 6 {
		val = val<<8 | 0xFF
	}
	return color.NRGBA{R: uint8(val >> 24), G: uint8(val >> 16), B: uint8(val >> 8), A: uint8(val)}, nil
}

// glyphs is a 3x5 pixel font covering crop size labels.
var glyphs = map[rune][]string{
	'0': {"111", "101", "101", "101", "111"},
	'1': {"010", "110", "010", "010", "111"},
	'2': {"111", "001", "111", "100", "111"},
	'3': {"111", "001", "111", "001", "111"},
	'4': {"101", "101", "111", "001", "001"},
	'5': {"111", "100", "111", "001", "111"},
	'6': {"111", "100", "111", "101", "111"},
	'7': {"111", "001", "001", "001", "001"},
	'8': {"111", "101", "111", "101", "111"},
	'9': {"111", "101", "111", "001", "111"},
	'x': {"000", "101", "010", "101", "000"},
}

// drawLabel draws text on a background box with its top-left corner at (x, y).
// Pixels outside img are skipped.
func drawLabel(img *image.NRGBA, x, y int, text string, fg, bg color.NRGBA) {
	const charWidth, labelHeight = 4, 7

	box := image.Rect(x-1, y-1, x+len(text)*charWidth, y+labelHeight)
	draw.Draw(img, box.Intersect(img.Bounds()), &image.Uniform{C: bg}, image.Point{}, draw.Over)

	bounds := img.Bounds()
	cx := x
	for _, ch := range text {
		for row, line := range glyphs[ch] {
			for col, pixel := range line {
				p := image.Pt(cx+col, y+row)
				if pixel == '1' && p.In(bounds) {
					img.SetNRGBA(p.X, p.Y, fg)
				}
			}
		}
		cx += charWidth
	}
}
