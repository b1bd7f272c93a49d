package imageio

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// LineHeight is the vertical advance of one Overlay line in pixels.
const LineHeight = 13

// Overlay draws lines of text onto dst with the top-left corner of the
// first line at (x, y). Used for frame captions such as render stats.
func Overlay(dst draw.Image, x, y int, c color.Color, lines ...string) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
	}
	for i, line := range lines {
		baseline := y + i*LineHeight + face.Ascent
		d.Dot = fixed.P(x, baseline)
		d.DrawString(line)
	}
}

// TextWidth returns the pixel width of s in the overlay font.
func TextWidth(s string) int {
	return font.MeasureString(basicfont.Face7x13, s).Ceil()
}
