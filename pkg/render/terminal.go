package render

import (
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
)

// TerminalResolution returns the framebuffer size for a terminal of the
// given cells. Each cell shows two vertically stacked pixels.
func TerminalResolution(cols, rows int) Resolution {
	return Resolution{Width: cols, Height: rows * 2}
}

// Draw paints the framebuffer onto a terminal screen with half-block cells:
// the foreground is the upper pixel and the background the lower one.
func (fb *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY := (row - area.Min.Y) * 2
		if topY >= fb.Height {
			break
		}
		for col := area.Min.X; col < area.Max.X; col++ {
			x := col - area.Min.X
			if x >= fb.Width {
				break
			}
			scr.SetCell(col, row, &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: cellColor(fb.GetPixel(x, topY)),
					Bg: cellColor(fb.GetPixel(x, topY+1)),
				},
			})
		}
	}
}

// cellColor maps a transparent pixel to the terminal default color.
func cellColor(c color.RGBA) color.Color {
	if c.A == 0 {
		return nil
	}
	return c
}
