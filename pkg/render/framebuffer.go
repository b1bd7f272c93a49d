package render

import (
	"image"
	"image/color"
)

// PixelSink receives the pixels that pass the depth test. Out of range
// coordinates are filtered before SetPixel is called.
type PixelSink interface {
	SetPixel(x, y int, c color.RGBA)
}

// SinkFunc adapts a function to PixelSink.
type SinkFunc func(x, y int, c color.RGBA)

// SetPixel calls f.
func (f SinkFunc) SetPixel(x, y int, c color.RGBA) { f(x, y, c) }

// Framebuffer is an in-memory color buffer. Writes to distinct pixels may
// happen concurrently.
type Framebuffer struct {
	Width  int
	Height int
	Pixels []color.RGBA // row-major
}

// NewFramebuffer creates a framebuffer matching res.
func NewFramebuffer(res Resolution) *Framebuffer {
	return &Framebuffer{
		Width:  res.Width,
		Height: res.Height,
		Pixels: make([]color.RGBA, res.Pixels()),
	}
}

// Resolution returns the framebuffer size.
func (fb *Framebuffer) Resolution() Resolution {
	return Resolution{Width: fb.Width, Height: fb.Height}
}

// Clear fills the framebuffer with a solid color.
func (fb *Framebuffer) Clear(c color.RGBA) {
	n := len(fb.Pixels)
	if n == 0 {
		return
	}
	fb.Pixels[0] = c
	for i := 1; i < n; i *= 2 {
		copy(fb.Pixels[i:], fb.Pixels[:i])
	}
}

// SetPixel sets a pixel at (x, y). Out of range writes are ignored.
func (fb *Framebuffer) SetPixel(x, y int, c color.RGBA) {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return
	}
	fb.Pixels[y*fb.Width+x] = c
}

// GetPixel returns the color at (x, y), transparent black if out of range.
func (fb *Framebuffer) GetPixel(x, y int) color.RGBA {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return color.RGBA{}
	}
	return fb.Pixels[y*fb.Width+x]
}

// ToImage copies the framebuffer into a standard image.
func (fb *Framebuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for y := range fb.Height {
		row := fb.Pixels[y*fb.Width : (y+1)*fb.Width]
		for x, c := range row {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// Colors for convenience.
var (
	ColorBlack = color.RGBA{0, 0, 0, 255}
	ColorWhite = color.RGBA{255, 255, 255, 255}
	ColorRed   = color.RGBA{255, 0, 0, 255}
	ColorGreen = color.RGBA{0, 255, 0, 255}
	ColorBlue  = color.RGBA{0, 0, 255, 255}
	ColorGray  = color.RGBA{128, 128, 128, 255}
	ColorSky   = color.RGBA{135, 206, 235, 255}
)

// RGB creates an opaque color.
func RGB(r, g, b uint8) color.RGBA {
	return color.RGBA{r, g, b, 255}
}
