package render

import (
	"fmt"

	"github.com/taigrr/softrender/pkg/math3d"
)

// Resolution is the pixel size of a render target.
type Resolution struct {
	Width  int
	Height int
}

// NewResolution validates and returns a resolution.
func NewResolution(width, height int) (Resolution, error) {
	if width <= 0 || height <= 0 {
		return Resolution{}, fmt.Errorf("invalid resolution %dx%d", width, height)
	}
	return Resolution{Width: width, Height: height}, nil
}

// Contains reports whether pixel (x, y) is inside the raster.
func (r Resolution) Contains(x, y int) bool {
	return x >= 0 && x < r.Width && y >= 0 && y < r.Height
}

// Pixels returns Width*Height.
func (r Resolution) Pixels() int {
	return r.Width * r.Height
}

// AspectRatio returns Width/Height.
func (r Resolution) AspectRatio() float64 {
	return float64(r.Width) / float64(r.Height)
}

// MapNDC maps a normalized device point to screen space. NDC +Y is up while
// screen rows grow downward; depth passes through unchanged.
func (r Resolution) MapNDC(ndc math3d.Vec3) math3d.Vec3 {
	return math3d.V3(
		(ndc.X+1)*0.5*float64(r.Width),
		(-ndc.Y+1)*0.5*float64(r.Height),
		ndc.Z,
	)
}

func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}
