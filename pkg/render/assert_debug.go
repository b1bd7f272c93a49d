//go:build softrender_debug

package render

import "fmt"

// assertDepth panics on negative depth. Only compiled with the
// softrender_debug build tag.
func assertDepth(z float64) {
	if z < -1e-9 {
		panic(fmt.Sprintf("render: negative depth %v reached the rasterizer", z))
	}
}
