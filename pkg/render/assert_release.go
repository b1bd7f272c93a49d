//go:build !softrender_debug

package render

func assertDepth(float64) {}
