package models

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Load picks a loader from the file extension: .obj, .gltf or .glb.
func Load(path string) (*Mesh, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".obj":
		return LoadOBJ(path)
	case ".gltf", ".glb":
		return LoadGLTF(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// Primitive returns a built-in mesh by name ("cube" or "quad") with the
// given size.
func Primitive(name string, size float64) (*Mesh, error) {
	switch name {
	case "cube":
		return Cube(size), nil
	case "quad":
		return Quad(size), nil
	default:
		return nil, fmt.Errorf("%w: primitive %q", ErrUnsupportedFormat, name)
	}
}
