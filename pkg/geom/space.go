// Package geom holds the geometric primitives of the pipeline: triangles
// tagged with the coordinate space they live in, and planes that can clip
// them.
package geom

// Space tags a Triangle with the coordinate space of its points. The tag
// exists only at compile time; Triangle[World] and Triangle[NDC] cannot be
// mixed without an explicit conversion.
type Space interface {
	space()
}

// Local is mesh-relative object space.
type Local struct{}

// World is shared scene space.
type World struct{}

// NDC is normalized device space after the perspective divide: X and Y in
// [-1, 1], depth in [0, 1].
type NDC struct{}

// Screen is pixel space with Y growing downward and Z carrying NDC depth.
type Screen struct{}

func (Local) space()  {}
func (World) space()  {}
func (NDC) space()    {}
func (Screen) space() {}
