package models

import "github.com/taigrr/softrender/pkg/math3d"

// Cube returns an axis-aligned cube of the given edge length centered on
// the origin, one material-less quad (two triangles) per side.
func Cube(size float64) *Mesh {
	h := size / 2
	mesh := NewMesh("cube")
	for _, x := range []float64{-h, h} {
		for _, y := range []float64{-h, h} {
			for _, z := range []float64{-h, h} {
				mesh.AddVertex(math3d.V3(x, y, z))
			}
		}
	}

	// vertex index bits: x<<2 | y<<1 | z
	quads := [6][4]int{
		{0, 1, 3, 2}, // -x
		{4, 6, 7, 5}, // +x
		{0, 4, 5, 1}, // -y
		{2, 3, 7, 6}, // +y
		{0, 2, 6, 4}, // -z
		{1, 5, 7, 3}, // +z
	}
	for _, q := range quads {
		mesh.addOutwardFace(q[0], q[1], q[2])
		mesh.addOutwardFace(q[0], q[2], q[3])
	}

	mesh.CalculateNormals()
	mesh.CalculateBounds()
	return mesh
}

// Quad returns a square in the XY plane facing -Z, toward a camera placed
// in front of it on the default axis.
func Quad(size float64) *Mesh {
	h := size / 2
	mesh := NewMesh("quad")
	a := mesh.AddVertex(math3d.V3(-h, -h, 0))
	b := mesh.AddVertex(math3d.V3(h, -h, 0))
	c := mesh.AddVertex(math3d.V3(h, h, 0))
	d := mesh.AddVertex(math3d.V3(-h, h, 0))
	// (Third-First)×(Second-First) must point to -Z
	mesh.AddFace(a, b, c)
	mesh.AddFace(a, c, d)

	mesh.CalculateNormals()
	mesh.CalculateBounds()
	return mesh
}

// addOutwardFace adds the triangle, swapping its winding if needed so the
// normal points away from the origin. Only valid for convex meshes centered
// on the origin.
func (m *Mesh) addOutwardFace(a, b, c int) {
	pa, pb, pc := m.Vertices[a].Position, m.Vertices[b].Position, m.Vertices[c].Position
	n := pc.Sub(pa).Cross(pb.Sub(pa))
	center := pa.Add(pb).Add(pc)
	if n.Dot(center) < 0 {
		b, c = c, b
	}
	m.AddFace(a, b, c)
}
