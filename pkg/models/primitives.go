package models

import (
	"math"

	"github.com/Steve132/uraster/pkg/math3d"
)

// Triangle returns a single triangle spanning the lower-left, lower-right
// and top-center of the [-1, 1] square, facing +Z.
func Triangle() *Mesh {
	m := NewMesh("triangle")
	n := math3d.V3(0, 0, 1)
	m.AddVertex(Vertex{Position: math3d.V3(-1, -1, 0), Normal: n, Color: math3d.V3(1, 0, 0)})
	m.AddVertex(Vertex{Position: math3d.V3(1, -1, 0), Normal: n, Color: math3d.V3(0, 1, 0)})
	m.AddVertex(Vertex{Position: math3d.V3(0, 1, 0), Normal: n, Color: math3d.V3(0, 0, 1)})
	m.AddFace(0, 1, 2)
	m.CalculateBounds()
	return m
}

// Quad returns the [-1, 1] square in the XY plane as two triangles.
func Quad() *Mesh {
	m := NewMesh("quad")
	n := math3d.V3(0, 0, 1)
	for _, p := range []math3d.Vec3{
		math3d.V3(-1, -1, 0), math3d.V3(1, -1, 0),
		math3d.V3(1, 1, 0), math3d.V3(-1, 1, 0),
	} {
		m.AddVertex(Vertex{Position: p, Normal: n, Color: DefaultColor})
	}
	m.AddFace(0, 1, 2)
	m.AddFace(0, 2, 3)
	m.CalculateBounds()
	return m
}

// Cube returns an axis-aligned cube with the given edge length centered on
// the origin. Each face has its own four vertices so normals stay flat.
func Cube(size float64) *Mesh {
	m := NewMesh("cube")
	h := size / 2

	faces := []struct {
		normal math3d.Vec3
		corner [4]math3d.Vec3
	}{
		{math3d.V3(0, 0, 1), [4]math3d.Vec3{{X: -h, Y: -h, Z: h}, {X: h, Y: -h, Z: h}, {X: h, Y: h, Z: h}, {X: -h, Y: h, Z: h}}},
		{math3d.V3(0, 0, -1), [4]math3d.Vec3{{X: h, Y: -h, Z: -h}, {X: -h, Y: -h, Z: -h}, {X: -h, Y: h, Z: -h}, {X: h, Y: h, Z: -h}}},
		{math3d.V3(1, 0, 0), [4]math3d.Vec3{{X: h, Y: -h, Z: h}, {X: h, Y: -h, Z: -h}, {X: h, Y: h, Z: -h}, {X: h, Y: h, Z: h}}},
		{math3d.V3(-1, 0, 0), [4]math3d.Vec3{{X: -h, Y: -h, Z: -h}, {X: -h, Y: -h, Z: h}, {X: -h, Y: h, Z: h}, {X: -h, Y: h, Z: -h}}},
		{math3d.V3(0, 1, 0), [4]math3d.Vec3{{X: -h, Y: h, Z: h}, {X: h, Y: h, Z: h}, {X: h, Y: h, Z: -h}, {X: -h, Y: h, Z: -h}}},
		{math3d.V3(0, -1, 0), [4]math3d.Vec3{{X: -h, Y: -h, Z: -h}, {X: h, Y: -h, Z: -h}, {X: h, Y: -h, Z: h}, {X: -h, Y: -h, Z: h}}},
	}

	for _, f := range faces {
		base := len(m.Vertices)
		for _, p := range f.corner {
			m.AddVertex(Vertex{Position: p, Normal: f.normal, Color: DefaultColor})
		}
		m.AddFace(base, base+1, base+2)
		m.AddFace(base, base+2, base+3)
	}
	m.CalculateBounds()
	return m
}

// UVSphere returns a unit sphere with the given number of latitude rings
// and longitude segments. Rings below 2 or segments below 3 are raised to
// those minimums.
func UVSphere(rings, segments int) *Mesh {
	rings = max(rings, 2)
	segments = max(segments, 3)
	m := NewMesh("sphere")

	for r := 0; r <= rings; r++ {
		theta := math.Pi * float64(r) / float64(rings)
		for s := 0; s <= segments; s++ {
			phi := 2 * math.Pi * float64(s) / float64(segments)
			p := math3d.V3(
				math.Sin(theta)*math.Cos(phi),
				math.Cos(theta),
				math.Sin(theta)*math.Sin(phi),
			)
			m.AddVertex(Vertex{Position: p, Normal: p, Color: DefaultColor})
		}
	}

	stride := segments + 1
	for r := range rings {
		for s := range segments {
			a := r*stride + s
			b := a + stride
			// The pole rows collapse to a point; skip their degenerate half.
			if r != 0 {
				m.AddFace(a, a+1, b)
			}
			if r != rings-1 {
				m.AddFace(a+1, b+1, b)
			}
		}
	}
	m.CalculateBounds()
	return m
}
