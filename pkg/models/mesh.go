// Package models provides triangle meshes for the rasterizer: loading from
// glTF and OBJ files, procedural shapes and conversion to vertex and index
// buffers.
package models

import (
	"errors"
	"fmt"

	"github.com/Steve132/uraster/pkg/math3d"
)

var (
	// ErrInvalidFace is returned when a face references a missing vertex.
	ErrInvalidFace = errors.New("models: face references missing vertex")

	// ErrNoGeometry is returned when a file contains no triangles.
	ErrNoGeometry = errors.New("models: no triangles")

	// ErrUnknownFormat is returned by Load for unsupported file extensions.
	ErrUnknownFormat = errors.New("models: unknown model format")
)

// Vertex holds all vertex attributes. It is the vertex input type of the
// shaders package.
type Vertex struct {
	Position math3d.Vec3
	Normal   math3d.Vec3
	Color    math3d.Vec3 // RGB in 0-1 range
}

// Mesh is an indexed triangle mesh.
type Mesh struct {
	Name     string
	Vertices []Vertex
	Faces    [][3]int // Indices into Vertices

	// Bounding box (calculated on load)
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// DefaultColor is the vertex color used when a source has none.
var DefaultColor = math3d.V3(0.8, 0.8, 0.8)

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{Name: name}
}

// AddVertex appends a vertex and returns its index.
func (m *Mesh) AddVertex(v Vertex) int {
	m.Vertices = append(m.Vertices, v)
	return len(m.Vertices) - 1
}

// AddFace appends a triangle.
func (m *Mesh) AddFace(a, b, c int) {
	m.Faces = append(m.Faces, [3]int{a, b, c})
}

// Append adds other's vertices and faces to m.
func (m *Mesh) Append(other *Mesh) {
	base := len(m.Vertices)
	m.Vertices = append(m.Vertices, other.Vertices...)
	for _, f := range other.Faces {
		m.AddFace(base+f[0], base+f[1], base+f[2])
	}
	m.CalculateBounds()
}

// Validate checks that every face references an existing vertex.
func (m *Mesh) Validate() error {
	for i, f := range m.Faces {
		for _, idx := range f {
			if idx < 0 || idx >= len(m.Vertices) {
				return fmt.Errorf("%w: face %d index %d, %d vertices", ErrInvalidFace, i, idx, len(m.Vertices))
			}
		}
	}
	return nil
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	if len(m.Vertices) == 0 {
		return
	}

	m.BoundsMin = m.Vertices[0].Position
	m.BoundsMax = m.Vertices[0].Position

	for _, v := range m.Vertices[1:] {
		m.BoundsMin = m.BoundsMin.Min(v.Position)
		m.BoundsMax = m.BoundsMax.Max(v.Position)
	}
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Faces)
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// CalculateSmoothNormals computes area-weighted averaged vertex normals.
func (m *Mesh) CalculateSmoothNormals() {
	for i := range m.Vertices {
		m.Vertices[i].Normal = math3d.Vec3{}
	}

	for _, f := range m.Faces {
		v0 := m.Vertices[f[0]].Position
		v1 := m.Vertices[f[1]].Position
		v2 := m.Vertices[f[2]].Position

		// Unnormalized so larger faces weigh more.
		n := v1.Sub(v0).Cross(v2.Sub(v0))
		for _, idx := range f {
			m.Vertices[idx].Normal = m.Vertices[idx].Normal.Add(n)
		}
	}

	for i := range m.Vertices {
		m.Vertices[i].Normal = m.Vertices[i].Normal.Normalize()
	}
}

// Flatten gives every face its own three vertices carrying the face normal,
// for faceted shading.
func (m *Mesh) Flatten() {
	verts := make([]Vertex, 0, 3*len(m.Faces))
	for i, f := range m.Faces {
		a, b, c := m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]
		n := b.Position.Sub(a.Position).Cross(c.Position.Sub(a.Position)).Normalize()
		a.Normal, b.Normal, c.Normal = n, n, n
		verts = append(verts, a, b, c)
		m.Faces[i] = [3]int{3 * i, 3*i + 1, 3*i + 2}
	}
	m.Vertices = verts
}

// HasNormals reports whether any vertex carries a non-zero normal.
func (m *Mesh) HasNormals() bool {
	for _, v := range m.Vertices {
		if v.Normal.Len() > 0.001 {
			return true
		}
	}
	return false
}

// SetColor sets every vertex color to c.
func (m *Mesh) SetColor(c math3d.Vec3) {
	for i := range m.Vertices {
		m.Vertices[i].Color = c
	}
}

// Transform applies a transformation matrix to all vertices.
func (m *Mesh) Transform(mat math3d.Mat4) {
	for i := range m.Vertices {
		m.Vertices[i].Position = mat.MulVec3(m.Vertices[i].Position)
		// Rotation part only; fine for the rigid and uniform scales used here.
		m.Vertices[i].Normal = mat.MulVec3Dir(m.Vertices[i].Normal).Normalize()
	}
	m.CalculateBounds()
}

// Normalize centers the mesh on the origin and scales it so its largest
// dimension is 2, filling the [-1, 1] cube.
func (m *Mesh) Normalize() {
	m.CalculateBounds()
	size := m.Size().MaxComponent()
	if size == 0 {
		return
	}
	center := m.Center()
	m.Transform(math3d.ScaleUniform(2 / size).Mul(math3d.Translate(center.Negate())))
}

// Clone creates a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	clone := &Mesh{
		Name:      m.Name,
		Vertices:  make([]Vertex, len(m.Vertices)),
		Faces:     make([][3]int, len(m.Faces)),
		BoundsMin: m.BoundsMin,
		BoundsMax: m.BoundsMax,
	}
	copy(clone.Vertices, m.Vertices)
	copy(clone.Faces, m.Faces)
	return clone
}

// Buffers returns the vertex buffer and the flat index buffer for a draw
// call. The vertex slice is shared with the mesh.
func (m *Mesh) Buffers() ([]Vertex, []int) {
	indices := make([]int, 0, 3*len(m.Faces))
	for _, f := range m.Faces {
		indices = append(indices, f[0], f[1], f[2])
	}
	return m.Vertices, indices
}
