// Package uraster is a generic CPU triangle rasterization pipeline.
//
// A draw call runs a caller-supplied vertex shader over a vertex buffer,
// assembles triangles from an index buffer, rasterizes each triangle with
// barycentric coverage and a depth test, and writes the result of a
// caller-supplied fragment shader into a Framebuffer.
//
// The vertex shader output type (a Varying) and the framebuffer pixel type
// (a Pixel) are chosen by the caller:
//
//	type vsOut struct {
//		pos   math3d.Vec4
//		color math3d.Vec3
//	}
//
//	func (v vsOut) Position() math3d.Vec4 { return v.pos }
//	func (v vsOut) Add(o vsOut) vsOut     { return vsOut{v.pos.Add(o.pos), v.color.Add(o.color)} }
//	func (v vsOut) Scale(s float64) vsOut { return vsOut{v.pos.Scale(s), v.color.Scale(s)} }
//
// Attributes are interpolated affinely in screen space after the
// perspective divide; there is no perspective-correct interpolation, no
// near/far clipping beyond the depth discard and no anti-aliasing.
package uraster

import "github.com/Steve132/uraster/pkg/math3d"

// FarDepth is the depth a cleared pixel should carry. Any fragment that
// passes the far-plane discard has a greater depth, so the first write to a
// cleared pixel always wins.
const FarDepth = -1e16

// Varying is the output of the vertex shader and the input of the fragment
// shader. Values are interpolated across a triangle as
//
//	zero.Add(v0.Scale(b0)).Add(v1.Scale(b1)).Add(v2.Scale(b2))
//
// where zero is the zero value of V, so the zero value must act as the
// additive identity.
type Varying[V any] interface {
	// Position returns the homogeneous clip-space position.
	Position() math3d.Vec4
	Add(V) V
	Scale(float64) V
}

// Pixel is a framebuffer element carrying a depth value for the depth test.
type Pixel[P any] interface {
	Depth() float64
	// WithDepth returns a copy of the pixel with its depth replaced.
	WithDepth(float64) P
}

// VertexShader maps one input vertex to its varying. It is called
// concurrently and must not mutate shared state.
type VertexShader[In any, V Varying[V]] func(In) V

// FragmentShader maps an interpolated varying to a pixel. It is called
// concurrently and must not mutate shared state. The depth of the returned
// pixel is overwritten with the interpolated depth.
type FragmentShader[V Varying[V], P Pixel[P]] func(V) P

// DepthTest reports whether a fragment at depth candidate replaces a pixel
// at depth current. Greater depth wins and depths at or beyond 1 are
// discarded. This is the pipeline's convention, not a universal z-buffer
// rule: projections that map near to -1 must flip z to draw near surfaces
// over far ones.
func DepthTest(current, candidate float64) bool {
	return current < candidate && candidate < 1
}
