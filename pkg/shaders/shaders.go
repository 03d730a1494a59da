// Package shaders provides ready-made varying and pixel types together with
// the vertex and fragment shaders used by the uraster command and examples.
package shaders

import (
	"math"

	"github.com/Steve132/uraster/pkg/math3d"
	"github.com/Steve132/uraster/pkg/models"
	"github.com/Steve132/uraster/pkg/uraster"
)

// Varying carries a clip-space position and an RGB color in 0-1 range.
type Varying struct {
	Pos   math3d.Vec4
	Color math3d.Vec3
}

func (v Varying) Position() math3d.Vec4 { return v.Pos }

func (v Varying) Add(o Varying) Varying {
	return Varying{Pos: v.Pos.Add(o.Pos), Color: v.Color.Add(o.Color)}
}

func (v Varying) Scale(s float64) Varying {
	return Varying{Pos: v.Pos.Scale(s), Color: v.Color.Scale(s)}
}

// Pixel is an RGB color with depth. Drawn is false until a fragment lands.
type Pixel struct {
	Color math3d.Vec3
	Z     float64
	Drawn bool
}

// ClearPixel is the cleared state: black, not drawn, at FarDepth.
func ClearPixel() Pixel {
	return Pixel{Z: uraster.FarDepth}
}

// Background returns a cleared pixel showing color c.
func Background(c math3d.Vec3) Pixel {
	return Pixel{Color: c, Z: uraster.FarDepth}
}

func (p Pixel) Depth() float64 { return p.Z }

func (p Pixel) WithDepth(d float64) Pixel {
	p.Z = d
	return p
}

// Light is a directional light with an ambient term.
type Light struct {
	Direction math3d.Vec3 // Direction towards the light
	Ambient   float64
	Diffuse   float64
}

// DefaultLight is a light from the upper front right, 30% ambient.
func DefaultLight() Light {
	return Light{
		Direction: math3d.V3(0.5, 1, 0.75).Normalize(),
		Ambient:   0.3,
		Diffuse:   0.7,
	}
}

// Intensity returns the lit intensity for a surface normal.
func (l Light) Intensity(n math3d.Vec3) float64 {
	return l.Ambient + l.Diffuse*math.Max(0, n.Dot(l.Direction.Normalize()))
}

// Flat shades every vertex with a single color.
func Flat(mvp math3d.Mat4, color math3d.Vec3) uraster.VertexShader[models.Vertex, Varying] {
	return func(in models.Vertex) Varying {
		return Varying{
			Pos:   mvp.MulVec4(math3d.V4FromV3(in.Position, 1)),
			Color: color,
		}
	}
}

// VertexColor passes each vertex's own color through.
func VertexColor(mvp math3d.Mat4) uraster.VertexShader[models.Vertex, Varying] {
	return func(in models.Vertex) Varying {
		return Varying{
			Pos:   mvp.MulVec4(math3d.V4FromV3(in.Position, 1)),
			Color: in.Color,
		}
	}
}

// NormalColor maps the world-space normal to a color, n*0.5+0.5, which is
// the usual way to inspect a mesh's normals.
func NormalColor(mvp, model math3d.Mat4) uraster.VertexShader[models.Vertex, Varying] {
	half := math3d.V3(0.5, 0.5, 0.5)
	return func(in models.Vertex) Varying {
		n := model.MulVec3Dir(in.Normal).Normalize()
		return Varying{
			Pos:   mvp.MulVec4(math3d.V4FromV3(in.Position, 1)),
			Color: n.Scale(0.5).Add(half),
		}
	}
}

// Gouraud lights each vertex with l and interpolates the lit color.
// The vertex color is used as the base color.
func Gouraud(mvp, model math3d.Mat4, l Light) uraster.VertexShader[models.Vertex, Varying] {
	return func(in models.Vertex) Varying {
		n := model.MulVec3Dir(in.Normal).Normalize()
		return Varying{
			Pos:   mvp.MulVec4(math3d.V4FromV3(in.Position, 1)),
			Color: in.Color.Scale(l.Intensity(n)),
		}
	}
}

// Color is the fragment shader for Varying: it writes the interpolated color.
func Color(v Varying) Pixel {
	return Pixel{Color: v.Color, Drawn: true}
}
