package shaders

import (
	"github.com/Steve132/uraster/pkg/math3d"
	"github.com/Steve132/uraster/pkg/uraster"
)

// Attribs is a varying with an arbitrary number of float attributes.
// Vectors of different lengths combine as if the shorter were zero padded,
// which makes the zero value the identity.
type Attribs struct {
	Pos    math3d.Vec4
	Values []float64
}

func (a Attribs) Position() math3d.Vec4 { return a.Pos }

func (a Attribs) Add(o Attribs) Attribs {
	out := make([]float64, max(len(a.Values), len(o.Values)))
	copy(out, a.Values)
	for i, x := range o.Values {
		out[i] += x
	}
	return Attribs{Pos: a.Pos.Add(o.Pos), Values: out}
}

func (a Attribs) Scale(s float64) Attribs {
	out := make([]float64, len(a.Values))
	for i, x := range a.Values {
		out[i] = x * s
	}
	return Attribs{Pos: a.Pos.Scale(s), Values: out}
}

// AttribPixel stores interpolated attributes with depth.
type AttribPixel struct {
	Values []float64
	Z      float64
	Drawn  bool
}

// ClearAttribPixel is the cleared state of an AttribPixel.
func ClearAttribPixel() AttribPixel {
	return AttribPixel{Z: uraster.FarDepth}
}

func (p AttribPixel) Depth() float64 { return p.Z }

func (p AttribPixel) WithDepth(d float64) AttribPixel {
	p.Z = d
	return p
}

// AttribFragment writes the interpolated attributes unchanged.
func AttribFragment(a Attribs) AttribPixel {
	return AttribPixel{Values: a.Values, Drawn: true}
}
