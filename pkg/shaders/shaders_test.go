package shaders

import (
	"math"
	"slices"
	"testing"

	"github.com/Steve132/uraster/pkg/math3d"
	"github.com/Steve132/uraster/pkg/models"
	"github.com/Steve132/uraster/pkg/uraster"
)

const epsilon = 1e-9

func near(a, b math3d.Vec3) bool {
	return a.Sub(b).Len() < epsilon
}

func TestAttribsAdd(t *testing.T) {
	tests := []struct {
		name string
		a, b Attribs
		want []float64
	}{
		{"same length", Attribs{Values: []float64{1, 2}}, Attribs{Values: []float64{3, 4}}, []float64{4, 6}},
		{"zero left", Attribs{}, Attribs{Values: []float64{1, 2, 3}}, []float64{1, 2, 3}},
		{"zero right", Attribs{Values: []float64{5}}, Attribs{}, []float64{5}},
		{"shorter right", Attribs{Values: []float64{1, 1, 1}}, Attribs{Values: []float64{2}}, []float64{3, 1, 1}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.a.Add(tc.b)
			if !slices.Equal(got.Values, tc.want) {
				t.Errorf("Values = %v, want %v", got.Values, tc.want)
			}
		})
	}

	// Add must not write through to its operands.
	a := Attribs{Values: []float64{1, 2}}
	_ = a.Add(Attribs{Values: []float64{10, 10}})
	if !slices.Equal(a.Values, []float64{1, 2}) {
		t.Errorf("operand modified: %v", a.Values)
	}
}

func TestAttribsScale(t *testing.T) {
	a := Attribs{Pos: math3d.V4(1, 2, 3, 1), Values: []float64{2, -4}}
	got := a.Scale(0.5)
	if got.Pos != math3d.V4(0.5, 1, 1.5, 0.5) {
		t.Errorf("Pos = %v", got.Pos)
	}
	if !slices.Equal(got.Values, []float64{1, -2}) {
		t.Errorf("Values = %v", got.Values)
	}
	if a.Values[0] != 2 {
		t.Error("Scale modified its receiver")
	}
}

func TestPixels(t *testing.T) {
	if p := ClearPixel(); p.Drawn || p.Depth() != uraster.FarDepth {
		t.Errorf("ClearPixel = %+v", p)
	}
	bg := Background(math3d.V3(0, 0, 1))
	if bg.Drawn || bg.Color != math3d.V3(0, 0, 1) || bg.Depth() != uraster.FarDepth {
		t.Errorf("Background = %+v", bg)
	}
	p := Color(Varying{Color: math3d.V3(1, 0, 0)}).WithDepth(0.25)
	if !p.Drawn || p.Depth() != 0.25 || p.Color != math3d.V3(1, 0, 0) {
		t.Errorf("Color = %+v", p)
	}

	ap := AttribFragment(Attribs{Values: []float64{7}}).WithDepth(-0.5)
	if !ap.Drawn || ap.Depth() != -0.5 || ap.Values[0] != 7 {
		t.Errorf("AttribFragment = %+v", ap)
	}
	if c := ClearAttribPixel(); c.Drawn || c.Depth() != uraster.FarDepth {
		t.Errorf("ClearAttribPixel = %+v", c)
	}
}

func TestLightIntensity(t *testing.T) {
	l := Light{Direction: math3d.V3(0, 2, 0), Ambient: 0.25, Diffuse: 0.5}
	tests := []struct {
		name   string
		normal math3d.Vec3
		want   float64
	}{
		{"facing", math3d.V3(0, 1, 0), 0.75},
		{"grazing", math3d.V3(1, 0, 0), 0.25},
		{"away", math3d.V3(0, -1, 0), 0.25},
		{"angled", math3d.V3(1, 1, 0).Normalize(), 0.25 + 0.5*math.Sqrt2/2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := l.Intensity(tc.normal); math.Abs(got-tc.want) > epsilon {
				t.Errorf("Intensity = %v, want %v", got, tc.want)
			}
		})
	}

	if d := DefaultLight(); math.Abs(d.Direction.Len()-1) > epsilon {
		t.Errorf("DefaultLight direction not normalized: %v", d.Direction)
	}
}

func TestVertexShaders(t *testing.T) {
	in := models.Vertex{
		Position: math3d.V3(1, 2, 3),
		Normal:   math3d.V3(0, 0, 1),
		Color:    math3d.V3(0.2, 0.4, 0.6),
	}
	mvp := math3d.Translate(math3d.V3(1, 0, 0))
	model := math3d.RotateY(math.Pi / 2) // +Z normal turns to +X
	l := Light{Direction: math3d.V3(1, 0, 0), Ambient: 0.5, Diffuse: 0.5}

	tests := []struct {
		name  string
		vs    uraster.VertexShader[models.Vertex, Varying]
		color math3d.Vec3
	}{
		{"flat", Flat(mvp, math3d.V3(1, 0, 1)), math3d.V3(1, 0, 1)},
		{"vertex color", VertexColor(mvp), in.Color},
		{"normal", NormalColor(mvp, model), math3d.V3(1, 0.5, 0.5)},
		{"gouraud", Gouraud(mvp, model, l), in.Color},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.vs(in)
			if got.Pos != math3d.V4(2, 2, 3, 1) {
				t.Errorf("Pos = %v, want (2, 2, 3, 1)", got.Pos)
			}
			if !near(got.Color, tc.color) {
				t.Errorf("Color = %v, want %v", got.Color, tc.color)
			}
		})
	}
}

func TestVaryingInterpolates(t *testing.T) {
	a := Varying{Pos: math3d.V4(0, 0, 0, 1), Color: math3d.V3(1, 0, 0)}
	b := Varying{Pos: math3d.V4(2, 0, 0, 1), Color: math3d.V3(0, 0, 1)}
	mid := a.Scale(0.5).Add(b.Scale(0.5))
	if mid.Position() != math3d.V4(1, 0, 0, 1) || !near(mid.Color, math3d.V3(0.5, 0, 0.5)) {
		t.Errorf("midpoint = %+v", mid)
	}
}
