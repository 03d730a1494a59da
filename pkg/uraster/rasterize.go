package uraster

import (
	"fmt"
	"image"
	"math"

	"github.com/Steve132/uraster/pkg/math3d"
)

// triangle is a triangle after setup: corners divided by w, pixel bounding
// box clamped to the framebuffer and barycentric transform ready.
type triangle[V any] struct {
	verts [3]V
	z     [3]float64      // NDC depth per corner
	box   image.Rectangle // clamped pixel box, may be empty
	bt    BarycentricTransform
}

// setupTriangle prepares verts for filling into a width x height target.
// It returns ErrInvalidHomogeneousCoordinate or ErrDegenerateTriangle for
// triangles that cannot be rasterized. A triangle that is well formed but
// entirely off-screen comes back with an empty box and no error.
func setupTriangle[V Varying[V]](verts [3]V, width, height int) (triangle[V], error) {
	t := triangle[V]{verts: verts}

	var ss [3]math3d.Vec2
	for i, v := range verts {
		ndc, ok := v.Position().PerspectiveDivide()
		if !ok {
			return t, fmt.Errorf("%w: corner %d at %v", ErrInvalidHomogeneousCoordinate, i, v.Position())
		}
		ss[i] = math3d.V2(ndc.X, ndc.Y)
		t.z[i] = ndc.Z
	}

	lo := ss[0].Min(ss[1]).Min(ss[2])
	hi := ss[0].Max(ss[1]).Max(ss[2])
	x0, x1 := pixelSpan(lo.X, hi.X, width)
	y0, y1 := pixelSpan(lo.Y, hi.Y, height)
	t.box = image.Rect(x0, y0, x1, y1)
	if t.box.Empty() {
		return t, nil
	}

	bt, err := NewBarycentricTransform(ss[0], ss[1], ss[2])
	if err != nil {
		return t, err
	}
	t.bt = bt
	return t, nil
}

// pixelSpan maps the NDC interval [lo, hi] onto [0, size) pixel indices.
// The upper bound gains one pixel of coverage and both ends are clamped in
// floating point, so huge coordinates cannot overflow the int conversion.
func pixelSpan(lo, hi float64, size int) (int, int) {
	s := float64(size)
	a := math.Max(math.Floor((lo*0.5+0.5)*s), 0)
	b := math.Min(math.Floor((hi*0.5+0.5)*s)+1, s)
	if a >= b {
		return 0, 0
	}
	return int(a), int(b)
}

// fillTriangle rasterizes the part of t inside clip and returns the number
// of pixels written. Only pixels in clip are read or written, which is what
// lets tiles be filled concurrently.
func fillTriangle[V Varying[V], P Pixel[P]](fb *Framebuffer[P], t *triangle[V], clip image.Rectangle, fs FragmentShader[V, P]) int {
	r := t.box.Intersect(clip)
	if r.Empty() {
		return 0
	}

	// Pixel centers in NDC: (x+0.5) * 2/W - 1.
	sx := 2 / float64(fb.width)
	sy := 2 / float64(fb.height)

	written := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		py := (float64(y)+0.5)*sy - 1
		row := y * fb.width
		for x := r.Min.X; x < r.Max.X; x++ {
			px := (float64(x)+0.5)*sx - 1

			b := t.bt.Weights(math3d.V2(px, py))
			if !inside(b) {
				continue
			}

			d := b.X*t.z[0] + b.Y*t.z[1] + b.Z*t.z[2]
			idx := row + x
			if !DepthTest(fb.pixels[idx].Depth(), d) {
				continue
			}

			var v V
			v = v.Add(t.verts[0].Scale(b.X)).
				Add(t.verts[1].Scale(b.Y)).
				Add(t.verts[2].Scale(b.Z))

			fb.pixels[idx] = fs(v).WithDepth(d)
			written++
		}
	}
	return written
}

// RasterizeTriangle draws a single triangle of vertex shader outputs into fb
// and returns the number of pixels written. ErrInvalidHomogeneousCoordinate
// and ErrDegenerateTriangle mean the triangle was skipped; fb is untouched.
//
// RasterizeTriangle is not safe to call concurrently on the same
// framebuffer; Draw handles parallel rasterization.
func RasterizeTriangle[V Varying[V], P Pixel[P]](fb *Framebuffer[P], verts [3]V, fs FragmentShader[V, P]) (int, error) {
	if fb == nil || fs == nil {
		return 0, fmt.Errorf("%w: nil framebuffer or fragment shader", ErrInvalidArgument)
	}
	t, err := setupTriangle(verts, fb.width, fb.height)
	if err != nil {
		return 0, err
	}
	return fillTriangle(fb, &t, fb.Bounds(), fs), nil
}
