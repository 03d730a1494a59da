package render

import (
	"github.com/Steve132/uraster/pkg/math3d"
)

// Plane is the half-space Normal·p + D >= 0.
type Plane struct {
	Normal math3d.Vec3
	D      float64
}

// Distance is the signed, unnormalized distance of p from the plane.
// Positive is inside.
func (pl Plane) Distance(p math3d.Vec3) float64 {
	return pl.Normal.Dot(p) + pl.D
}

// Frustum is the six clip planes of a projection matrix with inward normals,
// ordered left, right, bottom, top, then the two depth planes.
type Frustum [6]Plane

// FrustumOf extracts the clip planes of m (Gribb/Hartmann: w row plus or
// minus each of the x, y and z rows). With a model-view-projection matrix
// the planes are in object space.
func FrustumOf(m math3d.Mat4) Frustum {
	row := func(i int) Plane {
		return Plane{
			Normal: math3d.V3(m.Get(i, 0), m.Get(i, 1), m.Get(i, 2)),
			D:      m.Get(i, 3),
		}
	}

	w := row(3)
	var f Frustum
	for axis := range 3 {
		r := row(axis)
		f[2*axis] = Plane{Normal: w.Normal.Add(r.Normal), D: w.D + r.D}
		f[2*axis+1] = Plane{Normal: w.Normal.Sub(r.Normal), D: w.D - r.D}
	}
	return f
}

// Frustum returns the clip planes for a model transform, in model space.
func (c *Camera) Frustum(model math3d.Mat4) Frustum {
	return FrustumOf(c.MVP(model))
}

// Outside reports whether the box min..max lies entirely behind one plane.
// Boxes near a frustum corner may be kept even though nothing is visible.
func (f Frustum) Outside(min, max math3d.Vec3) bool {
	for _, pl := range f {
		// corner furthest along the normal
		far := math3d.V3(
			pick(pl.Normal.X, min.X, max.X),
			pick(pl.Normal.Y, min.Y, max.Y),
			pick(pl.Normal.Z, min.Z, max.Z),
		)
		if pl.Distance(far) < 0 {
			return true
		}
	}
	return false
}

func pick(n, lo, hi float64) float64 {
	if n >= 0 {
		return hi
	}
	return lo
}
