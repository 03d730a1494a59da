package uraster

import (
	"github.com/Steve132/uraster/pkg/math3d"
)

// BarycentricTransform converts points in a triangle's plane to barycentric
// weights. It stores the inverse of the edge matrix [s1-s3 | s2-s3] so each
// query costs one 2x2 multiply.
type BarycentricTransform struct {
	offset math3d.Vec2
	inv    math3d.Mat2
}

// NewBarycentricTransform prepares the transform for the triangle (s1, s2, s3).
// It returns ErrDegenerateTriangle when the corners are collinear or repeated.
func NewBarycentricTransform(s1, s2, s3 math3d.Vec2) (BarycentricTransform, error) {
	m := math3d.Mat2FromCols(s1.Sub(s3), s2.Sub(s3))
	inv, ok := m.Inverse()
	if !ok {
		return BarycentricTransform{}, ErrDegenerateTriangle
	}
	return BarycentricTransform{offset: s3, inv: inv}, nil
}

// Weights returns the barycentric weights of p for the corners s1, s2 and s3
// in that order. They always sum to 1; p is strictly inside the triangle
// when all three lie in (0, 1).
func (bt BarycentricTransform) Weights(p math3d.Vec2) math3d.Vec3 {
	b := bt.inv.MulVec2(p.Sub(bt.offset))
	return math3d.V3(b.X, b.Y, 1-b.X-b.Y)
}

// inside applies the open-edge coverage rule: pixels exactly on an edge are
// not covered, so a pixel on an edge shared by two triangles is drawn by
// neither.
func inside(b math3d.Vec3) bool {
	return b.X > 0 && b.X < 1 &&
		b.Y > 0 && b.Y < 1 &&
		b.Z > 0 && b.Z < 1
}
