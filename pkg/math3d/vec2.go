package math3d

import "math"

// Vec2 represents a 2D vector or screen-space point.
type Vec2 struct {
	X, Y float64
}

// V2 creates a new Vec2.
func V2(x, y float64) Vec2 {
	return Vec2{x, y}
}

// Add returns the vector sum a + b.
func (a Vec2) Add(b Vec2) Vec2 {
	return Vec2{a.X + b.X, a.Y + b.Y}
}

// Sub returns the vector difference a - b.
func (a Vec2) Sub(b Vec2) Vec2 {
	return Vec2{a.X - b.X, a.Y - b.Y}
}

// Scale returns the scalar product a * s.
func (a Vec2) Scale(s float64) Vec2 {
	return Vec2{a.X * s, a.Y * s}
}

// Cross returns the z component of the 3D cross product of a and b,
// i.e. twice the signed area of the triangle (0, a, b).
func (a Vec2) Cross(b Vec2) float64 {
	return a.X*b.Y - a.Y*b.X
}

// Min returns the component-wise minimum.
func (a Vec2) Min(b Vec2) Vec2 {
	return Vec2{math.Min(a.X, b.X), math.Min(a.Y, b.Y)}
}

// Max returns the component-wise maximum.
func (a Vec2) Max(b Vec2) Vec2 {
	return Vec2{math.Max(a.X, b.X), math.Max(a.Y, b.Y)}
}

// IsFinite reports whether neither component is NaN or infinite.
func (a Vec2) IsFinite() bool {
	return isFinite(a.X) && isFinite(a.Y)
}

// Mat2 is a 2x2 matrix stored in column-major order, like Mat4.
//
// | 0 2 |
// | 1 3 |
type Mat2 [4]float64

// Mat2FromCols builds a matrix whose columns are c0 and c1.
func Mat2FromCols(c0, c1 Vec2) Mat2 {
	return Mat2{c0.X, c0.Y, c1.X, c1.Y}
}

// Determinant returns the determinant of the matrix.
func (m Mat2) Determinant() float64 {
	return m[0]*m[3] - m[2]*m[1]
}

// Inverse returns the inverse of the matrix.
// ok is false when the matrix is singular or the inverse is not finite.
func (m Mat2) Inverse() (inv Mat2, ok bool) {
	det := m.Determinant()
	if det == 0 || !isFinite(det) {
		return Mat2{}, false
	}
	invDet := 1.0 / det
	inv = Mat2{
		m[3] * invDet, -m[1] * invDet,
		-m[2] * invDet, m[0] * invDet,
	}
	for _, v := range inv {
		if !isFinite(v) {
			return Mat2{}, false
		}
	}
	return inv, true
}

// MulVec2 transforms a Vec2.
func (m Mat2) MulVec2(v Vec2) Vec2 {
	return Vec2{
		m[0]*v.X + m[2]*v.Y,
		m[1]*v.X + m[3]*v.Y,
	}
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
