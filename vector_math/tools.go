package vector_math

import "github.com/chewxy/math32"

// ToRad is a helper function to turn degree to radians
func ToRad(deg float32) float32 {
	return deg * math32.Pi / 180
}

// ToDeg is a helper function to turn radians to degree
func ToDeg(rad float32) float32 {
	return rad * 180 / math32.Pi
}

// Apply multiplies a Vec3 by a 4x4 matrix using the given homogeneous coordinate w. Use w = 1 for points
// and w = 0 for directions. The result is not divided by the resulting w.
func Apply(v Vec3, w float32, m Mat) Vec3 {
	v4 := []float32{v.X, v.Y, v.Z, w}
	return Vec3{
		(v4[0] * m[0][0]) + (v4[1] * m[0][1]) + (v4[2] * m[0][2]) + (v4[3] * m[0][3]),
		(v4[0] * m[1][0]) + (v4[1] * m[1][1]) + (v4[2] * m[1][2]) + (v4[3] * m[1][3]),
		(v4[0] * m[2][0]) + (v4[1] * m[2][1]) + (v4[2] * m[2][2]) + (v4[3] * m[2][3]),
	}
}

// Project applies m to the point v and performs the perspective divide.
func Project(v Vec3, m Mat) Vec3 {
	p := Apply(v, 1, m)
	w := (v.X * m[3][0]) + (v.Y * m[3][1]) + (v.Z * m[3][2]) + m[3][3]
	if w == 0 {
		return p
	}
	return p.ScalarMul(1 / w)
}
