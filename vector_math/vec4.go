package vector_math

// Vec4 mirrors a GLSL vec4, it is used for material colours where the alpha channel feeds blending.
type Vec4 struct {
	X, Y, Z, W float32
}

func NewVec4(v Vec3, w float32) Vec4 {
	return Vec4{X: v.X, Y: v.Y, Z: v.Z, W: w}
}

func (v Vec4) XYZ() Vec3 {
	return Vec3{X: v.X, Y: v.Y, Z: v.Z}
}
