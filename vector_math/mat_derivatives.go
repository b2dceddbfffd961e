package vector_math

import "github.com/chewxy/math32"

func New4x4RotXMat(rad float32) Mat {
	m, _ := NewMat(4, 4)
	m[0][0] = 1
	m[1][1] = math32.Cos(rad)
	m[1][2] = -math32.Sin(rad)
	m[2][1] = math32.Sin(rad)
	m[2][2] = math32.Cos(rad)
	m[3][3] = 1
	return m
}

func New4x4RotYMat(rad float32) Mat {
	m, _ := NewMat(4, 4)
	m[0][0] = math32.Cos(rad)
	m[0][2] = math32.Sin(rad)
	m[1][1] = 1
	m[2][0] = -math32.Sin(rad)
	m[2][2] = math32.Cos(rad)
	m[3][3] = 1
	return m
}

func New4x4RotZMat(rad float32) Mat {
	m, _ := NewMat(4, 4)
	m[0][0] = math32.Cos(rad)
	m[0][1] = -math32.Sin(rad)
	m[1][0] = math32.Sin(rad)
	m[1][1] = math32.Cos(rad)
	m[2][2] = 1
	m[3][3] = 1
	return m
}

// New4x4RotMat composes Z * Y * X, so x is applied first.
func New4x4RotMat(yaw float32, pitch float32, roll float32) Mat {
	mx := New4x4RotXMat(roll)
	my := New4x4RotYMat(pitch)
	mz := New4x4RotZMat(yaw)
	mzy := mz.MustMult(&my)
	return mzy.MustMult(&mx)
}

func NewUnitMat(s uint) Mat {
	um, _ := NewMat(s, s)
	for i := range um {
		um[i][i] = 1
	}
	return um
}

// NewRotation builds a rotation of rad radians around an arbitrary axis (Rodrigues' formula).
func NewRotation(rad float32, axis Vec3) Mat {
	u := axis
	if u.Dot(u) != 1 {
		u = axis.Norm()
	}
	ux, uy, uz := u.X, u.Y, u.Z
	cosT := math32.Cos(rad)
	sinT := math32.Sin(rad)
	rm := NewUnitMat(4)
	rm[0][0] = cosT + ((ux * ux) * (1 - cosT))
	rm[0][1] = (ux*uy)*(1-cosT) - (uz * sinT)
	rm[0][2] = (ux*uz)*(1-cosT) + (uy * sinT)

	rm[1][0] = (uy*ux)*(1-cosT) + (uz * sinT)
	rm[1][1] = cosT + (uy*uy)*(1-cosT)
	rm[1][2] = (uy*uz)*(1-cosT) - (ux * sinT)

	rm[2][0] = (uz*ux)*(1-cosT) - (uy * sinT)
	rm[2][1] = (uz*uy)*(1-cosT) + (ux * sinT)
	rm[2][2] = cosT + (uz*uz)*(1-cosT)

	return rm
}

// NewPerspective builds a right-handed projection into Vulkan's [0, 1] depth range. The camera looks
// down -Z. Vulkan's clip space Y points down, flip m[1][1] to render upright.
func NewPerspective(fovy float32, aspect float32, zNear float32, zFar float32) Mat {
	f := 1 / math32.Tan(fovy/2)
	m, _ := NewMat(4, 4)
	m[0][0] = f / aspect
	m[1][1] = f
	m[2][2] = zFar / (zNear - zFar)
	m[2][3] = (zFar * zNear) / (zNear - zFar)
	m[3][2] = -1
	return m
}

// NewLookAt implemented after http://www.opengl.org/sdk/docs/man2/xhtml/gluLookAt.xml
func NewLookAt(camPos Vec3, camTarget Vec3, up Vec3) Mat {
	f := camTarget.Sub(camPos).Norm()
	s := f.Cross(up).Norm()
	u := s.Cross(f)

	m := NewUnitMat(4)
	m[0][0] = s.X
	m[0][1] = s.Y
	m[0][2] = s.Z
	m[0][3] = -s.Dot(camPos)

	m[1][0] = u.X
	m[1][1] = u.Y
	m[1][2] = u.Z
	m[1][3] = -u.Dot(camPos)

	m[2][0] = -f.X
	m[2][1] = -f.Y
	m[2][2] = -f.Z
	m[2][3] = f.Dot(camPos)
	return m
}

func NewScale(s Vec3) Mat {
	sm := NewUnitMat(4)
	sm[0][0] = s.X
	sm[1][1] = s.Y
	sm[2][2] = s.Z
	return sm
}

func NewTranslation(t Vec3) Mat {
	tm := NewUnitMat(4)
	tm[0][3] = t.X
	tm[1][3] = t.Y
	tm[2][3] = t.Z
	return tm
}
