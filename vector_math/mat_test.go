package vector_math

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestNewMat calls NewMat and confirms some general size constraints
func TestNewMat(t *testing.T) {

	mat0, err := NewMat(0, 0)
	if mat0 != nil {
		t.Errorf("Should not be able to create mat0: %s", mat0.ToString())
	}
	mat1, err := NewMat(1, 1)
	if err != nil {
		t.Errorf("Error creating matrix of size 1x1: %s", err)
	}
	mat2, err := NewMat(2, 2)
	if err != nil {
		t.Errorf("Error creating matrix of size 2x2: %s", err)
	}
	mat3, err := NewMat(3, 3)
	if err != nil {
		t.Errorf("Error creating matrix of size 3x3: %s", err)
	}
	mat4, err := NewMat(4, 4)
	if err != nil {
		t.Errorf("Error creating matrix of size 4x4: %s", err)
	}
	mat5, err := NewMat(5, 5)
	if err != nil {
		t.Errorf("Error creating matrix of size 5x5: %s", err)
	}
	mat6, err := NewMat(6, 6)
	if err != nil {
		t.Errorf("Error creating matrix of size 6x6: %s", err)
	}

	if mat1.ByteSize() != 4 {
		t.Errorf("mat1 should have byte size: %d", 4)
	}
	if mat2.ByteSize() != 16 {
		t.Errorf("mat2 should have byte size: %d", 16)
	}
	if mat3.ByteSize() != 36 {
		t.Errorf("mat3 should have byte size: %d", 36)
	}
	if mat4.ByteSize() != 64 {
		t.Errorf("mat4 should have byte size: %d", 64)
	}
	if mat5.ByteSize() != 100 {
		t.Errorf("mat5 should have byte size: %d", 100)
	}
	if mat6.ByteSize() != 144 {
		t.Errorf("mat6 should have byte size: %d but was %d", 144, mat6.ByteSize())
	}

}

const eps = 1e-5

func TestRotationX(t *testing.T) {
	mrx := New4x4RotXMat(ToRad(90))
	mrxComplex := NewRotation(ToRad(90), Vec3{X: 1})

	if !mrx.EqualsApprox(&mrxComplex, eps) {
		t.Errorf(
			"RotX not equal to generic rotation around X. RotX: \n%s\n Rotation around x-axis: \n%s",
			mrx.ToString(),
			mrxComplex.ToString(),
		)
	}
}

func TestRotationY(t *testing.T) {
	mry := New4x4RotYMat(ToRad(90))
	mryComplex := NewRotation(ToRad(90), Vec3{Y: 1})

	if !mry.EqualsApprox(&mryComplex, eps) {
		t.Errorf(
			"RotY not equal to generic rotation around Y. RotY: \n%s\n Rotation around y-axis: \n%s",
			mry.ToString(),
			mryComplex.ToString(),
		)
	}
}

func TestRotationZ(t *testing.T) {
	mrz := New4x4RotZMat(ToRad(90))
	mrzComplex := NewRotation(ToRad(90), Vec3{Z: 1})

	if !mrz.EqualsApprox(&mrzComplex, eps) {
		t.Errorf(
			"RotZ not equal to generic rotation around Z. RotZ: \n%s\n Rotation around z-axis: \n%s",
			mrz.ToString(),
			mrzComplex.ToString(),
		)
	}
}

func TestArbitraryRotation(t *testing.T) {
	mr := NewRotation(ToRad(-74), Vec3{X: -0.5, Y: 1, Z: 1})
	mrExample := NewUnitMat(4)
	mrExample[0][0] = 0.3561221
	mrExample[0][1] = 0.47987163
	mrExample[0][2] = -0.8018106

	mrExample[1][0] = -0.8018106
	mrExample[1][1] = 0.5975763
	mrExample[1][2] = 0.0015183985

	mrExample[2][0] = 0.47987163
	mrExample[2][1] = 0.6423595
	mrExample[2][2] = 0.5975763

	if !mr.EqualsApprox(&mrExample, eps) {
		t.Errorf(
			"Arbitrary rotation didnt match expectations. expectation: \n%s\n actual: \n%s",
			mrExample.ToString(),
			mr.ToString(),
		)
	}
}

func TestTranslationMovesPoints(t *testing.T) {
	m := NewTranslation(Vec3{X: 1, Y: -2, Z: 3})
	p := Apply(Vec3{X: 1, Y: 1, Z: 1}, 1, m)
	assert.Equal(t, Vec3{X: 2, Y: -1, Z: 4}, p)

	d := Apply(Vec3{X: 1, Y: 1, Z: 1}, 0, m)
	assert.Equal(t, Vec3{X: 1, Y: 1, Z: 1}, d, "directions must ignore translation")
}

func TestNewLookAt(t *testing.T) {
	eye := Vec3{Y: 16}
	v := NewLookAt(eye, eye.Add(Vec3{Y: -1}), Vec3{Z: 1})

	o := Apply(eye, 1, v)
	assert.InDelta(t, 0, o.Len(), eps, "eye must map to the view origin")

	// a point straight below the eye lies on the view's -Z axis
	p := Apply(Vec3{}, 1, v)
	assert.InDelta(t, 0, p.X, eps)
	assert.InDelta(t, 0, p.Y, eps)
	assert.InDelta(t, -16, p.Z, eps)
}

func TestNewPerspective(t *testing.T) {
	near, far := float32(0.01), float32(100)
	m := NewPerspective(1, 16.0/9.0, near, far)

	pNear := Project(Vec3{Z: -near}, m)
	pFar := Project(Vec3{Z: -far}, m)
	assert.InDelta(t, 0, pNear.Z, 1e-4)
	assert.InDelta(t, 1, pFar.Z, 1e-4)
}

func TestMultIdentity(t *testing.T) {
	m := New4x4RotMat(0.3, -1.2, 2)
	id := NewUnitMat(4)
	res := m.MustMult(&id)
	assert.True(t, res.Equals(&m))

	_, err := m.Mult(&Mat{{1, 2}})
	assert.Error(t, err)
}

func TestUnroll(t *testing.T) {
	m := Mat{
		{1, 2, 3, 4},
		{5, 6, 7, 8},
		{9, 10, 11, 12},
	}
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}, m.Unroll())
	assert.Equal(t, []float32{1, 5, 9, 2, 6, 10, 3, 7, 11, 4, 8, 12}, m.ColumnMajor())
}

func TestTranspose(t *testing.T) {
	m := Mat{
		{1, 2, 3, 4},
		{5, 6, 7, 8},
		{9, 10, 11, 12},
	}
	mT := m.Transpose()
	if mT.RowCnt() != 4 || mT.ColCnt() != 3 {
		t.Errorf("Transpose of 3x4 should be 4x3, got:\n%s", mT.Describe())
	}
	for i := range m {
		for j := range m[i] {
			if m[i][j] != mT[j][i] {
				t.Errorf("m[%d][%d] = %f but mT[%d][%d] = %f", i, j, m[i][j], j, i, mT[j][i])
			}
		}
	}
}

func TestSubRequiresEqualSize(t *testing.T) {
	a := NewUnitMat(3)
	b := NewUnitMat(3)
	c, err := a.Sub(&b)
	assert.NoError(t, err)
	zero, _ := NewMat(3, 3)
	assert.True(t, c.Equals(&zero))

	d := NewUnitMat(4)
	_, err = a.Sub(&d)
	assert.Error(t, err)
}
