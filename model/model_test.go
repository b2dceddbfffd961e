package model

import (
	"encoding/binary"
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vm "batch_renderer/vector_math"
)

func floatAt(b []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[off:]))
}

func TestNewUniformBlockCapacity(t *testing.T) {
	_, err := NewUniformBlock(65, 64)
	assert.True(t, errors.Is(err, ErrCapacity))

	_, err = NewUniformBlock(0, 64)
	assert.Error(t, err)

	u, err := NewUniformBlock(64, 64)
	require.NoError(t, err)
	assert.Equal(t, 64, u.Capacity())
	assert.Equal(t, 64*64+128+32+64*16, u.Size())
}

func TestUniformBlockLayout(t *testing.T) {
	const capacity = 4
	u, err := NewUniformBlock(2, capacity)
	require.NoError(t, err)
	require.NoError(t, u.SetObjects(
		[]vm.Vec3{{X: 1, Y: 2, Z: 3}, {X: -4}},
		[]vm.Vec3{{}, {}},
	))
	require.NoError(t, u.SetMaterials([]vm.Vec4{{X: 0.1, Y: 0.2, Z: 0.3, W: 0.4}, {X: 1, Y: 1, Z: 1, W: 1}}))
	u.Light = vm.Vec3{X: 5, Y: 6, Z: 7}
	u.Eye = vm.Vec3{X: 8, Y: 9, Z: 10}

	b := u.Bytes()
	require.Len(t, b, SizeOfUniformBlock(capacity))

	// column major: translation of model 0 is the fourth column
	assert.Equal(t, float32(1), floatAt(b, 12*4))
	assert.Equal(t, float32(2), floatAt(b, 13*4))
	assert.Equal(t, float32(3), floatAt(b, 14*4))
	assert.Equal(t, float32(-4), floatAt(b, 64+12*4))
	// unused model slots stay zero
	for off := 2 * 64; off < capacity*64; off += 4 {
		if floatAt(b, off) != 0 {
			t.Fatalf("unused model slot not zero at byte %d", off)
		}
	}

	viewOff := capacity * 64
	assert.Equal(t, float32(1), floatAt(b, viewOff), "view defaults to identity")
	lightOff := viewOff + 128
	assert.Equal(t, []float32{5, 6, 7, 0}, []float32{
		floatAt(b, lightOff), floatAt(b, lightOff+4), floatAt(b, lightOff+8), floatAt(b, lightOff+12),
	})
	eyeOff := lightOff + 16
	assert.Equal(t, float32(8), floatAt(b, eyeOff))
	assert.Equal(t, float32(10), floatAt(b, eyeOff+8))
	matOff := eyeOff + 16
	assert.Equal(t, float32(0.4), floatAt(b, matOff+12))
	assert.Equal(t, float32(1), floatAt(b, matOff+16))
}

func TestSetObjectsRejectsMismatch(t *testing.T) {
	u, err := NewUniformBlock(2, 4)
	require.NoError(t, err)
	// a length mismatch is not a capacity overflow, both calls stay within capacity 4
	err = u.SetObjects(make([]vm.Vec3, 3), make([]vm.Vec3, 3))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrCapacity))
	err = u.SetMaterials(make([]vm.Vec4, 1))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrCapacity))
}

func TestMemberOffsets(t *testing.T) {
	const capacity = 4
	assert.Equal(t, []uint32{0, 256, 320, 384, 400, 416}, MemberOffsets(capacity))
	offsets := MemberOffsets(capacity)
	assert.Equal(t, SizeOfUniformBlock(capacity), int(offsets[len(offsets)-1])+capacity*16)
}

func TestObjectMatrix(t *testing.T) {
	m := ObjectMatrix(vm.Vec3{X: 3}, vm.Vec3{})
	// scale 0.5 and a half turn about Z: (1, 0, 0) -> (-0.5, 0, 0), then translated
	p := vm.Apply(vm.Vec3{X: 1}, 1, m)
	assert.InDelta(t, 2.5, p.X, 1e-6)
	assert.InDelta(t, 0, p.Y, 1e-6)

	// 90 degrees about X moves +Y to +Z before the half turn, which leaves Z alone
	r := ObjectMatrix(vm.Vec3{}, vm.Vec3{X: 90})
	q := vm.Apply(vm.Vec3{Y: 1}, 1, r)
	assert.InDelta(t, 0, q.X, 1e-6)
	assert.InDelta(t, 0, q.Y, 1e-6)
	assert.InDelta(t, 0.5, q.Z, 1e-6)
}

func TestCamera(t *testing.T) {
	c := NewCamera(16, 16.0/9.0, 0.1)
	assert.InDelta(t, 8, c.Eye.Y, 1e-6)

	c.Move(vm.Vec3{Y: -1, X: 1})
	assert.InDelta(t, 7.9, c.Eye.Y, 1e-5)
	assert.InDelta(t, 0.1, c.Eye.X, 1e-6)

	// the origin lies in front of the camera and in the middle of the screen
	vp := c.GetProjection()
	v := c.GetView()
	pv := vp.MustMult(&v)
	ndc := vm.Project(vm.Vec3{X: c.Eye.X, Z: c.Eye.Z}, pv)
	assert.InDelta(t, 0, ndc.X, 1e-5)
	assert.InDelta(t, 0, ndc.Y, 1e-5)
	assert.True(t, ndc.Z > 0 && ndc.Z < 1, "depth %f outside [0, 1]", ndc.Z)

	// +Z is up on screen, Vulkan's clip space Y points down
	up := vm.Project(vm.Vec3{X: c.Eye.X, Z: c.Eye.Z + 1}, pv)
	assert.Less(t, up.Y, float32(0))
}

func TestAnimateLight(t *testing.T) {
	l := AnimateLight(LightBase, 0)
	assert.Equal(t, vm.Vec3{X: 0, Y: 4, Z: LightBase.Z}, l)

	l = AnimateLight(LightBase, 5*math.Pi)
	assert.InDelta(t, 4, l.X, 1e-5)
	assert.InDelta(t, 0, l.Y, 1e-5)
}

func TestRandomMaterials(t *testing.T) {
	m := RandomMaterials(rand.New(rand.NewPCG(1, 1)), 32, 0.2, 1)
	require.Len(t, m, 32)
	for _, c := range m {
		for _, ch := range []float32{c.X, c.Y, c.Z, c.W} {
			assert.GreaterOrEqual(t, ch, float32(0.2))
			assert.Less(t, ch, float32(1.0000001))
		}
	}
}
