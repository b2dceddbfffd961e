package model

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	vm "batch_renderer/vector_math"
)

// ErrCapacity reports more objects than the uniform block was sized for.
var ErrCapacity = errors.New("object count exceeds uniform block capacity")

const (
	mat4Size = 64
	vec4Size = 16
)

// UniformBlock is the per-frame uniform data. It is rebuilt every frame and serialised with std140
// rules into a buffer sized for Capacity objects:
//
//	mat4 models[Capacity]; mat4 view; mat4 proj; vec3 light; vec3 eye; vec4 materials[Capacity];
type UniformBlock struct {
	Models     []vm.Mat
	View       vm.Mat
	Projection vm.Mat
	Light      vm.Vec3
	Eye        vm.Vec3
	Materials  []vm.Vec4

	capacity int
}

// NewUniformBlock creates a block for n objects. n has to be within [1, capacity].
func NewUniformBlock(n int, capacity int) (*UniformBlock, error) {
	if n <= 0 {
		return nil, fmt.Errorf("uniform block needs at least one object, got %d", n)
	}
	if n > capacity {
		return nil, fmt.Errorf("%w: %d objects, capacity %d", ErrCapacity, n, capacity)
	}
	b := &UniformBlock{
		Models:     make([]vm.Mat, n),
		View:       vm.NewUnitMat(4),
		Projection: vm.NewUnitMat(4),
		Light:      LightBase,
		Materials:  make([]vm.Vec4, n),
		capacity:   capacity,
	}
	for i := range b.Models {
		b.Models[i] = vm.NewUnitMat(4)
	}
	return b, nil
}

// SizeOfUniformBlock is the std140 size of a block holding capacity objects.
func SizeOfUniformBlock(capacity int) int {
	return capacity*mat4Size + 2*mat4Size + 2*vec4Size + capacity*vec4Size
}

// MemberOffsets are the std140 byte offsets of the block members for capacity objects, in declaration
// order. A shader compiled for a different capacity places view, proj and the rest elsewhere.
func MemberOffsets(capacity int) []uint32 {
	models := uint32(capacity * mat4Size)
	return []uint32{
		0,
		models,
		models + mat4Size,
		models + 2*mat4Size,
		models + 2*mat4Size + vec4Size,
		models + 2*mat4Size + 2*vec4Size,
	}
}

func (u *UniformBlock) Capacity() int {
	return u.capacity
}

func (u *UniformBlock) Size() int {
	return SizeOfUniformBlock(u.capacity)
}

// SetObjects rebuilds every model matrix from positions and orientations.
func (u *UniformBlock) SetObjects(positions []vm.Vec3, orientations []vm.Vec3) error {
	if len(positions) != len(u.Models) || len(orientations) != len(u.Models) {
		return fmt.Errorf("got %d positions and %d orientations for %d objects",
			len(positions), len(orientations), len(u.Models))
	}
	for i := range u.Models {
		u.Models[i] = ObjectMatrix(positions[i], orientations[i])
	}
	return nil
}

// SetMaterials replaces the material colours, one per object.
func (u *UniformBlock) SetMaterials(m []vm.Vec4) error {
	if len(m) != len(u.Materials) {
		return fmt.Errorf("got %d materials for %d objects", len(m), len(u.Materials))
	}
	copy(u.Materials, m)
	return nil
}

// Bytes serialises the block. Slots past the object count stay zero.
func (u *UniformBlock) Bytes() []byte {
	b := make([]byte, u.Size())
	off := 0
	for i := 0; i < u.capacity; i++ {
		if i < len(u.Models) {
			putFloats(b[off:], u.Models[i].ColumnMajor())
		}
		off += mat4Size
	}
	putFloats(b[off:], u.View.ColumnMajor())
	off += mat4Size
	putFloats(b[off:], u.Projection.ColumnMajor())
	off += mat4Size
	putFloats(b[off:], []float32{u.Light.X, u.Light.Y, u.Light.Z})
	off += vec4Size
	putFloats(b[off:], []float32{u.Eye.X, u.Eye.Y, u.Eye.Z})
	off += vec4Size
	for i := 0; i < len(u.Materials); i++ {
		m := u.Materials[i]
		putFloats(b[off+i*vec4Size:], []float32{m.X, m.Y, m.Z, m.W})
	}
	return b
}

func putFloats(b []byte, f []float32) {
	for i, v := range f {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(v))
	}
}
