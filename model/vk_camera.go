package model

import (
	"github.com/chewxy/math32"

	vm "batch_renderer/vector_math"
)

// Camera hovers above the object grid looking straight down -Y, with +Z as the screen's up direction.
type Camera struct {
	Fov    float32 // vertical field of view in radians
	Aspect float32
	Near   float32
	Far    float32

	Eye     vm.Vec3
	LookDir vm.Vec3
	Up      vm.Vec3
	Speed   float32
}

// NewCamera places the eye high enough to see a grid of n objects.
func NewCamera(n int, aspect float32, speed float32) *Camera {
	return &Camera{
		Fov:     1,
		Aspect:  aspect,
		Near:    0.01,
		Far:     100,
		Eye:     vm.Vec3{Y: math32.Sqrt(float32(n)) * 2},
		LookDir: vm.Vec3{Y: -1},
		Up:      vm.Vec3{Z: 1},
		Speed:   speed,
	}
}

// Move shifts the eye by dir scaled with the camera speed. dir is expected per axis in {-1, 0, 1}.
func (c *Camera) Move(dir vm.Vec3) {
	c.Eye = c.Eye.Add(dir.ScalarMul(c.Speed))
}

func (c *Camera) GetView() vm.Mat {
	return vm.NewLookAt(c.Eye, c.Eye.Add(c.LookDir), c.Up)
}

// GetProjection returns the perspective projection with Y flipped for Vulkan's downward clip space.
func (c *Camera) GetProjection() vm.Mat {
	m := vm.NewPerspective(c.Fov, c.Aspect, c.Near, c.Far)
	m[1][1] *= -1
	return m
}
