package model

import (
	"math/rand/v2"

	"github.com/chewxy/math32"

	vm "batch_renderer/vector_math"
)

// ObjectScale shrinks every source mesh before it is placed.
const ObjectScale = 0.5

// LightBase is the light position before any animation.
var LightBase = vm.Vec3{X: 2, Y: -3, Z: 1}

// ObjectMatrix is translate(position) * scale * rotZ(180) * rotZ(o.Z) * rotY(o.Y) * rotX(o.X), with the
// orientation o given in degrees.
func ObjectMatrix(position vm.Vec3, orientation vm.Vec3) vm.Mat {
	t := vm.NewTranslation(position)
	s := vm.NewScale(vm.Vec3{X: ObjectScale, Y: ObjectScale, Z: ObjectScale})
	flip := vm.NewRotation(math32.Pi, vm.Vec3{Z: 1})
	rot := vm.New4x4RotMat(vm.ToRad(orientation.Z), vm.ToRad(orientation.Y), vm.ToRad(orientation.X))

	m := t.MustMult(&s)
	m = m.MustMult(&flip)
	return m.MustMult(&rot)
}

// AnimateLight circles the light around the Z axis, t is the animation clock. Z is kept.
func AnimateLight(light vm.Vec3, t float64) vm.Vec3 {
	a := float32(t) * 0.1
	light.X = math32.Sin(a) * 4
	light.Y = math32.Cos(a) * 4
	return light
}

// RandomMaterials draws n RGBA colours with every channel uniform in [lo, hi).
func RandomMaterials(rng *rand.Rand, n int, lo float32, hi float32) []vm.Vec4 {
	m := make([]vm.Vec4, n)
	for i := range m {
		m[i] = vm.Vec4{
			X: lo + rng.Float32()*(hi-lo),
			Y: lo + rng.Float32()*(hi-lo),
			Z: lo + rng.Float32()*(hi-lo),
			W: lo + rng.Float32()*(hi-lo),
		}
	}
	return m
}
