package simulation

import (
	vm "batch_renderer/vector_math"
)

// Arrangement is the static grid layout objects start from and return to on a reset.
type Arrangement struct {
	Translations []vm.Vec3
	Centre       vm.Vec3
	Arranged     bool
}

func gridSize(n int) int {
	g := 1
	for g*g < n {
		g++
	}
	return g
}

// Arrange lays n objects out on the smallest square grid in the XZ plane, spacing units apart, and
// stores every translation relative to the grid's centroid so the layout is centred at the origin.
// Once arranged, further calls keep the stored result.
func (a *Arrangement) Arrange(n int, spacing float32) []vm.Vec3 {
	if a.Arranged {
		return a.Translations
	}
	g := gridSize(n)
	cells := make([]vm.Vec3, n)
	var centre vm.Vec3
	for i := range cells {
		cells[i] = vm.Vec3{
			X: float32(i%g) * spacing,
			Z: float32(i/g) * spacing,
		}
		centre = centre.Add(cells[i])
	}
	if n > 0 {
		centre = centre.ScalarMul(1 / float32(n))
	}
	for i := range cells {
		cells[i] = cells[i].Sub(centre)
	}
	a.Translations = cells
	a.Centre = centre
	a.Arranged = true
	return a.Translations
}
