package mesh

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"

	vm "batch_renderer/vector_math"
)

func TestCentroid(t *testing.T) {
	assert.Equal(t, vm.Vec3{}, Centroid(nil))
	c := Centroid(NewCube().Vertices)
	assert.InDelta(t, 0, c.Len(), 1e-6)

	v := []Vertex{{Position: vm.Vec3{X: 2}}, {Position: vm.Vec3{X: 4, Y: 6}}}
	assert.Equal(t, vm.Vec3{X: 3, Y: 3}, Centroid(v))
}

func TestEstimateBoundsIsConservative(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	meshes := [][]Vertex{NewCube().Vertices, triangle().Vertices}
	for k := 0; k < 20; k++ {
		v := make([]Vertex, 1+r.IntN(50))
		for i := range v {
			v[i].Position = vm.Vec3{
				X: r.Float32()*20 - 10,
				Y: r.Float32()*4 - 2,
				Z: r.Float32()*100 - 50,
			}
		}
		meshes = append(meshes, v)
	}

	for mi, v := range meshes {
		s := EstimateBounds(v)
		assert.Equal(t, Centroid(v), s.Centre)
		for i := range v {
			if !s.Contains(v[i].Position) {
				t.Errorf("mesh %d: vertex %v outside sphere %v", mi, v[i].Position, s)
			}
		}
	}
}

func TestEstimateBoundsStartsFromLongestSpan(t *testing.T) {
	// the x span dominates, the sphere is at least as large as the full extent
	v := []Vertex{
		{Position: vm.Vec3{X: -5}},
		{Position: vm.Vec3{X: 5}},
		{Position: vm.Vec3{Y: 1}},
	}
	s := EstimateBounds(v)
	assert.InDelta(t, 10, s.Radius, 1e-6)
	assert.Equal(t, Sphere{}, EstimateBounds(nil))
}
