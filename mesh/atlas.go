package mesh

import (
	"fmt"

	"github.com/chewxy/math32"

	vm "batch_renderer/vector_math"
)

// GridSize is the edge length of the smallest square grid holding n cells.
func GridSize(n int) int {
	if n <= 0 {
		return 0
	}
	g := int(math32.Ceil(math32.Sqrt(float32(n))))
	// float rounding may land one off for large perfect squares
	for g*g < n {
		g++
	}
	for g > 1 && (g-1)*(g-1) >= n {
		g--
	}
	return g
}

// CellOffset is the UV origin of the atlas cell owned by object id.
func CellOffset(id int32, gridSize int) vm.Vec2 {
	g := int32(gridSize)
	return vm.Vec2{
		X: float32(id%g) / float32(gridSize),
		Y: float32(id/g) / float32(gridSize),
	}
}

// Atlas remaps the UVs of the fully batched vertex array so every object samples its own cell of a
// shared texture. Pass one scales every UV into a single cell, pass two moves it to the cell picked by the
// vertex's object id. It has to run once, after all objects were assigned and merged.
// The atlas resolution only has to be positive, the cells are expressed in normalised UV space.
func Atlas(vertices []Vertex, objectCount int, atlasResolution float32) error {
	if objectCount <= 0 {
		return fmt.Errorf("atlas needs at least one object, got %d", objectCount)
	}
	if atlasResolution <= 0 {
		return fmt.Errorf("atlas resolution must be positive, got %f", atlasResolution)
	}
	for i := range vertices {
		if id := vertices[i].ID; id < 0 || int(id) >= objectCount {
			return fmt.Errorf("%w: vertex %d has object id %d outside [0, %d)", ErrMalformedMesh, i, id, objectCount)
		}
	}

	g := GridSize(objectCount)
	scale := 1 / float32(g)
	for i := range vertices {
		vertices[i].UV = vertices[i].UV.ScalarMul(scale)
	}
	for i := range vertices {
		vertices[i].UV = vertices[i].UV.Add(CellOffset(vertices[i].ID, g))
	}
	return nil
}
