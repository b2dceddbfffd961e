package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildScene(t *testing.T) {
	sources := []*Mesh{NewCube(), triangle()}
	scene, err := BuildScene(sources, 5, 1080)
	require.NoError(t, err)
	require.NoError(t, scene.Validate())

	// objects alternate between cube and triangle
	assert.Len(t, scene.Vertices, 3*24+2*3)
	assert.Len(t, scene.Indices, 3*36+2*3)

	counts := map[int32]int{}
	for _, v := range scene.Vertices {
		counts[v.ID]++
	}
	assert.Equal(t, map[int32]int{0: 24, 1: 3, 2: 24, 3: 3, 4: 24}, counts)

	// sources are copied, never mutated
	assert.Equal(t, NewCube(), sources[0])
}

func TestBuildSceneErrors(t *testing.T) {
	_, err := BuildScene(nil, 1, 100)
	assert.Error(t, err)
	_, err = BuildScene([]*Mesh{NewCube()}, 0, 100)
	assert.Error(t, err)
}
