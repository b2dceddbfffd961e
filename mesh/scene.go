package mesh

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// LoadSources reads the source meshes objects are stamped from. ".stl" files go through the STL importer,
// everything else is read as .mesh. Without paths the built-in cube is the only source.
func LoadSources(paths []string) ([]*Mesh, error) {
	if len(paths) == 0 {
		return []*Mesh{NewCube()}, nil
	}
	sources := make([]*Mesh, 0, len(paths))
	for _, p := range paths {
		var (
			m   *Mesh
			err error
		)
		if strings.EqualFold(filepath.Ext(p), ".stl") {
			m, err = ReadSTLFile(p)
		} else {
			m, err = ReadFile(p)
		}
		if err != nil {
			return nil, err
		}
		sources = append(sources, m)
	}
	return sources, nil
}

// BuildScene batches n objects into a single mesh. Object i is a copy of sources[i % len(sources)] tagged
// with id i. The atlas runs once over the finished vertex array.
func BuildScene(sources []*Mesh, n int, atlasResolution float32) (*Mesh, error) {
	if len(sources) == 0 {
		return nil, errors.New("scene needs at least one source mesh")
	}
	if n <= 0 {
		return nil, fmt.Errorf("scene needs at least one object, got %d", n)
	}

	var vCnt, iCnt int
	for i := 0; i < n; i++ {
		src := sources[i%len(sources)]
		vCnt += len(src.Vertices)
		iCnt += len(src.Indices)
	}
	scene := &Mesh{
		Vertices: make([]Vertex, 0, vCnt),
		Indices:  make([]uint32, 0, iCnt),
	}
	for i := 0; i < n; i++ {
		obj := sources[i%len(sources)].Clone()
		Assign(obj, int32(i))
		if err := Merge(scene, obj); err != nil {
			return nil, fmt.Errorf("merge object %d: %w", i, err)
		}
	}
	if err := Atlas(scene.Vertices, n, atlasResolution); err != nil {
		return nil, err
	}
	return scene, nil
}
