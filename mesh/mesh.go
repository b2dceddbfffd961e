// Package mesh builds the batched scene geometry: many object meshes merged into one vertex/index stream
// with per-vertex object ids and a UV atlas that gives every object its own texture cell.
package mesh

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	vm "batch_renderer/vector_math"
)

// ErrMalformedMesh reports an index that does not address a vertex of its own mesh.
var ErrMalformedMesh = errors.New("malformed mesh")

// Mesh is an indexed triangle list.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
}

func New(v []Vertex, idx []uint32) *Mesh {
	return &Mesh{
		Vertices: v,
		Indices:  idx,
	}
}

// Clone returns a deep copy, so a source mesh can be stamped out for several objects.
func (m *Mesh) Clone() *Mesh {
	c := &Mesh{
		Vertices: make([]Vertex, len(m.Vertices)),
		Indices:  make([]uint32, len(m.Indices)),
	}
	copy(c.Vertices, m.Vertices)
	copy(c.Indices, m.Indices)
	return c
}

// Validate checks that every index addresses a vertex of m.
func (m *Mesh) Validate() error {
	n := uint32(len(m.Vertices))
	for i, idx := range m.Indices {
		if idx >= n {
			return fmt.Errorf("%w: index %d at position %d out of range for %d vertices", ErrMalformedMesh, idx, i, n)
		}
	}
	return nil
}

// VertexBytes is the size of the vertex stream in device memory.
func (m *Mesh) VertexBytes() int {
	return len(m.Vertices) * VertexSize
}

// IndexBytes is the size of the index stream in device memory.
func (m *Mesh) IndexBytes() int {
	return len(m.Indices) * 4
}

// VertexData is the vertex stream as uploaded to the GPU, little endian and tightly packed.
func (m *Mesh) VertexData() []byte {
	buf := bytes.NewBuffer(make([]byte, 0, m.VertexBytes()))
	// writes into a bytes.Buffer of fixed size records cannot fail
	_ = binary.Write(buf, binary.LittleEndian, m.Vertices)
	return buf.Bytes()
}

// IndexData is the uint32 index stream as uploaded to the GPU.
func (m *Mesh) IndexData() []byte {
	buf := bytes.NewBuffer(make([]byte, 0, m.IndexBytes()))
	_ = binary.Write(buf, binary.LittleEndian, m.Indices)
	return buf.Bytes()
}

// Merge appends src to dst. Indices of src are shifted by the number of vertices dst held before the
// call. src is validated first, a malformed src leaves dst untouched.
func Merge(dst *Mesh, src *Mesh) error {
	if err := src.Validate(); err != nil {
		return err
	}
	offset := uint32(len(dst.Vertices))
	dst.Vertices = append(dst.Vertices, src.Vertices...)
	dst.Indices = append(dst.Indices, make([]uint32, len(src.Indices))...)
	shifted := dst.Indices[len(dst.Indices)-len(src.Indices):]
	for i, idx := range src.Indices {
		shifted[i] = idx + offset
	}
	return nil
}

// Assign tags every vertex of m with the object id, overwriting prior ids.
func Assign(m *Mesh, id int32) {
	for i := range m.Vertices {
		m.Vertices[i].ID = id
	}
}

// Paint sets the vertex colour of every vertex.
func Paint(m *Mesh, c vm.Vec3) {
	for i := range m.Vertices {
		m.Vertices[i].Color = c
	}
}
