package mesh

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vm "batch_renderer/vector_math"
)

func TestWriteLayout(t *testing.T) {
	m := triangle()
	Assign(m, 5)
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, m))

	b := buf.Bytes()
	require.Len(t, b, 8+3*VertexSize+3*4)
	assert.Equal(t, uint32(3), binary.LittleEndian.Uint32(b[0:4]))
	assert.Equal(t, uint32(3), binary.LittleEndian.Uint32(b[4:8]))
	// id is the last field of the first vertex record
	assert.Equal(t, uint32(5), binary.LittleEndian.Uint32(b[8+VertexSize-4:8+VertexSize]))
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(b[len(b)-4:]))
}

func TestReadWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.mesh")
	scene, err := BuildScene([]*Mesh{NewCube()}, 3, 1080)
	require.NoError(t, err)

	require.NoError(t, WriteFile(path, scene))
	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, scene, got)
}

func TestReadTruncated(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, NewCube()))
	b := buf.Bytes()

	for _, n := range []int{0, 5, 8 + VertexSize*2, len(b) - 1} {
		_, err := Read(bytes.NewReader(b[:n]))
		if !errors.Is(err, io.ErrUnexpectedEOF) {
			t.Errorf("reading %d of %d bytes: expected unexpected EOF, got %v", n, len(b), err)
		}
	}
}

func TestReadHugeHeaderWithoutPayload(t *testing.T) {
	for _, header := range [][2]uint32{{1 << 28, 0}, {0, 1 << 28}, {math.MaxUint32, math.MaxUint32}} {
		var buf bytes.Buffer
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, header))
		_, err := Read(&buf)
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF, "header %v", header)
	}
}

func TestReadSpansChunks(t *testing.T) {
	vertices := make([]Vertex, readChunk+3)
	indices := make([]uint32, 2*readChunk+1)
	for i := range indices {
		indices[i] = uint32(i % len(vertices))
	}
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, New(vertices, indices)))
	got, err := Read(&buf)
	require.NoError(t, err)
	assert.Len(t, got.Vertices, len(vertices))
	assert.Equal(t, indices, got.Indices)
}

func TestReadRejectsBadIndices(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, New([]Vertex{{Position: vm.Vec3{X: 1}}}, []uint32{0, 1})))
	_, err := Read(&buf)
	assert.True(t, errors.Is(err, ErrMalformedMesh))
}
