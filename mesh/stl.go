package mesh

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"go.uber.org/zap"

	"batch_renderer/logger"
	vm "batch_renderer/vector_math"
)

const (
	stlHeaderSize   = 80
	stlTriangleSize = 50
)

var stlCornerUVs = [3]vm.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}}

// ReadSTL imports a binary STL file. Every triangle gets its own three vertices carrying the face normal,
// a white colour and the UVs of a unit triangle.
func ReadSTL(r io.Reader) (*Mesh, error) {
	header := make([]byte, stlHeaderSize+4)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("read stl header: %w", err)
	}
	tCnt := binary.LittleEndian.Uint32(header[stlHeaderSize:])

	// grows with the triangles read, not with the count claimed by the header
	capacity := min(int(tCnt), readChunk) * 3
	m := &Mesh{
		Vertices: make([]Vertex, 0, capacity),
		Indices:  make([]uint32, 0, capacity),
	}
	rec := make([]byte, stlTriangleSize)
	for t := uint32(0); t < tCnt; t++ {
		if _, err := io.ReadFull(r, rec); err != nil {
			return nil, fmt.Errorf("read stl triangle %d of %d: %w", t, tCnt, err)
		}
		normal := toVec3(rec[0:12])
		for c := 0; c < 3; c++ {
			off := 12 + c*12
			m.Indices = append(m.Indices, uint32(len(m.Vertices)))
			m.Vertices = append(m.Vertices, Vertex{
				Position: toVec3(rec[off : off+12]),
				Normal:   normal,
				Color:    vm.Vec3{X: 1, Y: 1, Z: 1},
				UV:       stlCornerUVs[c],
			})
		}
		// the trailing 2 byte attribute count is ignored
	}
	return m, nil
}

func ReadSTLFile(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open stl file: %w", err)
	}
	defer f.Close()

	m, err := ReadSTL(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("stl file %s: %w", path, err)
	}
	logger.Debug("Read stl file",
		zap.String("path", path),
		zap.Int("triangles", len(m.Indices)/3),
		zap.Int("kib", len(m.Indices)/3*stlTriangleSize/1024),
	)
	return m, nil
}

func toVec3(bytes []byte) vm.Vec3 {
	return vm.Vec3{
		X: toFloat32(bytes[:4]),
		Y: toFloat32(bytes[4:8]),
		Z: toFloat32(bytes[8:12]),
	}
}

func toFloat32(bytes []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(bytes))
}
