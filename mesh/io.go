package mesh

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"batch_renderer/logger"
)

// The .mesh format carries no magic or version:
// [u32 vertex count][u32 index count][vertex count x Vertex][index count x u32], little endian.

// Read decodes a mesh in .mesh layout and validates its indices.
func Read(r io.Reader) (*Mesh, error) {
	var header [2]uint32
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("read mesh header: %w", asUnexpectedEOF(err))
	}
	vertices, err := readRecords[Vertex](r, int(header[0]))
	if err != nil {
		return nil, fmt.Errorf("read %d vertices: %w", header[0], err)
	}
	indices, err := readRecords[uint32](r, int(header[1]))
	if err != nil {
		return nil, fmt.Errorf("read %d indices: %w", header[1], err)
	}
	m := &Mesh{Vertices: vertices, Indices: indices}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Write encodes m in .mesh layout.
func Write(w io.Writer, m *Mesh) error {
	header := [2]uint32{uint32(len(m.Vertices)), uint32(len(m.Indices))}
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return fmt.Errorf("write mesh header: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, m.Vertices); err != nil {
		return fmt.Errorf("write vertices: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, m.Indices); err != nil {
		return fmt.Errorf("write indices: %w", err)
	}
	return nil
}

func ReadFile(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open mesh file: %w", err)
	}
	defer f.Close()

	m, err := Read(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("mesh file %s: %w", path, err)
	}
	logger.Debug("Read mesh file",
		zap.String("path", path),
		zap.Int("vertices", len(m.Vertices)),
		zap.Int("indices", len(m.Indices)),
	)
	return m, nil
}

func WriteFile(path string, m *Mesh) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create mesh file: %w", err)
	}
	bw := bufio.NewWriter(f)
	if err := Write(bw, m); err != nil {
		f.Close()
		return fmt.Errorf("mesh file %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("flush mesh file %s: %w", path, err)
	}
	return f.Close()
}

// readChunk bounds how many records are allocated ahead of the data actually read, the counts in a
// header are not trusted.
const readChunk = 4096

func readRecords[T any](r io.Reader, n int) ([]T, error) {
	out := make([]T, 0, min(n, readChunk))
	chunk := make([]T, min(n, readChunk))
	for len(out) < n {
		part := chunk[:min(n-len(out), readChunk)]
		if err := binary.Read(r, binary.LittleEndian, part); err != nil {
			return nil, asUnexpectedEOF(err)
		}
		out = append(out, part...)
	}
	return out, nil
}

// binary.Read reports io.EOF when nothing at all could be read, for a sized record that is still a
// truncated file.
func asUnexpectedEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
