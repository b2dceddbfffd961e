package renderer

import (
	"batch_renderer/mesh"

	"go.uber.org/zap"
)

// Bytes per pixel of a swapchain colour image and of its depth target as accounted in the report.
const (
	colorBytesPerPixel = 4
	depthBytesPerPixel = 12
)

// Stats is one periodic report line of the running renderer.
type Stats struct {
	FPS       uint32
	MeshMB    float64
	TextureMB float64
	Objects   int
	Vertices  int
}

// MeshMegabytes is the device memory taken by the vertex and index buffers of m.
func MeshMegabytes(m *mesh.Mesh) float64 {
	return float64(m.VertexBytes()+m.IndexBytes()) / 1e6
}

// TextureMegabytes is the memory of the render targets: colour plus depth for each swapchain image.
func TextureMegabytes(width uint32, height uint32, images int) float64 {
	px := float64(width) * float64(height)
	return (px*colorBytesPerPixel + px*depthBytesPerPixel) / 1e6 * float64(images)
}

// Stats reports the current frame rate together with the static memory figures of the context.
func (c *Context) Stats(fps uint32) Stats {
	return Stats{
		FPS:       fps,
		MeshMB:    MeshMegabytes(c.scene.Mesh),
		TextureMB: TextureMegabytes(c.swapChain.Extend.Width, c.swapChain.Extend.Height, len(c.swapChain.Images)),
		Objects:   c.cfg.Scene.Objects,
		Vertices:  len(c.scene.Mesh.Vertices),
	}
}

func (s Stats) Fields() []zap.Field {
	return []zap.Field{
		zap.Uint32("fps", s.FPS),
		zap.Float64("meshMB", s.MeshMB),
		zap.Float64("textureMB", s.TextureMB),
		zap.Int("objects", s.Objects),
		zap.Int("vertices", s.Vertices),
	}
}
