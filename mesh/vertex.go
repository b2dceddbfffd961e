package mesh

import vm "batch_renderer/vector_math"

// Vertex is the per-vertex record shared by CPU and GPU. The layout is tightly packed (48 bytes) and
// matches the vertex input attributes the pipeline declares.
type Vertex struct {
	Position vm.Vec3 // 12 Byte
	Normal   vm.Vec3 // 12 Byte
	Color    vm.Vec3 // 12 Byte
	UV       vm.Vec2 // 8 Byte
	ID       int32   // 4 Byte, object the vertex belongs to
}

// VertexSize is the size of one Vertex in bytes, in memory and on disk.
const VertexSize = 48
