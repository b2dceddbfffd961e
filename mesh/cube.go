package mesh

import vm "batch_renderer/vector_math"

type cubeFace struct {
	normal, u, v vm.Vec3
}

// u x v == normal for every face, so the corner order below is counter-clockwise seen from outside
var cubeFaces = []cubeFace{
	{normal: vm.Vec3{X: 1}, u: vm.Vec3{Y: 1}, v: vm.Vec3{Z: 1}},
	{normal: vm.Vec3{X: -1}, u: vm.Vec3{Z: 1}, v: vm.Vec3{Y: 1}},
	{normal: vm.Vec3{Y: 1}, u: vm.Vec3{Z: 1}, v: vm.Vec3{X: 1}},
	{normal: vm.Vec3{Y: -1}, u: vm.Vec3{X: 1}, v: vm.Vec3{Z: 1}},
	{normal: vm.Vec3{Z: 1}, u: vm.Vec3{X: 1}, v: vm.Vec3{Y: 1}},
	{normal: vm.Vec3{Z: -1}, u: vm.Vec3{Y: 1}, v: vm.Vec3{X: 1}},
}

// NewCube is the built-in unit cube centred at the origin: 24 vertices (4 per face, so normals and UVs
// stay per face) and 36 indices.
func NewCube() *Mesh {
	v := make([]Vertex, 0, 24)
	id := make([]uint32, 0, 36)
	corners := [4]vm.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}

	for _, f := range cubeFaces {
		base := uint32(len(v))
		centre := f.normal.ScalarMul(0.5)
		for _, c := range corners {
			p := centre.
				Add(f.u.ScalarMul(c.X - 0.5)).
				Add(f.v.ScalarMul(c.Y - 0.5))
			v = append(v, Vertex{
				Position: p,
				Normal:   f.normal,
				Color:    vm.Vec3{X: 1, Y: 1, Z: 1},
				UV:       c,
			})
		}
		id = append(id, base, base+1, base+2, base, base+2, base+3)
	}
	return New(v, id)
}
