package mesh

import vm "batch_renderer/vector_math"

// Sphere is a bounding sphere.
type Sphere struct {
	Centre vm.Vec3
	Radius float32
}

// Contains reports whether p lies within the sphere.
func (s Sphere) Contains(p vm.Vec3) bool {
	return p.Dist(s.Centre) <= s.Radius
}

// Centroid is the mean vertex position, the zero vector for an empty set.
func Centroid(vertices []Vertex) vm.Vec3 {
	if len(vertices) == 0 {
		return vm.Vec3{}
	}
	var sum vm.Vec3
	for i := range vertices {
		sum = sum.Add(vertices[i].Position)
	}
	return sum.ScalarMul(1 / float32(len(vertices)))
}

// EstimateBounds returns a conservative, not minimal, bounding sphere around the centroid. The initial
// radius is the longest of the three axis spans, measured as the distance between the two vertices
// holding the extreme coordinates of that axis. One pass then grows it to cover every vertex.
func EstimateBounds(vertices []Vertex) Sphere {
	if len(vertices) == 0 {
		return Sphere{}
	}
	var minIdx, maxIdx [3]int
	for i := range vertices {
		p := vertices[i].Position
		for a := 0; a < 3; a++ {
			if p.Axis(a) < vertices[minIdx[a]].Position.Axis(a) {
				minIdx[a] = i
			}
			if p.Axis(a) > vertices[maxIdx[a]].Position.Axis(a) {
				maxIdx[a] = i
			}
		}
	}

	centre := Centroid(vertices)
	var r float32
	for a := 0; a < 3; a++ {
		span := vertices[maxIdx[a]].Position.Dist(vertices[minIdx[a]].Position)
		if span > r {
			r = span
		}
	}
	for i := range vertices {
		if d := vertices[i].Position.Dist(centre); d > r {
			r = d
		}
	}
	return Sphere{Centre: centre, Radius: r}
}
