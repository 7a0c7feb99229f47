package models

import "github.com/taigrr/facet/pkg/math3d"

// GenerateTangents computes per-vertex tangents from positions, normals and
// UV0 using Lengyel's method. The handedness of the bitangent is stored in
// Tangent.W as +1 or -1.
func (m *Mesh) GenerateTangents() {
	tan1 := make([]math3d.Vec3, len(m.Vertices))
	tan2 := make([]math3d.Vec3, len(m.Vertices))

	for t := 0; t+2 < len(m.Indices); t += 3 {
		i1, i2, i3 := m.Indices[t], m.Indices[t+1], m.Indices[t+2]
		v1, v2, v3 := m.Vertices[i1], m.Vertices[i2], m.Vertices[i3]

		e1 := v2.Position.Sub(v1.Position)
		e2 := v3.Position.Sub(v1.Position)
		d1 := v2.UV0.Sub(v1.UV0)
		d2 := v3.UV0.Sub(v1.UV0)

		det := d1.X*d2.Y - d2.X*d1.Y
		if det == 0 {
			continue
		}
		r := 1 / det

		sdir := e1.Scale(d2.Y).Sub(e2.Scale(d1.Y)).Scale(r)
		tdir := e2.Scale(d1.X).Sub(e1.Scale(d2.X)).Scale(r)

		for _, i := range [3]uint32{i1, i2, i3} {
			tan1[i] = tan1[i].Add(sdir)
			tan2[i] = tan2[i].Add(tdir)
		}
	}

	for i := range m.Vertices {
		n := m.Vertices[i].Normal
		t := tan1[i]

		// Gram-Schmidt orthogonalize
		xyz := t.Sub(n.Scale(n.Dot(t))).Normalize()

		w := 1.0
		if n.Cross(t).Dot(tan2[i]) < 0 {
			w = -1
		}
		m.Vertices[i].Tangent = math3d.V4FromV3(xyz, w)
	}
}
