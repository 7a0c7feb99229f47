package render

import (
	"github.com/taigrr/facet/pkg/math3d"
	"github.com/taigrr/facet/pkg/models"
)

// Plane is the plane Normal·p + D = 0. Points with a positive distance lie
// on the side the normal points to.
type Plane struct {
	Normal math3d.Vec3
	D      float64
}

func (p *Plane) normalize() {
	l := p.Normal.Len()
	if l == 0 {
		return
	}
	p.Normal = p.Normal.Scale(1 / l)
	p.D /= l
}

// Distance returns the signed distance from the plane to point.
func (p Plane) Distance(point math3d.Vec3) float64 {
	return p.Normal.Dot(point) + p.D
}

// Frustum holds the six clip planes of a view-projection matrix with
// normals pointing inward.
type Frustum struct {
	Planes [6]Plane
}

// Frustum plane indices.
const (
	FrustumLeft = iota
	FrustumRight
	FrustumBottom
	FrustumTop
	FrustumNear
	FrustumFar
)

// NewFrustum extracts the clip planes of m (Gribb/Hartmann). Clip depth is
// expected in [0, w], the range Perspective and Orthographic produce, so the
// near plane is row 2 alone rather than row 3 + row 2.
func NewFrustum(m math3d.Mat4) Frustum {
	row := func(i int) (math3d.Vec3, float64) {
		return math3d.V3(m[i], m[i+4], m[i+8]), m[i+12]
	}
	r0, d0 := row(0)
	r1, d1 := row(1)
	r2, d2 := row(2)
	r3, d3 := row(3)

	f := Frustum{Planes: [6]Plane{
		FrustumLeft:   {Normal: r3.Add(r0), D: d3 + d0},
		FrustumRight:  {Normal: r3.Sub(r0), D: d3 - d0},
		FrustumBottom: {Normal: r3.Add(r1), D: d3 + d1},
		FrustumTop:    {Normal: r3.Sub(r1), D: d3 - d1},
		FrustumNear:   {Normal: r2, D: d2},
		FrustumFar:    {Normal: r3.Sub(r2), D: d3 - d2},
	}}
	for i := range f.Planes {
		f.Planes[i].normalize()
	}
	return f
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max math3d.Vec3
}

// MeshBounds returns the local-space bounds of mesh.
func MeshBounds(mesh *models.Mesh) AABB {
	return AABB{Min: mesh.Min, Max: mesh.Max}
}

// Transform returns the box bounding all eight corners of b after m.
func (b AABB) Transform(m math3d.Mat4) AABB {
	out := AABB{Min: m.MulVec3(b.Min), Max: m.MulVec3(b.Min)}
	for i := 1; i < 8; i++ {
		c := math3d.V3(pick(i&1 != 0, b.Max.X, b.Min.X), pick(i&2 != 0, b.Max.Y, b.Min.Y), pick(i&4 != 0, b.Max.Z, b.Min.Z))
		p := m.MulVec3(c)
		out.Min = out.Min.Min(p)
		out.Max = out.Max.Max(p)
	}
	return out
}

// IntersectAABB reports whether any part of box may be inside the frustum.
// It tests the corner furthest along each plane normal, so it can return
// true for boxes just outside a frustum corner.
func (f Frustum) IntersectAABB(box AABB) bool {
	for _, pl := range f.Planes {
		corner := math3d.V3(
			pick(pl.Normal.X >= 0, box.Max.X, box.Min.X),
			pick(pl.Normal.Y >= 0, box.Max.Y, box.Min.Y),
			pick(pl.Normal.Z >= 0, box.Max.Z, box.Min.Z),
		)
		if pl.Distance(corner) < 0 {
			return false
		}
	}
	return true
}

// ContainsPoint reports whether p is inside all six planes.
func (f Frustum) ContainsPoint(p math3d.Vec3) bool {
	for _, pl := range f.Planes {
		if pl.Distance(p) < 0 {
			return false
		}
	}
	return true
}

// Visible reports whether mesh, placed by the current model matrix, may
// produce pixels under the current view and projection.
func (p *Pipeline) Visible(mesh *models.Mesh) bool {
	f := NewFrustum(p.proj.Mul(p.view))
	return f.IntersectAABB(MeshBounds(mesh).Transform(p.model))
}

func pick(cond bool, a, b float64) float64 {
	if cond {
		return a
	}
	return b
}
