package render

import (
	"math"

	"github.com/taigrr/facet/pkg/math3d"
	"github.com/taigrr/facet/pkg/models"
)

// screenVertex holds a vertex after projection and screen mapping.
type screenVertex struct {
	X, Y float64 // Screen coordinates, origin top-left
	Z    float64 // NDC depth
	Rec  float64 // 1/w, for perspective-correct interpolation
}

// project transforms a model-space position by mvp and maps it onto a
// width×height target: ndc = clip/w, screen = (ndc.xy*-0.5 + 0.5) * size.
func project(p math3d.Vec3, mvp math3d.Mat4, width, height float64) screenVertex {
	clip := mvp.MulVec4(math3d.V4FromV3(p, 1))
	ndc := clip.PerspectiveDivide()
	return screenVertex{
		X:   (ndc.X*-0.5 + 0.5) * width,
		Y:   (ndc.Y*-0.5 + 0.5) * height,
		Z:   ndc.Z,
		Rec: 1 / clip.W,
	}
}

// finite reports whether the vertex projected to usable coordinates. A
// vertex with w = 0 has an infinite Rec.
func (sv screenVertex) finite() bool {
	return math3d.V3(sv.X, sv.Y, sv.Z).IsFinite() && !math.IsInf(sv.Rec, 0)
}

// edge returns the signed area spanned by u→v and u→p. It is positive when
// p lies to the left of u→v in a y-up frame.
func edge(ux, uy, vx, vy, px, py float64) float64 {
	return (vx-ux)*(py-uy) - (vy-uy)*(px-ux)
}

// covers applies the top-left rule to one edge: e is the edge function at
// the sample, (dx, dy) the edge direction. Samples exactly on an edge belong
// to the triangle only for edges that are horizontal pointing +x or that
// point +y.
func covers(e, dx, dy float64) bool {
	if e == 0 {
		return (dy == 0 && dx > 0) || dy > 0
	}
	return e > 0
}

// drawTriangle scan converts one projected triangle, depth tests each
// covered pixel centre and shades the survivors into target.
func (p *Pipeline) drawTriangle(shader Shader, mat *models.Material, target Target, a, b, c screenVertex, v0, v1, v2 *models.Vertex) {
	p.stats.Triangles++

	if !a.finite() || !b.finite() || !c.finite() {
		p.stats.Degenerate++
		return
	}

	area := edge(a.X, a.Y, b.X, b.Y, c.X, c.Y)
	if area == 0 || math.IsNaN(area) {
		p.stats.Degenerate++
		return
	}
	invArea := 1 / area

	width, height := target.Width(), target.Height()
	minX := int(math.Max(0, math.Floor(min3(a.X, b.X, c.X))))
	maxX := int(math.Min(float64(width-1), math.Floor(max3(a.X, b.X, c.X))))
	minY := int(math.Max(0, math.Floor(min3(a.Y, b.Y, c.Y))))
	maxY := int(math.Min(float64(height-1), math.Floor(max3(a.Y, b.Y, c.Y))))
	if minX > maxX || minY > maxY {
		return
	}

	// Edge directions: edge0 = c-b, edge1 = a-c, edge2 = b-a.
	e0x, e0y := c.X-b.X, c.Y-b.Y
	e1x, e1y := a.X-c.X, a.Y-c.Y
	e2x, e2y := b.X-a.X, b.Y-a.Y

	// World-space attributes, pre-multiplied by 1/w.
	w0 := p.model.MulVec3(v0.Position).Scale(a.Rec)
	w1 := p.model.MulVec3(v1.Position).Scale(b.Rec)
	w2 := p.model.MulVec3(v2.Position).Scale(c.Rec)
	n0, n1, n2 := v0.Normal.Scale(a.Rec), v1.Normal.Scale(b.Rec), v2.Normal.Scale(c.Rec)
	t0, t1, t2 := v0.UV0.Scale(a.Rec), v1.UV0.Scale(b.Rec), v2.UV0.Scale(c.Rec)

	for y := minY; y <= maxY; y++ {
		py := float64(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float64(x) + 0.5

			a0 := edge(b.X, b.Y, c.X, c.Y, px, py)
			a1 := edge(c.X, c.Y, a.X, a.Y, px, py)
			a2 := edge(a.X, a.Y, b.X, b.Y, px, py)

			if !covers(a0, e0x, e0y) || !covers(a1, e1x, e1y) || !covers(a2, e2x, e2y) {
				continue
			}

			b0, b1, b2 := a0*invArea, a1*invArea, a2*invArea

			correction := 1 / (b0*a.Rec + b1*b.Rec + b2*c.Rec)
			if math.IsNaN(correction) || math.IsInf(correction, 0) {
				continue
			}

			z := a.Z*b0 + b.Z*b1 + c.Z*b2
			if !(z < p.depth.Get(x, y)) {
				p.stats.DepthRejected++
				continue
			}
			p.depth.Set(x, y, z)

			in := ShaderIn{
				Position: w0.Scale(b0).Add(w1.Scale(b1)).Add(w2.Scale(b2)).Scale(correction),
				Normal:   n0.Scale(b0).Add(n1.Scale(b1)).Add(n2.Scale(b2)).Scale(correction),
				UV:       t0.Scale(b0).Add(t1.Scale(b1)).Add(t2.Scale(b2)).Scale(correction),
			}

			col := shader.Shade(mat, in)
			target.SetPixel(x, y, packColor(col))
			p.stats.Shaded++
		}
	}
}

// packColor converts a [0,1] color to 0xRRGGBB by floor(c*255.99),
// saturating each channel. Alpha is discarded.
func packColor(c math3d.Vec4) uint32 {
	return Pack(channel(c.X), channel(c.Y), channel(c.Z))
}

func channel(v float64) uint8 {
	f := v * 255.99
	switch {
	case !(f > 0):
		return 0
	case f >= 255:
		return 255
	default:
		return uint8(f)
	}
}

func min3(a, b, c float64) float64 {
	return math.Min(a, math.Min(b, c))
}

func max3(a, b, c float64) float64 {
	return math.Max(a, math.Max(b, c))
}
