package render

import (
	"math"
	"testing"

	"github.com/taigrr/facet/pkg/math3d"
	"github.com/taigrr/facet/pkg/models"
)

func TestPlaneDistance(t *testing.T) {
	p := Plane{Normal: math3d.V3(0, 2, 0), D: -4}
	p.normalize()

	tests := []struct {
		name  string
		point math3d.Vec3
		want  float64
	}{
		{"on plane", math3d.V3(5, 2, -3), 0},
		{"above", math3d.V3(0, 5, 0), 3},
		{"below", math3d.V3(0, -1, 0), -3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Distance(tt.point); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Distance(%v) = %v, want %v", tt.point, got, tt.want)
			}
		})
	}
}

func TestFrustumPlanesNormalized(t *testing.T) {
	f := NewFrustum(math3d.Perspective(math.Pi/3, 16.0/9.0, 0.1, 100))
	for i, pl := range f.Planes {
		if l := pl.Normal.Len(); math.Abs(l-1) > 1e-9 {
			t.Errorf("plane %d normal length = %v, want 1", i, l)
		}
	}
}

func TestFrustumContainsPoint(t *testing.T) {
	f := NewFrustum(math3d.Perspective(math.Pi/3, 16.0/9.0, 0.1, 100))

	tests := []struct {
		name  string
		point math3d.Vec3
		want  bool
	}{
		{"just past near", math3d.V3(0, 0, -0.11), true},
		{"centre", math3d.V3(0, 0, -50), true},
		{"just before far", math3d.V3(0, 0, -99), true},
		{"behind camera", math3d.V3(0, 0, 1), false},
		{"before near", math3d.V3(0, 0, -0.05), false},
		{"beyond far", math3d.V3(0, 0, -200), false},
		{"off to the side", math3d.V3(100, 0, -10), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.ContainsPoint(tt.point); got != tt.want {
				t.Errorf("ContainsPoint(%v) = %v, want %v", tt.point, got, tt.want)
			}
		})
	}
}

func TestFrustumIntersectAABB(t *testing.T) {
	view := math3d.LookAt(math3d.Zero3(), math3d.V3(10, 0, 0), math3d.Up())
	f := NewFrustum(math3d.Perspective(math.Pi/3, 1, 1, 100).Mul(view))

	tests := []struct {
		name string
		box  AABB
		want bool
	}{
		{"ahead", AABB{math3d.V3(9, -1, -1), math3d.V3(11, 1, 1)}, true},
		{"straddles near plane", AABB{math3d.V3(-2, -1, -1), math3d.V3(2, 1, 1)}, true},
		{"behind", AABB{math3d.V3(-11, -1, -1), math3d.V3(-9, 1, 1)}, false},
		{"past far plane", AABB{math3d.V3(150, -1, -1), math3d.V3(160, 1, 1)}, false},
		{"encloses frustum", AABB{math3d.V3(-500, -500, -500), math3d.V3(500, 500, 500)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.IntersectAABB(tt.box); got != tt.want {
				t.Errorf("IntersectAABB(%v) = %v, want %v", tt.box, got, tt.want)
			}
		})
	}
}

func TestAABBTransform(t *testing.T) {
	box := AABB{math3d.V3(-1, -1, -1), math3d.V3(1, 1, 1)}

	moved := box.Transform(math3d.Translate(math3d.V3(5, 0, 0)))
	if moved.Min != math3d.V3(4, -1, -1) || moved.Max != math3d.V3(6, 1, 1) {
		t.Errorf("translated box = %+v", moved)
	}

	turned := box.Transform(math3d.RotateY(math.Pi / 4))
	if want := math.Sqrt2; math.Abs(turned.Max.X-want) > 1e-9 || math.Abs(turned.Min.Z+want) > 1e-9 {
		t.Errorf("rotated box = %+v, want half width %v", turned, want)
	}
}

func TestPipelineVisible(t *testing.T) {
	mesh := &models.Mesh{Min: math3d.V3(-1, -1, -1), Max: math3d.V3(1, 1, 1)}

	p := NewPipeline()
	p.SetViewMatrix(math3d.LookAt(math3d.V3(0, 0, 5), math3d.Zero3(), math3d.Up()))
	p.SetProjMatrix(math3d.Perspective(math.Pi/3, 1, 0.1, 100))

	if !p.Visible(mesh) {
		t.Error("mesh in front of the camera reported hidden")
	}

	p.SetModelMatrix(math3d.Translate(math3d.V3(0, 0, 20)))
	if p.Visible(mesh) {
		t.Error("mesh behind the camera reported visible")
	}
}

func BenchmarkFrustumIntersectAABB(b *testing.B) {
	f := NewFrustum(math3d.Perspective(math.Pi/3, 16.0/9.0, 0.1, 1000))
	box := AABB{math3d.V3(-1, -1, -10), math3d.V3(1, 1, -5)}

	for b.Loop() {
		_ = f.IntersectAABB(box)
	}
}

func BenchmarkNewFrustum(b *testing.B) {
	m := math3d.Perspective(math.Pi/3, 16.0/9.0, 0.1, 1000).Mul(math3d.Translate(math3d.V3(0, -2, -5)))

	for b.Loop() {
		_ = NewFrustum(m)
	}
}
