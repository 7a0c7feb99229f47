package models

import (
	"errors"
	"math"
	"testing"

	"github.com/taigrr/facet/pkg/math3d"
	"github.com/taigrr/facet/pkg/texture"
)

func vecNear(a, b math3d.Vec3) bool {
	return a.Sub(b).Len() < 1e-9
}

// TestMaterialDefaults verifies default material values.
func TestMaterialDefaults(t *testing.T) {
	m := DefaultMaterial()

	if m.BaseColorFactor != math3d.V4(1, 1, 1, 1) {
		t.Errorf("BaseColorFactor = %v, want opaque white", m.BaseColorFactor)
	}
	if m.MetallicFactor != 0 || m.RoughnessFactor != 1 {
		t.Errorf("metallic/roughness = %v/%v, want 0/1", m.MetallicFactor, m.RoughnessFactor)
	}
	if m.NormalScale != 1 || m.OcclusionStrength != 1 {
		t.Errorf("normal scale/occlusion strength = %v/%v, want 1/1", m.NormalScale, m.OcclusionStrength)
	}
	if m.EmissiveFactor != (math3d.Vec3{}) {
		t.Errorf("EmissiveFactor = %v, want zero", m.EmissiveFactor)
	}
	if m.BaseColorTexture != nil || m.EmissiveTexture != nil {
		t.Error("default material should have no textures")
	}
	if err := m.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestMaterialValidate(t *testing.T) {
	m := DefaultMaterial()
	m.OcclusionTexture = &texture.Image{Width: 1, Height: 1, Channels: 7, Data: make([]byte, 7)}

	err := m.Validate()
	if !errors.Is(err, texture.ErrUnsupportedChannels) {
		t.Errorf("Validate() = %v, want ErrUnsupportedChannels", err)
	}
}

func TestValidateIndices(t *testing.T) {
	tests := []struct {
		name    string
		count   int
		indices []uint32
		wantErr bool
	}{
		{"empty", 0, nil, false},
		{"in range", 3, []uint32{0, 1, 2}, false},
		{"last vertex", 4, []uint32{3, 3, 3}, false},
		{"one past end", 3, []uint32{0, 1, 3}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIndices(tt.count, tt.indices)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateIndices() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrIndexOutOfRange) {
				t.Errorf("error %v does not wrap ErrIndexOutOfRange", err)
			}
		})
	}
}

func quad() *Mesh {
	return &Mesh{
		Vertices: []Vertex{
			{Position: math3d.V3(-1, -1, 0), UV0: math3d.V2(0, 0)},
			{Position: math3d.V3(1, -1, 0), UV0: math3d.V2(1, 0)},
			{Position: math3d.V3(1, 1, 0), UV0: math3d.V2(1, 1)},
			{Position: math3d.V3(-1, 1, 0), UV0: math3d.V2(0, 1)},
		},
		Indices:       []uint32{0, 1, 2, 0, 2, 3},
		MaterialIndex: -1,
	}
}

func TestMeshBoundsAndNormals(t *testing.T) {
	m := quad()
	m.CalculateBounds()
	m.CalculateSmoothNormals()

	if !vecNear(m.Min, math3d.V3(-1, -1, 0)) || !vecNear(m.Max, math3d.V3(1, 1, 0)) {
		t.Errorf("bounds = %v..%v", m.Min, m.Max)
	}
	if !vecNear(m.Center(), math3d.Zero3()) {
		t.Errorf("Center() = %v", m.Center())
	}
	if m.TriangleCount() != 2 {
		t.Errorf("TriangleCount() = %d, want 2", m.TriangleCount())
	}
	for i, v := range m.Vertices {
		if !vecNear(v.Normal, math3d.V3(0, 0, 1)) {
			t.Errorf("vertex %d normal = %v, want +Z", i, v.Normal)
		}
	}
}

func TestGenerateTangents(t *testing.T) {
	m := quad()
	m.CalculateSmoothNormals()
	m.GenerateTangents()

	for i, v := range m.Vertices {
		if !vecNear(v.Tangent.Vec3(), math3d.V3(1, 0, 0)) {
			t.Errorf("vertex %d tangent = %v, want +X", i, v.Tangent)
		}
		if v.Tangent.W != 1 {
			t.Errorf("vertex %d handedness = %v, want 1", i, v.Tangent.W)
		}
	}

	// Mirroring V flips the bitangent.
	for i := range m.Vertices {
		m.Vertices[i].UV0.Y = 1 - m.Vertices[i].UV0.Y
	}
	m.GenerateTangents()
	if w := m.Vertices[0].Tangent.W; w != -1 {
		t.Errorf("mirrored handedness = %v, want -1", w)
	}
}

func TestGenerateTangentsDegenerateUV(t *testing.T) {
	m := quad()
	for i := range m.Vertices {
		m.Vertices[i].UV0 = math3d.V2(0.5, 0.5)
	}
	m.CalculateSmoothNormals()
	m.GenerateTangents()
	for i, v := range m.Vertices {
		if math.IsNaN(v.Tangent.X) || math.IsNaN(v.Tangent.Y) || math.IsNaN(v.Tangent.Z) {
			t.Errorf("vertex %d tangent is NaN", i)
		}
	}
}

func TestModelMaterialFallback(t *testing.T) {
	red := DefaultMaterial()
	red.Name = "red"
	red.BaseColorFactor = math3d.V4(1, 0, 0, 1)

	model := &Model{
		Materials: []*Material{red},
		Meshes:    []Mesh{*quad(), *quad()},
	}
	model.Meshes[0].MaterialIndex = 0
	model.Meshes[1].MaterialIndex = 5

	if got := model.Material(&model.Meshes[0]); got.Name != "red" {
		t.Errorf("mesh 0 material = %q, want red", got.Name)
	}
	if got := model.Material(&model.Meshes[1]); got.Name != "default" {
		t.Errorf("mesh 1 material = %q, want default", got.Name)
	}
	if model.TriangleCount() != 4 {
		t.Errorf("TriangleCount() = %d, want 4", model.TriangleCount())
	}
}

func TestMeshClone(t *testing.T) {
	m := quad()
	clone := m.Clone()
	clone.Vertices[0].Position = math3d.V3(9, 9, 9)
	clone.Indices[0] = 3

	if m.Vertices[0].Position == clone.Vertices[0].Position {
		t.Error("Clone shares vertex storage")
	}
	if m.Indices[0] != 0 {
		t.Error("Clone shares index storage")
	}
}
