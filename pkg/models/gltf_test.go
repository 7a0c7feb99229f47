package models

import (
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/taigrr/facet/pkg/math3d"
)

func TestLoadGLTFInvalidPath(t *testing.T) {
	_, err := LoadGLTF("/nonexistent/path.glb", nil)
	if err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestGLTFLoaderCreation(t *testing.T) {
	loader := NewGLTFLoader(nil)
	if loader == nil {
		t.Fatal("NewGLTFLoader returned nil")
	}
	if !loader.CalculateNormals {
		t.Error("CalculateNormals should default to true")
	}
}

func writeTriangleGLB(t *testing.T) string {
	t.Helper()

	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	uv := modeler.WriteTextureCoord(doc, [][2]float32{{0, 0}, {1, 0}, {0, 1}})
	idx := modeler.WriteIndices(doc, []uint16{0, 1, 2})

	doc.Materials = []*gltf.Material{{
		Name:           "glow",
		EmissiveFactor: [3]float64{0.5, 0.25, 0},
	}}
	doc.Meshes = []*gltf.Mesh{{
		Name: "tri",
		Primitives: []*gltf.Primitive{{
			Indices:    gltf.Index(idx),
			Material:   gltf.Index(0),
			Attributes: map[string]int{gltf.POSITION: pos, gltf.TEXCOORD_0: uv},
		}},
	}}
	doc.Nodes = []*gltf.Node{{Name: "tri", Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)

	path := filepath.Join(t.TempDir(), "tri.glb")
	if err := gltf.SaveBinary(doc, path); err != nil {
		t.Fatalf("save glb: %v", err)
	}
	return path
}

func TestLoadGLTFTriangle(t *testing.T) {
	model, err := LoadGLTF(writeTriangleGLB(t), nil)
	if err != nil {
		t.Fatalf("LoadGLTF: %v", err)
	}

	if len(model.Meshes) != 1 {
		t.Fatalf("meshes = %d, want 1", len(model.Meshes))
	}
	mesh := model.Meshes[0]
	if mesh.Name != "tri" || len(mesh.Vertices) != 3 || len(mesh.Indices) != 3 {
		t.Fatalf("mesh %q has %d vertices, %d indices", mesh.Name, len(mesh.Vertices), len(mesh.Indices))
	}
	if !vecNear(mesh.Max, math3d.V3(1, 1, 0)) || !vecNear(mesh.Min, math3d.Zero3()) {
		t.Errorf("bounds = %v..%v", mesh.Min, mesh.Max)
	}

	// No NORMAL attribute: smooth normals are generated from winding.
	if !vecNear(mesh.Vertices[0].Normal, math3d.V3(0, 0, 1)) {
		t.Errorf("generated normal = %v, want +Z", mesh.Vertices[0].Normal)
	}
	// No TANGENT attribute: tangents follow +U.
	if !vecNear(mesh.Vertices[1].Tangent.Vec3(), math3d.V3(1, 0, 0)) {
		t.Errorf("generated tangent = %v, want +X", mesh.Vertices[1].Tangent)
	}
	if got := mesh.Vertices[2].UV0; got != math3d.V2(0, 1) {
		t.Errorf("uv0 = %v", got)
	}

	mat := model.Material(&mesh)
	if mat.Name != "glow" {
		t.Errorf("material = %q, want glow", mat.Name)
	}
	if !vecNear(mat.EmissiveFactor, math3d.V3(0.5, 0.25, 0)) {
		t.Errorf("emissive = %v", mat.EmissiveFactor)
	}
	if mat.RoughnessFactor != 1 {
		t.Errorf("roughness = %v, want glTF default 1", mat.RoughnessFactor)
	}
}
