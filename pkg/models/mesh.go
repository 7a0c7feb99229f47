// Package models provides the vertex, mesh, material and model types drawn by
// the pipeline, plus glTF loading.
package models

import (
	"errors"
	"fmt"

	"github.com/taigrr/facet/pkg/math3d"
)

// ErrIndexOutOfRange is returned when an index buffer refers past the end
// of its vertex buffer.
var ErrIndexOutOfRange = errors.New("models: index out of range")

// Vertex holds all vertex attributes.
type Vertex struct {
	Position math3d.Vec3
	Normal   math3d.Vec3
	Tangent  math3d.Vec4 // XYZ direction, W handedness
	UV0      math3d.Vec2
	UV1      math3d.Vec2
	Color    math3d.Vec4
}

// Mesh is an indexed triangle list sharing one material.
type Mesh struct {
	Name     string
	Vertices []Vertex
	Indices  []uint32

	// Bounding box (calculated on load)
	Min math3d.Vec3
	Max math3d.Vec3

	// Index into Model.Materials, -1 for none.
	MaterialIndex int
}

// ValidateIndices checks that every index addresses a vertex.
func ValidateIndices(vertexCount int, indices []uint32) error {
	for i, idx := range indices {
		if int(idx) >= vertexCount {
			return fmt.Errorf("%w: indices[%d] = %d, vertex count %d", ErrIndexOutOfRange, i, idx, vertexCount)
		}
	}
	return nil
}

// Validate checks the mesh's index buffer against its vertices.
func (m *Mesh) Validate() error {
	return ValidateIndices(len(m.Vertices), m.Indices)
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	if len(m.Vertices) == 0 {
		return
	}

	m.Min = m.Vertices[0].Position
	m.Max = m.Vertices[0].Position

	for _, v := range m.Vertices[1:] {
		m.Min = m.Min.Min(v.Position)
		m.Max = m.Max.Max(v.Position)
	}
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.Min.Add(m.Max).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.Max.Sub(m.Min)
}

// TriangleCount returns the number of complete triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// CalculateSmoothNormals replaces vertex normals with the area-weighted
// average of the adjacent face normals.
func (m *Mesh) CalculateSmoothNormals() {
	for i := range m.Vertices {
		m.Vertices[i].Normal = math3d.Zero3()
	}

	for t := 0; t+2 < len(m.Indices); t += 3 {
		i0, i1, i2 := m.Indices[t], m.Indices[t+1], m.Indices[t+2]
		p0 := m.Vertices[i0].Position
		edge1 := m.Vertices[i1].Position.Sub(p0)
		edge2 := m.Vertices[i2].Position.Sub(p0)
		normal := edge1.Cross(edge2) // Don't normalize yet

		m.Vertices[i0].Normal = m.Vertices[i0].Normal.Add(normal)
		m.Vertices[i1].Normal = m.Vertices[i1].Normal.Add(normal)
		m.Vertices[i2].Normal = m.Vertices[i2].Normal.Add(normal)
	}

	for i := range m.Vertices {
		m.Vertices[i].Normal = m.Vertices[i].Normal.Normalize()
	}
}

// Clone creates a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	clone := *m
	clone.Vertices = append([]Vertex(nil), m.Vertices...)
	clone.Indices = append([]uint32(nil), m.Indices...)
	return &clone
}

// Model is a set of meshes and the materials they reference.
type Model struct {
	Name      string
	Meshes    []Mesh
	Materials []*Material
}

// Material returns the material for mesh, or the default material when the
// mesh's index does not resolve.
func (m *Model) Material(mesh *Mesh) *Material {
	if mesh.MaterialIndex < 0 || mesh.MaterialIndex >= len(m.Materials) || m.Materials[mesh.MaterialIndex] == nil {
		return DefaultMaterial()
	}
	return m.Materials[mesh.MaterialIndex]
}

// Bounds returns the box enclosing every mesh.
func (m *Model) Bounds() (lo, hi math3d.Vec3) {
	for i, mesh := range m.Meshes {
		if i == 0 {
			lo, hi = mesh.Min, mesh.Max
			continue
		}
		lo = lo.Min(mesh.Min)
		hi = hi.Max(mesh.Max)
	}
	return lo, hi
}

// TriangleCount returns the total triangle count across meshes.
func (m *Model) TriangleCount() int {
	n := 0
	for i := range m.Meshes {
		n += m.Meshes[i].TriangleCount()
	}
	return n
}
