package models

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/taigrr/facet/pkg/logging"
	"github.com/taigrr/facet/pkg/math3d"
	"github.com/taigrr/facet/pkg/texture"
)

// ErrNonTriangle is returned for primitives that are not triangle lists.
var ErrNonTriangle = errors.New("models: primitive is not a triangle list")

// ImageSource resolves the textures referenced by a glTF document. key
// identifies the image uniquely across documents; load returns its encoded
// bytes and is only called when the source has no cached copy.
type ImageSource interface {
	Image(key string, load func() ([]byte, error)) (*texture.Image, error)
}

// decodeSource decodes every request without caching.
type decodeSource struct{}

func (decodeSource) Image(_ string, load func() ([]byte, error)) (*texture.Image, error) {
	data, err := load()
	if err != nil {
		return nil, err
	}
	return texture.DecodeBytes(data, false)
}

// GLTFLoader loads glTF/GLB files into Models.
type GLTFLoader struct {
	// Images resolves textures. Nil decodes each texture without caching.
	Images ImageSource

	// CalculateNormals generates smooth normals for primitives without a
	// NORMAL attribute.
	CalculateNormals bool
}

// NewGLTFLoader creates a loader with default options.
func NewGLTFLoader(images ImageSource) *GLTFLoader {
	return &GLTFLoader{
		Images:           images,
		CalculateNormals: true,
	}
}

// LoadGLTF loads a .gltf or .glb file with default options.
func LoadGLTF(path string, images ImageSource) (*Model, error) {
	return NewGLTFLoader(images).Load(path)
}

// Load loads a glTF or GLB file. Each primitive becomes one Mesh.
func (l *GLTFLoader) Load(path string) (*Model, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	ld := &docLoader{
		loader: l,
		doc:    doc,
		path:   path,
		images: make(map[int]*texture.Image),
	}
	if ld.loader.Images == nil {
		ld.loader = &GLTFLoader{Images: decodeSource{}, CalculateNormals: l.CalculateNormals}
	}

	model := &Model{Name: filepath.Base(path)}

	for i, gm := range doc.Materials {
		mat, err := ld.material(gm)
		if err != nil {
			return nil, fmt.Errorf("material %d: %w", i, err)
		}
		model.Materials = append(model.Materials, mat)
	}

	for _, gm := range doc.Meshes {
		for pi, prim := range gm.Primitives {
			mesh, err := ld.primitive(prim)
			if err != nil {
				return nil, fmt.Errorf("mesh %q primitive %d: %w", gm.Name, pi, err)
			}
			mesh.Name = gm.Name
			model.Meshes = append(model.Meshes, *mesh)
		}
	}

	logging.Logger().Info("model loaded",
		"path", path,
		"meshes", len(model.Meshes),
		"materials", len(model.Materials),
		"triangles", model.TriangleCount())

	return model, nil
}

type docLoader struct {
	loader *GLTFLoader
	doc    *gltf.Document
	path   string
	images map[int]*texture.Image
}

func (ld *docLoader) primitive(prim *gltf.Primitive) (*Mesh, error) {
	if prim.Mode != gltf.PrimitiveTriangles {
		return nil, fmt.Errorf("%w: mode %v", ErrNonTriangle, prim.Mode)
	}

	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, errors.New("missing POSITION attribute")
	}
	posAcr := ld.doc.Accessors[posIdx]
	positions, err := modeler.ReadPosition(ld.doc, posAcr, nil)
	if err != nil {
		return nil, fmt.Errorf("read positions: %w", err)
	}

	mesh := &Mesh{
		Vertices:      make([]Vertex, len(positions)),
		MaterialIndex: -1,
	}
	if prim.Material != nil {
		if *prim.Material < len(ld.doc.Materials) {
			mesh.MaterialIndex = *prim.Material
		} else {
			logging.Logger().Warn("material index out of range, using default",
				"path", ld.path,
				"material", *prim.Material,
				"materials", len(ld.doc.Materials))
		}
	}
	for i, p := range positions {
		mesh.Vertices[i] = Vertex{
			Position: vec3(p),
			Color:    math3d.V4(1, 1, 1, 1),
		}
	}

	if prim.Indices != nil {
		mesh.Indices, err = modeler.ReadIndices(ld.doc, ld.doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, fmt.Errorf("read indices: %w", err)
		}
	} else {
		// No indices, assume sequential triangles
		mesh.Indices = make([]uint32, len(positions))
		for i := range mesh.Indices {
			mesh.Indices[i] = uint32(i)
		}
	}
	if err := mesh.Validate(); err != nil {
		return nil, err
	}

	hasNormals := false
	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		normals, err := modeler.ReadNormal(ld.doc, ld.doc.Accessors[idx], nil)
		if err != nil {
			return nil, fmt.Errorf("read normals: %w", err)
		}
		for i := range min(len(normals), len(mesh.Vertices)) {
			mesh.Vertices[i].Normal = vec3(normals[i])
		}
		hasNormals = true
	}
	if !hasNormals && ld.loader.CalculateNormals {
		mesh.CalculateSmoothNormals()
	}

	for attr, set := range map[string]func(*Vertex, math3d.Vec2){
		gltf.TEXCOORD_0: func(v *Vertex, uv math3d.Vec2) { v.UV0 = uv },
		gltf.TEXCOORD_1: func(v *Vertex, uv math3d.Vec2) { v.UV1 = uv },
	} {
		idx, ok := prim.Attributes[attr]
		if !ok {
			continue
		}
		uvs, err := modeler.ReadTextureCoord(ld.doc, ld.doc.Accessors[idx], nil)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", attr, err)
		}
		for i := range min(len(uvs), len(mesh.Vertices)) {
			set(&mesh.Vertices[i], math3d.V2(float64(uvs[i][0]), float64(uvs[i][1])))
		}
	}

	if idx, ok := prim.Attributes[gltf.TANGENT]; ok {
		tangents, err := modeler.ReadTangent(ld.doc, ld.doc.Accessors[idx], nil)
		if err != nil {
			return nil, fmt.Errorf("read tangents: %w", err)
		}
		for i := range min(len(tangents), len(mesh.Vertices)) {
			t := tangents[i]
			mesh.Vertices[i].Tangent = math3d.V4(float64(t[0]), float64(t[1]), float64(t[2]), float64(t[3]))
		}
	} else {
		logging.Logger().Debug("generating tangents", "vertices", len(mesh.Vertices))
		mesh.GenerateTangents()
	}

	if idx, ok := prim.Attributes[gltf.COLOR_0]; ok {
		colors, err := modeler.ReadColor(ld.doc, ld.doc.Accessors[idx], nil)
		if err != nil {
			return nil, fmt.Errorf("read colors: %w", err)
		}
		for i := range min(len(colors), len(mesh.Vertices)) {
			c := colors[i]
			mesh.Vertices[i].Color = math3d.V4(
				float64(c[0])/255,
				float64(c[1])/255,
				float64(c[2])/255,
				float64(c[3])/255,
			)
		}
	}

	if len(posAcr.Min) == 3 && len(posAcr.Max) == 3 {
		mesh.Min = math3d.V3(posAcr.Min[0], posAcr.Min[1], posAcr.Min[2])
		mesh.Max = math3d.V3(posAcr.Max[0], posAcr.Max[1], posAcr.Max[2])
	} else {
		mesh.CalculateBounds()
	}

	return mesh, nil
}

func (ld *docLoader) material(gm *gltf.Material) (*Material, error) {
	mat := DefaultMaterial()
	if gm.Name != "" {
		mat.Name = gm.Name
	} else {
		mat.Name = "unnamed"
	}
	mat.EmissiveFactor = math3d.V3(gm.EmissiveFactor[0], gm.EmissiveFactor[1], gm.EmissiveFactor[2])

	var err error
	if pbr := gm.PBRMetallicRoughness; pbr != nil {
		bc := pbr.BaseColorFactorOrDefault()
		mat.BaseColorFactor = math3d.V4(bc[0], bc[1], bc[2], bc[3])
		mat.MetallicFactor = pbr.MetallicFactorOrDefault()
		mat.RoughnessFactor = pbr.RoughnessFactorOrDefault()

		if pbr.BaseColorTexture != nil {
			if mat.BaseColorTexture, err = ld.texture(pbr.BaseColorTexture.Index); err != nil {
				return nil, fmt.Errorf("base color texture: %w", err)
			}
		}
		if pbr.MetallicRoughnessTexture != nil {
			if mat.MetallicRoughnessTexture, err = ld.texture(pbr.MetallicRoughnessTexture.Index); err != nil {
				return nil, fmt.Errorf("metallic-roughness texture: %w", err)
			}
		}
	}

	if nt := gm.NormalTexture; nt != nil && nt.Index != nil {
		if mat.NormalTexture, err = ld.texture(*nt.Index); err != nil {
			return nil, fmt.Errorf("normal texture: %w", err)
		}
		mat.NormalScale = nt.ScaleOrDefault()
	}
	if ot := gm.OcclusionTexture; ot != nil && ot.Index != nil {
		if mat.OcclusionTexture, err = ld.texture(*ot.Index); err != nil {
			return nil, fmt.Errorf("occlusion texture: %w", err)
		}
		mat.OcclusionStrength = ot.StrengthOrDefault()
	}
	if gm.EmissiveTexture != nil {
		if mat.EmissiveTexture, err = ld.texture(gm.EmissiveTexture.Index); err != nil {
			return nil, fmt.Errorf("emissive texture: %w", err)
		}
	}

	return mat, nil
}

// texture resolves a glTF texture index to its decoded source image.
func (ld *docLoader) texture(index int) (*texture.Image, error) {
	if index < 0 || index >= len(ld.doc.Textures) {
		return nil, fmt.Errorf("texture index %d out of range", index)
	}
	src := ld.doc.Textures[index].Source
	if src == nil {
		return nil, fmt.Errorf("texture %d has no source image", index)
	}
	if img, ok := ld.images[*src]; ok {
		return img, nil
	}
	if *src < 0 || *src >= len(ld.doc.Images) {
		return nil, fmt.Errorf("image index %d out of range", *src)
	}

	gi := ld.doc.Images[*src]
	key, load := ld.imageLoader(*src, gi)
	img, err := ld.loader.Images.Image(key, load)
	if err != nil {
		return nil, fmt.Errorf("image %d: %w", *src, err)
	}
	ld.images[*src] = img
	return img, nil
}

// imageLoader returns a cache key and byte loader for a glTF image, which
// may live in a buffer view, a data URI or an external file.
func (ld *docLoader) imageLoader(index int, gi *gltf.Image) (string, func() ([]byte, error)) {
	switch {
	case gi.BufferView != nil:
		key := fmt.Sprintf("%s#image%d", ld.path, index)
		return key, func() ([]byte, error) {
			bv := ld.doc.BufferViews[*gi.BufferView]
			buf := ld.doc.Buffers[bv.Buffer]
			start := bv.ByteOffset
			end := start + bv.ByteLength
			if end > len(buf.Data) {
				return nil, errors.New("buffer view exceeds buffer data")
			}
			return buf.Data[start:end], nil
		}
	case gi.IsEmbeddedResource():
		key := fmt.Sprintf("%s#image%d", ld.path, index)
		return key, gi.MarshalData
	default:
		texPath := filepath.Join(filepath.Dir(ld.path), gi.URI)
		return texPath, func() ([]byte, error) {
			return os.ReadFile(texPath)
		}
	}
}

func vec3(v [3]float32) math3d.Vec3 {
	return math3d.V3(float64(v[0]), float64(v[1]), float64(v[2]))
}
