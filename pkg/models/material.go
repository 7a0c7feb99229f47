package models

import (
	"fmt"

	"github.com/taigrr/facet/pkg/math3d"
	"github.com/taigrr/facet/pkg/texture"
)

// Material is a metallic-roughness PBR material. A nil texture means the
// slot is empty and the scalar factors are used alone.
type Material struct {
	Name string

	BaseColorFactor   math3d.Vec4
	NormalScale       float64
	MetallicFactor    float64 // 0 = dielectric, 1 = metal
	RoughnessFactor   float64 // 0 = smooth, 1 = rough
	OcclusionStrength float64
	EmissiveFactor    math3d.Vec3

	BaseColorTexture         *texture.Image
	NormalTexture            *texture.Image
	MetallicRoughnessTexture *texture.Image // G = roughness, B = metallic
	OcclusionTexture         *texture.Image // R = occlusion
	EmissiveTexture          *texture.Image
}

// DefaultMaterial returns an untextured white dielectric.
func DefaultMaterial() *Material {
	return &Material{
		Name:              "default",
		BaseColorFactor:   math3d.V4(1, 1, 1, 1),
		NormalScale:       1,
		MetallicFactor:    0,
		RoughnessFactor:   1,
		OcclusionStrength: 1,
	}
}

// Validate checks every present texture.
func (m *Material) Validate() error {
	slots := []struct {
		name string
		img  *texture.Image
	}{
		{"base color", m.BaseColorTexture},
		{"normal", m.NormalTexture},
		{"metallic-roughness", m.MetallicRoughnessTexture},
		{"occlusion", m.OcclusionTexture},
		{"emissive", m.EmissiveTexture},
	}
	for _, s := range slots {
		if s.img == nil {
			continue
		}
		if err := s.img.Validate(); err != nil {
			return fmt.Errorf("material %q %s texture: %w", m.Name, s.name, err)
		}
	}
	return nil
}
