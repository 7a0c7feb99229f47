package render

import (
	"github.com/taigrr/facet/pkg/math3d"
	"github.com/taigrr/facet/pkg/models"
)

// ShaderIn carries the interpolated attributes for one covered pixel.
type ShaderIn struct {
	Position math3d.Vec3 // World space
	Normal   math3d.Vec3 // Model space, untransformed and not renormalized
	UV       math3d.Vec2
}

// Shader computes the color of a covered pixel. Shade must not mutate
// shared state: the result depends only on the material, the input and
// fields fixed before the draw.
type Shader interface {
	Shade(mat *models.Material, in ShaderIn) math3d.Vec4
}

// ShaderFunc adapts a function to the Shader interface.
type ShaderFunc func(mat *models.Material, in ShaderIn) math3d.Vec4

// Shade calls f.
func (f ShaderFunc) Shade(mat *models.Material, in ShaderIn) math3d.Vec4 {
	return f(mat, in)
}

// PassThroughShader outputs the base color texture sample unlit, or opaque
// black when the material has no base color texture.
type PassThroughShader struct {
	Bilinear bool
}

// Shade implements Shader.
func (s PassThroughShader) Shade(mat *models.Material, in ShaderIn) math3d.Vec4 {
	if mat.BaseColorTexture == nil {
		return math3d.V4(0, 0, 0, 1)
	}
	return mat.BaseColorTexture.SamplePixel(in.UV.X, in.UV.Y, s.Bilinear)
}
