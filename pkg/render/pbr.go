package render

import (
	"math"

	"github.com/taigrr/facet/pkg/math3d"
	"github.com/taigrr/facet/pkg/models"
)

const (
	pbrPi        = 3.14159265359
	dielectricF0 = 0.04
	radiance     = 1.1
	ambientLevel = 0.03
	ambientAO    = 0.1
	specEpsilon  = 1e-4
	gamma        = 2.2
)

// lightDir points from the surface towards the single directional light.
var lightDir = math3d.V3(0.1, -1, 0).Negate().Normalize()

// PBRShader is a single-light Cook-Torrance shader for metallic-roughness
// materials: GGX distribution, Smith/Schlick-GGX geometry, Schlick Fresnel,
// Reinhard tone mapping and gamma 2.2 encoding.
type PBRShader struct {
	// ViewPosition is the camera position in world space. Update it once
	// per frame, never during a draw.
	ViewPosition math3d.Vec3
	Bilinear     bool
}

// Shade implements Shader.
func (s PBRShader) Shade(mat *models.Material, in ShaderIn) math3d.Vec4 {
	u, v := in.UV.X, in.UV.Y

	base := mat.BaseColorFactor.Vec3()
	if mat.BaseColorTexture != nil {
		base = base.Mul(mat.BaseColorTexture.SamplePixel(u, v, s.Bilinear).Vec3())
	}

	metallic := mat.MetallicFactor
	roughness := mat.RoughnessFactor
	if mat.MetallicRoughnessTexture != nil {
		mr := mat.MetallicRoughnessTexture.SamplePixel(u, v, s.Bilinear)
		roughness *= mr.Y
		metallic *= mr.Z
	}

	occlusion := 1.0
	if mat.OcclusionTexture != nil {
		r := mat.OcclusionTexture.SamplePixel(u, v, s.Bilinear).X
		occlusion = lerp(r, 1, 1-mat.OcclusionStrength)
	}

	var emission math3d.Vec3
	if mat.EmissiveTexture != nil {
		emission = mat.EmissiveTexture.SamplePixel(u, v, s.Bilinear).Vec3().Mul(mat.EmissiveFactor)
	}

	n := in.Normal
	view := s.ViewPosition.Sub(in.Position).Normalize()

	f0 := lerpVec3(math3d.V3(dielectricF0, dielectricF0, dielectricF0), base, metallic)

	h := view.Add(lightDir).Normalize()
	nDotV := math.Max(n.Dot(view), 0)
	nDotL := math.Max(n.Dot(lightDir), 0)

	d := distributionGGX(n, h, roughness)
	g := geometrySchlickGGX(nDotV, roughness) * geometrySchlickGGX(nDotL, roughness)
	f := fresnelSchlick(clamp01(h.Dot(view)), f0)

	specular := f.Scale(d * g / (4*nDotV*nDotL + specEpsilon))

	kD := math3d.V3(1, 1, 1).Sub(f).Scale(1 - metallic)
	diffuse := kD.Mul(base).Scale(1 / pbrPi)

	lo := diffuse.Add(specular).Scale(radiance * nDotL)
	ambient := base.Scale(ambientLevel * ambientAO)

	color := ambient.Add(lo).Scale(occlusion).Add(emission)
	color = color.DivVec(color.AddScalar(1))
	color = color.Pow(1 / gamma)

	return math3d.V4FromV3(color, 1)
}

func distributionGGX(n, h math3d.Vec3, roughness float64) float64 {
	a := roughness * roughness
	a2 := a * a
	nDotH := math.Max(n.Dot(h), 0)

	denom := nDotH*nDotH*(a2-1) + 1
	return a2 / (pbrPi * denom * denom)
}

func geometrySchlickGGX(nDotX, roughness float64) float64 {
	r := roughness + 1
	k := r * r / 8
	return nDotX / (nDotX*(1-k) + k)
}

func fresnelSchlick(cosTheta float64, f0 math3d.Vec3) math3d.Vec3 {
	t := math.Pow(clamp01(1-cosTheta), 5)
	return f0.Add(math3d.V3(1, 1, 1).Sub(f0).Scale(t))
}

func lerp(a, b, t float64) float64 {
	return a*(1-t) + b*t
}

func lerpVec3(a, b math3d.Vec3, t float64) math3d.Vec3 {
	return a.Scale(1 - t).Add(b.Scale(t))
}

func clamp01(x float64) float64 {
	return math.Min(math.Max(x, 0), 1)
}
