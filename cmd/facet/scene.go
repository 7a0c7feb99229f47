package main

import (
	"fmt"
	"math"

	"github.com/taigrr/facet/pkg/assets"
	"github.com/taigrr/facet/pkg/config"
	"github.com/taigrr/facet/pkg/math3d"
	"github.com/taigrr/facet/pkg/models"
	"github.com/taigrr/facet/pkg/render"
	"github.com/taigrr/facet/pkg/texture"
)

// scene owns one loaded model and everything needed to draw it.
type scene struct {
	cfg config.Config

	res    *assets.Resources
	handle assets.Handle
	model  *models.Model

	// materials[i] is the material used for model.Meshes[i].
	materials []*models.Material
	normalize math3d.Mat4
	bounds    render.AABB // After normalize

	camera   *render.Camera
	pipeline *render.Pipeline

	usePBR   bool
	bilinear bool
	overlay  bool
}

// frameStats summarizes one drawn frame.
type frameStats struct {
	meshes    int
	culled    int
	triangles int
	shaded    int
}

func newScene(cfg config.Config, res *assets.Resources, path string) (*scene, error) {
	h, model, err := res.Model(path)
	if err != nil {
		return nil, err
	}
	if len(model.Meshes) == 0 {
		res.ReleaseModel(h)
		return nil, fmt.Errorf("model %s has no meshes", path)
	}

	s := &scene{
		cfg:      cfg,
		res:      res,
		handle:   h,
		model:    model,
		camera:   render.NewCamera(),
		pipeline: render.NewPipeline(),
		usePBR:   cfg.Shader == config.ShaderPBR,
		bilinear: cfg.Bilinear,
	}

	var checker *texture.Image
	if cfg.Checker {
		checker = texture.Checker(64, 64, 8, [3]byte{200, 200, 200}, [3]byte{90, 90, 90})
	}
	s.materials = make([]*models.Material, len(model.Meshes))
	for i := range model.Meshes {
		mat := model.Material(&model.Meshes[i])
		if checker != nil && mat.BaseColorTexture == nil {
			c := *mat
			c.BaseColorTexture = checker
			mat = &c
		}
		s.materials[i] = mat
	}

	// Center the model on the origin and scale its largest side to 2.
	lo, hi := model.Bounds()
	center := lo.Add(hi).Scale(0.5)
	size := hi.Sub(lo)
	scale := 1.0
	if maxDim := math.Max(size.X, math.Max(size.Y, size.Z)); maxDim > 0 {
		scale = 2 / maxDim
	}
	s.normalize = math3d.ScaleUniform(scale).Mul(math3d.Translate(center.Negate()))
	s.bounds = render.AABB{Min: lo, Max: hi}.Transform(s.normalize)

	s.resetCamera()
	return s, nil
}

// resetCamera applies the configured camera, framing the model when no
// position is set.
func (s *scene) resetCamera() {
	cam := s.cfg.Camera
	s.camera.SetFOV(cam.FOVRadians())
	if eye, ok := cam.Eye(); ok {
		s.camera.SetPosition(eye)
		s.camera.LookAt(math3d.Zero3())
		s.camera.SetClipPlanes(cam.Near, cam.Far)
		return
	}
	s.camera.Frame(s.bounds)
}

func (s *scene) shader() render.Shader {
	if s.usePBR {
		return render.PBRShader{ViewPosition: s.camera.Position, Bilinear: s.bilinear}
	}
	return render.PassThroughShader{Bilinear: s.bilinear}
}

// draw renders the model rotated by spin radians about Y into target.
func (s *scene) draw(target *render.ColorBuffer, spin float64) (frameStats, error) {
	var st frameStats

	target.Clear(s.cfg.BackgroundRGB())
	s.pipeline.ClearDepth()

	s.camera.SetAspectRatio(target.AspectRatio())
	s.camera.Apply(s.pipeline)
	modelMatrix := math3d.RotateY(spin).Mul(s.normalize)
	s.pipeline.SetModelMatrix(modelMatrix)

	shader := s.shader()
	for i := range s.model.Meshes {
		mesh := &s.model.Meshes[i]
		st.meshes++
		if !s.pipeline.Visible(mesh) {
			st.culled++
			continue
		}
		if err := s.pipeline.DrawVerticesIndexed(shader, s.materials[i], target, mesh.Vertices, mesh.Indices); err != nil {
			return st, fmt.Errorf("mesh %q: %w", mesh.Name, err)
		}
		ps := s.pipeline.Stats()
		st.triangles += ps.Triangles
		st.shaded += ps.Shaded
	}

	if s.overlay {
		o := render.NewOverlay(s.camera, target)
		for i := range s.model.Meshes {
			o.Bounds(render.MeshBounds(&s.model.Meshes[i]), modelMatrix, render.OverlayGreen)
		}
		o.Axes(1.5)
	}

	return st, nil
}

func (s *scene) close() {
	s.res.ReleaseModel(s.handle)
}
