package render

import (
	"fmt"

	"github.com/taigrr/facet/pkg/logging"
	"github.com/taigrr/facet/pkg/math3d"
	"github.com/taigrr/facet/pkg/models"
)

// Stats counts the work done by the most recent draw call.
type Stats struct {
	Triangles     int // Triangles submitted
	Degenerate    int // Skipped for zero area or non-finite projection
	Shaded        int // Pixels passed to the shader
	DepthRejected int // Covered pixels that failed the depth test
}

// Pipeline rasterizes triangles into a Target. It owns a depth buffer that
// follows the size of the target it last drew into.
//
// Only triangles with positive screen-space winding (counter-clockwise as
// seen with y up) produce pixels, so the opposite winding is culled as a
// side effect of the coverage test.
//
// A Pipeline is not safe for concurrent use.
type Pipeline struct {
	model math3d.Mat4
	view  math3d.Mat4
	proj  math3d.Mat4

	depth *DepthBuffer
	stats Stats
}

// NewPipeline creates a pipeline with identity matrices and an empty depth
// buffer.
func NewPipeline() *Pipeline {
	return &Pipeline{
		model: math3d.Identity(),
		view:  math3d.Identity(),
		proj:  math3d.Identity(),
		depth: NewDepthBuffer(0, 0),
	}
}

// SetModelMatrix sets the model-to-world transform.
func (p *Pipeline) SetModelMatrix(m math3d.Mat4) { p.model = m }

// SetViewMatrix sets the world-to-view transform.
func (p *Pipeline) SetViewMatrix(m math3d.Mat4) { p.view = m }

// SetProjMatrix sets the view-to-clip transform.
func (p *Pipeline) SetProjMatrix(m math3d.Mat4) { p.proj = m }

// ClearDepth resets every depth cell to the far value. Call it at the start
// of each frame.
func (p *Pipeline) ClearDepth() {
	p.depth.Clear()
}

// Depth returns the pipeline's depth buffer.
func (p *Pipeline) Depth() *DepthBuffer {
	return p.depth
}

// Stats returns the counters for the most recent draw call.
func (p *Pipeline) Stats() Stats {
	return p.stats
}

// DrawVertices draws consecutive vertex triples as triangles. A trailing
// partial triangle is ignored.
func (p *Pipeline) DrawVertices(shader Shader, mat *models.Material, target Target, vertices []models.Vertex) error {
	if err := mat.Validate(); err != nil {
		return fmt.Errorf("draw vertices: %w", err)
	}
	p.begin(target)

	mvp := p.mvp()
	w, h := float64(target.Width()), float64(target.Height())
	for i := 0; i+2 < len(vertices); i += 3 {
		v0, v1, v2 := &vertices[i], &vertices[i+1], &vertices[i+2]
		p.drawTriangle(shader, mat, target,
			project(v0.Position, mvp, w, h),
			project(v1.Position, mvp, w, h),
			project(v2.Position, mvp, w, h),
			v0, v1, v2)
	}

	p.end()
	return nil
}

// DrawVerticesIndexed draws index triples as triangles. A trailing partial
// triangle is ignored. Every index is validated before anything is drawn.
func (p *Pipeline) DrawVerticesIndexed(shader Shader, mat *models.Material, target Target, vertices []models.Vertex, indices []uint32) error {
	if err := mat.Validate(); err != nil {
		return fmt.Errorf("draw indexed: %w", err)
	}
	if err := models.ValidateIndices(len(vertices), indices); err != nil {
		return fmt.Errorf("draw indexed: %w", err)
	}
	p.begin(target)

	mvp := p.mvp()
	w, h := float64(target.Width()), float64(target.Height())
	for i := 0; i+2 < len(indices); i += 3 {
		v0, v1, v2 := &vertices[indices[i]], &vertices[indices[i+1]], &vertices[indices[i+2]]
		p.drawTriangle(shader, mat, target,
			project(v0.Position, mvp, w, h),
			project(v1.Position, mvp, w, h),
			project(v2.Position, mvp, w, h),
			v0, v1, v2)
	}

	p.end()
	return nil
}

// DrawMesh draws one mesh of model with the mesh's material.
func (p *Pipeline) DrawMesh(shader Shader, model *models.Model, mesh *models.Mesh, target Target) error {
	if err := p.DrawVerticesIndexed(shader, model.Material(mesh), target, mesh.Vertices, mesh.Indices); err != nil {
		return fmt.Errorf("mesh %q: %w", mesh.Name, err)
	}
	return nil
}

func (p *Pipeline) mvp() math3d.Mat4 {
	return p.proj.Mul(p.view).Mul(p.model)
}

// begin resets the counters and matches the depth buffer to target. A
// reallocated depth buffer starts cleared.
func (p *Pipeline) begin(target Target) {
	p.stats = Stats{}

	w, h := target.Width(), target.Height()
	if p.depth.Width() == w && p.depth.Height() == h {
		return
	}
	logging.Logger().Debug("depth buffer reallocated",
		"from_width", p.depth.Width(),
		"from_height", p.depth.Height(),
		"width", w,
		"height", h)
	p.depth = NewDepthBuffer(w, h)
	p.depth.Clear()
}

func (p *Pipeline) end() {
	if p.stats.Degenerate > 0 {
		logging.Logger().Debug("skipped degenerate triangles",
			"skipped", p.stats.Degenerate,
			"triangles", p.stats.Triangles)
	}
}
