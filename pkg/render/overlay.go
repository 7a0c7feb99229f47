package render

import (
	"github.com/taigrr/facet/pkg/math3d"
)

// Overlay colors.
const (
	OverlayRed   uint32 = 0xFF4040
	OverlayGreen uint32 = 0x40FF40
	OverlayBlue  uint32 = 0x4080FF
	OverlayGray  uint32 = 0x808080
)

// Overlay draws unshaded debug lines over a target, ignoring depth.
type Overlay struct {
	camera *Camera
	target Target
}

// NewOverlay creates an overlay that projects through camera.
func NewOverlay(camera *Camera, target Target) *Overlay {
	return &Overlay{camera: camera, target: target}
}

// Line3D draws a world-space segment. Segments with both ends outside the
// view are skipped; no clipping is done otherwise.
func (o *Overlay) Line3D(a, b math3d.Vec3, rgb uint32) {
	w, h := o.target.Width(), o.target.Height()
	x0, y0, _, visA := o.camera.WorldToScreen(a, w, h)
	x1, y1, _, visB := o.camera.WorldToScreen(b, w, h)
	if !visA && !visB {
		return
	}
	o.Line(int(x0), int(y0), int(x1), int(y1), rgb)
}

// Bounds draws the twelve edges of box after transform.
func (o *Overlay) Bounds(box AABB, transform math3d.Mat4, rgb uint32) {
	var corners [8]math3d.Vec3
	for i := range corners {
		corners[i] = transform.MulVec3(math3d.V3(
			pick(i&1 != 0, box.Max.X, box.Min.X),
			pick(i&2 != 0, box.Max.Y, box.Min.Y),
			pick(i&4 != 0, box.Max.Z, box.Min.Z),
		))
	}
	// Corner index bits are x, y, z; edges join corners one bit apart.
	for i := range corners {
		for bit := 1; bit < 8; bit <<= 1 {
			if i&bit == 0 {
				o.Line3D(corners[i], corners[i|bit], rgb)
			}
		}
	}
}

// Axes draws the world X, Y and Z axes from the origin.
func (o *Overlay) Axes(length float64) {
	origin := math3d.Zero3()
	o.Line3D(origin, math3d.V3(length, 0, 0), OverlayRed)
	o.Line3D(origin, math3d.V3(0, length, 0), OverlayGreen)
	o.Line3D(origin, math3d.V3(0, 0, length), OverlayBlue)
}

// Line draws a screen-space segment with Bresenham's algorithm. Pixels
// outside the target are dropped.
func (o *Overlay) Line(x0, y0, x1, y1 int, rgb uint32) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	w, h := o.target.Width(), o.target.Height()
	for {
		if x0 >= 0 && x0 < w && y0 >= 0 && y0 < h {
			o.target.SetPixel(x0, y0, rgb)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
