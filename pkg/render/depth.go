package render

import "math"

// DepthBuffer stores one normalized depth per pixel as fixed point:
// depth d in [0, 1] is held as d*MaxUint32. Smaller is closer.
//
// Stored values saturate but incoming depths are compared unclamped, so a
// fragment with depth below 0 passes against any stored value, including
// its own earlier write.
type DepthBuffer struct {
	width  int
	height int
	data   []uint32
}

// NewDepthBuffer creates a zeroed depth buffer. Call Clear before use.
func NewDepthBuffer(width, height int) *DepthBuffer {
	return &DepthBuffer{
		width:  width,
		height: height,
		data:   make([]uint32, width*height),
	}
}

// Width returns the buffer width.
func (db *DepthBuffer) Width() int { return db.width }

// Height returns the buffer height.
func (db *DepthBuffer) Height() int { return db.height }

// Clear sets every cell to the far value 1.0.
func (db *DepthBuffer) Clear() {
	n := len(db.data)
	if n == 0 {
		return
	}
	db.data[0] = math.MaxUint32
	for i := 1; i < n; i *= 2 {
		copy(db.data[i:], db.data[:i])
	}
}

// Get returns the depth at (x, y) in [0, 1].
func (db *DepthBuffer) Get(x, y int) float64 {
	return float64(db.data[y*db.width+x]) / math.MaxUint32
}

// Set stores depth at (x, y). Values outside [0, 1], NaN included, saturate.
func (db *DepthBuffer) Set(x, y int, depth float64) {
	db.data[y*db.width+x] = quantizeDepth(depth)
}

func quantizeDepth(depth float64) uint32 {
	v := depth * math.MaxUint32
	switch {
	case !(v > 0): // NaN and negatives
		return 0
	case v >= math.MaxUint32:
		return math.MaxUint32
	default:
		return uint32(v)
	}
}
