// Package render implements the software rasterization pipeline: projection,
// scan conversion, depth testing, perspective-correct interpolation and
// per-pixel shading into a packed RGB color buffer.
package render

import (
	"image"
	"image/color"
	"image/png"
	"os"
)

// Target is a render target of packed 0xRRGGBB pixels.
type Target interface {
	Width() int
	Height() int
	Pixel(x, y int) uint32
	SetPixel(x, y int, rgb uint32)
}

// ColorBuffer is a row-major packed 0xRRGGBB pixel buffer. Its zero value
// is an empty buffer.
type ColorBuffer struct {
	width  int
	height int
	Pixels []uint32
}

// NewColorBuffer creates a buffer with all pixels 0.
func NewColorBuffer(width, height int) *ColorBuffer {
	return &ColorBuffer{
		width:  width,
		height: height,
		Pixels: make([]uint32, width*height),
	}
}

// Width returns the buffer width in pixels.
func (cb *ColorBuffer) Width() int { return cb.width }

// Height returns the buffer height in pixels.
func (cb *ColorBuffer) Height() int { return cb.height }

// AspectRatio returns width/height.
func (cb *ColorBuffer) AspectRatio() float64 {
	if cb.height == 0 {
		return 1
	}
	return float64(cb.width) / float64(cb.height)
}

// Resize reallocates the buffer, discarding its contents.
func (cb *ColorBuffer) Resize(width, height int) {
	if width == cb.width && height == cb.height {
		return
	}
	cb.width = width
	cb.height = height
	cb.Pixels = make([]uint32, width*height)
}

// Clear fills the buffer with rgb.
func (cb *ColorBuffer) Clear(rgb uint32) {
	// Use copy-doubling for faster clearing
	n := len(cb.Pixels)
	if n == 0 {
		return
	}
	cb.Pixels[0] = rgb
	for i := 1; i < n; i *= 2 {
		copy(cb.Pixels[i:], cb.Pixels[:i])
	}
}

// SetPixel sets the pixel at (x, y). Out-of-bounds writes are ignored.
func (cb *ColorBuffer) SetPixel(x, y int, rgb uint32) {
	if x < 0 || x >= cb.width || y < 0 || y >= cb.height {
		return
	}
	cb.Pixels[y*cb.width+x] = rgb
}

// Pixel returns the pixel at (x, y), or 0 out of bounds.
func (cb *ColorBuffer) Pixel(x, y int) uint32 {
	if x < 0 || x >= cb.width || y < 0 || y >= cb.height {
		return 0
	}
	return cb.Pixels[y*cb.width+x]
}

// RGBA returns the pixel at (x, y) as an opaque color.
func (cb *ColorBuffer) RGBA(x, y int) color.RGBA {
	return Unpack(cb.Pixel(x, y))
}

// Pack packs 8-bit channels into 0xRRGGBB.
func Pack(r, g, b uint8) uint32 {
	return uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

// Unpack expands 0xRRGGBB into an opaque color.
func Unpack(rgb uint32) color.RGBA {
	return color.RGBA{
		R: uint8(rgb >> 16),
		G: uint8(rgb >> 8),
		B: uint8(rgb),
		A: 255,
	}
}

// ToImage converts the buffer to a standard Go image.RGBA.
func (cb *ColorBuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, cb.width, cb.height))
	for y := range cb.height {
		for x := range cb.width {
			img.SetRGBA(x, y, Unpack(cb.Pixels[y*cb.width+x]))
		}
	}
	return img
}

// SavePNG saves the buffer as a PNG file.
func (cb *ColorBuffer) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, cb.ToImage()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
