// Package texture holds decoded texture images and the sampler used by the
// shading stage.
package texture

import (
	"errors"
	"fmt"
	"math"

	"github.com/taigrr/facet/pkg/math3d"
)

// byteScale normalizes a channel byte into [0, 1).
const byteScale = 255.99

var (
	// ErrUnsupportedChannels is returned for images that are not 1 to 4
	// channels wide.
	ErrUnsupportedChannels = errors.New("texture: unsupported channel count")
	// ErrSizeMismatch is returned when the pixel data length does not match
	// the declared dimensions.
	ErrSizeMismatch = errors.New("texture: data size does not match dimensions")
)

// Image is a decoded texture stored as tightly packed row-major bytes,
// Channels bytes per texel.
type Image struct {
	Width    int
	Height   int
	Channels int
	Data     []byte
}

// New wraps raw texel bytes in an Image after validating them.
func New(width, height, channels int, data []byte) (*Image, error) {
	img := &Image{
		Width:    width,
		Height:   height,
		Channels: channels,
		Data:     data,
	}
	if err := img.Validate(); err != nil {
		return nil, err
	}
	return img, nil
}

// Validate reports whether the image can be sampled.
func (img *Image) Validate() error {
	if img.Channels < 1 || img.Channels > 4 {
		return fmt.Errorf("%w: %d", ErrUnsupportedChannels, img.Channels)
	}
	if img.Width <= 0 || img.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrSizeMismatch, img.Width, img.Height)
	}
	if want := img.Width * img.Height * img.Channels; len(img.Data) != want {
		return fmt.Errorf("%w: have %d bytes, want %d", ErrSizeMismatch, len(img.Data), want)
	}
	return nil
}

// GetPixel returns the texel addressed by the normalized coordinates (u, v).
//
// Texel coordinates wrap modulo dimension-1, so the last row and column are
// only reachable at exactly u or v in [(W-1)/W, 1). Missing channels read as
// zero, alpha included. GetPixel panics on an image that fails Validate.
func (img *Image) GetPixel(u, v float64) math3d.Vec4 {
	x := wrap(u, img.Width)
	y := wrap(v, img.Height)
	i := (y*img.Width + x) * img.Channels
	d := img.Data

	switch img.Channels {
	case 4:
		return math3d.V4(
			float64(d[i])/byteScale,
			float64(d[i+1])/byteScale,
			float64(d[i+2])/byteScale,
			float64(d[i+3])/byteScale,
		)
	case 3:
		return math3d.V4(
			float64(d[i])/byteScale,
			float64(d[i+1])/byteScale,
			float64(d[i+2])/byteScale,
			0,
		)
	case 2:
		return math3d.V4(
			float64(d[i])/byteScale,
			float64(d[i+1])/byteScale,
			0,
			0,
		)
	case 1:
		return math3d.V4(float64(d[i])/byteScale, 0, 0, 0)
	default:
		panic(fmt.Sprintf("texture: unsupported channel count %d", img.Channels))
	}
}

// SamplePixel samples the image at (u, v). With bilinear unset it is
// GetPixel. Otherwise the four diagonal neighbours one texel away are
// averaged pairwise into left, right, top and bottom values, which are
// blended by the fractional texel position and averaged.
func (img *Image) SamplePixel(u, v float64, bilinear bool) math3d.Vec4 {
	if !bilinear {
		return img.GetPixel(u, v)
	}

	w, h := float64(img.Width), float64(img.Height)
	du, dv := 1/w, 1/h

	tl := img.GetPixel(u-du, v-dv)
	tr := img.GetPixel(u+du, v-dv)
	bl := img.GetPixel(u-du, v+dv)
	br := img.GetPixel(u+du, v+dv)

	left := tl.Add(bl).Scale(0.5)
	right := tr.Add(br).Scale(0.5)
	top := tl.Add(tr).Scale(0.5)
	bottom := bl.Add(br).Scale(0.5)

	fx := frac(u * w)
	fy := frac(v * h)

	horizontal := left.Lerp(right, fx)
	vertical := top.Lerp(bottom, fy)
	return horizontal.Add(vertical).Scale(0.5)
}

// wrap maps a normalized coordinate onto a texel index in [0, size-2],
// or 0 for single-texel dimensions.
func wrap(t float64, size int) int {
	m := size - 1
	if m <= 0 {
		return 0
	}
	f := math.Floor(t * float64(size))
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	i := int(math.Mod(f, float64(m)))
	if i < 0 {
		i += m
	}
	return i
}

func frac(f float64) float64 {
	return f - math.Floor(f)
}
