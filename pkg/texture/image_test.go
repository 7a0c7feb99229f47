package texture

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/taigrr/facet/pkg/math3d"
)

const tolerance = 1e-9

func vecApprox(a, b math3d.Vec4) bool {
	return math.Abs(a.X-b.X) < tolerance &&
		math.Abs(a.Y-b.Y) < tolerance &&
		math.Abs(a.Z-b.Z) < tolerance &&
		math.Abs(a.W-b.W) < tolerance
}

func norm(b byte) float64 {
	return float64(b) / 255.99
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name     string
		w, h, ch int
		data     []byte
		wantErr  error
	}{
		{"rgba ok", 1, 1, 4, make([]byte, 4), nil},
		{"gray ok", 2, 2, 1, make([]byte, 4), nil},
		{"zero channels", 1, 1, 0, nil, ErrUnsupportedChannels},
		{"five channels", 1, 1, 5, make([]byte, 5), ErrUnsupportedChannels},
		{"short data", 2, 2, 3, make([]byte, 11), ErrSizeMismatch},
		{"empty", 0, 0, 3, nil, ErrSizeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.w, tt.h, tt.ch, tt.data)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("New() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetPixelChannels(t *testing.T) {
	tests := []struct {
		name     string
		channels int
		data     []byte
		want     math3d.Vec4
	}{
		{"rgba", 4, []byte{10, 20, 30, 40}, math3d.V4(norm(10), norm(20), norm(30), norm(40))},
		{"rgb has zero alpha", 3, []byte{10, 20, 30}, math3d.V4(norm(10), norm(20), norm(30), 0)},
		{"rg", 2, []byte{10, 20}, math3d.V4(norm(10), norm(20), 0, 0)},
		{"r", 1, []byte{10}, math3d.V4(norm(10), 0, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := New(1, 1, tt.channels, tt.data)
			if err != nil {
				t.Fatal(err)
			}
			if got := img.GetPixel(0.5, 0.5); !vecApprox(got, tt.want) {
				t.Errorf("GetPixel = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetPixelPanicsOnInvalidImage(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for 5-channel image")
		}
	}()
	img := &Image{Width: 1, Height: 1, Channels: 5, Data: make([]byte, 5)}
	img.GetPixel(0, 0)
}

// grid returns a w×h single-channel image whose texel (x, y) holds y*w+x.
func grid(w, h int) *Image {
	data := make([]byte, w*h)
	for i := range data {
		data[i] = byte(i)
	}
	return &Image{Width: w, Height: h, Channels: 1, Data: data}
}

func TestGetPixelWrapsModuloDimensionMinusOne(t *testing.T) {
	img := grid(4, 4)

	tests := []struct {
		name  string
		u, v  float64
		texel int
	}{
		{"origin", 0, 0, 0},
		{"second column", 0.3, 0, 1},
		{"third column", 0.6, 0, 2},
		{"last column wraps to first", 0.8, 0, 0},
		{"u=1 wraps", 1.0, 0, 1},
		{"negative u", -0.2, 0, 2},
		{"last row wraps", 0, 0.9, 0},
		{"row and column", 0.3, 0.6, 2*4 + 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := img.GetPixel(tt.u, tt.v).X
			if want := norm(byte(tt.texel)); math.Abs(got-want) > tolerance {
				t.Errorf("GetPixel(%v, %v) = %v, want texel %d (%v)", tt.u, tt.v, got, tt.texel, want)
			}
		})
	}
}

func TestGetPixelSingleTexel(t *testing.T) {
	img := grid(1, 1)
	img.Data[0] = 200
	for _, uv := range [][2]float64{{0, 0}, {0.5, 0.5}, {3.7, -2.1}} {
		if got := img.GetPixel(uv[0], uv[1]).X; math.Abs(got-norm(200)) > tolerance {
			t.Errorf("GetPixel(%v) = %v", uv, got)
		}
	}
}

func TestSamplePixelTexelCenter2x2(t *testing.T) {
	img, err := New(2, 2, 4, []byte{
		255, 0, 0, 255, 0, 255, 0, 255,
		0, 0, 255, 255, 255, 255, 255, 255,
	})
	if err != nil {
		t.Fatal(err)
	}
	want := math3d.V4(norm(255), 0, 0, norm(255))

	if got := img.SamplePixel(0.25, 0.25, false); !vecApprox(got, want) {
		t.Errorf("nearest = %v, want %v", got, want)
	}
	// Every neighbour wraps onto texel (0,0) for a 2×2 image.
	if got := img.SamplePixel(0.25, 0.25, true); !vecApprox(got, want) {
		t.Errorf("bilinear = %v, want %v", got, want)
	}
}

func TestSamplePixelBilinearFormula(t *testing.T) {
	img := grid(4, 4)
	u, v := 0.3, 0.6

	tl := img.GetPixel(u-0.25, v-0.25).X
	tr := img.GetPixel(u+0.25, v-0.25).X
	bl := img.GetPixel(u-0.25, v+0.25).X
	br := img.GetPixel(u+0.25, v+0.25).X
	left, right := (tl+bl)/2, (tr+br)/2
	top, bottom := (tl+tr)/2, (bl+br)/2
	fx, fy := 0.2, 0.4
	h := left + (right-left)*fx
	vv := top + (bottom-top)*fy
	want := (h + vv) / 2

	got := img.SamplePixel(u, v, true).X
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("bilinear = %v, want %v", got, want)
	}
}

func TestFromImageChannels(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 2, 1))
	gray.SetGray(1, 0, color.Gray{Y: 77})

	opaque := image.NewRGBA(image.Rect(0, 0, 1, 1))
	opaque.Set(0, 0, color.RGBA{1, 2, 3, 255})

	translucent := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	translucent.Set(0, 0, color.NRGBA{1, 2, 3, 4})

	tests := []struct {
		name string
		src  image.Image
		ch   int
		data []byte
	}{
		{"gray", gray, 1, []byte{0, 77}},
		{"opaque rgba", opaque, 3, []byte{1, 2, 3}},
		{"translucent", translucent, 4, []byte{1, 2, 3, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := FromImage(tt.src, false)
			if img.Channels != tt.ch {
				t.Fatalf("channels = %d, want %d", img.Channels, tt.ch)
			}
			if !bytes.Equal(img.Data, tt.data) {
				t.Errorf("data = %v, want %v", img.Data, tt.data)
			}
			if err := img.Validate(); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestDecodeFlipY(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 1, 2))
	src.SetGray(0, 0, color.Gray{Y: 10})
	src.SetGray(0, 1, color.Gray{Y: 20})

	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatal(err)
	}

	img, err := DecodeBytes(buf.Bytes(), true)
	if err != nil {
		t.Fatal(err)
	}
	if img.Data[0] != 20 || img.Data[1] != 10 {
		t.Errorf("flipped data = %v, want [20 10]", img.Data)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := DecodeBytes([]byte("not an image"), false); err == nil {
		t.Error("expected decode error")
	}
}

func BenchmarkSamplePixelBilinear(b *testing.B) {
	img := grid(16, 16)
	for b.Loop() {
		_ = img.SamplePixel(0.37, 0.61, true)
	}
}
