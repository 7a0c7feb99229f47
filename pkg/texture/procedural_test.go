package texture

import (
	"testing"

	"github.com/taigrr/facet/pkg/math3d"
)

func TestChecker(t *testing.T) {
	light, dark := [3]byte{200, 200, 200}, [3]byte{50, 50, 50}
	img := Checker(8, 8, 4, light, dark)
	if err := img.Validate(); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		x, y int
		want [3]byte
	}{
		{0, 0, light},
		{3, 3, light},
		{4, 0, dark},
		{0, 4, dark},
		{5, 6, light},
	}
	for _, tt := range tests {
		i := (tt.y*8 + tt.x) * 3
		got := [3]byte{img.Data[i], img.Data[i+1], img.Data[i+2]}
		if got != tt.want {
			t.Errorf("texel (%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestSolid(t *testing.T) {
	img := Solid(255, 0, 0, 255)
	if err := img.Validate(); err != nil {
		t.Fatal(err)
	}
	for _, uv := range [][2]float64{{0, 0}, {0.7, 0.2}, {-3, 9}} {
		want := math3d.V4(norm(255), 0, 0, norm(255))
		if got := img.SamplePixel(uv[0], uv[1], true); !vecApprox(got, want) {
			t.Errorf("sample at %v = %v, want %v", uv, got, want)
		}
	}
}
