package texture

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"io"
	"os"

	_ "golang.org/x/image/bmp"  // Register BMP decoder
	_ "golang.org/x/image/tiff" // Register TIFF decoder
	_ "golang.org/x/image/webp" // Register WebP decoder

	"github.com/taigrr/facet/pkg/logging"
)

// Load decodes the image file at path. If flipY is set the rows are stored
// bottom-up.
func Load(path string, flipY bool) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture: %w", err)
	}
	defer f.Close()

	img, err := Decode(f, flipY)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// DecodeBytes decodes an encoded image held in memory, such as one embedded
// in a glTF buffer.
func DecodeBytes(data []byte, flipY bool) (*Image, error) {
	return Decode(bytes.NewReader(data), flipY)
}

// Decode reads any registered image format from r.
func Decode(r io.Reader, flipY bool) (*Image, error) {
	src, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	img := FromImage(src, flipY)
	logging.Logger().Debug("texture decoded",
		"format", format,
		"width", img.Width,
		"height", img.Height,
		"channels", img.Channels)
	return img, nil
}

// FromImage converts an image.Image into an Image. Grayscale sources keep a
// single channel, opaque colour sources three, everything else four.
func FromImage(src image.Image, flipY bool) *Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	channels := channelsOf(src)

	img := &Image{
		Width:    w,
		Height:   h,
		Channels: channels,
		Data:     make([]byte, w*h*channels),
	}

	for y := range h {
		row := y
		if flipY {
			row = h - 1 - y
		}
		for x := range w {
			i := (row*w + x) * channels
			c := color.NRGBAModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			switch channels {
			case 1:
				img.Data[i] = c.R
			case 3:
				img.Data[i] = c.R
				img.Data[i+1] = c.G
				img.Data[i+2] = c.B
			default:
				img.Data[i] = c.R
				img.Data[i+1] = c.G
				img.Data[i+2] = c.B
				img.Data[i+3] = c.A
			}
		}
	}

	return img
}

func channelsOf(src image.Image) int {
	switch s := src.(type) {
	case *image.Gray, *image.Gray16:
		return 1
	case *image.YCbCr, *image.CMYK:
		return 3
	case image.RGBA64Image:
		if o, ok := s.(interface{ Opaque() bool }); ok && o.Opaque() {
			return 3
		}
	}
	return 4
}
