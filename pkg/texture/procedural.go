package texture

// Checker returns a 3-channel checkerboard of cell×cell squares alternating
// between a and b, starting with a at the origin.
func Checker(width, height, cell int, a, b [3]byte) *Image {
	if cell < 1 {
		cell = 1
	}
	img := &Image{
		Width:    width,
		Height:   height,
		Channels: 3,
		Data:     make([]byte, width*height*3),
	}
	for y := range height {
		for x := range width {
			c := a
			if (x/cell+y/cell)%2 != 0 {
				c = b
			}
			copy(img.Data[(y*width+x)*3:], c[:])
		}
	}
	return img
}

// Solid returns a 1×1 RGBA image of a single color.
func Solid(r, g, b, a byte) *Image {
	return &Image{Width: 1, Height: 1, Channels: 4, Data: []byte{r, g, b, a}}
}
