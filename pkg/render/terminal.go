package render

import (
	uv "github.com/charmbracelet/ultraviolet"
)

// halfBlock is the upper half block. Its foreground paints the top buffer
// row of a cell and its background the bottom row.
const halfBlock = "▀"

// CellSize returns the buffer size needed to fill a cols×rows terminal area
// in half-block mode.
func CellSize(cols, rows int) (width, height int) {
	return cols, rows * 2
}

// Draw paints the buffer into area of scr, two buffer rows per terminal
// cell. Buffer rows or columns outside area are not drawn.
func (cb *ColorBuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	for row := area.Min.Y; row < area.Max.Y; row++ {
		top := (row - area.Min.Y) * 2
		if top >= cb.height {
			break
		}
		for col := area.Min.X; col < area.Max.X; col++ {
			x := col - area.Min.X
			if x >= cb.width {
				break
			}
			scr.SetCell(col, row, &uv.Cell{
				Content: halfBlock,
				Width:   1,
				Style: uv.Style{
					Fg: cb.RGBA(x, top),
					Bg: cb.RGBA(x, top+1),
				},
			})
		}
	}
}
