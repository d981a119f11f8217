package render

import (
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
)

// Draw paints the framebuffer into area using upper half-block cells, two
// image rows per terminal row. The image is scaled with nearest-neighbour
// sampling to fill the area while keeping its aspect ratio.
func (fb *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	cols := area.Max.X - area.Min.X
	rows := area.Max.Y - area.Min.Y
	if cols <= 0 || rows <= 0 || fb.Width == 0 || fb.Height == 0 {
		return
	}

	// Each cell is one pixel wide and two pixels tall.
	scale := min(float64(cols)/float64(fb.Width), float64(rows*2)/float64(fb.Height))
	outW := max(int(float64(fb.Width)*scale), 1)
	outH := max(int(float64(fb.Height)*scale), 1)
	offX := area.Min.X + (cols-outW)/2
	offY := area.Min.Y + (rows-(outH+1)/2)/2

	sample := func(x, y int) color.RGBA {
		if y >= outH {
			return color.RGBA{}
		}
		return fb.GetPixel(int(float64(x)/scale), int(float64(y)/scale))
	}

	for row := 0; row < (outH+1)/2; row++ {
		for col := 0; col < outW; col++ {
			// ▀ with fg = top pixel and bg = bottom pixel.
			cell := &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: rgbaToColor(sample(col, row*2)),
					Bg: rgbaToColor(sample(col, row*2+1)),
				},
			}
			scr.SetCell(offX+col, offY+row, cell)
		}
	}
}

// rgbaToColor converts color.RGBA to Go's color.Color interface.
func rgbaToColor(c color.RGBA) color.Color {
	if c.A == 0 {
		return nil // Transparent = no color
	}
	return c
}
