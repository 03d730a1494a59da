package render

import (
	"image"
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
)

// TerminalSize returns the framebuffer size that fills cols x rows
// terminal cells. Each cell shows two vertically stacked pixels.
func TerminalSize(cols, rows int) (width, height int) {
	return cols, rows * 2
}

// DrawHalfBlocks draws img onto the screen area, two image rows per
// terminal row. Pixels outside img leave their cells untouched.
func DrawHalfBlocks(scr uv.Screen, area uv.Rectangle, img image.Image) {
	b := img.Bounds()

	// ▀ (upper half block) with fg=top color and bg=bottom color
	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY := b.Min.Y + (row-area.Min.Y)*2
		if topY >= b.Max.Y {
			break
		}
		botY := topY + 1

		for col := area.Min.X; col < area.Max.X; col++ {
			x := b.Min.X + col - area.Min.X
			if x >= b.Max.X {
				break
			}

			top := img.At(x, topY)
			var bot color.Color
			if botY < b.Max.Y {
				bot = img.At(x, botY)
			}

			scr.SetCell(col, row, &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: opaque(top),
					Bg: opaque(bot),
				},
			})
		}
	}
}

// opaque returns nil for missing or fully transparent colors so the
// terminal's default shows through.
func opaque(c color.Color) color.Color {
	if c == nil {
		return nil
	}
	if _, _, _, a := c.RGBA(); a == 0 {
		return nil
	}
	return c
}
