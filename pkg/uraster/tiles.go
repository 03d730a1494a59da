package uraster

import "image"

// Default tile size. 64x64 keeps a tile's pixels warm in cache while leaving
// enough tiles for a typical framebuffer to spread across workers.
const (
	DefaultTileWidth  = 64
	DefaultTileHeight = 64
)

// tile is a rectangle of the framebuffer owned by one worker during the
// fill phase, plus the triangles touching it in submission order.
type tile struct {
	rect image.Rectangle
	tris []int
}

// tileGrid partitions a framebuffer into disjoint tiles. Edge tiles are
// smaller when the framebuffer is not a multiple of the tile size.
type tileGrid struct {
	tileW, tileH int
	cols, rows   int
	tiles        []tile
}

func newTileGrid(width, height, tileW, tileH int) *tileGrid {
	cols := (width + tileW - 1) / tileW
	rows := (height + tileH - 1) / tileH

	g := &tileGrid{
		tileW: tileW,
		tileH: tileH,
		cols:  cols,
		rows:  rows,
		tiles: make([]tile, cols*rows),
	}
	for ty := range rows {
		for tx := range cols {
			r := image.Rect(tx*tileW, ty*tileH, (tx+1)*tileW, (ty+1)*tileH)
			g.tiles[ty*cols+tx].rect = r.Intersect(image.Rect(0, 0, width, height))
		}
	}
	return g
}

// bin records triangle id in every tile its box overlaps. Calling bin in
// submission order keeps each tile's list in submission order.
func (g *tileGrid) bin(id int, box image.Rectangle) {
	if box.Empty() {
		return
	}
	tx0, tx1 := box.Min.X/g.tileW, (box.Max.X-1)/g.tileW
	ty0, ty1 := box.Min.Y/g.tileH, (box.Max.Y-1)/g.tileH
	for ty := ty0; ty <= ty1; ty++ {
		for tx := tx0; tx <= tx1; tx++ {
			t := &g.tiles[ty*g.cols+tx]
			t.tris = append(t.tris, id)
		}
	}
}

// busy returns the tiles that have at least one triangle.
func (g *tileGrid) busy() []*tile {
	var out []*tile
	for i := range g.tiles {
		if len(g.tiles[i].tris) > 0 {
			out = append(out, &g.tiles[i])
		}
	}
	return out
}
