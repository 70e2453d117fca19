package mandel

import (
	"fmt"
	"image"
)

// SplitTiles partitions r into t×t tiles in row-major order.
// Tile k spans [k·dim/t, (k+1)·dim/t) on each axis (integer division), so the
// tiles cover r exactly without overlap. Edge tiles may differ in size from
// interior ones and tiles are empty when t exceeds a dimension.
func SplitTiles(r image.Rectangle, t int) ([]Tile, error) {
	if t <= 0 {
		return nil, fmt.Errorf("%w: tile count must be positive, got %d", ErrInvalidConfig, t)
	}

	w, h := r.Dx(), r.Dy()
	tiles := make([]Tile, 0, t*t)
	for row := range t {
		y0 := r.Min.Y + row*h/t
		y1 := r.Min.Y + (row+1)*h/t
		for col := range t {
			x0 := r.Min.X + col*w/t
			x1 := r.Min.X + (col+1)*w/t
			tiles = append(tiles, Tile{
				Row: row,
				Col: col,
				// image.Rect would canonicalize, the bounds are already ordered.
				Rect: image.Rectangle{Min: image.Pt(x0, y0), Max: image.Pt(x1, y1)},
			})
		}
	}
	return tiles, nil
}
