// Package output turns result grids into images and files.
package output

import (
	"image"
	"image/color"

	mandel "github.com/J-Feltens/Mandelbrot"
	"github.com/J-Feltens/Mandelbrot/colormap"
)

// Colorize maps every count c of grid to m.At(c/n). Row 0 of the grid
// becomes the top row of the image. With n <= 0 every pixel is m.At(0).
func Colorize(grid *mandel.ResultGrid, n int, m colormap.Map) *image.RGBA {
	b := grid.Rect
	img := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))

	// One color per possible count.
	lut := make([]color.RGBA, max(n, 0)+1)
	for i := range lut {
		t := 0.0
		if n > 0 {
			t = float64(i) / float64(n)
		}
		lut[i] = m.At(t)
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := grid.At(y, x)
			if c < 0 || c >= len(lut) {
				c = 0
			}
			img.SetRGBA(x-b.Min.X, y-b.Min.Y, lut[c])
		}
	}
	return img
}
