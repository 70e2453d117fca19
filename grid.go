package mandel

import (
	"fmt"
	"image"
)

// SampleGrid is a row-major grid of complex sample points, laid out like
// image.RGBA: Samples[(y-Rect.Min.Y)*Stride + (x-Rect.Min.X)] holds the
// sample at row y, column x.
type SampleGrid struct {
	Samples []complex128
	Stride  int
	Rect    image.Rectangle
}

// NewSampleGridSize allocates a zeroed grid covering r.
func NewSampleGridSize(r image.Rectangle) *SampleGrid {
	return &SampleGrid{
		Samples: make([]complex128, r.Dx()*r.Dy()),
		Stride:  r.Dx(),
		Rect:    r,
	}
}

func (g *SampleGrid) offset(row, col int) int {
	return (row-g.Rect.Min.Y)*g.Stride + (col - g.Rect.Min.X)
}

// At returns the sample at (row, col) in grid index space.
func (g *SampleGrid) At(row, col int) complex128 {
	return g.Samples[g.offset(row, col)]
}

// Set stores the sample at (row, col).
func (g *SampleGrid) Set(row, col int, c complex128) {
	g.Samples[g.offset(row, col)] = c
}

// SubGrid returns a window of g sharing its backing storage.
// r is clipped to g.Rect. An empty window keeps its bounds and has no samples.
func (g *SampleGrid) SubGrid(r image.Rectangle) *SampleGrid {
	if !r.Empty() {
		r = r.Intersect(g.Rect)
	}
	if r.Empty() {
		return &SampleGrid{Stride: g.Stride, Rect: r}
	}
	return &SampleGrid{
		Samples: g.Samples[g.offset(r.Min.Y, r.Min.X):],
		Stride:  g.Stride,
		Rect:    r,
	}
}

// ResultGrid holds escape counts, one per sample, with the same layout as
// SampleGrid.
type ResultGrid struct {
	Counts []int
	Stride int
	Rect   image.Rectangle
}

// NewResultGrid allocates a zeroed result grid covering r.
func NewResultGrid(r image.Rectangle) *ResultGrid {
	return &ResultGrid{
		Counts: make([]int, r.Dx()*r.Dy()),
		Stride: r.Dx(),
		Rect:   r,
	}
}

func (g *ResultGrid) offset(row, col int) int {
	return (row-g.Rect.Min.Y)*g.Stride + (col - g.Rect.Min.X)
}

func (g *ResultGrid) At(row, col int) int {
	return g.Counts[g.offset(row, col)]
}

func (g *ResultGrid) Set(row, col, v int) {
	g.Counts[g.offset(row, col)] = v
}

// Rows returns the counts as a freshly allocated [][]int, row 0 first.
func (g *ResultGrid) Rows() [][]int {
	rows := make([][]int, g.Rect.Dy())
	for y := range rows {
		rows[y] = make([]int, g.Rect.Dx())
		for x := range rows[y] {
			rows[y][x] = g.At(g.Rect.Min.Y+y, g.Rect.Min.X+x)
		}
	}
	return rows
}

// wellFormed reports whether Counts is large enough for Rect and Stride.
func (g *ResultGrid) wellFormed() bool {
	if g.Rect.Empty() {
		return true
	}
	return g.Stride >= g.Rect.Dx() && len(g.Counts) >= (g.Rect.Dy()-1)*g.Stride+g.Rect.Dx()
}

// PasteAt copies src into the rectangle r of g. src must have the size of r
// and r must lie inside g.Rect; the origin of src.Rect is ignored.
func (g *ResultGrid) PasteAt(src *ResultGrid, r image.Rectangle) error {
	if r.Empty() {
		return nil
	}
	if src.Rect.Size() != r.Size() {
		return fmt.Errorf("paste: size %v does not match %v", src.Rect.Size(), r.Size())
	}
	if !r.In(g.Rect) {
		return fmt.Errorf("paste: %v outside %v", r, g.Rect)
	}
	if !src.wellFormed() {
		return fmt.Errorf("paste: malformed source grid %v", src.Rect)
	}
	w := r.Dx()
	for dy := range r.Dy() {
		d := g.offset(r.Min.Y+dy, r.Min.X)
		s := src.offset(src.Rect.Min.Y+dy, src.Rect.Min.X)
		copy(g.Counts[d:d+w], src.Counts[s:s+w])
	}
	return nil
}

// Linspace returns num evenly spaced values over [start, stop].
// num == 1 yields start alone; the last value is always exactly stop.
func Linspace(start, stop float64, num int) []float64 {
	if num <= 0 {
		return []float64{}
	}
	v := make([]float64, num)
	if num == 1 {
		v[0] = start
		return v
	}
	step := (stop - start) / float64(num-1)
	for i := range v {
		v[i] = float64(float64(i)*step) + start
	}
	v[num-1] = stop
	return v
}

// NewSampleGrid samples the viewport on a width×height grid.
// Columns run along the real axis, rows along the imaginary axis,
// both from the low end of the viewport to the high end inclusive.
func NewSampleGrid(v Viewport, width, height int) (*SampleGrid, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: resolution must be positive, got %dx%d", ErrInvalidConfig, width, height)
	}

	xmin, xmax, ymin, ymax := v.Bounds()
	re := Linspace(xmin, xmax, width)
	im := Linspace(ymin, ymax, height)

	g := NewSampleGridSize(image.Rect(0, 0, width, height))
	for row, y := range im {
		for col, x := range re {
			g.Set(row, col, complex(x, y))
		}
	}
	return g, nil
}
