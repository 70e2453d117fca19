package mandel

import (
	"fmt"
)

// Zoom multipliers applied to the padding by ViewState.Click.
const (
	ZoomIn  = 0.1 // single click
	ZoomOut = 100 // double click
)

// ViewState is the state of an interactive viewer. Every event produces a new
// value; nothing is shared between renders.
type ViewState struct {
	Viewport
	Width  int
	Height int
}

// Validate reports whether the view can be rendered.
func (v ViewState) Validate() error {
	if err := v.Viewport.Validate(); err != nil {
		return err
	}
	if v.Width <= 0 || v.Height <= 0 {
		return fmt.Errorf("%w: resolution must be positive, got %dx%d", ErrInvalidConfig, v.Width, v.Height)
	}
	return nil
}

// PixelToComplex returns the sample the grid generator places at column px,
// row py. Coordinates outside the grid are rejected.
func (v ViewState) PixelToComplex(px, py int) (complex128, error) {
	if err := v.Validate(); err != nil {
		return 0, err
	}
	if px < 0 || px >= v.Width || py < 0 || py >= v.Height {
		return 0, fmt.Errorf("pixel (%d,%d) outside %dx%d view", px, py, v.Width, v.Height)
	}
	xmin, xmax, ymin, ymax := v.Bounds()
	re := Linspace(xmin, xmax, v.Width)
	im := Linspace(ymin, ymax, v.Height)
	return complex(re[px], im[py]), nil
}

// Click recenters the view on the clicked pixel and zooms: in by ZoomIn for
// a single click, out by ZoomOut for a double click.
func (v ViewState) Click(px, py int, double bool) (ViewState, error) {
	c, err := v.PixelToComplex(px, py)
	if err != nil {
		return v, err
	}
	factor := ZoomIn
	if double {
		factor = ZoomOut
	}
	next := v
	next.Center = c
	next.Padding = v.Padding * factor
	return next, next.Validate()
}
