package mandel

import (
	"fmt"
	"image"
	"math"
)

// Viewport is a square window into the complex plane.
type Viewport struct {
	Center  complex128
	Padding float64 // half-width of the window
}

// Validate reports whether v can be sampled.
func (v Viewport) Validate() error {
	cx, cy := real(v.Center), imag(v.Center)
	if math.IsNaN(cx) || math.IsInf(cx, 0) || math.IsNaN(cy) || math.IsInf(cy, 0) {
		return fmt.Errorf("%w: center %v is not finite", ErrInvalidConfig, v.Center)
	}
	if !(v.Padding > 0) || math.IsInf(v.Padding, 0) {
		return fmt.Errorf("%w: padding must be positive and finite, got %v", ErrInvalidConfig, v.Padding)
	}
	return nil
}

// Bounds returns the real and imaginary limits of the viewport.
func (v Viewport) Bounds() (xmin, xmax, ymin, ymax float64) {
	cx, cy := real(v.Center), imag(v.Center)
	return cx - v.Padding, cx + v.Padding, cy - v.Padding, cy + v.Padding
}

// Tile is one cell of the T×T partition of a grid.
// It owns no data: Rect is a window in the parent grid's index space
// (X is the column, Y is the row).
type Tile struct {
	Row, Col int
	Rect     image.Rectangle
}

func (t Tile) String() string {
	return fmt.Sprintf("tile(%d,%d)%v", t.Row, t.Col, t.Rect)
}

// FrameState describes one frame of a zoom sequence.
type FrameState struct {
	Index      int
	Viewport   Viewport
	Width      int
	Height     int
	Iterations int
}

// Frame is a finished render handed to a FrameSink.
type Frame struct {
	State FrameState
	Grid  *ResultGrid
}
