package mandel

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig marks configuration errors: non-positive worker count,
// resolution, tile count or padding. No work is attempted when it is returned.
var ErrInvalidConfig = errors.New("invalid configuration")

// TileError reports the failure of a single tile. The frame containing the
// tile is discarded as a whole.
type TileError struct {
	Row, Col int
	Err      error
}

func (e *TileError) Error() string {
	return fmt.Sprintf("tile (%d,%d): %v", e.Row, e.Col, e.Err)
}

func (e *TileError) Unwrap() error { return e.Err }

// FrameError reports a frame that failed to render or persist.
type FrameError struct {
	Index int
	Err   error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("frame %d: %v", e.Index, e.Err)
}

func (e *FrameError) Unwrap() error { return e.Err }
