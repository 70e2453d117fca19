package mandel

import (
	"context"
)

// TileJob is the unit of work sent to a Renderer.
type TileJob struct {
	Tile       Tile
	Samples    *SampleGrid // window with Rect == Tile.Rect
	Iterations int
}

// TileResult carries the escape counts for one tile.
type TileResult struct {
	Tile   Tile
	Counts *ResultGrid
}

// Renderer computes escape counts for a tile.
// Implementations must be safe for concurrent use.
type Renderer interface {
	RenderTile(ctx context.Context, job TileJob) (TileResult, error)
}

// RendererFunc adapts a plain function to the Renderer interface.
type RendererFunc func(ctx context.Context, job TileJob) (TileResult, error)

func (f RendererFunc) RenderTile(ctx context.Context, job TileJob) (TileResult, error) {
	return f(ctx, job)
}

// Executor runs submitted tasks on a fixed set of workers.
// Submit must either accept the task (it will run eventually) or return an error.
type Executor interface {
	Submit(task func()) error
}

// FrameSink consumes finished frames (colorize, persist, display).
type FrameSink interface {
	WriteFrame(ctx context.Context, f Frame) error
}

// FrameSinkFunc adapts a plain function to the FrameSink interface.
type FrameSinkFunc func(ctx context.Context, f Frame) error

func (f FrameSinkFunc) WriteFrame(ctx context.Context, fr Frame) error {
	return f(ctx, fr)
}
