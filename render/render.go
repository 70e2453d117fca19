// Package render provides the in-process tile renderer used by local workers
// and by remote worker processes.
package render

import (
	"context"
	"log/slog"

	mandel "github.com/J-Feltens/Mandelbrot"
)

// Local renders tiles on the calling goroutine.
type Local struct {
	// OnTileRender, if set, is called before a tile is computed.
	OnTileRender func(tile mandel.Tile)
}

var _ mandel.Renderer = Local{}

// RenderTile implements mandel.Renderer.
func (l Local) RenderTile(ctx context.Context, job mandel.TileJob) (mandel.TileResult, error) {
	if err := ctx.Err(); err != nil {
		return mandel.TileResult{}, err
	}
	if l.OnTileRender != nil {
		l.OnTileRender(job.Tile)
	}
	mandel.Logger().Debug("rendering tile", slog.String("tile", job.Tile.String()))

	return mandel.TileResult{
		Tile:   job.Tile,
		Counts: mandel.ComputeBlock(job.Samples, job.Iterations),
	}, nil
}
