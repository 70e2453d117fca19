package mandel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// DefaultTileCount is the number of tiles per axis.
const DefaultTileCount = 10

// Scheduler splits a sample grid into tiles, renders the tiles on an Executor
// and assembles the results.
//
// A Scheduler keeps no per-frame state: Render may be called concurrently,
// for example for several frames sharing one worker pool.
type Scheduler struct {
	renderer  Renderer
	exec      Executor
	tileCount int
	retries   int
	progress  func(done, total int)
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithTileCount sets the number of tiles per axis (default DefaultTileCount).
func WithTileCount(t int) SchedulerOption {
	return func(s *Scheduler) { s.tileCount = t }
}

// WithRetries lets a failing tile run up to k more times before the frame fails.
func WithRetries(k int) SchedulerOption {
	return func(s *Scheduler) { s.retries = k }
}

// WithProgress registers a callback invoked after every assembled tile.
// It is called from the goroutine running Render.
func WithProgress(fn func(done, total int)) SchedulerOption {
	return func(s *Scheduler) { s.progress = fn }
}

// NewScheduler returns a scheduler rendering tiles with r on exec.
func NewScheduler(r Renderer, exec Executor, opts ...SchedulerOption) (*Scheduler, error) {
	s := &Scheduler{
		renderer:  r,
		exec:      exec,
		tileCount: DefaultTileCount,
	}
	for _, opt := range opts {
		opt(s)
	}

	switch {
	case r == nil:
		return nil, fmt.Errorf("%w: nil renderer", ErrInvalidConfig)
	case exec == nil:
		return nil, fmt.Errorf("%w: nil executor", ErrInvalidConfig)
	case s.tileCount <= 0:
		return nil, fmt.Errorf("%w: tile count must be positive, got %d", ErrInvalidConfig, s.tileCount)
	case s.retries < 0:
		return nil, fmt.Errorf("%w: retries must not be negative, got %d", ErrInvalidConfig, s.retries)
	}
	return s, nil
}

// TileCount returns the number of tiles per axis.
func (s *Scheduler) TileCount() int {
	return s.tileCount
}

type tileOutcome struct {
	tile   Tile
	counts *ResultGrid
	err    error
}

// Render computes the escape counts of every sample in grid with iteration
// budget n. It returns once every submitted tile has reported. If any tile
// fails the whole grid is discarded and a *TileError is returned; tiles still
// queued see a cancelled context and skip the renderer.
func (s *Scheduler) Render(ctx context.Context, grid *SampleGrid, n int) (*ResultGrid, error) {
	tiles, err := SplitTiles(grid.Rect, s.tileCount)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Buffered so tasks never block on delivery, even after Render gave up
	// on the frame.
	outcomes := make(chan tileOutcome, len(tiles))

	var firstErr error
	submitted := 0
	for _, t := range tiles {
		job := TileJob{
			Tile:       t,
			Samples:    grid.SubGrid(t.Rect),
			Iterations: n,
		}
		err := s.exec.Submit(func() {
			o := s.runTile(ctx, job)
			if o.err != nil {
				cancel()
			}
			outcomes <- o
		})
		if err != nil {
			firstErr = &TileError{Row: t.Row, Col: t.Col, Err: fmt.Errorf("submit: %w", err)}
			cancel()
			break
		}
		submitted++
	}

	result := NewResultGrid(grid.Rect)
	done := 0
	for range submitted {
		o := <-outcomes
		if o.err != nil {
			// Tiles cancelled because of another failure must not mask it.
			if firstErr == nil || (isCanceled(firstErr) && !isCanceled(o.err)) {
				firstErr = o.err
			}
			cancel()
			continue
		}
		if firstErr != nil {
			continue
		}

		// The destination comes from the tile identity, never from the
		// rectangle reported by the renderer.
		if err := result.PasteAt(o.counts, o.tile.Rect); err != nil {
			firstErr = &TileError{Row: o.tile.Row, Col: o.tile.Col, Err: err}
			cancel()
			continue
		}
		done++
		if s.progress != nil {
			s.progress(done, len(tiles))
		}
		Logger().Debug("tile finished",
			slog.Int("row", o.tile.Row),
			slog.Int("col", o.tile.Col),
			slog.Float64("finished", float64(done)/float64(len(tiles))))
	}

	if firstErr != nil {
		return nil, firstErr
	}
	return result, nil
}

// runTile renders one tile, retrying up to s.retries times.
func (s *Scheduler) runTile(ctx context.Context, job TileJob) tileOutcome {
	var err error
	for attempt := 0; attempt <= s.retries; attempt++ {
		if cerr := ctx.Err(); cerr != nil {
			if err == nil {
				err = cerr
			}
			break
		}
		if attempt > 0 {
			Logger().Warn("retrying tile",
				slog.Int("row", job.Tile.Row),
				slog.Int("col", job.Tile.Col),
				slog.Int("attempt", attempt),
				slog.Any("error", err))
		}

		var res TileResult
		res, err = s.renderOnce(ctx, job)
		if err == nil {
			return tileOutcome{tile: job.Tile, counts: res.Counts}
		}
	}
	return tileOutcome{
		tile: job.Tile,
		err:  &TileError{Row: job.Tile.Row, Col: job.Tile.Col, Err: err},
	}
}

var errNoCounts = errors.New("renderer returned no counts")

func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}

// renderOnce calls the renderer and turns panics and malformed results into
// errors.
func (s *Scheduler) renderOnce(ctx context.Context, job TileJob) (res TileResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("renderer panic: %v", r)
		}
	}()

	res, err = s.renderer.RenderTile(ctx, job)
	if err != nil {
		return res, err
	}
	if res.Counts == nil {
		return res, errNoCounts
	}
	if job.Tile.Rect.Empty() {
		return res, nil
	}
	if got, want := res.Counts.Rect.Size(), job.Tile.Rect.Size(); got != want {
		return res, fmt.Errorf("result size %v, want %v", got, want)
	}
	if !res.Counts.wellFormed() {
		return res, fmt.Errorf("malformed result grid %v", res.Counts.Rect)
	}
	return res, nil
}
