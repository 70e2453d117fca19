package mandel

import (
	"context"
	"errors"
	"image"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/J-Feltens/Mandelbrot/internal/pool"
)

// blockRenderer computes tiles in process.
var blockRenderer = RendererFunc(func(ctx context.Context, job TileJob) (TileResult, error) {
	return TileResult{Tile: job.Tile, Counts: ComputeBlock(job.Samples, job.Iterations)}, nil
})

// delayExecutor runs every task on its own goroutine after delay(i), where i
// is the submission index.
type delayExecutor struct {
	mu    sync.Mutex
	n     int
	delay func(i int) time.Duration
}

func (e *delayExecutor) Submit(task func()) error {
	e.mu.Lock()
	i := e.n
	e.n++
	e.mu.Unlock()
	go func() {
		time.Sleep(e.delay(i))
		task()
	}()
	return nil
}

func testGrid(t *testing.T, w, h int) *SampleGrid {
	t.Helper()
	g, err := NewSampleGrid(Viewport{Center: complex(-0.75, 0.1), Padding: 0.6}, w, h)
	if err != nil {
		t.Fatalf("NewSampleGrid() error = %v", err)
	}
	return g
}

func newTestScheduler(t *testing.T, r Renderer, workers int, opts ...SchedulerOption) *Scheduler {
	t.Helper()
	p := pool.New(workers)
	t.Cleanup(p.Close)
	s, err := NewScheduler(r, p, opts...)
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}
	return s
}

func equalGrids(a, b *ResultGrid) bool {
	return a.Rect == b.Rect && slices.EqualFunc(a.Rows(), b.Rows(), slices.Equal)
}

// =============================================================================
// Assembly
// =============================================================================

func TestScheduler_MatchesSequential(t *testing.T) {
	sizes := []image.Point{{37, 23}, {20, 20}, {3, 3}, {1, 9}}
	for _, size := range sizes {
		grid := testGrid(t, size.X, size.Y)
		want := ComputeBlock(grid, 64)

		for _, tc := range []int{1, 3, 10, 40} {
			for _, workers := range []int{1, 4, tc * tc} {
				s := newTestScheduler(t, blockRenderer, workers, WithTileCount(tc))
				got, err := s.Render(context.Background(), grid, 64)
				if err != nil {
					t.Fatalf("Render(%v, T=%d, W=%d) error = %v", size, tc, workers, err)
				}
				if !equalGrids(got, want) {
					t.Errorf("Render(%v, T=%d, W=%d) differs from ComputeBlock", size, tc, workers)
				}
			}
		}
	}
}

func TestScheduler_CompletionOrder(t *testing.T) {
	grid := testGrid(t, 30, 30)
	want := ComputeBlock(grid, 40)

	delays := map[string]func(int) time.Duration{
		"reverse": func(i int) time.Duration { return time.Duration(100-i) * 100 * time.Microsecond },
		"odd first": func(i int) time.Duration {
			if i%2 == 1 {
				return 0
			}
			return 5 * time.Millisecond
		},
	}
	for name, delay := range delays {
		t.Run(name, func(t *testing.T) {
			s, err := NewScheduler(blockRenderer, &delayExecutor{delay: delay})
			if err != nil {
				t.Fatalf("NewScheduler() error = %v", err)
			}
			got, err := s.Render(context.Background(), grid, 40)
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if !equalGrids(got, want) {
				t.Error("Render() depends on completion order")
			}
		})
	}
}

func TestScheduler_PlacesByTileIdentity(t *testing.T) {
	grid := testGrid(t, 12, 8)
	want := ComputeBlock(grid, 30)

	// The renderer reports every tile at the origin; placement must still
	// follow the tile it was asked to render.
	r := RendererFunc(func(ctx context.Context, job TileJob) (TileResult, error) {
		counts := ComputeBlock(job.Samples, job.Iterations)
		counts.Rect = counts.Rect.Sub(counts.Rect.Min)
		return TileResult{Tile: Tile{}, Counts: counts}, nil
	})
	s := newTestScheduler(t, r, 3, WithTileCount(4))
	got, err := s.Render(context.Background(), grid, 30)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !equalGrids(got, want) {
		t.Error("Render() placed tiles by reported rectangle")
	}
}

func TestScheduler_Progress(t *testing.T) {
	var calls []int
	s := newTestScheduler(t, blockRenderer, 2,
		WithTileCount(3),
		WithProgress(func(done, total int) {
			if total != 9 {
				t.Errorf("progress total = %d, want 9", total)
			}
			calls = append(calls, done)
		}))

	if _, err := s.Render(context.Background(), testGrid(t, 9, 9), 10); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if want := []int{1, 2, 3, 4, 5, 6, 7, 8, 9}; !slices.Equal(calls, want) {
		t.Errorf("progress calls = %v, want %v", calls, want)
	}
}

func TestScheduler_ConcurrentFrames(t *testing.T) {
	s := newTestScheduler(t, blockRenderer, 4)

	grids := make([]*SampleGrid, 4)
	for i := range grids {
		grids[i] = testGrid(t, 20+i, 20)
	}

	var wg sync.WaitGroup
	for i, grid := range grids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := s.Render(context.Background(), grid, 32)
			if err != nil {
				t.Errorf("Render() error = %v", err)
				return
			}
			if !equalGrids(got, ComputeBlock(grid, 32)) {
				t.Errorf("Render(frame %d) differs from ComputeBlock", i)
			}
		}()
	}
	wg.Wait()
}

// =============================================================================
// Failures
// =============================================================================

func failingAt(row, col int, err error) Renderer {
	return RendererFunc(func(ctx context.Context, job TileJob) (TileResult, error) {
		if job.Tile.Row == row && job.Tile.Col == col {
			return TileResult{}, err
		}
		return blockRenderer(ctx, job)
	})
}

func TestScheduler_TileFailure(t *testing.T) {
	boom := errors.New("boom")
	s := newTestScheduler(t, failingAt(2, 3, boom), 4, WithTileCount(5))

	got, err := s.Render(context.Background(), testGrid(t, 20, 20), 16)
	if got != nil {
		t.Error("Render() returned a partial grid")
	}
	var te *TileError
	if !errors.As(err, &te) {
		t.Fatalf("Render() error = %v, want *TileError", err)
	}
	if te.Row != 2 || te.Col != 3 {
		t.Errorf("TileError at (%d,%d), want (2,3)", te.Row, te.Col)
	}
	if !errors.Is(err, boom) {
		t.Errorf("Render() error = %v, want wrapped %v", err, boom)
	}
}

func TestScheduler_BadResults(t *testing.T) {
	tests := []struct {
		name    string
		render  func(job TileJob) TileResult
		wantMsg string
	}{
		{
			name:    "panic",
			render:  func(job TileJob) TileResult { panic("overflow") },
			wantMsg: "panic",
		},
		{
			name:    "nil counts",
			render:  func(job TileJob) TileResult { return TileResult{Tile: job.Tile} },
			wantMsg: "no counts",
		},
		{
			name: "wrong size",
			render: func(job TileJob) TileResult {
				return TileResult{Tile: job.Tile, Counts: NewResultGrid(image.Rect(0, 0, 1, 1))}
			},
			wantMsg: "size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := RendererFunc(func(ctx context.Context, job TileJob) (TileResult, error) {
				if job.Tile.Row == 1 && job.Tile.Col == 1 {
					return tt.render(job), nil
				}
				return blockRenderer(ctx, job)
			})
			s := newTestScheduler(t, r, 2, WithTileCount(3))

			_, err := s.Render(context.Background(), testGrid(t, 9, 9), 8)
			var te *TileError
			if !errors.As(err, &te) {
				t.Fatalf("Render() error = %v, want *TileError", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Render() error = %q, want it to mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestScheduler_Retries(t *testing.T) {
	newFlaky := func() Renderer {
		var seen sync.Map
		return RendererFunc(func(ctx context.Context, job TileJob) (TileResult, error) {
			if _, loaded := seen.LoadOrStore(job.Tile.Rect, true); !loaded {
				return TileResult{}, errors.New("transient")
			}
			return blockRenderer(ctx, job)
		})
	}
	grid := testGrid(t, 10, 10)

	s := newTestScheduler(t, newFlaky(), 3, WithTileCount(2))
	if _, err := s.Render(context.Background(), grid, 20); err == nil {
		t.Error("Render() without retries error = nil, want error")
	}

	s = newTestScheduler(t, newFlaky(), 3, WithTileCount(2), WithRetries(1))
	got, err := s.Render(context.Background(), grid, 20)
	if err != nil {
		t.Fatalf("Render() with retries error = %v", err)
	}
	if !equalGrids(got, ComputeBlock(grid, 20)) {
		t.Error("Render() with retries differs from ComputeBlock")
	}
}

func TestScheduler_FailFast(t *testing.T) {
	var calls atomic.Int64
	r := RendererFunc(func(ctx context.Context, job TileJob) (TileResult, error) {
		calls.Add(1)
		if job.Tile.Row == 0 && job.Tile.Col == 0 {
			return TileResult{}, errors.New("first tile failed")
		}
		if err := ctx.Err(); err != nil {
			return TileResult{}, err
		}
		time.Sleep(time.Millisecond)
		return blockRenderer(ctx, job)
	})
	s := newTestScheduler(t, r, 1, WithTileCount(10))

	if _, err := s.Render(context.Background(), testGrid(t, 50, 50), 8); err == nil {
		t.Fatal("Render() error = nil, want error")
	}
	// With one worker the failing tile runs first; queued tiles see the
	// cancelled context and never reach the renderer.
	if n := calls.Load(); n != 1 {
		t.Errorf("renderer called %d times after the first failure, want 1", n)
	}
}

func TestScheduler_ClosedPool(t *testing.T) {
	p := pool.New(2)
	p.Close()
	s, err := NewScheduler(blockRenderer, p)
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}

	_, err = s.Render(context.Background(), testGrid(t, 10, 10), 8)
	if !errors.Is(err, pool.ErrPoolClosed) {
		t.Errorf("Render() error = %v, want ErrPoolClosed", err)
	}
}

func TestNewScheduler_Invalid(t *testing.T) {
	p := pool.New(1)
	defer p.Close()

	tests := []struct {
		name string
		r    Renderer
		e    Executor
		opts []SchedulerOption
	}{
		{"nil renderer", nil, p, nil},
		{"nil executor", blockRenderer, nil, nil},
		{"zero tiles", blockRenderer, p, []SchedulerOption{WithTileCount(0)}},
		{"negative retries", blockRenderer, p, []SchedulerOption{WithRetries(-1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewScheduler(tt.r, tt.e, tt.opts...); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("NewScheduler() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}
