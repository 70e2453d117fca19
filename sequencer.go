package mandel

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"golang.org/x/sync/errgroup"
)

// Sequence describes a zoom animation towards a fixed center.
type Sequence struct {
	// Start is the viewport before the first decay; frame 0 is rendered at
	// Start.Padding*Shrink.
	Start      Viewport
	Shrink     float64
	Frames     int
	Width      int
	Height     int
	Iterations int
}

// Validate reports configuration errors without doing any work.
func (s Sequence) Validate() error {
	if err := s.Start.Validate(); err != nil {
		return err
	}
	switch {
	case !(s.Shrink > 0) || math.IsInf(s.Shrink, 0):
		return fmt.Errorf("%w: shrink factor must be positive and finite, got %v", ErrInvalidConfig, s.Shrink)
	case s.Frames < 0:
		return fmt.Errorf("%w: frame count must not be negative, got %d", ErrInvalidConfig, s.Frames)
	case s.Width <= 0 || s.Height <= 0:
		return fmt.Errorf("%w: resolution must be positive, got %dx%d", ErrInvalidConfig, s.Width, s.Height)
	case s.Iterations < 0:
		return fmt.Errorf("%w: iteration budget must not be negative, got %d", ErrInvalidConfig, s.Iterations)
	}
	return nil
}

// Paddings returns the padding of each frame: padding is multiplied by
// shrink once before every frame, so frame k uses p0·shrink^(k+1).
// Values come from repeated multiplication, exactly as a sequential
// `padding *= shrink` loop computes them.
func Paddings(p0, shrink float64, frames int) []float64 {
	out := make([]float64, max(frames, 0))
	p := p0
	for k := range out {
		p *= shrink
		out[k] = p
	}
	return out
}

// States returns the FrameState of every frame of s.
func (s Sequence) States() []FrameState {
	paddings := Paddings(s.Start.Padding, s.Shrink, s.Frames)
	states := make([]FrameState, len(paddings))
	for k, p := range paddings {
		states[k] = FrameState{
			Index:      k,
			Viewport:   Viewport{Center: s.Start.Center, Padding: p},
			Width:      s.Width,
			Height:     s.Height,
			Iterations: s.Iterations,
		}
	}
	return states
}

// Sequencer renders the frames of a Sequence and hands them to a sink.
type Sequencer struct {
	scheduler   *Scheduler
	sink        FrameSink
	parallelism int
}

// SequencerOption configures a Sequencer.
type SequencerOption func(*Sequencer)

// WithFrameParallelism lets up to k frames render at the same time.
// Frames share the scheduler's executor. Default 1.
func WithFrameParallelism(k int) SequencerOption {
	return func(s *Sequencer) { s.parallelism = k }
}

// NewSequencer returns a sequencer rendering with sched and writing to sink.
func NewSequencer(sched *Scheduler, sink FrameSink, opts ...SequencerOption) (*Sequencer, error) {
	s := &Sequencer{
		scheduler:   sched,
		sink:        sink,
		parallelism: 1,
	}
	for _, opt := range opts {
		opt(s)
	}

	switch {
	case sched == nil:
		return nil, fmt.Errorf("%w: nil scheduler", ErrInvalidConfig)
	case sink == nil:
		return nil, fmt.Errorf("%w: nil frame sink", ErrInvalidConfig)
	case s.parallelism <= 0:
		return nil, fmt.Errorf("%w: frame parallelism must be positive, got %d", ErrInvalidConfig, s.parallelism)
	}
	return s, nil
}

// Run renders every frame of seq. The first failing frame stops the
// sequence and is returned as a *FrameError; frames already written stay
// written.
func (s *Sequencer) Run(ctx context.Context, seq Sequence) error {
	if err := seq.Validate(); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism)

	for _, st := range seq.States() {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := s.RenderFrame(gctx, st); err != nil {
				return &FrameError{Index: st.Index, Err: err}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// RenderFrame renders a single frame and hands it to the sink.
func (s *Sequencer) RenderFrame(ctx context.Context, st FrameState) error {
	start := time.Now()

	samples, err := NewSampleGrid(st.Viewport, st.Width, st.Height)
	if err != nil {
		return err
	}
	grid, err := s.scheduler.Render(ctx, samples, st.Iterations)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if err := s.sink.WriteFrame(ctx, Frame{State: st, Grid: grid}); err != nil {
		return fmt.Errorf("write: %w", err)
	}

	Logger().Info("frame done",
		slog.Int("frame", st.Index),
		slog.Float64("padding", st.Viewport.Padding),
		slog.Duration("took", time.Since(start)))
	return nil
}
