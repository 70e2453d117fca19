// Command server renders a zoom sequence on remote workers.
//
// Workers (cmd/worker) connect to /ws; every connected worker renders one tile
// at a time. Once -min-workers are connected the sequence is rendered into
// -out, which is also served on /. /view renders single views locally.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	mandel "github.com/J-Feltens/Mandelbrot"
	"github.com/J-Feltens/Mandelbrot/internal/config"
	"github.com/J-Feltens/Mandelbrot/internal/pool"
	"github.com/J-Feltens/Mandelbrot/remote"
	"github.com/J-Feltens/Mandelbrot/render"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("run: %+v", err)
	}
}

func run() error {
	var cfg config.Config
	cfg.RegisterFlags(flag.CommandLine)
	addr := flag.String("addr", ":8080", "listen address")
	minWorkers := flag.Int("min-workers", 1, "workers to wait for before rendering")
	tileTimeout := flag.Duration("tile-timeout", time.Minute, "limit of a single remote tile (0: none)")
	exit := flag.Bool("exit", false, "exit once the sequence is rendered")
	flag.Parse()
	cfg.Seen(flag.CommandLine)
	if flag.NArg() != 0 {
		return fmt.Errorf("%w: unexpected arguments %q", mandel.ErrInvalidConfig, flag.Args())
	}
	if *minWorkers <= 0 {
		return fmt.Errorf("%w: min-workers must be positive, got %d", mandel.ErrInvalidConfig, *minWorkers)
	}
	logger := config.SetupLogging(cfg.Verbose)

	seq, err := cfg.Sequence()
	if err != nil {
		return err
	}
	writer, err := cfg.Writer()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := remote.NewHub()
	hub.TileTimeout = *tileTimeout
	defer hub.Close()

	dispatch := pool.New(dispatchWorkers(cfg.Tiles, cfg.ParallelFrames))
	defer dispatch.Close()
	remoteSched, err := mandel.NewScheduler(hub, dispatch, cfg.SchedulerOptions()...)
	if err != nil {
		return err
	}
	seqr, err := mandel.NewSequencer(remoteSched, writer, mandel.WithFrameParallelism(cfg.ParallelFrames))
	if err != nil {
		return err
	}

	local := pool.New(0)
	defer local.Close()
	localSched, err := mandel.NewScheduler(render.Local{}, local, mandel.WithTileCount(cfg.Tiles))
	if err != nil {
		return err
	}
	view := &viewer{
		sched:      localSched,
		start:      mandel.ViewState{Viewport: seq.Start, Width: seq.Width, Height: seq.Height},
		iterations: seq.Iterations,
		out:        writer,
	}

	srv := webServer(*addr, hub, view, cfg.OutDir)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", slog.String("addr", *addr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		logger.Info("waiting for workers", slog.Int("min", *minWorkers))
		if err := hub.WaitWorkers(gctx, *minWorkers); err != nil {
			return err
		}

		start := time.Now()
		if err := seqr.Run(gctx, seq); err != nil {
			return err
		}
		p := message.NewPrinter(language.English)
		logger.Info(p.Sprintf("rendered %d frames (%d pixels) in %v on %d workers",
			seq.Frames, seq.Frames*seq.Width*seq.Height, time.Since(start).Round(time.Millisecond), hub.Workers()))

		if *exit {
			stop()
		}
		return nil
	})

	err = g.Wait()
	if ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, remote.ErrNoWorkers)) {
		return nil
	}
	return err
}

// dispatchWorkers sizes the pool feeding the hub. Dispatch goroutines block
// in the hub until a worker is idle, so the hub's worker limit also bounds
// the useful pool size.
func dispatchWorkers(tiles, parallelFrames int) int {
	t := min(max(tiles, 1), remote.MaxWorkers)
	f := min(max(parallelFrames, 1), remote.MaxWorkers)
	return min(t*t*f, remote.MaxWorkers)
}
