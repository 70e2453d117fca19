// Command mandelzoom renders a Mandelbrot zoom sequence into numbered image
// files using a local pool of workers.
//
// Usage:
//
//	mandelzoom [flags] <workers>
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	mandel "github.com/J-Feltens/Mandelbrot"
	"github.com/J-Feltens/Mandelbrot/internal/config"
	"github.com/J-Feltens/Mandelbrot/internal/pool"
	"github.com/J-Feltens/Mandelbrot/render"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("run: %+v", err)
	}
}

type options struct {
	config.Config
	workers int
}

func parseArgs(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("mandelzoom", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: mandelzoom [flags] <workers>\n")
		fs.PrintDefaults()
	}
	o.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	o.Seen(fs)

	n, err := config.ParseWorkers(fs.Args())
	if err != nil {
		return o, err
	}
	o.workers = n
	return o, nil
}

func run(args []string, stdout io.Writer) error {
	o, err := parseArgs(args)
	if err != nil {
		return err
	}
	config.SetupLogging(o.Verbose)

	seq, err := o.Sequence()
	if err != nil {
		return err
	}
	writer, err := o.Writer()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workers := pool.New(o.workers)
	defer workers.Close()

	sched, err := mandel.NewScheduler(render.Local{}, workers, o.SchedulerOptions()...)
	if err != nil {
		return err
	}
	seqr, err := mandel.NewSequencer(sched, writer, mandel.WithFrameParallelism(o.ParallelFrames))
	if err != nil {
		return err
	}

	start := time.Now()
	if err := seqr.Run(ctx, seq); err != nil {
		return err
	}

	p := message.NewPrinter(language.English)
	pixels := seq.Frames * seq.Width * seq.Height
	p.Fprintf(stdout, "rendered %d frames (%d pixels) into %s in %v with %d workers\n",
		seq.Frames, pixels, o.OutDir, time.Since(start).Round(time.Millisecond), o.workers)
	return nil
}
