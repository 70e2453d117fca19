// Package config holds the command-line surface shared by the binaries.
package config

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	mandel "github.com/J-Feltens/Mandelbrot"
	"github.com/J-Feltens/Mandelbrot/colormap"
	"github.com/J-Feltens/Mandelbrot/output"
)

// Defaults of the zoom animation.
const (
	DefaultFrames     = 100
	DefaultWidth      = 200
	DefaultHeight     = 200
	DefaultIterations = 255
	DefaultShrink     = 1 / 1.2
	DefaultOutDir     = "frames"
)

// Config is the render configuration of a zoom run.
type Config struct {
	Frames     int
	Width      int
	Height     int
	Iterations int
	Padding    float64
	Shrink     float64
	Region     string
	CX, CY     float64
	explicit   map[string]bool

	Tiles          int
	Retries        int
	ParallelFrames int

	OutDir   string
	Format   string
	Colormap string
	Scale    int
	Smooth   bool
	Caption  bool
	Grids    bool

	Verbose bool
}

// RegisterFlags binds c to fs with the default values.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.Frames, "frames", DefaultFrames, "number of frames")
	fs.IntVar(&c.Width, "width", DefaultWidth, "frame width in pixels")
	fs.IntVar(&c.Height, "height", DefaultHeight, "frame height in pixels")
	fs.IntVar(&c.Iterations, "iterations", DefaultIterations, "iteration budget per pixel")
	fs.Float64Var(&c.Padding, "padding", 0, "initial half-width of the view (0: taken from -region)")
	fs.Float64Var(&c.Shrink, "shrink", DefaultShrink, "padding multiplier applied before every frame")
	fs.StringVar(&c.Region, "region", "zoom", "named start view: "+strings.Join(mandel.LandmarkNames(), ", "))
	fs.Float64Var(&c.CX, "cx", 0, "real part of the center (overrides -region)")
	fs.Float64Var(&c.CY, "cy", 0, "imaginary part of the center (overrides -region)")

	fs.IntVar(&c.Tiles, "tiles", mandel.DefaultTileCount, "tiles per axis")
	fs.IntVar(&c.Retries, "retries", 0, "extra attempts for a failing tile")
	fs.IntVar(&c.ParallelFrames, "parallel-frames", 1, "frames rendered at the same time")

	fs.StringVar(&c.OutDir, "out", DefaultOutDir, "output directory")
	fs.StringVar(&c.Format, "format", string(output.PNG), "image format: png, bmp, tiff")
	fs.StringVar(&c.Colormap, "colormap", "inferno", "colormap: "+strings.Join(colormap.Names(), ", "))
	fs.IntVar(&c.Scale, "scale", 1, "integer upscaling factor")
	fs.BoolVar(&c.Smooth, "smooth", false, "smooth upscaling")
	fs.BoolVar(&c.Caption, "caption", false, "stamp frame index and padding")
	fs.BoolVar(&c.Grids, "grids", false, "also write raw counts as <frame>.grid.zst")

	fs.BoolVar(&c.Verbose, "v", false, "verbose logging")
}

// Seen records which flags were set explicitly; call after fs.Parse.
func (c *Config) Seen(fs *flag.FlagSet) {
	c.explicit = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { c.explicit[f.Name] = true })
}

// Viewport resolves the start view from -region, -cx, -cy and -padding.
func (c *Config) Viewport() (mandel.Viewport, error) {
	v, err := mandel.Landmark(c.Region)
	if err != nil {
		return mandel.Viewport{}, err
	}
	cx, cy := real(v.Center), imag(v.Center)
	if c.explicit["cx"] {
		cx = c.CX
	}
	if c.explicit["cy"] {
		cy = c.CY
	}
	v.Center = complex(cx, cy)
	if c.Padding != 0 {
		v.Padding = c.Padding
	}
	return v, v.Validate()
}

// Sequence builds and validates the zoom sequence.
func (c *Config) Sequence() (mandel.Sequence, error) {
	v, err := c.Viewport()
	if err != nil {
		return mandel.Sequence{}, err
	}
	seq := mandel.Sequence{
		Start:      v,
		Shrink:     c.Shrink,
		Frames:     c.Frames,
		Width:      c.Width,
		Height:     c.Height,
		Iterations: c.Iterations,
	}
	return seq, seq.Validate()
}

// SchedulerOptions returns the scheduler options selected by the flags.
func (c *Config) SchedulerOptions() []mandel.SchedulerOption {
	return []mandel.SchedulerOption{
		mandel.WithTileCount(c.Tiles),
		mandel.WithRetries(c.Retries),
	}
}

// Writer builds the frame writer.
func (c *Config) Writer() (*output.Writer, error) {
	format, err := output.ParseFormat(c.Format)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", mandel.ErrInvalidConfig, err)
	}
	cm, err := colormap.ByName(c.Colormap)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", mandel.ErrInvalidConfig, err)
	}
	if c.Scale <= 0 {
		return nil, fmt.Errorf("%w: scale must be positive, got %d", mandel.ErrInvalidConfig, c.Scale)
	}
	if c.OutDir == "" {
		return nil, fmt.Errorf("%w: empty output directory", mandel.ErrInvalidConfig)
	}
	return &output.Writer{
		Dir:      c.OutDir,
		Format:   format,
		Colormap: cm,
		Scale:    c.Scale,
		Smooth:   c.Smooth,
		Caption:  c.Caption,
		SaveGrid: c.Grids,
	}, nil
}

// ParseWorkers parses the required worker count argument.
func ParseWorkers(args []string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("%w: expected exactly one argument (worker count), got %d", mandel.ErrInvalidConfig, len(args))
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("%w: worker count %q is not an integer", mandel.ErrInvalidConfig, args[0])
	}
	if n <= 0 {
		return 0, fmt.Errorf("%w: worker count must be positive, got %d", mandel.ErrInvalidConfig, n)
	}
	return n, nil
}

// SetupLogging installs a text logger on stderr for mandel and slog.Default.
func SetupLogging(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	l := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	mandel.SetLogger(l)
	slog.SetDefault(l)
	return l
}
