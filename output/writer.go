package output

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/tiff"

	mandel "github.com/J-Feltens/Mandelbrot"
	"github.com/J-Feltens/Mandelbrot/colormap"
)

// Format is an image file format.
type Format string

const (
	PNG  Format = "png"
	BMP  Format = "bmp"
	TIFF Format = "tiff"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case PNG, BMP, TIFF:
		return f, nil
	case "tif":
		return TIFF, nil
	}
	return "", fmt.Errorf("output: unknown format %q (known: png, bmp, tiff)", s)
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case BMP:
		return "image/bmp"
	case TIFF:
		return "image/tiff"
	}
	return "image/png"
}

// Writer persists frames as images named <frame index>.<format> in Dir.
// It implements mandel.FrameSink.
type Writer struct {
	Dir      string
	Format   Format       // defaults to PNG
	Colormap colormap.Map // defaults to colormap.Inferno

	// Scale enlarges every frame by an integer factor; Smooth selects
	// Catmull-Rom instead of nearest-neighbour resampling.
	Scale  int
	Smooth bool

	// Caption stamps the frame index and padding into the top-left corner.
	Caption bool

	// SaveGrid also writes the raw counts to <frame index>.grid.zst.
	SaveGrid bool
}

var _ mandel.FrameSink = (*Writer)(nil)

func (w *Writer) format() Format {
	if w.Format == "" {
		return PNG
	}
	return w.Format
}

// FramePath returns the image path of frame index.
func (w *Writer) FramePath(index int) string {
	return filepath.Join(w.Dir, strconv.Itoa(index)+"."+string(w.format()))
}

// GridPath returns the raw grid path of frame index.
func (w *Writer) GridPath(index int) string {
	return filepath.Join(w.Dir, strconv.Itoa(index)+".grid.zst")
}

// WriteFrame implements mandel.FrameSink. Files are written to a temporary
// name and renamed, so a failed write never leaves a partial frame behind.
func (w *Writer) WriteFrame(ctx context.Context, f mandel.Frame) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	img := w.Image(f)
	path := w.FramePath(f.State.Index)
	if err := writeAtomic(path, func(out io.Writer) error {
		return w.Encode(out, img)
	}); err != nil {
		return err
	}

	if w.SaveGrid {
		gridPath := w.GridPath(f.State.Index)
		if err := writeAtomic(gridPath, func(out io.Writer) error {
			return EncodeGrid(out, f.Grid, f.State.Iterations)
		}); err != nil {
			return err
		}
	}

	mandel.Logger().Debug("frame written", slog.String("path", path))
	return nil
}

// Image colorizes a frame and applies scaling and caption.
func (w *Writer) Image(f mandel.Frame) *image.RGBA {
	cm := w.Colormap
	if cm == nil {
		cm = colormap.Inferno
	}
	img := Colorize(f.Grid, f.State.Iterations, cm)

	if w.Scale > 1 {
		b := img.Bounds()
		dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*w.Scale, b.Dy()*w.Scale))
		var scaler xdraw.Scaler = xdraw.NearestNeighbor
		if w.Smooth {
			scaler = xdraw.CatmullRom
		}
		scaler.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
		img = dst
	}

	if w.Caption {
		drawCaption(img, fmt.Sprintf("#%d  r=%.3g", f.State.Index, f.State.Viewport.Padding))
	}
	return img
}

// Encode writes img in the writer's format.
func (w *Writer) Encode(out io.Writer, img image.Image) error {
	var err error
	switch w.format() {
	case BMP:
		err = bmp.Encode(out, img)
	case TIFF:
		err = tiff.Encode(out, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	default:
		err = png.Encode(out, img)
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", w.format(), err)
	}
	return nil
}

// drawCaption writes s on a dark box in the top-left corner of img.
func drawCaption(img *image.RGBA, s string) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.RGBA{R: 255, G: 255, B: 255, A: 255}),
		Face: face,
	}
	const margin = 2
	box := image.Rect(0, 0, d.MeasureString(s).Ceil()+2*margin, face.Height+2*margin)
	xdraw.Draw(img, box.Intersect(img.Bounds()), image.NewUniform(color.RGBA{A: 160}), image.Point{}, xdraw.Over)

	d.Dot = fixed.P(margin, margin+face.Ascent)
	d.DrawString(s)
}

// writeAtomic writes path through a temporary file in the same directory.
func writeAtomic(path string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if err := write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
