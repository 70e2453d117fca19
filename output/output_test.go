package output

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	mandel "github.com/J-Feltens/Mandelbrot"
	"github.com/J-Feltens/Mandelbrot/colormap"
)

func testFrame(t *testing.T, index int) mandel.Frame {
	t.Helper()
	st := mandel.FrameState{
		Index:      index,
		Viewport:   mandel.Viewport{Center: -0.5, Padding: 1.5},
		Width:      8,
		Height:     6,
		Iterations: 30,
	}
	samples, err := mandel.NewSampleGrid(st.Viewport, st.Width, st.Height)
	if err != nil {
		t.Fatalf("NewSampleGrid() error = %v", err)
	}
	return mandel.Frame{State: st, Grid: mandel.ComputeBlock(samples, st.Iterations)}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"png", PNG, false},
		{"PNG", PNG, false},
		{"bmp", BMP, false},
		{"tiff", TIFF, false},
		{"tif", TIFF, false},
		{"gif", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestColorize(t *testing.T) {
	grid := mandel.NewResultGrid(image.Rect(0, 0, 3, 2))
	grid.Counts = []int{0, 5, 10, 10, 5, 0}

	img := Colorize(grid, 10, colormap.Gray)
	if got, want := img.Bounds(), image.Rect(0, 0, 3, 2); got != want {
		t.Fatalf("Bounds() = %v, want %v", got, want)
	}
	tests := []struct {
		x, y int
		want color.RGBA
	}{
		{0, 0, color.RGBA{0, 0, 0, 255}},
		{2, 0, color.RGBA{255, 255, 255, 255}},
		{0, 1, color.RGBA{255, 255, 255, 255}},
		{2, 1, color.RGBA{0, 0, 0, 255}},
	}
	for _, tt := range tests {
		if got := img.RGBAAt(tt.x, tt.y); got != tt.want {
			t.Errorf("RGBAAt(%d, %d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
	if img.RGBAAt(1, 0) != img.RGBAAt(1, 1) {
		t.Error("equal counts mapped to different colors")
	}
}

func TestColorize_OffsetGrid(t *testing.T) {
	grid := mandel.NewResultGrid(image.Rect(4, 7, 6, 8))
	grid.Set(7, 5, 1)

	img := Colorize(grid, 1, colormap.Gray)
	if got := img.RGBAAt(1, 0); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("RGBAAt(1, 0) = %v, want white", got)
	}
}

func TestWriter_WriteFrame(t *testing.T) {
	decoders := map[Format]func(r *os.File) (image.Image, error){
		PNG:  func(r *os.File) (image.Image, error) { return png.Decode(r) },
		BMP:  func(r *os.File) (image.Image, error) { return bmp.Decode(r) },
		TIFF: func(r *os.File) (image.Image, error) { return tiff.Decode(r) },
	}

	for format, decode := range decoders {
		t.Run(string(format), func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "nested", "frames")
			w := &Writer{Dir: dir, Format: format, Scale: 2, Caption: true}

			f := testFrame(t, 7)
			if err := w.WriteFrame(context.Background(), f); err != nil {
				t.Fatalf("WriteFrame() error = %v", err)
			}

			path := filepath.Join(dir, "7."+string(format))
			if w.FramePath(7) != path {
				t.Errorf("FramePath(7) = %q, want %q", w.FramePath(7), path)
			}
			file, err := os.Open(path)
			if err != nil {
				t.Fatalf("open frame: %v", err)
			}
			defer file.Close()
			img, err := decode(file)
			if err != nil {
				t.Fatalf("decode frame: %v", err)
			}
			if got, want := img.Bounds().Size(), image.Pt(16, 12); got != want {
				t.Errorf("frame size = %v, want %v", got, want)
			}

			entries, err := os.ReadDir(dir)
			if err != nil {
				t.Fatalf("ReadDir() error = %v", err)
			}
			if len(entries) != 1 {
				t.Errorf("output dir holds %d entries, want only the frame", len(entries))
			}
		})
	}
}

func TestWriter_Deterministic(t *testing.T) {
	w := &Writer{Dir: t.TempDir()}
	f := testFrame(t, 0)

	var a, b bytes.Buffer
	if err := w.Encode(&a, w.Image(f)); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if err := w.Encode(&b, w.Image(f)); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Error("encoding the same frame twice differs")
	}
}

func TestWriter_SaveGrid(t *testing.T) {
	dir := t.TempDir()
	w := &Writer{Dir: dir, SaveGrid: true}
	f := testFrame(t, 3)
	if err := w.WriteFrame(context.Background(), f); err != nil {
		t.Fatalf("WriteFrame() error = %v", err)
	}

	file, err := os.Open(w.GridPath(3))
	if err != nil {
		t.Fatalf("open grid: %v", err)
	}
	defer file.Close()
	grid, n, err := DecodeGrid(file)
	if err != nil {
		t.Fatalf("DecodeGrid() error = %v", err)
	}
	if n != f.State.Iterations {
		t.Errorf("DecodeGrid() budget = %d, want %d", n, f.State.Iterations)
	}
	if !slices.EqualFunc(grid.Rows(), f.Grid.Rows(), slices.Equal) {
		t.Errorf("DecodeGrid() = %v, want %v", grid.Rows(), f.Grid.Rows())
	}
}

func TestWriter_DirIsFile(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	w := &Writer{Dir: blocker}
	if err := w.WriteFrame(context.Background(), testFrame(t, 0)); err == nil {
		t.Error("WriteFrame() into a file path error = nil, want error")
	}
}

func TestWriter_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w := &Writer{Dir: t.TempDir()}
	if err := w.WriteFrame(ctx, testFrame(t, 0)); !errors.Is(err, context.Canceled) {
		t.Errorf("WriteFrame() error = %v, want context.Canceled", err)
	}
}

func TestDecodeGrid_Invalid(t *testing.T) {
	var good bytes.Buffer
	if err := EncodeGrid(&good, testFrame(t, 0).Grid, 30); err != nil {
		t.Fatalf("EncodeGrid() error = %v", err)
	}

	var lowBudget bytes.Buffer
	if err := EncodeGrid(&lowBudget, testFrame(t, 0).Grid, 1); err != nil {
		t.Fatalf("EncodeGrid() error = %v", err)
	}

	tests := map[string][]byte{
		"not zstd":          []byte("hello"),
		"truncated":         good.Bytes()[:good.Len()/2],
		"count over budget": lowBudget.Bytes(),
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			if _, _, err := DecodeGrid(bytes.NewReader(data)); err == nil {
				t.Error("DecodeGrid() error = nil, want error")
			}
		})
	}
}

func TestEncodeGrid_NegativeBudget(t *testing.T) {
	if err := EncodeGrid(&bytes.Buffer{}, testFrame(t, 0).Grid, -1); err == nil {
		t.Error("EncodeGrid(n=-1) error = nil, want error")
	}
}
