package main

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	mandel "github.com/J-Feltens/Mandelbrot"
	"github.com/J-Feltens/Mandelbrot/output"
)

// Limits of a single /view request.
const (
	maxViewSide       = 4096
	maxViewIterations = 1 << 16
	// maxViewWork bounds width*height*iterations.
	maxViewWork = 1 << 30
)

// viewer renders single views on request. A click (px, py) on the described
// view recenters and zooms before rendering; the resulting state is returned
// in the X-View header as a query string for the next request.
type viewer struct {
	sched      *mandel.Scheduler
	start      mandel.ViewState
	iterations int
	out        *output.Writer
}

func (v *viewer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	view, n, err := v.parseQuery(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	samples, err := mandel.NewSampleGrid(view.Viewport, view.Width, view.Height)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	grid, err := v.sched.Render(r.Context(), samples, n)
	if err != nil {
		if r.Context().Err() == nil {
			mandel.Logger().Warn("view render failed", slog.Any("error", err))
			http.Error(w, "render failed", http.StatusInternalServerError)
		}
		return
	}

	img := v.out.Image(mandel.Frame{
		State: mandel.FrameState{Viewport: view.Viewport, Width: view.Width, Height: view.Height, Iterations: n},
		Grid:  grid,
	})
	var buf bytes.Buffer
	if err := v.out.Encode(&buf, img); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", v.out.Format.ContentType())
	w.Header().Set("X-View", viewQuery(view, n).Encode())
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if r.Method == http.MethodGet {
		w.Write(buf.Bytes())
	}
}

// parseQuery reads the view from cx, cy, padding, width, height and
// iterations (missing values come from the start view) and applies the click
// described by px, py and double.
func (v *viewer) parseQuery(q url.Values) (mandel.ViewState, int, error) {
	view := v.start
	n := v.iterations

	cx, cy := real(view.Center), imag(view.Center)
	for _, p := range []struct {
		name string
		dst  *float64
	}{
		{"cx", &cx},
		{"cy", &cy},
		{"padding", &view.Padding},
	} {
		if err := parseFloat(q, p.name, p.dst); err != nil {
			return view, 0, err
		}
	}
	view.Center = complex(cx, cy)

	for _, p := range []struct {
		name  string
		dst   *int
		limit int
	}{
		{"width", &view.Width, maxViewSide},
		{"height", &view.Height, maxViewSide},
		{"iterations", &n, maxViewIterations},
	} {
		if err := parseInt(q, p.name, p.dst); err != nil {
			return view, 0, err
		}
		if *p.dst > p.limit {
			return view, 0, fmt.Errorf("%s %d exceeds limit %d", p.name, *p.dst, p.limit)
		}
	}
	if n < 0 {
		return view, 0, fmt.Errorf("%w: iteration budget must not be negative, got %d", mandel.ErrInvalidConfig, n)
	}
	if err := view.Validate(); err != nil {
		return view, 0, err
	}
	if work := int64(view.Width) * int64(view.Height) * int64(n); work > maxViewWork {
		return view, 0, fmt.Errorf("view of %dx%d pixels at %d iterations exceeds work limit %d",
			view.Width, view.Height, n, maxViewWork)
	}

	_, hasX := q["px"]
	_, hasY := q["py"]
	if hasX != hasY {
		return view, 0, errors.New("px and py must be given together")
	}
	if !hasX {
		return view, n, nil
	}
	var px, py int
	if err := parseInt(q, "px", &px); err != nil {
		return view, 0, err
	}
	if err := parseInt(q, "py", &py); err != nil {
		return view, 0, err
	}
	double, err := strconv.ParseBool(q.Get("double"))
	if q.Has("double") && err != nil {
		return view, 0, fmt.Errorf("double: %w", err)
	}
	next, err := view.Click(px, py, double)
	if err != nil {
		return view, 0, err
	}
	return next, n, nil
}

// viewQuery encodes view and n the way parseQuery reads them.
func viewQuery(view mandel.ViewState, n int) url.Values {
	q := url.Values{}
	q.Set("cx", strconv.FormatFloat(real(view.Center), 'g', -1, 64))
	q.Set("cy", strconv.FormatFloat(imag(view.Center), 'g', -1, 64))
	q.Set("padding", strconv.FormatFloat(view.Padding, 'g', -1, 64))
	q.Set("width", strconv.Itoa(view.Width))
	q.Set("height", strconv.Itoa(view.Height))
	q.Set("iterations", strconv.Itoa(n))
	return q
}

func parseFloat(q url.Values, name string, dst *float64) error {
	if !q.Has(name) {
		return nil
	}
	f, err := strconv.ParseFloat(q.Get(name), 64)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dst = f
	return nil
}

func parseInt(q url.Values, name string, dst *int) error {
	if !q.Has(name) {
		return nil
	}
	i, err := strconv.Atoi(q.Get(name))
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dst = i
	return nil
}
