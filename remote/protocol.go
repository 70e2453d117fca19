// Package remote distributes tiles to worker processes over websockets.
//
// The server side (Hub) accepts worker connections and implements
// mandel.Renderer by forwarding each tile to an idle worker. The worker side
// (Serve) dials the hub and serves mandel.TileService on the connection.
// Both ends speak irpc over a binary websocket stream.
package remote

import (
	"errors"
	"fmt"

	mandel "github.com/J-Feltens/Mandelbrot"
)

// maxMessageSize bounds a single websocket message.
const maxMessageSize = 64 << 20

var errBadMessage = errors.New("remote: malformed message")

func encodeJob(job mandel.TileJob) mandel.TileRequest {
	r := job.Tile.Rect
	samples := make([]float64, 0, 2*r.Dx()*r.Dy())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			c := job.Samples.At(y, x)
			samples = append(samples, real(c), imag(c))
		}
	}
	return mandel.TileRequest{
		Row:        job.Tile.Row,
		Col:        job.Tile.Col,
		Rect:       r,
		Iterations: job.Iterations,
		Samples:    samples,
	}
}

func decodeJob(m mandel.TileRequest) (mandel.TileJob, error) {
	r := m.Rect
	if r.Dx() < 0 || r.Dy() < 0 {
		return mandel.TileJob{}, fmt.Errorf("%w: inverted rect %v", errBadMessage, r)
	}
	if len(m.Samples) != 2*r.Dx()*r.Dy() {
		return mandel.TileJob{}, fmt.Errorf("%w: %d sample values for %v", errBadMessage, len(m.Samples), r)
	}

	samples := &mandel.SampleGrid{
		Samples: make([]complex128, r.Dx()*r.Dy()),
		Stride:  r.Dx(),
		Rect:    r,
	}
	for i := range samples.Samples {
		samples.Samples[i] = complex(m.Samples[2*i], m.Samples[2*i+1])
	}
	return mandel.TileJob{
		Tile:       mandel.Tile{Row: m.Row, Col: m.Col, Rect: r},
		Samples:    samples,
		Iterations: m.Iterations,
	}, nil
}

func encodeCounts(g *mandel.ResultGrid) []int {
	r := g.Rect
	counts := make([]int, 0, r.Dx()*r.Dy())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			counts = append(counts, g.At(y, x))
		}
	}
	return counts
}

// decodeResult checks a reply against the job it answers. Every count must
// lie in [0, job.Iterations].
func decodeResult(m mandel.TileReply, job mandel.TileJob) (mandel.TileResult, error) {
	r := job.Tile.Rect
	if m.Row != job.Tile.Row || m.Col != job.Tile.Col {
		return mandel.TileResult{}, fmt.Errorf("%w: result for tile (%d,%d), want (%d,%d)",
			errBadMessage, m.Row, m.Col, job.Tile.Row, job.Tile.Col)
	}
	if len(m.Counts) != r.Dx()*r.Dy() {
		return mandel.TileResult{}, fmt.Errorf("%w: %d counts for %v", errBadMessage, len(m.Counts), r)
	}
	for i, c := range m.Counts {
		if c < 0 || c > job.Iterations {
			return mandel.TileResult{}, fmt.Errorf("%w: count %d at index %d outside [0, %d]",
				errBadMessage, c, i, job.Iterations)
		}
	}
	return mandel.TileResult{
		Tile:   job.Tile,
		Counts: &mandel.ResultGrid{Counts: m.Counts, Stride: r.Dx(), Rect: r},
	}, nil
}
