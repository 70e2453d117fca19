package mandel

import (
	"context"
	"image"
)

//go:generate go run github.com/marben/irpc/cmd/irpc

// TileService is the network form of Renderer. Workers serve it over an
// irpc endpoint and the hub calls it through the generated client.
type TileService interface {
	RenderTile(ctx context.Context, tile TileRequest) (TileReply, error)
}

// TileRequest is a TileJob flattened for the wire. Samples holds
// (re, im) pairs in row-major order over Rect.
type TileRequest struct {
	Row, Col   int
	Rect       image.Rectangle
	Iterations int
	Samples    []float64
}

// TileReply carries the escape counts of a TileRequest in row-major order.
type TileReply struct {
	Row, Col int
	Counts   []int
}
