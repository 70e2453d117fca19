package remote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/coder/websocket"
	"github.com/marben/irpc"

	mandel "github.com/J-Feltens/Mandelbrot"
)

// Serve connects to the hub at url and serves r as a mandel.TileService
// until the hub closes the connection (nil error) or ctx is done.
func Serve(ctx context.Context, url string, r mandel.Renderer) error {
	c, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", url, err)
	}
	defer c.CloseNow()
	c.SetReadLimit(maxMessageSize)

	svc := mandel.NewTileServiceIrpcService(tileService{r: r})
	ep := irpc.NewEndpoint(websocket.NetConn(ctx, c, websocket.MessageBinary), irpc.WithEndpointServices(svc))
	defer ep.Close()

	mandel.Logger().Info("connected to hub", slog.String("url", url))

	select {
	case <-ep.Context().Done():
		cause := context.Cause(ep.Context())
		if errors.Is(cause, irpc.ErrEndpointClosedByCounterpart) {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("hub connection: %w", cause)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// tileService adapts a mandel.Renderer to mandel.TileService.
type tileService struct {
	r mandel.Renderer
}

var _ mandel.TileService = tileService{}

// RenderTile renders one request. Panics of the renderer are reported as
// errors so the connection survives them.
func (s tileService) RenderTile(ctx context.Context, req mandel.TileRequest) (reply mandel.TileReply, err error) {
	defer func() {
		if p := recover(); p != nil {
			reply, err = mandel.TileReply{}, fmt.Errorf("renderer panic: %v", p)
		}
	}()

	job, err := decodeJob(req)
	if err != nil {
		return mandel.TileReply{}, err
	}
	tr, err := s.r.RenderTile(ctx, job)
	if err == nil && tr.Counts == nil {
		err = errors.New("renderer returned no counts")
	}
	if err != nil {
		return mandel.TileReply{}, err
	}
	return mandel.TileReply{Row: req.Row, Col: req.Col, Counts: encodeCounts(tr.Counts)}, nil
}
