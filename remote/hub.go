package remote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/marben/irpc"

	mandel "github.com/J-Feltens/Mandelbrot"
)

// MaxWorkers is the number of workers a Hub accepts at once.
const MaxWorkers = 1024

var (
	// ErrHubClosed is returned by RenderTile after Close.
	ErrHubClosed = errors.New("remote: hub closed")

	// ErrNoWorkers is returned by WaitWorkers when the hub closes first.
	ErrNoWorkers = errors.New("remote: no workers")
)

// RemoteError is a failure reported by a worker. The worker stays usable.
type RemoteError struct {
	Addr string
	Msg  string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("worker %s: %s", e.Addr, e.Msg)
}

type workerConn struct {
	ep     *irpc.Endpoint
	client *mandel.TileServiceIrpcClient
	addr   string
	done   chan struct{}
	once   sync.Once
}

// Hub accepts worker connections and renders tiles on them.
// Each connected worker is one unit of parallelism.
type Hub struct {
	// TileTimeout bounds a single tile round trip. Zero means no limit.
	TileTimeout time.Duration

	closed chan struct{}
	once   sync.Once

	mu      sync.Mutex
	count   int
	idle    []*workerConn
	changed chan struct{} // closed and replaced whenever count or idle changes
}

var _ mandel.Renderer = (*Hub)(nil)

// NewHub returns a hub with no workers.
func NewHub() *Hub {
	return &Hub{
		closed:  make(chan struct{}),
		changed: make(chan struct{}),
	}
}

// ServeHTTP upgrades the request to a websocket, runs an irpc endpoint on it
// and registers the peer as a worker. It returns when the worker disconnects,
// is dropped or the hub closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		mandel.Logger().Warn("websocket accept failed", slog.String("remote", r.RemoteAddr), slog.Any("error", err))
		return
	}
	c.SetReadLimit(maxMessageSize)

	if !h.register() {
		c.Close(websocket.StatusTryAgainLater, "too many workers")
		return
	}

	ep := irpc.NewEndpoint(websocket.NetConn(r.Context(), c, websocket.MessageBinary))
	client, err := mandel.NewTileServiceIrpcClient(ep)
	if err != nil {
		ep.Close()
		h.unregister()
		mandel.Logger().Warn("irpc client failed", slog.String("remote", r.RemoteAddr), slog.Any("error", err))
		return
	}

	wc := &workerConn{ep: ep, client: client, addr: r.RemoteAddr, done: make(chan struct{})}
	mandel.Logger().Info("worker connected", slog.String("remote", wc.addr), slog.Int("workers", h.Workers()))
	h.release(wc)

	select {
	case <-wc.done:
	case <-ep.Context().Done():
		h.drop(wc, context.Cause(ep.Context()))
	case <-h.closed:
		h.drop(wc, ErrHubClosed)
	}
}

// register counts a new worker unless the hub is closed or full.
func (h *Hub) register() bool {
	select {
	case <-h.closed:
		return false
	default:
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.count >= MaxWorkers {
		return false
	}
	h.count++
	h.notify()
	return true
}

func (h *Hub) unregister() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count--
	h.notify()
}

// notify must be called with h.mu held.
func (h *Hub) notify() {
	close(h.changed)
	h.changed = make(chan struct{})
}

// release parks wc as idle.
func (h *Hub) release(wc *workerConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	select {
	case <-wc.done:
		return
	default:
	}
	h.idle = append(h.idle, wc)
	h.notify()
}

// acquire takes an idle worker, waiting for one if none is parked.
func (h *Hub) acquire(ctx context.Context) (*workerConn, error) {
	for {
		h.mu.Lock()
		if n := len(h.idle); n > 0 {
			wc := h.idle[n-1]
			h.idle = h.idle[:n-1]
			h.mu.Unlock()
			if wc.ep.Context().Err() != nil {
				// ServeHTTP drops it.
				continue
			}
			return wc, nil
		}
		changed := h.changed
		h.mu.Unlock()

		select {
		case <-changed:
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-h.closed:
			return nil, ErrHubClosed
		}
	}
}

// drop closes a worker endpoint once and forgets the worker, idle or not.
func (h *Hub) drop(wc *workerConn, cause error) {
	wc.once.Do(func() {
		wc.ep.Close()

		h.mu.Lock()
		close(wc.done)
		h.idle = slices.DeleteFunc(h.idle, func(w *workerConn) bool { return w == wc })
		h.count--
		n := h.count
		h.notify()
		h.mu.Unlock()

		mandel.Logger().Warn("worker dropped",
			slog.String("remote", wc.addr),
			slog.Int("workers", n),
			slog.Any("error", cause))
	})
}

// Workers returns the number of connected workers.
func (h *Hub) Workers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count
}

// WaitWorkers blocks until at least n workers are connected.
func (h *Hub) WaitWorkers(ctx context.Context, n int) error {
	for {
		h.mu.Lock()
		count, changed := h.count, h.changed
		h.mu.Unlock()
		if count >= n {
			return nil
		}

		select {
		case <-changed:
		case <-ctx.Done():
			return ctx.Err()
		case <-h.closed:
			return ErrNoWorkers
		}
	}
}

// RenderTile implements mandel.Renderer. It waits for an idle worker and
// calls its TileService. Cancelling ctx is forwarded to the worker and keeps
// the connection. A transport failure or TileTimeout drops the worker.
func (h *Hub) RenderTile(ctx context.Context, job mandel.TileJob) (mandel.TileResult, error) {
	wc, err := h.acquire(ctx)
	if err != nil {
		return mandel.TileResult{}, err
	}

	var timer *time.Timer
	if h.TileTimeout > 0 {
		timer = time.AfterFunc(h.TileTimeout, func() { wc.ep.Close() })
	}
	reply, err := wc.client.RenderTile(ctx, encodeJob(job))
	fired := timer != nil && !timer.Stop()

	if err != nil && (fired || wc.ep.Context().Err() != nil) {
		cause := context.Cause(wc.ep.Context())
		if fired {
			cause = fmt.Errorf("tile timed out after %v: %w", h.TileTimeout, context.DeadlineExceeded)
		}
		h.drop(wc, cause)
		return mandel.TileResult{}, fmt.Errorf("worker %s: %w", wc.addr, cause)
	}
	// A worker whose endpoint closed after replying is dropped by ServeHTTP.
	h.release(wc)

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return mandel.TileResult{}, ctxErr
		}
		return mandel.TileResult{}, &RemoteError{Addr: wc.addr, Msg: err.Error()}
	}
	return decodeResult(reply, job)
}

// Close disconnects every worker and fails pending RenderTile calls.
func (h *Hub) Close() {
	h.once.Do(func() {
		close(h.closed)
	})
}
