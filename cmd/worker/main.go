// Command worker connects to a mandel server and renders the tiles it is sent.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	mandel "github.com/J-Feltens/Mandelbrot"
	"github.com/J-Feltens/Mandelbrot/internal/config"
	"github.com/J-Feltens/Mandelbrot/remote"
	"github.com/J-Feltens/Mandelbrot/render"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("run: %+v", err)
	}
}

func run() error {
	server := flag.String("server", "ws://localhost:8080/ws", "websocket endpoint of the server")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Parse()
	if flag.NArg() != 0 {
		return fmt.Errorf("%w: unexpected arguments %q", mandel.ErrInvalidConfig, flag.Args())
	}
	logger := config.SetupLogging(*verbose)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tiles := 0
	renderer := render.Local{OnTileRender: func(t mandel.Tile) {
		tiles++
		logger.Debug("tile received", slog.String("tile", t.String()))
	}}

	logger.Info("connecting", slog.String("server", *server))
	if err := remote.Serve(ctx, *server, renderer); err != nil {
		return err
	}
	logger.Info("server closed the connection", slog.Int("tiles", tiles))
	return nil
}
