package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sagarc03/photozip"
	"github.com/sagarc03/photozip/config"
	photoziphttp "github.com/sagarc03/photozip/http"
	"github.com/sagarc03/photozip/internal/clock"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the photozip HTTP server.

The photo root is scanned once at startup; directories added later are
not served until the next restart.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 8080, "HTTP server port (env: PORT, PHOTOZIP_SERVER_PORT)")
	serveCmd.Flags().String("host", "", "listen host (default: all interfaces)")
	serveCmd.Flags().Var(new(delayValue), "delay", "pause after every archive chunk, whole seconds or a duration like 250ms (env: DELAY)")
	serveCmd.Flags().Int("batch-size", 100, "archive chunk size in KiB")
	serveCmd.Flags().String("archiver", "", "archiver executable (default: zip)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, registry, err := openPhotos(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	streamer, err := photozip.NewStreamer(store, photozip.StreamerConfig{
		Archiver:   cfg.Archive.Archiver(),
		BatchSize:  cfg.Archive.BatchBytes(),
		ChunkDelay: cfg.Archive.ChunkDelay,
		Clock:      clock.Real(),
	})
	if err != nil {
		return fmt.Errorf("create streamer: %w", err)
	}

	var heartbeat *photozip.Heartbeat
	if cfg.Heartbeat.Token != "" {
		heartbeat = photozip.NewHeartbeat(cfg.Heartbeat.Interval, clock.Real())
	}

	handlerConfig := photoziphttp.HandlerConfig{
		HeartbeatToken: cfg.Heartbeat.Token,
		IndexFile:      cfg.Pages.Index,
		CORS:           cfg.CORS,
	}
	handler := photoziphttp.NewHandler(&handlerConfig, registry, streamer, heartbeat)

	// Request contexts derive from baseCtx, so cancelling it stops every
	// open archive and heartbeat stream.
	baseCtx, cancelStreams := context.WithCancel(context.Background())
	defer cancelStreams()

	// Archive and heartbeat responses run as long as the client reads, so
	// there is no write timeout.
	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting server",
			"addr", server.Addr,
			"archiver", cfg.Archive.Command,
			"batch", humanize.IBytes(uint64(cfg.Archive.BatchBytes())),
			"delay", cfg.Archive.ChunkDelay,
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		slog.Info("shutting down server...")
		cancelStreams()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "err", err)
			return server.Close()
		}
		return nil
	})

	return g.Wait()
}
