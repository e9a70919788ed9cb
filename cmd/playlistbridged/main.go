// Package main is the entry point for playlistbridged: a daemon that
// reconciles a remote playlist provider's playlists against a self-hosted
// media server's library, filling gaps through a peer-to-peer transfer
// daemon and exposing a small HTTP control surface to trigger syncs.
//
// # Application architecture
//
// The daemon initializes components in order:
//
//  1. Configuration: layered Koanf load (defaults -> config.yaml -> env)
//  2. Logging: zerolog, configured from the loaded config
//  3. Catalog: embedded DuckDB store (C2)
//  4. Media server adapter (C3), transfer daemon adapter (C4)
//  5. Remote playlist provider client
//  6. Sync orchestrator (C6), wrapping C3/C4/C5 behind the resolver and
//     the waterfall quality filter
//  7. HTTP control surface (Chi router) exposing the sync-trigger contract
//
// Graceful shutdown on SIGINT/SIGTERM stops accepting new syncs, lets any
// in-flight pipeline finish or be cancelled, and closes the catalog
// connection.
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/playlistbridge/playlistbridge/internal/api"
	"github.com/playlistbridge/playlistbridge/internal/catalog"
	"github.com/playlistbridge/playlistbridge/internal/config"
	"github.com/playlistbridge/playlistbridge/internal/logging"
	"github.com/playlistbridge/playlistbridge/internal/mediaserver"
	"github.com/playlistbridge/playlistbridge/internal/orchestrator"
	"github.com/playlistbridge/playlistbridge/internal/remoteprovider"
	"github.com/playlistbridge/playlistbridge/internal/transfer"
)

func main() {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().Msg("starting playlistbridged")

	store, err := catalog.Open(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to open catalog database")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("error closing catalog database")
		}
	}()

	// The media-server and transfer-daemon wire clients are out-of-scope
	// "specified interface" boundaries (spec §1/§4.3/§4.4): NoopBackend
	// and NoopTransport stand in until a real client is registered here.
	mediaAdapter := mediaserver.New(mediaserver.NoopBackend{})
	mediaAdapter.SetIDValidationPattern(cfg.MediaServer.IDValidationPattern)

	circuitBreakerTransport := transfer.NewCircuitBreakerTransport(transfer.NoopTransport{})
	transferAdapter := transfer.New(circuitBreakerTransport, &cfg.Soulseek)

	provider := remoteprovider.NewClient(cfg.RemoteProvider)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	orch := orchestrator.New(ctx, mediaAdapter, store, transferAdapter, provider,
		cfg.PlaylistSync, cfg.QualityProfile, cfg.Soulseek.TransferPath)

	handler := api.NewHandler(ctx, orch, store)
	router := api.NewRouter(handler, cfg.Server)

	port := cfg.Server.Port
	if port == 0 {
		port = 8080
	}

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(port)),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	go func() {
		logging.Info().Str("addr", srv.Addr).Msg("control surface listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("http server failed")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logging.Info().Msg("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("error during http server shutdown")
	}
}
