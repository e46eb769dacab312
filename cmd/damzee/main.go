package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/damzee/damzee/api"
	"github.com/damzee/damzee/board"
	"github.com/damzee/damzee/book"
	"github.com/damzee/damzee/config"
	"github.com/damzee/damzee/search"
	"github.com/damzee/damzee/shell"
)

const (
	GracefulShutdownTimeout = 20 * time.Second
)

func main() {
	cfg := &config.Config{}
	if err := cfg.Load(os.Args[1:]); err != nil {
		log.Fatal().Err(err).Msg("loading config")
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	settings, err := cfg.SearchSettings()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid engine settings")
	}
	topo := board.New()

	if cfg.Shell {
		runShell(topo, settings)
		return
	}

	handler, err := api.NewHandler(topo, settings, book.None{})
	if err != nil {
		log.Fatal().Err(err).Msg("building api handler")
	}
	srv := &http.Server{Addr: cfg.ListenAddr, Handler: handler}

	idleConnsClosed := make(chan struct{})
	sig := make(chan os.Signal, 1)
	go func() {
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		// We received an interrupt signal, shut down.
		log.Info().Msg("got quit signal...")
		ctx, cancel := context.WithTimeout(context.Background(), GracefulShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			// Error from closing listeners, or context timeout:
			log.Error().Err(err).Msg("server shutdown")
		}
		close(idleConnsClosed)
	}()

	log.Info().Str("addr", cfg.ListenAddr).Msg("serving engine api")
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server failed")
	}
	<-idleConnsClosed
}

func runShell(topo *board.Topology, settings search.Settings) {
	solver, err := search.NewSolver(topo, settings)
	if err != nil {
		log.Fatal().Err(err).Msg("building solver")
	}
	sc, err := shell.NewShellController(solver)
	if err != nil {
		log.Fatal().Err(err).Msg("starting shell")
	}
	sc.Loop()
}
