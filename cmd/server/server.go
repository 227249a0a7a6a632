package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/IdrisKulubi/spark-and-tell/internal/game"
	"github.com/IdrisKulubi/spark-and-tell/internal/httpapi"
	"github.com/IdrisKulubi/spark-and-tell/internal/registry"
)

const shutdownGrace = 5 * time.Second

func run(parent context.Context, cfg *Config) error {
	log, err := newLogger(cfg.verbose)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	catalog, err := game.LoadCatalog()
	if err != nil {
		return err
	}
	log.Info("question catalog loaded", zap.Int("questions", catalog.Len()))

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := registry.New(ctx, catalog, log)
	defer reg.Shutdown()

	srv := &http.Server{
		Addr:    cfg.addr(),
		Handler: httpapi.SetupRoutes(reg, cfg.baseURL, log),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
