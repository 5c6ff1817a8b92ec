package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"farm-yield/internal/logger"
	"farm-yield/internal/server"
	"farm-yield/internal/trace"
)

func main() {
	if err := initializeSystem(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(ctx)
	if err != nil {
		os.Exit(1)
	}
	initializeTracer(cfg)

	src, err := initializeSource(ctx, cfg)
	if err != nil {
		os.Exit(1)
	}
	defer src.Close()

	svc := initializeHistory(cfg, src, initializeAnalyzer(cfg))
	srv := server.New(svc, cfg)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Start(fmt.Sprintf(":%d", cfg.Server.Port))
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info(context.Background(), "Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return trace.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.ErrorWithErr(context.Background(), "Server exited with error", err)
		os.Exit(1)
	}
	logger.Info(context.Background(), "Server exited properly")
}
