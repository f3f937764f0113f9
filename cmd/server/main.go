package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/statscrape/internal/app"
	"github.com/GriffinCanCode/statscrape/internal/infrastructure/config"
	"github.com/GriffinCanCode/statscrape/internal/infrastructure/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Flags override environment
	port := flag.String("port", cfg.Server.Port, "Server port")
	host := flag.String("host", cfg.Server.Host, "Listen address")
	pages := flag.String("pages", cfg.Pipeline.PagesDir, "Directory of saved pages jobs may reference")
	dev := flag.Bool("dev", cfg.Logging.Development, "Development mode (colored logs, debug level)")
	flag.Parse()

	cfg.Server.Port = *port
	cfg.Server.Host = *host
	cfg.Pipeline.PagesDir = *pages
	if *dev {
		cfg.Logging.Development = true
		cfg.Logging.Level = "debug"
	}

	a, err := app.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}

	srv := server.NewServer(a)
	defer srv.Close()

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		a.Logger.Error("Server error", zap.Error(err))
		srv.Close()
		os.Exit(1)
	}
}
