package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	"github.com/simaogato/wealthtrack-backend/internal/app"
	"github.com/simaogato/wealthtrack-backend/internal/config"
	"github.com/simaogato/wealthtrack-backend/internal/log"
)

func main() {
	// 1. Load and validate configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.New(log.DefaultConfig()).Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	// 2. Build the application (storage, market data, ledger feed, services)
	application, err := app.New(cfg)
	if err != nil {
		log.New(log.DefaultConfig()).Error("Failed to initialize application", "error", err)
		os.Exit(1)
	}
	defer application.Close()
	logger := application.Logger

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Seed the bootstrap user
	if err := application.Seed(ctx); err != nil {
		logger.Error("Failed to seed bootstrap user", "error", err)
		os.Exit(1)
	}

	// 4. Periodic jobs, only in the process that wins the lock
	if cfg.SchedulerEnabled {
		sched := application.Scheduler()
		if _, err := sched.Start(ctx); err != nil {
			logger.Error("Failed to start scheduler", "error", err)
			os.Exit(1)
		}
		defer sched.Stop()
	} else {
		logger.Info("Scheduler disabled")
	}

	// 5. Start gRPC Server
	grpcServer, err := application.NewGRPCServer()
	if err != nil {
		logger.Error("Failed to build gRPC server", "error", err)
		os.Exit(1)
	}
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		logger.Error("Failed to listen", "addr", cfg.GRPCAddr, "error", err)
		os.Exit(1)
	}

	// Start server in a goroutine
	go func() {
		logger.Info("gRPC server listening", "addr", cfg.GRPCAddr)
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("Failed to serve gRPC server", "error", err)
			cancel()
		}
	}()

	// Graceful shutdown
	waitForShutdown(ctx, grpcServer, logger)
}

// waitForShutdown waits for SIGTERM, SIGINT or a serve failure and gracefully shuts down the server
func waitForShutdown(ctx context.Context, grpcServer *grpclib.Server, logger *log.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigChan:
		logger.Info("Received signal, shutting down gracefully", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Server stopped unexpectedly")
	}

	grpcServer.GracefulStop()
	logger.Info("gRPC server stopped")
}
